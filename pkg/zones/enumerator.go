package zones

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"

	"github.com/nebari-dev/cfzones/pkg/cloudflare"
	"github.com/nebari-dev/cfzones/pkg/status"
)

// DefaultPerPage is the page size requested from the zone listing.
const DefaultPerPage = 50

// ErrNoZones is returned when the listing succeeds but contains no zones.
var ErrNoZones = errors.New("no zones found")

// Config controls the zone listing.
type Config struct {
	// PerPage is the page size. Zero uses DefaultPerPage.
	PerPage int

	// MaxPages stops the listing after this many pages. Zero means no limit.
	MaxPages int

	// Status filters zones by status (e.g. "active"). Empty lists every zone.
	Status string
}

// Enumerator pages through the zone listing.
type Enumerator struct {
	client cloudflare.Client
	cfg    Config
}

// NewEnumerator creates an Enumerator. client is expected to already apply
// admission control and retry.
func NewEnumerator(client cloudflare.Client, cfg Config) *Enumerator {
	if cfg.PerPage <= 0 {
		cfg.PerPage = DefaultPerPage
	}
	return &Enumerator{client: client, cfg: cfg}
}

// Map fetches every page of the listing and returns the zones in listing
// order. Any failed page fails the whole enumeration. An empty listing
// returns ErrNoZones together with the empty map.
func (e *Enumerator) Map(ctx context.Context) (*Map, error) {
	tracer := otel.Tracer("cfzones")
	ctx, span := tracer.Start(ctx, "zones.Map")
	defer span.End()

	zoneMap := NewMap()
	collected := 0

	for page := 1; ; page++ {
		if e.cfg.MaxPages > 0 && page > e.cfg.MaxPages {
			slog.Warn("Stopping zone listing at page limit", "max_pages", e.cfg.MaxPages, "zones", zoneMap.Len())
			break
		}

		result, err := e.client.ListZones(ctx, cloudflare.ZoneListParams{
			Match:   "all",
			Status:  e.cfg.Status,
			Order:   "name",
			Page:    page,
			PerPage: e.cfg.PerPage,
		})
		if err != nil {
			span.RecordError(err)
			return nil, fmt.Errorf("failed to list zones (page %d): %w", page, err)
		}

		for _, zone := range result.Result {
			zoneMap.Set(zone.Name, zone.ID)
		}
		collected += len(result.Result)

		slog.Debug("Fetched zone page", "page", page, "count", len(result.Result), "total", collected)
		status.Sendf(ctx, status.LevelProgress, "Fetched zone page %d (%d zones so far)", page, collected)

		if !hasNextPage(result, page, collected) {
			break
		}
	}

	span.SetAttributes(
		attribute.Int("zones.count", zoneMap.Len()),
	)

	if zoneMap.Len() == 0 {
		return zoneMap, ErrNoZones
	}

	slog.Info("Zones found", "count", zoneMap.Len())
	return zoneMap, nil
}

func hasNextPage(result *cloudflare.ZonePage, page, collected int) bool {
	if len(result.Result) == 0 || result.ResultInfo == nil {
		return false
	}

	info := result.ResultInfo
	if info.TotalPages > 0 {
		return page < info.TotalPages
	}
	return collected < info.TotalCount
}
