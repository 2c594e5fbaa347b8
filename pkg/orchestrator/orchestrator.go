// Package orchestrator runs one pass over every zone: enumerate, process each
// zone with bounded concurrency, summarize.
package orchestrator

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"golang.org/x/sync/errgroup"

	"github.com/nebari-dev/cfzones/pkg/processor"
	"github.com/nebari-dev/cfzones/pkg/status"
	"github.com/nebari-dev/cfzones/pkg/zones"
)

// DefaultZoneConcurrency bounds how many zones are processed at once.
const DefaultZoneConcurrency = 10

// ErrNoZones is returned when there is nothing to process.
var ErrNoZones = zones.ErrNoZones

// ZoneSource produces the zone map for a run.
type ZoneSource interface {
	Map(ctx context.Context) (*zones.Map, error)
}

// ZoneProcessor applies the hardening sequence to one zone.
type ZoneProcessor interface {
	ProcessZone(ctx context.Context, zoneID, domain string) (processor.ZoneReport, error)
}

// StaticSource serves a fixed zone map, used for single-zone runs.
type StaticSource struct {
	Zones *zones.Map
}

// Map returns the fixed zone map.
func (s StaticSource) Map(ctx context.Context) (*zones.Map, error) {
	if s.Zones.Len() == 0 {
		return s.Zones, ErrNoZones
	}
	return s.Zones, nil
}

// Orchestrator drives one run.
type Orchestrator struct {
	source          ZoneSource
	processor       ZoneProcessor
	zoneConcurrency int
}

// New creates an Orchestrator. zoneConcurrency below 1 uses DefaultZoneConcurrency.
func New(source ZoneSource, proc ZoneProcessor, zoneConcurrency int) *Orchestrator {
	if zoneConcurrency < 1 {
		zoneConcurrency = DefaultZoneConcurrency
	}
	return &Orchestrator{
		source:          source,
		processor:       proc,
		zoneConcurrency: zoneConcurrency,
	}
}

// Run fetches the zone map and processes every zone, waiting for all of them
// to settle. A failed or empty enumeration stops the run before any zone is
// processed. Zone failures are reported in the summary, never returned;
// the returned error is reserved for enumeration and cancellation.
func (o *Orchestrator) Run(ctx context.Context) (*Summary, error) {
	tracer := otel.Tracer("cfzones")
	ctx, span := tracer.Start(ctx, "orchestrator.Run")
	defer span.End()

	zoneMap, err := o.source.Map(ctx)
	if err != nil {
		span.RecordError(err)
		if errors.Is(err, ErrNoZones) {
			slog.Error("No zones found")
			status.Error(ctx, "No zones found")
			return &Summary{}, err
		}
		status.Error(ctx, fmt.Sprintf("Failed to fetch zones: %v", err))
		return &Summary{}, fmt.Errorf("failed to fetch zones: %w", err)
	}
	if zoneMap.Len() == 0 {
		slog.Error("No zones found")
		status.Error(ctx, "No zones found")
		return &Summary{}, ErrNoZones
	}

	span.SetAttributes(
		attribute.Int("zones.total", zoneMap.Len()),
		attribute.Int("zones.concurrency", o.zoneConcurrency),
	)
	status.Sendf(ctx, status.LevelInfo, "Processing %d zones", zoneMap.Len())

	results := make([]zoneResult, zoneMap.Len())

	g := new(errgroup.Group)
	g.SetLimit(o.zoneConcurrency)

	i := 0
	for domain, zoneID := range zoneMap.All() {
		idx := i
		i++
		g.Go(func() error {
			results[idx] = o.processZone(ctx, zoneID, domain)
			return nil
		})
	}
	// Tasks never return an error; Wait is only a join.
	_ = g.Wait()

	summary := summarize(results)
	summary.log()

	span.SetAttributes(
		attribute.Int("zones.succeeded", summary.Succeeded),
		attribute.Int("zones.failed", len(summary.FailedDomains)),
	)

	if err := ctx.Err(); err != nil {
		return summary, fmt.Errorf("run cancelled: %w", err)
	}
	return summary, nil
}

func (o *Orchestrator) processZone(ctx context.Context, zoneID, domain string) (res zoneResult) {
	res.domain = domain

	defer func() {
		if r := recover(); r != nil {
			res.err = fmt.Errorf("panic while processing zone %s: %v", domain, r)
		}
		if res.err != nil {
			slog.Error("Zone failed", "domain", domain, "zone_id", zoneID, "error", res.err)
		}
	}()

	res.report, res.err = o.processor.ProcessZone(ctx, zoneID, domain)
	return res
}
