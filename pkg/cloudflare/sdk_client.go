package cloudflare

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	cfapi "github.com/cloudflare/cloudflare-go/v4"
	"github.com/cloudflare/cloudflare-go/v4/dns"
	"github.com/cloudflare/cloudflare-go/v4/option"
	"github.com/cloudflare/cloudflare-go/v4/zones"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

// DefaultRequestTimeout bounds a single HTTP attempt.
const DefaultRequestTimeout = 30 * time.Second

// ClientConfig holds what is needed to build the SDK-backed client.
type ClientConfig struct {
	Email          string
	APIKey         string
	BaseURL        string        // empty = SDK default (https://api.cloudflare.com/client/v4/)
	RequestTimeout time.Duration // 0 = DefaultRequestTimeout
	HTTPClient     *http.Client
}

// sdkClient wraps the cloudflare-go v4 SDK to implement Client.
// This is a thin adapter -- no business logic, only transport and error translation.
type sdkClient struct {
	api *cfapi.Client
}

// NewSDKClient creates a real Cloudflare API client authenticated with the
// account email and global API key.
func NewSDKClient(cfg ClientConfig) (Client, error) {
	if cfg.Email == "" || cfg.APIKey == "" {
		return nil, fmt.Errorf("cloudflare email and API key are required")
	}

	timeout := cfg.RequestTimeout
	if timeout <= 0 {
		timeout = DefaultRequestTimeout
	}

	opts := []option.RequestOption{
		option.WithAPIEmail(cfg.Email),
		option.WithAPIKey(cfg.APIKey),
		option.WithHeader("Content-Type", "application/json"),
		// Retries are owned by pkg/retry so the backoff policy stays in one place.
		option.WithMaxRetries(0),
		option.WithRequestTimeout(timeout),
	}
	if cfg.BaseURL != "" {
		opts = append(opts, option.WithBaseURL(cfg.BaseURL))
	}
	if cfg.HTTPClient != nil {
		opts = append(opts, option.WithHTTPClient(cfg.HTTPClient))
	}

	return &sdkClient{api: cfapi.NewClient(opts...)}, nil
}

// ListZones returns one page of the zone listing.
func (c *sdkClient) ListZones(ctx context.Context, params ZoneListParams) (*ZonePage, error) {
	tracer := otel.Tracer("cfzones")
	ctx, span := tracer.Start(ctx, "cloudflare.sdk.ListZones")
	defer span.End()

	span.SetAttributes(
		attribute.Int("page", params.Page),
		attribute.Int("per_page", params.PerPage),
	)

	// The typed page only keeps page and per_page of result_info; the totals
	// drive pagination, so the whole envelope is decoded into ZonePage.
	var page ZonePage
	if _, err := c.api.Zones.List(ctx, params.sdkParams(), option.WithResponseBodyInto(&page)); err != nil {
		return nil, recordError(span, translateError("list zones", err))
	}

	if !page.Success {
		return &page, recordError(span, NewError("list zones", http.StatusOK, page.Errors, nil))
	}

	span.SetAttributes(attribute.Int("zone_count", len(page.Result)))
	return &page, nil
}

// CreateDNSRecord creates a CAA record in the given zone.
func (c *sdkClient) CreateDNSRecord(ctx context.Context, zoneID string, record CAARecord) (*Envelope, error) {
	tracer := otel.Tracer("cfzones")
	ctx, span := tracer.Start(ctx, "cloudflare.sdk.CreateDNSRecord")
	defer span.End()

	span.SetAttributes(
		attribute.String("zone_id", zoneID),
		attribute.String("record_name", record.Name),
		attribute.String("record_type", record.Type),
		attribute.String("caa_tag", string(record.Data.Tag)),
		attribute.String("caa_value", record.Data.Value),
	)

	op := fmt.Sprintf("create %s record %s", record.Type, record.Name)

	var env Envelope
	_, err := c.api.DNS.Records.New(ctx, dns.RecordNewParams{
		ZoneID: cfapi.F(zoneID),
		Body:   record.sdkParam(),
	}, option.WithResponseBodyInto(&env))
	if err != nil {
		return nil, recordError(span, translateError(op, err))
	}

	if !env.Success {
		return &env, recordError(span, NewError(op, http.StatusOK, env.Errors, nil))
	}

	return &env, nil
}

// PatchZoneSetting sends a PATCH to zones/{zoneID}/{settingPath}. Settings are
// addressed by path, so this goes through the SDK's generic Patch.
func (c *sdkClient) PatchZoneSetting(ctx context.Context, zoneID string, settingPath string, payload any) (*Envelope, error) {
	tracer := otel.Tracer("cfzones")
	ctx, span := tracer.Start(ctx, "cloudflare.sdk.PatchZoneSetting")
	defer span.End()

	settingPath = strings.Trim(settingPath, "/")
	span.SetAttributes(
		attribute.String("zone_id", zoneID),
		attribute.String("setting_path", settingPath),
	)

	op := fmt.Sprintf("patch %s", settingPath)

	var env Envelope
	if err := c.api.Patch(ctx, fmt.Sprintf("zones/%s/%s", zoneID, settingPath), payload, &env); err != nil {
		return nil, recordError(span, translateError(op, err))
	}

	if !env.Success {
		return &env, recordError(span, NewError(op, http.StatusOK, env.Errors, nil))
	}

	return &env, nil
}

// sdkParams converts the listing parameters to the SDK's query type. Zero
// values stay unset so they are left out of the query string.
func (p ZoneListParams) sdkParams() zones.ZoneListParams {
	var q zones.ZoneListParams
	if p.Name != "" {
		q.Name = cfapi.F(p.Name)
	}
	if p.Match != "" {
		q.Match = cfapi.F(zones.ZoneListParamsMatch(p.Match))
	}
	if p.Status != "" {
		q.Status = cfapi.F(zones.ZoneListParamsStatus(p.Status))
	}
	if p.Order != "" {
		q.Order = cfapi.F(zones.ZoneListParamsOrder(p.Order))
	}
	if p.Direction != "" {
		q.Direction = cfapi.F(zones.ZoneListParamsDirection(p.Direction))
	}
	if p.Page > 0 {
		q.Page = cfapi.F(float64(p.Page))
	}
	if p.PerPage > 0 {
		q.PerPage = cfapi.F(float64(p.PerPage))
	}
	return q
}

// sdkParam converts the record to the SDK's CAA request body.
func (r CAARecord) sdkParam() dns.CAARecordParam {
	return dns.CAARecordParam{
		Name: cfapi.F(r.Name),
		Type: cfapi.F(dns.CAARecordTypeCAA),
		Data: cfapi.F(dns.CAARecordDataParam{
			Flags: cfapi.F(float64(r.Data.Flags)),
			Tag:   cfapi.F(string(r.Data.Tag)),
			Value: cfapi.F(r.Data.Value),
		}),
	}
}

// translateError converts an SDK or transport error into an *Error.
func translateError(op string, err error) *Error {
	var sdkErr *cfapi.Error
	if errors.As(err, &sdkErr) {
		apiErrors := make([]ResponseError, 0, len(sdkErr.Errors))
		for _, e := range sdkErr.Errors {
			apiErrors = append(apiErrors, ResponseError{
				Code:    int(e.Code),
				Message: e.Message,
			})
		}
		return NewError(op, sdkErr.StatusCode, apiErrors, err)
	}

	return NewError(op, 0, nil, err)
}

func recordError(span trace.Span, err *Error) *Error {
	span.RecordError(err)
	span.SetAttributes(attribute.String("error.kind", err.Kind.String()))
	return err
}
