package cloudflare

import "context"

// Client abstracts the three Cloudflare operations used by the tool.
// The real implementation wraps the cloudflare-go SDK; tests inject mocks.
//
// Every method returns an *Error on failure. A response with success=false
// is a failure (KindApplication unless the error codes say otherwise), and
// the envelope is still returned alongside it.
type Client interface {
	// ListZones returns one page of the zone listing.
	ListZones(ctx context.Context, params ZoneListParams) (*ZonePage, error)

	// CreateDNSRecord creates a CAA record in the given zone.
	CreateDNSRecord(ctx context.Context, zoneID string, record CAARecord) (*Envelope, error)

	// PatchZoneSetting sends a PATCH to zones/{zoneID}/{settingPath} with payload as JSON body.
	PatchZoneSetting(ctx context.Context, zoneID string, settingPath string, payload any) (*Envelope, error)
}
