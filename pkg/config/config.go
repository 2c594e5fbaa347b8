package config

import (
	"errors"
	"fmt"
	"slices"
	"time"

	"github.com/nebari-dev/cfzones/pkg/settings"
)

// Environment variables read by the tool.
const (
	EnvEmail      = "CLOUDFLARE_EMAIL"
	EnvAPIKey     = "CLOUDFLARE_API_KEY"
	EnvBaseURL    = "CLOUDFLARE_API_BASE_URL"
	EnvZoneID     = "ZONE_ID"
	EnvRecordName = "RECORD_NAME"
)

// Defaults applied to a run file.
const (
	DefaultSSLCertificateAuthority = settings.CertificateAuthoritySSLCom
	DefaultZoneConcurrency         = 10
	DefaultAPIConcurrency          = 1
	DefaultRequestsPerSecond       = 4.0
	DefaultMaxAttempts             = 5
	DefaultBaseDelay               = 500 * time.Millisecond
	DefaultRequestTimeout          = 30 * time.Second
	DefaultPerPage                 = 50
)

// ValidZoneStatuses lists the zone status filters the listing accepts.
var ValidZoneStatuses = []string{"initializing", "pending", "active", "moved"}

// Credentials authenticate against the Cloudflare API with the global API key.
type Credentials struct {
	Email  string
	APIKey string
}

// SingleZone restricts a run to one zone without listing.
type SingleZone struct {
	ZoneID     string
	RecordName string
}

// RetryConfig configures backoff for rate-limited calls.
type RetryConfig struct {
	// MaxAttempts counts the first try. Default 5.
	MaxAttempts int `yaml:"max_attempts,omitempty"`
	// BaseDelay is doubled after each rate-limited attempt. Default 500ms.
	BaseDelay time.Duration `yaml:"base_delay,omitempty"`
	// MaxDelay caps a single backoff. Zero means uncapped.
	MaxDelay time.Duration `yaml:"max_delay,omitempty"`
}

// RunConfig represents the parsed run file. Every field is optional.
type RunConfig struct {
	// CAList holds the CAA values written to every zone, once per issue and
	// issuewild tag. Defaults to the built-in list of 14 authorities.
	CAList []string `yaml:"ca_list,omitempty"`

	// SSLCertificateAuthority is the Universal SSL issuer: ssl_com,
	// lets_encrypt, google or sectigo. Default ssl_com.
	SSLCertificateAuthority string `yaml:"ssl_certificate_authority,omitempty"`

	// Settings names the zone settings applied after the CAA records, in
	// order. Default [ssl_ca, tiered_cache].
	Settings []string `yaml:"settings,omitempty"`

	ZoneConcurrency int `yaml:"zone_concurrency,omitempty"` // Zones processed at once. Default 10.
	APIConcurrency  int `yaml:"api_concurrency,omitempty"`  // API calls in flight. Default 1.

	// RequestsPerSecond paces API calls across the run. Default 4, 0 disables pacing.
	RequestsPerSecond *float64 `yaml:"requests_per_second,omitempty"`

	Retry RetryConfig `yaml:"retry,omitempty"`

	// RequestTimeout bounds a single HTTP request. Default 30s.
	RequestTimeout time.Duration `yaml:"request_timeout,omitempty"`

	PerPage  int `yaml:"per_page,omitempty"`  // Zones per listing page, 5 to 50. Default 50.
	MaxPages int `yaml:"max_pages,omitempty"` // Stops the listing after this many pages. Zero means no limit.

	// ZoneStatus lists only zones in this state: initializing, pending,
	// active or moved. Empty lists every zone.
	ZoneStatus string `yaml:"zone_status,omitempty"`
}

// Config is everything a run needs.
type Config struct {
	Credentials Credentials
	BaseURL     string

	// SingleZone is set when ZONE_ID and RECORD_NAME are both present.
	SingleZone *SingleZone

	Run RunConfig
}

// DefaultRunConfig returns the run settings used when no run file is given.
func DefaultRunConfig() RunConfig {
	rc := RunConfig{}
	rc.applyDefaults()
	return rc
}

// applyDefaults fills zero values. CAList and Settings stay nil so callers
// can tell "not configured" from "configured empty".
func (rc *RunConfig) applyDefaults() {
	if rc.SSLCertificateAuthority == "" {
		rc.SSLCertificateAuthority = DefaultSSLCertificateAuthority
	}
	if rc.ZoneConcurrency == 0 {
		rc.ZoneConcurrency = DefaultZoneConcurrency
	}
	if rc.APIConcurrency == 0 {
		rc.APIConcurrency = DefaultAPIConcurrency
	}
	if rc.RequestsPerSecond == nil {
		rps := DefaultRequestsPerSecond
		rc.RequestsPerSecond = &rps
	}
	if rc.Retry.MaxAttempts == 0 {
		rc.Retry.MaxAttempts = DefaultMaxAttempts
	}
	if rc.Retry.BaseDelay == 0 {
		rc.Retry.BaseDelay = DefaultBaseDelay
	}
	if rc.RequestTimeout == 0 {
		rc.RequestTimeout = DefaultRequestTimeout
	}
	if rc.PerPage == 0 {
		rc.PerPage = DefaultPerPage
	}
}

// Pacing returns the API request rate. Zero means unpaced.
func (rc *RunConfig) Pacing() float64 {
	if rc.RequestsPerSecond == nil {
		return DefaultRequestsPerSecond
	}
	return *rc.RequestsPerSecond
}

// Validate checks the run settings. Setting names are checked against the
// settings registry by the caller.
func (rc *RunConfig) Validate() error {
	var errs []error

	if !slices.Contains(settings.ValidCertificateAuthorities, rc.SSLCertificateAuthority) {
		errs = append(errs, fmt.Errorf("invalid ssl_certificate_authority %q, must be one of: %v",
			rc.SSLCertificateAuthority, settings.ValidCertificateAuthorities))
	}
	if rc.CAList != nil && len(rc.CAList) == 0 {
		errs = append(errs, errors.New("ca_list must not be empty when set"))
	}
	for i, ca := range rc.CAList {
		if ca == "" {
			errs = append(errs, fmt.Errorf("ca_list[%d] is empty", i))
		}
	}
	if rc.ZoneConcurrency < 1 {
		errs = append(errs, fmt.Errorf("zone_concurrency must be at least 1, got %d", rc.ZoneConcurrency))
	}
	if rc.APIConcurrency < 1 {
		errs = append(errs, fmt.Errorf("api_concurrency must be at least 1, got %d", rc.APIConcurrency))
	}
	if rps := rc.Pacing(); rps < 0 {
		errs = append(errs, fmt.Errorf("requests_per_second must not be negative, got %g", rps))
	}
	if rc.Retry.MaxAttempts < 1 {
		errs = append(errs, fmt.Errorf("retry.max_attempts must be at least 1, got %d", rc.Retry.MaxAttempts))
	}
	if rc.Retry.BaseDelay < 0 || rc.Retry.MaxDelay < 0 {
		errs = append(errs, errors.New("retry delays must not be negative"))
	}
	if rc.RequestTimeout < 0 {
		errs = append(errs, errors.New("request_timeout must not be negative"))
	}
	if rc.PerPage < 5 || rc.PerPage > 50 {
		errs = append(errs, fmt.Errorf("per_page must be between 5 and 50, got %d", rc.PerPage))
	}
	if rc.MaxPages < 0 {
		errs = append(errs, fmt.Errorf("max_pages must not be negative, got %d", rc.MaxPages))
	}
	if rc.ZoneStatus != "" && !slices.Contains(ValidZoneStatuses, rc.ZoneStatus) {
		errs = append(errs, fmt.Errorf("invalid zone_status %q, must be one of: %v", rc.ZoneStatus, ValidZoneStatuses))
	}

	return errors.Join(errs...)
}

// Validate checks the whole configuration. It is the only gate before any
// network call is made.
func (c *Config) Validate() error {
	var errs []error

	if c.Credentials.Email == "" {
		errs = append(errs, fmt.Errorf("%s is required", EnvEmail))
	}
	if c.Credentials.APIKey == "" {
		errs = append(errs, fmt.Errorf("%s is required", EnvAPIKey))
	}
	if err := c.Run.Validate(); err != nil {
		errs = append(errs, err)
	}

	return errors.Join(errs...)
}
