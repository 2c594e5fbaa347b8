package config

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/spf13/afero"
)

func TestDefaultRunConfig(t *testing.T) {
	rc := DefaultRunConfig()

	if rc.SSLCertificateAuthority != "ssl_com" {
		t.Errorf("SSLCertificateAuthority = %q, want ssl_com", rc.SSLCertificateAuthority)
	}
	if rc.ZoneConcurrency != 10 || rc.APIConcurrency != 1 {
		t.Errorf("concurrency = %d/%d, want 10/1", rc.ZoneConcurrency, rc.APIConcurrency)
	}
	if rc.Retry.MaxAttempts != 5 || rc.Retry.BaseDelay != 500*time.Millisecond {
		t.Errorf("retry = %+v, want 5 attempts, 500ms", rc.Retry)
	}
	if rc.PerPage != 50 {
		t.Errorf("PerPage = %d, want 50", rc.PerPage)
	}
	if rc.Pacing() != 4 {
		t.Errorf("Pacing() = %g, want 4", rc.Pacing())
	}
	if rc.CAList != nil || rc.Settings != nil {
		t.Error("CAList and Settings should stay nil by default")
	}
	if err := rc.Validate(); err != nil {
		t.Errorf("default run config should be valid: %v", err)
	}
}

func TestConfig_Validate(t *testing.T) {
	tests := []struct {
		name    string
		modify  func(*Config)
		wantErr string
	}{
		{
			name:   "valid",
			modify: func(c *Config) {},
		},
		{
			name:    "missing email",
			modify:  func(c *Config) { c.Credentials.Email = "" },
			wantErr: "CLOUDFLARE_EMAIL is required",
		},
		{
			name:    "missing api key",
			modify:  func(c *Config) { c.Credentials.APIKey = "" },
			wantErr: "CLOUDFLARE_API_KEY is required",
		},
		{
			name:    "invalid certificate authority",
			modify:  func(c *Config) { c.Run.SSLCertificateAuthority = "digicert" },
			wantErr: "invalid ssl_certificate_authority",
		},
		{
			name:    "empty ca list",
			modify:  func(c *Config) { c.Run.CAList = []string{} },
			wantErr: "ca_list must not be empty",
		},
		{
			name:    "blank ca entry",
			modify:  func(c *Config) { c.Run.CAList = []string{"letsencrypt.org", ""} },
			wantErr: "ca_list[1] is empty",
		},
		{
			name:    "zero zone concurrency",
			modify:  func(c *Config) { c.Run.ZoneConcurrency = 0 },
			wantErr: "zone_concurrency must be at least 1",
		},
		{
			name:    "per page too large",
			modify:  func(c *Config) { c.Run.PerPage = 100 },
			wantErr: "per_page must be between 5 and 50",
		},
		{
			name:    "unknown zone status",
			modify:  func(c *Config) { c.Run.ZoneStatus = "deleted" },
			wantErr: "invalid zone_status",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := &Config{
				Credentials: Credentials{Email: "admin@example.com", APIKey: "key"},
				Run:         DefaultRunConfig(),
			}
			tt.modify(cfg)

			err := cfg.Validate()
			if tt.wantErr == "" {
				if err != nil {
					t.Fatalf("Validate() unexpected error: %v", err)
				}
				return
			}
			if err == nil || !strings.Contains(err.Error(), tt.wantErr) {
				t.Fatalf("Validate() error = %v, want containing %q", err, tt.wantErr)
			}
		})
	}
}

func TestLoad_FromEnv(t *testing.T) {
	tests := []struct {
		name           string
		env            map[string]string
		wantSingleZone *SingleZone
	}{
		{
			name: "credentials only",
			env: map[string]string{
				EnvEmail:  "admin@example.com",
				EnvAPIKey: "key",
			},
		},
		{
			name: "single zone mode",
			env: map[string]string{
				EnvEmail:      "admin@example.com",
				EnvAPIKey:     "key",
				EnvZoneID:     "zid",
				EnvRecordName: "example.com",
			},
			wantSingleZone: &SingleZone{ZoneID: "zid", RecordName: "example.com"},
		},
		{
			name: "zone id without record name is ignored",
			env: map[string]string{
				EnvEmail:  "admin@example.com",
				EnvAPIKey: "key",
				EnvZoneID: "zid",
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg, err := Load(context.Background(), afero.NewMemMapFs(), "", tt.env)
			if err != nil {
				t.Fatalf("Load() failed: %v", err)
			}
			if cfg.Credentials.Email != "admin@example.com" || cfg.Credentials.APIKey != "key" {
				t.Errorf("Credentials = %+v", cfg.Credentials)
			}
			switch {
			case tt.wantSingleZone == nil && cfg.SingleZone != nil:
				t.Errorf("SingleZone = %+v, want nil", cfg.SingleZone)
			case tt.wantSingleZone != nil && (cfg.SingleZone == nil || *cfg.SingleZone != *tt.wantSingleZone):
				t.Errorf("SingleZone = %+v, want %+v", cfg.SingleZone, tt.wantSingleZone)
			}
			if cfg.Run.ZoneConcurrency != DefaultZoneConcurrency {
				t.Errorf("run defaults not applied: %+v", cfg.Run)
			}
		})
	}
}

func TestLoad_MissingCredentialsFailValidation(t *testing.T) {
	cfg, err := Load(context.Background(), afero.NewMemMapFs(), "", map[string]string{})
	if err != nil {
		t.Fatalf("Load() failed: %v", err)
	}
	err = cfg.Validate()
	if err == nil {
		t.Fatal("Validate() should fail without credentials")
	}
	for _, want := range []string{EnvEmail, EnvAPIKey} {
		if !strings.Contains(err.Error(), want) {
			t.Errorf("error %q does not mention %s", err, want)
		}
	}
}

func TestParseRunFile(t *testing.T) {
	fs := afero.NewMemMapFs()
	content := `ca_list:
  - letsencrypt.org
  - "pki.goog; cansignhttpexchanges=yes"
ssl_certificate_authority: lets_encrypt
settings:
  - ssl_ca
  - tiered_cache
  - ssl_recommendation
zone_concurrency: 4
requests_per_second: 2.5
retry:
  max_attempts: 3
  base_delay: 250ms
  max_delay: 5s
request_timeout: 10s
max_pages: 20
zone_status: active
`
	if err := afero.WriteFile(fs, "/run.yaml", []byte(content), 0o644); err != nil {
		t.Fatalf("WriteFile() failed: %v", err)
	}

	rc, err := ParseRunFile(context.Background(), fs, "/run.yaml")
	if err != nil {
		t.Fatalf("ParseRunFile() failed: %v", err)
	}

	if len(rc.CAList) != 2 || rc.CAList[1] != "pki.goog; cansignhttpexchanges=yes" {
		t.Errorf("CAList = %v", rc.CAList)
	}
	if rc.SSLCertificateAuthority != "lets_encrypt" {
		t.Errorf("SSLCertificateAuthority = %q", rc.SSLCertificateAuthority)
	}
	if len(rc.Settings) != 3 || rc.Settings[2] != "ssl_recommendation" {
		t.Errorf("Settings = %v", rc.Settings)
	}
	if rc.ZoneConcurrency != 4 || rc.Pacing() != 2.5 {
		t.Errorf("ZoneConcurrency = %d, Pacing() = %g", rc.ZoneConcurrency, rc.Pacing())
	}
	if rc.Retry.MaxAttempts != 3 || rc.Retry.BaseDelay != 250*time.Millisecond || rc.Retry.MaxDelay != 5*time.Second {
		t.Errorf("Retry = %+v", rc.Retry)
	}
	if rc.RequestTimeout != 10*time.Second {
		t.Errorf("RequestTimeout = %v", rc.RequestTimeout)
	}
	if rc.MaxPages != 20 || rc.ZoneStatus != "active" {
		t.Errorf("MaxPages = %d, ZoneStatus = %q", rc.MaxPages, rc.ZoneStatus)
	}
	// Unset keys take defaults.
	if rc.APIConcurrency != DefaultAPIConcurrency || rc.PerPage != DefaultPerPage {
		t.Errorf("defaults not applied: api_concurrency=%d per_page=%d", rc.APIConcurrency, rc.PerPage)
	}
	if err := rc.Validate(); err != nil {
		t.Errorf("Validate() failed: %v", err)
	}
}

func TestParseRunFile_Errors(t *testing.T) {
	fs := afero.NewMemMapFs()
	if err := afero.WriteFile(fs, "/typo.yaml", []byte("zone_concurency: 4\n"), 0o644); err != nil {
		t.Fatalf("WriteFile() failed: %v", err)
	}
	if err := afero.WriteFile(fs, "/broken.yaml", []byte("ca_list: [unterminated\n"), 0o644); err != nil {
		t.Fatalf("WriteFile() failed: %v", err)
	}

	tests := []struct {
		name string
		path string
	}{
		{name: "missing file", path: "/missing.yaml"},
		{name: "unknown key", path: "/typo.yaml"},
		{name: "invalid yaml", path: "/broken.yaml"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := ParseRunFile(context.Background(), fs, tt.path); err == nil {
				t.Errorf("ParseRunFile(%s) should fail", tt.path)
			}
		})
	}
}

func TestParseRunFile_RequestsPerSecond(t *testing.T) {
	tests := []struct {
		name    string
		content string
		want    float64
	}{
		{name: "unset takes the default", content: "zone_concurrency: 2\n", want: DefaultRequestsPerSecond},
		{name: "zero disables pacing", content: "requests_per_second: 0\n", want: 0},
		{name: "explicit rate", content: "requests_per_second: 1.5\n", want: 1.5},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fs := afero.NewMemMapFs()
			if err := afero.WriteFile(fs, "/run.yaml", []byte(tt.content), 0o644); err != nil {
				t.Fatalf("WriteFile() failed: %v", err)
			}

			rc, err := ParseRunFile(context.Background(), fs, "/run.yaml")
			if err != nil {
				t.Fatalf("ParseRunFile() failed: %v", err)
			}
			if got := rc.Pacing(); got != tt.want {
				t.Errorf("Pacing() = %g, want %g", got, tt.want)
			}
			if err := rc.Validate(); err != nil {
				t.Errorf("Validate() failed: %v", err)
			}
		})
	}
}

func TestRunConfig_ValidateNegativeRate(t *testing.T) {
	rc := DefaultRunConfig()
	rps := -1.0
	rc.RequestsPerSecond = &rps

	err := rc.Validate()
	if err == nil || !strings.Contains(err.Error(), "requests_per_second must not be negative") {
		t.Fatalf("Validate() error = %v, want negative rate error", err)
	}
}
