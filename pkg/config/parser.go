package config

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/caarlos0/env/v11"
	"github.com/goccy/go-yaml"
	"github.com/spf13/afero"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
)

// ParseRunFile parses a YAML run file and fills in defaults. Unknown keys are
// rejected so that typos do not silently fall back to defaults.
func ParseRunFile(ctx context.Context, fs afero.Fs, filePath string) (*RunConfig, error) {
	tracer := otel.Tracer("cfzones")
	_, span := tracer.Start(ctx, "config.ParseRunFile")
	defer span.End()

	span.SetAttributes(attribute.String("config.file", filePath))

	data, err := afero.ReadFile(fs, filePath)
	if err != nil {
		span.RecordError(err)
		return nil, fmt.Errorf("failed to read run file %s: %w", filePath, err)
	}

	var rc RunConfig
	if err := yaml.UnmarshalWithOptions(data, &rc, yaml.Strict()); err != nil {
		span.RecordError(err)
		return nil, fmt.Errorf("failed to parse run file %s: %w", filePath, err)
	}

	rc.applyDefaults()

	span.SetAttributes(
		attribute.Int("config.ca_count", len(rc.CAList)),
		attribute.String("config.ssl_certificate_authority", rc.SSLCertificateAuthority),
	)

	return &rc, nil
}

// environment lists the variables read from the process environment.
type environment struct {
	Email      string `env:"CLOUDFLARE_EMAIL"`        // Account email. Required.
	APIKey     string `env:"CLOUDFLARE_API_KEY"`      // Global API key. Required.
	BaseURL    string `env:"CLOUDFLARE_API_BASE_URL"` // Overrides the API endpoint.
	ZoneID     string `env:"ZONE_ID"`                 // With RECORD_NAME, processes one zone without listing.
	RecordName string `env:"RECORD_NAME"`             // Domain used for the single zone.
}

// Load builds the configuration from the environment and, when filePath is
// not empty, a run file. A nil environ reads the process environment; the
// .env file is loaded into it by the caller.
func Load(ctx context.Context, fs afero.Fs, filePath string, environ map[string]string) (*Config, error) {
	tracer := otel.Tracer("cfzones")
	ctx, span := tracer.Start(ctx, "config.Load")
	defer span.End()

	var e environment
	if err := env.ParseWithOptions(&e, env.Options{Environment: environ}); err != nil {
		span.RecordError(err)
		return nil, fmt.Errorf("failed to read environment: %w", err)
	}

	cfg := &Config{
		Credentials: Credentials{
			Email:  e.Email,
			APIKey: e.APIKey,
		},
		BaseURL: e.BaseURL,
		Run:     DefaultRunConfig(),
	}

	switch {
	case e.ZoneID != "" && e.RecordName != "":
		cfg.SingleZone = &SingleZone{ZoneID: e.ZoneID, RecordName: e.RecordName}
		span.SetAttributes(attribute.Bool("config.single_zone", true))
	case e.ZoneID != "" || e.RecordName != "":
		slog.Warn("Ignoring single-zone mode, both variables are needed",
			"zone_id_set", e.ZoneID != "",
			"record_name_set", e.RecordName != "")
	}

	if filePath != "" {
		rc, err := ParseRunFile(ctx, fs, filePath)
		if err != nil {
			span.RecordError(err)
			return nil, err
		}
		cfg.Run = *rc
	}

	return cfg, nil
}
