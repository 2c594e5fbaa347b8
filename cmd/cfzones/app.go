package main

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/nebari-dev/cfzones/pkg/cloudflare"
	"github.com/nebari-dev/cfzones/pkg/config"
	"github.com/nebari-dev/cfzones/pkg/limiter"
	"github.com/nebari-dev/cfzones/pkg/orchestrator"
	"github.com/nebari-dev/cfzones/pkg/processor"
	"github.com/nebari-dev/cfzones/pkg/retry"
	"github.com/nebari-dev/cfzones/pkg/settings"
	"github.com/nebari-dev/cfzones/pkg/zones"
)

// app holds the components of one run, constructed once and shared.
type app struct {
	client       cloudflare.Client
	apiLimiter   *limiter.Limiter
	registry     *settings.Registry
	source       orchestrator.ZoneSource
	processor    *processor.Processor
	orchestrator *orchestrator.Orchestrator
}

// newApp wires the components from a validated configuration. api is the raw
// API client; every call made through the app goes through the shared API
// limiter and the retry policy.
func newApp(ctx context.Context, cfg *config.Config, api cloudflare.Client) (*app, error) {
	run := cfg.Run
	client, apiLimiter := guardClient(run, api)

	registry, err := settings.NewDefaultRegistry(ctx, run.SSLCertificateAuthority)
	if err != nil {
		return nil, err
	}

	stepNames := run.Settings
	if stepNames == nil {
		stepNames = settings.DefaultSteps
	}
	steps, err := registry.Resolve(ctx, stepNames)
	if err != nil {
		return nil, fmt.Errorf("invalid settings in run file: %w", err)
	}

	var source orchestrator.ZoneSource
	if cfg.SingleZone != nil {
		zoneMap := zones.NewMap()
		zoneMap.Set(cfg.SingleZone.RecordName, cfg.SingleZone.ZoneID)
		source = orchestrator.StaticSource{Zones: zoneMap}
		slog.Info("Single-zone mode", "record_name", cfg.SingleZone.RecordName, "zone_id", cfg.SingleZone.ZoneID)
	} else {
		source = zones.NewEnumerator(client, enumeratorConfig(run))
	}

	proc := processor.New(client, processor.Config{
		CAList:   run.CAList,
		Settings: steps,
	})

	return &app{
		client:       client,
		apiLimiter:   apiLimiter,
		registry:     registry,
		source:       source,
		processor:    proc,
		orchestrator: orchestrator.New(source, proc, run.ZoneConcurrency),
	}, nil
}

// guardClient puts api behind the shared API limiter and the retry policy.
func guardClient(run config.RunConfig, api cloudflare.Client) (cloudflare.Client, *limiter.Limiter) {
	apiLimiter := limiter.New(limiter.Config{
		Name:              "api",
		Concurrency:       run.APIConcurrency,
		RequestsPerSecond: run.Pacing(),
	})

	client := cloudflare.NewGuardedClient(api, apiLimiter, retry.Policy{
		MaxAttempts: run.Retry.MaxAttempts,
		BaseDelay:   run.Retry.BaseDelay,
		MaxDelay:    run.Retry.MaxDelay,
	})

	return client, apiLimiter
}

func enumeratorConfig(run config.RunConfig) zones.Config {
	return zones.Config{
		PerPage:  run.PerPage,
		MaxPages: run.MaxPages,
		Status:   run.ZoneStatus,
	}
}

// newAPIClient builds the SDK-backed client from the configuration.
func newAPIClient(cfg *config.Config) (cloudflare.Client, error) {
	return cloudflare.NewSDKClient(cloudflare.ClientConfig{
		Email:          cfg.Credentials.Email,
		APIKey:         cfg.Credentials.APIKey,
		BaseURL:        cfg.BaseURL,
		RequestTimeout: cfg.Run.RequestTimeout,
	})
}
