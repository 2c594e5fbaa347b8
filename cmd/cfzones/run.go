package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"slices"
	"strings"

	"github.com/spf13/afero"
	"github.com/spf13/cobra"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"

	"github.com/nebari-dev/cfzones/pkg/cloudflare"
	"github.com/nebari-dev/cfzones/pkg/config"
	"github.com/nebari-dev/cfzones/pkg/orchestrator"
	"github.com/nebari-dev/cfzones/pkg/status"
)

func runHarden(cmd *cobra.Command, args []string) error {
	// Get cancellable context from cobra (for signal handling)
	ctx := cmd.Context()
	tracer := otel.Tracer("cfzones")
	ctx, span := tracer.Start(ctx, "cmd.run")
	defer span.End()

	span.SetAttributes(attribute.String("run.id", runID))

	cfg, err := loadConfig(ctx, cmd)
	if err != nil {
		span.RecordError(err)
		return err
	}

	api, err := newAPIClient(cfg)
	if err != nil {
		span.RecordError(err)
		return err
	}

	summary, err := harden(ctx, cfg, api, cmd.OutOrStdout())
	if summary != nil {
		span.SetAttributes(
			attribute.Int("zones.total", summary.Total),
			attribute.Int("zones.succeeded", summary.Succeeded),
		)
	}
	if err != nil {
		span.RecordError(err)
		return err
	}
	return nil
}

// loadConfig reads the environment and run file, applies flag overrides and validates.
func loadConfig(ctx context.Context, cmd *cobra.Command) (*config.Config, error) {
	cfg, err := config.Load(ctx, afero.NewOsFs(), configFile, nil)
	if err != nil {
		slog.Error("Failed to load configuration", "error", err, "file", configFile)
		return nil, err
	}

	if f := cmd.Flags().Lookup("zone-concurrency"); f != nil && f.Changed {
		cfg.Run.ZoneConcurrency = zoneConcurrency
	}

	if err := cfg.Validate(); err != nil {
		slog.Error("Invalid configuration", "error", err)
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return cfg, nil
}

// harden runs the whole flow against api, printing progress and the summary
// to out. Zone failures are reported in the summary; the error is reserved
// for an empty or failed enumeration and for interruption.
func harden(ctx context.Context, cfg *config.Config, api cloudflare.Client, out io.Writer) (*orchestrator.Summary, error) {
	a, err := newApp(ctx, cfg, api)
	if err != nil {
		return nil, err
	}

	ctx, cleanupStatus := status.StartHandler(ctx, statusPrintHandler(out))

	slog.Info("Starting run",
		"zone_concurrency", cfg.Run.ZoneConcurrency,
		"api_concurrency", a.apiLimiter.Capacity(),
		"requests_per_second", cfg.Run.Pacing(),
		"settings", a.registry.List(ctx))

	summary, err := a.orchestrator.Run(ctx)

	// Drain progress before printing the summary so lines do not interleave.
	cleanupStatus()

	if err != nil {
		if errors.Is(err, context.Canceled) {
			slog.Warn("Run interrupted by user")
		}
		if summary != nil && summary.Total > 0 {
			printSummary(out, summary)
		}
		return summary, err
	}

	printSummary(out, summary)
	return summary, nil
}

func printSummary(out io.Writer, summary *orchestrator.Summary) {
	fmt.Fprintf(out, "\nZones: %d total, %d succeeded, %d failed\n", summary.Total, summary.Succeeded, summary.Failed())
	fmt.Fprintf(out, "CAA records: %d created, %d already present, %d failed\n",
		summary.CAACreated, summary.CAASkipped, summary.CAAFailed)

	steps := make([]string, 0, len(summary.StepFailures))
	for step := range summary.StepFailures {
		steps = append(steps, step)
	}
	slices.Sort(steps)
	for _, step := range steps {
		fmt.Fprintf(out, "Setting %s failed on %d zones\n", step, summary.StepFailures[step])
	}

	if summary.Failed() > 0 {
		fmt.Fprintf(out, "Failed domains: %s\n", strings.Join(summary.FailedDomains, ", "))
	}
}
