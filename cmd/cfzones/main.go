package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/google/uuid"
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/nebari-dev/cfzones/pkg/logging"
	"github.com/nebari-dev/cfzones/pkg/telemetry"
)

var (
	configFile      string
	logDir          string
	logLevel        string
	logFormat       string
	zoneConcurrency int

	// runID tags every log record of one invocation.
	runID = uuid.New().String()

	// closeLogs flushes file sinks opened in PersistentPreRunE.
	closeLogs = func() error { return nil }

	// Root command
	rootCmd = &cobra.Command{
		Use:   "cfzones",
		Short: "Harden every Cloudflare zone on an account",
		Long: `cfzones lists every zone on a Cloudflare account and, for each one,
creates CAA records authorizing a fixed list of certificate authorities, then
applies the selected zone settings (Universal SSL certificate authority,
Tiered Cache Smart Topology).

Credentials are read from CLOUDFLARE_EMAIL and CLOUDFLARE_API_KEY, or from a
.env file in the working directory. Set ZONE_ID and RECORD_NAME to process a
single zone without listing.`,
		SilenceUsage:      true,
		PersistentPreRunE: setupLogging,
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			if err := closeLogs(); err != nil {
				slog.Error("Failed to close log files", "error", err)
			}
		},
		RunE: runHarden,
	}
)

func init() {
	// Load .env file if it exists (silently ignore if not found)
	_ = godotenv.Load()

	flags := rootCmd.PersistentFlags()
	flags.StringVarP(&configFile, "config", "c", "", "Path to a YAML run file")
	flags.StringVar(&logDir, "log-dir", "", "Directory for combined.log and error.log (disabled when empty)")
	flags.StringVar(&logLevel, "log-level", "info", "Log level: debug, info, warn, error")
	flags.StringVar(&logFormat, "log-format", logging.FormatJSON, "Console log format: json or text")

	rootCmd.Flags().IntVar(&zoneConcurrency, "zone-concurrency", 0, "Zones processed at once (overrides the run file)")

	rootCmd.AddCommand(zonesCmd)
	rootCmd.AddCommand(versionCmd)
}

func setupLogging(cmd *cobra.Command, args []string) error {
	level, err := logging.ParseLevel(logLevel)
	if err != nil {
		return err
	}

	logger, closeFn, err := logging.New(logging.Options{
		Level:  level,
		Format: logFormat,
		Dir:    logDir,
	})
	if err != nil {
		return err
	}

	closeLogs = closeFn
	slog.SetDefault(logger.With("run_id", runID))
	return nil
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Setup OpenTelemetry
	shutdown, err := telemetry.Setup(ctx, telemetry.OptionsFromEnv(version))
	if err != nil {
		slog.Error("Failed to setup telemetry", "error", err)
		os.Exit(1)
	}

	err = rootCmd.ExecuteContext(ctx)

	// Flush spans even when the run was interrupted.
	if shutdownErr := shutdown(context.WithoutCancel(ctx)); shutdownErr != nil {
		slog.Error("Failed to shutdown telemetry", "error", shutdownErr)
	}

	if err != nil {
		slog.Error("Command execution failed", "error", err)
		stop()
		os.Exit(1)
	}
}
