package main

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"
	"go.opentelemetry.io/otel"

	"github.com/nebari-dev/cfzones/pkg/processor"
	"github.com/nebari-dev/cfzones/pkg/settings"
)

const (
	version = "1.0.0"
	commit  = "dev"
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Show version information",
	Long:  `Display the version information for cfzones.`,
	RunE:  runVersion,
}

func runVersion(cmd *cobra.Command, args []string) error {
	ctx := context.Background()
	tracer := otel.Tracer("cfzones")
	ctx, span := tracer.Start(ctx, "cmd.version")
	defer span.End()

	slog.Debug("Version command executed", "version", version, "commit", commit)

	registry, err := settings.NewDefaultRegistry(ctx, settings.CertificateAuthoritySSLCom)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "cfzones\n")
	fmt.Fprintf(out, "Version: %s\n", version)
	fmt.Fprintf(out, "Commit: %s\n", commit)
	fmt.Fprintf(out, "Available settings: %v\n", registry.List(ctx))
	fmt.Fprintf(out, "Default certificate authorities: %d\n", len(processor.DefaultCAList))

	return nil
}
