package main

import (
	"context"
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/spf13/cobra"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"

	"github.com/nebari-dev/cfzones/pkg/cloudflare"
	"github.com/nebari-dev/cfzones/pkg/config"
	"github.com/nebari-dev/cfzones/pkg/zones"
)

var zonesCmd = &cobra.Command{
	Use:   "zones",
	Short: "List the zones a run would process",
	Long: `List every zone visible to the configured account, in the order a run
would process them. Nothing is modified.`,
	Args: cobra.NoArgs,
	RunE: runZones,
}

func runZones(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	tracer := otel.Tracer("cfzones")
	ctx, span := tracer.Start(ctx, "cmd.zones")
	defer span.End()

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

	zoneMap, err := listZones(ctx, cfg, api)
	if err != nil {
		span.RecordError(err)
		return err
	}

	span.SetAttributes(attribute.Int("zones.count", zoneMap.Len()))

	return printZones(cmd.OutOrStdout(), zoneMap)
}

// listZones enumerates the zones through the guarded client.
func listZones(ctx context.Context, cfg *config.Config, api cloudflare.Client) (*zones.Map, error) {
	client, _ := guardClient(cfg.Run, api)
	return zones.NewEnumerator(client, enumeratorConfig(cfg.Run)).Map(ctx)
}

func printZones(out io.Writer, zoneMap *zones.Map) error {
	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	_, _ = fmt.Fprintln(w, "NAME\tID")
	for name, id := range zoneMap.All() {
		_, _ = fmt.Fprintf(w, "%s\t%s\n", name, id)
	}
	return w.Flush()
}
