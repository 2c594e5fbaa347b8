package telemetry

import (
	"context"
	"fmt"
	"os"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracegrpc"
	"go.opentelemetry.io/otel/exporters/stdout/stdouttrace"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.4.0"
)

const (
	serviceName = "cfzones"

	defaultEndpoint = "localhost:4317"
)

// Exporter names accepted in OTEL_EXPORTER.
const (
	ExporterNone    = "none"
	ExporterConsole = "console"
	ExporterOTLP    = "otlp"
	ExporterBoth    = "both"
)

// Options selects where spans are exported.
type Options struct {
	Exporter string
	Endpoint string
	Version  string
}

// OptionsFromEnv reads OTEL_EXPORTER and OTEL_ENDPOINT.
func OptionsFromEnv(version string) Options {
	return Options{
		Exporter: os.Getenv("OTEL_EXPORTER"),
		Endpoint: os.Getenv("OTEL_ENDPOINT"),
		Version:  version,
	}
}

// Setup initializes OpenTelemetry and installs the global tracer provider.
// Packages obtain tracers from otel.Tracer; the returned func flushes and
// stops the provider.
// Exporter: "none" (default), "console", "otlp", or "both"
// Endpoint: OTLP endpoint (default: "localhost:4317")
func Setup(ctx context.Context, opts Options) (func(context.Context) error, error) {
	if opts.Exporter == "" {
		opts.Exporter = ExporterNone
	}
	if opts.Endpoint == "" {
		opts.Endpoint = defaultEndpoint
	}

	res, err := resource.New(ctx,
		resource.WithAttributes(
			semconv.ServiceNameKey.String(serviceName),
			semconv.ServiceVersionKey.String(opts.Version),
		),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create resource: %w", err)
	}

	exporters, err := newExporters(ctx, opts)
	if err != nil {
		return nil, err
	}

	tp := sdktrace.NewTracerProvider(
		sdktrace.WithResource(res),
	)
	for _, exporter := range exporters {
		tp.RegisterSpanProcessor(sdktrace.NewBatchSpanProcessor(exporter))
	}

	otel.SetTracerProvider(tp)

	shutdown := func(ctx context.Context) error {
		return tp.Shutdown(ctx)
	}

	return shutdown, nil
}

func newExporters(ctx context.Context, opts Options) ([]sdktrace.SpanExporter, error) {
	var exporters []sdktrace.SpanExporter

	console := opts.Exporter == ExporterConsole || opts.Exporter == ExporterBoth
	otlp := opts.Exporter == ExporterOTLP || opts.Exporter == ExporterBoth

	switch opts.Exporter {
	case ExporterNone, ExporterConsole, ExporterOTLP, ExporterBoth:
	default:
		return nil, fmt.Errorf("unknown OTEL_EXPORTER %q (valid: none, console, otlp, both)", opts.Exporter)
	}

	if console {
		// Spans go to stderr so they never mix with command output.
		consoleExporter, err := stdouttrace.New(
			stdouttrace.WithPrettyPrint(),
			stdouttrace.WithWriter(os.Stderr),
		)
		if err != nil {
			return nil, fmt.Errorf("failed to create console exporter: %w", err)
		}
		exporters = append(exporters, consoleExporter)
	}

	if otlp {
		otlpExporter, err := otlptracegrpc.New(ctx,
			otlptracegrpc.WithEndpoint(opts.Endpoint),
			otlptracegrpc.WithInsecure(),
		)
		if err != nil {
			return nil, fmt.Errorf("failed to create OTLP exporter: %w", err)
		}
		exporters = append(exporters, otlpExporter)
	}

	return exporters, nil
}
