// Package telemetry installs the global OpenTelemetry tracer provider.
package telemetry

import (
	"context"
	"fmt"
	"io"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/stdout/stdouttrace"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"

	"github.com/abhisek/notepilot/internal/logger"
)

// Options configures Init.
type Options struct {
	// Exporter is "stdout" or empty to disable tracing.
	Exporter string

	// Writer receives exported spans. The TUI owns stdout, so callers
	// usually pass a file.
	Writer io.Writer

	Version string
}

// ShutdownFunc flushes and stops the tracer provider.
type ShutdownFunc func(context.Context) error

func noop(context.Context) error { return nil }

// Init installs a tracer provider for opts. With tracing disabled the
// global no-op provider stays in place and the returned func does nothing.
func Init(opts Options, log *logger.Logger) (ShutdownFunc, error) {
	switch opts.Exporter {
	case "":
		return noop, nil
	case "stdout":
	default:
		return nil, fmt.Errorf("unknown trace exporter %q", opts.Exporter)
	}

	exportOpts := []stdouttrace.Option{stdouttrace.WithPrettyPrint()}
	if opts.Writer != nil {
		exportOpts = append(exportOpts, stdouttrace.WithWriter(opts.Writer))
	}
	exp, err := stdouttrace.New(exportOpts...)
	if err != nil {
		return nil, fmt.Errorf("create span exporter: %w", err)
	}

	res := resource.NewSchemaless(
		attribute.String("service.name", "notepilot"),
		attribute.String("service.version", opts.Version),
	)

	tp := sdktrace.NewTracerProvider(
		sdktrace.WithBatcher(exp, sdktrace.WithBatchTimeout(5*time.Second)),
		sdktrace.WithResource(res),
	)
	otel.SetTracerProvider(tp)
	log.Debug("tracing initialized", "exporter", opts.Exporter)

	return tp.Shutdown, nil
}
