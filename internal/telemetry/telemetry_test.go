package telemetry

import (
	"bytes"
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel"

	"github.com/abhisek/notepilot/internal/logger"
)

func TestInit_Disabled(t *testing.T) {
	shutdown, err := Init(Options{}, logger.Nop())
	require.NoError(t, err)
	assert.NoError(t, shutdown(context.Background()))
}

func TestInit_UnknownExporter(t *testing.T) {
	_, err := Init(Options{Exporter: "zipkin"}, logger.Nop())
	assert.Error(t, err)
}

func TestInit_StdoutExportsSpans(t *testing.T) {
	prev := otel.GetTracerProvider()
	t.Cleanup(func() { otel.SetTracerProvider(prev) })

	var buf bytes.Buffer
	shutdown, err := Init(Options{Exporter: "stdout", Writer: &buf, Version: "test"}, logger.Nop())
	require.NoError(t, err)

	_, span := otel.Tracer("telemetry-test").Start(context.Background(), "unit.span")
	span.End()

	require.NoError(t, shutdown(context.Background()))
	assert.Contains(t, buf.String(), "unit.span")
	assert.Contains(t, buf.String(), "notepilot")
}
