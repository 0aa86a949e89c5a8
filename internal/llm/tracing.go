package llm

import (
	"context"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

const tracerName = "github.com/abhisek/notepilot/internal/llm"

// TracingProvider opens a span around every request. Spans go to the global
// tracer provider, which is a no-op unless tracing is configured.
type TracingProvider struct {
	inner  Provider
	tracer trace.Tracer
}

// WithTracing wraps a Provider with OpenTelemetry spans.
func WithTracing(p Provider) Provider {
	return &TracingProvider{inner: p, tracer: otel.Tracer(tracerName)}
}

func (t *TracingProvider) Generate(ctx context.Context, req Request) (*Response, error) {
	ctx, span := t.tracer.Start(ctx, "llm.Generate", trace.WithAttributes(
		attribute.String("llm.model", t.inner.ModelID()),
		attribute.String("llm.purpose", string(PurposeFrom(ctx))),
		attribute.Bool("llm.structured", req.Schema != nil),
	))
	defer span.End()

	resp, err := t.inner.Generate(ctx, req)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}
	span.SetAttributes(
		attribute.Int("llm.input_tokens", resp.Usage.InputTokens),
		attribute.Int("llm.output_tokens", resp.Usage.OutputTokens),
	)
	return resp, nil
}

func (t *TracingProvider) ModelID() string {
	return t.inner.ModelID()
}

// TracingImageProvider is the ImageProvider counterpart of TracingProvider.
type TracingImageProvider struct {
	inner  ImageProvider
	tracer trace.Tracer
}

// WithImageTracing wraps an ImageProvider with OpenTelemetry spans.
func WithImageTracing(p ImageProvider) ImageProvider {
	return &TracingImageProvider{inner: p, tracer: otel.Tracer(tracerName)}
}

func (t *TracingImageProvider) GenerateImage(ctx context.Context, req ImageRequest) (*ImageResponse, error) {
	ctx, span := t.tracer.Start(ctx, "llm.GenerateImage", trace.WithAttributes(
		attribute.String("llm.model", req.Model),
		attribute.String("llm.image_size", req.ImageSize),
	))
	defer span.End()

	resp, err := t.inner.GenerateImage(ctx, req)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}
	span.SetAttributes(attribute.Int("llm.image_bytes", len(resp.Data)))
	return resp, nil
}
