// Package gateway turns chapter input into validated study packs, answers
// study questions and draws illustrations through the configured model
// providers.
package gateway

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"strings"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/abhisek/notepilot/internal/llm"
	"github.com/abhisek/notepilot/internal/logger"
	"github.com/abhisek/notepilot/internal/studypack"
)

// Config selects the image models.
type Config struct {
	// ImageModel serves 1K images.
	ImageModel string

	// ImageHDModel serves 2K and 4K images.
	ImageHDModel string
}

// ConfigFrom extracts the gateway settings from the provider configuration.
func ConfigFrom(cfg llm.Config) Config {
	return Config{ImageModel: cfg.Gemini.ImageModel, ImageHDModel: cfg.Gemini.ImageHDModel}
}

// Gateway is stateless across calls and safe for concurrent use.
type Gateway struct {
	text   llm.Provider
	images llm.ImageProvider
	cfg    Config
	log    *logger.Logger
	tracer trace.Tracer
}

// New creates a Gateway. A nil provider means its credential is missing and
// every call that needs it fails with *ConfigError.
func New(text llm.Provider, images llm.ImageProvider, cfg Config, log *logger.Logger) *Gateway {
	return &Gateway{
		text:   text,
		images: images,
		cfg:    cfg,
		log:    log,
		tracer: otel.Tracer("github.com/abhisek/notepilot/internal/gateway"),
	}
}

// WithImages returns a copy of g that draws images with p.
func (g *Gateway) WithImages(p llm.ImageProvider) *Gateway {
	out := *g
	out.images = p
	return &out
}

// CanGenerateImages reports whether an image provider is configured.
func (g *Gateway) CanGenerateImages() bool {
	return g.images != nil
}

// GeneratePack asks the model for a complete study pack for in.
func (g *Gateway) GeneratePack(ctx context.Context, in studypack.Input) (*studypack.StudyPackData, error) {
	in = in.Normalized()
	ctx, span := g.tracer.Start(ctx, "gateway.GeneratePack", trace.WithAttributes(
		attribute.String("pack.subject", in.Subject),
		attribute.String("pack.language", in.Language),
		attribute.Bool("pack.has_pdf", in.HasPDF()),
	))
	defer span.End()

	if g.text == nil {
		return nil, g.fail(span, "generate pack", &ConfigError{Service: "text"})
	}
	if err := in.Validate(); err != nil {
		return nil, g.fail(span, "generate pack", err)
	}

	start := time.Now()
	resp, err := g.text.Generate(llm.WithPurpose(ctx, llm.PurposeStudyPack), BuildPackRequest(in))
	if err != nil {
		return nil, g.fail(span, "generate pack", &ProviderError{Op: "generate pack", Err: err})
	}

	data, err := ParsePack(resp.Content)
	if err != nil {
		return nil, g.fail(span, "generate pack", err)
	}

	for _, s := range studypack.CountReport(*data) {
		g.log.Debug("section below target", "section", s.Section, "got", s.Got, "want", s.Want)
	}
	g.log.Info("study pack generated",
		"model", resp.Model,
		"latency_ms", time.Since(start).Milliseconds(),
		"has_pdf", in.HasPDF(),
	)
	return data, nil
}

// ParsePack turns raw model output into validated, normalized pack data.
func ParsePack(raw []byte) (*studypack.StudyPackData, error) {
	text := llm.StripCodeFences(string(raw))
	if text == "" {
		return nil, &EmptyResponseError{}
	}

	var generic any
	if err := json.Unmarshal([]byte(text), &generic); err != nil {
		return nil, &ParseError{Raw: text, Err: err}
	}

	if err := llm.Validate(StudyPackSchema, json.RawMessage(text)); err != nil {
		return nil, &SchemaMismatchError{Err: err}
	}

	var data studypack.StudyPackData
	if err := json.Unmarshal([]byte(text), &data); err != nil {
		return nil, &ParseError{Raw: text, Err: err}
	}

	data = studypack.Normalize(data)
	if vs := studypack.Validate(data); len(vs) > 0 {
		return nil, &SchemaMismatchError{Violations: vs}
	}
	return &data, nil
}

// Chat answers one study question. pinned, when set, is the fragment the
// question is about. history is informational: every call starts a fresh
// conversation.
func (g *Gateway) Chat(ctx context.Context, message, pinned string, history []studypack.ChatMessage) (string, error) {
	ctx, span := g.tracer.Start(ctx, "gateway.Chat", trace.WithAttributes(
		attribute.Bool("chat.pinned", pinned != ""),
		attribute.Int("chat.history", len(history)),
	))
	defer span.End()

	if g.text == nil {
		return "", g.fail(span, "chat", &ConfigError{Service: "text"})
	}

	resp, err := g.text.Generate(llm.WithPurpose(ctx, llm.PurposeChat), llm.Request{
		System:   chatSystemPrompt,
		Messages: []llm.Message{{Role: llm.RoleUser, Content: buildChatUserMessage(message, pinned)}},
	})
	if err != nil {
		return "", g.fail(span, "chat", &ProviderError{Op: "chat", Err: err})
	}

	reply := strings.TrimSpace(string(resp.Content))
	if reply == "" {
		return ChatFallbackReply, nil
	}
	return reply, nil
}

// GenerateImage draws a square illustration for prompt and returns it as a
// data URI.
func (g *Gateway) GenerateImage(ctx context.Context, prompt string, size studypack.ImageSize) (string, error) {
	ctx, span := g.tracer.Start(ctx, "gateway.GenerateImage", trace.WithAttributes(
		attribute.String("image.size", string(size)),
	))
	defer span.End()

	if g.images == nil {
		return "", g.fail(span, "generate image", &ImageGenerationError{Reason: "no image credential", Err: &ConfigError{Service: "image"}})
	}
	if strings.TrimSpace(prompt) == "" {
		return "", g.fail(span, "generate image", &ImageGenerationError{Reason: "empty prompt"})
	}
	if !size.Valid() {
		return "", g.fail(span, "generate image", &ImageGenerationError{Reason: "unknown size " + string(size)})
	}

	req := llm.ImageRequest{Prompt: prompt, AspectRatio: "1:1", Model: g.cfg.ImageModel}
	if size != studypack.ImageSize1K {
		req.Model = g.cfg.ImageHDModel
		req.ImageSize = string(size)
	}
	span.SetAttributes(attribute.String("image.model", req.Model))

	resp, err := g.images.GenerateImage(llm.WithPurpose(ctx, llm.PurposeImage), req)
	if err != nil {
		return "", g.fail(span, "generate image", &ImageGenerationError{Reason: "provider error", Err: err})
	}
	if len(resp.Data) == 0 {
		return "", g.fail(span, "generate image", &ImageGenerationError{Reason: "no image data found in response"})
	}

	return "data:image/png;base64," + base64.StdEncoding.EncodeToString(resp.Data), nil
}

func (g *Gateway) fail(span trace.Span, op string, err error) error {
	span.RecordError(err)
	span.SetStatus(codes.Error, err.Error())

	var in *studypack.InputError
	if errors.As(err, &in) {
		g.log.Debug(op+" rejected", "error_kind", Kind(err), "error", err)
		return err
	}
	g.log.Warn(op+" failed", "error_kind", Kind(err), "error", err)
	return err
}
