package llm

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/abhisek/notepilot/internal/logger"
	"github.com/abhisek/notepilot/internal/store"
)

// LoggingProvider is a decorator that records every LLM request as an event.
type LoggingProvider struct {
	inner     Provider
	provider  string
	eventRepo store.EventRepo
	log       *logger.Logger
}

// WithLogging wraps a Provider with event logging. provider names the
// backend ("gemini", "anthropic", ...) in the event log.
func WithLogging(p Provider, provider string, repo store.EventRepo, log *logger.Logger) Provider {
	return &LoggingProvider{inner: p, provider: provider, eventRepo: repo, log: log}
}

func (l *LoggingProvider) Generate(ctx context.Context, req Request) (*Response, error) {
	start := time.Now()
	purpose := PurposeFrom(ctx)
	attempt := AttemptFrom(ctx)

	resp, err := l.inner.Generate(ctx, req)

	data := store.LLMRequestEventData{
		Provider:    l.provider,
		Model:       l.inner.ModelID(),
		Purpose:     string(purpose),
		LatencyMs:   time.Since(start).Milliseconds(),
		Success:     err == nil,
		RequestBody: serializeRequest(req),
	}

	if resp != nil {
		data.InputTokens = resp.Usage.InputTokens
		data.OutputTokens = resp.Usage.OutputTokens
		data.Model = resp.Model
		data.ResponseBody = string(resp.Content)
	}

	if err != nil {
		data.ErrorMessage = err.Error()
	}

	l.record(ctx, data, attempt)
	return resp, err
}

func (l *LoggingProvider) ModelID() string {
	return l.inner.ModelID()
}

// record logs the event but never fails the request.
func (l *LoggingProvider) record(ctx context.Context, data store.LLMRequestEventData, attempt int) {
	l.log.Debug("llm request",
		"provider", data.Provider,
		"model", data.Model,
		"purpose", data.Purpose,
		"attempt", attempt,
		"latency_ms", data.LatencyMs,
		"input_tokens", data.InputTokens,
		"output_tokens", data.OutputTokens,
		"success", data.Success,
	)
	if l.eventRepo == nil {
		return
	}
	if err := l.eventRepo.AppendLLMRequest(ctx, data); err != nil {
		l.log.Warn("failed to log LLM request event", "error", err)
	}
}

// LoggingImageProvider records image requests the same way.
type LoggingImageProvider struct {
	inner ImageProvider
	rec   *LoggingProvider
}

// WithImageLogging wraps an ImageProvider with event logging.
func WithImageLogging(p ImageProvider, provider string, repo store.EventRepo, log *logger.Logger) ImageProvider {
	return &LoggingImageProvider{
		inner: p,
		rec:   &LoggingProvider{provider: provider, eventRepo: repo, log: log},
	}
}

func (l *LoggingImageProvider) GenerateImage(ctx context.Context, req ImageRequest) (*ImageResponse, error) {
	start := time.Now()
	resp, err := l.inner.GenerateImage(ctx, req)

	data := store.LLMRequestEventData{
		Provider:    l.rec.provider,
		Model:       req.Model,
		Purpose:     string(PurposeFrom(ctx)),
		LatencyMs:   time.Since(start).Milliseconds(),
		Success:     err == nil,
		RequestBody: fmt.Sprintf("[image %s %s]\n%s", req.AspectRatio, req.ImageSize, req.Prompt),
	}
	if resp != nil {
		data.Model = resp.Model
		data.InputTokens = resp.Usage.InputTokens
		data.OutputTokens = resp.Usage.OutputTokens
		data.ResponseBody = payloadPlaceholder(len(resp.Data), resp.MIMEType)
	}
	if err != nil {
		data.ErrorMessage = err.Error()
	}

	l.rec.record(ctx, data, AttemptFrom(ctx))
	return resp, err
}

// serializeRequest builds a readable representation of the LLM request.
// Attachment payloads are replaced by their size.
func serializeRequest(req Request) string {
	var b strings.Builder

	if req.System != "" {
		b.WriteString("[system]\n")
		b.WriteString(req.System)
		b.WriteString("\n\n")
	}

	for _, m := range req.Messages {
		b.WriteString(fmt.Sprintf("[%s]\n", m.Role))
		b.WriteString(m.Content)
		b.WriteString("\n")
		for _, a := range m.Attachments {
			b.WriteString(payloadPlaceholder(base64Len(a.Data), a.MIMEType))
			b.WriteString("\n")
		}
		b.WriteString("\n")
	}

	if req.Schema != nil {
		schemaDef, err := json.Marshal(req.Schema.Definition)
		if err == nil {
			b.WriteString(fmt.Sprintf("[schema: %s]\n", req.Schema.Name))
			b.WriteString(string(schemaDef))
			b.WriteString("\n")
		}
	}

	return b.String()
}

func payloadPlaceholder(n int, mimeType string) string {
	return fmt.Sprintf("<%d bytes %s>", n, mimeType)
}

// base64Len returns the decoded size of a standard base64 string.
func base64Len(s string) int {
	n := len(s) / 4 * 3
	if strings.HasSuffix(s, "==") {
		n -= 2
	} else if strings.HasSuffix(s, "=") {
		n--
	}
	return n
}
