package llm

import (
	"context"
	"fmt"

	"github.com/abhisek/notepilot/internal/logger"
	"github.com/abhisek/notepilot/internal/store"
)

// NewProvider creates the text Provider from configuration.
// It returns the provider wrapped with tracing, retry and logging middleware.
// Images get the same stack in NewImageProvider.
func NewProvider(ctx context.Context, cfg Config, eventRepo store.EventRepo, log *logger.Logger) (Provider, error) {
	var base Provider
	var err error

	switch cfg.Provider {
	case "anthropic":
		base, err = NewAnthropicProvider(cfg.Anthropic)
	case "openai":
		base, err = NewOpenAIProvider(cfg.OpenAI)
	case "gemini":
		base, err = NewGeminiProvider(ctx, cfg.Gemini)
	case "mock":
		return NewMockProvider(), nil
	default:
		return nil, fmt.Errorf("unknown LLM provider: %q", cfg.Provider)
	}
	if err != nil {
		return nil, fmt.Errorf("initializing %s provider: %w", cfg.Provider, err)
	}

	// Wrap with middleware: caller → tracing → retry → logging → base
	logged := WithLogging(base, cfg.Provider, eventRepo, log)
	retried := WithRetry(logged, cfg.Retry)

	return WithTracing(retried), nil
}

// NewImageProvider creates the ImageProvider. Images are always served by
// Gemini, whatever text provider is selected.
func NewImageProvider(ctx context.Context, cfg Config, eventRepo store.EventRepo, log *logger.Logger) (ImageProvider, error) {
	if cfg.Provider == "mock" {
		return NewMockProvider(), nil
	}
	if cfg.Gemini.APIKey == "" {
		return nil, &ErrUnsupportedInput{Provider: cfg.Provider, Feature: "image generation without a Gemini API key"}
	}

	base, err := NewGeminiProvider(ctx, cfg.Gemini)
	if err != nil {
		return nil, fmt.Errorf("initializing image provider: %w", err)
	}
	logged := WithImageLogging(base, "gemini", eventRepo, log)
	return WithImageTracing(WithImageRetry(logged, cfg.Retry)), nil
}
