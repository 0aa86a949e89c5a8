package llm

import (
	"fmt"
	"os"
	"time"
)

// Config holds all LLM provider configuration.
type Config struct {
	// Provider selects which LLM provider serves text and chat.
	// Values: "gemini", "anthropic", "openai", "mock".
	// Images are always served by Gemini.
	Provider string

	Anthropic AnthropicConfig
	OpenAI    OpenAIConfig
	Gemini    GeminiConfig
	Retry     RetryConfig

	// Timeout bounds a single request including retries. Zero leaves the
	// deadline to the transport.
	Timeout time.Duration
}

// AnthropicConfig holds Anthropic-specific configuration.
type AnthropicConfig struct {
	APIKey string
	Model  string // Default: "claude-sonnet"
}

// OpenAIConfig holds OpenAI-specific configuration.
type OpenAIConfig struct {
	APIKey  string
	Model   string // Default: "gpt-4o-mini"
	BaseURL string // Optional. Override for compatible APIs.
}

// GeminiConfig holds Gemini-specific configuration.
type GeminiConfig struct {
	APIKey string
	Model  string // Default: "gemini-flash"

	// ImageModel serves 1K images.
	ImageModel string // Default: "gemini-2.5-flash-image"

	// ImageHDModel serves 2K and 4K images.
	ImageHDModel string // Default: "gemini-3-pro-image-preview"
}

// RetryConfig configures retries of rate-limited, unavailable or timed out
// requests. MaxAttempts of 1 disables retries.
type RetryConfig struct {
	MaxAttempts int
	InitialWait time.Duration
	MaxWait     time.Duration
	Multiplier  float64
}

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() Config {
	return Config{
		Provider: "gemini",
		Anthropic: AnthropicConfig{
			Model: "claude-sonnet",
		},
		OpenAI: OpenAIConfig{
			Model: "gpt-4o-mini",
		},
		Gemini: GeminiConfig{
			Model:        "gemini-flash",
			ImageModel:   "gemini-2.5-flash-image",
			ImageHDModel: "gemini-3-pro-image-preview",
		},
		Retry: RetryConfig{
			MaxAttempts: 1,
			InitialWait: 1 * time.Second,
			MaxWait:     10 * time.Second,
			Multiplier:  2.0,
		},
	}
}

// ApplyEnv overrides cfg with NOTEPILOT_* environment variables and falls
// back to the conventional GEMINI_API_KEY and API_KEY for the Gemini key.
func ApplyEnv(cfg Config) Config {
	if p := os.Getenv("NOTEPILOT_LLM_PROVIDER"); p != "" {
		cfg.Provider = p
	}

	if k := os.Getenv("NOTEPILOT_ANTHROPIC_API_KEY"); k != "" {
		cfg.Anthropic.APIKey = k
	}
	if m := os.Getenv("NOTEPILOT_ANTHROPIC_MODEL"); m != "" {
		cfg.Anthropic.Model = m
	}

	if k := os.Getenv("NOTEPILOT_OPENAI_API_KEY"); k != "" {
		cfg.OpenAI.APIKey = k
	}
	if m := os.Getenv("NOTEPILOT_OPENAI_MODEL"); m != "" {
		cfg.OpenAI.Model = m
	}
	if u := os.Getenv("NOTEPILOT_OPENAI_BASE_URL"); u != "" {
		cfg.OpenAI.BaseURL = u
	}

	if k := firstEnv("NOTEPILOT_GEMINI_API_KEY", "GEMINI_API_KEY", "API_KEY"); k != "" {
		cfg.Gemini.APIKey = k
	}
	if m := os.Getenv("NOTEPILOT_GEMINI_MODEL"); m != "" {
		cfg.Gemini.Model = m
	}
	if m := os.Getenv("NOTEPILOT_GEMINI_IMAGE_MODEL"); m != "" {
		cfg.Gemini.ImageModel = m
	}
	if m := os.Getenv("NOTEPILOT_GEMINI_IMAGE_HD_MODEL"); m != "" {
		cfg.Gemini.ImageHDModel = m
	}

	return cfg
}

// ConfigFromEnv builds a Config from environment variables, falling back
// to defaults for unset values.
func ConfigFromEnv() Config {
	return ApplyEnv(DefaultConfig())
}

func firstEnv(keys ...string) string {
	for _, k := range keys {
		if v := os.Getenv(k); v != "" {
			return v
		}
	}
	return ""
}

// HasCredential reports whether the selected text provider has a key.
func (c Config) HasCredential() bool {
	return c.Validate() == nil
}

// HasImageCredential reports whether images can be generated.
func (c Config) HasImageCredential() bool {
	return c.Provider == "mock" || c.Gemini.APIKey != ""
}

// Validate checks that the selected provider has its required API key set.
func (c Config) Validate() error {
	switch c.Provider {
	case "anthropic":
		if c.Anthropic.APIKey == "" {
			return fmt.Errorf("NOTEPILOT_ANTHROPIC_API_KEY is required for the anthropic provider")
		}
	case "openai":
		if c.OpenAI.APIKey == "" {
			return fmt.Errorf("NOTEPILOT_OPENAI_API_KEY is required for the openai provider")
		}
	case "gemini":
		if c.Gemini.APIKey == "" {
			return fmt.Errorf("NOTEPILOT_GEMINI_API_KEY is required for the gemini provider")
		}
	case "mock":
		// No API key needed.
	default:
		return fmt.Errorf("unknown LLM provider: %q", c.Provider)
	}
	return nil
}
