// Package config loads notepilot settings from an optional YAML file, a
// .env file and the environment, in increasing priority.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"github.com/abhisek/notepilot/internal/llm"
)

// Config is the full application configuration.
type Config struct {
	LLM   LLMConfig   `yaml:"llm"`
	Store StoreConfig `yaml:"store"`
	Log   LogConfig   `yaml:"log"`

	// Trace selects the span exporter: "stdout" or empty for none.
	Trace string `yaml:"trace"`
}

// LLMConfig mirrors llm.Config in file form. Empty fields keep the llm
// defaults.
type LLMConfig struct {
	Provider string `yaml:"provider"`

	Gemini struct {
		APIKey       string `yaml:"api_key"`
		Model        string `yaml:"model"`
		ImageModel   string `yaml:"image_model"`
		ImageHDModel string `yaml:"image_hd_model"`
	} `yaml:"gemini"`

	Anthropic struct {
		APIKey string `yaml:"api_key"`
		Model  string `yaml:"model"`
	} `yaml:"anthropic"`

	OpenAI struct {
		APIKey  string `yaml:"api_key"`
		Model   string `yaml:"model"`
		BaseURL string `yaml:"base_url"`
	} `yaml:"openai"`

	RetryAttempts int    `yaml:"retry_attempts"`
	Timeout       string `yaml:"timeout"`
}

// StoreConfig selects the persistence backend.
type StoreConfig struct {
	Backend   string `yaml:"backend"` // "sqlite" (default) or "redis"
	DB        string `yaml:"db"`
	RedisAddr string `yaml:"redis_addr"`
}

// LogConfig configures the application logger.
type LogConfig struct {
	Mode string `yaml:"mode"` // "dev" or "prod"
	File string `yaml:"file"`
}

// Default returns the configuration used when nothing is set.
func Default() *Config {
	return &Config{
		LLM:   LLMConfig{Provider: "gemini"},
		Store: StoreConfig{Backend: "sqlite", RedisAddr: "localhost:6379"},
		Log:   LogConfig{Mode: "prod"},
	}
}

// DefaultPath returns $XDG_CONFIG_HOME/notepilot/config.yaml or the
// ~/.config equivalent.
func DefaultPath() string {
	dir := os.Getenv("XDG_CONFIG_HOME")
	if dir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return ""
		}
		dir = filepath.Join(home, ".config")
	}
	return filepath.Join(dir, "notepilot", "config.yaml")
}

// Load reads path (or DefaultPath when empty), then .env, then the
// environment. A missing default file is not an error; a missing explicit
// one is.
func Load(path string) (*Config, error) {
	cfg := Default()

	explicit := path != ""
	if !explicit {
		path = DefaultPath()
	}

	if path != "" {
		data, err := os.ReadFile(path)
		switch {
		case err == nil:
			if err := yaml.Unmarshal(data, cfg); err != nil {
				return nil, fmt.Errorf("parse config %s: %w", path, err)
			}
		case errors.Is(err, fs.ErrNotExist) && !explicit:
		default:
			return nil, fmt.Errorf("read config: %w", err)
		}
	}

	// .env never overrides variables already set in the environment.
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("load .env: %w", err)
	}

	cfg.applyEnvOverrides()
	return cfg, nil
}

func (c *Config) applyEnvOverrides() {
	if v := os.Getenv("NOTEPILOT_STORE"); v != "" {
		c.Store.Backend = v
	}
	if v := os.Getenv("NOTEPILOT_DB"); v != "" {
		c.Store.DB = v
	}
	if v := os.Getenv("NOTEPILOT_REDIS_ADDR"); v != "" {
		c.Store.RedisAddr = v
	}
	if v := os.Getenv("NOTEPILOT_LOG_MODE"); v != "" {
		c.Log.Mode = v
	}
	if v := os.Getenv("NOTEPILOT_LOG_FILE"); v != "" {
		c.Log.File = v
	}
	if v, ok := os.LookupEnv("NOTEPILOT_TRACE"); ok {
		c.Trace = v
	}
}

// Validate checks the enumerated settings.
func (c *Config) Validate() error {
	switch c.Store.Backend {
	case "sqlite", "redis":
	default:
		return fmt.Errorf("unknown store backend %q", c.Store.Backend)
	}
	switch c.Trace {
	case "", "stdout":
	default:
		return fmt.Errorf("unknown trace exporter %q", c.Trace)
	}
	if _, err := c.timeout(); err != nil {
		return err
	}
	return nil
}

func (c *Config) timeout() (time.Duration, error) {
	if c.LLM.Timeout == "" {
		return 0, nil
	}
	d, err := time.ParseDuration(c.LLM.Timeout)
	if err != nil {
		return 0, fmt.Errorf("invalid llm timeout %q: %w", c.LLM.Timeout, err)
	}
	return d, nil
}

// LLMConfig returns the provider configuration: llm defaults, overlaid by
// the file, overlaid by NOTEPILOT_* variables.
func (c *Config) LLMConfig() llm.Config {
	out := llm.DefaultConfig()
	f := c.LLM

	set := func(dst *string, v string) {
		if v != "" {
			*dst = v
		}
	}
	set(&out.Provider, f.Provider)
	set(&out.Gemini.APIKey, f.Gemini.APIKey)
	set(&out.Gemini.Model, f.Gemini.Model)
	set(&out.Gemini.ImageModel, f.Gemini.ImageModel)
	set(&out.Gemini.ImageHDModel, f.Gemini.ImageHDModel)
	set(&out.Anthropic.APIKey, f.Anthropic.APIKey)
	set(&out.Anthropic.Model, f.Anthropic.Model)
	set(&out.OpenAI.APIKey, f.OpenAI.APIKey)
	set(&out.OpenAI.Model, f.OpenAI.Model)
	set(&out.OpenAI.BaseURL, f.OpenAI.BaseURL)

	if f.RetryAttempts > 0 {
		out.Retry.MaxAttempts = f.RetryAttempts
	}
	if d, err := c.timeout(); err == nil {
		out.Timeout = d
	}

	return llm.ApplyEnv(out)
}
