package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func clearEnv(t *testing.T) {
	t.Helper()
	for _, k := range []string{
		"NOTEPILOT_STORE", "NOTEPILOT_DB", "NOTEPILOT_REDIS_ADDR", "NOTEPILOT_LOG_MODE",
		"NOTEPILOT_LOG_FILE", "NOTEPILOT_LLM_PROVIDER", "NOTEPILOT_GEMINI_API_KEY",
		"NOTEPILOT_GEMINI_MODEL", "GEMINI_API_KEY", "API_KEY",
	} {
		t.Setenv(k, "")
	}
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())
	// Keep a stray .env in the package directory out of the test.
	t.Chdir(t.TempDir())
}

func TestLoad_Defaults(t *testing.T) {
	clearEnv(t)

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, "sqlite", cfg.Store.Backend)
	assert.Equal(t, "prod", cfg.Log.Mode)
	require.NoError(t, cfg.Validate())

	lc := cfg.LLMConfig()
	assert.Equal(t, "gemini", lc.Provider)
	assert.Equal(t, "gemini-flash", lc.Gemini.Model)
	assert.Equal(t, 1, lc.Retry.MaxAttempts)
	assert.False(t, lc.HasCredential())
}

func TestLoad_FileThenEnv(t *testing.T) {
	clearEnv(t)

	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
llm:
  provider: anthropic
  anthropic:
    api_key: file-key
  gemini:
    model: gemini-pro
  retry_attempts: 3
  timeout: 90s
store:
  backend: redis
  redis_addr: cache:6379
log:
  mode: dev
trace: stdout
`), 0o644))

	t.Setenv("NOTEPILOT_REDIS_ADDR", "env-cache:6379")
	t.Setenv("NOTEPILOT_GEMINI_API_KEY", "env-gemini")

	cfg, err := Load(path)
	require.NoError(t, err)
	require.NoError(t, cfg.Validate())

	assert.Equal(t, "redis", cfg.Store.Backend)
	assert.Equal(t, "env-cache:6379", cfg.Store.RedisAddr)
	assert.Equal(t, "dev", cfg.Log.Mode)
	assert.Equal(t, "stdout", cfg.Trace)

	lc := cfg.LLMConfig()
	assert.Equal(t, "anthropic", lc.Provider)
	assert.Equal(t, "file-key", lc.Anthropic.APIKey)
	assert.Equal(t, "gemini-pro", lc.Gemini.Model)
	assert.Equal(t, "env-gemini", lc.Gemini.APIKey)
	assert.Equal(t, 3, lc.Retry.MaxAttempts)
	assert.Equal(t, 90*time.Second, lc.Timeout)
	assert.True(t, lc.HasImageCredential())
}

func TestLoad_DotEnv(t *testing.T) {
	clearEnv(t)
	require.NoError(t, os.WriteFile(".env", []byte("NOTEPILOT_STORE=redis\n"), 0o644))
	t.Cleanup(func() { os.Unsetenv("NOTEPILOT_STORE") })
	os.Unsetenv("NOTEPILOT_STORE")

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, "redis", cfg.Store.Backend)
}

func TestLoad_MissingExplicitFile(t *testing.T) {
	clearEnv(t)
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.Error(t, err)
}

func TestValidate(t *testing.T) {
	cfg := Default()
	cfg.Store.Backend = "mongo"
	assert.Error(t, cfg.Validate())

	cfg = Default()
	cfg.Trace = "jaeger"
	assert.Error(t, cfg.Validate())

	cfg = Default()
	cfg.LLM.Timeout = "soon"
	assert.Error(t, cfg.Validate())
}
