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
	for _, k := range []string{"OPENAI_API_KEY", "GLOW_API_KEY", "GLOW_BASE_URL", "GLOW_MODEL", "GLOW_LOG_LEVEL"} {
		t.Setenv(k, "")
	}
}

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()
	assert.Equal(t, "gpt-4o", cfg.LLM.Model)
	assert.Equal(t, int64(300), cfg.LLM.MaxTokens)
	assert.True(t, cfg.Chat.ContextTracking)
	assert.True(t, cfg.Chat.ShowHistory)
	assert.Contains(t, cfg.Chat.Keywords, "shampoo")
	assert.Equal(t, "Thinking...", cfg.Chat.PendingText)
}

func TestLoad_MissingFileReturnsDefaults(t *testing.T) {
	clearEnv(t)
	cfg, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	require.NoError(t, err)
	assert.Equal(t, DefaultConfig().LLM, cfg.LLM)
}

func TestConfig_SaveLoad(t *testing.T) {
	clearEnv(t)
	path := filepath.Join(t.TempDir(), "nested", "config.yaml")

	cfg := DefaultConfig()
	cfg.LLM.APIKey = "sk-test"
	cfg.Chat.ContextTracking = false
	cfg.Chat.Keywords = []string{"lipstick"}
	require.NoError(t, cfg.Save(path))

	loaded, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "sk-test", loaded.LLM.APIKey)
	assert.False(t, loaded.Chat.ContextTracking)
	assert.Equal(t, []string{"lipstick"}, loaded.Chat.Keywords)
}

func TestLoad_PartialFileKeepsDefaults(t *testing.T) {
	clearEnv(t)
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("llm:\n  model: gpt-4o-mini\n"), 0o600))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "gpt-4o-mini", cfg.LLM.Model)
	assert.Equal(t, int64(300), cfg.LLM.MaxTokens)
	assert.NotEmpty(t, cfg.Chat.Keywords)
}

func TestLoad_InvalidYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("llm: [unclosed"), 0o600))

	_, err := Load(path)
	assert.Error(t, err)
}

func TestConfig_EnvOverrides(t *testing.T) {
	clearEnv(t)
	t.Setenv("OPENAI_API_KEY", "env-openai")
	t.Setenv("GLOW_MODEL", "gpt-4.1")
	t.Setenv("GLOW_BASE_URL", "http://localhost:9999/v1")

	cfg, err := Load(filepath.Join(t.TempDir(), "config.yaml"))
	require.NoError(t, err)
	assert.Equal(t, "env-openai", cfg.LLM.APIKey)
	assert.Equal(t, "gpt-4.1", cfg.LLM.Model)
	assert.Equal(t, "http://localhost:9999/v1", cfg.LLM.BaseURL)

	t.Setenv("GLOW_API_KEY", "env-glow")
	cfg, err = Load(filepath.Join(t.TempDir(), "config.yaml"))
	require.NoError(t, err)
	assert.Equal(t, "env-glow", cfg.LLM.APIKey)
}

func TestValidate(t *testing.T) {
	cfg := DefaultConfig()
	cfg.LLM.APIKey = "sk"
	require.NoError(t, cfg.Validate())

	cfg.LLM.APIKey = ""
	cfg.LLM.MaxTokens = 0
	cfg.LLM.Timeout = "soon"
	cfg.Chat.Keywords = nil
	err := cfg.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "api_key")
	assert.Contains(t, err.Error(), "max_tokens")
	assert.Contains(t, err.Error(), "llm.timeout")
	assert.Contains(t, err.Error(), "keywords")
}

func TestRequestTimeout(t *testing.T) {
	cfg := DefaultConfig()
	d, err := cfg.RequestTimeout()
	require.NoError(t, err)
	assert.Equal(t, 60*time.Second, d)

	cfg.LLM.Timeout = ""
	d, err = cfg.RequestTimeout()
	require.NoError(t, err)
	assert.Zero(t, d)
}

func TestSessionTTL(t *testing.T) {
	cfg := DefaultConfig()
	d, err := cfg.SessionTTL()
	require.NoError(t, err)
	assert.Equal(t, 30*time.Minute, d)
	assert.Equal(t, 1000, cfg.Server.MaxSessions)

	cfg.Server.SessionTTL = ""
	d, err = cfg.SessionTTL()
	require.NoError(t, err)
	assert.Zero(t, d)

	cfg.LLM.APIKey = "sk"
	cfg.Server.SessionTTL = "-5m"
	cfg.Server.MaxSessions = -1
	err = cfg.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "server.session_ttl")
	assert.Contains(t, err.Error(), "server.max_sessions")

	cfg.Server.SessionTTL = "later"
	_, err = cfg.SessionTTL()
	assert.ErrorContains(t, err, "server.session_ttl")
}
