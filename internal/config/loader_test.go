package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, ":8080", cfg.Server.Addr)
	assert.Equal(t, "spendsense.db", cfg.Storage.DBPath)
	assert.Equal(t, "gemini-2.0-flash", cfg.LLM.Model)
	assert.Equal(t, 30, cfg.LLM.TimeoutSeconds)
	assert.Equal(t, "text-embedding-3-small", cfg.Embedding.Model)
	assert.Equal(t, 0.75, cfg.Articles.SimilarityThreshold)
	assert.False(t, cfg.Worker.Enabled)
	assert.Equal(t, "0 2 * * *", cfg.Worker.CronSpec)
}

func TestLoad_ConfigFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	content := `
server:
  addr: ":9090"
storage:
  db_path: "/tmp/test.db"
llm:
  model: "gemini-2.0-pro"
worker:
  enabled: true
  cron_spec: "30 3 * * *"
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, ":9090", cfg.Server.Addr)
	assert.Equal(t, "/tmp/test.db", cfg.Storage.DBPath)
	assert.Equal(t, "gemini-2.0-pro", cfg.LLM.Model)
	assert.True(t, cfg.Worker.Enabled)
	assert.Equal(t, "30 3 * * *", cfg.Worker.CronSpec)

	// Unset keys keep their defaults.
	assert.Equal(t, 30, cfg.LLM.TimeoutSeconds)
	assert.Equal(t, 0.75, cfg.Articles.SimilarityThreshold)
}

func TestLoad_EnvOverrides(t *testing.T) {
	t.Setenv("SPENDSENSE_SERVER_ADDR", ":7070")
	t.Setenv("SPENDSENSE_LLM_API_KEY", "test-key")

	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, ":7070", cfg.Server.Addr)
	assert.Equal(t, "test-key", cfg.LLM.APIKey)
}

func TestLoad_VendorKeyFallback(t *testing.T) {
	t.Setenv("GEMINI_API_KEY", "gemini-key")
	t.Setenv("OPENAI_API_KEY", "openai-key")

	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, "gemini-key", cfg.LLM.APIKey)
	assert.Equal(t, "openai-key", cfg.Embedding.APIKey)
}

func TestLoad_ExplicitKeyBeatsVendorVar(t *testing.T) {
	t.Setenv("SPENDSENSE_LLM_API_KEY", "explicit-key")
	t.Setenv("GEMINI_API_KEY", "vendor-key")

	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, "explicit-key", cfg.LLM.APIKey)
}

func TestLoad_MissingFileFallsBackToDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	require.NoError(t, err)
	assert.Equal(t, ":8080", cfg.Server.Addr)
}
