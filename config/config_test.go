package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_DefaultsWithoutFile(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	t.Setenv("DATABASE_URL", "")
	t.Setenv("OLLAMA_BASE_URL", "")
	t.Setenv("SYSTEM_PROMPT", "")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, 1000, cfg.Processing.ChunkSize)
	assert.Equal(t, 150, cfg.Processing.ChunkOverlap)
	assert.Equal(t, 5, cfg.Processing.TopK)
	assert.Equal(t, 5, cfg.Watcher.DebounceSeconds)
	assert.Equal(t, 10, cfg.Chat.HistoryLimit)
	assert.Equal(t, 768, cfg.Vector.Dimension)
}

func TestLoad_ReadsConfigFile(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)
	t.Setenv("DATABASE_URL", "")
	t.Setenv("OLLAMA_BASE_URL", "")
	t.Setenv("SYSTEM_PROMPT", "")

	dir := filepath.Join(home, ".kbot")
	require.NoError(t, os.MkdirAll(dir, 0755))
	data := []byte(`
processing:
  chunk_size: 500
  chunk_overlap: 80
watcher:
  debounce_seconds: 2
`)
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.yaml"), data, 0644))

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, 500, cfg.Processing.ChunkSize)
	assert.Equal(t, 80, cfg.Processing.ChunkOverlap)
	assert.Equal(t, 2, cfg.Watcher.DebounceSeconds)
	// Unset keys keep their defaults.
	assert.Equal(t, 5, cfg.Processing.TopK)
}

func TestLoad_EnvOverrides(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	t.Setenv("DATABASE_URL", "postgres://override@db/kb")
	t.Setenv("OLLAMA_BASE_URL", "http://gpu-box:11434")
	t.Setenv("SYSTEM_PROMPT", "custom prompt")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "postgres://override@db/kb", cfg.Database.ConnectionString)
	assert.Equal(t, "http://gpu-box:11434", cfg.Ollama.BaseURL)
	assert.Equal(t, "custom prompt", cfg.Chat.SystemPrompt)
}

func TestLoad_VectorConnectionDefaultsToDatabase(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	t.Setenv("DATABASE_URL", "postgres://shared@db/kb")
	t.Setenv("OLLAMA_BASE_URL", "")
	t.Setenv("SYSTEM_PROMPT", "")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, cfg.Database.ConnectionString, cfg.Vector.ConnectionString)
}

func TestSaveAndLoadRoundTrip(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	t.Setenv("DATABASE_URL", "")
	t.Setenv("OLLAMA_BASE_URL", "")
	t.Setenv("SYSTEM_PROMPT", "")

	cfg := Default()
	cfg.Processing.TopK = 9
	require.NoError(t, cfg.Save())

	loaded, err := Load()
	require.NoError(t, err)
	assert.Equal(t, 9, loaded.Processing.TopK)
}
