package cmd

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/loglens/loglens/internal/config"
)

func TestConfigPathCmd_HonorsXDG(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", dir)

	out, err := run(t, "config", "path")
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "loglens", "config.yaml"), strings.TrimSpace(out))
}

func TestConfigInitCmd_WritesTemplate(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", dir)

	out, err := run(t, "config", "init")
	require.NoError(t, err)
	assert.Contains(t, out, "created")

	path := filepath.Join(dir, "loglens", "config.yaml")
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "chunk_size_kb")

	// The template must load and validate as-is.
	cfg, err := config.Load(path)
	require.NoError(t, err)
	assert.Equal(t, "discard", cfg.Ingest.Retention)
}

func TestConfigInitCmd_RefusesOverwrite(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", dir)

	_, err := run(t, "config", "init")
	require.NoError(t, err)

	path := filepath.Join(dir, "loglens", "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("ingest:\n  chunk_size_kb: 512\n"), 0o644))

	out, err := run(t, "config", "init")
	require.NoError(t, err)
	assert.Contains(t, out, "already exists")

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "512", "existing config must be preserved")
}

func TestConfigShowCmd_JSON(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())

	out, err := run(t, "config", "show", "--json", "--chunk-size", "128")
	require.NoError(t, err)

	var cfg config.Config
	require.NoError(t, json.Unmarshal([]byte(out), &cfg))
	assert.Equal(t, 128, cfg.Ingest.ChunkSizeKB, "flag override must be reflected")
}
