package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	lenserr "github.com/loglens/loglens/internal/errors"
)

func TestDefault_IsValid(t *testing.T) {
	cfg := Default()

	require.NoError(t, cfg.Validate())
	assert.Equal(t, 256, cfg.Ingest.ChunkSizeKB)
	assert.Equal(t, "discard", cfg.Ingest.Retention)
	assert.Equal(t, 256*1024, cfg.ChunkSize())
}

func TestLoad_ExplicitFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	content := `
ingest:
  chunk_size_kb: 64
  retention: retain-all
search:
  max_results: 50
logging:
  level: debug
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, 64, cfg.Ingest.ChunkSizeKB)
	assert.Equal(t, "retain-all", cfg.Ingest.Retention)
	assert.Equal(t, 50, cfg.Search.MaxResults)
	assert.Equal(t, "debug", cfg.Logging.Level)
	// Unspecified keys keep defaults.
	assert.Equal(t, 1000, cfg.Ingest.FollowPollMS)
}

func TestLoad_ExplicitFileMissing(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))

	require.Error(t, err)
	assert.Equal(t, lenserr.ErrCodeConfigNotFound, lenserr.GetCode(err))
}

func TestLoad_MalformedYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.yaml")
	require.NoError(t, os.WriteFile(path, []byte("ingest: [not a map"), 0o644))

	_, err := Load(path)
	require.Error(t, err)
	assert.Equal(t, lenserr.ErrCodeConfigInvalid, lenserr.GetCode(err))
}

func TestLoad_EnvOverrides(t *testing.T) {
	t.Setenv("LOGLENS_CHUNK_SIZE_KB", "128")
	t.Setenv("LOGLENS_RETENTION", "retain-all")
	t.Setenv("LOGLENS_LOG_LEVEL", "warn")

	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("ingest:\n  chunk_size_kb: 64\n"), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)

	// Env beats file.
	assert.Equal(t, 128, cfg.Ingest.ChunkSizeKB)
	assert.Equal(t, "retain-all", cfg.Ingest.Retention)
	assert.Equal(t, "warn", cfg.Logging.Level)
}

func TestLoad_BadEnvIntIgnored(t *testing.T) {
	t.Setenv("LOGLENS_CHUNK_SIZE_KB", "not-a-number")

	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("{}"), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, 256, cfg.Ingest.ChunkSizeKB)
}

func TestUserConfigPath_HonorsXDG(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", "/tmp/xdg")

	assert.Equal(t, filepath.Join("/tmp/xdg", "loglens", "config.yaml"), UserConfigPath())
}

func TestValidate_Rejections(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"zero chunk size", func(c *Config) { c.Ingest.ChunkSizeKB = 0 }},
		{"negative chunk size", func(c *Config) { c.Ingest.ChunkSizeKB = -1 }},
		{"unknown retention", func(c *Config) { c.Ingest.Retention = "keep-some" }},
		{"zero poll interval", func(c *Config) { c.Ingest.FollowPollMS = 0 }},
		{"negative max results", func(c *Config) { c.Search.MaxResults = -5 }},
		{"zero cache blocks", func(c *Config) { c.Search.CacheBlocks = 0 }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(&cfg)

			err := cfg.Validate()
			require.Error(t, err)
			assert.Equal(t, lenserr.CategoryConfig, lenserr.GetCategory(err))
		})
	}
}
