// Package config loads and validates LogLens configuration.
//
// Resolution order, later wins:
//  1. Built-in defaults
//  2. User config (~/.config/loglens/config.yaml)
//  3. Project config (.loglens.yaml in the working directory)
//  4. Environment variables (LOGLENS_*)
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"gopkg.in/yaml.v3"

	"github.com/loglens/loglens/internal/errors"
)

// ProjectConfigName is the per-directory config file name.
const ProjectConfigName = ".loglens.yaml"

// Config represents the complete LogLens configuration.
type Config struct {
	Ingest  IngestConfig  `yaml:"ingest" json:"ingest"`
	Search  SearchConfig  `yaml:"search" json:"search"`
	Logging LoggingConfig `yaml:"logging" json:"logging"`
}

// IngestConfig configures chunked ingestion.
type IngestConfig struct {
	// ChunkSizeKB is the chunk size used when streaming a file through the
	// engine, in KiB. Memory use under the discard policy is bounded by
	// this value.
	ChunkSizeKB int `yaml:"chunk_size_kb" json:"chunk_size_kb"`

	// Retention selects the working-buffer policy: "discard" keeps only
	// the chunk most recently indexed (default), "retain-all" accumulates
	// the whole file for in-memory search.
	Retention string `yaml:"retention" json:"retention"`

	// FollowPollMS is the fallback poll interval for follow mode when
	// filesystem notifications are unavailable, in milliseconds.
	FollowPollMS int `yaml:"follow_poll_ms" json:"follow_poll_ms"`
}

// SearchConfig configures search and content retrieval.
type SearchConfig struct {
	// MaxResults caps the number of matching lines printed per search.
	// 0 means unlimited.
	MaxResults int `yaml:"max_results" json:"max_results"`

	// CacheBlocks is the number of file blocks the range reader keeps in
	// its LRU cache for line-content queries.
	CacheBlocks int `yaml:"cache_blocks" json:"cache_blocks"`

	// CacheBlockKB is the size of each cached block, in KiB.
	CacheBlockKB int `yaml:"cache_block_kb" json:"cache_block_kb"`
}

// LoggingConfig configures structured logging.
type LoggingConfig struct {
	Level     string `yaml:"level" json:"level"`
	File      string `yaml:"file" json:"file"`
	MaxSizeMB int    `yaml:"max_size_mb" json:"max_size_mb"`
	MaxFiles  int    `yaml:"max_files" json:"max_files"`
}

// Default returns the built-in defaults.
func Default() Config {
	return Config{
		Ingest: IngestConfig{
			ChunkSizeKB:  256,
			Retention:    "discard",
			FollowPollMS: 1000,
		},
		Search: SearchConfig{
			MaxResults:   0,
			CacheBlocks:  64,
			CacheBlockKB: 64,
		},
		Logging: LoggingConfig{
			Level:     "info",
			MaxSizeMB: 10,
			MaxFiles:  5,
		},
	}
}

// Load resolves configuration from defaults, config files, and environment.
// If explicitPath is non-empty, only that file is consulted (it must exist).
func Load(explicitPath string) (Config, error) {
	cfg := Default()

	if explicitPath != "" {
		if err := mergeFile(&cfg, explicitPath); err != nil {
			return Config{}, err
		}
	} else {
		if user := UserConfigPath(); user != "" {
			if err := mergeFileIfExists(&cfg, user); err != nil {
				return Config{}, err
			}
		}
		if err := mergeFileIfExists(&cfg, ProjectConfigName); err != nil {
			return Config{}, err
		}
	}

	applyEnv(&cfg)

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate checks the configuration for invalid values.
func (c Config) Validate() error {
	if c.Ingest.ChunkSizeKB <= 0 {
		return errors.ConfigError(
			fmt.Sprintf("ingest.chunk_size_kb must be positive, got %d", c.Ingest.ChunkSizeKB), nil)
	}
	if c.Ingest.Retention != "discard" && c.Ingest.Retention != "retain-all" {
		return errors.ConfigError(
			fmt.Sprintf("ingest.retention must be %q or %q, got %q", "discard", "retain-all", c.Ingest.Retention), nil).
			WithSuggestion("use \"discard\" for files larger than memory")
	}
	if c.Ingest.FollowPollMS <= 0 {
		return errors.ConfigError(
			fmt.Sprintf("ingest.follow_poll_ms must be positive, got %d", c.Ingest.FollowPollMS), nil)
	}
	if c.Search.MaxResults < 0 {
		return errors.ConfigError(
			fmt.Sprintf("search.max_results must not be negative, got %d", c.Search.MaxResults), nil)
	}
	if c.Search.CacheBlocks <= 0 || c.Search.CacheBlockKB <= 0 {
		return errors.ConfigError("search cache sizes must be positive", nil)
	}
	return nil
}

// ChunkSize returns the ingest chunk size in bytes.
func (c Config) ChunkSize() int {
	return c.Ingest.ChunkSizeKB * 1024
}

// UserConfigPath returns the user-level config file path, honoring
// XDG_CONFIG_HOME. Empty when no home directory can be resolved.
func UserConfigPath() string {
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		return filepath.Join(xdg, "loglens", "config.yaml")
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, ".config", "loglens", "config.yaml")
}

func mergeFile(cfg *Config, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return errors.New(errors.ErrCodeConfigNotFound,
				fmt.Sprintf("config file not found: %s", path), err)
		}
		return errors.ConfigError(fmt.Sprintf("reading config %s", path), err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return errors.ConfigError(fmt.Sprintf("parsing config %s", path), err)
	}
	return nil
}

func mergeFileIfExists(cfg *Config, path string) error {
	if _, err := os.Stat(path); err != nil {
		return nil
	}
	return mergeFile(cfg, path)
}

// applyEnv overrides configuration from LOGLENS_* environment variables.
func applyEnv(cfg *Config) {
	if v, ok := envInt("LOGLENS_CHUNK_SIZE_KB"); ok {
		cfg.Ingest.ChunkSizeKB = v
	}
	if v := os.Getenv("LOGLENS_RETENTION"); v != "" {
		cfg.Ingest.Retention = v
	}
	if v, ok := envInt("LOGLENS_FOLLOW_POLL_MS"); ok {
		cfg.Ingest.FollowPollMS = v
	}
	if v, ok := envInt("LOGLENS_MAX_RESULTS"); ok {
		cfg.Search.MaxResults = v
	}
	if v := os.Getenv("LOGLENS_LOG_LEVEL"); v != "" {
		cfg.Logging.Level = v
	}
	if v := os.Getenv("LOGLENS_LOG_FILE"); v != "" {
		cfg.Logging.File = v
	}
}

func envInt(name string) (int, bool) {
	v := os.Getenv(name)
	if v == "" {
		return 0, false
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, false
	}
	return n, true
}
