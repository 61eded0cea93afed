// Package cmd provides the CLI commands for LogLens.
package cmd

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/loglens/loglens/internal/config"
	"github.com/loglens/loglens/internal/engine"
	"github.com/loglens/loglens/internal/errors"
	"github.com/loglens/loglens/internal/logging"
	"github.com/loglens/loglens/pkg/version"
)

// Persistent flags shared by all commands.
var (
	debugMode      bool
	configPath     string
	chunkSizeKB    int
	retention      string
	loggingCleanup func()
)

// NewRootCmd creates the root command for the loglens CLI.
func NewRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "loglens",
		Short: "Index and search huge log files in bounded memory",
		Long: `LogLens streams arbitrarily large log files through a chunked
line-indexing engine, so line-range and substring queries work on files
that never fit in memory.

Examples:
  loglens index /var/log/app.log
  loglens search /var/log/app.log "connection refused"
  loglens lines /var/log/app.log 1000 1050
  loglens follow /var/log/app.log`,
		Version:       version.Short(),
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	cmd.SetVersionTemplate("loglens version {{.Version}}\n")

	cmd.PersistentFlags().BoolVar(&debugMode, "debug", false, "Enable debug logging to ~/.loglens/logs/")
	cmd.PersistentFlags().StringVar(&configPath, "config", "", "Path to config file (default: .loglens.yaml, ~/.config/loglens/config.yaml)")
	cmd.PersistentFlags().IntVar(&chunkSizeKB, "chunk-size", 0, "Chunk size in KiB (overrides config)")
	cmd.PersistentFlags().StringVar(&retention, "retention", "", `Retention policy: "discard" or "retain-all" (overrides config)`)

	cmd.PersistentPreRunE = startLogging
	cmd.PersistentPostRun = stopLogging

	cmd.AddCommand(newIndexCmd())
	cmd.AddCommand(newSearchCmd())
	cmd.AddCommand(newLinesCmd())
	cmd.AddCommand(newFollowCmd())
	cmd.AddCommand(newConfigCmd())
	cmd.AddCommand(newVersionCmd())

	return cmd
}

// Execute runs the root command.
func Execute() error {
	cmd := NewRootCmd()
	if err := cmd.Execute(); err != nil {
		fmt.Fprint(os.Stderr, errors.FormatForCLI(err))
		return err
	}
	return nil
}

// loadConfig resolves config plus the flag overrides.
func loadConfig() (config.Config, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return config.Config{}, err
	}
	if chunkSizeKB > 0 {
		cfg.Ingest.ChunkSizeKB = chunkSizeKB
	}
	if retention != "" {
		cfg.Ingest.Retention = retention
	}
	if err := cfg.Validate(); err != nil {
		return config.Config{}, err
	}
	return cfg, nil
}

// newEngine builds an engine from the resolved configuration.
func newEngine(cfg config.Config) *engine.Engine {
	policy := engine.DiscardAfterIndex
	if cfg.Ingest.Retention == "retain-all" {
		policy = engine.RetainAll
	}
	return engine.New(engine.WithPolicy(policy), engine.WithLogger(slog.Default()))
}

// startLogging initializes structured logging before any command runs.
func startLogging(_ *cobra.Command, _ []string) error {
	logCfg := logging.DefaultConfig()
	if debugMode {
		logCfg = logging.DebugConfig()
	}
	if v := os.Getenv("LOGLENS_LOG_LEVEL"); v != "" {
		logCfg.Level = v
	}
	if v := os.Getenv("LOGLENS_LOG_FILE"); v != "" {
		logCfg.FilePath = v
	}

	cleanup, err := logging.SetupDefault(logCfg)
	if err != nil {
		// Logging must never block the actual work.
		fmt.Fprintf(os.Stderr, "warning: logging disabled: %v\n", err)
		return nil
	}
	loggingCleanup = cleanup
	return nil
}

func stopLogging(_ *cobra.Command, _ []string) {
	if loggingCleanup != nil {
		loggingCleanup()
		loggingCleanup = nil
	}
}
