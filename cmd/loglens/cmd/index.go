package cmd

import (
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"

	"github.com/loglens/loglens/internal/ingest"
	"github.com/loglens/loglens/internal/profiling"
)

// indexOptions holds CLI flags for index.
type indexOptions struct {
	cpuProfile  string
	heapProfile string
	memStats    bool
}

func newIndexCmd() *cobra.Command {
	var opts indexOptions

	cmd := &cobra.Command{
		Use:   "index <file>",
		Short: "Index a log file and print statistics",
		Long: `Stream a log file through the indexing engine and report line and
byte counts. Under the default "discard" retention policy, memory use is
bounded by the chunk size regardless of file size.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runIndex(cmd, args[0], opts)
		},
	}

	cmd.Flags().StringVar(&opts.cpuProfile, "cpu-profile", "", "Write a CPU profile to this file")
	cmd.Flags().StringVar(&opts.heapProfile, "heap-profile", "", "Write a heap profile to this file after indexing")
	cmd.Flags().BoolVar(&opts.memStats, "mem-stats", false, "Report heap in use after indexing")
	_ = cmd.Flags().MarkHidden("cpu-profile")
	_ = cmd.Flags().MarkHidden("heap-profile")

	return cmd
}

func runIndex(cmd *cobra.Command, path string, idxOpts indexOptions) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	profiler := profiling.NewProfiler()
	if idxOpts.cpuProfile != "" {
		stop, err := profiler.StartCPU(idxOpts.cpuProfile)
		if err != nil {
			return err
		}
		defer stop()
	}
	eng := newEngine(cfg)
	defer eng.Clear()

	opts := ingest.Options{ChunkSize: cfg.ChunkSize()}

	// A progress line is only useful (and only safe to rewrite) on a tty.
	if isatty.IsTerminal(os.Stderr.Fd()) {
		opts.Progress = func(n uint64) {
			fmt.Fprintf(os.Stderr, "\rindexed %d bytes", n)
		}
	}

	start := time.Now()
	stats, err := ingest.File(cmd.Context(), eng, path, opts)
	elapsed := time.Since(start)
	if opts.Progress != nil {
		fmt.Fprint(os.Stderr, "\r\033[K")
	}
	if err != nil {
		return err
	}

	slog.Info("index_complete",
		"path", path,
		"bytes", stats.Bytes,
		"lines", stats.Lines,
		"chunks", stats.Chunks,
		"duration", elapsed)

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "file:    %s\n", path)
	fmt.Fprintf(out, "bytes:   %d\n", stats.Bytes)
	fmt.Fprintf(out, "lines:   %d\n", stats.Lines)
	fmt.Fprintf(out, "chunks:  %d (%d KiB each)\n", stats.Chunks, cfg.Ingest.ChunkSizeKB)
	fmt.Fprintf(out, "elapsed: %s\n", elapsed.Round(time.Millisecond))
	if !eng.EndedOnBoundary() {
		fmt.Fprintf(out, "note:    final line has no terminator\n")
	}
	if idxOpts.memStats {
		fmt.Fprintf(out, "heap:    %s in use\n", profiling.FormatBytes(profiling.HeapInUse()))
	}
	if idxOpts.heapProfile != "" {
		if err := profiler.WriteHeap(idxOpts.heapProfile); err != nil {
			return err
		}
	}
	return nil
}
