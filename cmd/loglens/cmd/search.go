package cmd

import (
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/loglens/loglens/internal/decode"
	"github.com/loglens/loglens/internal/engine"
	"github.com/loglens/loglens/internal/ingest"
)

// searchOptions holds CLI flags for search.
type searchOptions struct {
	maxResults  int
	countOnly   bool
	numbersOnly bool
}

func newSearchCmd() *cobra.Command {
	var opts searchOptions

	cmd := &cobra.Command{
		Use:   "search <file> <pattern>",
		Short: "Find lines containing a byte pattern",
		Long: `Stream a log file through the engine and print every line containing
the pattern as an exact byte subsequence. The search runs per chunk during
ingest, so files larger than memory are fully covered.

Examples:
  loglens search /var/log/app.log "connection refused"
  loglens search /var/log/app.log ERROR --count
  loglens search /var/log/app.log timeout -n 20`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSearch(cmd, args[0], args[1], opts)
		},
	}

	cmd.Flags().IntVarP(&opts.maxResults, "max-results", "n", 0, "Stop after this many matching lines (0: unlimited)")
	cmd.Flags().BoolVar(&opts.countOnly, "count", false, "Print only the number of matching lines")
	cmd.Flags().BoolVar(&opts.numbersOnly, "numbers", false, "Print only matching line numbers")

	return cmd
}

// matchBatch carries one chunk's matches to the printer: absolute line
// indices plus the already-decoded line text (decoded while the chunk was
// still resident).
type matchBatch struct {
	lines []uint64
	text  []string
}

func runSearch(cmd *cobra.Command, path, pattern string, opts searchOptions) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	if opts.maxResults == 0 {
		opts.maxResults = cfg.Search.MaxResults
	}

	eng := newEngine(cfg)
	defer eng.Clear()

	slog.Info("search_started", "path", path, "pattern", pattern)

	// Ingest+match and printing run as a pipeline: decoding happens on the
	// ingest side while the bytes are resident, printing on the other end.
	batches := make(chan matchBatch, 4)
	g, ctx := errgroup.WithContext(cmd.Context())

	g.Go(func() error {
		defer close(batches)
		_, err := ingest.File(ctx, eng, path, ingest.Options{
			ChunkSize: cfg.ChunkSize(),
			Needle:    []byte(pattern),
			OnMatch: func(lines []uint64) {
				batch := matchBatch{lines: lines}
				if !opts.countOnly && !opts.numbersOnly {
					batch.text = decodeLines(eng, lines)
				}
				select {
				case batches <- batch:
				case <-ctx.Done():
				}
			},
		})
		return err
	})

	var total int
	g.Go(func() error {
		out := cmd.OutOrStdout()
		for batch := range batches {
			for i, line := range batch.lines {
				if opts.maxResults > 0 && total >= opts.maxResults {
					// Keep draining so the ingest side never blocks.
					continue
				}
				total++
				switch {
				case opts.countOnly:
				case opts.numbersOnly:
					fmt.Fprintf(out, "%d\n", line+1)
				default:
					fmt.Fprintf(out, "%d:%s\n", line+1, batch.text[i])
				}
			}
		}
		return nil
	})

	if err := g.Wait(); err != nil {
		return err
	}

	if opts.countOnly {
		fmt.Fprintf(cmd.OutOrStdout(), "%d\n", total)
	}
	slog.Info("search_complete", "path", path, "matches", total)
	return nil
}

// decodeLines renders matched lines from the engine's retained window.
// Under the discard policy the window is the chunk that produced the
// matches; a line that started in the previous chunk is rendered from its
// retained suffix.
func decodeLines(eng *engine.Engine, lines []uint64) []string {
	window, base := eng.Window()
	text := make([]string, len(lines))
	for i, line := range lines {
		ranges := eng.LineRanges(line, line+1)
		if len(ranges) == 0 {
			continue
		}
		r := ranges[0]
		lo, hi := r.Start, r.End
		if lo < base {
			lo = base
		}
		if end := base + uint64(len(window)); hi > end {
			hi = end
		}
		if lo >= hi {
			continue
		}
		text[i] = trimEOL(decode.Text(window[lo-base : hi-base]))
	}
	return text
}

// trimEOL drops the trailing line terminator for display.
func trimEOL(s string) string {
	for len(s) > 0 && (s[len(s)-1] == '\n' || s[len(s)-1] == '\r') {
		s = s[:len(s)-1]
	}
	return s
}
