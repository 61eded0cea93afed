package cmd

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/loglens/loglens/internal/decode"
	"github.com/loglens/loglens/internal/errors"
	"github.com/loglens/loglens/internal/ingest"
)

func newLinesCmd() *cobra.Command {
	var numbered bool

	cmd := &cobra.Command{
		Use:   "lines <file> <start> <end>",
		Short: "Print lines [start, end) of a log file",
		Long: `Index the file, resolve the requested line range to byte ranges, and
print the decoded lines. Line numbers are 1-based; end is exclusive. Ranges
beyond the end of the file are clamped, never an error.

The content is read back from the file through a block cache, so this works
under the bounded-memory "discard" retention policy.`,
		Args: cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			start, err := strconv.ParseUint(args[1], 10, 64)
			if err != nil {
				return errors.ValidationError(
					fmt.Sprintf("start must be a line number, got %q", args[1]), err)
			}
			end, err := strconv.ParseUint(args[2], 10, 64)
			if err != nil {
				return errors.ValidationError(
					fmt.Sprintf("end must be a line number, got %q", args[2]), err)
			}
			return runLines(cmd, args[0], start, end, numbered)
		},
	}

	cmd.Flags().BoolVarP(&numbered, "numbers", "N", false, "Prefix each line with its number")

	return cmd
}

func runLines(cmd *cobra.Command, path string, start, end uint64, numbered bool) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	eng := newEngine(cfg)
	defer eng.Clear()

	if _, err := ingest.File(cmd.Context(), eng, path, ingest.Options{ChunkSize: cfg.ChunkSize()}); err != nil {
		return err
	}

	// 1-based on the CLI, 0-based internally.
	if start > 0 {
		start--
	}
	if end > 0 {
		end--
	}
	ranges := eng.LineRanges(start, end)
	if len(ranges) == 0 {
		return nil
	}

	reader, err := ingest.NewRangeReader(path, cfg.Search.CacheBlockKB, cfg.Search.CacheBlocks)
	if err != nil {
		return err
	}
	defer reader.Close()

	// One contiguous read covers the whole range; the decoder slices it at
	// the line boundaries.
	blob, err := reader.ReadRange(ranges[0].Start, ranges[len(ranges)-1].End)
	if err != nil {
		return err
	}
	ends := make([]uint64, len(ranges))
	for i, r := range ranges {
		ends[i] = r.End - ranges[0].Start
	}

	out := cmd.OutOrStdout()
	for i, line := range decode.Lines(blob, ends) {
		text := trimEOL(line)
		if numbered {
			fmt.Fprintf(out, "%d:%s\n", start+uint64(i)+1, text)
		} else {
			fmt.Fprintf(out, "%s\n", text)
		}
	}
	return nil
}
