package cmd

import (
	"context"
	"io"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/loglens/loglens/internal/decode"
	"github.com/loglens/loglens/internal/ingest"
)

func newFollowCmd() *cobra.Command {
	var fromStart bool

	cmd := &cobra.Command{
		Use:   "follow <file>",
		Short: "Print a growing log file as it is indexed",
		Long: `Index the file and keep indexing as it grows, printing appended
content. If the file shrinks (rotation, truncation), the session resets and
the file is reindexed. Stop with Ctrl-C.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runFollow(cmd, args[0], fromStart)
		},
	}

	cmd.Flags().BoolVar(&fromStart, "from-start", false, "Also print the existing content, not just growth")

	return cmd
}

func runFollow(cmd *cobra.Command, path string, fromStart bool) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	eng := newEngine(cfg)
	defer eng.Clear()

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Without --from-start, content that already existed is indexed but
	// not printed, like tail -f.
	var printFrom uint64
	if !fromStart {
		if info, err := os.Stat(path); err == nil {
			printFrom = uint64(info.Size())
		}
	}

	printer := &tailPrinter{out: cmd.OutOrStdout(), printFrom: printFrom}

	err = ingest.Follow(ctx, eng, path, ingest.FollowOptions{
		Options:      ingest.Options{ChunkSize: cfg.ChunkSize()},
		PollInterval: time.Duration(cfg.Ingest.FollowPollMS) * time.Millisecond,
		OnAppend:     printer.emit,
	})

	if err == context.Canceled || ctx.Err() != nil {
		return nil // interrupt is a normal exit
	}
	return err
}

// tailPrinter writes appended chunks to out, holding back a trailing
// partial multi-byte character until the rest of it arrives.
type tailPrinter struct {
	out       io.Writer
	printFrom uint64
	lastEnd   uint64
	pending   []byte
}

func (p *tailPrinter) emit(view []byte, base uint64) {
	if base < p.lastEnd {
		// The session was reset after a shrink; the file is new content.
		p.printFrom = 0
		p.pending = p.pending[:0]
	}
	p.lastEnd = base + uint64(len(view))

	if p.lastEnd <= p.printFrom {
		return
	}
	if base < p.printFrom {
		view = view[p.printFrom-base:]
	}

	p.pending = append(p.pending, view...)
	whole := decode.TrimPartialRune(p.pending)
	if len(whole) == 0 {
		return
	}
	io.WriteString(p.out, decode.Text(whole))
	n := copy(p.pending, p.pending[len(whole):])
	p.pending = p.pending[:n]
}
