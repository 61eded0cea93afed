package ingest

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/loglens/loglens/internal/engine"
	"github.com/loglens/loglens/internal/errors"
	"github.com/loglens/loglens/internal/watch"
)

// FollowOptions configures Follow.
type FollowOptions struct {
	Options

	// PollInterval is the fallback growth-check interval, used alongside
	// filesystem notifications (and alone when they are unavailable).
	PollInterval time.Duration

	// OnAppend, if set, is invoked with each newly indexed chunk while it
	// is still retained: the raw bytes and their file offset. The slice
	// is engine-owned and must not be held after the callback returns.
	OnAppend func(view []byte, base uint64)

	// Logger for follow diagnostics. Defaults to slog.Default().
	Logger *slog.Logger
}

// Follow indexes path and then keeps indexing as the file grows, until ctx
// is cancelled (its return value is then ctx's error). The log is assumed
// append-only; if the file shrinks (rotated or truncated in place), the
// session is reset with Clear and the file is reindexed from the start.
//
// A watcher (filesystem notifications plus a poll ticker) feeds a
// coalescing wake-up channel consumed by a single indexing goroutine,
// preserving the ordered chunk-submission contract.
func Follow(ctx context.Context, eng *engine.Engine, path string, opts FollowOptions) error {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}

	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return errors.New(errors.ErrCodeFileNotFound,
				fmt.Sprintf("file not found: %s", path), err)
		}
		return errors.IOError(fmt.Sprintf("opening %s", path), err)
	}
	defer f.Close()

	fw := &follower{
		session: session{eng: eng, opts: opts.Options.withDefaults()},
		f:       f,
		path:    path,
		opts:    opts,
		logger:  logger,
	}

	// Initial catch-up before watching.
	if err := fw.catchUp(ctx); err != nil {
		return err
	}

	w := watch.New(path, watch.Options{PollInterval: opts.PollInterval, Logger: logger})
	logger.Debug("following", "path", path, "watcher", w.Type())

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error { return w.Run(gctx) })

	// Single consumer: all engine writes happen here, in order.
	g.Go(func() error {
		for {
			select {
			case <-gctx.Done():
				return gctx.Err()
			case <-w.Wake():
				if err := fw.catchUp(gctx); err != nil {
					return err
				}
			}
		}
	})

	return g.Wait()
}

// follower extends a streaming session with file-growth tracking.
type follower struct {
	session
	f      *os.File
	path   string
	opts   FollowOptions
	logger *slog.Logger
}

// catchUp indexes whatever the file holds beyond the indexed position.
func (fw *follower) catchUp(ctx context.Context) error {
	info, err := fw.f.Stat()
	if err != nil {
		return errors.IOError(fmt.Sprintf("stat %s", fw.path), err)
	}

	indexed := fw.eng.TotalBytesIndexed()
	size := uint64(info.Size())

	if size < indexed {
		// Truncated or rotated in place: the index no longer describes
		// the file. Reset the session and reindex from the start.
		fw.logger.Warn("file shrank, resetting session",
			"path", fw.path, "indexed", indexed, "size", size)
		fw.eng.Clear()
		fw.reported = 0
		fw.carry = nil
		fw.stats = Stats{}
		indexed = 0
	}
	if size == indexed {
		return nil
	}

	r := io.NewSectionReader(fw.f, int64(indexed), int64(size-indexed))
	return fw.streamTail(ctx, r)
}

// streamTail is session.stream plus the OnAppend hook.
func (fw *follower) streamTail(ctx context.Context, r io.Reader) error {
	for {
		if err := ctx.Err(); err != nil {
			return err
		}

		region := fw.eng.Reserve(fw.session.opts.ChunkSize)
		n, err := io.ReadFull(r, region)
		if n > 0 {
			view, cerr := fw.eng.Commit(n)
			if cerr != nil {
				return cerr
			}
			base := fw.eng.TotalBytesIndexed()
			fw.eng.Index(view)
			fw.stats.Bytes += uint64(n)
			fw.stats.Chunks++
			fw.afterChunk()
			if fw.opts.OnAppend != nil {
				fw.opts.OnAppend(view, base)
			}
		}
		if err == io.EOF || err == io.ErrUnexpectedEOF {
			return nil
		}
		if err != nil {
			return errors.IOError("reading appended bytes", err)
		}
	}
}
