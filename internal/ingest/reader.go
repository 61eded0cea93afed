// Package ingest streams log files through the index engine.
//
// It is the caller side of the engine's reserve/commit/index protocol: the
// file is read in fixed-size chunks directly into the engine's staging
// region, committed, and indexed, in strict file order. Substring search
// under the discard retention policy runs here, per chunk, so coverage spans
// the whole file even though the engine only retains the current chunk.
package ingest

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/loglens/loglens/internal/engine"
	"github.com/loglens/loglens/internal/errors"
)

// DefaultChunkSize is used when Options.ChunkSize is zero.
const DefaultChunkSize = 256 * 1024

// MatchFunc receives newly matched line indices, ascending, each line
// reported once across the whole stream.
type MatchFunc func(lines []uint64)

// Options configures a streaming ingest.
type Options struct {
	// ChunkSize is the number of bytes staged per reserve/commit/index
	// cycle. Defaults to DefaultChunkSize.
	ChunkSize int

	// Needle, with OnMatch, enables streaming substring search. An empty
	// needle matches every line.
	Needle []byte

	// OnMatch is invoked after each chunk with the lines newly matched.
	OnMatch MatchFunc

	// Progress, if set, is invoked after each chunk with the cumulative
	// byte count indexed.
	Progress func(bytesIndexed uint64)
}

// Stats summarizes one ingest run.
type Stats struct {
	Bytes  uint64
	Lines  uint64
	Chunks int
}

// File streams path through eng from the beginning. The engine must be
// fresh (or cleared); chunks are submitted in file order per the engine's
// contract.
func File(ctx context.Context, eng *engine.Engine, path string, opts Options) (Stats, error) {
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return Stats{}, errors.New(errors.ErrCodeFileNotFound,
				fmt.Sprintf("file not found: %s", path), err)
		}
		return Stats{}, errors.IOError(fmt.Sprintf("opening %s", path), err)
	}
	defer f.Close()

	s := &session{eng: eng, opts: opts.withDefaults()}
	if err := s.stream(ctx, f); err != nil {
		return s.stats, err
	}

	// Under RetainAll the whole file is resident; one search at the end
	// covers everything, including matches spanning chunk boundaries.
	if s.opts.OnMatch != nil && eng.RetentionPolicy() == engine.RetainAll {
		s.report(eng.MatchLines(s.opts.Needle))
	}

	s.stats.Lines = eng.LineCount()
	return s.stats, nil
}

func (o Options) withDefaults() Options {
	if o.ChunkSize <= 0 {
		o.ChunkSize = DefaultChunkSize
	}
	return o
}

// session carries per-stream state shared by File and Follow.
type session struct {
	eng      *engine.Engine
	opts     Options
	stats    Stats
	reported uint64 // 1 + highest line index reported to OnMatch
	carry    []byte // last len(needle)-1 bytes of the previous chunk
}

// stream runs reserve/read/commit/index cycles until r drains.
func (s *session) stream(ctx context.Context, r io.Reader) error {
	for {
		if err := ctx.Err(); err != nil {
			return err
		}

		region := s.eng.Reserve(s.opts.ChunkSize)
		n, err := io.ReadFull(r, region)
		if n > 0 {
			view, cerr := s.eng.Commit(n)
			if cerr != nil {
				return cerr
			}
			s.eng.Index(view)
			s.stats.Bytes += uint64(n)
			s.stats.Chunks++
			s.afterChunk()
		}
		if err == io.EOF || err == io.ErrUnexpectedEOF {
			return nil
		}
		if err != nil {
			return errors.IOError("reading chunk", err)
		}
	}
}

// afterChunk runs the per-chunk hooks while the chunk is still retained.
// Search prepends the tail of the previous chunk so a match spanning the
// boundary is not invisible to both windows.
func (s *session) afterChunk() {
	if s.opts.OnMatch != nil && s.eng.RetentionPolicy() == engine.DiscardAfterIndex {
		view, base := s.eng.Window()
		win, winBase := view, base
		if len(s.carry) > 0 {
			win = append(append(make([]byte, 0, len(s.carry)+len(view)), s.carry...), view...)
			winBase = base - uint64(len(s.carry))
		}
		s.report(s.eng.MatchWindow(win, winBase, s.opts.Needle))
		if keep := len(s.opts.Needle) - 1; keep > 0 {
			s.carry = tailBytes(s.carry, view, keep)
		}
	}
	if s.opts.Progress != nil {
		s.opts.Progress(s.eng.TotalBytesIndexed())
	}
}

// tailBytes returns a copy of the last keep bytes of the concatenation
// prev+cur.
func tailBytes(prev, cur []byte, keep int) []byte {
	if len(cur) >= keep {
		return append([]byte(nil), cur[len(cur)-keep:]...)
	}
	short := keep - len(cur)
	if short > len(prev) {
		short = len(prev)
	}
	out := append([]byte(nil), prev[len(prev)-short:]...)
	return append(out, cur...)
}

// report forwards match results, dropping lines already reported. A line
// whose bytes straddle two chunks can match in both windows; only the first
// sighting is forwarded.
func (s *session) report(lines []uint64) {
	fresh := lines[:0:0]
	for _, l := range lines {
		if l >= s.reported {
			fresh = append(fresh, l)
		}
	}
	if len(fresh) == 0 {
		return
	}
	s.reported = fresh[len(fresh)-1] + 1
	s.opts.OnMatch(fresh)
}
