// Package engine owns the cumulative line-index state for one log-viewing
// session: the line-start offset table, the byte count indexed so far, the
// carried chunk-boundary flag, and the retained working buffer.
//
// One engine instance serves one session. Chunks must be submitted in strict
// file order with no gaps or overlaps; the engine does not detect violations
// (a documented caller obligation). Thread safety: one writer (the
// Reserve/Commit/Index cycle, and Clear) is serialized against any number of
// concurrent readers by an internal RWMutex.
package engine

import (
	"log/slog"
	"sync"

	"github.com/loglens/loglens/internal/arena"
	"github.com/loglens/loglens/internal/match"
	"github.com/loglens/loglens/internal/scan"
)

// Policy selects what the engine keeps of the bytes it has indexed.
type Policy int

const (
	// DiscardAfterIndex retains only the most recently indexed chunk.
	// Memory stays bounded by the chunk size, so it is the default and the
	// right choice for files larger than memory. Content queries and
	// substring search only see the retained chunk; full-file search runs
	// per-chunk during ingest.
	DiscardAfterIndex Policy = iota

	// RetainAll accumulates every indexed byte in the working buffer.
	// Search and content queries then cover the whole file, at the cost of
	// holding it in memory.
	RetainAll
)

// String returns the yaml/config spelling of the policy.
func (p Policy) String() string {
	if p == RetainAll {
		return "retain-all"
	}
	return "discard"
}

// Range is a half-open byte range [Start, End) in the logical file.
type Range struct {
	Start uint64
	End   uint64
}

// Engine is the chunked line-indexing engine.
type Engine struct {
	mu sync.RWMutex

	arena   *arena.Arena
	offsets []uint64

	// totalBytes is the file offset of the next byte to be indexed.
	totalBytes uint64

	// onBoundary is true when the next chunk's first byte starts a line.
	// A fresh stream starts on a boundary.
	onBoundary bool

	// windowBase is the file offset of the first retained byte.
	windowBase uint64

	policy Policy
	logger *slog.Logger
}

// Option configures an Engine.
type Option func(*Engine)

// WithPolicy sets the retention policy. Default is DiscardAfterIndex.
func WithPolicy(p Policy) Option {
	return func(e *Engine) { e.policy = p }
}

// WithLogger sets the structured logger. Default is slog.Default().
func WithLogger(l *slog.Logger) Option {
	return func(e *Engine) { e.logger = l }
}

// New creates an empty engine for a new session.
func New(opts ...Option) *Engine {
	e := &Engine{
		arena:      arena.New(),
		onBoundary: true,
		policy:     DiscardAfterIndex,
	}
	for _, opt := range opts {
		opt(e)
	}
	if e.logger == nil {
		e.logger = slog.Default()
	}
	return e
}

// Reserve returns a writable region of size bytes for the next chunk at the
// current end of the working buffer. Under DiscardAfterIndex, any previously
// indexed chunk is dropped from the buffer first. The region is invalidated
// by the next Reserve; Commit is the only way to extend the buffer.
func (e *Engine) Reserve(size int) []byte {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.policy == DiscardAfterIndex {
		// Lazy discard: the previous chunk stays queryable from Index
		// until the caller stages the next one.
		if e.arena.Len() > 0 && e.windowBase+uint64(e.arena.Len()) == e.totalBytes {
			e.arena.Reset()
			e.windowBase = e.totalBytes
		}
	}
	return e.arena.Reserve(size)
}

// Commit extends the working buffer by n bytes written into the most recent
// reservation and returns a read-only view of them. n beyond the reserved
// size fails with ERR_301_BUFFER_OVERFLOW.
func (e *Engine) Commit(n int) ([]byte, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.arena.Commit(n)
}

// Index scans the committed chunk for line boundaries, appends the resulting
// line-start offsets, and advances the cumulative position by the chunk
// length. Returns the number of line starts added.
//
// A chunk ending in a newline emits the next line's start; the same offset
// would be emitted again by the next chunk via the boundary flag, so a
// colliding first offset is dropped to keep the table strictly increasing.
func (e *Engine) Index(chunk []byte) int {
	e.mu.Lock()
	defer e.mu.Unlock()

	starts, endsOnBoundary := scan.Scan(chunk, e.totalBytes, e.onBoundary)
	if len(starts) > 0 && len(e.offsets) > 0 && starts[0] <= e.offsets[len(e.offsets)-1] {
		starts = starts[1:]
	}
	e.offsets = append(e.offsets, starts...)
	e.totalBytes += uint64(len(chunk))
	e.onBoundary = endsOnBoundary

	e.logger.Debug("indexed chunk",
		"chunk_bytes", len(chunk),
		"new_lines", len(starts),
		"total_bytes", e.totalBytes,
		"total_lines", len(e.offsets))

	return len(starts)
}

// LineCount returns the number of lines indexed so far. A file ending in a
// newline counts a trailing empty line, matching the offset table.
func (e *Engine) LineCount() uint64 {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return uint64(len(e.offsets))
}

// TotalBytesIndexed returns the cumulative number of bytes indexed.
func (e *Engine) TotalBytesIndexed() uint64 {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.totalBytes
}

// EndedOnBoundary reports whether the last indexed byte was a line
// terminator, i.e. the next chunk begins a new line.
func (e *Engine) EndedOnBoundary() bool {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.onBoundary
}

// RetentionPolicy returns the configured retention policy.
func (e *Engine) RetentionPolicy() Policy {
	return e.policy
}

// LineRanges returns half-open byte ranges for lines [start, end). Both
// indices are clamped into [0, LineCount]; out-of-range input never errors.
// The last line's end is TotalBytesIndexed and may grow as chunks arrive.
func (e *Engine) LineRanges(start, end uint64) []Range {
	e.mu.RLock()
	defer e.mu.RUnlock()

	if end > uint64(len(e.offsets)) {
		end = uint64(len(e.offsets))
	}
	if start > end {
		start = end
	}
	if start == end {
		return nil
	}

	ranges := make([]Range, 0, end-start)
	for i := start; i < end; i++ {
		r := Range{Start: e.offsets[i], End: e.totalBytes}
		if i+1 < uint64(len(e.offsets)) {
			r.End = e.offsets[i+1]
		}
		ranges = append(ranges, r)
	}
	return ranges
}

// MatchLines returns the ascending, deduplicated indices of lines containing
// needle within the currently retained bytes. Under DiscardAfterIndex that
// is the chunk most recently indexed; under RetainAll it is the whole file.
// An empty needle matches every indexed line.
func (e *Engine) MatchLines(needle []byte) []uint64 {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return match.Window(e.arena.Bytes(), e.windowBase, e.offsets, needle)
}

// MatchWindow maps needle matches in a caller-supplied byte window onto line
// indices through the engine's offset table. base is the file offset of
// window's first byte. Ingest uses this to search each chunk with a small
// overlap from the previous chunk, so matches spanning a chunk boundary are
// still found under DiscardAfterIndex.
func (e *Engine) MatchWindow(window []byte, base uint64, needle []byte) []uint64 {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return match.Window(window, base, e.offsets, needle)
}

// Window returns the retained bytes and the file offset of their first byte.
// The slice aliases engine-owned memory and is invalidated by the next
// Reserve or Clear; callers must not hold it across operations.
func (e *Engine) Window() ([]byte, uint64) {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.arena.Bytes(), e.windowBase
}

// Clear resets all state to a fresh session: offsets, cumulative position,
// boundary flag, and working buffer. Idempotent. Waits for in-flight
// operations; a cleared engine answers queries exactly like a new one.
func (e *Engine) Clear() {
	e.mu.Lock()
	defer e.mu.Unlock()

	e.arena.Release()
	e.offsets = nil
	e.totalBytes = 0
	e.onBoundary = true
	e.windowBase = 0

	e.logger.Debug("engine cleared")
}
