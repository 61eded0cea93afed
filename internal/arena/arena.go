// Package arena implements a growable byte arena with a two-step
// reserve/commit write protocol.
//
// Callers stage a chunk by reserving a writable region at the logical end of
// the arena, writing into it, and then committing the number of bytes
// actually written. The region returned by Reserve is a view into the
// arena's backing array and is invalidated by the next Reserve (which may
// relocate the array); the only way to extend the logical length is Commit.
package arena

import (
	"github.com/loglens/loglens/internal/errors"
)

// Arena is a growable byte buffer with reservation-based appends.
// The zero value is ready to use. Not safe for concurrent use; the engine
// serializes access.
type Arena struct {
	buf      []byte
	reserved int
}

// New returns an empty arena.
func New() *Arena {
	return &Arena{}
}

// Reserve returns a writable region of exactly size bytes at the current
// logical end of the arena, growing the backing array if needed. The
// logical length is unchanged until Commit. Any previously reserved region
// is forgotten and must not be written to after this call.
func (a *Arena) Reserve(size int) []byte {
	if size < 0 {
		size = 0
	}
	need := len(a.buf) + size
	if need > cap(a.buf) {
		newCap := 2 * cap(a.buf)
		if newCap < need {
			newCap = need
		}
		grown := make([]byte, len(a.buf), newCap)
		copy(grown, a.buf)
		a.buf = grown
	}
	a.reserved = size
	return a.buf[len(a.buf) : len(a.buf)+size]
}

// Commit extends the logical length by n bytes previously written into the
// reserved region and returns a view of them. n larger than the most recent
// reservation fails with ERR_301_BUFFER_OVERFLOW; the arena is unchanged on
// failure. A commit consumes the reservation.
func (a *Arena) Commit(n int) ([]byte, error) {
	if n < 0 || n > a.reserved {
		return nil, errors.Newf(errors.ErrCodeBufferOverflow,
			"commit of %d bytes exceeds reserved %d", n, a.reserved).
			WithSuggestion("reserve at least the chunk length before committing")
	}
	start := len(a.buf)
	a.buf = a.buf[:start+n]
	a.reserved = 0
	return a.buf[start : start+n : start+n], nil
}

// Len returns the logical length (committed bytes).
func (a *Arena) Len() int {
	return len(a.buf)
}

// Bytes returns the committed bytes. The slice aliases the backing array and
// is invalidated by the next Reserve.
func (a *Arena) Bytes() []byte {
	return a.buf
}

// Reset drops the committed bytes and any pending reservation but keeps the
// backing array for reuse.
func (a *Arena) Reset() {
	a.buf = a.buf[:0]
	a.reserved = 0
}

// Release drops everything including the backing array, returning the arena
// to its zero state.
func (a *Arena) Release() {
	a.buf = nil
	a.reserved = 0
}
