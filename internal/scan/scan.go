// Package scan finds line boundaries in raw byte chunks for indexing.
//
// The scanner is a pure function over one chunk plus carried boundary state,
// so a line split across two chunks is still indexed correctly. It makes no
// UTF-8 assumption; bytes are scanned as-is.
package scan

import "bytes"

// Scan scans chunk for newline bytes and returns the file-space offset of
// each line start found, plus whether the chunk ends on a line boundary.
//
// baseOffset is the file offset of the first byte of chunk. beginsLine must
// be true when the byte immediately before chunk is a line terminator (always
// true for the first chunk of a stream); in that case baseOffset itself is
// emitted as the first line start.
//
// Every '\n' at absolute position p yields a line start at p+1. A '\r' in a
// "\r\n" pair stays as the last byte of the previous line; no special
// handling is needed.
//
// An empty chunk returns (nil, true). Note this forces the carried boundary
// state to "on a boundary" even when the previous chunk ended mid-line;
// callers that do not want an empty submission to alter the stream state
// must not submit it.
func Scan(chunk []byte, baseOffset uint64, beginsLine bool) ([]uint64, bool) {
	if len(chunk) == 0 {
		return nil, true
	}

	// Rough guess: one line per 64 bytes keeps append from thrashing on
	// typical log data without over-allocating for binary blobs.
	starts := make([]uint64, 0, len(chunk)/64+1)

	if beginsLine {
		starts = append(starts, baseOffset)
	}

	// bytes.IndexByte compiles to a vectorized scan, so the loop cost is
	// dominated by the newline count, not the chunk length.
	pos := 0
	for {
		i := bytes.IndexByte(chunk[pos:], '\n')
		if i < 0 {
			break
		}
		pos += i + 1
		starts = append(starts, baseOffset+uint64(pos))
	}

	return starts, chunk[len(chunk)-1] == '\n'
}
