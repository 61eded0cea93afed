// Package match implements exact byte-substring search over an indexed
// buffer, reporting line indices rather than byte positions.
//
// Search operates on raw bytes with no UTF-8 assumption. Match positions are
// mapped to line indices through the engine's line-start offset table, so a
// needle that itself contains a newline is reported at the line where the
// match begins.
package match

import (
	"bytes"
	"sort"
)

// Lines returns the ascending, deduplicated indices of lines in buffer that
// contain needle. offsets holds the strictly increasing line-start offsets
// for buffer, with buffer's first byte at offset 0.
//
// An empty needle matches every line. An empty buffer or empty offset table
// yields no matches.
func Lines(buffer []byte, offsets []uint64, needle []byte) []uint64 {
	return Window(buffer, 0, offsets, needle)
}

// Window is Lines generalized to a retained window of a larger file: window
// holds the bytes at file offsets [windowBase, windowBase+len(window)), and
// offsets holds absolute line-start offsets for the whole file. The window
// may begin mid-line; matches in the partial head are attributed to the line
// that started before the window.
//
// Search visibility is limited to the window: matches whose bytes were
// discarded cannot be found. Callers wanting full-file coverage run the
// search per-chunk during ingest.
func Window(window []byte, windowBase uint64, offsets []uint64, needle []byte) []uint64 {
	if len(offsets) == 0 {
		return nil
	}
	if len(needle) == 0 {
		all := make([]uint64, len(offsets))
		for i := range all {
			all[i] = uint64(i)
		}
		return all
	}
	if len(window) == 0 {
		return nil
	}

	var out []uint64
	pos := 0
	for {
		i := bytes.Index(window[pos:], needle)
		if i < 0 {
			break
		}
		abs := windowBase + uint64(pos+i)
		line := lineFor(offsets, abs)
		if len(out) == 0 || out[len(out)-1] != line {
			out = append(out, line)
		}
		pos += i + 1
	}
	return out
}

// lineFor returns the greatest i such that offsets[i] <= pos. The last line
// has no upper-bound entry and extends to the end of the file, so any pos at
// or past the final offset maps to the final line. pos before offsets[0]
// cannot occur in practice (offsets[0] is 0 whenever anything is indexed)
// but clamps to line 0.
func lineFor(offsets []uint64, pos uint64) uint64 {
	// First index whose offset is strictly greater than pos.
	i := sort.Search(len(offsets), func(i int) bool { return offsets[i] > pos })
	if i == 0 {
		return 0
	}
	return uint64(i - 1)
}
