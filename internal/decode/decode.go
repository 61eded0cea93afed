// Package decode turns raw byte ranges into text lines without corrupting
// multi-byte characters that were cut at a chunk or blob boundary.
package decode

import (
	"bytes"
	"unicode/utf8"
)

// replacement is substituted for runs of genuinely invalid bytes.
var replacement = []byte("�")

// Lines slices blob at the given relative line-end boundaries and decodes
// each slice as UTF-8 text. Boundaries beyond the blob length are clamped.
//
// A trailing byte sequence that is merely incomplete (the start of a valid
// multi-byte character cut off by the boundary) is dropped rather than
// rendered as a replacement character; bytes that can never form a valid
// character are replaced with U+FFFD. Callers needing the dropped character
// re-request the range with a boundary that does not split it.
func Lines(blob []byte, ends []uint64) []string {
	lines := make([]string, 0, len(ends))
	prev := uint64(0)
	for _, end := range ends {
		if end > uint64(len(blob)) {
			end = uint64(len(blob))
		}
		if end < prev {
			end = prev
		}
		lines = append(lines, Text(blob[prev:end]))
		prev = end
	}
	return lines
}

// Text decodes one byte slice as UTF-8, truncating a trailing incomplete
// sequence and substituting U+FFFD for interior invalid bytes.
func Text(b []byte) string {
	b = TrimPartialRune(b)
	if utf8.Valid(b) {
		return string(b)
	}
	return string(bytes.ToValidUTF8(b, replacement))
}

// TrimPartialRune removes a trailing incomplete UTF-8 sequence from b, if
// present, and returns the rest. Complete-but-invalid trailing bytes are
// kept: they are real corruption, not a boundary artifact, and are handled
// by substitution downstream.
func TrimPartialRune(b []byte) []byte {
	// Find the start of the last encoded character: at most utf8.UTFMax-1
	// continuation bytes precede it.
	last := len(b) - 1
	for i := 0; last-i >= 0 && i < utf8.UTFMax; i++ {
		j := last - i
		c := b[j]
		if c < utf8.RuneSelf {
			// ASCII byte: nothing before it can be incomplete.
			return b
		}
		if c&0xC0 == 0x80 {
			// Continuation byte, keep walking back.
			continue
		}
		// Start byte: incomplete iff it promises more bytes than remain.
		if want := runeLen(c); want > len(b)-j {
			return b[:j]
		}
		return b
	}
	// Only continuation bytes (or nothing): not a split character.
	return b
}

// runeLen returns the encoded length promised by a UTF-8 start byte, or 0
// for an invalid start byte.
func runeLen(c byte) int {
	switch {
	case c&0xE0 == 0xC0:
		return 2
	case c&0xF0 == 0xE0:
		return 3
	case c&0xF8 == 0xF0:
		return 4
	default:
		return 0
	}
}
