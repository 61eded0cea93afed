package scan

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestScan_SimpleNewlines(t *testing.T) {
	starts, ends := Scan([]byte("a\nb\nc\n"), 0, true)

	assert.True(t, ends)
	assert.Equal(t, []uint64{0, 2, 4, 6}, starts)
}

func TestScan_CRLF(t *testing.T) {
	// The \r stays as the last byte of the previous line.
	starts, ends := Scan([]byte("a\r\nb\r\n"), 0, true)

	assert.True(t, ends)
	assert.Equal(t, []uint64{0, 3, 6}, starts)
}

func TestScan_MidLineChunk(t *testing.T) {
	// Chunk continues a line from the previous chunk and does not end one.
	starts, ends := Scan([]byte("middle\r\nend"), 10, false)

	assert.False(t, ends)
	assert.Equal(t, []uint64{18}, starts)
}

func TestScan_EmptyChunk(t *testing.T) {
	// An empty chunk reports a boundary. This is observed legacy behavior:
	// submitting an empty chunk mid-line forces the next chunk to begin a
	// new line. Covered here so a change would be deliberate.
	starts, ends := Scan(nil, 42, false)

	assert.True(t, ends)
	assert.Empty(t, starts)

	starts, ends = Scan([]byte{}, 0, true)
	assert.True(t, ends)
	assert.Empty(t, starts)
}

func TestScan_NoNewlines(t *testing.T) {
	starts, ends := Scan([]byte("no terminator here"), 100, true)

	assert.False(t, ends)
	assert.Equal(t, []uint64{100}, starts)

	starts, ends = Scan([]byte("continuation"), 100, false)
	assert.False(t, ends)
	assert.Empty(t, starts)
}

func TestScan_OnlyNewlines(t *testing.T) {
	starts, ends := Scan([]byte("\n\n\n"), 0, true)

	assert.True(t, ends)
	assert.Equal(t, []uint64{0, 1, 2, 3}, starts)
}

func TestScan_BaseOffsetApplied(t *testing.T) {
	starts, ends := Scan([]byte("x\ny"), 1000, true)

	assert.False(t, ends)
	assert.Equal(t, []uint64{1000, 1002}, starts)
}

func TestScan_BinaryBytesIgnored(t *testing.T) {
	// Only 0x0A is a terminator; other control bytes are line content.
	chunk := []byte{0x00, 0xFF, '\r', 0x0A, 0x01}
	starts, ends := Scan(chunk, 0, true)

	assert.False(t, ends)
	assert.Equal(t, []uint64{0, 4}, starts)
}

func TestScan_LargeChunk(t *testing.T) {
	// One line per KiB across a 1 MiB chunk.
	line := append(bytes.Repeat([]byte{'x'}, 1023), '\n')
	chunk := bytes.Repeat(line, 1024)

	starts, ends := Scan(chunk, 0, true)

	assert.True(t, ends)
	assert.Len(t, starts, 1025)
	assert.Equal(t, uint64(0), starts[0])
	assert.Equal(t, uint64(1024), starts[1])
	assert.Equal(t, uint64(len(chunk)), starts[len(starts)-1])
}
