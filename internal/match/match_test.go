package match

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestLines_SingleMatch(t *testing.T) {
	buf := []byte("hello\nworld\nfoo bar\n")
	offsets := []uint64{0, 6, 12, 20}

	assert.Equal(t, []uint64{1}, Lines(buf, offsets, []byte("world")))
}

func TestLines_MatchInEveryLine(t *testing.T) {
	buf := []byte("hello\nworld\nfoo bar\n")
	offsets := []uint64{0, 6, 12, 20}

	assert.Equal(t, []uint64{0, 1, 2}, Lines(buf, offsets, []byte("o")))
}

func TestLines_EmptyNeedleMatchesAllLines(t *testing.T) {
	buf := []byte("hello\nworld\nfoo bar\n")
	offsets := []uint64{0, 6, 12, 20}

	assert.Equal(t, []uint64{0, 1, 2, 3}, Lines(buf, offsets, nil))
	assert.Equal(t, []uint64{0, 1, 2, 3}, Lines(buf, offsets, []byte{}))
}

func TestLines_NoMatch(t *testing.T) {
	buf := []byte("hello\nworld\n")
	offsets := []uint64{0, 6, 12}

	assert.Empty(t, Lines(buf, offsets, []byte("absent")))
}

func TestLines_EmptyBufferOrOffsets(t *testing.T) {
	assert.Empty(t, Lines(nil, []uint64{0, 4}, []byte("x")))
	assert.Empty(t, Lines([]byte("data"), nil, []byte("x")))
	assert.Empty(t, Lines([]byte("data"), nil, nil))
}

func TestLines_MultipleMatchesInOneLineReportedOnce(t *testing.T) {
	buf := []byte("abab\ncd\n")
	offsets := []uint64{0, 5, 8}

	assert.Equal(t, []uint64{0}, Lines(buf, offsets, []byte("ab")))
}

func TestLines_OverlappingMatches(t *testing.T) {
	buf := []byte("aaaa\nbaab\n")
	offsets := []uint64{0, 5, 10}

	assert.Equal(t, []uint64{0, 1}, Lines(buf, offsets, []byte("aa")))
}

func TestLines_NeedleSpanningLines(t *testing.T) {
	// A needle containing \n matches at its starting line.
	buf := []byte("end\nstart\n")
	offsets := []uint64{0, 4, 10}

	assert.Equal(t, []uint64{0}, Lines(buf, offsets, []byte("d\ns")))
}

func TestLines_MatchInFinalUnterminatedLine(t *testing.T) {
	buf := []byte("one\ntail without newline")
	offsets := []uint64{0, 4}

	assert.Equal(t, []uint64{1}, Lines(buf, offsets, []byte("newline")))
}

func TestWindow_MidLineHeadAttribution(t *testing.T) {
	// File: "alpha\nbeta\ngamma" — offsets 0, 6, 11. The retained window
	// starts at byte 8, inside line 1.
	offsets := []uint64{0, 6, 11}
	window := []byte("ta\ngamma")

	assert.Equal(t, []uint64{1}, Window(window, 8, offsets, []byte("ta")))
	assert.Equal(t, []uint64{2}, Window(window, 8, offsets, []byte("gam")))
	assert.Equal(t, []uint64{1, 2}, Window(window, 8, offsets, []byte("a")))
}

func TestWindow_EmptyWindow(t *testing.T) {
	offsets := []uint64{0, 6, 11}

	assert.Empty(t, Window(nil, 11, offsets, []byte("x")))
	// Empty needle still reports every indexed line: it is resolved from
	// the offset table alone.
	assert.Equal(t, []uint64{0, 1, 2}, Window(nil, 11, offsets, nil))
}

func TestLines_ResultSortedAndDistinct(t *testing.T) {
	buf := []byte("x..x\nx\n..x..\n")
	offsets := []uint64{0, 5, 7, 13}

	got := Lines(buf, offsets, []byte("x"))
	assert.Equal(t, []uint64{0, 1, 2}, got)
}
