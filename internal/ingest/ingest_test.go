package ingest

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/loglens/loglens/internal/engine"
	lenserr "github.com/loglens/loglens/internal/errors"
)

func writeTemp(t *testing.T, data []byte) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "app.log")
	require.NoError(t, os.WriteFile(path, data, 0o644))
	return path
}

func TestFile_IndexesWholeFile(t *testing.T) {
	data := []byte("one\ntwo\nthree\nfour without end")
	path := writeTemp(t, data)

	eng := engine.New()
	stats, err := File(context.Background(), eng, path, Options{ChunkSize: 5})
	require.NoError(t, err)

	assert.Equal(t, uint64(len(data)), stats.Bytes)
	assert.Equal(t, uint64(4), stats.Lines)
	assert.Equal(t, 6, stats.Chunks)
	assert.Equal(t, uint64(len(data)), eng.TotalBytesIndexed())
	assert.Equal(t, uint64(4), eng.LineCount())

	ranges := eng.LineRanges(0, 4)
	require.Len(t, ranges, 4)
	assert.Equal(t, engine.Range{Start: 0, End: 4}, ranges[0])
	assert.Equal(t, engine.Range{Start: 14, End: uint64(len(data))}, ranges[3])
}

func TestFile_ChunkSizeInvariance(t *testing.T) {
	data := []byte("alpha\nbravo\ncharlie\ndelta\necho\n")
	path := writeTemp(t, data)

	var counts []uint64
	for _, size := range []int{1, 2, 3, 7, 1024} {
		eng := engine.New()
		_, err := File(context.Background(), eng, path, Options{ChunkSize: size})
		require.NoError(t, err)
		counts = append(counts, eng.LineCount())
	}
	for _, c := range counts {
		assert.Equal(t, counts[0], c)
	}
}

func TestFile_StreamingSearchCoversAllChunks(t *testing.T) {
	// Needle appears in lines spread across many small chunks; a line
	// split across chunks must still be found exactly once.
	var buf bytes.Buffer
	for i := range 100 {
		fmt.Fprintf(&buf, "line %03d padding padding\n", i)
	}
	path := writeTemp(t, buf.Bytes())

	var got []uint64
	eng := engine.New() // discard policy: search must run per chunk
	_, err := File(context.Background(), eng, path, Options{
		ChunkSize: 17,
		Needle:    []byte("line 0"),
		OnMatch:   func(lines []uint64) { got = append(got, lines...) },
	})
	require.NoError(t, err)

	// Every line matches, including those the tiny chunk size splits;
	// the boundary overlap keeps spanning matches visible.
	var want []uint64
	for i := uint64(0); i < 100; i++ {
		want = append(want, i)
	}
	assert.Equal(t, want, got)
}

func TestFile_SearchRetainAllReportsOnce(t *testing.T) {
	data := []byte("hit one\nmiss\nhit two\n")
	path := writeTemp(t, data)

	var calls int
	var got []uint64
	eng := engine.New(engine.WithPolicy(engine.RetainAll))
	_, err := File(context.Background(), eng, path, Options{
		ChunkSize: 4,
		Needle:    []byte("hit"),
		OnMatch: func(lines []uint64) {
			calls++
			got = append(got, lines...)
		},
	})
	require.NoError(t, err)

	assert.Equal(t, 1, calls, "retain-all searches once at the end")
	assert.Equal(t, []uint64{0, 2}, got)
}

func TestFile_MissingFile(t *testing.T) {
	eng := engine.New()
	_, err := File(context.Background(), eng, "/nonexistent/app.log", Options{})

	require.Error(t, err)
	assert.Equal(t, lenserr.ErrCodeFileNotFound, lenserr.GetCode(err))
}

func TestFile_CancelledContext(t *testing.T) {
	path := writeTemp(t, []byte("data\n"))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	eng := engine.New()
	_, err := File(ctx, eng, path, Options{})
	assert.ErrorIs(t, err, context.Canceled)
}

func TestFile_ProgressReported(t *testing.T) {
	path := writeTemp(t, []byte("0123456789"))

	var progress []uint64
	eng := engine.New()
	_, err := File(context.Background(), eng, path, Options{
		ChunkSize: 4,
		Progress:  func(n uint64) { progress = append(progress, n) },
	})
	require.NoError(t, err)
	assert.Equal(t, []uint64{4, 8, 10}, progress)
}

func TestRangeReader_ReadRange(t *testing.T) {
	data := []byte("abcdefghijklmnopqrstuvwxyz")
	path := writeTemp(t, data)

	r, err := NewRangeReader(path, 1, 4) // 1 KiB blocks
	require.NoError(t, err)
	defer r.Close()

	got, err := r.ReadRange(3, 10)
	require.NoError(t, err)
	assert.Equal(t, []byte("defghij"), got)

	// Identical repeat (served from cache where applicable).
	got, err = r.ReadRange(3, 10)
	require.NoError(t, err)
	assert.Equal(t, []byte("defghij"), got)

	// Whole file, empty range, range past EOF.
	got, err = r.ReadRange(0, uint64(len(data)))
	require.NoError(t, err)
	assert.Equal(t, data, got)

	got, err = r.ReadRange(5, 5)
	require.NoError(t, err)
	assert.Empty(t, got)

	got, err = r.ReadRange(20, 100)
	require.NoError(t, err)
	assert.Equal(t, []byte("uvwxyz"), got)
}

func TestRangeReader_SeesAppendedTail(t *testing.T) {
	path := writeTemp(t, []byte("start"))

	r, err := NewRangeReader(path, 64, 4)
	require.NoError(t, err)
	defer r.Close()

	got, err := r.ReadRange(0, 5)
	require.NoError(t, err)
	assert.Equal(t, []byte("start"), got)

	// Grow the file; the short tail block was not cached, so the new
	// bytes are visible.
	f, err := os.OpenFile(path, os.O_APPEND|os.O_WRONLY, 0o644)
	require.NoError(t, err)
	_, err = f.WriteString(" more")
	require.NoError(t, err)
	require.NoError(t, f.Close())

	got, err = r.ReadRange(0, 10)
	require.NoError(t, err)
	assert.Equal(t, []byte("start more"), got)
}

func TestRangeReader_SpansBlocks(t *testing.T) {
	data := bytes.Repeat([]byte("0123456789abcdef"), 256) // 4 KiB
	path := writeTemp(t, data)

	r, err := NewRangeReader(path, 1, 2) // 1 KiB blocks, tiny cache
	require.NoError(t, err)
	defer r.Close()

	got, err := r.ReadRange(1000, 3100)
	require.NoError(t, err)
	assert.Equal(t, data[1000:3100], got)
}

func TestFollow_IndexesGrowth(t *testing.T) {
	path := writeTemp(t, []byte("first\n"))

	eng := engine.New()
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	done := make(chan error, 1)
	go func() {
		done <- Follow(ctx, eng, path, FollowOptions{
			Options:      Options{ChunkSize: 8},
			PollInterval: 20 * time.Millisecond,
		})
	}()

	require.Eventually(t, func() bool {
		return eng.TotalBytesIndexed() == 6
	}, 2*time.Second, 10*time.Millisecond, "initial catch-up")

	f, err := os.OpenFile(path, os.O_APPEND|os.O_WRONLY, 0o644)
	require.NoError(t, err)
	_, err = f.WriteString("second\nthird\n")
	require.NoError(t, err)
	require.NoError(t, f.Close())

	require.Eventually(t, func() bool {
		return eng.TotalBytesIndexed() == 19
	}, 2*time.Second, 10*time.Millisecond, "appended bytes indexed")
	assert.Equal(t, uint64(4), eng.LineCount())

	cancel()
	assert.ErrorIs(t, <-done, context.Canceled)
}

func TestFollow_TruncationResetsSession(t *testing.T) {
	path := writeTemp(t, []byte("aaaa\nbbbb\ncccc\n"))

	eng := engine.New()
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	done := make(chan error, 1)
	go func() {
		done <- Follow(ctx, eng, path, FollowOptions{
			Options:      Options{ChunkSize: 64},
			PollInterval: 20 * time.Millisecond,
		})
	}()

	require.Eventually(t, func() bool {
		return eng.TotalBytesIndexed() == 15
	}, 2*time.Second, 10*time.Millisecond)

	// Truncate in place, as logrotate's copytruncate does.
	require.NoError(t, os.WriteFile(path, []byte("x\n"), 0o644))

	require.Eventually(t, func() bool {
		return eng.TotalBytesIndexed() == 2
	}, 2*time.Second, 10*time.Millisecond, "reindexed after shrink")

	cancel()
	assert.ErrorIs(t, <-done, context.Canceled)
}
