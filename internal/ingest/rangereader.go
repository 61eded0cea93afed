package ingest

import (
	"fmt"
	"io"
	"os"

	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/loglens/loglens/internal/errors"
)

// RangeReader serves random-access byte ranges from the source file for
// line-content queries after the engine has discarded the bytes. Reads go
// through an LRU cache of aligned blocks, so paging back and forth over the
// same region of a large log does not re-hit the disk.
//
// The file may grow while a RangeReader is open; only full blocks are
// cached, so a partially written tail block is always re-read.
type RangeReader struct {
	f         *os.File
	blockSize int64
	cache     *lru.Cache[int64, []byte]
}

// NewRangeReader opens path for cached range reads. blockKB is the cached
// block size in KiB, blocks the number of blocks kept.
func NewRangeReader(path string, blockKB, blocks int) (*RangeReader, error) {
	if blockKB <= 0 {
		blockKB = 64
	}
	if blocks <= 0 {
		blocks = 64
	}
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errors.New(errors.ErrCodeFileNotFound,
				fmt.Sprintf("file not found: %s", path), err)
		}
		return nil, errors.IOError(fmt.Sprintf("opening %s", path), err)
	}
	cache, _ := lru.New[int64, []byte](blocks)
	return &RangeReader{
		f:         f,
		blockSize: int64(blockKB) * 1024,
		cache:     cache,
	}, nil
}

// ReadRange returns the file bytes in [start, end). A range extending past
// the end of the file is truncated to what exists.
func (r *RangeReader) ReadRange(start, end uint64) ([]byte, error) {
	if end <= start {
		return nil, nil
	}
	out := make([]byte, 0, end-start)

	for base := int64(start) - int64(start)%r.blockSize; base < int64(end); base += r.blockSize {
		blk, err := r.block(base)
		if err != nil {
			return nil, err
		}
		lo := int64(0)
		if int64(start) > base {
			lo = int64(start) - base
		}
		hi := int64(end) - base
		if hi > int64(len(blk)) {
			hi = int64(len(blk))
		}
		if lo >= hi {
			break // past EOF
		}
		out = append(out, blk[lo:hi]...)
	}
	return out, nil
}

// block returns the block starting at base, possibly short at EOF.
func (r *RangeReader) block(base int64) ([]byte, error) {
	if blk, ok := r.cache.Get(base); ok {
		return blk, nil
	}

	buf := make([]byte, r.blockSize)
	n, err := r.f.ReadAt(buf, base)
	if err != nil && err != io.EOF {
		return nil, errors.IOError(fmt.Sprintf("reading block at %d", base), err)
	}
	blk := buf[:n]

	// Cache only full blocks: a short read is the growing tail.
	if int64(n) == r.blockSize {
		r.cache.Add(base, blk)
	}
	return blk, nil
}

// Close releases the underlying file.
func (r *RangeReader) Close() error {
	return r.f.Close()
}
