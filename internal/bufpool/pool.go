// Package bufpool provides pooled aligned buffers to avoid a heap
// allocation (and mmap syscall) on every append.
package bufpool

import (
	"sync"

	"github.com/andrewbaptist/wal/internal/walcore"
)

// Bucket sizes in blocks. Entries larger than the largest bucket are
// allocated directly and never pooled.
const (
	blocks1  = 1
	blocks2  = 2
	blocks4  = 4
	blocks8  = 8
	blocks16 = 16
	blocks32 = 32
)

var pools = struct {
	p1, p2, p4, p8, p16, p32 sync.Pool
}{
	p1:  sync.Pool{New: func() any { return walcore.NewAlignedBuffer(blocks1 * walcore.BlockSize) }},
	p2:  sync.Pool{New: func() any { return walcore.NewAlignedBuffer(blocks2 * walcore.BlockSize) }},
	p4:  sync.Pool{New: func() any { return walcore.NewAlignedBuffer(blocks4 * walcore.BlockSize) }},
	p8:  sync.Pool{New: func() any { return walcore.NewAlignedBuffer(blocks8 * walcore.BlockSize) }},
	p16: sync.Pool{New: func() any { return walcore.NewAlignedBuffer(blocks16 * walcore.BlockSize) }},
	p32: sync.Pool{New: func() any { return walcore.NewAlignedBuffer(blocks32 * walcore.BlockSize) }},
}

func bucketFor(numBlocks int) *sync.Pool {
	switch {
	case numBlocks <= blocks1:
		return &pools.p1
	case numBlocks <= blocks2:
		return &pools.p2
	case numBlocks <= blocks4:
		return &pools.p4
	case numBlocks <= blocks8:
		return &pools.p8
	case numBlocks <= blocks16:
		return &pools.p16
	case numBlocks <= blocks32:
		return &pools.p32
	default:
		return nil
	}
}

// Get returns an aligned buffer whose Len is exactly ceil(n/BlockSize)
// blocks, drawn from a bucket sized at least that large when one exists.
// Callers must call Put when the buffer's completion has been observed.
func Get(n int) *walcore.AlignedBuffer {
	numBlocks := walcore.NumBlocksForBytes(n)
	size := numBlocks * walcore.BlockSize
	pool := bucketFor(numBlocks)
	if pool == nil {
		return walcore.NewAlignedBuffer(n)
	}
	buf := pool.Get().(*walcore.AlignedBuffer)
	if buf.Cap() < size {
		return walcore.NewAlignedBuffer(n)
	}
	buf.Resize(size)
	return buf
}

// Put returns buf to the bucket pool matching its full allocation size.
// Buffers whose capacity doesn't match a bucket exactly are released
// instead of pooled. The buffer's active view is reset to its full
// capacity so the next Get sees a clean slate to Resize from.
func Put(buf *walcore.AlignedBuffer) {
	capBlocks := buf.Cap() / walcore.BlockSize
	pool := bucketFor(capBlocks)
	if pool == nil || capBlocks*walcore.BlockSize != buf.Cap() || capBlocks&(capBlocks-1) != 0 {
		_ = buf.Release()
		return
	}
	buf.Resize(buf.Cap())
	pool.Put(buf)
}
