package walcore

import (
	"fmt"
	"runtime"

	"golang.org/x/sys/unix"

	"github.com/andrewbaptist/wal/internal/logging"
)

// BlockSize is the fixed unit of device alignment and I/O granularity.
const BlockSize = 4096

// HeaderSize is the encoded size in bytes of an EntryHeader.
const HeaderSize = 12

// AlignedBuffer owns a heap allocation whose base address and length are
// both multiples of BlockSize. It is backed by an anonymous, private mmap
// region rather than make([]byte, ...) so the address is page-aligned
// without cgo.
//
// full is the entire mmap'd region; data is the active view a caller sees
// through Bytes/Len, which Resize may narrow to less than full so a
// pooled, over-sized allocation can stand in for an exactly-sized one.
type AlignedBuffer struct {
	full     []byte
	data     []byte
	released bool
}

// NewAlignedBuffer allocates a zeroed buffer of ceil(n/BlockSize)*BlockSize
// bytes. Allocation failure is treated as fatal, matching the semantics of
// a pinned I/O buffer that the rest of the system assumes always succeeds.
func NewAlignedBuffer(n int) *AlignedBuffer {
	size := NumBlocksForBytes(n) * BlockSize
	mem, err := unix.Mmap(-1, 0, size, unix.PROT_READ|unix.PROT_WRITE, unix.MAP_PRIVATE|unix.MAP_ANONYMOUS)
	if err != nil {
		panic(fmt.Sprintf("walcore: aligned allocation of %d bytes failed: %v", size, err))
	}
	b := &AlignedBuffer{full: mem, data: mem}
	runtime.SetFinalizer(b, func(b *AlignedBuffer) {
		if !b.released {
			// A buffer reaching the finalizer unreleased is a programming
			// error: some device path dropped it without draining a
			// completion for it.
			logging.Default().Warn("aligned buffer garbage-collected without release", "bytes", len(b.full))
			_ = unix.Munmap(b.full)
		}
	})
	return b
}

// Bytes returns the mutable active view.
func (b *AlignedBuffer) Bytes() []byte {
	return b.data
}

// Len returns the active view's length in bytes, the length a device must
// treat as the entry's true on-disk size.
func (b *AlignedBuffer) Len() int {
	return len(b.data)
}

// Cap returns the full size of the underlying allocation in bytes,
// independent of any Resize.
func (b *AlignedBuffer) Cap() int {
	return len(b.full)
}

// Resize narrows the active view to the first n bytes of the underlying
// allocation. n must not exceed Cap().
func (b *AlignedBuffer) Resize(n int) {
	b.data = b.full[:n]
}

// Release returns the underlying mapping. Safe to call more than once.
func (b *AlignedBuffer) Release() error {
	if b.released {
		return nil
	}
	b.released = true
	runtime.SetFinalizer(b, nil)
	return unix.Munmap(b.full)
}

// NumBlocksForBytes returns ceil(n/BlockSize).
func NumBlocksForBytes(n int) int {
	return (n + BlockSize - 1) / BlockSize
}
