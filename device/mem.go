// Package device provides the concrete backing stores the wal package
// drives through internal/interfaces.Device: an in-memory reference
// implementation, a synchronous fsync-on-drain file, a thread-offloaded
// direct-I/O file, and (on linux) a completion-ring and an event-queue AIO
// device.
package device

import (
	"iter"
	"sync"

	"github.com/andrewbaptist/wal/internal/bufpool"
	"github.com/andrewbaptist/wal/internal/interfaces"
	"github.com/andrewbaptist/wal/internal/walcore"
)

var _ interfaces.Device = (*Mem)(nil)

// Mem is an in-memory reference device. Writes are stored keyed by block
// offset; notify=true writes queue their position for the next drain.
type Mem struct {
	mu       sync.Mutex
	capacity int
	blocks   map[uint32][]byte
	pending  []walcore.Position
}

// NewMem constructs an in-memory device with room for capacityBlocks
// blocks.
func NewMem(capacityBlocks int) *Mem {
	return &Mem{
		capacity: capacityBlocks,
		blocks:   make(map[uint32][]byte),
	}
}

// Capacity returns the device's size in blocks.
func (m *Mem) Capacity() int {
	return m.capacity
}

func (m *Mem) SubmitWrite(pos walcore.Position, buf *walcore.AlignedBuffer, notify bool) error {
	numBlocks := buf.Len() / walcore.BlockSize
	if int(pos.Offset)+numBlocks > m.capacity {
		bufpool.Put(buf)
		return walcore.NewError("submit-write", walcore.KindInvalidArgument, "write exceeds device capacity")
	}

	m.mu.Lock()
	data := buf.Bytes()
	for i := 0; i < numBlocks; i++ {
		block := make([]byte, walcore.BlockSize)
		copy(block, data[i*walcore.BlockSize:(i+1)*walcore.BlockSize])
		m.blocks[pos.Offset+uint32(i)] = block
	}
	if notify {
		m.pending = append(m.pending, pos)
	}
	m.mu.Unlock()

	bufpool.Put(buf)
	return nil
}

func (m *Mem) DrainCompletions() iter.Seq[walcore.Position] {
	m.mu.Lock()
	pending := m.pending
	m.pending = nil
	m.mu.Unlock()

	return func(yield func(walcore.Position) bool) {
		for _, p := range pending {
			if !yield(p) {
				return
			}
		}
	}
}

func (m *Mem) Read(byteOffset int64, n int) ([]byte, error) {
	if byteOffset < 0 || n < 0 {
		return nil, walcore.NewError("read", walcore.KindInvalidArgument, "negative offset or length")
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	result := make([]byte, 0, n)
	block := uint32(byteOffset / walcore.BlockSize)
	within := int(byteOffset % walcore.BlockSize)
	for len(result) < n {
		data := m.blocks[block]
		if data == nil {
			data = make([]byte, walcore.BlockSize)
		}
		take := walcore.BlockSize - within
		if remaining := n - len(result); take > remaining {
			take = remaining
		}
		result = append(result, data[within:within+take]...)
		within = 0
		block++
	}
	return result, nil
}

func (m *Mem) Close() error {
	return nil
}
