package wal

import (
	"iter"
	"sync"
)

// MockDevice is a call-counting, in-memory Device for exercising the WAL
// core's error paths without a real backing store. Exported for use in
// this package's own tests and by downstream consumers' tests.
type MockDevice struct {
	mu sync.Mutex

	SubmitWriteCalls int
	DrainCalls       int
	ReadCalls        int
	CloseCalls       int

	SubmitWriteErr error
	ReadErr        error
	CloseErr       error

	blocks  map[uint32][]byte
	pending []Position
}

// NewMockDevice returns a ready-to-use MockDevice.
func NewMockDevice() *MockDevice {
	return &MockDevice{blocks: make(map[uint32][]byte)}
}

func (m *MockDevice) SubmitWrite(pos Position, buf *AlignedBuffer, notify bool) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.SubmitWriteCalls++

	if m.SubmitWriteErr != nil {
		buf.Release()
		return m.SubmitWriteErr
	}

	data := buf.Bytes()
	numBlocks := buf.Len() / BlockSize
	for i := 0; i < numBlocks; i++ {
		block := make([]byte, BlockSize)
		copy(block, data[i*BlockSize:(i+1)*BlockSize])
		m.blocks[pos.Offset+uint32(i)] = block
	}
	buf.Release()

	if notify {
		m.pending = append(m.pending, pos)
	}
	return nil
}

func (m *MockDevice) DrainCompletions() iter.Seq[Position] {
	m.mu.Lock()
	m.DrainCalls++
	pending := m.pending
	m.pending = nil
	m.mu.Unlock()

	return func(yield func(Position) bool) {
		for _, p := range pending {
			if !yield(p) {
				return
			}
		}
	}
}

func (m *MockDevice) Read(byteOffset int64, n int) ([]byte, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.ReadCalls++

	if m.ReadErr != nil {
		return nil, m.ReadErr
	}

	result := make([]byte, 0, n)
	block := uint32(byteOffset / BlockSize)
	within := int(byteOffset % BlockSize)
	for len(result) < n {
		data := m.blocks[block]
		if data == nil {
			data = make([]byte, BlockSize)
		}
		take := BlockSize - within
		if remaining := n - len(result); take > remaining {
			take = remaining
		}
		result = append(result, data[within:within+take]...)
		within = 0
		block++
	}
	return result, nil
}

// CorruptBlock flips every bit of the byte at byteIndex within the stored block at
// blockOffset, for tests that need to exercise CRC-mismatch handling.
func (m *MockDevice) CorruptBlock(blockOffset uint32, byteIndex int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if block := m.blocks[blockOffset]; block != nil {
		block[byteIndex] ^= 0xFF
	}
}

func (m *MockDevice) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.CloseCalls++
	return m.CloseErr
}

var _ Device = (*MockDevice)(nil)
