package walcore

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEncodeDecodeRoundTrip(t *testing.T) {
	payload := []byte("hello wal")
	buf := EncodeEntry(payload, 3)
	defer buf.Release()

	header, ok := DecodeEntry(buf.Bytes())
	require.True(t, ok)
	assert.Equal(t, uint32(3), header.Rollover)
	assert.Equal(t, uint32(len(payload)), header.Len)
}

func TestDecodeEntryRejectsZeroLength(t *testing.T) {
	buf := NewAlignedBuffer(HeaderSize)
	defer buf.Release()
	EncodeEntryInto(buf, nil, 0)

	_, ok := DecodeEntry(buf.Bytes())
	assert.False(t, ok)
}

func TestDecodeEntryRejectsCorruptCRC(t *testing.T) {
	payload := []byte("payload data")
	buf := EncodeEntry(payload, 1)
	defer buf.Release()

	data := buf.Bytes()
	data[4] ^= 0xFF // flip the bits of a byte inside the CRC-covered rollover field

	_, ok := DecodeEntry(data[:HeaderSize+len(payload)])
	assert.False(t, ok)
}

func TestNumBlocks(t *testing.T) {
	header := EntryHeader{Len: 1}
	assert.Equal(t, uint32(1), NumBlocks(header))

	header = EntryHeader{Len: BlockSize}
	assert.Equal(t, uint32(2), NumBlocks(header))
}

func TestEncodeEntryIntoZeroesStaleTail(t *testing.T) {
	buf := NewAlignedBuffer(2 * BlockSize)
	defer buf.Release()
	data := buf.Bytes()
	for i := range data {
		data[i] = 0xAA
	}

	EncodeEntryInto(buf, []byte("short"), 5)

	header, ok := DecodeHeader(data)
	require.True(t, ok)
	entryEnd := HeaderSize + int(header.Len)
	for i := entryEnd; i < len(data); i++ {
		assert.Equalf(t, byte(0), data[i], "byte %d should be zeroed", i)
	}
}
