package device

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/andrewbaptist/wal/internal/walcore"
)

func collect(seq func(func(walcore.Position) bool)) []walcore.Position {
	var out []walcore.Position
	seq(func(p walcore.Position) bool {
		out = append(out, p)
		return true
	})
	return out
}

func TestMemSubmitWriteAndDrain(t *testing.T) {
	m := NewMem(4)
	buf := walcore.EncodeEntry([]byte("abc"), 0)

	require.NoError(t, m.SubmitWrite(walcore.Position{Offset: 0}, buf, true))

	completions := collect(m.DrainCompletions())
	require.Len(t, completions, 1)
	assert.Equal(t, walcore.Position{Offset: 0}, completions[0])

	// A second drain before any new write yields nothing.
	assert.Empty(t, collect(m.DrainCompletions()))
}

func TestMemSubmitWriteNotifyFalseSuppressed(t *testing.T) {
	m := NewMem(4)
	buf := walcore.EncodeEntry([]byte("abc"), 0)

	require.NoError(t, m.SubmitWrite(walcore.Position{Offset: 0}, buf, false))
	assert.Empty(t, collect(m.DrainCompletions()))

	data, err := m.Read(0, walcore.HeaderSize+3)
	require.NoError(t, err)
	header, ok := walcore.DecodeEntry(data)
	require.True(t, ok)
	assert.Equal(t, uint32(3), header.Len)
}

func TestMemSubmitWriteExceedsCapacity(t *testing.T) {
	m := NewMem(1)
	buf := walcore.NewAlignedBuffer(2 * walcore.BlockSize)

	err := m.SubmitWrite(walcore.Position{Offset: 0}, buf, true)
	assert.True(t, walcore.IsKind(err, walcore.KindInvalidArgument))
}

func TestMemReadUninitializedIsZero(t *testing.T) {
	m := NewMem(4)
	data, err := m.Read(0, walcore.BlockSize)
	require.NoError(t, err)
	for _, b := range data {
		assert.Equal(t, byte(0), b)
	}
}

func TestMemReadSpansBlocks(t *testing.T) {
	m := NewMem(4)
	payload := make([]byte, walcore.BlockSize) // header + payload spans two blocks
	for i := range payload {
		payload[i] = byte(i)
	}
	buf := walcore.EncodeEntry(payload, 0)
	require.NoError(t, m.SubmitWrite(walcore.Position{Offset: 0}, buf, true))

	data, err := m.Read(0, walcore.HeaderSize+len(payload))
	require.NoError(t, err)
	header, ok := walcore.DecodeEntry(data)
	require.True(t, ok)
	assert.Equal(t, uint32(len(payload)), header.Len)
}
