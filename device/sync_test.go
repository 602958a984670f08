package device

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/andrewbaptist/wal/internal/walcore"
)

func openTestFile(t *testing.T, capacityBlocks int) *os.File {
	t.Helper()
	path := filepath.Join(t.TempDir(), "wal.dat")
	f, err := os.OpenFile(path, os.O_RDWR|os.O_CREATE, 0o644)
	require.NoError(t, err)
	require.NoError(t, f.Truncate(int64(capacityBlocks)*walcore.BlockSize))
	return f
}

func TestSyncSubmitWriteAndDrain(t *testing.T) {
	f := openTestFile(t, 4)
	defer f.Close()
	s := NewSync(f, 4, nil)

	buf := walcore.EncodeEntry([]byte("hello"), 0)
	require.NoError(t, s.SubmitWrite(walcore.Position{Offset: 0}, buf, true))

	completions := collect(s.DrainCompletions())
	require.Len(t, completions, 1)
	assert.Equal(t, walcore.Position{Offset: 0}, completions[0])
}

func TestSyncDrainEmptyWhenNoPending(t *testing.T) {
	f := openTestFile(t, 2)
	defer f.Close()
	s := NewSync(f, 2, nil)

	assert.Empty(t, collect(s.DrainCompletions()))
}

func TestSyncRead(t *testing.T) {
	f := openTestFile(t, 2)
	defer f.Close()
	s := NewSync(f, 2, nil)

	payload := []byte("round trip me")
	buf := walcore.EncodeEntry(payload, 2)
	require.NoError(t, s.SubmitWrite(walcore.Position{Offset: 0}, buf, true))
	_ = collect(s.DrainCompletions())

	data, err := s.Read(0, walcore.HeaderSize+len(payload))
	require.NoError(t, err)
	header, ok := walcore.DecodeEntry(data)
	require.True(t, ok)
	assert.Equal(t, uint32(2), header.Rollover)
}

func TestSyncSubmitWriteExceedsCapacity(t *testing.T) {
	f := openTestFile(t, 1)
	defer f.Close()
	s := NewSync(f, 1, nil)

	buf := walcore.NewAlignedBuffer(2 * walcore.BlockSize)
	err := s.SubmitWrite(walcore.Position{Offset: 0}, buf, true)
	assert.True(t, walcore.IsKind(err, walcore.KindInvalidArgument))
}
