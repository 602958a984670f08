package device

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/andrewbaptist/wal/internal/walcore"
)

// O_DIRECT requires a filesystem that supports it and block-aligned I/O;
// these tests are skipped when the backing tmp filesystem rejects it,
// which is common under container overlay filesystems in CI.
func newTestThreadOffload(t *testing.T, capacityBlocks int) (*ThreadOffload, string) {
	t.Helper()
	path := filepath.Join(t.TempDir(), "wal.dat")
	f, err := os.OpenFile(path, os.O_RDWR|os.O_CREATE, 0o644)
	require.NoError(t, err)
	require.NoError(t, f.Truncate(int64(capacityBlocks)*walcore.BlockSize))
	require.NoError(t, f.Close())

	dev, err := NewThreadOffload(path, capacityBlocks, nil)
	if err != nil {
		t.Skipf("O_DIRECT unavailable on this filesystem: %v", err)
	}
	return dev, path
}

func TestThreadOffloadSubmitAndDrain(t *testing.T) {
	dev, _ := newTestThreadOffload(t, 4)
	defer dev.Close()

	buf := walcore.NewAlignedBuffer(walcore.BlockSize)
	walcore.EncodeEntryInto(buf, []byte("abc"), 0)
	require.NoError(t, dev.SubmitWrite(walcore.Position{Offset: 0}, buf, true))

	var completions []walcore.Position
	require.Eventually(t, func() bool {
		completions = append(completions, collect(dev.DrainCompletions())...)
		return len(completions) == 1
	}, 2*time.Second, 10*time.Millisecond)

	assert.Equal(t, walcore.Position{Offset: 0}, completions[0])
}

func TestThreadOffloadSubmitWriteExceedsCapacity(t *testing.T) {
	dev, _ := newTestThreadOffload(t, 1)
	defer dev.Close()

	buf := walcore.NewAlignedBuffer(2 * walcore.BlockSize)
	err := dev.SubmitWrite(walcore.Position{Offset: 0}, buf, true)
	assert.True(t, walcore.IsKind(err, walcore.KindInvalidArgument))
}

func TestThreadOffloadCloseStopsWorker(t *testing.T) {
	dev, _ := newTestThreadOffload(t, 2)
	require.NoError(t, dev.Close())

	buf := walcore.NewAlignedBuffer(walcore.BlockSize)
	err := dev.SubmitWrite(walcore.Position{Offset: 0}, buf, true)
	assert.True(t, walcore.IsKind(err, walcore.KindBrokenPipe))
}
