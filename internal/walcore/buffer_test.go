package walcore

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewAlignedBufferRoundsUpToBlocks(t *testing.T) {
	buf := NewAlignedBuffer(1)
	defer buf.Release()
	assert.Equal(t, BlockSize, buf.Len())

	buf2 := NewAlignedBuffer(BlockSize + 1)
	defer buf2.Release()
	assert.Equal(t, 2*BlockSize, buf2.Len())
}

func TestAlignedBufferReleaseIdempotent(t *testing.T) {
	buf := NewAlignedBuffer(BlockSize)
	assert.NoError(t, buf.Release())
	assert.NoError(t, buf.Release())
}

func TestAlignedBufferBytesWritable(t *testing.T) {
	buf := NewAlignedBuffer(BlockSize)
	defer buf.Release()
	buf.Bytes()[0] = 0x42
	assert.Equal(t, byte(0x42), buf.Bytes()[0])
}

func TestAlignedBufferResizeNarrowsLenNotCap(t *testing.T) {
	buf := NewAlignedBuffer(3 * BlockSize)
	defer buf.Release()
	require.Equal(t, 3*BlockSize, buf.Len())
	require.Equal(t, 3*BlockSize, buf.Cap())

	buf.Resize(BlockSize)
	assert.Equal(t, BlockSize, buf.Len())
	assert.Equal(t, 3*BlockSize, buf.Cap(), "Cap reports the full allocation regardless of Resize")

	buf.Resize(buf.Cap())
	assert.Equal(t, 3*BlockSize, buf.Len())
}
