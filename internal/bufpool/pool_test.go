package bufpool

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/andrewbaptist/wal/internal/walcore"
)

func TestGetReturnsExactlyTheRequestedBlockCount(t *testing.T) {
	buf := Get(100)
	defer Put(buf)
	assert.Equal(t, walcore.BlockSize, buf.Len(), "100 bytes rounds up to exactly one block")
}

func TestGetFromALargerBucketIsSlicedDown(t *testing.T) {
	// 3 blocks falls in the 4-block bucket, but Len must reflect only the
	// 3 blocks actually requested so a device never writes past the entry.
	buf := Get(3 * walcore.BlockSize)
	defer Put(buf)
	assert.Equal(t, 3*walcore.BlockSize, buf.Len())
	assert.Equal(t, 4*walcore.BlockSize, buf.Cap())
}

func TestGetOversizedBypassesPool(t *testing.T) {
	buf := Get(64 * walcore.BlockSize)
	defer buf.Release()
	assert.Equal(t, 64*walcore.BlockSize, buf.Len())
	assert.Equal(t, 64*walcore.BlockSize, buf.Cap())
}

func TestPutGetRoundTrip(t *testing.T) {
	buf := Get(walcore.BlockSize)
	Put(buf)

	buf2 := Get(walcore.BlockSize)
	defer Put(buf2)
	assert.Equal(t, walcore.BlockSize, buf2.Len())
}

func TestPutThenGetSmallerFromSameBucketIsSlicedDown(t *testing.T) {
	buf := Get(4 * walcore.BlockSize)
	Put(buf)

	buf2 := Get(3 * walcore.BlockSize)
	defer Put(buf2)
	assert.Equal(t, 3*walcore.BlockSize, buf2.Len())
}
