package walcore

import (
	"errors"
	"syscall"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNewErrorKind(t *testing.T) {
	err := NewError("append", KindWouldBlock, "queue full")
	assert.True(t, IsKind(err, KindWouldBlock))
	assert.False(t, IsKind(err, KindIO))
	assert.Contains(t, err.Error(), "would-block")
}

func TestWrapErrorMapsErrno(t *testing.T) {
	err := WrapError("submit-write", syscall.EAGAIN)
	assert.True(t, IsKind(err, KindWouldBlock))

	err = WrapError("submit-write", syscall.EPIPE)
	assert.True(t, IsKind(err, KindBrokenPipe))

	err = WrapError("submit-write", syscall.EINVAL)
	assert.True(t, IsKind(err, KindInvalidArgument))

	err = WrapError("submit-write", syscall.ENOSPC)
	assert.True(t, IsKind(err, KindIO))
}

func TestErrorIsMatchesByKind(t *testing.T) {
	sentinel := NewError("", KindInvalidData, "")
	err := NewError("iterate", KindInvalidData, "crc mismatch")
	assert.True(t, errors.Is(err, sentinel))
}

func TestWrapErrorNilIsNil(t *testing.T) {
	assert.Nil(t, WrapError("op", nil))
}

func TestWrapErrorPreservesExistingError(t *testing.T) {
	original := NewError("read", KindInvalidArgument, "out of range")
	wrapped := WrapError("outer", original)
	assert.Same(t, original, wrapped)
}
