// Package wal implements a fixed-capacity, block-aligned, crash-safe
// circular write-ahead log backed by a pluggable asynchronous device.
package wal

import (
	"github.com/andrewbaptist/wal/internal/interfaces"
	"github.com/andrewbaptist/wal/internal/walcore"
)

// BlockSize is the fixed unit of device alignment and I/O granularity.
const BlockSize = walcore.BlockSize

// HeaderSize is the encoded size in bytes of an EntryHeader.
const HeaderSize = walcore.HeaderSize

// Position names a location in the logical, unbounded log.
type Position = walcore.Position

// AlignedBuffer owns a block-aligned heap allocation.
type AlignedBuffer = walcore.AlignedBuffer

// NewAlignedBuffer allocates a zeroed, block-aligned buffer of at least n
// bytes.
func NewAlignedBuffer(n int) *AlignedBuffer {
	return walcore.NewAlignedBuffer(n)
}

// EntryHeader is the 12-byte header stored at the first block of every
// entry.
type EntryHeader = walcore.EntryHeader

// EncodeEntry frames payload under rollover into a freshly allocated,
// CRC-stamped buffer.
func EncodeEntry(payload []byte, rollover uint32) *AlignedBuffer {
	return walcore.EncodeEntry(payload, rollover)
}

// DecodeEntry validates a full entry buffer (HeaderSize+len bytes) and
// returns its header.
func DecodeEntry(entry []byte) (EntryHeader, bool) {
	return walcore.DecodeEntry(entry)
}

// NumBlocks returns the number of blocks an entry with this header
// occupies.
func NumBlocks(header EntryHeader) uint32 {
	return walcore.NumBlocks(header)
}

// Device is the narrow capability set shared by every backing store.
type Device = interfaces.Device

// Logger is the logging surface the WAL and its devices log through.
type Logger = interfaces.Logger

// Observer receives metrics about WAL and device operations.
type Observer = interfaces.Observer

// ErrKind classifies the cause of a failure.
type ErrKind = walcore.ErrKind

const (
	KindIO              = walcore.KindIO
	KindInvalidArgument = walcore.KindInvalidArgument
	KindWouldBlock      = walcore.KindWouldBlock
	KindBrokenPipe      = walcore.KindBrokenPipe
	KindInvalidData     = walcore.KindInvalidData
)

// Error is the structured error type returned by this package and its
// devices.
type Error = walcore.Error

// NewError constructs an *Error with no wrapped cause.
func NewError(op string, kind ErrKind, msg string) *Error {
	return walcore.NewError(op, kind, msg)
}

// WrapError constructs an *Error around a lower-level cause.
func WrapError(op string, err error) *Error {
	return walcore.WrapError(op, err)
}

// IsKind reports whether err is an *Error of the given kind.
func IsKind(err error, kind ErrKind) bool {
	return walcore.IsKind(err, kind)
}
