// Package walcore holds the leaf types shared by the wal package and the
// concrete device implementations under device/. It has no dependency on
// either, which is what lets both depend on it without an import cycle.
package walcore

import "fmt"

// Position names a location in the logical, unbounded log as a
// (rollover, offset-in-blocks) pair. Ordering is lexicographic on
// (Rollover, Offset).
type Position struct {
	Rollover uint32
	Offset   uint32
}

// Less reports whether p sorts before other.
func (p Position) Less(other Position) bool {
	if p.Rollover != other.Rollover {
		return p.Rollover < other.Rollover
	}
	return p.Offset < other.Offset
}

// Compare returns -1, 0, or 1 as p is less than, equal to, or greater than
// other.
func (p Position) Compare(other Position) int {
	switch {
	case p.Less(other):
		return -1
	case other.Less(p):
		return 1
	default:
		return 0
	}
}

// ByteOffset returns the byte offset on the device that Offset names, given
// a block size.
func (p Position) ByteOffset(blockSize int64) int64 {
	return int64(p.Offset) * blockSize
}

func (p Position) String() string {
	return fmt.Sprintf("%d:%d", p.Rollover, p.Offset)
}
