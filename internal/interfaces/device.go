// Package interfaces provides internal interface definitions for the wal
// module. These are separate from the concrete device implementations under
// device/ to avoid a circular import between the root package (which
// constructs devices from a URI) and that package.
package interfaces

import (
	"iter"

	"github.com/andrewbaptist/wal/internal/walcore"
)

// Device is the narrow capability set shared by every backing store: submit
// one aligned write, later report which previously-submitted writes are
// durable, and perform synchronous positional reads.
type Device interface {
	// SubmitWrite enqueues a write of buf at pos. buf is owned by the
	// device from the call on; asynchronous devices hold it until a drain
	// harvests the write's completion, notify=false writes included. If
	// notify is true, pos must later appear among the device's
	// completions; notify=false writes never do.
	SubmitWrite(pos walcore.Position, buf *walcore.AlignedBuffer, notify bool) error

	// DrainCompletions returns a finite, non-blocking sequence of
	// positions that have become durable since the last drain. A
	// position appears at most once across all drains.
	DrainCompletions() iter.Seq[walcore.Position]

	// Read performs a synchronous positional read of exactly n bytes.
	Read(byteOffset int64, n int) ([]byte, error)

	// Close releases any kernel or OS resources the device holds.
	Close() error
}

// Logger is the logging surface devices and the WAL core log through.
type Logger interface {
	Debugf(format string, args ...interface{})
	Infof(format string, args ...interface{})
	Warnf(format string, args ...interface{})
	Errorf(format string, args ...interface{})
}

// Observer receives metrics about WAL and device operations.
// Implementations must be safe to call from the single goroutine driving
// the WAL; they are never called concurrently by this package.
type Observer interface {
	ObserveAppend(bytes uint64, latencyNs uint64, success bool)
	ObserveDrain(count int, latencyNs uint64)
	ObserveRecoveryScan(blocksScanned int, latencyNs uint64)
	ObserveIterate(entries int, success bool)
}
