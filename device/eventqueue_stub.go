//go:build !linux

package device

import (
	"iter"

	"github.com/andrewbaptist/wal/internal/interfaces"
	"github.com/andrewbaptist/wal/internal/walcore"
)

var _ interfaces.Device = (*EventQueue)(nil)

// EventQueue is unavailable outside linux; every method reports
// invalid-argument.
type EventQueue struct{}

// NewEventQueue always fails on non-linux platforms.
func NewEventQueue(fd int, capacityBlocks int, logger interfaces.Logger) (*EventQueue, error) {
	return nil, walcore.NewError("io_setup", walcore.KindInvalidArgument, "event-queue device is not supported on this platform")
}

func (e *EventQueue) SubmitWrite(pos walcore.Position, buf *walcore.AlignedBuffer, notify bool) error {
	return walcore.NewError("submit-write", walcore.KindInvalidArgument, "event-queue device is not supported on this platform")
}

func (e *EventQueue) DrainCompletions() iter.Seq[walcore.Position] {
	return func(yield func(walcore.Position) bool) {}
}

func (e *EventQueue) Read(byteOffset int64, n int) ([]byte, error) {
	return nil, walcore.NewError("read", walcore.KindInvalidArgument, "event-queue device is not supported on this platform")
}

func (e *EventQueue) Close() error {
	return nil
}
