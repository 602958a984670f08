//go:build !linux

package device

import (
	"iter"

	"github.com/andrewbaptist/wal/internal/interfaces"
	"github.com/andrewbaptist/wal/internal/walcore"
)

var _ interfaces.Device = (*CompletionRing)(nil)

// CompletionRing is unavailable outside linux; every method reports
// invalid-argument.
type CompletionRing struct{}

// NewCompletionRing always fails on non-linux platforms.
func NewCompletionRing(fd int, capacityBlocks int, logger interfaces.Logger) (*CompletionRing, error) {
	return nil, walcore.NewError("create-ring", walcore.KindInvalidArgument, "completion-ring device is not supported on this platform")
}

func (c *CompletionRing) SubmitWrite(pos walcore.Position, buf *walcore.AlignedBuffer, notify bool) error {
	return walcore.NewError("submit-write", walcore.KindInvalidArgument, "completion-ring device is not supported on this platform")
}

func (c *CompletionRing) DrainCompletions() iter.Seq[walcore.Position] {
	return func(yield func(walcore.Position) bool) {}
}

func (c *CompletionRing) Read(byteOffset int64, n int) ([]byte, error) {
	return nil, walcore.NewError("read", walcore.KindInvalidArgument, "completion-ring device is not supported on this platform")
}

func (c *CompletionRing) Close() error {
	return nil
}
