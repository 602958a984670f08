package device

import (
	"iter"
	"os"
	"sync"

	"golang.org/x/sys/unix"

	"github.com/andrewbaptist/wal/internal/bufpool"
	"github.com/andrewbaptist/wal/internal/interfaces"
	"github.com/andrewbaptist/wal/internal/logging"
	"github.com/andrewbaptist/wal/internal/walcore"
)

var _ interfaces.Device = (*Sync)(nil)

func emptyPositions(yield func(walcore.Position) bool) {}

// Sync is a positional-write device that defers durability to a single
// fdatasync-equivalent call on drain.
type Sync struct {
	mu       sync.Mutex
	file     *os.File
	capacity int
	pending  []walcore.Position
	logger   interfaces.Logger
}

// NewSync wraps an already-opened, pre-sized file. logger may be nil, in
// which case the package default logger is used.
func NewSync(file *os.File, capacityBlocks int, logger interfaces.Logger) *Sync {
	if logger == nil {
		logger = logging.Default().With("device", "sync")
	}
	return &Sync{file: file, capacity: capacityBlocks, logger: logger}
}

// Capacity returns the device's size in blocks.
func (s *Sync) Capacity() int {
	return s.capacity
}

func (s *Sync) SubmitWrite(pos walcore.Position, buf *walcore.AlignedBuffer, notify bool) error {
	numBlocks := buf.Len() / walcore.BlockSize
	if int(pos.Offset)+numBlocks > s.capacity {
		bufpool.Put(buf)
		return walcore.NewError("submit-write", walcore.KindInvalidArgument, "write exceeds device capacity")
	}

	_, err := s.file.WriteAt(buf.Bytes(), pos.ByteOffset(walcore.BlockSize))
	bufpool.Put(buf)
	if err != nil {
		return walcore.WrapError("submit-write", err)
	}

	if notify {
		s.mu.Lock()
		s.pending = append(s.pending, pos)
		s.mu.Unlock()
	}
	return nil
}

// DrainCompletions issues a single fdatasync and, on success, yields every
// position accumulated since the last drain. On sync failure the pending
// positions are dropped rather than re-queued: a documented limitation,
// the caller will observe a lost completion rather than a false one.
func (s *Sync) DrainCompletions() iter.Seq[walcore.Position] {
	s.mu.Lock()
	pending := s.pending
	s.pending = nil
	s.mu.Unlock()

	if len(pending) == 0 {
		return emptyPositions
	}

	if err := unix.Fdatasync(int(s.file.Fd())); err != nil {
		s.logger.Warnf("sync device: fdatasync failed, dropping %d pending completions: %v", len(pending), err)
		return emptyPositions
	}

	return func(yield func(walcore.Position) bool) {
		for _, p := range pending {
			if !yield(p) {
				return
			}
		}
	}
}

func (s *Sync) Read(byteOffset int64, n int) ([]byte, error) {
	buf := make([]byte, n)
	read, err := s.file.ReadAt(buf, byteOffset)
	if err != nil {
		return nil, walcore.WrapError("read", err)
	}
	if read != n {
		return nil, walcore.NewError("read", walcore.KindIO, "short read")
	}
	return buf, nil
}

func (s *Sync) Close() error {
	return s.file.Close()
}
