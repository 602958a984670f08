//go:build linux

package device

import (
	"iter"

	"github.com/pawelgaczynski/giouring"
	"golang.org/x/sys/unix"

	"github.com/andrewbaptist/wal/internal/bufpool"
	"github.com/andrewbaptist/wal/internal/constants"
	"github.com/andrewbaptist/wal/internal/interfaces"
	"github.com/andrewbaptist/wal/internal/logging"
	"github.com/andrewbaptist/wal/internal/walcore"
)

var _ interfaces.Device = (*CompletionRing)(nil)

type ringCompletion struct {
	pos    walcore.Position
	buf    *walcore.AlignedBuffer
	notify bool
}

// CompletionRing submits writes on a kernel submission ring and harvests
// completions from a completion ring. Each in-flight write is tracked by a
// heap-pinned completion record keyed by the SQE's user-data token, the
// only safe way to keep the control block and buffer valid for the
// kernel's lifetime of the request.
type CompletionRing struct {
	ring      *giouring.Ring
	fd        int
	capacity  int
	inFlight  map[uint64]*ringCompletion
	nextToken uint64
	logger    interfaces.Logger
}

// NewCompletionRing creates a ring for writes against fd, an already-opened
// file descriptor sized to capacityBlocks*BlockSize bytes. It does not probe
// the kernel for write-opcode support; an unsupported opcode surfaces only
// as a failed completion at drain time.
func NewCompletionRing(fd int, capacityBlocks int, logger interfaces.Logger) (*CompletionRing, error) {
	if logger == nil {
		logger = logging.Default().With("device", "completion-ring")
	}
	ring, err := giouring.CreateRing(uint32(constants.DefaultSubmissionQueueDepth))
	if err != nil {
		return nil, walcore.WrapError("create-ring", err)
	}
	return &CompletionRing{
		ring:     ring,
		fd:       fd,
		capacity: capacityBlocks,
		inFlight: make(map[uint64]*ringCompletion),
		logger:   logger,
	}, nil
}

// Capacity returns the device's size in blocks.
func (c *CompletionRing) Capacity() int {
	return c.capacity
}

func (c *CompletionRing) SubmitWrite(pos walcore.Position, buf *walcore.AlignedBuffer, notify bool) error {
	numBlocks := buf.Len() / walcore.BlockSize
	if int(pos.Offset)+numBlocks > c.capacity {
		bufpool.Put(buf)
		return walcore.NewError("submit-write", walcore.KindInvalidArgument, "write exceeds device capacity")
	}

	sqe := c.ring.GetSQE()
	if sqe == nil {
		bufpool.Put(buf)
		return walcore.NewError("submit-write", walcore.KindWouldBlock, "submission ring full")
	}

	completion := &ringCompletion{pos: pos, buf: buf, notify: notify}
	token := c.nextToken
	c.nextToken++
	c.inFlight[token] = completion

	sqe.PrepWrite(int32(c.fd), buf.Bytes(), uint64(pos.ByteOffset(walcore.BlockSize)), 0)
	sqe.UserData = token

	if _, err := c.ring.Submit(); err != nil {
		delete(c.inFlight, token)
		bufpool.Put(buf)
		return walcore.WrapError("submit-write", err)
	}
	return nil
}

func (c *CompletionRing) DrainCompletions() iter.Seq[walcore.Position] {
	return func(yield func(walcore.Position) bool) {
		for {
			cqe, err := c.ring.PeekCQE()
			if err != nil || cqe == nil {
				return
			}
			token := cqe.UserData
			completion := c.inFlight[token]
			delete(c.inFlight, token)
			c.ring.CQESeen(cqe)

			if completion == nil {
				continue
			}
			bufpool.Put(completion.buf)
			if cqe.Res < 0 {
				c.logger.Warnf("completion-ring device: write at %s failed: result %d", completion.pos, cqe.Res)
				continue
			}
			if completion.notify {
				if !yield(completion.pos) {
					return
				}
			}
		}
	}
}

func (c *CompletionRing) Read(byteOffset int64, n int) ([]byte, error) {
	buf := make([]byte, n)
	read, err := unix.Pread(c.fd, buf, byteOffset)
	if err != nil {
		return nil, walcore.WrapError("read", err)
	}
	if read != n {
		return nil, walcore.NewError("read", walcore.KindIO, "short read")
	}
	return buf, nil
}

func (c *CompletionRing) Close() error {
	c.ring.QueueExit()
	return unix.Close(c.fd)
}
