package device

import (
	"iter"

	"golang.org/x/sys/unix"

	"github.com/andrewbaptist/wal/internal/bufpool"
	"github.com/andrewbaptist/wal/internal/constants"
	"github.com/andrewbaptist/wal/internal/interfaces"
	"github.com/andrewbaptist/wal/internal/logging"
	"github.com/andrewbaptist/wal/internal/walcore"
)

var _ interfaces.Device = (*ThreadOffload)(nil)

type offloadRequest struct {
	pos    walcore.Position
	buf    *walcore.AlignedBuffer
	notify bool
}

// ThreadOffload opens its backing file write-only with a direct-I/O hint
// and hands positional writes to a dedicated worker goroutine, the way a
// background worker drives positional writes against a no-cache fd.
type ThreadOffload struct {
	fd           int
	capacity     int
	submitCh     chan offloadRequest
	completionCh chan walcore.Position
	workerDone   chan struct{}
	closed       bool
	logger       interfaces.Logger
}

// NewThreadOffload opens path with O_DIRECT and starts the worker
// goroutine. The file must already be sized to capacityBlocks*BlockSize
// bytes.
func NewThreadOffload(path string, capacityBlocks int, logger interfaces.Logger) (*ThreadOffload, error) {
	if logger == nil {
		logger = logging.Default().With("device", "thread-offload")
	}
	fd, err := unix.Open(path, unix.O_WRONLY|unix.O_DIRECT, 0)
	if err != nil {
		return nil, walcore.WrapError("open", err)
	}

	t := &ThreadOffload{
		fd:           fd,
		capacity:     capacityBlocks,
		submitCh:     make(chan offloadRequest, constants.DefaultThreadOffloadChannelDepth),
		completionCh: make(chan walcore.Position, constants.DefaultThreadOffloadChannelDepth),
		workerDone:   make(chan struct{}),
		logger:       logger,
	}
	go t.run()
	return t, nil
}

func (t *ThreadOffload) run() {
	defer close(t.completionCh)
	defer close(t.workerDone)
	for req := range t.submitCh {
		_, err := unix.Pwrite(t.fd, req.buf.Bytes(), req.pos.ByteOffset(walcore.BlockSize))
		bufpool.Put(req.buf)
		if err != nil {
			t.logger.Warnf("thread-offload device: write at %s failed: %v", req.pos, err)
			continue
		}
		if req.notify {
			t.completionCh <- req.pos
		}
	}
}

// Capacity returns the device's size in blocks.
func (t *ThreadOffload) Capacity() int {
	return t.capacity
}

func (t *ThreadOffload) SubmitWrite(pos walcore.Position, buf *walcore.AlignedBuffer, notify bool) error {
	numBlocks := buf.Len() / walcore.BlockSize
	if int(pos.Offset)+numBlocks > t.capacity {
		bufpool.Put(buf)
		return walcore.NewError("submit-write", walcore.KindInvalidArgument, "write exceeds device capacity")
	}
	if t.closed {
		bufpool.Put(buf)
		return walcore.NewError("submit-write", walcore.KindBrokenPipe, "worker has disconnected")
	}

	select {
	case t.submitCh <- offloadRequest{pos: pos, buf: buf, notify: notify}:
		return nil
	default:
		bufpool.Put(buf)
		return walcore.NewError("submit-write", walcore.KindWouldBlock, "submission channel full")
	}
}

func (t *ThreadOffload) DrainCompletions() iter.Seq[walcore.Position] {
	return func(yield func(walcore.Position) bool) {
		for {
			select {
			case pos, ok := <-t.completionCh:
				if !ok {
					return
				}
				if !yield(pos) {
					return
				}
			default:
				return
			}
		}
	}
}

func (t *ThreadOffload) Read(byteOffset int64, n int) ([]byte, error) {
	buf := make([]byte, n)
	read, err := unix.Pread(t.fd, buf, byteOffset)
	if err != nil {
		return nil, walcore.WrapError("read", err)
	}
	if read != n {
		return nil, walcore.NewError("read", walcore.KindIO, "short read")
	}
	return buf, nil
}

func (t *ThreadOffload) Close() error {
	if t.closed {
		return nil
	}
	t.closed = true
	close(t.submitCh)
	<-t.workerDone
	return unix.Close(t.fd)
}
