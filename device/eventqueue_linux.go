//go:build linux

package device

import (
	"encoding/binary"
	"iter"
	"sync"
	"unsafe"

	"golang.org/x/sys/unix"

	"github.com/andrewbaptist/wal/internal/bufpool"
	"github.com/andrewbaptist/wal/internal/constants"
	"github.com/andrewbaptist/wal/internal/interfaces"
	"github.com/andrewbaptist/wal/internal/logging"
	"github.com/andrewbaptist/wal/internal/walcore"
)

// Legacy Linux AIO syscall numbers (amd64). There is no golang.org/x/sys
// wrapper for this kernel interface, the same situation the uring setup
// syscalls were in, so these are hand-rolled the same way.
const (
	sysIOSetup     = 206
	sysIODestroy   = 207
	sysIOGetEvents = 208
	sysIOSubmit    = 209

	iocbCmdPwrite = 1

	iocbSize    = 64
	ioEventSize = 32
)

var _ interfaces.Device = (*EventQueue)(nil)

type aioCompletion struct {
	pos    walcore.Position
	buf    *walcore.AlignedBuffer
	notify bool
	iocb   []byte // pinned control block memory, keyed by its own address
}

// EventQueue submits writes as legacy Linux AIO control blocks and harvests
// completions from the kernel's AIO event queue (io_getevents), the
// "event-queue AIO" device variant.
type EventQueue struct {
	mu       sync.Mutex
	ctx      uint64
	fd       int
	capacity int
	inFlight map[uintptr]*aioCompletion
	logger   interfaces.Logger
}

// NewEventQueue creates an AIO context of queue depth
// constants.DefaultSubmissionQueueDepth against fd, an already-opened file
// descriptor sized to capacityBlocks*BlockSize bytes.
func NewEventQueue(fd int, capacityBlocks int, logger interfaces.Logger) (*EventQueue, error) {
	if logger == nil {
		logger = logging.Default().With("device", "event-queue")
	}
	var ctx uint64
	_, _, errno := unix.Syscall(sysIOSetup, uintptr(constants.DefaultSubmissionQueueDepth), uintptr(unsafe.Pointer(&ctx)), 0)
	if errno != 0 {
		return nil, walcore.WrapError("io_setup", errno)
	}
	return &EventQueue{
		ctx:      ctx,
		fd:       fd,
		capacity: capacityBlocks,
		inFlight: make(map[uintptr]*aioCompletion),
		logger:   logger,
	}, nil
}

// Capacity returns the device's size in blocks.
func (e *EventQueue) Capacity() int {
	return e.capacity
}

func (e *EventQueue) SubmitWrite(pos walcore.Position, buf *walcore.AlignedBuffer, notify bool) error {
	numBlocks := buf.Len() / walcore.BlockSize
	if int(pos.Offset)+numBlocks > e.capacity {
		bufpool.Put(buf)
		return walcore.NewError("submit-write", walcore.KindInvalidArgument, "write exceeds device capacity")
	}

	iocb := make([]byte, iocbSize)
	data := buf.Bytes()
	binary.LittleEndian.PutUint16(iocb[16:18], iocbCmdPwrite)
	binary.LittleEndian.PutUint32(iocb[20:24], uint32(e.fd))
	binary.LittleEndian.PutUint64(iocb[24:32], uint64(uintptr(unsafe.Pointer(&data[0]))))
	binary.LittleEndian.PutUint64(iocb[32:40], uint64(len(data)))
	binary.LittleEndian.PutUint64(iocb[40:48], uint64(pos.ByteOffset(walcore.BlockSize)))

	completion := &aioCompletion{pos: pos, buf: buf, notify: notify, iocb: iocb}
	token := uintptr(unsafe.Pointer(&iocb[0]))
	binary.LittleEndian.PutUint64(iocb[0:8], uint64(token))

	e.mu.Lock()
	e.inFlight[token] = completion
	e.mu.Unlock()

	iocbs := [1]uintptr{uintptr(unsafe.Pointer(&iocb[0]))}
	n, _, errno := unix.Syscall(sysIOSubmit, uintptr(e.ctx), 1, uintptr(unsafe.Pointer(&iocbs[0])))
	if errno != 0 || n != 1 {
		e.mu.Lock()
		delete(e.inFlight, token)
		e.mu.Unlock()
		bufpool.Put(buf)
		if errno == unix.EAGAIN {
			return walcore.NewError("submit-write", walcore.KindWouldBlock, "aio submission queue full")
		}
		return walcore.WrapError("io_submit", errno)
	}
	return nil
}

func (e *EventQueue) DrainCompletions() iter.Seq[walcore.Position] {
	const maxEvents = constants.DefaultMaxEventsPerDrain
	events := make([]byte, maxEvents*ioEventSize)
	zeroTimeout := unix.Timespec{}

	n, _, errno := unix.Syscall6(sysIOGetEvents, uintptr(e.ctx), 0, maxEvents,
		uintptr(unsafe.Pointer(&events[0])), uintptr(unsafe.Pointer(&zeroTimeout)), 0)
	if errno != 0 || n == 0 {
		return func(yield func(walcore.Position) bool) {}
	}

	results := make([]walcore.Position, 0, n)
	for i := 0; i < int(n); i++ {
		rec := events[i*ioEventSize : (i+1)*ioEventSize]
		token := uintptr(binary.LittleEndian.Uint64(rec[8:16]))
		res := int64(binary.LittleEndian.Uint64(rec[16:24]))

		e.mu.Lock()
		completion := e.inFlight[token]
		delete(e.inFlight, token)
		e.mu.Unlock()

		if completion == nil {
			continue
		}
		bufpool.Put(completion.buf)
		if res < 0 {
			e.logger.Warnf("event-queue device: write at %s failed: result %d", completion.pos, res)
			continue
		}
		if completion.notify {
			results = append(results, completion.pos)
		}
	}

	return func(yield func(walcore.Position) bool) {
		for _, p := range results {
			if !yield(p) {
				return
			}
		}
	}
}

func (e *EventQueue) Read(byteOffset int64, n int) ([]byte, error) {
	buf := make([]byte, n)
	read, err := unix.Pread(e.fd, buf, byteOffset)
	if err != nil {
		return nil, walcore.WrapError("read", err)
	}
	if read != n {
		return nil, walcore.NewError("read", walcore.KindIO, "short read")
	}
	return buf, nil
}

func (e *EventQueue) Close() error {
	unix.Syscall(sysIODestroy, uintptr(e.ctx), 0, 0)
	return unix.Close(e.fd)
}
