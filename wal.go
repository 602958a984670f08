package wal

import (
	"iter"
	"time"

	"github.com/andrewbaptist/wal/internal/bufpool"
	"github.com/andrewbaptist/wal/internal/logging"
	"github.com/andrewbaptist/wal/internal/walcore"
)

// Options configures a WAL at Open.
type Options struct {
	Logger   Logger
	Observer Observer
}

// WAL is a fixed-capacity, block-aligned, crash-safe circular log. It is
// single-threaded: Append, Truncate, Iterate, and DrainCompletions must
// not be called concurrently on the same instance.
type WAL struct {
	dev      Device
	capacity int
	head     Position
	tail     Position
	logger   Logger
	observer Observer
	metrics  *Metrics
}

func newWAL(dev Device, capacity int, opts *Options) (*WAL, error) {
	if opts == nil {
		opts = &Options{}
	}
	logger := opts.Logger
	if logger == nil {
		logger = logging.Default()
	}
	observer := opts.Observer
	if observer == nil {
		observer = NoOpObserver{}
	}

	head, tail, err := recoverHeadTail(dev, capacity, logger, observer)
	if err != nil {
		return nil, err
	}

	return &WAL{
		dev:      dev,
		capacity: capacity,
		head:     head,
		tail:     tail,
		logger:   logger,
		observer: observer,
		metrics:  NewMetrics(),
	}, nil
}

// Head returns the position at which the next append will write.
func (w *WAL) Head() Position { return w.head }

// Tail returns the oldest position considered valid for iteration.
func (w *WAL) Tail() Position { return w.tail }

// Capacity returns the ring's total size in blocks.
func (w *WAL) Capacity() int { return w.capacity }

// Metrics returns the WAL's own atomic-counter metrics, independent of
// whatever Observer was configured at Open.
func (w *WAL) Metrics() *Metrics { return w.metrics }

// Append frames payload, submits it for durable storage, and returns its
// logical position immediately; the write is not guaranteed durable until
// its position is observed from DrainCompletions.
func (w *WAL) Append(payload []byte) (Position, error) {
	if len(payload) == 0 {
		return Position{}, NewError("append", KindInvalidArgument, "payload must not be empty")
	}

	numBlocks := int(NumBlocks(EntryHeader{Len: uint32(len(payload))}))
	if numBlocks > w.capacity {
		return Position{}, NewError("append", KindInvalidArgument, "payload exceeds device capacity")
	}

	start := time.Now()

	if int(w.head.Offset)+numBlocks > w.capacity {
		padBlocks := w.capacity - int(w.head.Offset)
		if padBlocks > 0 {
			padBuf := bufpool.Get(padBlocks * BlockSize)
			zeroBuf(padBuf)
			if err := w.dev.SubmitWrite(w.head, padBuf, false); err != nil {
				w.metrics.ObserveAppend(0, uint64(time.Since(start)), false)
				w.observer.ObserveAppend(0, uint64(time.Since(start)), false)
				return Position{}, WrapError("append", err)
			}
		}
		w.head = Position{Rollover: w.head.Rollover + 1, Offset: 0}
	}

	buf := bufpool.Get(HeaderSize + len(payload))
	walcore.EncodeEntryInto(buf, payload, w.head.Rollover)

	p := w.head
	if err := w.dev.SubmitWrite(p, buf, true); err != nil {
		w.metrics.ObserveAppend(uint64(len(payload)), uint64(time.Since(start)), false)
		w.observer.ObserveAppend(uint64(len(payload)), uint64(time.Since(start)), false)
		return Position{}, WrapError("append", err)
	}

	w.head.Offset += uint32(numBlocks)

	latency := uint64(time.Since(start))
	w.metrics.ObserveAppend(uint64(len(payload)), latency, true)
	w.observer.ObserveAppend(uint64(len(payload)), latency, true)
	return p, nil
}

func zeroBuf(buf *AlignedBuffer) {
	data := buf.Bytes()
	for i := range data {
		data[i] = 0
	}
}

// Truncate advances the tail forward to pos; a no-op if pos does not sort
// after the current tail. The update is advisory and not persisted: a
// restart will re-expose truncated entries.
func (w *WAL) Truncate(pos Position) {
	if w.tail.Less(pos) {
		w.tail = pos
	}
}

// DrainCompletions delegates to the device, recording counts for Metrics
// and the configured Observer as the sequence is consumed.
func (w *WAL) DrainCompletions() iter.Seq[Position] {
	start := time.Now()
	seq := w.dev.DrainCompletions()
	return func(yield func(Position) bool) {
		count := 0
		seq(func(p Position) bool {
			count++
			return yield(p)
		})
		latency := uint64(time.Since(start))
		w.metrics.ObserveDrain(count, latency)
		w.observer.ObserveDrain(count, latency)
	}
}

// IterEntry is one item of a WAL.Iterate sequence: either a successfully
// decoded (Position, Payload) pair, or a terminal Err describing why
// iteration stopped.
type IterEntry struct {
	Position Position
	Payload  []byte
	Err      error
}

// Iterate produces entries from tail (inclusive) up to head (exclusive) in
// logical order. It stops, yielding a final IterEntry carrying a non-nil
// Err, on the first decode failure or CRC mismatch; the sequence is
// exhausted after that, matching the iterator's documented
// not-resynchronizing behavior.
func (w *WAL) Iterate() iter.Seq[IterEntry] {
	return func(yield func(IterEntry) bool) {
		current := w.tail
		end := w.head
		count := 0

		for current.Less(end) {
			byteOffset := current.ByteOffset(BlockSize)

			headerBytes, err := w.dev.Read(byteOffset, HeaderSize)
			if err != nil {
				w.finishIterate(count, false, yield, WrapError("iterate", err))
				return
			}
			header, ok := walcore.DecodeHeader(headerBytes)
			if !ok || header.Len == 0 {
				w.finishIterate(count, false, yield, NewError("iterate", KindInvalidData, "header failed to decode"))
				return
			}

			entryBytes, err := w.dev.Read(byteOffset, HeaderSize+int(header.Len))
			if err != nil {
				w.finishIterate(count, false, yield, WrapError("iterate", err))
				return
			}
			if !walcore.VerifyCRC(header, entryBytes) {
				w.finishIterate(count, false, yield, NewError("iterate", KindInvalidData, "crc mismatch"))
				return
			}

			payload := make([]byte, header.Len)
			copy(payload, entryBytes[HeaderSize:])
			pos := Position{Rollover: header.Rollover, Offset: current.Offset}
			count++
			if !yield(IterEntry{Position: pos, Payload: payload}) {
				w.observer.ObserveIterate(count, true)
				return
			}

			nextOffset := current.Offset + NumBlocks(header)
			if int(nextOffset) >= w.capacity {
				current = Position{Rollover: header.Rollover + 1, Offset: 0}
			} else {
				current = Position{Rollover: header.Rollover, Offset: nextOffset}
			}
		}

		w.observer.ObserveIterate(count, true)
	}
}

func (w *WAL) finishIterate(count int, success bool, yield func(IterEntry) bool, err error) {
	w.observer.ObserveIterate(count, success)
	yield(IterEntry{Err: err})
}

// Close performs a best-effort final drain so pending buffers are released,
// then closes the device. Any writes not yet completed are abandoned; the
// kernel may still persist them.
func (w *WAL) Close() error {
	for range w.DrainCompletions() {
	}
	return w.dev.Close()
}
