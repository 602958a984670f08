package walcore

import (
	"errors"
	"fmt"
	"syscall"
)

// ErrKind classifies the cause of a failure, independent of the concrete
// device that raised it.
type ErrKind int

const (
	// KindIO covers any device-level failure not otherwise classified.
	KindIO ErrKind = iota
	// KindInvalidArgument covers out-of-range positions, misaligned file
	// lengths, oversized payloads, and reads beyond stored data.
	KindInvalidArgument
	// KindWouldBlock covers a submission queue that is momentarily full.
	KindWouldBlock
	// KindBrokenPipe covers a background worker or kernel mechanism that
	// has terminated.
	KindBrokenPipe
	// KindInvalidData covers a header that fails to decode or a CRC
	// mismatch encountered during iteration.
	KindInvalidData
)

func (k ErrKind) String() string {
	switch k {
	case KindInvalidArgument:
		return "invalid-argument"
	case KindWouldBlock:
		return "would-block"
	case KindBrokenPipe:
		return "broken-pipe"
	case KindInvalidData:
		return "invalid-data"
	default:
		return "io"
	}
}

// Error is the structured error type returned across the wal and device
// packages.
type Error struct {
	Op    string
	Kind  ErrKind
	Inner error
	Msg   string
}

func (e *Error) Error() string {
	if e.Msg != "" {
		if e.Inner != nil {
			return fmt.Sprintf("%s: %s: %s: %v", e.Op, e.Kind, e.Msg, e.Inner)
		}
		return fmt.Sprintf("%s: %s: %s", e.Op, e.Kind, e.Msg)
	}
	if e.Inner != nil {
		return fmt.Sprintf("%s: %s: %v", e.Op, e.Kind, e.Inner)
	}
	return fmt.Sprintf("%s: %s", e.Op, e.Kind)
}

func (e *Error) Unwrap() error {
	return e.Inner
}

// Is supports errors.Is against a sentinel *Error carrying just a Kind.
func (e *Error) Is(target error) bool {
	var t *Error
	if errors.As(target, &t) {
		return e.Kind == t.Kind
	}
	return false
}

// NewError constructs an *Error with no wrapped cause.
func NewError(op string, kind ErrKind, msg string) *Error {
	return &Error{Op: op, Kind: kind, Msg: msg}
}

// WrapError constructs an *Error around a lower-level cause, mapping a
// syscall.Errno to an ErrKind when one is found in the error chain.
func WrapError(op string, err error) *Error {
	if err == nil {
		return nil
	}
	var existing *Error
	if errors.As(err, &existing) {
		return existing
	}
	return &Error{Op: op, Kind: mapErrnoToKind(err), Inner: err}
}

func mapErrnoToKind(err error) ErrKind {
	var errno syscall.Errno
	if !errors.As(err, &errno) {
		return KindIO
	}
	switch errno {
	case syscall.EAGAIN, syscall.EWOULDBLOCK:
		return KindWouldBlock
	case syscall.EPIPE, syscall.ECONNRESET:
		return KindBrokenPipe
	case syscall.EINVAL, syscall.E2BIG:
		return KindInvalidArgument
	default:
		return KindIO
	}
}

// IsKind reports whether err is an *Error (anywhere in its chain) of the
// given kind.
func IsKind(err error, kind ErrKind) bool {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind == kind
	}
	return false
}
