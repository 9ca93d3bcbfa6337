package cos

import (
	"fmt"

	"github.com/pkg/errors"
)

// ErrKind enumerates the structured failure reasons named in the core's
// error-handling design: the lowest layer that knows both the failing
// operation and the reason raises one of these, wrapping (not replacing)
// whatever syscall or I/O error triggered it.
type ErrKind int

const (
	KindNone ErrKind = iota
	KindNotSupported
	KindNotFound
	KindStale
	KindLengthMismatch
	KindBusy
	KindHeaderTimeout
	KindOperationTimeout
	KindTransferStall
	KindTransferSlow
	KindTransferClientStall
	KindProtocolError
	KindIOError
)

func (k ErrKind) String() string {
	switch k {
	case KindNotSupported:
		return "not-supported"
	case KindNotFound:
		return "not-found"
	case KindStale:
		return "stale"
	case KindLengthMismatch:
		return "length-mismatch"
	case KindBusy:
		return "busy"
	case KindHeaderTimeout:
		return "header-timeout"
	case KindOperationTimeout:
		return "operation-timeout"
	case KindTransferStall:
		return "transfer-stall"
	case KindTransferSlow:
		return "transfer-slow"
	case KindTransferClientStall:
		return "transfer-client-stall"
	case KindProtocolError:
		return "protocol-error"
	case KindIOError:
		return "io-error"
	default:
		return "none"
	}
}

// kindError pairs an ErrKind with the underlying cause, if any. Callers
// compare kinds with Is, not with errors.Is against a sentinel value, since
// the same kind can wrap many different underlying causes.
type kindError struct {
	kind  ErrKind
	msg   string
	cause error
}

func (e *kindError) Error() string {
	if e.cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.kind, e.msg, e.cause)
	}
	if e.msg != "" {
		return fmt.Sprintf("%s: %s", e.kind, e.msg)
	}
	return e.kind.String()
}

func (e *kindError) Unwrap() error { return e.cause }
func (e *kindError) Kind() ErrKind { return e.kind }

// NewErr builds a new structured error of the given kind.
func NewErr(kind ErrKind, format string, a ...interface{}) error {
	return &kindError{kind: kind, msg: fmt.Sprintf(format, a...)}
}

// WrapErr wraps a lower-level error (syscall, I/O) into a structured kind,
// preserving the original error via Unwrap and, under pkg/errors, its stack.
func WrapErr(kind ErrKind, cause error, format string, a ...interface{}) error {
	if cause == nil {
		return NewErr(kind, format, a...)
	}
	return &kindError{kind: kind, msg: fmt.Sprintf(format, a...), cause: errors.WithStack(cause)}
}

// Is reports whether err (or anything it wraps) carries the given ErrKind.
func Is(err error, kind ErrKind) bool {
	for err != nil {
		if ke, ok := err.(*kindError); ok {
			if ke.kind == kind {
				return true
			}
			err = ke.cause
			continue
		}
		type causer interface{ Cause() error }
		if c, ok := err.(causer); ok {
			err = c.Cause()
			continue
		}
		type unwrapper interface{ Unwrap() error }
		if u, ok := err.(unwrapper); ok {
			err = u.Unwrap()
			continue
		}
		return false
	}
	return false
}

// KindOf extracts the ErrKind carried by err, or KindNone if none is found.
func KindOf(err error) ErrKind {
	for err != nil {
		if ke, ok := err.(*kindError); ok {
			return ke.kind
		}
		type unwrapper interface{ Unwrap() error }
		u, ok := err.(unwrapper)
		if !ok {
			return KindNone
		}
		err = u.Unwrap()
	}
	return KindNone
}
