// Package errs defines the stable error taxonomy shared by every AgenticMemory
// component (spec.md §7). Each kind is a distinct sentinel so callers can use
// errors.Is; Wrap attaches the underlying cause without losing the kind.
package errs

import (
	"errors"
	"fmt"
)

// Kind is one of the nine stable error tags from spec.md §7.
type Kind string

const (
	KindNotFound           Kind = "not_found"
	KindInvalidArgument    Kind = "invalid_argument"
	KindInvariantViolation Kind = "invariant_violation"
	KindCorruptFormat      Kind = "corrupt_format"
	KindIntegrityFailed    Kind = "integrity_failed"
	KindLocked             Kind = "locked"
	KindCancelled          Kind = "cancelled"
	KindDimensionMismatch  Kind = "dimension_mismatch"
	KindIO                 Kind = "io"
)

// Sentinel errors for errors.Is comparisons against a bare kind.
var (
	ErrNotFound           = errors.New("not found")
	ErrInvalidArgument    = errors.New("invalid argument")
	ErrInvariantViolation = errors.New("invariant violation")
	ErrCorruptFormat      = errors.New("corrupt format")
	ErrIntegrityFailed    = errors.New("integrity failed")
	ErrLocked             = errors.New("locked")
	ErrCancelled          = errors.New("cancelled")
	ErrDimensionMismatch  = errors.New("dimension mismatch")
	ErrIO                 = errors.New("io")
)

func sentinelFor(k Kind) error {
	switch k {
	case KindNotFound:
		return ErrNotFound
	case KindInvalidArgument:
		return ErrInvalidArgument
	case KindInvariantViolation:
		return ErrInvariantViolation
	case KindCorruptFormat:
		return ErrCorruptFormat
	case KindIntegrityFailed:
		return ErrIntegrityFailed
	case KindLocked:
		return ErrLocked
	case KindCancelled:
		return ErrCancelled
	case KindDimensionMismatch:
		return ErrDimensionMismatch
	default:
		return ErrIO
	}
}

// Error is a typed error carrying a stable Kind plus a human-readable message
// and an optional wrapped cause.
type Error struct {
	Kind    Kind
	Message string
	Cause   error
}

func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

func (e *Error) Unwrap() error {
	if e.Cause != nil {
		return e.Cause
	}
	return sentinelFor(e.Kind)
}

// Is lets errors.Is(err, errs.ErrNotFound) succeed even when Cause is set.
func (e *Error) Is(target error) bool {
	return target == sentinelFor(e.Kind)
}

// New creates an *Error of the given kind with no wrapped cause.
func New(k Kind, format string, args ...any) *Error {
	return &Error{Kind: k, Message: fmt.Sprintf(format, args...)}
}

// Wrap creates an *Error of the given kind wrapping cause.
func Wrap(k Kind, cause error, format string, args ...any) *Error {
	return &Error{Kind: k, Message: fmt.Sprintf(format, args...), Cause: cause}
}

// KindOf returns the Kind of err if it (or something it wraps) is an *Error,
// and the generic I/O kind otherwise.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindIO
}

// Classify inspects an arbitrary error and returns its taxonomy Kind. It is
// used to label metrics and trace records for errors that did not originate
// as an *Error (e.g. a raw os.PathError bubbling out of file I/O).
func Classify(err error) Kind {
	if err == nil {
		return ""
	}
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindIO
}
