package amem

import "github.com/agenticmemory/amem/pkg/errs"

// Error is re-exported from errs so callers never import pkg/errs directly.
type Error = errs.Error

// Kind is re-exported from errs.
type Kind = errs.Kind

// Kind constants re-exported from errs.
const (
	KindNotFound           = errs.KindNotFound
	KindInvalidArgument    = errs.KindInvalidArgument
	KindInvariantViolation = errs.KindInvariantViolation
	KindCorruptFormat      = errs.KindCorruptFormat
	KindIntegrityFailed    = errs.KindIntegrityFailed
	KindLocked             = errs.KindLocked
	KindCancelled          = errs.KindCancelled
	KindDimensionMismatch  = errs.KindDimensionMismatch
	KindIO                 = errs.KindIO
)

// ClassifyError returns the stable Kind of err, for callers building their
// own metrics or trace labels around a Handle.
func ClassifyError(err error) Kind {
	return errs.Classify(err)
}
