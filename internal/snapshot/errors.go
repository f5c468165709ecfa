package snapshot

import (
	"errors"
	"fmt"

	"rdsdash/internal/records"
)

var (
	ErrDuplicateRecord    = errors.New("duplicate record")
	ErrUnknownOperation   = errors.New("unknown operation")
	ErrInvalidOperation   = errors.New("invalid operation")
	ErrUnsupportedVersion = errors.New("unsupported export version")

	// ErrInvalidResult is records.ErrInvalidResult, re-exported for callers
	// that only import this package.
	ErrInvalidResult = records.ErrInvalidResult
)

// DuplicateRecordError reports a second record for an (operation, layer)
// pair. Assembly never picks one of the two.
type DuplicateRecordError struct {
	OperationID string
	LayerID     string
	First       int
	Second      int
}

func (e *DuplicateRecordError) Error() string {
	return fmt.Sprintf("duplicate record for operation %q layer %q (records %d and %d)", e.OperationID, e.LayerID, e.First, e.Second)
}

func (e *DuplicateRecordError) Unwrap() error { return ErrDuplicateRecord }

// UnknownOperationError reports a record whose operation is not in the
// operations reference list.
type UnknownOperationError struct {
	OperationID string
	LayerID     string
}

func (e *UnknownOperationError) Error() string {
	return fmt.Sprintf("record for layer %q references unknown operation %q", e.LayerID, e.OperationID)
}

func (e *UnknownOperationError) Unwrap() error { return ErrUnknownOperation }

// LayerIDError reports a layer id that does not follow the naming
// convention, so no category can be derived for it.
type LayerIDError struct {
	OperationID string
	LayerID     string
	Err         error
}

func (e *LayerIDError) Error() string {
	return fmt.Sprintf("operation %q: %v", e.OperationID, e.Err)
}

func (e *LayerIDError) Unwrap() error { return e.Err }
