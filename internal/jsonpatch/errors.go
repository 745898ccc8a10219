package jsonpatch

import (
	"errors"
	"fmt"
)

// Failure kinds. Every *Error unwraps to exactly one of these.
var (
	ErrInvalidPatchDocument  = errors.New("invalid patch document")
	ErrInvalidTargetDocument = errors.New("invalid target document")
	ErrInvalidOperation      = errors.New("invalid patch operation")
	ErrTestFailed            = errors.New("patch test failed")
)

// Error describes why a patch could not be applied
type Error struct {
	Kind   error
	Index  int // position of the operation in the patch, -1 if not tied to one
	Op     OpKind
	Path   string
	Reason string
}

func (e *Error) Error() string {
	if e.Index < 0 {
		return fmt.Sprintf("jsonpatch: %s: %s", e.Kind, e.Reason)
	}
	return fmt.Sprintf("jsonpatch: operation %d (%s %s): %s: %s", e.Index, e.Op, e.Path, e.Kind, e.Reason)
}

func (e *Error) Unwrap() error { return e.Kind }

func documentError(kind error, reason string) *Error {
	return &Error{Kind: kind, Index: -1, Reason: reason}
}
