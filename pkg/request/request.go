// Package request implements the per-participant append-only request log
// that the adOPTed algorithm transforms and replays (spec §4.4).
package request

import (
	"errors"

	"collabotp/pkg/otext"
	"collabotp/pkg/statevector"
)

// Kind distinguishes the three request shapes a participant can issue.
type Kind int

const (
	// Do carries an operation payload directly.
	Do Kind = iota
	// Undo reverses the most recent not-yet-undone Do by the same issuer.
	Undo
	// Redo reapplies the most recently undone Do by the same issuer.
	Redo
)

func (k Kind) String() string {
	switch k {
	case Do:
		return "do"
	case Undo:
		return "undo"
	case Redo:
		return "redo"
	default:
		return "unknown"
	}
}

var (
	// ErrIndexMismatch is returned by Log.Add when the request's recorded
	// vector component for its issuer does not equal the log's next index.
	ErrIndexMismatch = errors.New("request: vector index does not match log end")
	// ErrMissingOperation is returned when a Do request is added without
	// an operation payload.
	ErrMissingOperation = errors.New("request: do request missing operation")
	// ErrNoAssociatedRequest is returned by NextUndo/NextRedo when the
	// issuer has nothing left to undo or redo, and by PrevAssociated when
	// the request at that index is not an Undo/Redo.
	ErrNoAssociatedRequest = errors.New("request: no associated request")
	// ErrIndexOutOfRange is returned by Get/PrevAssociated for an index
	// outside [Begin, End).
	ErrIndexOutOfRange = errors.New("request: index out of range")
)

// Request is a single timestamped entry in a participant's log. Op is nil
// for Undo/Redo: their effect is derived, at the moment they execute, from
// the Do request Associated points to (spec §4.4).
type Request struct {
	Kind       Kind
	Issuer     uint64
	Vector     *statevector.StateVector
	Op         otext.Operation
	Associated uint64 // valid only for Undo/Redo: index of the paired Do
}
