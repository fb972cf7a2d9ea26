package otext

import "errors"

// ErrNotReversible is returned by Revert when an operation was never
// promoted to carry the payload its reversal needs (spec §4.1: a Delete is
// reversible only once its erased chunk has been recorded).
var ErrNotReversible = errors.New("otext: operation is not reversible")

// Operation is the common interface implemented by every edit the
// algorithm transforms, applies, and (where possible) reverts.
//
// Double-dispatch across concrete operation pairs is handled by the
// standalone Transform function rather than by a method on this interface,
// per the design note in spec §9: a single type-switch matrix is easier to
// follow and to extend than a vtable of pairwise visitor methods.
type Operation interface {
	// Pos reports the operation's buffer position. Composite.Pos reports
	// the position of its first sub-operation.
	Pos() int

	// AffectsBuffer reports whether applying this operation would mutate
	// the buffer. A NoOp, or an Insert/Delete left empty by transformation,
	// answers false.
	AffectsBuffer() bool

	// IsReversible reports whether Revert can succeed.
	IsReversible() bool

	// Apply executes the operation against buf on behalf of user.
	Apply(buf *Buffer, user uint64) error

	// Revert returns the operation that undoes this one. It fails with
	// ErrNotReversible if IsReversible is false.
	Revert() (Operation, error)
}

// ConcurrencyID names which side of two same-position inserts wins the left
// slot during transformation. It is supplied by the caller (the request
// layer, which owns the state vectors and issuer ids needed to resolve the
// tie) rather than computed by the Operation itself.
type ConcurrencyID int

const (
	// CIDSelf means the operation being transformed is pushed right of a
	// same-position insert it is compared against.
	CIDSelf ConcurrencyID = iota
	// CIDOther means the operation being transformed wins the left slot,
	// keeping its position unchanged against a same-position insert.
	CIDOther
)

// NeedConcurrencyID reports whether transforming op against against
// requires a concurrency id to resolve the tie: true exactly when both are
// Insert operations targeting the same position (spec §4.3).
func NeedConcurrencyID(op, against Operation) bool {
	a, ok := op.(*Insert)
	if !ok {
		return false
	}
	b, ok := against.(*Insert)
	if !ok {
		return false
	}
	return a.Position == b.Position
}
