package roster

import "collabotp/pkg/otext"

// TransformIndex moves a single buffer-relative index (a caret or one end
// of a selection) through op, the operation that just got applied.
// Ported from kolabpad's transformIndex (pkg/server/kolabpad.go), adapted
// from a retain/insert/delete op sequence to collabotp's position-based
// Insert/Delete/Composite operations: an insert at or before the index
// pushes it right by the inserted length; a delete before the index pulls
// it left by the deleted length, and one straddling the index clamps it to
// the delete's start.
func TransformIndex(op otext.Operation, index int) int {
	switch o := op.(type) {
	case nil:
		return index
	case otext.NoOp:
		return index
	case *otext.Insert:
		if o.Position <= index {
			return index + o.Payload.Len()
		}
		return index
	case *otext.Delete:
		length := o.EffectiveLen()
		switch {
		case index <= o.Position:
			return index
		case index >= o.Position+length:
			return index - length
		default:
			return o.Position
		}
	case *otext.Composite:
		// Mirror Composite.Apply's descending-position order: each
		// sub-operation's recorded Position is valid against the buffer
		// coordinate frame before any of its later-applied (lower
		// position) siblings ran, so the index must be folded through
		// them in the same order.
		for i := len(o.Ops) - 1; i >= 0; i-- {
			index = TransformIndex(o.Ops[i], index)
		}
		return index
	default:
		return index
	}
}

// TransformCaret updates a TextUser's caret and selection through op,
// called once per applied remote operation so cursors stay anchored to
// the same logical text across concurrent edits.
func TransformCaret(u *TextUser, op otext.Operation) {
	end := u.Caret + u.Selection
	u.Caret = TransformIndex(op, u.Caret)
	end = TransformIndex(op, end)
	u.Selection = end - u.Caret
}
