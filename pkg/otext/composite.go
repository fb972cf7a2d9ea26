package otext

// Composite sequences several non-composite operations that must be
// applied atomically. It exists solely to represent the delete-vs-insert
// split (spec §4.3, §9 open question: modeled here as a dedicated
// composite form rather than two separate wire messages).
//
// Invariant: sub-operations are stored in non-decreasing Position order.
// Apply (and Revert's result) always executes them from the highest
// position down, so an earlier sub-operation's mutation never invalidates
// a later one's recorded position — this holds for both Insert and Delete
// sub-operations.
type Composite struct {
	Ops []Operation
}

func (o *Composite) Pos() int {
	if len(o.Ops) == 0 {
		return 0
	}
	return o.Ops[0].Pos()
}

func (o *Composite) AffectsBuffer() bool {
	for _, sub := range o.Ops {
		if sub.AffectsBuffer() {
			return true
		}
	}
	return false
}

func (o *Composite) IsReversible() bool {
	for _, sub := range o.Ops {
		if !sub.IsReversible() {
			return false
		}
	}
	return true
}

func (o *Composite) Apply(buf *Buffer, user uint64) error {
	for i := len(o.Ops) - 1; i >= 0; i-- {
		if err := o.Ops[i].Apply(buf, user); err != nil {
			return err
		}
	}
	return nil
}

// Revert reverts every sub-operation. Each reverted position is shifted by
// the net length the lower-position sub-operations removed, so it
// addresses the buffer as it stands after o was applied; the result stays
// in non-decreasing Position order and, applied highest position first,
// undoes o.
func (o *Composite) Revert() (Operation, error) {
	reverted := make([]Operation, len(o.Ops))
	shift := 0
	for i, sub := range o.Ops {
		r, err := sub.Revert()
		if err != nil {
			return nil, err
		}
		switch v := r.(type) {
		case *Insert:
			v.Position -= shift
			shift += v.Payload.Len()
		case *Delete:
			v.Position -= shift
			shift -= v.EffectiveLen()
		}
		reverted[i] = r
	}
	return simplifyComposite(reverted), nil
}

// simplifyComposite drops NoOps from ops and collapses a single survivor
// down to a plain operation, so callers never have to special-case a
// composite of one.
func simplifyComposite(ops []Operation) Operation {
	var kept []Operation
	for _, op := range ops {
		if op.AffectsBuffer() {
			kept = append(kept, op)
		}
	}
	switch len(kept) {
	case 0:
		return NoOp{}
	case 1:
		return kept[0]
	default:
		return &Composite{Ops: kept}
	}
}
