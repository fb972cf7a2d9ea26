package otext

import "fmt"

// Transform returns op as it applies after against has already been
// applied, resolving same-position insert ties with cid (spec §4.3). cid
// is ignored unless NeedConcurrencyID(op, against) is true.
//
// This is a standalone function rather than a method so that the full
// operation-pair matrix lives in one place as an explicit type switch,
// instead of being spread across a double-dispatch vtable.
func Transform(op, against Operation, cid ConcurrencyID) (Operation, error) {
	if _, ok := against.(NoOp); ok {
		return op, nil
	}
	if _, ok := op.(NoOp); ok {
		return op, nil
	}
	if c, ok := op.(*Composite); ok {
		return transformComposite(c, against, cid)
	}
	if c, ok := against.(*Composite); ok {
		return transformAgainstComposite(op, c, cid)
	}

	switch o := op.(type) {
	case *Insert:
		switch a := against.(type) {
		case *Insert:
			return transformInsertInsert(o, a, cid), nil
		case *Delete:
			return transformInsertDelete(o, a), nil
		}
	case *Delete:
		switch a := against.(type) {
		case *Insert:
			return transformDeleteInsert(o, a)
		case *Delete:
			return transformDeleteDelete(o, a)
		}
	}
	return nil, fmt.Errorf("otext: unsupported operation pair %T vs %T", op, against)
}

func transformComposite(c *Composite, against Operation, cid ConcurrencyID) (Operation, error) {
	transformed := make([]Operation, len(c.Ops))
	for i, sub := range c.Ops {
		t, err := Transform(sub, against, cid)
		if err != nil {
			return nil, err
		}
		transformed[i] = t
	}
	return simplifyComposite(transformed), nil
}

// transformAgainstComposite folds op through each of c's sub-operations
// from the highest position down, the order Composite.Apply executes them
// in.
func transformAgainstComposite(op Operation, c *Composite, cid ConcurrencyID) (Operation, error) {
	result := op
	for i := len(c.Ops) - 1; i >= 0; i-- {
		t, err := Transform(result, c.Ops[i], cid)
		if err != nil {
			return nil, err
		}
		result = t
	}
	return result, nil
}

func transformInsertInsert(o, a *Insert, cid ConcurrencyID) Operation {
	if o.Position < a.Position || (o.Position == a.Position && cid == CIDOther) {
		return &Insert{Position: o.Position, Payload: o.Payload}
	}
	return &Insert{Position: o.Position + a.Payload.Len(), Payload: o.Payload}
}

func transformInsertDelete(o *Insert, a *Delete) Operation {
	p, q, dLen := o.Position, a.Position, a.EffectiveLen()
	switch {
	case p <= q:
		return &Insert{Position: p, Payload: o.Payload}
	case p > q+dLen:
		return &Insert{Position: p - dLen, Payload: o.Payload}
	default:
		return &Insert{Position: q, Payload: o.Payload}
	}
}

func transformDeleteInsert(o *Delete, a *Insert) (Operation, error) {
	p, cLen := o.Position, o.EffectiveLen()
	q, dLen := a.Position, a.Payload.Len()

	switch {
	case q <= p:
		return shiftDelete(o, dLen), nil
	case q >= p+cLen:
		return o, nil
	default:
		k := q - p
		d1 := splitDelete(o, 0, k, p)
		d2 := splitDelete(o, k, cLen-k, p+k+dLen)
		return simplifyComposite([]Operation{d1, d2}), nil
	}
}

// shiftDelete returns o moved right by delta, preserving its payload.
func shiftDelete(o *Delete, delta int) *Delete {
	return &Delete{Position: o.Position + delta, Length: o.Length, Payload: o.Payload}
}

// splitDelete extracts the [relStart, relStart+relLen) slice of o's
// payload (if captured) and places it at newPos.
func splitDelete(o *Delete, relStart, relLen, newPos int) *Delete {
	if o.Payload == nil {
		return &Delete{Position: newPos, Length: relLen}
	}
	sub, err := o.Payload.SubSlice(relStart, relLen)
	if err != nil {
		return &Delete{Position: newPos, Length: relLen}
	}
	return &Delete{Position: newPos, Length: relLen, Payload: &sub}
}

func transformDeleteDelete(o, a *Delete) (Operation, error) {
	p, L := o.Position, o.EffectiveLen()
	q, dLen := a.Position, a.EffectiveLen()

	switch {
	case p+L <= q:
		return o, nil
	case q+dLen <= p:
		return shiftDelete(o, -dLen), nil
	default:
		lo, hi := max(p, q), min(p+L, q+dLen)
		overlapBeforeP := min(q+dLen, p) - q
		if overlapBeforeP < 0 {
			overlapBeforeP = 0
		}
		if overlapBeforeP > dLen {
			overlapBeforeP = dLen
		}
		newPos := p - overlapBeforeP

		if o.Payload == nil {
			remainingLen := L - (hi - lo)
			if remainingLen <= 0 {
				return NoOp{}, nil
			}
			return &Delete{Position: newPos, Length: remainingLen}, nil
		}
		before, err := o.Payload.SubSlice(0, lo-p)
		if err != nil {
			return nil, err
		}
		after, err := o.Payload.SubSlice(hi-p, (p+L)-hi)
		if err != nil {
			return nil, err
		}
		remaining := before.Concat(after)
		if remaining.Empty() {
			return NoOp{}, nil
		}
		return &Delete{Position: newPos, Length: remaining.Len(), Payload: &remaining}, nil
	}
}
