package otext

import "collabotp/pkg/chunk"

// Delete removes Length characters starting at Position. Payload is nil
// until the delete is promoted via Promote: a freshly issued delete only
// knows the range it wants gone, not the content there, and so cannot be
// reverted until that content has been captured from the buffer it is
// about to be applied to (spec §4.1).
type Delete struct {
	Position int
	Length   int
	Payload  *chunk.Chunk
}

// NewDelete builds a non-reversible delete of the given range. Call
// Promote before applying it if the caller will need to undo it later.
func NewDelete(pos, length int) *Delete {
	return &Delete{Position: pos, Length: length}
}

func (o *Delete) Pos() int { return o.Position }

// EffectiveLen returns the delete's length, preferring the captured
// payload's length once one is present (the two always agree once set).
func (o *Delete) EffectiveLen() int {
	if o.Payload != nil {
		return o.Payload.Len()
	}
	return o.Length
}

func (o *Delete) AffectsBuffer() bool { return o.EffectiveLen() > 0 }

func (o *Delete) IsReversible() bool { return o.Payload != nil }

func (o *Delete) Apply(buf *Buffer, user uint64) error {
	if o.EffectiveLen() == 0 {
		return nil
	}
	return buf.Erase(o.Position, o.EffectiveLen(), user)
}

func (o *Delete) Revert() (Operation, error) {
	if o.Payload == nil {
		return nil, ErrNotReversible
	}
	return &Insert{Position: o.Position, Payload: *o.Payload}, nil
}

// Promote captures the chunk buf currently holds across this delete's
// range, turning it into a reversible operation. Call this before Apply if
// the delete may need to be undone.
func (o *Delete) Promote(buf *Buffer) (*Delete, error) {
	c, err := buf.Slice(o.Position, o.Length)
	if err != nil {
		return nil, err
	}
	return &Delete{Position: o.Position, Length: o.Length, Payload: &c}, nil
}
