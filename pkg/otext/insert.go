package otext

import "collabotp/pkg/chunk"

// Insert splices Payload into the buffer at Position. Payload carries its
// own per-segment authorship, so the user executing the insert need not
// match the user who originally authored every character (relevant once an
// Insert has passed through Revert/transform chains).
type Insert struct {
	Position int
	Payload  chunk.Chunk
}

// NewInsert builds an Insert of text authored by author.
func NewInsert(pos int, author uint64, text string) *Insert {
	return &Insert{Position: pos, Payload: chunk.New(author, text)}
}

func (o *Insert) Pos() int { return o.Position }

func (o *Insert) AffectsBuffer() bool { return !o.Payload.Empty() }

func (o *Insert) IsReversible() bool { return true }

func (o *Insert) Apply(buf *Buffer, user uint64) error {
	if o.Payload.Empty() {
		return nil
	}
	return buf.InsertChunk(o.Position, o.Payload, user)
}

// Revert returns the Delete that removes exactly what this Insert added.
func (o *Insert) Revert() (Operation, error) {
	return &Delete{Position: o.Position, Length: o.Payload.Len(), Payload: &o.Payload}, nil
}
