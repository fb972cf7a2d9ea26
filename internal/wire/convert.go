package wire

import (
	"errors"
	"fmt"

	"collabotp/pkg/chunk"
	"collabotp/pkg/otext"
)

// ErrUnknownOp is returned by OpFromWire for an OpMsg with none of its
// tagged-union fields set.
var ErrUnknownOp = errors.New("wire: operation message carries no payload")

func chunkToWire(c chunk.Chunk) []ChunkSegmentMsg {
	segs := make([]ChunkSegmentMsg, 0, len(c.Segments))
	c.Iterate(func(s chunk.Segment) bool {
		segs = append(segs, ChunkSegmentMsg{Author: s.Author, Text: s.Text})
		return true
	})
	return segs
}

func chunkFromWire(segs []ChunkSegmentMsg) chunk.Chunk {
	out := chunk.Chunk{}
	for _, s := range segs {
		out = out.Concat(chunk.New(s.Author, s.Text))
	}
	return out
}

// OpToWire converts a resolved otext.Operation into its wire form.
func OpToWire(op otext.Operation) (*OpMsg, error) {
	switch o := op.(type) {
	case nil:
		return &OpMsg{NoOp: &NoOpMsg{}}, nil
	case otext.NoOp:
		return &OpMsg{NoOp: &NoOpMsg{}}, nil
	case *otext.Insert:
		return &OpMsg{Insert: &InsertMsg{Pos: o.Position, Chunk: chunkToWire(o.Payload)}}, nil
	case *otext.Delete:
		m := &DeleteMsg{Pos: o.Position}
		if o.Payload != nil {
			m.Chunk = chunkToWire(*o.Payload)
		} else {
			m.Len = o.Length
		}
		return &OpMsg{Delete: m}, nil
	case *otext.Composite:
		ops := make([]OpMsg, len(o.Ops))
		for i, sub := range o.Ops {
			m, err := OpToWire(sub)
			if err != nil {
				return nil, err
			}
			ops[i] = *m
		}
		return &OpMsg{Composite: &CompositeMsg{Ops: ops}}, nil
	default:
		return nil, fmt.Errorf("wire: unsupported operation type %T", op)
	}
}

// OpFromWire reconstructs an otext.Operation from its wire form. A delete
// with captured segments comes back already reversible (Payload set); one
// with only Len comes back non-reversible, same as freshly issued by
// otext.NewDelete.
func OpFromWire(m *OpMsg) (otext.Operation, error) {
	switch {
	case m.Insert != nil:
		c := chunkFromWire(m.Insert.Chunk)
		return &otext.Insert{Position: m.Insert.Pos, Payload: c}, nil
	case m.Delete != nil:
		if len(m.Delete.Chunk) > 0 {
			c := chunkFromWire(m.Delete.Chunk)
			return &otext.Delete{Position: m.Delete.Pos, Length: c.Len(), Payload: &c}, nil
		}
		return otext.NewDelete(m.Delete.Pos, m.Delete.Len), nil
	case m.Composite != nil:
		ops := make([]otext.Operation, len(m.Composite.Ops))
		for i := range m.Composite.Ops {
			sub, err := OpFromWire(&m.Composite.Ops[i])
			if err != nil {
				return nil, err
			}
			ops[i] = sub
		}
		return &otext.Composite{Ops: ops}, nil
	case m.NoOp != nil:
		return otext.NoOp{}, nil
	default:
		return nil, ErrUnknownOp
	}
}
