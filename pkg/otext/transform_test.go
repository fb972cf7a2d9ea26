package otext_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"collabotp/pkg/otext"
)

// applyBoth transforms op against against and applies the result to a fresh
// buffer seeded with initial, returning the resulting text. It mirrors how
// the algorithm reconciles two concurrent requests: apply against first,
// then the transformed op.
func applyBoth(t *testing.T, initial string, against, op otext.Operation, cid otext.ConcurrencyID) string {
	t.Helper()
	buf := otext.NewBuffer()
	if initial != "" {
		require.NoError(t, buf.InsertChunk(0, chunkText(0, initial), 0))
	}
	require.NoError(t, against.Apply(buf, 1))
	transformed, err := otext.Transform(op, against, cid)
	require.NoError(t, err)
	require.NoError(t, transformed.Apply(buf, 2))
	return buf.Text()
}

func TestTransformInsertInsertConvergence(t *testing.T) {
	// Two concurrent inserts at the same position must converge regardless
	// of application order, with the tie broken by concurrency id.
	a := otext.NewInsert(2, 1, "A")
	b := otext.NewInsert(2, 2, "B")

	left := applyBoth(t, "xy", a, b, otext.CIDOther)
	right := applyBoth(t, "xy", b, a, otext.CIDSelf)
	require.Equal(t, left, right)
	require.Equal(t, "xyBA", left)
}

func TestTransformInsertInsertDistinctPositions(t *testing.T) {
	a := otext.NewInsert(0, 1, "A")
	b := otext.NewInsert(3, 2, "B")

	left := applyBoth(t, "xyz", a, b, otext.CIDSelf)
	right := applyBoth(t, "xyz", b, a, otext.CIDSelf)
	require.Equal(t, left, right)
	require.Equal(t, "AxyzB", left)
}

func TestTransformInsertDeleteBeforeAfterInside(t *testing.T) {
	del := otext.NewDelete(2, 3) // removes "cde" from "abcdefg"

	before := otext.NewInsert(0, 1, "X")
	after := otext.NewInsert(6, 1, "X")
	inside := otext.NewInsert(3, 1, "X")

	tb, err := otext.Transform(before, del, otext.CIDSelf)
	require.NoError(t, err)
	require.Equal(t, 0, tb.Pos())

	ta, err := otext.Transform(after, del, otext.CIDSelf)
	require.NoError(t, err)
	require.Equal(t, 3, ta.Pos())

	ti, err := otext.Transform(inside, del, otext.CIDSelf)
	require.NoError(t, err)
	require.Equal(t, 2, ti.Pos())
}

func TestTransformDeleteInsertShiftAndUnaffected(t *testing.T) {
	ins := otext.NewInsert(2, 1, "XY")

	before := otext.NewDelete(0, 2) // [0,2) entirely before insert at 2
	ta, err := otext.Transform(before, ins, otext.CIDSelf)
	require.NoError(t, err)
	require.Equal(t, before, ta)

	after := otext.NewDelete(4, 2) // starts at/after insert
	tb, err := otext.Transform(after, ins, otext.CIDSelf)
	require.NoError(t, err)
	require.Equal(t, 6, tb.Pos())
}

func TestTransformDeleteInsertSplit(t *testing.T) {
	buf := otext.NewBuffer()
	require.NoError(t, buf.InsertChunk(0, chunkText(1, "abcdef"), 1))

	del := otext.NewDelete(1, 4) // wants to remove "bcde"
	promoted, err := del.Promote(buf)
	require.NoError(t, err)

	ins := otext.NewInsert(3, 2, "XY") // concurrent insert lands inside the delete's range

	result, err := otext.Transform(promoted, ins, otext.CIDSelf)
	require.NoError(t, err)
	composite, ok := result.(*otext.Composite)
	require.True(t, ok)
	require.Len(t, composite.Ops, 2)

	// Apply the insert, then the transformed composite delete: result
	// should remove exactly "bcde" and keep "XY".
	require.NoError(t, ins.Apply(buf, 2))
	require.Equal(t, "abcXYdef", buf.Text())
	require.NoError(t, composite.Apply(buf, 1))
	require.Equal(t, "aXYf", buf.Text())
}

func TestTransformDeleteDeleteDisjoint(t *testing.T) {
	d1 := otext.NewDelete(0, 2)
	d2 := otext.NewDelete(5, 2)

	t1, err := otext.Transform(d1, d2, otext.CIDSelf)
	require.NoError(t, err)
	require.Equal(t, 0, t1.Pos())

	t2, err := otext.Transform(d2, d1, otext.CIDSelf)
	require.NoError(t, err)
	require.Equal(t, 3, t2.Pos())
}

func TestTransformDeleteDeleteOverlap(t *testing.T) {
	// d1 removes "cdef" ([2,6)), d2 removes "efgh" ([4,8)); their union
	// removes "cdefgh", leaving "ab" regardless of application order.
	seed := func() *otext.Buffer {
		buf := otext.NewBuffer()
		require.NoError(t, buf.InsertChunk(0, chunkText(1, "abcdefgh"), 1))
		return buf
	}

	d1, err := otext.NewDelete(2, 4).Promote(seed())
	require.NoError(t, err)
	d2, err := otext.NewDelete(4, 4).Promote(seed())
	require.NoError(t, err)

	bufA := seed()
	require.NoError(t, d1.Apply(bufA, 1))
	d2AfterD1, err := otext.Transform(d2, d1, otext.CIDSelf)
	require.NoError(t, err)
	require.NoError(t, d2AfterD1.Apply(bufA, 1))
	require.Equal(t, "ab", bufA.Text())

	bufB := seed()
	require.NoError(t, d2.Apply(bufB, 1))
	d1AfterD2, err := otext.Transform(d1, d2, otext.CIDSelf)
	require.NoError(t, err)
	require.NoError(t, d1AfterD2.Apply(bufB, 1))
	require.Equal(t, "ab", bufB.Text())
}

func TestTransformDeleteDeleteFullyConsumed(t *testing.T) {
	buf := otext.NewBuffer()
	require.NoError(t, buf.InsertChunk(0, chunkText(1, "abcdef"), 1))

	outer, err := otext.NewDelete(1, 4).Promote(buf) // "bcde"
	require.NoError(t, err)
	inner, err := otext.NewDelete(2, 1).Promote(buf) // "c", fully inside outer
	require.NoError(t, err)

	t1, err := otext.Transform(inner, outer, otext.CIDSelf)
	require.NoError(t, err)
	require.False(t, t1.AffectsBuffer())
}

func TestInsertRevertRoundTrip(t *testing.T) {
	buf := otext.NewBuffer()
	require.NoError(t, buf.InsertChunk(0, chunkText(1, "ac"), 1))

	ins := otext.NewInsert(1, 2, "b")
	require.NoError(t, ins.Apply(buf, 2))
	require.Equal(t, "abc", buf.Text())

	undo, err := ins.Revert()
	require.NoError(t, err)
	require.NoError(t, undo.Apply(buf, 2))
	require.Equal(t, "ac", buf.Text())
}

func TestDeleteNotReversibleUntilPromoted(t *testing.T) {
	d := otext.NewDelete(0, 2)
	require.False(t, d.IsReversible())
	_, err := d.Revert()
	require.ErrorIs(t, err, otext.ErrNotReversible)

	buf := otext.NewBuffer()
	require.NoError(t, buf.InsertChunk(0, chunkText(1, "abcd"), 1))
	promoted, err := d.Promote(buf)
	require.NoError(t, err)
	require.True(t, promoted.IsReversible())
}

func TestTransformAgainstNoOpIsIdentity(t *testing.T) {
	ins := otext.NewInsert(2, 1, "x")
	out, err := otext.Transform(ins, otext.NoOp{}, otext.CIDSelf)
	require.NoError(t, err)
	require.Equal(t, ins, out)
}
