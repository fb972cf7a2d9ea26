package request_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"collabotp/pkg/otext"
	"collabotp/pkg/request"
	"collabotp/pkg/statevector"
)

func vec(issuer, n uint64) *statevector.StateVector {
	v := statevector.New()
	_ = v.Set(issuer, n)
	return v
}

func doReq(issuer, n uint64, op otext.Operation) *request.Request {
	return &request.Request{Kind: request.Do, Issuer: issuer, Vector: vec(issuer, n), Op: op}
}

func TestLogAddSetsBeginFromFirstRequest(t *testing.T) {
	l := request.NewLog(1, 0)
	require.NoError(t, l.Add(doReq(1, 5, otext.NewInsert(0, 1, "a"))))
	require.Equal(t, uint64(5), l.Begin())
	require.Equal(t, uint64(6), l.End())
}

func TestLogAddRejectsIndexMismatch(t *testing.T) {
	l := request.NewLog(1, 0)
	require.NoError(t, l.Add(doReq(1, 0, otext.NewInsert(0, 1, "a"))))
	err := l.Add(doReq(1, 5, otext.NewInsert(0, 1, "b")))
	require.ErrorIs(t, err, request.ErrIndexMismatch)
}

func TestLogAddRejectsMissingOperation(t *testing.T) {
	l := request.NewLog(1, 0)
	err := l.Add(&request.Request{Kind: request.Do, Issuer: 1, Vector: vec(1, 0)})
	require.ErrorIs(t, err, request.ErrMissingOperation)
}

func TestLogGetOutOfRange(t *testing.T) {
	l := request.NewLog(1, 0)
	require.NoError(t, l.Add(doReq(1, 0, otext.NewInsert(0, 1, "a"))))
	_, err := l.Get(5)
	require.ErrorIs(t, err, request.ErrIndexOutOfRange)
}

func TestUndoRedoPairing(t *testing.T) {
	l := request.NewLog(1, 0)
	require.NoError(t, l.Add(doReq(1, 0, otext.NewInsert(0, 1, "a"))))
	require.NoError(t, l.Add(doReq(1, 1, otext.NewInsert(1, 1, "b"))))

	next, err := l.NextUndo()
	require.NoError(t, err)
	require.Equal(t, uint64(1), next)

	undo := &request.Request{Kind: request.Undo, Issuer: 1, Vector: vec(1, 2)}
	require.NoError(t, l.Add(undo))
	require.Equal(t, uint64(1), undo.Associated)

	redoIdx, err := l.NextRedo()
	require.NoError(t, err)
	require.Equal(t, uint64(1), redoIdx)

	nextUndo, err := l.NextUndo()
	require.NoError(t, err)
	require.Equal(t, uint64(0), nextUndo)

	prev, err := l.PrevAssociated(2)
	require.NoError(t, err)
	require.Equal(t, uint64(1), prev.Vector.Get(1))
}

func TestLogAddIgnoresNoOp(t *testing.T) {
	l := request.NewLog(1, 0)
	require.NoError(t, l.Add(doReq(1, 0, otext.NewInsert(0, 1, "a"))))

	noop := &request.Request{Kind: request.Do, Issuer: 1, Vector: vec(1, 1), Op: otext.NoOp{}}
	require.NoError(t, l.Add(noop))

	// End() did not advance for the NoOp, so the next real Do must still
	// carry vector component 1 to be accepted.
	require.Equal(t, uint64(1), l.End())
	require.Equal(t, 1, l.Len())
	require.NoError(t, l.Add(doReq(1, 1, otext.NewInsert(0, 1, "b"))))
	require.Equal(t, uint64(2), l.End())
}

func TestLogAddNoOpDoesNotDisturbUndoRedoStacks(t *testing.T) {
	l := request.NewLog(1, 0)
	require.NoError(t, l.Add(doReq(1, 0, otext.NewInsert(0, 1, "a"))))
	require.NoError(t, l.Add(&request.Request{Kind: request.Undo, Issuer: 1, Vector: vec(1, 1)}))

	next, err := l.NextRedo()
	require.NoError(t, err)
	require.Equal(t, uint64(0), next)

	// A NoOp issued while a redo is pending must neither become
	// "undoable" itself nor wipe the pending redo.
	noop := &request.Request{Kind: request.Do, Issuer: 1, Vector: vec(1, 2), Op: otext.NoOp{}}
	require.NoError(t, l.Add(noop))

	redoIdx, err := l.NextRedo()
	require.NoError(t, err)
	require.Equal(t, uint64(0), redoIdx)

	_, err = l.NextUndo()
	require.ErrorIs(t, err, request.ErrNoAssociatedRequest)
}

func TestNextUndoEmptyFails(t *testing.T) {
	l := request.NewLog(1, 0)
	_, err := l.NextUndo()
	require.ErrorIs(t, err, request.ErrNoAssociatedRequest)
}

func TestDoClearsRedoStack(t *testing.T) {
	l := request.NewLog(1, 0)
	require.NoError(t, l.Add(doReq(1, 0, otext.NewInsert(0, 1, "a"))))
	require.NoError(t, l.Add(&request.Request{Kind: request.Undo, Issuer: 1, Vector: vec(1, 1)}))

	_, err := l.NextRedo()
	require.NoError(t, err)

	require.NoError(t, l.Add(doReq(1, 2, otext.NewInsert(0, 1, "c"))))
	_, err = l.NextRedo()
	require.ErrorIs(t, err, request.ErrNoAssociatedRequest)
}

func TestCacheGetSetAndMiss(t *testing.T) {
	l := request.NewLog(1, 0)
	require.NoError(t, l.Add(doReq(1, 0, otext.NewInsert(0, 1, "a"))))

	_, ok := l.CacheGet(0, "2:3")
	require.False(t, ok)

	op := otext.NewInsert(2, 1, "a")
	l.CacheSet(0, "2:3", op)

	got, ok := l.CacheGet(0, "2:3")
	require.True(t, ok)
	require.Equal(t, op, got)
}

func TestPruneKeepsEntryReachableFromPendingRedo(t *testing.T) {
	l := request.NewLog(1, 0)
	require.NoError(t, l.Add(doReq(1, 0, otext.NewInsert(0, 1, "x"))))
	require.NoError(t, l.Add(&request.Request{Kind: request.Undo, Issuer: 1, Vector: vec(1, 1)}))

	// Index 0 is the associated Do of the pending redo, so it must
	// survive even though lowerBound says it could otherwise be dropped.
	l.Prune(1)
	require.Equal(t, uint64(0), l.Begin())

	_, err := l.Get(0)
	require.NoError(t, err)
}

func TestPruneAdvancesBeginWhenNothingPending(t *testing.T) {
	l := request.NewLog(1, 0)
	// Do at 0, its Undo at 1, then a fresh Do at 2 clears the redo stack:
	// nothing below index 2 is reachable from either stack any more.
	require.NoError(t, l.Add(doReq(1, 0, otext.NewInsert(0, 1, "x"))))
	require.NoError(t, l.Add(&request.Request{Kind: request.Undo, Issuer: 1, Vector: vec(1, 1)}))
	require.NoError(t, l.Add(doReq(1, 2, otext.NewInsert(0, 1, "x"))))
	l.Prune(2)
	require.Equal(t, uint64(2), l.Begin())
	require.Equal(t, 1, l.Len())
}
