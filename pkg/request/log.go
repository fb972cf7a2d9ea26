package request

import "collabotp/pkg/otext"

// Log is a single participant's append-only request history, indexed
// [Begin, End). Begin starts at the user's initial state-vector component
// when they join, is reset by Add to the index of the first request
// appended to an empty log, and otherwise only moves forward via Prune.
//
// Each entry carries a small cache of already-translated operations keyed
// by the string form of the target state-vector they were translated to
// (spec §4.4): translation is expensive (recursive fold over concurrent
// logs) and the same target vector is asked for repeatedly as sibling
// branches of the fold converge.
type Log struct {
	issuer  uint64
	begin   uint64
	entries []*Request
	cache   []map[string]otext.Operation

	undoStack []uint64
	redoStack []uint64
}

// NewLog returns an empty log for issuer, whose first appended request
// will occupy index begin.
func NewLog(issuer uint64, begin uint64) *Log {
	return &Log{issuer: issuer, begin: begin}
}

// Begin returns the index of the oldest entry still retained.
func (l *Log) Begin() uint64 { return l.begin }

// End returns the index the next appended request must occupy.
func (l *Log) End() uint64 { return l.begin + uint64(len(l.entries)) }

// Len returns the number of entries currently retained.
func (l *Log) Len() int { return len(l.entries) }

// Add appends req, which must be addressed to this log's issuer and whose
// recorded vector component for that issuer must equal End — except for
// the very first request appended to a freshly created, empty log, which
// is allowed to define Begin instead.
func (l *Log) Add(req *Request) error {
	if req.Kind == Do && req.Op == nil {
		return ErrMissingOperation
	}
	idx := req.Vector.Get(l.issuer)
	if len(l.entries) == 0 {
		l.begin = idx
	} else if idx != l.End() {
		return ErrIndexMismatch
	}

	if isNoOp(req) {
		// A NoOp is a liveness signal, not an action on the issuer's
		// history (spec §4.6): it must not occupy a counted log slot
		// (current[issuer] never advances for it either, so leaving End()
		// unchanged keeps the two in lockstep) and must not touch the
		// undo/redo stacks.
		return nil
	}

	i := l.End()
	l.entries = append(l.entries, req)
	l.cache = append(l.cache, nil)

	switch req.Kind {
	case Do:
		l.undoStack = append(l.undoStack, i)
		l.redoStack = l.redoStack[:0]
	case Undo:
		if n := len(l.undoStack); n > 0 {
			top := l.undoStack[n-1]
			l.undoStack = l.undoStack[:n-1]
			l.redoStack = append(l.redoStack, top)
			req.Associated = top
		}
	case Redo:
		if n := len(l.redoStack); n > 0 {
			top := l.redoStack[n-1]
			l.redoStack = l.redoStack[:n-1]
			l.undoStack = append(l.undoStack, top)
			req.Associated = top
		}
	}
	return nil
}

// isNoOp reports whether req is a Do request carrying a no-op operation —
// the liveness ping GenerateNoOpRequest produces, which never affects the
// buffer and so must never advance this log's End() or current[issuer].
func isNoOp(req *Request) bool {
	_, ok := req.Op.(otext.NoOp)
	return ok
}

// Get returns the request stored at index i.
func (l *Log) Get(i uint64) (*Request, error) {
	if i < l.begin || i >= l.End() {
		return nil, ErrIndexOutOfRange
	}
	return l.entries[i-l.begin], nil
}

// PrevAssociated returns the Do request that the Undo/Redo at index i
// pairs with.
func (l *Log) PrevAssociated(i uint64) (*Request, error) {
	req, err := l.Get(i)
	if err != nil {
		return nil, err
	}
	if req.Kind == Do {
		return nil, ErrNoAssociatedRequest
	}
	return l.Get(req.Associated)
}

// NextUndo returns the index of the request an Undo issued right now
// would target: the most recent Do not already undone (or re-undone after
// a Redo). It fails with ErrNoAssociatedRequest if there is nothing to
// undo.
func (l *Log) NextUndo() (uint64, error) {
	if len(l.undoStack) == 0 {
		return 0, ErrNoAssociatedRequest
	}
	return l.undoStack[len(l.undoStack)-1], nil
}

// NextRedo is NextUndo's dual: the index of the most recently undone Do,
// if a Redo would have something to reapply.
func (l *Log) NextRedo() (uint64, error) {
	if len(l.redoStack) == 0 {
		return 0, ErrNoAssociatedRequest
	}
	return l.redoStack[len(l.redoStack)-1], nil
}

// CacheGet returns the cached translation of the request at index i to
// target, if one has been recorded.
func (l *Log) CacheGet(i uint64, target string) (otext.Operation, bool) {
	if i < l.begin || i >= l.End() {
		return nil, false
	}
	m := l.cache[i-l.begin]
	if m == nil {
		return nil, false
	}
	op, ok := m[target]
	return op, ok
}

// CacheSet records the translation of the request at index i to target.
func (l *Log) CacheSet(i uint64, target string, op otext.Operation) {
	if i < l.begin || i >= l.End() {
		return
	}
	slot := i - l.begin
	if l.cache[slot] == nil {
		l.cache[slot] = make(map[string]otext.Operation)
	}
	l.cache[slot][target] = op
}

// Prune drops log entries and cache content older than lowerBound, the
// per-user minimum index no longer needed by any known user's vector
// (spec §4.5 Cleanup). Entries still reachable from the pending undo/redo
// chain are never dropped, even if older than lowerBound.
func (l *Log) Prune(lowerBound uint64) {
	keep := lowerBound
	for _, idx := range l.undoStack {
		if idx < keep {
			keep = idx
		}
	}
	for _, idx := range l.redoStack {
		if idx < keep {
			keep = idx
		}
	}
	if keep <= l.begin {
		return
	}
	drop := keep - l.begin
	if drop > uint64(len(l.entries)) {
		drop = uint64(len(l.entries))
	}
	l.entries = l.entries[drop:]
	l.cache = l.cache[drop:]
	l.begin += drop
}
