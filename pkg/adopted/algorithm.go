// Package adopted implements the adOPTed control algorithm: reception and
// translation of concurrent requests against per-participant logs, kept
// convergent by the pkg/otext transformation matrix (spec §4.5).
package adopted

import (
	"errors"
	"fmt"

	"collabotp/pkg/otext"
	"collabotp/pkg/request"
	"collabotp/pkg/statevector"
)

// ErrUnknownIssuer is returned by Receive/GenerateRequest for a user id
// with no registered log (the caller — pkg/session — must register a
// user's log via RegisterLog before routing requests for it here).
var ErrUnknownIssuer = errors.New("adopted: unknown issuer")

// ExecuteFunc is invoked after every successfully received request,
// reporting whether the translated operation actually touched the buffer
// (spec §4.5 step 5: emit execute-request).
type ExecuteFunc func(r *request.Request, applied bool)

// Algorithm is the adOPTed engine: it owns the global state vector and the
// buffer it protects, and holds a reference to every known participant's
// log so it can fold a translation across any of them.
//
// Per spec §5, an Algorithm is driven from a single cooperative task; it
// performs no internal locking.
type Algorithm struct {
	current         *statevector.StateVector
	buffer          *otext.Buffer
	logs            map[uint64]*request.Log
	maxTotalLogSize uint64

	// OnExecute, if set, is called after every Receive.
	OnExecute ExecuteFunc
}

// New returns an algorithm starting from an empty state vector, backed by
// buf. maxTotalLogSize of 0 disables automatic cleanup thresholding
// (Cleanup still runs if called explicitly).
func New(buf *otext.Buffer, maxTotalLogSize uint64) *Algorithm {
	return &Algorithm{
		current:         statevector.New(),
		buffer:          buf,
		logs:            make(map[uint64]*request.Log),
		maxTotalLogSize: maxTotalLogSize,
	}
}

// Current returns a copy of the algorithm's global state vector.
func (a *Algorithm) Current() *statevector.StateVector {
	return a.current.Copy()
}

// RegisterLog attaches a participant's request log so that translations
// can fold across it. Must be called before any request from that
// participant is received.
func (a *Algorithm) RegisterLog(uid uint64, log *request.Log) {
	a.logs[uid] = log
}

// Log returns the registered log for uid, if any.
func (a *Algorithm) Log(uid uint64) (*request.Log, bool) {
	l, ok := a.logs[uid]
	return l, ok
}

// Receive processes a request — local or remote — against the current
// algorithm state (spec §4.5 Receive):
//  1. validates r against its issuer's log,
//  2. translates r's operation to the current state vector,
//  3. applies it to the buffer and advances current if it has any effect,
//  4. appends r, in its original (untranslated) form, to the issuer's log,
//  5. reports execution via OnExecute.
func (a *Algorithm) Receive(r *request.Request) (applied bool, err error) {
	log, ok := a.logs[r.Issuer]
	if !ok {
		return false, fmt.Errorf("%w: %d", ErrUnknownIssuer, r.Issuer)
	}
	if log.Len() > 0 && r.Vector.Get(r.Issuer) != log.End() {
		return false, request.ErrIndexMismatch
	}

	switch r.Kind {
	case request.Undo:
		idx, err := log.NextUndo()
		if err != nil {
			return false, err
		}
		r.Associated = idx
	case request.Redo:
		idx, err := log.NextRedo()
		if err != nil {
			return false, err
		}
		r.Associated = idx
	}

	op, err := a.translate(r, a.current)
	if err != nil {
		return false, err
	}

	if op.AffectsBuffer() {
		op, err = promoteForApply(op, a.buffer)
		if err != nil {
			return false, err
		}
		if err := op.Apply(a.buffer, r.Issuer); err != nil {
			return false, err
		}
		a.current.Add(r.Issuer, 1)
		applied = true
		// Write the promoted (payload-captured) operation back onto the
		// logged request regardless of whether folding was needed: a
		// folded Delete needs its captured chunk stored just as much as
		// a local one does, or a later Undo of it — on this peer or any
		// other that replays this same log entry — would find nothing
		// to revert.
		if r.Kind == request.Do {
			r.Op = op
		}
	}

	if err := log.Add(r); err != nil {
		return applied, err
	}

	if a.OnExecute != nil {
		a.OnExecute(r, applied)
	}
	return applied, nil
}

// GenerateRequest builds and immediately executes a local request of the
// given kind for issuer, bypassing any network round-trip (spec §4.5
// "Local request generation"). op is required for Do and ignored
// otherwise.
func (a *Algorithm) GenerateRequest(issuer uint64, kind request.Kind, op otext.Operation) (*request.Request, bool, error) {
	log, ok := a.logs[issuer]
	if !ok {
		return nil, false, fmt.Errorf("%w: %d", ErrUnknownIssuer, issuer)
	}
	switch kind {
	case request.Do:
		if op == nil {
			return nil, false, request.ErrMissingOperation
		}
	case request.Undo:
		if _, err := log.NextUndo(); err != nil {
			return nil, false, err
		}
	case request.Redo:
		if _, err := log.NextRedo(); err != nil {
			return nil, false, err
		}
	}
	r := &request.Request{Kind: kind, Issuer: issuer, Vector: a.current.Copy(), Op: op}
	applied, err := a.Receive(r)
	if err != nil {
		return nil, false, err
	}
	return r, applied, nil
}

// GenerateNoOpRequest builds and executes a NoOp request for issuer
// without ever touching the buffer or advancing current — the session's
// shared noop timer uses this to keep last-send-vectors moving (spec §4.5
// "generate_request_noexec"). It goes through Receive like any other
// locally generated request: a NoOp never occupies a counted log slot
// (Log.Add special-cases it), so it can never desynchronize the issuer's
// log from current, whether it runs here or arrives later over the wire
// on some other peer.
func (a *Algorithm) GenerateNoOpRequest(issuer uint64) (*request.Request, error) {
	if _, ok := a.logs[issuer]; !ok {
		return nil, fmt.Errorf("%w: %d", ErrUnknownIssuer, issuer)
	}
	r := &request.Request{Kind: request.Do, Issuer: issuer, Vector: a.current.Copy(), Op: otext.NoOp{}}
	if _, err := a.Receive(r); err != nil {
		return nil, err
	}
	return r, nil
}

// Cleanup prunes every registered log's history and translation cache down
// to lowerBound, the per-user minimum index no longer needed by any known
// participant (spec §4.5 Cleanup). It is a no-op unless the accumulated
// size since lowerBound has reached maxTotalLogSize (0 disables the
// threshold check, so Cleanup then always runs).
func (a *Algorithm) Cleanup(lowerBound *statevector.StateVector) {
	if a.maxTotalLogSize > 0 {
		total, lb := a.current.Sum(), lowerBound.Sum()
		if total < lb || total-lb < a.maxTotalLogSize {
			return
		}
	}
	for uid, log := range a.logs {
		log.Prune(lowerBound.Get(uid))
	}
}
