package adopted

import (
	"fmt"

	"collabotp/pkg/otext"
	"collabotp/pkg/request"
	"collabotp/pkg/statevector"
)

// Translate returns r's operation as it applies at target, without
// consulting or populating any cache — r may not correspond to a stable
// log slot yet (the common case: a request that has just arrived and has
// not been appended to its issuer's log). Recursive sub-translations of
// already-logged requests go through translateLogged instead, so the
// expensive fold is only ever paid once per (log slot, target) pair.
func (a *Algorithm) Translate(r *request.Request, target *statevector.StateVector) (otext.Operation, error) {
	return a.translate(r, target)
}

func (a *Algorithm) translate(r *request.Request, target *statevector.StateVector) (otext.Operation, error) {
	curVector := r.Vector.Copy()
	curOp, err := a.resolveOwnOp(r)
	if err != nil {
		return nil, err
	}
	for !curVector.Equal(target) {
		u, ok := pickFoldUser(curVector, target, r.Issuer)
		if !ok {
			// Only r's own issuer dimension still lags target. A single
			// author's requests are strictly ordered and never concurrent
			// with each other, so catching that dimension up needs no
			// transform — r is already valid with respect to its own
			// issuer's later history by construction.
			if err := curVector.Set(r.Issuer, target.Get(r.Issuer)); err != nil {
				return nil, err
			}
			continue
		}
		uLog, ok := a.logs[u]
		if !ok {
			return nil, fmt.Errorf("%w: %d", ErrUnknownIssuer, u)
		}
		idxU := curVector.Get(u)
		reqU, err := uLog.Get(idxU)
		if err != nil {
			return nil, err
		}
		opAtCur, err := a.translateLogged(u, idxU, curVector)
		if err != nil {
			return nil, err
		}

		cid := otext.CIDSelf
		if otext.NeedConcurrencyID(curOp, opAtCur) {
			cid = resolveConcurrencyID(r, reqU, u)
		}
		curOp, err = otext.Transform(curOp, opAtCur, cid)
		if err != nil {
			return nil, err
		}
		curVector.Add(u, 1)
	}
	return curOp, nil
}

// translateLogged translates the request stored at index idx in uid's log
// to target, consulting and populating that log's transformation cache.
func (a *Algorithm) translateLogged(uid, idx uint64, target *statevector.StateVector) (otext.Operation, error) {
	uLog, ok := a.logs[uid]
	if !ok {
		return nil, fmt.Errorf("%w: %d", ErrUnknownIssuer, uid)
	}
	key := target.String()
	if op, ok := uLog.CacheGet(idx, key); ok {
		return op, nil
	}
	req, err := uLog.Get(idx)
	if err != nil {
		return nil, err
	}
	op, err := a.translate(req, target)
	if err != nil {
		return nil, err
	}
	uLog.CacheSet(idx, key, op)
	return op, nil
}

// resolveOwnOp returns r's operation at its own recorded vector. For a Do
// this is simply r.Op. For Undo/Redo, the effective operation is derived
// from the associated Do at the moment this request executes (spec §4.5
// "Undo/Redo translation"): an Undo translates that Do to the state
// immediately before the Undo (r.Vector itself) and reverts it; a Redo
// translates it the same way and reapplies it directly, without reverting.
func (a *Algorithm) resolveOwnOp(r *request.Request) (otext.Operation, error) {
	switch r.Kind {
	case request.Do:
		if r.Op == nil {
			return nil, request.ErrMissingOperation
		}
		return r.Op, nil
	case request.Undo:
		op, err := a.translateLogged(r.Issuer, r.Associated, r.Vector)
		if err != nil {
			return nil, err
		}
		return op.Revert()
	case request.Redo:
		return a.translateLogged(r.Issuer, r.Associated, r.Vector)
	default:
		return nil, fmt.Errorf("adopted: unknown request kind %v", r.Kind)
	}
}

// pickFoldUser returns any participant other than exclude whose component
// in s still lags target, the "fold dimension" the translation advances
// along next. exclude is always the issuer of the request being
// translated: a single author's own requests are totally ordered and are
// never transformed against each other. The choice among multiple
// remaining candidates does not affect the final result (confluence), so
// the lowest user id is picked for determinism.
func pickFoldUser(s, target *statevector.StateVector, exclude uint64) (uint64, bool) {
	seen := make(map[uint64]struct{})
	var keys []uint64
	for _, k := range s.Keys() {
		if _, ok := seen[k]; !ok {
			seen[k] = struct{}{}
			keys = append(keys, k)
		}
	}
	for _, k := range target.Keys() {
		if _, ok := seen[k]; !ok {
			seen[k] = struct{}{}
			keys = append(keys, k)
		}
	}
	best, found := uint64(0), false
	for _, u := range keys {
		if u == exclude {
			continue
		}
		if s.Get(u) < target.Get(u) && (!found || u < best) {
			best, found = u, true
		}
	}
	return best, found
}

// resolveConcurrencyID breaks a same-position insert tie between r and
// reqU (the request fetched from u's log) using their original recorded
// vectors, falling back to issuer id (spec §4.3: "the side with the
// lexicographically smaller request-vector wins the left slot, ties
// broken by issuer id").
func resolveConcurrencyID(r, reqU *request.Request, u uint64) otext.ConcurrencyID {
	cmp := r.Vector.Compare(reqU.Vector)
	if cmp == 0 {
		if r.Issuer < u {
			cmp = -1
		} else {
			cmp = 1
		}
	}
	if cmp < 0 {
		return otext.CIDOther
	}
	return otext.CIDSelf
}

// promoteForApply fills in the captured payload of any non-reversible
// Delete reachable from op, reading the content about to be removed from
// buf before the operation executes.
func promoteForApply(op otext.Operation, buf *otext.Buffer) (otext.Operation, error) {
	switch o := op.(type) {
	case *otext.Delete:
		if o.Payload != nil {
			return o, nil
		}
		return o.Promote(buf)
	case *otext.Composite:
		promoted := make([]otext.Operation, len(o.Ops))
		for i, sub := range o.Ops {
			p, err := promoteForApply(sub, buf)
			if err != nil {
				return nil, err
			}
			promoted[i] = p
		}
		return &otext.Composite{Ops: promoted}, nil
	default:
		return op, nil
	}
}
