package session

import (
	"collabotp/internal/wire"
	"collabotp/pkg/otext"
	"collabotp/pkg/request"
	"collabotp/pkg/roster"
	"collabotp/pkg/statevector"
)

// This file is the stateful half of the wire codec that internal/wire
// deliberately leaves out: turning a request.Request into a wire.RequestMsg
// (and back) needs a base state vector to diff against, and that base only
// exists in session context (a roster.User's shared last-known vector).
// internal/wire itself stays context-free, handling only the
// Operation/Kind <-> wire-shape conversions these functions delegate to.

// encodeRequestDiff serializes req with its time field diffed against
// base — the wire form of a live `request` broadcast (spec §6).
func encodeRequestDiff(req *request.Request, base *statevector.StateVector) (*wire.RequestMsg, error) {
	diff, err := req.Vector.ToStringDiff(base)
	if err != nil {
		return nil, err
	}
	m := &wire.RequestMsg{User: req.Issuer, Kind: wire.KindToWire(req.Kind), Time: diff}
	if req.Kind == request.Do {
		op, err := wire.OpToWire(req.Op)
		if err != nil {
			return nil, err
		}
		m.Op = op
	}
	return m, nil
}

// decodeRequestDiff parses m's diffed time field against base — the
// inverse of encodeRequestDiff, used when receiving a live `request`.
func decodeRequestDiff(m *wire.RequestMsg, base *statevector.StateVector) (*request.Request, error) {
	vec, err := statevector.FromStringDiff(m.Time, base)
	if err != nil {
		return nil, err
	}
	kind, err := wire.KindFromWire(m.Kind)
	if err != nil {
		return nil, err
	}
	var op otext.Operation
	if kind == request.Do {
		if m.Op == nil {
			return nil, request.ErrMissingOperation
		}
		op, err = wire.OpFromWire(m.Op)
		if err != nil {
			return nil, err
		}
	}
	return &request.Request{Kind: kind, Issuer: m.User, Vector: vec, Op: op}, nil
}

// encodeRequestAbsolute serializes req with its time field written in
// full — the wire form of a `sync-request` (spec §6: "as request but time
// absolute, no diff").
func encodeRequestAbsolute(req *request.Request) (*wire.RequestMsg, error) {
	m := &wire.RequestMsg{User: req.Issuer, Kind: wire.KindToWire(req.Kind), Time: req.Vector.String()}
	if req.Kind == request.Do {
		op, err := wire.OpToWire(req.Op)
		if err != nil {
			return nil, err
		}
		m.Op = op
	}
	return m, nil
}

// decodeRequestAbsolute is encodeRequestAbsolute's inverse.
func decodeRequestAbsolute(m *wire.RequestMsg) (*request.Request, error) {
	vec, err := statevector.FromString(m.Time)
	if err != nil {
		return nil, err
	}
	kind, err := wire.KindFromWire(m.Kind)
	if err != nil {
		return nil, err
	}
	var op otext.Operation
	if kind == request.Do {
		if m.Op == nil {
			return nil, request.ErrMissingOperation
		}
		op, err = wire.OpFromWire(m.Op)
		if err != nil {
			return nil, err
		}
	}
	return &request.Request{Kind: kind, Issuer: m.User, Vector: vec, Op: op}, nil
}

// isNoOpRequest reports whether req is a Do request carrying a no-op
// payload — the one case that must NOT count as user activity (spec
// §4.6: "any non-NoOp Do/Undo/Redo transitions its issuer ... to Active").
func isNoOpRequest(req *request.Request) bool {
	if req.Kind != request.Do {
		return false
	}
	_, ok := req.Op.(otext.NoOp)
	return ok
}

// statusFromWire parses a user-status-change's wire status string.
func statusFromWire(s string) (roster.Status, error) {
	switch s {
	case "active":
		return roster.Active, nil
	case "inactive":
		return roster.Inactive, nil
	case "unavailable":
		return roster.Unavailable, nil
	default:
		return 0, ErrInvalidRequest
	}
}
