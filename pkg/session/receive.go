package session

import (
	"context"

	"github.com/google/uuid"

	"collabotp/internal/wire"
	"collabotp/pkg/coerr"
	"collabotp/pkg/roster"
)

// Submit delivers an inbound envelope from peerID, an already-joined
// user, to the owning task. Failures are reported back to peerID as a
// request-failed message (spec §7: "Wire-deserialization errors are
// reported to the peer as request-failed and the offending message is
// dropped; the session stays open") rather than returned to the caller —
// the only error Submit itself returns is ctx expiring before the owning
// task could run it.
func (s *Session) Submit(ctx context.Context, peerID uint64, env *wire.Envelope) error {
	correlationID := uuid.NewString()
	return s.do(ctx, func() { s.receive(ctx, peerID, env, correlationID) })
}

func (s *Session) receive(ctx context.Context, peerID uint64, env *wire.Envelope, correlationID string) {
	if err := s.dispatch(ctx, peerID, env); err != nil {
		s.reportFailure(ctx, peerID, correlationID, err)
	}
}

func (s *Session) dispatch(ctx context.Context, peerID uint64, env *wire.Envelope) error {
	switch {
	case env.Request != nil:
		return s.handleRequest(ctx, peerID, env.Request)
	case env.UserStatusChange != nil:
		return s.handleStatusChange(ctx, peerID, env.UserStatusChange)
	default:
		return ErrUnexpectedMessage
	}
}

func (s *Session) handleRequest(ctx context.Context, peerID uint64, m *wire.RequestMsg) error {
	if m.User != peerID {
		return ErrInvalidRequest
	}
	author, ok := s.users.ByID(peerID)
	if !ok {
		return roster.ErrUnknownUser
	}
	base := author.Vector
	req, err := decodeRequestDiff(m, base)
	if err != nil {
		return err
	}

	applied, err := s.alg.Receive(req)
	if err != nil {
		return err
	}

	if !isNoOpRequest(req) {
		_ = author.SetStatus(roster.Active)
	}

	s.sendToOthers(ctx, peerID, &wire.Envelope{Request: m})
	s.advanceBaseline(author, req.Vector, applied)
	return nil
}

func (s *Session) handleStatusChange(ctx context.Context, peerID uint64, m *wire.UserStatusChangeMsg) error {
	if m.ID != peerID {
		return ErrInvalidRequest
	}
	user, ok := s.users.ByID(peerID)
	if !ok {
		return roster.ErrUnknownUser
	}
	status, err := statusFromWire(m.Status)
	if err != nil {
		return err
	}
	// Only the explicit Active->Inactive transition travels over the
	// wire (spec §4.6): Active is always implicit, driven by activity.
	if status != roster.Inactive {
		return ErrInvalidRequest
	}
	if err := user.SetStatus(roster.Inactive); err != nil {
		return err
	}
	s.sendToOthers(ctx, peerID, &wire.Envelope{UserStatusChange: m})
	return nil
}

func (s *Session) reportFailure(ctx context.Context, peerID uint64, correlationID string, err error) {
	peer, ok := s.peers[peerID]
	if !ok {
		return
	}
	domain, code := coerr.Classify(err)
	_ = peer.Send(ctx, &wire.Envelope{RequestFailed: &wire.RequestFailedMsg{
		CorrelationID: correlationID,
		Domain:        domain,
		Code:          code,
		Message:       err.Error(),
	}})
}
