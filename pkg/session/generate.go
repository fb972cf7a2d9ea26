package session

import (
	"context"

	"collabotp/internal/wire"
	"collabotp/pkg/otext"
	"collabotp/pkg/request"
	"collabotp/pkg/roster"
)

// Do issues a local Do request for userID carrying op, applies it, and
// broadcasts it to every other connected peer (spec §4.5 "Local request
// generation", driven through the session's single task).
func (s *Session) Do(ctx context.Context, userID uint64, op otext.Operation) (bool, error) {
	return s.generate(ctx, userID, request.Do, op)
}

// Undo issues a local Undo request for userID's most recent not-yet-undone Do.
func (s *Session) Undo(ctx context.Context, userID uint64) (bool, error) {
	return s.generate(ctx, userID, request.Undo, nil)
}

// Redo issues a local Redo request for userID's most recently undone Do.
func (s *Session) Redo(ctx context.Context, userID uint64) (bool, error) {
	return s.generate(ctx, userID, request.Redo, nil)
}

func (s *Session) generate(ctx context.Context, userID uint64, kind request.Kind, op otext.Operation) (bool, error) {
	var (
		applied bool
		err     error
	)
	if execErr := s.do(ctx, func() { applied, err = s.generateLocal(ctx, userID, kind, op) }); execErr != nil {
		return false, execErr
	}
	return applied, err
}

func (s *Session) generateLocal(ctx context.Context, userID uint64, kind request.Kind, op otext.Operation) (bool, error) {
	user, ok := s.users.ByID(userID)
	if !ok {
		return false, roster.ErrUnknownUser
	}

	base := user.Vector
	req, applied, err := s.alg.GenerateRequest(userID, kind, op)
	if err != nil {
		return false, err
	}

	if !isNoOpRequest(req) {
		_ = user.SetStatus(roster.Active)
	}

	rm, err := encodeRequestDiff(req, base)
	if err != nil {
		return applied, err
	}
	s.sendToOthers(ctx, userID, &wire.Envelope{Request: rm})
	s.advanceBaseline(user, req.Vector, applied)
	return applied, nil
}

// SetInactive explicitly transitions userID from Active to Inactive and
// broadcasts the change (spec §4.6: "the Active→Inactive transition is
// explicit and must be broadcast").
func (s *Session) SetInactive(ctx context.Context, userID uint64) error {
	var err error
	if execErr := s.do(ctx, func() {
		user, ok := s.users.ByID(userID)
		if !ok {
			err = roster.ErrUnknownUser
			return
		}
		if e := user.SetStatus(roster.Inactive); e != nil {
			err = e
			return
		}
		s.sendToOthers(ctx, userID, &wire.Envelope{UserStatusChange: &wire.UserStatusChangeMsg{
			ID:     userID,
			Status: roster.Inactive.String(),
		}})
	}); execErr != nil {
		return execErr
	}
	return err
}
