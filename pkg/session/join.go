package session

import (
	"context"

	"collabotp/pkg/roster"
)

// Join registers peer as a new local user named name with display hue,
// then streams it the full synchronization sequence (spec §4.6:
// "Synchronization of a joining peer"). A synchronization failure aborts
// the join and leaves the session's existing membership untouched.
func (s *Session) Join(ctx context.Context, peer Peer, name string, hue float64) (*roster.TextUser, error) {
	var (
		user *roster.TextUser
		err  error
	)
	if execErr := s.do(ctx, func() { user, err = s.join(ctx, peer, name, hue) }); execErr != nil {
		return nil, execErr
	}
	return user, err
}

func (s *Session) join(ctx context.Context, peer Peer, name string, hue float64) (*roster.TextUser, error) {
	if s.closed {
		return nil, ErrSessionClosed
	}
	id := peer.ID()
	if _, ok := s.users.ByID(id); ok {
		return nil, roster.ErrDuplicateUser
	}

	u := roster.NewUser(id, name, true, s.alg.Current())
	tu := roster.NewTextUser(u, hue)
	s.alg.RegisterLog(id, u.Log)
	if err := s.users.Add(u); err != nil {
		return nil, err
	}
	s.textUsers[id] = tu
	s.peers[id] = peer

	if err := s.syncTo(ctx, peer); err != nil {
		delete(s.textUsers, id)
		delete(s.peers, id)
		_ = s.users.Remove(id)
		return nil, err
	}
	s.afterCurrentAdvance()
	return tu, nil
}

// Leave removes id from the session (spec §4.7: Unavailable is terminal
// for the session's lifetime). It drops id's peer/text registration and
// cancels its pending noop schedule. Leaving does not itself broadcast a
// user-status-change — a transport disconnect is not the explicit
// Active→Inactive transition spec §4.6 describes; call SetInactive first
// if that notification is wanted.
func (s *Session) Leave(ctx context.Context, id uint64) error {
	return s.do(ctx, func() { s.leave(id) })
}

func (s *Session) leave(id uint64) {
	delete(s.peers, id)
	delete(s.textUsers, id)
	delete(s.dueAt, id)
	_ = s.users.Remove(id)
	s.rearmTimer()
}
