package session

import (
	"time"

	"collabotp/internal/wire"
)

// afterCurrentAdvance recomputes, for every local user, whether their
// shared last-send-vector now lags the algorithm's current state; a user
// that just started lagging gets a fresh NOOP_INTERVAL deadline (spec
// §4.6), one that has caught up has its deadline cleared. The single
// shared timer is then rearmed for whichever deadline is earliest.
func (s *Session) afterCurrentAdvance() {
	current := s.alg.Current()
	for _, u := range s.users.Local() {
		_, due := s.dueAt[u.ID]
		switch lagging := !u.Vector.Equal(current); {
		case lagging && !due:
			s.dueAt[u.ID] = time.Now().Add(s.noopInterval)
		case !lagging && due:
			delete(s.dueAt, u.ID)
		}
	}
	s.rearmTimer()
}

// rearmTimer (re)schedules the single shared noop timer for whichever
// local user is due earliest (spec §9: "avoid per-user timers"). Ties are
// broken by lowest user id for determinism.
func (s *Session) rearmTimer() {
	s.stopTimer()

	var (
		earliest time.Time
		who      uint64
		found    bool
	)
	for id, at := range s.dueAt {
		if !found || at.Before(earliest) || (at.Equal(earliest) && id < who) {
			earliest, who, found = at, id, true
		}
	}
	if !found {
		return
	}

	s.timerFor = who
	d := time.Until(earliest)
	if d < 0 {
		d = 0
	}
	s.timer = time.AfterFunc(d, func() {
		select {
		case s.noopFire <- struct{}{}:
		default:
		}
	})
}

func (s *Session) stopTimer() {
	if s.timer != nil {
		s.timer.Stop()
		s.timer = nil
	}
}

// fireNoop runs on the owning task when the shared timer elapses: it
// generates and broadcasts a NoOp for whichever local user was due, then
// rearms for the next earliest (spec §4.6: "one shared timer fires for
// whichever local user is due earliest").
func (s *Session) fireNoop() {
	id := s.timerFor
	user, ok := s.users.ByID(id)
	if !ok {
		s.rearmTimer()
		return
	}

	base := user.Vector
	req, err := s.alg.GenerateNoOpRequest(id)
	if err != nil {
		s.rearmTimer()
		return
	}
	rm, err := encodeRequestDiff(req, base)
	if err != nil {
		s.rearmTimer()
		return
	}

	s.sendToOthers(s.runCtx, id, &wire.Envelope{Request: rm})
	s.advanceBaseline(user, req.Vector, false)
}
