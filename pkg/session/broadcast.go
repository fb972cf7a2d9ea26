package session

import (
	"context"

	"collabotp/internal/wire"
	"collabotp/pkg/roster"
	"collabotp/pkg/statevector"
)

// sendToOthers delivers env to every connected peer except exclude (the
// request's own issuer, who already knows what they just sent). Send
// errors are swallowed per peer: spec §5 treats a failed delivery to one
// dead peer as that peer's problem, not a reason to stop serving the rest
// of the session.
func (s *Session) sendToOthers(ctx context.Context, exclude uint64, env *wire.Envelope) {
	for id, peer := range s.peers {
		if id == exclude {
			continue
		}
		_ = peer.Send(ctx, env)
	}
}

// advanceBaseline updates author's shared last-known vector after one of
// its requests has been processed and relayed (spec §4.6: "update the
// user's last-send-vector... include +1 on own counter if the op affects
// the buffer"), then recomputes the noop schedule.
func (s *Session) advanceBaseline(author *roster.User, vector *statevector.StateVector, applied bool) {
	v := vector.Copy()
	if applied {
		v.Add(author.ID, 1)
	}
	author.Vector = v
	s.afterCurrentAdvance()
}
