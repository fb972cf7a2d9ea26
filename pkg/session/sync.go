package session

import (
	"context"
	"time"

	"collabotp/internal/wire"
	"collabotp/pkg/adopted"
	"collabotp/pkg/otext"
	"collabotp/pkg/roster"
	"collabotp/pkg/statevector"
)

// syncTo streams the full synchronization sequence to peer: a sync-begin
// with the total message count computed up front (users plus the sum of
// their log lengths — spec §5's supplemented feature, mirroring
// inf_adopted_session_synchronization_progress's running total against a
// declared num-messages), one sync-user plus that user's sync-requests in
// log order for every existing user, then sync-end.
func (s *Session) syncTo(ctx context.Context, peer Peer) error {
	users := s.users.All()
	total := len(users)
	for _, u := range users {
		total += u.Log.Len()
	}

	if err := peer.Send(ctx, &wire.Envelope{SyncBegin: &wire.SyncBeginMsg{NumMessages: total}}); err != nil {
		return err
	}

	for _, u := range users {
		msg := &wire.SyncUserMsg{ID: u.ID, Name: u.Name, Time: u.Vector.String()}
		if tu, ok := s.textUsers[u.ID]; ok {
			msg.Hue = tu.Hue
			caret, selection := tu.Caret, tu.Selection
			msg.Caret = &caret
			msg.Selection = &selection
		}
		if err := peer.Send(ctx, &wire.Envelope{SyncUser: msg}); err != nil {
			return err
		}

		for i := u.Log.Begin(); i < u.Log.End(); i++ {
			req, err := u.Log.Get(i)
			if err != nil {
				return err
			}
			rm, err := encodeRequestAbsolute(req)
			if err != nil {
				return err
			}
			if err := peer.Send(ctx, &wire.Envelope{SyncRequest: rm}); err != nil {
				return err
			}
		}
	}

	return peer.Send(ctx, &wire.Envelope{SyncEnd: &wire.SyncEndMsg{}})
}

// Receiver assembles a Session from an incoming synchronization stream
// (spec §4.6, consumer side): feed it every envelope between sync-begin
// and sync-end, in order, via Accept. A stream that arrives out of order,
// references an unknown user, or ends early aborts with ErrSyncAborted
// and discards all buffer state accumulated so far (spec §5: "A session
// that is mid-synchronization as consumer aborts with SyncAborted and its
// buffer state is discarded").
//
// Each sync-request is replayed through a fresh Algorithm's Receive,
// exactly as if it had just arrived over the network: per spec §4.5's
// correctness property, replaying one issuer's entries in their original
// order — regardless of how the stream interleaves different issuers —
// reconstructs the same buffer content and state vector the synchronizing
// side already has.
type Receiver struct {
	alg    *adopted.Algorithm
	users  *roster.Table
	buffer *otext.Buffer

	textUsers map[uint64]*roster.TextUser

	noopInterval    time.Duration
	cleanupInterval time.Duration

	expected int
	received int
	begun    bool
	done     bool
	aborted  bool
}

// NewReceiver returns an empty synchronization receiver, backed by a
// fresh buffer, ready to Accept a stream starting at sync-begin.
func NewReceiver(maxTotalLogSize uint64, noopInterval, cleanupInterval time.Duration) *Receiver {
	buf := otext.NewBuffer()
	return &Receiver{
		alg:             adopted.New(buf, maxTotalLogSize),
		users:           roster.NewTable(),
		buffer:          buf,
		textUsers:       make(map[uint64]*roster.TextUser),
		noopInterval:    noopInterval,
		cleanupInterval: cleanupInterval,
	}
}

// Accept feeds env into the receiver. Call it once per message of the
// synchronization stream, in order.
func (r *Receiver) Accept(env *wire.Envelope) error {
	if r.aborted {
		return ErrSyncAborted
	}
	switch {
	case env.SyncBegin != nil:
		return r.acceptBegin(env.SyncBegin)
	case env.SyncUser != nil:
		return r.acceptUser(env.SyncUser)
	case env.SyncRequest != nil:
		return r.acceptRequest(env.SyncRequest)
	case env.SyncEnd != nil:
		return r.acceptEnd()
	default:
		r.aborted = true
		return ErrUnexpectedMessage
	}
}

func (r *Receiver) acceptBegin(m *wire.SyncBeginMsg) error {
	if r.begun {
		r.aborted = true
		return ErrSyncAborted
	}
	r.begun = true
	r.expected = m.NumMessages
	return nil
}

func (r *Receiver) acceptUser(m *wire.SyncUserMsg) error {
	if !r.begun || r.done {
		r.aborted = true
		return ErrSyncAborted
	}
	vec, err := statevector.FromString(m.Time)
	if err != nil {
		r.aborted = true
		return err
	}
	u := roster.NewUser(m.ID, m.Name, false, vec)
	r.alg.RegisterLog(u.ID, u.Log)
	if err := r.users.Add(u); err != nil {
		r.aborted = true
		return err
	}
	if m.Caret != nil {
		tu := roster.NewTextUser(u, m.Hue)
		tu.Caret = *m.Caret
		if m.Selection != nil {
			tu.Selection = *m.Selection
		}
		r.textUsers[u.ID] = tu
	}
	r.received++
	return nil
}

func (r *Receiver) acceptRequest(m *wire.RequestMsg) error {
	if !r.begun || r.done {
		r.aborted = true
		return ErrSyncAborted
	}
	if _, ok := r.users.ByID(m.User); !ok {
		r.aborted = true
		return roster.ErrUnknownUser
	}
	req, err := decodeRequestAbsolute(m)
	if err != nil {
		r.aborted = true
		return err
	}
	if _, err := r.alg.Receive(req); err != nil {
		r.aborted = true
		return err
	}
	r.received++
	return nil
}

func (r *Receiver) acceptEnd() error {
	if !r.begun || r.received != r.expected {
		r.aborted = true
		return ErrSyncAborted
	}
	r.done = true
	return nil
}

// Done reports whether sync-end has been accepted successfully.
func (r *Receiver) Done() bool { return r.done }

// Session assembles the synchronized Session once Done reports true.
func (r *Receiver) Session() (*Session, error) {
	if !r.done {
		return nil, ErrSyncAborted
	}
	return newFromReceiver(r), nil
}
