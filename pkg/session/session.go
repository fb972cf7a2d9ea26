// Package session implements the session layer that wraps the adOPTed
// algorithm with wire serialization, joining-peer synchronization, the
// shared noop timer, and user lifecycle (spec §4.6).
//
// A Session is driven from a single cooperative task (spec §5): every
// call that touches the algorithm, the user table, or the buffer is
// funneled through an internal command channel that Run drains on one
// goroutine, so callers on other goroutines — one per accepted
// connection, in pkg/transport — never race each other and the algorithm
// itself needs no internal locking.
package session

import (
	"context"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"collabotp/internal/wire"
	"collabotp/pkg/adopted"
	"collabotp/pkg/otext"
	"collabotp/pkg/roster"
	"collabotp/pkg/statevector"
)

// Peer is the narrow interface a transport implements so the session
// never depends on the network directly (spec §1: transport is an
// external collaborator reached through a narrow interface).
type Peer interface {
	ID() uint64
	Send(ctx context.Context, env *wire.Envelope) error
}

// Session owns the algorithm, the user table, and the buffer for a single
// document, and mediates all I/O between them and the connected peers.
type Session struct {
	id string

	alg    *adopted.Algorithm
	users  *roster.Table
	buffer *otext.Buffer

	peers     map[uint64]Peer
	textUsers map[uint64]*roster.TextUser

	noopInterval    time.Duration
	cleanupInterval time.Duration
	dueAt           map[uint64]time.Time
	timerFor        uint64
	timer           *time.Timer
	noopFire        chan struct{}

	commands chan func()
	runCtx   context.Context
	closed   bool
}

// New returns a session over buf, ready to accept Join calls
// once Run is started. maxTotalLogSize is forwarded to the algorithm's
// cleanup threshold (spec §6 configuration); noopInterval and
// cleanupInterval are the session's two scheduled intervals.
func New(buf *otext.Buffer, maxTotalLogSize uint64, noopInterval, cleanupInterval time.Duration) *Session {
	return &Session{
		id:              uuid.NewString(),
		alg:             adopted.New(buf, maxTotalLogSize),
		users:           roster.NewTable(),
		buffer:          buf,
		peers:           make(map[uint64]Peer),
		textUsers:       make(map[uint64]*roster.TextUser),
		noopInterval:    noopInterval,
		cleanupInterval: cleanupInterval,
		dueAt:           make(map[uint64]time.Time),
		noopFire:        make(chan struct{}, 1),
		commands:        make(chan func(), 32),
		runCtx:          context.Background(),
	}
}

// newFromReceiver assembles a Session from a completed Receiver, reusing
// its algorithm/buffer/users/text-user state directly rather than
// replaying it again.
func newFromReceiver(r *Receiver) *Session {
	return &Session{
		id:              uuid.NewString(),
		alg:             r.alg,
		users:           r.users,
		buffer:          r.buffer,
		peers:           make(map[uint64]Peer),
		textUsers:       r.textUsers,
		noopInterval:    r.noopInterval,
		cleanupInterval: r.cleanupInterval,
		dueAt:           make(map[uint64]time.Time),
		noopFire:        make(chan struct{}, 1),
		commands:        make(chan func(), 32),
		runCtx:          context.Background(),
	}
}

// ID returns the session's generated identifier, independent of any
// document name a directory service might assign. pkg/store does not use
// it: snapshots are keyed by document id.
func (s *Session) ID() string { return s.id }

// Buffer returns the session's text buffer. It is only safe to read from
// outside the owning task immediately after a do-backed call (Join,
// Submit, Do/Undo/Redo, SetInactive) has returned — the channel round
// trip establishes the happens-before edge Go's memory model requires.
// An external caller with no such call to piggyback on (e.g. a periodic
// HTTP status endpoint) should use Text/Current instead.
func (s *Session) Buffer() *otext.Buffer { return s.buffer }

// Text reads the buffer's current content from the owning task,
// concurrency-safe regardless of caller (spec §9: buffer notifications
// are synchronous, so this never races a concurrent mutation).
func (s *Session) Text(ctx context.Context) (string, error) {
	var text string
	if err := s.do(ctx, func() { text = s.buffer.Text() }); err != nil {
		return "", err
	}
	return text, nil
}

// Current reads the algorithm's current state vector from the owning
// task, concurrency-safe regardless of caller.
func (s *Session) Current(ctx context.Context) (*statevector.StateVector, error) {
	var v *statevector.StateVector
	if err := s.do(ctx, func() { v = s.alg.Current() }); err != nil {
		return nil, err
	}
	return v, nil
}

// Run drains the command channel until ctx is cancelled; it is the single
// task that ever touches alg/users/buffer (spec §5). A second goroutine
// feeds periodic cleanup sweeps into the same channel rather than calling
// into session state directly — generalizing the teacher's
// Handle/broadcastUpdates split (pkg/server/connection.go) from "one loop
// reads the socket while another forwards updates" to "one loop produces
// scheduled events, the other is the sole consumer of shared state."
// Cancelling ctx cancels the noop timer and stops accepting commands,
// matching spec §5's closing sequence.
func (s *Session) Run(ctx context.Context) error {
	g, gctx := errgroup.WithContext(ctx)

	ticker := time.NewTicker(s.cleanupInterval)
	g.Go(func() error {
		defer ticker.Stop()
		for {
			select {
			case <-gctx.Done():
				return gctx.Err()
			case <-ticker.C:
				select {
				case s.commands <- s.runCleanup:
				case <-gctx.Done():
					return gctx.Err()
				}
			}
		}
	})

	g.Go(func() error {
		s.runCtx = gctx
		defer s.stopTimer()
		for {
			select {
			case <-gctx.Done():
				s.closed = true
				return gctx.Err()
			case <-s.noopFire:
				s.fireNoop()
			case fn := <-s.commands:
				fn()
			}
		}
	})

	return g.Wait()
}

// do submits fn to the owning task and blocks until it has run, or ctx is
// cancelled first.
func (s *Session) do(ctx context.Context, fn func()) error {
	done := make(chan struct{})
	select {
	case s.commands <- func() { fn(); close(done) }:
	case <-ctx.Done():
		return ctx.Err()
	}
	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
