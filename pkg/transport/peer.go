package transport

import (
	"context"
	"fmt"
	"sync"
	"time"

	"nhooyr.io/websocket"
	"nhooyr.io/websocket/wsjson"

	"collabotp/internal/wire"
	"collabotp/pkg/session"
)

// peer adapts one accepted WebSocket connection to session.Peer. Writes
// are serialized under sendMu and bounded by writeTimeout, mirroring the
// teacher's Connection.send (pkg/server/connection.go).
type peer struct {
	id   uint64
	conn *websocket.Conn

	writeTimeout time.Duration
	sendMu       sync.Mutex
}

func (p *peer) ID() uint64 { return p.id }

func (p *peer) Send(ctx context.Context, env *wire.Envelope) error {
	p.sendMu.Lock()
	defer p.sendMu.Unlock()

	writeCtx, cancel := context.WithTimeout(ctx, p.writeTimeout)
	defer cancel()
	return wsjson.Write(writeCtx, p.conn, env)
}

// Handle drives one accepted connection's full lifecycle: Join, then a
// read loop submitting every inbound envelope to sess, then Leave on exit
// (spec §4.6/§4.7's join/leave lifecycle).
//
// This generalizes the teacher's Handle/broadcastUpdates split
// (pkg/server/connection.go): there, two goroutines per connection both
// touched shared document state directly, coordinated by a mutex. Here,
// Send is ordinary synchronous socket I/O with no document state of its
// own — the session is the sole owner of that state, reached through its
// own single consumer goroutine (pkg/session.Session.Run) — so a
// connection needs only the one goroutine this function runs on; there is
// nothing left for a second goroutine to broadcast.
func Handle(ctx context.Context, sess *session.Session, conn *websocket.Conn, id uint64, name string, hue float64, readTimeout, writeTimeout time.Duration) error {
	p := &peer{id: id, conn: conn, writeTimeout: writeTimeout}

	if _, err := sess.Join(ctx, p, name, hue); err != nil {
		return fmt.Errorf("transport: join: %w", err)
	}
	defer leave(sess, id, writeTimeout)

	for {
		readCtx, cancel := context.WithTimeout(ctx, readTimeout)
		var env wire.Envelope
		err := wsjson.Read(readCtx, conn, &env)
		cancel()
		if err != nil {
			if websocket.CloseStatus(err) == websocket.StatusNormalClosure {
				return nil
			}
			return fmt.Errorf("transport: read: %w", err)
		}

		if err := sess.Submit(ctx, id, &env); err != nil {
			return fmt.Errorf("transport: submit: %w", err)
		}
	}
}

func leave(sess *session.Session, id uint64, timeout time.Duration) {
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()
	_ = sess.Leave(ctx, id)
}
