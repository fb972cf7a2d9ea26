// Package transport wires a session.Session to an actual WebSocket
// connection, generalizing kolabpad's server+connection pair
// (pkg/server/server.go, pkg/server/connection.go) from its own
// client/server message shapes to internal/wire's envelopes.
package transport

import (
	"log"
	"net/http"
	"strconv"
	"sync/atomic"
	"time"

	"nhooyr.io/websocket"

	"collabotp/pkg/session"
)

// Transport accepts WebSocket connections for a single session and drives
// each one through its full lifecycle. One Transport serves one document
// (spec §1: each session layer instance owns exactly one buffer); a
// process hosting several documents runs one Transport per session, the
// way the teacher keys one *Rustpad per document id.
type Transport struct {
	sess *session.Session

	nextID atomic.Uint64

	readTimeout  time.Duration
	writeTimeout time.Duration
}

// New returns a Transport serving sess. readTimeout bounds how long a
// connection may stay idle before its read loop gives up (the teacher's
// wsReadTimeout); writeTimeout bounds each individual write (wsWriteTimeout).
func New(sess *session.Session, readTimeout, writeTimeout time.Duration) *Transport {
	return &Transport{sess: sess, readTimeout: readTimeout, writeTimeout: writeTimeout}
}

// ServeHTTP upgrades r to a WebSocket and drives the connection until it
// closes, matching the teacher's handleSocket (pkg/server/server.go): one
// document id maps to one Transport, registered by the caller under
// whatever route shape it wants (cmd/collabd keys by path; tests dial
// directly). name and hue come from query parameters, the same way the
// teacher's client sends them in its first ClientInfo message — this
// session layer just needs them up front, at join time, instead.
func (t *Transport) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	name := r.URL.Query().Get("name")
	if name == "" {
		name = "anonymous"
	}
	hue, err := strconv.ParseFloat(r.URL.Query().Get("hue"), 64)
	if err != nil {
		hue = 0
	}

	conn, err := websocket.Accept(w, r, &websocket.AcceptOptions{
		CompressionMode: websocket.CompressionDisabled,
	})
	if err != nil {
		log.Printf("transport: accept failed: %v", err)
		return
	}

	id := t.nextID.Add(1) - 1
	if err := Handle(r.Context(), t.sess, conn, id, name, hue, t.readTimeout, t.writeTimeout); err != nil {
		log.Printf("transport: connection %d closed: %v", id, err)
	}
	_ = conn.Close(websocket.StatusNormalClosure, "")
}
