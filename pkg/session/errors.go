package session

import (
	"errors"

	"collabotp/pkg/coerr"
)

// Session-level sentinels (spec §7 taxonomy, Session domain). These are
// constructed via coerr.New so they already carry their own
// classification; coerr.Classify recognizes them directly via errors.As
// rather than falling through to its leaf-sentinel table.
var (
	ErrMissingStateVector = coerr.New(coerr.DomainSession, "MissingStateVector", "session: request has no time field")
	ErrInvalidRequest     = coerr.New(coerr.DomainSession, "InvalidRequest", "session: malformed or out-of-context request")
	ErrSyncAborted        = coerr.New(coerr.DomainSession, "SyncAborted", "session: synchronization aborted mid-stream")
	ErrUnexpectedMessage  = coerr.New(coerr.DomainSession, "UnexpectedMessage", "session: message kind not valid in this context")
)

// ErrSessionClosed is returned by Join when it runs on a session already
// marked closed; it never reaches the wire. Run marks the session closed
// only as its owning task exits, and a call submitted after that is not
// run at all: it blocks until its own ctx is done and returns ctx's error.
var ErrSessionClosed = errors.New("session: closed")
