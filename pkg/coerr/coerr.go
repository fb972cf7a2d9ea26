// Package coerr provides the small domain-tagged error shape used only at
// the wire boundary (spec §7): every fallible call in the core packages
// still returns a plain error with sentinels checked via errors.Is/As, but
// when a session turns a failure into a request-failed message it needs a
// (domain, code) pair to put on the wire, and that pair is this package.
package coerr

import (
	"errors"
	"fmt"

	"collabotp/pkg/otext"
	"collabotp/pkg/request"
	"collabotp/pkg/roster"
	"collabotp/pkg/statevector"
)

// Domains match spec §7's taxonomy table exactly.
const (
	DomainStateVector = "StateVector"
	DomainRequest     = "Request"
	DomainSession     = "Session"
	DomainBuffer      = "Buffer"
	DomainUser        = "User"
)

// Tagged pairs an error with the domain/code spec §7 assigns it. Session-
// level sentinels (NoSuchUser, MissingStateVector, InvalidRequest,
// SyncAborted, UnexpectedMessage) are constructed directly as *Tagged via
// New, so they already carry their own classification; errors originating
// in a leaf package keep their existing sentinel and are classified by
// Classify instead, at the point a wire message is produced.
type Tagged struct {
	Domain string
	Code   string
	Err    error
}

// New returns a fresh, comparable (via errors.Is) sentinel already
// classified under domain/code.
func New(domain, code, message string) *Tagged {
	return &Tagged{Domain: domain, Code: code, Err: errors.New(message)}
}

// Tag wraps an existing error under domain/code without replacing it —
// errors.Is/As against the original err still works through Unwrap.
func Tag(domain, code string, err error) *Tagged {
	if err == nil {
		return nil
	}
	return &Tagged{Domain: domain, Code: code, Err: err}
}

func (t *Tagged) Error() string {
	return fmt.Sprintf("%s.%s: %v", t.Domain, t.Code, t.Err)
}

func (t *Tagged) Unwrap() error { return t.Err }

// Classify returns the (domain, code) spec §7 assigns err, for building a
// request-failed wire message. Already-tagged errors (session's own
// sentinels) report their own classification; known leaf-package
// sentinels are recognized by identity; anything else falls back to
// Session/InvalidRequest, spec §7's catch-all for "deserialization or
// validation failed, report it and drop the message."
func Classify(err error) (domain, code string) {
	var tagged *Tagged
	if errors.As(err, &tagged) {
		return tagged.Domain, tagged.Code
	}
	switch {
	case errors.Is(err, statevector.ErrParse):
		return DomainStateVector, "ParseError"
	case errors.Is(err, statevector.ErrMonotonicityViolation):
		return DomainStateVector, "MonotonicityViolation"
	case errors.Is(err, statevector.ErrKeyRemoval):
		return DomainStateVector, "ParseError"
	case errors.Is(err, request.ErrIndexMismatch):
		return DomainRequest, "IndexMismatch"
	case errors.Is(err, request.ErrNoAssociatedRequest):
		return DomainRequest, "NoAssociatedRequest"
	case errors.Is(err, request.ErrMissingOperation):
		return DomainRequest, "MissingOperation"
	case errors.Is(err, request.ErrIndexOutOfRange):
		return DomainRequest, "IndexMismatch"
	case errors.Is(err, otext.ErrOutOfRange):
		return DomainBuffer, "OutOfRange"
	case errors.Is(err, otext.ErrNotReversible):
		return DomainBuffer, "EncodingError"
	case errors.Is(err, roster.ErrDuplicateUser):
		return DomainUser, "DuplicateId"
	case errors.Is(err, roster.ErrUnknownUser):
		return DomainSession, "NoSuchUser"
	case errors.Is(err, roster.ErrInvalidTransition):
		return DomainUser, "StatusPrecondition"
	default:
		return DomainSession, "InvalidRequest"
	}
}
