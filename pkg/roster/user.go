// Package roster implements the session's user registry: identity,
// connection status, and the per-user state the adOPTed algorithm and the
// text buffer need (spec §4.7).
package roster

import (
	"collabotp/pkg/request"
	"collabotp/pkg/statevector"
)

// User is a single session participant: identity, status, and the vector
// and log the algorithm folds translations across. Local is true for
// users owned by this process (as opposed to ones only known by their
// synchronized state) — the session iterates the local subset to drive
// the shared noop timer.
type User struct {
	ID     uint64
	Name   string
	Local  bool
	status Status

	Vector *statevector.StateVector
	Log    *request.Log
}

// NewUser returns a freshly joined user with an empty log beginning at
// initial's corresponding component, and status Active.
func NewUser(id uint64, name string, local bool, initial *statevector.StateVector) *User {
	return &User{
		ID:     id,
		Name:   name,
		Local:  local,
		status: Active,
		Vector: initial.Copy(),
		Log:    request.NewLog(id, initial.Get(id)),
	}
}

// Status returns the user's current status.
func (u *User) Status() Status { return u.status }

// SetStatus transitions the user to to, failing if the transition is not
// one of the state machine's edges (spec §4.7).
func (u *User) SetStatus(to Status) error {
	if u.status == to {
		return nil
	}
	if !validTransition(u.status, to) {
		return ErrInvalidTransition
	}
	u.status = to
	return nil
}

// TextUser decorates a User with the caret/selection/color state a text
// editing session displays for each participant (spec §4.7, §6
// sync-user: "hue, optional caret, selection").
type TextUser struct {
	*User

	// Caret is the user's cursor position, in code points.
	Caret int
	// Selection is signed relative to Caret: zero means no selection, a
	// positive value extends the selection that many code points to the
	// right, negative to the left.
	Selection int
	// Hue is the display color assigned to this user, in [0, 1).
	Hue float64
}

// NewTextUser wraps user with the default empty caret/selection state and
// the given display hue.
func NewTextUser(user *User, hue float64) *TextUser {
	return &TextUser{User: user, Hue: hue}
}
