package roster

import "errors"

// ErrDuplicateUser is returned by Table.Add when id is already registered.
var ErrDuplicateUser = errors.New("roster: duplicate user id")

// ErrUnknownUser is returned by lookups for an id/name with no registered
// user.
var ErrUnknownUser = errors.New("roster: unknown user")

// Event reports an add or remove against the table, mirroring kolabpad's
// subscriber-broadcast shape (pkg/server/kolabpad.go's UserInfo/UserCursor
// messages) generalized into a single table-level notification.
type Event struct {
	User   *User
	Joined bool // false means the user was removed
}

// Table is the session's user registry, keyed by id with a secondary
// index by name. Add/remove is broadcast to subscribers; local users are
// kept in a separate set so the session can iterate exactly that subset
// to drive the shared noop timer (spec §4.7).
type Table struct {
	byID   map[uint64]*User
	byName map[string]*User
	local  map[uint64]*User

	subscribers []func(Event)
}

// NewTable returns an empty user table.
func NewTable() *Table {
	return &Table{
		byID:   make(map[uint64]*User),
		byName: make(map[string]*User),
		local:  make(map[uint64]*User),
	}
}

// Add registers user, failing if its id is already present.
func (t *Table) Add(user *User) error {
	if _, ok := t.byID[user.ID]; ok {
		return ErrDuplicateUser
	}
	t.byID[user.ID] = user
	t.byName[user.Name] = user
	if user.Local {
		t.local[user.ID] = user
	}
	t.notify(Event{User: user, Joined: true})
	return nil
}

// Remove transitions id's user to Unavailable and drops it from the
// table. Per spec §4.7, Unavailable is terminal: the removed User never
// leaves it. The id itself is free again, so a later Add under the same
// id registers a fresh User.
func (t *Table) Remove(id uint64) error {
	user, ok := t.byID[id]
	if !ok {
		return ErrUnknownUser
	}
	_ = user.SetStatus(Unavailable)
	delete(t.byID, id)
	delete(t.byName, user.Name)
	delete(t.local, id)
	t.notify(Event{User: user, Joined: false})
	return nil
}

// ByID returns the user registered under id.
func (t *Table) ByID(id uint64) (*User, bool) {
	u, ok := t.byID[id]
	return u, ok
}

// ByName returns the user registered under name.
func (t *Table) ByName(name string) (*User, bool) {
	u, ok := t.byName[name]
	return u, ok
}

// Len returns the number of currently registered users.
func (t *Table) Len() int { return len(t.byID) }

// All returns every registered user, in no particular order.
func (t *Table) All() []*User {
	out := make([]*User, 0, len(t.byID))
	for _, u := range t.byID {
		out = append(out, u)
	}
	return out
}

// Local returns every registered local user, the subset the session's
// noop timer iterates each tick.
func (t *Table) Local() []*User {
	out := make([]*User, 0, len(t.local))
	for _, u := range t.local {
		out = append(out, u)
	}
	return out
}

// Subscribe registers fn to be called on every Add/Remove.
func (t *Table) Subscribe(fn func(Event)) {
	t.subscribers = append(t.subscribers, fn)
}

func (t *Table) notify(ev Event) {
	for _, fn := range t.subscribers {
		fn(ev)
	}
}
