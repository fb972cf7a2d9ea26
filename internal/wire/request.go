package wire

// Kind mirrors request.Kind at the wire boundary as a string so the JSON
// is self-describing without depending on pkg/request's iota ordering.
type Kind string

const (
	KindDo   Kind = "do"
	KindUndo Kind = "undo"
	KindRedo Kind = "redo"
)

// RequestMsg is spec §6's `request` element: `user`=uid, `time`=state
// vector (diff-encoded against the receiver's current vector for Request,
// absolute for SyncRequest), and one child operation. Op is present only
// for Kind == do; undo/redo carry no payload.
type RequestMsg struct {
	User uint64 `json:"user"`
	Kind Kind   `json:"kind"`
	Time string `json:"time"`
	Op   *OpMsg `json:"op,omitempty"`
}

// SyncBeginMsg is spec §6's `sync-begin`: the total message count a
// synchronizing peer should expect before `sync-end`.
type SyncBeginMsg struct {
	NumMessages int `json:"numMessages"`
}

// SyncUserMsg is spec §6's `sync-user`: one per existing user, sent
// before that user's sync-requests. Time is the user's absolute state
// vector. Caret/Selection are omitted for non-text users.
type SyncUserMsg struct {
	ID        uint64  `json:"id"`
	Name      string  `json:"name"`
	Time      string  `json:"time"`
	Hue       float64 `json:"hue"`
	Caret     *int    `json:"caret,omitempty"`
	Selection *int    `json:"selection,omitempty"`
}

// SyncEndMsg is spec §6's `sync-end`: an empty marker closing the stream.
type SyncEndMsg struct{}

// UserStatusChangeMsg is spec §6's `user-status-change`: Status is one of
// "unavailable", "active", "inactive" (roster.Status.String()).
type UserStatusChangeMsg struct {
	ID     uint64 `json:"id"`
	Status string `json:"status"`
}

// RequestFailedMsg reports a wire-deserialization or validation failure
// back to its sender without closing the session (spec §7: "Wire-
// deserialization errors are reported to the peer as request-failed and
// the offending message is dropped; the session stays open"). Domain/Code
// come from pkg/coerr's classification of the error that caused it.
type RequestFailedMsg struct {
	CorrelationID string `json:"correlationId"`
	Domain        string `json:"domain"`
	Code          string `json:"code"`
	Message       string `json:"message"`
}
