// Package wire defines the on-the-wire message shapes exchanged between
// session peers (spec §6). JSON is used in place of the original XML —
// spec §6 allows "any structured encoding... provided the shape is
// preserved" — and the tagged-union pattern (custom Marshal/UnmarshalJSON
// choosing exactly one populated field) is kolabpad's own
// (internal/protocol/messages.go ClientMsg/ServerMsg).
package wire

import "encoding/json"

// Envelope is the single message type exchanged over a session's
// transport; exactly one field is populated per instance, one per row of
// spec §6's external-interfaces table.
type Envelope struct {
	Request          *RequestMsg          `json:"-"`
	SyncBegin        *SyncBeginMsg        `json:"-"`
	SyncUser         *SyncUserMsg         `json:"-"`
	SyncRequest      *RequestMsg          `json:"-"`
	SyncEnd          *SyncEndMsg          `json:"-"`
	UserStatusChange *UserStatusChangeMsg `json:"-"`
	RequestFailed    *RequestFailedMsg    `json:"-"`
}

// MarshalJSON emits a single-key object naming whichever field is set,
// mirroring kolabpad's ServerMsg.MarshalJSON.
func (e *Envelope) MarshalJSON() ([]byte, error) {
	out := make(map[string]interface{}, 1)
	switch {
	case e.Request != nil:
		out["request"] = e.Request
	case e.SyncBegin != nil:
		out["syncBegin"] = e.SyncBegin
	case e.SyncUser != nil:
		out["syncUser"] = e.SyncUser
	case e.SyncRequest != nil:
		out["syncRequest"] = e.SyncRequest
	case e.SyncEnd != nil:
		out["syncEnd"] = e.SyncEnd
	case e.UserStatusChange != nil:
		out["userStatusChange"] = e.UserStatusChange
	case e.RequestFailed != nil:
		out["requestFailed"] = e.RequestFailed
	}
	return json.Marshal(out)
}

// UnmarshalJSON scans for whichever of the known keys is present,
// mirroring kolabpad's ClientMsg.UnmarshalJSON.
func (e *Envelope) UnmarshalJSON(data []byte) error {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	if v, ok := raw["request"]; ok {
		var m RequestMsg
		if err := json.Unmarshal(v, &m); err != nil {
			return err
		}
		e.Request = &m
	}
	if v, ok := raw["syncBegin"]; ok {
		var m SyncBeginMsg
		if err := json.Unmarshal(v, &m); err != nil {
			return err
		}
		e.SyncBegin = &m
	}
	if v, ok := raw["syncUser"]; ok {
		var m SyncUserMsg
		if err := json.Unmarshal(v, &m); err != nil {
			return err
		}
		e.SyncUser = &m
	}
	if v, ok := raw["syncRequest"]; ok {
		var m RequestMsg
		if err := json.Unmarshal(v, &m); err != nil {
			return err
		}
		e.SyncRequest = &m
	}
	if v, ok := raw["syncEnd"]; ok {
		var m SyncEndMsg
		if err := json.Unmarshal(v, &m); err != nil {
			return err
		}
		e.SyncEnd = &m
	}
	if v, ok := raw["userStatusChange"]; ok {
		var m UserStatusChangeMsg
		if err := json.Unmarshal(v, &m); err != nil {
			return err
		}
		e.UserStatusChange = &m
	}
	if v, ok := raw["requestFailed"]; ok {
		var m RequestFailedMsg
		if err := json.Unmarshal(v, &m); err != nil {
			return err
		}
		e.RequestFailed = &m
	}
	return nil
}
