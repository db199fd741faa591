package domain

import "encoding/json"

// EventError is the caller-visible form of a stage failure.
type EventError struct {
	Kind    ErrorKind `json:"kind"`
	Message string    `json:"message"`
}

// StageEvent is the unit pushed onto the result stream: one record per
// finished stage, plus a single terminal record. Sequence numbers are
// strictly increasing per submission and are assigned at emission time,
// so true completion order of concurrent stages determines stream order.
type StageEvent struct {
	Seq      uint64          `json:"seq"`
	Label    string          `json:"label"`
	Stage    StageKind       `json:"stage"`
	Status   StageStatus     `json:"status"`
	Result   json.RawMessage `json:"result,omitempty"`
	Error    *EventError     `json:"error,omitempty"`
	Terminal bool            `json:"terminal,omitempty"`
}

// CompletedEvent builds a success event for a finished stage. The payload
// is marshaled here so emitters never push unserializable results.
func CompletedEvent(label string, kind StageKind, payload any) (StageEvent, error) {
	raw, err := json.Marshal(payload)
	if err != nil {
		return StageEvent{}, err
	}
	return StageEvent{
		Label:  label,
		Stage:  kind,
		Status: StatusCompleted,
		Result: raw,
	}, nil
}

// FailedEvent builds a failure event carrying the classified error.
func FailedEvent(label string, kind StageKind, err error) StageEvent {
	return StageEvent{
		Label:  label,
		Stage:  kind,
		Status: StatusFailed,
		Error:  &EventError{Kind: Classify(err), Message: err.Error()},
	}
}

// TerminalEvent builds the closing record of a stream. A nil err means the
// run completed normally.
func TerminalEvent(err error) StageEvent {
	ev := StageEvent{
		Label:    "done",
		Stage:    "pipeline",
		Status:   StatusCompleted,
		Terminal: true,
	}
	if err != nil {
		ev.Label = "error"
		ev.Status = StatusFailed
		ev.Error = &EventError{Kind: Classify(err), Message: err.Error()}
	}
	return ev
}
