package logging

import "time"

// #region event-kind
// EventKind names a journey event written to the event log.
type EventKind string

const (
	EventLensSet    EventKind = "lens_set"
	EventResponse   EventKind = "response"
	EventRejected   EventKind = "response_rejected"
	EventViewed     EventKind = "content_viewed"
	EventAdvance    EventKind = "advance"
	EventConversion EventKind = "conversion"
	EventReset      EventKind = "reset"
)

// #endregion event-kind

// #region event-entry
// EventEntry is a single row in the event_log table.
type EventEntry struct {
	SessionID  string
	Kind       EventKind
	DetailJSON string
	CreatedAt  time.Time
}

// #endregion event-entry

// #region response-detail
// ResponseDetail captures a response submission and the gate outcome.
// Serialized as JSON into event_log.detail_json for replay.
type ResponseDetail struct {
	QuestionID     string  `json:"question_id"`
	Answer         string  `json:"answer"`
	ElapsedSeconds float64 `json:"elapsed_seconds"`
	Weight         float64 `json:"weight"`
	Layer          string  `json:"layer"`

	GateAction string `json:"gate_action"`
	GateReason string `json:"gate_reason,omitempty"`
}

// #endregion response-detail

// #region logger-config
// LoggerConfig selects the zap logger flavour.
type LoggerConfig struct {
	Level       string `yaml:"level"`       // debug | info | warn | error
	Development bool   `yaml:"development"` // console encoder, stack traces on warn
}

// #endregion logger-config
