package state

import (
	"errors"
	"time"
)

// ErrNotFound is returned when no session is stored under a key.
var ErrNotFound = errors.New("session not found")

// #region session-row
// SessionRow is one persisted session record plus the columns extracted for
// listing without decoding the payload.
type SessionRow struct {
	Key            string
	SessionID      string
	Lens           string
	CurrentLayer   string
	CompletedCount int
	Responses      int
	Payload        []byte // session.Record JSON
	UpdatedAt      time.Time
}

// #endregion session-row

// #region event-record
// EventRecord is one row of the event log.
type EventRecord struct {
	ID         int64
	SessionID  string
	Kind       string
	DetailJSON string
	CreatedAt  time.Time
}

// #endregion event-record
