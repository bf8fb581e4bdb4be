package session

import (
	"encoding/json"
	"fmt"
	"maps"
	"strings"

	"github.com/danielpatrickdp/journey-engine/internal/ledger"
	"github.com/danielpatrickdp/journey-engine/internal/progression"
)

// #region snapshot
// Record captures the persisted state. The score cache is not stored; it is
// recomputed on restore.
func (s *Session) Record() Record {
	rec := Record{
		Version:     RecordVersion,
		ID:          s.id,
		Lens:        s.lens,
		StartedAt:   s.startedAt,
		Progress:    s.progress.Snapshot(),
		Responses:   s.ledger.Responses(),
		Viewed:      s.Viewed(),
		Conversions: s.Conversions(),
	}
	if rec.Responses == nil {
		rec.Responses = []ledger.Response{}
	}
	if rec.Viewed == nil {
		rec.Viewed = []string{}
	}
	if rec.Conversions == nil {
		rec.Conversions = []Conversion{}
	}
	return rec
}

// FromRecord rebuilds a session from its persisted form.
func FromRecord(rec Record, config Config, opts ...Option) (*Session, error) {
	if rec.Version != RecordVersion {
		return nil, fmt.Errorf("record version %d: %w", rec.Version, ErrInvalidRecord)
	}
	if strings.TrimSpace(rec.ID) == "" {
		return nil, fmt.Errorf("missing id: %w", ErrInvalidRecord)
	}
	if !rec.Lens.Valid() && rec.Lens != 0 {
		return nil, fmt.Errorf("lens %d: %w", uint8(rec.Lens), ErrInvalidRecord)
	}
	progress, err := progression.Restore(rec.Progress)
	if err != nil {
		return nil, fmt.Errorf("progress: %v: %w", err, ErrInvalidRecord)
	}
	for i, r := range rec.Responses {
		if !r.Layer.Valid() || !r.Answer.Valid() {
			return nil, fmt.Errorf("response %d (%s): %w", i, r.QuestionID, ErrInvalidRecord)
		}
	}

	s := New(config, opts...)
	s.id = rec.ID
	s.lens = rec.Lens
	s.startedAt = rec.StartedAt
	s.progress = progress
	s.ledger = ledger.FromResponses(rec.Responses)
	for _, id := range rec.Viewed {
		if _, dup := s.viewedSet[id]; dup || id == "" {
			continue
		}
		s.viewedSet[id] = struct{}{}
		s.viewed = append(s.viewed, id)
	}
	for _, c := range rec.Conversions {
		c.Detail = maps.Clone(c.Detail)
		s.conversions = append(s.conversions, c)
	}
	s.Recompute()
	return s, nil
}

// #endregion snapshot

// #region codec

// Encode serializes the session record as JSON.
func Encode(s *Session) ([]byte, error) {
	data, err := json.Marshal(s.Record())
	if err != nil {
		return nil, fmt.Errorf("encode session %s: %w", s.ID(), err)
	}
	return data, nil
}

// Decode parses a JSON record and restores the session.
func Decode(data []byte, config Config, opts ...Option) (*Session, error) {
	var rec Record
	if err := json.Unmarshal(data, &rec); err != nil {
		return nil, fmt.Errorf("decode session: %v: %w", err, ErrInvalidRecord)
	}
	return FromRecord(rec, config, opts...)
}

// #endregion codec
