package session

import (
	"fmt"
	"maps"
	"strings"
	"time"

	"github.com/danielpatrickdp/journey-engine/internal/gate"
	"github.com/danielpatrickdp/journey-engine/internal/journey"
	"github.com/danielpatrickdp/journey-engine/internal/ledger"
	"github.com/danielpatrickdp/journey-engine/internal/progression"
	"github.com/danielpatrickdp/journey-engine/internal/scoring"
)

// #region session
// Session is the aggregate root of one visitor journey. It is not safe for
// concurrent mutation; one owner drives it from UI events.
type Session struct {
	config Config
	gate   *gate.Gate
	now    func() time.Time
	newID  func() string

	id          string
	lens        journey.Lens
	startedAt   journey.Millis
	progress    progression.Machine
	ledger      ledger.Ledger
	viewed      []string
	viewedSet   map[string]struct{}
	conversions []Conversion
	scores      scoring.Vector
}

// New creates a session in the initial state: first layer, no lens, empty
// ledger.
func New(config Config, opts ...Option) *Session {
	s := &Session{
		config: config,
		gate:   gate.NewGate(config.Gate),
		now:    time.Now,
		newID:  defaultID,
	}
	for _, opt := range opts {
		opt(s)
	}
	s.clear()
	return s
}

func (s *Session) clear() {
	s.id = s.newID()
	s.lens = journey.LensUnset
	s.startedAt = 0
	s.progress = progression.New()
	s.ledger = ledger.Ledger{}
	s.viewed = nil
	s.viewedSet = make(map[string]struct{})
	s.conversions = nil
	s.scores = scoring.Vector{}
}

// #endregion session

// #region mutations

// SetLens records the visitor's lens and starts the session clock. The lens
// is fixed until Reset; later calls return ErrLensLocked.
func (s *Session) SetLens(l journey.Lens) error {
	if !l.Valid() {
		return fmt.Errorf("set lens %d: %w", uint8(l), ErrInvalidLens)
	}
	if s.lens.Valid() {
		if s.lens == l {
			return nil
		}
		return fmt.Errorf("set lens %s over %s: %w", l, s.lens, ErrLensLocked)
	}
	s.lens = l
	if s.startedAt.IsZero() {
		s.startedAt = journey.MillisOf(s.now())
	}
	return nil
}

// RecordResponse validates a submission, appends it to the ledger and
// recomputes scores. Rejected input leaves the session untouched.
func (s *Session) RecordResponse(questionID string, answer journey.Answer, elapsedSeconds, weight float64, layer journey.Layer) error {
	decision := s.gate.Evaluate(gate.ResponseInput{
		QuestionID:     questionID,
		Answer:         answer,
		ElapsedSeconds: elapsedSeconds,
		Weight:         weight,
		Layer:          layer,
	})
	if decision.Vetoed {
		return fmt.Errorf("record %q: %s: %w", questionID, decision.Reason, ErrInvalidResponse)
	}

	s.ledger.Append(ledger.Response{
		QuestionID:     questionID,
		Answer:         answer,
		ElapsedSeconds: elapsedSeconds,
		Weight:         weight,
		Layer:          layer,
		At:             journey.MillisOf(s.now()),
	})
	if layer == s.progress.Current() {
		s.progress.Step()
	}
	s.Recompute()
	return nil
}

// MarkViewed adds a content item to the viewed set. It reports whether the
// item was new.
func (s *Session) MarkViewed(contentID string) (bool, error) {
	contentID = strings.TrimSpace(contentID)
	if contentID == "" {
		return false, ErrEmptyContentID
	}
	if _, ok := s.viewedSet[contentID]; ok {
		return false, nil
	}
	s.viewedSet[contentID] = struct{}{}
	s.viewed = append(s.viewed, contentID)
	s.Recompute()
	return true, nil
}

// Advance completes the current layer and moves on when a next layer exists.
func (s *Session) Advance() bool {
	return s.progress.Advance()
}

// RecordConversion appends a conversion event. The detail map is copied.
func (s *Session) RecordConversion(kind string, detail map[string]string) (Conversion, error) {
	kind = strings.TrimSpace(kind)
	if kind == "" {
		return Conversion{}, ErrEmptyConversionKind
	}
	c := Conversion{Kind: kind, At: journey.MillisOf(s.now())}
	if len(detail) > 0 {
		c.Detail = maps.Clone(detail)
	}
	s.conversions = append(s.conversions, c)
	return c, nil
}

// Reset discards everything and starts over with a fresh identifier.
func (s *Session) Reset() {
	s.clear()
}

// Recompute rebuilds the score cache from the ledger and viewed set.
func (s *Session) Recompute() scoring.Vector {
	s.scores = scoring.Compute(s.ledger.Responses(), len(s.viewed), s.config.Scoring)
	return s.scores
}

// #endregion mutations

// #region accessors

func (s *Session) ID() string                { return s.id }
func (s *Session) Lens() journey.Lens        { return s.lens }
func (s *Session) StartedAt() journey.Millis { return s.startedAt }
func (s *Session) Config() Config            { return s.config }

// Scores returns the cached score vector.
func (s *Session) Scores() scoring.Vector { return s.scores }

// Coarse returns the total weighted answer score used for classification.
func (s *Session) Coarse() int {
	return scoring.Coarse(s.ledger.Responses())
}

func (s *Session) CurrentLayer() journey.Layer { return s.progress.Current() }

func (s *Session) CompletedLayers() []journey.Layer { return s.progress.Completed() }

func (s *Session) CompletedCount() int { return s.progress.CompletedCount() }

func (s *Session) QuestionIndex() int { return s.progress.QuestionIndex() }

// Terminal reports whether the final layer has been completed.
func (s *Session) Terminal() bool { return s.progress.Terminal() }

func (s *Session) Responses() []ledger.Response { return s.ledger.Responses() }

func (s *Session) ResponseCount() int { return s.ledger.Len() }

// AffirmativeRatio is the affirmative share over all responses.
func (s *Session) AffirmativeRatio() float64 { return s.ledger.AffirmativeRatio() }

// Viewed returns viewed content ids in first-view order.
func (s *Session) Viewed() []string {
	out := make([]string, len(s.viewed))
	copy(out, s.viewed)
	return out
}

func (s *Session) Conversions() []Conversion {
	out := make([]Conversion, len(s.conversions))
	for i, c := range s.conversions {
		c.Detail = maps.Clone(c.Detail)
		out[i] = c
	}
	return out
}

// #endregion accessors
