package session

import (
	"errors"
	"time"

	"github.com/danielpatrickdp/journey-engine/internal/gate"
	"github.com/danielpatrickdp/journey-engine/internal/journey"
	"github.com/danielpatrickdp/journey-engine/internal/ledger"
	"github.com/danielpatrickdp/journey-engine/internal/progression"
	"github.com/danielpatrickdp/journey-engine/internal/scoring"
	"github.com/google/uuid"
)

// #region errors
var (
	ErrInvalidLens         = errors.New("invalid lens")
	ErrLensLocked          = errors.New("lens already set for this session")
	ErrInvalidResponse     = errors.New("invalid response")
	ErrEmptyContentID      = errors.New("empty content id")
	ErrEmptyConversionKind = errors.New("empty conversion kind")
	ErrInvalidRecord       = errors.New("invalid session record")
)

// #endregion errors

// #region conversion
// Conversion is a recorded terminal engagement (signup, share, donation...).
// Conversions are logged, never scored.
type Conversion struct {
	Kind   string            `json:"kind"`
	Detail map[string]string `json:"detail,omitempty"`
	At     journey.Millis    `json:"at"`
}

// #endregion conversion

// #region config
// Config bundles the scoring constants and input gate of a session.
type Config struct {
	Scoring scoring.Config  `yaml:"scoring"`
	Gate    gate.GateConfig `yaml:"gate"`
}

// DefaultConfig returns production scoring constants and the [0,1] weight gate.
func DefaultConfig() Config {
	return Config{
		Scoring: scoring.DefaultConfig(),
		Gate:    gate.DefaultGateConfig(),
	}
}

// #endregion config

// #region options
// Option customizes a Session.
type Option func(*Session)

// WithClock replaces time.Now.
func WithClock(now func() time.Time) Option {
	return func(s *Session) { s.now = now }
}

// WithIDGenerator replaces the uuid generator used for new and reset sessions.
func WithIDGenerator(gen func() string) Option {
	return func(s *Session) { s.newID = gen }
}

func defaultID() string { return uuid.New().String() }

// #endregion options

// #region record
// RecordVersion is the current persisted layout version.
const RecordVersion = 1

// Record is the persisted form of a session. Every timestamp is epoch
// milliseconds so encode and decode are exact inverses.
type Record struct {
	Version     int                  `json:"version"`
	ID          string               `json:"id"`
	Lens        journey.Lens         `json:"lens"`
	StartedAt   journey.Millis       `json:"started_at"`
	Progress    progression.Snapshot `json:"progress"`
	Responses   []ledger.Response    `json:"responses"`
	Viewed      []string             `json:"viewed"`
	Conversions []Conversion         `json:"conversions"`
}

// #endregion record
