package engine

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/danielpatrickdp/journey-engine/internal/actions"
	"github.com/danielpatrickdp/journey-engine/internal/classify"
	"github.com/danielpatrickdp/journey-engine/internal/journey"
	"github.com/danielpatrickdp/journey-engine/internal/logging"
	"github.com/danielpatrickdp/journey-engine/internal/metrics"
	"github.com/danielpatrickdp/journey-engine/internal/scoring"
	"github.com/danielpatrickdp/journey-engine/internal/session"
	"github.com/danielpatrickdp/journey-engine/internal/state"
)

// #region ports

// Writer accepts persistence work without blocking. *persist.Writer
// implements it.
type Writer interface {
	EnqueueSession(row state.SessionRow) error
	EnqueueEvent(entry logging.EventEntry) error
}

// Loader reads a stored session row. *state.Store implements it.
type Loader interface {
	LoadSession(ctx context.Context, key string) (state.SessionRow, error)
}

// #endregion ports

// #region deps

// Deps carries the collaborators shared by every journey. Zero values are
// usable: no persistence, a no-op logger and no metrics.
type Deps struct {
	Config  session.Config
	Writer  Writer
	Logger  *zap.Logger
	Metrics *metrics.Metrics
	Now     func() time.Time

	// SessionOptions are passed to every session the engine creates.
	SessionOptions []session.Option
}

func (d Deps) withDefaults() Deps {
	if d.Config == (session.Config{}) {
		d.Config = session.DefaultConfig()
	}
	if d.Logger == nil {
		d.Logger = zap.NewNop()
	}
	if d.Now == nil {
		d.Now = time.Now
	}
	return d
}

// #endregion deps

// #region view

// View is everything a page needs to render the visitor's position.
type View struct {
	Key             string            `json:"key"`
	SessionID       string            `json:"session_id"`
	Lens            journey.Lens      `json:"lens"`
	Scores          scoring.Rounded   `json:"scores"`
	Coarse          int               `json:"coarse_score"`
	CurrentLayer    journey.Layer     `json:"current_layer"`
	CompletedLayers []journey.Layer   `json:"completed_layers"`
	QuestionIndex   int               `json:"question_index"`
	Terminal        bool              `json:"terminal"`
	Responses       int               `json:"responses"`
	Viewed          int               `json:"viewed"`
	Conversions     int               `json:"conversions"`
	Category        classify.Category `json:"category"`
	Actions         []actions.Ranked  `json:"actions"`
	Narrative       string            `json:"narrative"`
}

// #endregion view

// #region event-details

type lensDetail struct {
	Lens string `json:"lens"`
}

type viewedDetail struct {
	ContentID string `json:"content_id"`
}

type advanceDetail struct {
	From  string `json:"from"`
	To    string `json:"to"`
	Moved bool   `json:"moved"`
}

type resetDetail struct {
	PreviousSessionID string `json:"previous_session_id"`
}

// #endregion event-details
