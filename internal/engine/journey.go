// Package engine wires a session to persistence, logging and the derived
// outputs a page renders: category, ranked actions and narrative.
package engine

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"

	"go.uber.org/zap"

	"github.com/danielpatrickdp/journey-engine/internal/actions"
	"github.com/danielpatrickdp/journey-engine/internal/classify"
	"github.com/danielpatrickdp/journey-engine/internal/eval"
	"github.com/danielpatrickdp/journey-engine/internal/journey"
	"github.com/danielpatrickdp/journey-engine/internal/logging"
	"github.com/danielpatrickdp/journey-engine/internal/narrative"
	"github.com/danielpatrickdp/journey-engine/internal/session"
	"github.com/danielpatrickdp/journey-engine/internal/state"
)

// #region journey

// Journey is one visitor's session behind a storage key. Mutations run
// synchronously under the journey's lock; persistence is handed to the
// Writer and never fails a mutation.
type Journey struct {
	key  string
	deps Deps

	mu   sync.Mutex
	sess *session.Session
}

// New starts a fresh journey under key.
func New(key string, deps Deps) *Journey {
	deps = deps.withDefaults()
	return &Journey{
		key:  key,
		deps: deps,
		sess: session.New(deps.Config, deps.SessionOptions...),
	}
}

// Open restores the journey stored under key. A missing row starts a fresh
// journey; an undecodable one is logged and replaced by a fresh journey.
// Only storage failures are returned.
func Open(ctx context.Context, loader Loader, key string, deps Deps) (*Journey, error) {
	deps = deps.withDefaults()
	if loader == nil {
		return New(key, deps), nil
	}
	row, err := loader.LoadSession(ctx, key)
	if errors.Is(err, state.ErrNotFound) {
		return New(key, deps), nil
	}
	if err != nil {
		return nil, fmt.Errorf("open journey %s: %w", key, err)
	}
	sess, err := session.Decode(row.Payload, deps.Config, deps.SessionOptions...)
	if err != nil {
		deps.Logger.Warn("discarding unreadable session record",
			zap.String("key", key),
			zap.String("session_id", row.SessionID),
			zap.Error(err))
		return New(key, deps), nil
	}
	return &Journey{key: key, deps: deps, sess: sess}, nil
}

// Key returns the storage key.
func (j *Journey) Key() string { return j.key }

// #endregion journey

// #region mutations

// SetLens fixes the visitor's lens.
func (j *Journey) SetLens(l journey.Lens) error {
	j.mu.Lock()
	defer j.mu.Unlock()

	before := j.sess.Lens()
	if err := j.sess.SetLens(l); err != nil {
		return err
	}
	if before == l {
		return nil
	}
	j.emit(logging.EventLensSet, lensDetail{Lens: l.String()})
	j.save()
	return nil
}

// RecordResponse submits an answer. Rejected input is logged as a
// response_rejected event and returned as an error wrapping
// session.ErrInvalidResponse.
func (j *Journey) RecordResponse(questionID string, answer journey.Answer, elapsedSeconds, weight float64, layer journey.Layer) error {
	j.mu.Lock()
	defer j.mu.Unlock()

	detail := logging.ResponseDetail{
		QuestionID:     questionID,
		Answer:         answer.String(),
		ElapsedSeconds: elapsedSeconds,
		Weight:         weight,
		Layer:          layer.String(),
		GateAction:     "accept",
	}
	if err := j.sess.RecordResponse(questionID, answer, elapsedSeconds, weight, layer); err != nil {
		detail.GateAction = "reject"
		detail.GateReason = err.Error()
		j.deps.Metrics.Rejected()
		j.emit(logging.EventRejected, detail)
		j.deps.Logger.Debug("response rejected",
			zap.String("session_id", j.sess.ID()),
			zap.String("question_id", questionID),
			zap.Error(err))
		return err
	}
	j.emit(logging.EventResponse, detail)
	j.save()
	j.audit()
	return nil
}

// MarkViewed records a content view. Repeat views are ignored.
func (j *Journey) MarkViewed(contentID string) (bool, error) {
	j.mu.Lock()
	defer j.mu.Unlock()

	added, err := j.sess.MarkViewed(contentID)
	if err != nil || !added {
		return added, err
	}
	j.emit(logging.EventViewed, viewedDetail{ContentID: contentID})
	j.save()
	return true, nil
}

// Advance completes the current layer. It reports whether the current layer
// moved.
func (j *Journey) Advance() bool {
	j.mu.Lock()
	defer j.mu.Unlock()

	from := j.sess.CurrentLayer()
	moved := j.sess.Advance()
	j.emit(logging.EventAdvance, advanceDetail{
		From:  from.String(),
		To:    j.sess.CurrentLayer().String(),
		Moved: moved,
	})
	j.save()
	return moved
}

// RecordConversion logs a terminal engagement.
func (j *Journey) RecordConversion(kind string, detail map[string]string) (session.Conversion, error) {
	j.mu.Lock()
	defer j.mu.Unlock()

	c, err := j.sess.RecordConversion(kind, detail)
	if err != nil {
		return c, err
	}
	j.emit(logging.EventConversion, c)
	j.save()
	return c, nil
}

// Reset clears the journey and starts a new session under the same key.
func (j *Journey) Reset() {
	j.mu.Lock()
	defer j.mu.Unlock()

	j.emit(logging.EventReset, resetDetail{PreviousSessionID: j.sess.ID()})
	j.sess.Reset()
	j.save()
}

// #endregion mutations

// #region outputs

// View derives the rendered outputs from the current session.
func (j *Journey) View() View {
	j.mu.Lock()
	defer j.mu.Unlock()
	return ViewOf(j.key, j.sess)
}

// Record returns the persisted form of the session.
func (j *Journey) Record() session.Record {
	j.mu.Lock()
	defer j.mu.Unlock()
	return j.sess.Record()
}

// Audit runs the invariant checks against the current session.
func (j *Journey) Audit() eval.EvalResult {
	j.mu.Lock()
	defer j.mu.Unlock()
	return eval.NewEvalHarness(eval.DefaultEvalConfig()).Run(j.sess)
}

// Flush re-enqueues the current session row.
func (j *Journey) Flush() {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.save()
}

// ViewOf derives the rendered outputs of s.
func ViewOf(key string, s *session.Session) View {
	completed := s.CompletedLayers()
	if completed == nil {
		completed = []journey.Layer{}
	}
	return View{
		Key:             key,
		SessionID:       s.ID(),
		Lens:            s.Lens(),
		Scores:          s.Scores().Rounded(),
		Coarse:          s.Coarse(),
		CurrentLayer:    s.CurrentLayer(),
		CompletedLayers: completed,
		QuestionIndex:   s.QuestionIndex(),
		Terminal:        s.Terminal(),
		Responses:       s.ResponseCount(),
		Viewed:          len(s.Viewed()),
		Conversions:     len(s.Conversions()),
		Category:        classify.ForSession(s),
		Actions:         actions.Prioritize(s),
		Narrative:       narrative.Generate(s),
	}
}

// #endregion outputs

// #region persistence

// RowOf builds the stored row for a session.
func RowOf(key string, s *session.Session, at journey.Millis) (state.SessionRow, error) {
	payload, err := session.Encode(s)
	if err != nil {
		return state.SessionRow{}, err
	}
	return state.SessionRow{
		Key:            key,
		SessionID:      s.ID(),
		Lens:           s.Lens().String(),
		CurrentLayer:   s.CurrentLayer().String(),
		CompletedCount: s.CompletedCount(),
		Responses:      s.ResponseCount(),
		Payload:        payload,
		UpdatedAt:      at.Time(),
	}, nil
}

func (j *Journey) save() {
	if j.deps.Writer == nil {
		return
	}
	row, err := RowOf(j.key, j.sess, journey.MillisOf(j.deps.Now()))
	if err != nil {
		j.deps.Logger.Error("encode session", zap.String("key", j.key), zap.Error(err))
		return
	}
	if err := j.deps.Writer.EnqueueSession(row); err != nil {
		j.deps.Logger.Warn("enqueue session row", zap.String("key", j.key), zap.Error(err))
	}
}

func (j *Journey) emit(kind logging.EventKind, detail any) {
	j.deps.Metrics.Event(string(kind))
	if j.deps.Writer == nil {
		return
	}
	body, err := json.Marshal(detail)
	if err != nil {
		j.deps.Logger.Error("encode event detail", zap.String("kind", string(kind)), zap.Error(err))
		return
	}
	entry := logging.EventEntry{
		SessionID:  j.sess.ID(),
		Kind:       kind,
		DetailJSON: string(body),
		CreatedAt:  j.deps.Now().UTC(),
	}
	// Drops are already logged and counted by the writer.
	_ = j.deps.Writer.EnqueueEvent(entry)
}

// audit logs invariant failures at debug level.
func (j *Journey) audit() {
	if !j.deps.Logger.Core().Enabled(zap.DebugLevel) {
		return
	}
	res := eval.NewEvalHarness(eval.DefaultEvalConfig()).Run(j.sess)
	if !res.Passed {
		j.deps.Logger.Debug("session audit failed",
			zap.String("session_id", j.sess.ID()),
			zap.String("reason", res.Reason))
	}
}

// #endregion persistence
