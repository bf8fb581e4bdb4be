// Package replay re-applies recorded journey events to a fresh session and
// audits the result after every step.
package replay

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/danielpatrickdp/journey-engine/internal/engine"
	"github.com/danielpatrickdp/journey-engine/internal/eval"
	"github.com/danielpatrickdp/journey-engine/internal/journey"
	"github.com/danielpatrickdp/journey-engine/internal/logging"
	"github.com/danielpatrickdp/journey-engine/internal/session"
)

// Step actions.
const (
	ActionApplied    = "applied"
	ActionRejected   = "rejected"
	ActionIgnored    = "ignored"
	ActionEvalFailed = "eval_failed"
	ActionError      = "error"
)

// #region types

// Step is one recorded event, shaped like an event_log row.
type Step struct {
	Kind   logging.EventKind `json:"kind"`
	Detail json.RawMessage   `json:"detail,omitempty"`
}

// ReplayConfig bundles the session and eval configs for a replay run.
type ReplayConfig struct {
	Session session.Config
	Eval    eval.EvalConfig
	Options []session.Option
}

// DefaultReplayConfig returns production session constants and an exact
// cache audit.
func DefaultReplayConfig() ReplayConfig {
	return ReplayConfig{
		Session: session.DefaultConfig(),
		Eval:    eval.DefaultEvalConfig(),
	}
}

// StepResult is the outcome of one replayed step.
type StepResult struct {
	Index  int
	Kind   logging.EventKind
	Action string
	Reason string

	// Eval is nil for rejected, ignored and undecodable steps.
	Eval *eval.EvalResult
}

// ReplaySummary aggregates a replay run.
type ReplaySummary struct {
	TotalSteps int
	Applied    int
	Rejected   int
	Ignored    int
	EvalFailed int
	Errors     int
	Final      engine.View
}

// #endregion types

// #region replay

// Replay applies steps in order to a new session and returns one result per
// step plus the final session.
func Replay(steps []Step, config ReplayConfig) ([]StepResult, *session.Session) {
	s := session.New(config.Session, config.Options...)
	harness := eval.NewEvalHarness(config.Eval)
	results := make([]StepResult, 0, len(steps))

	for i, step := range steps {
		res := StepResult{Index: i, Kind: step.Kind}
		changed, err := apply(s, step)
		switch {
		case err != nil && isRejection(err):
			res.Action = ActionRejected
			res.Reason = err.Error()
		case err != nil:
			res.Action = ActionError
			res.Reason = err.Error()
		case !changed:
			res.Action = ActionIgnored
		default:
			ev := harness.Run(s)
			res.Eval = &ev
			res.Reason = ev.Reason
			res.Action = ActionApplied
			if !ev.Passed {
				res.Action = ActionEvalFailed
			}
		}
		results = append(results, res)
	}
	return results, s
}

// Summarize computes aggregate stats from replay results.
func Summarize(results []StepResult, final *session.Session) ReplaySummary {
	sum := ReplaySummary{
		TotalSteps: len(results),
		Final:      engine.ViewOf("replay", final),
	}
	for _, r := range results {
		switch r.Action {
		case ActionApplied:
			sum.Applied++
		case ActionRejected:
			sum.Rejected++
		case ActionIgnored:
			sum.Ignored++
		case ActionEvalFailed:
			sum.EvalFailed++
		case ActionError:
			sum.Errors++
		}
	}
	return sum
}

// #endregion replay

// #region apply

type lensDetail struct {
	Lens string `json:"lens"`
}

type viewedDetail struct {
	ContentID string `json:"content_id"`
}

// apply decodes one step and runs it. It reports whether the session
// changed.
func apply(s *session.Session, step Step) (bool, error) {
	switch step.Kind {
	case logging.EventLensSet:
		var d lensDetail
		if err := decode(step, &d); err != nil {
			return false, err
		}
		l, err := journey.ParseLens(d.Lens)
		if err != nil {
			return false, fmt.Errorf("%v: %w", err, session.ErrInvalidLens)
		}
		before := s.Lens()
		if err := s.SetLens(l); err != nil {
			return false, err
		}
		return before != l, nil

	case logging.EventResponse, logging.EventRejected:
		var d logging.ResponseDetail
		if err := decode(step, &d); err != nil {
			return false, err
		}
		// Unparseable values are passed through as invalid so the gate
		// rejects them exactly as it did live.
		answer, err := journey.ParseAnswer(d.Answer)
		if err != nil {
			answer = journey.AnswerInvalid
		}
		layer, err := journey.ParseLayer(d.Layer)
		if err != nil {
			layer = journey.Layer(journey.LayerCount)
		}
		if err := s.RecordResponse(d.QuestionID, answer, d.ElapsedSeconds, d.Weight, layer); err != nil {
			return false, err
		}
		return true, nil

	case logging.EventViewed:
		var d viewedDetail
		if err := decode(step, &d); err != nil {
			return false, err
		}
		return s.MarkViewed(d.ContentID)

	case logging.EventAdvance:
		before := s.CompletedCount()
		moved := s.Advance()
		return moved || s.CompletedCount() != before, nil

	case logging.EventConversion:
		var c session.Conversion
		if err := decode(step, &c); err != nil {
			return false, err
		}
		if _, err := s.RecordConversion(c.Kind, c.Detail); err != nil {
			return false, err
		}
		return true, nil

	case logging.EventReset:
		s.Reset()
		return true, nil
	}
	return false, fmt.Errorf("unknown event kind %q", step.Kind)
}

func decode(step Step, v any) error {
	if len(step.Detail) == 0 {
		return fmt.Errorf("%s: missing detail", step.Kind)
	}
	if err := json.Unmarshal(step.Detail, v); err != nil {
		return fmt.Errorf("%s detail: %w", step.Kind, err)
	}
	return nil
}

// isRejection reports whether err is an input rejection the live session
// would also have returned.
func isRejection(err error) bool {
	for _, sentinel := range []error{
		session.ErrInvalidResponse,
		session.ErrInvalidLens,
		session.ErrLensLocked,
		session.ErrEmptyContentID,
		session.ErrEmptyConversionKind,
	} {
		if errors.Is(err, sentinel) {
			return true
		}
	}
	return false
}

// #endregion apply

// #region helpers

// Describe renders a one-line summary for CLI output.
func Describe(sum ReplaySummary) string {
	var b strings.Builder
	fmt.Fprintf(&b, "steps=%d applied=%d rejected=%d ignored=%d eval_failed=%d errors=%d",
		sum.TotalSteps, sum.Applied, sum.Rejected, sum.Ignored, sum.EvalFailed, sum.Errors)
	fmt.Fprintf(&b, " category=%s layer=%s completed=%d", sum.Final.Category, sum.Final.CurrentLayer, len(sum.Final.CompletedLayers))
	return b.String()
}

// #endregion helpers
