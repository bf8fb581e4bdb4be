package replay

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/danielpatrickdp/journey-engine/internal/logging"
	"github.com/danielpatrickdp/journey-engine/internal/scoring"
	"github.com/danielpatrickdp/journey-engine/internal/state"
)

// #region fixture-types

// Fixture is the top-level JSON structure for a replay fixture.
type Fixture struct {
	Description     string          `json:"description"`
	Config          FixtureConfig   `json:"config"`
	Steps           []Step          `json:"steps"`
	ExpectedActions []string        `json:"expected_actions,omitempty"`
	Expected        FixtureExpected `json:"expected"`
}

// FixtureConfig overrides the default replay configuration. Zero fields keep
// the default.
type FixtureConfig struct {
	Scoring FixtureScoringConfig `json:"scoring"`
	Gate    FixtureGateConfig    `json:"gate"`
	Eval    FixtureEvalConfig    `json:"eval"`
}

// FixtureScoringConfig mirrors scoring.Config with JSON tags.
type FixtureScoringConfig struct {
	AssumedContentTotal         int     `json:"assumed_content_total,omitempty"`
	EngagementSaturationSeconds float64 `json:"engagement_saturation_seconds,omitempty"`
}

// FixtureGateConfig mirrors gate.GateConfig with JSON tags.
type FixtureGateConfig struct {
	MinWeight         float64 `json:"min_weight,omitempty"`
	MaxWeight         float64 `json:"max_weight,omitempty"`
	MaxElapsedSeconds float64 `json:"max_elapsed_seconds,omitempty"`
}

// FixtureEvalConfig mirrors eval.EvalConfig with JSON tags.
type FixtureEvalConfig struct {
	ScoreTolerance float64 `json:"score_tolerance,omitempty"`
}

// FixtureExpected is the final state a replay must reach. Empty fields are
// not checked.
type FixtureExpected struct {
	Category       string           `json:"category,omitempty"`
	Scores         *scoring.Rounded `json:"scores,omitempty"`
	Coarse         *int             `json:"coarse_score,omitempty"`
	CurrentLayer   string           `json:"current_layer,omitempty"`
	CompletedCount *int             `json:"completed_count,omitempty"`
	Terminal       *bool            `json:"terminal,omitempty"`
	TopAction      string           `json:"top_action,omitempty"`
}

// #endregion fixture-types

// #region fixture-loader

// LoadFixture reads and parses a JSON fixture file.
func LoadFixture(path string) (*Fixture, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read fixture %s: %w", path, err)
	}
	var f Fixture
	if err := json.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("parse fixture %s: %w", path, err)
	}
	return &f, nil
}

// SaveFixture writes f as indented JSON.
func SaveFixture(path string, f *Fixture) error {
	data, err := json.MarshalIndent(f, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal fixture: %w", err)
	}
	if err := os.WriteFile(path, append(data, '\n'), 0o644); err != nil {
		return fmt.Errorf("write fixture %s: %w", path, err)
	}
	return nil
}

// ToReplayConfig overlays the fixture's non-zero values on the defaults.
func (fc *FixtureConfig) ToReplayConfig() ReplayConfig {
	cfg := DefaultReplayConfig()
	if fc.Scoring.AssumedContentTotal > 0 {
		cfg.Session.Scoring.AssumedContentTotal = fc.Scoring.AssumedContentTotal
	}
	if fc.Scoring.EngagementSaturationSeconds > 0 {
		cfg.Session.Scoring.EngagementSaturationSeconds = fc.Scoring.EngagementSaturationSeconds
	}
	if fc.Gate.MinWeight > 0 {
		cfg.Session.Gate.MinWeight = fc.Gate.MinWeight
	}
	if fc.Gate.MaxWeight > 0 {
		cfg.Session.Gate.MaxWeight = fc.Gate.MaxWeight
	}
	if fc.Gate.MaxElapsedSeconds > 0 {
		cfg.Session.Gate.MaxElapsedSeconds = fc.Gate.MaxElapsedSeconds
	}
	if fc.Eval.ScoreTolerance > 0 {
		cfg.Eval.ScoreTolerance = fc.Eval.ScoreTolerance
	}
	return cfg
}

// StepsFromEvents converts event log rows, oldest first, into replay steps.
// Rows with an empty detail keep a nil Detail.
func StepsFromEvents(events []state.EventRecord) []Step {
	steps := make([]Step, 0, len(events))
	for _, e := range events {
		step := Step{Kind: logging.EventKind(e.Kind)}
		if e.DetailJSON != "" {
			step.Detail = json.RawMessage(e.DetailJSON)
		}
		steps = append(steps, step)
	}
	return steps
}

// #endregion fixture-loader

// #region check

// Check compares a replay summary against the expected final state and
// returns one line per mismatch.
func (e FixtureExpected) Check(sum ReplaySummary) []string {
	var diffs []string
	v := sum.Final
	if e.Category != "" && e.Category != v.Category.String() {
		diffs = append(diffs, fmt.Sprintf("category: expected %s, got %s", e.Category, v.Category))
	}
	if e.Scores != nil && *e.Scores != v.Scores {
		diffs = append(diffs, fmt.Sprintf("scores: expected %+v, got %+v", *e.Scores, v.Scores))
	}
	if e.Coarse != nil && *e.Coarse != v.Coarse {
		diffs = append(diffs, fmt.Sprintf("coarse_score: expected %d, got %d", *e.Coarse, v.Coarse))
	}
	if e.CurrentLayer != "" && e.CurrentLayer != v.CurrentLayer.String() {
		diffs = append(diffs, fmt.Sprintf("current_layer: expected %s, got %s", e.CurrentLayer, v.CurrentLayer))
	}
	if e.CompletedCount != nil && *e.CompletedCount != len(v.CompletedLayers) {
		diffs = append(diffs, fmt.Sprintf("completed_count: expected %d, got %d", *e.CompletedCount, len(v.CompletedLayers)))
	}
	if e.Terminal != nil && *e.Terminal != v.Terminal {
		diffs = append(diffs, fmt.Sprintf("terminal: expected %t, got %t", *e.Terminal, v.Terminal))
	}
	if e.TopAction != "" {
		got := ""
		if len(v.Actions) > 0 {
			got = string(v.Actions[0].ID)
		}
		if got != e.TopAction {
			diffs = append(diffs, fmt.Sprintf("top_action: expected %s, got %s", e.TopAction, got))
		}
	}
	return diffs
}

// #endregion check
