package eval

import (
	"fmt"
	"math"

	"github.com/danielpatrickdp/journey-engine/internal/journey"
	"github.com/danielpatrickdp/journey-engine/internal/scoring"
	"github.com/danielpatrickdp/journey-engine/internal/session"
)

// #region eval-harness
// EvalHarness audits the derived-value and progression invariants of a
// session after mutations.
type EvalHarness struct {
	config EvalConfig
}

// NewEvalHarness creates an eval harness with the given configuration.
func NewEvalHarness(config EvalConfig) *EvalHarness {
	return &EvalHarness{config: config}
}

// Run checks the session without mutating it.
func (h *EvalHarness) Run(s *session.Session) EvalResult {
	var metrics []EvalMetric
	var failReasons []string

	check := func(name string, value float64, pass bool, reason string) {
		metrics = append(metrics, EvalMetric{Name: name, Value: value, Pass: pass})
		if !pass {
			failReasons = append(failReasons, reason)
		}
	}

	// 1. Every cached score in [0,100]
	cached := s.Scores()
	for _, m := range cached.Metrics() {
		ok := m.Value >= 0 && m.Value <= 100 && !math.IsNaN(m.Value)
		check(m.Name, m.Value, ok, fmt.Sprintf("%s %.4f outside [0,100]", m.Name, m.Value))
	}

	// 2. Cache equals a fresh recompute
	fresh := scoring.Compute(s.Responses(), len(s.Viewed()), s.Config().Scoring)
	drift := maxDrift(cached, fresh)
	check("cache_drift", drift, drift <= h.config.ScoreTolerance,
		fmt.Sprintf("score cache drifted %.6f from recompute", drift))

	// 3. Completed layers form a prefix ending at or before the current layer
	current := s.CurrentLayer()
	completed := s.CompletedLayers()
	prefixOK := true
	for i, l := range completed {
		if l != journey.Layer(i) || l > current {
			prefixOK = false
			break
		}
	}
	if current > journey.FirstLayer() && len(completed) < int(current) {
		prefixOK = false
	}
	check("completed_layers", float64(len(completed)), prefixOK,
		fmt.Sprintf("completed layers %v inconsistent with current %s", completed, current))

	// 4. Every ledger entry references a known layer and answer
	var invalid int
	for _, r := range s.Responses() {
		if !r.Layer.Valid() || !r.Answer.Valid() {
			invalid++
		}
	}
	check("invalid_responses", float64(invalid), invalid == 0,
		fmt.Sprintf("%d responses with unknown layer or answer", invalid))

	reason := "all checks passed"
	if len(failReasons) == 1 {
		reason = fmt.Sprintf("eval failed: %s", failReasons[0])
	} else if len(failReasons) > 1 {
		reason = fmt.Sprintf("eval failed: %d checks: %s", len(failReasons), failReasons[0])
	}

	return EvalResult{
		Passed:  len(failReasons) == 0,
		Metrics: metrics,
		Reason:  reason,
	}
}

// #endregion eval-harness

// #region helpers
func maxDrift(a, b scoring.Vector) float64 {
	am, bm := a.Metrics(), b.Metrics()
	var d float64
	for i := range am {
		d = math.Max(d, math.Abs(am[i].Value-bm[i].Value))
	}
	return d
}

// #endregion helpers
