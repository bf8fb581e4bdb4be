package eval

import (
	"testing"

	"github.com/danielpatrickdp/journey-engine/internal/journey"
	"github.com/danielpatrickdp/journey-engine/internal/session"
)

func TestEvalPassesFreshSession(t *testing.T) {
	h := NewEvalHarness(DefaultEvalConfig())
	result := h.Run(session.New(session.DefaultConfig()))

	if !result.Passed {
		t.Fatalf("expected pass, got: %s", result.Reason)
	}
	if result.Reason != "all checks passed" {
		t.Fatalf("unexpected reason %q", result.Reason)
	}
	// 4 scores + drift + layers + responses
	if len(result.Metrics) != 7 {
		t.Fatalf("expected 7 metrics, got %d", len(result.Metrics))
	}
}

func TestEvalPassesAfterJourney(t *testing.T) {
	s := session.New(session.DefaultConfig())
	s.SetLens(journey.LensRight)
	for _, l := range journey.Layers() {
		if err := s.RecordResponse("q-"+l.String(), journey.AnswerAgree, 14, 0.6, l); err != nil {
			t.Fatalf("RecordResponse: %v", err)
		}
		s.MarkViewed("item-" + l.String())
		s.Advance()
	}

	result := NewEvalHarness(DefaultEvalConfig()).Run(s)
	if !result.Passed {
		t.Fatalf("expected pass, got: %s", result.Reason)
	}
	for _, m := range result.Metrics {
		if !m.Pass {
			t.Errorf("metric %s failed with %v", m.Name, m.Value)
		}
	}
}

func TestEvalPassesRestoredSession(t *testing.T) {
	rec := session.New(session.DefaultConfig()).Record()
	rec.Viewed = []string{"a", "b", "c"}

	s, err := session.FromRecord(rec, session.DefaultConfig())
	if err != nil {
		t.Fatalf("FromRecord: %v", err)
	}
	if r := NewEvalHarness(DefaultEvalConfig()).Run(s); !r.Passed {
		t.Fatalf("restored session should pass: %s", r.Reason)
	}
}

func TestMaxDrift(t *testing.T) {
	s := session.New(session.DefaultConfig())
	a := s.Scores()
	b := a
	b.EngagementDepth += 2.5
	b.DataAwareness -= 1
	if d := maxDrift(a, b); d != 2.5 {
		t.Fatalf("expected 2.5, got %v", d)
	}
}
