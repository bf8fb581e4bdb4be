package replay

import (
	"encoding/json"
	"strings"
	"testing"

	"github.com/danielpatrickdp/journey-engine/internal/logging"
)

func step(t *testing.T, kind logging.EventKind, detail any) Step {
	t.Helper()
	if detail == nil {
		return Step{Kind: kind}
	}
	b, err := json.Marshal(detail)
	if err != nil {
		t.Fatalf("marshal detail: %v", err)
	}
	return Step{Kind: kind, Detail: b}
}

func TestReplayResetStartsOver(t *testing.T) {
	steps := []Step{
		step(t, logging.EventLensSet, map[string]string{"lens": "left"}),
		step(t, logging.EventResponse, logging.ResponseDetail{QuestionID: "q1", Answer: "yes", ElapsedSeconds: 5, Weight: 1, Layer: "values-check"}),
		step(t, logging.EventReset, nil),
		step(t, logging.EventLensSet, map[string]string{"lens": "right"}),
	}
	results, final := Replay(steps, DefaultReplayConfig())
	for i, r := range results {
		if r.Action != ActionApplied {
			t.Fatalf("step %d: expected applied, got %s (%s)", i, r.Action, r.Reason)
		}
	}
	if final.ResponseCount() != 0 {
		t.Fatalf("expected empty ledger after reset, got %d", final.ResponseCount())
	}
	if final.Lens().String() != "right" {
		t.Fatalf("expected lens right after reset, got %s", final.Lens())
	}
}

func TestReplayUndecodableSteps(t *testing.T) {
	steps := []Step{
		{Kind: logging.EventLensSet},
		{Kind: logging.EventViewed, Detail: json.RawMessage(`{"content_id":`)},
		{Kind: "teleport", Detail: json.RawMessage(`{}`)},
		step(t, logging.EventLensSet, map[string]string{"lens": "centre"}),
	}
	results, _ := Replay(steps, DefaultReplayConfig())
	want := []string{ActionError, ActionError, ActionError, ActionRejected}
	for i, r := range results {
		if r.Action != want[i] {
			t.Errorf("step %d: expected %s, got %s (%s)", i, want[i], r.Action, r.Reason)
		}
		if r.Eval != nil {
			t.Errorf("step %d: expected no eval for a step that did not apply", i)
		}
	}
}

func TestSummarizeCounts(t *testing.T) {
	steps := []Step{
		step(t, logging.EventLensSet, map[string]string{"lens": "far-left"}),
		step(t, logging.EventLensSet, map[string]string{"lens": "far-left"}),
		step(t, logging.EventViewed, map[string]string{"content_id": ""}),
		step(t, logging.EventAdvance, nil),
		{Kind: "bogus"},
	}
	results, final := Replay(steps, DefaultReplayConfig())
	sum := Summarize(results, final)

	if sum.TotalSteps != 5 || sum.Applied != 2 || sum.Ignored != 1 || sum.Rejected != 1 || sum.Errors != 1 {
		t.Fatalf("unexpected summary: %+v", sum)
	}
	if sum.EvalFailed != 0 {
		t.Fatalf("expected no eval failures, got %d", sum.EvalFailed)
	}
	if !strings.Contains(Describe(sum), "applied=2") {
		t.Fatalf("unexpected description %q", Describe(sum))
	}
}

func TestReplayNonFiniteRejection(t *testing.T) {
	steps := []Step{
		{Kind: logging.EventRejected, Detail: json.RawMessage(
			`{"question_id":"q1","answer":"yes","elapsed_seconds":"NaN","weight":1,"layer":"values-check","gate_action":"reject"}`)},
		{Kind: logging.EventRejected, Detail: json.RawMessage(
			`{"question_id":"q2","answer":"yes","elapsed_seconds":3,"weight":"+Inf","layer":"values-check","gate_action":"reject"}`)},
	}
	results, final := Replay(steps, DefaultReplayConfig())
	for i, r := range results {
		if r.Action != ActionRejected {
			t.Errorf("step %d: expected rejected, got %s (%s)", i, r.Action, r.Reason)
		}
	}
	if final.ResponseCount() != 0 {
		t.Fatalf("expected empty ledger, got %d", final.ResponseCount())
	}
}
