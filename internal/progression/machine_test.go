package progression

import (
	"testing"

	"github.com/danielpatrickdp/journey-engine/internal/journey"
)

func TestInitialState(t *testing.T) {
	m := New()
	if m.Current() != journey.FirstLayer() {
		t.Fatalf("expected %s, got %s", journey.FirstLayer(), m.Current())
	}
	if m.CompletedCount() != 0 {
		t.Fatalf("expected no completed layers, got %d", m.CompletedCount())
	}
	if m.Terminal() {
		t.Fatal("fresh machine must not be terminal")
	}

	var zero Machine
	if zero.Current() != journey.FirstLayer() {
		t.Fatal("zero value should equal initial state")
	}
}

func TestAdvanceReachesLastLayerMonotonically(t *testing.T) {
	m := New()
	prev := m.Current()
	for i := 0; i < journey.LayerCount-1; i++ {
		if !m.Advance() {
			t.Fatalf("advance %d should move", i)
		}
		if m.Current() <= prev {
			t.Fatalf("layer regressed from %s to %s", prev, m.Current())
		}
		prev = m.Current()
	}
	if m.Current() != journey.LastLayer() {
		t.Fatalf("expected last layer after %d advances, got %s", journey.LayerCount-1, m.Current())
	}
	if m.Terminal() {
		t.Fatal("last layer is not completed until advanced past")
	}

	if m.Advance() {
		t.Fatal("advance on last layer must not move")
	}
	if !m.Terminal() {
		t.Fatal("expected terminal after advancing the last layer")
	}
	for i := 0; i < 3; i++ {
		m.Advance()
	}
	if m.Current() != journey.LastLayer() || m.CompletedCount() != journey.LayerCount {
		t.Fatalf("terminal state changed: current=%s completed=%d", m.Current(), m.CompletedCount())
	}
}

func TestAdvanceResetsQuestionIndex(t *testing.T) {
	m := New()
	m.Step()
	m.Step()
	if m.QuestionIndex() != 2 {
		t.Fatalf("expected index 2, got %d", m.QuestionIndex())
	}
	m.Advance()
	if m.QuestionIndex() != 0 {
		t.Fatalf("expected index reset to 0, got %d", m.QuestionIndex())
	}
}

func TestCompletedInJourneyOrder(t *testing.T) {
	m := New()
	m.Advance()
	m.Advance()
	got := m.Completed()
	want := []journey.Layer{journey.LayerValuesCheck, journey.LayerDataExposure}
	if len(got) != len(want) {
		t.Fatalf("expected %v, got %v", want, got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("expected %v, got %v", want, got)
		}
	}
	if !m.IsCompleted(journey.LayerValuesCheck) || m.IsCompleted(journey.LayerCommitment) {
		t.Fatal("IsCompleted mismatch")
	}
}

func TestSnapshotRestoreRoundTrip(t *testing.T) {
	m := New()
	m.Advance()
	m.Step()

	back, err := Restore(m.Snapshot())
	if err != nil {
		t.Fatalf("Restore: %v", err)
	}
	if back != m {
		t.Fatalf("expected %+v, got %+v", m, back)
	}
}

func TestRestoreRejectsInconsistentSnapshots(t *testing.T) {
	cases := map[string]Snapshot{
		"invalid current":    {Current: journey.Layer(42)},
		"negative index":     {Current: journey.LayerValuesCheck, QuestionIndex: -1},
		"completed ahead":    {Current: journey.LayerValuesCheck, Completed: []journey.Layer{journey.LayerDataExposure}},
		"gap before current": {Current: journey.LayerObjectionHandling, Completed: []journey.Layer{journey.LayerValuesCheck}},
		"invalid completed":  {Current: journey.LayerCommitment, Completed: []journey.Layer{journey.Layer(9)}},
	}
	for name, snap := range cases {
		if _, err := Restore(snap); err == nil {
			t.Errorf("%s: expected error", name)
		}
	}
}
