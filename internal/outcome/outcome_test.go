package outcome

import (
	"encoding/json"
	"testing"

	"github.com/danielpatrickdp/journey-engine/internal/engine"
	"github.com/danielpatrickdp/journey-engine/internal/journey"
)

func sampleView(t *testing.T) engine.View {
	t.Helper()
	j := engine.New("visitor", engine.Deps{})
	if err := j.SetLens(journey.LensRight); err != nil {
		t.Fatalf("SetLens: %v", err)
	}
	for _, q := range []string{"q1", "q2", "q3", "q4"} {
		if err := j.RecordResponse(q, journey.AnswerYes, 20, 1, journey.LayerValuesCheck); err != nil {
			t.Fatalf("RecordResponse: %v", err)
		}
	}
	j.Advance()
	return j.View()
}

func TestSummaryFields(t *testing.T) {
	v := sampleView(t)
	s, err := Summary(v)
	if err != nil {
		t.Fatalf("Summary: %v", err)
	}
	fields := s.GetFields()

	if got := fields["lens"].GetStringValue(); got != "right" {
		t.Errorf("expected lens right, got %q", got)
	}
	if got := fields["category"].GetStringValue(); got != v.Category.String() {
		t.Errorf("expected category %s, got %q", v.Category, got)
	}
	if got := fields["coarse_score"].GetNumberValue(); got != 4 {
		t.Errorf("expected coarse 4, got %v", got)
	}
	scores := fields["scores"].GetStructValue().GetFields()
	if got := scores["value_alignment"].GetNumberValue(); got != 100 {
		t.Errorf("expected value alignment 100, got %v", got)
	}
	completed := fields["completed_layers"].GetListValue().GetValues()
	if len(completed) != 1 || completed[0].GetStringValue() != "values-check" {
		t.Errorf("unexpected completed layers: %v", completed)
	}
	if got := len(fields["actions"].GetListValue().GetValues()); got != len(v.Actions) {
		t.Errorf("expected %d actions, got %d", len(v.Actions), got)
	}
}

func TestSummaryUnsetLensUsesFallback(t *testing.T) {
	v := engine.New("k", engine.Deps{}).View()
	s, err := Summary(v)
	if err != nil {
		t.Fatalf("Summary: %v", err)
	}
	if got := s.GetFields()["lens"].GetStringValue(); got != journey.FallbackLens.String() {
		t.Errorf("expected fallback lens, got %q", got)
	}
	if s.GetFields()["lens_set"].GetBoolValue() {
		t.Error("expected lens_set false")
	}
}

func TestMarshalJSON(t *testing.T) {
	b, err := MarshalJSON(sampleView(t))
	if err != nil {
		t.Fatalf("MarshalJSON: %v", err)
	}
	var out map[string]any
	if err := json.Unmarshal(b, &out); err != nil {
		t.Fatalf("output is not JSON: %v\n%s", err, b)
	}
	if out["key"] != "visitor" {
		t.Errorf("expected key visitor, got %v", out["key"])
	}
	if out["current_layer"] != "data-exposure" {
		t.Errorf("expected data-exposure, got %v", out["current_layer"])
	}
}
