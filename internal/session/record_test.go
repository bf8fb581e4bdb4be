package session

import (
	"encoding/json"
	"errors"
	"testing"

	"github.com/danielpatrickdp/journey-engine/internal/journey"
	"github.com/google/go-cmp/cmp"
)

func populated(t *testing.T) *Session {
	t.Helper()
	s := newTestSession(t)
	s.SetLens(journey.LensFarLeft)
	mustRecord(t, s, "v1", journey.AnswerYes, 10, 0.8, journey.LayerValuesCheck)
	mustRecord(t, s, "v2", journey.AnswerNo, 25, 0.3, journey.LayerValuesCheck)
	s.Advance()
	s.MarkViewed("chart-unemployment")
	s.MarkViewed("chart-housing")
	mustRecord(t, s, "d1", journey.AnswerAgree, 31.5, 0.9, journey.LayerDataExposure)
	s.RecordConversion("signup", map[string]string{"list": "weekly"})
	s.RecordConversion("share", nil)
	return s
}

func TestEncodeDecodeRoundTrip(t *testing.T) {
	s := populated(t)

	data, err := Encode(s)
	if err != nil {
		t.Fatalf("Encode: %v", err)
	}
	back, err := Decode(data, DefaultConfig())
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}

	if diff := cmp.Diff(s.Record(), back.Record()); diff != "" {
		t.Fatalf("record mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff(s.Scores(), back.Scores()); diff != "" {
		t.Fatalf("scores mismatch (-want +got):\n%s", diff)
	}
	if back.CurrentLayer() != s.CurrentLayer() || back.CompletedCount() != s.CompletedCount() {
		t.Fatal("layer state mismatch")
	}
	if back.StartedAt() != s.StartedAt() {
		t.Fatalf("started_at mismatch: %d vs %d", s.StartedAt(), back.StartedAt())
	}
}

func TestEncodeUsesTextualEnumsAndNumericMillis(t *testing.T) {
	s := populated(t)
	data, err := Encode(s)
	if err != nil {
		t.Fatalf("Encode: %v", err)
	}
	var raw map[string]any
	if err := json.Unmarshal(data, &raw); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if raw["lens"] != "far-left" {
		t.Errorf("expected lens far-left, got %v", raw["lens"])
	}
	first := raw["responses"].([]any)[0].(map[string]any)
	if first["layer"] != "values-check" || first["answer"] != "yes" {
		t.Errorf("unexpected response encoding %v", first)
	}
	at, ok := first["at"].(float64)
	if !ok {
		t.Fatalf("expected numeric millis, got %T", first["at"])
	}
	if want := s.Record().Responses[0].At; journey.Millis(at) != want {
		t.Errorf("expected at %d, got %v", want, at)
	}
}

func TestEmptySessionRoundTrip(t *testing.T) {
	s := newTestSession(t)
	data, err := Encode(s)
	if err != nil {
		t.Fatalf("Encode: %v", err)
	}
	back, err := Decode(data, DefaultConfig())
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if back.Lens() != journey.LensUnset || back.ResponseCount() != 0 {
		t.Fatal("expected empty session")
	}
}

func TestDecodeRejectsBadRecords(t *testing.T) {
	cases := map[string]string{
		"not json":       `{`,
		"wrong version":  `{"version":9,"id":"x","lens":"left","progress":{"current_layer":"values-check"}}`,
		"missing id":     `{"version":1,"id":"","lens":"left","progress":{"current_layer":"values-check"}}`,
		"unknown lens":   `{"version":1,"id":"x","lens":"centre","progress":{"current_layer":"values-check"}}`,
		"bad progress":   `{"version":1,"id":"x","lens":"left","progress":{"current_layer":"commitment","completed_layers":[]}}`,
		"unknown answer": `{"version":1,"id":"x","lens":"left","progress":{"current_layer":"values-check"},"responses":[{"question_id":"q","answer":"maybe","layer":"values-check","at":"1"}]}`,
	}
	for name, payload := range cases {
		_, err := Decode([]byte(payload), DefaultConfig())
		if !errors.Is(err, ErrInvalidRecord) {
			t.Errorf("%s: expected ErrInvalidRecord, got %v", name, err)
		}
	}
}

func TestFromRecordDropsDuplicateViews(t *testing.T) {
	rec := newTestSession(t).Record()
	rec.Viewed = []string{"a", "a", "", "b"}
	s, err := FromRecord(rec, DefaultConfig())
	if err != nil {
		t.Fatalf("FromRecord: %v", err)
	}
	if diff := cmp.Diff([]string{"a", "b"}, s.Viewed()); diff != "" {
		t.Fatalf("viewed mismatch:\n%s", diff)
	}
}

func TestEmptyConversionDetailRoundTrips(t *testing.T) {
	s := newTestSession(t)
	c, err := s.RecordConversion("donate", map[string]string{})
	if err != nil {
		t.Fatalf("RecordConversion: %v", err)
	}
	if c.Detail != nil {
		t.Fatalf("expected empty detail normalised to nil, got %#v", c.Detail)
	}

	data, err := Encode(s)
	if err != nil {
		t.Fatalf("Encode: %v", err)
	}
	back, err := Decode(data, DefaultConfig())
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if diff := cmp.Diff(s.Conversions(), back.Conversions()); diff != "" {
		t.Fatalf("conversions mismatch (-want +got):\n%s", diff)
	}
}
