package scoring

import (
	"math"
	"testing"

	"github.com/danielpatrickdp/journey-engine/internal/journey"
	"github.com/danielpatrickdp/journey-engine/internal/ledger"
)

func approx(a, b float64) bool {
	return math.Abs(a-b) < 1e-9
}

func values(answers []journey.Answer, weights, elapsed []float64) []ledger.Response {
	out := make([]ledger.Response, len(answers))
	for i := range answers {
		out[i] = ledger.Response{
			QuestionID:     "q",
			Answer:         answers[i],
			Weight:         weights[i],
			ElapsedSeconds: elapsed[i],
			Layer:          journey.LayerValuesCheck,
		}
	}
	return out
}

func TestComputeWorkedExample(t *testing.T) {
	rs := values(
		[]journey.Answer{journey.AnswerYes, journey.AnswerYes, journey.AnswerNo},
		[]float64{0.8, 0.6, 0.5},
		[]float64{10, 40, 20},
	)
	v := Compute(rs, 0, DefaultConfig())

	if !approx(v.ValueAlignment, 200.0/3.0) {
		t.Errorf("value alignment: expected 66.67, got %v", v.ValueAlignment)
	}
	if !approx(v.PersuasionLevel, 100*1.4/1.9) {
		t.Errorf("persuasion level: expected 73.68, got %v", v.PersuasionLevel)
	}
	wantDepth := 100 * math.Log(70.0/3.0+1) / math.Log(61)
	if !approx(v.EngagementDepth, wantDepth) {
		t.Errorf("engagement depth: expected %v, got %v", wantDepth, v.EngagementDepth)
	}
	if v.DataAwareness != 0 {
		t.Errorf("data awareness: expected 0, got %v", v.DataAwareness)
	}

	r := v.Rounded()
	if r.ValueAlignment != 67 || r.PersuasionLevel != 74 || r.DataAwareness != 0 {
		t.Errorf("unexpected rounded vector %+v", r)
	}
}

func TestComputeEmpty(t *testing.T) {
	v := Compute(nil, 0, DefaultConfig())
	if v != (Vector{}) {
		t.Fatalf("expected zero vector, got %+v", v)
	}
}

func TestComputeIdempotent(t *testing.T) {
	rs := values(
		[]journey.Answer{journey.AnswerYes, journey.AnswerUnsure},
		[]float64{0.3, 0.9},
		[]float64{5, 12},
	)
	a := Compute(rs, 3, DefaultConfig())
	b := Compute(rs, 3, DefaultConfig())
	if a != b {
		t.Fatalf("recompute differs: %+v vs %+v", a, b)
	}
}

func TestComputeOrderIndependent(t *testing.T) {
	rs := values(
		[]journey.Answer{journey.AnswerYes, journey.AnswerNo, journey.AnswerUnsure, journey.AnswerAgree, journey.AnswerNo},
		[]float64{0.1, 0.7, 0.33, 0.9, 0.05},
		[]float64{3.3, 17, 0.1, 59, 8},
	)
	reversed := make([]ledger.Response, len(rs))
	for i := range rs {
		reversed[len(rs)-1-i] = rs[i]
	}
	if a, b := Compute(rs, 2, DefaultConfig()), Compute(reversed, 2, DefaultConfig()); a != b {
		t.Fatalf("order changed the result: %+v vs %+v", a, b)
	}
}

func TestValueAlignmentOnlyCountsValuesLayer(t *testing.T) {
	rs := []ledger.Response{
		{Answer: journey.AnswerYes, Weight: 1, Layer: journey.LayerValuesCheck},
		{Answer: journey.AnswerNo, Weight: 1, Layer: journey.LayerDataExposure},
		{Answer: journey.AnswerNo, Weight: 1, Layer: journey.LayerCommitment},
	}
	v := Compute(rs, 0, DefaultConfig())
	if v.ValueAlignment != 100 {
		t.Fatalf("expected 100, got %v", v.ValueAlignment)
	}

	other := []ledger.Response{{Answer: journey.AnswerYes, Weight: 1, Layer: journey.LayerDataExposure}}
	if got := Compute(other, 0, DefaultConfig()).ValueAlignment; got != 0 {
		t.Fatalf("expected 0 with no values-check responses, got %v", got)
	}
}

func TestDataAwarenessSaturates(t *testing.T) {
	cfg := DefaultConfig()
	cases := map[int]float64{0: 0, 1: 10, 5: 50, 10: 100, 25: 100}
	for viewed, want := range cases {
		if got := Compute(nil, viewed, cfg).DataAwareness; !approx(got, want) {
			t.Errorf("viewed=%d: expected %v, got %v", viewed, want, got)
		}
	}
	if got := Compute(nil, 5, Config{}).DataAwareness; got != 0 {
		t.Errorf("zero catalog size should yield 0, got %v", got)
	}
}

func TestPersuasionZeroWeight(t *testing.T) {
	rs := values([]journey.Answer{journey.AnswerYes}, []float64{0}, []float64{1})
	if got := Compute(rs, 0, DefaultConfig()).PersuasionLevel; got != 0 {
		t.Fatalf("expected 0 for zero total weight, got %v", got)
	}
}

func TestPersuasionUndecidedIsHalf(t *testing.T) {
	rs := values([]journey.Answer{journey.AnswerUnsure, journey.AnswerUnsure}, []float64{0.4, 0.2}, []float64{1, 1})
	if got := Compute(rs, 0, DefaultConfig()).PersuasionLevel; !approx(got, 50) {
		t.Fatalf("expected 50, got %v", got)
	}
}

func TestEngagementDepthSaturation(t *testing.T) {
	cfg := DefaultConfig()
	at := func(sec float64) float64 {
		return Compute(values([]journey.Answer{journey.AnswerYes}, []float64{1}, []float64{sec}), 0, cfg).EngagementDepth
	}
	if got := at(60); !approx(got, 100) {
		t.Errorf("60s: expected 100, got %v", got)
	}
	if got := at(600); got != 100 {
		t.Errorf("600s: expected 100, got %v", got)
	}
	if got := at(0); got != 0 {
		t.Errorf("0s: expected 0, got %v", got)
	}
	if a, b := at(5), at(20); a >= b {
		t.Errorf("engagement should grow with time: %v >= %v", a, b)
	}
}

func TestScoresClampedWithOutOfRangeInput(t *testing.T) {
	rs := []ledger.Response{
		{Answer: journey.AnswerYes, Weight: 5, ElapsedSeconds: 1e9, Layer: journey.LayerValuesCheck},
		{Answer: journey.AnswerNo, Weight: -3, ElapsedSeconds: 1, Layer: journey.LayerValuesCheck},
	}
	v := Compute(rs, 1000, DefaultConfig())
	for _, m := range v.Metrics() {
		if m.Value < 0 || m.Value > 100 {
			t.Errorf("%s out of range: %v", m.Name, m.Value)
		}
	}
}

func TestCoarse(t *testing.T) {
	rs := values(
		[]journey.Answer{journey.AnswerYes, journey.AnswerYes, journey.AnswerNo, journey.AnswerUnsure},
		[]float64{1, 1, 1, 1},
		[]float64{1, 1, 1, 1},
	)
	if got := Coarse(rs); got != 3 {
		t.Fatalf("expected 3 (1+1+0+0.5 rounds half up), got %d", got)
	}
	if got := Coarse(nil); got != 0 {
		t.Fatalf("expected 0, got %d", got)
	}
}
