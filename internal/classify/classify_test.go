package classify

import (
	"math"
	"testing"

	"github.com/danielpatrickdp/journey-engine/internal/journey"
	"github.com/danielpatrickdp/journey-engine/internal/session"
)

func TestClassifyTotal(t *testing.T) {
	lenses := append(journey.Lenses(), journey.LensUnset, journey.Lens(250))
	scores := []int{0, 1, 3, 4, 7, 8, 12, 100, math.MaxInt32, -5}
	for _, l := range lenses {
		for _, s := range scores {
			if c := Classify(s, l); !c.Valid() {
				t.Errorf("Classify(%d, %s) returned invalid %d", s, l, c)
			}
		}
	}
	for s := 0; s <= 1000; s++ {
		for _, l := range lenses {
			if !Classify(s, l).Valid() {
				t.Fatalf("Classify(%d, %s) invalid", s, l)
			}
		}
	}
}

func TestClassifyTable(t *testing.T) {
	cases := []struct {
		score int
		lens  journey.Lens
		want  Category
	}{
		{8, journey.LensFarLeft, CategoryChampion},
		{12, journey.LensLeft, CategoryChampion},
		{8, journey.LensRight, CategoryAlly},
		{4, journey.LensLeft, CategoryAlly},
		{7, journey.LensFarRight, CategoryExplorer},
		{3, journey.LensFarLeft, CategoryExplorer},
		{0, journey.LensRight, CategorySkeptic},
	}
	for _, c := range cases {
		if got := Classify(c.score, c.lens); got != c.want {
			t.Errorf("Classify(%d, %s): expected %s, got %s", c.score, c.lens, c.want, got)
		}
	}
}

func TestBandBoundariesInclusive(t *testing.T) {
	if Band(int(Thresholds.High)) != journey.BandHigh {
		t.Error("high threshold should be inclusive")
	}
	if Band(int(Thresholds.Mid)) != journey.BandMid {
		t.Error("mid threshold should be inclusive")
	}
	if Band(int(Thresholds.Mid)-1) != journey.BandLow {
		t.Error("below mid should be low")
	}
}

func TestEverySideHasEveryBand(t *testing.T) {
	for b := 0; b < journey.BandCount; b++ {
		for s := 0; s < journey.SideCount; s++ {
			if !table[b][s].Valid() {
				t.Errorf("table[%d][%d] invalid", b, s)
			}
		}
	}
}

func TestDefaultCategoryForEmptySession(t *testing.T) {
	s := session.New(session.DefaultConfig())
	if got := ForSession(s); got != DefaultCategory {
		t.Fatalf("expected %s, got %s", DefaultCategory, got)
	}
	if DefaultCategory != CategoryExplorer {
		t.Fatalf("expected explorer as default, got %s", DefaultCategory)
	}
}

func TestForSessionUsesCoarseScore(t *testing.T) {
	s := session.New(session.DefaultConfig())
	s.SetLens(journey.LensRight)
	for i := 0; i < 8; i++ {
		if err := s.RecordResponse("q", journey.AnswerYes, 5, 1, journey.LayerCommitment); err != nil {
			t.Fatalf("RecordResponse: %v", err)
		}
	}
	if got := ForSession(s); got != CategoryAlly {
		t.Fatalf("expected ally for high/right, got %s", got)
	}
}

func TestCategoryText(t *testing.T) {
	for _, c := range Categories() {
		b, err := c.MarshalText()
		if err != nil {
			t.Fatalf("MarshalText: %v", err)
		}
		var back Category
		if err := back.UnmarshalText(b); err != nil || back != c {
			t.Fatalf("round trip %s: got %s, %v", c, back, err)
		}
	}
}
