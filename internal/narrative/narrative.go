// Package narrative renders the result copy for a session from a fixed
// band-by-lens template table.
package narrative

import (
	"strconv"
	"strings"

	"github.com/danielpatrickdp/journey-engine/internal/classify"
	"github.com/danielpatrickdp/journey-engine/internal/journey"
	"github.com/danielpatrickdp/journey-engine/internal/session"
)

// Facts are the session-derived inputs a template is filled with.
type Facts struct {
	Coarse           int
	Lens             journey.Lens
	Category         classify.Category
	AffirmativeRatio float64
	CompletedLayers  int
}

// FactsOf extracts the template facts from a session.
func FactsOf(s *session.Session) Facts {
	coarse := s.Coarse()
	return Facts{
		Coarse:           coarse,
		Lens:             s.Lens(),
		Category:         classify.Classify(coarse, s.Lens()),
		AffirmativeRatio: s.AffirmativeRatio(),
		CompletedLayers:  s.CompletedCount(),
	}
}

// Generate renders the narrative for a session.
func Generate(s *session.Session) string {
	return Render(FactsOf(s))
}

// Render fills the template selected by band and lens. It never fails: an
// unset lens uses the fallback lens and out-of-range facts are clamped.
func Render(f Facts) string {
	lens := f.Lens.OrFallback()
	tmpl := templates[bandFor(f.Coarse)][lens]
	if tmpl == "" {
		tmpl = defaultTemplate
	}
	words := vocab[lens]

	r := strings.NewReplacer(
		"{insight}", insightFor(f.Category, f.AffirmativeRatio),
		"{layers}", strconv.Itoa(clampLayers(f.CompletedLayers)),
		"{total}", strconv.Itoa(journey.LayerCount),
		"{value}", words.value,
		"{group}", words.group,
	)
	return r.Replace(tmpl)
}

// bandFor picks the highest band whose floor the score reaches.
func bandFor(score int) int {
	for b := bandCount - 1; b > 0; b-- {
		if score >= bandFloors[b] {
			return b
		}
	}
	return 0
}

func insightFor(c classify.Category, ratio float64) string {
	if !c.Valid() {
		c = classify.DefaultCategory
	}
	i := 0
	if ratio >= 0.5 {
		i = 1
	}
	return insights[c][i]
}

func clampLayers(n int) int {
	if n < 0 {
		return 0
	}
	if n > journey.LayerCount {
		return journey.LayerCount
	}
	return n
}
