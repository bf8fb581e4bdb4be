package classify

import (
	"fmt"

	"github.com/danielpatrickdp/journey-engine/internal/journey"
	"github.com/danielpatrickdp/journey-engine/internal/session"
)

// #region category
// Category is the result page a visitor lands on.
type Category uint8

const (
	CategoryChampion Category = iota
	CategoryAlly
	CategoryExplorer
	CategorySkeptic

	categoryCount
)

// CategoryCount is the number of result categories.
const CategoryCount = int(categoryCount)

// DefaultCategory is what an empty session with no lens classifies as.
var DefaultCategory = Classify(0, journey.LensUnset)

var categoryNames = [categoryCount]string{
	CategoryChampion: "champion",
	CategoryAlly:     "ally",
	CategoryExplorer: "explorer",
	CategorySkeptic:  "skeptic",
}

// Categories returns every category.
func Categories() []Category {
	return []Category{CategoryChampion, CategoryAlly, CategoryExplorer, CategorySkeptic}
}

func (c Category) Valid() bool { return c < categoryCount }

func (c Category) String() string {
	if !c.Valid() {
		return fmt.Sprintf("category(%d)", uint8(c))
	}
	return categoryNames[c]
}

func (c Category) MarshalText() ([]byte, error) {
	if !c.Valid() {
		return nil, fmt.Errorf("invalid category %d", uint8(c))
	}
	return []byte(c.String()), nil
}

func (c *Category) UnmarshalText(b []byte) error {
	for i, name := range categoryNames {
		if name == string(b) {
			*c = Category(i)
			return nil
		}
	}
	return fmt.Errorf("unknown category %q", b)
}

// #endregion category

// #region classify

// Thresholds are the coarse-score lower edges of the mid and high bands.
var Thresholds = journey.Thresholds{Mid: 4, High: 8}

// table maps (band, side) to a category; every cell is filled.
var table = [journey.BandCount][journey.SideCount]Category{
	journey.BandHigh: {journey.SideLeft: CategoryChampion, journey.SideRight: CategoryAlly},
	journey.BandMid:  {journey.SideLeft: CategoryAlly, journey.SideRight: CategoryExplorer},
	journey.BandLow:  {journey.SideLeft: CategoryExplorer, journey.SideRight: CategorySkeptic},
}

// Band buckets a coarse score.
func Band(score int) journey.Band {
	return journey.BandOf(float64(score), Thresholds)
}

// Classify maps a coarse weighted-answer score and lens to a category. It is
// total: negative scores count as low and an unset lens uses the fallback.
func Classify(score int, lens journey.Lens) Category {
	return table[Band(score)][lens.Side()]
}

// ForSession classifies the session's current state.
func ForSession(s *session.Session) Category {
	return Classify(s.Coarse(), s.Lens())
}

// #endregion classify
