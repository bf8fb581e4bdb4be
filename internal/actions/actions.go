// Package actions ranks the call-to-action catalog against a session's
// persuasion level.
package actions

import (
	"math"
	"slices"

	"github.com/danielpatrickdp/journey-engine/internal/journey"
	"github.com/danielpatrickdp/journey-engine/internal/session"
)

// #region catalog

// ID identifies a call-to-action.
type ID string

const (
	Signup     ID = "signup"
	Share      ID = "share"
	Donate     ID = "donate"
	Volunteer  ID = "volunteer"
	ContactRep ID = "contact-rep"
	LearnMore  ID = "learn-more"
)

// entry is one catalog row: base priority and reasoning per band.
type entry struct {
	id        ID
	base      [journey.BandCount]int
	reasoning [journey.BandCount]string
}

// catalog order is the tie-break order.
var catalog = []entry{
	{
		id:   Signup,
		base: [journey.BandCount]int{journey.BandLow: 40, journey.BandMid: 70, journey.BandHigh: 90},
		reasoning: [journey.BandCount]string{
			journey.BandLow:  "A low-commitment way to keep hearing from us.",
			journey.BandMid:  "You agree with much of this; staying informed is the natural next step.",
			journey.BandHigh: "You are aligned; join the list so we can count on you.",
		},
	},
	{
		id:   Share,
		base: [journey.BandCount]int{journey.BandLow: 20, journey.BandMid: 60, journey.BandHigh: 85},
		reasoning: [journey.BandCount]string{
			journey.BandLow:  "Sharing can wait until you have seen more.",
			journey.BandMid:  "Friends may find the same data as surprising as you did.",
			journey.BandHigh: "Your network trusts you more than any ad.",
		},
	},
	{
		id:   Donate,
		base: [journey.BandCount]int{journey.BandLow: 5, journey.BandMid: 30, journey.BandHigh: 75},
		reasoning: [journey.BandCount]string{
			journey.BandLow:  "Not the right moment to ask for support.",
			journey.BandMid:  "A small contribution is an easy way to test the waters.",
			journey.BandHigh: "Strong agreement is best turned into resources.",
		},
	},
	{
		id:   Volunteer,
		base: [journey.BandCount]int{journey.BandLow: 5, journey.BandMid: 25, journey.BandHigh: 70},
		reasoning: [journey.BandCount]string{
			journey.BandLow:  "Volunteering asks for more than you have signalled.",
			journey.BandMid:  "Occasional help fits someone still weighing the arguments.",
			journey.BandHigh: "You are ready to help others take this journey.",
		},
	},
	{
		id:   ContactRep,
		base: [journey.BandCount]int{journey.BandLow: 10, journey.BandMid: 45, journey.BandHigh: 65},
		reasoning: [journey.BandCount]string{
			journey.BandLow:  "Contacting a representative works best once you are convinced.",
			journey.BandMid:  "A short message to your representative makes your view count.",
			journey.BandHigh: "Representatives listen to constituents who write in.",
		},
	},
	{
		id:   LearnMore,
		base: [journey.BandCount]int{journey.BandLow: 90, journey.BandMid: 55, journey.BandHigh: 20},
		reasoning: [journey.BandCount]string{
			journey.BandLow:  "There is more evidence worth seeing before deciding anything.",
			journey.BandMid:  "A deeper look at the data can settle the open questions.",
			journey.BandHigh: "You have seen most of it already.",
		},
	},
}

// IDs returns the catalog in tie-break order.
func IDs() []ID {
	out := make([]ID, len(catalog))
	for i, e := range catalog {
		out[i] = e.id
	}
	return out
}

// #endregion catalog

// #region prioritize

// Thresholds are the persuasion-level lower edges of the mid and high bands.
var Thresholds = journey.Thresholds{Mid: 40, High: 70}

// Ranked is one prioritized action.
type Ranked struct {
	ID        ID     `json:"id"`
	Priority  int    `json:"priority"`
	Reasoning string `json:"reasoning"`
}

// Rank orders the catalog for a persuasion level in [0,100]. Equal
// priorities keep catalog order.
func Rank(persuasionLevel float64) []Ranked {
	if math.IsNaN(persuasionLevel) {
		persuasionLevel = 0
	}
	band := journey.BandOf(persuasionLevel, Thresholds)
	out := make([]Ranked, len(catalog))
	for i, e := range catalog {
		out[i] = Ranked{
			ID:        e.id,
			Priority:  priority(e.base[band], persuasionLevel),
			Reasoning: e.reasoning[band],
		}
	}
	slices.SortStableFunc(out, func(a, b Ranked) int {
		return b.Priority - a.Priority
	})
	return out
}

// Prioritize ranks actions for the session's current persuasion level.
func Prioritize(s *session.Session) []Ranked {
	return Rank(s.Scores().PersuasionLevel)
}

func priority(base int, persuasion float64) int {
	p := int(math.Round((float64(base) + persuasion) / 2))
	switch {
	case p < 0:
		return 0
	case p > 100:
		return 100
	}
	return p
}

// #endregion prioritize
