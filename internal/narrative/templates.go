package narrative

import (
	"github.com/danielpatrickdp/journey-engine/internal/classify"
	"github.com/danielpatrickdp/journey-engine/internal/journey"
)

// #region bands

// bandCount is the number of narrative bands over the coarse score.
const bandCount = 4

// bandFloors are the inclusive lower edges of the narrative bands: 0-3,
// 4-6, 7-9 and 10-12. Scores above 12 stay in the top band.
var bandFloors = [bandCount]int{0, 4, 7, 10}

// #endregion bands

// #region templates

// templates is indexed [band][lens]. The LensUnset column is never read.
var templates = [bandCount][journey.LensCount]string{
	0: {
		journey.LensFarLeft:  "You came in skeptical, and that is fair. {insight} You finished {layers} of {total} stages. Real {value} starts with asking hard questions, and {group} have always asked them.",
		journey.LensLeft:     "You are not convinced yet. {insight} After {layers} of {total} stages, the case for {value} still has work to do, and that is worth knowing.",
		journey.LensRight:    "You held your ground. {insight} {layers} of {total} stages in, you are still weighing what {value} really demands from {group}.",
		journey.LensFarRight: "You did not take our word for it. {insight} You went through {layers} of {total} stages, and {group} who defend {value} deserve the full picture.",
	},
	1: {
		journey.LensFarLeft:  "You see part of the picture. {insight} With {layers} of {total} stages done, the link between {value} and what {group} fight for is coming into focus.",
		journey.LensLeft:     "You are open to it. {insight} {layers} of {total} stages show {value} matters to you more than the headlines suggest.",
		journey.LensRight:    "You are listening. {insight} After {layers} of {total} stages, {value} looks less like a partisan issue and more like common ground for {group}.",
		journey.LensFarRight: "You are starting to question the script. {insight} {layers} of {total} stages in, {value} is something {group} can claim too.",
	},
	2: {
		journey.LensFarLeft:  "You are nearly there. {insight} {layers} of {total} stages confirm that {value} is a fight {group} can win.",
		journey.LensLeft:     "You agree more than you disagree. {insight} Across {layers} of {total} stages you have backed {value} again and again.",
		journey.LensRight:    "You might be surprised by your own answers. {insight} {layers} of {total} stages show {group} care about {value} as much as anyone.",
		journey.LensFarRight: "Your answers tell a clear story. {insight} {layers} of {total} stages in, {value} is a cause {group} can stand behind.",
	},
	3: {
		journey.LensFarLeft:  "You are all in. {insight} You completed {layers} of {total} stages, and {group} need people who will carry {value} forward.",
		journey.LensLeft:     "You are a natural advocate. {insight} {layers} of {total} stages prove {value} is already part of who you are.",
		journey.LensRight:    "You are ready to lead. {insight} After {layers} of {total} stages, {group} who share your view on {value} are waiting to hear from you.",
		journey.LensFarRight: "You have made up your mind. {insight} {layers} of {total} stages completed; {value} needs {group} like you to speak up.",
	},
}

// defaultTemplate is used only if a table cell is empty.
const defaultTemplate = "{insight} You completed {layers} of {total} stages."

// #endregion templates

// #region vocabulary

type vocabulary struct {
	value string
	group string
}

var vocab = [journey.LensCount]vocabulary{
	journey.LensFarLeft:  {value: "collective justice", group: "organizers"},
	journey.LensLeft:     {value: "fairness", group: "neighbours"},
	journey.LensRight:    {value: "responsibility", group: "families"},
	journey.LensFarRight: {value: "self-reliance", group: "patriots"},
}

// #endregion vocabulary

// #region insights

// insights is indexed [category][0 = mostly not affirmative, 1 = mostly affirmative].
var insights = [classify.CategoryCount][2]string{
	classify.CategoryChampion: {
		"Your strongest answers carried the most weight.",
		"You agreed with almost every claim we put to you.",
	},
	classify.CategoryAlly: {
		"The evidence moved you further than your first answers did.",
		"Most of your answers lined up with the data.",
	},
	classify.CategoryExplorer: {
		"You are still testing the arguments against your own experience.",
		"You agreed often, but held back on the points that mattered most.",
	},
	classify.CategorySkeptic: {
		"Most of the claims did not land with you.",
		"You agreed in places, but the heavy questions went the other way.",
	},
}

// #endregion insights
