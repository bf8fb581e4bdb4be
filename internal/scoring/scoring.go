package scoring

import (
	"math"
	"slices"

	"github.com/danielpatrickdp/journey-engine/internal/journey"
	"github.com/danielpatrickdp/journey-engine/internal/ledger"
)

// #region compute
// Compute derives the score vector from the response log and the number of
// distinct content items viewed. It is pure: the result depends only on the
// multiset of responses, never on their order.
func Compute(responses []ledger.Response, viewedCount int, config Config) Vector {
	return Vector{
		ValueAlignment:  valueAlignment(responses),
		DataAwareness:   dataAwareness(viewedCount, config.AssumedContentTotal),
		PersuasionLevel: persuasionLevel(responses),
		EngagementDepth: engagementDepth(responses, config.EngagementSaturationSeconds),
	}
}

// #endregion compute

// #region coarse
// Coarse is the total weighted answer score, rounded to an integer. It feeds
// the result classifier and narrative band selection.
func Coarse(responses []ledger.Response) int {
	terms := make([]float64, 0, len(responses))
	for _, r := range responses {
		terms = append(terms, r.Answer.Score()*r.Weight)
	}
	sum := sumSorted(terms)
	if sum < 0 || math.IsNaN(sum) {
		return 0
	}
	return int(math.Round(sum))
}

// #endregion coarse

// #region metrics

// valueAlignment is the affirmative share of values-check responses.
func valueAlignment(responses []ledger.Response) float64 {
	var total, yes int
	for _, r := range responses {
		if r.Layer != journey.LayerValuesCheck {
			continue
		}
		total++
		if r.Answer.Affirmative() {
			yes++
		}
	}
	if total == 0 {
		return 0
	}
	return clamp(100 * float64(yes) / float64(total))
}

func dataAwareness(viewed, assumedTotal int) float64 {
	if assumedTotal <= 0 || viewed <= 0 {
		return 0
	}
	return clamp(100 * math.Min(1, float64(viewed)/float64(assumedTotal)))
}

// persuasionLevel is the weight-averaged answer score.
func persuasionLevel(responses []ledger.Response) float64 {
	nums := make([]float64, 0, len(responses))
	dens := make([]float64, 0, len(responses))
	for _, r := range responses {
		nums = append(nums, r.Answer.Score()*r.Weight)
		dens = append(dens, r.Weight)
	}
	num, den := sumSorted(nums), sumSorted(dens)
	if den <= 0 {
		return 0
	}
	return clamp(100 * num / den)
}

// engagementDepth saturates logarithmically at the configured average.
func engagementDepth(responses []ledger.Response, saturation float64) float64 {
	if len(responses) == 0 || saturation <= 0 {
		return 0
	}
	times := make([]float64, 0, len(responses))
	for _, r := range responses {
		times = append(times, r.ElapsedSeconds)
	}
	avg := sumSorted(times) / float64(len(responses))
	if avg <= 0 {
		return 0
	}
	return clamp(100 * math.Min(1, math.Log(avg+1)/math.Log(saturation+1)))
}

// sumSorted adds xs in ascending order so the float result does not depend
// on ledger order.
func sumSorted(xs []float64) float64 {
	slices.Sort(xs)
	var sum float64
	for _, x := range xs {
		sum += x
	}
	return sum
}

// clamp restricts v to [0, 100]; NaN collapses to 0.
func clamp(v float64) float64 {
	if math.IsNaN(v) || v < 0 {
		return 0
	}
	if v > 100 {
		return 100
	}
	return v
}

// #endregion metrics
