package gate

import (
	"fmt"
	"math"
	"strings"
)

// #region gate
// Gate decides whether a response submission may enter the ledger.
type Gate struct {
	config GateConfig
}

// NewGate creates a gate with the given configuration.
func NewGate(config GateConfig) *Gate {
	return &Gate{config: config}
}

// Evaluate runs every hard veto and collects each one that fires. Any veto
// rejects the submission.
func (g *Gate) Evaluate(in ResponseInput) GateDecision {
	var vetoes []VetoSignal

	// 1. Question identity
	if strings.TrimSpace(in.QuestionID) == "" {
		vetoes = append(vetoes, VetoSignal{
			Type:   VetoMissingQuestion,
			Reason: "question id is empty",
		})
	}

	// 2. Layer must be part of the journey order
	if !in.Layer.Valid() {
		vetoes = append(vetoes, VetoSignal{
			Type:   VetoUnknownLayer,
			Reason: fmt.Sprintf("layer %d is not a journey layer", uint8(in.Layer)),
		})
	}

	// 3. Answer must be one of the known values
	if !in.Answer.Valid() {
		vetoes = append(vetoes, VetoSignal{
			Type:   VetoUnknownAnswer,
			Reason: fmt.Sprintf("answer %d is not a known answer", uint8(in.Answer)),
		})
	}

	// 4. Elapsed time
	switch {
	case math.IsNaN(in.ElapsedSeconds) || math.IsInf(in.ElapsedSeconds, 0):
		vetoes = append(vetoes, VetoSignal{
			Type:   VetoElapsedRange,
			Reason: "elapsed time is not finite",
		})
	case in.ElapsedSeconds < 0:
		vetoes = append(vetoes, VetoSignal{
			Type:   VetoElapsedRange,
			Reason: fmt.Sprintf("elapsed time %.2fs is negative", in.ElapsedSeconds),
		})
	case g.config.MaxElapsedSeconds > 0 && in.ElapsedSeconds > g.config.MaxElapsedSeconds:
		vetoes = append(vetoes, VetoSignal{
			Type:   VetoElapsedRange,
			Reason: fmt.Sprintf("elapsed time %.2fs exceeds cap %.2fs", in.ElapsedSeconds, g.config.MaxElapsedSeconds),
		})
	}

	// 5. Weight range
	if math.IsNaN(in.Weight) || in.Weight < g.config.MinWeight || in.Weight > g.config.MaxWeight {
		vetoes = append(vetoes, VetoSignal{
			Type:   VetoWeightRange,
			Reason: fmt.Sprintf("weight %v outside [%v, %v]", in.Weight, g.config.MinWeight, g.config.MaxWeight),
		})
	}

	if len(vetoes) > 0 {
		return GateDecision{
			Action:      "reject",
			Reason:      fmt.Sprintf("hard veto: %s", vetoes[0].Reason),
			Vetoed:      true,
			VetoSignals: vetoes,
		}
	}

	return GateDecision{
		Action: "accept",
		Reason: "passed gate",
	}
}

// #endregion gate
