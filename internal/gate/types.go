package gate

import "github.com/danielpatrickdp/journey-engine/internal/journey"

// #region veto-type
// VetoType enumerates hard veto categories.
type VetoType string

const (
	VetoMissingQuestion VetoType = "missing_question"
	VetoUnknownLayer    VetoType = "unknown_layer"
	VetoUnknownAnswer   VetoType = "unknown_answer"
	VetoElapsedRange    VetoType = "elapsed_out_of_range"
	VetoWeightRange     VetoType = "weight_out_of_range"
)

// #endregion veto-type

// #region veto-signal
// VetoSignal represents a detected hard veto condition.
type VetoSignal struct {
	Type   VetoType
	Reason string
}

// #endregion veto-signal

// #region gate-config
// GateConfig holds the accepted input ranges.
type GateConfig struct {
	MinWeight         float64 `yaml:"min_weight"`
	MaxWeight         float64 `yaml:"max_weight"`
	MaxElapsedSeconds float64 `yaml:"max_elapsed_seconds"` // 0 = no upper bound
}

// DefaultGateConfig returns the persuasion weight range [0,1] with no elapsed cap.
func DefaultGateConfig() GateConfig {
	return GateConfig{
		MinWeight: 0,
		MaxWeight: 1,
	}
}

// #endregion gate-config

// #region input
// ResponseInput is a response submission before it enters the ledger.
type ResponseInput struct {
	QuestionID     string
	Answer         journey.Answer
	ElapsedSeconds float64
	Weight         float64
	Layer          journey.Layer
}

// #endregion input

// #region gate-decision
// GateDecision is the output of the gate evaluation.
type GateDecision struct {
	Action      string // "accept" | "reject"
	Reason      string
	Vetoed      bool
	VetoSignals []VetoSignal // non-empty if vetoed
}

// #endregion gate-decision
