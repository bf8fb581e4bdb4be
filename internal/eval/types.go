package eval

// #region eval-config
// EvalConfig holds the audit tolerances.
type EvalConfig struct {
	ScoreTolerance float64 // allowed drift between cached and recomputed scores
}

// DefaultEvalConfig requires the cache to match a recompute exactly.
func DefaultEvalConfig() EvalConfig {
	return EvalConfig{
		ScoreTolerance: 0,
	}
}

// #endregion eval-config

// #region eval-metric
// EvalMetric captures a single validation check result.
type EvalMetric struct {
	Name  string
	Value float64
	Pass  bool
}

// #endregion eval-metric

// #region eval-result
// EvalResult is the output of a session audit.
type EvalResult struct {
	Passed  bool
	Metrics []EvalMetric
	Reason  string
}

// #endregion eval-result
