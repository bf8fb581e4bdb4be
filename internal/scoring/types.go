package scoring

import "math"

// #region config
// Config holds the engine-wide scoring constants.
type Config struct {
	// AssumedContentTotal is the fixed catalog size Data Awareness is measured
	// against. It is not derived from the content source at runtime.
	AssumedContentTotal int `yaml:"assumed_content_total"`
	// EngagementSaturationSeconds is the average time per response at which
	// Engagement Depth reaches 100.
	EngagementSaturationSeconds float64 `yaml:"engagement_saturation_seconds"`
}

// DefaultConfig returns the production scoring constants.
func DefaultConfig() Config {
	return Config{
		AssumedContentTotal:         10,
		EngagementSaturationSeconds: 60,
	}
}

// #endregion config

// #region vector
// Vector is the four-metric score profile, each value in [0,100]. Values are
// kept unrounded; use Rounded for presentation.
type Vector struct {
	ValueAlignment  float64 `json:"value_alignment"`
	DataAwareness   float64 `json:"data_awareness"`
	PersuasionLevel float64 `json:"persuasion_level"`
	EngagementDepth float64 `json:"engagement_depth"`
}

// Rounded is the integer percentage form shown to visitors.
type Rounded struct {
	ValueAlignment  int `json:"value_alignment"`
	DataAwareness   int `json:"data_awareness"`
	PersuasionLevel int `json:"persuasion_level"`
	EngagementDepth int `json:"engagement_depth"`
}

// Rounded rounds every metric half away from zero.
func (v Vector) Rounded() Rounded {
	return Rounded{
		ValueAlignment:  int(math.Round(v.ValueAlignment)),
		DataAwareness:   int(math.Round(v.DataAwareness)),
		PersuasionLevel: int(math.Round(v.PersuasionLevel)),
		EngagementDepth: int(math.Round(v.EngagementDepth)),
	}
}

// Metrics returns the vector as named pairs in a fixed order.
func (v Vector) Metrics() []Metric {
	return []Metric{
		{"value_alignment", v.ValueAlignment},
		{"data_awareness", v.DataAwareness},
		{"persuasion_level", v.PersuasionLevel},
		{"engagement_depth", v.EngagementDepth},
	}
}

// Metric is one named score value.
type Metric struct {
	Name  string
	Value float64
}

// #endregion vector
