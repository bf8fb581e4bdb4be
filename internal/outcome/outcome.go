// Package outcome renders a journey view as a protobuf Struct for analytics
// consumers.
package outcome

import (
	"fmt"

	"google.golang.org/protobuf/encoding/protojson"
	"google.golang.org/protobuf/types/known/structpb"

	"github.com/danielpatrickdp/journey-engine/internal/engine"
	"github.com/danielpatrickdp/journey-engine/internal/journey"
)

// Summary flattens v into a Struct. Enum values are written by name and
// scores as numbers.
func Summary(v engine.View) (*structpb.Struct, error) {
	completed := make([]any, 0, len(v.CompletedLayers))
	for _, l := range v.CompletedLayers {
		completed = append(completed, l.String())
	}
	ranked := make([]any, 0, len(v.Actions))
	for _, a := range v.Actions {
		ranked = append(ranked, map[string]any{
			"id":        string(a.ID),
			"priority":  a.Priority,
			"reasoning": a.Reasoning,
		})
	}

	s, err := structpb.NewStruct(map[string]any{
		"key":        v.Key,
		"session_id": v.SessionID,
		"lens":       v.Lens.OrFallback().String(),
		"lens_set":   v.Lens != journey.LensUnset,
		"scores": map[string]any{
			"value_alignment":  v.Scores.ValueAlignment,
			"data_awareness":   v.Scores.DataAwareness,
			"persuasion_level": v.Scores.PersuasionLevel,
			"engagement_depth": v.Scores.EngagementDepth,
		},
		"coarse_score":     v.Coarse,
		"current_layer":    v.CurrentLayer.String(),
		"completed_layers": completed,
		"question_index":   v.QuestionIndex,
		"terminal":         v.Terminal,
		"responses":        v.Responses,
		"viewed":           v.Viewed,
		"conversions":      v.Conversions,
		"category":         v.Category.String(),
		"actions":          ranked,
		"narrative":        v.Narrative,
	})
	if err != nil {
		return nil, fmt.Errorf("build outcome summary: %w", err)
	}
	return s, nil
}

// MarshalJSON renders the summary of v with protojson.
func MarshalJSON(v engine.View) ([]byte, error) {
	s, err := Summary(v)
	if err != nil {
		return nil, err
	}
	b, err := protojson.MarshalOptions{UseProtoNames: true}.Marshal(s)
	if err != nil {
		return nil, fmt.Errorf("marshal outcome summary: %w", err)
	}
	return b, nil
}
