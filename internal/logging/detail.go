package logging

import (
	"encoding/json"
	"fmt"
	"math"
	"strconv"
)

// #region response-detail-json

// responseDetailJSON is the wire form of ResponseDetail. Rejected input can
// carry NaN or infinite numbers, which JSON cannot represent as numbers.
type responseDetailJSON struct {
	QuestionID     string    `json:"question_id"`
	Answer         string    `json:"answer"`
	ElapsedSeconds jsonFloat `json:"elapsed_seconds"`
	Weight         jsonFloat `json:"weight"`
	Layer          string    `json:"layer"`
	GateAction     string    `json:"gate_action"`
	GateReason     string    `json:"gate_reason,omitempty"`
}

func (d ResponseDetail) MarshalJSON() ([]byte, error) {
	return json.Marshal(responseDetailJSON{
		QuestionID:     d.QuestionID,
		Answer:         d.Answer,
		ElapsedSeconds: jsonFloat(d.ElapsedSeconds),
		Weight:         jsonFloat(d.Weight),
		Layer:          d.Layer,
		GateAction:     d.GateAction,
		GateReason:     d.GateReason,
	})
}

func (d *ResponseDetail) UnmarshalJSON(b []byte) error {
	var w responseDetailJSON
	if err := json.Unmarshal(b, &w); err != nil {
		return err
	}
	*d = ResponseDetail{
		QuestionID:     w.QuestionID,
		Answer:         w.Answer,
		ElapsedSeconds: float64(w.ElapsedSeconds),
		Weight:         float64(w.Weight),
		Layer:          w.Layer,
		GateAction:     w.GateAction,
		GateReason:     w.GateReason,
	}
	return nil
}

// jsonFloat encodes finite values as numbers and NaN / ±Inf as the strings
// "NaN", "+Inf" and "-Inf".
type jsonFloat float64

func (f jsonFloat) MarshalJSON() ([]byte, error) {
	v := float64(f)
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return json.Marshal(strconv.FormatFloat(v, 'g', -1, 64))
	}
	return json.Marshal(v)
}

func (f *jsonFloat) UnmarshalJSON(b []byte) error {
	if len(b) > 0 && b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		v, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return fmt.Errorf("float %q: %w", s, err)
		}
		*f = jsonFloat(v)
		return nil
	}
	var v float64
	if err := json.Unmarshal(b, &v); err != nil {
		return err
	}
	*f = jsonFloat(v)
	return nil
}

// #endregion response-detail-json
