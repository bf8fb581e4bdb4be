package ledger

import "github.com/danielpatrickdp/journey-engine/internal/journey"

// #region response
// Response is one answered question. Records are never edited once appended.
type Response struct {
	QuestionID     string         `json:"question_id"`
	Answer         journey.Answer `json:"answer"`
	ElapsedSeconds float64        `json:"elapsed_seconds"`
	Weight         float64        `json:"weight"`
	Layer          journey.Layer  `json:"layer"`
	At             journey.Millis `json:"at"`
}

// #endregion response

// #region ledger
// Ledger is the append-only response log of one session.
type Ledger struct {
	entries []Response
}

// FromResponses rebuilds a ledger from a persisted slice.
func FromResponses(rs []Response) Ledger {
	out := make([]Response, len(rs))
	copy(out, rs)
	return Ledger{entries: out}
}

// Append adds r to the end of the log.
func (l *Ledger) Append(r Response) {
	l.entries = append(l.entries, r)
}

// Len returns the number of recorded responses.
func (l *Ledger) Len() int {
	return len(l.entries)
}

// Responses returns a copy of every response in append order.
func (l *Ledger) Responses() []Response {
	out := make([]Response, len(l.entries))
	copy(out, l.entries)
	return out
}

// InLayer returns the responses recorded against layer, in append order.
func (l *Ledger) InLayer(layer journey.Layer) []Response {
	var out []Response
	for _, r := range l.entries {
		if r.Layer == layer {
			out = append(out, r)
		}
	}
	return out
}

// AffirmativeRatio is the share of affirmative answers across the whole log,
// 0 when empty.
func (l *Ledger) AffirmativeRatio() float64 {
	if len(l.entries) == 0 {
		return 0
	}
	var n int
	for _, r := range l.entries {
		if r.Answer.Affirmative() {
			n++
		}
	}
	return float64(n) / float64(len(l.entries))
}

// #endregion ledger
