package progression

import (
	"fmt"

	"github.com/danielpatrickdp/journey-engine/internal/journey"
)

// #region machine
// Machine tracks the current layer, the completed set and the question index
// within the current layer. The zero value is the initial state.
type Machine struct {
	current   journey.Layer
	completed [journey.LayerCount]bool
	index     int
}

// Snapshot is the serializable form of a Machine.
type Snapshot struct {
	Current       journey.Layer   `json:"current_layer"`
	Completed     []journey.Layer `json:"completed_layers"`
	QuestionIndex int             `json:"question_index"`
}

// New returns a machine on the first layer with nothing completed.
func New() Machine {
	return Machine{current: journey.FirstLayer()}
}

// Restore rebuilds a machine from a snapshot. Completed layers must form a
// prefix of the journey order ending at or before the current layer.
func Restore(s Snapshot) (Machine, error) {
	if !s.Current.Valid() {
		return Machine{}, fmt.Errorf("invalid current layer %d", s.Current)
	}
	if s.QuestionIndex < 0 {
		return Machine{}, fmt.Errorf("negative question index %d", s.QuestionIndex)
	}
	m := Machine{current: s.Current, index: s.QuestionIndex}
	for _, l := range s.Completed {
		if !l.Valid() {
			return Machine{}, fmt.Errorf("invalid completed layer %d", l)
		}
		if l > s.Current {
			return Machine{}, fmt.Errorf("completed layer %s is past current layer %s", l, s.Current)
		}
		m.completed[l] = true
	}
	for l := journey.FirstLayer(); l < s.Current; l++ {
		if !m.completed[l] {
			return Machine{}, fmt.Errorf("layer %s before current %s is not completed", l, s.Current)
		}
	}
	return m, nil
}

// #endregion machine

// #region transitions

// Advance completes the current layer and moves to the next one, resetting
// the question index. On the last layer it only marks completion. It reports
// whether the current layer changed.
func (m *Machine) Advance() bool {
	m.completed[m.current] = true
	next, ok := m.current.Next()
	if !ok {
		return false
	}
	m.current = next
	m.index = 0
	return true
}

// Step moves to the next question within the current layer.
func (m *Machine) Step() {
	m.index++
}

// #endregion transitions

// #region accessors

func (m *Machine) Current() journey.Layer { return m.current }

func (m *Machine) QuestionIndex() int { return m.index }

// IsCompleted reports whether l has been advanced past.
func (m *Machine) IsCompleted(l journey.Layer) bool {
	return l.Valid() && m.completed[l]
}

// Completed returns the completed layers in journey order.
func (m *Machine) Completed() []journey.Layer {
	var out []journey.Layer
	for _, l := range journey.Layers() {
		if m.completed[l] {
			out = append(out, l)
		}
	}
	return out
}

// CompletedCount returns the number of completed layers.
func (m *Machine) CompletedCount() int {
	n := 0
	for _, done := range m.completed {
		if done {
			n++
		}
	}
	return n
}

// Terminal reports whether the last layer has been completed.
func (m *Machine) Terminal() bool {
	return m.completed[journey.LastLayer()]
}

// Snapshot captures the machine for persistence.
func (m *Machine) Snapshot() Snapshot {
	return Snapshot{
		Current:       m.current,
		Completed:     m.Completed(),
		QuestionIndex: m.index,
	}
}

// #endregion accessors
