package journey

import (
	"fmt"
	"strconv"
	"time"
)

// #region lens

// Lens is the visitor's self-declared political position. It only selects
// wording; no score arithmetic depends on it.
type Lens uint8

const (
	LensUnset Lens = iota
	LensFarLeft
	LensLeft
	LensRight
	LensFarRight

	lensCount
)

// LensCount is the size of a table indexed by Lens, including LensUnset.
const LensCount = int(lensCount)

// FallbackLens is used wherever a lens is required but none was selected.
const FallbackLens = LensLeft

var lensNames = [lensCount]string{
	LensUnset:    "unset",
	LensFarLeft:  "far-left",
	LensLeft:     "left",
	LensRight:    "right",
	LensFarRight: "far-right",
}

// Lenses returns the selectable lenses in spectrum order.
func Lenses() []Lens {
	return []Lens{LensFarLeft, LensLeft, LensRight, LensFarRight}
}

func (l Lens) String() string {
	if l >= lensCount {
		return fmt.Sprintf("lens(%d)", uint8(l))
	}
	return lensNames[l]
}

// Valid reports whether l is one of the four selectable lenses.
func (l Lens) Valid() bool {
	return l > LensUnset && l < lensCount
}

// OrFallback returns l, or FallbackLens when l is unset or invalid.
func (l Lens) OrFallback() Lens {
	if l.Valid() {
		return l
	}
	return FallbackLens
}

// Side collapses the lens onto the binary left/right grouping.
func (l Lens) Side() Side {
	switch l.OrFallback() {
	case LensRight, LensFarRight:
		return SideRight
	default:
		return SideLeft
	}
}

// ParseLens parses the textual form produced by String.
func ParseLens(s string) (Lens, error) {
	for i, name := range lensNames {
		if name == s {
			return Lens(i), nil
		}
	}
	return LensUnset, fmt.Errorf("unknown lens %q", s)
}

func (l Lens) MarshalText() ([]byte, error) {
	if l >= lensCount {
		return nil, fmt.Errorf("invalid lens %d", uint8(l))
	}
	return []byte(l.String()), nil
}

func (l *Lens) UnmarshalText(b []byte) error {
	v, err := ParseLens(string(b))
	if err != nil {
		return err
	}
	*l = v
	return nil
}

// Side is the binary grouping used by the result classifier.
type Side uint8

const (
	SideLeft Side = iota
	SideRight

	sideCount
)

// SideCount is the number of sides.
const SideCount = int(sideCount)

func (s Side) String() string {
	if s == SideRight {
		return "right"
	}
	return "left"
}

// #endregion lens

// #region layer

// Layer is one stage of the fixed journey order.
type Layer uint8

const (
	LayerValuesCheck Layer = iota
	LayerDataExposure
	LayerObjectionHandling
	LayerCommitment

	layerCount
)

// LayerCount is the number of journey layers.
const LayerCount = int(layerCount)

var layerNames = [layerCount]string{
	LayerValuesCheck:       "values-check",
	LayerDataExposure:      "data-exposure",
	LayerObjectionHandling: "objection-handling",
	LayerCommitment:        "commitment",
}

// Layers returns every layer in journey order.
func Layers() []Layer {
	out := make([]Layer, 0, layerCount)
	for l := Layer(0); l < layerCount; l++ {
		out = append(out, l)
	}
	return out
}

// FirstLayer is the layer a fresh session starts on.
func FirstLayer() Layer { return LayerValuesCheck }

// LastLayer is the final layer of the journey.
func LastLayer() Layer { return layerCount - 1 }

func (l Layer) Valid() bool { return l < layerCount }

// Next returns the following layer, or false when l is the last one.
func (l Layer) Next() (Layer, bool) {
	if l+1 >= layerCount {
		return l, false
	}
	return l + 1, true
}

func (l Layer) String() string {
	if !l.Valid() {
		return fmt.Sprintf("layer(%d)", uint8(l))
	}
	return layerNames[l]
}

func ParseLayer(s string) (Layer, error) {
	for i, name := range layerNames {
		if name == s {
			return Layer(i), nil
		}
	}
	return 0, fmt.Errorf("unknown layer %q", s)
}

func (l Layer) MarshalText() ([]byte, error) {
	if !l.Valid() {
		return nil, fmt.Errorf("invalid layer %d", uint8(l))
	}
	return []byte(l.String()), nil
}

func (l *Layer) UnmarshalText(b []byte) error {
	v, err := ParseLayer(string(b))
	if err != nil {
		return err
	}
	*l = v
	return nil
}

// #endregion layer

// #region answer

// Answer is a recorded response value: the tri-state yes/no/unsure set or
// the five-point Likert variant.
type Answer uint8

const (
	AnswerInvalid Answer = iota
	AnswerYes
	AnswerNo
	AnswerUnsure
	AnswerStronglyAgree
	AnswerAgree
	AnswerNeutral
	AnswerDisagree
	AnswerStronglyDisagree

	answerCount
)

var answerNames = [answerCount]string{
	AnswerInvalid:          "invalid",
	AnswerYes:              "yes",
	AnswerNo:               "no",
	AnswerUnsure:           "unsure",
	AnswerStronglyAgree:    "strongly-agree",
	AnswerAgree:            "agree",
	AnswerNeutral:          "neutral",
	AnswerDisagree:         "disagree",
	AnswerStronglyDisagree: "strongly-disagree",
}

var answerScores = [answerCount]float64{
	AnswerYes:              1,
	AnswerNo:               0,
	AnswerUnsure:           0.5,
	AnswerStronglyAgree:    1,
	AnswerAgree:            0.75,
	AnswerNeutral:          0.5,
	AnswerDisagree:         0.25,
	AnswerStronglyDisagree: 0,
}

func (a Answer) Valid() bool { return a > AnswerInvalid && a < answerCount }

// Score maps the answer onto [0,1]: affirmative 1, undecided 0.5, negative 0.
func (a Answer) Score() float64 {
	if !a.Valid() {
		return 0
	}
	return answerScores[a]
}

// Affirmative reports whether the answer counts as agreement.
func (a Answer) Affirmative() bool {
	switch a {
	case AnswerYes, AnswerAgree, AnswerStronglyAgree:
		return true
	}
	return false
}

func (a Answer) String() string {
	if a >= answerCount {
		return fmt.Sprintf("answer(%d)", uint8(a))
	}
	return answerNames[a]
}

func ParseAnswer(s string) (Answer, error) {
	for i, name := range answerNames {
		if i > 0 && name == s {
			return Answer(i), nil
		}
	}
	return AnswerInvalid, fmt.Errorf("unknown answer %q", s)
}

func (a Answer) MarshalText() ([]byte, error) {
	if !a.Valid() {
		return nil, fmt.Errorf("invalid answer %d", uint8(a))
	}
	return []byte(a.String()), nil
}

func (a *Answer) UnmarshalText(b []byte) error {
	v, err := ParseAnswer(string(b))
	if err != nil {
		return err
	}
	*a = v
	return nil
}

// #endregion answer

// #region band

// Band is the coarse low/mid/high grouping shared by the classifier and the
// action prioritizer.
type Band uint8

const (
	BandLow Band = iota
	BandMid
	BandHigh

	bandCount
)

// BandCount is the number of bands.
const BandCount = int(bandCount)

var bandNames = [bandCount]string{"low", "mid", "high"}

func (b Band) String() string {
	if b >= bandCount {
		return fmt.Sprintf("band(%d)", uint8(b))
	}
	return bandNames[b]
}

// Thresholds are the lower edges of the mid and high bands.
type Thresholds struct {
	Mid  float64
	High float64
}

// BandOf buckets v. Lower edges are inclusive and the highest band wins.
func BandOf(v float64, t Thresholds) Band {
	switch {
	case v >= t.High:
		return BandHigh
	case v >= t.Mid:
		return BandMid
	default:
		return BandLow
	}
}

// #endregion band

// #region millis

// Millis is a timestamp in Unix epoch milliseconds. It is the only time
// representation that crosses the persistence boundary.
type Millis int64

// MillisOf truncates t to millisecond precision.
func MillisOf(t time.Time) Millis {
	return Millis(t.UnixMilli())
}

// Time converts back to a UTC time.Time.
func (m Millis) Time() time.Time {
	return time.UnixMilli(int64(m)).UTC()
}

func (m Millis) IsZero() bool { return m == 0 }

func (m Millis) String() string {
	return m.Time().Format(time.RFC3339Nano)
}

func (m Millis) MarshalText() ([]byte, error) {
	return strconv.AppendInt(nil, int64(m), 10), nil
}

func (m *Millis) UnmarshalText(b []byte) error {
	v, err := strconv.ParseInt(string(b), 10, 64)
	if err != nil {
		return fmt.Errorf("parse millis: %w", err)
	}
	*m = Millis(v)
	return nil
}

// MarshalJSON writes a bare JSON number.
func (m Millis) MarshalJSON() ([]byte, error) {
	return m.MarshalText()
}

// UnmarshalJSON accepts a JSON number or a quoted decimal string.
func (m *Millis) UnmarshalJSON(b []byte) error {
	if len(b) >= 2 && b[0] == '"' && b[len(b)-1] == '"' {
		b = b[1 : len(b)-1]
	}
	return m.UnmarshalText(b)
}

// #endregion millis
