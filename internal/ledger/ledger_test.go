package ledger

import (
	"testing"

	"github.com/danielpatrickdp/journey-engine/internal/journey"
)

func resp(id string, a journey.Answer, layer journey.Layer) Response {
	return Response{QuestionID: id, Answer: a, ElapsedSeconds: 5, Weight: 0.5, Layer: layer, At: 1}
}

func TestAppendAndLen(t *testing.T) {
	var l Ledger
	if l.Len() != 0 {
		t.Fatalf("expected empty ledger, got %d", l.Len())
	}
	l.Append(resp("q1", journey.AnswerYes, journey.LayerValuesCheck))
	l.Append(resp("q2", journey.AnswerNo, journey.LayerDataExposure))
	if l.Len() != 2 {
		t.Fatalf("expected 2 entries, got %d", l.Len())
	}
}

func TestResponsesReturnsCopy(t *testing.T) {
	var l Ledger
	l.Append(resp("q1", journey.AnswerYes, journey.LayerValuesCheck))

	rs := l.Responses()
	rs[0].QuestionID = "mutated"

	if l.Responses()[0].QuestionID != "q1" {
		t.Fatal("mutating the returned slice must not change the ledger")
	}
}

func TestInLayerKeepsOrder(t *testing.T) {
	var l Ledger
	l.Append(resp("a", journey.AnswerYes, journey.LayerValuesCheck))
	l.Append(resp("b", journey.AnswerNo, journey.LayerCommitment))
	l.Append(resp("c", journey.AnswerUnsure, journey.LayerValuesCheck))

	got := l.InLayer(journey.LayerValuesCheck)
	if len(got) != 2 || got[0].QuestionID != "a" || got[1].QuestionID != "c" {
		t.Fatalf("unexpected values-check responses: %+v", got)
	}
	if len(l.InLayer(journey.LayerObjectionHandling)) != 0 {
		t.Fatal("expected no objection-handling responses")
	}
}

func TestFromResponsesIsolatesInput(t *testing.T) {
	src := []Response{resp("q1", journey.AnswerYes, journey.LayerValuesCheck)}
	l := FromResponses(src)
	src[0].QuestionID = "changed"
	if l.Responses()[0].QuestionID != "q1" {
		t.Fatal("ledger must own its backing slice")
	}
}

func TestAffirmativeRatio(t *testing.T) {
	var l Ledger
	if l.AffirmativeRatio() != 0 {
		t.Fatal("empty ledger ratio should be 0")
	}
	l.Append(resp("a", journey.AnswerYes, journey.LayerValuesCheck))
	l.Append(resp("b", journey.AnswerAgree, journey.LayerDataExposure))
	l.Append(resp("c", journey.AnswerNo, journey.LayerDataExposure))
	l.Append(resp("d", journey.AnswerUnsure, journey.LayerCommitment))
	if got := l.AffirmativeRatio(); got != 0.5 {
		t.Fatalf("expected 0.5, got %v", got)
	}
}
