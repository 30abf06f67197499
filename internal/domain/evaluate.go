package domain

import "strings"

// Answer is the learner's answer in progress. Which field matters depends on the
// question variant.
type Answer struct {
	OptionID string   `json:"optionId,omitempty"`
	Text     string   `json:"text,omitempty"`
	Words    []string `json:"words,omitempty"`
}

// Evaluate judges the answer. A question without body is never answered correctly.
func (q Question) Evaluate(a Answer) bool {
	if q.Body == nil {
		return false
	}
	return q.Body.evaluate(a)
}

// Result builds the recorded outcome for this question and answer.
func (q Question) Result(a Answer) QuestionResult {
	res := QuestionResult{
		QuestionID: q.ID,
		Correct:    q.Evaluate(a),
	}
	switch q.Kind() {
	case KindMultipleChoice:
		res.SelectedOptionID = a.OptionID
	case KindOrdering:
		res.UserAnswer = strings.Join(a.Words, " ")
	default:
		res.UserAnswer = a.Text
	}
	return res
}

func (m MultipleChoice) evaluate(a Answer) bool {
	return a.OptionID != "" && a.OptionID == m.CorrectOptionID
}

func (f FillIn) evaluate(a Answer) bool {
	return normalizeText(a.Text) == normalizeText(f.Answer)
}

func (l Listening) evaluate(a Answer) bool {
	return normalizeText(a.Text) == normalizeText(l.Answer)
}

// Correctness is checked against the original word order, never the presented one.
func (o Ordering) evaluate(a Answer) bool {
	return strings.Join(a.Words, " ") == strings.Join(o.Words, " ")
}

func normalizeText(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}
