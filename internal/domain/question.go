package domain

import (
	"encoding/json"
	"fmt"
)

// QuestionKind is the wire tag of a question variant.
type QuestionKind string

const (
	KindMultipleChoice QuestionKind = "multiple_choice"
	KindFillIn         QuestionKind = "fill_in"
	KindListening      QuestionKind = "listening"
	KindOrdering       QuestionKind = "ordering"
)

// QuestionBody is the closed set of question variants. Only types in this package
// implement it, and every variant must supply its own evaluation rule.
type QuestionBody interface {
	Kind() QuestionKind
	evaluate(Answer) bool
}

// Option is a multiple-choice option.
type Option struct {
	ID   string `json:"id"`
	Text string `json:"text"`
}

// MultipleChoice has exactly one correct option.
type MultipleChoice struct {
	Options         []Option
	CorrectOptionID string
}

// FillIn expects a typed answer.
type FillIn struct {
	Answer string
}

// Listening expects the typed transcription of an audio clip.
type Listening struct {
	AudioURL string
	Answer   string
}

// Ordering expects the words reassembled in their original order.
type Ordering struct {
	Words []string
}

func (MultipleChoice) Kind() QuestionKind { return KindMultipleChoice }
func (FillIn) Kind() QuestionKind         { return KindFillIn }
func (Listening) Kind() QuestionKind      { return KindListening }
func (Ordering) Kind() QuestionKind       { return KindOrdering }

// Question carries the fields shared by all variants plus its variant body.
type Question struct {
	ID             string
	Prompt         string
	RelatedVocabID string
	Body           QuestionBody
}

// Kind returns the variant tag, or "" for a question without body.
func (q Question) Kind() QuestionKind {
	if q.Body == nil {
		return ""
	}
	return q.Body.Kind()
}

// questionJSON is the flat tagged shape used by seed documents.
type questionJSON struct {
	ID              string       `json:"id"`
	Type            QuestionKind `json:"type"`
	Prompt          string       `json:"prompt"`
	RelatedVocabID  string       `json:"relatedVocabId,omitempty"`
	Options         []Option     `json:"options,omitempty"`
	CorrectOptionID string       `json:"correctOptionId,omitempty"`
	Answer          string       `json:"answer,omitempty"`
	AudioURL        string       `json:"audioUrl,omitempty"`
	Words           []string     `json:"words,omitempty"`
}

func (q Question) MarshalJSON() ([]byte, error) {
	raw := questionJSON{
		ID:             q.ID,
		Prompt:         q.Prompt,
		RelatedVocabID: q.RelatedVocabID,
	}
	switch body := q.Body.(type) {
	case MultipleChoice:
		raw.Type = KindMultipleChoice
		raw.Options = body.Options
		raw.CorrectOptionID = body.CorrectOptionID
	case FillIn:
		raw.Type = KindFillIn
		raw.Answer = body.Answer
	case Listening:
		raw.Type = KindListening
		raw.AudioURL = body.AudioURL
		raw.Answer = body.Answer
	case Ordering:
		raw.Type = KindOrdering
		raw.Words = body.Words
	default:
		return nil, fmt.Errorf("question %s: %w", q.ID, ErrUnknownQuestionType)
	}
	return json.Marshal(raw)
}

func (q *Question) UnmarshalJSON(data []byte) error {
	var raw questionJSON
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	q.ID = raw.ID
	q.Prompt = raw.Prompt
	q.RelatedVocabID = raw.RelatedVocabID
	switch raw.Type {
	case KindMultipleChoice:
		q.Body = MultipleChoice{Options: raw.Options, CorrectOptionID: raw.CorrectOptionID}
	case KindFillIn:
		q.Body = FillIn{Answer: raw.Answer}
	case KindListening:
		q.Body = Listening{AudioURL: raw.AudioURL, Answer: raw.Answer}
	case KindOrdering:
		q.Body = Ordering{Words: raw.Words}
	default:
		return fmt.Errorf("question %s type %q: %w", raw.ID, raw.Type, ErrUnknownQuestionType)
	}
	return nil
}
