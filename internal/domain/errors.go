package domain

import "errors"

var (
	// ErrQuizNotFound indicates the quiz id is absent from the loaded catalogue.
	ErrQuizNotFound = errors.New("quiz not found")
	// ErrNoQuestions is returned when a quiz cannot be driven because it has no questions.
	ErrNoQuestions = errors.New("quiz has no questions")
	// ErrNotSubmitted is returned when advancing past a question that was not submitted yet.
	ErrNotSubmitted = errors.New("question not submitted")
	// ErrSessionCompleted is returned for any transition attempted after completion.
	ErrSessionCompleted = errors.New("quiz session already completed")
	// ErrSessionClosed is returned for any transition attempted after the session was abandoned.
	ErrSessionClosed = errors.New("quiz session closed")
	// ErrUnknownQuestionType indicates seed content carries a question kind this build cannot evaluate.
	ErrUnknownQuestionType = errors.New("unknown question type")
)
