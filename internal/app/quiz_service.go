package app

import (
	"context"
	"time"

	"lingo-trainer/internal/domain"

	"go.uber.org/zap"
)

// QuizCatalog loads quiz content.
type QuizCatalog interface {
	Quizzes(ctx context.Context) []domain.Quiz
	Quiz(ctx context.Context, quizID string) (domain.Quiz, error)
}

// QuizService starts quiz sessions.
type QuizService struct {
	quizzes  QuizCatalog
	attempts AttemptRecorder
	clock    Clock
	limit    time.Duration
	log      *zap.Logger
}

func NewQuizService(quizzes QuizCatalog, attempts AttemptRecorder, clock Clock, limit time.Duration, log *zap.Logger) *QuizService {
	if log == nil {
		log = zap.NewNop()
	}
	return &QuizService{quizzes: quizzes, attempts: attempts, clock: clock, limit: limit, log: log}
}

// Quizzes lists the catalogue.
func (s *QuizService) Quizzes(ctx context.Context) []domain.Quiz {
	return s.quizzes.Quizzes(ctx)
}

// StartSession creates a fresh controller for quizID. onExpire may be nil.
// Unknown quizzes and quizzes without questions cannot be started.
func (s *QuizService) StartSession(ctx context.Context, quizID string, onExpire func(Snapshot)) (*Controller, error) {
	quiz, err := s.quizzes.Quiz(ctx, quizID)
	if err != nil {
		return nil, err
	}
	if len(quiz.Questions) == 0 {
		return nil, domain.ErrNoQuestions
	}
	s.log.Info("quiz session started", zap.String("quiz_id", quizID), zap.Int("questions", len(quiz.Questions)))
	return NewController(quiz, s.attempts, SessionOptions{
		QuestionLimit: s.limit,
		Clock:         s.clock,
		OnExpire:      onExpire,
		Logger:        s.log,
	}), nil
}
