package app

import (
	"context"

	"lingo-trainer/internal/analytics"
	"lingo-trainer/internal/domain"
)

// AttemptLister reads the full attempt history.
type AttemptLister interface {
	List(ctx context.Context) []domain.QuizAttempt
}

// ContentCatalog supplies the quizzes and achievements analytics need.
type ContentCatalog interface {
	Quizzes(ctx context.Context) []domain.Quiz
	Achievements(ctx context.Context) []domain.Achievement
}

// ActivitySeries is a view-ready activity series.
type ActivitySeries struct {
	Granularity     analytics.Granularity  `json:"granularity"`
	Points          []domain.ActivityPoint `json:"points"`
	AverageAccuracy int                    `json:"averageAccuracy"`
}

// Summary bundles the headline progress numbers.
type Summary struct {
	analytics.Stats
	Accuracy int `json:"accuracy"`
}

// ProgressService recomputes every projection from the full history on each call.
type ProgressService struct {
	attempts AttemptLister
	content  ContentCatalog
	clock    Clock
}

func NewProgressService(attempts AttemptLister, content ContentCatalog, clock Clock) *ProgressService {
	if clock == nil {
		clock = SystemClock{}
	}
	return &ProgressService{attempts: attempts, content: content, clock: clock}
}

// ActivitySeries buckets the history; a non-positive window uses the granularity default.
func (s *ProgressService) ActivitySeries(ctx context.Context, g analytics.Granularity, window int) ActivitySeries {
	if window <= 0 {
		window = g.DefaultWindow()
	}
	points := analytics.Series(g, s.attempts.List(ctx), window, s.clock.Now())
	return ActivitySeries{
		Granularity:     g,
		Points:          points,
		AverageAccuracy: analytics.AverageAccuracy(points),
	}
}

func (s *ProgressService) Streak(ctx context.Context) int {
	return analytics.CurrentStreak(s.attempts.List(ctx), s.clock.Now())
}

func (s *ProgressService) Stats(ctx context.Context) analytics.Stats {
	attempts := s.attempts.List(ctx)
	index := analytics.QuestionVocabIndex(s.content.Quizzes(ctx))
	return analytics.Stats{
		Streak:           analytics.CurrentStreak(attempts, s.clock.Now()),
		QuizzesCompleted: len(attempts),
		WordsMastered:    analytics.WordsMastered(attempts, index),
	}
}

func (s *ProgressService) AchievementStates(ctx context.Context) []domain.AchievementState {
	return analytics.EvaluateAchievements(s.content.Achievements(ctx), s.Stats(ctx))
}

// Summary reports the stats together with the daily-window accuracy.
func (s *ProgressService) Summary(ctx context.Context) Summary {
	daily := s.ActivitySeries(ctx, analytics.Daily, 0)
	return Summary{Stats: s.Stats(ctx), Accuracy: daily.AverageAccuracy}
}
