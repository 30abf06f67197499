package app

import (
	"context"
	"time"

	"lingo-trainer/internal/domain"
	"lingo-trainer/internal/storage"
)

// AttemptPatch lists the attempt fields an administrative update may change.
// Nil fields are left untouched.
type AttemptPatch struct {
	QuizID      *string
	Timestamp   *time.Time
	DurationSec *int
	Score       *int
	Results     []domain.QuestionResult
}

func (p AttemptPatch) apply(a domain.QuizAttempt) domain.QuizAttempt {
	if p.QuizID != nil {
		a.QuizID = *p.QuizID
	}
	if p.Timestamp != nil {
		a.Timestamp = *p.Timestamp
	}
	if p.DurationSec != nil {
		d := *p.DurationSec
		a.DurationSec = &d
	}
	if p.Score != nil {
		a.Score = *p.Score
	}
	if p.Results != nil {
		a.Results = append([]domain.QuestionResult(nil), p.Results...)
	}
	return a
}

// AttemptStore owns the attempt history. Every operation reads and rewrites the full
// list and returns the resulting collection. Insertion order is chronological.
type AttemptStore struct {
	ns *storage.Namespace
}

func NewAttemptStore(ns *storage.Namespace) *AttemptStore {
	return &AttemptStore{ns: ns}
}

func (s *AttemptStore) List(ctx context.Context) []domain.QuizAttempt {
	return storage.ReadOr(ctx, s.ns, storage.KeyQuizAttempts, []domain.QuizAttempt{})
}

// ListByQuiz keeps the attempts of quizID in insertion order.
func (s *AttemptStore) ListByQuiz(ctx context.Context, quizID string) []domain.QuizAttempt {
	out := []domain.QuizAttempt{}
	for _, a := range s.List(ctx) {
		if a.QuizID == quizID {
			out = append(out, a)
		}
	}
	return out
}

func (s *AttemptStore) Append(ctx context.Context, attempt domain.QuizAttempt) []domain.QuizAttempt {
	return s.update(ctx, func(cur []domain.QuizAttempt) []domain.QuizAttempt {
		return append(cur, attempt)
	})
}

func (s *AttemptStore) Update(ctx context.Context, id string, patch AttemptPatch) []domain.QuizAttempt {
	return s.update(ctx, func(cur []domain.QuizAttempt) []domain.QuizAttempt {
		for i := range cur {
			if cur[i].ID == id {
				cur[i] = patch.apply(cur[i])
			}
		}
		return cur
	})
}

func (s *AttemptStore) Remove(ctx context.Context, id string) []domain.QuizAttempt {
	return s.update(ctx, func(cur []domain.QuizAttempt) []domain.QuizAttempt {
		out := cur[:0]
		for _, a := range cur {
			if a.ID != id {
				out = append(out, a)
			}
		}
		return out
	})
}

func (s *AttemptStore) Clear(ctx context.Context) []domain.QuizAttempt {
	empty := []domain.QuizAttempt{}
	s.ns.Write(ctx, storage.KeyQuizAttempts, empty)
	return empty
}

func (s *AttemptStore) update(ctx context.Context, fn func([]domain.QuizAttempt) []domain.QuizAttempt) []domain.QuizAttempt {
	return storage.Update(ctx, s.ns, storage.KeyQuizAttempts, []domain.QuizAttempt{}, fn)
}
