package app_test

import (
	"context"
	"errors"
	"sync"
	"time"

	"lingo-trainer/internal/app"
	"lingo-trainer/internal/domain"
	"lingo-trainer/internal/infra/memory"
	"lingo-trainer/internal/storage"

	"go.uber.org/zap"
)

// fakeClock fires timers only when advanced.
type fakeClock struct {
	mu     sync.Mutex
	now    time.Time
	timers []*fakeTimer
}

type fakeTimer struct {
	clock   *fakeClock
	at      time.Time
	f       func()
	stopped bool
	fired   bool
}

func newFakeClock(now time.Time) *fakeClock {
	return &fakeClock{now: now}
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) AfterFunc(d time.Duration, f func()) app.Timer {
	c.mu.Lock()
	defer c.mu.Unlock()
	t := &fakeTimer{clock: c, at: c.now.Add(d), f: f}
	c.timers = append(c.timers, t)
	return t
}

func (t *fakeTimer) Stop() bool {
	t.clock.mu.Lock()
	defer t.clock.mu.Unlock()
	if t.stopped || t.fired {
		return false
	}
	t.stopped = true
	return true
}

// Advance moves time forward and runs every timer that became due.
func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	c.now = c.now.Add(d)
	var due []*fakeTimer
	for _, t := range c.timers {
		if !t.stopped && !t.fired && !t.at.After(c.now) {
			t.fired = true
			due = append(due, t)
		}
	}
	c.mu.Unlock()

	for _, t := range due {
		t.f()
	}
}

// pending counts timers that may still fire.
func (c *fakeClock) pending() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	n := 0
	for _, t := range c.timers {
		if !t.stopped && !t.fired {
			n++
		}
	}
	return n
}

type staticSource struct {
	mu    sync.Mutex
	docs  map[app.SeedDocument]string
	calls map[app.SeedDocument]int
	err   error
}

func newStaticSource(docs map[app.SeedDocument]string) *staticSource {
	return &staticSource{docs: docs, calls: make(map[app.SeedDocument]int)}
}

func (s *staticSource) Fetch(_ context.Context, doc app.SeedDocument) ([]byte, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls[doc]++
	if s.err != nil {
		return nil, s.err
	}
	raw, ok := s.docs[doc]
	if !ok {
		return nil, errors.New("no such document")
	}
	return []byte(raw), nil
}

func (s *staticSource) callCount(doc app.SeedDocument) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.calls[doc]
}

func newNamespace() *storage.Namespace {
	return storage.NewNamespace(memory.NewStore(), storage.DefaultPrefix, zap.NewNop())
}

func sampleQuiz() domain.Quiz {
	return domain.Quiz{
		ID:    "quiz-1",
		Title: "Basics",
		Questions: []domain.Question{
			{
				ID:             "q1",
				Prompt:         "Pick the German word for dog",
				RelatedVocabID: "hund",
				Body: domain.MultipleChoice{
					Options:         []domain.Option{{ID: "o1", Text: "Katze"}, {ID: "o2", Text: "Hund"}},
					CorrectOptionID: "o2",
				},
			},
			{
				ID:             "q2",
				Prompt:         "Translate: house",
				RelatedVocabID: "haus",
				Body:           domain.FillIn{Answer: "Haus"},
			},
			{
				ID:     "q3",
				Prompt: "Build the sentence",
				Body:   domain.Ordering{Words: []string{"ich", "habe", "Hunger"}},
			},
		},
	}
}

func reverse(words []string) []string {
	out := make([]string, len(words))
	for i, w := range words {
		out[len(words)-1-i] = w
	}
	return out
}

var sessionStart = time.Date(2025, time.March, 12, 9, 0, 0, 0, time.UTC)
