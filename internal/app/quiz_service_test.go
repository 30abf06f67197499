package app_test

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"lingo-trainer/internal/analytics"
	"lingo-trainer/internal/app"
	"lingo-trainer/internal/domain"
	"lingo-trainer/internal/storage"
)

const quizzesDoc = `[
	{"id":"quiz-1","title":"Animals","questions":[
		{"id":"q1","type":"multiple_choice","prompt":"dog","relatedVocabId":"hund",
		 "options":[{"id":"o1","text":"Katze"},{"id":"o2","text":"Hund"}],"correctOptionId":"o2"},
		{"id":"q2","type":"fill_in","prompt":"cat","relatedVocabId":"katze","answer":"Katze"}
	]},
	{"id":"quiz-2","title":"Sentences","questions":[
		{"id":"q3","type":"ordering","prompt":"build it","words":["ich","bin","hier"]}
	]}
]`

const achievementsDoc = `{"version":1,"achievements":[
	{"id":"first","title":"First quiz","description":"","criteria":{"type":"quizzes_completed","target":1}},
	{"id":"words","title":"Three words","description":"","criteria":{"type":"words_mastered","target":3}},
	{"id":"odd","title":"Mystery","description":"","criteria":{"type":"perfect_scores","target":1}}
]}`

const vocabularyDoc = `{"version":1,"sets":[{"id":"animals","title":"Animals","items":[
	{"id":"hund","term":"Hund","translation":"dog"},{"id":"katze","term":"Katze","translation":"cat"}
]}]}`

func seedDocs() map[app.SeedDocument]string {
	return map[app.SeedDocument]string{
		app.SeedVocabulary:   vocabularyDoc,
		app.SeedQuizzes:      quizzesDoc,
		app.SeedAchievements: achievementsDoc,
	}
}

func attempt(id, quizID string, ts time.Time, results ...domain.QuestionResult) domain.QuizAttempt {
	a := domain.QuizAttempt{ID: id, QuizID: quizID, Timestamp: ts, Results: results}
	a.Score = a.CorrectCount()
	return a
}

func TestAttemptStoreKeepsInsertionOrder(t *testing.T) {
	ctx := context.Background()
	store := app.NewAttemptStore(newNamespace())

	if got := store.List(ctx); got == nil || len(got) != 0 {
		t.Fatalf("expected empty non-nil history, got %#v", got)
	}

	store.Append(ctx, attempt("a1", "quiz-1", sessionStart))
	store.Append(ctx, attempt("a2", "quiz-2", sessionStart.Add(time.Hour)))
	all := store.Append(ctx, attempt("a3", "quiz-1", sessionStart.Add(2*time.Hour)))
	if len(all) != 3 {
		t.Fatalf("expected 3 attempts, got %d", len(all))
	}

	byQuiz := store.ListByQuiz(ctx, "quiz-1")
	if len(byQuiz) != 2 || byQuiz[0].ID != "a1" || byQuiz[1].ID != "a3" {
		t.Fatalf("unexpected per-quiz history: %+v", byQuiz)
	}
	if got := store.ListByQuiz(ctx, "missing"); len(got) != 0 {
		t.Fatalf("expected no attempts for unknown quiz, got %d", len(got))
	}
}

func TestAttemptStoreConcurrentAppendsAreAllKept(t *testing.T) {
	ctx := context.Background()
	store := app.NewAttemptStore(newNamespace())

	const n = 200
	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			store.Append(ctx, domain.QuizAttempt{ID: fmt.Sprintf("a%d", i), QuizID: "quiz-1"})
		}(i)
	}
	wg.Wait()

	if got := len(store.List(ctx)); got != n {
		t.Fatalf("appended %d attempts concurrently, stored %d", n, got)
	}
}

func TestFavoritesConcurrentTogglesAreAllKept(t *testing.T) {
	ctx := context.Background()
	favorites := app.NewFavorites(newNamespace())

	const n = 100
	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			favorites.Toggle(ctx, fmt.Sprintf("v%d", i))
		}(i)
	}
	wg.Wait()

	if got := len(favorites.Get(ctx)); got != n {
		t.Fatalf("toggled %d ids concurrently, stored %d", n, got)
	}
}

func TestAttemptStoreUpdateRemoveClear(t *testing.T) {
	ctx := context.Background()
	store := app.NewAttemptStore(newNamespace())
	store.Append(ctx, attempt("a1", "quiz-1", sessionStart))
	store.Append(ctx, attempt("a2", "quiz-1", sessionStart))

	score := 7
	updated := store.Update(ctx, "a2", app.AttemptPatch{Score: &score})
	if updated[1].Score != 7 || updated[0].Score != 0 {
		t.Fatalf("patch applied to wrong attempt: %+v", updated)
	}
	if unchanged := store.Update(ctx, "nope", app.AttemptPatch{Score: &score}); len(unchanged) != 2 {
		t.Fatalf("unknown id must leave the history intact, got %d", len(unchanged))
	}

	left := store.Remove(ctx, "a1")
	if len(left) != 1 || left[0].ID != "a2" {
		t.Fatalf("unexpected history after remove: %+v", left)
	}
	if got := store.List(ctx); len(got) != 1 {
		t.Fatalf("remove not persisted, got %d", len(got))
	}

	store.Clear(ctx)
	if got := store.List(ctx); len(got) != 0 {
		t.Fatalf("expected cleared history, got %d", len(got))
	}
}

func TestFavorites(t *testing.T) {
	ctx := context.Background()
	favs := app.NewFavorites(newNamespace())

	favs.Add(ctx, "hund")
	favs.Add(ctx, "katze")
	if got := favs.Add(ctx, "hund"); len(got) != 2 {
		t.Fatalf("duplicates must collapse, got %v", got)
	}
	if !favs.IsFavorite(ctx, "katze") {
		t.Fatalf("expected katze to be a favourite")
	}
	if got := favs.Toggle(ctx, "katze"); len(got) != 1 || got[0] != "hund" {
		t.Fatalf("toggle should remove katze, got %v", got)
	}
	if got := favs.Toggle(ctx, "maus"); len(got) != 2 || got[1] != "maus" {
		t.Fatalf("toggle should append maus, got %v", got)
	}
	if got := favs.Set(ctx, []string{"a", "b", "a"}); len(got) != 2 {
		t.Fatalf("set must dedupe, got %v", got)
	}
	favs.Clear(ctx)
	if got := favs.Get(ctx); len(got) != 0 {
		t.Fatalf("expected no favourites, got %v", got)
	}
}

func TestProgressHistory(t *testing.T) {
	ctx := context.Background()
	history := app.NewProgressHistory(newNamespace())

	history.Add(ctx, domain.ProgressEntry{ID: "p1", Date: "2025-03-10", WordsReviewed: 10})
	history.Add(ctx, domain.ProgressEntry{ID: "p2", Date: "2025-03-11", WordsReviewed: 4})

	words := 12
	got := history.Update(ctx, "p1", app.ProgressPatch{WordsReviewed: &words})
	if got[0].WordsReviewed != 12 || got[0].Date != "2025-03-10" {
		t.Fatalf("unexpected entry after update: %+v", got[0])
	}

	got = history.Remove(ctx, "p1")
	if len(got) != 1 || got[0].ID != "p2" {
		t.Fatalf("unexpected entries after remove: %+v", got)
	}

	history.Clear(ctx)
	if got := history.List(ctx); len(got) != 0 {
		t.Fatalf("expected empty history, got %d", len(got))
	}
}

func TestCatalogCachesSeedDocuments(t *testing.T) {
	ctx := context.Background()
	ns := newNamespace()
	source := newStaticSource(seedDocs())
	catalog := app.NewCatalog(ns, source, nil)

	if got := catalog.Quizzes(ctx); len(got) != 2 {
		t.Fatalf("expected 2 quizzes, got %d", len(got))
	}
	if got := catalog.Quizzes(ctx); len(got) != 2 {
		t.Fatalf("expected 2 quizzes from cache, got %d", len(got))
	}
	if n := source.callCount(app.SeedQuizzes); n != 1 {
		t.Fatalf("expected a single fetch, got %d", n)
	}

	var cached []domain.Quiz
	if !ns.Read(ctx, storage.KeyQuizzes, &cached) || len(cached) != 2 {
		t.Fatalf("expected quizzes cached in the namespace")
	}

	quiz, err := catalog.Quiz(ctx, "quiz-2")
	if err != nil {
		t.Fatalf("lookup failed: %v", err)
	}
	if quiz.Questions[0].Kind() != domain.KindOrdering {
		t.Fatalf("expected an ordering question, got %s", quiz.Questions[0].Kind())
	}

	catalog.Reset(ctx)
	catalog.Quizzes(ctx)
	if n := source.callCount(app.SeedQuizzes); n != 2 {
		t.Fatalf("expected refetch after reset, got %d fetches", n)
	}
}

func TestCatalogCollapsesConcurrentLoads(t *testing.T) {
	ctx := context.Background()
	source := newStaticSource(seedDocs())
	catalog := app.NewCatalog(newNamespace(), source, nil)

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			catalog.VocabularySets(ctx)
		}()
	}
	wg.Wait()

	if n := source.callCount(app.SeedVocabulary); n < 1 || n > 8 {
		t.Fatalf("unexpected fetch count %d", n)
	}
	if got := catalog.VocabularySets(ctx); len(got) != 1 || len(got[0].Items) != 2 {
		t.Fatalf("unexpected vocabulary: %+v", got)
	}
}

func TestCatalogDegradesToEmptyOnFailure(t *testing.T) {
	ctx := context.Background()
	source := newStaticSource(seedDocs())
	source.err = errors.New("network down")
	catalog := app.NewCatalog(newNamespace(), source, nil)

	if got := catalog.Quizzes(ctx); got == nil || len(got) != 0 {
		t.Fatalf("expected empty quiz list, got %#v", got)
	}
	if got := catalog.VocabularySets(ctx); len(got) != 0 {
		t.Fatalf("expected empty vocabulary, got %d", len(got))
	}
	if got := catalog.Achievements(ctx); len(got) != 0 {
		t.Fatalf("expected empty achievements, got %d", len(got))
	}
	if _, err := catalog.Quiz(ctx, "quiz-1"); !errors.Is(err, domain.ErrQuizNotFound) {
		t.Fatalf("expected ErrQuizNotFound, got %v", err)
	}
	if err := catalog.SeedAll(ctx); err == nil {
		t.Fatalf("expected seeding to report the failure")
	}

	// A later successful fetch is cached normally.
	source.mu.Lock()
	source.err = nil
	source.mu.Unlock()
	if got := catalog.Quizzes(ctx); len(got) != 2 {
		t.Fatalf("expected recovery, got %d quizzes", len(got))
	}
}

func TestCatalogSeedAll(t *testing.T) {
	ctx := context.Background()
	source := newStaticSource(seedDocs())
	catalog := app.NewCatalog(newNamespace(), source, nil)

	if err := catalog.SeedAll(ctx); err != nil {
		t.Fatalf("seed failed: %v", err)
	}
	for _, doc := range app.SeedDocuments {
		if n := source.callCount(doc); n != 1 {
			t.Fatalf("expected %s fetched once, got %d", doc, n)
		}
	}
	catalog.Achievements(ctx)
	if n := source.callCount(app.SeedAchievements); n != 1 {
		t.Fatalf("expected achievements served from cache, got %d fetches", n)
	}
}

func TestCatalogRejectsUnknownQuestionType(t *testing.T) {
	ctx := context.Background()
	source := newStaticSource(map[app.SeedDocument]string{
		app.SeedQuizzes: `[{"id":"x","title":"x","questions":[{"id":"q","type":"drawing","prompt":"?"}]}]`,
	})
	catalog := app.NewCatalog(newNamespace(), source, nil)

	if err := catalog.SeedAll(ctx); !errors.Is(err, domain.ErrUnknownQuestionType) {
		t.Fatalf("expected ErrUnknownQuestionType, got %v", err)
	}
}

func TestProgressServiceDerivesEverythingFromHistory(t *testing.T) {
	ctx := context.Background()
	ns := newNamespace()
	catalog := app.NewCatalog(ns, newStaticSource(seedDocs()), nil)
	attempts := app.NewAttemptStore(ns)
	now := time.Date(2025, time.March, 12, 18, 0, 0, 0, time.UTC)
	progress := app.NewProgressService(attempts, catalog, newFakeClock(now))

	attempts.Append(ctx, attempt("a1", "quiz-1", now.AddDate(0, 0, -1),
		domain.QuestionResult{QuestionID: "q1", Correct: true},
		domain.QuestionResult{QuestionID: "q2", Correct: false},
	))
	attempts.Append(ctx, attempt("a2", "quiz-1", now.Add(-time.Hour),
		domain.QuestionResult{QuestionID: "q1", Correct: true},
		domain.QuestionResult{QuestionID: "q2", Correct: true},
	))

	series := progress.ActivitySeries(ctx, analytics.Daily, 0)
	if len(series.Points) != analytics.DefaultDays {
		t.Fatalf("expected %d daily points, got %d", analytics.DefaultDays, len(series.Points))
	}
	today := series.Points[len(series.Points)-1]
	if today.Sessions != 1 || today.Correct != 2 || today.Total != 2 {
		t.Fatalf("unexpected today bucket: %+v", today)
	}
	if series.AverageAccuracy != 75 {
		t.Fatalf("expected 75%% accuracy, got %d", series.AverageAccuracy)
	}

	weekly := progress.ActivitySeries(ctx, analytics.Weekly, 3)
	if len(weekly.Points) != 3 || weekly.Points[2].Sessions != 2 {
		t.Fatalf("unexpected weekly series: %+v", weekly.Points)
	}

	if s := progress.Streak(ctx); s != 2 {
		t.Fatalf("expected streak 2, got %d", s)
	}

	stats := progress.Stats(ctx)
	if stats.QuizzesCompleted != 2 || stats.WordsMastered != 2 {
		t.Fatalf("unexpected stats: %+v", stats)
	}

	states := progress.AchievementStates(ctx)
	unlocked := map[string]bool{}
	for _, s := range states {
		unlocked[s.ID] = s.Unlocked
	}
	if !unlocked["first"] || unlocked["words"] || unlocked["odd"] {
		t.Fatalf("unexpected achievement states: %+v", states)
	}

	summary := progress.Summary(ctx)
	if summary.Streak != 2 || summary.Accuracy != 75 {
		t.Fatalf("unexpected summary: %+v", summary)
	}
}
