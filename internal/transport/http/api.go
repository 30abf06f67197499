package http

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"lingo-trainer/internal/analytics"
	"lingo-trainer/internal/app"
	"lingo-trainer/internal/domain"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// API exposes catalogue, history and progress over JSON.
type API struct {
	catalog   *app.Catalog
	attempts  *app.AttemptStore
	progress  *app.ProgressService
	favorites *app.Favorites
	history   *app.ProgressHistory
	live      func(ctx context.Context) (int, error)
	log       *zap.Logger
	validate  *validator.Validate
}

type APIDeps struct {
	Catalog   *app.Catalog
	Attempts  *app.AttemptStore
	Progress  *app.ProgressService
	Favorites *app.Favorites
	History   *app.ProgressHistory
	// LiveSessions reports the number of open quiz sessions for /healthz. Optional.
	LiveSessions func(ctx context.Context) (int, error)
	Logger       *zap.Logger
}

func NewAPI(deps APIDeps) *API {
	log := deps.Logger
	if log == nil {
		log = zap.NewNop()
	}
	return &API{
		catalog:   deps.Catalog,
		attempts:  deps.Attempts,
		progress:  deps.Progress,
		favorites: deps.Favorites,
		history:   deps.History,
		live:      deps.LiveSessions,
		log:       log,
		validate:  validator.New(),
	}
}

// Register mounts every route on mux.
func (a *API) Register(mux *http.ServeMux) {
	mux.HandleFunc("GET /healthz", a.health)

	mux.HandleFunc("GET /api/quizzes", a.listQuizzes)
	mux.HandleFunc("GET /api/vocabulary", a.listVocabulary)
	mux.HandleFunc("POST /api/seed/reset", a.resetSeed)

	mux.HandleFunc("GET /api/attempts", a.listAttempts)
	mux.HandleFunc("DELETE /api/attempts/{id}", a.deleteAttempt)
	mux.HandleFunc("DELETE /api/attempts", a.clearAttempts)

	mux.HandleFunc("GET /api/progress/activity", a.activity)
	mux.HandleFunc("GET /api/progress/streak", a.streak)
	mux.HandleFunc("GET /api/progress/summary", a.summary)
	mux.HandleFunc("GET /api/achievements", a.achievements)

	mux.HandleFunc("GET /api/progress/history", a.listHistory)
	mux.HandleFunc("POST /api/progress/history", a.addHistory)
	mux.HandleFunc("DELETE /api/progress/history/{id}", a.deleteHistory)

	mux.HandleFunc("GET /api/favorites", a.listFavorites)
	mux.HandleFunc("POST /api/favorites/{id}", a.addFavorite)
	mux.HandleFunc("POST /api/favorites/{id}/toggle", a.toggleFavorite)
	mux.HandleFunc("DELETE /api/favorites/{id}", a.removeFavorite)
	mux.HandleFunc("DELETE /api/favorites", a.clearFavorites)
}

// quizSummary lists a quiz without its questions.
type quizSummary struct {
	ID            string `json:"id"`
	Title         string `json:"title"`
	Level         string `json:"level,omitempty"`
	QuestionCount int    `json:"questionCount"`
}

func (a *API) health(w http.ResponseWriter, r *http.Request) {
	body := map[string]any{"status": "ok"}
	if a.live != nil {
		n, err := a.live(r.Context())
		if err != nil {
			a.log.Warn("live session count failed", zap.Error(err))
			writeJSON(w, http.StatusServiceUnavailable, map[string]any{"status": "degraded", "error": err.Error()})
			return
		}
		body["sessions"] = n
	}
	writeJSON(w, http.StatusOK, body)
}

func (a *API) listQuizzes(w http.ResponseWriter, r *http.Request) {
	quizzes := a.catalog.Quizzes(r.Context())
	out := make([]quizSummary, 0, len(quizzes))
	for _, q := range quizzes {
		out = append(out, quizSummary{ID: q.ID, Title: q.Title, Level: q.Level, QuestionCount: len(q.Questions)})
	}
	writeJSON(w, http.StatusOK, out)
}

func (a *API) listVocabulary(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, a.catalog.VocabularySets(r.Context()))
}

func (a *API) resetSeed(w http.ResponseWriter, r *http.Request) {
	a.catalog.Reset(r.Context())
	if err := a.catalog.SeedAll(r.Context()); err != nil {
		a.log.Warn("reseed failed", zap.Error(err))
		writeError(w, http.StatusBadGateway, "seed content unavailable")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (a *API) listAttempts(w http.ResponseWriter, r *http.Request) {
	if quizID := r.URL.Query().Get("quizId"); quizID != "" {
		writeJSON(w, http.StatusOK, a.attempts.ListByQuiz(r.Context(), quizID))
		return
	}
	writeJSON(w, http.StatusOK, a.attempts.List(r.Context()))
}

func (a *API) deleteAttempt(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, a.attempts.Remove(r.Context(), r.PathValue("id")))
}

func (a *API) clearAttempts(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, a.attempts.Clear(r.Context()))
}

func (a *API) activity(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	g := analytics.Daily
	if raw := q.Get("granularity"); raw != "" {
		parsed, err := analytics.ParseGranularity(raw)
		if err != nil {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		g = parsed
	}
	window := 0
	if raw := q.Get("window"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 || n > 366 {
			writeError(w, http.StatusBadRequest, "window must be between 1 and 366")
			return
		}
		window = n
	}
	writeJSON(w, http.StatusOK, a.progress.ActivitySeries(r.Context(), g, window))
}

func (a *API) streak(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]int{"streak": a.progress.Streak(r.Context())})
}

func (a *API) summary(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, a.progress.Summary(r.Context()))
}

func (a *API) achievements(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, a.progress.AchievementStates(r.Context()))
}

type historyRequest struct {
	Date             string `json:"date" validate:"required,datetime=2006-01-02"`
	WordsReviewed    int    `json:"wordsReviewed" validate:"min=0"`
	QuizzesCompleted int    `json:"quizzesCompleted" validate:"min=0"`
}

func (a *API) listHistory(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, a.history.List(r.Context()))
}

func (a *API) addHistory(w http.ResponseWriter, r *http.Request) {
	var req historyRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid body")
		return
	}
	if err := a.validate.Struct(req); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) && len(verrs) > 0 {
			writeError(w, http.StatusBadRequest, "invalid field "+verrs[0].Field())
			return
		}
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	entries := a.history.Add(r.Context(), domain.ProgressEntry{
		ID:               uuid.NewString(),
		Date:             req.Date,
		WordsReviewed:    req.WordsReviewed,
		QuizzesCompleted: req.QuizzesCompleted,
	})
	writeJSON(w, http.StatusCreated, entries)
}

func (a *API) deleteHistory(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, a.history.Remove(r.Context(), r.PathValue("id")))
}

func (a *API) listFavorites(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, a.favorites.Get(r.Context()))
}

func (a *API) addFavorite(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, a.favorites.Add(r.Context(), r.PathValue("id")))
}

func (a *API) toggleFavorite(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, a.favorites.Toggle(r.Context(), r.PathValue("id")))
}

func (a *API) removeFavorite(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, a.favorites.Remove(r.Context(), r.PathValue("id")))
}

func (a *API) clearFavorites(w http.ResponseWriter, r *http.Request) {
	a.favorites.Clear(r.Context())
	w.WriteHeader(http.StatusNoContent)
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, errorPayload{Message: message})
}
