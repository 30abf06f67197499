package httpseed

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"lingo-trainer/internal/app"
	"lingo-trainer/internal/infra/memory"
	"lingo-trainer/internal/storage"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFetchServesDocumentsFromBasePath(t *testing.T) {
	var paths []string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		paths = append(paths, r.URL.Path)
		if r.URL.Path != "/mock/quizzes.json" {
			http.NotFound(w, r)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`[{"id":"quiz-1","title":"One","questions":[]}]`))
	}))
	defer srv.Close()

	source, err := NewSource(srv.URL+"/mock", time.Second)
	require.NoError(t, err)

	raw, err := source.Fetch(context.Background(), app.SeedQuizzes)
	require.NoError(t, err)
	assert.JSONEq(t, `[{"id":"quiz-1","title":"One","questions":[]}]`, string(raw))

	_, err = source.Fetch(context.Background(), app.SeedAchievements)
	assert.Error(t, err)
	assert.Equal(t, []string{"/mock/quizzes.json", "/mock/achievements.json"}, paths)
}

func TestCatalogOverHTTPDegradesOnServerError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	source, err := NewSource(srv.URL, time.Second)
	require.NoError(t, err)
	ns := storage.NewNamespace(memory.NewStore(), storage.DefaultPrefix, nil)
	catalog := app.NewCatalog(ns, source, nil)

	assert.Empty(t, catalog.Quizzes(context.Background()))
	assert.Empty(t, catalog.VocabularySets(context.Background()))
}

func TestNewSourceRejectsBadURL(t *testing.T) {
	_, err := NewSource("ftp://example.com/seed", time.Second)
	assert.Error(t, err)
	_, err = NewSource("://nope", time.Second)
	assert.Error(t, err)
}
