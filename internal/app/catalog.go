package app

import (
	"context"
	"encoding/json"
	"fmt"

	"lingo-trainer/internal/domain"
	"lingo-trainer/internal/storage"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/singleflight"
)

// SeedDocument names one of the read-only seed documents.
type SeedDocument string

const (
	SeedVocabulary   SeedDocument = "vocabulary"
	SeedQuizzes      SeedDocument = "quizzes"
	SeedAchievements SeedDocument = "achievements"
)

// SeedDocuments lists every document a catalogue loads.
var SeedDocuments = []SeedDocument{SeedVocabulary, SeedQuizzes, SeedAchievements}

// SeedSource fetches the raw JSON of a seed document (embedded files, HTTP, Postgres).
type SeedSource interface {
	Fetch(ctx context.Context, doc SeedDocument) ([]byte, error)
}

// Catalog serves seed content. A document is fetched once, cached in the persistence
// namespace and served from there until Reset. Fetch failures degrade to empty lists.
type Catalog struct {
	ns     *storage.Namespace
	source SeedSource
	log    *zap.Logger
	sf     singleflight.Group
}

func NewCatalog(ns *storage.Namespace, source SeedSource, log *zap.Logger) *Catalog {
	if log == nil {
		log = zap.NewNop()
	}
	return &Catalog{ns: ns, source: source, log: log}
}

func (c *Catalog) VocabularySets(ctx context.Context) []domain.VocabularySet {
	payload, err := loadDocument[domain.VocabularyPayload](ctx, c, storage.KeyVocabSets, SeedVocabulary)
	if err != nil {
		c.log.Warn("vocabulary unavailable", zap.Error(err))
		return []domain.VocabularySet{}
	}
	return payload.Sets
}

func (c *Catalog) Quizzes(ctx context.Context) []domain.Quiz {
	quizzes, err := loadDocument[[]domain.Quiz](ctx, c, storage.KeyQuizzes, SeedQuizzes)
	if err != nil {
		c.log.Warn("quizzes unavailable", zap.Error(err))
		return []domain.Quiz{}
	}
	return quizzes
}

func (c *Catalog) Achievements(ctx context.Context) []domain.Achievement {
	payload, err := loadDocument[domain.AchievementsPayload](ctx, c, storage.KeyAchievements, SeedAchievements)
	if err != nil {
		c.log.Warn("achievements unavailable", zap.Error(err))
		return []domain.Achievement{}
	}
	return payload.Achievements
}

// Quiz looks a quiz up by id.
func (c *Catalog) Quiz(ctx context.Context, quizID string) (domain.Quiz, error) {
	for _, q := range c.Quizzes(ctx) {
		if q.ID == quizID {
			return q, nil
		}
	}
	return domain.Quiz{}, domain.ErrQuizNotFound
}

// SeedAll loads every document concurrently and reports the first failure.
func (c *Catalog) SeedAll(ctx context.Context) error {
	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		_, err := loadDocument[domain.VocabularyPayload](ctx, c, storage.KeyVocabSets, SeedVocabulary)
		return err
	})
	g.Go(func() error {
		_, err := loadDocument[[]domain.Quiz](ctx, c, storage.KeyQuizzes, SeedQuizzes)
		return err
	})
	g.Go(func() error {
		_, err := loadDocument[domain.AchievementsPayload](ctx, c, storage.KeyAchievements, SeedAchievements)
		return err
	})
	return g.Wait()
}

// Reset drops the cached documents so the next read fetches them again.
func (c *Catalog) Reset(ctx context.Context) {
	c.ns.Remove(ctx, storage.KeyVocabSets)
	c.ns.Remove(ctx, storage.KeyQuizzes)
	c.ns.Remove(ctx, storage.KeyAchievements)
}

func loadDocument[T any](ctx context.Context, c *Catalog, key string, doc SeedDocument) (T, error) {
	var cached T
	if c.ns.Read(ctx, key, &cached) {
		return cached, nil
	}

	result, err, _ := c.sf.Do(key, func() (interface{}, error) {
		// Re-check in case a concurrent caller filled the cache.
		var cached T
		if c.ns.Read(ctx, key, &cached) {
			return cached, nil
		}

		raw, err := c.source.Fetch(ctx, doc)
		if err != nil {
			return nil, fmt.Errorf("fetch %s: %w", doc, err)
		}
		var payload T
		if err := json.Unmarshal(raw, &payload); err != nil {
			return nil, fmt.Errorf("decode %s: %w", doc, err)
		}
		c.ns.Write(ctx, key, payload)
		c.log.Info("seed document cached", zap.String("document", string(doc)))
		return payload, nil
	})
	if err != nil {
		var zero T
		return zero, err
	}
	return result.(T), nil
}
