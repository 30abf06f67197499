package app

import (
	"context"

	"lingo-trainer/internal/domain"
	"lingo-trainer/internal/storage"
)

// ProgressPatch changes selected fields of a progress entry.
type ProgressPatch struct {
	Date             *string
	WordsReviewed    *int
	QuizzesCompleted *int
}

// ProgressHistory is the manually tracked study log.
type ProgressHistory struct {
	ns *storage.Namespace
}

func NewProgressHistory(ns *storage.Namespace) *ProgressHistory {
	return &ProgressHistory{ns: ns}
}

func (h *ProgressHistory) List(ctx context.Context) []domain.ProgressEntry {
	return storage.ReadOr(ctx, h.ns, storage.KeyProgressHistory, []domain.ProgressEntry{})
}

func (h *ProgressHistory) Add(ctx context.Context, entry domain.ProgressEntry) []domain.ProgressEntry {
	return h.update(ctx, func(cur []domain.ProgressEntry) []domain.ProgressEntry {
		return append(cur, entry)
	})
}

func (h *ProgressHistory) Update(ctx context.Context, id string, patch ProgressPatch) []domain.ProgressEntry {
	return h.update(ctx, func(cur []domain.ProgressEntry) []domain.ProgressEntry {
		for i := range cur {
			if cur[i].ID != id {
				continue
			}
			if patch.Date != nil {
				cur[i].Date = *patch.Date
			}
			if patch.WordsReviewed != nil {
				cur[i].WordsReviewed = *patch.WordsReviewed
			}
			if patch.QuizzesCompleted != nil {
				cur[i].QuizzesCompleted = *patch.QuizzesCompleted
			}
		}
		return cur
	})
}

func (h *ProgressHistory) Remove(ctx context.Context, id string) []domain.ProgressEntry {
	return h.update(ctx, func(cur []domain.ProgressEntry) []domain.ProgressEntry {
		out := cur[:0]
		for _, e := range cur {
			if e.ID != id {
				out = append(out, e)
			}
		}
		return out
	})
}

func (h *ProgressHistory) Clear(ctx context.Context) {
	h.ns.Write(ctx, storage.KeyProgressHistory, []domain.ProgressEntry{})
}

func (h *ProgressHistory) update(ctx context.Context, fn func([]domain.ProgressEntry) []domain.ProgressEntry) []domain.ProgressEntry {
	return storage.Update(ctx, h.ns, storage.KeyProgressHistory, []domain.ProgressEntry{}, fn)
}
