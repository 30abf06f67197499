package app

import (
	"context"
	"slices"

	"lingo-trainer/internal/storage"
)

// Favorites is the set of favourite vocabulary item ids, kept in insertion order.
type Favorites struct {
	ns *storage.Namespace
}

func NewFavorites(ns *storage.Namespace) *Favorites {
	return &Favorites{ns: ns}
}

func (f *Favorites) Get(ctx context.Context) []string {
	return storage.ReadOr(ctx, f.ns, storage.KeyFavorites, []string{})
}

// Set stores ids with duplicates removed.
func (f *Favorites) Set(ctx context.Context, ids []string) []string {
	return f.update(ctx, func([]string) []string { return ids })
}

func (f *Favorites) Add(ctx context.Context, id string) []string {
	return f.update(ctx, func(cur []string) []string { return append(cur, id) })
}

func (f *Favorites) Remove(ctx context.Context, id string) []string {
	return f.update(ctx, func(cur []string) []string {
		return slices.DeleteFunc(cur, func(x string) bool { return x == id })
	})
}

func (f *Favorites) Toggle(ctx context.Context, id string) []string {
	return f.update(ctx, func(cur []string) []string {
		if slices.Contains(cur, id) {
			return slices.DeleteFunc(cur, func(x string) bool { return x == id })
		}
		return append(cur, id)
	})
}

func (f *Favorites) IsFavorite(ctx context.Context, id string) bool {
	return slices.Contains(f.Get(ctx), id)
}

func (f *Favorites) Clear(ctx context.Context) {
	f.Set(ctx, nil)
}

func (f *Favorites) update(ctx context.Context, fn func([]string) []string) []string {
	return storage.Update(ctx, f.ns, storage.KeyFavorites, []string{}, func(cur []string) []string {
		next := fn(cur)
		unique := make([]string, 0, len(next))
		for _, id := range next {
			if !slices.Contains(unique, id) {
				unique = append(unique, id)
			}
		}
		return unique
	})
}
