package storage_test

import (
	"context"
	"errors"
	"sync"
	"testing"

	"lingo-trainer/internal/infra/memory"
	"lingo-trainer/internal/storage"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestReadFallsBackOnMissingAndCorruptKeys(t *testing.T) {
	ctx := context.Background()
	store := memory.NewStore()
	ns := storage.NewNamespace(store, storage.DefaultPrefix, zap.NewNop())

	assert.Equal(t, []string{"x"}, storage.ReadOr(ctx, ns, storage.KeyFavorites, []string{"x"}))

	require.NoError(t, store.Set(ctx, "ll_favorites", []byte("{not json")))
	assert.Equal(t, []string{"x"}, storage.ReadOr(ctx, ns, storage.KeyFavorites, []string{"x"}))
}

func TestWriteUsesPrefixAndRoundTrips(t *testing.T) {
	ctx := context.Background()
	store := memory.NewStore()
	ns := storage.NewNamespace(store, "test_", zap.NewNop())

	ns.Write(ctx, storage.KeyFavorites, []string{"v1", "v2"})
	assert.Equal(t, []string{"test_favorites"}, store.Keys())
	assert.Equal(t, []string{"v1", "v2"}, storage.ReadOr[[]string](ctx, ns, storage.KeyFavorites, nil))

	ns.Remove(ctx, storage.KeyFavorites)
	assert.Empty(t, store.Keys())
}

func TestUpdateAppliesToFallback(t *testing.T) {
	ctx := context.Background()
	ns := storage.NewNamespace(memory.NewStore(), storage.DefaultPrefix, nil)

	got := storage.Update(ctx, ns, storage.KeyFavorites, []string{}, func(cur []string) []string {
		return append(cur, "v1")
	})
	assert.Equal(t, []string{"v1"}, got)

	got = storage.Update(ctx, ns, storage.KeyFavorites, []string{}, func(cur []string) []string {
		return append(cur, "v2")
	})
	assert.Equal(t, []string{"v1", "v2"}, got)
}

func TestReadFallsBackOnStoredNull(t *testing.T) {
	ctx := context.Background()
	store := memory.NewStore()
	ns := storage.NewNamespace(store, storage.DefaultPrefix, zap.NewNop())

	require.NoError(t, store.Set(ctx, "ll_favorites", []byte(" null\n")))
	got := storage.ReadOr(ctx, ns, storage.KeyFavorites, []string{})
	require.NotNil(t, got)
	assert.Empty(t, got)

	ns.Write(ctx, storage.KeyQuizAttempts, []int(nil))
	assert.Equal(t, []int{}, storage.ReadOr(ctx, ns, storage.KeyQuizAttempts, []int{}))
}

func TestConcurrentUpdatesOfOneKeyAreSerialised(t *testing.T) {
	ctx := context.Background()
	ns := storage.NewNamespace(memory.NewStore(), storage.DefaultPrefix, zap.NewNop())

	const n = 300
	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			storage.Update(ctx, ns, storage.KeyQuizAttempts, []int{}, func(cur []int) []int {
				return append(cur, i)
			})
		}(i)
	}
	wg.Wait()

	assert.Len(t, storage.ReadOr(ctx, ns, storage.KeyQuizAttempts, []int{}), n)
}

func TestFailingStoreIsSwallowed(t *testing.T) {
	ctx := context.Background()
	ns := storage.NewNamespace(brokenStore{}, storage.DefaultPrefix, zap.NewNop())

	ns.Write(ctx, storage.KeyQuizAttempts, []int{1})
	ns.Remove(ctx, storage.KeyQuizAttempts)
	assert.Equal(t, 7, storage.ReadOr(ctx, ns, storage.KeyQuizAttempts, 7))
}

type brokenStore struct{}

var errQuota = errors.New("quota exceeded")

func (brokenStore) Get(context.Context, string) ([]byte, error) { return nil, errQuota }
func (brokenStore) Set(context.Context, string, []byte) error   { return errQuota }
func (brokenStore) Delete(context.Context, string) error        { return errQuota }
