package storage

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"sync"

	"go.uber.org/zap"
)

// ErrNotFound is returned by a Store for a key that holds no value.
var ErrNotFound = errors.New("storage: key not found")

// Logical keys, relative to the namespace prefix.
const (
	KeyVocabSets       = "vocab_sets"
	KeyQuizzes         = "quizzes"
	KeyAchievements    = "achievements"
	KeyFavorites       = "favorites"
	KeyQuizAttempts    = "quiz_attempts"
	KeyProgressHistory = "progress_history"
)

// DefaultPrefix namespaces every key written by the trainer.
const DefaultPrefix = "ll_"

// Store is the raw key-value substrate (memory, SQLite file, Redis).
type Store interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte) error
	Delete(ctx context.Context, key string) error
}

// Namespace serialises structured values into a Store under a key prefix.
// Reads of missing or corrupt keys report false so callers fall back to their
// default; failing writes are logged and dropped.
//
// Writes to one key are serialised within the process, and Update holds the
// key across its read-modify-write.
type Namespace struct {
	store  Store
	prefix string
	log    *zap.Logger
	locks  sync.Map // key -> *sync.Mutex
}

func NewNamespace(store Store, prefix string, log *zap.Logger) *Namespace {
	if log == nil {
		log = zap.NewNop()
	}
	return &Namespace{store: store, prefix: prefix, log: log}
}

func (n *Namespace) key(k string) string {
	return n.prefix + k
}

func (n *Namespace) lock(key string) func() {
	mu, _ := n.locks.LoadOrStore(key, &sync.Mutex{})
	m := mu.(*sync.Mutex)
	m.Lock()
	return m.Unlock
}

// Read decodes the value under key into dest and reports whether it succeeded.
func (n *Namespace) Read(ctx context.Context, key string, dest any) bool {
	raw, err := n.store.Get(ctx, n.key(key))
	if err != nil {
		if !errors.Is(err, ErrNotFound) {
			n.log.Warn("storage read failed", zap.String("key", n.key(key)), zap.Error(err))
		}
		return false
	}
	if trimmed := bytes.TrimSpace(raw); len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
		return false
	}
	if err := json.Unmarshal(raw, dest); err != nil {
		n.log.Warn("storage value corrupt", zap.String("key", n.key(key)), zap.Error(err))
		return false
	}
	return true
}

// Write encodes value under key. Errors are logged, never returned.
func (n *Namespace) Write(ctx context.Context, key string, value any) {
	defer n.lock(key)()
	n.write(ctx, key, value)
}

func (n *Namespace) write(ctx context.Context, key string, value any) {
	raw, err := json.Marshal(value)
	if err != nil {
		n.log.Warn("storage encode failed", zap.String("key", n.key(key)), zap.Error(err))
		return
	}
	if err := n.store.Set(ctx, n.key(key), raw); err != nil {
		n.log.Warn("storage write dropped", zap.String("key", n.key(key)), zap.Error(err))
	}
}

// Remove deletes key. Errors are logged, never returned.
func (n *Namespace) Remove(ctx context.Context, key string) {
	defer n.lock(key)()
	if err := n.store.Delete(ctx, n.key(key)); err != nil && !errors.Is(err, ErrNotFound) {
		n.log.Warn("storage remove failed", zap.String("key", n.key(key)), zap.Error(err))
	}
}

// ReadOr returns the decoded value under key, or fallback.
func ReadOr[T any](ctx context.Context, n *Namespace, key string, fallback T) T {
	var v T
	if !n.Read(ctx, key, &v) {
		return fallback
	}
	return v
}

// Update reads the value (or fallback), applies fn and writes the result back.
// Concurrent updates of one key run one after another; fn must not touch the
// namespace.
func Update[T any](ctx context.Context, n *Namespace, key string, fallback T, fn func(T) T) T {
	defer n.lock(key)()
	next := fn(ReadOr(ctx, n, key, fallback))
	n.write(ctx, key, next)
	return next
}
