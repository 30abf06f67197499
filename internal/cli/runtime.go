package cli

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"lingo-trainer/internal/app"
	"lingo-trainer/internal/config"
	"lingo-trainer/internal/infra/httpseed"
	"lingo-trainer/internal/infra/memory"
	pgseed "lingo-trainer/internal/infra/postgres"
	infraredis "lingo-trainer/internal/infra/redis"
	"lingo-trainer/internal/infra/sqlite"
	"lingo-trainer/internal/storage"

	"github.com/jackc/pgx/v4/pgxpool"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// runtime holds the components shared by the commands.
type runtime struct {
	cfg      config.Config
	log      *zap.Logger
	clock    app.SystemClock
	ns       *storage.Namespace
	catalog  *app.Catalog
	attempts *app.AttemptStore
	progress *app.ProgressService
	redis    *redis.Client
	closers  []func()
}

func newRuntime(ctx context.Context, cfg config.Config, log *zap.Logger) (*runtime, error) {
	loc, err := cfg.Location()
	if err != nil {
		return nil, fmt.Errorf("analytics timezone: %w", err)
	}
	rt := &runtime{cfg: cfg, log: log, clock: app.SystemClock{Location: loc}}

	store, err := rt.openStore(ctx)
	if err != nil {
		rt.Close()
		return nil, err
	}
	source, err := rt.openSeedSource(ctx)
	if err != nil {
		rt.Close()
		return nil, err
	}

	rt.ns = storage.NewNamespace(store, cfg.Storage.Namespace, log.Named("storage"))
	rt.catalog = app.NewCatalog(rt.ns, source, log.Named("catalog"))
	rt.attempts = app.NewAttemptStore(rt.ns)
	rt.progress = app.NewProgressService(rt.attempts, rt.catalog, rt.clock)
	return rt, nil
}

func (rt *runtime) openStore(ctx context.Context) (storage.Store, error) {
	switch rt.cfg.Storage.Backend {
	case "sqlite":
		path := rt.cfg.Storage.SQLitePath
		if dir := filepath.Dir(path); dir != "." {
			if err := os.MkdirAll(dir, 0o755); err != nil {
				return nil, fmt.Errorf("create sqlite dir: %w", err)
			}
		}
		store, err := sqlite.Open(ctx, path)
		if err != nil {
			return nil, err
		}
		rt.closers = append(rt.closers, func() { _ = store.Close() })
		rt.log.Info("using sqlite store", zap.String("path", path))
		return store, nil
	case "redis":
		client, err := rt.redisClient(ctx)
		if err != nil {
			return nil, err
		}
		rt.log.Info("using redis store", zap.String("addr", rt.cfg.Redis.Addr))
		return infraredis.NewStore(client), nil
	default:
		rt.log.Info("using in-memory store; history is lost on exit")
		return memory.NewStore(), nil
	}
}

func (rt *runtime) redisClient(ctx context.Context) (*redis.Client, error) {
	if rt.redis != nil {
		return rt.redis, nil
	}
	client := infraredis.NewClient(rt.cfg.Redis.Addr, rt.cfg.Redis.Password, rt.cfg.Redis.DB)
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("ping redis: %w", err)
	}
	rt.redis = client
	rt.closers = append(rt.closers, func() { _ = client.Close() })
	return client, nil
}

func (rt *runtime) openSeedSource(ctx context.Context) (app.SeedSource, error) {
	cacheTTL := config.Duration(rt.cfg.Seed.CacheTTL, 10*time.Minute)
	switch rt.cfg.Seed.Source {
	case "http":
		source, err := httpseed.NewSource(rt.cfg.Seed.BaseURL, config.Duration(rt.cfg.Seed.Timeout, 5*time.Second))
		if err != nil {
			return nil, err
		}
		return memory.NewCachedSource(source, cacheTTL), nil
	case "postgres":
		pool, err := pgxpool.Connect(ctx, rt.cfg.Postgres.URL)
		if err != nil {
			return nil, fmt.Errorf("connect postgres: %w", err)
		}
		rt.closers = append(rt.closers, pool.Close)
		return memory.NewCachedSource(pgseed.NewSeedSource(pool), cacheTTL), nil
	default:
		return memory.NewSeedSource(), nil
	}
}

// Close releases connections in reverse order of opening.
func (rt *runtime) Close() {
	for i := len(rt.closers) - 1; i >= 0; i-- {
		rt.closers[i]()
	}
	rt.closers = nil
}
