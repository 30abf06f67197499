package cli

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"lingo-trainer/internal/app"
	"lingo-trainer/internal/config"
	"lingo-trainer/internal/infra/memory"
	infraredis "lingo-trainer/internal/infra/redis"
	transport "lingo-trainer/internal/transport/http"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

// NewStartCmd builds the CLI subcommand to start the server.
func NewStartCmd(configPath, port *string) *cobra.Command {
	return &cobra.Command{
		Use:   "start",
		Short: "Start the trainer server",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServer(cmd.Context(), *configPath, *port)
		},
	}
}

type sessionRegistry interface {
	transport.SessionRegistry
	CountLive(ctx context.Context) (int, error)
	CloseAll()
}

func runServer(ctx context.Context, configPath, portFlag string) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}
	log := setupLogger(cfg.Env)
	defer func() { _ = log.Sync() }()

	if cfg.Postgres.URL != "" {
		if err := runMigrationsWithConfig(ctx, cfg, log); err != nil {
			return err
		}
	}

	finalPort := portFlag
	if finalPort == "" {
		finalPort = cfg.Server.Port
	}
	if finalPort == "" {
		finalPort = "8080"
	}

	rt, err := newRuntime(ctx, cfg, log)
	if err != nil {
		return err
	}
	defer rt.Close()

	if err := rt.catalog.SeedAll(ctx); err != nil {
		log.Warn("seed content incomplete; affected lists stay empty", zap.Error(err))
	}

	var sessions sessionRegistry = memory.NewSessionStore()
	if rt.redis != nil {
		sessions = infraredis.NewSessionStore(rt.redis, cfg.Storage.Namespace, config.Duration(cfg.Redis.SessionTTL, 30*time.Minute), log.Named("sessions"))
	}

	quizService := app.NewQuizService(rt.catalog, rt.attempts, rt.clock, cfg.QuestionLimit(), log.Named("quiz"))
	wsHandler := transport.NewWSHandler(quizService, sessions, log.Named("ws"))
	api := transport.NewAPI(transport.APIDeps{
		Catalog:      rt.catalog,
		Attempts:     rt.attempts,
		Progress:     rt.progress,
		Favorites:    app.NewFavorites(rt.ns),
		History:      app.NewProgressHistory(rt.ns),
		LiveSessions: sessions.CountLive,
		Logger:       log.Named("api"),
	})

	mux := http.NewServeMux()
	api.Register(mux)
	mux.HandleFunc("/ws", wsHandler.ServeWS)

	server := &http.Server{
		Addr:         ":" + finalPort,
		Handler:      mux,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
	}

	go func() {
		log.Info("starting trainer", zap.String("port", finalPort), zap.String("storage", cfg.Storage.Backend), zap.String("seed", cfg.Seed.Source))
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Error("failed to start server", zap.Error(err))
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)

	select {
	case <-stop:
		log.Info("shutting down server...")
	case <-ctx.Done():
		log.Info("context canceled, shutting down server...")
	}

	// open sessions are abandoned, never recorded
	sessions.CloseAll()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return server.Shutdown(shutdownCtx)
}
