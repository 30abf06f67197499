package cli

import (
	"context"
	"fmt"

	"lingo-trainer/internal/app"
	"lingo-trainer/internal/config"
	"lingo-trainer/internal/infra/memory"
	pgseed "lingo-trainer/internal/infra/postgres"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

// NewSeedCmd imports seed documents into Postgres.
func NewSeedCmd(configPath *string) *cobra.Command {
	var dir string
	cmd := &cobra.Command{
		Use:   "seed",
		Short: "Import vocabulary, quizzes and achievements into Postgres",
		Long: "Reads vocabulary.json, quizzes.json and achievements.json from --dir " +
			"(or the bundled defaults) and upserts them into the seed_documents table.",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSeed(cmd.Context(), *configPath, dir)
		},
	}
	cmd.Flags().StringVar(&dir, "dir", "", "directory holding the seed JSON files")
	return cmd
}

func runSeed(ctx context.Context, configPath, dir string) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}
	log := setupLogger(cfg.Env)
	defer func() { _ = log.Sync() }()

	if err := runMigrationsWithConfig(ctx, cfg, log); err != nil {
		return err
	}

	var source app.SeedSource = memory.NewSeedSource()
	if dir != "" {
		source = memory.NewDirSeedSource(dir)
	}

	db := pgseed.OpenBun(cfg.Postgres.URL)
	defer db.Close()

	if err := pgseed.NewSeedWriter(db).ImportFrom(ctx, source); err != nil {
		return fmt.Errorf("import seed: %w", err)
	}
	log.Info("seed documents imported", zap.Int("documents", len(app.SeedDocuments)), zap.String("dir", dir))
	return nil
}
