package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"lingo-trainer/internal/app"
	"lingo-trainer/internal/domain"
	"lingo-trainer/internal/infra/postgres/migrations"

	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/pgdialect"
	"github.com/uptrace/bun/driver/pgdriver"
	"github.com/uptrace/bun/migrate"
)

type seedDocumentRow struct {
	bun.BaseModel `bun:"table:seed_documents"`

	Name      string    `bun:"name,pk"`
	Version   int       `bun:"version,notnull"`
	Data      string    `bun:"data,type:jsonb,notnull"`
	UpdatedAt time.Time `bun:"updated_at,notnull"`
}

// OpenBun opens a bun handle over pgdriver.
func OpenBun(dsn string) *bun.DB {
	sqldb := sql.OpenDB(pgdriver.NewConnector(pgdriver.WithDSN(dsn)))
	return bun.NewDB(sqldb, pgdialect.New())
}

// Migrate applies every pending migration.
func Migrate(ctx context.Context, db *bun.DB) (*migrate.MigrationGroup, error) {
	migrator := migrate.NewMigrator(db, migrations.Migrations)
	if err := migrator.Init(ctx); err != nil {
		return nil, fmt.Errorf("migrator init: %w", err)
	}
	group, err := migrator.Migrate(ctx)
	if err != nil {
		return nil, fmt.Errorf("migrate: %w", err)
	}
	return group, nil
}

// SeedWriter imports seed documents into Postgres so SeedSource can serve them.
type SeedWriter struct {
	db  *bun.DB
	now func() time.Time
}

func NewSeedWriter(db *bun.DB) *SeedWriter {
	return &SeedWriter{db: db, now: time.Now}
}

// Import validates raw against the document's shape and upserts it.
func (w *SeedWriter) Import(ctx context.Context, doc app.SeedDocument, raw []byte) error {
	version, err := documentVersion(doc, raw)
	if err != nil {
		return err
	}
	row := &seedDocumentRow{
		Name:      string(doc),
		Version:   version,
		Data:      string(raw),
		UpdatedAt: w.now(),
	}
	_, err = w.db.NewInsert().
		Model(row).
		On("CONFLICT (name) DO UPDATE").
		Set("version = EXCLUDED.version").
		Set("data = EXCLUDED.data").
		Set("updated_at = EXCLUDED.updated_at").
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("upsert %s: %w", doc, err)
	}
	return nil
}

// ImportFrom copies every document from source, e.g. the embedded defaults.
func (w *SeedWriter) ImportFrom(ctx context.Context, source app.SeedSource) error {
	for _, doc := range app.SeedDocuments {
		raw, err := source.Fetch(ctx, doc)
		if err != nil {
			return err
		}
		if err := w.Import(ctx, doc, raw); err != nil {
			return err
		}
	}
	return nil
}

// documentVersion decodes raw as doc to reject malformed content before it is stored.
// Quiz lists carry no version and count as version 1.
func documentVersion(doc app.SeedDocument, raw []byte) (int, error) {
	switch doc {
	case app.SeedVocabulary:
		var payload domain.VocabularyPayload
		if err := json.Unmarshal(raw, &payload); err != nil {
			return 0, fmt.Errorf("decode %s: %w", doc, err)
		}
		return max(payload.Version, 1), nil
	case app.SeedQuizzes:
		var quizzes []domain.Quiz
		if err := json.Unmarshal(raw, &quizzes); err != nil {
			return 0, fmt.Errorf("decode %s: %w", doc, err)
		}
		return 1, nil
	case app.SeedAchievements:
		var payload domain.AchievementsPayload
		if err := json.Unmarshal(raw, &payload); err != nil {
			return 0, fmt.Errorf("decode %s: %w", doc, err)
		}
		return max(payload.Version, 1), nil
	default:
		return 0, fmt.Errorf("unknown seed document %q", doc)
	}
}
