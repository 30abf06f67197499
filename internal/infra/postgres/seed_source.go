package postgres

import (
	"context"
	"errors"
	"fmt"

	"lingo-trainer/internal/app"

	"github.com/jackc/pgx/v4"
	"github.com/jackc/pgx/v4/pgxpool"
)

// ErrDocumentMissing means the seed_documents table has no row for a document.
var ErrDocumentMissing = errors.New("seed document not imported")

// SeedSource loads seed document JSONB from Postgres.
type SeedSource struct {
	pool *pgxpool.Pool
}

func NewSeedSource(pool *pgxpool.Pool) *SeedSource {
	return &SeedSource{pool: pool}
}

func (s *SeedSource) Fetch(ctx context.Context, doc app.SeedDocument) ([]byte, error) {
	var raw []byte
	err := s.pool.QueryRow(ctx, `SELECT data FROM seed_documents WHERE name=$1`, string(doc)).Scan(&raw)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("load %s: %w", doc, ErrDocumentMissing)
	}
	if err != nil {
		return nil, fmt.Errorf("load %s: %w", doc, err)
	}
	return raw, nil
}
