package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/basel-ax/draw/internal/domain"
	"github.com/lib/pq"
)

// ImageRepository defines the interface for the generation ledger
type ImageRepository interface {
	EnsureSchema(ctx context.Context) error
	Record(ctx context.Context, img *domain.GeneratedImage) error
}

// PostgresImageRepository implements ImageRepository for PostgreSQL
type PostgresImageRepository struct {
	db    *sql.DB
	table string
}

// NewPostgresImageRepository creates a new PostgreSQL image repository
func NewPostgresImageRepository(db *sql.DB, table string) *PostgresImageRepository {
	return &PostgresImageRepository{db: db, table: pq.QuoteIdentifier(table)}
}

// EnsureSchema creates the ledger table if it does not exist
func (r *PostgresImageRepository) EnsureSchema(ctx context.Context) error {
	query := fmt.Sprintf(`
		CREATE TABLE IF NOT EXISTS %s (
			id         BIGSERIAL PRIMARY KEY,
			uuid       TEXT NOT NULL UNIQUE,
			prompt     TEXT NOT NULL,
			model      TEXT NOT NULL,
			path       TEXT NOT NULL,
			size_bytes INTEGER NOT NULL,
			sha256     TEXT NOT NULL,
			created_at TIMESTAMPTZ NOT NULL
		)
	`, r.table)

	if _, err := r.db.ExecContext(ctx, query); err != nil {
		return fmt.Errorf("creating %s: %w", r.table, err)
	}
	return nil
}

// Record inserts a generated image and stores the assigned ID on img
func (r *PostgresImageRepository) Record(ctx context.Context, img *domain.GeneratedImage) error {
	query := fmt.Sprintf(`
		INSERT INTO %s (uuid, prompt, model, path, size_bytes, sha256, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id
	`, r.table)

	err := r.db.QueryRowContext(ctx, query,
		img.UUID,
		img.Prompt,
		img.Model,
		img.Path,
		img.Size,
		img.SHA256,
		img.CreatedAt,
	).Scan(&img.ID)
	if err != nil {
		return fmt.Errorf("recording image %s: %w", img.UUID, err)
	}
	return nil
}
