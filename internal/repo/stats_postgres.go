package repo

import (
	"context"
	"database/sql"
	"fmt"
	"time"
)

type PostgresStatsRepository struct {
	db *sql.DB
}

func NewPostgresStatsRepository(db *sql.DB) *PostgresStatsRepository {
	return &PostgresStatsRepository{db: db}
}

// EnsureSchema creates the counters table when it does not exist yet.
func (r *PostgresStatsRepository) EnsureSchema(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	_, err := r.db.ExecContext(ctx, `
		CREATE TABLE IF NOT EXISTS catalog_stats (
			name       TEXT PRIMARY KEY,
			value      BIGINT NOT NULL DEFAULT 0,
			updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
		)`)
	if err != nil {
		return fmt.Errorf("create catalog_stats: %w", err)
	}
	return nil
}

func (r *PostgresStatsRepository) Incr(ctx context.Context, key StatsKey) error {
	if !validKey(key) {
		return ErrUnknownStatsKey
	}
	query := `
		INSERT INTO catalog_stats (name, value) VALUES ($1, 1)
		ON CONFLICT (name) DO UPDATE SET value = catalog_stats.value + 1, updated_at = now()`
	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	if _, err := r.db.ExecContext(ctx, query, string(key)); err != nil {
		return fmt.Errorf("incr %s: %w", key, err)
	}
	return nil
}

// MarkSuccess stores the timestamp as unix milliseconds in the value column.
func (r *PostgresStatsRepository) MarkSuccess(ctx context.Context, at time.Time) error {
	query := `
		INSERT INTO catalog_stats (name, value) VALUES ($1, $2)
		ON CONFLICT (name) DO UPDATE SET value = EXCLUDED.value, updated_at = now()`
	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	if _, err := r.db.ExecContext(ctx, query, lastSuccessField, at.UnixMilli()); err != nil {
		return fmt.Errorf("mark success: %w", err)
	}
	return nil
}

func (r *PostgresStatsRepository) Snapshot(ctx context.Context) (Stats, error) {
	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	rows, err := r.db.QueryContext(ctx, `SELECT name, value FROM catalog_stats`)
	if err != nil {
		return Stats{}, fmt.Errorf("read stats: %w", err)
	}
	defer rows.Close()

	var s Stats
	for rows.Next() {
		var name string
		var value int64
		if err := rows.Scan(&name, &value); err != nil {
			return Stats{}, err
		}
		if name == lastSuccessField {
			at := time.UnixMilli(value).UTC()
			s.LastSuccessAt = &at
			continue
		}
		if c := s.counter(StatsKey(name)); c != nil {
			*c = value
		}
	}
	return s, rows.Err()
}

func (r *PostgresStatsRepository) Reset(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	if _, err := r.db.ExecContext(ctx, `DELETE FROM catalog_stats`); err != nil {
		return fmt.Errorf("reset stats: %w", err)
	}
	return nil
}
