package db

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	_ "github.com/lib/pq"

	"ciboard/internal/ciboard"
)

// DB wraps a database/sql connection pool for the PostgreSQL snapshot
// mirror.
type DB struct {
	Pool *sql.DB
}

// New creates a new database connection.
func New(ctx context.Context, databaseURL string) (*DB, error) {
	pool, err := sql.Open("postgres", databaseURL)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	pool.SetMaxOpenConns(10)
	pool.SetMaxIdleConns(2)

	if err := pool.PingContext(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	return &DB{Pool: pool}, nil
}

// Close closes the connection pool.
func (d *DB) Close() error {
	return d.Pool.Close()
}

// Migrate runs the database schema migrations.
func (d *DB) Migrate(ctx context.Context) error {
	_, err := d.Pool.ExecContext(ctx, migrationSQL)
	if err != nil {
		return fmt.Errorf("run migrations: %w", err)
	}
	return nil
}

const migrationSQL = `
CREATE TABLE IF NOT EXISTS workflow_run_data (
    workflow_id BIGINT PRIMARY KEY,
    data        JSONB NOT NULL,
    updated_at  TIMESTAMPTZ NOT NULL DEFAULT NOW()
);
`

// ReplaceSnapshot swaps the stored mirror for the given snapshot in one
// transaction: rows for workflows absent from the snapshot are removed, the
// rest are upserted. The mirror therefore always reflects exactly one cycle.
func (d *DB) ReplaceSnapshot(ctx context.Context, snap ciboard.Snapshot) error {
	tx, err := d.Pool.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM workflow_run_data`); err != nil {
		return fmt.Errorf("clear mirror: %w", err)
	}

	for id, data := range snap {
		payload, err := json.Marshal(data)
		if err != nil {
			return fmt.Errorf("marshal workflow %d: %w", id, err)
		}
		_, err = tx.ExecContext(ctx,
			`INSERT INTO workflow_run_data (workflow_id, data, updated_at) VALUES ($1, $2, NOW())`,
			id, payload)
		if err != nil {
			return fmt.Errorf("insert workflow %d: %w", id, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit: %w", err)
	}
	return nil
}
