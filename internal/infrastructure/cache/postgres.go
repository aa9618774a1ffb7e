package cache

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"
)

// PostgresCache keeps entries in the llm_response_cache table.
type PostgresCache struct {
	db   *sql.DB
	opts Options
}

func NewPostgresCache(db *sql.DB, opts Options) *PostgresCache {
	return &PostgresCache{db: db, opts: opts.normalize()}
}

func OpenDB(dsn string) (*sql.DB, error) {
	db, err := sql.Open("pgx", dsn)
	if err != nil {
		return nil, fmt.Errorf("sql open: %w", err)
	}
	db.SetMaxOpenConns(10)
	db.SetMaxIdleConns(10)
	db.SetConnMaxLifetime(30 * time.Minute)

	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("db ping: %w", err)
	}
	return db, nil
}

func (c *PostgresCache) EnsureSchema(ctx context.Context) error {
	tx, err := c.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin schema tx: %w", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	// Serialize bootstrap DDL across concurrent startups.
	if _, err := tx.ExecContext(ctx, `SELECT pg_advisory_xact_lock($1)`, int64(2026101801)); err != nil {
		return fmt.Errorf("acquire schema lock: %w", err)
	}

	const query = `
CREATE TABLE IF NOT EXISTS llm_response_cache (
	key TEXT PRIMARY KEY,
	stored_at TIMESTAMPTZ NOT NULL,
	payload TEXT NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_llm_response_cache_stored_at ON llm_response_cache(stored_at);
`
	if _, err := tx.ExecContext(ctx, query); err != nil {
		return fmt.Errorf("execute schema ddl: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit schema tx: %w", err)
	}
	return nil
}

func (c *PostgresCache) Get(ctx context.Context, key string) (string, bool) {
	var (
		payload  string
		storedAt time.Time
	)
	err := c.db.QueryRowContext(ctx,
		`SELECT payload, stored_at FROM llm_response_cache WHERE key = $1`, key,
	).Scan(&payload, &storedAt)
	if err != nil {
		if !errors.Is(err, sql.ErrNoRows) {
			c.opts.Logger.Warn("llm_cache_read_failed", "backend", "postgres", "key", key, "error", err)
		}
		return "", false
	}

	if c.opts.expired(storedAt) {
		if _, err := c.db.ExecContext(ctx, `DELETE FROM llm_response_cache WHERE key = $1`, key); err != nil {
			c.opts.Logger.Warn("llm_cache_remove_failed", "backend", "postgres", "key", key, "error", err)
		}
		return "", false
	}
	return payload, true
}

func (c *PostgresCache) Set(ctx context.Context, key, payload string) error {
	const query = `
INSERT INTO llm_response_cache (key, stored_at, payload)
VALUES ($1, $2, $3)
ON CONFLICT (key) DO UPDATE SET stored_at = EXCLUDED.stored_at, payload = EXCLUDED.payload`
	if _, err := c.db.ExecContext(ctx, query, key, c.opts.Now().UTC(), payload); err != nil {
		return fmt.Errorf("upsert cache entry: %w", err)
	}
	return nil
}

func (c *PostgresCache) Prune(ctx context.Context) error {
	if c.opts.TTL <= 0 {
		return nil
	}
	cutoff := c.opts.Now().Add(-c.opts.TTL).UTC()
	res, err := c.db.ExecContext(ctx, `DELETE FROM llm_response_cache WHERE stored_at <= $1`, cutoff)
	if err != nil {
		return fmt.Errorf("prune cache entries: %w", err)
	}
	removed, _ := res.RowsAffected()
	c.opts.Logger.Info("llm_cache_pruned", "backend", "postgres", "removed", removed)
	return nil
}

func (c *PostgresCache) Clear(ctx context.Context) error {
	if _, err := c.db.ExecContext(ctx, `DELETE FROM llm_response_cache`); err != nil {
		return fmt.Errorf("clear cache entries: %w", err)
	}
	return nil
}
