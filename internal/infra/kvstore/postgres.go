package kvstore

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/Lalithx4/agroai/internal/domain/cache"
)

const postgresSchema = `
CREATE TABLE IF NOT EXISTS agroai_kv (
	key        TEXT PRIMARY KEY,
	value      BYTEA NOT NULL,
	updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
);`

// PostgresStore implements cache.Store on a shared Postgres instance, for
// deployments where several kiosk clients point at one database.
type PostgresStore struct {
	pool *pgxpool.Pool
}

// NewPostgresStore initializes the schema and wraps the pool.
func NewPostgresStore(ctx context.Context, pool *pgxpool.Pool) (*PostgresStore, error) {
	if _, err := pool.Exec(ctx, postgresSchema); err != nil {
		return nil, fmt.Errorf("init kv schema: %w", err)
	}
	return &PostgresStore{pool: pool}, nil
}

// Get implements cache.Store.
func (s *PostgresStore) Get(ctx context.Context, key string) ([]byte, bool, error) {
	var value []byte
	err := s.pool.QueryRow(ctx, `SELECT value FROM agroai_kv WHERE key = $1`, key).Scan(&value)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("read key %q: %w", key, err)
	}
	return value, true, nil
}

// Set upserts the value for key.
func (s *PostgresStore) Set(ctx context.Context, key string, value []byte) error {
	_, err := s.pool.Exec(ctx, `
		INSERT INTO agroai_kv (key, value) VALUES ($1, $2)
		ON CONFLICT (key) DO UPDATE SET value = EXCLUDED.value, updated_at = now()
	`, key, value)
	if err != nil {
		var pgErr *pgconn.PgError
		// 53100 disk_full, 53200 out_of_memory
		if errors.As(err, &pgErr) && (pgErr.Code == "53100" || pgErr.Code == "53200") {
			return fmt.Errorf("%w: %v", cache.ErrStoreFull, err)
		}
		return fmt.Errorf("write key %q: %w", key, err)
	}
	return nil
}

// Delete removes a key; absent keys are not an error.
func (s *PostgresStore) Delete(ctx context.Context, key string) error {
	if _, err := s.pool.Exec(ctx, `DELETE FROM agroai_kv WHERE key = $1`, key); err != nil {
		return fmt.Errorf("delete key %q: %w", key, err)
	}
	return nil
}

// Keys lists every stored key with the given prefix.
func (s *PostgresStore) Keys(ctx context.Context, prefix string) ([]string, error) {
	rows, err := s.pool.Query(ctx, `SELECT key FROM agroai_kv WHERE key LIKE $1 || '%' ORDER BY key`, prefix)
	if err != nil {
		return nil, fmt.Errorf("list keys: %w", err)
	}
	defer rows.Close()
	var keys []string
	for rows.Next() {
		var key string
		if err := rows.Scan(&key); err != nil {
			return nil, err
		}
		keys = append(keys, key)
	}
	return keys, rows.Err()
}

var _ cache.Store = (*PostgresStore)(nil)
