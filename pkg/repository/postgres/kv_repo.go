package postgres

import (
	"context"
	"embed"
	"errors"
	"fmt"
	"io/fs"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jackc/pgx/v5/stdlib"
	"github.com/pressly/goose/v3"

	"github.com/mk-2871/Proof-of-Talent/pkg/kv"
)

//go:embed migrations/*.sql
var migrations embed.FS

// KVRepository implements kv.Store backed by PostgreSQL (pgx).
type KVRepository struct {
	pool *pgxpool.Pool
}

// NewKVRepository applies pending migrations and returns the repository.
func NewKVRepository(ctx context.Context, pool *pgxpool.Pool) (*KVRepository, error) {
	if err := migrate(ctx, pool); err != nil {
		return nil, err
	}
	return &KVRepository{pool: pool}, nil
}

func migrate(ctx context.Context, pool *pgxpool.Pool) error {
	sub, err := fs.Sub(migrations, "migrations")
	if err != nil {
		return err
	}
	provider, err := goose.NewProvider(goose.DialectPostgres, stdlib.OpenDBFromPool(pool), sub)
	if err != nil {
		return fmt.Errorf("goose provider: %w", err)
	}
	if _, err := provider.Up(ctx); err != nil {
		return fmt.Errorf("migrate postgres: %w", err)
	}
	return nil
}

func (r *KVRepository) Get(ctx context.Context, key string) ([]byte, error) {
	var value []byte
	err := r.pool.QueryRow(ctx, `SELECT value FROM kv_entries WHERE key = $1`, key).Scan(&value)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, kv.ErrNotFound
		}
		return nil, err
	}
	return value, nil
}

func (r *KVRepository) Set(ctx context.Context, key string, value []byte) error {
	_, err := r.pool.Exec(ctx, `
INSERT INTO kv_entries (key, value, updated_at)
VALUES ($1, $2, $3)
ON CONFLICT (key) DO UPDATE SET value = EXCLUDED.value, updated_at = EXCLUDED.updated_at
`, key, value, time.Now().UTC())
	return err
}

func (r *KVRepository) Delete(ctx context.Context, key string) error {
	_, err := r.pool.Exec(ctx, `DELETE FROM kv_entries WHERE key = $1`, key)
	return err
}
