package sqlite

import (
	"context"
	"database/sql"
	"embed"
	"errors"
	"fmt"
	"io/fs"
	"time"

	"github.com/pressly/goose/v3"

	"github.com/mk-2871/Proof-of-Talent/pkg/kv"
)

//go:embed migrations/*.sql
var migrations embed.FS

// KVRepository implements kv.Store on a local sqlite file.
type KVRepository struct {
	db *sql.DB
}

func NewKVRepository(ctx context.Context, db *sql.DB) (*KVRepository, error) {
	sub, err := fs.Sub(migrations, "migrations")
	if err != nil {
		return nil, err
	}
	provider, err := goose.NewProvider(goose.DialectSQLite3, db, sub)
	if err != nil {
		return nil, fmt.Errorf("goose provider: %w", err)
	}
	if _, err := provider.Up(ctx); err != nil {
		return nil, fmt.Errorf("migrate sqlite: %w", err)
	}
	return &KVRepository{db: db}, nil
}

func (r *KVRepository) Get(ctx context.Context, key string) ([]byte, error) {
	var value []byte
	err := r.db.QueryRowContext(ctx, `SELECT value FROM kv_entries WHERE key = ?`, key).Scan(&value)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, kv.ErrNotFound
		}
		return nil, err
	}
	return value, nil
}

func (r *KVRepository) Set(ctx context.Context, key string, value []byte) error {
	_, err := r.db.ExecContext(ctx, `
INSERT INTO kv_entries (key, value, updated_at)
VALUES (?, ?, ?)
ON CONFLICT(key) DO UPDATE SET value = excluded.value, updated_at = excluded.updated_at;`,
		key, value, time.Now().UTC().Format(time.RFC3339Nano))
	return err
}

func (r *KVRepository) Delete(ctx context.Context, key string) error {
	_, err := r.db.ExecContext(ctx, `DELETE FROM kv_entries WHERE key = ?`, key)
	return err
}
