package postgres

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/jmoiron/sqlx"

	"opsdash/domain/core"
	"opsdash/ports"
)

// kvRepository implements ports.KeyValueStore on the kv_store table
type kvRepository struct {
	db         *sqlx.DB
	quotaBytes int64
}

// NewKVRepository creates a key-value repository. A quota of zero or less
// disables the size limit.
func NewKVRepository(db *sqlx.DB, quotaBytes int64) ports.KeyValueStore {
	return &kvRepository{db: db, quotaBytes: quotaBytes}
}

// Get retrieves the value stored under key
func (r *kvRepository) Get(ctx context.Context, key string) ([]byte, error) {
	var value []byte
	err := r.db.QueryRowxContext(ctx, `SELECT value FROM kv_store WHERE key = $1`, key).Scan(&value)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, core.NewNotFoundError("key", key)
		}
		return nil, fmt.Errorf("failed to get key %s: %w", key, err)
	}
	return value, nil
}

// Set upserts value under key. The quota check and the write share one
// transaction so the table never exceeds the quota.
func (r *kvRepository) Set(ctx context.Context, key string, value []byte) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if r.quotaBytes > 0 {
		var used int64
		err := tx.QueryRowxContext(ctx,
			`SELECT COALESCE(SUM(octet_length(value)), 0) FROM kv_store WHERE key <> $1`, key,
		).Scan(&used)
		if err != nil {
			return fmt.Errorf("failed to measure storage usage: %w", err)
		}
		if used+int64(len(value)) > r.quotaBytes {
			return core.NewQuotaError(int(used)+len(value), int(r.quotaBytes))
		}
	}

	query := `
		INSERT INTO kv_store (key, value, updated_at)
		VALUES ($1, $2, NOW())
		ON CONFLICT (key) DO UPDATE SET
			value = EXCLUDED.value,
			updated_at = EXCLUDED.updated_at`

	if _, err := tx.ExecContext(ctx, query, key, value); err != nil {
		return fmt.Errorf("failed to set key %s: %w", key, err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit key %s: %w", key, err)
	}
	return nil
}

// Delete removes key
func (r *kvRepository) Delete(ctx context.Context, key string) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM kv_store WHERE key = $1`, key); err != nil {
		return fmt.Errorf("failed to delete key %s: %w", key, err)
	}
	return nil
}
