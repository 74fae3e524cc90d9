package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"golang.org/x/exp/slog"

	"timeline/internal/infrastructure/storage"
)

// KVRepository хранилище ключ-значение поверх таблицы kv
type KVRepository struct {
	db  *Storage
	log *slog.Logger
}

func NewKVRepository(db *Storage, log *slog.Logger) *KVRepository {
	return &KVRepository{
		db:  db,
		log: log.With("component", "kv_repository"),
	}
}

func (r *KVRepository) Get(ctx context.Context, key string) ([]byte, error) {
	var value []byte
	err := r.db.Pool().QueryRow(ctx,
		`SELECT value FROM kv
         WHERE key = $1 AND (expires_at IS NULL OR expires_at > NOW())`,
		key).Scan(&value)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, storage.ErrNotFound
		}
		r.log.Error("failed to get key", "error", err)
		return nil, fmt.Errorf("get key: %w", err)
	}
	return value, nil
}

func (r *KVRepository) Put(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	var expiresAt *time.Time
	if ttl > 0 {
		t := time.Now().Add(ttl)
		expiresAt = &t
	}
	_, err := r.db.Pool().Exec(ctx,
		`INSERT INTO kv (key, value, expires_at) VALUES ($1, $2, $3)
         ON CONFLICT (key) DO UPDATE SET value = EXCLUDED.value, expires_at = EXCLUDED.expires_at`,
		key, value, expiresAt)
	if err != nil {
		r.log.Error("failed to put key", "error", err)
		return fmt.Errorf("put key: %w", err)
	}
	return nil
}

func (r *KVRepository) Exists(ctx context.Context, key string) (bool, error) {
	var ok bool
	err := r.db.Pool().QueryRow(ctx,
		`SELECT EXISTS (SELECT 1 FROM kv
         WHERE key = $1 AND (expires_at IS NULL OR expires_at > NOW()))`,
		key).Scan(&ok)
	if err != nil {
		return false, fmt.Errorf("check key: %w", err)
	}
	return ok, nil
}

func (r *KVRepository) Delete(ctx context.Context, key string) error {
	if _, err := r.db.Pool().Exec(ctx, `DELETE FROM kv WHERE key = $1`, key); err != nil {
		return fmt.Errorf("delete key: %w", err)
	}
	return nil
}
