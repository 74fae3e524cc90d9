package session

import (
	"context"
	"time"

	"golang.org/x/exp/slog"

	"timeline/internal/infrastructure/storage"
)

const tokenKeyPrefix = "auth_token:"

// TokenKey ключ токена в хранилище
func TokenKey(token string) string {
	return tokenKeyPrefix + token
}

type Repository interface {
	Save(ctx context.Context, token string, ttl time.Duration) error
	Exists(ctx context.Context, token string) (bool, error)
	Delete(ctx context.Context, token string) error
}

func NewRepo(kv storage.KV, log *slog.Logger) Repository {
	return &repository{
		kv:  kv,
		log: log,
	}
}

type repository struct {
	kv  storage.KV
	log *slog.Logger
}

func (r *repository) Save(ctx context.Context, token string, ttl time.Duration) error {
	created := []byte(time.Now().UTC().Format(time.RFC3339))
	return r.kv.Put(ctx, TokenKey(token), created, ttl)
}

func (r *repository) Exists(ctx context.Context, token string) (bool, error) {
	return r.kv.Exists(ctx, TokenKey(token))
}

func (r *repository) Delete(ctx context.Context, token string) error {
	return r.kv.Delete(ctx, TokenKey(token))
}
