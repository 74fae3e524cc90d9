package storage

import (
	"context"
	"errors"
	"io"
	"time"
)

var ErrNotFound = errors.New("not found")

// KV хранилище ключ-значение. Используется для токенов устройств и
// наследованного бандла.
type KV interface {
	Get(ctx context.Context, key string) ([]byte, error)
	// Put сохраняет значение; ttl <= 0 означает без срока
	Put(ctx context.Context, key string, value []byte, ttl time.Duration) error
	Exists(ctx context.Context, key string) (bool, error)
	Delete(ctx context.Context, key string) error
}

// Blob объект хранилища
type Blob struct {
	Key         string
	ContentType string
	Size        int64
	Body        io.ReadCloser
}

// BlobStore объектное хранилище
type BlobStore interface {
	Put(ctx context.Context, key, contentType string, data []byte) error
	Get(ctx context.Context, key string) (*Blob, error)
	Delete(ctx context.Context, key string) error
	// List возвращает ключи с указанным префиксом
	List(ctx context.Context, prefix string) ([]string, error)
}
