// Package memory хранилища в памяти для тестов и локального запуска
package memory

import (
	"bytes"
	"context"
	"io"
	"sort"
	"strings"
	"sync"
	"time"

	"timeline/internal/infrastructure/storage"
)

type kvItem struct {
	value     []byte
	expiresAt time.Time
}

// KV реализация storage.KV в памяти
type KV struct {
	mu    sync.RWMutex
	items map[string]kvItem
	now   func() time.Time
}

func NewKV() *KV {
	return &KV{items: make(map[string]kvItem), now: time.Now}
}

func (s *KV) Get(_ context.Context, key string) ([]byte, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	it, ok := s.items[key]
	if !ok || s.expired(it) {
		return nil, storage.ErrNotFound
	}
	return bytes.Clone(it.value), nil
}

func (s *KV) Put(_ context.Context, key string, value []byte, ttl time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	it := kvItem{value: bytes.Clone(value)}
	if ttl > 0 {
		it.expiresAt = s.now().Add(ttl)
	}
	s.items[key] = it
	return nil
}

func (s *KV) Exists(_ context.Context, key string) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	it, ok := s.items[key]
	return ok && !s.expired(it), nil
}

func (s *KV) Delete(_ context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.items, key)
	return nil
}

func (s *KV) expired(it kvItem) bool {
	return !it.expiresAt.IsZero() && !s.now().Before(it.expiresAt)
}

type blobItem struct {
	contentType string
	data        []byte
}

// BlobStore реализация storage.BlobStore в памяти
type BlobStore struct {
	mu    sync.RWMutex
	blobs map[string]blobItem
}

func NewBlobStore() *BlobStore {
	return &BlobStore{blobs: make(map[string]blobItem)}
}

func (s *BlobStore) Put(_ context.Context, key, contentType string, data []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.blobs[key] = blobItem{contentType: contentType, data: bytes.Clone(data)}
	return nil
}

func (s *BlobStore) Get(_ context.Context, key string) (*storage.Blob, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	b, ok := s.blobs[key]
	if !ok {
		return nil, storage.ErrNotFound
	}
	return &storage.Blob{
		Key:         key,
		ContentType: b.contentType,
		Size:        int64(len(b.data)),
		Body:        io.NopCloser(bytes.NewReader(b.data)),
	}, nil
}

func (s *BlobStore) Delete(_ context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.blobs[key]; !ok {
		return storage.ErrNotFound
	}
	delete(s.blobs, key)
	return nil
}

func (s *BlobStore) List(_ context.Context, prefix string) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	keys := make([]string, 0, len(s.blobs))
	for k := range s.blobs {
		if strings.HasPrefix(k, prefix) {
			keys = append(keys, k)
		}
	}
	sort.Strings(keys)
	return keys, nil
}
