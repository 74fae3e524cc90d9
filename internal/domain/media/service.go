package media

import (
	"context"
	"errors"
	"fmt"
	"io"
	"mime"
	"regexp"
	"strings"

	"github.com/google/uuid"
	"golang.org/x/exp/slog"

	"timeline/internal/domain/journal"
	"timeline/internal/infrastructure/storage"
)

const (
	// Namespace префикс изображений в объектном хранилище
	Namespace = "images/"
	// URLPrefix путь, по которому изображения отдаются клиентам
	URLPrefix = "/api/image/"

	MaxUploadSize = 20 << 20
)

var keyPattern = regexp.MustCompile(`^[A-Za-z0-9._-]+$`)

var extensions = map[string]string{
	"image/png":     ".png",
	"image/jpeg":    ".jpg",
	"image/gif":     ".gif",
	"image/webp":    ".webp",
	"image/svg+xml": ".svg",
	"image/avif":    ".avif",
}

// Servicer операции с изображениями
type Servicer interface {
	Upload(ctx context.Context, data []byte, contentType string) (*journal.ImageRef, error)
	Get(ctx context.Context, key string) (*storage.Blob, error)
	List(ctx context.Context) ([]string, error)
	Delete(ctx context.Context, key string) error
}

type Service struct {
	blobs storage.BlobStore
	log   *slog.Logger
}

func NewService(blobs storage.BlobStore, log *slog.Logger) *Service {
	return &Service{
		blobs: blobs,
		log:   log.With("component", "media"),
	}
}

// URL ссылка на изображение по ключу
func URL(key string) string {
	return URLPrefix + key
}

// ValidKey проверяет ключ изображения
func ValidKey(key string) bool {
	return keyPattern.MatchString(key) && key != "." && key != ".."
}

func extension(contentType string) string {
	mt, _, err := mime.ParseMediaType(contentType)
	if err != nil {
		return ".bin"
	}
	if ext, ok := extensions[mt]; ok {
		return ext
	}
	if exts, _ := mime.ExtensionsByType(mt); len(exts) > 0 {
		return exts[0]
	}
	return ".bin"
}

// Upload сохраняет blob под новым ключом uuid + расширение по типу содержимого.
// Записи не изменяются: встраивать ссылку должен вызывающий.
func (s *Service) Upload(ctx context.Context, data []byte, contentType string) (*journal.ImageRef, error) {
	if len(data) == 0 {
		return nil, ErrEmptyUpload
	}
	if len(data) > MaxUploadSize {
		return nil, ErrTooLarge
	}

	key := uuid.NewString() + extension(contentType)
	if err := s.blobs.Put(ctx, Namespace+key, contentType, data); err != nil {
		s.log.Error("failed to store image", "key", key, "error", err)
		return nil, fmt.Errorf("store image: %w", err)
	}
	s.log.Info("image stored", "key", key, "size", len(data))
	return &journal.ImageRef{Key: key, URL: URL(key)}, nil
}

func (s *Service) Get(ctx context.Context, key string) (*storage.Blob, error) {
	if !ValidKey(key) {
		return nil, ErrInvalidKey
	}
	b, err := s.blobs.Get(ctx, Namespace+key)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("load image: %w", err)
	}
	b.Key = key
	return b, nil
}

// List ключи всех изображений без префикса пространства имен
func (s *Service) List(ctx context.Context) ([]string, error) {
	keys, err := s.blobs.List(ctx, Namespace)
	if err != nil {
		return nil, fmt.Errorf("list images: %w", err)
	}
	out := make([]string, 0, len(keys))
	for _, k := range keys {
		out = append(out, strings.TrimPrefix(k, Namespace))
	}
	return out, nil
}

func (s *Service) Delete(ctx context.Context, key string) error {
	if !ValidKey(key) {
		return ErrInvalidKey
	}
	if err := s.blobs.Delete(ctx, Namespace+key); err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return ErrNotFound
		}
		return fmt.Errorf("delete image: %w", err)
	}
	s.log.Info("image deleted", "key", key)
	return nil
}

// ReadAll читает blob целиком и закрывает его
func ReadAll(b *storage.Blob) ([]byte, error) {
	defer b.Body.Close()
	return io.ReadAll(b.Body)
}
