// Package fsblob объектное хранилище в каталоге файловой системы
package fsblob

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"mime"
	"os"
	"path"
	"path/filepath"
	"sort"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
	"golang.org/x/exp/slog"

	"timeline/internal/infrastructure/storage"
)

var ErrInvalidKey = errors.New("invalid blob key")

type Store struct {
	root string
	log  *slog.Logger
}

func New(root string, log *slog.Logger) (*Store, error) {
	if err := os.MkdirAll(root, 0o750); err != nil {
		return nil, fmt.Errorf("create blob dir: %w", err)
	}
	return &Store{root: root, log: log.With("component", "fsblob")}, nil
}

func (s *Store) path(key string) (string, error) {
	if key == "" || !filepath.IsLocal(filepath.FromSlash(key)) {
		return "", fmt.Errorf("%w: %q", ErrInvalidKey, key)
	}
	return filepath.Join(s.root, filepath.FromSlash(key)), nil
}

func (s *Store) Put(_ context.Context, key, _ string, data []byte) error {
	p, err := s.path(key)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(p), 0o750); err != nil {
		return fmt.Errorf("create blob dir: %w", err)
	}
	tmp := p + ".tmp"
	if err := os.WriteFile(tmp, data, 0o640); err != nil {
		return fmt.Errorf("write blob: %w", err)
	}
	if err := os.Rename(tmp, p); err != nil {
		_ = os.Remove(tmp)
		return fmt.Errorf("commit blob: %w", err)
	}
	return nil
}

func (s *Store) Get(_ context.Context, key string) (*storage.Blob, error) {
	p, err := s.path(key)
	if err != nil {
		return nil, err
	}
	f, err := os.Open(p)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, storage.ErrNotFound
		}
		return nil, fmt.Errorf("open blob: %w", err)
	}
	st, err := f.Stat()
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("stat blob: %w", err)
	}
	ct := mime.TypeByExtension(path.Ext(key))
	if ct == "" {
		ct = "application/octet-stream"
	}
	return &storage.Blob{Key: key, ContentType: ct, Size: st.Size(), Body: f}, nil
}

func (s *Store) Delete(_ context.Context, key string) error {
	p, err := s.path(key)
	if err != nil {
		return err
	}
	if err := os.Remove(p); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return storage.ErrNotFound
		}
		return fmt.Errorf("delete blob: %w", err)
	}
	return nil
}

// List возвращает ключи под каталогом prefix ("images/" и т.п.)
func (s *Store) List(_ context.Context, prefix string) ([]string, error) {
	dir := strings.Trim(path.Clean("/"+prefix), "/")
	if dir == "" {
		dir = "."
	}
	if !fs.ValidPath(dir) {
		return nil, fmt.Errorf("%w: %q", ErrInvalidKey, prefix)
	}

	root := os.DirFS(s.root)
	if _, err := fs.Stat(root, dir); errors.Is(err, fs.ErrNotExist) {
		return []string{}, nil
	}
	sub, err := fs.Sub(root, dir)
	if err != nil {
		return nil, fmt.Errorf("list blobs: %w", err)
	}
	keys, err := doublestar.Glob(sub, "**", doublestar.WithFilesOnly(), doublestar.WithFailOnIOErrors())
	if err != nil {
		s.log.Error("failed to list blobs", "prefix", prefix, "error", err)
		return nil, fmt.Errorf("list blobs: %w", err)
	}

	out := make([]string, 0, len(keys))
	for _, k := range keys {
		if path.Ext(k) == ".tmp" {
			continue
		}
		if dir != "." {
			k = path.Join(dir, k)
		}
		out = append(out, k)
	}
	sort.Strings(out)
	return out, nil
}
