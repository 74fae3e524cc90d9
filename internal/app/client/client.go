package client

import (
	"context"
	"fmt"
	"io"
	"slices"
	"sort"
	gosync "sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/exp/slog"

	"timeline/internal/app/client/config"
	"timeline/internal/domain/journal"
)

type App struct {
	config  *config.Config
	log     *slog.Logger
	storage Storage
	remote  Remote
	tokens  TokenStore
	sync    *SyncService
	// mu сериализует запись локального состояния, общий с SyncService
	mu  gosync.Mutex
	now func() time.Time
}

// New создает клиент с хранилищем SQLite и токеном в файле
func New(ctx context.Context, cfg *config.Config, log *slog.Logger) (*App, error) {
	storage, err := NewSQLiteStorage(cfg.DataPath)
	if err != nil {
		return nil, fmt.Errorf("open local store: %w", err)
	}
	app, err := NewWithDeps(ctx, cfg, storage, NewHTTPClient(cfg, log), NewFileTokenStore(cfg.TokenPath), log)
	if err != nil {
		storage.Close()
		return nil, err
	}
	return app, nil
}

// NewWithDeps собирает клиент из готовых зависимостей
func NewWithDeps(ctx context.Context, cfg *config.Config, storage Storage, remote Remote, tokens TokenStore, log *slog.Logger) (*App, error) {
	app := &App{
		config:  cfg,
		log:     log.With("component", "client"),
		storage: storage,
		remote:  remote,
		tokens:  tokens,
		now:     time.Now,
	}
	svc, err := NewSyncService(ctx, remote, storage, tokens, &app.mu, cfg.BatchSize, log)
	if err != nil {
		return nil, fmt.Errorf("init sync: %w", err)
	}
	app.sync = svc
	return app, nil
}

func (a *App) Sync() *SyncService { return a.sync }

func (a *App) Config() *config.Config { return a.config }

func (a *App) Logger() *slog.Logger { return a.log }

func (a *App) Close() error {
	return a.storage.Close()
}

// Snapshot текущее локальное состояние
func (a *App) Snapshot(ctx context.Context) (Snapshot, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	return loadSnapshot(ctx, a.storage)
}

// Entries записи по убыванию времени
func (a *App) Entries(ctx context.Context) ([]*journal.Entry, error) {
	snap, err := a.Snapshot(ctx)
	if err != nil {
		return nil, err
	}
	entries := slices.Clone(snap.Entries)
	sort.SliceStable(entries, func(i, j int) bool {
		return entries[i].Timestamp > entries[j].Timestamp
	})
	return entries, nil
}

// mutate применяет fn к снимку и сохраняет его целиком. Ошибка fn
// оставляет хранилище нетронутым.
func (a *App) mutate(ctx context.Context, fn func(*Snapshot) error) error {
	a.mu.Lock()
	defer a.mu.Unlock()

	snap, err := loadSnapshot(ctx, a.storage)
	if err != nil {
		return err
	}
	if err := fn(&snap); err != nil {
		return err
	}
	rows, err := snap.Rows()
	if err != nil {
		return err
	}
	return a.storage.Commit(ctx, Change{Sets: map[Set][]Row{SetCurrent: rows}})
}

// PutEntry добавляет или заменяет запись. Пустой id и время заполняются.
func (a *App) PutEntry(ctx context.Context, e *journal.Entry) (*journal.Entry, error) {
	e = e.Clone()
	if e.ID == "" {
		e.ID = uuid.NewString()
	}
	if e.Timestamp == 0 {
		e.Timestamp = a.now().UnixMilli()
	}
	if err := journal.Validate(e); err != nil {
		return nil, err
	}

	err := a.mutate(ctx, func(s *Snapshot) error {
		if err := journal.CheckEntry(e, journal.WithBuiltins(s.ContentTypes)); err != nil {
			return err
		}
		s.Entries = upsert(s.Entries, e)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return e, nil
}

// DeleteEntry удаляет запись и обратные ссылки на нее
func (a *App) DeleteEntry(ctx context.Context, id string) error {
	return a.mutate(ctx, func(s *Snapshot) error {
		arena := journal.NewArena(s.Entries)
		target, ok := arena[id]
		if !ok {
			return fmt.Errorf("%w: %s", journal.ErrEntryNotFound, id)
		}
		for _, linked := range target.LinkedEntries {
			if _, ok := arena[linked]; !ok {
				continue
			}
			if err := arena.Unlink(id, linked); err != nil {
				return err
			}
		}
		delete(arena, id)
		s.Entries = arena.Entries(s.Entries)
		return nil
	})
}

// LinkEntries связывает записи в обе стороны
func (a *App) LinkEntries(ctx context.Context, fromID, toID string) error {
	return a.mutate(ctx, func(s *Snapshot) error {
		arena := journal.NewArena(s.Entries)
		if err := arena.Link(fromID, toID); err != nil {
			return err
		}
		s.Entries = arena.Entries(s.Entries)
		return nil
	})
}

func (a *App) UnlinkEntries(ctx context.Context, fromID, toID string) error {
	return a.mutate(ctx, func(s *Snapshot) error {
		arena := journal.NewArena(s.Entries)
		if err := arena.Unlink(fromID, toID); err != nil {
			return err
		}
		s.Entries = arena.Entries(s.Entries)
		return nil
	})
}

// PutContentType добавляет или заменяет тип контента. У встроенных типов
// меняются только поля.
func (a *App) PutContentType(ctx context.Context, ct *journal.ContentType) error {
	c := *ct
	ct = &c
	if err := journal.Validate(ct); err != nil {
		return err
	}
	ct.BuiltIn = journal.IsBuiltin(ct.ID)
	return a.mutate(ctx, func(s *Snapshot) error {
		s.ContentTypes = upsert(s.ContentTypes, ct)
		return nil
	})
}

func (a *App) DeleteContentType(ctx context.Context, id string) error {
	if journal.IsBuiltin(id) {
		return ErrBuiltinContentType
	}
	return a.mutate(ctx, func(s *Snapshot) error {
		s.ContentTypes = slices.DeleteFunc(s.ContentTypes, func(ct *journal.ContentType) bool { return ct.ID == id })
		return nil
	})
}

func (a *App) PutMediaItem(ctx context.Context, item *journal.MediaItem) error {
	m := *item
	item = &m
	if item.CreatedAt == 0 {
		item.CreatedAt = a.now().UnixMilli()
	}
	if err := journal.Validate(item); err != nil {
		return err
	}
	return a.mutate(ctx, func(s *Snapshot) error {
		s.MediaItems = upsert(s.MediaItems, item)
		return nil
	})
}

func (a *App) DeleteMediaItem(ctx context.Context, id string) error {
	return a.mutate(ctx, func(s *Snapshot) error {
		s.MediaItems = slices.DeleteFunc(s.MediaItems, func(m *journal.MediaItem) bool { return m.ID == id })
		return nil
	})
}

// ImportReport количество импортированных элементов
type ImportReport struct {
	Entries      int `json:"entries"`
	ContentTypes int `json:"contentTypes"`
	MediaItems   int `json:"mediaItems"`
}

// Import заменяет локальное состояние бандлом из r. Некорректный бандл
// отклоняется до любых изменений.
func (a *App) Import(ctx context.Context, r io.Reader) (*ImportReport, error) {
	bundle, err := DecodeBundle(r)
	if err != nil {
		return nil, err
	}
	err = a.mutate(ctx, func(s *Snapshot) error {
		*s = snapshotOf(bundle)
		return nil
	})
	if err != nil {
		return nil, err
	}
	a.log.Info("bundle imported", "entries", len(bundle.Entries))
	return &ImportReport{
		Entries:      len(bundle.Entries),
		ContentTypes: len(bundle.ContentTypes),
		MediaItems:   len(bundle.MediaItems),
	}, nil
}

func (a *App) Export(ctx context.Context, w io.Writer) error {
	snap, err := a.Snapshot(ctx)
	if err != nil {
		return err
	}
	bundle := snap.Bundle()
	bundle.LastModified = a.sync.Status().LastModified
	return EncodeBundle(w, bundle)
}

// upsert заменяет элемент с тем же id или добавляет в конец
func upsert[T interface{ GetID() string }](items []T, item T) []T {
	for i, it := range items {
		if it.GetID() == item.GetID() {
			out := slices.Clone(items)
			out[i] = item
			return out
		}
	}
	return append(items, item)
}
