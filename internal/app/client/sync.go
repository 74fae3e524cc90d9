package client

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"strconv"
	gosync "sync"
	"time"

	"golang.org/x/exp/slog"

	"timeline/internal/domain/diff"
	"timeline/internal/domain/journal"
	"timeline/internal/domain/media"
	"timeline/internal/domain/normalize"
)

// State состояние синхронизации
type State string

const (
	StateLoggedOut      State = "logged_out"
	StateAuthenticating State = "authenticating"
	StateIdle           State = "idle"
	StateSyncing        State = "syncing"
	StateError          State = "error"
)

// Status снимок состояния для вывода пользователю
type Status struct {
	State        State     `json:"state"`
	Error        string    `json:"error,omitempty"`
	LastSync     time.Time `json:"lastSync"`
	LastModified int64     `json:"lastModified"`
}

type LoginResult struct {
	Success bool   `json:"success"`
	Error   string `json:"error,omitempty"`
}

// SyncResult итог одного цикла синхронизации
type SyncResult struct {
	Pulled       bool          `json:"pulled"`
	Upserted     int           `json:"upserted"`
	Deleted      int           `json:"deleted"`
	Batches      int           `json:"batches"`
	LastModified int64         `json:"lastModified"`
	Duration     time.Duration `json:"duration"`
}

// SyncService управляет синхронизацией данных между клиентом и сервером
type SyncService struct {
	remote    Remote
	storage   Storage
	tokens    TokenStore
	log       *slog.Logger
	batchSize int
	now       func() time.Time

	// storeMu общий с App: локальные изменения и запись снимков не пересекаются
	storeMu *gosync.Mutex

	mu           gosync.RWMutex
	state        State
	lastErr      string
	lastSync     time.Time
	lastModified int64
	isSyncing    bool
}

// NewSyncService поднимает сохраненный токен и курсор синхронизации
func NewSyncService(ctx context.Context, remote Remote, storage Storage, tokens TokenStore, storeMu *gosync.Mutex, batchSize int, log *slog.Logger) (*SyncService, error) {
	s := &SyncService{
		remote:    remote,
		storage:   storage,
		tokens:    tokens,
		log:       log.With("component", "sync"),
		batchSize: batchSize,
		now:       time.Now,
		storeMu:   storeMu,
		state:     StateLoggedOut,
	}

	token, err := tokens.Load()
	if err != nil {
		return nil, err
	}
	if token != "" {
		remote.SetToken(token)
		s.state = StateIdle
	}

	cursor, err := s.cursor(ctx)
	if err != nil {
		return nil, err
	}
	s.lastModified = cursor

	if v, err := storage.Meta(ctx, metaLastSync); err == nil && v != "" {
		s.lastSync, _ = time.Parse(time.RFC3339, v)
	}
	return s, nil
}

func (s *SyncService) Status() Status {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return Status{
		State:        s.state,
		Error:        s.lastErr,
		LastSync:     s.lastSync,
		LastModified: s.lastModified,
	}
}

func (s *SyncService) setState(state State, msg string) {
	s.mu.Lock()
	s.state = state
	s.lastErr = msg
	s.mu.Unlock()
}

// Login обменивает пароль на токен устройства. Неудача не трогает
// сохраненный токен и возвращается в LoginResult.
func (s *SyncService) Login(ctx context.Context, password string) (*LoginResult, error) {
	s.setState(StateAuthenticating, "")

	token, err := s.remote.Login(ctx, password)
	if err != nil {
		msg := err.Error()
		if errors.Is(err, ErrUnauthorized) {
			msg = "Invalid password"
		}
		s.log.Warn("login failed", "error", err)
		s.setState(StateError, msg)
		return &LoginResult{Success: false, Error: msg}, nil
	}

	if err := s.tokens.Save(token); err != nil {
		s.setState(StateError, err.Error())
		return nil, err
	}
	s.remote.SetToken(token)
	s.setState(StateIdle, "")
	s.log.Info("logged in")
	return &LoginResult{Success: true}, nil
}

// Logout отзывает токен этого устройства. Ошибка сервера не мешает
// удалить локальный токен.
func (s *SyncService) Logout(ctx context.Context) error {
	token, err := s.tokens.Load()
	if err != nil {
		return err
	}
	if token != "" {
		if err := s.remote.Logout(ctx); err != nil {
			s.log.Warn("remote logout failed", "error", err)
		}
	}
	s.remote.SetToken("")
	if err := s.tokens.Clear(); err != nil {
		return err
	}
	s.setState(StateLoggedOut, "")
	s.log.Info("logged out")
	return nil
}

// Sync выполняет цикл pull/push. Одновременно идет не больше одного
// цикла, повторный вызов получает ErrSyncInProgress.
func (s *SyncService) Sync(ctx context.Context) (*SyncResult, error) {
	token, err := s.tokens.Load()
	if err != nil {
		return nil, fmt.Errorf("load token: %w", err)
	}

	s.mu.Lock()
	if s.isSyncing {
		s.mu.Unlock()
		return nil, ErrSyncInProgress
	}
	// после неудачного первого входа состояние error, но токена нет
	if token == "" || s.state == StateLoggedOut {
		s.mu.Unlock()
		return nil, ErrNotLoggedIn
	}
	s.isSyncing = true
	s.state = StateSyncing
	s.mu.Unlock()

	start := s.now()
	result, err := s.sync(ctx)

	s.mu.Lock()
	defer s.mu.Unlock()
	s.isSyncing = false
	if err != nil {
		s.state = StateError
		s.lastErr = err.Error()
		s.log.Error("sync failed", "error", err)
		return nil, err
	}
	s.state = StateIdle
	s.lastErr = ""
	s.lastSync = s.now()
	s.lastModified = result.LastModified
	result.Duration = s.now().Sub(start)
	s.log.Info("sync finished",
		"pulled", result.Pulled,
		"upserted", result.Upserted,
		"deleted", result.Deleted,
		"batches", result.Batches,
	)
	return result, nil
}

func (s *SyncService) sync(ctx context.Context) (*SyncResult, error) {
	result := &SyncResult{}

	cursor, err := s.cursor(ctx)
	if err != nil {
		return nil, err
	}
	remoteModified, err := s.remote.LastModified(ctx)
	if err != nil {
		return nil, fmt.Errorf("get last modified: %w", err)
	}
	if remoteModified > cursor {
		if cursor, err = s.pull(ctx, remoteModified); err != nil {
			return nil, err
		}
		// бандл мог оказаться новее прочитанной отметки
		remoteModified = cursor
		result.Pulled = true
	}
	result.LastModified = cursor

	st, err := s.prepare(ctx)
	if err != nil {
		return nil, err
	}

	entries := diff.Compute(st.pushed.Entries, st.current.Entries, nil)
	types := diff.Compute(st.pushed.ContentTypes, st.current.ContentTypes, journal.NotBuiltin)
	items := diff.Compute(st.pushed.MediaItems, st.current.MediaItems, nil)
	if entries.Empty() && types.Empty() && items.Empty() {
		return result, nil
	}

	// Курсор сдвигается на ответ сервера, только если между чтением
	// lastModified и записями бандл никто не менял. Иначе он остается
	// прежним, и следующий цикл заберет чужие изменения.
	observed, concurrent := remoteModified, false
	reqs := batches(entries, types, items, s.batchSize)
	for i, req := range reqs {
		resp, err := s.remote.Push(ctx, req)
		if err != nil {
			return nil, fmt.Errorf("push batch %d/%d: %w", i+1, len(reqs), err)
		}
		if resp.Previous != observed {
			concurrent = true
		}
		observed = resp.LastModified
		result.Batches++
		result.Upserted += len(req.Entries) + len(req.ContentTypes) + len(req.MediaItems)
		result.Deleted += len(req.DeletedEntryIDs) + len(req.DeletedContentTypeIDs) + len(req.DeletedMediaItemIDs)
	}

	if concurrent {
		s.log.Info("bundle changed by another device during push", "cursor", cursor)
	} else {
		cursor = observed
	}

	rows, err := st.current.Rows()
	if err != nil {
		return nil, err
	}
	if err := s.commit(ctx, Change{
		Sets: map[Set][]Row{SetPushed: rows},
		Meta: s.meta(cursor),
	}); err != nil {
		return nil, fmt.Errorf("store pushed snapshot: %w", err)
	}
	result.LastModified = cursor
	return result, nil
}

// pull заменяет локальные элементы бандлом сервера. Отправленным снимком
// становится бандл как есть, поэтому исправленные нормализацией записи
// уйдут на сервер в этом же цикле.
func (s *SyncService) pull(ctx context.Context, remoteModified int64) (int64, error) {
	bundle, err := s.remote.FetchBundle(ctx)
	if err != nil {
		return 0, fmt.Errorf("fetch bundle: %w", err)
	}
	raw := snapshotOf(bundle)
	normalized := raw
	normalized.Entries = normalize.MigrateEntries(bundle.Entries, journal.WithBuiltins(bundle.ContentTypes))

	pushedRows, err := raw.Rows()
	if err != nil {
		return 0, err
	}
	currentRows, err := normalized.Rows()
	if err != nil {
		return 0, err
	}

	cursor := bundle.LastModified
	if cursor == 0 {
		cursor = remoteModified
	}
	if err := s.commit(ctx, Change{
		Sets: map[Set][]Row{SetCurrent: currentRows, SetPushed: pushedRows},
		Meta: s.meta(cursor),
	}); err != nil {
		return 0, fmt.Errorf("replace local state: %w", err)
	}
	s.log.Info("pulled remote bundle", "entries", len(bundle.Entries), "last_modified", cursor)
	return cursor, nil
}

// prepare загружает снимки и нормализует текущие записи. Исправленные
// записи сохраняются сразу, до отправки.
func (s *SyncService) prepare(ctx context.Context) (*state, error) {
	s.storeMu.Lock()
	defer s.storeMu.Unlock()

	st, err := loadState(ctx, s.storage)
	if err != nil {
		return nil, err
	}

	entries := normalize.MigrateEntries(st.current.Entries, journal.WithBuiltins(st.current.ContentTypes))
	if slices.Equal(entries, st.current.Entries) {
		return st, nil
	}
	st.current.Entries = entries
	rows, err := st.current.Rows()
	if err != nil {
		return nil, err
	}
	if err := s.storage.Commit(ctx, Change{Sets: map[Set][]Row{SetCurrent: rows}}); err != nil {
		return nil, fmt.Errorf("store normalized entries: %w", err)
	}
	return st, nil
}

func (s *SyncService) commit(ctx context.Context, ch Change) error {
	s.storeMu.Lock()
	defer s.storeMu.Unlock()
	return s.storage.Commit(ctx, ch)
}

func (s *SyncService) meta(cursor int64) map[string]string {
	return map[string]string{
		metaCursor:   strconv.FormatInt(cursor, 10),
		metaLastSync: s.now().UTC().Format(time.RFC3339),
	}
}

func (s *SyncService) cursor(ctx context.Context) (int64, error) {
	v, err := s.storage.Meta(ctx, metaCursor)
	if err != nil {
		return 0, err
	}
	if v == "" {
		return 0, nil
	}
	cursor, err := strconv.ParseInt(v, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("parse sync cursor %q: %w", v, err)
	}
	return cursor, nil
}

// batches раскладывает изменения по запросам не больше size операций.
// Сначала upsert типов и медиа, потом записей, затем удаления.
func batches(entries diff.Result[*journal.Entry], types diff.Result[*journal.ContentType], items diff.Result[*journal.MediaItem], size int) []*journal.PushRequest {
	if size <= 0 {
		size = 1
	}
	var out []*journal.PushRequest
	cur := &journal.PushRequest{}
	next := func() {
		if cur.Size() >= size {
			out = append(out, cur)
			cur = &journal.PushRequest{}
		}
	}

	for _, ct := range types.Changed {
		cur.ContentTypes = append(cur.ContentTypes, ct)
		next()
	}
	for _, it := range items.Changed {
		cur.MediaItems = append(cur.MediaItems, it)
		next()
	}
	for _, e := range entries.Changed {
		cur.Entries = append(cur.Entries, e)
		next()
	}
	for _, id := range entries.DeletedIDs {
		cur.DeletedEntryIDs = append(cur.DeletedEntryIDs, id)
		next()
	}
	for _, id := range items.DeletedIDs {
		cur.DeletedMediaItemIDs = append(cur.DeletedMediaItemIDs, id)
		next()
	}
	for _, id := range types.DeletedIDs {
		cur.DeletedContentTypeIDs = append(cur.DeletedContentTypeIDs, id)
		next()
	}
	if !cur.Empty() {
		out = append(out, cur)
	}
	return out
}

// UploadImage загружает изображение. Записи не меняются: ссылку
// встраивает вызывающий.
func (s *SyncService) UploadImage(ctx context.Context, data []byte, contentType string) (*journal.ImageRef, error) {
	ref, err := s.remote.UploadImage(ctx, data, contentType)
	if err != nil {
		return nil, fmt.Errorf("upload image: %w", err)
	}
	s.log.Info("image uploaded", "key", ref.Key, "size", len(data))
	return ref, nil
}

// CleanupImages удаляет изображения, на которые никто не ссылается.
// Ссылки собираются по всем локальным и серверным записям и медиа до
// первого удаления.
func (s *SyncService) CleanupImages(ctx context.Context, confirmed bool) (*media.GCReport, error) {
	if !confirmed {
		return nil, ErrNotConfirmed
	}

	s.storeMu.Lock()
	local, err := loadSnapshot(ctx, s.storage)
	s.storeMu.Unlock()
	if err != nil {
		return nil, err
	}
	remote, err := s.remote.FetchBundle(ctx)
	if err != nil {
		return nil, fmt.Errorf("fetch bundle: %w", err)
	}

	referenced := media.ReferencedKeys(
		slices.Concat(local.Entries, remote.Entries),
		slices.Concat(local.MediaItems, remote.MediaItems),
	)

	keys, err := s.remote.ListImages(ctx)
	if err != nil {
		return nil, fmt.Errorf("list images: %w", err)
	}
	report := media.Sweep(keys, referenced)

	for _, key := range report.Deleted {
		if err := s.remote.DeleteImage(ctx, key); err != nil && !errors.Is(err, ErrNotFound) {
			return nil, fmt.Errorf("delete image %s: %w", key, err)
		}
	}
	s.log.Info("image cleanup finished", "deleted", len(report.Deleted), "kept", len(report.Kept))
	return &report, nil
}

// StartAutoSync синхронизирует по таймеру и по сигналам trigger до отмены
// ctx. Возвращаемый канал закрывается после остановки цикла.
func (s *SyncService) StartAutoSync(ctx context.Context, interval time.Duration, trigger <-chan struct{}) <-chan struct{} {
	done := make(chan struct{})
	go func() {
		defer close(done)
		var tick <-chan time.Time
		if interval > 0 {
			ticker := time.NewTicker(interval)
			defer ticker.Stop()
			tick = ticker.C
		}
		for {
			select {
			case <-ctx.Done():
				return
			case <-tick:
			case _, ok := <-trigger:
				if !ok {
					trigger = nil
					continue
				}
			}
			if _, err := s.Sync(ctx); err != nil && !errors.Is(err, ErrSyncInProgress) {
				s.log.Warn("auto sync failed", "error", err)
			}
		}
	}()
	return done
}
