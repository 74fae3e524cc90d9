package sync

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"
	"golang.org/x/exp/slog"

	"timeline/internal/domain/journal"
	"timeline/internal/domain/normalize"
	"timeline/internal/infrastructure/storage"
)

const maxCommentLen = 2000

// Servicer сервис бандла на стороне сервера
type Servicer interface {
	// GetBundle возвращает текущий бандл целиком
	GetBundle(ctx context.Context) (*journal.CloudData, error)

	// LastModified возвращает отметку последней записи
	LastModified(ctx context.Context) (int64, error)

	// Apply применяет частичный бандл
	Apply(ctx context.Context, req *journal.PushRequest) (*journal.PushResponse, error)

	// PublicEntries выборка для публичного чтения по статическому токену
	PublicEntries(ctx context.Context, q PublicQuery) (*PublicBundle, error)

	AddComment(ctx context.Context, entryID, author, body string) (*Comment, error)
	ListComments(ctx context.Context, entryID string) ([]*Comment, error)

	// MigrateLegacy переносит бандл из старого ключа KV в реляционное хранилище
	MigrateLegacy(ctx context.Context) (*MigrationReport, error)
}

// Service реализация сервиса бандла
type Service struct {
	repo   Repository
	kv     storage.KV
	log    *slog.Logger
	config *ServiceConfig
}

// NewService создает новый сервис бандла
func NewService(repo Repository, kv storage.KV, log *slog.Logger, config *ServiceConfig) *Service {
	if config == nil {
		config = &ServiceConfig{}
	}
	if config.LegacyDataKey == "" {
		config.LegacyDataKey = "timeline_data"
	}
	if config.Now == nil {
		config.Now = time.Now
	}

	return &Service{
		repo:   repo,
		kv:     kv,
		log:    log.With("component", "sync"),
		config: config,
	}
}

func (s *Service) nowMs() int64 {
	return s.config.Now().UnixMilli()
}

func (s *Service) GetBundle(ctx context.Context) (*journal.CloudData, error) {
	b, err := s.repo.LoadBundle(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load bundle: %w", err)
	}
	b.ContentTypes = journal.WithBuiltins(b.ContentTypes)
	b.Categories = journal.DefaultCategories()
	return b, nil
}

func (s *Service) LastModified(ctx context.Context) (int64, error) {
	return s.repo.LastModified(ctx)
}

func (s *Service) Apply(ctx context.Context, req *journal.PushRequest) (*journal.PushResponse, error) {
	if err := journal.Validate(req); err != nil {
		return nil, err
	}

	// встроенные типы контента не удаляются
	kept := req.DeletedContentTypeIDs[:0:0]
	for _, id := range req.DeletedContentTypeIDs {
		if !journal.IsBuiltin(id) {
			kept = append(kept, id)
		}
	}
	req.DeletedContentTypeIDs = kept

	if req.Empty() {
		lm, err := s.repo.LastModified(ctx)
		if err != nil {
			return nil, fmt.Errorf("failed to get last modified: %w", err)
		}
		return &journal.PushResponse{Previous: lm, LastModified: lm}, nil
	}

	resp, err := s.repo.Apply(ctx, req, s.nowMs())
	if err != nil {
		return nil, fmt.Errorf("failed to apply bundle: %w", err)
	}

	s.log.Info("bundle applied",
		"entries", len(req.Entries),
		"content_types", len(req.ContentTypes),
		"media_items", len(req.MediaItems),
		"deleted", len(req.DeletedEntryIDs)+len(req.DeletedContentTypeIDs)+len(req.DeletedMediaItemIDs),
		"last_modified", resp.LastModified,
	)
	return &resp, nil
}

// Range переводит параметры запроса в границы выборки
func (q PublicQuery) Range() (EntryRange, error) {
	r := EntryRange{From: 0, To: math.MaxInt64, Limit: q.Limit}
	if r.Limit <= 0 {
		r.Limit = DefaultPublicLimit
	}
	if r.Limit > MaxPublicLimit {
		r.Limit = MaxPublicLimit
	}

	if q.Start != "" {
		t, _, err := parseDate(q.Start)
		if err != nil {
			return r, fmt.Errorf("%w: start: %v", ErrInvalidQuery, err)
		}
		r.From = t.UnixMilli()
	}
	if q.End != "" {
		t, dateOnly, err := parseDate(q.End)
		if err != nil {
			return r, fmt.Errorf("%w: end: %v", ErrInvalidQuery, err)
		}
		// дата без времени включает весь день
		if dateOnly {
			r.To = t.AddDate(0, 0, 1).UnixMilli()
		} else {
			r.To = t.UnixMilli() + 1
		}
	}
	if r.From >= r.To {
		return r, fmt.Errorf("%w: start is after end", ErrInvalidQuery)
	}
	return r, nil
}

func parseDate(s string) (time.Time, bool, error) {
	if t, err := time.Parse(time.DateOnly, s); err == nil {
		return t, true, nil
	}
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return time.Time{}, false, fmt.Errorf("expected YYYY-MM-DD or RFC3339, got %q", s)
	}
	return t, false, nil
}

func (s *Service) PublicEntries(ctx context.Context, q PublicQuery) (*PublicBundle, error) {
	r, err := q.Range()
	if err != nil {
		return nil, err
	}

	entries, err := s.repo.QueryEntries(ctx, r)
	if err != nil {
		return nil, fmt.Errorf("failed to query entries: %w", err)
	}
	b, err := s.GetBundle(ctx)
	if err != nil {
		return nil, err
	}

	return &PublicBundle{
		Entries:      entries,
		MediaItems:   b.MediaItems,
		ContentTypes: b.ContentTypes,
		LastModified: b.LastModified,
		Count:        len(entries),
	}, nil
}

func (s *Service) AddComment(ctx context.Context, entryID, author, body string) (*Comment, error) {
	body = strings.TrimSpace(body)
	author = strings.TrimSpace(author)
	verr := &journal.ValidationError{}
	if body == "" {
		verr.Fields = append(verr.Fields, journal.FieldError{Field: "body", Message: "must not be empty"})
	}
	if utf8.RuneCountInString(body) > maxCommentLen {
		verr.Fields = append(verr.Fields, journal.FieldError{Field: "body", Message: fmt.Sprintf("longer than %d characters", maxCommentLen)})
	}
	if len(verr.Fields) > 0 {
		return nil, verr
	}
	if author == "" {
		author = "anonymous"
	}

	if err := s.ensureEntry(ctx, entryID); err != nil {
		return nil, err
	}

	c := &Comment{
		ID:        uuid.NewString(),
		EntryID:   entryID,
		Author:    author,
		Body:      body,
		CreatedAt: s.nowMs(),
	}
	if err := s.repo.AddComment(ctx, c); err != nil {
		return nil, fmt.Errorf("failed to add comment: %w", err)
	}
	return c, nil
}

func (s *Service) ListComments(ctx context.Context, entryID string) ([]*Comment, error) {
	if err := s.ensureEntry(ctx, entryID); err != nil {
		return nil, err
	}
	comments, err := s.repo.ListComments(ctx, entryID)
	if err != nil {
		return nil, fmt.Errorf("failed to list comments: %w", err)
	}
	return comments, nil
}

func (s *Service) ensureEntry(ctx context.Context, entryID string) error {
	ok, err := s.repo.EntryExists(ctx, entryID)
	if err != nil {
		return fmt.Errorf("failed to check entry: %w", err)
	}
	if !ok {
		return ErrEntryNotFound
	}
	return nil
}

func (s *Service) MigrateLegacy(ctx context.Context) (*MigrationReport, error) {
	raw, err := s.kv.Get(ctx, s.config.LegacyDataKey)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return nil, ErrNoLegacyData
		}
		return nil, fmt.Errorf("failed to read legacy data: %w", err)
	}

	var legacy journal.CloudData
	if err := json.Unmarshal(raw, &legacy); err != nil {
		return nil, fmt.Errorf("%w: legacy bundle: %v", journal.ErrValidation, err)
	}
	if err := journal.ValidateBundle(&legacy); err != nil {
		return nil, err
	}

	types := journal.WithBuiltins(legacy.ContentTypes)
	req := &journal.PushRequest{
		Entries:      normalize.MigrateEntries(legacy.Entries, types),
		ContentTypes: types,
		MediaItems:   legacy.MediaItems,
	}
	if _, err := s.repo.Apply(ctx, req, s.nowMs()); err != nil {
		return nil, fmt.Errorf("failed to import legacy data: %w", err)
	}

	report := &MigrationReport{
		Entries:      len(req.Entries),
		ContentTypes: len(req.ContentTypes),
		MediaItems:   len(req.MediaItems),
	}
	s.log.Info("legacy data migrated",
		"entries", report.Entries,
		"content_types", report.ContentTypes,
		"media_items", report.MediaItems,
	)
	return report, nil
}
