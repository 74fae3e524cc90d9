package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"golang.org/x/exp/slog"

	"timeline/internal/domain/journal"
	"timeline/internal/domain/sync"
)

const lastModifiedKey = "last_modified"

// BundleRepository реляционное хранилище записей, типов контента и медиа
type BundleRepository struct {
	db  *Storage
	log *slog.Logger
}

func NewBundleRepository(db *Storage, log *slog.Logger) *BundleRepository {
	return &BundleRepository{
		db:  db,
		log: log.With("component", "bundle_repository"),
	}
}

func (r *BundleRepository) LoadBundle(ctx context.Context) (*journal.CloudData, error) {
	entries, err := queryJSON[journal.Entry](ctx, r.db.Pool(), `SELECT data FROM entries ORDER BY ts, id`)
	if err != nil {
		r.log.Error("failed to load entries", "error", err)
		return nil, fmt.Errorf("load entries: %w", err)
	}
	types, err := queryJSON[journal.ContentType](ctx, r.db.Pool(), `SELECT data FROM content_types ORDER BY position, id`)
	if err != nil {
		r.log.Error("failed to load content types", "error", err)
		return nil, fmt.Errorf("load content types: %w", err)
	}
	media, err := queryJSON[journal.MediaItem](ctx, r.db.Pool(), `SELECT data FROM media_items ORDER BY created_at, id`)
	if err != nil {
		r.log.Error("failed to load media items", "error", err)
		return nil, fmt.Errorf("load media items: %w", err)
	}
	lm, err := r.LastModified(ctx)
	if err != nil {
		return nil, err
	}

	return &journal.CloudData{
		Entries:      entries,
		ContentTypes: types,
		MediaItems:   media,
		LastModified: lm,
	}, nil
}

func (r *BundleRepository) LastModified(ctx context.Context) (int64, error) {
	var lm int64
	err := r.db.Pool().QueryRow(ctx, `SELECT value FROM sync_meta WHERE key = $1`, lastModifiedKey).Scan(&lm)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return 0, nil
		}
		return 0, fmt.Errorf("get last modified: %w", err)
	}
	return lm, nil
}

func (r *BundleRepository) Apply(ctx context.Context, req *journal.PushRequest, now int64) (journal.PushResponse, error) {
	tx, err := r.db.Pool().Begin(ctx)
	if err != nil {
		return journal.PushResponse{}, fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback(ctx)

	var prev int64
	err = tx.QueryRow(ctx, `SELECT value FROM sync_meta WHERE key = $1 FOR UPDATE`, lastModifiedKey).Scan(&prev)
	if err != nil && !errors.Is(err, pgx.ErrNoRows) {
		return journal.PushResponse{}, fmt.Errorf("lock last modified: %w", err)
	}

	batch := &pgx.Batch{}
	for _, e := range req.Entries {
		data, err := json.Marshal(e)
		if err != nil {
			return journal.PushResponse{}, fmt.Errorf("encode entry %s: %w", e.ID, err)
		}
		batch.Queue(`INSERT INTO entries (id, type, ts, data) VALUES ($1, $2, $3, $4)
            ON CONFLICT (id) DO UPDATE SET type = EXCLUDED.type, ts = EXCLUDED.ts,
            data = EXCLUDED.data, updated_at = NOW()`,
			e.ID, string(e.Type), e.Timestamp, data)
	}
	for _, ct := range req.ContentTypes {
		data, err := json.Marshal(ct)
		if err != nil {
			return journal.PushResponse{}, fmt.Errorf("encode content type %s: %w", ct.ID, err)
		}
		batch.Queue(`INSERT INTO content_types (id, position, built_in, data) VALUES ($1, $2, $3, $4)
            ON CONFLICT (id) DO UPDATE SET position = EXCLUDED.position,
            built_in = EXCLUDED.built_in, data = EXCLUDED.data`,
			ct.ID, ct.Order, ct.BuiltIn, data)
	}
	for _, m := range req.MediaItems {
		data, err := json.Marshal(m)
		if err != nil {
			return journal.PushResponse{}, fmt.Errorf("encode media item %s: %w", m.ID, err)
		}
		batch.Queue(`INSERT INTO media_items (id, created_at, data) VALUES ($1, $2, $3)
            ON CONFLICT (id) DO UPDATE SET created_at = EXCLUDED.created_at, data = EXCLUDED.data`,
			m.ID, m.CreatedAt, data)
	}
	if len(req.DeletedEntryIDs) > 0 {
		batch.Queue(`DELETE FROM entries WHERE id = ANY($1)`, req.DeletedEntryIDs)
	}
	if len(req.DeletedContentTypeIDs) > 0 {
		batch.Queue(`DELETE FROM content_types WHERE id = ANY($1) AND NOT built_in`, req.DeletedContentTypeIDs)
	}
	if len(req.DeletedMediaItemIDs) > 0 {
		batch.Queue(`DELETE FROM media_items WHERE id = ANY($1)`, req.DeletedMediaItemIDs)
	}

	next := max(now, prev+1)
	batch.Queue(`INSERT INTO sync_meta (key, value) VALUES ($1, $2)
        ON CONFLICT (key) DO UPDATE SET value = EXCLUDED.value`, lastModifiedKey, next)

	if err := tx.SendBatch(ctx, batch).Close(); err != nil {
		r.log.Error("failed to apply bundle", "error", err)
		return journal.PushResponse{}, fmt.Errorf("apply bundle: %w", err)
	}
	if err := tx.Commit(ctx); err != nil {
		return journal.PushResponse{}, fmt.Errorf("commit: %w", err)
	}
	return journal.PushResponse{Previous: prev, LastModified: next}, nil
}

func (r *BundleRepository) QueryEntries(ctx context.Context, q sync.EntryRange) ([]*journal.Entry, error) {
	entries, err := queryJSON[journal.Entry](ctx, r.db.Pool(),
		`SELECT data FROM entries WHERE ts >= $1 AND ts < $2 ORDER BY ts DESC, id LIMIT $3`,
		q.From, q.To, q.Limit)
	if err != nil {
		r.log.Error("failed to query entries", "error", err)
		return nil, fmt.Errorf("query entries: %w", err)
	}
	return entries, nil
}

func (r *BundleRepository) EntryExists(ctx context.Context, id string) (bool, error) {
	var ok bool
	if err := r.db.Pool().QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM entries WHERE id = $1)`, id).Scan(&ok); err != nil {
		return false, fmt.Errorf("check entry: %w", err)
	}
	return ok, nil
}

func (r *BundleRepository) AddComment(ctx context.Context, c *sync.Comment) error {
	_, err := r.db.Pool().Exec(ctx,
		`INSERT INTO entry_comments (id, entry_id, author, body, created_at) VALUES ($1, $2, $3, $4, $5)`,
		c.ID, c.EntryID, c.Author, c.Body, c.CreatedAt)
	if err != nil {
		r.log.Error("failed to add comment", "entry_id", c.EntryID, "error", err)
		return fmt.Errorf("add comment: %w", err)
	}
	return nil
}

func (r *BundleRepository) ListComments(ctx context.Context, entryID string) ([]*sync.Comment, error) {
	rows, err := r.db.Pool().Query(ctx,
		`SELECT id, entry_id, author, body, created_at FROM entry_comments
         WHERE entry_id = $1 ORDER BY created_at, id`, entryID)
	if err != nil {
		return nil, fmt.Errorf("list comments: %w", err)
	}
	comments, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (*sync.Comment, error) {
		var c sync.Comment
		err := row.Scan(&c.ID, &c.EntryID, &c.Author, &c.Body, &c.CreatedAt)
		return &c, err
	})
	if err != nil {
		return nil, fmt.Errorf("scan comments: %w", err)
	}
	return comments, nil
}

type querier interface {
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
}

func queryJSON[T any](ctx context.Context, q querier, sql string, args ...any) ([]*T, error) {
	rows, err := q.Query(ctx, sql, args...)
	if err != nil {
		return nil, err
	}
	return pgx.CollectRows(rows, func(row pgx.CollectableRow) (*T, error) {
		var raw []byte
		if err := row.Scan(&raw); err != nil {
			return nil, err
		}
		var v T
		if err := json.Unmarshal(raw, &v); err != nil {
			return nil, err
		}
		return &v, nil
	})
}
