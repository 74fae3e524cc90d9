package sync

import (
	"context"

	"timeline/internal/domain/journal"
)

// Repository реляционное хранилище бандла
type Repository interface {
	// LoadBundle возвращает записи, типы контента и медиа без категорий
	LoadBundle(ctx context.Context) (*journal.CloudData, error)
	LastModified(ctx context.Context) (int64, error)
	// Apply применяет upsert и удаления одной транзакцией. Новый lastModified
	// равен max(now, предыдущий+1), предыдущий возвращается в Previous.
	Apply(ctx context.Context, req *journal.PushRequest, now int64) (journal.PushResponse, error)
	QueryEntries(ctx context.Context, r EntryRange) ([]*journal.Entry, error)
	EntryExists(ctx context.Context, id string) (bool, error)
	AddComment(ctx context.Context, c *Comment) error
	ListComments(ctx context.Context, entryID string) ([]*Comment, error)
}
