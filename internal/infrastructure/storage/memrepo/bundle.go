// Package memrepo реляционное хранилище бандла в памяти для запуска без
// базы данных и для тестов
package memrepo

import (
	"context"
	"slices"
	"sort"
	stdsync "sync"

	"timeline/internal/domain/journal"
	"timeline/internal/domain/sync"
)

type BundleRepository struct {
	mu           stdsync.RWMutex
	entries      map[string]*journal.Entry
	contentTypes map[string]*journal.ContentType
	mediaItems   map[string]*journal.MediaItem
	comments     map[string][]*sync.Comment
	lastModified int64
}

func NewBundleRepository() *BundleRepository {
	return &BundleRepository{
		entries:      make(map[string]*journal.Entry),
		contentTypes: make(map[string]*journal.ContentType),
		mediaItems:   make(map[string]*journal.MediaItem),
		comments:     make(map[string][]*sync.Comment),
	}
}

func (r *BundleRepository) LoadBundle(_ context.Context) (*journal.CloudData, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	entries := values(r.entries)
	sort.SliceStable(entries, func(i, j int) bool {
		if entries[i].Timestamp != entries[j].Timestamp {
			return entries[i].Timestamp < entries[j].Timestamp
		}
		return entries[i].ID < entries[j].ID
	})
	types := values(r.contentTypes)
	sort.SliceStable(types, func(i, j int) bool {
		if types[i].Order != types[j].Order {
			return types[i].Order < types[j].Order
		}
		return types[i].ID < types[j].ID
	})
	media := values(r.mediaItems)
	sort.SliceStable(media, func(i, j int) bool {
		if media[i].CreatedAt != media[j].CreatedAt {
			return media[i].CreatedAt < media[j].CreatedAt
		}
		return media[i].ID < media[j].ID
	})

	return &journal.CloudData{
		Entries:      entries,
		ContentTypes: types,
		MediaItems:   media,
		LastModified: r.lastModified,
	}, nil
}

func (r *BundleRepository) LastModified(_ context.Context) (int64, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.lastModified, nil
}

func (r *BundleRepository) Apply(_ context.Context, req *journal.PushRequest, now int64) (journal.PushResponse, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, e := range req.Entries {
		c := *e
		r.entries[e.ID] = &c
	}
	for _, ct := range req.ContentTypes {
		c := *ct
		r.contentTypes[ct.ID] = &c
	}
	for _, m := range req.MediaItems {
		c := *m
		r.mediaItems[m.ID] = &c
	}
	for _, id := range req.DeletedEntryIDs {
		delete(r.entries, id)
		delete(r.comments, id)
	}
	for _, id := range req.DeletedContentTypeIDs {
		if ct, ok := r.contentTypes[id]; ok && !ct.BuiltIn {
			delete(r.contentTypes, id)
		}
	}
	for _, id := range req.DeletedMediaItemIDs {
		delete(r.mediaItems, id)
	}

	prev := r.lastModified
	r.lastModified = max(now, prev+1)
	return journal.PushResponse{Previous: prev, LastModified: r.lastModified}, nil
}

func (r *BundleRepository) QueryEntries(_ context.Context, q sync.EntryRange) ([]*journal.Entry, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]*journal.Entry, 0)
	for _, e := range r.entries {
		if e.Timestamp >= q.From && e.Timestamp < q.To {
			out = append(out, e)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Timestamp != out[j].Timestamp {
			return out[i].Timestamp > out[j].Timestamp
		}
		return out[i].ID < out[j].ID
	})
	if len(out) > q.Limit {
		out = out[:q.Limit]
	}
	return out, nil
}

func (r *BundleRepository) EntryExists(_ context.Context, id string) (bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, ok := r.entries[id]
	return ok, nil
}

func (r *BundleRepository) AddComment(_ context.Context, c *sync.Comment) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.comments[c.EntryID] = append(r.comments[c.EntryID], c)
	return nil
}

func (r *BundleRepository) ListComments(_ context.Context, entryID string) ([]*sync.Comment, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := slices.Clone(r.comments[entryID])
	if out == nil {
		out = []*sync.Comment{}
	}
	return out, nil
}

// Ping всегда успешен
func (r *BundleRepository) Ping(context.Context) error { return nil }

func values[T any](m map[string]*T) []*T {
	out := make([]*T, 0, len(m))
	for _, v := range m {
		out = append(out, v)
	}
	return out
}
