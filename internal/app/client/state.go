package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"

	"timeline/internal/domain/journal"
)

// Snapshot декодированный набор элементов
type Snapshot struct {
	Entries      []*journal.Entry
	ContentTypes []*journal.ContentType
	MediaItems   []*journal.MediaItem
}

// state текущий и отправленный снимки. Неизменившиеся строки текущего
// снимка указывают на те же объекты, что и в отправленном, поэтому
// diff по ссылкам видит только реальные правки.
type state struct {
	current Snapshot
	pushed  Snapshot
}

type decoded struct {
	raw  []byte
	item any
}

func loadState(ctx context.Context, st Storage) (*state, error) {
	pushedRows, err := st.Rows(ctx, SetPushed)
	if err != nil {
		return nil, fmt.Errorf("load pushed: %w", err)
	}
	currentRows, err := st.Rows(ctx, SetCurrent)
	if err != nil {
		return nil, fmt.Errorf("load current: %w", err)
	}

	pool := make(map[Kind]map[string]decoded)
	pushed, err := decodeRows(pushedRows, nil, pool)
	if err != nil {
		return nil, fmt.Errorf("decode pushed: %w", err)
	}
	current, err := decodeRows(currentRows, pool, nil)
	if err != nil {
		return nil, fmt.Errorf("decode current: %w", err)
	}
	return &state{current: current, pushed: pushed}, nil
}

// loadSnapshot только текущее состояние
func loadSnapshot(ctx context.Context, st Storage) (Snapshot, error) {
	rows, err := st.Rows(ctx, SetCurrent)
	if err != nil {
		return Snapshot{}, fmt.Errorf("load current: %w", err)
	}
	return decodeRows(rows, nil, nil)
}

// decodeRows декодирует строки. Если в intern есть строка с тем же
// содержимым, переиспользуется ее объект; record собирает декодированное.
func decodeRows(rows []Row, intern, record map[Kind]map[string]decoded) (Snapshot, error) {
	var snap Snapshot
	for _, r := range rows {
		if prev, ok := intern[r.Kind][r.ID]; ok && bytes.Equal(prev.raw, r.Data) {
			snap.add(prev.item)
			continue
		}
		item, err := decodeRow(r)
		if err != nil {
			return Snapshot{}, err
		}
		if record != nil {
			if record[r.Kind] == nil {
				record[r.Kind] = make(map[string]decoded)
			}
			record[r.Kind][r.ID] = decoded{raw: r.Data, item: item}
		}
		snap.add(item)
	}
	return snap, nil
}

func decodeRow(r Row) (any, error) {
	var item any
	switch r.Kind {
	case KindEntry:
		item = new(journal.Entry)
	case KindContentType:
		item = new(journal.ContentType)
	case KindMediaItem:
		item = new(journal.MediaItem)
	default:
		return nil, fmt.Errorf("unknown row kind %q", r.Kind)
	}
	if err := json.Unmarshal(r.Data, item); err != nil {
		return nil, fmt.Errorf("decode %s %s: %w", r.Kind, r.ID, err)
	}
	return item, nil
}

func (s *Snapshot) add(item any) {
	switch v := item.(type) {
	case *journal.Entry:
		s.Entries = append(s.Entries, v)
	case *journal.ContentType:
		s.ContentTypes = append(s.ContentTypes, v)
	case *journal.MediaItem:
		s.MediaItems = append(s.MediaItems, v)
	}
}

// Rows кодирует снимок в строки хранилища
func (s Snapshot) Rows() ([]Row, error) {
	rows := make([]Row, 0, len(s.Entries)+len(s.ContentTypes)+len(s.MediaItems))
	var err error
	if rows, err = appendRows(rows, KindEntry, s.Entries); err != nil {
		return nil, err
	}
	if rows, err = appendRows(rows, KindContentType, s.ContentTypes); err != nil {
		return nil, err
	}
	return appendRows(rows, KindMediaItem, s.MediaItems)
}

func appendRows[T interface{ GetID() string }](rows []Row, kind Kind, items []T) ([]Row, error) {
	for _, it := range items {
		data, err := json.Marshal(it)
		if err != nil {
			return nil, fmt.Errorf("encode %s %s: %w", kind, it.GetID(), err)
		}
		rows = append(rows, Row{Kind: kind, ID: it.GetID(), Data: data})
	}
	return rows, nil
}

// Bundle снимок в форме бандла обмена
func (s Snapshot) Bundle() *journal.CloudData {
	entries := s.Entries
	if entries == nil {
		entries = []*journal.Entry{}
	}
	return &journal.CloudData{
		Entries:      entries,
		ContentTypes: s.ContentTypes,
		MediaItems:   s.MediaItems,
		Categories:   journal.DefaultCategories(),
	}
}

func snapshotOf(b *journal.CloudData) Snapshot {
	return Snapshot{Entries: b.Entries, ContentTypes: b.ContentTypes, MediaItems: b.MediaItems}
}
