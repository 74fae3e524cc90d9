package client

import (
	"context"
	"sort"
	gosync "sync"
)

// Set набор строк локального хранилища
type Set string

const (
	// SetCurrent текущее локальное состояние
	SetCurrent Set = "current"
	// SetPushed снимок, последний раз успешно отправленный на сервер
	SetPushed Set = "pushed"
)

type Kind string

const (
	KindEntry       Kind = "entry"
	KindContentType Kind = "content_type"
	KindMediaItem   Kind = "media_item"
)

// Ключи метаданных
const (
	metaCursor   = "last_modified"
	metaLastSync = "last_sync"
)

// Row элемент в закодированном виде. Порядок строк в наборе сохраняется.
type Row struct {
	Kind Kind
	ID   string
	Data []byte
}

// Change атомарная запись: наборы заменяются целиком, метаданные по ключам
type Change struct {
	Sets map[Set][]Row
	Meta map[string]string
}

// Storage локальное долговременное хранилище клиента
type Storage interface {
	Rows(ctx context.Context, set Set) ([]Row, error)
	// Meta возвращает "" для отсутствующего ключа
	Meta(ctx context.Context, key string) (string, error)
	Commit(ctx context.Context, ch Change) error
	Close() error
}

// MemoryStorage хранилище в памяти для тестов и режима без диска
type MemoryStorage struct {
	mu   gosync.RWMutex
	sets map[Set][]Row
	meta map[string]string
}

func NewMemoryStorage() *MemoryStorage {
	return &MemoryStorage{
		sets: make(map[Set][]Row),
		meta: make(map[string]string),
	}
}

func (m *MemoryStorage) Rows(_ context.Context, set Set) ([]Row, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	rows := m.sets[set]
	out := make([]Row, len(rows))
	copy(out, rows)
	sortRows(out)
	return out, nil
}

func (m *MemoryStorage) Meta(_ context.Context, key string) (string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.meta[key], nil
}

func (m *MemoryStorage) Commit(_ context.Context, ch Change) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for set, rows := range ch.Sets {
		cp := make([]Row, len(rows))
		for i, r := range rows {
			cp[i] = Row{Kind: r.Kind, ID: r.ID, Data: append([]byte(nil), r.Data...)}
		}
		m.sets[set] = cp
	}
	for k, v := range ch.Meta {
		m.meta[k] = v
	}
	return nil
}

func (m *MemoryStorage) Close() error { return nil }

var kindOrder = map[Kind]int{KindEntry: 0, KindContentType: 1, KindMediaItem: 2}

// sortRows группирует строки по виду, сохраняя порядок внутри вида
func sortRows(rows []Row) {
	sort.SliceStable(rows, func(i, j int) bool {
		return kindOrder[rows[i].Kind] < kindOrder[rows[j].Kind]
	})
}
