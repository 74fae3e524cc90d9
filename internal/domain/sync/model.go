package sync

import (
	"time"

	"timeline/internal/domain/journal"
)

const (
	DefaultPublicLimit = 100
	MaxPublicLimit     = 1000
)

// Comment публичный комментарий к записи
type Comment struct {
	ID        string `json:"id"`
	EntryID   string `json:"entryId"`
	Author    string `json:"author"`
	Body      string `json:"body"`
	CreatedAt int64  `json:"createdAt"`
}

// PublicQuery параметры публичного чтения. Даты в формате YYYY-MM-DD или RFC3339.
type PublicQuery struct {
	Start string
	End   string
	Limit int
}

// EntryRange нормализованные границы выборки, From включительно, To исключительно (мс)
type EntryRange struct {
	From  int64
	To    int64
	Limit int
}

// PublicBundle ответ публичного чтения
type PublicBundle struct {
	Entries      []*journal.Entry       `json:"entries"`
	MediaItems   []*journal.MediaItem   `json:"mediaItems"`
	ContentTypes []*journal.ContentType `json:"contentTypes"`
	LastModified int64                  `json:"lastModified"`
	Count        int                    `json:"count"`
}

// MigrationReport количество перенесенных элементов
type MigrationReport struct {
	Entries      int `json:"entries"`
	ContentTypes int `json:"contentTypes"`
	MediaItems   int `json:"mediaItems"`
}

// ServiceConfig настройки сервиса бандла
type ServiceConfig struct {
	LegacyDataKey string
	Now           func() time.Time
}
