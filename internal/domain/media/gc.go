package media

import (
	"regexp"
	"sort"
	"strings"

	"timeline/internal/domain/journal"
)

// ключ не заканчивается точкой: пунктуация после маркера не входит в ключ
var markerPattern = regexp.MustCompile(`/api/image/([A-Za-z0-9_-]+(?:\.[A-Za-z0-9_-]+)*)`)

// GCReport результат очистки изображений
type GCReport struct {
	Deleted []string `json:"deleted"`
	Kept    []string `json:"kept"`
}

// ReferencedKeys собирает ключи изображений, на которые ссылаются записи
// (маркеры /api/image/<key> в тексте) и медиа (coverUrl). Скан завершается
// целиком до того, как результат можно использовать для удаления.
func ReferencedKeys(entries []*journal.Entry, items []*journal.MediaItem) map[string]struct{} {
	refs := make(map[string]struct{})
	for _, e := range entries {
		for _, m := range markerPattern.FindAllStringSubmatch(e.Content, -1) {
			refs[m[1]] = struct{}{}
		}
	}
	for _, it := range items {
		if it.CoverURL == "" {
			continue
		}
		if m := markerPattern.FindStringSubmatch(it.CoverURL); m != nil {
			refs[m[1]] = struct{}{}
			continue
		}
		// coverUrl может хранить голый ключ
		if !strings.Contains(it.CoverURL, "/") && ValidKey(it.CoverURL) {
			refs[it.CoverURL] = struct{}{}
		}
	}
	return refs
}

// Sweep делит ключи хранилища на удаляемые и сохраняемые. Оба списка отсортированы.
func Sweep(all []string, referenced map[string]struct{}) GCReport {
	report := GCReport{Deleted: []string{}, Kept: []string{}}
	for _, k := range all {
		if _, ok := referenced[k]; ok {
			report.Kept = append(report.Kept, k)
		} else {
			report.Deleted = append(report.Deleted, k)
		}
	}
	sort.Strings(report.Deleted)
	sort.Strings(report.Kept)
	return report
}
