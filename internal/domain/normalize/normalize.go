// Package normalize чинит записи, загруженные из старых версий клиента.
package normalize

import "timeline/internal/domain/journal"

// MigrateEntries приводит записи к текущей схеме типов контента.
// Нетронутые записи возвращаются по исходному указателю, на каждую
// измененную приходится не больше одной новой аллокации.
func MigrateEntries(entries []*journal.Entry, contentTypes []*journal.ContentType) []*journal.Entry {
	types := make(map[string]*journal.ContentType, len(contentTypes))
	for _, ct := range contentTypes {
		types[ct.ID] = ct
	}

	out := make([]*journal.Entry, len(entries))
	for i, e := range entries {
		out[i] = migrate(e, types)
	}
	return out
}

func migrate(orig *journal.Entry, types map[string]*journal.ContentType) *journal.Entry {
	e := orig
	edit := func() *journal.Entry {
		if e == orig {
			e = orig.Clone()
		}
		return e
	}

	// категория, ставшая типом контента
	if e.Category != "" {
		if _, ok := types[e.Category]; ok {
			c := edit()
			if c.ContentType == "" {
				c.ContentType = c.Category
			}
			c.Category = ""
		}
	}

	if e.Type == journal.EntrySessionEnd && e.Category != "" {
		edit().Category = ""
	}

	if e.ContentType != "" {
		if _, ok := types[e.ContentType]; !ok {
			c := edit()
			c.ContentType = ""
			c.FieldValues = nil
		}
	}

	if e.ContentType == "" && e.FieldValues != nil {
		edit().FieldValues = nil
	}

	if ct, ok := types[e.ContentType]; ok && e.FieldValues != nil {
		if pruned, changed := ct.Prune(e.FieldValues); changed {
			edit().FieldValues = pruned
		}
	}

	return e
}
