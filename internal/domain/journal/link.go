package journal

import "slices"

// Arena индекс записей по id. Связи между записями это просто id в
// LinkedEntries, симметрию поддерживают Link и Unlink.
type Arena map[string]*Entry

// NewArena строит индекс по срезу записей
func NewArena(entries []*Entry) Arena {
	a := make(Arena, len(entries))
	for _, e := range entries {
		a[e.ID] = e
	}
	return a
}

// Link связывает две записи. Обе стороны заменяются новыми копиями.
func (a Arena) Link(fromID, toID string) error {
	from, to, err := a.pair(fromID, toID)
	if err != nil {
		return err
	}
	a[fromID] = withLink(from, toID)
	a[toID] = withLink(to, fromID)
	return nil
}

// Unlink удаляет связь с обеих сторон
func (a Arena) Unlink(fromID, toID string) error {
	from, to, err := a.pair(fromID, toID)
	if err != nil {
		return err
	}
	a[fromID] = withoutLink(from, toID)
	a[toID] = withoutLink(to, fromID)
	return nil
}

// Entries возвращает записи в порядке исходного среза, подставляя копии из арены
func (a Arena) Entries(order []*Entry) []*Entry {
	out := make([]*Entry, 0, len(order))
	for _, e := range order {
		if cur, ok := a[e.ID]; ok {
			out = append(out, cur)
		}
	}
	return out
}

func (a Arena) pair(fromID, toID string) (*Entry, *Entry, error) {
	from, ok := a[fromID]
	if !ok {
		return nil, nil, ErrEntryNotFound
	}
	to, ok := a[toID]
	if !ok {
		return nil, nil, ErrEntryNotFound
	}
	return from, to, nil
}

func withLink(e *Entry, id string) *Entry {
	if slices.Contains(e.LinkedEntries, id) {
		return e
	}
	c := e.Clone()
	c.LinkedEntries = append(slices.Clone(e.LinkedEntries), id)
	return c
}

func withoutLink(e *Entry, id string) *Entry {
	if !slices.Contains(e.LinkedEntries, id) {
		return e
	}
	c := e.Clone()
	c.LinkedEntries = slices.DeleteFunc(slices.Clone(e.LinkedEntries), func(s string) bool { return s == id })
	if len(c.LinkedEntries) == 0 {
		c.LinkedEntries = nil
	}
	return c
}
