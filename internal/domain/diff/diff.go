// Package diff вычисляет набор изменений между двумя снимками элементов.
//
// Элементы сравниваются по ссылке: измененный элемент обязан быть новой
// аллокацией. Правка на месте не будет замечена.
package diff

// Identifiable элемент со стабильным id. Ожидаются указатели.
type Identifiable interface {
	comparable
	GetID() string
}

// Result изменения: новые или замененные элементы и удаленные id
type Result[T Identifiable] struct {
	Changed    []T
	DeletedIDs []string
}

// Empty сообщает, что изменений нет
func (r Result[T]) Empty() bool {
	return len(r.Changed) == 0 && len(r.DeletedIDs) == 0
}

// Compute сравнивает prev и current. deleteFilter получает удаленный элемент
// из prev; nil означает удалять все отсутствующие.
func Compute[T Identifiable](prev, current []T, deleteFilter func(T) bool) Result[T] {
	byID := make(map[string]T, len(prev))
	for _, item := range prev {
		byID[item.GetID()] = item
	}

	res := Result[T]{
		Changed:    []T{},
		DeletedIDs: []string{},
	}

	seen := make(map[string]struct{}, len(current))
	for _, item := range current {
		id := item.GetID()
		seen[id] = struct{}{}
		old, ok := byID[id]
		if !ok || old != item {
			res.Changed = append(res.Changed, item)
		}
	}

	for _, item := range prev {
		id := item.GetID()
		if _, ok := seen[id]; ok {
			continue
		}
		if deleteFilter == nil || deleteFilter(item) {
			res.DeletedIDs = append(res.DeletedIDs, id)
		}
	}

	return res
}
