package journal

const (
	ContentTypeNote = "note"
	ContentTypeTask = "task"
)

// BuiltinContentTypes возвращает свежие копии встроенных типов контента
func BuiltinContentTypes() []*ContentType {
	return []*ContentType{
		{
			ID:      ContentTypeNote,
			Name:    "Note",
			Fields:  []FieldDescriptor{},
			BuiltIn: true,
			Order:   0,
		},
		{
			ID:   ContentTypeTask,
			Name: "Task",
			Fields: []FieldDescriptor{
				{ID: "done", Name: "Done", Type: FieldBoolean, Default: false},
			},
			BuiltIn: true,
			Order:   1,
		},
	}
}

// IsBuiltin сообщает, является ли id встроенным типом
func IsBuiltin(id string) bool {
	return id == ContentTypeNote || id == ContentTypeTask
}

// WithBuiltins дополняет набор отсутствующими встроенными типами.
// Если все встроенные уже есть, возвращается исходный срез.
func WithBuiltins(types []*ContentType) []*ContentType {
	present := make(map[string]struct{}, len(types))
	for _, ct := range types {
		present[ct.ID] = struct{}{}
	}

	var missing []*ContentType
	for _, b := range BuiltinContentTypes() {
		if _, ok := present[b.ID]; !ok {
			missing = append(missing, b)
		}
	}
	if len(missing) == 0 {
		return types
	}

	out := make([]*ContentType, 0, len(types)+len(missing))
	out = append(out, missing...)
	return append(out, types...)
}

// NotBuiltin фильтр удаления для diff: встроенные типы не удаляются
func NotBuiltin(ct *ContentType) bool {
	return !ct.BuiltIn && !IsBuiltin(ct.ID)
}

// DefaultCategories системный набор категорий
func DefaultCategories() []*Category {
	return []*Category{
		{ID: "hustle", Label: "Hustle", Color: "#f59e0b", Description: "Work and side projects"},
		{ID: "health", Label: "Health", Color: "#10b981", Description: "Exercise, sleep, food"},
		{ID: "learning", Label: "Learning", Color: "#3b82f6", Description: "Reading and courses"},
		{ID: "social", Label: "Social", Color: "#ec4899", Description: "Friends and family"},
		{ID: "rest", Label: "Rest", Color: "#8b5cf6", Description: "Downtime"},
	}
}

// IsCategory сообщает, входит ли id в системный набор
func IsCategory(id string) bool {
	for _, c := range DefaultCategories() {
		if c.ID == id {
			return true
		}
	}
	return false
}
