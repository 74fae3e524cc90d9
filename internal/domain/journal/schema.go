package journal

import (
	"errors"
	"fmt"
	"slices"
)

// FieldValues значения динамических полей записи
type FieldValues map[string]any

// Field ищет описание поля по id
func (c *ContentType) Field(id string) (FieldDescriptor, bool) {
	for _, f := range c.Fields {
		if f.ID == id {
			return f, true
		}
	}
	return FieldDescriptor{}, false
}

// Prune отбрасывает ключи, не объявленные в схеме. Пустая схема ничего не
// отбрасывает. Если отбрасывать нечего, возвращается исходная map.
func (c *ContentType) Prune(values FieldValues) (FieldValues, bool) {
	if len(c.Fields) == 0 || len(values) == 0 {
		return values, false
	}

	extra := false
	for k := range values {
		if _, ok := c.Field(k); !ok {
			extra = true
			break
		}
	}
	if !extra {
		return values, false
	}

	pruned := make(FieldValues, len(values))
	for k, v := range values {
		if _, ok := c.Field(k); ok {
			pruned[k] = v
		}
	}
	return pruned, true
}

// Check проверяет ключи и типы значений по схеме
func (c *ContentType) Check(values FieldValues) error {
	verr := &ValidationError{}
	for k, v := range values {
		f, ok := c.Field(k)
		if !ok {
			verr.add("fieldValues."+k, "not declared by content type "+c.ID)
			continue
		}
		if v == nil {
			continue
		}
		switch f.Type {
		case FieldText:
			if _, ok := v.(string); !ok {
				verr.add("fieldValues."+k, "expected string")
			}
		case FieldDropdown:
			s, ok := v.(string)
			if !ok {
				verr.add("fieldValues."+k, "expected string")
			} else if len(f.Options) > 0 && !slices.Contains(f.Options, s) {
				verr.add("fieldValues."+k, fmt.Sprintf("%q is not one of %v", s, f.Options))
			}
		case FieldBoolean:
			if _, ok := v.(bool); !ok {
				verr.add("fieldValues."+k, "expected boolean")
			}
		case FieldNumber:
			switch v.(type) {
			case float64, float32, int, int64:
			default:
				verr.add("fieldValues."+k, "expected number")
			}
		}
	}
	return verr.orNil()
}

// CheckEntry проверяет ссылку записи на тип контента и ее поля
func CheckEntry(e *Entry, types []*ContentType) error {
	verr := &ValidationError{}
	if e.Type == EntrySessionEnd && e.Category != "" {
		verr.add("category", "SESSION_END entries carry no category")
	}
	if e.ContentType == "" {
		if len(e.FieldValues) > 0 {
			verr.add("fieldValues", "set without contentType")
		}
		return verr.orNil()
	}

	idx := slices.IndexFunc(types, func(ct *ContentType) bool { return ct.ID == e.ContentType })
	if idx < 0 {
		verr.add("contentType", fmt.Sprintf("%s: %s", ErrUnknownContentType, e.ContentType))
		return verr.orNil()
	}
	if err := types[idx].Check(e.FieldValues); err != nil {
		var fe *ValidationError
		if errors.As(err, &fe) {
			verr.Fields = append(verr.Fields, fe.Fields...)
		}
	}
	return verr.orNil()
}
