package journal

import (
	"errors"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"
)

var validate = validator.New(validator.WithRequiredStructEnabled())

// Validate проверяет структуру по тегам validate и приводит ошибки к ValidationError
func Validate(v any) error {
	err := validate.Struct(v)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err
	}

	out := &ValidationError{}
	for _, fe := range verrs {
		ns := fe.Namespace()
		if i := strings.IndexByte(ns, '.'); i >= 0 {
			ns = ns[i+1:]
		}
		out.add(ns, "failed "+fe.Tag())
	}
	return out
}

// ValidateBundle проверяет бандл: теги структур и уникальность id.
// Ссылки на типы контента не проверяются, их чинит нормализатор.
func ValidateBundle(b *CloudData) error {
	if err := Validate(b); err != nil {
		return err
	}
	out := &ValidationError{}
	checkUnique(out, "entries", b.Entries)
	checkUnique(out, "contentTypes", b.ContentTypes)
	checkUnique(out, "mediaItems", b.MediaItems)
	return out.orNil()
}

func checkUnique[T interface{ GetID() string }](out *ValidationError, field string, items []T) {
	seen := make(map[string]struct{}, len(items))
	for i, it := range items {
		id := it.GetID()
		if _, ok := seen[id]; ok {
			out.add(field+"["+strconv.Itoa(i)+"].id", "duplicate id "+id)
		}
		seen[id] = struct{}{}
	}
}
