// Package apierr ошибки API в формате {"error": "..."}
package apierr

import (
	"errors"
	"net/http"

	"github.com/danielgtaylor/huma/v2"

	"timeline/internal/domain/auth"
	"timeline/internal/domain/journal"
	"timeline/internal/domain/media"
	"timeline/internal/domain/session"
	"timeline/internal/domain/sync"
)

// Error тело ошибки API
type Error struct {
	Status  int      `json:"-"`
	Message string   `json:"error"`
	Details []string `json:"details,omitempty"`
}

func (e *Error) Error() string  { return e.Message }
func (e *Error) GetStatus() int { return e.Status }

func New(status int, msg string) *Error {
	return &Error{Status: status, Message: msg}
}

// NewHuma подменяет huma.NewError, чтобы ошибки валидации huma имели тот же формат
func NewHuma(status int, msg string, errs ...error) huma.StatusError {
	e := &Error{Status: status, Message: msg}
	for _, err := range errs {
		if err != nil {
			e.Details = append(e.Details, err.Error())
		}
	}
	return e
}

// FromDomain переводит ошибку домена в ответ API
func FromDomain(err error) error {
	var verr *journal.ValidationError
	switch {
	case errors.As(err, &verr):
		e := New(http.StatusUnprocessableEntity, journal.ErrValidation.Error())
		for _, f := range verr.Fields {
			e.Details = append(e.Details, f.Field+": "+f.Message)
		}
		return e
	case errors.Is(err, journal.ErrValidation), errors.Is(err, sync.ErrInvalidQuery),
		errors.Is(err, media.ErrInvalidKey), errors.Is(err, media.ErrEmptyUpload):
		return New(http.StatusBadRequest, err.Error())
	case errors.Is(err, media.ErrTooLarge):
		return New(http.StatusRequestEntityTooLarge, err.Error())
	case errors.Is(err, auth.ErrInvalidPassword):
		return New(http.StatusUnauthorized, "Invalid password")
	case errors.Is(err, session.ErrInvalidToken):
		return New(http.StatusUnauthorized, "Invalid token")
	case errors.Is(err, media.ErrNotFound), errors.Is(err, sync.ErrEntryNotFound), errors.Is(err, sync.ErrNoLegacyData):
		return New(http.StatusNotFound, err.Error())
	default:
		return New(http.StatusInternalServerError, "Internal server error")
	}
}
