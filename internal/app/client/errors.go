package client

import (
	"errors"
	"fmt"
	"net/http"

	"timeline/internal/domain/journal"
)

var (
	ErrSyncInProgress = errors.New("sync already in progress")
	ErrNotConfirmed   = errors.New("image cleanup requires confirmation")
	ErrNotLoggedIn    = errors.New("not logged in")
	ErrUnauthorized   = errors.New("unauthorized")
	ErrNotFound       = errors.New("not found")

	ErrBuiltinContentType = fmt.Errorf("built-in content types cannot be deleted: %w", journal.ErrValidation)
)

// APIError ответ сервера с кодом 4xx/5xx и телом {"error": "..."}
type APIError struct {
	Status  int
	Message string
}

func (e *APIError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("server returned status %d", e.Status)
	}
	return fmt.Sprintf("server returned status %d: %s", e.Status, e.Message)
}

func (e *APIError) Is(target error) bool {
	switch target {
	case ErrUnauthorized:
		return e.Status == http.StatusUnauthorized
	case ErrNotFound:
		return e.Status == http.StatusNotFound
	}
	return false
}

// NetworkError сбой транспорта, 5xx или открытый circuit breaker.
// Такие ошибки переводят синхронизацию в состояние error, следующий
// вызов повторяет тот же набор изменений.
type NetworkError struct {
	Op  string
	Err error
}

func (e *NetworkError) Error() string {
	return fmt.Sprintf("%s: network error: %v", e.Op, e.Err)
}

func (e *NetworkError) Unwrap() error { return e.Err }

// IsNetwork сообщает, что err вызван сетью, а не ответом сервера
func IsNetwork(err error) bool {
	var ne *NetworkError
	return errors.As(err, &ne)
}
