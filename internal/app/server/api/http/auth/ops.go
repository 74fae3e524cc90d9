package auth

import (
	"net/http"

	"github.com/danielgtaylor/huma/v2"
)

func (h *Handler) loginOp() huma.Operation {
	return huma.Operation{
		OperationID: "auth-login",
		Method:      http.MethodPost,
		Path:        "/api/auth",
		Summary:     "Вход устройства по паролю",
		Description: "Выпускает новый токен для устройства. Другие токены не затрагиваются.",
		Tags:        []string{"auth"},
		Errors:      []int{http.StatusUnauthorized},
		Middlewares: h.middleware,
	}
}

func (h *Handler) logoutOp() huma.Operation {
	return huma.Operation{
		OperationID: "auth-logout",
		Method:      http.MethodPost,
		Path:        "/api/logout",
		Summary:     "Выход устройства",
		Description: "Удаляет только предъявленный токен.",
		Tags:        []string{"auth"},
		Security:    []map[string][]string{{"bearer": {}}},
		Middlewares: h.middleware,
	}
}
