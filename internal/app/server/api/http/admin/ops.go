package admin

import (
	"net/http"

	"github.com/danielgtaylor/huma/v2"
)

func (h *Handler) migrateOp() huma.Operation {
	return huma.Operation{
		OperationID: "admin-migrate",
		Method:      http.MethodPost,
		Path:        "/api/migrate",
		Summary:     "Перенос данных из старого хранилища",
		Description: "Однократно копирует бандл из ключа KV в реляционное хранилище.",
		Tags:        []string{"admin"},
		Security:    []map[string][]string{{"bearer": {}}},
		Errors:      []int{http.StatusNotFound, http.StatusUnprocessableEntity},
		Middlewares: h.middleware,
	}
}
