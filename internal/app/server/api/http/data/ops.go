package data

import (
	"net/http"

	"github.com/danielgtaylor/huma/v2"
)

func (h *Handler) getBundleOp() huma.Operation {
	return huma.Operation{
		OperationID: "data-get",
		Method:      http.MethodGet,
		Path:        "/api/data",
		Summary:     "Текущий бандл",
		Description: "Записи, типы контента, медиа и категории. Публичное чтение.",
		Tags:        []string{"data"},
		Middlewares: h.middleware,
	}
}

func (h *Handler) lastModifiedOp() huma.Operation {
	return huma.Operation{
		OperationID: "data-modified",
		Method:      http.MethodGet,
		Path:        "/api/data/modified",
		Summary:     "Отметка последней записи",
		Tags:        []string{"data"},
		Middlewares: h.middleware,
	}
}

func (h *Handler) pushOp() huma.Operation {
	return huma.Operation{
		OperationID:  "data-push",
		Method:       http.MethodPost,
		Path:         "/api/data",
		Summary:      "Запись частичного бандла",
		Description:  "Upsert измененных элементов и удаление по id одной транзакцией.",
		Tags:         []string{"data"},
		Security:     []map[string][]string{{"bearer": {}}},
		MaxBodyBytes: 32 << 20,
		Errors:       []int{http.StatusUnauthorized, http.StatusUnprocessableEntity},
		Middlewares:  h.middleware,
	}
}
