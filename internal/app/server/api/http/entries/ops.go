package entries

import (
	"net/http"

	"github.com/danielgtaylor/huma/v2"
)

func (h *Handler) publicOp() huma.Operation {
	return huma.Operation{
		OperationID: "entries-public",
		Method:      http.MethodGet,
		Path:        "/api/entries/public",
		Summary:     "Чтение записей по статическому токену",
		Tags:        []string{"entries"},
		Errors:      []int{http.StatusBadRequest, http.StatusUnauthorized},
		Middlewares: h.middleware,
	}
}

func (h *Handler) listCommentsOp() huma.Operation {
	return huma.Operation{
		OperationID: "entries-comments-list",
		Method:      http.MethodGet,
		Path:        "/api/entries/{id}/comments",
		Summary:     "Комментарии к записи",
		Tags:        []string{"entries"},
		Errors:      []int{http.StatusNotFound},
		Middlewares: h.middleware,
	}
}

func (h *Handler) addCommentOp() huma.Operation {
	return huma.Operation{
		OperationID:   "entries-comments-add",
		Method:        http.MethodPost,
		Path:          "/api/entries/{id}/comments",
		Summary:       "Добавить комментарий",
		Tags:          []string{"entries"},
		DefaultStatus: http.StatusCreated,
		Errors:        []int{http.StatusNotFound, http.StatusUnprocessableEntity},
		Middlewares:   h.middleware,
	}
}
