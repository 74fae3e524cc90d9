package image

import (
	"net/http"

	"github.com/danielgtaylor/huma/v2"

	"timeline/internal/domain/media"
)

var bearer = []map[string][]string{{"bearer": {}}}

func (h *Handler) getOp() huma.Operation {
	return huma.Operation{
		OperationID: "image-get",
		Method:      http.MethodGet,
		Path:        "/api/image/{key}",
		Summary:     "Изображение по ключу",
		Tags:        []string{"images"},
		Errors:      []int{http.StatusNotFound},
		Middlewares: h.middleware,
	}
}

func (h *Handler) uploadOp() huma.Operation {
	return huma.Operation{
		OperationID:   "image-upload",
		Method:        http.MethodPost,
		Path:          "/api/image",
		Summary:       "Загрузка изображения",
		Description:   "Тело запроса сохраняется как есть, ключ выдается сервером.",
		Tags:          []string{"images"},
		Security:      bearer,
		DefaultStatus: http.StatusCreated,
		MaxBodyBytes:  media.MaxUploadSize,
		Middlewares:   h.middleware,
	}
}

func (h *Handler) listOp() huma.Operation {
	return huma.Operation{
		OperationID: "image-list",
		Method:      http.MethodGet,
		Path:        "/api/images",
		Summary:     "Ключи всех изображений",
		Tags:        []string{"images"},
		Security:    bearer,
		Middlewares: h.middleware,
	}
}

func (h *Handler) deleteOp() huma.Operation {
	return huma.Operation{
		OperationID:   "image-delete",
		Method:        http.MethodDelete,
		Path:          "/api/image/{key}",
		Summary:       "Удаление изображения",
		Tags:          []string{"images"},
		Security:      bearer,
		DefaultStatus: http.StatusNoContent,
		Errors:        []int{http.StatusNotFound},
		Middlewares:   h.middleware,
	}
}
