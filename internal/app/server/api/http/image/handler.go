package image

import (
	"context"
	"errors"

	"github.com/danielgtaylor/huma/v2"
	"golang.org/x/exp/slog"

	"timeline/internal/app/server/api/http/apierr"
	"timeline/internal/domain/media"
)

type Handler struct {
	service    media.Servicer
	log        *slog.Logger
	middleware huma.Middlewares
}

func NewHandler(service media.Servicer, log *slog.Logger, middleware huma.Middlewares) *Handler {
	return &Handler{
		service:    service,
		log:        log,
		middleware: middleware,
	}
}

func (h *Handler) SetupRoutes(api huma.API) {
	huma.Register(api, h.getOp(), h.get)
	huma.Register(api, h.uploadOp(), h.upload)
	huma.Register(api, h.listOp(), h.list)
	huma.Register(api, h.deleteOp(), h.delete)
}

func (h *Handler) get(ctx context.Context, input *getInput) (*getOutput, error) {
	b, err := h.service.Get(ctx, input.Key)
	if err != nil {
		if !errors.Is(err, media.ErrNotFound) && !errors.Is(err, media.ErrInvalidKey) {
			h.log.Error("load image", "key", input.Key, "error", err)
		}
		return nil, apierr.FromDomain(err)
	}
	data, err := media.ReadAll(b)
	if err != nil {
		h.log.Error("read image", "key", input.Key, "error", err)
		return nil, apierr.FromDomain(err)
	}
	return &getOutput{
		ContentType:  b.ContentType,
		CacheControl: cacheForever,
		Body:         data,
	}, nil
}

func (h *Handler) upload(ctx context.Context, input *uploadInput) (*uploadOutput, error) {
	ref, err := h.service.Upload(ctx, input.RawBody, input.ContentType)
	if err != nil {
		return nil, apierr.FromDomain(err)
	}
	return &uploadOutput{Body: ref}, nil
}

func (h *Handler) list(ctx context.Context, _ *listInput) (*listOutput, error) {
	keys, err := h.service.List(ctx)
	if err != nil {
		h.log.Error("list images", "error", err)
		return nil, apierr.FromDomain(err)
	}
	return &listOutput{Body: ListResponse{Keys: keys}}, nil
}

func (h *Handler) delete(ctx context.Context, input *deleteInput) (*struct{}, error) {
	if err := h.service.Delete(ctx, input.Key); err != nil {
		return nil, apierr.FromDomain(err)
	}
	return nil, nil
}
