package data

import (
	"context"

	"github.com/danielgtaylor/huma/v2"
	"golang.org/x/exp/slog"

	"timeline/internal/app/server/api/http/apierr"
	"timeline/internal/domain/sync"
)

type Handler struct {
	service    sync.Servicer
	log        *slog.Logger
	middleware huma.Middlewares
}

func NewHandler(service sync.Servicer, log *slog.Logger, middleware huma.Middlewares) *Handler {
	return &Handler{
		service:    service,
		log:        log,
		middleware: middleware,
	}
}

func (h *Handler) SetupRoutes(api huma.API) {
	huma.Register(api, h.getBundleOp(), h.getBundle)
	huma.Register(api, h.lastModifiedOp(), h.lastModified)
	huma.Register(api, h.pushOp(), h.push)
}

func (h *Handler) getBundle(ctx context.Context, _ *getBundleInput) (*getBundleOutput, error) {
	b, err := h.service.GetBundle(ctx)
	if err != nil {
		h.log.Error("get bundle", "error", err)
		return nil, apierr.FromDomain(err)
	}
	return &getBundleOutput{Body: b}, nil
}

func (h *Handler) lastModified(ctx context.Context, _ *lastModifiedInput) (*lastModifiedOutput, error) {
	lm, err := h.service.LastModified(ctx)
	if err != nil {
		h.log.Error("get last modified", "error", err)
		return nil, apierr.FromDomain(err)
	}
	return &lastModifiedOutput{Body: LastModifiedResponse{LastModified: lm}}, nil
}

func (h *Handler) push(ctx context.Context, input *pushInput) (*pushOutput, error) {
	resp, err := h.service.Apply(ctx, &input.Body)
	if err != nil {
		h.log.Warn("push rejected", "error", err)
		return nil, apierr.FromDomain(err)
	}
	return &pushOutput{Body: *resp}, nil
}
