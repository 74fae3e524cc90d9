package admin

import (
	"context"
	"errors"

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
	huma.Register(api, h.migrateOp(), h.migrate)
}

func (h *Handler) migrate(ctx context.Context, _ *migrateInput) (*migrateOutput, error) {
	report, err := h.service.MigrateLegacy(ctx)
	if err != nil {
		if !errors.Is(err, sync.ErrNoLegacyData) {
			h.log.Error("legacy migration failed", "error", err)
		}
		return nil, apierr.FromDomain(err)
	}
	return &migrateOutput{Body: report}, nil
}
