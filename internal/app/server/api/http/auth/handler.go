package auth

import (
	"context"
	"errors"
	"net/http"

	"github.com/danielgtaylor/huma/v2"
	"golang.org/x/exp/slog"

	"timeline/internal/app/server/api/http/apierr"
	"timeline/internal/app/server/api/http/middleware/gateway"
	"timeline/internal/domain/auth"
)

type Handler struct {
	service    auth.Servicer
	log        *slog.Logger
	middleware huma.Middlewares
	onLogin    func(ok bool)
}

func NewHandler(service auth.Servicer, log *slog.Logger, middleware huma.Middlewares) *Handler {
	return &Handler{
		service:    service,
		log:        log,
		middleware: middleware,
		onLogin:    func(bool) {},
	}
}

// OnLogin регистрирует наблюдателя попыток входа
func (h *Handler) OnLogin(fn func(ok bool)) *Handler {
	h.onLogin = fn
	return h
}

func (h *Handler) SetupRoutes(api huma.API) {
	huma.Register(api, h.loginOp(), h.login)
	huma.Register(api, h.logoutOp(), h.logout)
}

func (h *Handler) login(ctx context.Context, input *loginInput) (*loginOutput, error) {
	token, err := h.service.Login(ctx, input.Body.Password)
	h.onLogin(err == nil)
	if err != nil {
		if !errors.Is(err, auth.ErrInvalidPassword) {
			h.log.Error("login failed", "error", err)
		}
		return nil, apierr.FromDomain(err)
	}

	return &loginOutput{Body: LoginResponse{Token: token}}, nil
}

func (h *Handler) logout(ctx context.Context, _ *logoutInput) (*logoutOutput, error) {
	token, ok := gateway.TokenFromContext(ctx)
	if !ok {
		return nil, apierr.New(http.StatusUnauthorized, "Unauthorized")
	}
	if err := h.service.Logout(ctx, token); err != nil {
		h.log.Error("logout failed", "error", err)
		return nil, apierr.FromDomain(err)
	}
	return &logoutOutput{Body: LogoutResponse{Status: "ok"}}, nil
}
