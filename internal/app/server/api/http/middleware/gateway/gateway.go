// Package gateway проверка bearer-токенов устройств перед маршрутами /api
package gateway

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"golang.org/x/exp/slog"

	"timeline/internal/domain/session"
)

const apiPrefix = "/api/"

type contextKey string

const TokenKey contextKey = "token"

// Gateway пропускает публичные маршруты, остальные запросы под /api
// требуют заголовок Authorization: Bearer <token>, известный хранилищу
type Gateway struct {
	sessions session.Servicer
	log      *slog.Logger
	onReject func(reason string)
}

func New(sessions session.Servicer, log *slog.Logger) *Gateway {
	return &Gateway{
		sessions: sessions,
		log:      log.With("component", "gateway"),
	}
}

// OnReject регистрирует обработчик отказов (метрики)
func (g *Gateway) OnReject(fn func(reason string)) *Gateway {
	g.onReject = fn
	return g
}

// Public сообщает, доступен ли маршрут без токена
func Public(method, path string) bool {
	switch {
	case path == "/api/auth":
		return method == http.MethodPost
	case strings.HasPrefix(path, "/api/image/"):
		return method == http.MethodGet || method == http.MethodHead
	case path == "/api/entries/public":
		return true
	case strings.HasPrefix(path, "/api/entries/") && strings.HasSuffix(path, "/comments"):
		id := strings.TrimSuffix(strings.TrimPrefix(path, "/api/entries/"), "/comments")
		return id != "" && !strings.Contains(id, "/")
	case path == "/api/data", path == "/api/data/modified":
		return method == http.MethodGet || method == http.MethodHead
	}
	return false
}

func (g *Gateway) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")

		if r.Method == http.MethodOptions {
			h := w.Header()
			h.Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
			h.Set("Access-Control-Allow-Headers", "Authorization, Content-Type")
			h.Set("Access-Control-Max-Age", "86400")
			w.WriteHeader(http.StatusNoContent)
			return
		}

		if !strings.HasPrefix(r.URL.Path, apiPrefix) || Public(r.Method, r.URL.Path) {
			next.ServeHTTP(w, r)
			return
		}

		header := r.Header.Get("Authorization")
		token, ok := strings.CutPrefix(header, "Bearer ")
		token = strings.TrimSpace(token)
		if !ok || token == "" {
			g.reject(w, http.StatusUnauthorized, "Unauthorized")
			return
		}

		if err := g.sessions.Validate(r.Context(), token); err != nil {
			if errors.Is(err, session.ErrInvalidToken) {
				g.reject(w, http.StatusUnauthorized, "Invalid token")
				return
			}
			g.log.Error("token lookup failed", "error", err)
			g.reject(w, http.StatusInternalServerError, "Internal server error")
			return
		}

		next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), TokenKey, token)))
	})
}

func (g *Gateway) reject(w http.ResponseWriter, status int, msg string) {
	if g.onReject != nil {
		g.onReject(msg)
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(map[string]string{"error": msg}); err != nil {
		g.log.Error("json encode", "error", err)
	}
}

// TokenFromContext токен, проверенный шлюзом
func TokenFromContext(ctx context.Context) (string, bool) {
	token, ok := ctx.Value(TokenKey).(string)
	return token, ok
}
