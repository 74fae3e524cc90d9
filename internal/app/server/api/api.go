// POST /api/auth                    # Вход устройства (публичный)
// POST /api/logout                  # Выход устройства (bearer)
// GET  /api/data                    # Бандл (публичное чтение)
// GET  /api/data/modified           # Отметка последней записи (публичное чтение)
// POST /api/data                    # Частичный бандл (bearer)
// GET  /api/entries/public          # Чтение по статическому токену
// GET  /api/entries/{id}/comments   # Комментарии (публичный)
// POST /api/entries/{id}/comments   # Комментарий (публичный)
// GET  /api/image/{key}             # Изображение (публичный)
// POST /api/image                   # Загрузка (bearer)
// GET  /api/images                  # Ключи изображений (bearer)
// DELETE /api/image/{key}           # Удаление (bearer)
// POST /api/migrate                 # Перенос старых данных (bearer)

package api

import (
	"github.com/danielgtaylor/huma/v2"
	"github.com/danielgtaylor/huma/v2/adapters/humachi"
	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"golang.org/x/exp/slog"

	adminAPI "timeline/internal/app/server/api/http/admin"
	"timeline/internal/app/server/api/http/apierr"
	authAPI "timeline/internal/app/server/api/http/auth"
	dataAPI "timeline/internal/app/server/api/http/data"
	entriesAPI "timeline/internal/app/server/api/http/entries"
	healthAPI "timeline/internal/app/server/api/http/health"
	imageAPI "timeline/internal/app/server/api/http/image"
	"timeline/internal/app/server/api/http/middleware"
	"timeline/internal/app/server/api/http/middleware/gateway"
	"timeline/internal/app/server/api/http/middleware/logger"
	"timeline/internal/app/server/api/http/middleware/metrics"
	"timeline/internal/domain/auth"
	"timeline/internal/domain/media"
	"timeline/internal/domain/session"
	"timeline/internal/domain/sync"
)

// Services доменные сервисы, которые обслуживает API
type Services struct {
	Auth     auth.Servicer
	Sessions session.Servicer
	Sync     sync.Servicer
	Media    media.Servicer
	// DB проверяется в /health, может быть nil
	DB healthAPI.Pinger
}

type Options struct {
	PublicReadToken string
	Metrics         *metrics.Collector
}

type Handlers struct {
	Health  *healthAPI.Handler
	Auth    *authAPI.Handler
	Data    *dataAPI.Handler
	Entries *entriesAPI.Handler
	Image   *imageAPI.Handler
	Admin   *adminAPI.Handler
}

// New создает *chi.Mux с ВСЕМИ операциями через huma.Register.
// Шлюз токенов стоит перед всеми маршрутами.
func New(svc Services, opts Options, log *slog.Logger) *chi.Mux {
	huma.NewError = apierr.NewHuma
	if opts.Metrics == nil {
		opts.Metrics = metrics.New()
	}

	mux := chi.NewMux()
	mux.Use(chimw.RequestID, chimw.Recoverer)
	mux.Use(opts.Metrics.Middleware)
	mux.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders: []string{"Authorization", "Content-Type"},
		MaxAge:         86400,
	}))
	mux.Use(gateway.New(svc.Sessions, log).OnReject(opts.Metrics.Reject).Middleware)

	mux.Method("GET", "/metrics", opts.Metrics.Handler())

	config := huma.DefaultConfig("Timeline API", "1.0.0")
	config.Components.SecuritySchemes = map[string]*huma.SecurityScheme{
		"bearer": {Type: "http", Scheme: "bearer"},
	}

	API := humachi.New(mux, config)

	h := handlers(svc, opts, log)
	h.Health.SetupRoutes(API)
	h.Auth.SetupRoutes(API)
	h.Data.SetupRoutes(API)
	h.Entries.SetupRoutes(API)
	h.Image.SetupRoutes(API)
	h.Admin.SetupRoutes(API)

	return mux
}

func handlers(svc Services, opts Options, log *slog.Logger) *Handlers {
	loggerMW := logger.New(log)
	middlewares := middleware.NewContainer()

	return &Handlers{
		Health: healthAPI.NewHandler(svc.DB, log, middlewares.GetAllAndClear()),
		Auth: authAPI.NewHandler(svc.Auth, log, middlewares.Add(loggerMW.Middleware()).GetAllAndClear()).
			OnLogin(opts.Metrics.Login),
		Data:    dataAPI.NewHandler(svc.Sync, log, middlewares.Add(loggerMW.Middleware()).GetAllAndClear()),
		Entries: entriesAPI.NewHandler(svc.Sync, opts.PublicReadToken, log, middlewares.Add(loggerMW.Middleware()).GetAllAndClear()),
		Image:   imageAPI.NewHandler(svc.Media, log, middlewares.Add(loggerMW.Middleware()).GetAllAndClear()),
		Admin:   adminAPI.NewHandler(svc.Sync, log, middlewares.Add(loggerMW.Middleware()).GetAllAndClear()),
	}
}
