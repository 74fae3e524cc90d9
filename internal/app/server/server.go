// Package server собирает хранилища, доменные сервисы и HTTP API
package server

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"

	"golang.org/x/exp/slog"

	"timeline/internal/app/server/api"
	"timeline/internal/app/server/config"
	"timeline/internal/domain/auth"
	"timeline/internal/domain/media"
	"timeline/internal/domain/session"
	"timeline/internal/domain/sync"
	"timeline/internal/infrastructure/storage"
	"timeline/internal/infrastructure/storage/dynamo"
	"timeline/internal/infrastructure/storage/fsblob"
	"timeline/internal/infrastructure/storage/memory"
	"timeline/internal/infrastructure/storage/memrepo"
	"timeline/internal/infrastructure/storage/postgres"
)

type App struct {
	Handler http.Handler
	closers []io.Closer
}

// New выбирает хранилища по конфигурации. Без DATABASE_URI данные живут
// в памяти процесса.
func New(ctx context.Context, cfg *config.Config, log *slog.Logger) (*App, error) {
	app := &App{}

	var (
		repo sync.Repository
		kv   storage.KV
		db   interface{ Ping(context.Context) error }
	)
	if cfg.DB.DatabaseURI != "" {
		pg, err := postgres.New(ctx, cfg)
		if err != nil {
			return nil, fmt.Errorf("postgres: %w", err)
		}
		app.closers = append(app.closers, pg)
		repo = postgres.NewBundleRepository(pg, log)
		kv = postgres.NewKVRepository(pg, log)
		db = pg
	} else {
		log.Warn("DATABASE_URI is empty, using in-memory storage")
		mem := memrepo.NewBundleRepository()
		repo = mem
		kv = memory.NewKV()
		db = mem
	}

	tokens, err := tokenStore(ctx, cfg, kv, log)
	if err != nil {
		return nil, errors.Join(err, app.Close())
	}

	blobs, err := fsblob.New(cfg.Blob.Dir, log)
	if err != nil {
		return nil, errors.Join(fmt.Errorf("blob store: %w", err), app.Close())
	}

	sessions := session.NewService(session.NewRepo(tokens, log), cfg.Auth.TokenTTL, log)
	authService, err := auth.NewService(cfg.Auth.Password, cfg.Auth.PasswordHash, sessions, log)
	if err != nil {
		return nil, errors.Join(err, app.Close())
	}
	syncService := sync.NewService(repo, kv, log, &sync.ServiceConfig{LegacyDataKey: cfg.Legacy.DataKey})

	app.Handler = api.New(api.Services{
		Auth:     authService,
		Sessions: sessions,
		Sync:     syncService,
		Media:    media.NewService(blobs, log),
		DB:       db,
	}, api.Options{PublicReadToken: cfg.Auth.PublicReadToken}, log)

	return app, nil
}

func tokenStore(ctx context.Context, cfg *config.Config, fallback storage.KV, log *slog.Logger) (storage.KV, error) {
	switch cfg.Auth.TokenStore {
	case config.TokenStorePostgres, "":
		return fallback, nil
	case config.TokenStoreMemory:
		return memory.NewKV(), nil
	case config.TokenStoreDynamo:
		client, err := dynamo.NewClient(ctx)
		if err != nil {
			return nil, err
		}
		return dynamo.New(client, cfg.Auth.DynamoTable, log), nil
	default:
		return nil, fmt.Errorf("unknown token store %q", cfg.Auth.TokenStore)
	}
}

// Close освобождает хранилища в обратном порядке
func (a *App) Close() error {
	var errs []error
	for i := len(a.closers) - 1; i >= 0; i-- {
		errs = append(errs, a.closers[i].Close())
	}
	return errors.Join(errs...)
}
