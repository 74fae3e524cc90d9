package session

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"fmt"
	"time"

	"golang.org/x/exp/slog"
)

// Servicer токены устройств. Токен непрозрачен: его наличие в хранилище
// и есть решение о доступе.
type Servicer interface {
	Create(ctx context.Context) (string, error)
	Validate(ctx context.Context, token string) error
	Revoke(ctx context.Context, token string) error
}

type Service struct {
	repo Repository
	ttl  time.Duration
	log  *slog.Logger
}

// NewService создает сервис сессий; ttl <= 0 означает бессрочные токены
func NewService(repo Repository, ttl time.Duration, log *slog.Logger) *Service {
	return &Service{
		repo: repo,
		ttl:  ttl,
		log:  log.With("component", "session"),
	}
}

// Create выпускает новый токен. Каждый вход получает свой токен.
func (s *Service) Create(ctx context.Context) (string, error) {
	tokenBytes := make([]byte, 32)
	if _, err := rand.Read(tokenBytes); err != nil {
		return "", fmt.Errorf("generate token: %w", err)
	}
	token := base64.RawURLEncoding.EncodeToString(tokenBytes)

	if err := s.repo.Save(ctx, token, s.ttl); err != nil {
		return "", fmt.Errorf("save session: %w", err)
	}
	s.log.Debug("session created")
	return token, nil
}

func (s *Service) Validate(ctx context.Context, token string) error {
	if token == "" {
		return ErrInvalidToken
	}
	ok, err := s.repo.Exists(ctx, token)
	if err != nil {
		return fmt.Errorf("lookup session: %w", err)
	}
	if !ok {
		return ErrInvalidToken
	}
	return nil
}

// Revoke удаляет только переданный токен
func (s *Service) Revoke(ctx context.Context, token string) error {
	if err := s.repo.Delete(ctx, token); err != nil {
		return fmt.Errorf("revoke session: %w", err)
	}
	s.log.Debug("session revoked")
	return nil
}
