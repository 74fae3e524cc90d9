package auth

import (
	"context"
	"errors"
	"fmt"

	"golang.org/x/crypto/bcrypt"
	"golang.org/x/exp/slog"

	"timeline/internal/domain/session"
)

// Servicer вход и выход устройств по общему паролю
type Servicer interface {
	Login(ctx context.Context, password string) (string, error)
	Logout(ctx context.Context, token string) error
}

type Service struct {
	hash     []byte
	sessions session.Servicer
	log      *slog.Logger
}

// NewService принимает готовый bcrypt-хеш или пароль в открытом виде,
// который хешируется сразу. Хеш имеет приоритет.
func NewService(password, passwordHash string, sessions session.Servicer, log *slog.Logger) (*Service, error) {
	var hash []byte
	switch {
	case passwordHash != "":
		if _, err := bcrypt.Cost([]byte(passwordHash)); err != nil {
			return nil, fmt.Errorf("parse password hash: %w", err)
		}
		hash = []byte(passwordHash)
	case password != "":
		h, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
		if err != nil {
			return nil, fmt.Errorf("hash password: %w", err)
		}
		hash = h
	default:
		return nil, ErrNotConfigured
	}

	return &Service{
		hash:     hash,
		sessions: sessions,
		log:      log.With("component", "auth"),
	}, nil
}

func (s *Service) Login(ctx context.Context, password string) (string, error) {
	if err := bcrypt.CompareHashAndPassword(s.hash, []byte(password)); err != nil {
		if errors.Is(err, bcrypt.ErrMismatchedHashAndPassword) {
			s.log.Info("login rejected")
			return "", ErrInvalidPassword
		}
		return "", fmt.Errorf("compare password: %w", err)
	}

	token, err := s.sessions.Create(ctx)
	if err != nil {
		return "", err
	}
	s.log.Info("device logged in")
	return token, nil
}

// Logout отзывает токен текущего устройства, остальные сессии не затрагиваются
func (s *Service) Logout(ctx context.Context, token string) error {
	return s.sessions.Revoke(ctx, token)
}
