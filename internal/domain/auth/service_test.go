package auth

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
	"golang.org/x/exp/slog"

	"timeline/internal/domain/session"
	"timeline/internal/infrastructure/storage/memory"
)

type MockSessions struct {
	mock.Mock
}

func (m *MockSessions) Create(ctx context.Context) (string, error) {
	args := m.Called(ctx)
	return args.String(0), args.Error(1)
}

func (m *MockSessions) Validate(ctx context.Context, token string) error {
	return m.Called(ctx, token).Error(0)
}

func (m *MockSessions) Revoke(ctx context.Context, token string) error {
	return m.Called(ctx, token).Error(0)
}

func TestNewService(t *testing.T) {
	hash, err := bcrypt.GenerateFromPassword([]byte("secret"), bcrypt.MinCost)
	require.NoError(t, err)

	_, err = NewService("", "", nil, slog.Default())
	assert.ErrorIs(t, err, ErrNotConfigured)

	_, err = NewService("", "not-a-hash", nil, slog.Default())
	assert.Error(t, err)

	svc, err := NewService("ignored", string(hash), new(MockSessions), slog.Default())
	require.NoError(t, err)
	assert.Equal(t, hash, svc.hash)
}

func TestService_Login(t *testing.T) {
	sessions := new(MockSessions)
	svc, err := NewService("secret", "", sessions, slog.Default())
	require.NoError(t, err)

	sessions.On("Create", mock.Anything).Return("tok", nil).Once()

	token, err := svc.Login(context.Background(), "secret")
	require.NoError(t, err)
	assert.Equal(t, "tok", token)

	_, err = svc.Login(context.Background(), "wrong")
	assert.ErrorIs(t, err, ErrInvalidPassword)

	sessions.AssertExpectations(t)
}

func TestService_Login_SessionError(t *testing.T) {
	sessions := new(MockSessions)
	svc, err := NewService("secret", "", sessions, slog.Default())
	require.NoError(t, err)

	sessions.On("Create", mock.Anything).Return("", errors.New("store down"))

	_, err = svc.Login(context.Background(), "secret")
	assert.ErrorContains(t, err, "store down")
}

func TestService_LogoutKeepsOtherDevices(t *testing.T) {
	ctx := context.Background()
	sessions := session.NewService(session.NewRepo(memory.NewKV(), slog.Default()), 0, slog.Default())
	svc, err := NewService("secret", "", sessions, slog.Default())
	require.NoError(t, err)

	laptop, err := svc.Login(ctx, "secret")
	require.NoError(t, err)
	phone, err := svc.Login(ctx, "secret")
	require.NoError(t, err)
	require.NotEqual(t, laptop, phone)

	require.NoError(t, svc.Logout(ctx, laptop))
	assert.ErrorIs(t, sessions.Validate(ctx, laptop), session.ErrInvalidToken)
	assert.NoError(t, sessions.Validate(ctx, phone))
}
