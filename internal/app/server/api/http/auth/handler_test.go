package auth

import (
	"context"
	"net/http"
	"testing"

	"github.com/danielgtaylor/huma/v2/humatest"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"golang.org/x/exp/slog"

	"timeline/internal/app/server/api/http/apierr"
	"timeline/internal/app/server/api/http/middleware/gateway"
	"timeline/internal/domain/auth"
)

type MockService struct {
	mock.Mock
}

func (m *MockService) Login(ctx context.Context, password string) (string, error) {
	args := m.Called(ctx, password)
	return args.String(0), args.Error(1)
}

func (m *MockService) Logout(ctx context.Context, token string) error {
	return m.Called(ctx, token).Error(0)
}

func TestHandler_Login(t *testing.T) {
	svc := new(MockService)
	svc.On("Login", mock.Anything, "secret").Return("tok-1", nil)
	svc.On("Login", mock.Anything, "wrong").Return("", auth.ErrInvalidPassword)

	var attempts []bool
	_, api := humatest.New(t)
	NewHandler(svc, slog.Default(), nil).OnLogin(func(ok bool) { attempts = append(attempts, ok) }).SetupRoutes(api)

	resp := api.Post("/api/auth", map[string]string{"password": "secret"})
	assert.Equal(t, http.StatusOK, resp.Code)
	assert.Contains(t, resp.Body.String(), `"token":"tok-1"`)

	resp = api.Post("/api/auth", map[string]string{"password": "wrong"})
	assert.Equal(t, http.StatusUnauthorized, resp.Code)
	assert.Contains(t, resp.Body.String(), `"error":"Invalid password"`)

	assert.Equal(t, []bool{true, false}, attempts)
}

func TestHandler_Logout(t *testing.T) {
	svc := new(MockService)
	svc.On("Logout", mock.Anything, "tok-1").Return(nil)
	h := NewHandler(svc, slog.Default(), nil)

	ctx := context.WithValue(context.Background(), gateway.TokenKey, "tok-1")
	out, err := h.logout(ctx, &logoutInput{})
	require.NoError(t, err)
	assert.Equal(t, "ok", out.Body.Status)

	_, err = h.logout(context.Background(), &logoutInput{})
	var apiErr *apierr.Error
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusUnauthorized, apiErr.GetStatus())

	svc.AssertExpectations(t)
}
