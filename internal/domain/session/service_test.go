package session

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"golang.org/x/exp/slog"

	"timeline/internal/infrastructure/storage/memory"
)

// MockRepository is a mock implementation of the Repository interface for testing
type MockRepository struct {
	mock.Mock
}

func (m *MockRepository) Save(ctx context.Context, token string, ttl time.Duration) error {
	args := m.Called(ctx, token, ttl)
	return args.Error(0)
}

func (m *MockRepository) Exists(ctx context.Context, token string) (bool, error) {
	args := m.Called(ctx, token)
	return args.Bool(0), args.Error(1)
}

func (m *MockRepository) Delete(ctx context.Context, token string) error {
	args := m.Called(ctx, token)
	return args.Error(0)
}

func TestService_Create(t *testing.T) {
	mockRepo := new(MockRepository)
	service := NewService(mockRepo, time.Hour, slog.Default())

	mockRepo.On("Save", mock.Anything, mock.MatchedBy(func(token string) bool {
		return token != ""
	}), time.Hour).Return(nil)

	token, err := service.Create(context.Background())
	assert.NoError(t, err)
	// 32 байта в base64 без паддинга
	assert.Len(t, token, 43)

	mockRepo.AssertExpectations(t)
}

func TestService_Create_RepositoryError(t *testing.T) {
	mockRepo := new(MockRepository)
	service := NewService(mockRepo, 0, slog.Default())

	mockRepo.On("Save", mock.Anything, mock.AnythingOfType("string"), time.Duration(0)).Return(errors.New("database error"))

	_, err := service.Create(context.Background())
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "database error")

	mockRepo.AssertExpectations(t)
}

func TestService_Validate(t *testing.T) {
	tests := []struct {
		name    string
		token   string
		exists  bool
		repoErr error
		wantErr error
	}{
		{name: "known token", token: "abc", exists: true},
		{name: "unknown token", token: "abc", exists: false, wantErr: ErrInvalidToken},
		{name: "empty token", token: "", wantErr: ErrInvalidToken},
		{name: "store failure", token: "abc", repoErr: errors.New("database error")},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockRepo := new(MockRepository)
			service := NewService(mockRepo, 0, slog.Default())
			if tt.token != "" {
				mockRepo.On("Exists", mock.Anything, tt.token).Return(tt.exists, tt.repoErr)
			}

			err := service.Validate(context.Background(), tt.token)
			switch {
			case tt.repoErr != nil:
				assert.ErrorContains(t, err, "database error")
				assert.NotErrorIs(t, err, ErrInvalidToken)
			case tt.wantErr != nil:
				assert.ErrorIs(t, err, tt.wantErr)
			default:
				assert.NoError(t, err)
			}
			mockRepo.AssertExpectations(t)
		})
	}
}

func TestService_TwoDevices(t *testing.T) {
	ctx := context.Background()
	kv := memory.NewKV()
	service := NewService(NewRepo(kv, slog.Default()), 0, slog.Default())

	first, err := service.Create(ctx)
	require.NoError(t, err)
	second, err := service.Create(ctx)
	require.NoError(t, err)
	assert.NotEqual(t, first, second)

	ok, _ := kv.Exists(ctx, "auth_token:"+first)
	assert.True(t, ok)

	require.NoError(t, service.Revoke(ctx, first))
	assert.ErrorIs(t, service.Validate(ctx, first), ErrInvalidToken)
	assert.NoError(t, service.Validate(ctx, second))
}
