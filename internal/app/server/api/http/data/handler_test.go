package data

import (
	"context"
	"errors"
	"net/http"
	"testing"

	"github.com/danielgtaylor/huma/v2"
	"github.com/danielgtaylor/huma/v2/humatest"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"golang.org/x/exp/slog"

	"timeline/internal/app/server/api/http/apierr"
	"timeline/internal/domain/journal"
	"timeline/internal/domain/sync"
)

type MockService struct {
	mock.Mock
	sync.Servicer
}

func (m *MockService) GetBundle(ctx context.Context) (*journal.CloudData, error) {
	args := m.Called(ctx)
	if b := args.Get(0); b != nil {
		return b.(*journal.CloudData), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockService) LastModified(ctx context.Context) (int64, error) {
	args := m.Called(ctx)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockService) Apply(ctx context.Context, req *journal.PushRequest) (*journal.PushResponse, error) {
	args := m.Called(ctx, req)
	if r := args.Get(0); r != nil {
		return r.(*journal.PushResponse), args.Error(1)
	}
	return nil, args.Error(1)
}

func newAPI(t *testing.T, svc sync.Servicer) humatest.TestAPI {
	huma.NewError = apierr.NewHuma
	_, api := humatest.New(t)
	NewHandler(svc, slog.Default(), nil).SetupRoutes(api)
	return api
}

func TestHandler_GetBundle(t *testing.T) {
	svc := new(MockService)
	svc.On("GetBundle", mock.Anything).Return(&journal.CloudData{
		Entries:      []*journal.Entry{{ID: "e1", Type: journal.EntryNote, Timestamp: 1, Content: "hi"}},
		LastModified: 5,
	}, nil)
	svc.On("LastModified", mock.Anything).Return(int64(5), nil)

	api := newAPI(t, svc)

	resp := api.Get("/api/data")
	assert.Equal(t, http.StatusOK, resp.Code)
	assert.Contains(t, resp.Body.String(), `"id":"e1"`)

	resp = api.Get("/api/data/modified")
	assert.Equal(t, http.StatusOK, resp.Code)
	assert.Contains(t, resp.Body.String(), `"lastModified":5`)
}

func TestHandler_Push(t *testing.T) {
	svc := new(MockService)
	svc.On("Apply", mock.Anything, mock.MatchedBy(func(r *journal.PushRequest) bool {
		return len(r.Entries) == 1 && r.Entries[0].ID == "e1" && len(r.DeletedEntryIDs) == 1
	})).Return(&journal.PushResponse{LastModified: 99}, nil).Once()
	svc.On("Apply", mock.Anything, mock.Anything).Return(nil, &journal.ValidationError{
		Fields: []journal.FieldError{{Field: "entries[0].ID", Message: "failed required"}},
	}).Once()

	api := newAPI(t, svc)

	resp := api.Post("/api/data", map[string]any{
		"entries": []map[string]any{
			{"id": "e1", "type": "NOTE", "timestamp": 1, "content": "x"},
		},
		"deletedEntryIds": []string{"old"},
	})
	assert.Equal(t, http.StatusOK, resp.Code)
	assert.Contains(t, resp.Body.String(), `"lastModified":99`)

	resp = api.Post("/api/data", map[string]any{
		"entries": []map[string]any{
			{"id": "", "type": "NOTE", "timestamp": 1, "content": "x"},
		},
	})
	assert.Equal(t, http.StatusUnprocessableEntity, resp.Code)
	assert.Contains(t, resp.Body.String(), `"error":"validation failed"`)
	svc.AssertExpectations(t)
}

func TestHandler_GetBundle_Error(t *testing.T) {
	svc := new(MockService)
	svc.On("GetBundle", mock.Anything).Return(nil, errors.New("db down"))

	resp := newAPI(t, svc).Get("/api/data")
	assert.Equal(t, http.StatusInternalServerError, resp.Code)
	assert.NotContains(t, resp.Body.String(), "db down")
}
