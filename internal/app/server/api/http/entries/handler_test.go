package entries

import (
	"context"
	"net/http"
	"testing"

	"github.com/danielgtaylor/huma/v2/humatest"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"golang.org/x/exp/slog"

	"timeline/internal/domain/journal"
	"timeline/internal/domain/sync"
)

type MockService struct {
	mock.Mock
	sync.Servicer
}

func (m *MockService) PublicEntries(ctx context.Context, q sync.PublicQuery) (*sync.PublicBundle, error) {
	args := m.Called(ctx, q)
	if b := args.Get(0); b != nil {
		return b.(*sync.PublicBundle), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockService) AddComment(ctx context.Context, entryID, author, body string) (*sync.Comment, error) {
	args := m.Called(ctx, entryID, author, body)
	if c := args.Get(0); c != nil {
		return c.(*sync.Comment), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockService) ListComments(ctx context.Context, entryID string) ([]*sync.Comment, error) {
	args := m.Called(ctx, entryID)
	if c := args.Get(0); c != nil {
		return c.([]*sync.Comment), args.Error(1)
	}
	return nil, args.Error(1)
}

func TestHandler_Public(t *testing.T) {
	svc := new(MockService)
	svc.On("PublicEntries", mock.Anything, sync.PublicQuery{Start: "2024-01-01", Limit: 5}).Return(&sync.PublicBundle{
		Entries: []*journal.Entry{{ID: "e1"}},
		Count:   1,
	}, nil)

	_, api := humatest.New(t)
	NewHandler(svc, "read-token", slog.Default(), nil).SetupRoutes(api)

	resp := api.Get("/api/entries/public?token=read-token&start=2024-01-01&limit=5")
	assert.Equal(t, http.StatusOK, resp.Code)
	assert.Contains(t, resp.Body.String(), `"count":1`)

	resp = api.Get("/api/entries/public?token=wrong")
	assert.Equal(t, http.StatusUnauthorized, resp.Code)

	resp = api.Get("/api/entries/public")
	assert.Equal(t, http.StatusUnauthorized, resp.Code)
}

func TestHandler_PublicDisabled(t *testing.T) {
	h := NewHandler(new(MockService), "", slog.Default(), nil)
	assert.False(t, h.authorized(""))
	assert.False(t, h.authorized("anything"))
}

func TestHandler_Comments(t *testing.T) {
	svc := new(MockService)
	svc.On("ListComments", mock.Anything, "e1").Return([]*sync.Comment{{ID: "c1", EntryID: "e1", Body: "hi"}}, nil)
	svc.On("ListComments", mock.Anything, "nope").Return(nil, sync.ErrEntryNotFound)
	svc.On("AddComment", mock.Anything, "e1", "ann", "great").Return(&sync.Comment{ID: "c2", EntryID: "e1"}, nil)

	_, api := humatest.New(t)
	NewHandler(svc, "", slog.Default(), nil).SetupRoutes(api)

	resp := api.Get("/api/entries/e1/comments")
	assert.Equal(t, http.StatusOK, resp.Code)
	assert.Contains(t, resp.Body.String(), `"id":"c1"`)

	resp = api.Get("/api/entries/nope/comments")
	assert.Equal(t, http.StatusNotFound, resp.Code)

	resp = api.Post("/api/entries/e1/comments", map[string]string{"author": "ann", "body": "great"})
	assert.Equal(t, http.StatusCreated, resp.Code)
	svc.AssertExpectations(t)
}
