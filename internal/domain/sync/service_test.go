package sync

import (
	"context"
	"encoding/json"
	"errors"
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"golang.org/x/exp/slog"

	"timeline/internal/domain/journal"
	"timeline/internal/infrastructure/storage/memory"
)

// MockRepository мок реляционного хранилища
type MockRepository struct {
	mock.Mock
}

func (m *MockRepository) LoadBundle(ctx context.Context) (*journal.CloudData, error) {
	args := m.Called(ctx)
	if b := args.Get(0); b != nil {
		return b.(*journal.CloudData), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockRepository) LastModified(ctx context.Context) (int64, error) {
	args := m.Called(ctx)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockRepository) Apply(ctx context.Context, req *journal.PushRequest, now int64) (journal.PushResponse, error) {
	args := m.Called(ctx, req, now)
	return args.Get(0).(journal.PushResponse), args.Error(1)
}

func (m *MockRepository) QueryEntries(ctx context.Context, r EntryRange) ([]*journal.Entry, error) {
	args := m.Called(ctx, r)
	return args.Get(0).([]*journal.Entry), args.Error(1)
}

func (m *MockRepository) EntryExists(ctx context.Context, id string) (bool, error) {
	args := m.Called(ctx, id)
	return args.Bool(0), args.Error(1)
}

func (m *MockRepository) AddComment(ctx context.Context, c *Comment) error {
	return m.Called(ctx, c).Error(0)
}

func (m *MockRepository) ListComments(ctx context.Context, entryID string) ([]*Comment, error) {
	args := m.Called(ctx, entryID)
	return args.Get(0).([]*Comment), args.Error(1)
}

var fixedNow = time.UnixMilli(1_700_000_000_000)

func newTestService(repo Repository) (*Service, *memory.KV) {
	kv := memory.NewKV()
	return NewService(repo, kv, slog.Default(), &ServiceConfig{
		LegacyDataKey: "timeline_data",
		Now:           func() time.Time { return fixedNow },
	}), kv
}

func TestService_GetBundle(t *testing.T) {
	repo := new(MockRepository)
	svc, _ := newTestService(repo)

	repo.On("LoadBundle", mock.Anything).Return(&journal.CloudData{
		Entries:      []*journal.Entry{{ID: "1", Type: journal.EntryNote}},
		LastModified: 42,
	}, nil)

	b, err := svc.GetBundle(context.Background())
	require.NoError(t, err)
	assert.Len(t, b.Entries, 1)
	assert.EqualValues(t, 42, b.LastModified)
	assert.Len(t, b.ContentTypes, 2, "built-ins are always present")
	assert.NotEmpty(t, b.Categories)
}

func TestService_Apply(t *testing.T) {
	repo := new(MockRepository)
	svc, _ := newTestService(repo)

	req := &journal.PushRequest{
		Entries:               []*journal.Entry{{ID: "1", Type: journal.EntryNote, Timestamp: 1}},
		DeletedContentTypeIDs: []string{"task", "book"},
	}
	repo.On("Apply", mock.Anything, mock.MatchedBy(func(r *journal.PushRequest) bool {
		return assert.ObjectsAreEqual([]string{"book"}, r.DeletedContentTypeIDs)
	}), fixedNow.UnixMilli()).Return(journal.PushResponse{Previous: 5, LastModified: fixedNow.UnixMilli()}, nil)

	resp, err := svc.Apply(context.Background(), req)
	require.NoError(t, err)
	assert.Equal(t, fixedNow.UnixMilli(), resp.LastModified)
	assert.EqualValues(t, 5, resp.Previous)
	repo.AssertExpectations(t)
}

func TestService_Apply_Empty(t *testing.T) {
	repo := new(MockRepository)
	svc, _ := newTestService(repo)

	repo.On("LastModified", mock.Anything).Return(int64(7), nil)

	resp, err := svc.Apply(context.Background(), &journal.PushRequest{DeletedContentTypeIDs: []string{"note"}})
	require.NoError(t, err)
	assert.EqualValues(t, 7, resp.LastModified)
	assert.EqualValues(t, 7, resp.Previous)
	repo.AssertNotCalled(t, "Apply", mock.Anything, mock.Anything, mock.Anything)
}

func TestService_Apply_Invalid(t *testing.T) {
	repo := new(MockRepository)
	svc, _ := newTestService(repo)

	_, err := svc.Apply(context.Background(), &journal.PushRequest{
		Entries: []*journal.Entry{{ID: "", Type: journal.EntryNote}},
	})
	assert.ErrorIs(t, err, journal.ErrValidation)
	repo.AssertNotCalled(t, "Apply", mock.Anything, mock.Anything, mock.Anything)
}

func TestPublicQuery_Range(t *testing.T) {
	day := func(s string) int64 {
		t, _ := time.Parse(time.DateOnly, s)
		return t.UnixMilli()
	}

	tests := []struct {
		name    string
		query   PublicQuery
		want    EntryRange
		wantErr bool
	}{
		{
			name:  "defaults",
			query: PublicQuery{},
			want:  EntryRange{From: 0, To: math.MaxInt64, Limit: 100},
		},
		{
			name:  "limit clamped",
			query: PublicQuery{Limit: 5000},
			want:  EntryRange{From: 0, To: math.MaxInt64, Limit: 1000},
		},
		{
			name:  "date only end is inclusive",
			query: PublicQuery{Start: "2024-03-01", End: "2024-03-01", Limit: 10},
			want:  EntryRange{From: day("2024-03-01"), To: day("2024-03-02"), Limit: 10},
		},
		{
			name:  "rfc3339 bounds",
			query: PublicQuery{Start: "2024-03-01T10:00:00Z", End: "2024-03-01T12:00:00Z"},
			want: EntryRange{
				From:  time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC).UnixMilli(),
				To:    time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC).UnixMilli() + 1,
				Limit: 100,
			},
		},
		{name: "bad date", query: PublicQuery{Start: "yesterday"}, wantErr: true},
		{name: "inverted", query: PublicQuery{Start: "2024-03-02", End: "2024-03-01"}, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := tt.query.Range()
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrInvalidQuery)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestService_PublicEntries(t *testing.T) {
	repo := new(MockRepository)
	svc, _ := newTestService(repo)

	entries := []*journal.Entry{{ID: "2"}, {ID: "1"}}
	repo.On("QueryEntries", mock.Anything, EntryRange{From: 0, To: math.MaxInt64, Limit: 100}).Return(entries, nil)
	repo.On("LoadBundle", mock.Anything).Return(&journal.CloudData{
		MediaItems:   []*journal.MediaItem{{ID: "m"}},
		LastModified: 9,
	}, nil)

	b, err := svc.PublicEntries(context.Background(), PublicQuery{})
	require.NoError(t, err)
	assert.Equal(t, 2, b.Count)
	assert.Equal(t, entries, b.Entries)
	assert.Len(t, b.MediaItems, 1)
	assert.EqualValues(t, 9, b.LastModified)
}

func TestService_Comments(t *testing.T) {
	repo := new(MockRepository)
	svc, _ := newTestService(repo)
	ctx := context.Background()

	repo.On("EntryExists", mock.Anything, "e1").Return(true, nil)
	repo.On("EntryExists", mock.Anything, "missing").Return(false, nil)
	repo.On("AddComment", mock.Anything, mock.AnythingOfType("*sync.Comment")).Return(nil)
	repo.On("ListComments", mock.Anything, "e1").Return([]*Comment{{ID: "c1", EntryID: "e1"}}, nil)

	c, err := svc.AddComment(ctx, "e1", "", "  nice run  ")
	require.NoError(t, err)
	assert.Equal(t, "nice run", c.Body)
	assert.Equal(t, "anonymous", c.Author)
	assert.Equal(t, fixedNow.UnixMilli(), c.CreatedAt)

	_, err = svc.AddComment(ctx, "missing", "a", "b")
	assert.ErrorIs(t, err, ErrEntryNotFound)

	_, err = svc.AddComment(ctx, "e1", "a", "   ")
	assert.ErrorIs(t, err, journal.ErrValidation)

	list, err := svc.ListComments(ctx, "e1")
	require.NoError(t, err)
	assert.Len(t, list, 1)

	_, err = svc.ListComments(ctx, "missing")
	assert.ErrorIs(t, err, ErrEntryNotFound)
}

func TestService_MigrateLegacy(t *testing.T) {
	repo := new(MockRepository)
	svc, kv := newTestService(repo)
	ctx := context.Background()

	_, err := svc.MigrateLegacy(ctx)
	assert.ErrorIs(t, err, ErrNoLegacyData)

	legacy := journal.CloudData{
		Entries: []*journal.Entry{
			{ID: "1", Type: journal.EntrySessionEnd, Timestamp: 1, Category: "hustle"},
			{ID: "2", Type: journal.EntryNote, Timestamp: 2},
		},
		ContentTypes: []*journal.ContentType{{ID: "book", Name: "Book", Fields: []journal.FieldDescriptor{}}},
		MediaItems:   []*journal.MediaItem{{ID: "m1", Title: "Dune"}},
	}
	raw, err := json.Marshal(legacy)
	require.NoError(t, err)
	require.NoError(t, kv.Put(ctx, "timeline_data", raw, 0))

	repo.On("Apply", mock.Anything, mock.MatchedBy(func(r *journal.PushRequest) bool {
		return len(r.Entries) == 2 && r.Entries[0].Category == "" && len(r.ContentTypes) == 3
	}), fixedNow.UnixMilli()).Return(journal.PushResponse{Previous: 5, LastModified: fixedNow.UnixMilli()}, nil)

	report, err := svc.MigrateLegacy(ctx)
	require.NoError(t, err)
	assert.Equal(t, &MigrationReport{Entries: 2, ContentTypes: 3, MediaItems: 1}, report)
	repo.AssertExpectations(t)
}

func TestService_MigrateLegacy_Corrupt(t *testing.T) {
	repo := new(MockRepository)
	svc, kv := newTestService(repo)
	ctx := context.Background()

	require.NoError(t, kv.Put(ctx, "timeline_data", []byte("{not json"), 0))
	_, err := svc.MigrateLegacy(ctx)
	assert.ErrorIs(t, err, journal.ErrValidation)

	repo.On("LastModified", mock.Anything).Return(int64(0), errors.New("db down"))
	_, err = svc.LastModified(ctx)
	assert.Error(t, err)
}
