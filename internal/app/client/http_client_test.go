package client

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"timeline/internal/app/client/config"
	"timeline/internal/app/server/api"
	"timeline/internal/domain/auth"
	"timeline/internal/domain/journal"
	"timeline/internal/domain/media"
	"timeline/internal/domain/session"
	"timeline/internal/domain/sync"
	"timeline/internal/infrastructure/storage/memory"
	"timeline/internal/infrastructure/storage/memrepo"
)

func newTestServer(t *testing.T) *httptest.Server {
	t.Helper()
	log := discardLogger()
	kv := memory.NewKV()
	sessions := session.NewService(session.NewRepo(kv, log), 0, log)
	authSvc, err := auth.NewService("secret", "", sessions, log)
	require.NoError(t, err)
	repo := memrepo.NewBundleRepository()

	srv := httptest.NewServer(api.New(api.Services{
		Auth:     authSvc,
		Sessions: sessions,
		Sync:     sync.NewService(repo, kv, log, nil),
		Media:    media.NewService(memory.NewBlobStore(), log),
		DB:       repo,
	}, api.Options{}, log))
	t.Cleanup(srv.Close)
	return srv
}

func newDevice(t *testing.T, serverURL string) *App {
	t.Helper()
	cfg := &config.Config{ServerAddress: serverURL, BatchSize: 2, RequestTimeout: 5 * time.Second}
	app, err := NewWithDeps(context.Background(), cfg, NewMemoryStorage(), NewHTTPClient(cfg, discardLogger()), &MemoryTokenStore{}, discardLogger())
	require.NoError(t, err)
	return app
}

func TestHTTPClient_TwoDevices(t *testing.T) {
	ctx := context.Background()
	srv := newTestServer(t)
	a := newDevice(t, srv.URL)
	b := newDevice(t, srv.URL)

	res, err := a.Sync().Login(ctx, "wrong")
	require.NoError(t, err)
	assert.False(t, res.Success)
	assert.Equal(t, "Invalid password", res.Error)

	loggedIn(t, a)
	loggedIn(t, b)

	ref, err := a.Sync().UploadImage(ctx, []byte("\x89PNG fake"), "image/png")
	require.NoError(t, err)
	assert.Equal(t, media.URL(ref.Key), ref.URL)

	_, err = a.PutEntry(ctx, note("e1", 1, "cover "+ref.URL))
	require.NoError(t, err)
	_, err = a.PutEntry(ctx, &journal.Entry{ID: "e2", Type: journal.EntryNote, Timestamp: 2, ContentType: journal.ContentTypeTask, FieldValues: journal.FieldValues{"done": false}})
	require.NoError(t, err)
	_, err = a.PutEntry(ctx, &journal.Entry{ID: "e3", Type: journal.EntrySessionEnd, Timestamp: 3})
	require.NoError(t, err)
	require.NoError(t, a.PutMediaItem(ctx, &journal.MediaItem{ID: "m1", Title: "Dune", MediaType: "book"}))

	pushed, err := a.Sync().Sync(ctx)
	require.NoError(t, err)
	assert.Equal(t, 4, pushed.Upserted)
	assert.Equal(t, 2, pushed.Batches)
	assert.Positive(t, pushed.LastModified)

	pulled, err := b.Sync().Sync(ctx)
	require.NoError(t, err)
	assert.True(t, pulled.Pulled)
	assert.Zero(t, pulled.Upserted)
	entries, err := b.Entries(ctx)
	require.NoError(t, err)
	require.Len(t, entries, 3)
	assert.Equal(t, "e3", entries[0].ID)

	// выход на A не трогает сессию B
	require.NoError(t, a.Sync().Logout(ctx))
	require.NoError(t, b.DeleteEntry(ctx, "e3"))
	res2, err := b.Sync().Sync(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, res2.Deleted)

	// сиротское изображение удаляется, используемое остается
	orphan, err := b.Sync().UploadImage(ctx, []byte("orphan"), "image/jpeg")
	require.NoError(t, err)
	report, err := b.Sync().CleanupImages(ctx, true)
	require.NoError(t, err)
	assert.Equal(t, []string{orphan.Key}, report.Deleted)
	assert.Equal(t, []string{ref.Key}, report.Kept)
}

func TestHTTPClient_Errors(t *testing.T) {
	ctx := context.Background()
	srv := newTestServer(t)
	cfg := &config.Config{ServerAddress: srv.URL, RequestTimeout: 5 * time.Second}
	c := NewHTTPClient(cfg, discardLogger())

	_, err := c.Push(ctx, &journal.PushRequest{Entries: []*journal.Entry{note("e1", 1, "")}})
	assert.ErrorIs(t, err, ErrUnauthorized)
	assert.False(t, IsNetwork(err))

	c.SetToken("not-a-token")
	_, err = c.Push(ctx, &journal.PushRequest{Entries: []*journal.Entry{note("e1", 1, "")}})
	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, "Invalid token", apiErr.Message)

	token, err := c.Login(ctx, "secret")
	require.NoError(t, err)
	c.SetToken(token)
	assert.ErrorIs(t, c.DeleteImage(ctx, "missing.png"), ErrNotFound)

	srv.Close()
	_, err = c.LastModified(ctx)
	require.Error(t, err)
	assert.True(t, IsNetwork(err))
}

func TestHTTPClient_BreakerOpens(t *testing.T) {
	ctx := context.Background()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	t.Cleanup(srv.Close)
	c := NewHTTPClient(&config.Config{ServerAddress: srv.URL, RequestTimeout: time.Second}, discardLogger())

	for i := 0; i < 5; i++ {
		_, err := c.LastModified(ctx)
		require.True(t, IsNetwork(err))
	}
	_, err := c.LastModified(ctx)
	var ne *NetworkError
	require.ErrorAs(t, err, &ne)
	assert.Contains(t, ne.Err.Error(), "circuit breaker is open")
}
