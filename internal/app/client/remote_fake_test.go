package client

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"sort"
	gosync "sync"

	"timeline/internal/domain/journal"
	"timeline/internal/domain/media"
	"timeline/internal/infrastructure/storage/memrepo"
)

// fakeRemote сервер в памяти поверх memrepo
type fakeRemote struct {
	repo     *memrepo.BundleRepository
	password string

	mu       gosync.Mutex
	token    string
	tokens   map[string]bool
	clock    int64
	pushes   []*journal.PushRequest
	images   map[string]bool
	deleted  []string
	pushErr  error
	pushHook func()
	logouts  int
}

func newFakeRemote() *fakeRemote {
	return &fakeRemote{
		repo:     memrepo.NewBundleRepository(),
		password: "secret",
		tokens:   make(map[string]bool),
		clock:    1000,
		images:   make(map[string]bool),
	}
}

func (f *fakeRemote) SetToken(token string) {
	f.mu.Lock()
	f.token = token
	f.mu.Unlock()
}

func (f *fakeRemote) authorized() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.token == "" {
		return &APIError{Status: http.StatusUnauthorized, Message: "Unauthorized"}
	}
	if !f.tokens[f.token] {
		return &APIError{Status: http.StatusUnauthorized, Message: "Invalid token"}
	}
	return nil
}

func (f *fakeRemote) Login(_ context.Context, password string) (string, error) {
	if password != f.password {
		return "", fmt.Errorf("POST /api/auth: %w", &APIError{Status: http.StatusUnauthorized, Message: "Invalid password"})
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	token := fmt.Sprintf("token-%d", len(f.tokens)+1)
	f.tokens[token] = true
	return token, nil
}

func (f *fakeRemote) Logout(context.Context) error {
	if err := f.authorized(); err != nil {
		return err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.tokens, f.token)
	f.logouts++
	return nil
}

func (f *fakeRemote) LastModified(ctx context.Context) (int64, error) {
	return f.repo.LastModified(ctx)
}

// FetchBundle отдает копию через JSON, как по сети
func (f *fakeRemote) FetchBundle(ctx context.Context) (*journal.CloudData, error) {
	b, err := f.repo.LoadBundle(ctx)
	if err != nil {
		return nil, err
	}
	b.ContentTypes = journal.WithBuiltins(b.ContentTypes)
	data, err := json.Marshal(b)
	if err != nil {
		return nil, err
	}
	var out journal.CloudData
	return &out, json.Unmarshal(data, &out)
}

func (f *fakeRemote) Push(ctx context.Context, req *journal.PushRequest) (*journal.PushResponse, error) {
	if err := f.authorized(); err != nil {
		return nil, err
	}
	f.mu.Lock()
	hook, pushErr := f.pushHook, f.pushErr
	f.mu.Unlock()
	if hook != nil {
		hook()
	}
	if pushErr != nil {
		return nil, pushErr
	}

	f.mu.Lock()
	f.pushes = append(f.pushes, req)
	f.clock++
	now := f.clock
	f.mu.Unlock()

	resp, err := f.repo.Apply(ctx, req, now)
	if err != nil {
		return nil, err
	}
	return &resp, nil
}

// seed пишет бандл от имени другого устройства
func (f *fakeRemote) seed(req *journal.PushRequest) int64 {
	f.mu.Lock()
	f.clock++
	now := f.clock
	f.mu.Unlock()
	resp, _ := f.repo.Apply(context.Background(), req, now)
	return resp.LastModified
}

func (f *fakeRemote) UploadImage(_ context.Context, data []byte, _ string) (*journal.ImageRef, error) {
	if err := f.authorized(); err != nil {
		return nil, err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	key := fmt.Sprintf("img-%d.png", len(f.images)+1)
	f.images[key] = true
	return &journal.ImageRef{Key: key, URL: media.URL(key)}, nil
}

func (f *fakeRemote) ListImages(context.Context) ([]string, error) {
	if err := f.authorized(); err != nil {
		return nil, err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	keys := make([]string, 0, len(f.images))
	for k := range f.images {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys, nil
}

func (f *fakeRemote) DeleteImage(_ context.Context, key string) error {
	if err := f.authorized(); err != nil {
		return err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	if !f.images[key] {
		return &APIError{Status: http.StatusNotFound, Message: "not found"}
	}
	delete(f.images, key)
	f.deleted = append(f.deleted, key)
	return nil
}

func (f *fakeRemote) pushCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.pushes)
}

func (f *fakeRemote) lastPush() *journal.PushRequest {
	f.mu.Lock()
	defer f.mu.Unlock()
	if len(f.pushes) == 0 {
		return nil
	}
	return f.pushes[len(f.pushes)-1]
}
