package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"sync"
	"time"

	"github.com/sony/gobreaker"
	"golang.org/x/exp/slog"

	"timeline/internal/app/client/config"
	"timeline/internal/domain/journal"
)

// Remote операции сервера, которые использует синхронизация
type Remote interface {
	SetToken(token string)
	Login(ctx context.Context, password string) (string, error)
	Logout(ctx context.Context) error
	LastModified(ctx context.Context) (int64, error)
	FetchBundle(ctx context.Context) (*journal.CloudData, error)
	Push(ctx context.Context, req *journal.PushRequest) (*journal.PushResponse, error)
	UploadImage(ctx context.Context, data []byte, contentType string) (*journal.ImageRef, error)
	ListImages(ctx context.Context) ([]string, error)
	DeleteImage(ctx context.Context, key string) error
}

type httpClient struct {
	client    *http.Client
	breaker   *gobreaker.CircuitBreaker
	log       *slog.Logger
	baseURL   string
	userAgent string

	mu    sync.RWMutex
	token string
}

type reply struct {
	status int
	body   []byte
}

func NewHTTPClient(cfg *config.Config, log *slog.Logger) *httpClient {
	log = log.With("component", "http_client")
	client := &http.Client{
		Timeout: cfg.RequestTimeout,
		Transport: &http.Transport{
			MaxIdleConns:        100,
			IdleConnTimeout:     90 * time.Second,
			MaxIdleConnsPerHost: 10,
		},
	}

	breaker := gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        "timeline-api",
		MaxRequests: 1,
		Interval:    time.Minute,
		Timeout:     30 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= 5
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			log.Warn("circuit breaker state changed", "name", name, "from", from.String(), "to", to.String())
		},
		// Ответы 4xx сервер дал осознанно, сбоем сети они не считаются
		IsSuccessful: func(err error) bool {
			return err == nil || !IsNetwork(err)
		},
	})

	return &httpClient{
		client:    client,
		breaker:   breaker,
		log:       log,
		baseURL:   cfg.BaseURL(),
		userAgent: "Timeline-Client/1.0",
	}
}

// SetToken устанавливает токен аутентификации
func (h *httpClient) SetToken(token string) {
	h.mu.Lock()
	h.token = token
	h.mu.Unlock()
}

func (h *httpClient) bearer() string {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.token
}

func (h *httpClient) Login(ctx context.Context, password string) (string, error) {
	var out struct {
		Token string `json:"token"`
	}
	if err := h.doJSON(ctx, http.MethodPost, "/api/auth", map[string]string{"password": password}, &out); err != nil {
		return "", err
	}
	if out.Token == "" {
		return "", fmt.Errorf("login: empty token in response")
	}
	return out.Token, nil
}

func (h *httpClient) Logout(ctx context.Context) error {
	return h.doJSON(ctx, http.MethodPost, "/api/logout", nil, nil)
}

func (h *httpClient) LastModified(ctx context.Context) (int64, error) {
	var out journal.PushResponse
	if err := h.doJSON(ctx, http.MethodGet, "/api/data/modified", nil, &out); err != nil {
		return 0, err
	}
	return out.LastModified, nil
}

func (h *httpClient) FetchBundle(ctx context.Context) (*journal.CloudData, error) {
	var out journal.CloudData
	if err := h.doJSON(ctx, http.MethodGet, "/api/data", nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (h *httpClient) Push(ctx context.Context, req *journal.PushRequest) (*journal.PushResponse, error) {
	var out journal.PushResponse
	if err := h.doJSON(ctx, http.MethodPost, "/api/data", req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (h *httpClient) UploadImage(ctx context.Context, data []byte, contentType string) (*journal.ImageRef, error) {
	var out journal.ImageRef
	if err := h.do(ctx, http.MethodPost, "/api/image", data, contentType, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (h *httpClient) ListImages(ctx context.Context) ([]string, error) {
	var out struct {
		Keys []string `json:"keys"`
	}
	if err := h.doJSON(ctx, http.MethodGet, "/api/images", nil, &out); err != nil {
		return nil, err
	}
	return out.Keys, nil
}

func (h *httpClient) DeleteImage(ctx context.Context, key string) error {
	return h.doJSON(ctx, http.MethodDelete, "/api/image/"+url.PathEscape(key), nil, nil)
}

func (h *httpClient) doJSON(ctx context.Context, method, path string, body, out any) error {
	var data []byte
	if body != nil {
		var err error
		if data, err = json.Marshal(body); err != nil {
			return fmt.Errorf("marshal request: %w", err)
		}
	}
	return h.do(ctx, method, path, data, "application/json", out)
}

func (h *httpClient) do(ctx context.Context, method, path string, body []byte, contentType string, out any) error {
	op := method + " " + path
	res, err := h.breaker.Execute(func() (any, error) {
		return h.roundTrip(ctx, op, method, path, body, contentType)
	})
	if err != nil {
		if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
			return &NetworkError{Op: op, Err: err}
		}
		return err
	}

	r := res.(*reply)
	if out == nil || len(r.body) == 0 {
		return nil
	}
	if err := json.Unmarshal(r.body, out); err != nil {
		return fmt.Errorf("%s: decode response: %w", op, err)
	}
	return nil
}

func (h *httpClient) roundTrip(ctx context.Context, op, method, path string, body []byte, contentType string) (*reply, error) {
	var reader io.Reader
	if body != nil {
		reader = bytes.NewReader(body)
	}
	req, err := http.NewRequestWithContext(ctx, method, h.baseURL+path, reader)
	if err != nil {
		return nil, fmt.Errorf("%s: create request: %w", op, err)
	}
	req.Header.Set("User-Agent", h.userAgent)
	if body != nil {
		req.Header.Set("Content-Type", contentType)
	}
	if token := h.bearer(); token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	h.log.Debug("sending request", "method", method, "url", req.URL.String())

	resp, err := h.client.Do(req)
	if err != nil {
		return nil, &NetworkError{Op: op, Err: err}
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &NetworkError{Op: op, Err: err}
	}
	h.log.Debug("response received", "op", op, "status", resp.StatusCode)

	if resp.StatusCode >= 400 {
		apiErr := &APIError{Status: resp.StatusCode}
		var errResp struct {
			Error string `json:"error"`
		}
		if json.Unmarshal(data, &errResp) == nil {
			apiErr.Message = errResp.Error
		}
		if resp.StatusCode >= 500 {
			return nil, &NetworkError{Op: op, Err: apiErr}
		}
		return nil, fmt.Errorf("%s: %w", op, apiErr)
	}
	return &reply{status: resp.StatusCode, body: data}, nil
}
