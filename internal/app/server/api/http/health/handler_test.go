package health

import (
	"context"
	"errors"
	"net/http"
	"testing"

	"github.com/danielgtaylor/huma/v2"
	"github.com/danielgtaylor/huma/v2/humatest"
	"github.com/stretchr/testify/assert"
	"golang.org/x/exp/slog"
)

type pinger struct{ err error }

func (p pinger) Ping(context.Context) error { return p.err }

func TestHandler_healthCheck(t *testing.T) {
	tests := []struct {
		name         string
		db           Pinger
		wantErr      bool
		wantDatabase string
	}{
		{name: "no database configured"},
		{name: "database reachable", db: pinger{}, wantDatabase: "OK"},
		{name: "database down", db: pinger{err: errors.New("conn refused")}, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			handler := NewHandler(tt.db, slog.Default(), huma.Middlewares{})

			output, err := handler.healthCheck(context.Background(), &Input{})

			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			assert.NoError(t, err)
			assert.Equal(t, "OK", output.Body.Status)
			assert.Equal(t, tt.wantDatabase, output.Body.Database)
		})
	}
}

func TestHandler_Route(t *testing.T) {
	_, api := humatest.New(t)
	NewHandler(nil, slog.Default(), nil).SetupRoutes(api)

	resp := api.Get("/health")
	assert.Equal(t, http.StatusOK, resp.Code)
	assert.Contains(t, resp.Body.String(), `"status":"OK"`)
}
