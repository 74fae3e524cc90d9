package metrics

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestCollector_Middleware(t *testing.T) {
	c := New()
	r := chi.NewRouter()
	r.Use(c.Middleware)
	r.Get("/api/image/{key}", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	})

	for _, key := range []string{"a", "b"} {
		r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/api/image/"+key, nil))
	}

	assert.Equal(t, 2.0, testutil.ToFloat64(c.requests.WithLabelValues(http.MethodGet, "/api/image/{key}", "404")))
}

func TestCollector_Counters(t *testing.T) {
	c := New()
	c.Reject("Invalid token")
	c.Login(true)
	c.Login(false)
	c.Login(false)

	assert.Equal(t, 1.0, testutil.ToFloat64(c.rejects.WithLabelValues("Invalid token")))
	assert.Equal(t, 2.0, testutil.ToFloat64(c.logins.WithLabelValues("failure")))

	rec := httptest.NewRecorder()
	c.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	assert.Contains(t, rec.Body.String(), "timeline_logins_total")
}
