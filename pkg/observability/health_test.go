package observability

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/go-redis/redis/v8"
	"github.com/gorilla/mux"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeProbe is a ReadinessProbe with a fixed answer.
type fakeProbe bool

func (p fakeProbe) Initialized() bool { return bool(p) }

func newRedis(t *testing.T) (*miniredis.Miniredis, *redis.Client) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })
	return mr, client
}

func TestHealthChecker_Check(t *testing.T) {
	t.Run("no dependencies", func(t *testing.T) {
		status := NewHealthChecker(nil, nil, "dev").Check(context.Background())
		assert.Equal(t, StatusHealthy, status.Status)
		assert.Equal(t, "dev", status.Version)
		assert.Empty(t, status.Dependencies)
	})

	t.Run("store loaded", func(t *testing.T) {
		status := NewHealthChecker(fakeProbe(true), nil, "").Check(context.Background())
		assert.Equal(t, StatusHealthy, status.Status)
		assert.Equal(t, StatusHealthy, status.Dependencies["store"].Status)
	})

	t.Run("store not loaded", func(t *testing.T) {
		status := NewHealthChecker(fakeProbe(false), nil, "").Check(context.Background())
		assert.Equal(t, StatusUnhealthy, status.Status)
		assert.Equal(t, "no env file loaded", status.Dependencies["store"].Message)
	})

	t.Run("redis reachable", func(t *testing.T) {
		_, client := newRedis(t)
		status := NewHealthChecker(fakeProbe(true), client, "").Check(context.Background())
		assert.Equal(t, StatusHealthy, status.Status)
		assert.Equal(t, StatusHealthy, status.Dependencies["redis"].Status)
	})

	t.Run("redis down degrades", func(t *testing.T) {
		mr, client := newRedis(t)
		mr.Close()

		status := NewHealthChecker(fakeProbe(true), client, "").Check(context.Background())
		assert.Equal(t, StatusDegraded, status.Status)
		assert.Equal(t, StatusUnhealthy, status.Dependencies["redis"].Status)
		assert.NotEmpty(t, status.Dependencies["redis"].Message)
	})

	t.Run("unhealthy store wins over degraded redis", func(t *testing.T) {
		mr, client := newRedis(t)
		mr.Close()

		status := NewHealthChecker(fakeProbe(false), client, "").Check(context.Background())
		assert.Equal(t, StatusUnhealthy, status.Status)
	})
}

func TestHealthChecker_Endpoints(t *testing.T) {
	tests := []struct {
		name       string
		probe      fakeProbe
		path       string
		wantStatus int
		wantBody   string
	}{
		{name: "liveness ignores store", probe: false, path: "/health/live", wantStatus: http.StatusOK, wantBody: StatusHealthy},
		{name: "ready", probe: true, path: "/health/ready", wantStatus: http.StatusOK, wantBody: StatusHealthy},
		{name: "not ready", probe: false, path: "/health/ready", wantStatus: http.StatusServiceUnavailable, wantBody: StatusUnhealthy},
		{name: "bare health is readiness", probe: false, path: "/health", wantStatus: http.StatusServiceUnavailable, wantBody: StatusUnhealthy},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			router := mux.NewRouter()
			RegisterHealthRoutes(router, NewHealthChecker(tt.probe, nil, ""))

			rec := httptest.NewRecorder()
			router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, tt.path, nil))

			assert.Equal(t, tt.wantStatus, rec.Code)
			assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))

			var body map[string]interface{}
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
			assert.Equal(t, tt.wantBody, body["status"])
		})
	}
}

func TestRegisterHealthRoutes_MethodNotAllowed(t *testing.T) {
	router := mux.NewRouter()
	RegisterHealthRoutes(router, NewHealthChecker(nil, nil, ""))

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/health/live", nil))
	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
}
