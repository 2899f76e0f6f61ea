package observability

import (
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewMetrics_Registers(t *testing.T) {
	registry := prometheus.NewRegistry()
	metrics := NewMetrics(registry)
	require.NotNil(t, metrics)

	metrics.RecordLoad(StatusSuccess, 10*time.Millisecond, 3)

	families, err := registry.Gather()
	require.NoError(t, err)

	names := make(map[string]bool)
	for _, f := range families {
		names[f.GetName()] = true
	}
	assert.True(t, names["envfile_loads_total"])
	assert.True(t, names["envfile_load_duration_seconds"])
	assert.True(t, names["envfile_entries_loaded_total"])
}

func TestNewMetrics_DuplicateRegistrationPanics(t *testing.T) {
	registry := prometheus.NewRegistry()
	NewMetrics(registry)
	assert.Panics(t, func() { NewMetrics(registry) })
}

func TestMetrics_Record(t *testing.T) {
	metrics := NewMetrics(prometheus.NewRegistry())

	metrics.RecordLoad(StatusSuccess, time.Millisecond, 4)
	metrics.RecordLoad(StatusFailure, time.Millisecond, 1)
	metrics.RecordSkippedLine("empty_key")
	metrics.SetStoreEntries(7)
	metrics.RecordReload("watch", StatusSuccess)
	metrics.RecordCacheHit()
	metrics.RecordCacheHit()
	metrics.RecordCacheMiss()
	metrics.RecordPublish(StatusFailure, time.Millisecond)

	assert.Equal(t, float64(1), testutil.ToFloat64(metrics.LoadsTotal.WithLabelValues(StatusSuccess)))
	assert.Equal(t, float64(1), testutil.ToFloat64(metrics.LoadsTotal.WithLabelValues(StatusFailure)))
	assert.Equal(t, float64(5), testutil.ToFloat64(metrics.EntriesLoadedTotal))
	assert.Equal(t, float64(1), testutil.ToFloat64(metrics.LinesSkippedTotal.WithLabelValues("empty_key")))
	assert.Equal(t, float64(7), testutil.ToFloat64(metrics.StoreEntries))
	assert.Equal(t, float64(1), testutil.ToFloat64(metrics.ReloadsTotal.WithLabelValues("watch", StatusSuccess)))
	assert.Equal(t, float64(2), testutil.ToFloat64(metrics.CacheHitsTotal))
	assert.Equal(t, float64(1), testutil.ToFloat64(metrics.CacheMissesTotal))
	assert.Equal(t, float64(1), testutil.ToFloat64(metrics.RedisPublishTotal.WithLabelValues(StatusFailure)))
}

func TestMetrics_NilIsSafe(t *testing.T) {
	var metrics *Metrics

	assert.NotPanics(t, func() {
		metrics.RecordLoad(StatusSuccess, time.Second, 1)
		metrics.RecordSkippedLine("missing_separator")
		metrics.SetStoreEntries(1)
		metrics.RecordReload("api", StatusFailure)
		metrics.RecordCacheHit()
		metrics.RecordCacheMiss()
		metrics.RecordPublish(StatusSuccess, time.Second)
	})
}

func TestHTTPMetricsMiddleware(t *testing.T) {
	metrics := NewMetrics(prometheus.NewRegistry())

	handler := HTTPMetricsMiddleware(metrics, func(*http.Request) string {
		return "/v1/vars/{key}"
	})(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/v1/vars/MISSING", nil))

	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, float64(1), testutil.ToFloat64(
		metrics.HTTPRequestsTotal.WithLabelValues(http.MethodGet, "/v1/vars/{key}", "404"),
	))
}

func TestHTTPMetricsMiddleware_NilMetrics(t *testing.T) {
	called := false
	handler := HTTPMetricsMiddleware(nil, nil)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		called = true
	}))

	handler.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/", nil))
	assert.True(t, called)
}

func TestMetricsHandler(t *testing.T) {
	registry := prometheus.NewRegistry()
	metrics := NewMetrics(registry)
	metrics.SetStoreEntries(3)

	server := httptest.NewServer(MetricsHandler(registry))
	defer server.Close()

	resp, err := http.Get(server.URL)
	require.NoError(t, err)
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.Contains(t, string(body), "envfile_store_entries 3")
}
