package observability

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Load outcome label values.
const (
	StatusSuccess = "success"
	StatusFailure = "failure"
)

// Metrics holds all Prometheus metrics. A nil *Metrics is valid and records
// nothing, so components can take one unconditionally.
type Metrics struct {
	// HTTP metrics
	HTTPRequestsTotal   *prometheus.CounterVec
	HTTPRequestDuration *prometheus.HistogramVec

	// Loader metrics
	LoadsTotal         *prometheus.CounterVec
	LoadDuration       prometheus.Histogram
	EntriesLoadedTotal prometheus.Counter
	LinesSkippedTotal  *prometheus.CounterVec
	StoreEntries       prometheus.Gauge

	// Reload metrics
	ReloadsTotal *prometheus.CounterVec

	// Cache metrics
	CacheHitsTotal   prometheus.Counter
	CacheMissesTotal prometheus.Counter

	// Redis metrics
	RedisPublishTotal    *prometheus.CounterVec
	RedisPublishDuration prometheus.Histogram
}

// NewMetrics creates and registers all Prometheus metrics
func NewMetrics(registry *prometheus.Registry) *Metrics {
	m := &Metrics{
		// HTTP metrics
		HTTPRequestsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "envfile_http_requests_total",
				Help: "Total number of HTTP requests",
			},
			[]string{"method", "path", "status"},
		),
		HTTPRequestDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "envfile_http_request_duration_seconds",
				Help:    "HTTP request duration in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"method", "path"},
		),

		// Loader metrics
		LoadsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "envfile_loads_total",
				Help: "Total number of env file loads",
			},
			[]string{"status"},
		),
		LoadDuration: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "envfile_load_duration_seconds",
				Help:    "Env file load duration in seconds",
				Buckets: []float64{.0005, .001, .005, .01, .05, .1, .5, 1},
			},
		),
		EntriesLoadedTotal: prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: "envfile_entries_loaded_total",
				Help: "Total number of entries appended to the store",
			},
		),
		LinesSkippedTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "envfile_lines_skipped_total",
				Help: "Total number of malformed lines skipped",
			},
			[]string{"reason"},
		),
		StoreEntries: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Name: "envfile_store_entries",
				Help: "Current number of entries in the store, duplicates included",
			},
		),

		// Reload metrics
		ReloadsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "envfile_reloads_total",
				Help: "Total number of store reloads",
			},
			[]string{"trigger", "status"},
		),

		// Cache metrics
		CacheHitsTotal: prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: "envfile_cache_hits_total",
				Help: "Total number of lookup cache hits",
			},
		),
		CacheMissesTotal: prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: "envfile_cache_misses_total",
				Help: "Total number of lookup cache misses",
			},
		),

		// Redis metrics
		RedisPublishTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "envfile_redis_publish_total",
				Help: "Total number of store snapshots published to Redis",
			},
			[]string{"status"},
		),
		RedisPublishDuration: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "envfile_redis_publish_duration_seconds",
				Help:    "Redis publish duration in seconds",
				Buckets: []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1},
			},
		),
	}

	// Register all metrics
	registry.MustRegister(
		m.HTTPRequestsTotal,
		m.HTTPRequestDuration,
		m.LoadsTotal,
		m.LoadDuration,
		m.EntriesLoadedTotal,
		m.LinesSkippedTotal,
		m.StoreEntries,
		m.ReloadsTotal,
		m.CacheHitsTotal,
		m.CacheMissesTotal,
		m.RedisPublishTotal,
		m.RedisPublishDuration,
	)

	return m
}

// RecordLoad records the outcome of one load call.
func (m *Metrics) RecordLoad(status string, duration time.Duration, entries int) {
	if m == nil {
		return
	}
	m.LoadsTotal.WithLabelValues(status).Inc()
	m.LoadDuration.Observe(duration.Seconds())
	m.EntriesLoadedTotal.Add(float64(entries))
}

// RecordSkippedLine counts a malformed line.
func (m *Metrics) RecordSkippedLine(reason string) {
	if m == nil {
		return
	}
	m.LinesSkippedTotal.WithLabelValues(reason).Inc()
}

// SetStoreEntries sets the store size gauge.
func (m *Metrics) SetStoreEntries(n int) {
	if m == nil {
		return
	}
	m.StoreEntries.Set(float64(n))
}

// RecordReload records a reload triggered by a file event, a schedule or an
// API call.
func (m *Metrics) RecordReload(trigger, status string) {
	if m == nil {
		return
	}
	m.ReloadsTotal.WithLabelValues(trigger, status).Inc()
}

// RecordCacheHit counts a lookup served from cache.
func (m *Metrics) RecordCacheHit() {
	if m == nil {
		return
	}
	m.CacheHitsTotal.Inc()
}

// RecordCacheMiss counts a lookup that fell through to the store.
func (m *Metrics) RecordCacheMiss() {
	if m == nil {
		return
	}
	m.CacheMissesTotal.Inc()
}

// RecordPublish records one Redis publish.
func (m *Metrics) RecordPublish(status string, duration time.Duration) {
	if m == nil {
		return
	}
	m.RedisPublishTotal.WithLabelValues(status).Inc()
	m.RedisPublishDuration.Observe(duration.Seconds())
}

// responseWriter wraps http.ResponseWriter to capture status code
type responseWriter struct {
	http.ResponseWriter
	statusCode int
}

func (rw *responseWriter) WriteHeader(code int) {
	rw.statusCode = code
	rw.ResponseWriter.WriteHeader(code)
}

// HTTPMetricsMiddleware instruments HTTP requests with Prometheus metrics.
// pathFn maps a request to a low-cardinality path label; nil uses the raw path.
func HTTPMetricsMiddleware(metrics *Metrics, pathFn func(*http.Request) string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if metrics == nil {
				next.ServeHTTP(w, r)
				return
			}

			start := time.Now()
			rw := &responseWriter{
				ResponseWriter: w,
				statusCode:     http.StatusOK,
			}

			next.ServeHTTP(rw, r)

			path := r.URL.Path
			if pathFn != nil {
				path = pathFn(r)
			}
			status := strconv.Itoa(rw.statusCode)

			metrics.HTTPRequestsTotal.WithLabelValues(r.Method, path, status).Inc()
			metrics.HTTPRequestDuration.WithLabelValues(r.Method, path).Observe(time.Since(start).Seconds())
		})
	}
}

// MetricsHandler returns the /metrics handler for registry.
func MetricsHandler(registry *prometheus.Registry) http.Handler {
	return promhttp.HandlerFor(registry, promhttp.HandlerOpts{})
}
