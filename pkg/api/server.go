package api

import (
	"net/http"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/sirupsen/logrus"

	"github.com/platinummonkey/envfile/pkg/cache"
	"github.com/platinummonkey/envfile/pkg/envfile"
	"github.com/platinummonkey/envfile/pkg/httputil"
	"github.com/platinummonkey/envfile/pkg/observability"
	"github.com/platinummonkey/envfile/pkg/publish"
	"github.com/platinummonkey/envfile/pkg/watch"
)

// Options wires the server's dependencies. Store is required; the rest are
// optional and disable their routes when nil.
type Options struct {
	Store     *envfile.Store
	Cache     *cache.LookupCache
	Reloader  *watch.Reloader
	Publisher *publish.Publisher
	Health    *observability.HealthChecker
	Logger    logrus.FieldLogger
	Metrics   *observability.Metrics
	Registry  *prometheus.Registry
}

// Server represents our API server
type Server struct {
	store     *envfile.Store
	cache     *cache.LookupCache
	reloader  *watch.Reloader
	publisher *publish.Publisher
	logger    logrus.FieldLogger
	metrics   *observability.Metrics

	router  *mux.Router
	handler http.Handler
}

// NewServer creates a new API server
func NewServer(opts Options) *Server {
	logger := opts.Logger
	if logger == nil {
		logger = observability.NopLogger()
	}

	health := opts.Health
	if health == nil {
		health = observability.NewHealthChecker(opts.Store, nil, "")
	}

	s := &Server{
		store:     opts.Store,
		cache:     opts.Cache,
		reloader:  opts.Reloader,
		publisher: opts.Publisher,
		logger:    logger,
		metrics:   opts.Metrics,
		router:    mux.NewRouter(),
	}

	s.setupRoutes(health, opts.Registry)

	s.handler = httputil.Chain(
		httputil.RequestIDMiddleware(logger),
		observability.RecoveryMiddleware(logger),
		httputil.LoggingMiddleware(logger),
	)(s.router)

	return s
}

// setupRoutes configures all the API routes
func (s *Server) setupRoutes(health *observability.HealthChecker, registry *prometheus.Registry) {
	s.router.Use(observability.HTTPMetricsMiddleware(s.metrics, routeTemplate))

	v1 := s.router.PathPrefix("/v1").Subrouter()
	v1.HandleFunc("/vars", s.listVars).Methods(http.MethodGet)
	v1.HandleFunc("/vars/{key}", s.getVar).Methods(http.MethodGet)
	v1.HandleFunc("/stats", s.stats).Methods(http.MethodGet)

	if s.reloader != nil {
		v1.HandleFunc("/reload", s.reload).Methods(http.MethodPost)
	}
	if s.publisher != nil {
		v1.HandleFunc("/publish", s.publish).Methods(http.MethodPost)
	}

	observability.RegisterHealthRoutes(s.router, health)

	if registry != nil {
		s.router.Handle("/metrics", observability.MetricsHandler(registry)).Methods(http.MethodGet)
	}
}

// ServeHTTP implements the http.Handler interface
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.handler.ServeHTTP(w, r)
}

// Router returns the underlying router, without the request middleware.
func (s *Server) Router() *mux.Router {
	return s.router
}

// routeTemplate labels metrics by route pattern so keys do not become labels.
func routeTemplate(r *http.Request) string {
	if route := mux.CurrentRoute(r); route != nil {
		if tpl, err := route.GetPathTemplate(); err == nil {
			return tpl
		}
	}
	return "unmatched"
}
