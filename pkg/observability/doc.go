// Package observability provides logrus logging, Prometheus metrics, health
// checks and graceful shutdown for envfile.
//
// # Logging
//
//	logger := observability.NewLogger("debug", observability.FormatJSON, os.Stderr)
//	logger.WithField("path", path).Info("Loaded env file")
//
// Components take a logrus.FieldLogger and default to NopLogger.
//
// # Metrics
//
//	registry := prometheus.NewRegistry()
//	metrics := observability.NewMetrics(registry)
//	loader := envfile.NewLoader(store, envfile.WithMetrics(metrics))
//
// Every recording method is safe on a nil *Metrics, so metrics stay optional.
//
// # Health Checks
//
//	checker := observability.NewHealthChecker(store, redisClient, version)
//	observability.RegisterHealthRoutes(router, checker)
//
// Readiness fails until the store has loaded a file; an unreachable Redis
// only degrades it.
package observability
