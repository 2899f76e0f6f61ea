// Package api serves a loaded env store over HTTP.
//
// # Routes
//
//	GET  /v1/vars             effective entries as JSON; ?all=true keeps duplicates,
//	                          ?format=yaml|env renders through pkg/export
//	GET  /v1/vars/{key}       one value, 404 when the key is not loaded
//	POST /v1/reload           reload every file (staged, then swapped in)
//	POST /v1/publish          mirror the entries into Redis, when configured
//	GET  /v1/stats            store and lookup cache counters
//	GET  /health, /health/live, /health/ready
//	GET  /metrics             when a Prometheus registry is configured
//
// Every response carries an X-Request-ID header.
//
// # Usage
//
//	server := api.NewServer(api.Options{
//		Store:    store,
//		Cache:    lookupCache,
//		Reloader: reloader,
//		Logger:   logger,
//	})
//	http.ListenAndServe(":8080", server)
package api
