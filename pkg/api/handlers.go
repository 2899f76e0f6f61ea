package api

import (
	"bytes"
	"fmt"
	"net/http"

	"github.com/platinummonkey/envfile/pkg/export"
	"github.com/platinummonkey/envfile/pkg/httputil"
	"github.com/platinummonkey/envfile/pkg/observability"
	"github.com/platinummonkey/envfile/pkg/watch"
)

var contentTypes = map[export.Format]string{
	export.FormatJSON: "application/json",
	export.FormatYAML: "application/yaml",
	export.FormatEnv:  "text/plain; charset=utf-8",
}

// listVars returns the loaded entries
func (s *Server) listVars(w http.ResponseWriter, r *http.Request) {
	all, err := httputil.ParseQueryBool(r, "all", false)
	if err != nil {
		httputil.WriteBadRequest(w, err.Error())
		return
	}

	format := httputil.ParseQueryString(r, "format", "")
	if format == "" {
		entries := s.store.Effective()
		if all {
			entries = s.store.Snapshot()
		}
		httputil.WriteJSONOrError(w, http.StatusOK, VarsResponse{
			Entries: entries,
			Count:   len(entries),
		}, "encode entries")
		return
	}

	parsed, err := export.ParseFormat(format)
	if err != nil {
		httputil.WriteBadRequest(w, err.Error())
		return
	}

	var buf bytes.Buffer
	if err := export.Write(&buf, s.store.Snapshot(), parsed); err != nil {
		httputil.WriteInternalError(w, err)
		return
	}

	w.Header().Set("Content-Type", contentTypes[parsed])
	w.WriteHeader(http.StatusOK)
	w.Write(buf.Bytes())
}

// getVar returns the first loaded value for a key
func (s *Server) getVar(w http.ResponseWriter, r *http.Request) {
	key, ok := httputil.ParsePathStringOrError(w, r, "key")
	if !ok {
		return
	}

	var value string
	var found bool
	if s.cache != nil {
		value, found = s.cache.Get(key)
	} else {
		value, found = s.store.Get(key)
	}

	if !found {
		httputil.WriteNotFoundError(w, fmt.Sprintf("key not found: %s", key))
		return
	}

	httputil.WriteSuccess(w, VarResponse{Key: key, Value: value})
}

// reload reloads every configured file
func (s *Server) reload(w http.ResponseWriter, r *http.Request) {
	logger := observability.FromContext(r.Context())

	if err := s.reloader.Reload(watch.TriggerAPI); err != nil {
		logger.WithError(err).Warn("Reload requested over HTTP failed")
		httputil.WriteInternalError(w, err)
		return
	}

	httputil.WriteSuccess(w, ReloadResponse{
		Files:   s.reloader.Paths(),
		Entries: s.store.Len(),
	})
}

// publish mirrors the effective entries into Redis
func (s *Server) publish(w http.ResponseWriter, r *http.Request) {
	n, err := s.publisher.PublishStore(r.Context(), s.store)
	if err != nil {
		httputil.WriteError(w, http.StatusBadGateway, err)
		return
	}

	httputil.WriteSuccess(w, PublishResponse{
		Key:     s.publisher.Key(),
		Entries: n,
	})
}

// stats reports store and cache counters
func (s *Server) stats(w http.ResponseWriter, r *http.Request) {
	resp := StatsResponse{
		Entries:     s.store.Len(),
		Capacity:    s.store.Cap(),
		Initialized: s.store.Initialized(),
	}
	if s.cache != nil {
		stats := s.cache.Stats()
		resp.Cache = &stats
	}

	httputil.WriteSuccess(w, resp)
}
