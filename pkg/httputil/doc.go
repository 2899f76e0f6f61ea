// Package httputil holds the JSON response helpers, request parsing and
// middleware shared by the HTTP API.
//
//	handler := httputil.Chain(
//		httputil.RequestIDMiddleware(logger),
//		httputil.LoggingMiddleware(logger),
//	)(router)
//
//	key, ok := httputil.ParsePathStringOrError(w, r, "key")
//	if !ok {
//		return // 400 already written
//	}
//	httputil.WriteSuccess(w, value)
package httputil
