package main

import (
	"crypto/subtle"
	"net/http"
	"strconv"
	"strings"
)

// This file contains the HTTP middleware wrapped around the mux: metrics,
// CORS and the bearer-token guard for admin routes.

// responseWriter captures the status code written by the wrapped handler,
// which the standard ResponseWriter does not expose.
type responseWriter struct {
	http.ResponseWriter
	statusCode int
}

func newResponseWriter(w http.ResponseWriter) *responseWriter {
	// Default to 200 OK if WriteHeader is not called.
	return &responseWriter{w, http.StatusOK}
}

func (rw *responseWriter) WriteHeader(code int) {
	rw.statusCode = code
	rw.ResponseWriter.WriteHeader(code)
}

// metricsMiddleware records every request with its status code. Routes are
// labelled by their mux pattern so provider IDs do not explode the label set;
// unmatched requests fall back to the raw path.
func metricsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		rw := newResponseWriter(w)
		next.ServeHTTP(rw, r)

		path := r.Pattern
		if path == "" {
			path = r.URL.Path
		}
		httpRequestsTotal.WithLabelValues(path, r.Method, strconv.Itoa(rw.statusCode)).Inc()
	})
}

func corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Headers", "Authorization, Content-Type, "+userIDHeader)
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, OPTIONS")
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// adminAuthMiddleware requires "Authorization: Bearer <ADMIN_TOKEN>".
func (cfg *apiConfig) adminAuthMiddleware(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		token, ok := strings.CutPrefix(r.Header.Get("Authorization"), "Bearer ")
		if !ok || cfg.adminToken == "" || subtle.ConstantTimeCompare([]byte(strings.TrimSpace(token)), []byte(cfg.adminToken)) != 1 {
			cfg.respondWithError(w, http.StatusUnauthorized, "Unauthorized", nil)
			return
		}
		next(w, r)
	}
}
