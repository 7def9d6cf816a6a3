package util

import (
	"net/http"
	"strings"
)

// WithCORS allows cross-origin requests from the configured client
// origin. An empty origin falls back to "*" for local development.
func WithCORS(clientOrigin string, next http.Handler) http.Handler {
	clientOrigin = strings.TrimSpace(clientOrigin)
	if clientOrigin == "" {
		clientOrigin = "*"
	}
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", clientOrigin)
		w.Header().Set("Access-Control-Allow-Headers", "Authorization, Content-Type")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, PATCH, DELETE, OPTIONS")
		if clientOrigin != "*" {
			w.Header().Set("Vary", "Origin")
		}
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}
		next.ServeHTTP(w, r)
	})
}
