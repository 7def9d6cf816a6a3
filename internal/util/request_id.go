package util

import (
	"context"
	"log/slog"
	"net/http"
	"strings"
)

// RequestIDHeader is the header used to propagate request ids end to end.
const RequestIDHeader = "X-Request-Id"

const maxInboundRequestIDLen = 128

type requestIDKey struct{}

// WithRequestID adopts the caller's request id, or mints one when the header
// is absent or oversized. The id is echoed on the response and stored in the
// request context together with a slog.Logger pre-tagged with "request_id",
// retrievable via LoggerFromContext.
func WithRequestID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := strings.TrimSpace(r.Header.Get(RequestIDHeader))
		if id == "" || len(id) > maxInboundRequestIDLen {
			id = NewID()
		}
		w.Header().Set(RequestIDHeader, id)

		ctx := context.WithValue(r.Context(), requestIDKey{}, id)
		ctx = ContextWithLogger(ctx, slog.Default().With("request_id", id))
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// RequestIDFromContext returns the request id stored by WithRequestID,
// or "" when the middleware did not run.
func RequestIDFromContext(ctx context.Context) string {
	if ctx == nil {
		return ""
	}
	id, _ := ctx.Value(requestIDKey{}).(string)
	return id
}

// RequestIDFromRequest is a convenience wrapper over RequestIDFromContext.
func RequestIDFromRequest(r *http.Request) string {
	if r == nil {
		return ""
	}
	return RequestIDFromContext(r.Context())
}
