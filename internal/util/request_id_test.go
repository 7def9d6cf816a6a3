package util

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func runRequestID(t *testing.T, headerValue string) (seenInContext string, echoed string) {
	t.Helper()
	handler := WithRequestID(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seenInContext = RequestIDFromRequest(r)
	}))
	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	if headerValue != "" {
		req.Header.Set(RequestIDHeader, headerValue)
	}
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	return seenInContext, rec.Header().Get(RequestIDHeader)
}

func TestRequestIDAdoptsInboundHeader(t *testing.T) {
	inCtx, echoed := runRequestID(t, "upstream-42")
	if inCtx != "upstream-42" || echoed != "upstream-42" {
		t.Fatalf("expected inbound id everywhere, got ctx=%q header=%q", inCtx, echoed)
	}
}

func TestRequestIDGeneratedWhenAbsent(t *testing.T) {
	inCtx, echoed := runRequestID(t, "")
	if inCtx == "" || echoed == "" {
		t.Fatal("expected a generated request id")
	}
	if inCtx != echoed {
		t.Fatalf("context and header ids diverge: %q vs %q", inCtx, echoed)
	}
}

func TestRequestIDReplacesOversizedHeader(t *testing.T) {
	huge := strings.Repeat("x", 512)
	inCtx, _ := runRequestID(t, huge)
	if inCtx == huge {
		t.Fatal("oversized inbound id should be replaced")
	}
	if inCtx == "" {
		t.Fatal("expected a generated replacement id")
	}
}

func TestRequestIDFromContextWithoutMiddleware(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	if got := RequestIDFromRequest(req); got != "" {
		t.Fatalf("expected empty id without middleware, got %q", got)
	}
}
