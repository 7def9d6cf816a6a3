package ai

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
)

// fakeGemini is an httptest-backed stand-in for the generateContent
// endpoint. It records every request body and serves queued responses.
type fakeGemini struct {
	t        *testing.T
	server   *httptest.Server
	calls    int32
	requests []generateRequest
	respond  func(call int, w http.ResponseWriter)
}

func newFakeGemini(t *testing.T, respond func(call int, w http.ResponseWriter)) *fakeGemini {
	f := &fakeGemini{t: t, respond: respond}
	f.server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		call := int(atomic.AddInt32(&f.calls, 1))
		var req generateRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Fatalf("decode fake request: %v", err)
		}
		f.requests = append(f.requests, req)
		f.respond(call, w)
	}))
	t.Cleanup(f.server.Close)
	return f
}

func (f *fakeGemini) callCount() int {
	return int(atomic.LoadInt32(&f.calls))
}

func textResponse(text string) func(int, http.ResponseWriter) {
	return func(_ int, w http.ResponseWriter) {
		writeCandidate(w, text)
	}
}

func writeCandidate(w http.ResponseWriter, text string) {
	_ = json.NewEncoder(w).Encode(map[string]any{
		"candidates": []map[string]any{
			{
				"content":      map[string]any{"role": "model", "parts": []map[string]string{{"text": text}}},
				"finishReason": "STOP",
			},
		},
	})
}

func newTestClient(t *testing.T, f *fakeGemini) *GeminiClient {
	client, err := NewGeminiClient("test-key", NewPromptRegistry(), WithBaseURL(f.server.URL))
	if err != nil {
		t.Fatalf("new client: %v", err)
	}
	return client
}

func TestPromptRegistryFallsBackToChatReview(t *testing.T) {
	registry := NewPromptRegistry()
	got := registry.SystemPrompt(TaskType("no-such-task"))
	if got != registry.SystemPrompt(TaskChatReview) {
		t.Fatalf("unknown task should fall back to the chat review prompt")
	}
	if got == "" {
		t.Fatal("fallback prompt must not be empty")
	}
}

func TestInvokeInjectsSystemPromptAndMapsRoles(t *testing.T) {
	fake := newFakeGemini(t, textResponse("ok"))
	client := newTestClient(t, fake)

	messages := []Message{
		{Role: "user", Content: "first"},
		{Role: "assistant", Content: "second"},
	}
	if _, err := client.Invoke(context.Background(), "", messages, TaskChatReview); err != nil {
		t.Fatalf("invoke: %v", err)
	}

	req := fake.requests[0]
	if len(req.Contents) != 3 {
		t.Fatalf("expected system prompt + 2 messages, got %d contents", len(req.Contents))
	}
	if req.Contents[0].Role != "user" || req.Contents[0].Parts[0].Text != NewPromptRegistry().SystemPrompt(TaskChatReview) {
		t.Fatalf("first content must be the system prompt as a user message")
	}
	if req.Contents[1].Role != "user" {
		t.Fatalf("user role should map to user, got %q", req.Contents[1].Role)
	}
	if req.Contents[2].Role != "model" {
		t.Fatalf("assistant role should map to model, got %q", req.Contents[2].Role)
	}
	cfg := req.GenerationConfig
	if cfg.Temperature != 0.7 || cfg.MaxOutputTokens != 4000 || cfg.TopP != 0.9 || cfg.ResponseMimeType != "text/plain" {
		t.Fatalf("unexpected generation config: %+v", cfg)
	}
	if len(req.SafetySettings) != 1 || req.SafetySettings[0].Category != "HARM_CATEGORY_DANGEROUS_CONTENT" {
		t.Fatalf("unexpected safety settings: %+v", req.SafetySettings)
	}
}

func TestInvokeRetriesExactlyOnceOn503(t *testing.T) {
	fake := newFakeGemini(t, func(call int, w http.ResponseWriter) {
		if call == 1 {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		writeCandidate(w, "recovered")
	})
	client := newTestClient(t, fake)

	text, err := client.Invoke(context.Background(), "", []Message{{Role: "user", Content: "hi"}}, TaskChatReview)
	if err != nil {
		t.Fatalf("expected retry to succeed, got %v", err)
	}
	if text != "recovered" {
		t.Fatalf("retry result should be indistinguishable from first-try success, got %q", text)
	}
	if fake.callCount() != 2 {
		t.Fatalf("expected exactly 2 calls, got %d", fake.callCount())
	}
}

func TestInvokeGivesUpAfterSecond503(t *testing.T) {
	fake := newFakeGemini(t, func(_ int, w http.ResponseWriter) {
		w.WriteHeader(http.StatusServiceUnavailable)
	})
	client := newTestClient(t, fake)

	_, err := client.Invoke(context.Background(), "", []Message{{Role: "user", Content: "hi"}}, TaskChatReview)
	if !errors.Is(err, ErrServiceUnavailable) {
		t.Fatalf("expected ErrServiceUnavailable, got %v", err)
	}
	if fake.callCount() != 2 {
		t.Fatalf("expected exactly 2 calls (one retry), got %d", fake.callCount())
	}
}

func TestInvokeDoesNotRetryOn429(t *testing.T) {
	fake := newFakeGemini(t, func(_ int, w http.ResponseWriter) {
		w.WriteHeader(http.StatusTooManyRequests)
	})
	client := newTestClient(t, fake)

	_, err := client.Invoke(context.Background(), "", []Message{{Role: "user", Content: "hi"}}, TaskChatReview)
	if !errors.Is(err, ErrRateLimited) {
		t.Fatalf("expected ErrRateLimited, got %v", err)
	}
	if fake.callCount() != 1 {
		t.Fatalf("429 must not be retried, got %d calls", fake.callCount())
	}
}

func TestInvokeClassifies400And403(t *testing.T) {
	cases := []struct {
		status int
		want   error
	}{
		{http.StatusBadRequest, ErrInvalidRequest},
		{http.StatusForbidden, ErrAuthOrQuota},
	}
	for _, tc := range cases {
		fake := newFakeGemini(t, func(_ int, w http.ResponseWriter) {
			w.WriteHeader(tc.status)
		})
		client := newTestClient(t, fake)
		_, err := client.Invoke(context.Background(), "", []Message{{Role: "user", Content: "hi"}}, TaskChatReview)
		if !errors.Is(err, tc.want) {
			t.Fatalf("status %d: expected %v, got %v", tc.status, tc.want, err)
		}
		if fake.callCount() != 1 {
			t.Fatalf("status %d must not be retried", tc.status)
		}
	}
}

func TestInvokeRejectsSafetyBlockedCandidate(t *testing.T) {
	fake := newFakeGemini(t, func(_ int, w http.ResponseWriter) {
		_ = json.NewEncoder(w).Encode(map[string]any{
			"candidates": []map[string]any{
				{"content": map[string]any{"parts": []map[string]string{}}, "finishReason": "SAFETY"},
			},
		})
	})
	client := newTestClient(t, fake)

	_, err := client.Invoke(context.Background(), "", []Message{{Role: "user", Content: "hi"}}, TaskChatReview)
	if !errors.Is(err, ErrSafetyBlocked) {
		t.Fatalf("expected ErrSafetyBlocked, got %v", err)
	}
}

func TestInvokeRejectsEmptyCandidates(t *testing.T) {
	fake := newFakeGemini(t, func(_ int, w http.ResponseWriter) {
		_ = json.NewEncoder(w).Encode(map[string]any{"candidates": []any{}})
	})
	client := newTestClient(t, fake)

	_, err := client.Invoke(context.Background(), "", []Message{{Role: "user", Content: "hi"}}, TaskChatReview)
	if !errors.Is(err, ErrEmptyResponse) {
		t.Fatalf("expected ErrEmptyResponse, got %v", err)
	}
}

func TestInvokeConcatenatesAllPartsAndTrims(t *testing.T) {
	fake := newFakeGemini(t, func(_ int, w http.ResponseWriter) {
		_ = json.NewEncoder(w).Encode(map[string]any{
			"candidates": []map[string]any{
				{
					"content": map[string]any{"parts": []map[string]string{
						{"text": "  part one, "},
						{"text": "part two  "},
					}},
					"finishReason": "STOP",
				},
			},
		})
	})
	client := newTestClient(t, fake)

	text, err := client.Invoke(context.Background(), "", []Message{{Role: "user", Content: "hi"}}, TaskChatReview)
	if err != nil {
		t.Fatalf("invoke: %v", err)
	}
	if text != "part one, part two" {
		t.Fatalf("unexpected concatenated text: %q", text)
	}
}
