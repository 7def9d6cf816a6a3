package ai

import "errors"

// Failure taxonomy surfaced by the Gemini client. The HTTP layer maps
// these onto status codes; callers match with errors.Is.
var (
	// ErrInvalidRequest indicates the provider rejected the request (HTTP 400).
	ErrInvalidRequest = errors.New("invalid request or API key")
	// ErrAuthOrQuota indicates a bad key or exhausted quota (HTTP 403).
	ErrAuthOrQuota = errors.New("API key invalid or quota exceeded")
	// ErrRateLimited indicates the provider throttled the call (HTTP 429). Never retried.
	ErrRateLimited = errors.New("rate limit exceeded")
	// ErrServiceUnavailable indicates a 500/503 that persisted through the single retry.
	ErrServiceUnavailable = errors.New("AI service unavailable")
	// ErrSafetyBlocked indicates the first candidate was blocked by safety filtering.
	ErrSafetyBlocked = errors.New("response blocked by safety filtering")
	// ErrEmptyResponse indicates no candidates or no content parts came back.
	ErrEmptyResponse = errors.New("no response from AI service")

	// ErrUnparsableTopics indicates the model did not return the strict
	// JSON topic array it was instructed to produce.
	ErrUnparsableTopics = errors.New("model did not return valid topics JSON")
	// ErrUnparsableOutline indicates the model did not return the strict
	// JSON outline it was instructed to produce.
	ErrUnparsableOutline = errors.New("model did not return valid outline JSON")
)
