package ai

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

const (
	defaultGeminiBaseURL = "https://generativelanguage.googleapis.com/v1beta"
	defaultGeminiModel   = "gemini-flash-latest"

	requestTimeout = 60 * time.Second
)

// Message is one role/content turn handed to the model. Role is the
// internal vocabulary (user/assistant/system); mapping to the provider
// vocabulary happens inside the client.
type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// GeminiClient calls the Google AI Studio (Gemini) API.
type GeminiClient struct {
	apiKey       string
	baseURL      string
	defaultModel string
	httpClient   *http.Client
	prompts      *PromptRegistry
}

// GeminiOption customizes the client.
type GeminiOption func(*GeminiClient)

// WithBaseURL overrides the API base URL (tests point it at a fake server).
func WithBaseURL(baseURL string) GeminiOption {
	return func(c *GeminiClient) {
		c.baseURL = strings.TrimRight(strings.TrimSpace(baseURL), "/")
	}
}

// WithDefaultModel overrides the model used when callers pass an empty model.
func WithDefaultModel(model string) GeminiOption {
	return func(c *GeminiClient) {
		c.defaultModel = strings.TrimSpace(model)
	}
}

// NewGeminiClient constructs a client with the provided API key and
// prompt registry.
func NewGeminiClient(apiKey string, prompts *PromptRegistry, options ...GeminiOption) (*GeminiClient, error) {
	apiKey = strings.TrimSpace(apiKey)
	if apiKey == "" {
		return nil, fmt.Errorf("gemini api key required")
	}
	if prompts == nil {
		return nil, fmt.Errorf("prompt registry required")
	}
	c := &GeminiClient{
		apiKey:       apiKey,
		baseURL:      defaultGeminiBaseURL,
		defaultModel: defaultGeminiModel,
		httpClient:   &http.Client{Timeout: requestTimeout},
		prompts:      prompts,
	}
	for _, option := range options {
		if option != nil {
			option(c)
		}
	}
	return c, nil
}

// Invoke sends messages to the model with the system prompt for task
// prepended, and returns the concatenated text of the first candidate.
//
// The call blocks until full text or failure; there is no streaming and
// no partial output. A transient 500/503 from the provider is retried
// exactly once with an identical request. All other failures surface
// immediately as one of the package sentinels.
func (c *GeminiClient) Invoke(ctx context.Context, model string, messages []Message, task TaskType) (string, error) {
	model = strings.TrimSpace(strings.TrimPrefix(model, "models/"))
	if model == "" {
		model = c.defaultModel
	}

	// Gemini has no system role in this integration: the system prompt
	// rides in as a synthetic leading user message.
	all := make([]Message, 0, len(messages)+1)
	all = append(all, Message{Role: "user", Content: c.prompts.SystemPrompt(task)})
	all = append(all, messages...)

	reqBody := generateRequest{
		Contents: toGeminiContents(all),
		GenerationConfig: generationConfig{
			Temperature:      0.7,
			MaxOutputTokens:  4000,
			TopP:             0.9,
			ResponseMimeType: "text/plain",
		},
		SafetySettings: []safetySetting{
			{Category: "HARM_CATEGORY_DANGEROUS_CONTENT", Threshold: "BLOCK_ONLY_HIGH"},
		},
	}
	url := fmt.Sprintf("%s/models/%s:generateContent?key=%s", c.baseURL, model, c.apiKey)

	resp, err := retryOnceOnServerError(func() (generateResponse, int, error) {
		return c.doGenerate(ctx, url, reqBody)
	})
	if err != nil {
		return "", err
	}

	if len(resp.Candidates) == 0 {
		return "", ErrEmptyResponse
	}
	candidate := resp.Candidates[0]
	if strings.EqualFold(candidate.FinishReason, "SAFETY") {
		return "", ErrSafetyBlocked
	}
	if len(candidate.Content.Parts) == 0 {
		return "", ErrEmptyResponse
	}
	var sb strings.Builder
	for _, p := range candidate.Content.Parts {
		sb.WriteString(p.Text)
	}
	text := strings.TrimSpace(sb.String())
	if text == "" {
		return "", ErrEmptyResponse
	}
	return text, nil
}

// retryOnceOnServerError runs call, repeating it a single time when the
// provider answered 500 or 503. Every other outcome is final.
func retryOnceOnServerError(call func() (generateResponse, int, error)) (generateResponse, error) {
	resp, status, err := call()
	if err != nil && (status == http.StatusInternalServerError || status == http.StatusServiceUnavailable) {
		resp, status, err = call()
		if err != nil && (status == http.StatusInternalServerError || status == http.StatusServiceUnavailable) {
			return generateResponse{}, ErrServiceUnavailable
		}
	}
	return resp, err
}

// doGenerate performs one POST and classifies failures. The returned
// status is 0 when the failure never reached the provider.
func (c *GeminiClient) doGenerate(ctx context.Context, url string, payload generateRequest) (generateResponse, int, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return generateResponse{}, 0, fmt.Errorf("marshal request: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return generateResponse{}, 0, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return generateResponse{}, 0, fmt.Errorf("call AI service: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		msg := readErrorMessage(resp.Body)
		switch resp.StatusCode {
		case http.StatusBadRequest:
			return generateResponse{}, resp.StatusCode, ErrInvalidRequest
		case http.StatusForbidden:
			return generateResponse{}, resp.StatusCode, ErrAuthOrQuota
		case http.StatusTooManyRequests:
			return generateResponse{}, resp.StatusCode, ErrRateLimited
		case http.StatusInternalServerError, http.StatusServiceUnavailable:
			return generateResponse{}, resp.StatusCode, ErrServiceUnavailable
		default:
			return generateResponse{}, resp.StatusCode, fmt.Errorf("AI service error: %s", msg)
		}
	}

	var out generateResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return generateResponse{}, resp.StatusCode, fmt.Errorf("decode response: %w", err)
	}
	return out, resp.StatusCode, nil
}

// toGeminiContents maps internal roles onto the provider vocabulary:
// assistant becomes "model", everything else becomes "user".
func toGeminiContents(messages []Message) []content {
	out := make([]content, 0, len(messages))
	for _, m := range messages {
		role := "user"
		if m.Role == "assistant" {
			role = "model"
		}
		out = append(out, content{Role: role, Parts: []part{{Text: m.Content}}})
	}
	return out
}

func readErrorMessage(r io.Reader) string {
	var errResp errorResponse
	if err := json.NewDecoder(r).Decode(&errResp); err == nil && errResp.Error.Message != "" {
		return errResp.Error.Message
	}
	return "unexpected provider response"
}

type part struct {
	Text string `json:"text"`
}

type content struct {
	Role  string `json:"role,omitempty"`
	Parts []part `json:"parts"`
}

type generationConfig struct {
	Temperature      float64 `json:"temperature"`
	MaxOutputTokens  int     `json:"maxOutputTokens"`
	TopP             float64 `json:"topP"`
	ResponseMimeType string  `json:"responseMimeType"`
}

type safetySetting struct {
	Category  string `json:"category"`
	Threshold string `json:"threshold"`
}

type generateRequest struct {
	Contents         []content        `json:"contents"`
	GenerationConfig generationConfig `json:"generationConfig"`
	SafetySettings   []safetySetting  `json:"safetySettings"`
}

type generateResponse struct {
	Candidates []struct {
		Content      content `json:"content"`
		FinishReason string  `json:"finishReason"`
	} `json:"candidates"`
}

type errorResponse struct {
	Error struct {
		Message string `json:"message"`
	} `json:"error"`
}
