package service

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"
	"time"
)

// ErrGenerativeBackend wraps every failure of the external text-generation
// service. The pipeline always recovers from it locally; it is never
// surfaced to callers.
var ErrGenerativeBackend = errors.New("generative backend request failed")

// GenerativeBackend wraps an external text-completion call. Implementations
// make a single attempt with an explicit timeout and never retry; the
// pipeline's policy is immediate fallback to bound request latency.
type GenerativeBackend interface {
	Complete(ctx context.Context, prompt string) (string, error)
}

const (
	defaultGeminiBaseURL = "https://generativelanguage.googleapis.com"
	defaultGeminiModel   = "gemini-3-pro-preview"
	defaultGeminiTimeout = 60 * time.Second
)

// GeminiBackend calls the Gemini generateContent API directly via HTTP.
type GeminiBackend struct {
	apiKey      string
	model       string
	baseURL     string
	temperature float64
	client      *http.Client
}

// GeminiOption is a functional option for GeminiBackend
type GeminiOption func(*GeminiBackend)

// GeminiWithModel overrides the generation model
func GeminiWithModel(model string) GeminiOption {
	return func(b *GeminiBackend) {
		b.model = model
	}
}

// GeminiWithBaseURL overrides the API base URL
func GeminiWithBaseURL(baseURL string) GeminiOption {
	return func(b *GeminiBackend) {
		b.baseURL = baseURL
	}
}

// GeminiWithTimeout overrides the request timeout
func GeminiWithTimeout(timeout time.Duration) GeminiOption {
	return func(b *GeminiBackend) {
		b.client.Timeout = timeout
	}
}

// GeminiWithTemperature overrides the sampling temperature
func GeminiWithTemperature(temperature float64) GeminiOption {
	return func(b *GeminiBackend) {
		b.temperature = temperature
	}
}

// NewGeminiBackend creates a Gemini-backed text generation adapter.
func NewGeminiBackend(apiKey string, opts ...GeminiOption) *GeminiBackend {
	b := &GeminiBackend{
		apiKey:      apiKey,
		model:       defaultGeminiModel,
		baseURL:     defaultGeminiBaseURL,
		temperature: 0.2,
		client:      &http.Client{Timeout: defaultGeminiTimeout},
	}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// Complete sends the prompt and returns the generated text. Any transport,
// auth, quota, or content-filter failure maps to ErrGenerativeBackend.
func (b *GeminiBackend) Complete(ctx context.Context, prompt string) (string, error) {
	reqBody := map[string]interface{}{
		"contents": []map[string]interface{}{
			{
				"parts": []map[string]interface{}{
					{"text": prompt},
				},
			},
		},
		"generationConfig": map[string]interface{}{
			"temperature": b.temperature,
		},
	}

	jsonData, err := json.Marshal(reqBody)
	if err != nil {
		return "", fmt.Errorf("%w: marshal request: %v", ErrGenerativeBackend, err)
	}

	url := fmt.Sprintf("%s/v1beta/models/%s:generateContent", b.baseURL, b.model)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewBuffer(jsonData))
	if err != nil {
		return "", fmt.Errorf("%w: create request: %v", ErrGenerativeBackend, err)
	}

	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("x-goog-api-key", b.apiKey)

	resp, err := b.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrGenerativeBackend, err)
	}
	defer resp.Body.Close()

	bodyBytes, _ := io.ReadAll(resp.Body)
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("%w: status %d: %s", ErrGenerativeBackend, resp.StatusCode, truncateBody(bodyBytes))
	}

	var apiResp struct {
		Candidates []struct {
			Content struct {
				Parts []struct {
					Text string `json:"text"`
				} `json:"parts"`
			} `json:"content"`
			FinishReason string `json:"finishReason,omitempty"`
		} `json:"candidates"`
		PromptFeedback struct {
			BlockReason string `json:"blockReason,omitempty"`
		} `json:"promptFeedback,omitempty"`
		Error struct {
			Code    int    `json:"code,omitempty"`
			Message string `json:"message,omitempty"`
		} `json:"error,omitempty"`
	}

	if err := json.Unmarshal(bodyBytes, &apiResp); err != nil {
		return "", fmt.Errorf("%w: decode response: %v", ErrGenerativeBackend, err)
	}

	if apiResp.Error.Message != "" {
		return "", fmt.Errorf("%w: %s (code %d)", ErrGenerativeBackend, apiResp.Error.Message, apiResp.Error.Code)
	}
	if apiResp.PromptFeedback.BlockReason != "" {
		return "", fmt.Errorf("%w: prompt blocked: %s", ErrGenerativeBackend, apiResp.PromptFeedback.BlockReason)
	}
	if len(apiResp.Candidates) == 0 {
		return "", fmt.Errorf("%w: no candidates returned", ErrGenerativeBackend)
	}

	var text bytes.Buffer
	for i, candidate := range apiResp.Candidates {
		if candidate.FinishReason != "" && candidate.FinishReason != "STOP" {
			log.Printf("Warning: candidate %d finished with reason %s", i, candidate.FinishReason)
		}
		for _, part := range candidate.Content.Parts {
			text.WriteString(part.Text)
		}
	}

	if text.Len() == 0 {
		return "", fmt.Errorf("%w: empty content", ErrGenerativeBackend)
	}

	return text.String(), nil
}

func truncateBody(body []byte) string {
	const limit = 512
	if len(body) > limit {
		return string(body[:limit]) + "..."
	}
	return string(body)
}
