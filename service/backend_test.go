package service

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func geminiResponse(text string) string {
	body, _ := json.Marshal(map[string]interface{}{
		"candidates": []map[string]interface{}{
			{
				"content": map[string]interface{}{
					"parts": []map[string]interface{}{
						{"text": text},
					},
				},
				"finishReason": "STOP",
			},
		},
	})
	return string(body)
}

func TestGeminiBackendComplete(t *testing.T) {
	var gotPath, gotKey string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotKey = r.Header.Get("x-goog-api-key")
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(geminiResponse("Exmos. Senhores, venho apresentar defesa.")))
	}))
	defer server.Close()

	backend := NewGeminiBackend("test-key",
		GeminiWithBaseURL(server.URL),
		GeminiWithModel("test-model"),
	)

	content, err := backend.Complete(context.Background(), "prompt")
	require.NoError(t, err)
	assert.Equal(t, "Exmos. Senhores, venho apresentar defesa.", content)
	assert.Equal(t, "/v1beta/models/test-model:generateContent", gotPath)
	assert.Equal(t, "test-key", gotKey)
}

func TestGeminiBackendNon200(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
		w.Write([]byte(`{"error":{"code":429,"message":"quota exceeded"}}`))
	}))
	defer server.Close()

	backend := NewGeminiBackend("test-key", GeminiWithBaseURL(server.URL))

	_, err := backend.Complete(context.Background(), "prompt")
	assert.ErrorIs(t, err, ErrGenerativeBackend)
	assert.Contains(t, err.Error(), "429")
}

func TestGeminiBackendErrorBody(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"error":{"code":400,"message":"invalid request"}}`))
	}))
	defer server.Close()

	backend := NewGeminiBackend("test-key", GeminiWithBaseURL(server.URL))

	_, err := backend.Complete(context.Background(), "prompt")
	assert.ErrorIs(t, err, ErrGenerativeBackend)
	assert.Contains(t, err.Error(), "invalid request")
}

func TestGeminiBackendBlockedPrompt(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"promptFeedback":{"blockReason":"SAFETY"}}`))
	}))
	defer server.Close()

	backend := NewGeminiBackend("test-key", GeminiWithBaseURL(server.URL))

	_, err := backend.Complete(context.Background(), "prompt")
	assert.ErrorIs(t, err, ErrGenerativeBackend)
	assert.Contains(t, err.Error(), "SAFETY")
}

func TestGeminiBackendNoCandidates(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"candidates":[]}`))
	}))
	defer server.Close()

	backend := NewGeminiBackend("test-key", GeminiWithBaseURL(server.URL))

	_, err := backend.Complete(context.Background(), "prompt")
	assert.ErrorIs(t, err, ErrGenerativeBackend)
}

func TestGeminiBackendTimeout(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(200 * time.Millisecond)
		w.Write([]byte(geminiResponse("demasiado tarde")))
	}))
	defer server.Close()

	backend := NewGeminiBackend("test-key",
		GeminiWithBaseURL(server.URL),
		GeminiWithTimeout(50*time.Millisecond),
	)

	_, err := backend.Complete(context.Background(), "prompt")
	assert.ErrorIs(t, err, ErrGenerativeBackend)
}
