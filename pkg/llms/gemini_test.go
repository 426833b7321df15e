package llms

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/crewforge/crewforge/pkg/config"
)

func TestGeminiClient_Complete(t *testing.T) {
	var gotPath, gotKey string
	var gotReq GeminiRequest

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotKey = r.Header.Get("x-goog-api-key")
		if err := json.NewDecoder(r.Body).Decode(&gotReq); err != nil {
			t.Errorf("Failed to decode request: %v", err)
		}

		w.Header().Set("Content-Type", "application/json")
		fmt.Fprint(w, `{
			"candidates": [{"content": {"role": "model", "parts": [{"text": "{\"agents\": []}"}]}, "finishReason": "STOP"}],
			"usageMetadata": {"promptTokenCount": 90, "candidatesTokenCount": 30, "totalTokenCount": 120}
		}`)
	}))
	defer server.Close()

	client, err := NewGeminiClient(testConfig(config.LLMProviderGemini, "gemini-2.0-flash", server.URL))
	require.NoError(t, err)

	text, usage, err := client.Complete(context.Background(), "Describe a research crew")
	require.NoError(t, err)

	assert.Equal(t, `{"agents": []}`, text)
	assert.Equal(t, 90, usage.InputTokens)
	assert.Equal(t, 30, usage.OutputTokens)

	assert.Equal(t, "/v1beta/models/gemini-2.0-flash:generateContent", gotPath)
	assert.Equal(t, "test-key", gotKey)

	require.Len(t, gotReq.Contents, 1)
	require.Len(t, gotReq.Contents[0].Parts, 1)
	assert.Equal(t, "Describe a research crew", gotReq.Contents[0].Parts[0].Text)

	require.NotNil(t, gotReq.GenerationConfig)
	assert.Equal(t, 512, gotReq.GenerationConfig.MaxOutputTokens)
}

func TestGeminiClient_Complete_APIError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		fmt.Fprint(w, `{"error": {"code": 400, "message": "API key not valid. Please pass a valid API key.", "status": "INVALID_ARGUMENT"}}`)
	}))
	defer server.Close()

	client, err := NewGeminiClient(testConfig(config.LLMProviderGemini, "gemini-2.0-flash", server.URL))
	require.NoError(t, err)

	_, _, err = client.Complete(context.Background(), "prompt")

	var provErr *ProviderError
	require.ErrorAs(t, err, &provErr)
	assert.Equal(t, http.StatusBadRequest, provErr.StatusCode)
	assert.Contains(t, provErr.Message, "API key not valid")
	assert.Contains(t, provErr.Message, "INVALID_ARGUMENT")
}

func TestGeminiClient_Complete_NoCandidates(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"candidates": []}`)
	}))
	defer server.Close()

	client, err := NewGeminiClient(testConfig(config.LLMProviderGemini, "gemini-2.0-flash", server.URL))
	require.NoError(t, err)

	_, _, err = client.Complete(context.Background(), "prompt")

	var provErr *ProviderError
	require.ErrorAs(t, err, &provErr)
	assert.Contains(t, provErr.Message, "no candidates")
}
