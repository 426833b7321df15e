package llms

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/crewforge/crewforge/pkg/config"
)

func TestOpenAIClient_Complete(t *testing.T) {
	var gotPath, gotAuth string
	var gotReq OpenAIRequest

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotAuth = r.Header.Get("Authorization")
		if err := json.NewDecoder(r.Body).Decode(&gotReq); err != nil {
			t.Errorf("Failed to decode request: %v", err)
		}

		w.Header().Set("Content-Type", "application/json")
		fmt.Fprint(w, `{
			"id": "chatcmpl-1",
			"model": "gpt-4.1-mini",
			"choices": [{"index": 0, "message": {"role": "assistant", "content": "{\"agents\": []}"}, "finish_reason": "stop"}],
			"usage": {"prompt_tokens": 120, "completion_tokens": 45, "total_tokens": 165}
		}`)
	}))
	defer server.Close()

	cfg := testConfig(config.LLMProviderOpenAI, "gpt-4.1-mini", server.URL)
	cfg.Temperature = config.Float64Ptr(0.2)

	client, err := NewOpenAIClient(cfg)
	if err != nil {
		t.Fatalf("NewOpenAIClient() failed: %v", err)
	}

	text, usage, err := client.Complete(context.Background(), "Describe a research crew")
	if err != nil {
		t.Fatalf("Complete() failed: %v", err)
	}

	if text != `{"agents": []}` {
		t.Errorf("Unexpected completion text: %q", text)
	}
	if usage.InputTokens != 120 || usage.OutputTokens != 45 {
		t.Errorf("Unexpected usage: %+v", usage)
	}

	if gotPath != "/chat/completions" {
		t.Errorf("Expected path /chat/completions, got %s", gotPath)
	}
	if gotAuth != "Bearer test-key" {
		t.Errorf("Expected bearer auth, got %q", gotAuth)
	}
	if gotReq.Model != "gpt-4.1-mini" {
		t.Errorf("Expected model gpt-4.1-mini, got %s", gotReq.Model)
	}
	if len(gotReq.Messages) != 1 || gotReq.Messages[0].Role != "user" || gotReq.Messages[0].Content != "Describe a research crew" {
		t.Errorf("Unexpected messages: %+v", gotReq.Messages)
	}
	if gotReq.Temperature == nil || *gotReq.Temperature != 0.2 {
		t.Errorf("Expected temperature 0.2, got %v", gotReq.Temperature)
	}
	if gotReq.MaxTokens != 512 {
		t.Errorf("Expected max_tokens 512, got %d", gotReq.MaxTokens)
	}
}

func TestOpenAIClient_Complete_APIError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		fmt.Fprint(w, `{"error": {"message": "Incorrect API key provided", "type": "invalid_request_error"}}`)
	}))
	defer server.Close()

	client, err := NewOpenAIClient(testConfig(config.LLMProviderOpenAI, "gpt-4.1-mini", server.URL))
	if err != nil {
		t.Fatalf("NewOpenAIClient() failed: %v", err)
	}

	_, _, err = client.Complete(context.Background(), "prompt")

	var provErr *ProviderError
	if !errors.As(err, &provErr) {
		t.Fatalf("Expected *ProviderError, got %T: %v", err, err)
	}
	if provErr.Provider != "openai" {
		t.Errorf("Expected provider openai, got %s", provErr.Provider)
	}
	if provErr.StatusCode != http.StatusUnauthorized {
		t.Errorf("Expected status 401, got %d", provErr.StatusCode)
	}
	if !strings.Contains(provErr.Message, "Incorrect API key provided") {
		t.Errorf("Expected API error message, got %q", provErr.Message)
	}
	if !strings.Contains(provErr.Message, "invalid_request_error") {
		t.Errorf("Expected error type in message, got %q", provErr.Message)
	}
}

func TestOpenAIClient_Complete_RateLimited(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Retry-After", "7")
		w.WriteHeader(http.StatusTooManyRequests)
		fmt.Fprint(w, `{"error": {"message": "Rate limit reached", "type": "tokens"}}`)
	}))
	defer server.Close()

	client, err := NewOpenAIClient(testConfig(config.LLMProviderOpenAI, "gpt-4.1-mini", server.URL))
	if err != nil {
		t.Fatalf("NewOpenAIClient() failed: %v", err)
	}

	_, _, err = client.Complete(context.Background(), "prompt")

	var rlErr *RateLimitedError
	if !errors.As(err, &rlErr) {
		t.Fatalf("Expected *RateLimitedError, got %T: %v", err, err)
	}
	if rlErr.Provider != "openai" {
		t.Errorf("Expected provider openai, got %s", rlErr.Provider)
	}
	if rlErr.RetryAfter != 7*time.Second {
		t.Errorf("Expected retry-after 7s, got %v", rlErr.RetryAfter)
	}
}

func TestOpenAIClient_Complete_NoChoices(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"id": "chatcmpl-2", "choices": [], "usage": {"prompt_tokens": 10, "completion_tokens": 0, "total_tokens": 10}}`)
	}))
	defer server.Close()

	client, err := NewOpenAIClient(testConfig(config.LLMProviderOpenAI, "gpt-4.1-mini", server.URL))
	if err != nil {
		t.Fatalf("NewOpenAIClient() failed: %v", err)
	}

	_, _, err = client.Complete(context.Background(), "prompt")

	var provErr *ProviderError
	if !errors.As(err, &provErr) {
		t.Fatalf("Expected *ProviderError, got %T: %v", err, err)
	}
	if !strings.Contains(provErr.Message, "no response choices") {
		t.Errorf("Unexpected message: %q", provErr.Message)
	}
}

func TestOpenAIClient_Complete_Cancelled(t *testing.T) {
	started := make(chan struct{})
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		// Drain the body so the server's background read can observe the
		// client disconnect and cancel r.Context().
		_, _ = io.Copy(io.Discard, r.Body)
		close(started)
		<-r.Context().Done()
	}))
	defer server.Close()

	client, err := NewOpenAIClient(testConfig(config.LLMProviderOpenAI, "gpt-4.1-mini", server.URL))
	if err != nil {
		t.Fatalf("NewOpenAIClient() failed: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		<-started
		cancel()
	}()

	_, _, err = client.Complete(ctx, "prompt")
	if !errors.Is(err, context.Canceled) {
		t.Errorf("Expected context.Canceled in chain, got %v", err)
	}
}
