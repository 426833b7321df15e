package llms

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/crewforge/crewforge/pkg/config"
)

func TestOllamaClient_Complete(t *testing.T) {
	var gotPath string
	var gotReq OllamaRequest

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		if err := json.NewDecoder(r.Body).Decode(&gotReq); err != nil {
			t.Errorf("Failed to decode request: %v", err)
		}

		w.Header().Set("Content-Type", "application/json")
		fmt.Fprint(w, `{
			"model": "llama3.2",
			"created_at": "2025-08-25T10:00:00Z",
			"message": {"role": "assistant", "content": "{\"agents\": []}"},
			"done": true,
			"prompt_eval_count": 75,
			"eval_count": 25
		}`)
	}))
	defer server.Close()

	cfg := testConfig(config.LLMProviderOllama, "llama3.2", server.URL)
	cfg.APIKey = ""

	client, err := NewOllamaClient(cfg)
	if err != nil {
		t.Fatalf("NewOllamaClient() failed: %v", err)
	}

	text, usage, err := client.Complete(context.Background(), "Describe a research crew")
	if err != nil {
		t.Fatalf("Complete() failed: %v", err)
	}

	if text != `{"agents": []}` {
		t.Errorf("Unexpected completion text: %q", text)
	}
	if usage.InputTokens != 75 || usage.OutputTokens != 25 {
		t.Errorf("Unexpected usage: %+v", usage)
	}

	if gotPath != "/api/chat" {
		t.Errorf("Expected path /api/chat, got %s", gotPath)
	}
	if gotReq.Stream {
		t.Error("Expected stream to be disabled")
	}
	if gotReq.Options == nil || gotReq.Options.NumPredict != 512 {
		t.Errorf("Expected num_predict 512, got %+v", gotReq.Options)
	}
}

func TestOllamaClient_Complete_ModelNotFound(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		fmt.Fprint(w, `{"error": "model \"nope\" not found, try pulling it first"}`)
	}))
	defer server.Close()

	cfg := testConfig(config.LLMProviderOllama, "nope", server.URL)
	cfg.APIKey = ""

	client, err := NewOllamaClient(cfg)
	if err != nil {
		t.Fatalf("NewOllamaClient() failed: %v", err)
	}

	_, _, err = client.Complete(context.Background(), "prompt")

	var provErr *ProviderError
	if !errors.As(err, &provErr) {
		t.Fatalf("Expected *ProviderError, got %T: %v", err, err)
	}
	if provErr.StatusCode != http.StatusNotFound {
		t.Errorf("Expected status 404, got %d", provErr.StatusCode)
	}
	if !strings.Contains(provErr.Message, "not found") {
		t.Errorf("Unexpected message: %q", provErr.Message)
	}
}

func TestOllamaClient_Complete_Unreachable(t *testing.T) {
	// Reserve a port, then close the listener so the dial fails fast.
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	url := server.URL
	server.Close()

	cfg := testConfig(config.LLMProviderOllama, "llama3.2", url)
	cfg.APIKey = ""

	client, err := NewOllamaClient(cfg)
	if err != nil {
		t.Fatalf("NewOllamaClient() failed: %v", err)
	}

	_, _, err = client.Complete(context.Background(), "prompt")

	var provErr *ProviderError
	if !errors.As(err, &provErr) {
		t.Fatalf("Expected *ProviderError, got %T: %v", err, err)
	}
	if provErr.StatusCode != 0 {
		t.Errorf("Expected status 0 for transport failure, got %d", provErr.StatusCode)
	}
}

func TestOllamaClient_BaseURLTrailingSlash(t *testing.T) {
	cfg := &config.LLMConfig{Provider: config.LLMProviderOllama, Model: "llama3.2", BaseURL: "http://localhost:11434/"}

	client, err := NewOllamaClient(cfg)
	if err != nil {
		t.Fatalf("NewOllamaClient() failed: %v", err)
	}
	if client.baseURL != "http://localhost:11434" {
		t.Errorf("Expected trailing slash trimmed, got %q", client.baseURL)
	}
}
