package llms

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/crewforge/crewforge/pkg/config"
	"github.com/crewforge/crewforge/pkg/httpclient"
)

const defaultOllamaBaseURL = "http://localhost:11434"

// OllamaClient implements CompletionClient for a local Ollama server. No API
// key is required; rate-limit headers do not apply.
type OllamaClient struct {
	config     *config.LLMConfig
	baseURL    string
	httpClient *httpclient.Client
}

type OllamaRequest struct {
	Model    string          `json:"model"`
	Messages []OllamaMessage `json:"messages"`
	Stream   bool            `json:"stream"`
	Options  *OllamaOptions  `json:"options,omitempty"`
}

type OllamaMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type OllamaOptions struct {
	Temperature *float64 `json:"temperature,omitempty"`
	TopP        *float64 `json:"top_p,omitempty"`
	NumPredict  int      `json:"num_predict,omitempty"`
}

type OllamaResponse struct {
	Model           string        `json:"model"`
	CreatedAt       string        `json:"created_at"`
	Message         OllamaMessage `json:"message"`
	Done            bool          `json:"done"`
	PromptEvalCount int           `json:"prompt_eval_count"`
	EvalCount       int           `json:"eval_count"`
	Error           string        `json:"error,omitempty"`
}

// NewOllamaClient creates an Ollama completion client from configuration.
func NewOllamaClient(cfg *config.LLMConfig) (*OllamaClient, error) {
	baseURL := cfg.BaseURL
	if baseURL == "" {
		baseURL = defaultOllamaBaseURL
	}
	baseURL = strings.TrimSuffix(baseURL, "/")

	return &OllamaClient{
		config:     cfg,
		baseURL:    baseURL,
		httpClient: newTransport(cfg, nil),
	}, nil
}

// ModelName implements CompletionClient.
func (c *OllamaClient) ModelName() string {
	return c.config.Model
}

// Complete implements CompletionClient.
func (c *OllamaClient) Complete(ctx context.Context, prompt string) (string, Usage, error) {
	start := time.Now()
	ctx, span := startSpan(ctx, "ollama", c.config.Model)
	defer span.End()

	response, err := c.makeRequest(ctx, c.buildRequest(prompt))
	if err != nil {
		recordOutcome(ctx, span, "ollama", c.config.Model, start, Usage{}, err)
		return "", Usage{}, err
	}

	if response.Error != "" {
		apiErr := NewProviderError("ollama", 0, response.Error, nil)
		recordOutcome(ctx, span, "ollama", c.config.Model, start, Usage{}, apiErr)
		return "", Usage{}, apiErr
	}

	usage := Usage{
		InputTokens:  response.PromptEvalCount,
		OutputTokens: response.EvalCount,
	}
	recordOutcome(ctx, span, "ollama", c.config.Model, start, usage, nil)

	return response.Message.Content, usage, nil
}

func (c *OllamaClient) buildRequest(prompt string) OllamaRequest {
	return OllamaRequest{
		Model: c.config.Model,
		Messages: []OllamaMessage{
			{Role: "user", Content: prompt},
		},
		Stream: false,
		Options: &OllamaOptions{
			Temperature: c.config.Temperature,
			TopP:        c.config.TopP,
			NumPredict:  c.config.MaxTokens,
		},
	}
}

func (c *OllamaClient) makeRequest(ctx context.Context, request OllamaRequest) (*OllamaResponse, error) {
	requestBody, err := json.Marshal(request)
	if err != nil {
		return nil, NewProviderError("ollama", 0, "failed to marshal request", err)
	}

	req, err := http.NewRequestWithContext(ctx, "POST", c.baseURL+"/api/chat", bytes.NewReader(requestBody))
	if err != nil {
		return nil, NewProviderError("ollama", 0, "failed to create request", err)
	}

	req.GetBody = func() (io.ReadCloser, error) {
		return io.NopCloser(bytes.NewReader(requestBody)), nil
	}

	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, classifyTransportError("ollama", resp, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, NewProviderError("ollama", resp.StatusCode, "failed to read response body", err)
	}

	if resp.StatusCode != http.StatusOK {
		return nil, NewProviderError("ollama", resp.StatusCode, parseOllamaErrorBody(body), nil)
	}

	var response OllamaResponse
	if err := json.Unmarshal(body, &response); err != nil {
		return nil, NewProviderError("ollama", resp.StatusCode, "failed to decode response", err)
	}

	return &response, nil
}

// parseOllamaErrorBody extracts the error message from an Ollama error
// response, falling back to the raw body.
func parseOllamaErrorBody(body []byte) string {
	var errorResp struct {
		Error string `json:"error"`
	}
	if err := json.Unmarshal(body, &errorResp); err == nil && errorResp.Error != "" {
		return errorResp.Error
	}
	return truncateBody(body)
}
