package llms

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/crewforge/crewforge/pkg/config"
	"github.com/crewforge/crewforge/pkg/httpclient"
)

const defaultOpenAIBaseURL = "https://api.openai.com/v1"

// OpenAIClient implements CompletionClient for the OpenAI chat completions
// API and compatible endpoints.
type OpenAIClient struct {
	config     *config.LLMConfig
	baseURL    string
	httpClient *httpclient.Client
}

type OpenAIRequest struct {
	Model       string          `json:"model"`
	Messages    []OpenAIMessage `json:"messages"`
	Temperature *float64        `json:"temperature,omitempty"`
	TopP        *float64        `json:"top_p,omitempty"`
	MaxTokens   int             `json:"max_tokens,omitempty"`
}

type OpenAIMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type OpenAIResponse struct {
	ID      string         `json:"id"`
	Model   string         `json:"model"`
	Choices []OpenAIChoice `json:"choices"`
	Usage   OpenAIUsage    `json:"usage"`
	Error   *OpenAIError   `json:"error,omitempty"`
}

type OpenAIChoice struct {
	Index        int           `json:"index"`
	Message      OpenAIMessage `json:"message"`
	FinishReason string        `json:"finish_reason"`
}

type OpenAIUsage struct {
	PromptTokens     int `json:"prompt_tokens"`
	CompletionTokens int `json:"completion_tokens"`
	TotalTokens      int `json:"total_tokens"`
}

type OpenAIError struct {
	Message string `json:"message"`
	Type    string `json:"type"`
	Code    any    `json:"code,omitempty"`
}

// NewOpenAIClient creates an OpenAI completion client from configuration.
func NewOpenAIClient(cfg *config.LLMConfig) (*OpenAIClient, error) {
	if cfg.APIKey == "" {
		return nil, NewProviderError("openai", 0, "API key is required", nil)
	}

	baseURL := cfg.BaseURL
	if baseURL == "" {
		baseURL = defaultOpenAIBaseURL
	}

	return &OpenAIClient{
		config:     cfg,
		baseURL:    baseURL,
		httpClient: newTransport(cfg, httpclient.ParseOpenAIHeaders),
	}, nil
}

// ModelName implements CompletionClient.
func (c *OpenAIClient) ModelName() string {
	return c.config.Model
}

// Complete implements CompletionClient.
func (c *OpenAIClient) Complete(ctx context.Context, prompt string) (string, Usage, error) {
	start := time.Now()
	ctx, span := startSpan(ctx, "openai", c.config.Model)
	defer span.End()

	response, err := c.makeRequest(ctx, c.buildRequest(prompt))
	if err != nil {
		recordOutcome(ctx, span, "openai", c.config.Model, start, Usage{}, err)
		return "", Usage{}, err
	}

	if response.Error != nil {
		apiErr := NewProviderError("openai", 0, response.Error.Message, nil)
		recordOutcome(ctx, span, "openai", c.config.Model, start, Usage{}, apiErr)
		return "", Usage{}, apiErr
	}

	if len(response.Choices) == 0 {
		noChoiceErr := NewProviderError("openai", 0, "no response choices returned", nil)
		recordOutcome(ctx, span, "openai", c.config.Model, start, Usage{}, noChoiceErr)
		return "", Usage{}, noChoiceErr
	}

	usage := Usage{
		InputTokens:  response.Usage.PromptTokens,
		OutputTokens: response.Usage.CompletionTokens,
	}
	recordOutcome(ctx, span, "openai", c.config.Model, start, usage, nil)

	return response.Choices[0].Message.Content, usage, nil
}

func (c *OpenAIClient) buildRequest(prompt string) OpenAIRequest {
	return OpenAIRequest{
		Model: c.config.Model,
		Messages: []OpenAIMessage{
			{Role: "user", Content: prompt},
		},
		Temperature: c.config.Temperature,
		TopP:        c.config.TopP,
		MaxTokens:   c.config.MaxTokens,
	}
}

func (c *OpenAIClient) makeRequest(ctx context.Context, request OpenAIRequest) (*OpenAIResponse, error) {
	requestBody, err := json.Marshal(request)
	if err != nil {
		return nil, NewProviderError("openai", 0, "failed to marshal request", err)
	}

	req, err := http.NewRequestWithContext(ctx, "POST", c.baseURL+"/chat/completions", bytes.NewReader(requestBody))
	if err != nil {
		return nil, NewProviderError("openai", 0, "failed to create request", err)
	}

	req.GetBody = func() (io.ReadCloser, error) {
		return io.NopCloser(bytes.NewReader(requestBody)), nil
	}

	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.config.APIKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, classifyTransportError("openai", resp, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, NewProviderError("openai", resp.StatusCode, "failed to read response body", err)
	}

	if resp.StatusCode != http.StatusOK {
		return nil, NewProviderError("openai", resp.StatusCode, parseOpenAIErrorBody(body), nil)
	}

	var response OpenAIResponse
	if err := json.Unmarshal(body, &response); err != nil {
		return nil, NewProviderError("openai", resp.StatusCode, "failed to decode response", err)
	}

	return &response, nil
}

// parseOpenAIErrorBody extracts the error message from an OpenAI error
// response, falling back to the raw body.
func parseOpenAIErrorBody(body []byte) string {
	var errorResp struct {
		Error OpenAIError `json:"error"`
	}
	if err := json.Unmarshal(body, &errorResp); err == nil && errorResp.Error.Message != "" {
		if errorResp.Error.Type != "" {
			return fmt.Sprintf("%s (type: %s)", errorResp.Error.Message, errorResp.Error.Type)
		}
		return errorResp.Error.Message
	}
	return truncateBody(body)
}
