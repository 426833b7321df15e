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

const (
	defaultAnthropicBaseURL = "https://api.anthropic.com"
	anthropicVersion        = "2023-06-01"
)

// AnthropicClient implements CompletionClient for the Anthropic Messages API.
type AnthropicClient struct {
	config     *config.LLMConfig
	baseURL    string
	httpClient *httpclient.Client
}

type AnthropicRequest struct {
	Model       string             `json:"model"`
	Messages    []AnthropicMessage `json:"messages"`
	MaxTokens   int                `json:"max_tokens"`
	Temperature *float64           `json:"temperature,omitempty"`
	TopP        *float64           `json:"top_p,omitempty"`
}

type AnthropicMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type AnthropicResponse struct {
	ID         string             `json:"id"`
	Type       string             `json:"type"`
	Role       string             `json:"role"`
	Content    []AnthropicContent `json:"content"`
	Model      string             `json:"model"`
	StopReason string             `json:"stop_reason"`
	Usage      AnthropicUsage     `json:"usage"`
	Error      *AnthropicError    `json:"error,omitempty"`
}

type AnthropicContent struct {
	Type string `json:"type"`
	Text string `json:"text,omitempty"`
}

type AnthropicUsage struct {
	InputTokens  int `json:"input_tokens"`
	OutputTokens int `json:"output_tokens"`
}

type AnthropicError struct {
	Type    string `json:"type"`
	Message string `json:"message"`
}

// NewAnthropicClient creates an Anthropic completion client from
// configuration.
func NewAnthropicClient(cfg *config.LLMConfig) (*AnthropicClient, error) {
	if cfg.APIKey == "" {
		return nil, NewProviderError("anthropic", 0, "API key is required", nil)
	}

	baseURL := cfg.BaseURL
	if baseURL == "" {
		baseURL = defaultAnthropicBaseURL
	}

	return &AnthropicClient{
		config:     cfg,
		baseURL:    baseURL,
		httpClient: newTransport(cfg, httpclient.ParseAnthropicHeaders),
	}, nil
}

// ModelName implements CompletionClient.
func (c *AnthropicClient) ModelName() string {
	return c.config.Model
}

// Complete implements CompletionClient.
func (c *AnthropicClient) Complete(ctx context.Context, prompt string) (string, Usage, error) {
	start := time.Now()
	ctx, span := startSpan(ctx, "anthropic", c.config.Model)
	defer span.End()

	response, err := c.makeRequest(ctx, c.buildRequest(prompt))
	if err != nil {
		recordOutcome(ctx, span, "anthropic", c.config.Model, start, Usage{}, err)
		return "", Usage{}, err
	}

	if response.Error != nil {
		apiErr := NewProviderError("anthropic", 0, response.Error.Message, nil)
		recordOutcome(ctx, span, "anthropic", c.config.Model, start, Usage{}, apiErr)
		return "", Usage{}, apiErr
	}

	var text strings.Builder
	for _, block := range response.Content {
		if block.Type == "text" {
			text.WriteString(block.Text)
		}
	}
	if text.Len() == 0 {
		emptyErr := NewProviderError("anthropic", 0, "response contained no text content", nil)
		recordOutcome(ctx, span, "anthropic", c.config.Model, start, Usage{}, emptyErr)
		return "", Usage{}, emptyErr
	}

	usage := Usage{
		InputTokens:  response.Usage.InputTokens,
		OutputTokens: response.Usage.OutputTokens,
	}
	recordOutcome(ctx, span, "anthropic", c.config.Model, start, usage, nil)

	return text.String(), usage, nil
}

func (c *AnthropicClient) buildRequest(prompt string) AnthropicRequest {
	return AnthropicRequest{
		Model: c.config.Model,
		Messages: []AnthropicMessage{
			{Role: "user", Content: prompt},
		},
		MaxTokens:   c.config.MaxTokens,
		Temperature: c.config.Temperature,
		TopP:        c.config.TopP,
	}
}

func (c *AnthropicClient) makeRequest(ctx context.Context, request AnthropicRequest) (*AnthropicResponse, error) {
	requestBody, err := json.Marshal(request)
	if err != nil {
		return nil, NewProviderError("anthropic", 0, "failed to marshal request", err)
	}

	req, err := http.NewRequestWithContext(ctx, "POST", c.baseURL+"/v1/messages", bytes.NewReader(requestBody))
	if err != nil {
		return nil, NewProviderError("anthropic", 0, "failed to create request", err)
	}

	req.GetBody = func() (io.ReadCloser, error) {
		return io.NopCloser(bytes.NewReader(requestBody)), nil
	}

	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("x-api-key", c.config.APIKey)
	req.Header.Set("anthropic-version", anthropicVersion)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, classifyTransportError("anthropic", resp, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, NewProviderError("anthropic", resp.StatusCode, "failed to read response body", err)
	}

	if resp.StatusCode != http.StatusOK {
		return nil, NewProviderError("anthropic", resp.StatusCode, parseAnthropicErrorBody(body), nil)
	}

	var response AnthropicResponse
	if err := json.Unmarshal(body, &response); err != nil {
		return nil, NewProviderError("anthropic", resp.StatusCode, "failed to decode response", err)
	}

	return &response, nil
}

// parseAnthropicErrorBody extracts the error message from an Anthropic error
// response, falling back to the raw body.
func parseAnthropicErrorBody(body []byte) string {
	var errorResp struct {
		Type  string         `json:"type"`
		Error AnthropicError `json:"error"`
	}
	if err := json.Unmarshal(body, &errorResp); err == nil && errorResp.Error.Message != "" {
		return errorResp.Error.Message
	}
	return truncateBody(body)
}
