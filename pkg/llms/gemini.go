package llms

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/crewforge/crewforge/pkg/config"
	"github.com/crewforge/crewforge/pkg/httpclient"
)

const defaultGeminiBaseURL = "https://generativelanguage.googleapis.com"

// GeminiClient implements CompletionClient for the Google Gemini API.
type GeminiClient struct {
	config     *config.LLMConfig
	baseURL    string
	httpClient *httpclient.Client
}

type GeminiRequest struct {
	Contents         []GeminiContent         `json:"contents"`
	GenerationConfig *GeminiGenerationConfig `json:"generationConfig,omitempty"`
}

type GeminiContent struct {
	Role  string       `json:"role"`
	Parts []GeminiPart `json:"parts"`
}

type GeminiPart struct {
	Text string `json:"text,omitempty"`
}

type GeminiGenerationConfig struct {
	Temperature     *float64 `json:"temperature,omitempty"`
	TopP            *float64 `json:"topP,omitempty"`
	MaxOutputTokens int      `json:"maxOutputTokens,omitempty"`
}

type GeminiResponse struct {
	Candidates    []GeminiCandidate    `json:"candidates"`
	UsageMetadata *GeminiUsageMetadata `json:"usageMetadata,omitempty"`
	Error         *GeminiError         `json:"error,omitempty"`
}

type GeminiCandidate struct {
	Content      GeminiContent `json:"content"`
	FinishReason string        `json:"finishReason"`
}

type GeminiUsageMetadata struct {
	PromptTokenCount     int `json:"promptTokenCount"`
	CandidatesTokenCount int `json:"candidatesTokenCount"`
	TotalTokenCount      int `json:"totalTokenCount"`
}

type GeminiError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
	Status  string `json:"status"`
}

// NewGeminiClient creates a Gemini completion client from configuration.
func NewGeminiClient(cfg *config.LLMConfig) (*GeminiClient, error) {
	if cfg.APIKey == "" {
		return nil, NewProviderError("gemini", 0, "API key is required", nil)
	}

	baseURL := cfg.BaseURL
	if baseURL == "" {
		baseURL = defaultGeminiBaseURL
	}

	return &GeminiClient{
		config:     cfg,
		baseURL:    baseURL,
		httpClient: newTransport(cfg, httpclient.ParseGeminiHeaders),
	}, nil
}

// ModelName implements CompletionClient.
func (c *GeminiClient) ModelName() string {
	return c.config.Model
}

// Complete implements CompletionClient.
func (c *GeminiClient) Complete(ctx context.Context, prompt string) (string, Usage, error) {
	start := time.Now()
	ctx, span := startSpan(ctx, "gemini", c.config.Model)
	defer span.End()

	response, err := c.makeRequest(ctx, c.buildRequest(prompt))
	if err != nil {
		recordOutcome(ctx, span, "gemini", c.config.Model, start, Usage{}, err)
		return "", Usage{}, err
	}

	if response.Error != nil {
		apiErr := NewProviderError("gemini", response.Error.Code, response.Error.Message, nil)
		recordOutcome(ctx, span, "gemini", c.config.Model, start, Usage{}, apiErr)
		return "", Usage{}, apiErr
	}

	var text strings.Builder
	if len(response.Candidates) > 0 {
		for _, part := range response.Candidates[0].Content.Parts {
			text.WriteString(part.Text)
		}
	}
	if text.Len() == 0 {
		emptyErr := NewProviderError("gemini", 0, "response contained no candidates", nil)
		recordOutcome(ctx, span, "gemini", c.config.Model, start, Usage{}, emptyErr)
		return "", Usage{}, emptyErr
	}

	var usage Usage
	if response.UsageMetadata != nil {
		usage = Usage{
			InputTokens:  response.UsageMetadata.PromptTokenCount,
			OutputTokens: response.UsageMetadata.CandidatesTokenCount,
		}
	}
	recordOutcome(ctx, span, "gemini", c.config.Model, start, usage, nil)

	return text.String(), usage, nil
}

func (c *GeminiClient) buildRequest(prompt string) GeminiRequest {
	return GeminiRequest{
		Contents: []GeminiContent{
			{
				Role:  "user",
				Parts: []GeminiPart{{Text: prompt}},
			},
		},
		GenerationConfig: &GeminiGenerationConfig{
			Temperature:     c.config.Temperature,
			TopP:            c.config.TopP,
			MaxOutputTokens: c.config.MaxTokens,
		},
	}
}

func (c *GeminiClient) makeRequest(ctx context.Context, request GeminiRequest) (*GeminiResponse, error) {
	requestBody, err := json.Marshal(request)
	if err != nil {
		return nil, NewProviderError("gemini", 0, "failed to marshal request", err)
	}

	url := fmt.Sprintf("%s/v1beta/models/%s:generateContent", c.baseURL, c.config.Model)

	req, err := http.NewRequestWithContext(ctx, "POST", url, bytes.NewReader(requestBody))
	if err != nil {
		return nil, NewProviderError("gemini", 0, "failed to create request", err)
	}

	req.GetBody = func() (io.ReadCloser, error) {
		return io.NopCloser(bytes.NewReader(requestBody)), nil
	}

	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("x-goog-api-key", c.config.APIKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, classifyTransportError("gemini", resp, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, NewProviderError("gemini", resp.StatusCode, "failed to read response body", err)
	}

	if resp.StatusCode != http.StatusOK {
		return nil, NewProviderError("gemini", resp.StatusCode, parseGeminiErrorBody(body), nil)
	}

	var response GeminiResponse
	if err := json.Unmarshal(body, &response); err != nil {
		return nil, NewProviderError("gemini", resp.StatusCode, "failed to decode response", err)
	}

	return &response, nil
}

// parseGeminiErrorBody extracts the error message from a Gemini error
// response, falling back to the raw body.
func parseGeminiErrorBody(body []byte) string {
	var errorResp struct {
		Error GeminiError `json:"error"`
	}
	if err := json.Unmarshal(body, &errorResp); err == nil && errorResp.Error.Message != "" {
		if errorResp.Error.Status != "" {
			return fmt.Sprintf("%s (%s)", errorResp.Error.Message, errorResp.Error.Status)
		}
		return errorResp.Error.Message
	}
	return truncateBody(body)
}
