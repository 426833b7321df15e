// Package llms adapts hosted and local LLM providers to the single-turn
// completion surface the generation pipeline depends on. Every provider is a
// hand-rolled HTTP client over the shared retrying transport; responses are
// normalized to plain text so callers never see provider-specific shapes.
package llms

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/crewforge/crewforge/pkg/config"
	"github.com/crewforge/crewforge/pkg/httpclient"
	"github.com/crewforge/crewforge/pkg/observability"
)

// Usage reports token consumption for one completion call, as accounted by
// the provider.
type Usage struct {
	InputTokens  int `json:"input_tokens"`
	OutputTokens int `json:"output_tokens"`
}

// Total returns input plus output tokens.
func (u Usage) Total() int {
	return u.InputTokens + u.OutputTokens
}

// CompletionClient is the narrow contract between the pipeline and an LLM
// provider: one prompt in, one text answer out.
type CompletionClient interface {
	// Complete sends a single prompt and returns the model's text answer.
	// Cancellation and the per-call deadline arrive via ctx. Failures are
	// *ProviderError, or *RateLimitedError when the provider throttled the
	// request past the transport's internal retries.
	Complete(ctx context.Context, prompt string) (string, Usage, error)

	// ModelName reports the configured model identifier, for logs and spans.
	ModelName() string
}

// New builds the completion client for the configured provider.
func New(cfg *config.LLMConfig) (CompletionClient, error) {
	if cfg == nil {
		return nil, NewProviderError("", 0, "LLM configuration is required", nil)
	}

	switch cfg.Provider {
	case config.LLMProviderOpenAI:
		return NewOpenAIClient(cfg)
	case config.LLMProviderAnthropic:
		return NewAnthropicClient(cfg)
	case config.LLMProviderGemini:
		return NewGeminiClient(cfg)
	case config.LLMProviderOllama:
		return NewOllamaClient(cfg)
	default:
		return nil, NewProviderError(string(cfg.Provider), 0,
			fmt.Sprintf("unsupported LLM provider: %s (supported: openai, anthropic, gemini, ollama)", cfg.Provider), nil)
	}
}

// newTransport builds the retrying HTTP transport for a provider. The header
// parser is provider-specific so 429 backoff honors the server's reset hints.
func newTransport(cfg *config.LLMConfig, parser httpclient.RateLimitHeaderParser) *httpclient.Client {
	opts := []httpclient.Option{
		httpclient.WithHTTPClient(&http.Client{
			Timeout: cfg.Timeout,
		}),
		httpclient.WithMaxRetries(cfg.MaxRetries),
	}

	if parser != nil {
		opts = append(opts, httpclient.WithHeaderParser(parser))
	}

	return httpclient.New(opts...)
}

// classifyTransportError maps a transport failure onto the adapter error
// taxonomy. Exhausted rate-limit retries become RateLimitedError carrying the
// server's retry hint; everything else is a ProviderError. Closes the
// response body when a response was returned alongside the error.
func classifyTransportError(provider string, resp *http.Response, err error) error {
	if resp != nil {
		resp.Body.Close()
	}

	var retryErr *httpclient.RetryableError
	if errors.As(err, &retryErr) {
		if retryErr.StatusCode == http.StatusTooManyRequests {
			return NewRateLimitedError(provider, retryErr.RetryAfter, err)
		}
		return NewProviderError(provider, retryErr.StatusCode, "request failed after retries", err)
	}

	return NewProviderError(provider, 0, "request failed", err)
}

// truncateBody renders an unparseable error body for diagnostics, capped so
// an HTML error page cannot flood a log line.
func truncateBody(body []byte) string {
	const max = 512
	s := strings.TrimSpace(string(body))
	if s == "" {
		return "empty response body"
	}
	if len(s) > max {
		return s[:max] + "..."
	}
	return s
}

// startSpan opens the span every provider wraps a completion call in.
func startSpan(ctx context.Context, provider, model string) (context.Context, trace.Span) {
	tracer := observability.GetTracer("crewforge.llm")
	return tracer.Start(ctx, observability.SpanLLMRequest,
		trace.WithAttributes(
			attribute.String(observability.AttrLLMProvider, provider),
			attribute.String(observability.AttrLLMModel, model),
		),
	)
}

// recordOutcome writes the result of a completion call to its span and the
// global metrics. usage is zero on failure.
func recordOutcome(ctx context.Context, span trace.Span, provider, model string, start time.Time, usage Usage, err error) {
	duration := time.Since(start)

	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	} else {
		span.SetAttributes(
			attribute.Int(observability.AttrLLMTokensInput, usage.InputTokens),
			attribute.Int(observability.AttrLLMTokensOutput, usage.OutputTokens),
		)
		span.SetStatus(codes.Ok, "success")
	}

	if metrics := observability.GetGlobalMetrics(); metrics != nil {
		metrics.RecordLLMRequest(ctx, provider, model, duration, usage.InputTokens, usage.OutputTokens, err)
	}
}
