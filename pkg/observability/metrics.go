package observability

import (
	"context"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/prometheus"
	"go.opentelemetry.io/otel/metric"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
)

var (
	globalMetrics Metrics
	metricsMu     sync.RWMutex
)

// Metrics records the pipeline's operational signals.
type Metrics interface {
	RecordGeneration(ctx context.Context, framework string, duration time.Duration, attempts int, err error)
	RecordLLMRequest(ctx context.Context, provider, model string, duration time.Duration, inputTokens, outputTokens int, err error)
	RecordHTTPRequest(ctx context.Context, method, route string, statusCode int, duration time.Duration, requestSize, responseSize int64)
}

// PrometheusMetrics implements Metrics on OpenTelemetry instruments exported
// through the Prometheus registry. The zero value records nothing, so a
// disabled metrics config still hands out a safe implementation.
type PrometheusMetrics struct {
	generationDuration metric.Float64Histogram
	generationsTotal   metric.Int64Counter
	generationErrors   metric.Int64Counter
	generationRetries  metric.Int64Counter

	llmDuration     metric.Float64Histogram
	llmInputTokens  metric.Int64Counter
	llmOutputTokens metric.Int64Counter
	llmErrorsTotal  metric.Int64Counter

	httpDuration      metric.Float64Histogram
	httpRequestsTotal metric.Int64Counter
	httpRequestBytes  metric.Int64Counter
	httpResponseBytes metric.Int64Counter
}

// InitMetrics wires the instrument set into the default Prometheus registry.
// When metrics are disabled it returns an inert recorder.
func InitMetrics(_ context.Context, cfg MetricsConfig) (*PrometheusMetrics, error) {
	if !cfg.Enabled {
		return &PrometheusMetrics{}, nil
	}

	promExporter, err := prometheus.New()
	if err != nil {
		return nil, fmt.Errorf("failed to create prometheus exporter: %w", err)
	}

	meterProvider := sdkmetric.NewMeterProvider(
		sdkmetric.WithReader(promExporter),
	)
	meter := meterProvider.Meter(DefaultServiceName)
	ns := cfg.Namespace

	m := &PrometheusMetrics{}

	m.generationDuration, err = meter.Float64Histogram(
		ns+"_generation_duration_seconds",
		metric.WithDescription("End-to-end workflow generation duration in seconds"),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create generation duration histogram: %w", err)
	}

	m.generationsTotal, err = meter.Int64Counter(
		ns+"_generations_total",
		metric.WithDescription("Total workflow generations"),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create generations counter: %w", err)
	}

	m.generationErrors, err = meter.Int64Counter(
		ns+"_generation_errors_total",
		metric.WithDescription("Total failed workflow generations"),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create generation errors counter: %w", err)
	}

	m.generationRetries, err = meter.Int64Counter(
		ns+"_generation_retries_total",
		metric.WithDescription("Total corrective re-prompts issued during generation"),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create generation retries counter: %w", err)
	}

	m.llmDuration, err = meter.Float64Histogram(
		ns+"_llm_request_duration_seconds",
		metric.WithDescription("LLM request duration in seconds"),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create llm duration histogram: %w", err)
	}

	m.llmInputTokens, err = meter.Int64Counter(
		ns+"_llm_tokens_input_total",
		metric.WithDescription("Total input tokens sent to the LLM"),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create llm input tokens counter: %w", err)
	}

	m.llmOutputTokens, err = meter.Int64Counter(
		ns+"_llm_tokens_output_total",
		metric.WithDescription("Total output tokens received from the LLM"),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create llm output tokens counter: %w", err)
	}

	m.llmErrorsTotal, err = meter.Int64Counter(
		ns+"_llm_errors_total",
		metric.WithDescription("Total LLM request errors"),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create llm errors counter: %w", err)
	}

	m.httpDuration, err = meter.Float64Histogram(
		ns+"_http_request_duration_seconds",
		metric.WithDescription("HTTP request duration in seconds"),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create http duration histogram: %w", err)
	}

	m.httpRequestsTotal, err = meter.Int64Counter(
		ns+"_http_requests_total",
		metric.WithDescription("Total HTTP requests"),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create http requests counter: %w", err)
	}

	m.httpRequestBytes, err = meter.Int64Counter(
		ns+"_http_request_bytes_total",
		metric.WithDescription("Total HTTP request bytes read"),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create http request bytes counter: %w", err)
	}

	m.httpResponseBytes, err = meter.Int64Counter(
		ns+"_http_response_bytes_total",
		metric.WithDescription("Total HTTP response bytes written"),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create http response bytes counter: %w", err)
	}

	return m, nil
}

func (m *PrometheusMetrics) RecordGeneration(ctx context.Context, framework string, duration time.Duration, attempts int, err error) {
	if m == nil || m.generationDuration == nil || m.generationsTotal == nil {
		return
	}

	attrs := []attribute.KeyValue{
		attribute.String("framework", framework),
	}

	m.generationDuration.Record(ctx, duration.Seconds(), metric.WithAttributes(attrs...))
	m.generationsTotal.Add(ctx, 1, metric.WithAttributes(attrs...))

	if attempts > 1 && m.generationRetries != nil {
		m.generationRetries.Add(ctx, int64(attempts-1), metric.WithAttributes(attrs...))
	}

	if err != nil && m.generationErrors != nil {
		m.generationErrors.Add(ctx, 1, metric.WithAttributes(attrs...))
	}
}

func (m *PrometheusMetrics) RecordLLMRequest(ctx context.Context, provider, model string, duration time.Duration, inputTokens, outputTokens int, err error) {
	if m == nil || m.llmDuration == nil {
		return
	}

	attrs := []attribute.KeyValue{
		attribute.String("provider", provider),
		attribute.String("model", model),
	}

	m.llmDuration.Record(ctx, duration.Seconds(), metric.WithAttributes(attrs...))

	if inputTokens > 0 && m.llmInputTokens != nil {
		m.llmInputTokens.Add(ctx, int64(inputTokens), metric.WithAttributes(attrs...))
	}
	if outputTokens > 0 && m.llmOutputTokens != nil {
		m.llmOutputTokens.Add(ctx, int64(outputTokens), metric.WithAttributes(attrs...))
	}

	if err != nil && m.llmErrorsTotal != nil {
		m.llmErrorsTotal.Add(ctx, 1, metric.WithAttributes(attrs...))
	}
}

func (m *PrometheusMetrics) RecordHTTPRequest(ctx context.Context, method, route string, statusCode int, duration time.Duration, requestSize, responseSize int64) {
	if m == nil || m.httpDuration == nil || m.httpRequestsTotal == nil {
		return
	}

	attrs := []attribute.KeyValue{
		attribute.String("method", method),
		attribute.String("route", route),
		attribute.Int("status", statusCode),
	}

	m.httpDuration.Record(ctx, duration.Seconds(), metric.WithAttributes(attrs...))
	m.httpRequestsTotal.Add(ctx, 1, metric.WithAttributes(attrs...))

	if requestSize > 0 && m.httpRequestBytes != nil {
		m.httpRequestBytes.Add(ctx, requestSize, metric.WithAttributes(attrs...))
	}
	if responseSize > 0 && m.httpResponseBytes != nil {
		m.httpResponseBytes.Add(ctx, responseSize, metric.WithAttributes(attrs...))
	}
}

// SetGlobalMetrics installs the process-wide metrics recorder.
func SetGlobalMetrics(m Metrics) {
	metricsMu.Lock()
	defer metricsMu.Unlock()
	globalMetrics = m
}

// GetGlobalMetrics returns the process-wide metrics recorder, which may be
// nil before initialization.
func GetGlobalMetrics() Metrics {
	metricsMu.RLock()
	defer metricsMu.RUnlock()
	return globalMetrics
}

// MetricsHandler serves the default Prometheus registry, where InitMetrics
// exports its instruments.
func MetricsHandler() http.Handler {
	return promhttp.Handler()
}
