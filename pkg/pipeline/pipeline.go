// SPDX-License-Identifier: AGPL-3.0
// Copyright 2025 The CrewForge Authors
//
// Licensed under the GNU Affero General Public License v3.0 (AGPL-3.0) (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     https://www.gnu.org/licenses/agpl-3.0.en.html
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Package pipeline runs one generation request end to end: build the
// prompt, call the completion client, parse and validate the answer, settle
// the process type, render the target framework, assemble the output.
//
// The orchestrator owns the retry policy. Parse and validation failures
// earn a bounded number of corrective re-prompts carrying the failure
// detail; throttling earns bounded backoff on the same prompt; provider and
// framework failures are terminal. The caller receives a complete artifact
// or a typed error, never partial output.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/crewforge/crewforge/pkg/config"
	"github.com/crewforge/crewforge/pkg/llms"
	"github.com/crewforge/crewforge/pkg/observability"
	"github.com/crewforge/crewforge/pkg/parser"
	"github.com/crewforge/crewforge/pkg/process"
	"github.com/crewforge/crewforge/pkg/prompt"
	"github.com/crewforge/crewforge/pkg/renderers"
	"github.com/crewforge/crewforge/pkg/workflow"
)

// State names a pipeline stage, for logs and diagnostics. The control flow
// itself lives in Generate; states record where a request is or where it
// died.
type State string

const (
	StateBuilding           State = "building"
	StateAwaitingCompletion State = "awaiting_completion"
	StateParsing            State = "parsing"
	StateSelecting          State = "selecting"
	StateRendering          State = "rendering"
	StateDone               State = "done"
	StateFailed             State = "failed"
)

// Pipeline-level throttling policy. The transport already retries rate
// limits with its own budget; these waits cover throttling that outlasted
// it, spaced far enough apart for a provider window to reset.
const (
	rateLimitWaits     = 2
	rateLimitBaseDelay = 2 * time.Second
	rateLimitMaxDelay  = 30 * time.Second
)

const tracerName = "crewforge.pipeline"

// Request describes one generation to run.
type Request struct {
	// Text is the free-form description of the workflow to design.
	Text string

	// Framework names the render target. Empty falls back to the
	// configured default.
	Framework string

	// Process forces an execution mode for task frameworks: "sequential"
	// or "hierarchical". Empty or "auto" leaves the choice to the model
	// recommendation and the selection heuristic.
	Process string

	// Format selects the artifact shape: "code", "json", or "both". Empty
	// falls back to the configured default.
	Format string
}

// Result is a completed generation.
type Result struct {
	// ID is the request ID assigned by the orchestrator, also present in
	// logs and trace spans.
	ID string

	// Framework is the resolved render target.
	Framework workflow.Framework

	// Process is the settled execution mode. Empty for frameworks that do
	// not run a task process.
	Process workflow.ProcessType

	// Configuration is the validated workflow the model designed.
	Configuration *workflow.Config

	// Code is the rendered source text.
	Code string

	// Format is the output format the artifact was assembled for.
	Format OutputFormat

	// Output is the artifact in the requested format.
	Output string

	// Attempts counts completion calls spent, including retries.
	Attempts int

	// Usage sums provider-reported token consumption across attempts.
	Usage llms.Usage

	// Duration is the wall-clock time the pipeline spent.
	Duration time.Duration
}

// Orchestrator drives generation requests against a completion client. It
// is stateless across requests and safe for concurrent use.
type Orchestrator struct {
	client  llms.CompletionClient
	builder *prompt.Builder
	cfg     *config.Config

	// sleep is replaced in tests so backoff does not stall them.
	sleep func(ctx context.Context, d time.Duration) error
}

// New creates an orchestrator for the given client and settings. Token
// estimates use the client's model encoding.
func New(client llms.CompletionClient, cfg *config.Config) (*Orchestrator, error) {
	if client == nil {
		return nil, fmt.Errorf("completion client is required")
	}
	if cfg == nil {
		return nil, fmt.Errorf("configuration is required")
	}

	builder, err := prompt.NewBuilder(client.ModelName())
	if err != nil {
		return nil, fmt.Errorf("initializing prompt builder: %w", err)
	}

	return &Orchestrator{
		client:  client,
		builder: builder,
		cfg:     cfg,
		sleep:   sleepContext,
	}, nil
}

// Generate runs the full pipeline for one request and returns the assembled
// artifact. Failures carry the taxonomy type of the stage that died:
// *llms.ProviderError, *llms.RateLimitedError, *parser.NoJSONFoundError,
// *parser.MalformedJSONError, *workflow.ValidationError, or
// *workflow.UnsupportedFrameworkError.
func (o *Orchestrator) Generate(ctx context.Context, req Request) (*Result, error) {
	if strings.TrimSpace(req.Text) == "" {
		return nil, fmt.Errorf("request text is required")
	}

	framework, err := o.resolveFramework(req.Framework)
	if err != nil {
		return nil, err
	}
	explicit, err := workflow.ParseProcessType(req.Process)
	if err != nil {
		return nil, err
	}
	format, err := o.resolveFormat(req.Format)
	if err != nil {
		return nil, err
	}

	start := time.Now()
	id := uuid.NewString()
	log := slog.With("request_id", id, "framework", string(framework))

	tracer := observability.GetTracer(tracerName)
	ctx, span := tracer.Start(ctx, observability.SpanGenerate,
		trace.WithAttributes(
			attribute.String(observability.AttrRequestID, id),
			attribute.String(observability.AttrFramework, string(framework)),
		),
	)
	defer span.End()

	state := StateBuilding
	advance := func(next State) {
		log.Debug("Pipeline state change", "from", string(state), "to", string(next))
		state = next
	}

	attempts := 0
	fail := func(err error) (*Result, error) {
		advance(StateFailed)
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		if metrics := observability.GetGlobalMetrics(); metrics != nil {
			metrics.RecordGeneration(ctx, string(framework), time.Since(start), attempts, err)
		}
		log.Error("Generation failed", "state", string(state), "attempts", attempts, "error", err)
		return nil, err
	}

	log.Info("Generating workflow",
		"model", o.client.ModelName(),
		"process", req.Process,
		"format", string(format))

	pr := o.buildPrompt(ctx, log, req.Text, framework, explicit)

	var (
		cfg         *workflow.Config
		totalUsage  llms.Usage
		correctives int
		waits       int
	)

	for {
		if budget := o.cfg.LLM.ContextBudget; budget > 0 && pr.EstimatedTokens > budget {
			return fail(llms.NewProviderError(string(o.cfg.LLM.Provider), 0,
				fmt.Sprintf("prompt of ~%d tokens exceeds the context budget of %d", pr.EstimatedTokens, budget), nil))
		}

		advance(StateAwaitingCompletion)
		callCtx, cancel := o.callContext(ctx)
		completion, usage, err := o.client.Complete(callCtx, pr.Text)
		cancel()
		attempts++
		totalUsage.InputTokens += usage.InputTokens
		totalUsage.OutputTokens += usage.OutputTokens

		if err != nil {
			var throttled *llms.RateLimitedError
			if errors.As(err, &throttled) && waits < rateLimitWaits {
				waits++
				delay := backoffDelay(waits, throttled.RetryAfter)
				log.Warn("Provider throttled the request, backing off",
					"attempt", attempts, "delay", delay.String())
				if serr := o.sleep(ctx, delay); serr != nil {
					return fail(serr)
				}
				continue
			}
			return fail(err)
		}

		log.Debug("Received completion",
			"attempt", attempts,
			"input_tokens", usage.InputTokens,
			"output_tokens", usage.OutputTokens)

		advance(StateParsing)
		_, parseSpan := tracer.Start(ctx, observability.SpanParse)
		cfg, err = parser.Parse(completion, framework)
		finishSpan(parseSpan, err)

		if err == nil && framework.UsesTasks() {
			advance(StateSelecting)
			if chosen := process.Select(cfg, explicit); chosen != cfg.Process {
				cfg.Process = chosen
				err = cfg.Validate()
			}
		}

		if err == nil {
			break
		}
		if correctable(err) && correctives < o.cfg.Generator.Retries() {
			correctives++
			log.Warn("Completion rejected, issuing corrective re-prompt",
				"attempt", attempts, "error", err)
			advance(StateBuilding)
			pr = o.buildCorrective(ctx, log, pr, err)
			continue
		}
		return fail(err)
	}

	advance(StateRendering)
	_, renderSpan := tracer.Start(ctx, observability.SpanRender)
	code, err := renderers.Render(cfg)
	finishSpan(renderSpan, err)
	if err != nil {
		return fail(err)
	}

	output, err := Assemble(format, cfg, code)
	if err != nil {
		return fail(err)
	}

	advance(StateDone)
	duration := time.Since(start)
	span.SetAttributes(
		attribute.String(observability.AttrProcess, string(cfg.Process)),
		attribute.Int(observability.AttrAgentCount, len(cfg.Agents)),
		attribute.Int(observability.AttrAttempt, attempts),
	)
	span.SetStatus(codes.Ok, "success")
	if metrics := observability.GetGlobalMetrics(); metrics != nil {
		metrics.RecordGeneration(ctx, string(framework), duration, attempts, nil)
	}
	log.Info("Generation complete",
		"process", string(cfg.Process),
		"agents", len(cfg.Agents),
		"attempts", attempts,
		"duration", duration.String())

	return &Result{
		ID:            id,
		Framework:     framework,
		Process:       cfg.Process,
		Configuration: cfg,
		Code:          code,
		Format:        format,
		Output:        output,
		Attempts:      attempts,
		Usage:         totalUsage,
		Duration:      duration,
	}, nil
}

// buildPrompt renders the initial generation prompt and debug-logs its size
// estimate.
func (o *Orchestrator) buildPrompt(ctx context.Context, log *slog.Logger, text string, framework workflow.Framework, hint workflow.ProcessType) prompt.Prompt {
	_, span := observability.GetTracer(tracerName).Start(ctx, observability.SpanBuildPrompt)
	defer span.End()

	pr := o.builder.Build(text, framework, hint)
	log.Debug("Built prompt", "estimated_tokens", pr.EstimatedTokens)
	return pr
}

// buildCorrective appends the failure detail to the previous prompt and
// debug-logs the new size estimate.
func (o *Orchestrator) buildCorrective(ctx context.Context, log *slog.Logger, previous prompt.Prompt, cause error) prompt.Prompt {
	_, span := observability.GetTracer(tracerName).Start(ctx, observability.SpanBuildPrompt)
	defer span.End()

	pr := o.builder.BuildCorrective(previous, cause.Error())
	log.Debug("Built corrective prompt", "estimated_tokens", pr.EstimatedTokens)
	return pr
}

// resolveFramework applies the configured default before parsing.
func (o *Orchestrator) resolveFramework(name string) (workflow.Framework, error) {
	if strings.TrimSpace(name) == "" {
		name = o.cfg.Generator.DefaultFramework
	}
	return workflow.ParseFramework(name)
}

// resolveFormat applies the configured default before parsing.
func (o *Orchestrator) resolveFormat(name string) (OutputFormat, error) {
	if strings.TrimSpace(name) == "" {
		name = o.cfg.Generator.DefaultFormat
	}
	return ParseOutputFormat(name)
}

// callContext scopes one adapter call. Every attempt gets a fresh timeout
// so retries never inherit a drained budget.
func (o *Orchestrator) callContext(ctx context.Context) (context.Context, context.CancelFunc) {
	if o.cfg.LLM.Timeout <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, o.cfg.LLM.Timeout)
}

// correctable reports whether a failure is the model's to fix. Parse and
// validation errors earn a corrective re-prompt; everything else is
// terminal for the pipeline.
func correctable(err error) bool {
	var noJSON *parser.NoJSONFoundError
	var malformed *parser.MalformedJSONError
	var invalid *workflow.ValidationError
	return errors.As(err, &noJSON) || errors.As(err, &malformed) || errors.As(err, &invalid)
}

// backoffDelay computes the wait before re-sending a throttled prompt. A
// server-provided hint wins; otherwise the delay doubles per wait. Both are
// capped.
func backoffDelay(wait int, hint time.Duration) time.Duration {
	delay := hint
	if delay <= 0 {
		delay = rateLimitBaseDelay << (wait - 1)
	}
	if delay > rateLimitMaxDelay {
		return rateLimitMaxDelay
	}
	return delay
}

// finishSpan closes a stage span, recording err when the stage failed.
func finishSpan(span trace.Span, err error) {
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
	span.End()
}

// sleepContext waits for d, honoring cancellation.
func sleepContext(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
