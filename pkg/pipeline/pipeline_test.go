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

package pipeline

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/crewforge/crewforge/pkg/config"
	"github.com/crewforge/crewforge/pkg/llms"
	"github.com/crewforge/crewforge/pkg/parser"
	"github.com/crewforge/crewforge/pkg/workflow"
)

const crewCompletion = `Here is the workflow you asked for:

{
  "framework": "crewai",
  "process": "sequential",
  "process_reason": "The tasks form a simple linear chain.",
  "agents": [
    {"name": "researcher", "role": "Research Specialist", "goal": "Find relevant papers"},
    {"name": "writer", "role": "Technical Writer", "goal": "Summarize the findings"}
  ],
  "tasks": [
    {"name": "research", "description": "Collect recent papers on the topic", "expected_output": "A list of sources", "agent": "researcher"},
    {"name": "write", "description": "Write a summary of the collected papers", "expected_output": "A concise summary", "agent": "writer", "depends_on": ["research"]}
  ]
}

Let me know if you need changes.`

const hierarchicalCompletion = `{
  "framework": "crewai",
  "process": "hierarchical",
  "process_reason": "A coordinator should assign the work.",
  "agents": [
    {"name": "lead", "role": "Project Lead", "goal": "Coordinate the work"},
    {"name": "researcher", "role": "Research Specialist", "goal": "Find relevant papers"}
  ],
  "tasks": [
    {"name": "research", "description": "Collect recent papers on the topic", "expected_output": "A list of sources", "agent": "researcher"}
  ]
}`

const soloCompletion = `{
  "framework": "crewai",
  "process": "sequential",
  "agents": [
    {"name": "researcher", "role": "Research Specialist", "goal": "Find relevant papers"}
  ],
  "tasks": [
    {"name": "research", "description": "Collect recent papers on the topic", "expected_output": "A list of sources", "agent": "researcher"}
  ]
}`

const graphCompletion = `{
  "framework": "langgraph",
  "agents": [
    {"name": "researcher", "role": "Research Specialist", "goal": "Find relevant papers"},
    {"name": "writer", "role": "Technical Writer", "goal": "Summarize the findings"}
  ],
  "nodes": [
    {"name": "research", "agent": "researcher", "is_entry_point": true},
    {"name": "write", "agent": "writer"}
  ],
  "edges": [
    {"source": "research", "target": "write"},
    {"source": "write", "target": "END"}
  ]
}`

const danglingAgentCompletion = `{
  "framework": "crewai",
  "process": "sequential",
  "agents": [
    {"name": "researcher", "role": "Research Specialist", "goal": "Find relevant papers"}
  ],
  "tasks": [
    {"name": "research", "description": "Collect recent papers on the topic", "expected_output": "A list of sources", "agent": "editor"}
  ]
}`

// reply is one scripted answer from the fake completion client.
type reply struct {
	text string
	err  error
}

// scriptedClient plays back a fixed sequence of completions and failures,
// recording every prompt it was sent.
type scriptedClient struct {
	replies   []reply
	prompts   []string
	deadlines []bool
}

func (c *scriptedClient) Complete(ctx context.Context, prompt string) (string, llms.Usage, error) {
	c.prompts = append(c.prompts, prompt)
	_, hasDeadline := ctx.Deadline()
	c.deadlines = append(c.deadlines, hasDeadline)

	i := len(c.prompts) - 1
	if i >= len(c.replies) {
		return "", llms.Usage{}, llms.NewProviderError("scripted", 0, "no scripted reply left", nil)
	}
	r := c.replies[i]
	if r.err != nil {
		return "", llms.Usage{}, r.err
	}
	return r.text, llms.Usage{InputTokens: 100, OutputTokens: 200}, nil
}

func (c *scriptedClient) ModelName() string {
	return "gpt-4.1-mini"
}

func newTestOrchestrator(t *testing.T, client llms.CompletionClient) *Orchestrator {
	t.Helper()

	cfg := &config.Config{}
	cfg.SetDefaults()

	o, err := New(client, cfg)
	if err != nil {
		t.Fatalf("New() error: %v", err)
	}
	o.sleep = func(context.Context, time.Duration) error { return nil }
	return o
}

func mustGenerate(t *testing.T, o *Orchestrator, req Request) *Result {
	t.Helper()

	result, err := o.Generate(context.Background(), req)
	if err != nil {
		t.Fatalf("Generate() error: %v", err)
	}
	return result
}

func TestGenerate_Success(t *testing.T) {
	client := &scriptedClient{replies: []reply{{text: crewCompletion}}}
	o := newTestOrchestrator(t, client)

	result := mustGenerate(t, o, Request{
		Text:      "Build a two-agent research assistant that finds papers and summarizes them",
		Framework: "crewai",
	})

	if result.ID == "" {
		t.Error("Expected a request ID, got empty string")
	}
	if result.Framework != workflow.FrameworkCrewAI {
		t.Errorf("Framework = %q, want crewai", result.Framework)
	}
	if result.Process != workflow.ProcessSequential {
		t.Errorf("Process = %q, want sequential", result.Process)
	}
	if result.Attempts != 1 {
		t.Errorf("Attempts = %d, want 1", result.Attempts)
	}
	if len(result.Configuration.Agents) != 2 {
		t.Errorf("Expected 2 agents, got %d", len(result.Configuration.Agents))
	}
	if !strings.Contains(result.Code, "from crewai import Agent, Task, Crew, Process") {
		t.Error("Expected rendered CrewAI code in result")
	}
	if !strings.Contains(result.Code, "process=Process.sequential") {
		t.Error("Expected a sequential crew assembly in the rendered code")
	}
	if result.Output != result.Code {
		t.Error("Expected Output to equal Code for the code format")
	}
	if result.Usage.InputTokens != 100 || result.Usage.OutputTokens != 200 {
		t.Errorf("Usage = %+v, want 100 in / 200 out", result.Usage)
	}

	// Every adapter call runs under its own deadline.
	for i, hasDeadline := range client.deadlines {
		if !hasDeadline {
			t.Errorf("Expected call %d to carry a deadline", i)
		}
	}
}

func TestGenerate_UsesConfiguredDefaults(t *testing.T) {
	client := &scriptedClient{replies: []reply{{text: crewCompletion}}}
	o := newTestOrchestrator(t, client)

	result := mustGenerate(t, o, Request{Text: "Build a research assistant"})

	if result.Framework != workflow.FrameworkCrewAI {
		t.Errorf("Framework = %q, want the configured default crewai", result.Framework)
	}
	if result.Format != FormatCode {
		t.Errorf("Format = %q, want the configured default code", result.Format)
	}
}

func TestGenerate_CorrectiveRetryOnUnusableCompletion(t *testing.T) {
	client := &scriptedClient{replies: []reply{
		{text: "I could not produce a workflow this time, sorry."},
		{text: crewCompletion},
	}}
	o := newTestOrchestrator(t, client)

	result := mustGenerate(t, o, Request{Text: "Build a research assistant", Framework: "crewai"})

	if result.Attempts != 2 {
		t.Fatalf("Attempts = %d, want 2", result.Attempts)
	}
	if len(client.prompts) != 2 {
		t.Fatalf("Expected 2 prompts, got %d", len(client.prompts))
	}
	if !strings.HasPrefix(client.prompts[1], client.prompts[0]) {
		t.Error("Expected the corrective prompt to keep the original instructions")
	}
	if !strings.Contains(client.prompts[1], "Your previous response could not be used") {
		t.Error("Expected corrective guidance in the second prompt")
	}
	if !strings.Contains(client.prompts[1], "no JSON object found") {
		t.Error("Expected the failure detail in the second prompt")
	}
	if result.Usage.Total() != 600 {
		t.Errorf("Usage.Total() = %d, want 600 across both calls", result.Usage.Total())
	}
}

func TestGenerate_CorrectiveRetryOnValidationFailure(t *testing.T) {
	client := &scriptedClient{replies: []reply{
		{text: danglingAgentCompletion},
		{text: crewCompletion},
	}}
	o := newTestOrchestrator(t, client)

	result := mustGenerate(t, o, Request{Text: "Build a research assistant", Framework: "crewai"})

	if result.Attempts != 2 {
		t.Fatalf("Attempts = %d, want 2", result.Attempts)
	}
	if !strings.Contains(client.prompts[1], `references unknown agent "editor"`) {
		t.Error("Expected the validation problem in the corrective prompt")
	}
}

func TestGenerate_CorrectiveRetriesExhausted(t *testing.T) {
	client := &scriptedClient{replies: []reply{
		{text: "no workflow here"},
		{text: "still no workflow"},
		{text: "giving up on JSON"},
	}}
	o := newTestOrchestrator(t, client)

	_, err := o.Generate(context.Background(), Request{Text: "Build a research assistant", Framework: "crewai"})
	if err == nil {
		t.Fatal("Expected an error after exhausted corrective retries")
	}

	var noJSON *parser.NoJSONFoundError
	if !errors.As(err, &noJSON) {
		t.Fatalf("Expected NoJSONFoundError, got %T: %v", err, err)
	}
	// Initial attempt plus the configured two correctives.
	if len(client.prompts) != 3 {
		t.Errorf("Expected 3 prompts, got %d", len(client.prompts))
	}
}

func TestGenerate_CorrectiveBoundConfigurable(t *testing.T) {
	client := &scriptedClient{replies: []reply{
		{text: "no workflow here"},
		{text: crewCompletion},
	}}

	cfg := &config.Config{}
	cfg.SetDefaults()
	cfg.Generator.MaxRetries = config.IntPtr(0)

	o, err := New(client, cfg)
	if err != nil {
		t.Fatalf("New() error: %v", err)
	}
	o.sleep = func(context.Context, time.Duration) error { return nil }

	_, err = o.Generate(context.Background(), Request{Text: "Build a research assistant", Framework: "crewai"})
	if err == nil {
		t.Fatal("Expected an error with a zero corrective bound")
	}
	if len(client.prompts) != 1 {
		t.Errorf("Expected 1 prompt with a zero corrective bound, got %d", len(client.prompts))
	}
}

func TestGenerate_RateLimitBackoffThenSuccess(t *testing.T) {
	client := &scriptedClient{replies: []reply{
		{err: llms.NewRateLimitedError("openai", 1500*time.Millisecond, nil)},
		{text: crewCompletion},
	}}
	o := newTestOrchestrator(t, client)

	var slept []time.Duration
	o.sleep = func(_ context.Context, d time.Duration) error {
		slept = append(slept, d)
		return nil
	}

	result := mustGenerate(t, o, Request{Text: "Build a research assistant", Framework: "crewai"})

	if result.Attempts != 2 {
		t.Errorf("Attempts = %d, want 2", result.Attempts)
	}
	if len(slept) != 1 || slept[0] != 1500*time.Millisecond {
		t.Errorf("slept = %v, want the server's 1.5s retry-after hint", slept)
	}
	if client.prompts[0] != client.prompts[1] {
		t.Error("Expected the same prompt to be resent after throttling")
	}
}

func TestGenerate_RateLimitBackoffDoubles(t *testing.T) {
	client := &scriptedClient{replies: []reply{
		{err: llms.NewRateLimitedError("openai", 0, nil)},
		{err: llms.NewRateLimitedError("openai", 0, nil)},
		{text: crewCompletion},
	}}
	o := newTestOrchestrator(t, client)

	var slept []time.Duration
	o.sleep = func(_ context.Context, d time.Duration) error {
		slept = append(slept, d)
		return nil
	}

	result := mustGenerate(t, o, Request{Text: "Build a research assistant", Framework: "crewai"})

	if result.Attempts != 3 {
		t.Errorf("Attempts = %d, want 3", result.Attempts)
	}
	want := []time.Duration{2 * time.Second, 4 * time.Second}
	if len(slept) != len(want) {
		t.Fatalf("slept %d times, want %d", len(slept), len(want))
	}
	for i := range want {
		if slept[i] != want[i] {
			t.Errorf("slept[%d] = %v, want %v", i, slept[i], want[i])
		}
	}
}

func TestGenerate_RateLimitWaitsExhausted(t *testing.T) {
	throttled := llms.NewRateLimitedError("openai", 0, nil)
	client := &scriptedClient{replies: []reply{
		{err: throttled}, {err: throttled}, {err: throttled},
	}}
	o := newTestOrchestrator(t, client)

	_, err := o.Generate(context.Background(), Request{Text: "Build a research assistant", Framework: "crewai"})

	var rle *llms.RateLimitedError
	if !errors.As(err, &rle) {
		t.Fatalf("Expected RateLimitedError, got %T: %v", err, err)
	}
	if len(client.prompts) != 3 {
		t.Errorf("Expected 3 attempts (1 + 2 waits), got %d", len(client.prompts))
	}
}

func TestGenerate_ProviderErrorFatal(t *testing.T) {
	client := &scriptedClient{replies: []reply{
		{err: llms.NewProviderError("openai", 503, "service unavailable", nil)},
	}}
	o := newTestOrchestrator(t, client)

	_, err := o.Generate(context.Background(), Request{Text: "Build a research assistant", Framework: "crewai"})

	var pErr *llms.ProviderError
	if !errors.As(err, &pErr) {
		t.Fatalf("Expected ProviderError, got %T: %v", err, err)
	}
	if len(client.prompts) != 1 {
		t.Errorf("Expected no retry after a provider error, got %d attempts", len(client.prompts))
	}
}

func TestGenerate_CancelledDuringBackoff(t *testing.T) {
	client := &scriptedClient{replies: []reply{
		{err: llms.NewRateLimitedError("openai", 0, nil)},
		{text: crewCompletion},
	}}
	o := newTestOrchestrator(t, client)
	o.sleep = sleepContext

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := o.Generate(ctx, Request{Text: "Build a research assistant", Framework: "crewai"})
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("Expected context.Canceled, got %v", err)
	}
	if len(client.prompts) != 1 {
		t.Errorf("Expected the pipeline to stop during backoff, got %d attempts", len(client.prompts))
	}
}

func TestGenerate_ExplicitProcessOverridesRecommendation(t *testing.T) {
	client := &scriptedClient{replies: []reply{{text: hierarchicalCompletion}}}
	o := newTestOrchestrator(t, client)

	result := mustGenerate(t, o, Request{
		Text:      "Build a research team",
		Framework: "crewai",
		Process:   "sequential",
	})

	if result.Process != workflow.ProcessSequential {
		t.Errorf("Process = %q, want the explicit sequential choice", result.Process)
	}
	if result.Configuration.Process != workflow.ProcessSequential {
		t.Errorf("Configuration.Process = %q, want sequential", result.Configuration.Process)
	}
	if !strings.Contains(result.Code, "process=Process.sequential") {
		t.Error("Expected the rendered crew to run sequentially")
	}
	if strings.Contains(result.Code, "manager_agent") {
		t.Error("Expected no manager agent in a sequential crew")
	}
}

func TestGenerate_RecommendationAdoptedWithoutExplicitChoice(t *testing.T) {
	client := &scriptedClient{replies: []reply{{text: hierarchicalCompletion}}}
	o := newTestOrchestrator(t, client)

	result := mustGenerate(t, o, Request{
		Text:      "Build a research team",
		Framework: "crewai",
		Process:   "auto",
	})

	if result.Process != workflow.ProcessHierarchical {
		t.Errorf("Process = %q, want the model's hierarchical recommendation", result.Process)
	}
	if !strings.Contains(result.Code, "manager_agent=agent_lead") {
		t.Error("Expected the first agent to manage the hierarchical crew")
	}
}

func TestGenerate_ProcessOverrideRevalidates(t *testing.T) {
	client := &scriptedClient{replies: []reply{
		{text: soloCompletion},
		{text: hierarchicalCompletion},
	}}
	o := newTestOrchestrator(t, client)

	result := mustGenerate(t, o, Request{
		Text:      "Build a research team",
		Framework: "crewai",
		Process:   "hierarchical",
	})

	if result.Attempts != 2 {
		t.Fatalf("Attempts = %d, want 2", result.Attempts)
	}
	if !strings.Contains(client.prompts[1], "hierarchical process needs") {
		t.Error("Expected the process problem in the corrective prompt")
	}
	if result.Process != workflow.ProcessHierarchical {
		t.Errorf("Process = %q, want hierarchical", result.Process)
	}
}

func TestGenerate_GraphFrameworkSkipsProcessSelection(t *testing.T) {
	client := &scriptedClient{replies: []reply{{text: graphCompletion}}}
	o := newTestOrchestrator(t, client)

	result := mustGenerate(t, o, Request{
		Text:      "Build a research graph",
		Framework: "langgraph",
		Process:   "auto",
	})

	if result.Process != "" {
		t.Errorf("Process = %q, want empty for a graph framework", result.Process)
	}
	if !strings.Contains(result.Code, "StateGraph(AgentState)") {
		t.Error("Expected a LangGraph render in the result")
	}
	if !strings.Contains(result.Code, `workflow.set_entry_point("research")`) {
		t.Error("Expected the marked entry node to be wired")
	}
}

func TestGenerate_OutputFormats(t *testing.T) {
	tests := []struct {
		format string
		check  func(t *testing.T, result *Result)
	}{
		{
			format: "code",
			check: func(t *testing.T, result *Result) {
				if result.Output != result.Code {
					t.Error("Expected Output to equal Code")
				}
				if !strings.HasPrefix(result.Output, "from crewai import") {
					t.Errorf("Output starts with %.40q, want the import line", result.Output)
				}
			},
		},
		{
			format: "json",
			check: func(t *testing.T, result *Result) {
				if !strings.HasPrefix(result.Output, "{") {
					t.Errorf("Output starts with %.40q, want a JSON document", result.Output)
				}
				if !strings.Contains(result.Output, `"framework": "crewai"`) {
					t.Error("Expected the framework field in the JSON output")
				}
				if strings.Contains(result.Output, "from crewai import") {
					t.Error("Expected no source text in the json format")
				}
				if result.Code == "" {
					t.Error("Expected Code to stay populated for the json format")
				}
			},
		},
		{
			format: "both",
			check: func(t *testing.T, result *Result) {
				if !strings.HasPrefix(result.Output, "// Configuration:\n{") {
					t.Errorf("Output starts with %.40q, want the configuration banner", result.Output)
				}
				if !strings.Contains(result.Output, "\n\n// Generated Code:\nfrom crewai import") {
					t.Error("Expected the code banner between JSON and source")
				}
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.format, func(t *testing.T) {
			client := &scriptedClient{replies: []reply{{text: crewCompletion}}}
			o := newTestOrchestrator(t, client)

			result := mustGenerate(t, o, Request{
				Text:      "Build a research assistant",
				Framework: "crewai",
				Format:    tt.format,
			})
			if result.Format != OutputFormat(tt.format) {
				t.Errorf("Format = %q, want %q", result.Format, tt.format)
			}
			tt.check(t, result)
		})
	}
}

func TestGenerate_UnsupportedFramework(t *testing.T) {
	client := &scriptedClient{replies: []reply{{text: crewCompletion}}}
	o := newTestOrchestrator(t, client)

	_, err := o.Generate(context.Background(), Request{Text: "Build a team", Framework: "autogen"})

	var ufErr *workflow.UnsupportedFrameworkError
	if !errors.As(err, &ufErr) {
		t.Fatalf("Expected UnsupportedFrameworkError, got %T: %v", err, err)
	}
	if ufErr.Requested != "autogen" {
		t.Errorf("Requested = %q, want autogen", ufErr.Requested)
	}
	if len(client.prompts) != 0 {
		t.Error("Expected no completion call for an unsupported framework")
	}
}

func TestGenerate_RejectsBadRequests(t *testing.T) {
	tests := []struct {
		name string
		req  Request
	}{
		{"empty text", Request{Framework: "crewai"}},
		{"unknown process", Request{Text: "Build a team", Framework: "crewai", Process: "circular"}},
		{"unknown format", Request{Text: "Build a team", Framework: "crewai", Format: "xml"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client := &scriptedClient{replies: []reply{{text: crewCompletion}}}
			o := newTestOrchestrator(t, client)

			if _, err := o.Generate(context.Background(), tt.req); err == nil {
				t.Fatal("Expected an error")
			}
			if len(client.prompts) != 0 {
				t.Error("Expected no completion call for a rejected request")
			}
		})
	}
}

func TestGenerate_PromptOverContextBudget(t *testing.T) {
	client := &scriptedClient{replies: []reply{{text: crewCompletion}}}

	cfg := &config.Config{}
	cfg.SetDefaults()
	cfg.LLM.ContextBudget = 10

	o, err := New(client, cfg)
	if err != nil {
		t.Fatalf("New() error: %v", err)
	}

	_, err = o.Generate(context.Background(), Request{Text: "Build a research assistant", Framework: "crewai"})

	var pErr *llms.ProviderError
	if !errors.As(err, &pErr) {
		t.Fatalf("Expected ProviderError, got %T: %v", err, err)
	}
	if !strings.Contains(err.Error(), "context budget") {
		t.Errorf("Error = %q, want a context budget message", err)
	}
	if len(client.prompts) != 0 {
		t.Error("Expected no network call for an over-budget prompt")
	}
}

func TestBackoffDelay(t *testing.T) {
	tests := []struct {
		name string
		wait int
		hint time.Duration
		want time.Duration
	}{
		{"first wait doubles from base", 1, 0, 2 * time.Second},
		{"second wait doubles again", 2, 0, 4 * time.Second},
		{"hint wins over schedule", 1, 7 * time.Second, 7 * time.Second},
		{"hint is capped", 1, 5 * time.Minute, 30 * time.Second},
		{"schedule is capped", 6, 0, 30 * time.Second},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := backoffDelay(tt.wait, tt.hint); got != tt.want {
				t.Errorf("backoffDelay(%d, %v) = %v, want %v", tt.wait, tt.hint, got, tt.want)
			}
		})
	}
}

func TestParseOutputFormat(t *testing.T) {
	tests := []struct {
		input   string
		want    OutputFormat
		wantErr bool
	}{
		{"code", FormatCode, false},
		{"json", FormatJSON, false},
		{"both", FormatBoth, false},
		{" Both ", FormatBoth, false},
		{"", "", true},
		{"xml", "", true},
	}

	for _, tt := range tests {
		got, err := ParseOutputFormat(tt.input)
		if tt.wantErr {
			if err == nil {
				t.Errorf("ParseOutputFormat(%q): expected an error", tt.input)
			}
			continue
		}
		if err != nil {
			t.Errorf("ParseOutputFormat(%q) error: %v", tt.input, err)
			continue
		}
		if got != tt.want {
			t.Errorf("ParseOutputFormat(%q) = %q, want %q", tt.input, got, tt.want)
		}
	}
}
