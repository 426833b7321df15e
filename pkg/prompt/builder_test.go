package prompt

import (
	"strings"
	"testing"

	"github.com/crewforge/crewforge/pkg/workflow"
)

func newTestBuilder(t *testing.T) *Builder {
	t.Helper()
	b, err := NewBuilder("gpt-4.1-mini")
	if err != nil {
		t.Fatalf("NewBuilder() failed: %v", err)
	}
	return b
}

func TestBuilder_Build_ContainsDescription(t *testing.T) {
	b := newTestBuilder(t)

	p := b.Build("Build a crew that researches AI papers and summarizes them", workflow.FrameworkCrewAI, "")

	if !strings.Contains(p.Text, "researches AI papers") {
		t.Error("Expected prompt to embed the workflow description")
	}
	if !strings.Contains(p.Text, "single well-formed JSON object") {
		t.Error("Expected the JSON-only instruction")
	}
	if p.EstimatedTokens <= 0 {
		t.Errorf("Expected a positive token estimate, got %d", p.EstimatedTokens)
	}
}

func TestBuilder_Build_SchemaPerFramework(t *testing.T) {
	b := newTestBuilder(t)

	tests := []struct {
		framework   workflow.Framework
		contains    []string
		notContains []string
	}{
		{
			framework:   workflow.FrameworkCrewAI,
			contains:    []string{"CrewAI", `"tasks"`, `"expected_output"`, `"depends_on"`},
			notContains: []string{`"nodes"`, `"edges"`},
		},
		{
			framework:   workflow.FrameworkCrewAIFlow,
			contains:    []string{"CrewAI Flow", `"tasks"`, `"process"`},
			notContains: []string{`"nodes"`},
		},
		{
			framework:   workflow.FrameworkLangGraph,
			contains:    []string{"LangGraph", `"nodes"`, `"edges"`, `"is_entry_point"`, "END"},
			notContains: []string{`"expected_output"`, `"process"`},
		},
		{
			framework:   workflow.FrameworkReact,
			contains:    []string{"ReAct", `"examples"`, `"thought"`, `"final_answer"`},
			notContains: []string{`"nodes"`, `"process"`},
		},
		{
			framework:   workflow.FrameworkReactLCEL,
			contains:    []string{"ReAct", `"examples"`},
			notContains: []string{`"nodes"`},
		},
	}

	for _, tt := range tests {
		t.Run(string(tt.framework), func(t *testing.T) {
			p := b.Build("a workflow", tt.framework, "")

			for _, want := range tt.contains {
				if !strings.Contains(p.Text, want) {
					t.Errorf("Expected prompt for %s to contain %q", tt.framework, want)
				}
			}
			for _, avoid := range tt.notContains {
				if strings.Contains(p.Text, avoid) {
					t.Errorf("Expected prompt for %s not to contain %q", tt.framework, avoid)
				}
			}
		})
	}
}

func TestBuilder_Build_ProcessHint(t *testing.T) {
	b := newTestBuilder(t)

	explicit := b.Build("a workflow", workflow.FrameworkCrewAI, workflow.ProcessHierarchical)
	if !strings.Contains(explicit.Text, `set the "process" field to "hierarchical"`) {
		t.Error("Expected explicit hint to pin the process field")
	}
	if strings.Contains(explicit.Text, "process_reason") {
		t.Error("Explicit hint should not ask for a recommendation")
	}

	auto := b.Build("a workflow", workflow.FrameworkCrewAI, "")
	if !strings.Contains(auto.Text, "process_reason") {
		t.Error("Expected auto mode to ask for a recommendation with justification")
	}
	if !strings.Contains(auto.Text, `"sequential"`) || !strings.Contains(auto.Text, `"hierarchical"`) {
		t.Error("Expected auto mode to describe both process types")
	}

	graph := b.Build("a workflow", workflow.FrameworkLangGraph, "")
	if strings.Contains(graph.Text, "process_reason") {
		t.Error("Graph frameworks should not carry process guidance")
	}
}

func TestBuilder_BuildCorrective(t *testing.T) {
	b := newTestBuilder(t)

	initial := b.Build("a workflow", workflow.FrameworkCrewAI, "")
	detail := "tasks[1].agent: references unknown agent \"editor\""

	corrective := b.BuildCorrective(initial, detail)

	if !strings.HasPrefix(corrective.Text, initial.Text) {
		t.Error("Expected corrective prompt to retain the original instructions")
	}
	if !strings.Contains(corrective.Text, detail) {
		t.Error("Expected corrective prompt to embed the failure detail")
	}
	if !strings.Contains(corrective.Text, "could not be used") {
		t.Error("Expected corrective framing")
	}
	if corrective.EstimatedTokens <= initial.EstimatedTokens {
		t.Errorf("Expected corrective estimate to grow: %d -> %d", initial.EstimatedTokens, corrective.EstimatedTokens)
	}
}

func TestBuilder_Build_Deterministic(t *testing.T) {
	b := newTestBuilder(t)

	first := b.Build("same request", workflow.FrameworkReact, "")
	second := b.Build("same request", workflow.FrameworkReact, "")

	if first.Text != second.Text {
		t.Error("Expected identical prompts for identical inputs")
	}
	if first.EstimatedTokens != second.EstimatedTokens {
		t.Error("Expected identical token estimates for identical inputs")
	}
}
