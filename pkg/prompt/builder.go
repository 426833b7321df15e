// Package prompt renders the instructions sent to the completion client.
// Building is pure string assembly: no network access, no provider
// awareness. Each produced prompt carries a tiktoken-based size estimate so
// callers can debug-log it and enforce a context budget before spending a
// network call.
package prompt

import (
	"fmt"
	"strings"

	"github.com/crewforge/crewforge/pkg/workflow"
)

// Prompt is a fully rendered instruction ready for one completion call.
type Prompt struct {
	// Text is the complete prompt body.
	Text string

	// EstimatedTokens is the tiktoken count of Text under the builder's
	// model encoding.
	EstimatedTokens int
}

// Builder renders generation and corrective prompts for a target framework.
type Builder struct {
	counter *TokenCounter
}

// NewBuilder creates a builder whose token estimates use the encoding for
// the given model.
func NewBuilder(model string) (*Builder, error) {
	counter, err := NewTokenCounter(model)
	if err != nil {
		return nil, err
	}
	return &Builder{counter: counter}, nil
}

// Build renders the initial generation prompt: the framework's expected
// output schema with a structural exemplar, process guidance for crew-style
// frameworks, and the user's workflow description.
func (b *Builder) Build(description string, framework workflow.Framework, processHint workflow.ProcessType) Prompt {
	var sb strings.Builder

	sb.WriteString(schemaFor(framework))

	if framework.UsesTasks() {
		sb.WriteString("\n\n")
		sb.WriteString(processClause(processHint))
	}

	sb.WriteString("\n\nUser request:\n")
	sb.WriteString(strings.TrimSpace(description))
	sb.WriteString("\n\n")
	sb.WriteString(jsonOnlyReminder)

	return b.finish(sb.String())
}

// BuildCorrective appends the failure detail from a parse or validation
// error to a previously issued prompt, asking the model to try again. The
// original instructions stay in place so the model keeps the full schema
// context.
func (b *Builder) BuildCorrective(previous Prompt, failureDetail string) Prompt {
	var sb strings.Builder

	sb.WriteString(previous.Text)
	sb.WriteString("\n\nYour previous response could not be used:\n")
	sb.WriteString(strings.TrimSpace(failureDetail))
	sb.WriteString("\n\nCorrect these problems and answer again. ")
	sb.WriteString(jsonOnlyReminder)

	return b.finish(sb.String())
}

func (b *Builder) finish(text string) Prompt {
	return Prompt{
		Text:            text,
		EstimatedTokens: b.counter.Count(text),
	}
}

// processClause renders the process-type guidance for crew-style prompts.
// An unset hint asks the model to recommend a process and justify it.
func processClause(hint workflow.ProcessType) string {
	switch hint {
	case workflow.ProcessSequential, workflow.ProcessHierarchical:
		return fmt.Sprintf("Process: set the \"process\" field to %q.", string(hint))
	default:
		return `Process: choose "sequential" (tasks run one after another in order) or "hierarchical" (a manager agent coordinates and delegates to the other agents; requires at least two agents). Set the "process" field to your choice and give a one-line justification in "process_reason".`
	}
}
