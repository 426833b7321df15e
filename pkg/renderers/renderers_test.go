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

package renderers

import (
	"bytes"
	"errors"
	"strings"
	"testing"

	"github.com/crewforge/crewforge/pkg/workflow"
)

func crewFixture() *workflow.Config {
	return &workflow.Config{
		Framework: workflow.FrameworkCrewAI,
		Process:   workflow.ProcessSequential,
		Agents: []workflow.Agent{
			{Name: "researcher", Role: "Research Specialist", Goal: "Find accurate information", Backstory: "Veteran analyst.", Tools: []string{"search"}},
			{Name: "writer", Role: "Content Writer", Goal: "Write the final report"},
		},
		Tools: []workflow.Tool{
			{Name: "search", Description: "Searches the web", Parameters: []string{"query"}},
		},
		Tasks: []workflow.Task{
			{Name: "research", Description: "Collect sources", ExpectedOutput: "A source list", Agent: "researcher", Tools: []string{"search"}},
			{Name: "write", Description: "Draft the report", ExpectedOutput: "A report", Agent: "writer", DependsOn: []string{"research"}},
		},
	}
}

func graphFixture() *workflow.Config {
	return &workflow.Config{
		Framework: workflow.FrameworkLangGraph,
		Agents: []workflow.Agent{
			{Name: "researcher", Role: "Research Specialist", Goal: "Find information"},
			{Name: "writer", Role: "Writer", Goal: "Write the answer", LLM: "gpt-4o"},
		},
		Tools: []workflow.Tool{
			{Name: "search", Description: "Searches the web"},
		},
		Nodes: []workflow.Node{
			{Name: "research", Agent: "researcher", IsEntryPoint: true},
			{Name: "write", Agent: "writer"},
		},
		Edges: []workflow.Edge{
			{Source: "research", Target: "write"},
			{Source: "write", Target: workflow.EndNode},
		},
	}
}

func reactFixture() *workflow.Config {
	return &workflow.Config{
		Framework: workflow.FrameworkReact,
		Agents: []workflow.Agent{
			{Name: "qa_assistant", Role: "Q&A Assistant", Goal: "Answer questions accurately"},
		},
		Tools: []workflow.Tool{
			{Name: "search", Description: "Searches the web", Parameters: []string{"query"}},
		},
		Examples: []workflow.Example{
			{
				Query:       "What is the tallest mountain in Europe?",
				Thought:     "I should search for the answer.",
				Action:      "search",
				Observation: "Mount Elbrus is the tallest mountain in Europe.",
				FinalAnswer: "Mount Elbrus",
			},
		},
	}
}

func TestRender_Dispatch(t *testing.T) {
	tests := []struct {
		name     string
		cfg      *workflow.Config
		contains string
	}{
		{"crewai", crewFixture(), "from crewai import Agent, Task, Crew, Process"},
		{"crewai-flow", func() *workflow.Config {
			cfg := crewFixture()
			cfg.Framework = workflow.FrameworkCrewAIFlow
			return cfg
		}(), "from crewai.flow.flow import Flow, listen, start"},
		{"langgraph", graphFixture(), "from langgraph.graph import StateGraph, END"},
		{"react", reactFixture(), "from langchain.agents import create_react_agent, AgentExecutor"},
		{"react-lcel", func() *workflow.Config {
			cfg := reactFixture()
			cfg.Framework = workflow.FrameworkReactLCEL
			return cfg
		}(), "StrOutputParser()"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			code, err := Render(tt.cfg)
			if err != nil {
				t.Fatalf("Render() failed: %v", err)
			}
			if !strings.Contains(code, tt.contains) {
				t.Errorf("Expected output to contain %q", tt.contains)
			}
		})
	}
}

func TestRender_UnsupportedFramework(t *testing.T) {
	cfg := crewFixture()
	cfg.Framework = "autogen"

	_, err := Render(cfg)

	var unsupported *workflow.UnsupportedFrameworkError
	if !errors.As(err, &unsupported) {
		t.Fatalf("Expected UnsupportedFrameworkError, got %T: %v", err, err)
	}
	if unsupported.Requested != "autogen" {
		t.Errorf("Expected requested framework to be recorded, got %q", unsupported.Requested)
	}
}

func TestRender_Deterministic(t *testing.T) {
	configs := map[string]*workflow.Config{
		"crewai":    crewFixture(),
		"langgraph": graphFixture(),
		"react":     reactFixture(),
	}

	for name, cfg := range configs {
		t.Run(name, func(t *testing.T) {
			first, err := Render(cfg)
			if err != nil {
				t.Fatalf("Render() failed: %v", err)
			}
			second, err := Render(cfg)
			if err != nil {
				t.Fatalf("Render() failed: %v", err)
			}
			if first != second {
				t.Error("Expected byte-identical output across runs")
			}
		})
	}
}

func TestRender_DoesNotMutateConfiguration(t *testing.T) {
	cfg := crewFixture()
	before, err := cfg.JSON()
	if err != nil {
		t.Fatalf("JSON() failed: %v", err)
	}

	if _, err := Render(cfg); err != nil {
		t.Fatalf("Render() failed: %v", err)
	}

	after, err := cfg.JSON()
	if err != nil {
		t.Fatalf("JSON() failed: %v", err)
	}
	if !bytes.Equal(before, after) {
		t.Error("Expected the configuration to stay untouched by rendering")
	}
}

func TestSupported(t *testing.T) {
	expected := []string{"crewai", "crewai-flow", "langgraph", "react", "react-lcel"}

	got := Supported()

	if len(got) != len(expected) {
		t.Fatalf("Expected %d frameworks, got %d", len(expected), len(got))
	}
	for i, name := range expected {
		if got[i] != name {
			t.Errorf("Expected %q at position %d, got %q", name, i, got[i])
		}
	}
}
