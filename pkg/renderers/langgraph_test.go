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
	"strings"
	"testing"

	"github.com/crewforge/crewforge/pkg/workflow"
)

func TestRenderLangGraph_Basic(t *testing.T) {
	code := renderLangGraph(graphFixture())

	for _, want := range []string{
		"class AgentState(TypedDict):",
		"class SearchTool(BaseTool):",
		"    name = \"search\"",
		"search_tool = SearchTool()",
		"tools = [search_tool]",
		"def researcher_agent(state: AgentState) -> AgentState:",
		"def writer_agent(state: AgentState) -> AgentState:",
		"workflow = StateGraph(AgentState)",
		"workflow.add_node(\"research\", researcher_agent)",
		"workflow.add_node(\"write\", writer_agent)",
		"workflow.add_edge(\"research\", \"write\")",
		"workflow.add_edge(\"write\", END)",
		"workflow.set_entry_point(\"research\")",
		"app = workflow.compile()",
	} {
		if !strings.Contains(code, want) {
			t.Errorf("Expected output to contain %q", want)
		}
	}
}

func TestRenderLangGraph_ModelHints(t *testing.T) {
	code := renderLangGraph(graphFixture())

	if !strings.Contains(code, "llm = ChatOpenAI(model=\"gpt-4.1-mini\")") {
		t.Error("Expected the default model for agents without a hint")
	}
	if !strings.Contains(code, "llm = ChatOpenAI(model=\"gpt-4o\")") {
		t.Error("Expected the agent's own llm hint to be honored")
	}
}

func TestRenderLangGraph_EntryPointFallback(t *testing.T) {
	cfg := graphFixture()
	cfg.Nodes[0].IsEntryPoint = false

	code := renderLangGraph(cfg)

	if !strings.Contains(code, "workflow.set_entry_point(\"research\")") {
		t.Error("Expected the first declared node as entry fallback")
	}
}

func TestRenderLangGraph_MarkedEntryWins(t *testing.T) {
	cfg := graphFixture()
	cfg.Nodes[0].IsEntryPoint = false
	cfg.Nodes[1].IsEntryPoint = true

	code := renderLangGraph(cfg)

	if !strings.Contains(code, "workflow.set_entry_point(\"write\")") {
		t.Error("Expected the marked entry node to win over declaration order")
	}
}

func TestRenderLangGraph_ConditionalEdges(t *testing.T) {
	cfg := graphFixture()
	cfg.Nodes = append(cfg.Nodes, workflow.Node{Name: "review", Agent: "writer"})
	cfg.Edges = []workflow.Edge{
		{Source: "research", Target: "write"},
		{Source: "write", Target: "review"},
		{Source: "review", Target: "write", Condition: "the draft needs revision"},
		{Source: "review", Target: workflow.EndNode},
	}

	code := renderLangGraph(cfg)

	for _, want := range []string{
		"def route_review(state: AgentState) -> str:",
		"    # the draft needs revision -> write",
		"    # otherwise -> END",
		"    return \"write\"",
		"workflow.add_conditional_edges(\"review\", route_review, {\"write\": \"write\", \"END\": END})",
		"workflow.add_edge(\"research\", \"write\")",
	} {
		if !strings.Contains(code, want) {
			t.Errorf("Expected output to contain %q", want)
		}
	}

	if strings.Contains(code, "workflow.add_edge(\"review\"") {
		t.Error("Expected conditional source edges to wire only through add_conditional_edges")
	}
}

func TestRenderLangGraph_NoTools(t *testing.T) {
	cfg := graphFixture()
	cfg.Tools = nil
	cfg.Agents[0].Tools = nil

	code := renderLangGraph(cfg)

	if strings.Contains(code, "BaseTool") {
		t.Error("Did not expect tool material without declared tools")
	}
	if strings.Contains(code, "tools = [") {
		t.Error("Did not expect a tools list without declared tools")
	}
}

func TestRenderLangGraph_ToolDescriptionFallback(t *testing.T) {
	cfg := graphFixture()
	cfg.Tools = []workflow.Tool{{Name: "scraper"}}

	code := renderLangGraph(cfg)

	if !strings.Contains(code, "description = \"Tool for scraper operations\"") {
		t.Error("Expected a generated description for tools without one")
	}
}
