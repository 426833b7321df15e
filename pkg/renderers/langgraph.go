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
	"fmt"
	"strings"

	"github.com/crewforge/crewforge/pkg/workflow"
)

// edgeGroup collects every edge leaving one source, in declaration order.
// A group is conditional as soon as any of its edges carries a condition,
// and then renders as one router function plus add_conditional_edges.
type edgeGroup struct {
	source      string
	targets     []workflow.Edge
	conditional bool
}

// renderLangGraph emits a LangGraph state machine: a typed state, one tool
// binding per declared tool, one agent function per agent, node
// registrations, then edges in declaration order. Edges targeting END wire
// the terminal; conditional edges render as a branching router keyed on the
// edge's condition text. The entry point is the first marked entry node, or
// the first node when none is marked.
func renderLangGraph(cfg *workflow.Config) string {
	groups := groupEdges(cfg.Edges)

	var b strings.Builder
	b.WriteString("from langgraph.graph import StateGraph, END\n")
	b.WriteString("from langchain_core.messages import BaseMessage, HumanMessage\n")
	if len(cfg.Tools) > 0 {
		b.WriteString("from langchain_core.tools import BaseTool\n")
	}
	b.WriteString("from langchain_openai import ChatOpenAI\n")
	b.WriteString("from typing import List, TypedDict\n\n")

	b.WriteString("# Define state\n")
	b.WriteString("class AgentState(TypedDict):\n")
	b.WriteString("    messages: List[BaseMessage]\n")
	b.WriteString("    next: str\n\n")

	if len(cfg.Tools) > 0 {
		writeGraphTools(&b, cfg.Tools)
	}

	for _, agent := range cfg.Agents {
		fmt.Fprintf(&b, "# Agent: %s\n", agent.Name)
		fmt.Fprintf(&b, "def %s(state: AgentState) -> AgentState:\n", agentFunc(agent.Name))
		fmt.Fprintf(&b, "    \"\"\"Agent that handles %s.\"\"\"\n", pyDoc(agent.Role))
		fmt.Fprintf(&b, "    llm = ChatOpenAI(model=%s)\n", pyDq(modelHint(agent)))
		b.WriteString("    messages = state[\"messages\"]\n")
		b.WriteString("    response = llm.invoke(messages)\n")
		b.WriteString("    return {\n")
		b.WriteString("        \"messages\": messages + [response],\n")
		b.WriteString("        \"next\": state.get(\"next\", \"\")\n")
		b.WriteString("    }\n\n")
	}

	if hasConditional(groups) {
		b.WriteString("# Routing logic\n")
		for _, g := range groups {
			if g.conditional {
				writeRouter(&b, g)
			}
		}
	}

	b.WriteString("# Define the graph\n")
	b.WriteString("workflow = StateGraph(AgentState)\n\n")

	b.WriteString("# Add nodes to the graph\n")
	for _, node := range cfg.Nodes {
		fmt.Fprintf(&b, "workflow.add_node(%s, %s)\n", pyDq(node.Name), agentFunc(node.Agent))
	}

	b.WriteString("\n# Wire the edges\n")
	for _, g := range groups {
		if g.conditional {
			writeConditionalEdges(&b, g)
			continue
		}
		for _, e := range g.targets {
			if e.Target == workflow.EndNode {
				fmt.Fprintf(&b, "workflow.add_edge(%s, END)\n", pyDq(e.Source))
			} else {
				fmt.Fprintf(&b, "workflow.add_edge(%s, %s)\n", pyDq(e.Source), pyDq(e.Target))
			}
		}
	}

	entry := cfg.EntryNodes()[0]
	fmt.Fprintf(&b, "\n# Set entry point\nworkflow.set_entry_point(%s)\n\n", pyDq(entry.Name))

	b.WriteString("# Compile the graph\n")
	b.WriteString("app = workflow.compile()\n\n")

	b.WriteString("# Run the graph\n")
	b.WriteString("def run_agent(query: str) -> List[BaseMessage]:\n")
	b.WriteString("    \"\"\"Run the agent on a query.\"\"\"\n")
	b.WriteString("    result = app.invoke({\n")
	b.WriteString("        \"messages\": [HumanMessage(content=query)],\n")
	b.WriteString("        \"next\": \"\"\n")
	b.WriteString("    })\n")
	b.WriteString("    return result[\"messages\"]\n\n")

	b.WriteString("# Example usage\n")
	b.WriteString("if __name__ == \"__main__\":\n")
	b.WriteString("    result = run_agent(\"Your query here\")\n")
	b.WriteString("    for message in result:\n")
	b.WriteString("        print(f\"{message.type}: {message.content}\")\n")

	return b.String()
}

// writeGraphTools emits a BaseTool subclass and an instance per declared
// tool, then the aggregate tools list, all in declaration order.
func writeGraphTools(b *strings.Builder, tools []workflow.Tool) {
	b.WriteString("# Define tools\n")
	for _, tool := range tools {
		id := workflow.Identifier(tool.Name)
		description := tool.Description
		if description == "" {
			description = fmt.Sprintf("Tool for %s operations", tool.Name)
		}
		fmt.Fprintf(b, "class %s(BaseTool):\n", toolClass(tool.Name))
		fmt.Fprintf(b, "    name = %s\n", pyDq(tool.Name))
		fmt.Fprintf(b, "    description = %s\n\n", pyDq(description))
		b.WriteString("    def _run(self, query: str) -> str:\n")
		b.WriteString("        # TODO: implement actual functionality\n")
		fmt.Fprintf(b, "        return f\"Result from %s: {query}\"\n\n", id)
		b.WriteString("    async def _arun(self, query: str) -> str:\n")
		b.WriteString("        return self._run(query)\n\n")
		fmt.Fprintf(b, "%s = %s()\n\n", toolVar(tool.Name), toolClass(tool.Name))
	}

	vars := make([]string, len(tools))
	for i, t := range tools {
		vars[i] = toolVar(t.Name)
	}
	fmt.Fprintf(b, "tools = [%s]\n\n", strings.Join(vars, ", "))
}

// writeRouter emits the branching function for one conditional source. The
// router honors an explicit next marker in state and otherwise falls to the
// first declared target; each edge's condition is kept as guidance.
func writeRouter(b *strings.Builder, g edgeGroup) {
	fmt.Fprintf(b, "def %s(state: AgentState) -> str:\n", routerFunc(g.source))
	fmt.Fprintf(b, "    \"\"\"Route after %s.\"\"\"\n", pyDoc(g.source))
	for _, e := range g.targets {
		condition := e.Condition
		if condition == "" {
			condition = "otherwise"
		}
		fmt.Fprintf(b, "    # %s -> %s\n", condition, e.Target)
	}
	b.WriteString("    next_step = state.get(\"next\", \"\")\n")
	b.WriteString("    if next_step:\n")
	b.WriteString("        return next_step\n")
	fmt.Fprintf(b, "    return %s\n\n", pyDq(g.targets[0].Target))
}

// writeConditionalEdges wires one conditional source into the graph with a
// target map covering every declared branch.
func writeConditionalEdges(b *strings.Builder, g edgeGroup) {
	entries := make([]string, len(g.targets))
	for i, e := range g.targets {
		if e.Target == workflow.EndNode {
			entries[i] = fmt.Sprintf("%s: END", pyDq(e.Target))
		} else {
			entries[i] = fmt.Sprintf("%s: %s", pyDq(e.Target), pyDq(e.Target))
		}
	}
	fmt.Fprintf(b, "workflow.add_conditional_edges(%s, %s, {%s})\n",
		pyDq(g.source), routerFunc(g.source), strings.Join(entries, ", "))
}

func routerFunc(source string) string {
	return "route_" + workflow.Identifier(source)
}

// groupEdges batches edges by source while preserving the declaration order
// of both sources and targets.
func groupEdges(edges []workflow.Edge) []edgeGroup {
	var groups []edgeGroup
	index := make(map[string]int)
	for _, e := range edges {
		i, seen := index[e.Source]
		if !seen {
			i = len(groups)
			index[e.Source] = i
			groups = append(groups, edgeGroup{source: e.Source})
		}
		groups[i].targets = append(groups[i].targets, e)
		if e.Condition != "" {
			groups[i].conditional = true
		}
	}
	return groups
}

func hasConditional(groups []edgeGroup) bool {
	for _, g := range groups {
		if g.conditional {
			return true
		}
	}
	return false
}
