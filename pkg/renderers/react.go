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

// renderReact emits the classic single-agent ReAct pattern: parameterized
// tool bindings, a prompt template seeded from the first agent, the agent
// constructor, and an executor that prints intermediate steps. Few-shot
// examples, when present, ride along in the system preamble.
func renderReact(cfg *workflow.Config) string {
	var b strings.Builder
	b.WriteString("from langchain_core.tools import BaseTool\n")
	b.WriteString("from langchain_core.prompts import ChatPromptTemplate\n")
	b.WriteString("from langchain_openai import ChatOpenAI\n")
	b.WriteString("from langchain.agents import create_react_agent, AgentExecutor\n\n")

	writeReactTools(&b, cfg.Tools)

	agent := cfg.Agents[0]
	fmt.Fprintf(&b, "llm = ChatOpenAI(model=%s)\n\n", pyDq(modelHint(agent)))

	b.WriteString("react_prompt = ChatPromptTemplate.from_messages([\n")
	fmt.Fprintf(&b, "    (\"system\", %s),\n", pyDq(reactSystemMessage(cfg)))
	b.WriteString("    (\"human\", \"{input}\")\n")
	b.WriteString("])\n\n")

	b.WriteString("agent = create_react_agent(llm, tools, react_prompt)\n")
	b.WriteString("agent_executor = AgentExecutor(agent=agent, tools=tools, verbose=True)\n\n")

	b.WriteString("def run_agent(query: str) -> str:\n")
	b.WriteString("    response = agent_executor.invoke({\"input\": query})\n")
	b.WriteString("    # Show the intermediate trace when available\n")
	b.WriteString("    try:\n")
	b.WriteString("        if isinstance(response, dict) and 'intermediate_steps' in response:\n")
	b.WriteString("            print('--- Agent Trace ---')\n")
	b.WriteString("            for step in response['intermediate_steps']:\n")
	b.WriteString("                print(step)\n")
	b.WriteString("            print('-------------------')\n")
	b.WriteString("    except Exception:\n")
	b.WriteString("        pass\n")
	b.WriteString("    return response.get(\"output\", \"No response generated\") if isinstance(response, dict) else str(response)\n\n")

	b.WriteString("if __name__ == \"__main__\":\n")
	b.WriteString("    result = run_agent(\"Your query here\")\n")
	b.WriteString("    print(result)\n")

	return b.String()
}

// writeReactTools emits a BaseTool subclass per declared tool with the
// tool's parameters as the _run signature, an instance per class, and the
// aggregate tools list, in declaration order.
func writeReactTools(b *strings.Builder, tools []workflow.Tool) {
	b.WriteString("# Define tools\n")
	for _, tool := range tools {
		params := strings.Join(tool.Parameters, ", ")
		signature := "self"
		if params != "" {
			signature = "self, " + params
		}

		fmt.Fprintf(b, "class %s(BaseTool):\n", toolClass(tool.Name))
		fmt.Fprintf(b, "    name = %s\n", pyDq(tool.Name))
		fmt.Fprintf(b, "    description = %s\n\n", pyDq(tool.Description))
		fmt.Fprintf(b, "    def _run(%s) -> str:\n", signature)
		b.WriteString("        try:\n")
		b.WriteString("            # TODO: implement actual functionality\n")
		b.WriteString("            return f\"Executed {self.name} with inputs: {locals()}\"\n")
		b.WriteString("        except Exception as e:\n")
		b.WriteString("            return f\"Error in {self.name}: {str(e)}\"\n\n")
		fmt.Fprintf(b, "    async def _arun(%s) -> str:\n", signature)
		fmt.Fprintf(b, "        return self._run(%s)\n\n", params)
		fmt.Fprintf(b, "%s = %s()\n\n", toolVar(tool.Name), toolClass(tool.Name))
	}

	vars := make([]string, len(tools))
	for i, t := range tools {
		vars[i] = toolVar(t.Name)
	}
	fmt.Fprintf(b, "tools = [%s]\n\n", strings.Join(vars, ", "))
}

// reactSystemMessage seeds the prompt from the first agent and appends any
// few-shot reasoning traces as worked examples.
func reactSystemMessage(cfg *workflow.Config) string {
	agent := cfg.Agents[0]

	var b strings.Builder
	fmt.Fprintf(&b, "You are %s. Your goal is %s. Use tools when needed.", agent.Role, agent.Goal)

	for _, ex := range cfg.Examples {
		b.WriteString("\n\nExample:")
		if ex.Query != "" {
			b.WriteString("\nQuestion: " + ex.Query)
		}
		if ex.Thought != "" {
			b.WriteString("\nThought: " + ex.Thought)
		}
		if ex.Action != "" {
			b.WriteString("\nAction: " + ex.Action)
		}
		if ex.Observation != "" {
			b.WriteString("\nObservation: " + ex.Observation)
		}
		if ex.FinalAnswer != "" {
			b.WriteString("\nFinal Answer: " + ex.FinalAnswer)
		}
	}
	return b.String()
}
