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

func TestRenderReact_Basic(t *testing.T) {
	code := renderReact(reactFixture())

	for _, want := range []string{
		"class SearchTool(BaseTool):",
		"    def _run(self, query) -> str:",
		"    async def _arun(self, query) -> str:",
		"        return self._run(query)",
		"search_tool = SearchTool()",
		"tools = [search_tool]",
		"llm = ChatOpenAI(model=\"gpt-4.1-mini\")",
		"You are Q&A Assistant. Your goal is Answer questions accurately. Use tools when needed.",
		"agent = create_react_agent(llm, tools, react_prompt)",
		"agent_executor = AgentExecutor(agent=agent, tools=tools, verbose=True)",
		"'intermediate_steps' in response",
	} {
		if !strings.Contains(code, want) {
			t.Errorf("Expected output to contain %q", want)
		}
	}
}

func TestRenderReact_ExamplesInPreamble(t *testing.T) {
	code := renderReact(reactFixture())

	for _, want := range []string{
		"Example:",
		"Question: What is the tallest mountain in Europe?",
		"Thought: I should search for the answer.",
		"Action: search",
		"Observation: Mount Elbrus is the tallest mountain in Europe.",
		"Final Answer: Mount Elbrus",
	} {
		if !strings.Contains(code, want) {
			t.Errorf("Expected preamble to contain %q", want)
		}
	}
}

func TestRenderReact_NoExamples(t *testing.T) {
	cfg := reactFixture()
	cfg.Examples = nil

	code := renderReact(cfg)

	if strings.Contains(code, "Example:") {
		t.Error("Did not expect example material without examples")
	}
}

func TestRenderReact_MultiParameterTool(t *testing.T) {
	cfg := reactFixture()
	cfg.Tools = []workflow.Tool{
		{Name: "calculator", Description: "Evaluates expressions", Parameters: []string{"expression", "precision"}},
	}

	code := renderReact(cfg)

	for _, want := range []string{
		"class CalculatorTool(BaseTool):",
		"    def _run(self, expression, precision) -> str:",
		"    async def _arun(self, expression, precision) -> str:",
		"        return self._run(expression, precision)",
		"calculator_tool = CalculatorTool()",
	} {
		if !strings.Contains(code, want) {
			t.Errorf("Expected output to contain %q", want)
		}
	}
}

func TestRenderReact_ToolNameStutter(t *testing.T) {
	cfg := reactFixture()
	cfg.Tools = []workflow.Tool{
		{Name: "search_tool", Description: "Searches the web", Parameters: []string{"query"}},
	}

	code := renderReact(cfg)

	if !strings.Contains(code, "class SearchTool(BaseTool):") {
		t.Error("Expected the class name to avoid a ToolTool stutter")
	}
	if !strings.Contains(code, "search_tool = SearchTool()") {
		t.Error("Expected the instance variable to avoid a _tool_tool stutter")
	}
}

func TestRenderReactLCEL_Chain(t *testing.T) {
	cfg := reactFixture()
	cfg.Framework = workflow.FrameworkReactLCEL

	code := renderReactLCEL(cfg)

	for _, want := range []string{
		"from langchain_core.runnables import RunnablePassthrough",
		"MessagesPlaceholder(\"history\"),",
		"chain = (",
		"    {\"input\": RunnablePassthrough(), \"history\": RunnablePassthrough()}",
		"    | react_prompt",
		"    | llm",
		"    | StrOutputParser()",
		"def run_agent(query: str, history: List[str] = []) -> str:",
		"    response = chain.invoke({\"input\": query, \"history\": history})",
	} {
		if !strings.Contains(code, want) {
			t.Errorf("Expected output to contain %q", want)
		}
	}

	if strings.Contains(code, "AgentExecutor") {
		t.Error("Did not expect an executor loop in the LCEL render")
	}
}

func TestRenderReactLCEL_SharesPreamble(t *testing.T) {
	cfg := reactFixture()
	cfg.Framework = workflow.FrameworkReactLCEL

	classic := renderReact(reactFixture())
	lcel := renderReactLCEL(cfg)

	preamble := pyDq(reactSystemMessage(reactFixture()))
	if !strings.Contains(classic, preamble) || !strings.Contains(lcel, preamble) {
		t.Error("Expected both ReAct renders to share the same system preamble")
	}
}
