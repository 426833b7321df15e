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

// renderReactLCEL emits the ReAct pipeline as a composed LCEL chain instead
// of an imperative executor loop: input shaping, prompt application, model
// invocation, output parsing. Tool bindings and the example-seeded system
// preamble match the classic renderer.
func renderReactLCEL(cfg *workflow.Config) string {
	var b strings.Builder
	b.WriteString("from typing import List\n")
	b.WriteString("from langchain_core.prompts import ChatPromptTemplate, MessagesPlaceholder\n")
	b.WriteString("from langchain_core.output_parsers import StrOutputParser\n")
	b.WriteString("from langchain_core.runnables import RunnablePassthrough\n")
	b.WriteString("from langchain_openai import ChatOpenAI\n")
	b.WriteString("from langchain_core.tools import BaseTool\n\n")

	writeReactTools(&b, cfg.Tools)

	agent := cfg.Agents[0]
	fmt.Fprintf(&b, "llm = ChatOpenAI(model=%s)\n\n", pyDq(modelHint(agent)))

	b.WriteString("react_prompt = ChatPromptTemplate.from_messages([\n")
	fmt.Fprintf(&b, "    (\"system\", %s),\n", pyDq(reactSystemMessage(cfg)))
	b.WriteString("    MessagesPlaceholder(\"history\"),\n")
	b.WriteString("    (\"human\", \"{input}\")\n")
	b.WriteString("])\n\n")

	b.WriteString("chain = (\n")
	b.WriteString("    {\"input\": RunnablePassthrough(), \"history\": RunnablePassthrough()}\n")
	b.WriteString("    | react_prompt\n")
	b.WriteString("    | llm\n")
	b.WriteString("    | StrOutputParser()\n")
	b.WriteString(")\n\n")

	b.WriteString("def run_agent(query: str, history: List[str] = []) -> str:\n")
	b.WriteString("    response = chain.invoke({\"input\": query, \"history\": history})\n")
	b.WriteString("    return response\n\n")

	b.WriteString("if __name__ == \"__main__\":\n")
	b.WriteString("    result = run_agent(\"Your query here\")\n")
	b.WriteString("    print(result)\n")

	return b.String()
}
