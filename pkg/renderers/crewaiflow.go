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

// renderCrewFlow emits an event-driven CrewAI Flow: a typed state model, a
// start step capturing the inbound query, one listener step per task
// chained to its predecessor, and a final aggregation step. A task carrying
// a condition renders as a branch around its kickoff.
func renderCrewFlow(cfg *workflow.Config) string {
	var b strings.Builder
	b.WriteString("from crewai import Agent, Task, Crew\n")
	b.WriteString("from crewai.flow.flow import Flow, listen, start\n")
	b.WriteString("from typing import Dict, Any\n")
	b.WriteString("from pydantic import BaseModel, Field\n\n")

	b.WriteString("# Define flow state\n")
	b.WriteString("class AgentState(BaseModel):\n")
	b.WriteString("    query: str = Field(default=\"\")\n")
	b.WriteString("    results: Dict[str, Any] = Field(default_factory=dict)\n")
	b.WriteString("    current_step: str = Field(default=\"\")\n\n")

	for _, agent := range cfg.Agents {
		fmt.Fprintf(&b, "# Agent: %s\n", agent.Name)
		fmt.Fprintf(&b, "%s = Agent(\n", agentVar(agent.Name))
		fmt.Fprintf(&b, "    role=%s,\n", pyStr(agent.Role))
		fmt.Fprintf(&b, "    goal=%s,\n", pyStr(agent.Goal))
		fmt.Fprintf(&b, "    backstory=%s,\n", pyStr(agent.Backstory))
		fmt.Fprintf(&b, "    verbose=%s,\n", pyBool(boolOr(agent.Verbose, true)))
		fmt.Fprintf(&b, "    allow_delegation=%s,\n", pyBool(boolOr(agent.AllowDelegation, false)))
		fmt.Fprintf(&b, "    tools=%s\n", pyStrList(agent.Tools))
		b.WriteString(")\n\n")
	}

	for _, task := range cfg.Tasks {
		fmt.Fprintf(&b, "# Task: %s\n", task.Name)
		fmt.Fprintf(&b, "%s = Task(\n", taskVar(task.Name))
		fmt.Fprintf(&b, "    description=%s,\n", pyStr(task.Description))
		writeTaskAgent(&b, cfg, task, false)
		fmt.Fprintf(&b, "    expected_output=%s\n", pyStr(task.ExpectedOutput))
		b.WriteString(")\n\n")
	}

	b.WriteString("# Crew Configuration\n")
	b.WriteString("crew = Crew(\n")
	fmt.Fprintf(&b, "    agents=[%s],\n", strings.Join(crewWorkerVars(cfg, false), ", "))
	fmt.Fprintf(&b, "    tasks=[%s],\n", strings.Join(taskVars(cfg.Tasks), ", "))
	b.WriteString("    verbose=True\n")
	b.WriteString(")\n\n")

	writeFlowClass(&b, cfg)

	b.WriteString("# Run the flow\n")
	b.WriteString("def run_workflow(query: str):\n")
	b.WriteString("    flow = WorkflowFlow()\n")
	b.WriteString("    flow.state.query = query\n")
	b.WriteString("    result = flow.kickoff()\n")
	b.WriteString("    return result\n\n")

	b.WriteString("# Generate a visualization of the flow\n")
	b.WriteString("def visualize_flow():\n")
	b.WriteString("    flow = WorkflowFlow()\n")
	b.WriteString("    flow.plot(\"workflow_flow\")\n")
	b.WriteString("    print(\"Flow visualization saved to workflow_flow.html\")\n\n")

	b.WriteString("# Example usage\n")
	b.WriteString("if __name__ == \"__main__\":\n")
	b.WriteString("    result = run_workflow(\"Your query here\")\n")
	b.WriteString("    print(result)\n")

	return b.String()
}

// writeFlowClass emits the Flow subclass: start step, one listener per
// task, branch guards for conditional tasks, aggregation tail.
func writeFlowClass(b *strings.Builder, cfg *workflow.Config) {
	b.WriteString("# Define CrewAI Flow\n")
	b.WriteString("class WorkflowFlow(Flow[AgentState]):\n")

	firstStep := "completed"
	if len(cfg.Tasks) > 0 {
		firstStep = cfg.Tasks[0].Name
	}

	b.WriteString("    @start()\n")
	b.WriteString("    def initial_input(self):\n")
	b.WriteString("        \"\"\"Process the initial user query.\"\"\"\n")
	b.WriteString("        print(\"Starting workflow...\")\n")
	fmt.Fprintf(b, "        self.state.current_step = %s\n", pyDq(firstStep))
	b.WriteString("        return self.state\n\n")

	previous := "initial_input"
	for i, task := range cfg.Tasks {
		step := "execute_" + workflow.Identifier(task.Name)
		nextStep := "completed"
		if i < len(cfg.Tasks)-1 {
			nextStep = cfg.Tasks[i+1].Name
		}

		fmt.Fprintf(b, "    @listen(%s)\n", pyStr(previous))
		fmt.Fprintf(b, "    def %s(self, state):\n", step)
		fmt.Fprintf(b, "        \"\"\"Execute the %s task.\"\"\"\n", pyDoc(task.Name))
		fmt.Fprintf(b, "        print(%s)\n", pyDq("Executing task: "+task.Name))

		if task.Condition != "" {
			fmt.Fprintf(b, "        # Condition: %s\n", task.Condition)
			fmt.Fprintf(b, "        if not self.should_run_%s(state):\n", workflow.Identifier(task.Name))
			fmt.Fprintf(b, "            self.state.current_step = %s\n", pyDq(nextStep))
			b.WriteString("            return self.state\n")
		}

		b.WriteString("        result = crew.kickoff(\n")
		fmt.Fprintf(b, "            tasks=[%s],\n", taskVar(task.Name))
		b.WriteString("            inputs={\n")
		b.WriteString("                \"query\": self.state.query,\n")
		b.WriteString("                \"previous_results\": self.state.results\n")
		b.WriteString("            }\n")
		b.WriteString("        )\n")
		fmt.Fprintf(b, "        self.state.results[%s] = result\n", pyDq(task.Name))
		fmt.Fprintf(b, "        self.state.current_step = %s\n", pyDq(nextStep))
		b.WriteString("        return self.state\n\n")

		previous = step
	}

	for _, task := range cfg.Tasks {
		if task.Condition == "" {
			continue
		}
		fmt.Fprintf(b, "    def should_run_%s(self, state) -> bool:\n", workflow.Identifier(task.Name))
		fmt.Fprintf(b, "        \"\"\"Branch predicate: %s.\"\"\"\n", pyDoc(task.Condition))
		b.WriteString("        # TODO: evaluate the condition against state.results\n")
		b.WriteString("        return True\n\n")
	}

	fmt.Fprintf(b, "    @listen(%s)\n", pyStr(previous))
	b.WriteString("    def aggregate_results(self, state):\n")
	b.WriteString("        \"\"\"Combine all results from tasks.\"\"\"\n")
	b.WriteString("        print(\"Workflow completed, aggregating results...\")\n")
	b.WriteString("        combined_result = \"\"\n")
	b.WriteString("        for task_name, result in state.results.items():\n")
	b.WriteString("            combined_result += f\"\\n\\n=== {task_name} ===\\n{result}\"\n")
	b.WriteString("        return combined_result\n\n")
}
