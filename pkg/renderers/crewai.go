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

// renderCrew emits a plain CrewAI crew: agent declarations, task
// declarations bound to agents, and a crew assembly whose execution mode
// follows the resolved process type. Hierarchical crews pass the first
// agent as manager with bounded iterations and execution time; the
// remaining agents form the worker set.
func renderCrew(cfg *workflow.Config) string {
	hierarchical := cfg.Process == workflow.ProcessHierarchical

	var b strings.Builder
	b.WriteString("from crewai import Agent, Task, Crew, Process\n\n")

	for i, agent := range cfg.Agents {
		fmt.Fprintf(&b, "# Agent: %s\n", agent.Name)
		fmt.Fprintf(&b, "%s = Agent(\n", agentVar(agent.Name))
		fmt.Fprintf(&b, "    role=%s,\n", pyStr(agent.Role))
		fmt.Fprintf(&b, "    goal=%s,\n", pyStr(agent.Goal))
		fmt.Fprintf(&b, "    backstory=%s,\n", pyStr(agent.Backstory))
		fmt.Fprintf(&b, "    verbose=%s,\n", pyBool(boolOr(agent.Verbose, true)))
		fmt.Fprintf(&b, "    allow_delegation=%s,\n", pyBool(boolOr(agent.AllowDelegation, false)))
		fmt.Fprintf(&b, "    tools=%s", pyStrList(agent.Tools))
		if hierarchical && i == 0 {
			b.WriteString(",\n    max_iter=5,\n    max_execution_time=300\n")
		} else {
			b.WriteString("\n")
		}
		b.WriteString(")\n\n")
	}

	for _, task := range cfg.Tasks {
		fmt.Fprintf(&b, "# Task: %s\n", task.Name)
		fmt.Fprintf(&b, "%s = Task(\n", taskVar(task.Name))
		fmt.Fprintf(&b, "    description=%s,\n", pyStr(task.Description))
		writeTaskAgent(&b, cfg, task, hierarchical)
		fmt.Fprintf(&b, "    expected_output=%s\n", pyStr(task.ExpectedOutput))
		b.WriteString(")\n\n")
	}

	b.WriteString("# Crew Configuration\n")
	b.WriteString("crew = Crew(\n")
	fmt.Fprintf(&b, "    agents=[%s],\n", strings.Join(crewWorkerVars(cfg, hierarchical), ", "))
	fmt.Fprintf(&b, "    tasks=[%s],\n", strings.Join(taskVars(cfg.Tasks), ", "))
	if hierarchical {
		b.WriteString("    process=Process.hierarchical,\n")
		fmt.Fprintf(&b, "    manager_agent=%s,\n", agentVar(cfg.Agents[0].Name))
	} else {
		b.WriteString("    process=Process.sequential,\n")
	}
	b.WriteString("    verbose=True\n")
	b.WriteString(")\n\n")

	b.WriteString("# Run the workflow\n")
	b.WriteString("def run_workflow(query: str):\n")
	b.WriteString("    \"\"\"Run workflow using CrewAI.\"\"\"\n")
	b.WriteString("    result = crew.kickoff(\n")
	b.WriteString("        inputs={\n")
	b.WriteString("            \"query\": query\n")
	b.WriteString("        }\n")
	b.WriteString("    )\n")
	b.WriteString("    return result\n\n")

	b.WriteString("# Example usage\n")
	b.WriteString("if __name__ == \"__main__\":\n")
	b.WriteString("    result = run_workflow(\"Your query here\")\n")
	b.WriteString("    print(result)\n")

	return b.String()
}

// writeTaskAgent binds a task to its declared agent, or auto-assigns one:
// the first worker for hierarchical crews, the first agent otherwise.
func writeTaskAgent(b *strings.Builder, cfg *workflow.Config, task workflow.Task, hierarchical bool) {
	if task.Agent != "" {
		if _, ok := cfg.AgentByName(task.Agent); ok {
			fmt.Fprintf(b, "    agent=%s,\n", agentVar(task.Agent))
			return
		}
	}

	fallback := cfg.Agents[0].Name
	if hierarchical && len(cfg.Agents) > 1 {
		fallback = cfg.Agents[1].Name
	}
	fmt.Fprintf(b, "    # Auto-assigned to: %s\n", fallback)
	fmt.Fprintf(b, "    agent=%s,\n", agentVar(fallback))
}

// crewWorkerVars lists the agent variables handed to the crew. The manager
// of a hierarchical crew is excluded: it arrives via manager_agent.
func crewWorkerVars(cfg *workflow.Config, hierarchical bool) []string {
	agents := cfg.Agents
	if hierarchical && len(agents) > 1 {
		agents = agents[1:]
	}
	vars := make([]string, len(agents))
	for i, a := range agents {
		vars[i] = agentVar(a.Name)
	}
	return vars
}

func taskVars(tasks []workflow.Task) []string {
	vars := make([]string, len(tasks))
	for i, t := range tasks {
		vars[i] = taskVar(t.Name)
	}
	return vars
}
