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

package workflow

import "fmt"

// Validate checks every structural invariant of the configuration for its
// framework. Violations are collected into a single ValidationError; a nil
// return means the configuration is safe to hand to a renderer unchecked.
func (c *Config) Validate() error {
	v := &validator{cfg: c}

	v.checkFramework()
	v.checkAgents()
	v.checkTools()
	v.checkTasks()
	v.checkGraph()
	v.checkProcess()

	if len(v.problems) == 0 {
		return nil
	}
	return NewValidationError(c.Framework, v.problems)
}

type validator struct {
	cfg      *Config
	problems []Problem
}

func (v *validator) addf(field, format string, args ...any) {
	v.problems = append(v.problems, Problem{
		Field:   field,
		Message: fmt.Sprintf(format, args...),
	})
}

func (v *validator) checkFramework() {
	if v.cfg.Framework == "" {
		v.addf("framework", "framework is required")
		return
	}
	if _, err := ParseFramework(string(v.cfg.Framework)); err != nil {
		v.addf("framework", "unknown framework %q", v.cfg.Framework)
	}
}

func (v *validator) checkAgents() {
	if len(v.cfg.Agents) == 0 {
		v.addf("agents", "at least one agent is required")
		return
	}

	seen := make(map[string]int)
	sanitized := make(map[string]string)
	for i, a := range v.cfg.Agents {
		field := fmt.Sprintf("agents[%d]", i)
		if a.Name == "" {
			v.addf(field+".name", "agent name is required")
			continue
		}
		if prev, dup := seen[a.Name]; dup {
			v.addf(field+".name", "duplicate agent name %q (also agents[%d])", a.Name, prev)
		} else {
			seen[a.Name] = i
		}

		id := Identifier(a.Name)
		if other, clash := sanitized[id]; clash && other != a.Name {
			v.addf(field+".name", "agent name %q collides with %q after sanitization (%s)", a.Name, other, id)
		} else {
			sanitized[id] = a.Name
		}

		if a.Role == "" {
			v.addf(field+".role", "agent role is required")
		}
		if a.Goal == "" {
			v.addf(field+".goal", "agent goal is required")
		}
		for j, tool := range a.Tools {
			if _, ok := v.cfg.ToolByName(tool); !ok {
				v.addf(fmt.Sprintf("%s.tools[%d]", field, j),
					"agent %q references unknown tool %q", a.Name, tool)
			}
		}
	}
}

func (v *validator) checkTools() {
	seen := make(map[string]int)
	for i, t := range v.cfg.Tools {
		field := fmt.Sprintf("tools[%d]", i)
		if t.Name == "" {
			v.addf(field+".name", "tool name is required")
			continue
		}
		if prev, dup := seen[t.Name]; dup {
			v.addf(field+".name", "duplicate tool name %q (also tools[%d])", t.Name, prev)
		} else {
			seen[t.Name] = i
		}
	}
}

func (v *validator) checkTasks() {
	if v.cfg.Framework.UsesTasks() && len(v.cfg.Tasks) == 0 {
		v.addf("tasks", "at least one task is required for %s", v.cfg.Framework)
		return
	}

	names := make(map[string]int)
	sanitized := make(map[string]string)
	for i, t := range v.cfg.Tasks {
		field := fmt.Sprintf("tasks[%d]", i)
		if t.Name == "" {
			v.addf(field+".name", "task name is required")
			continue
		}
		if prev, dup := names[t.Name]; dup {
			v.addf(field+".name", "duplicate task name %q (also tasks[%d])", t.Name, prev)
		} else {
			names[t.Name] = i
		}

		id := Identifier(t.Name)
		if other, clash := sanitized[id]; clash && other != t.Name {
			v.addf(field+".name", "task name %q collides with %q after sanitization (%s)", t.Name, other, id)
		} else {
			sanitized[id] = t.Name
		}

		if t.Description == "" {
			v.addf(field+".description", "task description is required")
		}
		if t.ExpectedOutput == "" {
			v.addf(field+".expected_output", "task expected output is required")
		}
		if t.Agent != "" {
			if _, ok := v.cfg.AgentByName(t.Agent); !ok {
				v.addf(field+".agent", "task %q references unknown agent %q", t.Name, t.Agent)
			}
		}
		for j, tool := range t.Tools {
			if _, ok := v.cfg.ToolByName(tool); !ok {
				v.addf(fmt.Sprintf("%s.tools[%d]", field, j),
					"task %q references unknown tool %q", t.Name, tool)
			}
		}
		for j, dep := range t.DependsOn {
			if _, ok := names[dep]; !ok && !taskDeclared(v.cfg.Tasks, dep) {
				v.addf(fmt.Sprintf("%s.depends_on[%d]", field, j),
					"task %q depends on unknown task %q", t.Name, dep)
			}
		}
	}

	v.checkTaskCycles()
}

func taskDeclared(tasks []Task, name string) bool {
	for _, t := range tasks {
		if t.Name == name {
			return true
		}
	}
	return false
}

// checkTaskCycles runs a three-color DFS over the depends_on relation.
func (v *validator) checkTaskCycles() {
	const (
		white = iota
		gray
		black
	)

	deps := make(map[string][]string, len(v.cfg.Tasks))
	index := make(map[string]int, len(v.cfg.Tasks))
	for i, t := range v.cfg.Tasks {
		deps[t.Name] = t.DependsOn
		index[t.Name] = i
	}

	color := make(map[string]int, len(deps))
	reported := make(map[string]bool)

	var visit func(name string) bool
	visit = func(name string) bool {
		color[name] = gray
		for _, dep := range deps[name] {
			if _, known := deps[dep]; !known {
				continue // dangling reference, reported separately
			}
			switch color[dep] {
			case gray:
				if !reported[name] {
					v.addf(fmt.Sprintf("tasks[%d].depends_on", index[name]),
						"dependency cycle between task %q and task %q", name, dep)
					reported[name] = true
				}
				return true
			case white:
				if visit(dep) {
					return true
				}
			}
		}
		color[name] = black
		return false
	}

	for _, t := range v.cfg.Tasks {
		if color[t.Name] == white {
			visit(t.Name)
		}
	}
}

func (v *validator) checkGraph() {
	if v.cfg.Framework.UsesGraph() && len(v.cfg.Nodes) == 0 {
		v.addf("nodes", "at least one node is required for %s", v.cfg.Framework)
		return
	}
	if len(v.cfg.Nodes) == 0 && len(v.cfg.Edges) == 0 {
		return
	}

	names := make(map[string]int)
	for i, n := range v.cfg.Nodes {
		field := fmt.Sprintf("nodes[%d]", i)
		if n.Name == "" {
			v.addf(field+".name", "node name is required")
			continue
		}
		if n.Name == EndNode {
			v.addf(field+".name", "%s is reserved for graph termination", EndNode)
			continue
		}
		if prev, dup := names[n.Name]; dup {
			v.addf(field+".name", "duplicate node name %q (also nodes[%d])", n.Name, prev)
		} else {
			names[n.Name] = i
		}
		if n.Agent == "" {
			v.addf(field+".agent", "node agent is required")
		} else if _, ok := v.cfg.AgentByName(n.Agent); !ok {
			v.addf(field+".agent", "node %q references unknown agent %q", n.Name, n.Agent)
		}
	}

	outgoing := make(map[string][]string)
	for i, e := range v.cfg.Edges {
		field := fmt.Sprintf("edges[%d]", i)
		if e.Source == EndNode {
			v.addf(field+".source", "%s cannot be an edge source", EndNode)
		} else if _, ok := names[e.Source]; !ok {
			v.addf(field+".source", "edge references unknown node %q", e.Source)
		}
		if e.Target != EndNode {
			if _, ok := names[e.Target]; !ok {
				v.addf(field+".target", "edge references unknown node %q", e.Target)
			}
		}
		outgoing[e.Source] = append(outgoing[e.Source], e.Target)
	}

	if len(v.cfg.Nodes) == 0 {
		return
	}

	// Reachability from the entry set. Unreachable nodes can never run;
	// a graph with no reachable terminal can never stop.
	reachable := make(map[string]bool)
	queue := make([]string, 0, len(v.cfg.Nodes))
	for _, n := range v.cfg.EntryNodes() {
		if !reachable[n.Name] {
			reachable[n.Name] = true
			queue = append(queue, n.Name)
		}
	}
	for len(queue) > 0 {
		current := queue[0]
		queue = queue[1:]
		for _, next := range outgoing[current] {
			if next == EndNode || reachable[next] {
				continue
			}
			if _, declared := names[next]; !declared {
				continue
			}
			reachable[next] = true
			queue = append(queue, next)
		}
	}

	for i, n := range v.cfg.Nodes {
		if n.Name != "" && !reachable[n.Name] {
			v.addf(fmt.Sprintf("nodes[%d]", i),
				"node %q is unreachable from the entry points", n.Name)
		}
	}

	terminalReachable := false
	for _, n := range v.cfg.Nodes {
		if !reachable[n.Name] {
			continue
		}
		if n.IsTerminal || len(outgoing[n.Name]) == 0 {
			terminalReachable = true
			break
		}
		for _, next := range outgoing[n.Name] {
			if next == EndNode {
				terminalReachable = true
				break
			}
		}
		if terminalReachable {
			break
		}
	}
	if !terminalReachable {
		v.addf("edges", "no terminal node is reachable from the entry points")
	}
}

func (v *validator) checkProcess() {
	if v.cfg.Process == "" {
		return
	}
	if !v.cfg.Process.IsSet() {
		v.addf("process", "unknown process type %q", v.cfg.Process)
		return
	}
	if v.cfg.Process == ProcessHierarchical && len(v.cfg.Agents) < 2 {
		v.addf("process", "hierarchical process needs a coordinator and at least one subordinate agent")
	}
}
