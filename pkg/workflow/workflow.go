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

// Package workflow defines the framework-neutral configuration model for
// generated multi-agent workflows: agents, tools, tasks, graph topology,
// and execution process. A Config is built once per generation request from
// a validated parse result, never mutated afterwards, and consumed by
// exactly one renderer.
package workflow

import "encoding/json"

// Config is the root aggregate of a generated workflow.
//
// Crew-style frameworks (crewai, crewai-flow) populate Agents, Tools, and
// Tasks. Graph-style frameworks (langgraph) populate Agents, Tools, Nodes,
// and Edges. ReAct-style frameworks (react, react-lcel) populate Agents,
// Tools, and optionally Examples.
type Config struct {
	// Framework is the rendering target.
	Framework Framework `yaml:"framework,omitempty" json:"framework,omitempty" jsonschema:"title=Framework,description=Rendering target,enum=crewai,enum=crewai-flow,enum=langgraph,enum=react,enum=react-lcel"`

	// Process is the execution topology. Left empty by the model or caller,
	// it is decided by the process selector before rendering.
	Process ProcessType `yaml:"process,omitempty" json:"process,omitempty" jsonschema:"title=Process,description=Execution topology,enum=sequential,enum=hierarchical"`

	// ProcessReason optionally carries the model's one-line justification
	// for its recommended process.
	ProcessReason string `yaml:"process_reason,omitempty" json:"process_reason,omitempty" jsonschema:"title=Process Reason,description=Model's justification for the recommended process"`

	// Agents are the workflow members. At least one is required.
	Agents []Agent `yaml:"agents" json:"agents" jsonschema:"title=Agents,description=Workflow members"`

	// Tools declares the capabilities agents and tasks may reference.
	Tools []Tool `yaml:"tools,omitempty" json:"tools,omitempty" jsonschema:"title=Tools,description=Declared capabilities"`

	// Tasks are the units of work for crew-style frameworks.
	Tasks []Task `yaml:"tasks,omitempty" json:"tasks,omitempty" jsonschema:"title=Tasks,description=Units of work for crew-style frameworks"`

	// Nodes are the vertices for graph-style frameworks.
	Nodes []Node `yaml:"nodes,omitempty" json:"nodes,omitempty" jsonschema:"title=Nodes,description=Vertices for graph-style frameworks"`

	// Edges connect nodes for graph-style frameworks.
	Edges []Edge `yaml:"edges,omitempty" json:"edges,omitempty" jsonschema:"title=Edges,description=Connections for graph-style frameworks"`

	// Examples are few-shot reasoning traces for ReAct-style frameworks.
	Examples []Example `yaml:"examples,omitempty" json:"examples,omitempty" jsonschema:"title=Examples,description=Few-shot reasoning traces for ReAct-style frameworks"`
}

// AgentByName returns the declared agent with the given name.
func (c *Config) AgentByName(name string) (*Agent, bool) {
	for i := range c.Agents {
		if c.Agents[i].Name == name {
			return &c.Agents[i], true
		}
	}
	return nil, false
}

// ToolByName returns the declared tool with the given name.
func (c *Config) ToolByName(name string) (*Tool, bool) {
	for i := range c.Tools {
		if c.Tools[i].Name == name {
			return &c.Tools[i], true
		}
	}
	return nil, false
}

// NodeByName returns the declared node with the given name.
func (c *Config) NodeByName(name string) (*Node, bool) {
	for i := range c.Nodes {
		if c.Nodes[i].Name == name {
			return &c.Nodes[i], true
		}
	}
	return nil, false
}

// EntryNodes returns the nodes execution may start from: every node marked
// as an entry point, or the first declared node when none is marked.
func (c *Config) EntryNodes() []Node {
	var entries []Node
	for _, n := range c.Nodes {
		if n.IsEntryPoint {
			entries = append(entries, n)
		}
	}
	if len(entries) == 0 && len(c.Nodes) > 0 {
		entries = append(entries, c.Nodes[0])
	}
	return entries
}

// ManagerAgent returns the coordinating agent of a hierarchical workflow:
// the first declared agent by convention.
func (c *Config) ManagerAgent() (*Agent, bool) {
	if len(c.Agents) == 0 {
		return nil, false
	}
	return &c.Agents[0], true
}

// JSON serializes the configuration as indented JSON, the shape emitted in
// json and both output modes.
func (c *Config) JSON() ([]byte, error) {
	return json.MarshalIndent(c, "", "  ")
}
