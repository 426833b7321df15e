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

// EndNode is the pseudo-node name an edge may target to terminate a graph.
const EndNode = "END"

// Node is one vertex of a graph-style workflow.
type Node struct {
	// Name uniquely identifies the node within a configuration.
	Name string `yaml:"name" json:"name" jsonschema:"title=Node Name,description=Unique identifier for this node,minLength=1"`

	// Description optionally says what happens at this node.
	Description string `yaml:"description,omitempty" json:"description,omitempty" jsonschema:"title=Description,description=What happens at this node"`

	// Agent names the agent bound to this node. Must reference a declared
	// agent.
	Agent string `yaml:"agent" json:"agent" jsonschema:"title=Agent,description=Name of the agent bound to this node"`

	// IsEntryPoint marks the node as a graph entry. When no node is marked,
	// the first declared node is the entry.
	IsEntryPoint bool `yaml:"is_entry_point,omitempty" json:"is_entry_point,omitempty" jsonschema:"title=Entry Point,description=Whether execution may start at this node"`

	// IsTerminal marks the node as a valid stopping point.
	IsTerminal bool `yaml:"is_terminal,omitempty" json:"is_terminal,omitempty" jsonschema:"title=Terminal,description=Whether execution may stop at this node"`
}

// Edge connects two nodes of a graph-style workflow.
type Edge struct {
	// Source names the node the edge leaves from.
	Source string `yaml:"source" json:"source" jsonschema:"title=Source,description=Node the edge leaves from"`

	// Target names the node the edge arrives at, or END to terminate.
	Target string `yaml:"target" json:"target" jsonschema:"title=Target,description=Node the edge arrives at (or END)"`

	// Condition optionally carries a branch predicate as text; conditional
	// edges render as a routing function.
	Condition string `yaml:"condition,omitempty" json:"condition,omitempty" jsonschema:"title=Condition,description=Branch predicate for conditional routing"`
}
