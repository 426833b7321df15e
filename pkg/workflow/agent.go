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

// Agent describes one member of the generated workflow.
type Agent struct {
	// Name uniquely identifies the agent within a configuration. Renderers
	// derive variable names from it, so it should be identifier-friendly;
	// display names with spaces are sanitized on render.
	Name string `yaml:"name" json:"name" jsonschema:"title=Agent Name,description=Unique identifier for this agent,minLength=1"`

	// Role is the agent's function in the team, e.g. "Research Specialist".
	Role string `yaml:"role" json:"role" jsonschema:"title=Role,description=The agent's function within the workflow"`

	// Goal is the objective the agent pursues.
	Goal string `yaml:"goal" json:"goal" jsonschema:"title=Goal,description=The objective this agent works toward"`

	// Backstory gives the agent persona and context. Optional.
	Backstory string `yaml:"backstory,omitempty" json:"backstory,omitempty" jsonschema:"title=Backstory,description=Persona and context for the agent"`

	// Tools lists tool names this agent can use, in preference order. Every
	// entry must reference a declared tool.
	Tools []string `yaml:"tools,omitempty" json:"tools,omitempty" jsonschema:"title=Tools,description=Names of declared tools available to this agent"`

	// LLM optionally pins a model identifier for this agent.
	LLM string `yaml:"llm,omitempty" json:"llm,omitempty" jsonschema:"title=LLM Hint,description=Optional model identifier for this agent"`

	// Verbose toggles verbose execution in the rendered code. Defaults to
	// true when unset.
	Verbose *bool `yaml:"verbose,omitempty" json:"verbose,omitempty" jsonschema:"title=Verbose,description=Verbose execution in rendered code,default=true"`

	// AllowDelegation lets the agent delegate work in frameworks that
	// support it. Defaults to false when unset.
	AllowDelegation *bool `yaml:"allow_delegation,omitempty" json:"allow_delegation,omitempty" jsonschema:"title=Allow Delegation,description=Whether the agent may delegate work,default=false"`
}

// BoolPtr returns a pointer to the given bool value.
func BoolPtr(b bool) *bool {
	return &b
}

// BoolValue returns the value of the bool pointer, or the default if nil.
func BoolValue(b *bool, defaultValue bool) bool {
	if b == nil {
		return defaultValue
	}
	return *b
}
