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

// Task is one unit of work in a crew-style workflow.
type Task struct {
	// Name uniquely identifies the task within a configuration.
	Name string `yaml:"name" json:"name" jsonschema:"title=Task Name,description=Unique identifier for this task,minLength=1"`

	// Description says what the task does.
	Description string `yaml:"description" json:"description" jsonschema:"title=Description,description=What this task accomplishes"`

	// ExpectedOutput describes the deliverable the task produces.
	ExpectedOutput string `yaml:"expected_output" json:"expected_output" jsonschema:"title=Expected Output,description=The deliverable this task produces"`

	// Agent names the agent responsible for the task. Optional; when unset
	// renderers assign a default worker. When set it must reference a
	// declared agent.
	Agent string `yaml:"agent,omitempty" json:"agent,omitempty" jsonschema:"title=Assigned Agent,description=Name of the agent responsible for this task"`

	// Tools lists tool names this task relies on. Every entry must
	// reference a declared tool.
	Tools []string `yaml:"tools,omitempty" json:"tools,omitempty" jsonschema:"title=Tools,description=Names of declared tools this task relies on"`

	// DependsOn lists task names that must complete before this one starts.
	// The relation across all tasks must stay acyclic.
	DependsOn []string `yaml:"depends_on,omitempty" json:"depends_on,omitempty" jsonschema:"title=Depends On,description=Task names that must complete first"`

	// Condition optionally carries a branch predicate as text; the CrewAI
	// Flow renderer turns it into a conditional step.
	Condition string `yaml:"condition,omitempty" json:"condition,omitempty" jsonschema:"title=Condition,description=Branch predicate for conditional execution"`
}
