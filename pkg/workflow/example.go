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

// Example is a few-shot reasoning trace carried into the prompt text of
// rendered ReAct agents.
type Example struct {
	// Query is the user input the example answers.
	Query string `yaml:"query" json:"query" jsonschema:"title=Query,description=User input the example answers"`

	// Thought is the reasoning step.
	Thought string `yaml:"thought,omitempty" json:"thought,omitempty" jsonschema:"title=Thought,description=Reasoning step"`

	// Action is the tool call made in response.
	Action string `yaml:"action,omitempty" json:"action,omitempty" jsonschema:"title=Action,description=Tool call made in response"`

	// Observation is the result of the action.
	Observation string `yaml:"observation,omitempty" json:"observation,omitempty" jsonschema:"title=Observation,description=Result of the action"`

	// FinalAnswer is the answer produced after reasoning.
	FinalAnswer string `yaml:"final_answer,omitempty" json:"final_answer,omitempty" jsonschema:"title=Final Answer,description=Answer produced after reasoning"`
}
