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

// Tool declares a capability agents can reference by name.
type Tool struct {
	// Name uniquely identifies the tool within a configuration.
	Name string `yaml:"name" json:"name" jsonschema:"title=Tool Name,description=Unique identifier for this tool,minLength=1"`

	// Description says what the tool does; rendered into tool stubs and
	// prompt text.
	Description string `yaml:"description,omitempty" json:"description,omitempty" jsonschema:"title=Description,description=What the tool does"`

	// Parameters optionally names the tool's inputs. Used by the ReAct
	// renderers.
	Parameters []string `yaml:"parameters,omitempty" json:"parameters,omitempty" jsonschema:"title=Parameters,description=Names of the tool's inputs"`
}
