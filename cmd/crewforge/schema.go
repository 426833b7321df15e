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

package main

import (
	"encoding/json"
	"fmt"

	"github.com/invopop/jsonschema"

	"github.com/crewforge/crewforge/pkg/config"
	"github.com/crewforge/crewforge/pkg/workflow"
)

// SchemaCmd generates JSON Schema from the CrewForge document structs.
// Editors and config builders use it to validate and auto-complete saved
// workflow documents and settings files.
type SchemaCmd struct {
	Kind    string `help:"Schema to emit: workflow or settings." default:"workflow" enum:"workflow,settings"`
	Output  string `short:"o" help:"Write the schema to a file instead of stdout." type:"path"`
	Force   bool   `help:"Overwrite the output file without confirmation."`
	Compact bool   `help:"Compact JSON output (no indentation)."`
}

// Run executes the schema generation command.
func (c *SchemaCmd) Run(cli *CLI) error {
	reflector := &jsonschema.Reflector{
		// Disallow additional properties for strict validation
		AllowAdditionalProperties: false,
		// Inline all definitions (no $ref) for form-generator compatibility
		DoNotReference: true,
	}

	var schema *jsonschema.Schema
	switch c.Kind {
	case "settings":
		schema = reflector.Reflect(&config.Config{})
		schema.ID = "https://crewforge.dev/schemas/settings.json"
		schema.Title = "CrewForge Settings"
		schema.Description = "Settings for the crewforge CLI and server"
	default:
		schema = reflector.Reflect(&workflow.Config{})
		schema.ID = "https://crewforge.dev/schemas/workflow.json"
		schema.Title = "CrewForge Workflow Configuration"
		schema.Description = "Framework-neutral multi-agent workflow produced by the generation pipeline"
		schema.Examples = []interface{}{
			map[string]interface{}{
				"framework": "crewai",
				"process":   "sequential",
				"agents": []interface{}{
					map[string]interface{}{
						"name": "researcher",
						"role": "Research Analyst",
						"goal": "Find relevant papers",
					},
				},
				"tasks": []interface{}{
					map[string]interface{}{
						"name":            "research_task",
						"description":     "Collect the ten most cited papers.",
						"expected_output": "An annotated list of papers.",
						"agent":           "researcher",
					},
				},
			},
		}
	}

	schema.Version = "http://json-schema.org/draft-07/schema#"

	var data []byte
	var err error
	if c.Compact {
		data, err = json.Marshal(schema)
	} else {
		data, err = json.MarshalIndent(schema, "", "  ")
	}
	if err != nil {
		return fmt.Errorf("failed to encode schema: %w", err)
	}

	return writeArtifact(c.Output, c.Force, string(data))
}
