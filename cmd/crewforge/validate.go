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
	"errors"
	"fmt"
	"os"

	"github.com/crewforge/crewforge/pkg/workflow"
)

// ValidateCmd validates a saved workflow document and reports every
// field-level problem at once.
type ValidateCmd struct {
	Workflow string `required:"" help:"Path to a saved workflow document (JSON or YAML)." type:"path"`
	Format   string `short:"f" help:"Output format: compact, verbose, json." default:"compact" enum:"compact,verbose,json"`
}

func (c *ValidateCmd) Run(cli *CLI) error {
	cfg, err := workflow.LoadDocument(c.Workflow)
	if err != nil {
		return printLoadError(c.Format, c.Workflow, err)
	}

	if err := cfg.Validate(); err != nil {
		var vErr *workflow.ValidationError
		if errors.As(err, &vErr) {
			return printProblems(c.Format, c.Workflow, vErr.Problems)
		}
		return printLoadError(c.Format, c.Workflow, err)
	}

	printValid(c.Format, c.Workflow, cfg)
	return nil
}

// printLoadError prints a document load or decode error.
func printLoadError(format, file string, err error) error {
	switch format {
	case "json":
		printJSONResult(false, file, []workflow.Problem{{Field: "document", Message: err.Error()}})
	case "verbose":
		fmt.Fprintf(os.Stderr, "Workflow Load Error\n")
		fmt.Fprintf(os.Stderr, "===================\n\n")
		fmt.Fprintf(os.Stderr, "File:  %s\n", file)
		fmt.Fprintf(os.Stderr, "Error: %s\n", err.Error())
	default: // compact
		fmt.Fprintf(os.Stderr, "%s: load error: %s\n", file, err.Error())
	}
	return fmt.Errorf("workflow load failed")
}

// printProblems prints every validation problem found.
func printProblems(format, file string, problems []workflow.Problem) error {
	switch format {
	case "json":
		printJSONResult(false, file, problems)
	case "verbose":
		fmt.Fprintf(os.Stderr, "Workflow Validation Failed\n")
		fmt.Fprintf(os.Stderr, "==========================\n\n")
		fmt.Fprintf(os.Stderr, "File:     %s\n", file)
		fmt.Fprintf(os.Stderr, "Problems: %d\n\n", len(problems))
		for _, p := range problems {
			fmt.Fprintf(os.Stderr, "  %-28s %s\n", p.Field, p.Message)
		}
	default: // compact
		for _, p := range problems {
			fmt.Fprintf(os.Stderr, "%s: %s: %s\n", file, p.Field, p.Message)
		}
	}
	return fmt.Errorf("workflow validation failed")
}

// printValid prints a success message.
func printValid(format, file string, cfg *workflow.Config) {
	switch format {
	case "json":
		printJSONResult(true, file, nil)
	case "verbose":
		fmt.Fprintf(os.Stdout, "Workflow Validation Successful\n")
		fmt.Fprintf(os.Stdout, "==============================\n\n")
		fmt.Fprintf(os.Stdout, "File:      %s\n", file)
		fmt.Fprintf(os.Stdout, "Framework: %s\n", cfg.Framework)
		fmt.Fprintf(os.Stdout, "Agents:    %d\n", len(cfg.Agents))
		if cfg.Framework.UsesTasks() {
			fmt.Fprintf(os.Stdout, "Tasks:     %d\n", len(cfg.Tasks))
		}
		if cfg.Framework.UsesGraph() {
			fmt.Fprintf(os.Stdout, "Nodes:     %d\n", len(cfg.Nodes))
			fmt.Fprintf(os.Stdout, "Edges:     %d\n", len(cfg.Edges))
		}
		fmt.Fprintf(os.Stdout, "Status:    valid\n")
	default: // compact
		fmt.Fprintf(os.Stdout, "%s: valid\n", file)
	}
}

// jsonOutput is the JSON output structure.
type jsonOutput struct {
	Valid    bool               `json:"valid"`
	File     string             `json:"file"`
	Problems []workflow.Problem `json:"problems,omitempty"`
}

// printJSONResult prints a JSON validation result.
func printJSONResult(valid bool, file string, problems []workflow.Problem) {
	output := jsonOutput{
		Valid:    valid,
		File:     file,
		Problems: problems,
	}

	encoder := json.NewEncoder(os.Stdout)
	encoder.SetIndent("", "  ")
	if err := encoder.Encode(output); err != nil {
		fmt.Fprintf(os.Stderr, "Error encoding JSON: %v\n", err)
	}
}
