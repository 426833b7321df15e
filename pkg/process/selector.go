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

// Package process resolves the execution topology of a workflow when the
// caller leaves it open. Resolution is an ordered chain of decision
// sources, first match wins: the caller's explicit choice, then the
// model's recommendation carried in the configuration, then a
// deterministic heuristic over the configuration itself.
package process

import (
	"strings"

	"github.com/crewforge/crewforge/pkg/workflow"
)

// delegationStems match the verb families that indicate one agent directing
// others. Matching is on lower-cased stems so inflections (delegates,
// delegation, reviewing) count without a morphology pass.
var delegationStems = []string{
	"delegat",
	"coordinat",
	"orchestrat",
	"supervis",
	"overse",
	"review",
	"approv",
	"manage",
	"assign",
}

// Select resolves the process type for a configuration. An explicit choice
// always wins; otherwise the model's recommendation is adopted verbatim;
// otherwise the heuristic decides. Pure function: the configuration is
// never mutated, the caller records the result.
func Select(cfg *workflow.Config, explicit workflow.ProcessType) workflow.ProcessType {
	if explicit.IsSet() {
		return explicit
	}
	if cfg.Process.IsSet() {
		return cfg.Process
	}
	return heuristic(cfg)
}

// heuristic decides between sequential and hierarchical from structural
// signals alone. Delegation language in task descriptions and a wide spread
// of distinct agent roles push toward hierarchical; two independent signals
// are required, so a lone "review" task or a large flat team still runs
// sequentially. Ties resolve to sequential, the conservative default.
func heuristic(cfg *workflow.Config) workflow.ProcessType {
	if len(cfg.Agents) < 2 {
		return workflow.ProcessSequential
	}

	score := 0
	for _, t := range cfg.Tasks {
		if containsDelegationLanguage(t.Description) {
			score++
		}
	}
	if distinctRoles(cfg.Agents) >= 3 {
		score++
	}

	if score >= 2 {
		return workflow.ProcessHierarchical
	}
	return workflow.ProcessSequential
}

func containsDelegationLanguage(text string) bool {
	lower := strings.ToLower(text)
	for _, stem := range delegationStems {
		if strings.Contains(lower, stem) {
			return true
		}
	}
	return false
}

func distinctRoles(agents []workflow.Agent) int {
	roles := make(map[string]struct{}, len(agents))
	for _, a := range agents {
		role := strings.ToLower(strings.TrimSpace(a.Role))
		if role == "" {
			continue
		}
		roles[role] = struct{}{}
	}
	return len(roles)
}
