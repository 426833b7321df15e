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

import (
	"fmt"
	"strings"
)

// ProcessType is the execution topology of a team of agents. The zero value
// means "not yet decided" and is resolved by the process selector.
type ProcessType string

const (
	// ProcessSequential runs tasks in linear order.
	ProcessSequential ProcessType = "sequential"

	// ProcessHierarchical designates one coordinating agent that delegates
	// to the remaining agents. By convention the first declared agent is
	// the coordinator.
	ProcessHierarchical ProcessType = "hierarchical"
)

// ParseProcessType resolves a process type name, matched case-insensitively
// with surrounding whitespace ignored. The empty string and "auto" parse to
// the unset value so callers can express "decide for me".
func ParseProcessType(s string) (ProcessType, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "auto":
		return "", nil
	case string(ProcessSequential):
		return ProcessSequential, nil
	case string(ProcessHierarchical):
		return ProcessHierarchical, nil
	default:
		return "", fmt.Errorf("unknown process type: %s (supported: %s, %s)",
			s, ProcessSequential, ProcessHierarchical)
	}
}

func (p ProcessType) String() string {
	return string(p)
}

// IsSet reports whether a topology has been decided.
func (p ProcessType) IsSet() bool {
	return p == ProcessSequential || p == ProcessHierarchical
}
