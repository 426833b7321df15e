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

import "strings"

// Framework identifies the orchestration framework a configuration targets.
type Framework string

const (
	FrameworkCrewAI     Framework = "crewai"
	FrameworkCrewAIFlow Framework = "crewai-flow"
	FrameworkLangGraph  Framework = "langgraph"
	FrameworkReact      Framework = "react"
	FrameworkReactLCEL  Framework = "react-lcel"
)

// SupportedFrameworks returns every known framework in declaration order.
func SupportedFrameworks() []Framework {
	return []Framework{
		FrameworkCrewAI,
		FrameworkCrewAIFlow,
		FrameworkLangGraph,
		FrameworkReact,
		FrameworkReactLCEL,
	}
}

// ParseFramework resolves a framework name, failing with
// UnsupportedFrameworkError for anything unknown. Names are matched
// case-insensitively with surrounding whitespace ignored.
func ParseFramework(s string) (Framework, error) {
	normalized := strings.ToLower(strings.TrimSpace(s))
	for _, f := range SupportedFrameworks() {
		if string(f) == normalized {
			return f, nil
		}
	}
	return "", NewUnsupportedFrameworkError(s)
}

func (f Framework) String() string {
	return string(f)
}

// UsesTasks reports whether the framework consumes the agents/tasks shape.
func (f Framework) UsesTasks() bool {
	return f == FrameworkCrewAI || f == FrameworkCrewAIFlow
}

// UsesGraph reports whether the framework consumes the nodes/edges shape.
func (f Framework) UsesGraph() bool {
	return f == FrameworkLangGraph
}

// UsesExamples reports whether the framework can carry few-shot reasoning
// examples into its rendered prompt.
func (f Framework) UsesExamples() bool {
	return f == FrameworkReact || f == FrameworkReactLCEL
}
