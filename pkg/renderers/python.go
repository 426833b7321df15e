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

package renderers

import (
	"strings"

	"github.com/crewforge/crewforge/pkg/workflow"
)

// defaultModelHint is the model identifier rendered when an agent carries no
// llm hint of its own.
const defaultModelHint = "gpt-4.1-mini"

// pyStr renders s as a single-quoted Python string literal.
func pyStr(s string) string {
	var b strings.Builder
	b.Grow(len(s) + 2)
	b.WriteByte('\'')
	for _, r := range s {
		switch r {
		case '\\':
			b.WriteString(`\\`)
		case '\'':
			b.WriteString(`\'`)
		case '\n':
			b.WriteString(`\n`)
		case '\r':
			b.WriteString(`\r`)
		case '\t':
			b.WriteString(`\t`)
		default:
			b.WriteRune(r)
		}
	}
	b.WriteByte('\'')
	return b.String()
}

// pyDq renders s as a double-quoted Python string literal.
func pyDq(s string) string {
	var b strings.Builder
	b.Grow(len(s) + 2)
	b.WriteByte('"')
	for _, r := range s {
		switch r {
		case '\\':
			b.WriteString(`\\`)
		case '"':
			b.WriteString(`\"`)
		case '\n':
			b.WriteString(`\n`)
		case '\r':
			b.WriteString(`\r`)
		case '\t':
			b.WriteString(`\t`)
		default:
			b.WriteRune(r)
		}
	}
	b.WriteByte('"')
	return b.String()
}

// pyDoc makes free text safe to interpolate into a triple-quoted docstring.
func pyDoc(s string) string {
	s = strings.ReplaceAll(s, `"""`, "'''")
	return strings.TrimRight(s, `"\`)
}

func pyBool(v bool) string {
	if v {
		return "True"
	}
	return "False"
}

// pyStrList renders names as a Python list of single-quoted strings.
func pyStrList(names []string) string {
	if len(names) == 0 {
		return "[]"
	}
	quoted := make([]string, len(names))
	for i, n := range names {
		quoted[i] = pyStr(n)
	}
	return "[" + strings.Join(quoted, ", ") + "]"
}

// boolOr dereferences an optional flag, falling back to the model default.
func boolOr(v *bool, fallback bool) bool {
	if v == nil {
		return fallback
	}
	return *v
}

// modelHint picks the agent's llm hint or the shared default.
func modelHint(a workflow.Agent) string {
	if a.LLM != "" {
		return a.LLM
	}
	return defaultModelHint
}

// Variable naming shared by every renderer: agent variables agent_<name>,
// task variables task_<name>, tool instances <name>_tool, all on the
// sanitized identifier.
func agentVar(name string) string {
	return "agent_" + workflow.Identifier(name)
}

func taskVar(name string) string {
	return "task_" + workflow.Identifier(name)
}

func toolVar(name string) string {
	id := workflow.Identifier(name)
	if strings.HasSuffix(id, "_tool") {
		return id
	}
	return id + "_tool"
}

// toolClass converts a tool name into a PascalCase class name carrying a
// Tool suffix, without stuttering when the name already ends in one.
func toolClass(name string) string {
	var b strings.Builder
	for _, part := range strings.Split(workflow.Identifier(name), "_") {
		if part == "" {
			continue
		}
		b.WriteString(strings.ToUpper(part[:1]))
		b.WriteString(part[1:])
	}
	class := b.String()
	if class == "" {
		class = "Unnamed"
	}
	if !strings.HasSuffix(class, "Tool") {
		class += "Tool"
	}
	return class
}

// agentFunc names the graph-node function bound to an agent.
func agentFunc(name string) string {
	return workflow.Identifier(name) + "_agent"
}
