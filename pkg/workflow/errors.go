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

// Problem is a single field-level validation finding.
type Problem struct {
	// Field locates the finding, e.g. "tasks[1].agent".
	Field string `json:"field"`

	// Message says which rule the field violates.
	Message string `json:"message"`
}

func (p Problem) String() string {
	return fmt.Sprintf("%s: %s", p.Field, p.Message)
}

// ValidationError reports every structural violation found in a
// configuration. Violations are collected, not short-circuited, so callers
// can surface precise diagnostics or feed them back as corrective guidance.
type ValidationError struct {
	Framework Framework // Target the configuration was validated for
	Problems  []Problem // Every violation found, in declaration order
}

// Error implements the error interface.
func (e *ValidationError) Error() string {
	var b strings.Builder
	fmt.Fprintf(&b, "configuration invalid for %s: %d problem(s)", e.Framework, len(e.Problems))
	for _, p := range e.Problems {
		b.WriteString("\n  - ")
		b.WriteString(p.String())
	}
	return b.String()
}

// Detail renders the problem list as plain lines, the shape appended to
// corrective re-prompts.
func (e *ValidationError) Detail() string {
	lines := make([]string, len(e.Problems))
	for i, p := range e.Problems {
		lines[i] = p.String()
	}
	return strings.Join(lines, "\n")
}

// NewValidationError creates a ValidationError for the given framework.
func NewValidationError(framework Framework, problems []Problem) *ValidationError {
	return &ValidationError{
		Framework: framework,
		Problems:  problems,
	}
}

// UnsupportedFrameworkError reports a request for a renderer that does not
// exist. It is fatal: the pipeline never retries it.
type UnsupportedFrameworkError struct {
	Requested string // The framework name the caller asked for
}

// Error implements the error interface.
func (e *UnsupportedFrameworkError) Error() string {
	supported := make([]string, 0, len(SupportedFrameworks()))
	for _, f := range SupportedFrameworks() {
		supported = append(supported, string(f))
	}
	return fmt.Sprintf("unsupported framework: %s (supported: %s)",
		e.Requested, strings.Join(supported, ", "))
}

// NewUnsupportedFrameworkError creates an UnsupportedFrameworkError.
func NewUnsupportedFrameworkError(requested string) *UnsupportedFrameworkError {
	return &UnsupportedFrameworkError{Requested: requested}
}
