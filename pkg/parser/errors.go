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

package parser

import "fmt"

// NoJSONFoundError reports a completion that contains no JSON object at all:
// not even an opening brace to anchor extraction on.
type NoJSONFoundError struct {
	Snippet string // Leading slice of the completion, for diagnostics
}

// Error implements the error interface.
func (e *NoJSONFoundError) Error() string {
	return fmt.Sprintf("no JSON object found in completion: %q", e.Snippet)
}

// NewNoJSONFoundError creates a NoJSONFoundError from the completion text.
func NewNoJSONFoundError(completion string) *NoJSONFoundError {
	return &NoJSONFoundError{Snippet: snippet(completion)}
}

// MalformedJSONError reports an extracted JSON object that still does not
// decode after the repair pass.
type MalformedJSONError struct {
	Err     error  // Decode error from the first strict attempt
	Snippet string // Leading slice of the extracted object, for diagnostics
}

// Error implements the error interface.
func (e *MalformedJSONError) Error() string {
	return fmt.Sprintf("completion JSON is malformed and could not be repaired: %v (near %q)", e.Err, e.Snippet)
}

// Unwrap returns the underlying decode error.
func (e *MalformedJSONError) Unwrap() error {
	return e.Err
}

// NewMalformedJSONError creates a MalformedJSONError for the raw object text.
func NewMalformedJSONError(err error, raw string) *MalformedJSONError {
	return &MalformedJSONError{Err: err, Snippet: snippet(raw)}
}

const snippetLen = 160

// snippet trims text to a short diagnostic slice.
func snippet(text string) string {
	if len(text) > snippetLen {
		return text[:snippetLen] + "..."
	}
	return text
}
