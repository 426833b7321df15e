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

import (
	"errors"
	"strings"
	"testing"
)

func TestExtract(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{
			name:     "bare object",
			input:    `{"agents": []}`,
			expected: `{"agents": []}`,
		},
		{
			name:     "prose before and after",
			input:    "Here is the configuration you asked for:\n{\"process\": \"sequential\"}\nLet me know if you need changes.",
			expected: `{"process": "sequential"}`,
		},
		{
			name:     "markdown code fence",
			input:    "```json\n{\"agents\": [{\"name\": \"writer\"}]}\n```",
			expected: `{"agents": [{"name": "writer"}]}`,
		},
		{
			name:     "braces inside string values",
			input:    `{"description": "wrap the answer in {curly} braces"}`,
			expected: `{"description": "wrap the answer in {curly} braces"}`,
		},
		{
			name:     "escaped quotes inside strings",
			input:    `{"goal": "say \"done\" when { appears"}`,
			expected: `{"goal": "say \"done\" when { appears"}`,
		},
		{
			name:     "nested objects and arrays",
			input:    `noise {"a": {"b": [1, {"c": 2}]}} noise`,
			expected: `{"a": {"b": [1, {"c": 2}]}}`,
		},
		{
			name:     "first object wins",
			input:    `{"first": 1} {"second": 2}`,
			expected: `{"first": 1}`,
		},
		{
			name:     "truncated object returns the tail",
			input:    "Sure:\n{\"agents\": [{\"name\": \"researcher\"",
			expected: `{"agents": [{"name": "researcher"`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Extract(tt.input)
			if err != nil {
				t.Fatalf("Extract() failed: %v", err)
			}
			if got != tt.expected {
				t.Errorf("Expected %q, got %q", tt.expected, got)
			}
		})
	}
}

func TestExtract_NoJSON(t *testing.T) {
	inputs := []string{
		"",
		"I cannot produce a configuration for that request.",
		"agents: none, tasks: none",
	}

	for _, input := range inputs {
		_, err := Extract(input)
		if err == nil {
			t.Fatalf("Expected error for input %q, got nil", input)
		}
		var noJSON *NoJSONFoundError
		if !errors.As(err, &noJSON) {
			t.Fatalf("Expected NoJSONFoundError, got %T: %v", err, err)
		}
	}
}

func TestNoJSONFoundError_Snippet(t *testing.T) {
	long := strings.Repeat("the model rambled on ", 20)
	err := NewNoJSONFoundError(long)

	if len(err.Snippet) > snippetLen+3 {
		t.Errorf("Expected snippet capped near %d bytes, got %d", snippetLen, len(err.Snippet))
	}
	if !strings.Contains(err.Error(), "no JSON object found") {
		t.Errorf("Expected message to name the failure, got %q", err.Error())
	}
}
