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

// Package parser turns raw completion text into a validated workflow
// configuration. Model output is hostile input: the JSON may be wrapped in
// prose or fences, truncated, or syntactically sloppy, so parsing runs
// extract -> repair -> strict decode -> validate, failing with a typed error
// at each stage so the orchestrator can decide between a corrective
// re-prompt and giving up.
package parser

import (
	"encoding/json"
	"errors"
	"log/slog"
	"sort"
	"strings"

	"github.com/kaptinlin/jsonrepair"
	"github.com/mitchellh/mapstructure"

	"github.com/crewforge/crewforge/pkg/workflow"
)

// Parse extracts the first JSON object from completion text, decodes it
// strictly into a workflow configuration for the given framework, and
// validates it. Unknown fields and decode mismatches are collected as
// field-level problems alongside structural violations, so a single
// corrective round trip can fix everything at once.
func Parse(completion string, framework workflow.Framework) (*workflow.Config, error) {
	raw, err := Extract(completion)
	if err != nil {
		return nil, err
	}

	doc, err := decodeObject(raw)
	if err != nil {
		return nil, err
	}

	cfg, problems, err := decodeConfig(doc)
	if err != nil {
		return nil, err
	}

	cfg.Framework = framework

	if err := cfg.Validate(); err != nil {
		var vErr *workflow.ValidationError
		if errors.As(err, &vErr) {
			vErr.Problems = append(problems, vErr.Problems...)
			return nil, vErr
		}
		return nil, err
	}

	if len(problems) > 0 {
		return nil, workflow.NewValidationError(framework, problems)
	}

	return cfg, nil
}

// decodeObject unmarshals raw into a generic document, running the repair
// pass and retrying once when the strict attempt fails.
func decodeObject(raw string) (map[string]interface{}, error) {
	var doc map[string]interface{}

	firstErr := json.Unmarshal([]byte(raw), &doc)
	if firstErr == nil {
		return doc, nil
	}

	repaired := repairJSON(raw)
	if err := json.Unmarshal([]byte(repaired), &doc); err != nil {
		return nil, NewMalformedJSONError(firstErr, raw)
	}

	slog.Debug("Repaired malformed completion JSON", "error", firstErr)
	return doc, nil
}

// repairJSON runs the general repair library, falling back to the local
// fixups (dangling commas, truncated braces) when the library itself fails.
func repairJSON(raw string) string {
	if fixed, err := jsonrepair.JSONRepair(raw); err == nil {
		return fixed
	}
	return completeBraces(stripTrailingCommas(raw))
}

// decodeConfig maps the generic document onto the configuration model.
// Unknown keys and per-field decode mismatches come back as problems, not
// hard errors: the document decodes as far as it can so validation can
// report everything in one pass.
func decodeConfig(doc map[string]interface{}) (*workflow.Config, []workflow.Problem, error) {
	var cfg workflow.Config
	var md mapstructure.Metadata
	var problems []workflow.Problem

	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		TagName:          "yaml",
		WeaklyTypedInput: true,
		Metadata:         &md,
		Result:           &cfg,
	})
	if err != nil {
		return nil, nil, err
	}

	if err := decoder.Decode(doc); err != nil {
		var decErr *mapstructure.Error
		if !errors.As(err, &decErr) {
			return nil, nil, err
		}
		for _, line := range decErr.Errors {
			problems = append(problems, decodeProblem(line))
		}
	}

	unused := append([]string(nil), md.Unused...)
	sort.Strings(unused)
	for _, key := range unused {
		problems = append(problems, workflow.Problem{Field: key, Message: "unknown field"})
	}

	return &cfg, problems, nil
}

// decodeProblem converts one mapstructure error line into a field-level
// problem. Lines usually open with the quoted field path; anything else is
// attributed to the configuration as a whole.
func decodeProblem(line string) workflow.Problem {
	if strings.HasPrefix(line, "'") {
		if end := strings.Index(line[1:], "'"); end >= 0 {
			field := line[1 : end+1]
			message := strings.TrimSpace(strings.TrimPrefix(line[end+2:], ":"))
			if field != "" && message != "" {
				return workflow.Problem{Field: field, Message: message}
			}
		}
	}
	return workflow.Problem{Field: "configuration", Message: line}
}

// stripTrailingCommas drops commas whose next significant byte closes an
// object or array. String contents are left untouched.
func stripTrailingCommas(s string) string {
	var b strings.Builder
	b.Grow(len(s))

	inString := false
	escaped := false

	for i := 0; i < len(s); i++ {
		c := s[i]

		if inString {
			switch {
			case escaped:
				escaped = false
			case c == '\\':
				escaped = true
			case c == '"':
				inString = false
			}
			b.WriteByte(c)
			continue
		}

		if c == '"' {
			inString = true
			b.WriteByte(c)
			continue
		}

		if c == ',' {
			j := i + 1
			for j < len(s) && (s[j] == ' ' || s[j] == '\t' || s[j] == '\n' || s[j] == '\r') {
				j++
			}
			if j < len(s) && (s[j] == '}' || s[j] == ']') {
				continue
			}
		}

		b.WriteByte(c)
	}

	return b.String()
}

// completeBraces closes whatever a truncated completion left open: an
// unterminated string, then unclosed braces and brackets in nesting order.
// A comma dangling at the cut point is dropped first.
func completeBraces(s string) string {
	var stack []byte
	inString := false
	escaped := false

	for i := 0; i < len(s); i++ {
		c := s[i]

		if inString {
			switch {
			case escaped:
				escaped = false
			case c == '\\':
				escaped = true
			case c == '"':
				inString = false
			}
			continue
		}

		switch c {
		case '"':
			inString = true
		case '{', '[':
			stack = append(stack, c)
		case '}':
			if len(stack) > 0 && stack[len(stack)-1] == '{' {
				stack = stack[:len(stack)-1]
			}
		case ']':
			if len(stack) > 0 && stack[len(stack)-1] == '[' {
				stack = stack[:len(stack)-1]
			}
		}
	}

	out := s
	if inString {
		out += `"`
	}
	out = strings.TrimRight(out, " \t\r\n")
	out = strings.TrimSuffix(out, ",")

	var b strings.Builder
	b.WriteString(out)
	for i := len(stack) - 1; i >= 0; i-- {
		if stack[i] == '{' {
			b.WriteByte('}')
		} else {
			b.WriteByte(']')
		}
	}
	return b.String()
}
