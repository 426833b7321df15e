package pipeline

import (
	"fmt"
	"strings"

	"github.com/crewforge/crewforge/pkg/workflow"
)

// OutputFormat selects the shape of the assembled artifact.
type OutputFormat string

const (
	// FormatCode emits the rendered source text only.
	FormatCode OutputFormat = "code"

	// FormatJSON emits the configuration as indented JSON only.
	FormatJSON OutputFormat = "json"

	// FormatBoth emits the configuration followed by the rendered source,
	// each behind a comment banner.
	FormatBoth OutputFormat = "both"
)

// ParseOutputFormat resolves an output format name. Names are matched
// case-insensitively with surrounding whitespace ignored; the empty string
// is an error so callers apply their configured default first.
func ParseOutputFormat(s string) (OutputFormat, error) {
	switch OutputFormat(strings.ToLower(strings.TrimSpace(s))) {
	case FormatCode:
		return FormatCode, nil
	case FormatJSON:
		return FormatJSON, nil
	case FormatBoth:
		return FormatBoth, nil
	default:
		return "", fmt.Errorf("invalid output format %q (valid: code, json, both)", s)
	}
}

func (f OutputFormat) String() string {
	return string(f)
}

// Assemble builds the final artifact text for a format. The both layout is
// fixed: configuration banner, JSON, blank line, code banner, source.
func Assemble(format OutputFormat, cfg *workflow.Config, code string) (string, error) {
	switch format {
	case FormatCode:
		return code, nil
	case FormatJSON:
		doc, err := cfg.JSON()
		if err != nil {
			return "", fmt.Errorf("serializing configuration: %w", err)
		}
		return string(doc), nil
	case FormatBoth:
		doc, err := cfg.JSON()
		if err != nil {
			return "", fmt.Errorf("serializing configuration: %w", err)
		}
		return "// Configuration:\n" + string(doc) + "\n\n// Generated Code:\n" + code, nil
	default:
		return "", fmt.Errorf("invalid output format %q (valid: code, json, both)", format)
	}
}
