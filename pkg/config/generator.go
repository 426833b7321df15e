package config

import (
	"fmt"

	"github.com/crewforge/crewforge/pkg/workflow"
)

// GeneratorConfig configures generation behavior.
type GeneratorConfig struct {
	// DefaultFramework is used when a request names no target framework.
	// Default: crewai
	DefaultFramework string `yaml:"default_framework,omitempty" json:"default_framework,omitempty" jsonschema:"title=Default Framework,description=Framework used when a request names none,enum=crewai,enum=crewai-flow,enum=langgraph,enum=react,enum=react-lcel,default=crewai"`

	// DefaultFormat is used when a request names no output format.
	// Values: "code", "json", "both".
	// Default: code
	DefaultFormat string `yaml:"default_format,omitempty" json:"default_format,omitempty" jsonschema:"title=Default Format,description=Output format used when a request names none,enum=code,enum=json,enum=both,default=code"`

	// MaxRetries bounds corrective re-prompts after an unparseable or
	// invalid model response. The initial request does not count.
	// Default: 2
	MaxRetries *int `yaml:"max_retries,omitempty" json:"max_retries,omitempty" jsonschema:"title=Max Retries,description=Corrective re-prompt bound,minimum=0,maximum=5,default=2"`
}

// SetDefaults applies default values.
func (c *GeneratorConfig) SetDefaults() {
	if c.DefaultFramework == "" {
		c.DefaultFramework = string(workflow.FrameworkCrewAI)
	}
	if c.DefaultFormat == "" {
		c.DefaultFormat = "code"
	}
	if c.MaxRetries == nil {
		c.MaxRetries = IntPtr(2)
	}
}

// Validate checks the generator configuration.
func (c *GeneratorConfig) Validate() error {
	if c.DefaultFramework != "" {
		if _, err := workflow.ParseFramework(c.DefaultFramework); err != nil {
			return fmt.Errorf("default_framework: %w", err)
		}
	}

	validFormats := map[string]bool{
		"": true, "code": true, "json": true, "both": true,
	}
	if !validFormats[c.DefaultFormat] {
		return fmt.Errorf("invalid default_format %q (valid: code, json, both)", c.DefaultFormat)
	}

	if c.MaxRetries != nil && (*c.MaxRetries < 0 || *c.MaxRetries > 5) {
		return fmt.Errorf("max_retries must be between 0 and 5")
	}

	return nil
}

// Retries returns the corrective re-prompt bound.
func (c *GeneratorConfig) Retries() int {
	if c.MaxRetries == nil {
		return 2
	}
	return *c.MaxRetries
}
