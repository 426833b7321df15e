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

// Package config defines the settings model for the crewforge CLI and
// server: LLM provider credentials, generator behavior, server binding,
// logging, and observability. Settings load from a YAML or JSON file with
// ${VAR} environment expansion, fall back to environment-only defaults, and
// validate before use.
package config

import (
	"fmt"

	"github.com/crewforge/crewforge/pkg/observability"
)

// Config is the root settings aggregate.
type Config struct {
	// LLM configures the completion provider.
	LLM LLMConfig `yaml:"llm,omitempty" json:"llm,omitempty" jsonschema:"title=LLM,description=Completion provider settings"`

	// Generator configures generation behavior.
	Generator GeneratorConfig `yaml:"generator,omitempty" json:"generator,omitempty" jsonschema:"title=Generator,description=Generation behavior settings"`

	// Server configures the HTTP front-end.
	Server ServerConfig `yaml:"server,omitempty" json:"server,omitempty" jsonschema:"title=Server,description=HTTP server settings"`

	// Logger configures logging behavior.
	Logger LoggerConfig `yaml:"logger,omitempty" json:"logger,omitempty" jsonschema:"title=Logger,description=Logging settings"`

	// Observability configures tracing and metrics.
	Observability observability.Config `yaml:"observability,omitempty" json:"observability,omitempty" jsonschema:"title=Observability,description=Tracing and metrics settings"`
}

// SetDefaults applies default values to every section.
func (c *Config) SetDefaults() {
	c.LLM.SetDefaults()
	c.Generator.SetDefaults()
	c.Server.SetDefaults()
	c.Logger.SetDefaults()
	c.Observability.SetDefaults()
}

// Validate checks every section for errors.
func (c *Config) Validate() error {
	if err := c.LLM.Validate(); err != nil {
		return fmt.Errorf("llm: %w", err)
	}
	if err := c.Generator.Validate(); err != nil {
		return fmt.Errorf("generator: %w", err)
	}
	if err := c.Server.Validate(); err != nil {
		return fmt.Errorf("server: %w", err)
	}
	if err := c.Logger.Validate(); err != nil {
		return fmt.Errorf("logger: %w", err)
	}
	if err := c.Observability.Validate(); err != nil {
		return fmt.Errorf("observability: %w", err)
	}
	return nil
}

// Default returns settings built purely from defaults and environment
// variables, for runs without a settings file.
func Default() (*Config, error) {
	cfg := &Config{}
	cfg.SetDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}
