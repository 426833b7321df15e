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

package config

import (
	"fmt"
	"os"
	"time"
)

// LLMProvider identifies the LLM provider type.
type LLMProvider string

const (
	LLMProviderOpenAI    LLMProvider = "openai"
	LLMProviderAnthropic LLMProvider = "anthropic"
	LLMProviderGemini    LLMProvider = "gemini"
	LLMProviderOllama    LLMProvider = "ollama"
)

// LLMConfig configures an LLM provider.
type LLMConfig struct {
	// Provider type (openai, anthropic, gemini, ollama).
	Provider LLMProvider `yaml:"provider,omitempty" json:"provider,omitempty" jsonschema:"title=Provider,description=LLM provider,enum=openai,enum=anthropic,enum=gemini,enum=ollama,default=openai"`

	// Model name (e.g., "gpt-4.1-mini", "claude-sonnet-4-20250514").
	Model string `yaml:"model,omitempty" json:"model,omitempty" jsonschema:"title=Model,description=Model identifier"`

	// APIKey for authentication. Supports ${VAR} expansion.
	APIKey string `yaml:"api_key,omitempty" json:"api_key,omitempty" jsonschema:"title=API Key,description=API key for authentication (use ${ENV_VAR})"`

	// BaseURL overrides the default API endpoint.
	BaseURL string `yaml:"base_url,omitempty" json:"base_url,omitempty" jsonschema:"title=Base URL,description=Custom base URL for the API endpoint"`

	// Temperature for generation (0.0 - 2.0).
	Temperature *float64 `yaml:"temperature,omitempty" json:"temperature,omitempty" jsonschema:"title=Temperature,description=Sampling temperature,minimum=0,maximum=2,default=0.7"`

	// TopP nucleus sampling parameter (0.0 - 1.0).
	TopP *float64 `yaml:"top_p,omitempty" json:"top_p,omitempty" jsonschema:"title=Top P,description=Nucleus sampling parameter,minimum=0,maximum=1,default=0.95"`

	// MaxTokens limits response length.
	MaxTokens int `yaml:"max_tokens,omitempty" json:"max_tokens,omitempty" jsonschema:"title=Max Tokens,description=Maximum tokens to generate,minimum=1,default=4096"`

	// ContextBudget caps the estimated prompt size in tokens. Prompts over
	// budget are rejected before any network call.
	ContextBudget int `yaml:"context_budget,omitempty" json:"context_budget,omitempty" jsonschema:"title=Context Budget,description=Maximum prompt tokens accepted per request,minimum=1,default=16384"`

	// Timeout bounds each completion request. A fresh timeout is applied
	// per attempt, including corrective re-prompts.
	Timeout time.Duration `yaml:"timeout,omitempty" json:"timeout,omitempty" jsonschema:"title=Timeout,description=Per-request timeout,default=60s"`

	// MaxRetries bounds transport-level retries for rate limits and
	// transient server errors.
	MaxRetries int `yaml:"max_retries,omitempty" json:"max_retries,omitempty" jsonschema:"title=Max Retries,description=Transport-level retry bound,minimum=0,default=5"`
}

// SetDefaults applies default values.
func (c *LLMConfig) SetDefaults() {
	// Auto-detect provider from environment if not set
	if c.Provider == "" {
		c.Provider = detectProviderFromEnv()
	}

	// Set default model per provider
	if c.Model == "" {
		switch c.Provider {
		case LLMProviderOpenAI:
			c.Model = "gpt-4.1-mini"
		case LLMProviderAnthropic:
			c.Model = "claude-sonnet-4-20250514"
		case LLMProviderGemini:
			c.Model = "gemini-2.0-flash"
		case LLMProviderOllama:
			c.Model = "llama3.2"
		}
	}

	// Get API key from environment if not set
	if c.APIKey == "" {
		c.APIKey = getAPIKeyFromEnv(c.Provider)
	}

	if c.BaseURL == "" && c.Provider == LLMProviderOllama {
		c.BaseURL = "http://localhost:11434"
	}

	if c.Temperature == nil {
		temp := 0.7
		c.Temperature = &temp
	}

	if c.TopP == nil {
		topP := 0.95
		c.TopP = &topP
	}

	if c.MaxTokens == 0 {
		c.MaxTokens = 4096
	}

	if c.ContextBudget == 0 {
		c.ContextBudget = 16384
	}

	if c.Timeout == 0 {
		c.Timeout = 60 * time.Second
	}

	if c.MaxRetries == 0 {
		c.MaxRetries = 5
	}
}

// Validate checks the LLM configuration.
func (c *LLMConfig) Validate() error {
	validProviders := map[LLMProvider]bool{
		LLMProviderOpenAI:    true,
		LLMProviderAnthropic: true,
		LLMProviderGemini:    true,
		LLMProviderOllama:    true,
	}

	if c.Provider != "" && !validProviders[c.Provider] {
		return fmt.Errorf("invalid provider %q (valid: openai, anthropic, gemini, ollama)", c.Provider)
	}

	// Ollama doesn't require an API key
	if c.Provider != LLMProviderOllama && c.APIKey == "" {
		return fmt.Errorf("api_key is required for provider %q", c.Provider)
	}

	if c.Temperature != nil && (*c.Temperature < 0 || *c.Temperature > 2) {
		return fmt.Errorf("temperature must be between 0 and 2")
	}

	if c.TopP != nil && (*c.TopP < 0 || *c.TopP > 1) {
		return fmt.Errorf("top_p must be between 0 and 1")
	}

	if c.MaxTokens < 0 {
		return fmt.Errorf("max_tokens must be non-negative")
	}

	if c.ContextBudget < 0 {
		return fmt.Errorf("context_budget must be non-negative")
	}

	if c.Timeout < 0 {
		return fmt.Errorf("timeout must be non-negative")
	}

	if c.MaxRetries < 0 {
		return fmt.Errorf("max_retries must be non-negative")
	}

	return nil
}

// detectProviderFromEnv detects the provider based on available API keys.
func detectProviderFromEnv() LLMProvider {
	if os.Getenv("OPENAI_API_KEY") != "" {
		return LLMProviderOpenAI
	}
	if os.Getenv("ANTHROPIC_API_KEY") != "" {
		return LLMProviderAnthropic
	}
	if os.Getenv("GEMINI_API_KEY") != "" || os.Getenv("GOOGLE_API_KEY") != "" {
		return LLMProviderGemini
	}
	// Default to OpenAI
	return LLMProviderOpenAI
}

// getAPIKeyFromEnv gets the API key for a provider from the environment.
func getAPIKeyFromEnv(provider LLMProvider) string {
	switch provider {
	case LLMProviderOpenAI:
		return os.Getenv("OPENAI_API_KEY")
	case LLMProviderAnthropic:
		return os.Getenv("ANTHROPIC_API_KEY")
	case LLMProviderGemini:
		if key := os.Getenv("GEMINI_API_KEY"); key != "" {
			return key
		}
		return os.Getenv("GOOGLE_API_KEY")
	case LLMProviderOllama:
		return "" // Ollama doesn't need an API key
	default:
		return ""
	}
}
