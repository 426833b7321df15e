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
	"time"
)

// ServerConfig configures the HTTP front-end.
type ServerConfig struct {
	// Host to bind to.
	// Default: 0.0.0.0
	Host string `yaml:"host,omitempty" json:"host,omitempty" jsonschema:"title=Host,description=Bind address,default=0.0.0.0"`

	// Port to listen on.
	// Default: 8080
	Port int `yaml:"port,omitempty" json:"port,omitempty" jsonschema:"title=Port,description=Listen port,minimum=0,maximum=65535,default=8080"`

	// ReadTimeout bounds reading the request including the body.
	// Default: 30s
	ReadTimeout time.Duration `yaml:"read_timeout,omitempty" json:"read_timeout,omitempty" jsonschema:"title=Read Timeout,description=Request read timeout,default=30s"`

	// WriteTimeout bounds writing the response. Generation requests hold
	// the connection open for the full pipeline run, so this must exceed
	// the worst-case completion time.
	// Default: 5m
	WriteTimeout time.Duration `yaml:"write_timeout,omitempty" json:"write_timeout,omitempty" jsonschema:"title=Write Timeout,description=Response write timeout,default=5m"`

	// IdleTimeout bounds keep-alive connections.
	// Default: 2m
	IdleTimeout time.Duration `yaml:"idle_timeout,omitempty" json:"idle_timeout,omitempty" jsonschema:"title=Idle Timeout,description=Keep-alive idle timeout,default=2m"`

	// ShutdownTimeout bounds graceful shutdown.
	// Default: 10s
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout,omitempty" json:"shutdown_timeout,omitempty" jsonschema:"title=Shutdown Timeout,description=Graceful shutdown timeout,default=10s"`
}

// SetDefaults applies default values.
func (c *ServerConfig) SetDefaults() {
	if c.Host == "" {
		c.Host = "0.0.0.0"
	}
	if c.Port == 0 {
		c.Port = 8080
	}
	if c.ReadTimeout == 0 {
		c.ReadTimeout = 30 * time.Second
	}
	if c.WriteTimeout == 0 {
		c.WriteTimeout = 5 * time.Minute
	}
	if c.IdleTimeout == 0 {
		c.IdleTimeout = 2 * time.Minute
	}
	if c.ShutdownTimeout == 0 {
		c.ShutdownTimeout = 10 * time.Second
	}
}

// Validate checks the server configuration.
func (c *ServerConfig) Validate() error {
	if c.Port < 0 || c.Port > 65535 {
		return fmt.Errorf("invalid port %d", c.Port)
	}
	return nil
}

// Address returns the HTTP server address.
func (c *ServerConfig) Address() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}
