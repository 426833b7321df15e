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

// Package renderers maps validated workflow configurations to Python source
// text, one renderer per target framework. Renderers are pure and total
// over valid configurations: the same input yields byte-identical output,
// the configuration is never mutated, and nothing here talks to a model.
// Adding a framework means registering one more RenderFunc; existing
// renderers are never touched.
package renderers

import (
	"github.com/crewforge/crewforge/pkg/registry"
	"github.com/crewforge/crewforge/pkg/workflow"
)

// RenderFunc turns one validated configuration into framework source text.
type RenderFunc func(cfg *workflow.Config) string

var renderers = registry.NewBaseRegistry[RenderFunc]()

func init() {
	for _, r := range []struct {
		framework workflow.Framework
		fn        RenderFunc
	}{
		{workflow.FrameworkCrewAI, renderCrew},
		{workflow.FrameworkCrewAIFlow, renderCrewFlow},
		{workflow.FrameworkLangGraph, renderLangGraph},
		{workflow.FrameworkReact, renderReact},
		{workflow.FrameworkReactLCEL, renderReactLCEL},
	} {
		if err := renderers.Register(string(r.framework), r.fn); err != nil {
			panic(err)
		}
	}
}

// Render dispatches on the configuration's framework tag. Asking for a
// framework with no registered renderer fails with
// UnsupportedFrameworkError.
func Render(cfg *workflow.Config) (string, error) {
	fn, ok := renderers.Get(string(cfg.Framework))
	if !ok {
		return "", workflow.NewUnsupportedFrameworkError(string(cfg.Framework))
	}
	return fn(cfg), nil
}

// Supported lists the registered framework names in registration order.
func Supported() []string {
	return renderers.Names()
}
