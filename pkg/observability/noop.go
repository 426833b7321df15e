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

package observability

import (
	"context"
	"time"

	"go.opentelemetry.io/otel/trace"
	"go.opentelemetry.io/otel/trace/noop"
)

// NoopManager returns a Manager that records nothing. Use it when
// observability is completely disabled.
func NoopManager() *Manager {
	return &Manager{
		tracerProvider: noop.NewTracerProvider(),
		metrics:        &NoopMetrics{},
	}
}

// NoopTracer returns a tracer whose spans are discarded.
func NoopTracer(name string) trace.Tracer {
	return noop.NewTracerProvider().Tracer(name)
}

// NoopMetrics implements Metrics and discards every record.
type NoopMetrics struct{}

func (*NoopMetrics) RecordGeneration(context.Context, string, time.Duration, int, error) {}

func (*NoopMetrics) RecordLLMRequest(context.Context, string, string, time.Duration, int, int, error) {
}

func (*NoopMetrics) RecordHTTPRequest(context.Context, string, string, int, time.Duration, int64, int64) {
}
