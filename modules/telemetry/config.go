// Copyright 2025 The gate Authors
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package telemetry

import "time"

// Protocol selects the OTLP transport.
type Protocol string

const (
	ProtocolGRPC Protocol = "grpc"
	ProtocolHTTP Protocol = "http"
)

type Config struct {
	ServiceName    string `env:"OTEL_SERVICE_NAME" envDefault:"gate"`
	ServiceVersion string `env:"SERVICE_VERSION" envDefault:"dev"`
	Environment    string `env:"ENVIRONMENT" envDefault:"local"`

	// Optional; if empty, the standard OTEL_EXPORTER_OTLP_ENDPOINT handling
	// of the exporters applies.
	OTLPEndpoint string `env:"OTEL_EXPORTER_OTLP_ENDPOINT" envDefault:"otel-collector:4317"`

	// If true, disable TLS for OTLP.
	Insecure bool `env:"OTEL_EXPORTER_OTLP_INSECURE"`

	Protocol Protocol `env:"OTEL_EXPORTER_OTLP_PROTOCOL" envDefault:"grpc"`

	// 0..1: sampling ratio (0=never, 1=all, else parent-based + ratio).
	SamplerRatio float64 `env:"OTEL_SAMPLER_RATIO" envDefault:"1"`

	StartupTimeout time.Duration `env:"OTEL_STARTUP_TIMEOUT" envDefault:"5s"`

	DisableMetrics bool `env:"OTEL_DISABLE_METRICS"`
	DisableTraces  bool `env:"OTEL_DISABLE_TRACES"`
}
