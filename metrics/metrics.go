// Copyright (c) 2023-2026 Shoal Authors.
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

// Package metrics builds the process-wide tally scope from config.
package metrics

import (
	"fmt"
	"io"
	"os"
	"time"

	"github.com/shoal/shoal/utils/log"

	"github.com/uber-go/tally"
)

// Supported backends.
const (
	BackendStatsd   = "statsd"
	BackendDisabled = "disabled"
)

// New builds the root metrics scope. An empty backend disables reporting.
// cluster, when non-empty, namespaces the emitted metrics.
func New(config Config, cluster string) (tally.Scope, io.Closer, error) {
	switch config.Backend {
	case BackendStatsd:
		return newStatsdScope(config, cluster)
	case BackendDisabled, "":
		return tally.NoopScope, noopCloser{}, nil
	default:
		return nil, nil, fmt.Errorf("unknown metrics backend %q", config.Backend)
	}
}

type noopCloser struct{}

func (noopCloser) Close() error { return nil }

// EmitVersion counts a per-minute heartbeat tagged with the host and the
// GIT_DESCRIBE build version. Returns immediately if the version is unknown.
func EmitVersion(stats tally.Scope) {
	version := os.Getenv("GIT_DESCRIBE")
	if version == "" {
		log.Warn("Skipping version metric: GIT_DESCRIBE not set")
		return
	}
	hostname, err := os.Hostname()
	if err != nil {
		log.Warnf("Skipping version metric: hostname: %s", err)
		return
	}
	counter := stats.Tagged(map[string]string{
		"host":    hostname,
		"version": version,
	}).Counter("version")
	for range time.Tick(time.Minute) {
		counter.Inc(1)
	}
}
