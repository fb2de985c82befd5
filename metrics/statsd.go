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
package metrics

import (
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/cactus/go-statsd-client/statsd"
	"github.com/uber-go/tally"
	tallystatsd "github.com/uber-go/tally/statsd"
)

const (
	_flushInterval = 100 * time.Millisecond
	_flushBytes    = 512
	_sampleRate    = 1.0
)

func newStatsdScope(config Config, cluster string) (tally.Scope, io.Closer, error) {
	if config.Statsd.HostPort == "" {
		return nil, nil, errors.New("statsd host_port required")
	}
	if config.Statsd.Prefix == "" {
		return nil, nil, errors.New("statsd prefix required")
	}
	prefix := config.Statsd.Prefix
	if cluster != "" {
		prefix = prefix + "." + cluster
	}
	statter, err := statsd.NewBufferedClient(
		config.Statsd.HostPort, prefix, _flushInterval, _flushBytes)
	if err != nil {
		return nil, nil, fmt.Errorf("statsd client: %s", err)
	}
	r := tallystatsd.NewReporter(statter, tallystatsd.Options{
		SampleRate: _sampleRate,
	})
	s, c := tally.NewRootScope(tally.ScopeOptions{
		Reporter: r,
	}, time.Second)
	return s, c, nil
}
