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
package scheduler

import (
	"time"

	"github.com/andres-erbsen/clock"
)

// parallelism caches the dynamic download parallelism target. More seeders
// in the swarm means more safe sources, so the target grows faster with
// seeders than with leechers.
type parallelism struct {
	config ParallelismConfig
	clk    clock.Clock

	target      int
	refreshedAt time.Time
}

func newParallelism(config ParallelismConfig, clk clock.Clock) *parallelism {
	return &parallelism{
		config: config,
		clk:    clk,
		target: config.Base,
	}
}

// refresh recomputes the target from the latest seeder / leecher counts,
// unless a previous value is younger than RefreshInterval, in which case the
// cached target governs. Returns the target in effect.
func (p *parallelism) refresh(seeds, leechers int) int {
	now := p.clk.Now()
	if !p.refreshedAt.IsZero() && now.Sub(p.refreshedAt) < p.config.RefreshInterval {
		return p.target
	}
	target := p.config.Base + seeds*p.config.SeedWeight + leechers*p.config.LeechWeight
	if target > p.config.Cap {
		target = p.config.Cap
	}
	p.target = target
	p.refreshedAt = now
	return p.target
}
