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

	"github.com/shoal/shoal/lib/scheduler/pieceselect"
)

// ParallelismConfig defines how the download parallelism target scales with
// the composition of the swarm.
type ParallelismConfig struct {
	// Base is the target when no other peer holds anything.
	Base int `yaml:"base"`

	// SeedWeight and LeechWeight are the per-peer target contributions of
	// seeders and leechers observed in the latest snapshot.
	SeedWeight  int `yaml:"seed_weight"`
	LeechWeight int `yaml:"leech_weight"`

	// Cap bounds the target regardless of swarm size.
	Cap int `yaml:"cap"`

	// RefreshInterval is how long a computed target stays cached before the
	// next snapshot may change it.
	RefreshInterval time.Duration `yaml:"refresh_interval"`
}

// Config defines Scheduler configuration.
type Config struct {
	// TickInterval is the period of the convergence loop.
	TickInterval time.Duration `yaml:"tick_interval"`

	// WorkerLimit caps concurrent piece downloads. Must be at least the
	// parallelism cap; the cap is clamped to it otherwise.
	WorkerLimit int `yaml:"worker_limit"`

	// Policy names the piece selection policy.
	Policy string `yaml:"policy"`

	Parallelism ParallelismConfig `yaml:"parallelism"`
}

func (c Config) applyDefaults() Config {
	if c.TickInterval == 0 {
		c.TickInterval = time.Second
	}
	if c.WorkerLimit == 0 {
		c.WorkerLimit = 100
	}
	if c.Policy == "" {
		c.Policy = pieceselect.RarestFirstPolicy
	}
	if c.Parallelism.Base == 0 {
		c.Parallelism.Base = 5
	}
	if c.Parallelism.SeedWeight == 0 {
		c.Parallelism.SeedWeight = 5
	}
	if c.Parallelism.LeechWeight == 0 {
		c.Parallelism.LeechWeight = 2
	}
	if c.Parallelism.Cap == 0 {
		c.Parallelism.Cap = 100
	}
	if c.Parallelism.RefreshInterval == 0 {
		c.Parallelism.RefreshInterval = 5 * time.Second
	}
	if c.Parallelism.Cap > c.WorkerLimit {
		c.Parallelism.Cap = c.WorkerLimit
	}
	return c
}
