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

// Package peerstore implements the tracker's membership table: which peer
// registered which pieces, plus the counters behind the status dashboard.
package peerstore

import (
	"time"

	"github.com/shoal/shoal/core"
)

// Store provides storage for registering peers. Every operation is total:
// unknown peers and unknown pieces produce empty results, never errors.
type Store interface {

	// Register replaces the piece list stored under id.
	Register(id core.PeerID, pieces []int)

	// Snapshot returns a copy of the entire membership table.
	Snapshot() core.SwarmSnapshot

	// Owners returns every peer registered as holding piece.
	Owners(piece int) []core.PeerID

	// Stats summarizes tracker activity for inspection.
	Stats() Stats
}

// Stats is a point-in-time summary of tracker activity.
type Stats struct {
	Uptime     time.Duration
	NumPeers   int
	Registers  int64
	Lookups    int64
	Popularity map[int]int64
}
