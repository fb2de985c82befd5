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
package peerstore

import (
	"sort"
	"sync"
	"time"

	"github.com/shoal/shoal/core"

	"github.com/andres-erbsen/clock"
)

// LocalStore is an in-memory Store implementation. A single mutex
// serializes every operation in full; the table is small enough that finer
// locking buys nothing. Entries are never evicted: a peer which registered
// once stays in the table until the process exits, and a peer restarted on
// a new port registers a new entry. Nothing is persisted.
type LocalStore struct {
	clk clock.Clock

	mu         sync.Mutex
	peers      map[core.PeerID][]int
	popularity map[int]int64
	registers  int64
	lookups    int64
	startedAt  time.Time
}

// NewLocalStore creates a new empty LocalStore.
func NewLocalStore(clk clock.Clock) *LocalStore {
	return &LocalStore{
		clk:        clk,
		peers:      make(map[core.PeerID][]int),
		popularity: make(map[int]int64),
		startedAt:  clk.Now(),
	}
}

// Register implements Store. The stored list is unconditionally replaced;
// the previous registration, if any, is discarded. Registering an empty
// list is valid and keeps the peer in the table. Piece indexes are stored
// sorted and are not validated against any artifact geometry.
func (s *LocalStore) Register(id core.PeerID, pieces []int) {
	sorted := append(make([]int, 0, len(pieces)), pieces...)
	sort.Ints(sorted)

	s.mu.Lock()
	defer s.mu.Unlock()

	s.peers[id] = sorted
	s.registers++
}

// Snapshot implements Store. The result is a deep copy; mutating it never
// affects the table.
func (s *LocalStore) Snapshot() core.SwarmSnapshot {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.lookups++
	return core.SwarmSnapshot(s.peers).Copy()
}

// Owners implements Store. Results are sorted by peer id. Every call counts
// toward the piece's popularity, known pieces and unknown alike.
func (s *LocalStore) Owners(piece int) []core.PeerID {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.lookups++
	s.popularity[piece]++

	owners := []core.PeerID{}
	for id, pieces := range s.peers {
		i := sort.SearchInts(pieces, piece)
		if i < len(pieces) && pieces[i] == piece {
			owners = append(owners, id)
		}
	}
	sort.Slice(owners, func(i, j int) bool { return owners[i] < owners[j] })
	return owners
}

// Stats implements Store.
func (s *LocalStore) Stats() Stats {
	s.mu.Lock()
	defer s.mu.Unlock()

	popularity := make(map[int]int64, len(s.popularity))
	for i, n := range s.popularity {
		popularity[i] = n
	}
	return Stats{
		Uptime:     s.clk.Now().Sub(s.startedAt),
		NumPeers:   len(s.peers),
		Registers:  s.registers,
		Lookups:    s.lookups,
		Popularity: popularity,
	}
}
