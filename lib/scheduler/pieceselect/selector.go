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

// Package pieceselect decides which pieces a leecher downloads next, and from
// which provider, given the latest swarm snapshot.
package pieceselect

import (
	"fmt"
	"math/rand"
	"sort"

	"github.com/shoal/shoal/core"
	"github.com/shoal/shoal/utils/syncutil"

	"github.com/willf/bitset"
)

// Selection pairs a piece to download with the provider to download it from.
type Selection struct {
	Piece    int
	Provider core.PeerID
}

// Selector selects pieces from swarm snapshots using a named policy.
type Selector struct {
	numPieces int
	policy    pieceSelectionPolicy
	rand      *rand.Rand
}

// New creates a Selector for an artifact of numPieces pieces. Provider choice
// draws from r, which tests may seed.
func New(policy string, numPieces int, r *rand.Rand) (*Selector, error) {
	s := &Selector{numPieces: numPieces, rand: r}
	switch policy {
	case RarestFirstPolicy:
		s.policy = newRarestFirstPolicy()
	case FirstMissingPolicy:
		s.policy = newFirstMissingPolicy()
	default:
		return nil, fmt.Errorf("invalid piece selection policy: %s", policy)
	}
	return s, nil
}

// Select returns up to limit selections from snapshot. A piece is a candidate
// when some peer other than self lists it and valid(piece) holds; pieces
// nobody lists are never selected. The provider is chosen uniformly at random
// among the piece's seeder providers when any exist, else among all of them.
func (s *Selector) Select(
	limit int,
	snapshot core.SwarmSnapshot,
	self core.PeerID,
	valid func(int) bool) ([]Selection, error) {

	if limit <= 0 {
		return nil, nil
	}

	candidates := bitset.New(uint(s.numPieces))
	numPeersByPiece := syncutil.NewCounters(s.numPieces)
	providers := make(map[int][]core.PeerID)
	seeders := snapshot.Seeds(s.numPieces)

	// Iterate peers in id order so provider lists are deterministic under a
	// fixed rand seed.
	ids := make([]core.PeerID, 0, len(snapshot))
	for id := range snapshot {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })

	for _, id := range ids {
		if id == self {
			continue
		}
		for _, i := range snapshot[id] {
			if i < 0 || i >= s.numPieces {
				continue
			}
			candidates.Set(uint(i))
			numPeersByPiece.Increment(i)
			providers[i] = append(providers[i], id)
		}
	}

	pieces, err := s.policy.selectPieces(limit, valid, candidates, numPeersByPiece)
	if err != nil {
		return nil, err
	}

	selections := make([]Selection, 0, len(pieces))
	for _, i := range pieces {
		selections = append(selections, Selection{
			Piece:    i,
			Provider: s.pickProvider(providers[i], seeders),
		})
	}
	return selections, nil
}

func (s *Selector) pickProvider(
	providers []core.PeerID, seeders map[core.PeerID]bool) core.PeerID {

	var seeds []core.PeerID
	for _, id := range providers {
		if seeders[id] {
			seeds = append(seeds, id)
		}
	}
	if len(seeds) > 0 {
		return seeds[s.rand.Intn(len(seeds))]
	}
	return providers[s.rand.Intn(len(providers))]
}
