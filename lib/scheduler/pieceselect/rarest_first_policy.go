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
package pieceselect

import (
	"github.com/shoal/shoal/utils/heap"
	"github.com/shoal/shoal/utils/syncutil"

	"github.com/willf/bitset"
)

// RarestFirstPolicy selects pieces that the fewest peers have to request
// first. Ties break on the lower piece index, so the order is deterministic
// for a given snapshot.
const RarestFirstPolicy = "rarest_first"

type rarestFirstPolicy struct{}

func newRarestFirstPolicy() *rarestFirstPolicy {
	return &rarestFirstPolicy{}
}

func (p *rarestFirstPolicy) selectPieces(
	limit int,
	valid func(int) bool,
	candidates *bitset.BitSet,
	numPeersByPiece syncutil.Counters) ([]int, error) {

	// Priority orders lexicographically on (provider count, piece index).
	numPieces := int(candidates.Len())

	candidateQueue := heap.NewPriorityQueue()
	for i, e := candidates.NextSet(0); e; i, e = candidates.NextSet(i + 1) {
		candidateQueue.Push(&heap.Item{
			Value:    int(i),
			Priority: numPeersByPiece.Get(int(i))*numPieces + int(i),
		})
	}

	pieces := make([]int, 0, limit)
	for len(pieces) < limit {
		item, ok := candidateQueue.Pop()
		if !ok {
			break
		}
		if valid(item.Value) {
			pieces = append(pieces, item.Value)
		}
	}

	return pieces, nil
}
