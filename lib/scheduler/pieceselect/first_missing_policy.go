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
	"github.com/shoal/shoal/utils/syncutil"

	"github.com/willf/bitset"
)

// FirstMissingPolicy selects pieces in ascending index order, ignoring
// rarity.
const FirstMissingPolicy = "first_missing"

type firstMissingPolicy struct{}

func newFirstMissingPolicy() *firstMissingPolicy {
	return &firstMissingPolicy{}
}

func (p *firstMissingPolicy) selectPieces(
	limit int,
	valid func(int) bool,
	candidates *bitset.BitSet,
	numPeersByPiece syncutil.Counters) ([]int, error) {

	pieces := make([]int, 0, limit)
	for i, e := candidates.NextSet(0); e; i, e = candidates.NextSet(i + 1) {
		if len(pieces) == limit {
			break
		}
		if valid(int(i)) {
			pieces = append(pieces, int(i))
		}
	}

	return pieces, nil
}
