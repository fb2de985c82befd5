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
package core

// SwarmSnapshot is the tracker membership table observed at one instant:
// every registered peer mapped to the piece indexes it held at its last
// registration.
type SwarmSnapshot map[PeerID][]int

// Copy returns a deep copy of s. Piece slices are copied, never aliased,
// and empty lists stay empty rather than becoming nil.
func (s SwarmSnapshot) Copy() SwarmSnapshot {
	c := make(SwarmSnapshot, len(s))
	for id, pieces := range s {
		c[id] = append(make([]int, 0, len(pieces)), pieces...)
	}
	return c
}

// SplitRoles counts seeds and leechers in s from the point of view of peer
// self. A seed holds all numPieces pieces; a leecher holds at least one but
// not all. Neither count includes self, nor peers registered with zero
// pieces.
func (s SwarmSnapshot) SplitRoles(self PeerID, numPieces int) (seeds, leechers int) {
	for id, pieces := range s {
		if id == self {
			continue
		}
		switch n := len(pieces); {
		case n == numPieces:
			seeds++
		case n > 0:
			leechers++
		}
	}
	return seeds, leechers
}

// Seeds returns the peers in s which hold all numPieces pieces.
func (s SwarmSnapshot) Seeds(numPieces int) map[PeerID]bool {
	seeds := make(map[PeerID]bool)
	for id, pieces := range s {
		if len(pieces) == numPieces {
			seeds[id] = true
		}
	}
	return seeds
}
