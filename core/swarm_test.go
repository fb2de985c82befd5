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

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestSwarmSnapshotCopy(t *testing.T) {
	require := require.New(t)

	s := SwarmSnapshotFixture(map[string][]int{
		"127.0.0.1:8001": {0, 1, 2},
		"127.0.0.1:8002": {2},
	})
	c := s.Copy()
	require.Equal(s, c)

	c["127.0.0.1:8001"][0] = 99
	require.Equal([]int{0, 1, 2}, s["127.0.0.1:8001"])
}

func TestSwarmSnapshotSplitRoles(t *testing.T) {
	const numPieces = 4

	self := PeerID("127.0.0.1:8001")

	tests := []struct {
		desc     string
		snapshot SwarmSnapshot
		seeds    int
		leechers int
	}{
		{
			"empty snapshot",
			SwarmSnapshot{},
			0, 0,
		},
		{
			"self not counted",
			SwarmSnapshotFixture(map[string][]int{
				"127.0.0.1:8001": {0, 1, 2, 3},
			}),
			0, 0,
		},
		{
			"zero piece registrants not counted",
			SwarmSnapshotFixture(map[string][]int{
				"127.0.0.1:8002": {},
			}),
			0, 0,
		},
		{
			"mixed swarm",
			SwarmSnapshotFixture(map[string][]int{
				"127.0.0.1:8001": {0},
				"127.0.0.1:8002": {0, 1, 2, 3},
				"127.0.0.1:8003": {0, 1, 2, 3},
				"127.0.0.1:8004": {3},
				"127.0.0.1:8005": {},
			}),
			2, 1,
		},
	}
	for _, test := range tests {
		t.Run(test.desc, func(t *testing.T) {
			require := require.New(t)

			seeds, leechers := test.snapshot.SplitRoles(self, numPieces)
			require.Equal(test.seeds, seeds)
			require.Equal(test.leechers, leechers)
		})
	}
}

func TestSwarmSnapshotSeeds(t *testing.T) {
	require := require.New(t)

	s := SwarmSnapshotFixture(map[string][]int{
		"127.0.0.1:8001": {0, 1},
		"127.0.0.1:8002": {0},
	})
	seeds := s.Seeds(2)
	require.Len(seeds, 1)
	require.True(seeds["127.0.0.1:8001"])
}
