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
	"github.com/shoal/shoal/utils/randutil"

	"github.com/c2h5oh/datasize"
)

// PeerIDFixture returns a random PeerID for testing purposes.
func PeerIDFixture() PeerID {
	p, err := NewPeerID("127.0.0.1", randutil.Port())
	if err != nil {
		panic(err)
	}
	return p
}

// ArtifactFixture returns a small artifact geometry for testing purposes.
func ArtifactFixture(numPieces int, pieceSize uint64) Artifact {
	return Artifact{
		Name:      string(randutil.Text(8)) + ".bin",
		PieceSize: datasize.ByteSize(pieceSize),
		NumPieces: numPieces,
	}
}

// SwarmSnapshotFixture builds a snapshot from peer piece lists.
func SwarmSnapshotFixture(peers map[string][]int) SwarmSnapshot {
	s := make(SwarmSnapshot, len(peers))
	for addr, pieces := range peers {
		id, err := ParsePeerID(addr)
		if err != nil {
			panic(err)
		}
		s[id] = pieces
	}
	return s
}
