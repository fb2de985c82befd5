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
	"errors"
	"fmt"

	"github.com/c2h5oh/datasize"
)

// Artifact describes the fixed geometry of the one blob a swarm distributes.
// Every process in a swarm must agree on these values out of band; they are
// configured, never negotiated. Every piece has exactly PieceSize bytes,
// including the last one.
type Artifact struct {
	Name      string            `yaml:"name"`
	PieceSize datasize.ByteSize `yaml:"piece_size"`
	NumPieces int               `yaml:"num_pieces"`
}

// ApplyDefaults fills in default geometry for unset fields.
func (a Artifact) ApplyDefaults() Artifact {
	if a.Name == "" {
		a.Name = "artifact.bin"
	}
	if a.PieceSize == 0 {
		a.PieceSize = datasize.MB
	}
	if a.NumPieces == 0 {
		a.NumPieces = 500
	}
	return a
}

// Validate returns an error if the geometry is unusable.
func (a Artifact) Validate() error {
	if a.Name == "" {
		return errors.New("empty artifact name")
	}
	if a.PieceSize == 0 {
		return errors.New("zero piece size")
	}
	if a.NumPieces <= 0 {
		return fmt.Errorf("invalid piece count %d", a.NumPieces)
	}
	return nil
}

// TotalBytes returns the exact artifact length.
func (a Artifact) TotalBytes() uint64 {
	return uint64(a.PieceSize) * uint64(a.NumPieces)
}

// PieceOffset returns the byte offset of piece i within the artifact.
func (a Artifact) PieceOffset(i int) int64 {
	return int64(i) * int64(a.PieceSize)
}

// ValidPiece returns whether i is a piece index of a.
func (a Artifact) ValidPiece(i int) bool {
	return i >= 0 && i < a.NumPieces
}

func (a Artifact) String() string {
	return fmt.Sprintf("%s (%d x %s pieces)", a.Name, a.NumPieces, a.PieceSize)
}
