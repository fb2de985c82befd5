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

// Package blob implements the file-backed piece store a peer serves from
// and downloads into.
package blob

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/shoal/shoal/core"

	"github.com/willf/bitset"
	"go.uber.org/atomic"
)

// Blob errors.
var (
	// ErrPieceComplete is returned when writing a piece which is already
	// owned.
	ErrPieceComplete = errors.New("piece is already complete")

	// ErrPieceNotReserved is returned when writing a piece which was never
	// reserved for download.
	ErrPieceNotReserved = errors.New("piece is not reserved for download")

	// ErrPieceNotOwned is returned when reading a piece the blob does not
	// own yet.
	ErrPieceNotOwned = errors.New("piece not owned")
)

// Blob is one peer's view of the artifact on disk. Sections of the backing
// file become readable as their pieces transition to owned; a section whose
// piece is not owned holds undefined bytes.
//
// Blob is safe for concurrent use. Piece ownership is tracked with one
// atomic status per piece; a write to the backing file always completes
// before the ownership flip becomes visible, so any piece observed owned
// can be re-read from the file.
type Blob struct {
	artifact core.Artifact
	path     string
	f        *os.File

	pieces      []*atomic.Int32
	numOwned    *atomic.Int32
	numInflight *atomic.Int32
}

// NewSeeder opens the complete artifact at source for serving. The file
// length must equal the artifact geometry exactly. Every piece starts owned.
func NewSeeder(artifact core.Artifact, source string) (*Blob, error) {
	if err := artifact.Validate(); err != nil {
		return nil, err
	}
	f, err := os.Open(source)
	if err != nil {
		return nil, fmt.Errorf("open artifact: %s", err)
	}
	info, err := f.Stat()
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("stat artifact: %s", err)
	}
	if uint64(info.Size()) != artifact.TotalBytes() {
		f.Close()
		return nil, fmt.Errorf(
			"artifact size %d does not match geometry %s", info.Size(), artifact)
	}
	return &Blob{
		artifact:    artifact,
		path:        source,
		f:           f,
		pieces:      newPieces(artifact.NumPieces, _owned),
		numOwned:    atomic.NewInt32(int32(artifact.NumPieces)),
		numInflight: atomic.NewInt32(0),
	}, nil
}

// NewLeecher creates the peer's backing file under dir, pre-extended to the
// artifact length. Ownership always starts empty: bytes left over from a
// previous run are not trusted and the download restarts from scratch.
func NewLeecher(artifact core.Artifact, peerID core.PeerID, dir string) (*Blob, error) {
	if err := artifact.Validate(); err != nil {
		return nil, err
	}
	path := filepath.Join(dir, peerID.BackingFileName(artifact.Name))
	f, err := os.OpenFile(path, os.O_RDWR|os.O_CREATE, 0644)
	if err != nil {
		return nil, fmt.Errorf("open backing file: %s", err)
	}
	info, err := f.Stat()
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("stat backing file: %s", err)
	}
	if uint64(info.Size()) != artifact.TotalBytes() {
		if err := f.Truncate(int64(artifact.TotalBytes())); err != nil {
			f.Close()
			return nil, fmt.Errorf("extend backing file: %s", err)
		}
	}
	return &Blob{
		artifact:    artifact,
		path:        path,
		f:           f,
		pieces:      newPieces(artifact.NumPieces, _missing),
		numOwned:    atomic.NewInt32(0),
		numInflight: atomic.NewInt32(0),
	}, nil
}

// Artifact returns the artifact geometry b stores.
func (b *Blob) Artifact() core.Artifact {
	return b.artifact
}

// Path returns the location of the backing file.
func (b *Blob) Path() string {
	return b.path
}

// ReservePiece transitions piece i from missing to inflight, claiming it
// for a download. Returns false if i is out of range, already inflight, or
// already owned.
func (b *Blob) ReservePiece(i int) bool {
	if !b.artifact.ValidPiece(i) {
		return false
	}
	if !b.pieces[i].CAS(int32(_missing), int32(_inflight)) {
		return false
	}
	b.numInflight.Inc()
	return true
}

// ReleasePiece returns piece i from inflight to missing after a failed
// download so the selector may pick it again. No-op unless i is inflight.
func (b *Blob) ReleasePiece(i int) {
	if !b.artifact.ValidPiece(i) {
		return
	}
	if b.pieces[i].CAS(int32(_inflight), int32(_missing)) {
		b.numInflight.Dec()
	}
}

func (b *Blob) commitPiece(i int) {
	if b.pieces[i].CAS(int32(_inflight), int32(_owned)) {
		b.numInflight.Dec()
		b.numOwned.Inc()
	}
}

// WritePiece persists the payload of piece i and marks it owned. The caller
// must hold the reservation from ReservePiece. The payload length must be
// exactly one piece. On write failure the reservation is released and the
// piece may be retried.
func (b *Blob) WritePiece(data []byte, i int) error {
	if !b.artifact.ValidPiece(i) {
		return fmt.Errorf("invalid piece index %d", i)
	}
	if uint64(len(data)) != uint64(b.artifact.PieceSize) {
		return fmt.Errorf(
			"invalid piece length %d, expected %d", len(data), uint64(b.artifact.PieceSize))
	}
	switch pieceStatus(b.pieces[i].Load()) {
	case _owned:
		return ErrPieceComplete
	case _missing:
		return ErrPieceNotReserved
	}
	if _, err := b.f.WriteAt(data, b.artifact.PieceOffset(i)); err != nil {
		b.ReleasePiece(i)
		return fmt.Errorf("write piece %d: %s", i, err)
	}
	b.commitPiece(i)
	return nil
}

// HasPiece returns whether piece i is owned.
func (b *Blob) HasPiece(i int) bool {
	if !b.artifact.ValidPiece(i) {
		return false
	}
	return pieceStatus(b.pieces[i].Load()) == _owned
}

// GetPieceReader returns a reader over the bytes of owned piece i.
func (b *Blob) GetPieceReader(i int) (io.Reader, error) {
	if !b.HasPiece(i) {
		return nil, ErrPieceNotOwned
	}
	return io.NewSectionReader(b.f, b.artifact.PieceOffset(i), int64(b.artifact.PieceSize)), nil
}

// Bitfield returns a snapshot of owned pieces.
func (b *Blob) Bitfield() *bitset.BitSet {
	bf := bitset.New(uint(b.artifact.NumPieces))
	for i, p := range b.pieces {
		if pieceStatus(p.Load()) == _owned {
			bf.Set(uint(i))
		}
	}
	return bf
}

// Owned returns the sorted indexes of owned pieces, in the form the tracker
// registration expects.
func (b *Blob) Owned() []int {
	owned := make([]int, 0, b.NumOwned())
	for i, p := range b.pieces {
		if pieceStatus(p.Load()) == _owned {
			owned = append(owned, i)
		}
	}
	return owned
}

// NumOwned returns the number of owned pieces.
func (b *Blob) NumOwned() int {
	return int(b.numOwned.Load())
}

// NumInflight returns the number of pieces reserved for download.
func (b *Blob) NumInflight() int {
	return int(b.numInflight.Load())
}

// Complete returns whether every piece is owned.
func (b *Blob) Complete() bool {
	return b.NumOwned() == b.artifact.NumPieces
}

// Close releases the backing file.
func (b *Blob) Close() error {
	return b.f.Close()
}
