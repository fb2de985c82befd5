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
package blob

import (
	"io/ioutil"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/shoal/shoal/core"
	"github.com/shoal/shoal/utils/bitsetutil"
	"github.com/shoal/shoal/utils/randutil"

	"github.com/stretchr/testify/require"
)

func leecherFixture(t *testing.T, numPieces int, pieceSize uint64) (*Blob, core.PeerID, func()) {
	dir, err := ioutil.TempDir("", "blob")
	require.NoError(t, err)

	pid := core.PeerIDFixture()
	b, err := NewLeecher(core.ArtifactFixture(numPieces, pieceSize), pid, dir)
	require.NoError(t, err)

	return b, pid, func() {
		b.Close()
		os.RemoveAll(dir)
	}
}

func TestNewLeecherPreExtendsBackingFile(t *testing.T) {
	require := require.New(t)

	b, pid, cleanup := leecherFixture(t, 4, 8)
	defer cleanup()

	info, err := os.Stat(b.Path())
	require.NoError(err)
	require.Equal(int64(32), info.Size())
	require.Equal(
		pid.BackingFileName(b.Artifact().Name), filepath.Base(b.Path()))
	require.Equal(0, b.NumOwned())
	require.False(b.Complete())
}

func TestReserveWriteRead(t *testing.T) {
	require := require.New(t)

	b, _, cleanup := leecherFixture(t, 2, 8)
	defer cleanup()

	data := randutil.Bytes(8)

	require.True(b.ReservePiece(1))
	require.Equal(1, b.NumInflight())
	require.NoError(b.WritePiece(data, 1))
	require.Equal(0, b.NumInflight())

	require.True(b.HasPiece(1))
	require.Equal([]int{1}, b.Owned())

	r, err := b.GetPieceReader(1)
	require.NoError(err)
	result, err := ioutil.ReadAll(r)
	require.NoError(err)
	require.Equal(data, result)

	require.True(b.ReservePiece(0))
	require.NoError(b.WritePiece(randutil.Bytes(8), 0))
	require.True(b.Complete())
	require.Equal([]int{0, 1}, b.Owned())
}

func TestWritePieceErrors(t *testing.T) {
	require := require.New(t)

	b, _, cleanup := leecherFixture(t, 2, 8)
	defer cleanup()

	err := b.WritePiece(randutil.Bytes(4), 0)
	require.Error(err)

	require.Equal(ErrPieceNotReserved, b.WritePiece(randutil.Bytes(8), 0))

	require.True(b.ReservePiece(0))
	require.NoError(b.WritePiece(randutil.Bytes(8), 0))
	require.Equal(ErrPieceComplete, b.WritePiece(randutil.Bytes(8), 0))

	require.Error(b.WritePiece(randutil.Bytes(8), 7))
}

func TestReleasePieceAllowsRetry(t *testing.T) {
	require := require.New(t)

	b, _, cleanup := leecherFixture(t, 2, 8)
	defer cleanup()

	require.True(b.ReservePiece(0))
	require.False(b.ReservePiece(0))

	b.ReleasePiece(0)
	require.Equal(0, b.NumInflight())

	require.True(b.ReservePiece(0))
	require.NoError(b.WritePiece(randutil.Bytes(8), 0))

	// Released and owned pieces stay put.
	b.ReleasePiece(0)
	require.True(b.HasPiece(0))
}

func TestReservePieceSingleWinner(t *testing.T) {
	require := require.New(t)

	b, _, cleanup := leecherFixture(t, 1, 8)
	defer cleanup()

	var wg sync.WaitGroup
	wins := make(chan bool, 50)
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if b.ReservePiece(0) {
				wins <- true
			}
		}()
	}
	wg.Wait()
	close(wins)

	var n int
	for range wins {
		n++
	}
	require.Equal(1, n)
	require.Equal(1, b.NumInflight())
}

func TestNewSeeder(t *testing.T) {
	require := require.New(t)

	dir, err := ioutil.TempDir("", "blob")
	require.NoError(err)
	defer os.RemoveAll(dir)

	artifact := core.ArtifactFixture(4, 8)
	content := randutil.Bytes(32)
	source := filepath.Join(dir, artifact.Name)
	require.NoError(ioutil.WriteFile(source, content, 0644))

	b, err := NewSeeder(artifact, source)
	require.NoError(err)
	defer b.Close()

	require.True(b.Complete())
	require.Equal([]int{0, 1, 2, 3}, b.Owned())

	r, err := b.GetPieceReader(2)
	require.NoError(err)
	piece, err := ioutil.ReadAll(r)
	require.NoError(err)
	require.Equal(content[16:24], piece)

	require.Equal(ErrPieceComplete, b.WritePiece(randutil.Bytes(8), 2))
}

func TestNewSeederSizeMismatch(t *testing.T) {
	require := require.New(t)

	dir, err := ioutil.TempDir("", "blob")
	require.NoError(err)
	defer os.RemoveAll(dir)

	artifact := core.ArtifactFixture(4, 8)
	source := filepath.Join(dir, artifact.Name)
	require.NoError(ioutil.WriteFile(source, randutil.Bytes(31), 0644))

	_, err = NewSeeder(artifact, source)
	require.Error(err)
}

func TestLeecherRestartResetsOwnership(t *testing.T) {
	require := require.New(t)

	dir, err := ioutil.TempDir("", "blob")
	require.NoError(err)
	defer os.RemoveAll(dir)

	artifact := core.ArtifactFixture(2, 8)
	pid := core.PeerIDFixture()

	b, err := NewLeecher(artifact, pid, dir)
	require.NoError(err)
	require.True(b.ReservePiece(0))
	require.NoError(b.WritePiece(randutil.Bytes(8), 0))
	require.NoError(b.Close())

	b, err = NewLeecher(artifact, pid, dir)
	require.NoError(err)
	defer b.Close()
	require.Equal(0, b.NumOwned())
	require.False(b.HasPiece(0))
}

func TestBitfield(t *testing.T) {
	require := require.New(t)

	b, _, cleanup := leecherFixture(t, 3, 8)
	defer cleanup()

	require.True(b.ReservePiece(2))
	require.NoError(b.WritePiece(randutil.Bytes(8), 2))

	require.Equal(bitsetutil.FromBools(false, false, true), b.Bitfield())
}
