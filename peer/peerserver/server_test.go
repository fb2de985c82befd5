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
package peerserver

import (
	"encoding/json"
	"fmt"
	"io/ioutil"
	"net/http"
	"os"
	"path/filepath"
	"testing"

	"github.com/shoal/shoal/core"
	"github.com/shoal/shoal/lib/blob"
	"github.com/shoal/shoal/lib/scheduler"
	"github.com/shoal/shoal/lib/transfer"
	"github.com/shoal/shoal/tracker/announceclient"
	"github.com/shoal/shoal/utils/randutil"
	"github.com/shoal/shoal/utils/testutil"

	"github.com/stretchr/testify/require"
	"github.com/uber-go/tally"
)

const (
	_testPieces    = 8
	_testPieceSize = 16
)

func startServer(t *testing.T, seed bool) (addr string, b *blob.Blob, cleanup func()) {
	require := require.New(t)

	dir, err := ioutil.TempDir("", "peerserver")
	require.NoError(err)

	artifact := core.ArtifactFixture(_testPieces, _testPieceSize)
	pid := core.PeerIDFixture()

	if seed {
		source := filepath.Join(dir, artifact.Name)
		require.NoError(ioutil.WriteFile(
			source, randutil.Bytes(int(artifact.TotalBytes())), 0644))
		b, err = blob.NewSeeder(artifact, source)
	} else {
		b, err = blob.NewLeecher(artifact, pid, dir)
	}
	require.NoError(err)

	sched, err := scheduler.New(
		scheduler.Config{},
		tally.NoopScope,
		pid,
		b,
		announceclient.New(announceclient.Config{}, pid),
		transfer.NewClient(transfer.Config{}, artifact))
	require.NoError(err)

	server := New(Config{}, tally.NoopScope, pid, seed, b, sched)
	addr, stop := testutil.StartServer(server.Handler())

	return addr, b, func() {
		stop()
		b.Close()
		os.RemoveAll(dir)
	}
}

func getStatus(t *testing.T, addr string) Status {
	require := require.New(t)

	resp, err := http.Get(fmt.Sprintf("http://%s/status", addr))
	require.NoError(err)
	defer resp.Body.Close()
	require.Equal(http.StatusOK, resp.StatusCode)

	var status Status
	require.NoError(json.NewDecoder(resp.Body).Decode(&status))
	return status
}

func TestStatusLeecher(t *testing.T) {
	require := require.New(t)

	addr, b, cleanup := startServer(t, false)
	defer cleanup()

	status := getStatus(t, addr)
	require.False(status.Seed)
	require.False(status.Complete)
	require.Equal(0, status.NumOwned)
	require.Equal(_testPieces, status.NumPieces)
	require.Equal(float64(0), status.Percent)

	require.True(b.ReservePiece(3))
	require.NoError(b.WritePiece(randutil.Bytes(_testPieceSize), 3))

	status = getStatus(t, addr)
	require.Equal(1, status.NumOwned)
	require.Equal(12.5, status.Percent)
	require.False(status.Complete)
}

func TestStatusSeeder(t *testing.T) {
	require := require.New(t)

	addr, _, cleanup := startServer(t, true)
	defer cleanup()

	status := getStatus(t, addr)
	require.True(status.Seed)
	require.True(status.Complete)
	require.Equal(_testPieces, status.NumOwned)
	require.Equal(float64(100), status.Percent)
}

func TestHealth(t *testing.T) {
	require := require.New(t)

	addr, _, cleanup := startServer(t, false)
	defer cleanup()

	resp, err := http.Get(fmt.Sprintf("http://%s/health", addr))
	require.NoError(err)
	defer resp.Body.Close()
	require.Equal(http.StatusOK, resp.StatusCode)

	body, err := ioutil.ReadAll(resp.Body)
	require.NoError(err)
	require.Equal("OK\n", string(body))
}
