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
package transfer

import (
	"bytes"
	"errors"
	"io"
	"io/ioutil"
	"net"
	"sync"
	"testing"
	"time"

	"github.com/shoal/shoal/core"
	"github.com/shoal/shoal/utils/randutil"
	"github.com/shoal/shoal/utils/testutil"

	"github.com/stretchr/testify/require"
	"github.com/uber-go/tally"
)

type testSource struct {
	pieces map[int][]byte
}

func (s *testSource) HasPiece(i int) bool {
	_, ok := s.pieces[i]
	return ok
}

func (s *testSource) GetPieceReader(i int) (io.Reader, error) {
	b, ok := s.pieces[i]
	if !ok {
		return nil, errors.New("no piece")
	}
	return bytes.NewReader(b), nil
}

func serverFixture(
	t *testing.T,
	artifact core.Artifact,
	source Source,
	config Config) (addr string, server *Server, stop func()) {

	l, err := net.Listen("tcp", "localhost:0")
	require.NoError(t, err)

	s := NewServer(config, tally.NoopScope, artifact, source)
	go s.Serve(l)

	return l.Addr().String(), s, s.Stop
}

func TestDownload(t *testing.T) {
	require := require.New(t)

	artifact := core.ArtifactFixture(3, 32)
	piece := randutil.Bytes(32)
	source := &testSource{pieces: map[int][]byte{1: piece}}

	addr, server, stop := serverFixture(t, artifact, source, Config{})
	defer stop()

	c := NewClient(Config{}, artifact)
	data, err := c.Download(addr, 1)
	require.NoError(err)
	require.Equal(piece, data)

	require.NoError(testutil.PollUntilTrue(5*time.Second, func() bool {
		return server.UploadsByPiece()[1] == 1
	}))
}

func TestDownloadConcurrent(t *testing.T) {
	require := require.New(t)

	artifact := core.ArtifactFixture(8, 16)
	source := &testSource{pieces: map[int][]byte{}}
	for i := 0; i < 8; i++ {
		source.pieces[i] = randutil.Bytes(16)
	}

	addr, _, stop := serverFixture(t, artifact, source, Config{})
	defer stop()

	c := NewClient(Config{}, artifact)

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			data, err := c.Download(addr, i)
			require.NoError(err)
			require.Equal(source.pieces[i], data)
		}(i)
	}
	wg.Wait()
}

func TestDownloadMiss(t *testing.T) {
	require := require.New(t)

	artifact := core.ArtifactFixture(3, 32)
	source := &testSource{pieces: map[int][]byte{}}

	addr, _, stop := serverFixture(t, artifact, source, Config{})
	defer stop()

	c := NewClient(Config{}, artifact)
	_, err := c.Download(addr, 0)
	require.Error(err)
}

func TestDownloadShortResponseFails(t *testing.T) {
	require := require.New(t)

	artifact := core.ArtifactFixture(3, 32)
	// The server sends whatever the source holds, even when it is shorter
	// than a piece. The client must reject it.
	source := &testSource{pieces: map[int][]byte{0: randutil.Bytes(10)}}

	addr, _, stop := serverFixture(t, artifact, source, Config{})
	defer stop()

	c := NewClient(Config{}, artifact)
	_, err := c.Download(addr, 0)
	require.Error(err)
}

func TestServerRepliesSentinelOnBadRequest(t *testing.T) {
	tests := []struct {
		desc    string
		request string
	}{
		{"garbage", "HELLO"},
		{"negative index", "GET -1"},
		{"missing index", "GET"},
		{"unknown piece", "GET 2"},
	}
	for _, test := range tests {
		t.Run(test.desc, func(t *testing.T) {
			require := require.New(t)

			artifact := core.ArtifactFixture(3, 32)
			source := &testSource{pieces: map[int][]byte{0: randutil.Bytes(32)}}

			addr, _, stop := serverFixture(t, artifact, source, Config{})
			defer stop()

			conn, err := net.Dial("tcp", addr)
			require.NoError(err)
			defer conn.Close()

			_, err = conn.Write([]byte(test.request))
			require.NoError(err)

			reply, err := ioutil.ReadAll(conn)
			require.NoError(err)
			require.Equal("ERRO: Pedaco nao encontrado", string(reply))
		})
	}
}

type gatedSource struct {
	pieces map[int][]byte
	gate   chan struct{}

	mu   sync.Mutex
	seen []int
}

func (s *gatedSource) HasPiece(i int) bool {
	_, ok := s.pieces[i]
	return ok
}

func (s *gatedSource) GetPieceReader(i int) (io.Reader, error) {
	s.mu.Lock()
	s.seen = append(s.seen, i)
	s.mu.Unlock()
	<-s.gate
	return bytes.NewReader(s.pieces[i]), nil
}

func (s *gatedSource) requested() []int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]int(nil), s.seen...)
}

func TestServerGatesUploadsOnSlots(t *testing.T) {
	require := require.New(t)

	artifact := core.ArtifactFixture(2, 16)
	source := &gatedSource{
		pieces: map[int][]byte{0: randutil.Bytes(16), 1: randutil.Bytes(16)},
		gate:   make(chan struct{}),
	}

	addr, _, stop := serverFixture(t, artifact, source, Config{UploadSlots: 1})
	defer stop()

	c := NewClient(Config{}, artifact)

	errs := make(chan error, 2)
	go func() {
		_, err := c.Download(addr, 0)
		errs <- err
	}()
	require.NoError(testutil.PollUntilTrue(5*time.Second, func() bool {
		return len(source.requested()) == 1
	}))

	go func() {
		_, err := c.Download(addr, 1)
		errs <- err
	}()

	// The only slot is held inside the gated read, so the second transfer
	// must not start.
	time.Sleep(100 * time.Millisecond)
	require.Equal([]int{0}, source.requested())

	close(source.gate)
	require.NoError(<-errs)
	require.NoError(<-errs)
	require.Equal([]int{0, 1}, source.requested())
}

func TestServerStop(t *testing.T) {
	require := require.New(t)

	artifact := core.ArtifactFixture(3, 32)
	source := &testSource{pieces: map[int][]byte{}}

	l, err := net.Listen("tcp", "localhost:0")
	require.NoError(err)

	s := NewServer(Config{}, tally.NoopScope, artifact, source)
	done := make(chan error, 1)
	go func() { done <- s.Serve(l) }()

	s.Stop()
	select {
	case err := <-done:
		require.NoError(err)
	case <-time.After(5 * time.Second):
		t.Fatal("server did not stop")
	}
}

func TestParsePieceRequest(t *testing.T) {
	tests := []struct {
		desc     string
		request  string
		expected int
		err      bool
	}{
		{"valid", "GET 42", 42, false},
		{"zero", "GET 0", 0, false},
		{"trailing space", "GET 7 ", 7, false},
		{"lowercase verb", "get 7", 0, true},
		{"no index", "GET", 0, true},
		{"negative", "GET -1", 0, true},
		{"not a number", "GET x", 0, true},
		{"extra field", "GET 1 2", 0, true},
		{"empty", "", 0, true},
	}
	for _, test := range tests {
		t.Run(test.desc, func(t *testing.T) {
			require := require.New(t)

			i, err := parsePieceRequest([]byte(test.request))
			if test.err {
				require.Error(err)
				return
			}
			require.NoError(err)
			require.Equal(test.expected, i)
		})
	}
}
