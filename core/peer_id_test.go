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

func TestNewPeerID(t *testing.T) {
	tests := []struct {
		desc     string
		host     string
		port     int
		expected string
		err      bool
	}{
		{"valid", "127.0.0.1", 8001, "127.0.0.1:8001", false},
		{"hostname", "localhost", 9000, "localhost:9000", false},
		{"empty host", "", 8001, "", true},
		{"zero port", "127.0.0.1", 0, "", true},
		{"negative port", "127.0.0.1", -1, "", true},
		{"port overflow", "127.0.0.1", 70000, "", true},
	}
	for _, test := range tests {
		t.Run(test.desc, func(t *testing.T) {
			require := require.New(t)

			p, err := NewPeerID(test.host, test.port)
			if test.err {
				require.Error(err)
				return
			}
			require.NoError(err)
			require.Equal(PeerID(test.expected), p)
		})
	}
}

func TestParsePeerID(t *testing.T) {
	require := require.New(t)

	p, err := ParsePeerID("localhost:8001")
	require.NoError(err)
	require.Equal("localhost", p.Host())
	require.Equal(8001, p.Port())
	require.Equal("localhost:8001", p.Addr())

	_, err = ParsePeerID("no-port")
	require.Error(err)

	_, err = ParsePeerID("localhost:nan")
	require.Error(err)
}

func TestPeerIDBackingFileName(t *testing.T) {
	require := require.New(t)

	p, err := NewPeerID("127.0.0.1", 8001)
	require.NoError(err)
	require.Equal("127.0.0.1_8001_data.bin", p.BackingFileName("data.bin"))
}
