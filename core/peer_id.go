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
	"net"
	"strconv"
	"strings"
)

// PeerID uniquely names a peer in the swarm. It is the host:port endpoint
// the peer's piece server listens on, so a peer's id is also the address
// other peers dial to download from it. Two peers on the same host must use
// distinct ports and are distinct peers.
type PeerID string

// NewPeerID creates a PeerID from host and port.
func NewPeerID(host string, port int) (PeerID, error) {
	if host == "" {
		return "", errors.New("empty host")
	}
	if port <= 0 || port > 65535 {
		return "", fmt.Errorf("invalid port %d", port)
	}
	return PeerID(net.JoinHostPort(host, strconv.Itoa(port))), nil
}

// ParsePeerID parses a host:port string into a PeerID.
func ParsePeerID(s string) (PeerID, error) {
	host, portStr, err := net.SplitHostPort(s)
	if err != nil {
		return "", fmt.Errorf("parse peer id %q: %s", s, err)
	}
	port, err := strconv.Atoi(portStr)
	if err != nil {
		return "", fmt.Errorf("parse peer id %q: invalid port: %s", s, err)
	}
	return NewPeerID(host, port)
}

// Host returns the host component of p.
func (p PeerID) Host() string {
	host, _, err := net.SplitHostPort(string(p))
	if err != nil {
		return ""
	}
	return host
}

// Port returns the port component of p, or 0 if p is malformed.
func (p PeerID) Port() int {
	_, portStr, err := net.SplitHostPort(string(p))
	if err != nil {
		return 0
	}
	port, err := strconv.Atoi(portStr)
	if err != nil {
		return 0
	}
	return port
}

// Addr returns the dialable network address of p's piece server, which is
// the id itself.
func (p PeerID) Addr() string {
	return string(p)
}

func (p PeerID) String() string {
	return string(p)
}

// BackingFileName returns the name of the local file a peer with id p fills
// in while downloading artifact: the id with colons replaced by underscores,
// prefixed to the artifact name.
func (p PeerID) BackingFileName(artifact string) string {
	return strings.Replace(string(p), ":", "_", -1) + "_" + artifact
}
