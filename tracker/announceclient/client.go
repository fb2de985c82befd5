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

// Package announceclient provides a client for the tracker's registration
// and lookup surface.
package announceclient

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/shoal/shoal/core"
	"github.com/shoal/shoal/lib/tracing"
	"github.com/shoal/shoal/utils/httputil"
)

// Config defines announce client configuration.
type Config struct {
	// Addr is the tracker address.
	Addr string `yaml:"addr"`

	// Timeout bounds each tracker request end to end.
	Timeout time.Duration `yaml:"timeout"`
}

func (c Config) applyDefaults() Config {
	if c.Addr == "" {
		c.Addr = "localhost:8000"
	}
	if c.Timeout == 0 {
		c.Timeout = 30 * time.Second
	}
	return c
}

// RegisterRequest defines a register request body.
type RegisterRequest struct {
	PeerID core.PeerID `json:"peer_id"`
	Pieces []int       `json:"pieces"`
}

// PeersResponse defines the snapshot response body.
type PeersResponse struct {
	Peers core.SwarmSnapshot `json:"peers"`
}

// OwnersResponse defines the owners response body.
type OwnersResponse struct {
	Owners []core.PeerID `json:"owners"`
}

// Client defines the tracker operations a peer uses. Tracker errors are
// fatal to the caller's loop; the client never retries.
type Client interface {
	Register(pieces []int) error
	GetPeers() (core.SwarmSnapshot, error)
	Owners(piece int) ([]core.PeerID, error)
}

// HTTPClient announces to the tracker over HTTP. Requests carry trace
// context so tracker spans join the announcing peer's trace.
type HTTPClient struct {
	config    Config
	peerID    core.PeerID
	transport http.RoundTripper
}

// New creates a new HTTPClient which registers as peerID.
func New(config Config, peerID core.PeerID) *HTTPClient {
	return &HTTPClient{config.applyDefaults(), peerID, tracing.NewHTTPTransport(nil)}
}

// Register replaces the piece list the tracker stores under the client's
// peer id. An empty list is a valid registration.
func (c *HTTPClient) Register(pieces []int) error {
	body, err := json.Marshal(&RegisterRequest{PeerID: c.peerID, Pieces: pieces})
	if err != nil {
		return fmt.Errorf("marshal request: %s", err)
	}
	resp, err := httputil.Post(
		fmt.Sprintf("http://%s/register", c.config.Addr),
		httputil.SendBody(bytes.NewReader(body)),
		httputil.SendTimeout(c.config.Timeout),
		httputil.SendTransport(c.transport))
	if err != nil {
		return err
	}
	resp.Body.Close()
	return nil
}

// GetPeers returns a snapshot of the entire membership table.
func (c *HTTPClient) GetPeers() (core.SwarmSnapshot, error) {
	resp, err := httputil.Get(
		fmt.Sprintf("http://%s/peers", c.config.Addr),
		httputil.SendTimeout(c.config.Timeout),
		httputil.SendTransport(c.transport))
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	var pr PeersResponse
	if err := json.NewDecoder(resp.Body).Decode(&pr); err != nil {
		return nil, fmt.Errorf("decode response: %s", err)
	}
	if pr.Peers == nil {
		pr.Peers = core.SwarmSnapshot{}
	}
	return pr.Peers, nil
}

// Owners returns the peers registered as holding piece. The peer download
// loop derives ownership from GetPeers instead; Owners serves diagnostics.
func (c *HTTPClient) Owners(piece int) ([]core.PeerID, error) {
	resp, err := httputil.Get(
		fmt.Sprintf("http://%s/owners/%d", c.config.Addr, piece),
		httputil.SendTimeout(c.config.Timeout),
		httputil.SendTransport(c.transport))
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	var or OwnersResponse
	if err := json.NewDecoder(resp.Body).Decode(&or); err != nil {
		return nil, fmt.Errorf("decode response: %s", err)
	}
	return or.Owners, nil
}
