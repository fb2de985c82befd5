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
	"fmt"
	"net"
	"time"

	"github.com/shoal/shoal/core"
)

// Client downloads single pieces from providers.
type Client struct {
	config   Config
	artifact core.Artifact
}

// NewClient creates a new Client for the given artifact geometry.
func NewClient(config Config, artifact core.Artifact) *Client {
	return &Client{config.applyDefaults(), artifact}
}

// Download fetches piece i from the provider at addr. It succeeds only when
// exactly one full piece arrives; any shorter response, including the miss
// sentinel, is an error and its bytes are discarded. The deadline applies
// per socket operation, not to the transfer as a whole.
func (c *Client) Download(addr string, i int) ([]byte, error) {
	conn, err := net.DialTimeout("tcp", addr, c.config.Timeout)
	if err != nil {
		return nil, fmt.Errorf("dial %s: %s", addr, err)
	}
	defer conn.Close()

	if err := conn.SetWriteDeadline(time.Now().Add(c.config.Timeout)); err != nil {
		return nil, fmt.Errorf("set write deadline: %s", err)
	}
	if _, err := conn.Write(pieceRequest(i)); err != nil {
		return nil, fmt.Errorf("send request: %s", err)
	}

	data := make([]byte, c.artifact.PieceSize)
	var read int
	for read < len(data) {
		if err := conn.SetReadDeadline(time.Now().Add(c.config.Timeout)); err != nil {
			return nil, fmt.Errorf("set read deadline: %s", err)
		}
		n, err := conn.Read(data[read:])
		read += n
		if read == len(data) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf(
				"read piece %d from %s: got %d of %d bytes: %s",
				i, addr, read, len(data), err)
		}
	}
	return data, nil
}
