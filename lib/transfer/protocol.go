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

// Package transfer implements the piece transfer protocol between peers:
// plain TCP, one piece per connection. The client sends the ASCII request
// "GET <index>" with no trailing newline. A provider which owns the piece
// streams back exactly one piece of raw bytes and closes; one which does
// not replies with a short ASCII sentinel and closes. Responses carry no
// framing, so hit and miss are told apart by length alone: the sentinel is
// shorter than any piece.
package transfer

import (
	"fmt"
	"strconv"
	"strings"
)

// maxRequestBytes bounds the single read a server spends on a request.
const maxRequestBytes = 1024

// missSentinel is the literal reply for a piece the provider cannot serve.
var missSentinel = []byte("ERRO: Pedaco nao encontrado")

func pieceRequest(i int) []byte {
	return []byte(fmt.Sprintf("GET %d", i))
}

func parsePieceRequest(req []byte) (int, error) {
	fields := strings.Fields(string(req))
	if len(fields) != 2 || fields[0] != "GET" {
		return 0, fmt.Errorf("malformed request %q", req)
	}
	i, err := strconv.Atoi(fields[1])
	if err != nil {
		return 0, fmt.Errorf("malformed piece index: %s", err)
	}
	if i < 0 {
		return 0, fmt.Errorf("negative piece index %d", i)
	}
	return i, nil
}
