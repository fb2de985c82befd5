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

import "go.uber.org/atomic"

// pieceStatus is the per-piece download state machine:
//
//	missing -> inflight -> owned
//
// with a recovery edge inflight -> missing on download failure. owned is
// terminal; a piece never leaves it within a run. Transitions are
// compare-and-swaps so a piece can never be owned and inflight at once.
type pieceStatus int32

const (
	_missing pieceStatus = iota
	_inflight
	_owned
)

func newPieces(n int, s pieceStatus) []*atomic.Int32 {
	pieces := make([]*atomic.Int32, n)
	for i := range pieces {
		pieces[i] = atomic.NewInt32(int32(s))
	}
	return pieces
}
