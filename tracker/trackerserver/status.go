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
package trackerserver

import (
	"encoding/json"
	"net/http"
	"sort"

	"github.com/shoal/shoal/core"
	"github.com/shoal/shoal/utils/handler"
)

// Status is the document returned by GET /status.
type Status struct {
	Uptime        string       `json:"uptime"`
	NumPeers      int          `json:"num_peers"`
	Registers     int64        `json:"registers"`
	Lookups       int64        `json:"lookups"`
	PopularPieces []PieceCount `json:"popular_pieces"`
	Peers         []PeerStatus `json:"peers"`
}

// PieceCount is the number of owner lookups a single piece has served.
type PieceCount struct {
	Piece int   `json:"piece"`
	Count int64 `json:"count"`
}

// PeerStatus summarizes one registered peer.
type PeerStatus struct {
	PeerID    core.PeerID `json:"peer_id"`
	NumPieces int         `json:"num_pieces"`
	Percent   float64     `json:"percent"`
}

// statusHandler renders the operator dashboard. Percent completeness uses the
// artifact geometry the tracker was configured with.
func (s *Server) statusHandler(w http.ResponseWriter, r *http.Request) error {
	// Stats before Snapshot, so the rendered lookup count excludes this
	// render's own table read.
	stats := s.store.Stats()
	snapshot := s.store.Snapshot()

	popular := make([]PieceCount, 0, len(stats.Popularity))
	for piece, count := range stats.Popularity {
		popular = append(popular, PieceCount{Piece: piece, Count: count})
	}
	sort.Slice(popular, func(i, j int) bool {
		if popular[i].Count != popular[j].Count {
			return popular[i].Count > popular[j].Count
		}
		return popular[i].Piece < popular[j].Piece
	})
	if len(popular) > s.config.TopPieces {
		popular = popular[:s.config.TopPieces]
	}

	peers := make([]PeerStatus, 0, len(snapshot))
	for id, pieces := range snapshot {
		peers = append(peers, PeerStatus{
			PeerID:    id,
			NumPieces: len(pieces),
			Percent:   100 * float64(len(pieces)) / float64(s.artifact.NumPieces),
		})
	}
	sort.Slice(peers, func(i, j int) bool { return peers[i].PeerID < peers[j].PeerID })

	resp := Status{
		Uptime:        stats.Uptime.String(),
		NumPeers:      stats.NumPeers,
		Registers:     stats.Registers,
		Lookups:       stats.Lookups,
		PopularPieces: popular,
		Peers:         peers,
	}
	if err := json.NewEncoder(w).Encode(&resp); err != nil {
		return handler.Errorf("encode response: %s", err)
	}
	return nil
}
