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
	"strconv"

	"github.com/shoal/shoal/core"
	"github.com/shoal/shoal/tracker/announceclient"
	"github.com/shoal/shoal/utils/handler"
	"github.com/shoal/shoal/utils/log"

	"github.com/go-chi/chi"
)

// registerHandler replaces the piece list stored under the request's peer id.
// The tracker does not validate piece indexes against the artifact geometry;
// unknown indexes are stored verbatim.
func (s *Server) registerHandler(w http.ResponseWriter, r *http.Request) error {
	var req announceclient.RegisterRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		return handler.Errorf("decode body: %s", err).Status(http.StatusBadRequest)
	}
	if _, err := core.ParsePeerID(string(req.PeerID)); err != nil {
		return handler.Errorf("invalid peer id: %s", err).Status(http.StatusBadRequest)
	}
	s.store.Register(req.PeerID, req.Pieces)
	s.stats.Counter("register").Inc(1)
	s.stats.Gauge("peers").Update(float64(s.store.Stats().NumPeers))
	log.With("peer", req.PeerID).Infof("Registered %d pieces", len(req.Pieces))
	return nil
}

// peersHandler returns the full membership table.
func (s *Server) peersHandler(w http.ResponseWriter, r *http.Request) error {
	s.stats.Counter("snapshot").Inc(1)
	resp := announceclient.PeersResponse{Peers: s.store.Snapshot()}
	if err := json.NewEncoder(w).Encode(&resp); err != nil {
		return handler.Errorf("encode response: %s", err)
	}
	return nil
}

// ownersHandler returns the peers registered as holding a piece. Out-of-range
// indexes return an empty list, not an error.
func (s *Server) ownersHandler(w http.ResponseWriter, r *http.Request) error {
	piece, err := strconv.Atoi(chi.URLParam(r, "piece"))
	if err != nil {
		return handler.Errorf("invalid piece index: %s", err).Status(http.StatusBadRequest)
	}
	s.stats.Counter("owners").Inc(1)
	resp := announceclient.OwnersResponse{Owners: s.store.Owners(piece)}
	if err := json.NewEncoder(w).Encode(&resp); err != nil {
		return handler.Errorf("encode response: %s", err)
	}
	return nil
}
