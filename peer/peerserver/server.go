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

// Package peerserver exposes a peer's download progress over HTTP.
package peerserver

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/shoal/shoal/core"
	"github.com/shoal/shoal/lib/blob"
	"github.com/shoal/shoal/lib/middleware"
	"github.com/shoal/shoal/lib/scheduler"
	"github.com/shoal/shoal/lib/tracing"
	"github.com/shoal/shoal/utils/handler"
	"github.com/shoal/shoal/utils/listener"
	"github.com/shoal/shoal/utils/log"

	"github.com/go-chi/chi"
	"github.com/uber-go/tally"
)

// Config defines Server configuration. The server is optional; an empty
// listener address disables it.
type Config struct {
	Listener listener.Config `yaml:"listener"`
}

// Enabled returns whether a listener address was configured.
func (c Config) Enabled() bool {
	return c.Listener.Addr != ""
}

// Status is the document returned by GET /status.
type Status struct {
	PeerID      core.PeerID `json:"peer_id"`
	Artifact    string      `json:"artifact"`
	Seed        bool        `json:"seed"`
	Complete    bool        `json:"complete"`
	NumOwned    int         `json:"num_owned"`
	NumPieces   int         `json:"num_pieces"`
	Percent     float64     `json:"percent"`
	NumInflight int         `json:"num_inflight"`
	NumActive   int         `json:"num_active"`
	Parallelism int         `json:"parallelism"`
	Seeds       int         `json:"seeds"`
	Leechers    int         `json:"leechers"`
}

// Server defines the peer admin HTTP server.
type Server struct {
	config Config
	stats  tally.Scope
	peerID core.PeerID
	seed   bool
	blob   *blob.Blob
	sched  *scheduler.Scheduler
}

// New creates a new Server reporting on b and sched.
func New(
	config Config,
	stats tally.Scope,
	peerID core.PeerID,
	seed bool,
	b *blob.Blob,
	sched *scheduler.Scheduler) *Server {

	stats = stats.Tagged(map[string]string{
		"module": "peerserver",
	})

	return &Server{config, stats, peerID, seed, b, sched}
}

// Handler returns the HTTP handler.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()

	r.Use(tracing.HTTPMiddleware("shoal-peer"))

	r.Use(middleware.StatusCounter(s.stats))
	r.Use(middleware.LatencyTimer(s.stats))

	r.Get("/status", handler.Wrap(s.statusHandler))
	r.Get("/health", handler.Wrap(s.healthHandler))

	return r
}

// ListenAndServe is a blocking call which runs s.
func (s *Server) ListenAndServe() error {
	log.Infof("Starting peer server on %s", s.config.Listener)
	return listener.Serve(s.config.Listener, s.Handler())
}

func (s *Server) statusHandler(w http.ResponseWriter, r *http.Request) error {
	st := s.sched.Stats()
	artifact := s.blob.Artifact()

	resp := Status{
		PeerID:      s.peerID,
		Artifact:    artifact.Name,
		Seed:        s.seed,
		Complete:    s.blob.Complete(),
		NumOwned:    st.Owned,
		NumPieces:   artifact.NumPieces,
		Percent:     100 * float64(st.Owned) / float64(artifact.NumPieces),
		NumInflight: st.Inflight,
		NumActive:   st.Active,
		Parallelism: st.Parallelism,
		Seeds:       st.Seeds,
		Leechers:    st.Leechers,
	}
	if err := json.NewEncoder(w).Encode(&resp); err != nil {
		return handler.Errorf("encode response: %s", err)
	}
	return nil
}

func (s *Server) healthHandler(w http.ResponseWriter, r *http.Request) error {
	if _, err := fmt.Fprintln(w, "OK"); err != nil {
		return fmt.Errorf("write response: %s", err)
	}
	return nil
}
