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

// Package trackerserver exposes the tracker over HTTP: peers register their
// piece lists and read back the swarm snapshot, operators read /status.
package trackerserver

import (
	"fmt"
	"net/http"

	"github.com/shoal/shoal/core"
	"github.com/shoal/shoal/lib/middleware"
	"github.com/shoal/shoal/lib/tracing"
	"github.com/shoal/shoal/tracker/peerstore"
	"github.com/shoal/shoal/utils/handler"
	"github.com/shoal/shoal/utils/listener"
	"github.com/shoal/shoal/utils/log"

	"github.com/go-chi/chi"
	"github.com/uber-go/tally"
)

// Server defines the tracker HTTP server.
type Server struct {
	config   Config
	stats    tally.Scope
	artifact core.Artifact
	store    peerstore.Store
}

// New creates a new Server around store. The artifact geometry is used for
// display only; registration accepts any piece index verbatim.
func New(
	config Config,
	stats tally.Scope,
	artifact core.Artifact,
	store peerstore.Store) *Server {

	config = config.applyDefaults()

	stats = stats.Tagged(map[string]string{
		"module": "trackerserver",
	})

	return &Server{config, stats, artifact, store}
}

// Handler returns the HTTP handler.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()

	r.Use(tracing.HTTPMiddleware("shoal-tracker"))

	r.Use(middleware.StatusCounter(s.stats))
	r.Use(middleware.LatencyTimer(s.stats))

	r.Post("/register", handler.Wrap(s.registerHandler))
	r.Get("/peers", handler.Wrap(s.peersHandler))
	r.Get("/owners/{piece}", handler.Wrap(s.ownersHandler))
	r.Get("/status", handler.Wrap(s.statusHandler))
	r.Get("/health", handler.Wrap(s.healthHandler))

	return r
}

// ListenAndServe is a blocking call which runs s.
func (s *Server) ListenAndServe() error {
	log.Infof("Starting tracker server on %s", s.config.Listener)
	return listener.Serve(s.config.Listener, s.Handler())
}

func (s *Server) healthHandler(w http.ResponseWriter, r *http.Request) error {
	if _, err := fmt.Fprintln(w, "OK"); err != nil {
		return fmt.Errorf("write response: %s", err)
	}
	return nil
}
