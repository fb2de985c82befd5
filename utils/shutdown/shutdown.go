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

// Package shutdown coordinates orderly process teardown.
package shutdown

import (
	"context"
	"os"
	"os/signal"
	"sync"
	"syscall"

	"github.com/shoal/shoal/utils/log"

	"go.uber.org/multierr"
)

// Handler runs registered cleanups once, on demand or on SIGINT/SIGTERM.
type Handler struct {
	ctx    context.Context
	cancel context.CancelFunc

	mu       sync.Mutex
	cleanups []func() error

	once sync.Once
}

// New creates a Handler and begins watching for termination signals. A
// signal runs the cleanups and exits the process.
func New(ctx context.Context) *Handler {
	ctx, cancel := context.WithCancel(ctx)
	h := &Handler{ctx: ctx, cancel: cancel}
	go h.watchSignals()
	return h
}

func (h *Handler) watchSignals() {
	signals := make(chan os.Signal, 1)
	signal.Notify(signals, os.Interrupt, syscall.SIGTERM)
	select {
	case sig := <-signals:
		log.Infof("Received %s, shutting down", sig)
		h.Shutdown()
		os.Exit(0)
	case <-h.ctx.Done():
	}
}

// Context returns a context which is cancelled when shutdown begins.
func (h *Handler) Context() context.Context {
	return h.ctx
}

// AddCleanup registers fn to run at shutdown. Cleanups run in reverse
// registration order.
func (h *Handler) AddCleanup(fn func() error) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.cleanups = append(h.cleanups, fn)
}

// Shutdown cancels the context and runs the cleanups. Only the first call
// runs them; later calls return immediately.
func (h *Handler) Shutdown() {
	h.once.Do(func() {
		h.cancel()

		h.mu.Lock()
		defer h.mu.Unlock()
		var err error
		for i := len(h.cleanups) - 1; i >= 0; i-- {
			err = multierr.Append(err, h.cleanups[i]())
		}
		if err != nil {
			log.Errorf("Cleanup: %s", err)
		}
		log.Info("Shutdown complete")
	})
}
