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

// Package scheduler drives a peer's convergence loop. Each tick it
// re-registers with the tracker, snapshots the swarm, and dispatches piece
// downloads until the blob is complete.
package scheduler

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"sync"
	"time"

	"github.com/shoal/shoal/core"
	"github.com/shoal/shoal/lib/blob"
	"github.com/shoal/shoal/lib/scheduler/pieceselect"
	"github.com/shoal/shoal/lib/tracing"
	"github.com/shoal/shoal/tracker/announceclient"
	"github.com/shoal/shoal/utils/log"

	"github.com/andres-erbsen/clock"
	"github.com/uber-go/tally"
	"go.uber.org/zap"
	"golang.org/x/sync/semaphore"
)

// ErrSchedulerStopped is returned by Run when Stop interrupts the loop.
var ErrSchedulerStopped = errors.New("scheduler stopped")

// Downloader fetches single pieces from providers. Implemented by
// *transfer.Client.
type Downloader interface {
	Download(addr string, i int) ([]byte, error)
}

// Stats is a point-in-time view of scheduler progress.
type Stats struct {
	Owned       int
	Inflight    int
	Active      int
	Parallelism int
	Seeds       int
	Leechers    int
}

// result is the outcome of one dispatched download.
type result struct {
	piece    int
	provider core.PeerID
	err      error
}

// Scheduler downloads a blob from the swarm.
type Scheduler struct {
	config   Config
	stats    tally.Scope
	clk      clock.Clock
	peerID   core.PeerID
	blob     *blob.Blob
	announce announceclient.Client
	download Downloader
	selector *pieceselect.Selector

	parallelism *parallelism
	workers     *semaphore.Weighted
	results     chan result

	// active maps dispatched pieces not yet reaped. Only the run loop
	// touches it.
	active map[int]bool

	mu       sync.Mutex
	progress Stats

	ctx      context.Context
	cancel   context.CancelFunc
	stopOnce sync.Once
}

// schedOverrides defines Scheduler fields which may be overridden for
// testing purposes.
type schedOverrides struct {
	clk  clock.Clock
	rand *rand.Rand
}

type option func(*schedOverrides)

func withClock(c clock.Clock) option {
	return func(o *schedOverrides) { o.clk = c }
}

func withRand(r *rand.Rand) option {
	return func(o *schedOverrides) { o.rand = r }
}

// New creates a Scheduler which downloads into b, announcing as peerID.
func New(
	config Config,
	stats tally.Scope,
	peerID core.PeerID,
	b *blob.Blob,
	announce announceclient.Client,
	download Downloader,
	options ...option) (*Scheduler, error) {

	config = config.applyDefaults()

	overrides := schedOverrides{
		clk:  clock.New(),
		rand: rand.New(rand.NewSource(time.Now().UnixNano())),
	}
	for _, opt := range options {
		opt(&overrides)
	}

	selector, err := pieceselect.New(
		config.Policy, b.Artifact().NumPieces, overrides.rand)
	if err != nil {
		return nil, fmt.Errorf("piece selection: %s", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	return &Scheduler{
		config:      config,
		stats:       stats.SubScope("scheduler"),
		clk:         overrides.clk,
		peerID:      peerID,
		blob:        b,
		announce:    announce,
		download:    download,
		selector:    selector,
		parallelism: newParallelism(config.Parallelism, overrides.clk),
		workers:     semaphore.NewWeighted(int64(config.WorkerLimit)),
		results:     make(chan result, config.WorkerLimit),
		active:      make(map[int]bool),
		ctx:         ctx,
		cancel:      cancel,
	}, nil
}

// Run blocks until the blob is complete, then registers the full piece list
// once more and returns. A blob which starts complete registers immediately,
// so a seeder never enters the loop. Any tracker error aborts the loop with
// that error; Stop aborts with ErrSchedulerStopped.
func (s *Scheduler) Run() error {
	for !s.blob.Complete() {
		if s.ctx.Err() != nil {
			return ErrSchedulerStopped
		}
		if err := s.tick(); err != nil {
			return err
		}
		s.sleep()
	}
	if err := s.announce.Register(s.blob.Owned()); err != nil {
		return fmt.Errorf("register: %s", err)
	}
	s.log().Infof("Blob complete: %s", s.blob.Artifact())
	return nil
}

// Stop interrupts Run. Safe to call concurrently and more than once.
// Dispatched downloads are left to finish against their socket deadlines.
func (s *Scheduler) Stop() {
	s.stopOnce.Do(func() {
		s.log().Info("Stopping scheduler")
		s.cancel()
	})
}

// Stats returns a snapshot of scheduler progress.
func (s *Scheduler) Stats() Stats {
	s.mu.Lock()
	defer s.mu.Unlock()
	st := s.progress
	st.Owned = s.blob.NumOwned()
	st.Inflight = s.blob.NumInflight()
	return st
}

func (s *Scheduler) tick() error {
	if err := s.announce.Register(s.blob.Owned()); err != nil {
		return fmt.Errorf("register: %s", err)
	}
	snapshot, err := s.announce.GetPeers()
	if err != nil {
		return fmt.Errorf("get peers: %s", err)
	}

	numPieces := s.blob.Artifact().NumPieces
	seeds, leechers := snapshot.SplitRoles(s.peerID, numPieces)
	target := s.parallelism.refresh(seeds, leechers)

	s.reap()

	if err := s.schedule(snapshot, target); err != nil {
		return err
	}

	s.mu.Lock()
	s.progress = Stats{
		Active:      len(s.active),
		Parallelism: target,
		Seeds:       seeds,
		Leechers:    leechers,
	}
	s.mu.Unlock()

	owned := s.blob.NumOwned()
	s.stats.Gauge("owned").Update(float64(owned))
	s.stats.Gauge("active").Update(float64(len(s.active)))
	s.stats.Gauge("parallelism").Update(float64(target))
	s.log().Infof("Progress: %d/%d pieces (%.1f%%), %d active downloads",
		owned, numPieces, 100*float64(owned)/float64(numPieces), len(s.active))

	return nil
}

// reap drains finished downloads. Failed pieces go back to missing so a
// later tick may select them again, possibly from another provider.
func (s *Scheduler) reap() {
	for {
		select {
		case r := <-s.results:
			delete(s.active, r.piece)
			if r.err != nil {
				s.blob.ReleasePiece(r.piece)
				s.stats.Counter("download_failure").Inc(1)
				s.log("piece", r.piece, "provider", r.provider).
					Errorf("Download failed: %s", r.err)
			} else {
				s.stats.Counter("download_success").Inc(1)
			}
		default:
			return
		}
	}
}

// schedule fills the gap between the parallelism target and the dispatched
// downloads still in flight.
func (s *Scheduler) schedule(snapshot core.SwarmSnapshot, target int) error {
	free := target - len(s.active)
	if free <= 0 {
		return nil
	}
	valid := func(i int) bool { return !s.blob.HasPiece(i) && !s.active[i] }
	selections, err := s.selector.Select(free, snapshot, s.peerID, valid)
	if err != nil {
		return err
	}
	for _, sel := range selections {
		if !s.blob.ReservePiece(sel.Piece) {
			continue
		}
		s.active[sel.Piece] = true
		s.dispatch(sel)
	}
	return nil
}

func (s *Scheduler) dispatch(sel pieceselect.Selection) {
	// Worker slots only run out momentarily: the parallelism cap never
	// exceeds the pool size, so waiting here is bounded by result sends
	// already in progress.
	if err := s.workers.Acquire(s.ctx, 1); err != nil {
		delete(s.active, sel.Piece)
		s.blob.ReleasePiece(sel.Piece)
		return
	}
	go func() {
		defer s.workers.Release(1)
		// Buffered to WorkerLimit, so the send never blocks.
		s.results <- result{sel.Piece, sel.Provider, s.downloadPiece(sel)}
	}()
}

func (s *Scheduler) downloadPiece(sel pieceselect.Selection) (err error) {
	_, end := tracing.StartSpan(s.ctx, "piece.download",
		tracing.AttrPiece.Int(sel.Piece),
		tracing.AttrProvider.String(sel.Provider.String()))
	defer func() { end(err) }()

	data, err := s.download.Download(sel.Provider.Addr(), sel.Piece)
	if err != nil {
		return fmt.Errorf("download from %s: %s", sel.Provider, err)
	}
	if err := s.blob.WritePiece(data, sel.Piece); err != nil {
		return fmt.Errorf("write piece: %s", err)
	}
	return nil
}

func (s *Scheduler) sleep() {
	t := s.clk.Timer(s.config.TickInterval)
	defer t.Stop()
	select {
	case <-t.C:
	case <-s.ctx.Done():
	}
}

func (s *Scheduler) log(args ...interface{}) *zap.SugaredLogger {
	args = append(args, "peer", s.peerID)
	return log.With(args...)
}
