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
	"context"
	"fmt"
	"io"
	"net"
	"sync"
	"time"

	"github.com/shoal/shoal/core"
	"github.com/shoal/shoal/utils/log"
	"github.com/shoal/shoal/utils/syncutil"

	"github.com/uber-go/tally"
	"go.uber.org/zap"
	"golang.org/x/sync/semaphore"
	"golang.org/x/time/rate"
)

// Source is the piece store a Server serves from.
type Source interface {
	HasPiece(i int) bool
	GetPieceReader(i int) (io.Reader, error)
}

// Server serves owned pieces to other peers, one piece per connection.
// Connections are handled by a pool bounded by Config.UploadSlots; when the
// pool is full the accept loop waits before handing off the next
// connection.
type Server struct {
	config   Config
	stats    tally.Scope
	artifact core.Artifact
	source   Source

	uploads syncutil.Counters
	slots   *semaphore.Weighted
	limiter *rate.Limiter

	ctx      context.Context
	cancel   context.CancelFunc
	stopOnce sync.Once
	wg       sync.WaitGroup

	mu       sync.Mutex
	listener net.Listener
}

// NewServer creates a new Server which answers piece requests from source.
func NewServer(
	config Config,
	stats tally.Scope,
	artifact core.Artifact,
	source Source) *Server {

	config = config.applyDefaults()
	stats = stats.Tagged(map[string]string{
		"module": "transfer",
	})
	var limiter *rate.Limiter
	if config.EgressLimit > 0 {
		limiter = rate.NewLimiter(
			rate.Limit(uint64(config.EgressLimit)), int(uint64(config.ChunkSize)))
	}
	ctx, cancel := context.WithCancel(context.Background())
	return &Server{
		config:   config,
		stats:    stats,
		artifact: artifact,
		source:   source,
		uploads:  syncutil.NewCounters(artifact.NumPieces),
		slots:    semaphore.NewWeighted(int64(config.UploadSlots)),
		limiter:  limiter,
		ctx:      ctx,
		cancel:   cancel,
	}
}

// Serve accepts piece requests on l until Stop is called. Always returns a
// non-nil error before Stop.
func (s *Server) Serve(l net.Listener) error {
	s.mu.Lock()
	s.listener = l
	s.mu.Unlock()

	s.log().Infof("Serving pieces on %s", l.Addr())
	for {
		conn, err := l.Accept()
		if err != nil {
			select {
			case <-s.ctx.Done():
				s.wg.Wait()
				return nil
			default:
				return fmt.Errorf("accept: %s", err)
			}
		}
		// Hold the accept loop until an upload slot frees.
		if err := s.slots.Acquire(s.ctx, 1); err != nil {
			conn.Close()
			continue
		}
		s.wg.Add(1)
		go func() {
			defer s.wg.Done()
			defer s.slots.Release(1)
			s.handle(conn)
		}()
	}
}

// Stop closes the listener and interrupts waiting accepts. In-progress
// transfers are left to finish against their socket deadlines.
func (s *Server) Stop() {
	s.stopOnce.Do(func() {
		s.cancel()
		s.mu.Lock()
		if s.listener != nil {
			s.listener.Close()
		}
		s.mu.Unlock()
	})
}

// UploadsByPiece returns a snapshot of successful upload counts per piece.
func (s *Server) UploadsByPiece() []int {
	counts := make([]int, s.uploads.Len())
	for i := range counts {
		counts[i] = s.uploads.Get(i)
	}
	return counts
}

func (s *Server) handle(conn net.Conn) {
	defer conn.Close()

	conn.SetReadDeadline(time.Now().Add(s.config.Timeout))
	buf := make([]byte, maxRequestBytes)
	n, err := conn.Read(buf)
	if err != nil {
		s.stats.Counter("upload_error").Inc(1)
		s.log("addr", conn.RemoteAddr()).Debugf("Read request: %s", err)
		return
	}

	i, err := parsePieceRequest(buf[:n])
	if err != nil || !s.source.HasPiece(i) {
		s.stats.Counter("upload_miss").Inc(1)
		conn.SetWriteDeadline(time.Now().Add(s.config.Timeout))
		conn.Write(missSentinel)
		return
	}

	r, err := s.source.GetPieceReader(i)
	if err != nil {
		s.stats.Counter("upload_miss").Inc(1)
		conn.SetWriteDeadline(time.Now().Add(s.config.Timeout))
		conn.Write(missSentinel)
		return
	}

	if err := s.stream(conn, r); err != nil {
		s.stats.Counter("upload_error").Inc(1)
		s.log("piece", i, "addr", conn.RemoteAddr()).Debugf("Stream piece: %s", err)
		return
	}
	s.uploads.Increment(i)
	s.stats.Counter("upload_hit").Inc(1)
}

// stream copies one piece to conn in chunks, refreshing the write deadline
// per chunk and honoring the egress limiter when set.
func (s *Server) stream(conn net.Conn, r io.Reader) error {
	buf := make([]byte, uint64(s.config.ChunkSize))
	for {
		n, err := r.Read(buf)
		if n > 0 {
			if s.limiter != nil {
				if lerr := s.limiter.WaitN(s.ctx, n); lerr != nil {
					return lerr
				}
			}
			conn.SetWriteDeadline(time.Now().Add(s.config.Timeout))
			if _, werr := conn.Write(buf[:n]); werr != nil {
				return werr
			}
		}
		if err == io.EOF {
			return nil
		}
		if err != nil {
			return err
		}
	}
}

func (s *Server) log(args ...interface{}) *zap.SugaredLogger {
	return log.With(args...)
}
