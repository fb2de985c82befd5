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
package middleware

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi"
	"github.com/uber-go/tally"
)

// scopeByEndpoint scopes stats by path and method, ignoring any path variables.
// For example, "GET /owners/{piece}" is converted into the scope "owners.GET".
//
// Note: scopeByEndpoint should always be called AFTER the "next" handler serves,
// such that chi can populate proper route context with the path.
//
// Wrong:
//
//	scopeByEndpoint(stats, r).Counter("n").Inc(1)
//	next.ServeHTTP(w, r)
//
// Right:
//
//	next.ServeHTTP(w, r)
//	scopeByEndpoint(stats, r).Counter("n").Inc(1)
func scopeByEndpoint(stats tally.Scope, r *http.Request) tally.Scope {
	ctx := chi.RouteContext(r.Context())
	for _, part := range strings.Split(ctx.RoutePattern(), "/") {
		if len(part) == 0 || part[0] == '{' {
			continue
		}
		stats = stats.SubScope(part)
	}
	stats = stats.SubScope(strings.ToUpper(r.Method))
	return stats
}

// statusRecorder records the status code written to a ResponseWriter.
type statusRecorder struct {
	w      http.ResponseWriter
	status int
}

func (r *statusRecorder) Header() http.Header { return r.w.Header() }

func (r *statusRecorder) Write(b []byte) (int, error) { return r.w.Write(b) }

func (r *statusRecorder) WriteHeader(status int) {
	r.status = status
	r.w.WriteHeader(status)
}

func (r *statusRecorder) getStatus() int {
	if r.status == 0 {
		return http.StatusOK
	}
	return r.status
}

// StatusCounter measures endpoint request count, tagged by status code.
func StatusCounter(stats tally.Scope) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			recorder := &statusRecorder{w: w}
			next.ServeHTTP(recorder, r)
			scopeByEndpoint(stats, r).
				SubScope(strconv.Itoa(recorder.getStatus())).
				Counter("count").
				Inc(1)
		})
	}
}

// LatencyTimer measures endpoint latencies.
func LatencyTimer(stats tally.Scope) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			next.ServeHTTP(w, r)
			scopeByEndpoint(stats, r).Timer("latency").Record(time.Since(start))
		})
	}
}
