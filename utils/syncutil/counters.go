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
package syncutil

import "go.uber.org/atomic"

// Counters is a fixed-length set of counters, safe for concurrent use.
// Indexes follow the usual slice bounds semantics.
type Counters []atomic.Int64

// NewCounters creates a zeroed Counters of the given length.
func NewCounters(length int) Counters {
	return make(Counters, length)
}

// Len returns the number of counters.
func (c Counters) Len() int {
	return len(c)
}

// Get returns the value of counter i.
func (c Counters) Get(i int) int {
	return int(c[i].Load())
}

// Increment adds one to counter i.
func (c Counters) Increment(i int) {
	c[i].Inc()
}
