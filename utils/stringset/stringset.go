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

// Package stringset provides a set type over map[string]struct{}.
package stringset

// Set holds a set of strings. The usual map idioms (make, len, range)
// all apply.
type Set map[string]struct{}

// New creates a Set containing xs.
func New(xs ...string) Set {
	s := make(Set, len(xs))
	for _, x := range xs {
		s.Add(x)
	}
	return s
}

// Add adds x to s.
func (s Set) Add(x string) {
	s[x] = struct{}{}
}

// Has returns whether x is in s.
func (s Set) Has(x string) bool {
	_, ok := s[x]
	return ok
}
