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
package scheduler

import (
	"testing"
	"time"

	"github.com/andres-erbsen/clock"
	"github.com/stretchr/testify/require"
)

func TestParallelismTarget(t *testing.T) {
	tests := []struct {
		desc     string
		seeds    int
		leechers int
		expected int
	}{
		{"empty swarm", 0, 0, 5},
		{"single seeder", 1, 0, 10},
		{"single leecher", 0, 1, 7},
		{"seeder and two leechers", 1, 2, 14},
		{"mixed swarm", 2, 3, 21},
		{"capped", 50, 0, 100},
	}
	for _, test := range tests {
		t.Run(test.desc, func(t *testing.T) {
			require := require.New(t)

			p := newParallelism(Config{}.applyDefaults().Parallelism, clock.NewMock())
			require.Equal(test.expected, p.refresh(test.seeds, test.leechers))
		})
	}
}

func TestParallelismCachesBetweenRefreshes(t *testing.T) {
	require := require.New(t)

	clk := clock.NewMock()
	p := newParallelism(Config{}.applyDefaults().Parallelism, clk)

	require.Equal(10, p.refresh(1, 0))

	// A younger snapshot does not change the cached target.
	clk.Add(time.Second)
	require.Equal(10, p.refresh(5, 5))

	clk.Add(4 * time.Second)
	require.Equal(40, p.refresh(5, 5))
}

func TestConfigClampsCapToWorkerLimit(t *testing.T) {
	require := require.New(t)

	c := Config{WorkerLimit: 10}.applyDefaults()
	require.Equal(10, c.Parallelism.Cap)
}
