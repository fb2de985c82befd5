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
	"github.com/shoal/shoal/utils/listener"
)

// Config defines Server configuration.
type Config struct {
	Listener listener.Config `yaml:"listener"`

	// TopPieces limits how many entries the status document's popularity
	// ranking carries.
	TopPieces int `yaml:"top_pieces"`
}

func (c Config) applyDefaults() Config {
	if c.Listener.Addr == "" {
		c.Listener.Addr = "localhost:8000"
	}
	if c.TopPieces == 0 {
		c.TopPieces = 5
	}
	return c
}
