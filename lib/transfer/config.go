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
	"time"

	"github.com/c2h5oh/datasize"
)

// Config defines piece transfer configuration, shared by the upload server
// and the download client.
type Config struct {
	// Timeout bounds each socket operation. It is not a whole-transfer
	// deadline; a healthy transfer refreshes it on every read or write.
	Timeout time.Duration `yaml:"timeout"`

	// ChunkSize is the streaming buffer size for uploads.
	ChunkSize datasize.ByteSize `yaml:"chunk_size"`

	// UploadSlots caps concurrent inbound piece transfers. Further
	// connections are accepted only once a slot frees up.
	UploadSlots int `yaml:"upload_slots"`

	// EgressLimit throttles total upload bandwidth in bytes per second
	// across all connections. Zero disables throttling.
	EgressLimit datasize.ByteSize `yaml:"egress_limit"`
}

func (c Config) applyDefaults() Config {
	if c.Timeout == 0 {
		c.Timeout = 10 * time.Second
	}
	if c.ChunkSize == 0 {
		c.ChunkSize = 64 * datasize.KB
	}
	if c.UploadSlots == 0 {
		c.UploadSlots = 50
	}
	return c
}
