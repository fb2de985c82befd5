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
package blob

import (
	"github.com/shoal/shoal/core"
)

// Config defines where a peer's blob lives on disk.
type Config struct {
	// ArtifactPath locates the complete artifact a seeder serves. Empty
	// defaults to the artifact name in the working directory.
	ArtifactPath string `yaml:"artifact_path"`

	// DownloadDir is where a leecher keeps its backing file.
	DownloadDir string `yaml:"download_dir"`
}

func (c Config) applyDefaults(artifact core.Artifact) Config {
	if c.ArtifactPath == "" {
		c.ArtifactPath = artifact.Name
	}
	if c.DownloadDir == "" {
		c.DownloadDir = "."
	}
	return c
}

// New opens the blob for a peer process: a seeder's is the complete artifact
// file, a leecher's is a fresh backing file named after the peer.
func New(config Config, artifact core.Artifact, peerID core.PeerID, seed bool) (*Blob, error) {
	config = config.applyDefaults(artifact)
	if seed {
		return NewSeeder(artifact, config.ArtifactPath)
	}
	return NewLeecher(artifact, peerID, config.DownloadDir)
}
