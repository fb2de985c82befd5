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
	"io/ioutil"
	"os"
	"path/filepath"
	"testing"

	"github.com/shoal/shoal/core"
	"github.com/shoal/shoal/utils/randutil"

	"github.com/stretchr/testify/require"
)

func TestNewSeedOpensArtifactPath(t *testing.T) {
	require := require.New(t)

	dir, err := ioutil.TempDir("", "blob")
	require.NoError(err)
	defer os.RemoveAll(dir)

	artifact := core.ArtifactFixture(4, 8)
	path := filepath.Join(dir, "shared.bin")
	require.NoError(ioutil.WriteFile(path, randutil.Bytes(32), 0644))

	b, err := New(Config{ArtifactPath: path}, artifact, core.PeerIDFixture(), true)
	require.NoError(err)
	defer b.Close()

	require.True(b.Complete())
	require.Equal(path, b.Path())
}

func TestNewLeechCreatesBackingFileInDownloadDir(t *testing.T) {
	require := require.New(t)

	dir, err := ioutil.TempDir("", "blob")
	require.NoError(err)
	defer os.RemoveAll(dir)

	artifact := core.ArtifactFixture(4, 8)
	pid := core.PeerIDFixture()

	b, err := New(Config{DownloadDir: dir}, artifact, pid, false)
	require.NoError(err)
	defer b.Close()

	require.False(b.Complete())
	require.Equal(filepath.Join(dir, pid.BackingFileName(artifact.Name)), b.Path())

	_, err = os.Stat(b.Path())
	require.NoError(err)
}
