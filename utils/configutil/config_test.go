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
package configutil

import (
	"io/ioutil"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

type testConfig struct {
	Name     string            `yaml:"name"`
	Workers  int               `yaml:"workers"`
	Labels   map[string]string `yaml:"labels"`
	Backends []string          `yaml:"backends"`
}

func writeFile(t *testing.T, dir, name, content string) string {
	path := filepath.Join(dir, name)
	require.NoError(t, ioutil.WriteFile(path, []byte(content), 0644))
	return path
}

func TestLoadSingleFile(t *testing.T) {
	require := require.New(t)

	dir, err := ioutil.TempDir("", "configutil")
	require.NoError(err)
	defer os.RemoveAll(dir)

	f := writeFile(t, dir, "config.yaml", "name: shoal\nworkers: 4\n")

	var c testConfig
	require.NoError(Load(f, &c))
	require.Equal("shoal", c.Name)
	require.Equal(4, c.Workers)
}

func TestLoadExtendsMergesChain(t *testing.T) {
	require := require.New(t)

	dir, err := ioutil.TempDir("", "configutil")
	require.NoError(err)
	defer os.RemoveAll(dir)

	writeFile(t, dir, "base.yaml", `
name: base
workers: 4
labels:
  region: sjc
backends:
  - alpha
  - beta
`)
	f := writeFile(t, dir, "prod.yaml", `
extends: base.yaml
name: prod
labels:
  zone: z1
backends:
  - gamma
`)

	var c testConfig
	require.NoError(Load(f, &c))

	// Scalars present in the derived file win, absent ones are inherited.
	require.Equal("prod", c.Name)
	require.Equal(4, c.Workers)

	// Maps merge key by key, arrays are replaced wholesale.
	require.Equal(map[string]string{"region": "sjc", "zone": "z1"}, c.Labels)
	require.Equal([]string{"gamma"}, c.Backends)
}

func TestLoadExtendsRelativePath(t *testing.T) {
	require := require.New(t)

	dir, err := ioutil.TempDir("", "configutil")
	require.NoError(err)
	defer os.RemoveAll(dir)
	require.NoError(os.Mkdir(filepath.Join(dir, "sub"), 0755))

	writeFile(t, dir, "base.yaml", "name: base\nworkers: 8\n")
	f := writeFile(t, filepath.Join(dir, "sub"), "derived.yaml", "extends: ../base.yaml\nname: derived\n")

	var c testConfig
	require.NoError(Load(f, &c))
	require.Equal("derived", c.Name)
	require.Equal(8, c.Workers)
}

func TestLoadCycleError(t *testing.T) {
	require := require.New(t)

	dir, err := ioutil.TempDir("", "configutil")
	require.NoError(err)
	defer os.RemoveAll(dir)

	writeFile(t, dir, "a.yaml", "extends: b.yaml\n")
	f := writeFile(t, dir, "b.yaml", "extends: a.yaml\n")

	var c testConfig
	require.Equal(ErrCycleRef, Load(f, &c))
}

func TestLoadValidationError(t *testing.T) {
	require := require.New(t)

	dir, err := ioutil.TempDir("", "configutil")
	require.NoError(err)
	defer os.RemoveAll(dir)

	f := writeFile(t, dir, "config.yaml", "name: shoal\n")

	var c struct {
		Addr string `yaml:"addr" validate:"nonzero"`
	}
	err = Load(f, &c)
	require.Error(err)
	require.IsType(ValidationError{}, err)
}

func TestLoadMissingFile(t *testing.T) {
	require := require.New(t)

	var c testConfig
	require.Error(Load("/nonexistent/config.yaml", &c))
}
