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

// mkartifact materializes a sparse artifact file for seeding a swarm. The
// chosen geometry must match the artifact section of every peer and tracker
// config in the swarm.
package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/shoal/shoal/core"
	"github.com/shoal/shoal/utils/log"
	"github.com/shoal/shoal/utils/memsize"

	"github.com/c2h5oh/datasize"
	"github.com/spf13/cobra"
)

func init() {
	rootCmd.PersistentFlags().StringVarP(
		&path, "path", "", "artifact.bin", "output file path")
	rootCmd.PersistentFlags().StringVarP(
		&pieceSize, "piece-size", "", "1MB", "piece size (e.g. 512KB, 4MB)")
	rootCmd.PersistentFlags().IntVarP(
		&numPieces, "num-pieces", "", 500, "number of pieces")
	rootCmd.PersistentFlags().BoolVarP(
		&force, "force", "", false, "overwrite an existing file")
}

var (
	path      string
	pieceSize string
	numPieces int
	force     bool

	rootCmd = &cobra.Command{
		Short: "mkartifact generates a sparse artifact file of fixed piece geometry.",
		Run: func(rootCmd *cobra.Command, args []string) {
			if err := run(); err != nil {
				log.Fatal(err)
			}
		},
	}
)

func run() error {
	var ps datasize.ByteSize
	if err := ps.UnmarshalText([]byte(pieceSize)); err != nil {
		return fmt.Errorf("parse piece size: %s", err)
	}

	artifact := core.Artifact{
		Name:      filepath.Base(path),
		PieceSize: ps,
		NumPieces: numPieces,
	}
	if err := artifact.Validate(); err != nil {
		return fmt.Errorf("invalid geometry: %s", err)
	}

	flags := os.O_RDWR | os.O_CREATE | os.O_EXCL
	if force {
		flags = os.O_RDWR | os.O_CREATE | os.O_TRUNC
	}
	f, err := os.OpenFile(path, flags, 0644)
	if err != nil {
		return fmt.Errorf("open %s: %s", path, err)
	}
	defer f.Close()

	if err := f.Truncate(int64(artifact.TotalBytes())); err != nil {
		return fmt.Errorf("truncate to %d bytes: %s", artifact.TotalBytes(), err)
	}

	fmt.Printf("Created %s: %d pieces x %s (%s total)\n",
		path,
		artifact.NumPieces,
		memsize.Format(uint64(artifact.PieceSize)),
		memsize.Format(artifact.TotalBytes()))
	return nil
}

func main() {
	rootCmd.Execute()
}
