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
package cmd

import (
	"context"

	"github.com/shoal/shoal/lib/tracing"
	"github.com/shoal/shoal/metrics"
	"github.com/shoal/shoal/tracker/peerstore"
	"github.com/shoal/shoal/tracker/trackerserver"
	"github.com/shoal/shoal/utils/configutil"
	"github.com/shoal/shoal/utils/log"
	"github.com/shoal/shoal/utils/shutdown"

	"github.com/andres-erbsen/clock"
	"github.com/spf13/cobra"
)

func init() {
	rootCmd.PersistentFlags().StringVarP(
		&addr, "addr", "", "", "address to listen on (overrides config)")
	rootCmd.PersistentFlags().StringVarP(
		&configFile, "config", "", "", "configuration file path")
	rootCmd.PersistentFlags().StringVarP(
		&cluster, "cluster", "", "", "cluster name (e.g. prod01-zone1)")
}

var (
	addr       string
	configFile string
	cluster    string

	rootCmd = &cobra.Command{
		Short: "shoal-tracker keeps track of all the peers and their pieces in the swarm.",
		Run: func(rootCmd *cobra.Command, args []string) {
			start()
		},
	}
)

// Execute runs the tracker command.
func Execute() {
	rootCmd.Execute()
}

func start() {
	var config Config
	if err := configutil.Load(configFile, &config); err != nil {
		panic(err)
	}
	if addr != "" {
		config.TrackerServer.Listener.Addr = addr
	}

	zlog := log.ConfigureLogger(config.ZapLogging)
	defer zlog.Sync()

	stats, closer, err := metrics.New(config.Metrics, cluster)
	if err != nil {
		log.Fatalf("Failed to init metrics: %s", err)
	}
	defer closer.Close()

	go metrics.EmitVersion(stats)

	sd := shutdown.New(context.Background())

	flush, err := tracing.InitProvider(sd.Context(), config.Tracing)
	if err != nil {
		log.Fatalf("Failed to init tracing: %s", err)
	}
	sd.AddCleanup(func() error { return flush(context.Background()) })

	artifact := config.Artifact.ApplyDefaults()
	if err := artifact.Validate(); err != nil {
		log.Fatalf("Invalid artifact config: %s", err)
	}

	store := peerstore.NewLocalStore(clock.New())

	server := trackerserver.New(config.TrackerServer, stats, artifact, store)
	log.Fatal(server.ListenAndServe())
}
