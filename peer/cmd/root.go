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
	"net"

	"github.com/shoal/shoal/core"
	"github.com/shoal/shoal/lib/blob"
	"github.com/shoal/shoal/lib/scheduler"
	"github.com/shoal/shoal/lib/tracing"
	"github.com/shoal/shoal/lib/transfer"
	"github.com/shoal/shoal/metrics"
	"github.com/shoal/shoal/peer/peerserver"
	"github.com/shoal/shoal/tracker/announceclient"
	"github.com/shoal/shoal/utils/configutil"
	"github.com/shoal/shoal/utils/log"
	"github.com/shoal/shoal/utils/shutdown"

	"github.com/spf13/cobra"
)

func init() {
	rootCmd.PersistentFlags().StringVarP(
		&host, "host", "", "localhost", "host which peer announces itself as")
	rootCmd.PersistentFlags().IntVarP(
		&port, "port", "", 0, "port which peer serves pieces on")
	rootCmd.PersistentFlags().BoolVarP(
		&seed, "seed", "", false, "serve a complete local artifact instead of downloading")
	rootCmd.PersistentFlags().StringVarP(
		&configFile, "config", "", "", "configuration file path")
	rootCmd.PersistentFlags().StringVarP(
		&cluster, "cluster", "", "", "cluster name (e.g. prod01-zone1)")
}

var (
	host       string
	port       int
	seed       bool
	configFile string
	cluster    string

	rootCmd = &cobra.Command{
		Short: "shoal-peer downloads and serves one artifact as a member of the swarm.",
		Run: func(rootCmd *cobra.Command, args []string) {
			start()
		},
	}
)

// Execute runs the peer command.
func Execute() {
	rootCmd.Execute()
}

func start() {
	if port == 0 {
		panic("must specify non-zero peer port")
	}
	var config Config
	if err := configutil.Load(configFile, &config); err != nil {
		panic(err)
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

	peerID, err := core.NewPeerID(host, port)
	if err != nil {
		log.Fatalf("Failed to create peer id: %s", err)
	}

	artifact := config.Artifact.ApplyDefaults()
	if err := artifact.Validate(); err != nil {
		log.Fatalf("Invalid artifact config: %s", err)
	}

	b, err := blob.New(config.Blob, artifact, peerID, seed)
	if err != nil {
		log.Fatalf("Failed to open blob: %s", err)
	}
	sd.AddCleanup(b.Close)

	server := transfer.NewServer(config.Transfer, stats, artifact, b)
	l, err := net.Listen("tcp", peerID.Addr())
	if err != nil {
		log.Fatalf("Failed to listen on %s: %s", peerID.Addr(), err)
	}
	go func() {
		if err := server.Serve(l); err != nil {
			log.Fatalf("Transfer server exited: %s", err)
		}
	}()
	sd.AddCleanup(func() error { server.Stop(); return nil })

	sched, err := scheduler.New(
		config.Scheduler,
		stats,
		peerID,
		b,
		announceclient.New(config.Tracker, peerID),
		transfer.NewClient(config.Transfer, artifact))
	if err != nil {
		log.Fatalf("Failed to create scheduler: %s", err)
	}
	sd.AddCleanup(func() error { sched.Stop(); return nil })

	if config.PeerServer.Enabled() {
		ps := peerserver.New(config.PeerServer, stats, peerID, seed, b, sched)
		go func() {
			log.Fatal(ps.ListenAndServe())
		}()
	}

	if err := sched.Run(); err != nil && err != scheduler.ErrSchedulerStopped {
		log.Fatalf("Scheduler exited: %s", err)
	}

	log.Infof("Serving pieces on %s until interrupted", peerID.Addr())
	select {}
}
