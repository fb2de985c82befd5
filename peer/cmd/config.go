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
	"go.uber.org/zap"

	"github.com/shoal/shoal/core"
	"github.com/shoal/shoal/lib/blob"
	"github.com/shoal/shoal/lib/scheduler"
	"github.com/shoal/shoal/lib/tracing"
	"github.com/shoal/shoal/lib/transfer"
	"github.com/shoal/shoal/metrics"
	"github.com/shoal/shoal/peer/peerserver"
	"github.com/shoal/shoal/tracker/announceclient"
)

// Config defines peer configuration.
type Config struct {
	ZapLogging zap.Config            `yaml:"zap"`
	Metrics    metrics.Config        `yaml:"metrics"`
	Tracing    tracing.Config        `yaml:"tracing"`
	Artifact   core.Artifact         `yaml:"artifact"`
	Blob       blob.Config           `yaml:"blob"`
	Tracker    announceclient.Config `yaml:"tracker"`
	Transfer   transfer.Config       `yaml:"transfer"`
	Scheduler  scheduler.Config      `yaml:"scheduler"`
	PeerServer peerserver.Config     `yaml:"peerserver"`
}
