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

// Package listener serves HTTP on a yaml-configured address, so a service
// can swap tcp for unix sockets without code changes.
package listener

import (
	"fmt"
	"net"
	"net/http"
)

// Config defines where a server listens.
type Config struct {
	// Net is the listener network. Defaults to tcp.
	Net string `yaml:"net"`

	// Addr is the listen address.
	Addr string `yaml:"addr"`
}

func (c Config) applyDefaults() Config {
	if c.Net == "" {
		c.Net = "tcp"
	}
	return c
}

func (c Config) String() string {
	c = c.applyDefaults()
	return fmt.Sprintf("%s:%s", c.Net, c.Addr)
}

// Serve serves h on the configured address, blocking until the server
// fails.
func Serve(config Config, h http.Handler) error {
	config = config.applyDefaults()
	l, err := net.Listen(config.Net, config.Addr)
	if err != nil {
		return err
	}
	return http.Serve(l, h)
}
