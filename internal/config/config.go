// Copyright 2023 The Cockroach Authors
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
//
// SPDX-License-Identifier: Apache-2.0

// Package config binds the user-visible configuration for a process
// hosting the catalog façade: which backend to open, in what mode,
// and the two engine knobs this module leaves to the embedder (the
// paged scan window and the exporter's channel buffer size).
package config

import (
	"github.com/pkg/errors"
	"github.com/spf13/pflag"

	"github.com/riftdb/riftkv/internal/kv"
)

// Config is bound to a pflag.FlagSet: one struct, one Bind, one
// Preflight.
type Config struct {
	// Backend names the registered kv.Driver to Open, e.g. "mem",
	// "badger", "pebble", "tikv", "fdb".
	Backend string
	// DSN is the backend-specific connection string passed to
	// kv.Open: a filesystem path for badger/pebble, a comma-separated
	// PD address list for tikv, a cluster-file path (or empty for the
	// default) for fdb, ignored for mem.
	DSN string
	// Strict is the default strict-mode flag ensure-or-create helpers
	// use when the caller doesn't override it per call.
	Strict bool
	// ScanWindow overrides the paged engine's internal batch size;
	// zero means use the built-in default of 1000. Exists so tests can
	// exercise multi-window paging without preloading thousands of keys.
	ScanWindow int
	// ExportBufferSize sizes the channel the exporter's caller should
	// allocate before passing it to export.Run.
	ExportBufferSize int
}

// Bind registers flags for every field above.
func (c *Config) Bind(flags *pflag.FlagSet) {
	flags.StringVar(&c.Backend, "kvBackend", "mem",
		"the key-value backend to open: mem, badger, pebble, tikv, or fdb")
	flags.StringVar(&c.DSN, "kvDSN", "",
		"the backend-specific connection string (path, PD address list, or cluster file)")
	flags.BoolVar(&c.Strict, "strictCatalog", false,
		"when true, ensure-or-create accessors surface NotFound instead of auto-creating")
	flags.IntVar(&c.ScanWindow, "kvScanWindow", 0,
		"override the paged scan engine's internal batch size (0 uses the built-in default)")
	flags.IntVar(&c.ExportBufferSize, "exportBufferSize", 64,
		"the channel buffer size recommended to callers of the exporter")
}

// Preflight validates the bound configuration.
func (c *Config) Preflight() error {
	if c.Backend == "" {
		return errors.New("kvBackend unset")
	}
	known := false
	for _, name := range kv.Drivers() {
		if name == c.Backend {
			known = true
			break
		}
	}
	if !known {
		return errors.Errorf("kvBackend %q is not a registered driver (known: %v); "+
			"import its backend package for its registration side effect", c.Backend, kv.Drivers())
	}
	if c.ScanWindow < 0 {
		return errors.New("kvScanWindow must be >= 0")
	}
	if c.ExportBufferSize <= 0 {
		return errors.New("exportBufferSize must be > 0")
	}
	return nil
}
