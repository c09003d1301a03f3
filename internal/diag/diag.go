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

// Package diag implements a registry of named, health-checkable
// components. riftkvd registers the opened kv.Store under its backend
// name when the store implements Healthy, so liveness can be polled
// without the caller reaching into backend internals.
package diag

import (
	"context"
	"sort"
	"sync"

	"github.com/pkg/errors"
)

// Healthy is implemented by any component that can report its own
// liveness on demand.
type Healthy interface {
	// Healthy returns a non-nil error if the component is not ready to
	// serve requests.
	Healthy(ctx context.Context) error
}

// Diagnostics is a registry of named Healthy components.
type Diagnostics struct {
	mu         sync.RWMutex
	components map[string]Healthy
}

// New returns an empty Diagnostics registry.
func New() *Diagnostics {
	return &Diagnostics{components: make(map[string]Healthy)}
}

// Register adds component under name. It returns an error, rather
// than panicking, on a duplicate name: unlike kv.Register (a
// build-time, programmer-controlled registration), diagnostics
// registration happens at runtime from config-driven construction
// paths where a duplicate is a recoverable configuration mistake.
func (d *Diagnostics) Register(name string, component Healthy) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if _, dup := d.components[name]; dup {
		return errors.Errorf("diag: component %q already registered", name)
	}
	d.components[name] = component
	return nil
}

// Names returns the sorted names of every registered component.
func (d *Diagnostics) Names() []string {
	d.mu.RLock()
	defer d.mu.RUnlock()
	names := make([]string, 0, len(d.components))
	for name := range d.components {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// HealthCheck reports the status of every registered component,
// keyed by name. A nil value means healthy.
func (d *Diagnostics) HealthCheck(ctx context.Context) map[string]error {
	d.mu.RLock()
	defer d.mu.RUnlock()
	out := make(map[string]error, len(d.components))
	for name, component := range d.components {
		out[name] = component.Healthy(ctx)
	}
	return out
}
