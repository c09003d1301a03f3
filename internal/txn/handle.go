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

// Package txn implements the transaction façade: a Handle pairs a
// backend-native kv.Tx with a per-transaction cache of decoded catalog
// records, and layers the paged scan engine, catalog accessors,
// ensure-or-create helpers and error taxonomy on top.
package txn

import (
	"context"
	"math"

	"github.com/sirupsen/logrus"

	"github.com/riftdb/riftkv/internal/kv"
)

// Unbounded is passed as limit to request every matching entry,
// matching the "∞" notation for getr/getp/delr/delp.
const Unbounded = math.MaxInt

// Handle is the Transaction Handle: a single long-lived value per
// transaction, owned by exactly one goroutine, never shared. It wraps
// a backend's kv.Tx (the Backend Adapter) and a cache of decoded
// catalog records (the Catalog Cache), whose lifetime is identical to
// the transaction's.
type Handle struct {
	tx      kv.Tx
	cache   *cache
	log     logrus.FieldLogger
	window  int
	backend string
}

// Option configures a Handle at construction time.
type Option func(*Handle)

// WithWindow overrides the paged engine's internal batch size; n <= 0
// is ignored and the built-in default of 1000 is kept. Exists so
// config.Config.ScanWindow can reach the engine, and so tests can
// exercise multi-window paging without preloading thousands of keys.
func WithWindow(n int) Option {
	return func(h *Handle) {
		if n > 0 {
			h.window = n
		}
	}
}

// WithBackend labels this Handle's metrics (scan latency, exported row
// counts) with the owning kv.Store's name, e.g. the value returned by
// its Name() method. Unset Handles report under "unknown".
func WithBackend(name string) Option {
	return func(h *Handle) {
		h.backend = name
	}
}

// New wraps an already-open backend transaction in a Handle with a
// fresh, empty cache.
func New(tx kv.Tx, log logrus.FieldLogger, opts ...Option) *Handle {
	if log == nil {
		log = logrus.StandardLogger()
	}
	h := &Handle{tx: tx, cache: newCache(), log: log, window: window, backend: "unknown"}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

// Backend returns the label this Handle's metrics are recorded under.
func (h *Handle) Backend() string { return h.backend }

// Closed reports whether Commit or Cancel has already completed.
func (h *Handle) Closed() bool { return h.tx.Closed() }

// Cancel discards pending mutations and closes the handle. The cache
// is not explicitly cleared; it becomes unreachable with the handle.
func (h *Handle) Cancel(ctx context.Context) error {
	h.log.Trace("txn: cancel")
	return h.tx.Cancel(ctx)
}

// Commit attempts to persist pending mutations and closes the handle
// regardless of outcome.
func (h *Handle) Commit(ctx context.Context) error {
	h.log.Trace("txn: commit")
	return h.tx.Commit(ctx)
}

// Get performs a point lookup, bypassing the catalog cache. Used by
// row reads and by the non-cached singular catalog accessors.
func (h *Handle) Get(ctx context.Context, key []byte) ([]byte, bool, error) {
	return h.tx.Get(ctx, key)
}

// Exists reports whether key is present.
func (h *Handle) Exists(ctx context.Context, key []byte) (bool, error) {
	return h.tx.Exists(ctx, key)
}

// Set writes unconditionally.
func (h *Handle) Set(ctx context.Context, key, val []byte) error {
	return h.tx.Set(ctx, key, val)
}

// Put writes iff key is currently absent.
func (h *Handle) Put(ctx context.Context, key, val []byte) error {
	return h.tx.Put(ctx, key, val)
}

// Del removes key unconditionally.
func (h *Handle) Del(ctx context.Context, key []byte) error {
	return h.tx.Del(ctx, key)
}

// PutC writes iff the current value equals chk (nil chk means "expect
// absent"), per the open-question resolution in §9.
func (h *Handle) PutC(ctx context.Context, key, val, chk []byte) error {
	return h.tx.PutC(ctx, key, val, chk)
}

// DelC deletes under the same comparison rule as PutC.
func (h *Handle) DelC(ctx context.Context, key, chk []byte) error {
	return h.tx.DelC(ctx, key, chk)
}
