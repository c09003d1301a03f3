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

package kv

import (
	"context"
	"fmt"
	"sort"
	"sync"
)

// KeyRange is a half-open byte-string range [Begin, End). An empty End
// means unbounded.
type KeyRange struct {
	Begin []byte
	End   []byte
}

// Pair is a single key/value entry returned from a scan.
type Pair struct {
	Key []byte
	Val []byte
}

// Tx is the primitive set every backend transaction exposes, per the
// contract invariants: every primitive checks Closed first and fails
// with ErrTxFinished if set, and write primitives may fail with
// ErrTxReadOnly if the transaction was opened read-only.
type Tx interface {
	// Closed reports whether Commit or Cancel has already completed
	// for this transaction. Pure, never fails.
	Closed() bool

	// Cancel discards pending mutations and marks the transaction
	// closed. Idempotent only in the sense that a second call returns
	// ErrTxFinished; it never panics.
	Cancel(ctx context.Context) error

	// Commit attempts to persist pending mutations and marks the
	// transaction closed regardless of outcome.
	Commit(ctx context.Context) error

	// Get performs a point lookup. ok is false iff the key is absent.
	Get(ctx context.Context, key []byte) (val []byte, ok bool, err error)

	// Exists is an existence check that a backend may implement more
	// cheaply than Get.
	Exists(ctx context.Context, key []byte) (bool, error)

	// Set writes unconditionally.
	Set(ctx context.Context, key, val []byte) error

	// Put writes iff the key is currently absent, else returns
	// ErrTxKeyAlreadyExists.
	Put(ctx context.Context, key, val []byte) error

	// Del removes a key unconditionally. Deleting an absent key is not
	// an error.
	Del(ctx context.Context, key []byte) error

	// PutC writes iff the current value equals chk, or — when chk is
	// nil — iff the key is currently absent. On mismatch it returns
	// ErrTxConditionNotMet and leaves the store unchanged.
	PutC(ctx context.Context, key, val, chk []byte) error

	// DelC deletes under the same comparison rule as PutC.
	DelC(ctx context.Context, key, chk []byte) error

	// Scan returns up to limit entries in [rng.Begin, rng.End) in
	// ascending key order. It returns an empty slice, not an error,
	// when no keys fall in range.
	Scan(ctx context.Context, rng KeyRange, limit int) ([]Pair, error)
}

// Store opens transactions against a single backend instance.
type Store interface {
	// Begin opens a new transaction. readOnly transactions reject
	// every write primitive with ErrTxReadOnly.
	Begin(ctx context.Context, readOnly bool) (Tx, error)

	// Close releases backend resources (connections, file handles,
	// background goroutines). Store is unusable afterward.
	Close() error

	// Name identifies the backend for diagnostics and logging, e.g.
	// "mem", "badger", "pebble", "tikv", "fdb".
	Name() string
}

// Driver opens a Store from a backend-specific connection string.
// Backends register a Driver under a name at package init time, the
// same pattern database/sql uses: importing a backend package for its
// side effect is what "selects" it at build time.
type Driver interface {
	Open(ctx context.Context, dsn string) (Store, error)
}

var (
	driversMu sync.RWMutex
	drivers   = make(map[string]Driver)
)

// Register makes a Driver available under name. It panics on a
// duplicate registration, matching database/sql's driver registry —
// this can only happen from a programming error (two backend packages
// claiming the same name), never from user input.
func Register(name string, driver Driver) {
	driversMu.Lock()
	defer driversMu.Unlock()
	if driver == nil {
		panic("kv: Register driver is nil")
	}
	if _, dup := drivers[name]; dup {
		panic("kv: Register called twice for driver " + name)
	}
	drivers[name] = driver
}

// Drivers returns the sorted names of all registered drivers. Used by
// diagnostics and by config validation to produce a helpful error.
func Drivers() []string {
	driversMu.RLock()
	defer driversMu.RUnlock()
	names := make([]string, 0, len(drivers))
	for name := range drivers {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Open opens a Store using the driver registered under name.
func Open(ctx context.Context, name, dsn string) (Store, error) {
	driversMu.RLock()
	driver, ok := drivers[name]
	driversMu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("kv: unknown driver %q (known: %v)", name, Drivers())
	}
	return driver.Open(ctx, dsn)
}

// ExclusiveSuccessor returns the lexicographically least byte string
// strictly greater than key, by appending a single zero byte. This is
// the "cursor ⊕ 0x00" operation the paged scan engine uses to form an
// exclusive-of-last-seen start for the next window.
func ExclusiveSuccessor(key []byte) []byte {
	out := make([]byte, len(key)+1)
	copy(out, key)
	return out
}

// PrefixEnd returns the exclusive end of the range covering every key
// with the given prefix, by appending 0xff. Used to turn a prefix scan
// into a [begin, end) range scan.
func PrefixEnd(prefix []byte) []byte {
	out := make([]byte, len(prefix)+1)
	copy(out, prefix)
	out[len(prefix)] = 0xff
	return out
}
