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

// Package kvtest is a conformance suite shared by every kv.Store
// backend's own _test.go file: a single fixture/suite reused across
// concrete implementations. It exercises the universal invariants and
// boundary properties of §8 against whichever Store a backend test
// hands it.
package kvtest

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/riftdb/riftkv/internal/kv"
)

// NewStore constructs a fresh, empty Store for one test run. Backend
// test files supply this so the suite never has to know which backend
// it's exercising.
type NewStore func(t *testing.T) kv.Store

// Run exercises the full conformance suite against new.
func Run(t *testing.T, new NewStore) {
	t.Run("SetGet", func(t *testing.T) { testSetGet(t, new) })
	t.Run("DelGet", func(t *testing.T) { testDelGet(t, new) })
	t.Run("PutExisting", func(t *testing.T) { testPutExisting(t, new) })
	t.Run("PutCDelC", func(t *testing.T) { testPutCDelC(t, new) })
	t.Run("TxFinished", func(t *testing.T) { testTxFinished(t, new) })
	t.Run("ReadOnly", func(t *testing.T) { testReadOnly(t, new) })
	t.Run("ScanBounds", func(t *testing.T) { testScanBounds(t, new) })
	t.Run("PagedScan", func(t *testing.T) { testPagedScan(t, new) })
	t.Run("CancelDiscardsWrites", func(t *testing.T) { testCancelDiscardsWrites(t, new) })
}

func testSetGet(t *testing.T, new NewStore) {
	ctx := context.Background()
	store := new(t)
	tx, err := store.Begin(ctx, false)
	require.NoError(t, err)
	require.NoError(t, tx.Set(ctx, []byte("k"), []byte("v1")))
	val, ok, err := tx.Get(ctx, []byte("k"))
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, []byte("v1"), val)
	require.NoError(t, tx.Commit(ctx))
}

func testDelGet(t *testing.T, new NewStore) {
	ctx := context.Background()
	store := new(t)
	tx, err := store.Begin(ctx, false)
	require.NoError(t, err)
	require.NoError(t, tx.Set(ctx, []byte("k"), []byte("v1")))
	require.NoError(t, tx.Del(ctx, []byte("k")))
	_, ok, err := tx.Get(ctx, []byte("k"))
	require.NoError(t, err)
	require.False(t, ok)
	require.NoError(t, tx.Commit(ctx))
}

func testPutExisting(t *testing.T, new NewStore) {
	ctx := context.Background()
	store := new(t)
	tx, err := store.Begin(ctx, false)
	require.NoError(t, err)
	require.NoError(t, tx.Put(ctx, []byte("k"), []byte("v1")))
	err = tx.Put(ctx, []byte("k"), []byte("v2"))
	require.ErrorIs(t, err, kv.ErrTxKeyAlreadyExists)
	val, ok, err := tx.Get(ctx, []byte("k"))
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, []byte("v1"), val)
	require.NoError(t, tx.Commit(ctx))
}

func testPutCDelC(t *testing.T, new NewStore) {
	ctx := context.Background()
	store := new(t)
	tx, err := store.Begin(ctx, false)
	require.NoError(t, err)

	require.NoError(t, tx.Set(ctx, []byte("k"), []byte("v1")))
	require.NoError(t, tx.PutC(ctx, []byte("k"), []byte("v2"), []byte("v1")))
	val, ok, err := tx.Get(ctx, []byte("k"))
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, []byte("v2"), val)

	err = tx.PutC(ctx, []byte("k"), []byte("v3"), []byte("v1"))
	require.ErrorIs(t, err, kv.ErrTxConditionNotMet)
	val, ok, err = tx.Get(ctx, []byte("k"))
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, []byte("v2"), val)

	require.NoError(t, tx.PutC(ctx, []byte("absent"), []byte("v1"), nil))
	err = tx.PutC(ctx, []byte("absent"), []byte("v2"), nil)
	require.ErrorIs(t, err, kv.ErrTxConditionNotMet)

	require.NoError(t, tx.DelC(ctx, []byte("k"), []byte("v2")))
	_, ok, err = tx.Get(ctx, []byte("k"))
	require.NoError(t, err)
	require.False(t, ok)

	require.NoError(t, tx.Commit(ctx))
}

func testTxFinished(t *testing.T, new NewStore) {
	ctx := context.Background()
	store := new(t)
	tx, err := store.Begin(ctx, false)
	require.NoError(t, err)
	require.NoError(t, tx.Commit(ctx))

	require.True(t, tx.Closed())
	_, _, err = tx.Get(ctx, []byte("k"))
	require.ErrorIs(t, err, kv.ErrTxFinished)
	require.ErrorIs(t, tx.Set(ctx, []byte("k"), []byte("v")), kv.ErrTxFinished)
	require.ErrorIs(t, tx.Commit(ctx), kv.ErrTxFinished)
	require.ErrorIs(t, tx.Cancel(ctx), kv.ErrTxFinished)
}

func testReadOnly(t *testing.T, new NewStore) {
	ctx := context.Background()
	store := new(t)
	tx, err := store.Begin(ctx, true)
	require.NoError(t, err)
	defer tx.Cancel(ctx)

	require.ErrorIs(t, tx.Set(ctx, []byte("k"), []byte("v")), kv.ErrTxReadOnly)
	require.ErrorIs(t, tx.Del(ctx, []byte("k")), kv.ErrTxReadOnly)
}

func testScanBounds(t *testing.T, new NewStore) {
	ctx := context.Background()
	store := new(t)
	tx, err := store.Begin(ctx, false)
	require.NoError(t, err)

	for _, k := range []string{"p/a", "p/b", "q/a"} {
		require.NoError(t, tx.Set(ctx, []byte(k), []byte(k)))
	}

	pairs, err := tx.Scan(ctx, kv.KeyRange{Begin: []byte("p/"), End: kv.PrefixEnd([]byte("p/"))}, 100)
	require.NoError(t, err)
	require.Len(t, pairs, 2)
	require.Equal(t, "p/a", string(pairs[0].Key))
	require.Equal(t, "p/b", string(pairs[1].Key))

	require.NoError(t, tx.Commit(ctx))
}

func testPagedScan(t *testing.T, new NewStore) {
	ctx := context.Background()
	store := new(t)
	tx, err := store.Begin(ctx, false)
	require.NoError(t, err)

	const n = 2500
	for i := 0; i < n; i++ {
		k := []byte(fmt.Sprintf("k%05d", i))
		require.NoError(t, tx.Set(ctx, k, k))
	}

	remaining := n
	var cursor []byte
	haveCursor := false
	seen := 0
	for remaining > 0 {
		beg := []byte("k00000")
		if haveCursor {
			beg = kv.ExclusiveSuccessor(cursor)
		}
		limit := 1000
		if limit > remaining {
			limit = remaining
		}
		batch, err := tx.Scan(ctx, kv.KeyRange{Begin: beg, End: []byte("k99999")}, limit)
		require.NoError(t, err)
		if len(batch) == 0 {
			break
		}
		for i, pair := range batch {
			want := fmt.Sprintf("k%05d", seen+i)
			require.Equal(t, want, string(pair.Key))
		}
		seen += len(batch)
		remaining -= len(batch)
		cursor = batch[len(batch)-1].Key
		haveCursor = true
	}
	require.Equal(t, n, seen)

	require.NoError(t, tx.Commit(ctx))
}

// testCancelDiscardsWrites asserts §4.1's Cancel contract: a set of a
// new key, and an overwrite and then a delete of a pre-existing key,
// must all vanish once the transaction that staged them is cancelled
// rather than committed.
func testCancelDiscardsWrites(t *testing.T, new NewStore) {
	ctx := context.Background()
	store := new(t)

	seed, err := store.Begin(ctx, false)
	require.NoError(t, err)
	require.NoError(t, seed.Set(ctx, []byte("existing"), []byte("v0")))
	require.NoError(t, seed.Commit(ctx))

	tx, err := store.Begin(ctx, false)
	require.NoError(t, err)
	require.NoError(t, tx.Set(ctx, []byte("fresh"), []byte("v1")))
	require.NoError(t, tx.Set(ctx, []byte("existing"), []byte("v2")))
	require.NoError(t, tx.Del(ctx, []byte("existing")))

	val, ok, err := tx.Get(ctx, []byte("fresh"))
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, []byte("v1"), val)

	require.NoError(t, tx.Cancel(ctx))

	after, err := store.Begin(ctx, true)
	require.NoError(t, err)
	defer after.Cancel(ctx)

	_, ok, err = after.Get(ctx, []byte("fresh"))
	require.NoError(t, err)
	require.False(t, ok, "cancelled write of a new key must not persist")

	val, ok, err = after.Get(ctx, []byte("existing"))
	require.NoError(t, err)
	require.True(t, ok, "cancelled overwrite must leave the original value in place")
	require.Equal(t, []byte("v0"), val)
}
