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

package txn_test

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/riftdb/riftkv/internal/kv"
	_ "github.com/riftdb/riftkv/internal/kv/kvmem"
	"github.com/riftdb/riftkv/internal/txn"
)

func newHandle(t *testing.T, opts ...txn.Option) *txn.Handle {
	t.Helper()
	ctx := context.Background()
	store, err := kv.Open(ctx, "mem", "")
	require.NoError(t, err)
	t.Cleanup(func() { require.NoError(t, store.Close()) })
	tx, err := store.Begin(ctx, false)
	require.NoError(t, err)
	return txn.New(tx, nil, opts...)
}

func TestGetrRespectsLimitAndOrder(t *testing.T) {
	ctx := context.Background()
	h := newHandle(t)

	for i := 0; i < 10; i++ {
		k := []byte(fmt.Sprintf("k%02d", i))
		require.NoError(t, h.Set(ctx, k, k))
	}

	pairs, err := h.Getr(ctx, kv.KeyRange{Begin: []byte("k00"), End: []byte("k99")}, 3)
	require.NoError(t, err)
	require.Len(t, pairs, 3)
	require.Equal(t, "k00", string(pairs[0].Key))
	require.Equal(t, "k02", string(pairs[2].Key))
}

func TestGetpOnlyReturnsPrefixedKeys(t *testing.T) {
	ctx := context.Background()
	h := newHandle(t)

	for _, k := range []string{"p/a", "p/b", "q/a"} {
		require.NoError(t, h.Set(ctx, []byte(k), []byte(k)))
	}

	pairs, err := h.Getp(ctx, []byte("p/"), txn.Unbounded)
	require.NoError(t, err)
	require.Len(t, pairs, 2)
	for _, pair := range pairs {
		require.True(t, len(pair.Key) >= 2 && string(pair.Key[:2]) == "p/")
	}
}

func TestDelpRemovesOnlyMatchingPrefix(t *testing.T) {
	ctx := context.Background()
	h := newHandle(t)

	for _, k := range []string{"p/a", "p/b", "q/a"} {
		require.NoError(t, h.Set(ctx, []byte(k), []byte(k)))
	}

	require.NoError(t, h.Delp(ctx, []byte("p/"), txn.Unbounded))

	remaining, err := h.Getr(ctx, kv.KeyRange{Begin: []byte{0x00}, End: []byte{0xff}}, txn.Unbounded)
	require.NoError(t, err)
	require.Len(t, remaining, 1)
	require.Equal(t, "q/a", string(remaining[0].Key))
}

func TestPagedScanCrossesWindowBoundary(t *testing.T) {
	ctx := context.Background()
	h := newHandle(t, txn.WithWindow(10))

	const n = 25
	for i := 0; i < n; i++ {
		k := []byte(fmt.Sprintf("k%02d", i))
		require.NoError(t, h.Set(ctx, k, k))
	}

	pairs, err := h.Getr(ctx, kv.KeyRange{Begin: []byte("k00"), End: []byte("k99")}, txn.Unbounded)
	require.NoError(t, err)
	require.Len(t, pairs, n)
	for i, pair := range pairs {
		require.Equal(t, fmt.Sprintf("k%02d", i), string(pair.Key))
	}
}

func TestLimitZeroYieldsEmptyImmediately(t *testing.T) {
	ctx := context.Background()
	h := newHandle(t)
	require.NoError(t, h.Set(ctx, []byte("k"), []byte("v")))

	pairs, err := h.Getr(ctx, kv.KeyRange{Begin: []byte{0x00}, End: []byte{0xff}}, 0)
	require.NoError(t, err)
	require.Empty(t, pairs)
}

func TestBeginNotLessThanEndYieldsEmpty(t *testing.T) {
	ctx := context.Background()
	h := newHandle(t)
	require.NoError(t, h.Set(ctx, []byte("k"), []byte("v")))

	pairs, err := h.Getr(ctx, kv.KeyRange{Begin: []byte("k"), End: []byte("k")}, txn.Unbounded)
	require.NoError(t, err)
	require.Empty(t, pairs)
}
