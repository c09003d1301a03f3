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
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/riftdb/riftkv/internal/kv"
	"github.com/riftdb/riftkv/internal/txn"
)

func TestAddNamespaceNonStrictCreatesThenReuses(t *testing.T) {
	ctx := context.Background()
	h := newHandle(t)

	ns, err := txn.AddNamespace(ctx, h, "ns1", false)
	require.NoError(t, err)
	require.Equal(t, "ns1", ns.Name)

	again, err := txn.AddNamespace(ctx, h, "ns1", false)
	require.NoError(t, err)
	require.Equal(t, "ns1", again.Name)
}

func TestAddDatabaseStrictSurfacesNotFound(t *testing.T) {
	ctx := context.Background()
	h := newHandle(t)

	_, err := txn.AddDatabase(ctx, h, "ns1", "db1", true)
	require.True(t, txn.IsNotFound(err, "db"))
}

func TestCheckNamespaceDatabaseTableOrdersAncestors(t *testing.T) {
	ctx := context.Background()
	h := newHandle(t)

	err := txn.CheckNamespaceDatabaseTable(ctx, h, "ns1", "db1", "tb1", true)
	require.True(t, txn.IsNotFound(err, "ns"))

	_, err = txn.AddAndCacheNamespace(ctx, h, "ns1", false)
	require.NoError(t, err)

	err = txn.CheckNamespaceDatabaseTable(ctx, h, "ns1", "db1", "tb1", true)
	require.True(t, txn.IsNotFound(err, "db"))
}

func TestCheckNamespaceDatabaseTableSkipsWhenNotStrict(t *testing.T) {
	ctx := context.Background()
	h := newHandle(t)
	require.NoError(t, txn.CheckNamespaceDatabaseTable(ctx, h, "ns1", "db1", "tb1", false))
}

func TestPutOnExistingKeyFailsAndLeavesValueUnchanged(t *testing.T) {
	ctx := context.Background()
	h := newHandle(t)

	require.NoError(t, h.Put(ctx, []byte("k"), []byte("v1")))
	err := h.Put(ctx, []byte("k"), []byte("v2"))
	require.ErrorIs(t, err, kv.ErrTxKeyAlreadyExists)

	val, ok, err := h.Get(ctx, []byte("k"))
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, []byte("v1"), val)
}
