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

	"github.com/riftdb/riftkv/internal/catalog"
	"github.com/riftdb/riftkv/internal/keys"
	"github.com/riftdb/riftkv/internal/txn"
)

func TestGetNamespaceNotFound(t *testing.T) {
	ctx := context.Background()
	h := newHandle(t)

	_, err := txn.GetNamespace(ctx, h, "missing")
	require.True(t, txn.IsNotFound(err, "ns"))
}

func TestCachedAccessorReturnsSharedList(t *testing.T) {
	ctx := context.Background()
	h := newHandle(t)

	ns := catalog.DefaultNamespace("ns1")
	require.NoError(t, h.Set(ctx, keys.Namespace("ns1"), ns.Encode()))

	first, err := txn.AllNamespaces(ctx, h)
	require.NoError(t, err)
	require.Len(t, first, 1)

	second, err := txn.AllNamespaces(ctx, h)
	require.NoError(t, err)
	require.Len(t, second, 1)
	require.Equal(t, first[0], second[0])
}

func TestGetAndCacheNamespaceHitsCacheOnSecondCall(t *testing.T) {
	ctx := context.Background()
	h := newHandle(t)

	ns := catalog.DefaultNamespace("ns1")
	require.NoError(t, h.Set(ctx, keys.Namespace("ns1"), ns.Encode()))

	first, err := txn.GetAndCacheNamespace(ctx, h, "ns1")
	require.NoError(t, err)

	// Overwrite the key through h.Set, which writes to the backend
	// without touching the catalog cache, so a cache hit and a fresh
	// read would disagree; the cached accessor must still return the
	// original shared record.
	require.NoError(t, h.Set(ctx, keys.Namespace("ns1"), catalog.DefaultNamespace("ns2").Encode()))

	second, err := txn.GetAndCacheNamespace(ctx, h, "ns1")
	require.NoError(t, err)
	require.Same(t, first, second)
}
