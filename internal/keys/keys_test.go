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

package keys_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/riftdb/riftkv/internal/keys"
)

func TestNamespaceKeys(t *testing.T) {
	require.Equal(t, []byte("ns/"), keys.NamespacePrefix())
	require.Equal(t, []byte("ns/test"), keys.Namespace("test"))

	rng := keys.NamespaceList()
	require.Equal(t, []byte("ns/"), rng.Begin)
	require.Equal(t, []byte("ns/\xff"), rng.End)
}

func TestNestedKeysCarryAncestors(t *testing.T) {
	require.Equal(t, []byte("db/ns1/"), keys.DatabasePrefix("ns1"))
	require.Equal(t, []byte("db/ns1/db1"), keys.Database("ns1", "db1"))
	require.Equal(t, []byte("tb/ns1/db1/"), keys.TablePrefix("ns1", "db1"))
	require.Equal(t, []byte("tb/ns1/db1/tb1"), keys.Table("ns1", "db1", "tb1"))
	require.Equal(t, []byte("fd/ns1/db1/tb1/"), keys.FieldPrefix("ns1", "db1", "tb1"))
	require.Equal(t, []byte("fd/ns1/db1/tb1/f1"), keys.Field("ns1", "db1", "tb1", "f1"))
}

func TestThingKeys(t *testing.T) {
	require.Equal(t, []byte("thing/ns1/db1/tb1/"), keys.ThingPrefix("ns1", "db1", "tb1"))
	require.Equal(t, []byte("thing/ns1/db1/tb1/1"), keys.Thing("ns1", "db1", "tb1", "1"))

	rng := keys.ThingList("ns1", "db1", "tb1")
	require.True(t, keys.HasPrefix(keys.Thing("ns1", "db1", "tb1", "1"), rng.Begin))
}

func TestListRangesAreDisjointBetweenSiblings(t *testing.T) {
	// A namespace's own key ("ns/foo") must not fall inside its
	// children's list range ("db/foo/*"): list ranges are scoped by
	// kind prefix, not merely by ancestor name.
	nsKey := keys.Namespace("foo")
	dbRange := keys.DatabaseList("foo")
	require.False(t, keys.HasPrefix(nsKey, dbRange.Begin))
}
