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

package catalog_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/riftdb/riftkv/internal/catalog"
)

func TestNamespaceRoundTrip(t *testing.T) {
	want := catalog.DefaultNamespace("test")
	var got catalog.Namespace
	require.NoError(t, got.Decode(want.Encode()))
	require.Equal(t, *want, got)
}

func TestTableDefaultPermissionsAreNone(t *testing.T) {
	tb := catalog.DefaultTable("t")
	require.Equal(t, catalog.PermissionsNone, tb.Permissions)
	require.Equal(t, "DEFINE TABLE t PERMISSIONS NONE;", tb.Render())
}

func TestRowValueRenderIsDeterministic(t *testing.T) {
	row := &catalog.RowValue{Fields: map[string]any{
		"b": "two",
		"a": int64(1),
		"c": nil,
	}}
	require.Equal(t, `{ a: 1, b: "two", c: NULL }`, row.Render())
}

func TestRowValueRoundTrip(t *testing.T) {
	want := &catalog.RowValue{Fields: map[string]any{"name": "alice", "age": int64(30)}}
	var got catalog.RowValue
	require.NoError(t, got.Decode(want.Encode()))
	require.Equal(t, want.Fields["name"], got.Fields["name"])
}

func TestThingString(t *testing.T) {
	require.Equal(t, "t:1", catalog.Thing{Table: "t", ID: "1"}.String())
}
