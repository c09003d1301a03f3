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

package export_test

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/riftdb/riftkv/internal/catalog"
	"github.com/riftdb/riftkv/internal/export"
	"github.com/riftdb/riftkv/internal/keys"
	"github.com/riftdb/riftkv/internal/kv"
	_ "github.com/riftdb/riftkv/internal/kv/kvmem"
	"github.com/riftdb/riftkv/internal/txn"
)

func TestExportRoundTrip(t *testing.T) {
	ctx := context.Background()
	store, err := kv.Open(ctx, "mem", "")
	require.NoError(t, err)
	t.Cleanup(func() { require.NoError(t, store.Close()) })
	tx, err := store.Begin(ctx, false)
	require.NoError(t, err)
	h := txn.New(tx, nil)

	require.NoError(t, h.Set(ctx, keys.Namespace("ns"), catalog.DefaultNamespace("ns").Encode()))
	require.NoError(t, h.Set(ctx, keys.Database("ns", "db"), catalog.DefaultDatabase("db").Encode()))
	require.NoError(t, h.Set(ctx, keys.Table("ns", "db", "t"), catalog.DefaultTable("t").Encode()))
	require.NoError(t, h.Set(ctx, keys.Field("ns", "db", "t", "f"), (&catalog.Field{Name: "f", Type: "string"}).Encode()))
	require.NoError(t, h.Set(ctx, keys.Index("ns", "db", "t", "i"), (&catalog.Index{Name: "i", Columns: []string{"f"}}).Encode()))
	require.NoError(t, h.Set(ctx, keys.Thing("ns", "db", "t", "1"), (&catalog.RowValue{Fields: map[string]any{"f": "a"}}).Encode()))
	require.NoError(t, h.Set(ctx, keys.Thing("ns", "db", "t", "2"), (&catalog.RowValue{Fields: map[string]any{"f": "b"}}).Encode()))

	out := make(chan []byte, 64)
	errCh := make(chan error, 1)
	go func() {
		defer close(out)
		errCh <- export.Run(ctx, h, "ns", "db", out)
	}()

	var sb strings.Builder
	for line := range out {
		sb.Write(line)
	}
	require.NoError(t, <-errCh)

	script := sb.String()
	require.Contains(t, script, "OPTION IMPORT;")
	require.Contains(t, script, "DEFINE TABLE t PERMISSIONS NONE;")
	require.Contains(t, script, "DEFINE FIELD f ON t TYPE string;")
	require.Contains(t, script, "DEFINE INDEX i ON t COLUMNS f;")
	require.Contains(t, script, "BEGIN TRANSACTION;")
	require.Contains(t, script, `UPDATE t:1 CONTENT { f: "a" };`)
	require.Contains(t, script, `UPDATE t:2 CONTENT { f: "b" };`)
	require.Contains(t, script, "COMMIT TRANSACTION;")
}
