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

package kvfdb_test

import (
	"context"
	"os"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/riftdb/riftkv/internal/kv"
	_ "github.com/riftdb/riftkv/internal/kv/kvfdb"
	"github.com/riftdb/riftkv/internal/kv/kvtest"
)

// TestConformance requires a running FoundationDB cluster reachable
// via the default cluster file, or RIFTKV_FDB_CLUSTER_FILE pointing at
// one. It's skipped unless RIFTKV_FDB_TEST=1, since opening a default
// cluster file on a machine with no FoundationDB install can hang.
func TestConformance(t *testing.T) {
	if os.Getenv("RIFTKV_FDB_TEST") != "1" {
		t.Skip("RIFTKV_FDB_TEST not set; skipping foundationdb conformance test")
	}
	kvtest.Run(t, func(t *testing.T) kv.Store {
		store, err := kv.Open(context.Background(), "fdb", os.Getenv("RIFTKV_FDB_CLUSTER_FILE"))
		require.NoError(t, err)
		t.Cleanup(func() { require.NoError(t, store.Close()) })
		return store
	})
}
