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

package kvmem_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/riftdb/riftkv/internal/kv"
	_ "github.com/riftdb/riftkv/internal/kv/kvmem"
	"github.com/riftdb/riftkv/internal/kv/kvtest"
)

func TestConformance(t *testing.T) {
	kvtest.Run(t, func(t *testing.T) kv.Store {
		store, err := kv.Open(context.Background(), "mem", "")
		require.NoError(t, err)
		t.Cleanup(func() { require.NoError(t, store.Close()) })
		return store
	})
}

func TestHealthy(t *testing.T) {
	store, err := kv.Open(context.Background(), "mem", "")
	require.NoError(t, err)
	require.Implements(t, (*interface{ Healthy(context.Context) error })(nil), store)
}
