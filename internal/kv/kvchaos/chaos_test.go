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

package kvchaos_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/riftdb/riftkv/internal/kv"
	_ "github.com/riftdb/riftkv/internal/kv/kvmem"
	"github.com/riftdb/riftkv/internal/kv/kvchaos"
)

func TestZeroProbabilityPassesThrough(t *testing.T) {
	ctx := context.Background()
	store, err := kv.Open(ctx, "mem", "")
	require.NoError(t, err)
	wrapped := kvchaos.Wrap(store, 0)
	require.Same(t, store, wrapped)
}

func TestFullProbabilityAlwaysFails(t *testing.T) {
	ctx := context.Background()
	store, err := kv.Open(ctx, "mem", "")
	require.NoError(t, err)
	wrapped := kvchaos.Wrap(store, 1)

	_, err = wrapped.Begin(ctx, false)
	require.True(t, errors.Is(err, kvchaos.ErrChaos))
}
