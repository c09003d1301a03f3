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

// Package kvchaos wraps a kv.Store so tests can exercise the façade's
// reaction to a backend that unpredictably fails: Begin and every
// primitive except Closed and Cancel has an independent chance of
// failing instead of delegating (Commit with kv.ErrTxConflict, the
// others with ErrChaos wrapped with the operation's name), so callers built on top of
// internal/txn can be driven through their error paths without a real
// flaky cluster.
package kvchaos

import (
	"context"
	"math/rand"

	"github.com/pkg/errors"

	"github.com/riftdb/riftkv/internal/kv"
)

// ErrChaos is returned, wrapped with the failing operation's name,
// whenever the injector fires.
var ErrChaos = errors.New("chaos")

// Wrap returns a Store that injects a failure with probability prob on
// each primitive call. prob <= 0 returns store unchanged.
func Wrap(store kv.Store, prob float32) kv.Store {
	if prob <= 0 {
		return store
	}
	return &chaosStore{delegate: store, prob: prob}
}

type chaosStore struct {
	delegate kv.Store
	prob     float32
}

func (s *chaosStore) Name() string { return s.delegate.Name() }
func (s *chaosStore) Close() error { return s.delegate.Close() }

func (s *chaosStore) Begin(ctx context.Context, readOnly bool) (kv.Tx, error) {
	if rand.Float32() < s.prob {
		return nil, fail("Begin")
	}
	tx, err := s.delegate.Begin(ctx, readOnly)
	if err != nil {
		return nil, err
	}
	return &chaosTx{delegate: tx, prob: s.prob}, nil
}

type chaosTx struct {
	delegate kv.Tx
	prob     float32
}

func (t *chaosTx) Closed() bool { return t.delegate.Closed() }

func (t *chaosTx) Cancel(ctx context.Context) error { return t.delegate.Cancel(ctx) }

func (t *chaosTx) Commit(ctx context.Context) error {
	if rand.Float32() < t.prob {
		return kv.ErrTxConflict
	}
	return t.delegate.Commit(ctx)
}

func (t *chaosTx) Get(ctx context.Context, key []byte) ([]byte, bool, error) {
	if rand.Float32() < t.prob {
		return nil, false, fail("Get")
	}
	return t.delegate.Get(ctx, key)
}

func (t *chaosTx) Exists(ctx context.Context, key []byte) (bool, error) {
	if rand.Float32() < t.prob {
		return false, fail("Exists")
	}
	return t.delegate.Exists(ctx, key)
}

func (t *chaosTx) Set(ctx context.Context, key, val []byte) error {
	if rand.Float32() < t.prob {
		return fail("Set")
	}
	return t.delegate.Set(ctx, key, val)
}

func (t *chaosTx) Put(ctx context.Context, key, val []byte) error {
	if rand.Float32() < t.prob {
		return fail("Put")
	}
	return t.delegate.Put(ctx, key, val)
}

func (t *chaosTx) Del(ctx context.Context, key []byte) error {
	if rand.Float32() < t.prob {
		return fail("Del")
	}
	return t.delegate.Del(ctx, key)
}

func (t *chaosTx) PutC(ctx context.Context, key, val, chk []byte) error {
	if rand.Float32() < t.prob {
		return fail("PutC")
	}
	return t.delegate.PutC(ctx, key, val, chk)
}

func (t *chaosTx) DelC(ctx context.Context, key, chk []byte) error {
	if rand.Float32() < t.prob {
		return fail("DelC")
	}
	return t.delegate.DelC(ctx, key, chk)
}

func (t *chaosTx) Scan(ctx context.Context, rng kv.KeyRange, limit int) ([]kv.Pair, error) {
	if rand.Float32() < t.prob {
		return nil, fail("Scan")
	}
	return t.delegate.Scan(ctx, rng, limit)
}

func fail(op string) error { return errors.WithMessage(ErrChaos, op) }
