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

// Package kvmem implements the Memory backend variant: a single
// process-local ordered map, grounded on the staging/union-store idea
// in chaosmeng-tidb's kv.Transaction (a write-buffer laid over a
// read snapshot). There is only ever one writer at a time, so a
// transaction simply holds the store's lock for its lifetime rather
// than doing optimistic conflict detection; its writes still land in
// a per-transaction pending overlay rather than the shared tree, so
// Cancel can discard them and Commit applies them atomically.
package kvmem

import (
	"bytes"
	"context"
	"math"
	"sync"

	"github.com/google/btree"

	"github.com/riftdb/riftkv/internal/kv"
)

func init() {
	kv.Register("mem", driver{})
}

type driver struct{}

func (driver) Open(_ context.Context, _ string) (kv.Store, error) {
	return &store{tree: btree.NewG(32, itemLess)}, nil
}

type item struct {
	key, val []byte
}

func itemLess(a, b item) bool { return bytes.Compare(a.key, b.key) < 0 }

// pendingOp is one staged write in a read-write transaction's overlay:
// either a value to apply on Commit, or a tombstone if deleted is set.
type pendingOp struct {
	key     []byte
	val     []byte
	deleted bool
}

func pendingLess(a, b pendingOp) bool { return bytes.Compare(a.key, b.key) < 0 }

type store struct {
	mu   sync.RWMutex
	tree *btree.BTreeG[item]
}

// scan returns up to limit entries from the committed tree in
// ascending key order within rng. It has no transaction semantics of
// its own; callers apply their own pending overlay on top.
func (s *store) scan(rng kv.KeyRange, limit int) []kv.Pair {
	out := make([]kv.Pair, 0, 16)
	visit := func(it item) bool {
		if len(rng.End) > 0 && bytes.Compare(it.key, rng.End) >= 0 {
			return false
		}
		out = append(out, kv.Pair{Key: cloneBytes(it.key), Val: cloneBytes(it.val)})
		return len(out) < limit
	}
	if len(rng.End) == 0 {
		s.tree.AscendGreaterOrEqual(item{key: rng.Begin}, visit)
	} else {
		s.tree.AscendRange(item{key: rng.Begin}, item{key: rng.End}, visit)
	}
	return out
}

func (s *store) Name() string { return "mem" }

func (s *store) Close() error { return nil }

// Healthy implements diag.Healthy: the in-process store is always
// ready once constructed.
func (s *store) Healthy(context.Context) error { return nil }

func (s *store) Begin(_ context.Context, readOnly bool) (kv.Tx, error) {
	if readOnly {
		s.mu.RLock()
	} else {
		s.mu.Lock()
	}
	t := &tx{store: s, readOnly: readOnly}
	if !readOnly {
		t.pending = btree.NewG(32, pendingLess)
	}
	return t, nil
}

type tx struct {
	store    *store
	readOnly bool
	closed   bool
	// pending buffers this transaction's own writes, keyed the same
	// way as store.tree; nil for a read-only transaction. Commit
	// applies it to store.tree; Cancel simply drops it.
	pending *btree.BTreeG[pendingOp]
}

func (t *tx) Closed() bool { return t.closed }

func (t *tx) unlock() {
	if t.readOnly {
		t.store.mu.RUnlock()
	} else {
		t.store.mu.Unlock()
	}
}

func (t *tx) Cancel(_ context.Context) error {
	if t.closed {
		return kv.ErrTxFinished
	}
	t.closed = true
	t.unlock()
	return nil
}

func (t *tx) Commit(_ context.Context) error {
	if t.closed {
		return kv.ErrTxFinished
	}
	t.closed = true
	if t.pending != nil {
		t.pending.Ascend(func(op pendingOp) bool {
			if op.deleted {
				t.store.tree.Delete(item{key: op.key})
			} else {
				t.store.tree.ReplaceOrInsert(item{key: op.key, val: op.val})
			}
			return true
		})
	}
	t.unlock()
	return nil
}

// effective returns the value and presence of key as this transaction
// sees it: its own staged write or tombstone if one exists, else the
// last committed value.
func (t *tx) effective(key []byte) ([]byte, bool) {
	if t.pending != nil {
		if op, found := t.pending.Get(pendingOp{key: key}); found {
			if op.deleted {
				return nil, false
			}
			return op.val, true
		}
	}
	found, ok := t.store.tree.Get(item{key: key})
	if !ok {
		return nil, false
	}
	return found.val, true
}

// stage buffers a write or tombstone in this transaction's pending
// overlay; it is applied to the shared tree on Commit and dropped on
// Cancel.
func (t *tx) stage(key, val []byte, deleted bool) {
	t.pending.ReplaceOrInsert(pendingOp{key: cloneBytes(key), val: cloneBytes(val), deleted: deleted})
}

func (t *tx) Get(_ context.Context, key []byte) ([]byte, bool, error) {
	if t.closed {
		return nil, false, kv.ErrTxFinished
	}
	val, ok := t.effective(key)
	return val, ok, nil
}

func (t *tx) Exists(ctx context.Context, key []byte) (bool, error) {
	_, ok, err := t.Get(ctx, key)
	return ok, err
}

func (t *tx) Set(_ context.Context, key, val []byte) error {
	if t.closed {
		return kv.ErrTxFinished
	}
	if t.readOnly {
		return kv.ErrTxReadOnly
	}
	t.stage(key, val, false)
	return nil
}

func (t *tx) Put(_ context.Context, key, val []byte) error {
	if t.closed {
		return kv.ErrTxFinished
	}
	if t.readOnly {
		return kv.ErrTxReadOnly
	}
	if _, ok := t.effective(key); ok {
		return kv.ErrTxKeyAlreadyExists
	}
	t.stage(key, val, false)
	return nil
}

func (t *tx) Del(_ context.Context, key []byte) error {
	if t.closed {
		return kv.ErrTxFinished
	}
	if t.readOnly {
		return kv.ErrTxReadOnly
	}
	t.stage(key, nil, true)
	return nil
}

func (t *tx) PutC(_ context.Context, key, val, chk []byte) error {
	if t.closed {
		return kv.ErrTxFinished
	}
	if t.readOnly {
		return kv.ErrTxReadOnly
	}
	cur, ok := t.effective(key)
	if !conditionHolds(ok, cur, chk) {
		return kv.ErrTxConditionNotMet
	}
	t.stage(key, val, false)
	return nil
}

func (t *tx) DelC(_ context.Context, key, chk []byte) error {
	if t.closed {
		return kv.ErrTxFinished
	}
	if t.readOnly {
		return kv.ErrTxReadOnly
	}
	cur, ok := t.effective(key)
	if !conditionHolds(ok, cur, chk) {
		return kv.ErrTxConditionNotMet
	}
	t.stage(key, nil, true)
	return nil
}

// conditionHolds implements the open question in §9: chk == nil
// means "expect key to be absent"; otherwise chk must equal the
// current value.
func conditionHolds(present bool, curVal, chk []byte) bool {
	if chk == nil {
		return !present
	}
	return present && bytes.Equal(curVal, chk)
}

func (t *tx) Scan(_ context.Context, rng kv.KeyRange, limit int) ([]kv.Pair, error) {
	if t.closed {
		return nil, kv.ErrTxFinished
	}
	if limit <= 0 || (len(rng.End) > 0 && bytes.Compare(rng.Begin, rng.End) >= 0) {
		return nil, nil
	}
	if t.pending == nil || t.pending.Len() == 0 {
		return t.store.scan(rng, limit), nil
	}

	var pend []pendingOp
	visitPending := func(op pendingOp) bool {
		if len(rng.End) > 0 && bytes.Compare(op.key, rng.End) >= 0 {
			return false
		}
		pend = append(pend, op)
		return true
	}
	if len(rng.End) == 0 {
		t.pending.AscendGreaterOrEqual(pendingOp{key: rng.Begin}, visitPending)
	} else {
		t.pending.AscendRange(pendingOp{key: rng.Begin}, pendingOp{key: rng.End}, visitPending)
	}
	if len(pend) == 0 {
		return t.store.scan(rng, limit), nil
	}

	// Fetch the whole matching base range rather than a limit-sized
	// slice: a tombstone or overwrite staged in pend can shadow a base
	// entry, so a limit-bounded base fetch could come up short even
	// though enough live entries exist further down the tree.
	base := t.store.scan(rng, math.MaxInt)
	return mergeScan(base, pend, limit), nil
}

// mergeScan merges base (ascending, committed entries) with pend
// (ascending, this transaction's staged ops over the same key range),
// pend taking precedence at equal keys and tombstones dropped, up to
// limit entries.
func mergeScan(base []kv.Pair, pend []pendingOp, limit int) []kv.Pair {
	out := make([]kv.Pair, 0, limit)
	i, j := 0, 0
	for len(out) < limit && (i < len(base) || j < len(pend)) {
		switch {
		case j >= len(pend) || (i < len(base) && bytes.Compare(base[i].Key, pend[j].key) < 0):
			out = append(out, base[i])
			i++
		case i >= len(base) || bytes.Compare(pend[j].key, base[i].Key) < 0:
			if !pend[j].deleted {
				out = append(out, kv.Pair{Key: cloneBytes(pend[j].key), Val: cloneBytes(pend[j].val)})
			}
			j++
		default: // equal keys: pending shadows base
			if !pend[j].deleted {
				out = append(out, kv.Pair{Key: cloneBytes(pend[j].key), Val: cloneBytes(pend[j].val)})
			}
			i++
			j++
		}
	}
	return out
}

func cloneBytes(b []byte) []byte {
	if b == nil {
		return nil
	}
	out := make([]byte, len(b))
	copy(out, b)
	return out
}
