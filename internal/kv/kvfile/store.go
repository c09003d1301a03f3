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

// Package kvfile implements the File backend variant on top of Pebble,
// a pure-Go embedded LSM store used as the ordered, on-disk store in
// this family of systems (other_examples/manifests/chaisql-chai and
// other_examples/manifests/bobboyms-storage-engine both depend on it
// for exactly this role).
//
// Pebble has no single object that is simultaneously an isolated read
// view and a deferred-commit write buffer, so a read-write Tx here is
// composed from an indexed Batch (buffers writes, supports Get/iterate
// over them before commit) and a read-only Tx from a Snapshot.
package kvfile

import (
	"bytes"
	"context"

	"github.com/cockroachdb/pebble"
	"github.com/pkg/errors"

	"github.com/riftdb/riftkv/internal/kv"
)

func init() {
	kv.Register("pebble", driver{})
}

type driver struct{}

func (driver) Open(_ context.Context, dsn string) (kv.Store, error) {
	db, err := pebble.Open(dsn, &pebble.Options{})
	if err != nil {
		return nil, errors.Wrap(err, "opening pebble store")
	}
	return &store{db: db}, nil
}

type store struct{ db *pebble.DB }

func (s *store) Name() string { return "pebble" }

func (s *store) Close() error { return errors.Wrap(s.db.Close(), "closing pebble store") }

// Healthy implements diag.Healthy by opening and immediately
// cancelling a read-only transaction.
func (s *store) Healthy(ctx context.Context) error {
	tx, err := s.Begin(ctx, true)
	if err != nil {
		return err
	}
	return tx.Cancel(ctx)
}

func (s *store) Begin(_ context.Context, readOnly bool) (kv.Tx, error) {
	if readOnly {
		return &readTx{snap: s.db.NewSnapshot()}, nil
	}
	return &writeTx{db: s.db, batch: s.db.NewIndexedBatch()}, nil
}

// readTx serves Get/Scan against a point-in-time pebble.Snapshot and
// rejects every write primitive.
type readTx struct {
	snap   *pebble.Snapshot
	closed bool
}

func (t *readTx) Closed() bool { return t.closed }

func (t *readTx) Cancel(context.Context) error {
	if t.closed {
		return kv.ErrTxFinished
	}
	t.closed = true
	return errors.Wrap(t.snap.Close(), "closing pebble snapshot")
}

func (t *readTx) Commit(ctx context.Context) error { return t.Cancel(ctx) }

func (t *readTx) Get(_ context.Context, key []byte) ([]byte, bool, error) {
	if t.closed {
		return nil, false, kv.ErrTxFinished
	}
	val, closer, err := t.snap.Get(key)
	if errors.Is(err, pebble.ErrNotFound) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, errors.Wrap(err, "pebble get")
	}
	out := append([]byte(nil), val...)
	_ = closer.Close()
	return out, true, nil
}

func (t *readTx) Exists(ctx context.Context, key []byte) (bool, error) {
	_, ok, err := t.Get(ctx, key)
	return ok, err
}

func (t *readTx) Set(context.Context, []byte, []byte) error         { return kv.ErrTxReadOnly }
func (t *readTx) Put(context.Context, []byte, []byte) error         { return kv.ErrTxReadOnly }
func (t *readTx) Del(context.Context, []byte) error                 { return kv.ErrTxReadOnly }
func (t *readTx) PutC(context.Context, []byte, []byte, []byte) error { return kv.ErrTxReadOnly }
func (t *readTx) DelC(context.Context, []byte, []byte) error         { return kv.ErrTxReadOnly }

func (t *readTx) Scan(_ context.Context, rng kv.KeyRange, limit int) ([]kv.Pair, error) {
	if t.closed {
		return nil, kv.ErrTxFinished
	}
	return scanIter(t.snap.NewIter(iterOptions(rng)), rng, limit)
}

// writeTx buffers writes in an indexed pebble.Batch so reads within the
// same transaction observe its own pending writes, and commits by
// applying the batch.
type writeTx struct {
	db     *pebble.DB
	batch  *pebble.Batch
	closed bool
}

func (t *writeTx) Closed() bool { return t.closed }

func (t *writeTx) Cancel(context.Context) error {
	if t.closed {
		return kv.ErrTxFinished
	}
	t.closed = true
	return errors.Wrap(t.batch.Close(), "closing pebble batch")
}

func (t *writeTx) Commit(context.Context) error {
	if t.closed {
		return kv.ErrTxFinished
	}
	t.closed = true
	return errors.Wrap(t.batch.Commit(pebble.Sync), "committing pebble batch")
}

func (t *writeTx) Get(_ context.Context, key []byte) ([]byte, bool, error) {
	if t.closed {
		return nil, false, kv.ErrTxFinished
	}
	val, closer, err := t.batch.Get(key)
	if errors.Is(err, pebble.ErrNotFound) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, errors.Wrap(err, "pebble batch get")
	}
	out := append([]byte(nil), val...)
	_ = closer.Close()
	return out, true, nil
}

func (t *writeTx) Exists(ctx context.Context, key []byte) (bool, error) {
	_, ok, err := t.Get(ctx, key)
	return ok, err
}

func (t *writeTx) Set(_ context.Context, key, val []byte) error {
	if t.closed {
		return kv.ErrTxFinished
	}
	return errors.Wrap(t.batch.Set(key, val, nil), "pebble batch set")
}

func (t *writeTx) Put(ctx context.Context, key, val []byte) error {
	if t.closed {
		return kv.ErrTxFinished
	}
	if ok, err := t.Exists(ctx, key); err != nil {
		return err
	} else if ok {
		return kv.ErrTxKeyAlreadyExists
	}
	return errors.Wrap(t.batch.Set(key, val, nil), "pebble batch set")
}

func (t *writeTx) Del(_ context.Context, key []byte) error {
	if t.closed {
		return kv.ErrTxFinished
	}
	return errors.Wrap(t.batch.Delete(key, nil), "pebble batch delete")
}

func (t *writeTx) PutC(ctx context.Context, key, val, chk []byte) error {
	if t.closed {
		return kv.ErrTxFinished
	}
	if err := t.checkCondition(ctx, key, chk); err != nil {
		return err
	}
	return errors.Wrap(t.batch.Set(key, val, nil), "pebble batch set")
}

func (t *writeTx) DelC(ctx context.Context, key, chk []byte) error {
	if t.closed {
		return kv.ErrTxFinished
	}
	if err := t.checkCondition(ctx, key, chk); err != nil {
		return err
	}
	return errors.Wrap(t.batch.Delete(key, nil), "pebble batch delete")
}

func (t *writeTx) checkCondition(ctx context.Context, key, chk []byte) error {
	cur, ok, err := t.Get(ctx, key)
	if err != nil {
		return err
	}
	holds := (chk == nil && !ok) || (chk != nil && ok && bytes.Equal(cur, chk))
	if !holds {
		return kv.ErrTxConditionNotMet
	}
	return nil
}

func (t *writeTx) Scan(_ context.Context, rng kv.KeyRange, limit int) ([]kv.Pair, error) {
	if t.closed {
		return nil, kv.ErrTxFinished
	}
	return scanIter(t.batch.NewIter(iterOptions(rng)), rng, limit)
}

func iterOptions(rng kv.KeyRange) *pebble.IterOptions {
	return &pebble.IterOptions{LowerBound: rng.Begin, UpperBound: rng.End}
}

func scanIter(it *pebble.Iterator, rng kv.KeyRange, limit int) ([]kv.Pair, error) {
	defer it.Close()
	if limit <= 0 || (len(rng.End) > 0 && bytes.Compare(rng.Begin, rng.End) >= 0) {
		return nil, nil
	}
	out := make([]kv.Pair, 0, limit)
	for valid := it.First(); valid && len(out) < limit; valid = it.Next() {
		out = append(out, kv.Pair{
			Key: append([]byte(nil), it.Key()...),
			Val: append([]byte(nil), it.Value()...),
		})
	}
	if err := it.Error(); err != nil {
		return nil, errors.Wrap(err, "pebble scan")
	}
	return out, nil
}
