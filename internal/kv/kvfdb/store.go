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

// Package kvfdb implements the ClusterB backend variant on top of
// FoundationDB, named explicitly by the design this spec was
// distilled from (the "FDB" backend variant). It uses the low-level,
// non-retrying *fdb.Transaction handle rather than db.Transact's
// auto-retrying callback form, since the façade above this package
// owns the transaction's lifetime across many calls.
package kvfdb

import (
	"bytes"
	"context"

	"github.com/apple/foundationdb/bindings/go/src/fdb"
	"github.com/pkg/errors"

	"github.com/riftdb/riftkv/internal/kv"
)

// errNotCommitted is FoundationDB's error code for a transaction that
// lost to a conflicting writer.
const errNotCommitted = 1020

func init() {
	fdb.MustAPIVersion(710)
	kv.Register("fdb", driver{})
}

type driver struct{}

// Open ignores dsn beyond using it, if non-empty, as the path to a
// cluster file; an empty dsn uses FoundationDB's default cluster file
// discovery.
func (driver) Open(_ context.Context, dsn string) (kv.Store, error) {
	var db fdb.Database
	var err error
	if dsn == "" {
		db, err = fdb.OpenDefault()
	} else {
		db, err = fdb.OpenDatabase(dsn)
	}
	if err != nil {
		return nil, errors.Wrap(err, "opening foundationdb database")
	}
	return &store{db: db}, nil
}

type store struct{ db fdb.Database }

func (s *store) Name() string { return "fdb" }

func (s *store) Close() error { return nil }

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
	txn, err := s.db.CreateTransaction()
	if err != nil {
		return nil, errors.Wrap(err, "starting foundationdb transaction")
	}
	return &tx{txn: txn, readOnly: readOnly}, nil
}

type tx struct {
	txn      fdb.Transaction
	readOnly bool
	closed   bool
}

func (t *tx) Closed() bool { return t.closed }

func (t *tx) Cancel(context.Context) error {
	if t.closed {
		return kv.ErrTxFinished
	}
	t.closed = true
	t.txn.Cancel()
	return nil
}

func (t *tx) Commit(context.Context) error {
	if t.closed {
		return kv.ErrTxFinished
	}
	t.closed = true
	err := t.txn.Commit().Get()
	if err == nil {
		return nil
	}
	if fdbErr, ok := err.(fdb.Error); ok && fdbErr.Code == errNotCommitted {
		return kv.ErrTxConflict
	}
	return errors.Wrap(err, "committing foundationdb transaction")
}

func (t *tx) Get(_ context.Context, key []byte) ([]byte, bool, error) {
	if t.closed {
		return nil, false, kv.ErrTxFinished
	}
	val, err := t.txn.Get(fdb.Key(key)).Get()
	if err != nil {
		return nil, false, errors.Wrap(err, "foundationdb get")
	}
	if val == nil {
		return nil, false, nil
	}
	return val, true, nil
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
	t.txn.Set(fdb.Key(key), val)
	return nil
}

func (t *tx) Put(ctx context.Context, key, val []byte) error {
	if t.closed {
		return kv.ErrTxFinished
	}
	if t.readOnly {
		return kv.ErrTxReadOnly
	}
	if ok, err := t.Exists(ctx, key); err != nil {
		return err
	} else if ok {
		return kv.ErrTxKeyAlreadyExists
	}
	t.txn.Set(fdb.Key(key), val)
	return nil
}

func (t *tx) Del(_ context.Context, key []byte) error {
	if t.closed {
		return kv.ErrTxFinished
	}
	if t.readOnly {
		return kv.ErrTxReadOnly
	}
	t.txn.Clear(fdb.Key(key))
	return nil
}

func (t *tx) PutC(ctx context.Context, key, val, chk []byte) error {
	if t.closed {
		return kv.ErrTxFinished
	}
	if t.readOnly {
		return kv.ErrTxReadOnly
	}
	if err := t.checkCondition(ctx, key, chk); err != nil {
		return err
	}
	t.txn.Set(fdb.Key(key), val)
	return nil
}

func (t *tx) DelC(ctx context.Context, key, chk []byte) error {
	if t.closed {
		return kv.ErrTxFinished
	}
	if t.readOnly {
		return kv.ErrTxReadOnly
	}
	if err := t.checkCondition(ctx, key, chk); err != nil {
		return err
	}
	t.txn.Clear(fdb.Key(key))
	return nil
}

// checkCondition reads key through the transaction (establishing a
// read-conflict range on it) before comparing; FoundationDB's own
// conflict detection makes the comparison safe against concurrent
// writers between here and Commit.
func (t *tx) checkCondition(ctx context.Context, key, chk []byte) error {
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

func (t *tx) Scan(_ context.Context, rng kv.KeyRange, limit int) ([]kv.Pair, error) {
	if t.closed {
		return nil, kv.ErrTxFinished
	}
	if limit <= 0 || (len(rng.End) > 0 && bytes.Compare(rng.Begin, rng.End) >= 0) {
		return nil, nil
	}
	end := fdb.Key(rng.End)
	if len(end) == 0 {
		// An empty End means unbounded: stop at the end of the
		// normal (non-system) keyspace.
		end = fdb.Key{0xff}
	}
	keyRange := fdb.KeyRange{Begin: fdb.Key(rng.Begin), End: end}
	kvs, err := t.txn.GetRange(keyRange, fdb.RangeOptions{Limit: limit}).GetSliceWithError()
	if err != nil {
		return nil, errors.Wrap(err, "foundationdb range read")
	}
	out := make([]kv.Pair, 0, len(kvs))
	for _, entry := range kvs {
		out = append(out, kv.Pair{Key: entry.Key, Val: entry.Value})
	}
	return out, nil
}
