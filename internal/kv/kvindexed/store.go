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

// Package kvindexed implements the Indexed backend variant on top of
// Badger, an embedded LSM-tree store whose *badger.Txn already exposes
// the long-lived, explicitly-committed transaction shape kv.Tx needs.
package kvindexed

import (
	"bytes"
	"context"

	"github.com/dgraph-io/badger/v4"
	"github.com/pkg/errors"

	"github.com/riftdb/riftkv/internal/kv"
)

func init() {
	kv.Register("badger", driver{})
}

type driver struct{}

func (driver) Open(_ context.Context, dsn string) (kv.Store, error) {
	opts := badger.DefaultOptions(dsn).WithLogger(nil)
	db, err := badger.Open(opts)
	if err != nil {
		return nil, errors.Wrap(err, "opening badger store")
	}
	return &store{db: db}, nil
}

type store struct{ db *badger.DB }

func (s *store) Name() string { return "badger" }

func (s *store) Close() error { return errors.Wrap(s.db.Close(), "closing badger store") }

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
	return &tx{txn: s.db.NewTransaction(!readOnly), readOnly: readOnly}, nil
}

type tx struct {
	txn      *badger.Txn
	readOnly bool
	closed   bool
}

func (t *tx) Closed() bool { return t.closed }

func (t *tx) Cancel(_ context.Context) error {
	if t.closed {
		return kv.ErrTxFinished
	}
	t.closed = true
	t.txn.Discard()
	return nil
}

func (t *tx) Commit(_ context.Context) error {
	if t.closed {
		return kv.ErrTxFinished
	}
	t.closed = true
	err := t.txn.Commit()
	if errors.Is(err, badger.ErrConflict) {
		return kv.ErrTxConflict
	}
	return errors.Wrap(err, "committing badger transaction")
}

func (t *tx) Get(_ context.Context, key []byte) ([]byte, bool, error) {
	if t.closed {
		return nil, false, kv.ErrTxFinished
	}
	item, err := t.txn.Get(key)
	if errors.Is(err, badger.ErrKeyNotFound) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, errors.Wrap(err, "badger get")
	}
	val, err := item.ValueCopy(nil)
	if err != nil {
		return nil, false, errors.Wrap(err, "badger value copy")
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
	return errors.Wrap(t.txn.Set(key, val), "badger set")
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
	return errors.Wrap(t.txn.Set(key, val), "badger set")
}

func (t *tx) Del(_ context.Context, key []byte) error {
	if t.closed {
		return kv.ErrTxFinished
	}
	if t.readOnly {
		return kv.ErrTxReadOnly
	}
	return errors.Wrap(t.txn.Delete(key), "badger delete")
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
	return errors.Wrap(t.txn.Set(key, val), "badger set")
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
	return errors.Wrap(t.txn.Delete(key), "badger delete")
}

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
	opts := badger.DefaultIteratorOptions
	it := t.txn.NewIterator(opts)
	defer it.Close()

	out := make([]kv.Pair, 0, limit)
	for it.Seek(rng.Begin); it.Valid() && len(out) < limit; it.Next() {
		key := it.Item().KeyCopy(nil)
		if len(rng.End) > 0 && bytes.Compare(key, rng.End) >= 0 {
			break
		}
		val, err := it.Item().ValueCopy(nil)
		if err != nil {
			return nil, errors.Wrap(err, "badger scan value copy")
		}
		out = append(out, kv.Pair{Key: key, Val: val})
	}
	return out, nil
}
