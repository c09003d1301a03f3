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

// Package kv defines the primitive, backend-agnostic transaction
// contract that the catalog façade is built on. Concrete backends
// (kvmem, kvindexed, kvfile, kvtikv, kvfdb) each implement Store and Tx
// and register themselves under a driver name; nothing about this
// package depends on any of them.
package kv

import "github.com/pkg/errors"

// Sentinel errors shared by every backend. Backends translate their
// own native errors onto these at the adapter boundary so that callers
// above this package never need to know which backend they're talking
// to.
var (
	// ErrTxFinished is returned by any operation performed after
	// Commit or Cancel has completed.
	ErrTxFinished = errors.New("transaction finished")
	// ErrTxReadOnly is returned by a write primitive on a transaction
	// opened read-only.
	ErrTxReadOnly = errors.New("transaction is read-only")
	// ErrTxConflict is returned by Commit when the backend detects a
	// serialization conflict with another transaction.
	ErrTxConflict = errors.New("transaction conflict")
	// ErrTxConditionNotMet is returned by PutC/DelC when the observed
	// value does not match the expected check value.
	ErrTxConditionNotMet = errors.New("condition not met")
	// ErrTxKeyAlreadyExists is returned by Put when the key is already
	// present.
	ErrTxKeyAlreadyExists = errors.New("key already exists")
)

// IsConditionFailure reports whether err is the kind of failure that a
// compare-and-swap primitive raises when its precondition doesn't hold.
func IsConditionFailure(err error) bool {
	return errors.Is(err, ErrTxConditionNotMet) || errors.Is(err, ErrTxKeyAlreadyExists)
}
