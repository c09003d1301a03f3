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

package txn

import (
	"context"

	"github.com/riftdb/riftkv/internal/catalog"
	"github.com/riftdb/riftkv/internal/keys"
)

// AddNamespace reads namespace ns; on NotFound, it either surfaces the
// error (strict) or writes and returns a default-constructed
// namespace (non-strict). A second non-strict call against the same
// store returns the already-persisted entity without writing again.
func AddNamespace(ctx context.Context, h *Handle, ns string, strict bool) (*catalog.Namespace, error) {
	return ensure(ctx, h, keys.Namespace(ns), strict,
		func() (*catalog.Namespace, error) { return GetNamespace(ctx, h, ns) },
		func() *catalog.Namespace { return catalog.DefaultNamespace(ns) },
	)
}

// AddAndCacheNamespace is AddNamespace using the cached singular getter.
func AddAndCacheNamespace(ctx context.Context, h *Handle, ns string, strict bool) (*catalog.Namespace, error) {
	return ensure(ctx, h, keys.Namespace(ns), strict,
		func() (*catalog.Namespace, error) { return GetAndCacheNamespace(ctx, h, ns) },
		func() *catalog.Namespace { return catalog.DefaultNamespace(ns) },
	)
}

// AddDatabase is the database analogue of AddNamespace.
func AddDatabase(ctx context.Context, h *Handle, ns, db string, strict bool) (*catalog.Database, error) {
	return ensure(ctx, h, keys.Database(ns, db), strict,
		func() (*catalog.Database, error) { return GetDatabase(ctx, h, ns, db) },
		func() *catalog.Database { return catalog.DefaultDatabase(db) },
	)
}

// AddAndCacheDatabase is AddDatabase using the cached singular getter.
func AddAndCacheDatabase(ctx context.Context, h *Handle, ns, db string, strict bool) (*catalog.Database, error) {
	return ensure(ctx, h, keys.Database(ns, db), strict,
		func() (*catalog.Database, error) { return GetAndCacheDatabase(ctx, h, ns, db) },
		func() *catalog.Database { return catalog.DefaultDatabase(db) },
	)
}

// AddTable is the table analogue of AddNamespace; the default entity
// carries Permissions = none per §9's design notes.
func AddTable(ctx context.Context, h *Handle, ns, db, tb string, strict bool) (*catalog.Table, error) {
	return ensure(ctx, h, keys.Table(ns, db, tb), strict,
		func() (*catalog.Table, error) { return GetTable(ctx, h, ns, db, tb) },
		func() *catalog.Table { return catalog.DefaultTable(tb) },
	)
}

// AddAndCacheTable is AddTable using the cached singular getter.
func AddAndCacheTable(ctx context.Context, h *Handle, ns, db, tb string, strict bool) (*catalog.Table, error) {
	return ensure(ctx, h, keys.Table(ns, db, tb), strict,
		func() (*catalog.Table, error) { return GetAndCacheTable(ctx, h, ns, db, tb) },
		func() *catalog.Table { return catalog.DefaultTable(tb) },
	)
}

// entity is the shape ensure needs from a catalog record: encodable so
// ensure can write the default it constructs on a non-strict miss.
type entity interface {
	Encode() []byte
}

// ensure implements the §4.4 algorithm: read via get; on NotFound,
// either surface it (strict) or construct and Put a default, returning
// it; any other error propagates; on success, return the found entity.
func ensure[T entity](ctx context.Context, h *Handle, key []byte, strict bool, get func() (T, error), makeDefault func() T) (T, error) {
	var zero T
	found, err := get()
	if err == nil {
		return found, nil
	}
	if !IsNotFound(err, "") {
		return zero, err
	}
	if strict {
		return zero, err
	}
	def := makeDefault()
	if putErr := h.tx.Put(ctx, key, def.Encode()); putErr != nil {
		return zero, putErr
	}
	return def, nil
}

// CheckNamespaceDatabaseTable implements the §4.4 "Check helper":
// short-circuits when strict is false; otherwise invokes the cached
// getters for namespace, then database, then table in that order, so
// a missing ancestor surfaces its own kind-specific NotFound rather
// than a generic one.
func CheckNamespaceDatabaseTable(ctx context.Context, h *Handle, ns, db, tb string, strict bool) error {
	if !strict {
		return nil
	}
	if _, err := GetAndCacheNamespace(ctx, h, ns); err != nil {
		return err
	}
	if _, err := GetAndCacheDatabase(ctx, h, ns, db); err != nil {
		return err
	}
	if _, err := GetAndCacheTable(ctx, h, ns, db, tb); err != nil {
		return err
	}
	return nil
}
