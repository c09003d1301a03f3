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
	"github.com/riftdb/riftkv/internal/kv"
)

// decodable is the shape every catalog value codec exposes: decode in
// place from the bytes a kv.Tx handed back.
type decodable interface {
	Decode([]byte) error
}

// listAccessor implements the §4.3 list accessor template: consult
// the cache under listKey first; on miss, page the whole range,
// decode every value, cache the resulting shared slice, and return it.
func listAccessor[T decodable](ctx context.Context, h *Handle, listKey []byte, rng kv.KeyRange, newT func() T) ([]T, error) {
	ck := string(listKey)
	if cached, ok := getCached[[]T](h.cache, ck); ok {
		return cached, nil
	}
	pairs, err := h.Getr(ctx, rng, Unbounded)
	if err != nil {
		return nil, err
	}
	out := make([]T, 0, len(pairs))
	for _, pair := range pairs {
		v := newT()
		if err := v.Decode(pair.Val); err != nil {
			return nil, err
		}
		out = append(out, v)
	}
	setCached(h.cache, ck, out)
	return out, nil
}

// cachedSingular implements the §4.3 get_and_cache_X template.
func cachedSingular[T decodable](ctx context.Context, h *Handle, key []byte, newT func() T, kind string) (T, error) {
	var zero T
	ck := string(key)
	if cached, ok := getCached[T](h.cache, ck); ok {
		return cached, nil
	}
	val, ok, err := h.tx.Get(ctx, key)
	if err != nil {
		return zero, err
	}
	if !ok {
		return zero, notFound(kind)
	}
	v := newT()
	if err := v.Decode(val); err != nil {
		return zero, err
	}
	setCached(h.cache, ck, v)
	return v, nil
}

// uncachedSingular implements the §4.3 get_X template: always reads
// through to the backend, never touches the cache.
func uncachedSingular[T decodable](ctx context.Context, h *Handle, key []byte, newT func() T, kind string) (T, error) {
	var zero T
	val, ok, err := h.tx.Get(ctx, key)
	if err != nil {
		return zero, err
	}
	if !ok {
		return zero, notFound(kind)
	}
	v := newT()
	if err := v.Decode(val); err != nil {
		return zero, err
	}
	return v, nil
}

// --- Namespace ---

func AllNamespaces(ctx context.Context, h *Handle) ([]*catalog.Namespace, error) {
	return listAccessor(ctx, h, keys.NamespacePrefix(), keys.NamespaceList(), func() *catalog.Namespace { return new(catalog.Namespace) })
}

func GetNamespace(ctx context.Context, h *Handle, ns string) (*catalog.Namespace, error) {
	return uncachedSingular(ctx, h, keys.Namespace(ns), func() *catalog.Namespace { return new(catalog.Namespace) }, "ns")
}

func GetAndCacheNamespace(ctx context.Context, h *Handle, ns string) (*catalog.Namespace, error) {
	return cachedSingular(ctx, h, keys.Namespace(ns), func() *catalog.Namespace { return new(catalog.Namespace) }, "ns")
}

// --- Namespace-Login / Namespace-Token ---

func AllNamespaceLogins(ctx context.Context, h *Handle, ns string) ([]*catalog.Login, error) {
	return listAccessor(ctx, h, keys.NamespaceLoginPrefix(ns), keys.NamespaceLoginList(ns), func() *catalog.Login { return new(catalog.Login) })
}

func GetNamespaceLogin(ctx context.Context, h *Handle, ns, name string) (*catalog.Login, error) {
	return uncachedSingular(ctx, h, keys.NamespaceLogin(ns, name), func() *catalog.Login { return new(catalog.Login) }, "nl")
}

func AllNamespaceTokens(ctx context.Context, h *Handle, ns string) ([]*catalog.Token, error) {
	return listAccessor(ctx, h, keys.NamespaceTokenPrefix(ns), keys.NamespaceTokenList(ns), func() *catalog.Token { return new(catalog.Token) })
}

func GetNamespaceToken(ctx context.Context, h *Handle, ns, name string) (*catalog.Token, error) {
	return uncachedSingular(ctx, h, keys.NamespaceToken(ns, name), func() *catalog.Token { return new(catalog.Token) }, "nt")
}

// --- Database ---

func AllDatabases(ctx context.Context, h *Handle, ns string) ([]*catalog.Database, error) {
	return listAccessor(ctx, h, keys.DatabasePrefix(ns), keys.DatabaseList(ns), func() *catalog.Database { return new(catalog.Database) })
}

func GetDatabase(ctx context.Context, h *Handle, ns, db string) (*catalog.Database, error) {
	return uncachedSingular(ctx, h, keys.Database(ns, db), func() *catalog.Database { return new(catalog.Database) }, "db")
}

func GetAndCacheDatabase(ctx context.Context, h *Handle, ns, db string) (*catalog.Database, error) {
	return cachedSingular(ctx, h, keys.Database(ns, db), func() *catalog.Database { return new(catalog.Database) }, "db")
}

// --- Database-Login / Database-Token ---

func AllDatabaseLogins(ctx context.Context, h *Handle, ns, db string) ([]*catalog.Login, error) {
	return listAccessor(ctx, h, keys.DatabaseLoginPrefix(ns, db), keys.DatabaseLoginList(ns, db), func() *catalog.Login { return new(catalog.Login) })
}

func GetDatabaseLogin(ctx context.Context, h *Handle, ns, db, name string) (*catalog.Login, error) {
	return uncachedSingular(ctx, h, keys.DatabaseLogin(ns, db, name), func() *catalog.Login { return new(catalog.Login) }, "dl")
}

func AllDatabaseTokens(ctx context.Context, h *Handle, ns, db string) ([]*catalog.Token, error) {
	return listAccessor(ctx, h, keys.DatabaseTokenPrefix(ns, db), keys.DatabaseTokenList(ns, db), func() *catalog.Token { return new(catalog.Token) })
}

func GetDatabaseToken(ctx context.Context, h *Handle, ns, db, name string) (*catalog.Token, error) {
	return uncachedSingular(ctx, h, keys.DatabaseToken(ns, db, name), func() *catalog.Token { return new(catalog.Token) }, "dt")
}

// --- Scope / Scope-Token ---

func AllScopes(ctx context.Context, h *Handle, ns, db string) ([]*catalog.Scope, error) {
	return listAccessor(ctx, h, keys.ScopePrefix(ns, db), keys.ScopeList(ns, db), func() *catalog.Scope { return new(catalog.Scope) })
}

func GetScope(ctx context.Context, h *Handle, ns, db, sc string) (*catalog.Scope, error) {
	return uncachedSingular(ctx, h, keys.Scope(ns, db, sc), func() *catalog.Scope { return new(catalog.Scope) }, "sc")
}

func AllScopeTokens(ctx context.Context, h *Handle, ns, db, sc string) ([]*catalog.Token, error) {
	return listAccessor(ctx, h, keys.ScopeTokenPrefix(ns, db, sc), keys.ScopeTokenList(ns, db, sc), func() *catalog.Token { return new(catalog.Token) })
}

func GetScopeToken(ctx context.Context, h *Handle, ns, db, sc, name string) (*catalog.Token, error) {
	return uncachedSingular(ctx, h, keys.ScopeToken(ns, db, sc, name), func() *catalog.Token { return new(catalog.Token) }, "st")
}

// --- Table ---

func AllTables(ctx context.Context, h *Handle, ns, db string) ([]*catalog.Table, error) {
	return listAccessor(ctx, h, keys.TablePrefix(ns, db), keys.TableList(ns, db), func() *catalog.Table { return new(catalog.Table) })
}

func GetTable(ctx context.Context, h *Handle, ns, db, tb string) (*catalog.Table, error) {
	return uncachedSingular(ctx, h, keys.Table(ns, db, tb), func() *catalog.Table { return new(catalog.Table) }, "tb")
}

func GetAndCacheTable(ctx context.Context, h *Handle, ns, db, tb string) (*catalog.Table, error) {
	return cachedSingular(ctx, h, keys.Table(ns, db, tb), func() *catalog.Table { return new(catalog.Table) }, "tb")
}

// --- Event / Field / Index / View / Live query ---
//
// §7's NotFound family enumerates only ns/nl/nt/db/dl/dt/sc/st/tb;
// the table-child kinds below still follow the general singular-accessor template from
// §4.3, so they get the matching kind codes ("ev", "fd", "ix", "ft", "lv")
// as a direct extension of the same NotFoundError taxonomy.

func AllEvents(ctx context.Context, h *Handle, ns, db, tb string) ([]*catalog.Event, error) {
	return listAccessor(ctx, h, keys.EventPrefix(ns, db, tb), keys.EventList(ns, db, tb), func() *catalog.Event { return new(catalog.Event) })
}

func GetEvent(ctx context.Context, h *Handle, ns, db, tb, name string) (*catalog.Event, error) {
	return uncachedSingular(ctx, h, keys.Event(ns, db, tb, name), func() *catalog.Event { return new(catalog.Event) }, "ev")
}

func AllFields(ctx context.Context, h *Handle, ns, db, tb string) ([]*catalog.Field, error) {
	return listAccessor(ctx, h, keys.FieldPrefix(ns, db, tb), keys.FieldList(ns, db, tb), func() *catalog.Field { return new(catalog.Field) })
}

func GetField(ctx context.Context, h *Handle, ns, db, tb, name string) (*catalog.Field, error) {
	return uncachedSingular(ctx, h, keys.Field(ns, db, tb, name), func() *catalog.Field { return new(catalog.Field) }, "fd")
}

func AllIndexes(ctx context.Context, h *Handle, ns, db, tb string) ([]*catalog.Index, error) {
	return listAccessor(ctx, h, keys.IndexPrefix(ns, db, tb), keys.IndexList(ns, db, tb), func() *catalog.Index { return new(catalog.Index) })
}

func GetIndex(ctx context.Context, h *Handle, ns, db, tb, name string) (*catalog.Index, error) {
	return uncachedSingular(ctx, h, keys.Index(ns, db, tb, name), func() *catalog.Index { return new(catalog.Index) }, "ix")
}

func AllViews(ctx context.Context, h *Handle, ns, db, tb string) ([]*catalog.View, error) {
	return listAccessor(ctx, h, keys.ViewPrefix(ns, db, tb), keys.ViewList(ns, db, tb), func() *catalog.View { return new(catalog.View) })
}

func GetView(ctx context.Context, h *Handle, ns, db, tb, name string) (*catalog.View, error) {
	return uncachedSingular(ctx, h, keys.View(ns, db, tb, name), func() *catalog.View { return new(catalog.View) }, "ft")
}

func AllLiveQueries(ctx context.Context, h *Handle, ns, db, tb string) ([]*catalog.LiveQuery, error) {
	return listAccessor(ctx, h, keys.LiveQueryPrefix(ns, db, tb), keys.LiveQueryList(ns, db, tb), func() *catalog.LiveQuery { return new(catalog.LiveQuery) })
}

func GetLiveQuery(ctx context.Context, h *Handle, ns, db, tb, id string) (*catalog.LiveQuery, error) {
	return uncachedSingular(ctx, h, keys.LiveQuery(ns, db, tb, id), func() *catalog.LiveQuery { return new(catalog.LiveQuery) }, "lv")
}
