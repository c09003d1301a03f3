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

package keys

import "github.com/riftdb/riftkv/internal/kv"

// ScopePrefix is the list-range prefix for every scope under ns/db.
func ScopePrefix(ns, db string) []byte { return withTrailingSep("sc", ns, db) }

// ScopeList is the range covering every scope under ns/db.
func ScopeList(ns, db string) kv.KeyRange { return listRange(ScopePrefix(ns, db)) }

// Scope encodes the singular key for scope sc under ns/db.
func Scope(ns, db, sc string) []byte { return join("sc", ns, db, sc) }

// ScopeTokenPrefix is the list-range prefix for sc's tokens.
func ScopeTokenPrefix(ns, db, sc string) []byte { return withTrailingSep("st", ns, db, sc) }

// ScopeTokenList is the range covering every token under ns/db/sc.
func ScopeTokenList(ns, db, sc string) kv.KeyRange { return listRange(ScopeTokenPrefix(ns, db, sc)) }

// ScopeToken encodes the singular key for token name under ns/db/sc.
func ScopeToken(ns, db, sc, name string) []byte { return join("st", ns, db, sc, name) }
