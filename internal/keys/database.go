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

// DatabasePrefix is the list-range prefix for every database under ns.
func DatabasePrefix(ns string) []byte { return withTrailingSep("db", ns) }

// DatabaseList is the range covering every database under ns.
func DatabaseList(ns string) kv.KeyRange { return listRange(DatabasePrefix(ns)) }

// Database encodes the singular key for database db under ns.
func Database(ns, db string) []byte { return join("db", ns, db) }

// DatabaseLoginPrefix is the list-range prefix for db's logins.
func DatabaseLoginPrefix(ns, db string) []byte { return withTrailingSep("dl", ns, db) }

// DatabaseLoginList is the range covering every login under ns/db.
func DatabaseLoginList(ns, db string) kv.KeyRange { return listRange(DatabaseLoginPrefix(ns, db)) }

// DatabaseLogin encodes the singular key for login name under ns/db.
func DatabaseLogin(ns, db, name string) []byte { return join("dl", ns, db, name) }

// DatabaseTokenPrefix is the list-range prefix for db's tokens.
func DatabaseTokenPrefix(ns, db string) []byte { return withTrailingSep("dt", ns, db) }

// DatabaseTokenList is the range covering every token under ns/db.
func DatabaseTokenList(ns, db string) kv.KeyRange { return listRange(DatabaseTokenPrefix(ns, db)) }

// DatabaseToken encodes the singular key for token name under ns/db.
func DatabaseToken(ns, db, name string) []byte { return join("dt", ns, db, name) }
