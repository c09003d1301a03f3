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

// TablePrefix is the list-range prefix for every table under ns/db.
func TablePrefix(ns, db string) []byte { return withTrailingSep("tb", ns, db) }

// TableList is the range covering every table under ns/db.
func TableList(ns, db string) kv.KeyRange { return listRange(TablePrefix(ns, db)) }

// Table encodes the singular key for table tb under ns/db.
func Table(ns, db, tb string) []byte { return join("tb", ns, db, tb) }
