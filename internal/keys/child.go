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

// Child key encoders for the catalog kinds that live one level below a
// table: events, fields, indexes, views and live queries.
package keys

import "github.com/riftdb/riftkv/internal/kv"

// EventPrefix is the list-range prefix for every event on ns/db/tb.
func EventPrefix(ns, db, tb string) []byte { return withTrailingSep("ev", ns, db, tb) }

// EventList is the range covering every event on ns/db/tb.
func EventList(ns, db, tb string) kv.KeyRange { return listRange(EventPrefix(ns, db, tb)) }

// Event encodes the singular key for event name on ns/db/tb.
func Event(ns, db, tb, name string) []byte { return join("ev", ns, db, tb, name) }

// FieldPrefix is the list-range prefix for every field on ns/db/tb.
func FieldPrefix(ns, db, tb string) []byte { return withTrailingSep("fd", ns, db, tb) }

// FieldList is the range covering every field on ns/db/tb.
func FieldList(ns, db, tb string) kv.KeyRange { return listRange(FieldPrefix(ns, db, tb)) }

// Field encodes the singular key for field name on ns/db/tb.
func Field(ns, db, tb, name string) []byte { return join("fd", ns, db, tb, name) }

// IndexPrefix is the list-range prefix for every index on ns/db/tb.
func IndexPrefix(ns, db, tb string) []byte { return withTrailingSep("ix", ns, db, tb) }

// IndexList is the range covering every index on ns/db/tb.
func IndexList(ns, db, tb string) kv.KeyRange { return listRange(IndexPrefix(ns, db, tb)) }

// Index encodes the singular key for index name on ns/db/tb.
func Index(ns, db, tb, name string) []byte { return join("ix", ns, db, tb, name) }

// ViewPrefix is the list-range prefix for every view on ns/db/tb.
func ViewPrefix(ns, db, tb string) []byte { return withTrailingSep("ft", ns, db, tb) }

// ViewList is the range covering every view on ns/db/tb.
func ViewList(ns, db, tb string) kv.KeyRange { return listRange(ViewPrefix(ns, db, tb)) }

// View encodes the singular key for view name on ns/db/tb.
func View(ns, db, tb, name string) []byte { return join("ft", ns, db, tb, name) }

// LiveQueryPrefix is the list-range prefix for every live query on ns/db/tb.
func LiveQueryPrefix(ns, db, tb string) []byte { return withTrailingSep("lv", ns, db, tb) }

// LiveQueryList is the range covering every live query on ns/db/tb.
func LiveQueryList(ns, db, tb string) kv.KeyRange { return listRange(LiveQueryPrefix(ns, db, tb)) }

// LiveQuery encodes the singular key for live query id on ns/db/tb.
func LiveQuery(ns, db, tb, id string) []byte { return join("lv", ns, db, tb, id) }
