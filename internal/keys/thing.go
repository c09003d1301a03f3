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

// ThingPrefix is the list-range prefix for every row on ns/db/tb.
func ThingPrefix(ns, db, tb string) []byte { return withTrailingSep("thing", ns, db, tb) }

// ThingList is the range covering every row on ns/db/tb.
func ThingList(ns, db, tb string) kv.KeyRange { return listRange(ThingPrefix(ns, db, tb)) }

// Thing encodes the singular row key for id on ns/db/tb.
func Thing(ns, db, tb, id string) []byte { return join("thing", ns, db, tb, id) }
