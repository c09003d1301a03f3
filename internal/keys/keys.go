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

// Package keys implements the catalog and row key encoders as
// pure functions the façade "consumes." Every function here is
// deterministic and allocation-only: no I/O, no shared state.
package keys

import (
	"bytes"

	"github.com/riftdb/riftkv/internal/kv"
)

const sep = '/'

func join(parts ...string) []byte {
	n := 0
	for _, p := range parts {
		n += len(p) + 1
	}
	out := make([]byte, 0, n)
	for _, p := range parts {
		out = append(out, p...)
		out = append(out, sep)
	}
	return out[:len(out)-1]
}

// withTrailingSep returns a prefix ending in the separator, so that a
// list range covers every key nested one level deeper and nothing at
// the parent's own level.
func withTrailingSep(parts ...string) []byte {
	b := join(parts...)
	return append(b, sep)
}

// listRange turns a prefix into the [prefix, prefix⊕0xff) range used by
// every list accessor.
func listRange(prefix []byte) kv.KeyRange {
	return kv.KeyRange{Begin: prefix, End: kv.PrefixEnd(prefix)}
}

// HasPrefix reports whether key falls under prefix; exported for tests
// that assert on getp's contract.
func HasPrefix(key, prefix []byte) bool {
	return bytes.HasPrefix(key, prefix)
}
