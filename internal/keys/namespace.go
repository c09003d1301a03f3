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

// NamespacePrefix is the list-range prefix for every namespace key.
func NamespacePrefix() []byte { return withTrailingSep("ns") }

// NamespaceList is the [begin, end) range covering every namespace.
func NamespaceList() kv.KeyRange { return listRange(NamespacePrefix()) }

// Namespace encodes the singular key for namespace ns.
func Namespace(ns string) []byte { return join("ns", ns) }

// NamespaceLoginPrefix is the list-range prefix for ns's logins.
func NamespaceLoginPrefix(ns string) []byte { return withTrailingSep("nl", ns) }

// NamespaceLoginList is the range covering every login under ns.
func NamespaceLoginList(ns string) kv.KeyRange { return listRange(NamespaceLoginPrefix(ns)) }

// NamespaceLogin encodes the singular key for login name under ns.
func NamespaceLogin(ns, name string) []byte { return join("nl", ns, name) }

// NamespaceTokenPrefix is the list-range prefix for ns's tokens.
func NamespaceTokenPrefix(ns string) []byte { return withTrailingSep("nt", ns) }

// NamespaceTokenList is the range covering every token under ns.
func NamespaceTokenList(ns string) kv.KeyRange { return listRange(NamespaceTokenPrefix(ns)) }

// NamespaceToken encodes the singular key for token name under ns.
func NamespaceToken(ns, name string) []byte { return join("nt", ns, name) }
