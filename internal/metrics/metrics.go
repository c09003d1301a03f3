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

// Package metrics defines the shared Prometheus bucket and label sets
// that internal/txn and internal/export register their own counters
// and histograms against, so every component's latency histograms are
// directly comparable.
package metrics

// LatencyBuckets is the bucket set used by every duration histogram
// in this module: sub-millisecond through multi-second, covering both
// the Memory backend's in-process latency and a cluster backend's
// network round trips.
var LatencyBuckets = []float64{
	.0005, .001, .0025, .005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5, 10,
}

// BackendLabel names the label every metric in this module carries to
// distinguish which kv.Store backend produced it.
const BackendLabel = "backend"

// BackendLabels is the single-element label set most counters use.
var BackendLabels = []string{BackendLabel}
