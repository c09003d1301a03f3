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
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/riftdb/riftkv/internal/kv"
	"github.com/riftdb/riftkv/internal/metrics"
)

// window is the default internal batch size: the most entries the
// paged engine requests in a single backend scan call, regardless of
// the caller's limit, unless a Handle overrides it with WithWindow.
const window = 1000

// scanLatency observes a single backend Scan call's duration, labeled
// by the owning Handle's backend so a cluster backend's round trips
// are distinguishable from the embedded stores'.
var scanLatency = promauto.NewHistogramVec(prometheus.HistogramOpts{
	Name:    "txn_scan_duration_seconds",
	Help:    "latency of a single backend Scan call issued by the paged range engine",
	Buckets: metrics.LatencyBuckets,
}, metrics.BackendLabels)

// Getr returns up to limit entries in rng, paging the underlying scan
// in windows of at most the Handle's window size (1000 unless set by
// WithWindow) and advancing the cursor by the
// exclusive-successor rule (appending a single zero byte to the last
// key seen) between windows.
func (h *Handle) Getr(ctx context.Context, rng kv.KeyRange, limit int) ([]kv.Pair, error) {
	var out []kv.Pair
	err := h.pageRange(ctx, rng, limit, func(batch []kv.Pair) error {
		out = append(out, batch...)
		return nil
	})
	return out, err
}

// GetrFunc pages rng the same way Getr does, but invokes visit once
// per window instead of accumulating a result slice. A caller that
// needs to drain each window to its own destination (a channel, a
// writer) before the next window is fetched — rather than holding the
// whole range in memory — should call this instead of Getr.
func (h *Handle) GetrFunc(ctx context.Context, rng kv.KeyRange, limit int, visit func([]kv.Pair) error) error {
	return h.pageRange(ctx, rng, limit, visit)
}

// Getp is Getr over the range [prefix, prefix⊕0xff).
func (h *Handle) Getp(ctx context.Context, prefix []byte, limit int) ([]kv.Pair, error) {
	return h.Getr(ctx, kv.KeyRange{Begin: prefix, End: kv.PrefixEnd(prefix)}, limit)
}

// Delr deletes up to limit keys in rng, using the same paging as Getr.
// It does not accumulate a result list.
func (h *Handle) Delr(ctx context.Context, rng kv.KeyRange, limit int) error {
	return h.pageRange(ctx, rng, limit, func(batch []kv.Pair) error {
		for _, pair := range batch {
			if err := h.tx.Del(ctx, pair.Key); err != nil {
				return err
			}
		}
		return nil
	})
}

// Delp is Delr over the range [prefix, prefix⊕0xff).
func (h *Handle) Delp(ctx context.Context, prefix []byte, limit int) error {
	return h.Delr(ctx, kv.KeyRange{Begin: prefix, End: kv.PrefixEnd(prefix)}, limit)
}

// pageRange implements the §4.2 algorithm: while remaining > 0, scan a
// window starting at the original begin (first iteration) or the
// exclusive successor of the last key seen (subsequent iterations),
// stopping as soon as a window comes back empty.
func (h *Handle) pageRange(ctx context.Context, rng kv.KeyRange, limit int, visit func([]kv.Pair) error) error {
	if limit <= 0 {
		return nil
	}
	remaining := limit
	begin := rng.Begin
	haveCursor := false
	var cursor []byte

	for remaining > 0 {
		beg := begin
		if haveCursor {
			beg = kv.ExclusiveSuccessor(cursor)
		}
		batchLimit := remaining
		if batchLimit > h.window {
			batchLimit = h.window
		}
		start := time.Now()
		batch, err := h.tx.Scan(ctx, kv.KeyRange{Begin: beg, End: rng.End}, batchLimit)
		scanLatency.WithLabelValues(h.backend).Observe(time.Since(start).Seconds())
		if err != nil {
			return err
		}
		if len(batch) == 0 {
			return nil
		}
		if err := visit(batch); err != nil {
			return err
		}
		remaining -= len(batch)
		cursor = batch[len(batch)-1].Key
		haveCursor = true
	}
	return nil
}
