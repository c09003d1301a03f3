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

// Package export streams a logical SQL dump of a namespace+database
// pair through a caller-supplied bounded channel, per §4.5.
package export

import (
	"context"
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/riftdb/riftkv/internal/catalog"
	"github.com/riftdb/riftkv/internal/keys"
	"github.com/riftdb/riftkv/internal/kv"
	"github.com/riftdb/riftkv/internal/metrics"
	"github.com/riftdb/riftkv/internal/txn"
)

var rowsStreamed = promauto.NewCounterVec(prometheus.CounterOpts{
	Name: "export_rows_streamed_total",
	Help: "the number of row UPDATE statements streamed by the exporter",
}, metrics.BackendLabels)

var exportDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
	Name:    "export_duration_seconds",
	Help:    "wall-clock time to stream a complete namespace+database export",
	Buckets: metrics.LatencyBuckets,
}, metrics.BackendLabels)

// Run streams a complete SQL script for ns/db onto out, respecting the
// channel's own backpressure. It never buffers more than one paged
// scan window of rows at a time. Any backend error or send failure
// aborts the export; a send that has not completed when ctx is done
// fails with txn.ErrChannelSend wrapping ctx's error.
func Run(ctx context.Context, h *txn.Handle, ns, db string, out chan<- []byte) error {
	start := time.Now()
	defer func() { exportDuration.WithLabelValues(h.Backend()).Observe(time.Since(start).Seconds()) }()

	w := &writer{ctx: ctx, out: out}

	w.line("OPTION IMPORT;")

	logins, err := txn.AllDatabaseLogins(ctx, h, ns, db)
	if err != nil {
		return err
	}
	if len(logins) > 0 {
		w.line("-- LOGINS")
		for _, l := range logins {
			w.line(l.Render(fmt.Sprintf("DATABASE %s", db)))
		}
	}

	tokens, err := txn.AllDatabaseTokens(ctx, h, ns, db)
	if err != nil {
		return err
	}
	if len(tokens) > 0 {
		w.line("-- TOKENS")
		for _, t := range tokens {
			w.line(t.Render(fmt.Sprintf("DATABASE %s", db)))
		}
	}

	scopes, err := txn.AllScopes(ctx, h, ns, db)
	if err != nil {
		return err
	}
	if len(scopes) > 0 {
		w.line("-- SCOPES")
		for _, sc := range scopes {
			w.line(sc.Render())
		}
	}
	if w.err != nil {
		return w.err
	}

	tables, err := txn.AllTables(ctx, h, ns, db)
	if err != nil {
		return err
	}
	if len(tables) == 0 {
		return w.err
	}

	w.line("-- TABLES")
	for _, tb := range tables {
		if err := writeTableDefs(ctx, h, ns, db, tb, w); err != nil {
			return err
		}
	}
	if w.err != nil {
		return w.err
	}

	w.line("BEGIN TRANSACTION;")
	for _, tb := range tables {
		if err := writeTableRows(ctx, h, ns, db, tb, w); err != nil {
			return err
		}
	}
	w.line("COMMIT TRANSACTION;")

	return w.err
}

// writeTableDefs emits a table's DEFINE TABLE, then its fields, then
// its indexes, then its events, in that fixed order — matching the
// source export routine's statement ordering (§9).
func writeTableDefs(ctx context.Context, h *txn.Handle, ns, db string, tb *catalog.Table, w *writer) error {
	w.line(tb.Render())

	fields, err := txn.AllFields(ctx, h, ns, db, tb.Name)
	if err != nil {
		return err
	}
	for _, f := range fields {
		w.line(f.Render(tb.Name))
	}

	indexes, err := txn.AllIndexes(ctx, h, ns, db, tb.Name)
	if err != nil {
		return err
	}
	for _, ix := range indexes {
		w.line(ix.Render(tb.Name))
	}

	events, err := txn.AllEvents(ctx, h, ns, db, tb.Name)
	if err != nil {
		return err
	}
	for _, ev := range events {
		w.line(ev.Render(tb.Name))
	}

	return w.err
}

// writeTableRows pages through a table's rows in windows of 1000
// (reusing the same paged engine as every other range scan), draining
// each window to w before the next is fetched, per §4.5: the exporter
// never buffers more than one paged scan window of rows at a time.
func writeTableRows(ctx context.Context, h *txn.Handle, ns, db string, tb *catalog.Table, w *writer) error {
	w.line(fmt.Sprintf("-- TABLE %s", tb.Name))

	rng := keys.ThingList(ns, db, tb.Name)
	return h.GetrFunc(ctx, rng, txn.Unbounded, func(batch []kv.Pair) error {
		for _, pair := range batch {
			id := rowID(ns, db, tb.Name, pair.Key)
			var row catalog.RowValue
			if err := row.Decode(pair.Val); err != nil {
				return err
			}
			thing := catalog.Thing{Table: tb.Name, ID: id}
			w.line(fmt.Sprintf("UPDATE %s CONTENT %s;", thing.String(), row.Render()))
			rowsStreamed.WithLabelValues(h.Backend()).Inc()
		}
		return w.err
	})
}

// rowID strips the thing:: prefix a row key carries, leaving the bare
// record id.
func rowID(ns, db, tb string, key []byte) string {
	prefix := keys.ThingPrefix(ns, db, tb)
	return string(key[len(prefix):])
}

// writer accumulates the first send error so every caller in Run can
// simply call w.line and check w.err once at the end of a section,
// matching the exporter's "any send failure aborts the export" rule.
type writer struct {
	ctx context.Context
	out chan<- []byte
	err error
}

func (w *writer) line(s string) {
	if w.err != nil {
		return
	}
	select {
	case <-w.ctx.Done():
		w.err = fmt.Errorf("%w: %w", txn.ErrChannelSend, w.ctx.Err())
	case w.out <- []byte(s + "\n"):
	}
}
