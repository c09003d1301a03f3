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

// Package catalog implements the value types the transaction façade
// treats as opaque decodable records: one Go struct per catalog entity
// kind, each encodable to and from bytes and renderable to the
// canonical DEFINE statement the exporter streams.
//
// Encoding uses msgpack (github.com/vmihailenco/msgpack/v5) rather
// than encoding/json: catalog records are internal wire format, never
// hand-edited, and msgpack's compactness matters once a record is
// duplicated across a singular key and every list-cache entry that
// contains it.
package catalog

import (
	"fmt"
	"sort"
	"strings"

	"github.com/pkg/errors"
	"github.com/vmihailenco/msgpack/v5"
)

// Permissions is a table's access-control expression. The zero value
// is PermissionsNone, the default for a table created by the
// ensure-or-create path.
type Permissions struct {
	Expr string `msgpack:"expr,omitempty"`
}

// PermissionsNone is the default, most restrictive permissions value.
var PermissionsNone = Permissions{}

func (p Permissions) render() string {
	if p.Expr == "" {
		return "NONE"
	}
	return p.Expr
}

// Namespace is the root catalog container.
type Namespace struct {
	Name string `msgpack:"name"`
}

func (n *Namespace) Decode(val []byte) error { return decode(val, n) }
func (n *Namespace) Encode() []byte          { return encode(n) }
func (n *Namespace) Render() string {
	return fmt.Sprintf("DEFINE NAMESPACE %s;", n.Name)
}

// DefaultNamespace constructs the entity ensure-or-create writes when
// no namespace exists yet: name only, every other field at its zero
// value.
func DefaultNamespace(name string) *Namespace { return &Namespace{Name: name} }

// Login is an authentication record attached to a namespace or
// database (the Namespace-Login / Database-Login kinds share this
// shape; only the key prefix under which they are stored differs).
type Login struct {
	Name string `msgpack:"name"`
	Hash string `msgpack:"hash,omitempty"`
}

func (l *Login) Decode(val []byte) error { return decode(val, l) }
func (l *Login) Encode() []byte          { return encode(l) }
func (l *Login) Render(kw string) string {
	return fmt.Sprintf("DEFINE LOGIN %s ON %s PASSHASH %q;", l.Name, kw, l.Hash)
}

// Token is a signed-token authentication record attached to a
// namespace, database or scope.
type Token struct {
	Name string `msgpack:"name"`
	Type string `msgpack:"type,omitempty"`
	Code string `msgpack:"code,omitempty"`
}

func (t *Token) Decode(val []byte) error { return decode(val, t) }
func (t *Token) Encode() []byte          { return encode(t) }
func (t *Token) Render(kw string) string {
	return fmt.Sprintf("DEFINE TOKEN %s ON %s TYPE %s VALUE %q;", t.Name, kw, t.Type, t.Code)
}

// Database is a namespace's child catalog container.
type Database struct {
	Name string `msgpack:"name"`
}

func (d *Database) Decode(val []byte) error { return decode(val, d) }
func (d *Database) Encode() []byte          { return encode(d) }
func (d *Database) Render() string {
	return fmt.Sprintf("DEFINE DATABASE %s;", d.Name)
}

// DefaultDatabase constructs the entity ensure-or-create writes when
// no database exists yet.
func DefaultDatabase(name string) *Database { return &Database{Name: name} }

// Scope is a database's child scoped-auth container.
type Scope struct {
	Name       string `msgpack:"name"`
	SignupExpr string `msgpack:"signup,omitempty"`
	SigninExpr string `msgpack:"signin,omitempty"`
}

func (s *Scope) Decode(val []byte) error { return decode(val, s) }
func (s *Scope) Encode() []byte          { return encode(s) }
func (s *Scope) Render() string {
	return fmt.Sprintf("DEFINE SCOPE %s;", s.Name)
}

// Table is a database's child catalog container holding rows, fields,
// indexes, events, views and live queries.
type Table struct {
	Name        string      `msgpack:"name"`
	Permissions Permissions `msgpack:"permissions,omitempty"`
}

func (t *Table) Decode(val []byte) error { return decode(val, t) }
func (t *Table) Encode() []byte          { return encode(t) }
func (t *Table) Render() string {
	return fmt.Sprintf("DEFINE TABLE %s PERMISSIONS %s;", t.Name, t.Permissions.render())
}

// DefaultTable constructs the entity ensure-or-create writes when no
// table exists yet: the name plus Permissions = none, matching the
// non-strict table-creation rule.
func DefaultTable(name string) *Table {
	return &Table{Name: name, Permissions: PermissionsNone}
}

// Event is a table-scoped trigger definition.
type Event struct {
	Name string `msgpack:"name"`
	When string `msgpack:"when,omitempty"`
	Then string `msgpack:"then,omitempty"`
}

func (e *Event) Decode(val []byte) error { return decode(val, e) }
func (e *Event) Encode() []byte          { return encode(e) }
func (e *Event) Render(table string) string {
	return fmt.Sprintf("DEFINE EVENT %s ON %s WHEN %s THEN %s;", e.Name, table, nonEmpty(e.When), nonEmpty(e.Then))
}

// Field is a table-scoped column definition.
type Field struct {
	Name string `msgpack:"name"`
	Type string `msgpack:"type,omitempty"`
}

func (f *Field) Decode(val []byte) error { return decode(val, f) }
func (f *Field) Encode() []byte          { return encode(f) }
func (f *Field) Render(table string) string {
	stmt := fmt.Sprintf("DEFINE FIELD %s ON %s", f.Name, table)
	if f.Type != "" {
		stmt += " TYPE " + f.Type
	}
	return stmt + ";"
}

// Index is a table-scoped index definition.
type Index struct {
	Name    string   `msgpack:"name"`
	Columns []string `msgpack:"columns,omitempty"`
	Unique  bool     `msgpack:"unique,omitempty"`
}

func (i *Index) Decode(val []byte) error { return decode(val, i) }
func (i *Index) Encode() []byte          { return encode(i) }
func (i *Index) Render(table string) string {
	stmt := fmt.Sprintf("DEFINE INDEX %s ON %s COLUMNS %s", i.Name, table, strings.Join(i.Columns, ", "))
	if i.Unique {
		stmt += " UNIQUE"
	}
	return stmt + ";"
}

// View is a table-scoped computed-table (materialized query) definition.
type View struct {
	Name  string `msgpack:"name"`
	Query string `msgpack:"query,omitempty"`
}

func (v *View) Decode(val []byte) error { return decode(val, v) }
func (v *View) Encode() []byte          { return encode(v) }
func (v *View) Render(table string) string {
	return fmt.Sprintf("DEFINE TABLE %s AS %s;", table, nonEmpty(v.Query))
}

// LiveQuery is a table-scoped continuous-subscription record.
type LiveQuery struct {
	ID    string `msgpack:"id"`
	Query string `msgpack:"query,omitempty"`
}

func (l *LiveQuery) Decode(val []byte) error { return decode(val, l) }
func (l *LiveQuery) Encode() []byte          { return encode(l) }

// Thing is a record identity: table plus id, rendered as table:id,
// the form every row reference uses in export and error text.
type Thing struct {
	Table string
	ID    string
}

func (t Thing) String() string { return t.Table + ":" + t.ID }

// RowValue is a decoded user row, rendered as a canonical SQL literal
// object for the exporter's UPDATE ... CONTENT statements.
type RowValue struct {
	Fields map[string]any `msgpack:"fields"`
}

func (r *RowValue) Decode(val []byte) error { return decode(val, r) }
func (r *RowValue) Encode() []byte          { return encode(r) }

// Render produces the canonical `{ field: value, ... }` object literal
// used inside an UPDATE ... CONTENT statement. Keys are sorted so the
// rendering is deterministic across runs.
func (r *RowValue) Render() string {
	keys := make([]string, 0, len(r.Fields))
	for k := range r.Fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, fmt.Sprintf("%s: %s", k, renderLiteral(r.Fields[k])))
	}
	return "{ " + strings.Join(parts, ", ") + " }"
}

func renderLiteral(v any) string {
	switch t := v.(type) {
	case nil:
		return "NULL"
	case string:
		return fmt.Sprintf("%q", t)
	case bool:
		if t {
			return "true"
		}
		return "false"
	default:
		return fmt.Sprintf("%v", t)
	}
}

func nonEmpty(s string) string {
	if s == "" {
		return "NULL"
	}
	return s
}

func encode(v any) []byte {
	b, err := msgpack.Marshal(v)
	if err != nil {
		// Marshal only fails on unsupported types, which is a
		// programmer error for these fixed-shape structs.
		panic(errors.Wrap(err, "encoding catalog record"))
	}
	return b
}

func decode(val []byte, v any) error {
	if err := msgpack.Unmarshal(val, v); err != nil {
		return errors.Wrap(err, "decoding catalog record")
	}
	return nil
}
