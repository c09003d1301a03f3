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

import "github.com/pkg/errors"

// ErrChannelSend is returned by the exporter, wrapping the context's
// error, when a send on the caller-supplied channel has not completed
// by the time the export's context is done (e.g. the receiver stopped
// reading mid-export and the caller cancelled).
var ErrChannelSend = errors.New("export channel send failed")

// NotFoundError reports that a singular catalog accessor found no
// record at its key. Kind names the catalog kind using the same
// two/three-letter codes as the key scheme ("ns", "nl", "nt", "db",
// "dl", "dt", "sc", "st", "tb", and for table children "ev", "fd",
// "ix", "ft", "lv"), so ensure-or-create and
// check_ns_db_tb can distinguish which ancestor was missing.
type NotFoundError struct{ Kind string }

func (e *NotFoundError) Error() string { return e.Kind + " not found" }

// IsNotFound reports whether err is a NotFoundError, optionally of a
// specific kind (pass "" to match any kind).
func IsNotFound(err error, kind string) bool {
	var nf *NotFoundError
	if !errors.As(err, &nf) {
		return false
	}
	return kind == "" || nf.Kind == kind
}

func notFound(kind string) error { return &NotFoundError{Kind: kind} }
