// Copyright Consensys Software Inc.
//
// Licensed under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with
// the License. You may obtain a copy of the License at
//
// http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on
// an "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied. See the License for the
// specific language governing permissions and limitations under the License.
//
// SPDX-License-Identifier: Apache-2.0
package diag

// Diagnostics accumulates diagnostics across one pass, or across the whole
// pipeline.  A per-pass diagnostic cap (§5, §9) bounds pathological output;
// once the cap is hit, further diagnostics are dropped and a single internal
// warning records the fact.
type Diagnostics struct {
	items []Diagnostic
	cap   int
	capped bool
}

// DefaultDiagnosticCap is used when no explicit cap is configured.
const DefaultDiagnosticCap = 10_000

// NewDiagnostics constructs an empty accumulator with the given cap.  A cap
// of zero means unbounded.
func NewDiagnostics(cap int) *Diagnostics {
	return &Diagnostics{cap: cap}
}

// Add appends a diagnostic, unless the cap has already been reached.
func (d *Diagnostics) Add(diag Diagnostic) {
	if d.cap > 0 && len(d.items) >= d.cap {
		if !d.capped {
			d.capped = true
			d.items = append(d.items, Warnf(CodeInternalError, Location{},
				"diagnostic cap (%d) exceeded; further diagnostics suppressed", d.cap))
		}

		return
	}

	d.items = append(d.items, diag)
}

// Addf is a convenience wrapper constructing and adding a diagnostic in one call.
func (d *Diagnostics) Addf(code Code, severity Severity, loc Location, msg string, args ...any) {
	d.Add(New(code, severity, loc, msg, args...))
}

// Append merges another accumulator's diagnostics into this one, preserving
// order.  Used when a pipeline stage collects diagnostics from several
// independent sub-analyses (§4.5.6, §7 — one failing analysis must not
// prevent others contributing their own diagnostics).
func (d *Diagnostics) Append(other *Diagnostics) {
	if other == nil {
		return
	}

	for _, item := range other.items {
		d.Add(item)
	}
}

// All returns every accumulated diagnostic, in the order reported.
func (d *Diagnostics) All() []Diagnostic {
	return d.items
}

// HasErrors returns true if any accumulated diagnostic has Error severity.
func (d *Diagnostics) HasErrors() bool {
	for _, item := range d.items {
		if item.Severity == Error {
			return true
		}
	}

	return false
}

// Success reports whether no Error-severity diagnostic has been recorded —
// the boolean every pass result carries (§4.1, §7).
func (d *Diagnostics) Success() bool {
	return !d.HasErrors()
}

// Filter returns the diagnostics matching a given severity.
func (d *Diagnostics) Filter(severity Severity) []Diagnostic {
	var out []Diagnostic

	for _, item := range d.items {
		if item.Severity == severity {
			out = append(out, item)
		}
	}

	return out
}

// Len returns the number of accumulated diagnostics.
func (d *Diagnostics) Len() int {
	return len(d.items)
}
