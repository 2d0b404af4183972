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
package annotate

import (
	"github.com/blendsdk/blend65/pkg/ast"
	"github.com/blendsdk/blend65/pkg/diag"
	"github.com/blendsdk/blend65/pkg/symbols"
)

// Result bundles the diagnostics each independent §4.5.6 walker produced.
// pkg/pipeline reports all five even when one of them turned up nothing —
// the whole-program run is still "successful" regardless of what any single
// walker found, since none of these analyses are mandatory (§7).
type Result struct {
	Usage   *diag.Diagnostics
	Unused  *diag.Diagnostics
	Purity  *diag.Diagnostics
	Escape  *diag.Diagnostics
	Alias   *diag.Diagnostics
}

// All merges every walker's diagnostics into one slice, in the fixed order
// they ran, for a caller that just wants the full list rather than each
// pass's diagnostics individually.
func (r *Result) All() []diag.Diagnostic {
	var out []diag.Diagnostic
	out = append(out, r.Usage.All()...)
	out = append(out, r.Unused.All()...)
	out = append(out, r.Purity.All()...)
	out = append(out, r.Escape.All()...)
	out = append(out, r.Alias.All()...)

	return out
}

// Analyze runs every independent §4.5.6 walker over every program's
// declarations. Usage runs first since UnusedSymbols reads the counts it
// leaves on each symbol; the rest have no ordering dependency between them.
func Analyze(table *symbols.Table, programs []*ast.Program) *Result {
	r := &Result{}

	r.Usage = AnalyzeUsage(table, programs)
	r.Unused = UnusedSymbols(table)
	r.Purity = AnalyzePurity(table, programs)
	r.Escape = AnalyzeEscape(table, programs)
	r.Alias = AnalyzeAlias(table, programs)

	return r
}
