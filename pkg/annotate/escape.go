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

// AnalyzeEscape marks every symbol whose address is taken with `&` as
// escaping (§4.5.6: "whether a local's address is taken or stored into a
// heap location"). On 6502 every escape still resolves to static memory —
// there is no heap — but the distinction lets a non-escaping local keep its
// zero-page priority in pkg/target's scoring.
func AnalyzeEscape(table *symbols.Table, programs []*ast.Program) *diag.Diagnostics {
	diags := diag.NewDiagnostics(diag.DefaultDiagnosticCap)

	v := &visitor{
		table: table,
		onAddressOf: func(scope *symbols.Scope, ident *ast.Identifier) {
			sym, ok := resolveIdentifier(scope, ident)
			if !ok {
				return
			}

			sym.Escapes = true
			diags.Addf(diag.CodeOptimizationHint, diag.Info, ident.Location(), "%q's address is taken; it cannot be zero-page-prioritised as aggressively as a non-escaping local", sym.Name)
		},
	}

	v.walkPrograms(programs)

	return diags
}
