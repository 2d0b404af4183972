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

// AnalyzeUsage walks every program recording, per symbol, how many times it
// is read and written and whether it is referenced anywhere (§4.5.6:
// "read/write counts per symbol, whether a symbol is referenced anywhere").
// It never reports diagnostics itself — UnusedSymbols does, reading the
// counts this pass leaves behind — but returns a Diagnostics so it fits the
// same independent-walker shape as its siblings.
func AnalyzeUsage(table *symbols.Table, programs []*ast.Program) *diag.Diagnostics {
	diags := diag.NewDiagnostics(diag.DefaultDiagnosticCap)

	v := &visitor{
		table: table,
		onRead: func(scope *symbols.Scope, ident *ast.Identifier) {
			if sym, ok := resolveIdentifier(scope, ident); ok {
				sym.ReadCount++
				sym.Referenced = true
			}
		},
		onWrite: func(scope *symbols.Scope, ident *ast.Identifier) {
			if sym, ok := resolveIdentifier(scope, ident); ok {
				sym.WriteCount++
				sym.Referenced = true
			}
		},
	}

	v.walkPrograms(programs)

	return diags
}

// UnusedSymbols reports a warning for every variable, constant, parameter,
// import, or function that AnalyzeUsage never saw referenced. Exported
// symbols are never reported, since another module may use them (§4.5.6,
// §8 "Warnings: unused symbol or import").
func UnusedSymbols(table *symbols.Table) *diag.Diagnostics {
	diags := diag.NewDiagnostics(diag.DefaultDiagnosticCap)

	for _, scope := range table.Modules {
		reportUnusedInScope(scope, diags)
	}

	return diags
}

func reportUnusedInScope(scope *symbols.Scope, diags *diag.Diagnostics) {
	for _, sym := range scope.Symbols() {
		if sym.Referenced || sym.Exported {
			continue
		}

		switch sym.SymbolKind {
		case symbols.KindVariable, symbols.KindConstant, symbols.KindParameter:
			diags.Addf(diag.CodeUnusedSymbol, diag.Warning, sym.Location, "%q is declared but never used", sym.Name)
		case symbols.KindImport:
			diags.Addf(diag.CodeUnusedImport, diag.Warning, sym.Location, "import %q is never used", sym.Name)
		case symbols.KindFunction:
			diags.Addf(diag.CodeUnusedSymbol, diag.Warning, sym.Location, "function %q is declared but never called", sym.Name)
		}
	}

	for _, child := range scope.Children() {
		reportUnusedInScope(child, diags)
	}
}
