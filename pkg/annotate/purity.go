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

// AnalyzePurity classifies every function's side effects (§4.5.6: "whether
// a function has side effects and what regions it may write"). A stub, or
// a function that calls one whose own purity could not be determined, is
// PurityUnknown — the analysis never guesses across an unresolvable call.
func AnalyzePurity(table *symbols.Table, programs []*ast.Program) *diag.Diagnostics {
	diags := diag.NewDiagnostics(diag.DefaultDiagnosticCap)

	walkDeclarations(table, programs, func(scope *symbols.Scope, decl ast.Node) {
		fn, ok := decl.(*ast.FunctionDecl)
		if !ok {
			return
		}

		sym, _ := scope.LocalLookup(fn.Name)
		if sym == nil {
			return
		}

		sym.Purity = classifyPurity(table, scope, fn)

		if sym.Purity == symbols.PurityWritesGlobal {
			diags.Addf(diag.CodePurityLevel, diag.Info, fn.Location(), "%q writes module-scope or memory-mapped state", fn.Name)
		}
	})

	return diags
}

func classifyPurity(table *symbols.Table, scope *symbols.Scope, fn *ast.FunctionDecl) symbols.Purity {
	if fn.IsStub() {
		return symbols.PurityUnknown
	}

	fnScope := functionScope(table, scope, fn)
	level := symbols.PurityPure

	raise := func(p symbols.Purity) {
		if p > level {
			level = p
		}
	}

	v := &visitor{
		table: table,
		onRead: func(s *symbols.Scope, ident *ast.Identifier) {
			if sym, ok := resolveIdentifier(s, ident); ok && isOutsideFunction(sym, s) {
				raise(symbols.PurityReadsGlobal)
			}
		},
		onWrite: func(s *symbols.Scope, ident *ast.Identifier) {
			if sym, ok := resolveIdentifier(s, ident); ok && isOutsideFunction(sym, s) {
				raise(symbols.PurityWritesGlobal)
			}
		},
		onAddressOf: func(s *symbols.Scope, ident *ast.Identifier) {
			if sym, ok := resolveIdentifier(s, ident); ok && isOutsideFunction(sym, s) {
				raise(symbols.PurityWritesGlobal)
			}
		},
		onCall: func(s *symbols.Scope, call *ast.Call) {
			callee, ok := call.Callee.(*ast.Identifier)
			if !ok {
				raise(symbols.PurityUnknown)
				return
			}

			sym, ok := resolveIdentifier(s, callee)
			if !ok || sym.SymbolKind != symbols.KindFunction {
				raise(symbols.PurityUnknown)
				return
			}

			raise(sym.Purity)
		},
	}

	inner := blockScope(table, fnScope, fn.Body)
	for _, stmt := range fn.Body.Statements {
		v.walk(inner, stmt)
	}

	return level
}

// isOutsideFunction reports whether sym is declared outside the enclosing
// function's own scope nest — i.e. it is module-scope state (a global or
// @map declaration) rather than a local, parameter, or nested-block
// variable of the function being analysed.
func isOutsideFunction(sym *symbols.Symbol, from *symbols.Scope) bool {
	fnScope := from.EnclosingFunction()
	if fnScope == nil {
		return true
	}

	for s := from; s != nil; s = s.Parent() {
		for _, candidate := range s.Symbols() {
			if candidate == sym {
				return false
			}
		}

		if s == fnScope {
			break
		}
	}

	return true
}
