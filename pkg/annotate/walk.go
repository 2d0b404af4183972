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

// Package annotate implements the independent walkers of §4.5.6: read/write
// usage accounting, unused-symbol detection, purity
// classification, and escape/alias analysis. Each walker is its own small,
// focused pass — mirroring the independent-validator idiom of
// pkg/ir/builder's validation passes — so a bug in one never blocks the
// others from running (§4.5.6: "each analysis is independent; failures are
// isolated").
package annotate

import (
	"strings"

	"github.com/blendsdk/blend65/pkg/ast"
	"github.com/blendsdk/blend65/pkg/symbols"
)

// blockScope returns the scope a block/loop/function-body node introduces,
// falling back to the enclosing scope if none was recorded — the same
// boundary-crossing lookup pkg/checker's statement walker uses.
func blockScope(table *symbols.Table, enclosing *symbols.Scope, node ast.Node) *symbols.Scope {
	if s, ok := table.NodeScopes[node]; ok {
		return s
	}

	return enclosing
}

// resolveIdentifier looks up the symbol an identifier reference names,
// climbing the scope chain the way pkg/checker's expression walker does.
func resolveIdentifier(scope *symbols.Scope, ident *ast.Identifier) (*symbols.Symbol, bool) {
	if scope == nil || ident == nil {
		return nil, false
	}

	return scope.Lookup(ident.Name())
}

// walkDeclarations calls visit for every top-level declaration in every
// program's module, unwrapping an Export marker so callers always see the
// underlying declaration node and receive that module's root scope.
func walkDeclarations(table *symbols.Table, programs []*ast.Program, visit func(scope *symbols.Scope, decl ast.Node)) {
	for _, prog := range programs {
		if prog.Module == nil {
			continue
		}

		scope := table.Modules[strings.Join(prog.Module.Path, ".")]

		for _, decl := range prog.Module.Declarations {
			if exp, ok := decl.(*ast.Export); ok {
				visit(scope, exp.Declaration)
				continue
			}

			visit(scope, decl)
		}
	}
}

// functionScope returns fn's own scope, recorded by pkg/symbols while
// building the table (§4.1).
func functionScope(table *symbols.Table, fallback *symbols.Scope, fn *ast.FunctionDecl) *symbols.Scope {
	if s, ok := table.FunctionScopes[fn]; ok {
		return s
	}

	return fallback
}

// visitor is the shared tree-walking machinery every §4.5.6 analysis
// builds on: a generic Children()-based traversal that threads the current
// scope across scope-introducing nodes, with hooks for the handful of node
// shapes that carry read/write/address-of/call semantics an analysis cares
// about. Each analysis supplies only the hooks it needs; none of them share
// mutable state, so a panic or bug in one hook never corrupts another's
// results (§4.5.6: "each analysis is independent").
type visitor struct {
	table *symbols.Table

	onRead      func(scope *symbols.Scope, ident *ast.Identifier)
	onWrite     func(scope *symbols.Scope, ident *ast.Identifier)
	onAddressOf func(scope *symbols.Scope, ident *ast.Identifier)
	onCall      func(scope *symbols.Scope, call *ast.Call)
	onFunction  func(scope *symbols.Scope, fn *ast.FunctionDecl)
}

// walkPrograms drives the visitor over every declaration in every program.
func (v *visitor) walkPrograms(programs []*ast.Program) {
	walkDeclarations(v.table, programs, func(scope *symbols.Scope, decl ast.Node) {
		v.walk(scope, decl)
	})
}

func (v *visitor) walk(scope *symbols.Scope, node ast.Node) {
	if node == nil || ast.IsErrorNode(node) {
		return
	}

	switch n := node.(type) {
	case *ast.FunctionDecl:
		if v.onFunction != nil {
			v.onFunction(scope, n)
		}

		if n.IsStub() {
			return
		}

		fnScope := functionScope(v.table, scope, n)
		v.walk(blockScope(v.table, fnScope, n.Body), n.Body)

		return
	case *ast.Block:
		inner := blockScope(v.table, scope, n)
		for _, stmt := range n.Statements {
			v.walk(inner, stmt)
		}

		return
	case *ast.If, *ast.While, *ast.DoWhile, *ast.For, *ast.Match:
		inner := blockScope(v.table, scope, n)
		for _, c := range n.Children() {
			v.walk(inner, c)
		}

		return
	case *ast.Assignment:
		v.walkLValue(scope, n.Target)
		v.walk(scope, n.Value)

		return
	case *ast.Unary:
		if n.Op == ast.OpAddressOf {
			if ident, ok := n.Operand.(*ast.Identifier); ok {
				if v.onAddressOf != nil {
					v.onAddressOf(scope, ident)
				}

				return
			}
		}

		v.walk(scope, n.Operand)

		return
	case *ast.Identifier:
		if v.onRead != nil {
			v.onRead(scope, n)
		}

		return
	case *ast.Call:
		if v.onCall != nil {
			v.onCall(scope, n)
		}

		for _, c := range n.Children() {
			v.walk(scope, c)
		}

		return
	}

	for _, c := range node.Children() {
		v.walk(scope, c)
	}
}

// walkLValue visits an assignment target: a bare identifier is a write, an
// index/member target still reads its base expression (you must know which
// array/struct you're writing into).
func (v *visitor) walkLValue(scope *symbols.Scope, target ast.Node) {
	if ident, ok := target.(*ast.Identifier); ok {
		if v.onWrite != nil {
			v.onWrite(scope, ident)
		}

		return
	}

	v.walk(scope, target)
}
