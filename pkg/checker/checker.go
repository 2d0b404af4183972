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

// Package checker implements C2/C3: the type resolver (pass 2, §4.2) and the
// type checker (pass 3, §4.3) as one cooperating unit, since both walk the
// same tree and the checker subsumes the resolver's annotation work.  The
// layered-visitor organisation (literal -> expression -> declaration ->
// statement -> assignment) is grounded on go-corset's
// pkg/corset/compiler/typing.go and resolver.go, reimplemented here as
// tagged-variant type switches per the design note in §9 rather than a
// visitor-interface hierarchy.
package checker

import (
	log "github.com/sirupsen/logrus"

	"github.com/blendsdk/blend65/pkg/ast"
	"github.com/blendsdk/blend65/pkg/diag"
	"github.com/blendsdk/blend65/pkg/symbols"
	"github.com/blendsdk/blend65/pkg/types"
)

// FieldLayout is the resolved byte offset (and, for an explicit range field,
// the inclusive end byte) of one struct-map field, computed per §4.3's
// sequential/explicit layout rules, plus the field's own resolved type so a
// later `sprite.xpos`-style member access can be checked (and narrowed)
// against it rather than the struct-map's own word-sized storage type.
type FieldLayout struct {
	Offset uint32
	End    *uint32
	Type   *types.Type
}

// Result is the output of the checker: every expression and declared symbol
// now carries a resolved type, plus the computed layout of every struct-map
// field.
type Result struct {
	// Types maps an expression (or any node with an inferable type) to its
	// resolved type.
	Types map[ast.Node]*types.Type
	// Fields maps a struct-map field to its resolved byte layout.
	Fields map[*ast.StructField]FieldLayout
}

// TypeOf returns the type resolved for n, or Unknown if the checker never
// visited it (e.g. it belongs to a failed subtree).
func (r *Result) TypeOf(n ast.Node) *types.Type {
	if t, ok := r.Types[n]; ok {
		return t
	}

	return types.Unknown
}

type checker struct {
	table  *symbols.Table
	diags  *diag.Diagnostics
	result *Result
	// namedTypes maps a module-qualified type/enum name to its resolved
	// type; populated before any expression is checked so annotations can
	// reference enums and aliases regardless of declaration order.
	namedTypes map[*symbols.Scope]map[string]*types.Type
	// structFields maps a struct-map field's "declName.fieldName" key (the
	// same key pkg/il.builder's own fields map uses) to the *ast.StructField
	// declaring it, so checkMember can recover a field's specific type from
	// c.result.Fields without re-walking the declaration.
	structFields map[string]*ast.StructField
}

// Check runs passes 2 and 3 over every given program, using the scope tree
// already built by pkg/symbols.
func Check(table *symbols.Table, programs []*ast.Program) diag.Result[*Result] {
	c := &checker{
		table: table,
		diags: diag.NewDiagnostics(diag.DefaultDiagnosticCap),
		result: &Result{
			Types:  make(map[ast.Node]*types.Type),
			Fields: make(map[*ast.StructField]FieldLayout),
		},
		namedTypes:   make(map[*symbols.Scope]map[string]*types.Type),
		structFields: make(map[string]*ast.StructField),
	}

	// Pass 2a: register every named type (enum, alias) before any expression
	// is checked, so forward references resolve.
	for _, p := range programs {
		if p.Module == nil {
			continue
		}

		scope := c.moduleScope(p.Module)
		c.declareNamedTypes(scope, p.Module.Declarations)
	}

	// Pass 2b/3: resolve and check every declaration.
	for _, p := range programs {
		if p.Module == nil {
			continue
		}

		scope := c.moduleScope(p.Module)
		for _, decl := range p.Module.Declarations {
			c.checkTopLevel(scope, decl)
		}
	}

	log.Debugf("checker: resolved %d expression type(s)", len(c.result.Types))

	return diag.Of(c.result, c.diags)
}

func (c *checker) moduleScope(m *ast.Module) *symbols.Scope {
	return c.table.Modules[joinPath(m.Path)]
}

func joinPath(parts []string) string {
	out := ""

	for i, p := range parts {
		if i > 0 {
			out += "."
		}

		out += p
	}

	return out
}

func (c *checker) setType(n ast.Node, t *types.Type) *types.Type {
	c.result.Types[n] = t
	return t
}

func (c *checker) error(code diag.Code, n ast.Node, format string, args ...any) *types.Type {
	c.diags.Add(diag.Errorf(code, n.Location(), format, args...))
	return c.setType(n, types.Unknown)
}
