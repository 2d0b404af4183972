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
package checker

import (
	"github.com/blendsdk/blend65/pkg/ast"
	"github.com/blendsdk/blend65/pkg/symbols"
	"github.com/blendsdk/blend65/pkg/types"
)

// declareNamedTypes resolves every EnumDecl and TypeDecl at module scope into
// a concrete *types.Type, before any expression is checked, so annotations
// can name a type regardless of where in the module it is declared.
func (c *checker) declareNamedTypes(scope *symbols.Scope, decls []ast.Node) {
	named := make(map[string]*types.Type)
	c.namedTypes[scope] = named

	for _, decl := range decls {
		node := decl
		if exp, ok := node.(*ast.Export); ok {
			node = exp.Declaration
		}

		switch n := node.(type) {
		case *ast.EnumDecl:
			named[n.Name] = c.resolveEnum(n)
		case *ast.TypeDecl:
			// Resolved in a second pass below, once every enum exists, so a
			// type alias of an enum resolves correctly regardless of order.
		}
	}

	for _, decl := range decls {
		node := decl
		if exp, ok := node.(*ast.Export); ok {
			node = exp.Declaration
		}

		if n, ok := node.(*ast.TypeDecl); ok {
			named[n.Name] = c.resolveAnnotation(scope, n.Annotation)
		}
	}

	// Propagate resolved types onto the declaring symbols themselves.
	for _, decl := range decls {
		node := decl
		if exp, ok := node.(*ast.Export); ok {
			node = exp.Declaration
		}

		switch n := node.(type) {
		case *ast.EnumDecl:
			if sym, ok := scope.LocalLookup(n.Name); ok {
				sym.Type = named[n.Name]
			}

			for _, m := range n.Members {
				if sym, ok := scope.LocalLookup(m.Name); ok {
					sym.Type = types.Byte
				}
			}
		case *ast.TypeDecl:
			if sym, ok := scope.LocalLookup(n.Name); ok {
				sym.Type = named[n.Name]
			}
		}
	}
}

// resolveEnum assigns each member a value: an explicit literal if given,
// otherwise one greater than the previous member's value (starting at 0).
func (c *checker) resolveEnum(decl *ast.EnumDecl) *types.Type {
	members := make(map[string]uint32, len(decl.Members))

	var next uint32

	for _, m := range decl.Members {
		value := next

		if m.Value != nil {
			if lit, ok := m.Value.(*ast.Literal); ok {
				value = lit.IntValue
			}
		}

		members[m.Name] = value
		next = value + 1
	}

	return types.NewEnum(decl.Name, members)
}

// resolveAnnotation maps a syntactic type annotation to a concrete type,
// climbing the enclosing scope chain for named (enum/alias) references.
func (c *checker) resolveAnnotation(scope *symbols.Scope, ann *ast.TypeAnnotation) *types.Type {
	if ann == nil {
		return types.Unknown
	}

	if ann.Array != nil {
		elem := c.resolveAnnotation(scope, ann.Array.Element)
		return types.NewArray(elem, ann.Array.Length)
	}

	if ann.Function != nil {
		params := make([]*types.Type, 0, len(ann.Function.Parameters))
		for _, p := range ann.Function.Parameters {
			params = append(params, c.resolveAnnotation(scope, p))
		}

		result := c.resolveAnnotation(scope, ann.Function.Return)

		return types.NewFunction(params, result)
	}

	switch ann.Name {
	case "byte":
		return types.Byte
	case "word":
		return types.Word
	case "bool":
		return types.Bool
	case "void":
		return types.Void
	case "string":
		return types.String
	case "any":
		return types.Unknown
	}

	for s := scope; s != nil; s = s.Parent() {
		if named, ok := c.namedTypes[s]; ok {
			if t, ok := named[ann.Name]; ok {
				return t
			}
		}
	}

	return types.Unknown
}
