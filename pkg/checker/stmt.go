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
	"github.com/blendsdk/blend65/pkg/diag"
	"github.com/blendsdk/blend65/pkg/symbols"
	"github.com/blendsdk/blend65/pkg/types"
)

// checkTopLevel is the declaration layer of the checker (§4.3) for a single
// module-scope declaration, unwrapping an Export marker if present.
func (c *checker) checkTopLevel(scope *symbols.Scope, node ast.Node) {
	if exp, ok := node.(*ast.Export); ok {
		node = exp.Declaration
	}

	switch n := node.(type) {
	case *ast.FunctionDecl:
		c.checkFunction(scope, n)
	case *ast.VariableDecl:
		c.checkVariableDecl(scope, n)
	case *ast.EnumDecl, *ast.TypeDecl:
		// Already fully resolved in declareNamedTypes.
	case *ast.SimpleMapDecl:
		c.checkSimpleMap(scope, n)
	case *ast.RangeMapDecl:
		c.checkRangeMap(scope, n)
	case *ast.SequentialStructMapDecl:
		c.checkSequentialStructMap(scope, n)
	case *ast.ExplicitStructMapDecl:
		c.checkExplicitStructMap(scope, n)
	}
}

func (c *checker) checkFunction(scope *symbols.Scope, fn *ast.FunctionDecl) {
	sym, _ := scope.LocalLookup(fn.Name)

	fnScope, ok := c.table.FunctionScopes[fn]
	if !ok {
		fnScope = scope
	}

	paramTypes := make([]*types.Type, 0, len(fn.Parameters))

	for _, p := range fn.Parameters {
		t := c.resolveAnnotation(scope, p.Annotation)
		paramTypes = append(paramTypes, t)

		if psym, ok := fnScope.LocalLookup(p.Name); ok {
			psym.Type = t
		}
	}

	returnType := c.resolveAnnotation(scope, fn.Return)
	if fn.Return == nil {
		returnType = types.Void
	}

	if sym != nil {
		sym.Type = types.NewFunction(paramTypes, returnType)
	}

	if fn.IsStub() {
		return
	}

	bodyScope := fnScope

	if s, ok := c.table.NodeScopes[fn.Body]; ok {
		bodyScope = s
	}

	ctx := &functionContext{returnType: returnType}

	for _, stmt := range fn.Body.Statements {
		c.checkStatement(bodyScope, ctx, stmt)
	}
}

// functionContext threads the enclosing function's return type down through
// nested statements, so `return` can be checked against it (§4.3).
type functionContext struct {
	returnType *types.Type
}

func (c *checker) checkStatement(scope *symbols.Scope, ctx *functionContext, stmt ast.Node) {
	switch s := stmt.(type) {
	case *ast.VariableDecl:
		c.checkVariableDecl(scope, s)
	case *ast.ExpressionStmt:
		c.checkExpr(scope, s.Expression)
	case *ast.Return:
		c.checkReturn(scope, ctx, s)
	case *ast.Break, *ast.Continue:
		// No type to compute; CFG-level reachability validates placement.
	case *ast.Block:
		c.checkBlockStatements(scope, ctx, s)
	case *ast.If:
		c.checkIf(scope, ctx, s)
	case *ast.While:
		c.checkLoopCondition(scope, s.Condition)
		c.checkNestedBody(scope, ctx, s, s.Body)
	case *ast.DoWhile:
		c.checkLoopCondition(scope, s.Condition)
		c.checkNestedBody(scope, ctx, s, s.Body)
	case *ast.For:
		c.checkFor(scope, ctx, s)
	case *ast.Match:
		c.checkMatch(scope, ctx, s)
	}
}

func (c *checker) checkBlockStatements(scope *symbols.Scope, ctx *functionContext, block *ast.Block) {
	inner := scope
	if s, ok := c.table.NodeScopes[block]; ok {
		inner = s
	}

	for _, stmt := range block.Statements {
		c.checkStatement(inner, ctx, stmt)
	}
}

func (c *checker) checkIf(scope *symbols.Scope, ctx *functionContext, n *ast.If) {
	cond := c.checkExpr(scope, n.Condition)
	if cond != types.Bool && cond != types.Unknown {
		c.diags.Add(diag.Errorf(diag.CodeTypeMismatch, n.Condition.Location(), "if condition must be bool"))
	}

	c.checkBlockStatements(scope, ctx, n.Then)

	switch e := n.Else.(type) {
	case *ast.Block:
		c.checkBlockStatements(scope, ctx, e)
	case *ast.If:
		c.checkIf(scope, ctx, e)
	}
}

func (c *checker) checkLoopCondition(scope *symbols.Scope, cond ast.Node) {
	if cond == nil {
		return
	}

	t := c.checkExpr(scope, cond)
	if t != types.Bool && t != types.Unknown {
		c.diags.Add(diag.Errorf(diag.CodeTypeMismatch, cond.Location(), "loop condition must be bool"))
	}
}

func (c *checker) checkNestedBody(scope *symbols.Scope, ctx *functionContext, node ast.Node, body *ast.Block) {
	loopScope := scope
	if s, ok := c.table.NodeScopes[node]; ok {
		loopScope = s
	}

	c.checkBlockStatements(loopScope, ctx, body)
}

func (c *checker) checkFor(scope *symbols.Scope, ctx *functionContext, n *ast.For) {
	loopScope := scope
	if s, ok := c.table.NodeScopes[n]; ok {
		loopScope = s
	}

	if n.Init != nil {
		c.checkStatement(loopScope, ctx, n.Init)
	}

	c.checkLoopCondition(loopScope, n.Condition)

	if n.Post != nil {
		c.checkExpr(loopScope, n.Post)
	}

	c.checkBlockStatements(loopScope, ctx, n.Body)
}

func (c *checker) checkMatch(scope *symbols.Scope, ctx *functionContext, n *ast.Match) {
	scrutinee := c.checkExpr(scope, n.Scrutinee)

	for _, cs := range n.Cases {
		for _, v := range cs.Values {
			vt := c.checkExpr(scope, v)
			if types.CheckCompatibility(vt, scrutinee) == types.Incompatible {
				c.diags.Add(diag.Errorf(diag.CodeTypeMismatch, v.Location(), "case value is incompatible with the matched type"))
			}
		}

		c.checkBlockStatements(scope, ctx, cs.Body)
	}
}

func (c *checker) checkReturn(scope *symbols.Scope, ctx *functionContext, ret *ast.Return) {
	if ret.Value == nil {
		if ctx.returnType != types.Void {
			c.diags.Add(diag.Errorf(diag.CodeTypeMismatch, ret.Location(), "missing return value"))
		}

		return
	}

	valueType := c.checkExpr(scope, ret.Value)
	if types.CheckCompatibility(valueType, ctx.returnType) == types.Incompatible {
		c.diags.Add(diag.Errorf(diag.CodeTypeMismatch, ret.Location(),
			"cannot return %s where %s is expected", valueType, ctx.returnType))
	}
}

// checkVariableDecl implements §4.3: "accept either an explicit annotation
// with a compatible initializer, or an initializer alone (type inferred)".
func (c *checker) checkVariableDecl(scope *symbols.Scope, decl *ast.VariableDecl) {
	sym, _ := scope.LocalLookup(decl.Name)

	var declared *types.Type

	if decl.Annotation != nil {
		declared = c.resolveAnnotation(scope, decl.Annotation)
	}

	var initType *types.Type

	if decl.Initializer != nil {
		initType = c.checkExpr(scope, decl.Initializer)
	}

	switch {
	case declared != nil && decl.Initializer != nil:
		switch types.CheckCompatibility(initType, declared) {
		case types.Incompatible:
			c.diags.Add(diag.Errorf(diag.CodeTypeMismatch, decl.Initializer.Location(),
				"cannot initialize %s with %s", declared, initType))
		case types.RequiresConversion:
			c.diags.Add(diag.Errorf(diag.CodeNarrowingConversion, decl.Initializer.Location(),
				"narrowing %s to %s requires an explicit conversion", initType, declared))
		}
	case declared != nil:
		// Annotation alone, no initializer: fine (e.g. a zero-paged global).
	case decl.Initializer != nil:
		declared = initType
	default:
		declared = types.Unknown
	}

	if sym != nil {
		sym.Type = declared
	}
}

func (c *checker) checkSimpleMap(scope *symbols.Scope, decl *ast.SimpleMapDecl) {
	sym, _ := scope.LocalLookup(decl.Name)
	t := c.resolveAnnotation(scope, decl.Annotation)

	if sym != nil {
		sym.Type = t
	}

	c.requireNumericAddress(scope, decl.Address, decl.Location())
}

func (c *checker) checkRangeMap(scope *symbols.Scope, decl *ast.RangeMapDecl) {
	sym, _ := scope.LocalLookup(decl.Name)
	elem := c.resolveAnnotation(scope, decl.Annotation)

	if sym != nil {
		sym.Type = elem
	}

	c.requireNumericAddress(scope, decl.From, decl.Location())
	c.requireNumericAddress(scope, decl.To, decl.Location())
}

func (c *checker) checkSequentialStructMap(scope *symbols.Scope, decl *ast.SequentialStructMapDecl) {
	sym, _ := scope.LocalLookup(decl.Name)
	c.requireNumericAddress(scope, decl.Address, decl.Location())

	var offset uint32

	for _, f := range decl.Fields {
		t := c.resolveAnnotation(scope, f.Annotation)
		c.result.Fields[f] = FieldLayout{Offset: offset, Type: t}
		c.structFields[decl.Name+"."+f.Name] = f
		offset += t.SizeInBytes()
	}

	if sym != nil {
		sym.Type = types.Word
	}
}

func (c *checker) checkExplicitStructMap(scope *symbols.Scope, decl *ast.ExplicitStructMapDecl) {
	sym, _ := scope.LocalLookup(decl.Name)
	c.requireNumericAddress(scope, decl.Address, decl.Location())

	for _, f := range decl.Fields {
		t := c.resolveAnnotation(scope, f.Annotation)
		c.structFields[decl.Name+"."+f.Name] = f

		switch {
		case f.Offset != nil:
			offset := c.requireNumericAddress(scope, f.Offset, f.Location())
			c.result.Fields[f] = FieldLayout{Offset: offset, Type: t}
		case f.RangeTo != nil:
			c.requireNumericAddress(scope, f.RangeTo, f.Location())
			c.diags.Add(diag.Errorf(diag.CodeBadMapAddress, f.Location(),
				"explicit-layout field %q must use a single offset, not a range, until a range-literal evaluator lands", f.Name))
		default:
			c.diags.Add(diag.Errorf(diag.CodeBadMapAddress, f.Location(),
				"explicit-layout field %q requires an offset or range", f.Name))
		}
	}

	if sym != nil {
		sym.Type = types.Word
	}
}

// requireNumericAddress type-checks addr and reports CodeBadMapAddress if it
// is not numeric; it additionally returns the literal value when addr is a
// literal, for structs that need a concrete offset at check time.
func (c *checker) requireNumericAddress(scope *symbols.Scope, addr ast.Node, loc diag.Location) uint32 {
	if addr == nil {
		c.diags.Add(diag.Errorf(diag.CodeBadMapAddress, loc, "missing address expression"))
		return 0
	}

	t := c.checkExpr(scope, addr)
	if !types.IsNumeric(t) {
		c.diags.Add(diag.Errorf(diag.CodeBadMapAddress, addr.Location(), "map address must be numeric"))
		return 0
	}

	if lit, ok := addr.(*ast.Literal); ok {
		return lit.IntValue
	}

	return 0
}
