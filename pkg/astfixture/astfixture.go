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

// Package astfixture builds ast.Program trees in memory, for tests and for
// cmd/blend65 in the absence of a lexer/parser (explicitly out of scope,
// §1). It mirrors the shape of go-corset's pkg/corset/ast constructors
// (expression.go's NewFor/NewLet/NewVariableAccess): one small `NewX`
// function per node kind, returning the concrete pointer type rather than
// the Node interface, so callers can still set an optional field the
// constructor doesn't take before handing the result to another builder
// call.
package astfixture

import "github.com/blendsdk/blend65/pkg/ast"

// Program wraps a single module's declarations in an *ast.Program, the
// top-level unit pkg/symbols.Build and friends consume.
func Program(path []string, decls ...ast.Node) *ast.Program {
	m := &ast.Module{Path: path, Declarations: decls}
	return &ast.Program{Module: m, Declarations: decls}
}

// Exported wraps decl in an *ast.Export.
func Exported(decl ast.Node) *ast.Export {
	return &ast.Export{Declaration: decl}
}

// Func builds a function declaration. A nil body produces a stub (§9(b)).
func Func(name string, ret *ast.TypeAnnotation, params []*ast.Parameter, body *ast.Block) *ast.FunctionDecl {
	return &ast.FunctionDecl{Name: name, Return: ret, Parameters: params, Body: body}
}

// Param builds a function parameter.
func Param(name string, annotation *ast.TypeAnnotation) *ast.Parameter {
	return &ast.Parameter{Name: name, Annotation: annotation}
}

// Type builds a plain named type annotation (byte, word, bool, void, ...).
func Type(name string) *ast.TypeAnnotation {
	return &ast.TypeAnnotation{Name: name}
}

// ArrayType builds an array-of annotation. A nil length leaves the array
// length unspecified.
func ArrayType(element *ast.TypeAnnotation, length *uint32) *ast.TypeAnnotation {
	return &ast.TypeAnnotation{Array: &ast.ArrayAnnotation{Element: element, Length: length}}
}

// ArrayLen is a convenience for taking the address of a literal array length.
func ArrayLen(n uint32) *uint32 {
	return &n
}

// Let builds a mutable local/global declaration.
func Let(name string, annotation *ast.TypeAnnotation, init ast.Node) *ast.VariableDecl {
	return &ast.VariableDecl{Name: name, Annotation: annotation, Initializer: init}
}

// Const builds an immutable declaration.
func Const(name string, annotation *ast.TypeAnnotation, init ast.Node) *ast.VariableDecl {
	return &ast.VariableDecl{Name: name, Const: true, Annotation: annotation, Initializer: init}
}

// ZeroPage builds a `@zp` global.
func ZeroPage(name string, annotation *ast.TypeAnnotation, init ast.Node) *ast.VariableDecl {
	return &ast.VariableDecl{Name: name, Annotation: annotation, Initializer: init, Storage: ast.StorageZeroPage}
}

// Mapped builds a single `@map` global at a fixed address.
func Mapped(name string, annotation *ast.TypeAnnotation, address ast.Node) *ast.VariableDecl {
	return &ast.VariableDecl{Name: name, Annotation: annotation, Storage: ast.StorageMap, MapAddress: address}
}

// Block builds a statement block.
func Block(stmts ...ast.Node) *ast.Block {
	return &ast.Block{Statements: stmts}
}

// If builds a conditional statement. els may be nil, a *ast.Block, or
// another *ast.If for an else-if chain.
func If(cond ast.Node, then *ast.Block, els ast.Node) *ast.If {
	return &ast.If{Condition: cond, Then: then, Else: els}
}

// While builds a pre-test loop.
func While(cond ast.Node, body *ast.Block) *ast.While {
	return &ast.While{Condition: cond, Body: body}
}

// DoWhile builds a post-test loop.
func DoWhile(body *ast.Block, cond ast.Node) *ast.DoWhile {
	return &ast.DoWhile{Body: body, Condition: cond}
}

// For builds a counted loop; init and post may be nil.
func For(init, cond, post ast.Node, body *ast.Block) *ast.For {
	return &ast.For{Init: init, Condition: cond, Post: post, Body: body}
}

// Case builds one match arm. An empty values slice is the default arm.
func Case(body *ast.Block, values ...ast.Node) *ast.MatchCase {
	return &ast.MatchCase{Values: values, Body: body}
}

// Match builds a multi-way branch.
func Match(scrutinee ast.Node, cases ...*ast.MatchCase) *ast.Match {
	return &ast.Match{Scrutinee: scrutinee, Cases: cases}
}

// Expr wraps an expression evaluated for its side effect.
func Expr(e ast.Node) *ast.ExpressionStmt {
	return &ast.ExpressionStmt{Expression: e}
}

// Return builds a return statement; value may be nil for a void return.
func Return(value ast.Node) *ast.Return {
	return &ast.Return{Value: value}
}

// Int builds an integer literal.
func Int(v uint32) *ast.Literal {
	return &ast.Literal{Kind_: ast.LiteralInt, IntValue: v}
}

// Bool builds a boolean literal.
func Bool(v bool) *ast.Literal {
	return &ast.Literal{Kind_: ast.LiteralBool, BoolValue: v}
}

// Str builds a string literal.
func Str(v string) *ast.Literal {
	return &ast.Literal{Kind_: ast.LiteralString, StringValue: v}
}

// Ident builds an identifier from its dotted path segments.
func Ident(path ...string) *ast.Identifier {
	return &ast.Identifier{Path: path}
}

// Bin builds a binary-operator expression.
func Bin(op ast.BinaryOp, left, right ast.Node) *ast.Binary {
	return &ast.Binary{Op: op, Left: left, Right: right}
}

// Un builds a unary-operator expression.
func Un(op ast.UnaryOp, operand ast.Node) *ast.Unary {
	return &ast.Unary{Op: op, Operand: operand}
}

// Assign builds an assignment to an lvalue.
func Assign(target, value ast.Node) *ast.Assignment {
	return &ast.Assignment{Target: target, Value: value}
}

// Invoke builds a call expression.
func Invoke(callee ast.Node, args ...ast.Node) *ast.Call {
	return &ast.Call{Callee: callee, Arguments: args}
}

// Idx builds an array-subscript expression.
func Idx(array, at ast.Node) *ast.Index {
	return &ast.Index{Array: array, At: at}
}

// Field builds a `.field` member access.
func Field(object ast.Node, name string) *ast.Member {
	return &ast.Member{Object: object, Field: name}
}
