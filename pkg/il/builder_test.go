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
package il_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/blendsdk/blend65/pkg/ast"
	"github.com/blendsdk/blend65/pkg/checker"
	"github.com/blendsdk/blend65/pkg/il"
	"github.com/blendsdk/blend65/pkg/symbols"
)

func buildModule(t *testing.T, decls ...ast.Node) *il.Module {
	t.Helper()

	m := &ast.Module{Path: []string{"app"}, Declarations: decls}
	prog := &ast.Program{Module: m, Declarations: decls}

	symRes := symbols.Build([]*ast.Program{prog})
	assert.True(t, symRes.Success)

	checkRes := checker.Check(symRes.Value, []*ast.Program{prog})
	assert.True(t, checkRes.Success)

	ilRes := il.Build(symRes.Value, checkRes.Value, []*ast.Program{prog})
	assert.True(t, ilRes.Success)
	assert.Len(t, ilRes.Value, 1)

	return ilRes.Value[0]
}

func TestBuildStraightLineFunction(t *testing.T) {
	fn := &ast.FunctionDecl{
		Name: "f",
		Body: &ast.Block{Statements: []ast.Node{
			&ast.VariableDecl{Name: "x", Initializer: &ast.Literal{IntValue: 1}},
			&ast.Return{},
		}},
	}

	mod := buildModule(t, fn)

	assert.Len(t, mod.Functions, 1)
	f := mod.Functions[0]
	assert.False(t, f.IsStub)
	assert.NotNil(t, f.Entry)

	var ops []il.Opcode
	for _, instr := range f.Entry.Instructions {
		ops = append(ops, instr.Op)
	}

	assert.Contains(t, ops, il.OpLoadConst)
	assert.Contains(t, ops, il.OpMove)
	assert.Contains(t, ops, il.OpReturn)
}

func TestBuildStubProducesNoBlocks(t *testing.T) {
	fn := &ast.FunctionDecl{Name: "stub", Return: &ast.TypeAnnotation{Name: "byte"}}

	mod := buildModule(t, fn)

	f := mod.Functions[0]
	assert.True(t, f.IsStub)
	assert.Empty(t, f.Blocks)
	assert.Nil(t, f.Entry)
}

func TestBuildIfElseProducesThenElseMergeBlocks(t *testing.T) {
	fn := &ast.FunctionDecl{
		Name: "f",
		Body: &ast.Block{Statements: []ast.Node{
			&ast.If{
				Condition: &ast.Literal{Kind_: ast.LiteralBool, BoolValue: true},
				Then:      &ast.Block{Statements: []ast.Node{&ast.ExpressionStmt{Expression: &ast.Literal{IntValue: 1}}}},
				Else:      &ast.Block{Statements: []ast.Node{&ast.ExpressionStmt{Expression: &ast.Literal{IntValue: 2}}}},
			},
			&ast.Return{},
		}},
	}

	mod := buildModule(t, fn)
	f := mod.Functions[0]

	var labels []string
	for _, b := range f.Blocks {
		labels = append(labels, b.Label)
	}

	assert.Contains(t, labels, "then")
	assert.Contains(t, labels, "else")
	assert.Contains(t, labels, "merge")
}

func TestBuildWhileLoopProducesHeaderBodyExitAndBackEdge(t *testing.T) {
	fn := &ast.FunctionDecl{
		Name: "f",
		Body: &ast.Block{Statements: []ast.Node{
			&ast.VariableDecl{Name: "i", Initializer: &ast.Literal{IntValue: 0}},
			&ast.While{
				Condition: &ast.Binary{Op: ast.OpLt, Left: &ast.Identifier{Path: []string{"i"}}, Right: &ast.Literal{IntValue: 10}},
				Body: &ast.Block{Statements: []ast.Node{
					&ast.ExpressionStmt{Expression: &ast.Assignment{
						Target: &ast.Identifier{Path: []string{"i"}},
						Value:  &ast.Binary{Op: ast.OpAdd, Left: &ast.Identifier{Path: []string{"i"}}, Right: &ast.Literal{IntValue: 1}},
					}},
				}},
			},
			&ast.Return{},
		}},
	}

	mod := buildModule(t, fn)
	f := mod.Functions[0]

	var header, body *il.BasicBlock
	for _, b := range f.Blocks {
		switch b.Label {
		case "loop_header":
			header = b
		case "loop_body":
			body = b
		}
	}

	assert.NotNil(t, header)
	assert.NotNil(t, body)

	found := false
	for _, succ := range body.Successors {
		if succ == header {
			found = true
		}
	}
	assert.True(t, found, "loop body must jump back to header")
}

func TestBuildBreakTargetsLoopExit(t *testing.T) {
	fn := &ast.FunctionDecl{
		Name: "f",
		Body: &ast.Block{Statements: []ast.Node{
			&ast.While{
				Condition: &ast.Literal{Kind_: ast.LiteralBool, BoolValue: true},
				Body: &ast.Block{Statements: []ast.Node{
					&ast.Break{},
				}},
			},
			&ast.Return{},
		}},
	}

	mod := buildModule(t, fn)
	f := mod.Functions[0]

	var body, exit *il.BasicBlock
	for _, b := range f.Blocks {
		switch b.Label {
		case "loop_body":
			body = b
		case "loop_exit":
			exit = b
		}
	}

	assert.NotNil(t, body)
	assert.NotNil(t, exit)

	found := false
	for _, succ := range body.Successors {
		if succ == exit {
			found = true
		}
	}
	assert.True(t, found, "break must target the loop exit block")
}

func TestBuildReturnWithValue(t *testing.T) {
	fn := &ast.FunctionDecl{
		Name:   "f",
		Return: &ast.TypeAnnotation{Name: "byte"},
		Body: &ast.Block{Statements: []ast.Node{
			&ast.Return{Value: &ast.Literal{IntValue: 7}},
		}},
	}

	mod := buildModule(t, fn)
	f := mod.Functions[0]

	term := f.Entry.Terminator()
	assert.NotNil(t, term)
	assert.Equal(t, il.OpReturn, term.Op)
	assert.Len(t, term.Args, 1)
}

func TestBuildIntrinsicsLowerToLoHiOpcodes(t *testing.T) {
	fn := &ast.FunctionDecl{
		Name: "f",
		Body: &ast.Block{Statements: []ast.Node{
			&ast.VariableDecl{Name: "w", Initializer: &ast.Literal{IntValue: 300}},
			&ast.VariableDecl{Name: "lo", Initializer: &ast.Unary{Op: ast.OpLo, Operand: &ast.Identifier{Path: []string{"w"}}}},
			&ast.VariableDecl{Name: "hi", Initializer: &ast.Unary{Op: ast.OpHi, Operand: &ast.Identifier{Path: []string{"w"}}}},
			&ast.Return{},
		}},
	}

	mod := buildModule(t, fn)
	f := mod.Functions[0]

	var ops []il.Opcode
	for _, instr := range f.Entry.Instructions {
		ops = append(ops, instr.Op)
	}

	assert.Contains(t, ops, il.OpIntrinsicLo)
	assert.Contains(t, ops, il.OpIntrinsicHi)
}

func TestBuildModuleRecordsGlobalsAndExports(t *testing.T) {
	v := &ast.VariableDecl{Name: "counter", Initializer: &ast.Literal{IntValue: 5}}
	exported := &ast.Export{Declaration: v}

	mod := buildModule(t, exported)

	assert.Len(t, mod.Globals, 1)
	assert.Equal(t, "counter", mod.Globals[0].Name)
	assert.True(t, mod.Globals[0].HasInitial)
	assert.Equal(t, uint32(5), mod.Globals[0].InitialInt)
	assert.Contains(t, mod.Exports, "counter")
}

func TestBuildStructMapFieldLoweringUsesResolvedOffsets(t *testing.T) {
	decl := &ast.SequentialStructMapDecl{
		Name:    "sprite",
		Address: &ast.Literal{IntValue: 0xD000},
		Fields: []*ast.StructField{
			{Name: "x", Annotation: &ast.TypeAnnotation{Name: "byte"}},
			{Name: "y", Annotation: &ast.TypeAnnotation{Name: "byte"}},
		},
	}

	fn := &ast.FunctionDecl{
		Name: "f",
		Body: &ast.Block{Statements: []ast.Node{
			&ast.VariableDecl{Name: "px", Initializer: &ast.Member{Object: &ast.Identifier{Path: []string{"sprite"}}, Field: "x"}},
			&ast.ExpressionStmt{Expression: &ast.Assignment{
				Target: &ast.Member{Object: &ast.Identifier{Path: []string{"sprite"}}, Field: "y"},
				Value:  &ast.Literal{IntValue: 10},
			}},
			&ast.Return{},
		}},
	}

	mod := buildModule(t, decl, fn)
	f := mod.Functions[0]

	var loadOp, storeOp *il.Instruction
	for _, instr := range f.Entry.Instructions {
		switch instr.Op {
		case il.OpMapLoadField:
			loadOp = instr
		case il.OpMapStoreField:
			storeOp = instr
		}
	}

	assert.NotNil(t, loadOp)
	assert.NotNil(t, storeOp)
	assert.Equal(t, uint32(0xD000), loadOp.Base)
	assert.Equal(t, uint32(0xD000), storeOp.Base)
	assert.NotEqual(t, loadOp.FieldOffset, storeOp.FieldOffset)
}
