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
package ssa_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/blendsdk/blend65/pkg/ast"
	"github.com/blendsdk/blend65/pkg/checker"
	"github.com/blendsdk/blend65/pkg/il"
	"github.com/blendsdk/blend65/pkg/ssa"
	"github.com/blendsdk/blend65/pkg/symbols"
)

func buildSSA(t *testing.T, fn *ast.FunctionDecl) *ssa.Function {
	t.Helper()

	m := &ast.Module{Path: []string{"app"}, Declarations: []ast.Node{fn}}
	prog := &ast.Program{Module: m, Declarations: []ast.Node{fn}}

	symRes := symbols.Build([]*ast.Program{prog})
	assert.True(t, symRes.Success)

	checkRes := checker.Check(symRes.Value, []*ast.Program{prog})
	assert.True(t, checkRes.Success)

	ilRes := il.Build(symRes.Value, checkRes.Value, []*ast.Program{prog})
	assert.True(t, ilRes.Success)

	ssaRes := ssa.Build(ilRes.Value)
	assert.True(t, ssaRes.Success)
	assert.Len(t, ssaRes.Value, 1)

	return ssaRes.Value[0]
}

// TestS3DiamondWithPhi is spec §8 scenario S3: an if/else assigning the
// same variable on both branches must produce a single well-formed φ at
// the merge block, with one operand per predecessor.
func TestS3DiamondWithPhi(t *testing.T) {
	fn := &ast.FunctionDecl{
		Name:   "f",
		Return: &ast.TypeAnnotation{Name: "byte"},
		Body: &ast.Block{Statements: []ast.Node{
			&ast.VariableDecl{Name: "x", Initializer: &ast.Literal{IntValue: 0}},
			&ast.If{
				Condition: &ast.Literal{Kind_: ast.LiteralBool, BoolValue: true},
				Then: &ast.Block{Statements: []ast.Node{
					&ast.ExpressionStmt{Expression: &ast.Assignment{
						Target: &ast.Identifier{Path: []string{"x"}},
						Value:  &ast.Literal{IntValue: 1},
					}},
				}},
				Else: &ast.Block{Statements: []ast.Node{
					&ast.ExpressionStmt{Expression: &ast.Assignment{
						Target: &ast.Identifier{Path: []string{"x"}},
						Value:  &ast.Literal{IntValue: 2},
					}},
				}},
			},
			&ast.Return{Value: &ast.Identifier{Path: []string{"x"}}},
		}},
	}

	ssaFn := buildSSA(t, fn)

	var merge *il.BasicBlock
	for _, b := range ssaFn.IL.Blocks {
		if b.Label == "merge" {
			merge = b
		}
	}

	assert.NotNil(t, merge)
	assert.NotEmpty(t, merge.Instructions)

	phi := merge.Instructions[0]
	assert.Equal(t, il.OpPhi, phi.Op)
	assert.Len(t, phi.Args, len(merge.Predecessors))

	for _, a := range phi.Args {
		assert.NotNil(t, a)
	}
}

func TestSSAConstructionIsDeterministic(t *testing.T) {
	fn := func() *ast.FunctionDecl {
		return &ast.FunctionDecl{
			Name:   "f",
			Return: &ast.TypeAnnotation{Name: "byte"},
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
				&ast.Return{Value: &ast.Identifier{Path: []string{"i"}}},
			}},
		}
	}

	first := buildSSA(t, fn())
	second := buildSSA(t, fn())

	assert.Equal(t, len(first.IL.Blocks), len(second.IL.Blocks))

	for i := range first.IL.Blocks {
		assert.Equal(t, first.IL.Blocks[i].Label, second.IL.Blocks[i].Label)
		assert.Equal(t, len(first.IL.Blocks[i].Instructions), len(second.IL.Blocks[i].Instructions))
	}
}

func TestStubFunctionSkipsSSAConstruction(t *testing.T) {
	fn := &ast.FunctionDecl{Name: "stub", Return: &ast.TypeAnnotation{Name: "byte"}}

	m := &ast.Module{Path: []string{"app"}, Declarations: []ast.Node{fn}}
	prog := &ast.Program{Module: m, Declarations: []ast.Node{fn}}

	symRes := symbols.Build([]*ast.Program{prog})
	assert.True(t, symRes.Success)

	checkRes := checker.Check(symRes.Value, []*ast.Program{prog})
	assert.True(t, checkRes.Success)

	ilRes := il.Build(symRes.Value, checkRes.Value, []*ast.Program{prog})
	assert.True(t, ilRes.Success)

	ssaRes := ssa.Build(ilRes.Value)
	assert.True(t, ssaRes.Success)
	assert.Empty(t, ssaRes.Value)
}
