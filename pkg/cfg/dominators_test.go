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
package cfg_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/blendsdk/blend65/pkg/ast"
	"github.com/blendsdk/blend65/pkg/cfg"
)

func TestDominatorsOfStraightLineFunction(t *testing.T) {
	s1 := &ast.ExpressionStmt{}
	s2 := &ast.ExpressionStmt{}
	fn := &ast.FunctionDecl{Name: "f", Body: &ast.Block{Statements: []ast.Node{s1, s2, &ast.Return{}}}}

	res := cfg.Build(fn)
	assert.True(t, res.Success)

	g := res.Value
	dom := cfg.ComputeDominators(g)

	assert.True(t, dom.Dominates(g.Entry, g.Exit))
	assert.Empty(t, dom.BackEdges())
}

func TestDominatorsOfDiamondIf(t *testing.T) {
	thenBlock := &ast.Block{Statements: []ast.Node{&ast.ExpressionStmt{}}}
	elseBlock := &ast.Block{Statements: []ast.Node{&ast.ExpressionStmt{}}}
	ifStmt := &ast.If{Condition: &ast.Literal{Kind_: ast.LiteralBool, BoolValue: true}, Then: thenBlock, Else: elseBlock}
	fn := &ast.FunctionDecl{Name: "f", Body: &ast.Block{Statements: []ast.Node{ifStmt, &ast.Return{}}}}

	res := cfg.Build(fn)
	assert.True(t, res.Success)

	g := res.Value
	dom := cfg.ComputeDominators(g)

	var branch, merge *cfg.Node

	for _, n := range g.Nodes() {
		if n.NodeKind == cfg.KindBranch {
			branch = n
		}

		if n.NodeKind == cfg.KindMerge {
			merge = n
		}
	}

	assert.NotNil(t, branch)
	assert.NotNil(t, merge)
	assert.True(t, dom.Dominates(branch, merge))
	assert.True(t, dom.Dominates(g.Entry, merge))
	assert.Empty(t, dom.BackEdges())
}

func TestDominatorsFindsWhileLoopBackEdge(t *testing.T) {
	body := &ast.Block{Statements: []ast.Node{&ast.ExpressionStmt{}}}
	loop := &ast.While{Condition: &ast.Literal{Kind_: ast.LiteralBool, BoolValue: true}, Body: body}
	fn := &ast.FunctionDecl{Name: "f", Body: &ast.Block{Statements: []ast.Node{loop, &ast.Return{}}}}

	res := cfg.Build(fn)
	assert.True(t, res.Success)

	g := res.Value
	dom := cfg.ComputeDominators(g)

	edges := dom.BackEdges()
	assert.Len(t, edges, 1)

	tail, head := edges[0][0], edges[0][1]
	assert.Equal(t, cfg.KindLoopEntry, head.NodeKind)
	assert.True(t, dom.Dominates(head, tail))
}

func TestDominanceFrontierOfThenBranchIncludesMerge(t *testing.T) {
	thenStmt := &ast.ExpressionStmt{}
	thenBlock := &ast.Block{Statements: []ast.Node{thenStmt}}
	ifStmt := &ast.If{Condition: &ast.Literal{Kind_: ast.LiteralBool, BoolValue: true}, Then: thenBlock}
	fn := &ast.FunctionDecl{Name: "f", Body: &ast.Block{Statements: []ast.Node{ifStmt, &ast.Return{}}}}

	res := cfg.Build(fn)
	assert.True(t, res.Success)

	g := res.Value
	dom := cfg.ComputeDominators(g)

	var thenNode, merge *cfg.Node

	for _, n := range g.Nodes() {
		if n.Statement == ast.Node(thenStmt) {
			thenNode = n
		}

		if n.NodeKind == cfg.KindMerge {
			merge = n
		}
	}

	assert.NotNil(t, thenNode)
	assert.NotNil(t, merge)

	frontier := dom.Frontier(thenNode)

	found := false

	for _, n := range frontier {
		if n == merge {
			found = true
		}
	}

	assert.True(t, found)
}
