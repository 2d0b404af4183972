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

func TestBuildStraightLineFunction(t *testing.T) {
	fn := &ast.FunctionDecl{
		Name: "f",
		Body: &ast.Block{Statements: []ast.Node{
			&ast.ExpressionStmt{Expression: &ast.Literal{IntValue: 1}},
			&ast.Return{},
		}},
	}

	res := cfg.Build(fn)
	assert.True(t, res.Success)

	g := res.Value
	assert.True(t, g.ReachesExit())
	assert.False(t, g.FallsThrough())
}

func TestBuildStubProducesTrivialGraph(t *testing.T) {
	fn := &ast.FunctionDecl{Name: "stub"}

	res := cfg.Build(fn)
	assert.True(t, res.Success)
	assert.Equal(t, 2, res.Value.NodeCount())
}

func TestBuildIfElseMerges(t *testing.T) {
	fn := &ast.FunctionDecl{
		Name: "f",
		Body: &ast.Block{Statements: []ast.Node{
			&ast.If{
				Condition: &ast.Literal{BoolValue: true},
				Then:      &ast.Block{Statements: []ast.Node{&ast.ExpressionStmt{Expression: &ast.Literal{IntValue: 1}}}},
				Else:      &ast.Block{Statements: []ast.Node{&ast.ExpressionStmt{Expression: &ast.Literal{IntValue: 2}}}},
			},
			&ast.Return{},
		}},
	}

	res := cfg.Build(fn)
	assert.True(t, res.Success)
	assert.True(t, res.Value.ReachesExit())
}

func TestBuildIfBothBranchesReturnFallsThroughFalse(t *testing.T) {
	fn := &ast.FunctionDecl{
		Name: "f",
		Body: &ast.Block{Statements: []ast.Node{
			&ast.If{
				Condition: &ast.Literal{BoolValue: true},
				Then:      &ast.Block{Statements: []ast.Node{&ast.Return{}}},
				Else:      &ast.Block{Statements: []ast.Node{&ast.Return{}}},
			},
		}},
	}

	res := cfg.Build(fn)
	assert.True(t, res.Success)
	assert.False(t, res.Value.FallsThrough())
}

func TestBuildWhileLoopBackEdge(t *testing.T) {
	fn := &ast.FunctionDecl{
		Name: "f",
		Body: &ast.Block{Statements: []ast.Node{
			&ast.While{
				Condition: &ast.Literal{BoolValue: true},
				Body:      &ast.Block{Statements: []ast.Node{&ast.ExpressionStmt{Expression: &ast.Literal{IntValue: 1}}}},
			},
			&ast.Return{},
		}},
	}

	res := cfg.Build(fn)
	assert.True(t, res.Success)
	assert.True(t, res.Value.ReachesExit())
}

func TestBuildBreakReachesLoopExit(t *testing.T) {
	fn := &ast.FunctionDecl{
		Name: "f",
		Body: &ast.Block{Statements: []ast.Node{
			&ast.While{
				Condition: &ast.Literal{BoolValue: true},
				Body:      &ast.Block{Statements: []ast.Node{&ast.Break{}}},
			},
			&ast.Return{},
		}},
	}

	res := cfg.Build(fn)
	assert.True(t, res.Success)
	assert.True(t, res.Value.ReachesExit())
}

func TestBuildUnreachableAfterReturnWarns(t *testing.T) {
	fn := &ast.FunctionDecl{
		Name: "f",
		Body: &ast.Block{Statements: []ast.Node{
			&ast.Return{},
			&ast.ExpressionStmt{Expression: &ast.Literal{IntValue: 1}},
		}},
	}

	res := cfg.Build(fn)
	assert.True(t, res.Success)
	assert.True(t, res.Diagnostics.Len() > 0)
}

func TestFallsThroughWithNoExplicitReturn(t *testing.T) {
	fn := &ast.FunctionDecl{
		Name: "f",
		Body: &ast.Block{Statements: []ast.Node{
			&ast.ExpressionStmt{Expression: &ast.Literal{IntValue: 1}},
		}},
	}

	res := cfg.Build(fn)
	assert.True(t, res.Value.FallsThrough())
}

func TestDOTRendersEveryNode(t *testing.T) {
	fn := &ast.FunctionDecl{Name: "f", Body: &ast.Block{Statements: []ast.Node{&ast.Return{}}}}

	res := cfg.Build(fn)
	dot := res.Value.DOT("f")
	assert.Contains(t, dot, "digraph")
	assert.Equal(t, res.Value.NodeCount(), countOccurrences(dot, "label="))
}

func countOccurrences(s, substr string) int {
	count := 0
	for i := 0; i+len(substr) <= len(s); i++ {
		if s[i:i+len(substr)] == substr {
			count++
		}
	}

	return count
}
