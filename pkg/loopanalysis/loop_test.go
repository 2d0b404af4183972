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
package loopanalysis_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/blendsdk/blend65/pkg/ast"
	"github.com/blendsdk/blend65/pkg/cfg"
	"github.com/blendsdk/blend65/pkg/dataflow"
	"github.com/blendsdk/blend65/pkg/loopanalysis"
)

func ident(name string) *ast.Identifier { return &ast.Identifier{Path: []string{name}} }

func intLit(v uint32) *ast.Literal { return &ast.Literal{Kind_: ast.LiteralInt, IntValue: v} }

func assignStmt(name string, value ast.Node) *ast.ExpressionStmt {
	return &ast.ExpressionStmt{Expression: &ast.Assignment{Target: ident(name), Value: value}}
}

// TestS4LoopCarriedIV pins spec.md §8 scenario S4: `let i: byte = 0; while i
// < 10 { i = i + 1; }` — exactly one natural loop; i is a BIV with stride 1
// and initial value 0.
func TestS4LoopCarriedIV(t *testing.T) {
	defI := &ast.VariableDecl{Name: "i", Initializer: intLit(0)}
	incr := assignStmt("i", &ast.Binary{Op: ast.OpAdd, Left: ident("i"), Right: intLit(1)})
	loopStmt := &ast.While{
		Condition: &ast.Binary{Op: ast.OpLt, Left: ident("i"), Right: intLit(10)},
		Body:      &ast.Block{Statements: []ast.Node{incr}},
	}
	fn := &ast.FunctionDecl{Name: "f", Body: &ast.Block{Statements: []ast.Node{defI, loopStmt, &ast.Return{}}}}

	g := buildGraph(t, fn)
	dom := cfg.ComputeDominators(g)
	loops := loopanalysis.FindNaturalLoops(g, dom)
	assert.Len(t, loops, 1)

	reaching := dataflow.ReachingDefinitions(g, 0)
	assert.True(t, reaching.Success)

	bivs, _ := loopanalysis.FindInductionVariables(loops[0], reaching.Value)
	assert.Len(t, bivs, 1)
	assert.Equal(t, "i", bivs[0].Variable)
	assert.EqualValues(t, 1, bivs[0].Stride)
	assert.True(t, bivs[0].HasInitialValue)
	assert.EqualValues(t, 0, bivs[0].InitialValue)
}

// TestS5DerivedIVWithOffset pins §8 scenario S5, both spellings of the
// offset (`i*2+10` and `10+i*2`) yielding identical stride/offset.
func TestS5DerivedIVWithOffset(t *testing.T) {
	run := func(t *testing.T, jValue ast.Node) {
		defI := &ast.VariableDecl{Name: "i", Initializer: intLit(0)}
		defJ := &ast.VariableDecl{Name: "j", Initializer: jValue}
		incr := assignStmt("i", &ast.Binary{Op: ast.OpAdd, Left: ident("i"), Right: intLit(1)})
		loopStmt := &ast.While{
			Condition: &ast.Binary{Op: ast.OpLt, Left: ident("i"), Right: intLit(10)},
			Body:      &ast.Block{Statements: []ast.Node{defJ, incr}},
		}
		fn := &ast.FunctionDecl{Name: "f", Body: &ast.Block{Statements: []ast.Node{defI, loopStmt, &ast.Return{}}}}

		g := buildGraph(t, fn)
		dom := cfg.ComputeDominators(g)
		loops := loopanalysis.FindNaturalLoops(g, dom)
		assert.Len(t, loops, 1)

		reaching := dataflow.ReachingDefinitions(g, 0)
		assert.True(t, reaching.Success)

		bivs, divs := loopanalysis.FindInductionVariables(loops[0], reaching.Value)
		assert.Len(t, bivs, 1)
		assert.Len(t, divs, 1)
		assert.Equal(t, "j", divs[0].Variable)
		assert.Equal(t, "i", divs[0].BaseVar)
		assert.EqualValues(t, 2, divs[0].Stride)
		assert.EqualValues(t, 10, divs[0].Offset)
	}

	t.Run("i*2+10", func(t *testing.T) {
		run(t, &ast.Binary{Op: ast.OpAdd, Left: &ast.Binary{Op: ast.OpMul, Left: ident("i"), Right: intLit(2)}, Right: intLit(10)})
	})

	t.Run("10+i*2", func(t *testing.T) {
		run(t, &ast.Binary{Op: ast.OpAdd, Left: intLit(10), Right: &ast.Binary{Op: ast.OpMul, Left: ident("i"), Right: intLit(2)}})
	})
}

// TestVariableStrideIsNotBIV covers §4.6's non-BIV counter-example: a
// variable increment (`i := i + step` for a non-constant step) is not a
// basic induction variable.
func TestVariableStrideIsNotBIV(t *testing.T) {
	defStep := &ast.VariableDecl{Name: "step", Initializer: intLit(1)}
	defI := &ast.VariableDecl{Name: "i", Initializer: intLit(0)}
	incr := assignStmt("i", &ast.Binary{Op: ast.OpAdd, Left: ident("i"), Right: ident("step")})
	loopStmt := &ast.While{
		Condition: &ast.Binary{Op: ast.OpLt, Left: ident("i"), Right: intLit(10)},
		Body:      &ast.Block{Statements: []ast.Node{incr}},
	}
	fn := &ast.FunctionDecl{Name: "f", Body: &ast.Block{Statements: []ast.Node{defStep, defI, loopStmt, &ast.Return{}}}}

	g := buildGraph(t, fn)
	dom := cfg.ComputeDominators(g)
	loops := loopanalysis.FindNaturalLoops(g, dom)
	assert.Len(t, loops, 1)

	reaching := dataflow.ReachingDefinitions(g, 0)
	assert.True(t, reaching.Success)

	bivs, _ := loopanalysis.FindInductionVariables(loops[0], reaching.Value)
	assert.Empty(t, bivs)
}

// TestAccumulatorIsNotDIV covers §4.6's accumulator counter-example:
// `x := x + i` is self-referential, not a linear function of i alone, so it
// is neither a BIV nor a DIV.
func TestAccumulatorIsNotDIV(t *testing.T) {
	defI := &ast.VariableDecl{Name: "i", Initializer: intLit(0)}
	defX := &ast.VariableDecl{Name: "x", Initializer: intLit(0)}
	accumulate := assignStmt("x", &ast.Binary{Op: ast.OpAdd, Left: ident("x"), Right: ident("i")})
	incr := assignStmt("i", &ast.Binary{Op: ast.OpAdd, Left: ident("i"), Right: intLit(1)})
	loopStmt := &ast.While{
		Condition: &ast.Binary{Op: ast.OpLt, Left: ident("i"), Right: intLit(10)},
		Body:      &ast.Block{Statements: []ast.Node{accumulate, incr}},
	}
	fn := &ast.FunctionDecl{
		Name: "f",
		Body: &ast.Block{Statements: []ast.Node{defI, defX, loopStmt, &ast.Return{}}},
	}

	g := buildGraph(t, fn)
	dom := cfg.ComputeDominators(g)
	loops := loopanalysis.FindNaturalLoops(g, dom)
	assert.Len(t, loops, 1)

	reaching := dataflow.ReachingDefinitions(g, 0)
	assert.True(t, reaching.Success)

	_, divs := loopanalysis.FindInductionVariables(loops[0], reaching.Value)
	for _, d := range divs {
		assert.NotEqual(t, "x", d.Variable)
	}
}

// TestBIVStrideVariants covers §4.6's family of BIV strides beyond the
// plain `i := i + 1` pinned by TestS4LoopCarriedIV: decrement by 1 and by 2,
// and increment by 2 and by 5.
func TestBIVStrideVariants(t *testing.T) {
	cases := []struct {
		name   string
		op     ast.BinaryOp
		amount uint32
		stride int32
	}{
		{"decrement by 1", ast.OpSub, 1, -1},
		{"decrement by 2", ast.OpSub, 2, -2},
		{"increment by 2", ast.OpAdd, 2, 2},
		{"increment by 5", ast.OpAdd, 5, 5},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			defI := &ast.VariableDecl{Name: "i", Initializer: intLit(10)}
			incr := assignStmt("i", &ast.Binary{Op: tc.op, Left: ident("i"), Right: intLit(tc.amount)})
			loopStmt := &ast.While{
				Condition: &ast.Binary{Op: ast.OpGt, Left: ident("i"), Right: intLit(0)},
				Body:      &ast.Block{Statements: []ast.Node{incr}},
			}
			fn := &ast.FunctionDecl{Name: "f", Body: &ast.Block{Statements: []ast.Node{defI, loopStmt, &ast.Return{}}}}

			g := buildGraph(t, fn)
			dom := cfg.ComputeDominators(g)
			loops := loopanalysis.FindNaturalLoops(g, dom)
			assert.Len(t, loops, 1)
			assert.Equal(t, 1, loops[0].Depth)

			reaching := dataflow.ReachingDefinitions(g, 0)
			assert.True(t, reaching.Success)

			bivs, _ := loopanalysis.FindInductionVariables(loops[0], reaching.Value)
			assert.Len(t, bivs, 1)
			assert.Equal(t, tc.stride, bivs[0].Stride)
		})
	}
}

// TestDIVSpriteAddressPattern covers §4.6's sprite-address DIV shape
// (`i*64`), the per-sprite VIC-II register block stride on the C64.
func TestDIVSpriteAddressPattern(t *testing.T) {
	defI := &ast.VariableDecl{Name: "i", Initializer: intLit(0)}
	defAddr := &ast.VariableDecl{Name: "addr", Initializer: &ast.Binary{Op: ast.OpMul, Left: ident("i"), Right: intLit(64)}}
	incr := assignStmt("i", &ast.Binary{Op: ast.OpAdd, Left: ident("i"), Right: intLit(1)})
	loopStmt := &ast.While{
		Condition: &ast.Binary{Op: ast.OpLt, Left: ident("i"), Right: intLit(8)},
		Body:      &ast.Block{Statements: []ast.Node{defAddr, incr}},
	}
	fn := &ast.FunctionDecl{Name: "f", Body: &ast.Block{Statements: []ast.Node{defI, loopStmt, &ast.Return{}}}}

	g := buildGraph(t, fn)
	dom := cfg.ComputeDominators(g)
	loops := loopanalysis.FindNaturalLoops(g, dom)
	assert.Len(t, loops, 1)

	reaching := dataflow.ReachingDefinitions(g, 0)
	assert.True(t, reaching.Success)

	_, divs := loopanalysis.FindInductionVariables(loops[0], reaching.Value)
	assert.Len(t, divs, 1)
	assert.Equal(t, "addr", divs[0].Variable)
	assert.Equal(t, "i", divs[0].BaseVar)
	assert.EqualValues(t, 64, divs[0].Stride)
	assert.EqualValues(t, 0, divs[0].Offset)
}

// TestDIVRowOffsetPattern covers §4.6's screen-row-offset DIV shape
// (`i*40`), the C64 text-screen row stride.
func TestDIVRowOffsetPattern(t *testing.T) {
	defI := &ast.VariableDecl{Name: "i", Initializer: intLit(0)}
	defOffset := &ast.VariableDecl{Name: "rowOffset", Initializer: &ast.Binary{Op: ast.OpMul, Left: ident("i"), Right: intLit(40)}}
	incr := assignStmt("i", &ast.Binary{Op: ast.OpAdd, Left: ident("i"), Right: intLit(1)})
	loopStmt := &ast.While{
		Condition: &ast.Binary{Op: ast.OpLt, Left: ident("i"), Right: intLit(25)},
		Body:      &ast.Block{Statements: []ast.Node{defOffset, incr}},
	}
	fn := &ast.FunctionDecl{Name: "f", Body: &ast.Block{Statements: []ast.Node{defI, loopStmt, &ast.Return{}}}}

	g := buildGraph(t, fn)
	dom := cfg.ComputeDominators(g)
	loops := loopanalysis.FindNaturalLoops(g, dom)
	assert.Len(t, loops, 1)

	reaching := dataflow.ReachingDefinitions(g, 0)
	assert.True(t, reaching.Success)

	_, divs := loopanalysis.FindInductionVariables(loops[0], reaching.Value)
	assert.Len(t, divs, 1)
	assert.Equal(t, "rowOffset", divs[0].Variable)
	assert.EqualValues(t, 40, divs[0].Stride)
}

// TestNestedLoopsGetIncreasingDepth covers §4.6's nesting-depth requirement:
// an outer loop's Depth is 1, an inner loop nested in its body is 2, and the
// outer loop's own Nodes set still owns every block the inner loop owns.
func TestNestedLoopsGetIncreasingDepth(t *testing.T) {
	defI := &ast.VariableDecl{Name: "i", Initializer: intLit(0)}
	defJ := &ast.VariableDecl{Name: "j", Initializer: intLit(0)}
	innerIncr := assignStmt("j", &ast.Binary{Op: ast.OpAdd, Left: ident("j"), Right: intLit(1)})
	innerLoop := &ast.While{
		Condition: &ast.Binary{Op: ast.OpLt, Left: ident("j"), Right: intLit(5)},
		Body:      &ast.Block{Statements: []ast.Node{innerIncr}},
	}
	outerIncr := assignStmt("i", &ast.Binary{Op: ast.OpAdd, Left: ident("i"), Right: intLit(1)})
	outerLoop := &ast.While{
		Condition: &ast.Binary{Op: ast.OpLt, Left: ident("i"), Right: intLit(10)},
		Body:      &ast.Block{Statements: []ast.Node{defJ, innerLoop, outerIncr}},
	}
	fn := &ast.FunctionDecl{Name: "f", Body: &ast.Block{Statements: []ast.Node{defI, outerLoop, &ast.Return{}}}}

	g := buildGraph(t, fn)
	dom := cfg.ComputeDominators(g)
	loops := loopanalysis.FindNaturalLoops(g, dom)
	assert.Len(t, loops, 2)

	var depths []int
	for _, l := range loops {
		depths = append(depths, l.Depth)
	}
	assert.Contains(t, depths, 1)
	assert.Contains(t, depths, 2)

	var outer, inner *loopanalysis.Loop
	for _, l := range loops {
		if l.Depth == 1 {
			outer = l
		} else {
			inner = l
		}
	}

	for n := range inner.Nodes {
		assert.True(t, outer.Contains(n))
	}
}

func TestFindInvariantsHoistsLoopInvariantExpression(t *testing.T) {
	defN := &ast.VariableDecl{Name: "n", Initializer: intLit(5)}
	defI := &ast.VariableDecl{Name: "i", Initializer: intLit(0)}
	invariantExpr := &ast.Binary{Op: ast.OpMul, Left: ident("n"), Right: intLit(2)}
	defJ := &ast.VariableDecl{Name: "j", Initializer: invariantExpr}
	incr := assignStmt("i", &ast.Binary{Op: ast.OpAdd, Left: ident("i"), Right: intLit(1)})
	loopStmt := &ast.While{
		Condition: &ast.Binary{Op: ast.OpLt, Left: ident("i"), Right: intLit(10)},
		Body:      &ast.Block{Statements: []ast.Node{defJ, incr}},
	}
	fn := &ast.FunctionDecl{Name: "f", Body: &ast.Block{Statements: []ast.Node{defN, defI, loopStmt, &ast.Return{}}}}

	g := buildGraph(t, fn)
	dom := cfg.ComputeDominators(g)
	loops := loopanalysis.FindNaturalLoops(g, dom)
	assert.Len(t, loops, 1)

	reaching := dataflow.ReachingDefinitions(g, 0)
	assert.True(t, reaching.Success)

	inv := loopanalysis.FindInvariants(g, loops[0], reaching.Value)

	found := false

	for _, expr := range inv.HoistCandidates {
		if expr == ast.Node(invariantExpr) {
			found = true
		}
	}

	assert.True(t, found)
}

func buildGraph(t *testing.T, fn *ast.FunctionDecl) *cfg.Graph {
	t.Helper()

	res := cfg.Build(fn)
	assert.True(t, res.Success)

	return res.Value
}
