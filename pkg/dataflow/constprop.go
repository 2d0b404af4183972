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
package dataflow

import (
	"github.com/blendsdk/blend65/pkg/ast"
	"github.com/blendsdk/blend65/pkg/cfg"
	"github.com/blendsdk/blend65/pkg/diag"
)

// constState maps a variable name to its current lattice value.  Absent
// means Bottom (§4.5.3: "⊥ < Const(v) < ⊤").
type constState map[string]ast.ConstLatticeValue

func (s constState) get(name string) ast.ConstLatticeValue {
	if v, ok := s[name]; ok {
		return v
	}

	return ast.ConstLatticeValue{Bottom: true}
}

func cloneState(s constState) constState {
	out := make(constState, len(s))
	for k, v := range s {
		out[k] = v
	}

	return out
}

// meetConst computes the meet of two lattice values: Const(a) ∧ Const(b) is
// Const(a) iff a = b, else ⊤ (§4.5.3).
func meetConst(a, b ast.ConstLatticeValue) ast.ConstLatticeValue {
	if a.Bottom {
		return b
	}

	if b.Bottom {
		return a
	}

	if a.Top || b.Top {
		return ast.ConstLatticeValue{Top: true}
	}

	if a.Value == b.Value {
		return a
	}

	return ast.ConstLatticeValue{Top: true}
}

func mergeStates(states []constState) constState {
	out := make(constState)

	seen := make(map[string]bool)
	for _, s := range states {
		for k := range s {
			seen[k] = true
		}
	}

	for k := range seen {
		var acc ast.ConstLatticeValue

		acc.Bottom = true

		for _, s := range states {
			acc = meetConst(acc, s.get(k))
		}

		out[k] = acc
	}

	return out
}

// ConstPropResult is the output of constant propagation.
type ConstPropResult struct {
	In  map[*cfg.Node]constState
	Out map[*cfg.Node]constState
	// StaticBranches holds, for every Branch/LoopEntry node whose guard
	// evaluates to a known boolean constant, that constant value.
	StaticBranches map[*cfg.Node]bool
	Iterations     int
}

// ConstantPropagation runs the forward, value-equality-meet analysis of
// §4.5.3.
func ConstantPropagation(g *cfg.Graph, maxIter int) diag.Result[*ConstPropResult] {
	diags := diag.NewDiagnostics(diag.DefaultDiagnosticCap)

	if maxIter <= 0 {
		maxIter = DefaultMaxIterations
	}

	in := make(map[*cfg.Node]constState)
	out := make(map[*cfg.Node]constState)

	for _, n := range g.Nodes() {
		in[n] = make(constState)
		out[n] = make(constState)
	}

	converged := false
	iterations := 0

	for iterations < maxIter {
		iterations++
		changed := false

		for _, n := range g.Nodes() {
			predStates := make([]constState, 0, len(n.Predecessors))
			for _, p := range n.Predecessors {
				predStates = append(predStates, out[p])
			}

			newIn := mergeStates(predStates)
			newOut := transferConst(n.Statement, newIn)

			if !statesEqual(newIn, in[n]) {
				in[n] = newIn
				changed = true
			}

			if !statesEqual(newOut, out[n]) {
				out[n] = newOut
				changed = true
			}
		}

		if !changed {
			converged = true
			break
		}
	}

	if !converged {
		diags.Add(diag.Errorf(diag.CodeIterationCapExceeded, functionLocation(g),
			"constant propagation did not converge within %d iterations", maxIter))
	}

	result := &ConstPropResult{In: in, Out: out, Iterations: iterations, StaticBranches: make(map[*cfg.Node]bool)}

	for _, n := range g.Nodes() {
		if n.NodeKind != cfg.KindBranch && n.NodeKind != cfg.KindLoopEntry {
			continue
		}

		cond := conditionOf(n.Statement)
		if cond == nil {
			continue
		}

		if v, ok := evalConst(cond, in[n]); ok && !v.Top && !v.Bottom {
			result.StaticBranches[n] = v.Value != 0
		}
	}

	return diag.Of(result, diags)
}

func statesEqual(a, b constState) bool {
	if len(a) != len(b) {
		return false
	}

	for k, v := range a {
		other, ok := b[k]
		if !ok || other != v {
			return false
		}
	}

	return true
}

func conditionOf(stmt ast.Node) ast.Node {
	switch s := stmt.(type) {
	case *ast.If:
		return s.Condition
	case *ast.While:
		return s.Condition
	case *ast.DoWhile:
		return s.Condition
	case *ast.For:
		return s.Condition
	default:
		return nil
	}
}

// transferConst applies one node's statement to a constant-propagation
// state, returning the resulting OUT state (§4.5.3).
func transferConst(stmt ast.Node, in constState) constState {
	out := cloneState(in)

	switch s := stmt.(type) {
	case *ast.VariableDecl:
		if s.Initializer == nil {
			out[s.Name] = ast.ConstLatticeValue{Top: true}
			return out
		}

		if v, ok := evalConst(s.Initializer, in); ok {
			out[s.Name] = v
		} else {
			out[s.Name] = ast.ConstLatticeValue{Top: true}
		}
	case *ast.ExpressionStmt:
		if a, ok := s.Expression.(*ast.Assignment); ok {
			if id, ok := a.Target.(*ast.Identifier); ok {
				if v, ok := evalConst(a.Value, in); ok {
					out[id.Name()] = v
				} else {
					out[id.Name()] = ast.ConstLatticeValue{Top: true}
				}
			}
		}
	}

	return out
}

// evalConst attempts to fold expr to a literal value given the current
// state; ok is false if any subexpression is not a known constant.
func evalConst(expr ast.Node, state constState) (ast.ConstLatticeValue, bool) {
	switch e := expr.(type) {
	case *ast.Literal:
		if e.Kind_ == ast.LiteralBool {
			v := uint32(0)
			if e.BoolValue {
				v = 1
			}

			return ast.ConstLatticeValue{Value: v}, true
		}

		return ast.ConstLatticeValue{Value: e.IntValue}, true
	case *ast.Identifier:
		v := state.get(e.Name())
		if v.Bottom || v.Top {
			return ast.ConstLatticeValue{}, false
		}

		return v, true
	case *ast.Binary:
		lhs, lok := evalConst(e.Left, state)
		rhs, rok := evalConst(e.Right, state)

		if !lok || !rok {
			return ast.ConstLatticeValue{}, false
		}

		return foldBinary(e.Op, lhs.Value, rhs.Value)
	case *ast.Unary:
		operand, ok := evalConst(e.Operand, state)
		if !ok {
			return ast.ConstLatticeValue{}, false
		}

		return foldUnary(e.Op, operand.Value)
	default:
		return ast.ConstLatticeValue{}, false
	}
}

func foldBinary(op ast.BinaryOp, l, r uint32) (ast.ConstLatticeValue, bool) {
	var v uint32

	switch op {
	case ast.OpAdd:
		v = l + r
	case ast.OpSub:
		v = l - r
	case ast.OpMul:
		v = l * r
	case ast.OpDiv:
		if r == 0 {
			return ast.ConstLatticeValue{}, false
		}

		v = l / r
	case ast.OpMod:
		if r == 0 {
			return ast.ConstLatticeValue{}, false
		}

		v = l % r
	case ast.OpAnd:
		v = l & r
	case ast.OpOr:
		v = l | r
	case ast.OpXor:
		v = l ^ r
	case ast.OpShl:
		v = l << r
	case ast.OpShr:
		v = l >> r
	case ast.OpEq:
		v = boolToUint(l == r)
	case ast.OpNeq:
		v = boolToUint(l != r)
	case ast.OpLt:
		v = boolToUint(l < r)
	case ast.OpLte:
		v = boolToUint(l <= r)
	case ast.OpGt:
		v = boolToUint(l > r)
	case ast.OpGte:
		v = boolToUint(l >= r)
	case ast.OpLogicalAnd:
		v = boolToUint(l != 0 && r != 0)
	case ast.OpLogicalOr:
		v = boolToUint(l != 0 || r != 0)
	default:
		return ast.ConstLatticeValue{}, false
	}

	return ast.ConstLatticeValue{Value: v}, true
}

func foldUnary(op ast.UnaryOp, v uint32) (ast.ConstLatticeValue, bool) {
	switch op {
	case ast.OpNeg:
		return ast.ConstLatticeValue{Value: uint32(-int32(v))}, true
	case ast.OpNot:
		return ast.ConstLatticeValue{Value: boolToUint(v == 0)}, true
	case ast.OpBitNot:
		return ast.ConstLatticeValue{Value: ^v}, true
	default:
		return ast.ConstLatticeValue{}, false
	}
}

func boolToUint(b bool) uint32 {
	if b {
		return 1
	}

	return 0
}
