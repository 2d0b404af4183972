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
	"fmt"

	"github.com/blendsdk/blend65/pkg/ast"
	"github.com/blendsdk/blend65/pkg/cfg"
)

// CSEResult maps a redundant expression to the earlier, equal expression in
// the same basic block whose value it can reuse (§4.5.5).
type CSEResult struct {
	Candidates map[ast.Node]ast.Node
}

// CommonSubexpressionElimination runs the local, per-block analysis of
// §4.5.5.  A "block" here is a maximal straight-line run of single-
// predecessor, single-successor nodes; the available-expression table
// resets at every branch, merge, or loop node, and is flushed early by any
// call (impure) expression.
func CommonSubexpressionElimination(g *cfg.Graph) *CSEResult {
	result := &CSEResult{Candidates: make(map[ast.Node]ast.Node)}
	available := make(map[string]ast.Node)

	for _, n := range g.Nodes() {
		if startsNewBlock(n) {
			available = make(map[string]ast.Node)
		}

		impure := scanNode(n.Statement, available, result)
		if impure {
			available = make(map[string]ast.Node)
		}
	}

	return result
}

func startsNewBlock(n *cfg.Node) bool {
	switch n.NodeKind {
	case cfg.KindBranch, cfg.KindMerge, cfg.KindLoopEntry, cfg.KindLoopExit, cfg.KindEntry:
		return true
	default:
		return len(n.Predecessors) != 1 || len(n.Predecessors[0].Successors) != 1
	}
}

// scanNode records every pure subexpression of stmt into available,
// flagging a CSE candidate on a hit; it returns true if stmt contains a call
// (which flushes the table for whatever follows).
func scanNode(stmt ast.Node, available map[string]ast.Node, result *CSEResult) bool {
	switch s := stmt.(type) {
	case *ast.VariableDecl:
		if s.Initializer != nil {
			return checkExpr(s.Initializer, available, result)
		}
	case *ast.ExpressionStmt:
		if a, ok := s.Expression.(*ast.Assignment); ok {
			return checkExpr(a.Value, available, result)
		}

		return checkExpr(s.Expression, available, result)
	case *ast.Return:
		if s.Value != nil {
			return checkExpr(s.Value, available, result)
		}
	case *ast.If:
		return checkExpr(s.Condition, available, result)
	case *ast.While:
		return checkExpr(s.Condition, available, result)
	case *ast.DoWhile:
		return checkExpr(s.Condition, available, result)
	case *ast.For:
		return checkExpr(s.Condition, available, result)
	}

	return false
}

// checkExpr walks expr bottom-up; every pure binary/unary/index node is
// looked up in the available-expression table before being inserted.  It
// returns true if expr contains a call anywhere.
func checkExpr(expr ast.Node, available map[string]ast.Node, result *CSEResult) bool {
	switch e := expr.(type) {
	case *ast.Call:
		for _, arg := range e.Arguments {
			checkExpr(arg, available, result)
		}

		return true
	case *ast.Binary:
		impureL := checkExpr(e.Left, available, result)
		impureR := checkExpr(e.Right, available, result)

		if impureL || impureR {
			return true
		}

		h := cseHash(expr)
		if prior, ok := available[h]; ok {
			result.Candidates[expr] = prior
		} else {
			available[h] = expr
		}

		return false
	case *ast.Unary:
		if checkExpr(e.Operand, available, result) {
			return true
		}

		h := cseHash(expr)
		if prior, ok := available[h]; ok {
			result.Candidates[expr] = prior
		} else {
			available[h] = expr
		}

		return false
	case *ast.Index:
		impureA := checkExpr(e.Array, available, result)
		impureI := checkExpr(e.At, available, result)

		if impureA || impureI {
			return true
		}

		h := cseHash(expr)
		if prior, ok := available[h]; ok {
			result.Candidates[expr] = prior
		} else {
			available[h] = expr
		}

		return false
	default:
		return false
	}
}

// cseHash is a purely syntactic hash — unlike GVN's numberOf, it never
// substitutes a variable's current value number, since local CSE only needs
// to recognise the same source text recomputed within one straight-line run.
func cseHash(expr ast.Node) string {
	switch e := expr.(type) {
	case *ast.Literal:
		return fmt.Sprintf("lit:%d:%d:%v:%s", e.Kind_, e.IntValue, e.BoolValue, e.StringValue)
	case *ast.Identifier:
		return "var:" + e.Name()
	case *ast.Binary:
		l := cseHash(e.Left)
		r := cseHash(e.Right)

		if e.Op.IsCommutative() && r < l {
			l, r = r, l
		}

		return fmt.Sprintf("bin:%d(%s,%s)", e.Op, l, r)
	case *ast.Unary:
		return fmt.Sprintf("un:%d(%s)", e.Op, cseHash(e.Operand))
	case *ast.Index:
		return fmt.Sprintf("idx:%s[%s]", cseHash(e.Array), cseHash(e.At))
	default:
		return fmt.Sprintf("node:%p", expr)
	}
}
