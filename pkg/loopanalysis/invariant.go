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
package loopanalysis

import (
	"github.com/blendsdk/blend65/pkg/ast"
	"github.com/blendsdk/blend65/pkg/cfg"
	"github.com/blendsdk/blend65/pkg/dataflow"
)

// InvariantResult records, per top-level expression inside a loop, whether
// every operand's reaching definitions lie outside the loop (§4.6).
type InvariantResult struct {
	Invariant map[ast.Node]bool
	// HoistCandidates holds every invariant expression that is also pure
	// (contains no call), the set actually safe to hoist above the loop.
	HoistCandidates []ast.Node
}

// FindInvariants walks every statement inside loop and classifies its
// top-level expression.
func FindInvariants(g *cfg.Graph, loop *Loop, reaching *dataflow.ReachingResult) *InvariantResult {
	result := &InvariantResult{Invariant: make(map[ast.Node]bool)}

	for _, n := range g.Nodes() {
		if !loop.Contains(n) {
			continue
		}

		expr := topLevelExpr(n.Statement)
		if expr == nil {
			continue
		}

		invariant, pure := classify(expr, n, loop, reaching)
		result.Invariant[expr] = invariant

		if invariant && pure {
			result.HoistCandidates = append(result.HoistCandidates, expr)
		}
	}

	return result
}

func topLevelExpr(stmt ast.Node) ast.Node {
	switch s := stmt.(type) {
	case *ast.VariableDecl:
		return s.Initializer
	case *ast.ExpressionStmt:
		if a, ok := s.Expression.(*ast.Assignment); ok {
			return a.Value
		}

		return s.Expression
	case *ast.Return:
		return s.Value
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

// classify reports whether expr is loop-invariant (every operand's reaching
// definitions lie outside the loop) and whether it is pure (no call
// anywhere in its subtree, §9(c): purity is a hint, never load-bearing).
func classify(expr ast.Node, n *cfg.Node, loop *Loop, reaching *dataflow.ReachingResult) (invariant, pure bool) {
	switch e := expr.(type) {
	case nil:
		return true, true
	case *ast.Literal:
		return true, true
	case *ast.Identifier:
		return isInvariantUse(n, e.Name(), loop, reaching), true
	case *ast.Binary:
		li, lp := classify(e.Left, n, loop, reaching)
		ri, rp := classify(e.Right, n, loop, reaching)

		return li && ri, lp && rp
	case *ast.Unary:
		return classify(e.Operand, n, loop, reaching)
	case *ast.Call:
		for _, arg := range e.Arguments {
			classify(arg, n, loop, reaching)
		}

		return false, false
	case *ast.Index:
		ai, ap := classify(e.Array, n, loop, reaching)
		ii, ip := classify(e.At, n, loop, reaching)

		return ai && ii, ap && ip
	case *ast.Member:
		return classify(e.Object, n, loop, reaching)
	default:
		return false, false
	}
}

// isInvariantUse reports whether every definition of name reaching n lies
// outside loop. A variable with no reaching definition at all (e.g. a
// parameter) is vacuously invariant.
func isInvariantUse(n *cfg.Node, name string, loop *Loop, reaching *dataflow.ReachingResult) bool {
	for _, d := range reaching.Definitions {
		if d.Variable != name {
			continue
		}

		if !reaching.In[n].Test(d.ID) {
			continue
		}

		if loop.Contains(d.Node) {
			return false
		}
	}

	// No reaching definition inside the loop was found — either every
	// reaching definition is outside it, or there is none at all (e.g. a
	// parameter), both of which count as invariant.
	return true
}
