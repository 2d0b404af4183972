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
	"github.com/blendsdk/blend65/pkg/diag"
)

// GVNResult is the output of global value numbering (§4.5.4).
type GVNResult struct {
	// Numbers maps every expression visited to its canonical value number.
	Numbers map[ast.Node]string
	// Redundant maps an expression to the name of the variable an
	// equal-valued expression was already bound to.
	Redundant map[ast.Node]string
}

type gvnState struct {
	result    *GVNResult
	hashOwner map[string]string
	callSeq   int
}

// GlobalValueNumbering runs §4.5.4's per-function forward analysis,
// processing nodes in the CFG's creation order — which, since the builder
// emits nodes in program order, already serves as the single traversal the
// algorithm calls for (loop bodies are visited once, the back edge is not
// re-walked as a second pass).
func GlobalValueNumbering(g *cfg.Graph) diag.Result[*GVNResult] {
	diags := diag.NewDiagnostics(diag.DefaultDiagnosticCap)

	s := &gvnState{
		result:    &GVNResult{Numbers: make(map[ast.Node]string), Redundant: make(map[ast.Node]string)},
		hashOwner: make(map[string]string),
	}

	pathAfter := make(map[*cfg.Node]map[string]string)

	for _, n := range g.Nodes() {
		path := s.mergePredecessorPaths(n, pathAfter)
		s.processNode(n, path)
		pathAfter[n] = path
	}

	return diag.Of(s.result, diags)
}

func (s *gvnState) mergePredecessorPaths(n *cfg.Node, pathAfter map[*cfg.Node]map[string]string) map[string]string {
	if len(n.Predecessors) == 0 {
		return make(map[string]string)
	}

	if len(n.Predecessors) == 1 {
		return cloneVNPath(pathAfter[n.Predecessors[0]])
	}

	merged := make(map[string]string)
	seen := make(map[string]bool)

	for _, p := range n.Predecessors {
		for k := range pathAfter[p] {
			seen[k] = true
		}
	}

	for k := range seen {
		var first string

		consistent := true
		initialized := false

		for _, p := range n.Predecessors {
			v, ok := pathAfter[p][k]
			if !ok {
				continue
			}

			if !initialized {
				first = v
				initialized = true

				continue
			}

			if v != first {
				consistent = false
			}
		}

		if consistent && initialized {
			merged[k] = first
		} else {
			merged[k] = fmt.Sprintf("phi@%d:%s", n.ID, k)
		}
	}

	return merged
}

func cloneVNPath(p map[string]string) map[string]string {
	out := make(map[string]string, len(p))
	for k, v := range p {
		out[k] = v
	}

	return out
}

func (s *gvnState) processNode(n *cfg.Node, path map[string]string) {
	switch stmt := n.Statement.(type) {
	case *ast.VariableDecl:
		if stmt.Initializer == nil {
			path[stmt.Name] = "init@" + stmt.Name
			return
		}

		vn := s.numberOf(stmt.Initializer, path)
		s.bind(stmt.Initializer, stmt.Name, vn, path)
	case *ast.ExpressionStmt:
		if a, ok := stmt.Expression.(*ast.Assignment); ok {
			if id, ok := a.Target.(*ast.Identifier); ok {
				vn := s.numberOf(a.Value, path)
				s.bind(a.Value, id.Name(), vn, path)

				return
			}
		}

		s.numberOf(stmt.Expression, path)
	case *ast.If:
		s.numberOf(stmt.Condition, path)
	case *ast.While:
		s.numberOf(stmt.Condition, path)
	case *ast.DoWhile:
		s.numberOf(stmt.Condition, path)
	case *ast.For:
		s.numberOf(stmt.Condition, path)
	case *ast.Return:
		if stmt.Value != nil {
			s.numberOf(stmt.Value, path)
		}
	}
}

func (s *gvnState) bind(expr ast.Node, variable, vn string, path map[string]string) {
	path[variable] = vn

	if owner, ok := s.hashOwner[vn]; ok && owner != variable {
		s.result.Redundant[expr] = owner
	} else {
		s.hashOwner[vn] = variable
	}
}

// numberOf computes expr's canonical value number, sorting commutative
// operands so `a+b` and `b+a` agree (§4.5.4).
func (s *gvnState) numberOf(expr ast.Node, path map[string]string) string {
	var vn string

	switch e := expr.(type) {
	case *ast.Literal:
		vn = fmt.Sprintf("lit:%d:%d:%v:%s", e.Kind_, e.IntValue, e.BoolValue, e.StringValue)
	case *ast.Identifier:
		if v, ok := path[e.Name()]; ok {
			vn = v
		} else {
			vn = "var:" + e.Name()
		}
	case *ast.Binary:
		l := s.numberOf(e.Left, path)
		r := s.numberOf(e.Right, path)

		if e.Op.IsCommutative() && r < l {
			l, r = r, l
		}

		vn = fmt.Sprintf("bin:%d(%s,%s)", e.Op, l, r)
	case *ast.Unary:
		vn = fmt.Sprintf("un:%d(%s)", e.Op, s.numberOf(e.Operand, path))
	case *ast.Call:
		s.callSeq++
		vn = fmt.Sprintf("call:%d", s.callSeq)

		for _, arg := range e.Arguments {
			s.numberOf(arg, path)
		}
	case *ast.Index:
		vn = fmt.Sprintf("idx:%s[%s]", s.numberOf(e.Array, path), s.numberOf(e.At, path))
	case *ast.Member:
		vn = fmt.Sprintf("mem:%s.%s", s.numberOf(e.Object, path), e.Field)
	default:
		vn = fmt.Sprintf("node:%p", expr)
	}

	s.result.Numbers[expr] = vn

	return vn
}
