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

// Package dataflow implements C5: the shared worklist skeleton and the five
// analyses built on top of it (§4.5).  The bitset-per-node GEN/KILL shape is
// grounded on the reaching-definitions/live-variable builders in
// other_examples' godoctor cfg/df.go (willf/bitset), adapted here onto
// github.com/bits-and-blooms/bitset and this module's own CFG shape.
package dataflow

import (
	"github.com/blendsdk/blend65/pkg/ast"
	"github.com/blendsdk/blend65/pkg/cfg"
	"github.com/blendsdk/blend65/pkg/diag"
)

// functionLocation returns the location of the first node in g that carries
// a real statement, for diagnostics that are about the function as a whole
// (e.g. a non-convergent analysis) rather than about one specific node.
func functionLocation(g *cfg.Graph) diag.Location {
	for _, n := range g.Nodes() {
		if n.Statement != nil {
			return n.Statement.Location()
		}
	}

	return diag.Location{}
}

// IndexSpace assigns a stable, dense integer index to each distinct name it
// sees, so a set of names can be represented as a bitset.BitSet.
type IndexSpace struct {
	index map[string]uint
	names []string
}

// NewIndexSpace constructs an empty space.
func NewIndexSpace() *IndexSpace {
	return &IndexSpace{index: make(map[string]uint)}
}

// Index returns name's bit position, assigning it a fresh one on first use.
func (s *IndexSpace) Index(name string) uint {
	if i, ok := s.index[name]; ok {
		return i
	}

	i := uint(len(s.names))
	s.index[name] = i
	s.names = append(s.names, name)

	return i
}

// Len returns the number of distinct names seen so far.
func (s *IndexSpace) Len() uint { return uint(len(s.names)) }

// Name returns the name assigned to bit i.
func (s *IndexSpace) Name(i uint) string { return s.names[i] }

// usesDefs extracts the variables read and the (single) variable written by
// one CFG node's source statement, per §4.5's USE/DEF definition.  A nil
// statement (synthetic Merge node) defines and uses nothing.
func usesDefs(stmt ast.Node) (uses, defs []string) {
	switch s := stmt.(type) {
	case nil:
		return nil, nil
	case *ast.VariableDecl:
		if s.Initializer != nil {
			uses = collectReads(s.Initializer)
		}

		defs = []string{s.Name}
	case *ast.ExpressionStmt:
		return usesDefsExpr(s.Expression)
	case *ast.Return:
		if s.Value != nil {
			uses = collectReads(s.Value)
		}
	case *ast.If:
		uses = collectReads(s.Condition)
	case *ast.While:
		uses = collectReads(s.Condition)
	case *ast.DoWhile:
		uses = collectReads(s.Condition)
	case *ast.For:
		uses = collectReads(s.Condition)
	case *ast.Match:
		uses = collectReads(s.Scrutinee)
	default:
		uses = collectReads(stmt)
	}

	return uses, defs
}

func usesDefsExpr(expr ast.Node) (uses, defs []string) {
	if a, ok := expr.(*ast.Assignment); ok {
		if id, ok := a.Target.(*ast.Identifier); ok {
			return collectReads(a.Value), []string{id.Name()}
		}

		return append(collectReads(a.Target), collectReads(a.Value)...), nil
	}

	return collectReads(expr), nil
}

// collectReads walks expr collecting every identifier name referenced.
func collectReads(expr ast.Node) []string {
	var names []string

	ast.Walk(expr, func(n ast.Node) bool {
		if id, ok := n.(*ast.Identifier); ok {
			names = append(names, id.Name())
		}

		return true
	})

	return names
}
