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

// BIV is a basic induction variable: a single loop-carried definition of the
// form `i := i + c` or `i := c + i` (§4.6).
type BIV struct {
	Variable        string
	Stride          int32
	InitialValue    uint32
	HasInitialValue bool
	DefNode         *cfg.Node
}

// DIV is a derived induction variable: `j := s*i + o`, `j := i + o`, or
// `j := i`, normalized so a commutative rewrite (`j = 10 + i*2`) yields the
// same stride/offset as `j = i*2 + 10` (§4.6).
type DIV struct {
	Variable string
	BaseVar  string
	Stride   int32
	Offset   int32
	DefNode  *cfg.Node
}

// FindInductionVariables classifies every variable with exactly one
// in-loop definition as a BIV, a DIV over some BIV, or neither. reaching is
// the whole-function reaching-definitions result; only the definitions
// inside loop are consulted.
func FindInductionVariables(loop *Loop, reaching *dataflow.ReachingResult) ([]BIV, []DIV) {
	inLoopDefs := make(map[string][]dataflow.Definition)

	for _, d := range reaching.Definitions {
		if loop.Contains(d.Node) {
			inLoopDefs[d.Variable] = append(inLoopDefs[d.Variable], d)
		}
	}

	var bivs []BIV

	bivByName := make(map[string]BIV)

	for name, defs := range inLoopDefs {
		if len(defs) != 1 {
			continue
		}

		def := defs[0]

		if stride, ok := basicInductionStride(name, def.Node.Statement); ok {
			b := BIV{Variable: name, Stride: stride, DefNode: def.Node}
			b.InitialValue, b.HasInitialValue = initialValueOf(name, loop, reaching)
			bivs = append(bivs, b)
			bivByName[name] = b
		}
	}

	var divs []DIV

	for name, defs := range inLoopDefs {
		if len(defs) != 1 {
			continue
		}

		if _, isBIV := bivByName[name]; isBIV {
			continue
		}

		def := defs[0]

		if base, stride, offset, ok := derivedInductionForm(def.Node.Statement, bivByName); ok {
			divs = append(divs, DIV{Variable: name, BaseVar: base, Stride: stride, Offset: offset, DefNode: def.Node})
		}
	}

	return bivs, divs
}

// initialValueOf looks for a single definition of name reaching the loop
// header from outside the loop whose value is a literal.
func initialValueOf(name string, loop *Loop, reaching *dataflow.ReachingResult) (uint32, bool) {
	var found uint32

	ok := false

	for _, d := range reaching.Definitions {
		if d.Variable != name || loop.Contains(d.Node) {
			continue
		}

		if !reaching.Out[d.Node].Test(d.ID) {
			continue
		}

		if lit, isLit := literalInitializer(name, d.Node.Statement); isLit {
			found = lit
			ok = true
		}
	}

	return found, ok
}

func literalInitializer(name string, stmt ast.Node) (uint32, bool) {
	switch s := stmt.(type) {
	case *ast.VariableDecl:
		if s.Name != name || s.Initializer == nil {
			return 0, false
		}

		if lit, ok := s.Initializer.(*ast.Literal); ok {
			return lit.IntValue, true
		}
	case *ast.ExpressionStmt:
		if a, ok := s.Expression.(*ast.Assignment); ok {
			if id, ok := a.Target.(*ast.Identifier); ok && id.Name() == name {
				if lit, ok := a.Value.(*ast.Literal); ok {
					return lit.IntValue, true
				}
			}
		}
	}

	return 0, false
}

// basicInductionStride reports whether stmt assigns `name := name + c` or
// `name := c + name` (also accepting subtraction, as a negative stride).
func basicInductionStride(name string, stmt ast.Node) (int32, bool) {
	a, ok := assignmentTo(name, stmt)
	if !ok {
		return 0, false
	}

	bin, ok := a.Value.(*ast.Binary)
	if !ok {
		return 0, false
	}

	switch bin.Op {
	case ast.OpAdd:
		if isVarRef(bin.Left, name) {
			if c, ok := asLiteral(bin.Right); ok {
				return int32(c), true
			}
		}

		if isVarRef(bin.Right, name) {
			if c, ok := asLiteral(bin.Left); ok {
				return int32(c), true
			}
		}
	case ast.OpSub:
		if isVarRef(bin.Left, name) {
			if c, ok := asLiteral(bin.Right); ok {
				return -int32(c), true
			}
		}
	}

	return 0, false
}

// derivedInductionForm recognises `j := s*i + o`, `j := o + s*i`, `j := i +
// o`, `j := o + i`, or `j := i`, for i a known BIV, normalizing operand
// order so both commutative spellings agree.
func derivedInductionForm(stmt ast.Node, bivs map[string]BIV) (base string, stride, offset int32, ok bool) {
	a, assigned := anyAssignment(stmt)
	if !assigned {
		return "", 0, 0, false
	}

	return linearForm(a.Value, bivs)
}

func linearForm(expr ast.Node, bivs map[string]BIV) (base string, stride, offset int32, ok bool) {
	switch e := expr.(type) {
	case *ast.Identifier:
		if _, known := bivs[e.Name()]; known {
			return e.Name(), 1, 0, true
		}
	case *ast.Binary:
		if e.Op != ast.OpAdd {
			return "", 0, 0, false
		}

		if b, s, known := scaledVar(e.Left, bivs); known {
			if o, ok := asLiteral(e.Right); ok {
				return b, s, int32(o), true
			}
		}

		if b, s, known := scaledVar(e.Right, bivs); known {
			if o, ok := asLiteral(e.Left); ok {
				return b, s, int32(o), true
			}
		}
	}

	return "", 0, 0, false
}

// scaledVar recognises `s * i` / `i * s` / bare `i` for i a known BIV.
func scaledVar(expr ast.Node, bivs map[string]BIV) (base string, stride int32, ok bool) {
	if id, isID := expr.(*ast.Identifier); isID {
		if _, known := bivs[id.Name()]; known {
			return id.Name(), 1, true
		}

		return "", 0, false
	}

	bin, isBin := expr.(*ast.Binary)
	if !isBin || bin.Op != ast.OpMul {
		return "", 0, false
	}

	if id, isID := bin.Left.(*ast.Identifier); isID {
		if _, known := bivs[id.Name()]; known {
			if s, litOK := asLiteral(bin.Right); litOK {
				return id.Name(), int32(s), true
			}
		}
	}

	if id, isID := bin.Right.(*ast.Identifier); isID {
		if _, known := bivs[id.Name()]; known {
			if s, litOK := asLiteral(bin.Left); litOK {
				return id.Name(), int32(s), true
			}
		}
	}

	return "", 0, false
}

func assignmentTo(name string, stmt ast.Node) (*ast.Assignment, bool) {
	a, ok := anyAssignment(stmt)
	if !ok {
		return nil, false
	}

	id, ok := a.Target.(*ast.Identifier)
	if !ok || id.Name() != name {
		return nil, false
	}

	return a, true
}

func anyAssignment(stmt ast.Node) (*ast.Assignment, bool) {
	es, ok := stmt.(*ast.ExpressionStmt)
	if !ok {
		return nil, false
	}

	a, ok := es.Expression.(*ast.Assignment)

	return a, ok
}

func isVarRef(n ast.Node, name string) bool {
	id, ok := n.(*ast.Identifier)
	return ok && id.Name() == name
}

func asLiteral(n ast.Node) (uint32, bool) {
	lit, ok := n.(*ast.Literal)
	if !ok || lit.Kind_ != ast.LiteralInt {
		return 0, false
	}

	return lit.IntValue, true
}
