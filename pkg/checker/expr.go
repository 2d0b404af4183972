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
package checker

import (
	"github.com/blendsdk/blend65/pkg/ast"
	"github.com/blendsdk/blend65/pkg/diag"
	"github.com/blendsdk/blend65/pkg/symbols"
	"github.com/blendsdk/blend65/pkg/types"
)

// checkExpr is the expression layer of the checker (§4.3): every node
// visitor computes and caches a type, or emits an error and assigns unknown.
func (c *checker) checkExpr(scope *symbols.Scope, n ast.Node) *types.Type {
	if n == nil || ast.IsErrorNode(n) {
		return types.Unknown
	}

	if t, ok := c.result.Types[n]; ok {
		return t
	}

	switch e := n.(type) {
	case *ast.Literal:
		return c.checkLiteral(e)
	case *ast.Identifier:
		return c.checkIdentifier(scope, e)
	case *ast.Binary:
		return c.checkBinary(scope, e)
	case *ast.Unary:
		return c.checkUnary(scope, e)
	case *ast.Assignment:
		return c.checkAssignment(scope, e)
	case *ast.Call:
		return c.checkCall(scope, e)
	case *ast.Index:
		return c.checkIndex(scope, e)
	case *ast.Member:
		return c.checkMember(scope, e)
	default:
		return c.error(diag.CodeInternalError, n, "unsupported expression node")
	}
}

func (c *checker) checkLiteral(lit *ast.Literal) *types.Type {
	switch lit.Kind_ {
	case ast.LiteralBool:
		return c.setType(lit, types.Bool)
	case ast.LiteralString:
		return c.setType(lit, types.String)
	default:
		// An integer literal is as narrow as it can be, so it widens freely
		// to either byte or word context without a spurious mismatch.
		if lit.IntValue <= 0xFF {
			return c.setType(lit, types.Byte)
		}

		return c.setType(lit, types.Word)
	}
}

func (c *checker) checkIdentifier(scope *symbols.Scope, id *ast.Identifier) *types.Type {
	sym, ok := scope.Lookup(id.Name())
	if !ok {
		return c.error(diag.CodeUnresolvedIdentifier, id, "undefined identifier %q", id.Name())
	}

	if sym.Type == nil {
		return c.setType(id, types.Unknown)
	}

	return c.setType(id, sym.Type)
}

func (c *checker) checkBinary(scope *symbols.Scope, b *ast.Binary) *types.Type {
	lhs := c.checkExpr(scope, b.Left)
	rhs := c.checkExpr(scope, b.Right)

	switch b.Op {
	case ast.OpEq, ast.OpNeq, ast.OpLt, ast.OpLte, ast.OpGt, ast.OpGte, ast.OpLogicalAnd, ast.OpLogicalOr:
		if !types.IsNumeric(lhs) || !types.IsNumeric(rhs) {
			return c.error(diag.CodeTypeMismatch, b, "operator requires numeric operands")
		}

		return c.setType(b, types.ComparisonResult())
	default:
		if !types.IsNumeric(lhs) || !types.IsNumeric(rhs) {
			return c.error(diag.CodeTypeMismatch, b, "operator requires numeric operands")
		}

		return c.setType(b, types.ArithmeticResult(lhs, rhs))
	}
}

func (c *checker) checkUnary(scope *symbols.Scope, u *ast.Unary) *types.Type {
	operand := c.checkExpr(scope, u.Operand)

	switch u.Op {
	case ast.OpAddressOf:
		return c.setType(u, types.AddressOfResult())
	case ast.OpNot:
		if operand != types.Bool {
			return c.error(diag.CodeTypeMismatch, u, "! requires a bool operand")
		}

		return c.setType(u, types.Bool)
	case ast.OpLo, ast.OpHi:
		if operand != types.Word {
			return c.error(diag.CodeTypeMismatch, u, "lo/hi requires a word operand")
		}

		return c.setType(u, types.Byte)
	default:
		if !types.IsNumeric(operand) {
			return c.error(diag.CodeTypeMismatch, u, "operator requires a numeric operand")
		}

		return c.setType(u, operand)
	}
}

func (c *checker) checkAssignment(scope *symbols.Scope, a *ast.Assignment) *types.Type {
	target := c.checkExpr(scope, a.Target)
	value := c.checkExpr(scope, a.Value)

	switch types.CheckCompatibility(value, target) {
	case types.Incompatible:
		return c.error(diag.CodeTypeMismatch, a, "cannot assign %s to %s", value, target)
	case types.RequiresConversion:
		return c.error(diag.CodeNarrowingConversion, a, "narrowing %s to %s requires an explicit conversion", value, target)
	}

	return c.setType(a, types.AssignmentResult(target))
}

func (c *checker) checkCall(scope *symbols.Scope, call *ast.Call) *types.Type {
	calleeType := c.checkExpr(scope, call.Callee)

	if calleeType.Tag() != types.TagFunction {
		if calleeType == types.Unknown {
			return c.setType(call, types.Unknown)
		}

		return c.error(diag.CodeTypeMismatch, call, "call target is not a function")
	}

	params := calleeType.Parameters()
	if len(params) != len(call.Arguments) {
		return c.error(diag.CodeArityMismatch, call, "expected %d argument(s), got %d", len(params), len(call.Arguments))
	}

	for i, arg := range call.Arguments {
		argType := c.checkExpr(scope, arg)
		if types.CheckCompatibility(argType, params[i]) == types.Incompatible {
			c.diags.Add(diag.Errorf(diag.CodeTypeMismatch, arg.Location(),
				"argument %d: cannot pass %s where %s is expected", i+1, argType, params[i]))
		}
	}

	return c.setType(call, calleeType.Result())
}

func (c *checker) checkIndex(scope *symbols.Scope, idx *ast.Index) *types.Type {
	arrType := c.checkExpr(scope, idx.Array)
	atType := c.checkExpr(scope, idx.At)

	if !types.IsNumeric(atType) {
		return c.error(diag.CodeTypeMismatch, idx, "array index must be numeric")
	}

	if arrType.Tag() != types.TagArray {
		if arrType == types.Unknown {
			return c.setType(idx, types.Unknown)
		}

		return c.error(diag.CodeTypeMismatch, idx, "cannot index a non-array type %s", arrType)
	}

	return c.setType(idx, arrType.Element())
}

func (c *checker) checkMember(scope *symbols.Scope, m *ast.Member) *types.Type {
	c.checkExpr(scope, m.Object)

	// Struct-map field member types are resolved against the declared field
	// layout by the declaration that owns them, found by the same
	// "declName.fieldName" key pkg/il's builder uses to key its own fields
	// map, so a byte-annotated field (e.g. sprite.xpos) types this access
	// as byte instead of the struct-map's own word-sized storage slot.
	if id, ok := m.Object.(*ast.Identifier); ok {
		if f, ok := c.structFields[id.Name()+"."+m.Field]; ok {
			if layout, ok := c.result.Fields[f]; ok && layout.Type != nil {
				return c.setType(m, layout.Type)
			}
		}
	}

	// No matching field layout (e.g. the owning declaration failed to
	// check): fall back to word, the mapped cell's default width.
	return c.setType(m, types.Word)
}
