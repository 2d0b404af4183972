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
package il

import (
	"fmt"
	"strings"

	"github.com/blendsdk/blend65/pkg/ast"
)

// String renders the register in `name.id` form (or just `.id` for a
// compiler-introduced temporary with no source name), the convention used
// throughout the `blend65 il`/`blend65 ssa` dumps.
func (v *VirtualRegister) String() string {
	if v == nil {
		return "<nil>"
	}

	if v.Name == "" {
		return fmt.Sprintf(".%d", v.ID)
	}

	return fmt.Sprintf("%s.%d", v.Name, v.ID)
}

// String renders one instruction as a single line of three-address text,
// for the `blend65 il`/`blend65 ssa` subcommands and for debugging.
func (i *Instruction) String() string {
	switch i.Op {
	case OpLoadConst:
		switch i.ConstKind {
		case ast.LiteralBool:
			return fmt.Sprintf("%s = load_const %v", i.Dst, i.ConstBool)
		case ast.LiteralString:
			return fmt.Sprintf("%s = load_const %q", i.Dst, i.ConstString)
		default:
			return fmt.Sprintf("%s = load_const %d", i.Dst, i.ConstInt)
		}
	case OpMove:
		return fmt.Sprintf("%s = move %s", i.Dst, argOrNil(i.Args, 0))
	case OpBinary:
		return fmt.Sprintf("%s = binary %s, %s, %s", i.Dst, i.BinOp, argOrNil(i.Args, 0), argOrNil(i.Args, 1))
	case OpUnary:
		return fmt.Sprintf("%s = unary %s, %s", i.Dst, i.UnOp, argOrNil(i.Args, 0))
	case OpCall:
		return fmt.Sprintf("%s = call %s(%s)", i.Dst, i.Callee, joinRegisters(i.Args))
	case OpMapLoadField:
		return fmt.Sprintf("%s = map_load_field $%04X+%d", i.Dst, i.Base, i.FieldOffset)
	case OpMapStoreField:
		return fmt.Sprintf("map_store_field $%04X+%d, %s", i.Base, i.FieldOffset, argOrNil(i.Args, 0))
	case OpMapLoadRange:
		return fmt.Sprintf("%s = map_load_range $%04X[%d:%d]", i.Dst, i.Base, i.RangeFrom, i.RangeTo)
	case OpMapStoreRange:
		return fmt.Sprintf("map_store_range $%04X[%d:%d], %s", i.Base, i.RangeFrom, i.RangeTo, argOrNil(i.Args, 0))
	case OpIntrinsicLo:
		return fmt.Sprintf("%s = lo %s", i.Dst, argOrNil(i.Args, 0))
	case OpIntrinsicHi:
		return fmt.Sprintf("%s = hi %s", i.Dst, argOrNil(i.Args, 0))
	case OpIndexLoad:
		return fmt.Sprintf("%s = index_load %s[%s]", i.Dst, argOrNil(i.Args, 0), argOrNil(i.Args, 1))
	case OpIndexStore:
		return fmt.Sprintf("index_store %s[%s], %s", argOrNil(i.Args, 0), argOrNil(i.Args, 1), argOrNil(i.Args, 2))
	case OpJump:
		return fmt.Sprintf("jump %s", targetOrNil(i.Targets, 0))
	case OpBranch:
		return fmt.Sprintf("branch %s, %s, %s", argOrNil(i.Args, 0), targetOrNil(i.Targets, 0), targetOrNil(i.Targets, 1))
	case OpReturn:
		if len(i.Args) == 0 {
			return "return"
		}

		return fmt.Sprintf("return %s", argOrNil(i.Args, 0))
	case OpPhi:
		return fmt.Sprintf("%s = phi(%s)", i.Dst, joinRegisters(i.Args))
	default:
		return fmt.Sprintf("<unknown opcode %d>", i.Op)
	}
}

func argOrNil(args []*VirtualRegister, n int) *VirtualRegister {
	if n < len(args) {
		return args[n]
	}

	return nil
}

func targetOrNil(targets []*BasicBlock, n int) string {
	if n >= len(targets) || targets[n] == nil {
		return "<nil>"
	}

	return targets[n].Label
}

func joinRegisters(regs []*VirtualRegister) string {
	parts := make([]string, len(regs))
	for i, r := range regs {
		parts[i] = r.String()
	}

	return strings.Join(parts, ", ")
}

// String renders the block's label followed by one indented line per
// instruction.
func (b *BasicBlock) String() string {
	var sb strings.Builder

	fmt.Fprintf(&sb, "%s:\n", b.Label)

	for _, instr := range b.Instructions {
		fmt.Fprintf(&sb, "    %s\n", instr)
	}

	return sb.String()
}

// String renders the function's signature and, unless it's a stub, every
// block in lowering order.
func (f *Function) String() string {
	var sb strings.Builder

	vis := ""
	if f.Exported {
		vis = "export "
	}

	params := make([]string, len(f.Parameters))
	for i, p := range f.Parameters {
		params[i] = p.String()
	}

	fmt.Fprintf(&sb, "%sfunc %s(%s) -> %s", vis, f.Name, strings.Join(params, ", "), f.ReturnType)

	if f.IsStub {
		sb.WriteString(" (stub)\n")
		return sb.String()
	}

	sb.WriteString(" {\n")

	for _, b := range f.Blocks {
		sb.WriteString(b.String())
	}

	sb.WriteString("}\n")

	return sb.String()
}

// String renders the module's globals and every function in declaration
// order, the format the `blend65 il` subcommand prints.
func (m *Module) String() string {
	var sb strings.Builder

	fmt.Fprintf(&sb, "module %s\n\n", strings.Join(m.Path, "."))

	for _, g := range m.Globals {
		vis := ""
		if g.Exported {
			vis = "export "
		}

		fmt.Fprintf(&sb, "%sglobal %s: %s\n", vis, g.Name, g.Type)
	}

	if len(m.Globals) > 0 {
		sb.WriteString("\n")
	}

	for _, fn := range m.Functions {
		sb.WriteString(fn.String())
		sb.WriteString("\n")
	}

	return sb.String()
}
