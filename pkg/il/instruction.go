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
	"github.com/blendsdk/blend65/pkg/ast"
	"github.com/blendsdk/blend65/pkg/diag"
)

// Opcode discriminates the shape of one instruction's operands (§4.7).
type Opcode uint8

// Recognised opcodes.
const (
	OpLoadConst Opcode = iota
	OpMove
	OpBinary
	OpUnary
	OpCall
	// OpMapLoadField / OpMapStoreField / OpMapLoadRange / OpMapStoreRange
	// lower memory-mapped (@map) accesses, carrying the literal base
	// address and field offset/range in the instruction itself (§4.7).
	OpMapLoadField
	OpMapStoreField
	OpMapLoadRange
	OpMapStoreRange
	// OpIntrinsicLo / OpIntrinsicHi lower the `lo`/`hi` built-ins: source is
	// a word register, destination a byte register (§4.7).
	OpIntrinsicLo
	OpIntrinsicHi
	OpIndexLoad
	OpIndexStore
	OpJump
	OpBranch
	OpReturn
	// OpPhi is inserted by pkg/ssa's φ-placement pass (§4.8); it has no home
	// in the pre-SSA builder. Args holds one operand per predecessor,
	// aligned by index with the owning block's Predecessors slice.
	OpPhi
)

// String renders an opcode for IL dumps.
func (o Opcode) String() string {
	switch o {
	case OpLoadConst:
		return "load_const"
	case OpMove:
		return "move"
	case OpBinary:
		return "binary"
	case OpUnary:
		return "unary"
	case OpCall:
		return "call"
	case OpMapLoadField:
		return "map_load_field"
	case OpMapStoreField:
		return "map_store_field"
	case OpMapLoadRange:
		return "map_load_range"
	case OpMapStoreRange:
		return "map_store_range"
	case OpIntrinsicLo:
		return "INTRINSIC_LO"
	case OpIntrinsicHi:
		return "INTRINSIC_HI"
	case OpIndexLoad:
		return "index_load"
	case OpIndexStore:
		return "index_store"
	case OpJump:
		return "jump"
	case OpBranch:
		return "branch"
	case OpReturn:
		return "return"
	case OpPhi:
		return "phi"
	default:
		return "unknown"
	}
}

// FrequencyBand estimates how often a block executes, for cycle-budget and
// code-layout decisions downstream (§4.7, §4.9).
type FrequencyBand uint8

// Recognised bands.
const (
	FrequencyCold FrequencyBand = iota
	FrequencyWarm
	FrequencyHot
)

// Metadata is the bag of optional annotations every instruction carries
// (§4.7's closing sentence, enumerated exhaustively — fields left at their
// zero value are simply absent, per §9's "fixed struct of optional fields"
// design note rather than a dynamic map).
type Metadata struct {
	Span            diag.Location
	AddressingMode  string
	LoopDepth       int
	Frequency       FrequencyBand
	RasterCritical  bool
	CycleEstimate   int
	LiveRangeHint   string
	AliasRegion     string
}

// Instruction is one three-address operation. Only the fields relevant to
// Op are meaningful; the rest are zero.
type Instruction struct {
	ID  int
	Op  Opcode
	Dst *VirtualRegister
	// Args holds the operand registers: binary ops use Args[0], Args[1];
	// unary/move/intrinsic/index-load use Args[0]; index-store uses
	// Args[0] (array), Args[1] (index), Args[2] (value); map_store_field
	// uses Args[0] (value); map_store_range uses Args[0] (value); call
	// uses Args as the argument list.
	Args []*VirtualRegister

	BinOp ast.BinaryOp
	UnOp  ast.UnaryOp

	ConstKind   ast.LiteralKind
	ConstInt    uint32
	ConstBool   bool
	ConstString string

	// Callee is the called function's name (OpCall).
	Callee string

	// Base/FieldOffset/RangeFrom/RangeTo describe a memory-mapped access:
	// base is the @map declaration's address, FieldOffset its field's
	// offset (map_load_field/map_store_field), and RangeFrom/RangeTo an
	// explicit from..to span (map_load_range/map_store_range).
	Base        uint32
	FieldOffset uint32
	RangeFrom   uint32
	RangeTo     uint32

	// Targets holds successor blocks for control-flow instructions:
	// OpJump has one, OpBranch has two (true, false), OpReturn has none.
	Targets []*BasicBlock

	Metadata Metadata
}

// IsTerminator reports whether this instruction ends a block.
func (i *Instruction) IsTerminator() bool {
	return i.Op == OpJump || i.Op == OpBranch || i.Op == OpReturn
}
