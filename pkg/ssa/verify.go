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
package ssa

import (
	"github.com/blendsdk/blend65/pkg/diag"
	"github.com/blendsdk/blend65/pkg/il"
)

// verify checks the four SSA invariants of §4.8 against an already-renamed
// function and reports violations with the error codes named there.
func verify(fn *il.Function, dom *Dominators, diags *diag.Diagnostics) {
	verifySingleAssignment(fn, diags)
	verifyPhiWellFormed(fn, diags)
	verifyDominanceAndUseBeforeDef(fn, dom, diags)
}

func verifySingleAssignment(fn *il.Function, diags *diag.Diagnostics) {
	seen := make(map[*il.VirtualRegister]bool)

	for _, b := range fn.Blocks {
		for _, instr := range b.Instructions {
			if instr.Dst == nil {
				continue
			}

			if seen[instr.Dst] {
				diags.Addf(diag.CodeMultipleDefinitions, diag.Error, instr.Metadata.Span,
					"register r%d is assigned more than once", instr.Dst.ID)

				continue
			}

			seen[instr.Dst] = true
		}
	}
}

func verifyPhiWellFormed(fn *il.Function, diags *diag.Diagnostics) {
	for _, b := range fn.Blocks {
		sawNonPhi := false

		for _, instr := range b.Instructions {
			if instr.Op != il.OpPhi {
				sawNonPhi = true
				continue
			}

			if sawNonPhi {
				diags.Addf(diag.CodePhiNotAtBlockStart, diag.Error, instr.Metadata.Span,
					"phi for register r%d does not appear at the start of block %q", dstID(instr), b.Label)
			}

			if b == fn.Entry {
				diags.Addf(diag.CodePhiInEntryBlock, diag.Error, instr.Metadata.Span,
					"phi for register r%d is not allowed in the entry block", dstID(instr))
			}

			if len(instr.Args) != len(b.Predecessors) {
				diags.Addf(diag.CodePhiOperandCountMismatch, diag.Error, instr.Metadata.Span,
					"phi for register r%d has %d operands but block %q has %d predecessors",
					dstID(instr), len(instr.Args), b.Label, len(b.Predecessors))
			}

			for i, a := range instr.Args {
				if a == nil {
					diags.Addf(diag.CodePhiMissingOperand, diag.Error, instr.Metadata.Span,
						"phi for register r%d is missing its operand for predecessor %d", dstID(instr), i)
				}
			}

			if len(instr.Args) == len(b.Predecessors) {
				for i := range instr.Args {
					if !blockHasPredecessorAt(b, i) {
						diags.Addf(diag.CodePhiInvalidPredecessor, diag.Error, instr.Metadata.Span,
							"phi for register r%d operand %d does not correspond to a valid predecessor", dstID(instr), i)
					}
				}
			}
		}
	}
}

func blockHasPredecessorAt(b *il.BasicBlock, i int) bool {
	return i >= 0 && i < len(b.Predecessors) && b.Predecessors[i] != nil
}

func dstID(instr *il.Instruction) int {
	if instr.Dst == nil {
		return -1
	}

	return instr.Dst.ID
}

// verifyDominanceAndUseBeforeDef checks, for every non-φ use of a register,
// that the defining instruction's block dominates the using instruction's
// block (or they are the same block and the def precedes the use) — and
// that every register is defined before any use reaches it in straight-line
// code (§4.8 invariants 2 and 4). φ operands are exempt: by construction
// they reference the value live at the end of a predecessor, not a
// same-block position.
func verifyDominanceAndUseBeforeDef(fn *il.Function, dom *Dominators, diags *diag.Diagnostics) {
	defBlock := make(map[*il.VirtualRegister]*il.BasicBlock)
	defIndex := make(map[*il.VirtualRegister]int)

	for _, p := range fn.Parameters {
		defBlock[p] = fn.Entry
		defIndex[p] = -1
	}

	for _, b := range fn.Blocks {
		for i, instr := range b.Instructions {
			if instr.Dst != nil {
				defBlock[instr.Dst] = b
				defIndex[instr.Dst] = i
			}
		}
	}

	for _, b := range fn.Blocks {
		for i, instr := range b.Instructions {
			if instr.Op == il.OpPhi {
				continue
			}

			for _, a := range instr.Args {
				if a == nil {
					continue
				}

				db, ok := defBlock[a]
				if !ok {
					diags.Addf(diag.CodeUseBeforeDefinition, diag.Error, instr.Metadata.Span,
						"register r%d is used before any definition reaches it", a.ID)

					continue
				}

				if db == b {
					if defIndex[a] >= i {
						diags.Addf(diag.CodeUseBeforeDefinition, diag.Error, instr.Metadata.Span,
							"register r%d is used before its definition in block %q", a.ID, b.Label)
					}

					continue
				}

				if !dom.Dominates(db, b) {
					diags.Addf(diag.CodeDominanceViolation, diag.Error, instr.Metadata.Span,
						"definition of register r%d in block %q does not dominate its use in block %q",
						a.ID, db.Label, b.Label)
				}
			}
		}
	}
}
