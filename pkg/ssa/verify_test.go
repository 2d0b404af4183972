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
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/blendsdk/blend65/pkg/diag"
	"github.com/blendsdk/blend65/pkg/il"
)

// buildDiamond returns a hand-built diamond-shaped SSA function:
// entry -> then, else -> merge, with a well-formed φ for x at merge
// (§8 scenario S3, "Diamond with φ").
func buildDiamond() (*il.Function, *il.Instruction) {
	entry := &il.BasicBlock{Label: "entry"}
	thenB := &il.BasicBlock{Label: "then", Predecessors: []*il.BasicBlock{entry}}
	elseB := &il.BasicBlock{Label: "else", Predecessors: []*il.BasicBlock{entry}}
	merge := &il.BasicBlock{Label: "merge", Predecessors: []*il.BasicBlock{thenB, elseB}}

	entry.Successors = []*il.BasicBlock{thenB, elseB}
	thenB.Successors = []*il.BasicBlock{merge}
	elseB.Successors = []*il.BasicBlock{merge}

	rThen := &il.VirtualRegister{ID: 1, Name: "x"}
	rElse := &il.VirtualRegister{ID: 2, Name: "x"}
	rMerge := &il.VirtualRegister{ID: 3, Name: "x"}

	thenB.Instructions = []*il.Instruction{{Op: il.OpLoadConst, Dst: rThen, ConstInt: 1}}
	elseB.Instructions = []*il.Instruction{{Op: il.OpLoadConst, Dst: rElse, ConstInt: 2}}

	phi := &il.Instruction{Op: il.OpPhi, Dst: rMerge, Args: []*il.VirtualRegister{rThen, rElse}}
	ret := &il.Instruction{Op: il.OpReturn, Args: []*il.VirtualRegister{rMerge}}
	merge.Instructions = []*il.Instruction{phi, ret}

	fn := &il.Function{Name: "f", Entry: entry, Blocks: []*il.BasicBlock{entry, thenB, elseB, merge}}

	return fn, phi
}

func TestS3WellFormedDiamondPhiVerifiesClean(t *testing.T) {
	fn, _ := buildDiamond()
	dom := ComputeDominators(fn)
	diags := diag.NewDiagnostics(diag.DefaultDiagnosticCap)

	verify(fn, dom, diags)

	assert.False(t, diags.HasErrors())
}

func TestMissingPhiOperandIsReported(t *testing.T) {
	fn, phi := buildDiamond()
	phi.Args[1] = nil
	dom := ComputeDominators(fn)
	diags := diag.NewDiagnostics(diag.DefaultDiagnosticCap)

	verify(fn, dom, diags)

	assert.True(t, hasCode(diags, diag.CodePhiMissingOperand))
}

func TestPhiOperandCountMismatchIsReported(t *testing.T) {
	fn, phi := buildDiamond()
	phi.Args = phi.Args[:1]
	dom := ComputeDominators(fn)
	diags := diag.NewDiagnostics(diag.DefaultDiagnosticCap)

	verify(fn, dom, diags)

	assert.True(t, hasCode(diags, diag.CodePhiOperandCountMismatch))
}

func TestPhiNotAtBlockStartIsReported(t *testing.T) {
	fn, phi := buildDiamond()

	merge := fn.Blocks[3]
	nonPhi := &il.Instruction{Op: il.OpLoadConst, Dst: &il.VirtualRegister{ID: 9, Name: "tmp"}, ConstInt: 0}
	merge.Instructions = []*il.Instruction{nonPhi, phi, merge.Instructions[1]}

	dom := ComputeDominators(fn)
	diags := diag.NewDiagnostics(diag.DefaultDiagnosticCap)

	verify(fn, dom, diags)

	assert.True(t, hasCode(diags, diag.CodePhiNotAtBlockStart))
}

func TestPhiInEntryBlockIsReported(t *testing.T) {
	fn, _ := buildDiamond()

	entry := fn.Blocks[0]
	badPhi := &il.Instruction{Op: il.OpPhi, Dst: &il.VirtualRegister{ID: 8, Name: "bogus"}, Args: nil}
	entry.Instructions = append([]*il.Instruction{badPhi}, entry.Instructions...)

	dom := ComputeDominators(fn)
	diags := diag.NewDiagnostics(diag.DefaultDiagnosticCap)

	verify(fn, dom, diags)

	assert.True(t, hasCode(diags, diag.CodePhiInEntryBlock))
}

func TestDominanceViolationIsReported(t *testing.T) {
	fn, _ := buildDiamond()

	thenB := fn.Blocks[1]
	elseB := fn.Blocks[2]
	thenB.Instructions = append(thenB.Instructions, &il.Instruction{
		Op:   il.OpMove,
		Dst:  &il.VirtualRegister{ID: 10, Name: "y"},
		Args: []*il.VirtualRegister{elseB.Instructions[0].Dst},
	})

	dom := ComputeDominators(fn)
	diags := diag.NewDiagnostics(diag.DefaultDiagnosticCap)

	verify(fn, dom, diags)

	assert.True(t, hasCode(diags, diag.CodeDominanceViolation))
}

func hasCode(diags *diag.Diagnostics, code diag.Code) bool {
	for _, d := range diags.All() {
		if d.Code == code {
			return true
		}
	}

	return false
}
