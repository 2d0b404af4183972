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

import "github.com/blendsdk/blend65/pkg/il"

// renamer threads the per-variable stack of fresh SSA names through the
// dominator-tree pre-order walk (§4.8's "Renaming").
type renamer struct {
	dom    *Dominators
	phiVar map[*il.Instruction]*il.VirtualRegister
	stacks map[*il.VirtualRegister][]*il.VirtualRegister
	nextID int
}

// rename performs the dominator-tree pre-order renaming pass. It also
// replaces fn.Parameters with their version-0 SSA registers, since
// parameters are (implicitly) defined at the top of Entry.
func rename(fn *il.Function, dom *Dominators, phiVar map[*il.Instruction]*il.VirtualRegister) {
	if fn.Entry == nil {
		return
	}

	r := &renamer{
		dom:    dom,
		phiVar: phiVar,
		stacks: make(map[*il.VirtualRegister][]*il.VirtualRegister),
		nextID: nextRegisterID(fn),
	}

	for i, p := range fn.Parameters {
		fn.Parameters[i] = r.fresh(p)
	}

	r.visit(fn.Entry)
}

// nextRegisterID scans every register currently referenced in fn (as a
// destination, an argument, a parameter, or a φ's preserved original
// variable) and returns one past the largest ID found, so freshly minted
// SSA registers never collide with pre-SSA ones.
func nextRegisterID(fn *il.Function) int {
	max := -1

	bump := func(v *il.VirtualRegister) {
		if v != nil && v.ID > max {
			max = v.ID
		}
	}

	for _, p := range fn.Parameters {
		bump(p)
	}

	for _, b := range fn.Blocks {
		for _, instr := range b.Instructions {
			bump(instr.Dst)

			for _, a := range instr.Args {
				bump(a)
			}
		}
	}

	return max + 1
}

func (r *renamer) fresh(orig *il.VirtualRegister) *il.VirtualRegister {
	nr := &il.VirtualRegister{ID: r.nextID, Name: orig.Name, Type: orig.Type}
	r.nextID++
	r.stacks[orig] = append(r.stacks[orig], nr)

	return nr
}

func (r *renamer) top(orig *il.VirtualRegister) *il.VirtualRegister {
	s := r.stacks[orig]
	if len(s) == 0 {
		return orig
	}

	return s[len(s)-1]
}

func (r *renamer) pop(orig *il.VirtualRegister) {
	s := r.stacks[orig]
	if len(s) == 0 {
		return
	}

	r.stacks[orig] = s[:len(s)-1]
}

func phiInstructions(b *il.BasicBlock) []*il.Instruction {
	var phis []*il.Instruction

	for _, instr := range b.Instructions {
		if instr.Op != il.OpPhi {
			break
		}

		phis = append(phis, instr)
	}

	return phis
}

func predecessorIndex(succ, pred *il.BasicBlock) int {
	for i, p := range succ.Predecessors {
		if p == pred {
			return i
		}
	}

	return -1
}

func (r *renamer) visit(b *il.BasicBlock) {
	var pushed []*il.VirtualRegister

	for _, phi := range phiInstructions(b) {
		orig := r.phiVar[phi]
		phi.Dst = r.fresh(orig)
		pushed = append(pushed, orig)
	}

	for _, instr := range b.Instructions {
		if instr.Op == il.OpPhi {
			continue
		}

		for i, a := range instr.Args {
			if a != nil {
				instr.Args[i] = r.top(a)
			}
		}

		if instr.Dst != nil {
			orig := instr.Dst
			instr.Dst = r.fresh(orig)
			pushed = append(pushed, orig)
		}
	}

	for _, succ := range b.Successors {
		idx := predecessorIndex(succ, b)
		if idx < 0 {
			continue
		}

		for _, phi := range phiInstructions(succ) {
			orig := r.phiVar[phi]
			phi.Args[idx] = r.top(orig)
		}
	}

	for _, child := range r.dom.Children(b) {
		r.visit(child)
	}

	for i := len(pushed) - 1; i >= 0; i-- {
		r.pop(pushed[i])
	}
}
