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

// placePhis inserts, for every pre-SSA variable (identified by its original
// *il.VirtualRegister) with at least one definition site, a placeholder φ
// at the top of each block in the iterated dominance-frontier closure of
// its defining blocks (§4.8). φ operands are left nil; renaming fills them.
//
// It returns, for every inserted φ instruction, the original (pre-rename)
// variable it stands for — renaming needs this because a φ already visited
// (e.g. a loop header, visited before its body due to dominance) has its
// Dst overwritten with a fresh SSA register before the body ever reaches
// the point where it must fill that φ's operand.
func placePhis(fn *il.Function, dom *Dominators) map[*il.Instruction]*il.VirtualRegister {
	order, defSites := collectDefSites(fn)
	phiVar := make(map[*il.Instruction]*il.VirtualRegister)

	for _, v := range order {
		placePhiForVariable(dom, v, defSites[v], phiVar)
	}

	return phiVar
}

// collectDefSites walks the function in block order and returns every
// distinct defined register (in first-seen order, for deterministic
// iteration) along with every block that defines it. Parameters are treated
// as defined in Entry.
func collectDefSites(fn *il.Function) ([]*il.VirtualRegister, map[*il.VirtualRegister][]*il.BasicBlock) {
	var order []*il.VirtualRegister

	seen := make(map[*il.VirtualRegister]bool)
	sites := make(map[*il.VirtualRegister][]*il.BasicBlock)

	note := func(v *il.VirtualRegister, b *il.BasicBlock) {
		if v == nil {
			return
		}

		if !seen[v] {
			seen[v] = true
			order = append(order, v)
		}

		sites[v] = append(sites[v], b)
	}

	if fn.Entry != nil {
		for _, p := range fn.Parameters {
			note(p, fn.Entry)
		}
	}

	for _, b := range fn.Blocks {
		for _, instr := range b.Instructions {
			note(instr.Dst, b)
		}
	}

	return order, sites
}

func placePhiForVariable(dom *Dominators, v *il.VirtualRegister, defs []*il.BasicBlock, phiVar map[*il.Instruction]*il.VirtualRegister) {
	hasPhi := make(map[*il.BasicBlock]bool)
	worklist := append([]*il.BasicBlock{}, defs...)
	inWorklist := make(map[*il.BasicBlock]bool, len(defs))

	for _, b := range defs {
		inWorklist[b] = true
	}

	for len(worklist) > 0 {
		b := worklist[0]
		worklist = worklist[1:]
		inWorklist[b] = false

		for _, f := range dom.Frontier(b) {
			if hasPhi[f] {
				continue
			}

			hasPhi[f] = true
			phiVar[insertPhi(f, v)] = v

			if !inWorklist[f] {
				inWorklist[f] = true
				worklist = append(worklist, f)
			}
		}
	}
}

func insertPhi(b *il.BasicBlock, v *il.VirtualRegister) *il.Instruction {
	phi := &il.Instruction{
		Op:   il.OpPhi,
		Dst:  v,
		Args: make([]*il.VirtualRegister, len(b.Predecessors)),
	}

	b.Instructions = append([]*il.Instruction{phi}, b.Instructions...)

	return phi
}
