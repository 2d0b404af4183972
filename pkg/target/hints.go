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
package target

import (
	"github.com/blendsdk/blend65/pkg/il"
	"github.com/blendsdk/blend65/pkg/loopanalysis"
	"github.com/blendsdk/blend65/pkg/ssa"
)

// PreferredRegister names one of the 6502's three general-purpose
// registers, per §4.9: "A for arithmetic accumulator, X/Y for loop counters
// and indexed addressing".
type PreferredRegister string

// Recognised preferences.
const (
	RegA   PreferredRegister = "A"
	RegX   PreferredRegister = "X"
	RegY   PreferredRegister = "Y"
	RegAny PreferredRegister = ""
)

// opcodeCycles is a coarse per-opcode 6502 cycle estimate, not a
// cycle-exact simulation — good enough to rank candidates for zero-page
// placement and flag raster-critical hot paths (§4.9).
var opcodeCycles = map[il.Opcode]int{
	il.OpLoadConst:     2,
	il.OpMove:          3,
	il.OpBinary:        4,
	il.OpUnary:         3,
	il.OpCall:          6,
	il.OpMapLoadField:  4,
	il.OpMapStoreField: 4,
	il.OpMapLoadRange:  4,
	il.OpMapStoreRange: 4,
	il.OpIntrinsicLo:   0,
	il.OpIntrinsicHi:   0,
	il.OpIndexLoad:     5,
	il.OpIndexStore:    5,
	il.OpJump:          3,
	il.OpBranch:        3,
	il.OpReturn:        6,
	il.OpPhi:           0,
}

// Hints is the per-function output of AnalyzeFunction: a zero-page
// priority score and a preferred register, one entry per register that was
// read or written anywhere in the function.
type Hints struct {
	Priority  map[*il.VirtualRegister]int
	Preferred map[*il.VirtualRegister]PreferredRegister
}

// AnalyzeFunction walks fn and populates each instruction's Metadata
// (loop depth, frequency band, raster-critical flag, cycle estimate), and
// returns the per-register zero-page priority score and preferred
// register derived from how each register is used (§4.9).
func AnalyzeFunction(cfg *Config, fn *il.Function) *Hints {
	depth := loopDepths(fn)

	h := &Hints{
		Priority:  map[*il.VirtualRegister]int{},
		Preferred: map[*il.VirtualRegister]PreferredRegister{},
	}

	arith := map[*il.VirtualRegister]bool{}
	indexed := map[*il.VirtualRegister]bool{}
	var order []*il.VirtualRegister
	seen := map[*il.VirtualRegister]bool{}

	touch := func(r *il.VirtualRegister, weight int) {
		if r == nil {
			return
		}

		if !seen[r] {
			seen[r] = true
			order = append(order, r)
		}

		h.Priority[r] += weight
	}

	for _, b := range fn.Blocks {
		d := depth[b]
		band := frequencyBand(d)

		for _, instr := range b.Instructions {
			instr.Metadata.LoopDepth = d
			instr.Metadata.Frequency = band
			instr.Metadata.CycleEstimate = opcodeCycles[instr.Op]

			if isMapAccess(instr.Op) {
				if cfg.GraphicsChip.BaseAddress != 0 && instr.Base >= cfg.GraphicsChip.BaseAddress {
					instr.Metadata.RasterCritical = true
					instr.Metadata.CycleEstimate += cfg.GraphicsChip.BadLinePenalty
				}

				instr.Metadata.AliasRegion = mapRegionName(cfg, instr.Base)
			}

			if instr.Dst != nil {
				instr.Metadata.LiveRangeHint = instr.Dst.Name
			}

			weight := 1 + d*4
			if band == il.FrequencyHot {
				weight *= 2
			}

			touch(instr.Dst, weight)
			for _, a := range instr.Args {
				touch(a, weight)
			}

			if instr.Op == il.OpBinary || instr.Op == il.OpUnary {
				for _, a := range instr.Args {
					if a != nil {
						arith[a] = true
					}
				}
				if instr.Dst != nil {
					arith[instr.Dst] = true
				}
			}

			if instr.Op == il.OpIndexLoad && len(instr.Args) > 0 {
				indexed[instr.Args[len(instr.Args)-1]] = true
			}

			if instr.Op == il.OpIndexStore && len(instr.Args) > 1 {
				indexed[instr.Args[1]] = true
			}
		}
	}

	nextIndexReg := RegX

	for _, r := range order {
		switch {
		case indexed[r]:
			h.Preferred[r] = nextIndexReg
			if nextIndexReg == RegX {
				nextIndexReg = RegY
			} else {
				nextIndexReg = RegX
			}
		case arith[r]:
			h.Preferred[r] = RegA
		default:
			h.Preferred[r] = RegAny
		}
	}

	return h
}

func isMapAccess(op il.Opcode) bool {
	return op == il.OpMapLoadField || op == il.OpMapStoreField || op == il.OpMapLoadRange || op == il.OpMapStoreRange
}

func mapRegionName(cfg *Config, addr uint32) string {
	if cfg.GraphicsChip.BaseAddress != 0 && addr >= cfg.GraphicsChip.BaseAddress {
		return cfg.GraphicsChip.Name
	}

	if cfg.SoundChip.BaseAddress != 0 && addr >= cfg.SoundChip.BaseAddress {
		return cfg.SoundChip.Name
	}

	for _, region := range cfg.MemoryRegions {
		if region.Contains(addr) {
			return region.Name
		}
	}

	return ""
}

func frequencyBand(depth int) il.FrequencyBand {
	switch {
	case depth == 0:
		return il.FrequencyCold
	case depth == 1:
		return il.FrequencyWarm
	default:
		return il.FrequencyHot
	}
}

// loopDepths assigns each block the number of natural loops it is nested
// inside, via dominator-based back-edge detection. The walk itself is
// pkg/loopanalysis.BlockDepths (C6), instantiated here over pkg/il.BasicBlock
// rather than reimplemented, so C9 consumes C6's back-edge/natural-loop-body
// logic instead of recomputing it independently.
func loopDepths(fn *il.Function) map[*il.BasicBlock]int {
	dom := ssa.ComputeDominators(fn)
	preds := func(b *il.BasicBlock) []*il.BasicBlock { return b.Predecessors }

	return loopanalysis.BlockDepths(dom.BackEdges(), preds)
}
