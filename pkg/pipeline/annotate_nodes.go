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
package pipeline

import (
	"github.com/blendsdk/blend65/pkg/ast"
	"github.com/blendsdk/blend65/pkg/cfg"
	"github.com/blendsdk/blend65/pkg/loopanalysis"
)

// AnnotateNodes stamps each cfg.Node's own ast.Node with the subset of
// §6's per-node metadata that C4-C6 already compute as typed side-table
// results: loop nesting depth, induction-variable identity, hoist
// candidacy, and the reaching-definition ids live at that point. No pass in
// this pipeline reads these fields back — every pass consumes its own
// typed Result instead (§9's design note) — but cmd/blend65's analyze -v
// output does, which is the one place SPEC_FULL.md's node-local annotation
// struct is actually read rather than left as unused scaffolding.
func AnnotateNodes(fa *FunctionAnalysis) {
	if fa == nil {
		return
	}

	for _, loop := range fa.Loops {
		stampLoopDepth(loop)
		stampInductionVariables(fa, loop)
		stampHoistCandidates(fa, loop)
	}

	stampReachingDefs(fa)
}

func stampLoopDepth(loop *loopanalysis.Loop) {
	for n := range loop.Nodes {
		if n == nil || n.Statement == nil {
			continue
		}

		if meta := n.Statement.Meta(); loop.Depth > meta.LoopDepth {
			meta.LoopDepth = loop.Depth
		}
	}
}

func stampInductionVariables(fa *FunctionAnalysis, loop *loopanalysis.Loop) {
	for _, biv := range fa.BIVs[loop] {
		info := &ast.InductionVariableInfo{BaseVar: biv.Variable, Stride: int64(biv.Stride)}

		if biv.HasInitialValue {
			v := int64(biv.InitialValue)
			info.InitialValue = &v
		}

		stampNode(biv.DefNode, info)
	}

	for _, div := range fa.DIVs[loop] {
		info := &ast.InductionVariableInfo{
			Derived: true,
			BaseVar: div.BaseVar,
			Stride:  int64(div.Stride),
			Offset:  int64(div.Offset),
		}

		stampNode(div.DefNode, info)
	}
}

func stampNode(n *cfg.Node, info *ast.InductionVariableInfo) {
	if n == nil || n.Statement == nil {
		return
	}

	n.Statement.Meta().InductionVariable = info
}

func stampHoistCandidates(fa *FunctionAnalysis, loop *loopanalysis.Loop) {
	inv := fa.Invariants[loop]
	if inv == nil {
		return
	}

	for _, expr := range inv.HoistCandidates {
		if expr == nil {
			continue
		}

		meta := expr.Meta()
		meta.LoopInvariant = true
		meta.HoistCandidate = true
	}
}

func stampReachingDefs(fa *FunctionAnalysis) {
	if fa.Reaching == nil {
		return
	}

	for n, ids := range fa.Reaching.UseDef {
		if n == nil || n.Statement == nil {
			continue
		}

		defs := make([]uint32, len(ids))
		for i, id := range ids {
			defs[i] = uint32(id)
		}

		n.Statement.Meta().ReachingDefs = defs
	}
}
