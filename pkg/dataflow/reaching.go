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
package dataflow

import (
	"github.com/bits-and-blooms/bitset"

	"github.com/blendsdk/blend65/pkg/cfg"
	"github.com/blendsdk/blend65/pkg/diag"
)

// Definition is one uniquely-numbered definition site (§4.5.2).
type Definition struct {
	ID       uint
	Variable string
	Node     *cfg.Node
}

// ReachingResult is the output of the reaching-definitions analysis.
type ReachingResult struct {
	Definitions []Definition
	In          map[*cfg.Node]*bitset.BitSet
	Out         map[*cfg.Node]*bitset.BitSet
	Iterations  int
	// DefUse maps a definition's id to every node that reads the variable
	// while that definition reaches it.
	DefUse map[uint][]*cfg.Node
	// UseDef maps a using node to every definition id reaching it for the
	// variable(s) it reads.
	UseDef map[*cfg.Node][]uint
}

// ReachingDefinitions runs the forward, union analysis of §4.5.2.
func ReachingDefinitions(g *cfg.Graph, maxIter int) diag.Result[*ReachingResult] {
	diags := diag.NewDiagnostics(diag.DefaultDiagnosticCap)

	if maxIter <= 0 {
		maxIter = DefaultMaxIterations
	}

	var defs []Definition

	nodeUses := make(map[*cfg.Node][]string)
	nodeGenIDs := make(map[*cfg.Node][]uint)
	varDefIDs := make(map[string][]uint)

	for _, n := range g.Nodes() {
		uses, ds := usesDefs(n.Statement)
		nodeUses[n] = uses

		for _, d := range ds {
			id := uint(len(defs))
			defs = append(defs, Definition{ID: id, Variable: d, Node: n})
			nodeGenIDs[n] = append(nodeGenIDs[n], id)
			varDefIDs[d] = append(varDefIDs[d], id)
		}
	}

	universeLen := uint(len(defs))
	genKill := make(map[*cfg.Node]GenKill, len(g.Nodes()))

	for _, n := range g.Nodes() {
		gen := bitset.New(universeLen)
		for _, id := range nodeGenIDs[n] {
			gen.Set(id)
		}

		kill := bitset.New(universeLen)

		for _, id := range nodeGenIDs[n] {
			for _, other := range varDefIDs[defs[id].Variable] {
				if other != id {
					kill.Set(other)
				}
			}
		}

		genKill[n] = GenKill{Gen: gen, Kill: kill}
	}

	solved := Solve(g, Forward, genKill, universeLen, maxIter)

	if !solved.Converged {
		diags.Add(diag.Errorf(diag.CodeIterationCapExceeded, functionLocation(g),
			"reaching-definitions analysis did not converge within %d iterations", maxIter))
	}

	result := &ReachingResult{
		Definitions: defs,
		In:          solved.In,
		Out:         solved.Out,
		Iterations:  solved.Iterations,
		DefUse:      make(map[uint][]*cfg.Node),
		UseDef:      make(map[*cfg.Node][]uint),
	}

	for _, n := range g.Nodes() {
		for _, varName := range nodeUses[n] {
			for _, id := range varDefIDs[varName] {
				if solved.In[n].Test(id) {
					result.DefUse[id] = append(result.DefUse[id], n)
					result.UseDef[n] = append(result.UseDef[n], id)
				}
			}
		}
	}

	return diag.Of(result, diags)
}
