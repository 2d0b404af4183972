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

// Interval is the live range of one variable: the first and last program
// points (node creation order) at which it appears in IN or OUT (§4.5.1).
type Interval struct {
	Variable   string
	FirstPoint int
	LastPoint  int
}

// Overlaps reports whether two intervals interfere (share any point).
func (iv Interval) Overlaps(other Interval) bool {
	return iv.FirstPoint <= other.LastPoint && other.FirstPoint <= iv.LastPoint
}

// LivenessResult is the output of the liveness analysis.
type LivenessResult struct {
	Vars       *IndexSpace
	In         map[*cfg.Node]*bitset.BitSet
	Out        map[*cfg.Node]*bitset.BitSet
	Iterations int
	// LiveAtEntry holds every variable live in Entry's IN set — a use with
	// no preceding definition anywhere reachable, i.e. an implicit
	// parameter or a genuinely undefined use (§4.5.1).
	LiveAtEntry []string
	// DeadDefinitions holds every defining node whose defined variable is
	// not in that node's own OUT set — defined but never subsequently used.
	DeadDefinitions []*cfg.Node
	Intervals       []Interval
}

// Liveness runs the backward, union liveness analysis described in §4.5.1.
func Liveness(g *cfg.Graph, maxIter int) diag.Result[*LivenessResult] {
	diags := diag.NewDiagnostics(diag.DefaultDiagnosticCap)

	if maxIter <= 0 {
		maxIter = DefaultMaxIterations
	}

	vars := NewIndexSpace()
	nodeUses := make(map[*cfg.Node][]string)
	nodeDefs := make(map[*cfg.Node][]string)

	for _, n := range g.Nodes() {
		uses, defs := usesDefs(n.Statement)
		nodeUses[n] = uses
		nodeDefs[n] = defs

		for _, u := range uses {
			vars.Index(u)
		}

		for _, d := range defs {
			vars.Index(d)
		}
	}

	universeLen := vars.Len()
	genKill := make(map[*cfg.Node]GenKill, len(g.Nodes()))

	for _, n := range g.Nodes() {
		gen := bitset.New(universeLen)
		for _, u := range nodeUses[n] {
			gen.Set(vars.Index(u))
		}

		kill := bitset.New(universeLen)
		for _, d := range nodeDefs[n] {
			kill.Set(vars.Index(d))
		}

		// Liveness's transfer is USE ∪ (OUT \ DEF); modelled here as the
		// generic GEN/KILL solver's GEN = USE, KILL = DEF.
		genKill[n] = GenKill{Gen: gen, Kill: kill}
	}

	solved := Solve(g, Backward, genKill, universeLen, maxIter)

	if !solved.Converged {
		diags.Add(diag.Errorf(diag.CodeIterationCapExceeded, functionLocation(g),
			"liveness analysis did not converge within %d iterations", maxIter))
	}

	result := &LivenessResult{Vars: vars, In: solved.In, Out: solved.Out, Iterations: solved.Iterations}

	if i, ok := solved.In[g.Entry].NextSet(0); ok {
		for {
			result.LiveAtEntry = append(result.LiveAtEntry, vars.Name(i))

			next, found := solved.In[g.Entry].NextSet(i + 1)
			if !found {
				break
			}

			i = next
		}
	}

	result.DeadDefinitions = deadDefinitions(g, nodeDefs, vars, solved.Out)
	result.Intervals = buildIntervals(g, vars, solved.In, solved.Out)

	return diag.Of(result, diags)
}

func deadDefinitions(g *cfg.Graph, nodeDefs map[*cfg.Node][]string, vars *IndexSpace, out map[*cfg.Node]*bitset.BitSet) []*cfg.Node {
	var dead []*cfg.Node

	for _, n := range g.Nodes() {
		for _, d := range nodeDefs[n] {
			if !out[n].Test(vars.Index(d)) {
				dead = append(dead, n)
			}
		}
	}

	return dead
}

// buildIntervals scans nodes in creation order (a stand-in linearization)
// recording each variable's first/last appearance in IN or OUT (§4.5.1).
func buildIntervals(g *cfg.Graph, vars *IndexSpace, in, out map[*cfg.Node]*bitset.BitSet) []Interval {
	first := make(map[uint]int)
	last := make(map[uint]int)
	seen := make(map[uint]bool)

	for point, n := range g.Nodes() {
		mark := func(bs *bitset.BitSet) {
			for i, ok := bs.NextSet(0); ok; i, ok = bs.NextSet(i + 1) {
				if !seen[i] {
					first[i] = point
					seen[i] = true
				}

				last[i] = point
			}
		}

		mark(in[n])
		mark(out[n])
	}

	intervals := make([]Interval, 0, len(first))

	for i := uint(0); i < vars.Len(); i++ {
		if !seen[i] {
			continue
		}

		intervals = append(intervals, Interval{Variable: vars.Name(i), FirstPoint: first[i], LastPoint: last[i]})
	}

	return intervals
}
