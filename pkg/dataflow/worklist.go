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
)

// DefaultMaxIterations bounds worklist convergence (§4.5: "iterations are
// bounded by a configurable cap, default 1000").
const DefaultMaxIterations = 1000

// Direction selects whether a GEN/KILL analysis flows with or against
// control flow.
type Direction uint8

// Recognised directions.
const (
	Forward Direction = iota
	Backward
)

// GenKill is the per-node transfer information for a union-meet bitvector
// analysis: OUT = GEN ∪ (IN \ KILL) (forward) or IN = GEN ∪ (OUT \ KILL)
// (backward) — §4.5.1, §4.5.2 are both instances of this shape.
type GenKill struct {
	Gen  *bitset.BitSet
	Kill *bitset.BitSet
}

// SolveResult carries the fixed point plus how many iterations it took.
type SolveResult struct {
	In         map[*cfg.Node]*bitset.BitSet
	Out        map[*cfg.Node]*bitset.BitSet
	Iterations int
	Converged  bool
}

// Solve runs the shared worklist skeleton (§4.5): forward or backward,
// meet = union, until no IN/OUT set changes or maxIter is reached.
func Solve(g *cfg.Graph, direction Direction, genKill map[*cfg.Node]GenKill, universeLen uint, maxIter int) SolveResult {
	nodes := g.Nodes()

	in := make(map[*cfg.Node]*bitset.BitSet, len(nodes))
	out := make(map[*cfg.Node]*bitset.BitSet, len(nodes))

	for _, n := range nodes {
		in[n] = bitset.New(universeLen)
		out[n] = bitset.New(universeLen)
	}

	order := nodes
	if direction == Backward {
		order = reversed(nodes)
	}

	converged := false
	iterations := 0

	for iterations < maxIter {
		iterations++
		changed := false

		for _, n := range order {
			gk := genKill[n]
			if gk.Gen == nil {
				gk.Gen = bitset.New(universeLen)
			}

			if gk.Kill == nil {
				gk.Kill = bitset.New(universeLen)
			}

			if direction == Forward {
				newIn := meetPredecessorsOut(n, out, universeLen)
				newOut := newIn.Difference(gk.Kill).Union(gk.Gen)

				if !newIn.Equal(in[n]) {
					in[n] = newIn
					changed = true
				}

				if !newOut.Equal(out[n]) {
					out[n] = newOut
					changed = true
				}
			} else {
				newOut := meetSuccessorsIn(n, in, universeLen)
				newIn := newOut.Difference(gk.Kill).Union(gk.Gen)

				if !newOut.Equal(out[n]) {
					out[n] = newOut
					changed = true
				}

				if !newIn.Equal(in[n]) {
					in[n] = newIn
					changed = true
				}
			}
		}

		if !changed {
			converged = true
			break
		}
	}

	return SolveResult{In: in, Out: out, Iterations: iterations, Converged: converged}
}

func meetPredecessorsOut(n *cfg.Node, out map[*cfg.Node]*bitset.BitSet, universeLen uint) *bitset.BitSet {
	acc := bitset.New(universeLen)
	for _, p := range n.Predecessors {
		acc.InPlaceUnion(out[p])
	}

	return acc
}

func meetSuccessorsIn(n *cfg.Node, in map[*cfg.Node]*bitset.BitSet, universeLen uint) *bitset.BitSet {
	acc := bitset.New(universeLen)
	for _, s := range n.Successors {
		acc.InPlaceUnion(in[s])
	}

	return acc
}

// reversed returns nodes in reverse order — used so a backward analysis
// processes successors-before-predecessors, per §4.5.1's "reverse
// post-order for speed" (the CFG builder already emits nodes in roughly
// program, i.e. forward, order, so reversing approximates reverse
// post-order without a separate DFS numbering pass).
func reversed(nodes []*cfg.Node) []*cfg.Node {
	out := make([]*cfg.Node, len(nodes))
	for i, n := range nodes {
		out[len(nodes)-1-i] = n
	}

	return out
}
