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

// Package loopanalysis implements C6 (§4.6): natural-loop identification via
// dominator-based back-edge detection, basic/derived induction variable
// recognition, and loop-invariant / hoist-candidate detection. It has no
// direct analogue in the teacher repository; it is built on pkg/cfg's
// statement-level dominator tree (pkg/cfg.Dominators) in the teacher's small,
// focused, Compute-style entry-point idiom.
package loopanalysis

import "github.com/blendsdk/blend65/pkg/cfg"

// Loop is a single natural loop: the maximal set of nodes reachable from the
// loop header without leaving through the header, as defined by one back
// edge tail -> header where header dominates tail (§4.6). Depth is the
// loop's own nesting level: 1 for a top-level loop, 2 for a loop whose
// header is itself owned by an enclosing loop, and so on (§4.6: "compute
// nesting depth and the set of nodes it owns").
type Loop struct {
	Header *cfg.Node
	Tail   *cfg.Node
	Nodes  map[*cfg.Node]bool
	Depth  int
}

// Contains reports whether n is part of the loop body.
func (l *Loop) Contains(n *cfg.Node) bool { return l.Nodes[n] }

// FindNaturalLoops returns one Loop per back edge in g, using dom (computed
// once by the caller).
func FindNaturalLoops(g *cfg.Graph, dom *cfg.Dominators) []*Loop {
	edges := dom.BackEdges()
	preds := func(n *cfg.Node) []*cfg.Node { return n.Predecessors }
	depths := BlockDepths(edges, preds)

	var loops []*Loop

	for _, edge := range edges {
		tail, header := edge[0], edge[1]
		nodes := NaturalLoopBody(header, tail, preds)
		loops = append(loops, &Loop{Header: header, Tail: tail, Nodes: nodes, Depth: depths[header]})
	}

	return loops
}

// NaturalLoopBody computes { header } ∪ { nodes that reach tail without
// going through header }, via a backward walk from tail stopping at header
// (§4.6: "h plus every node that can reach t without passing through h").
// It is generic over the node type so both the statement-level pkg/cfg.Node
// CFG (C6, this package) and the block-level pkg/il.BasicBlock CFG (C9,
// pkg/target's hint scoring) share one walk instead of each keeping its own
// copy.
func NaturalLoopBody[N comparable](header, tail N, preds func(N) []N) map[N]bool {
	body := map[N]bool{header: true}

	if header == tail {
		return body
	}

	body[tail] = true

	stack := []N{tail}

	for len(stack) > 0 {
		n := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		for _, pred := range preds(n) {
			if body[pred] {
				continue
			}

			body[pred] = true

			if pred != header {
				stack = append(stack, pred)
			}
		}
	}

	return body
}

// BlockDepths assigns every node reached by at least one back edge its
// nesting depth: the number of natural loops among backEdges whose body
// contains it (§4.6). A node outside every loop is absent from the result
// (callers treat a missing entry as depth zero).
func BlockDepths[N comparable](backEdges [][2]N, preds func(N) []N) map[N]int {
	depth := map[N]int{}

	for _, edge := range backEdges {
		tail, header := edge[0], edge[1]
		for n := range NaturalLoopBody(header, tail, preds) {
			depth[n]++
		}
	}

	return depth
}
