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
package cfg

// Dominators is the dominator tree of a single statement-level CFG, computed
// once and used by pkg/loopanalysis (natural-loop detection via back edges,
// §4.6); pkg/ssa computes its own tree over IL blocks.  It uses
// the Cooper-Harvey-Kennedy iterative algorithm: the same "iterate a
// monotone transfer function over a worklist to a fixed point" shape as
// pkg/dataflow's Solve, just over immediate-dominator candidates instead of
// bitsets.
type Dominators struct {
	g        *Graph
	idom     map[*Node]*Node
	order    []*Node       // reverse postorder from Entry
	rpoIndex map[*Node]int // node -> position in order
}

// ComputeDominators builds the dominator tree of g.  Unreachable nodes (not
// reachable from Entry) are excluded and never dominated by anything.
func ComputeDominators(g *Graph) *Dominators {
	order := reversePostorder(g)

	rpoIndex := make(map[*Node]int, len(order))
	for i, n := range order {
		rpoIndex[n] = i
	}

	idom := make(map[*Node]*Node, len(order))
	idom[g.Entry] = g.Entry

	changed := true
	for changed {
		changed = false

		for _, n := range order {
			if n == g.Entry {
				continue
			}

			var newIdom *Node

			for _, pred := range n.Predecessors {
				if _, ok := idom[pred]; !ok {
					continue
				}

				if newIdom == nil {
					newIdom = pred
					continue
				}

				newIdom = intersect(idom, rpoIndex, newIdom, pred)
			}

			if newIdom == nil {
				continue
			}

			if idom[n] != newIdom {
				idom[n] = newIdom
				changed = true
			}
		}
	}

	return &Dominators{g: g, idom: idom, order: order, rpoIndex: rpoIndex}
}

func intersect(idom map[*Node]*Node, rpoIndex map[*Node]int, a, b *Node) *Node {
	for a != b {
		for rpoIndex[a] > rpoIndex[b] {
			a = idom[a]
		}

		for rpoIndex[b] > rpoIndex[a] {
			b = idom[b]
		}
	}

	return a
}

func reversePostorder(g *Graph) []*Node {
	visited := make(map[*Node]bool)

	var post []*Node

	var visit func(n *Node)
	visit = func(n *Node) {
		if visited[n] {
			return
		}

		visited[n] = true

		for _, succ := range n.Successors {
			visit(succ)
		}

		post = append(post, n)
	}

	visit(g.Entry)

	for i, j := 0, len(post)-1; i < j; i, j = i+1, j-1 {
		post[i], post[j] = post[j], post[i]
	}

	return post
}

// IDom returns n's immediate dominator, or nil if n is unreachable or is
// Entry itself.
func (d *Dominators) IDom(n *Node) *Node {
	if n == d.g.Entry {
		return nil
	}

	return d.idom[n]
}

// Dominates reports whether a dominates b (every path from Entry to b passes
// through a). A node dominates itself.
func (d *Dominators) Dominates(a, b *Node) bool {
	if _, ok := d.idom[b]; !ok {
		return false
	}

	for n := b; ; {
		if n == a {
			return true
		}

		if n == d.g.Entry {
			return n == a
		}

		n = d.idom[n]
	}
}

// StrictlyDominates reports whether a dominates b and a != b.
func (d *Dominators) StrictlyDominates(a, b *Node) bool {
	return a != b && d.Dominates(a, b)
}

// Frontier computes the dominance frontier of n: every node m such that n
// dominates a predecessor of m but does not strictly dominate m itself
// (the standard Cytron et al. definition).
func (d *Dominators) Frontier(n *Node) []*Node {
	var frontier []*Node

	seen := make(map[*Node]bool)

	for _, m := range d.order {
		for _, pred := range m.Predecessors {
			if _, ok := d.idom[pred]; !ok {
				continue
			}

			if d.Dominates(n, pred) && !d.StrictlyDominates(n, m) {
				if !seen[m] {
					seen[m] = true
					frontier = append(frontier, m)
				}

				break
			}
		}
	}

	return frontier
}

// ReversePostorder returns the nodes reachable from Entry in reverse
// postorder — the order the dominator computation iterates in.
func (d *Dominators) ReversePostorder() []*Node { return d.order }

// BackEdges returns every edge (tail -> head) in g where head dominates
// tail — the definition of a back edge used to identify natural loops
// (§4.6: "a back edge t -> h where h dominates t").
func (d *Dominators) BackEdges() [][2]*Node {
	var edges [][2]*Node

	for _, tail := range d.order {
		for _, head := range tail.Successors {
			if d.Dominates(head, tail) {
				edges = append(edges, [2]*Node{tail, head})
			}
		}
	}

	return edges
}
