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

// Package ssa implements C8 (§4.8): dominator computation over the lowered
// IL, minimal-SSA φ placement via iterated dominance frontiers, dominator-
// tree pre-order renaming, and the SSA verifier.
package ssa

import "github.com/blendsdk/blend65/pkg/il"

// Dominators is the dominator tree of one il.Function's block graph. It is
// the same Cooper-Harvey-Kennedy iterative algorithm as pkg/cfg.Dominators,
// independently instantiated here because il.BasicBlock is a distinct node
// type from cfg.Node (one node per statement there, one node per basic
// block here) — see DESIGN.md for why the two are not shared directly.
type Dominators struct {
	fn       *il.Function
	idom     map[*il.BasicBlock]*il.BasicBlock
	order    []*il.BasicBlock
	rpoIndex map[*il.BasicBlock]int
	children map[*il.BasicBlock][]*il.BasicBlock
}

// ComputeDominators builds the dominator tree of fn's entry-reachable
// blocks.
func ComputeDominators(fn *il.Function) *Dominators {
	order := reversePostorder(fn)

	rpoIndex := make(map[*il.BasicBlock]int, len(order))
	for i, b := range order {
		rpoIndex[b] = i
	}

	idom := make(map[*il.BasicBlock]*il.BasicBlock, len(order))
	if fn.Entry != nil {
		idom[fn.Entry] = fn.Entry
	}

	changed := true
	for changed {
		changed = false

		for _, b := range order {
			if b == fn.Entry {
				continue
			}

			var newIdom *il.BasicBlock

			for _, pred := range b.Predecessors {
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

			if idom[b] != newIdom {
				idom[b] = newIdom
				changed = true
			}
		}
	}

	d := &Dominators{fn: fn, idom: idom, order: order, rpoIndex: rpoIndex}
	d.children = buildChildren(order, idom, fn.Entry)

	return d
}

func buildChildren(order []*il.BasicBlock, idom map[*il.BasicBlock]*il.BasicBlock, entry *il.BasicBlock) map[*il.BasicBlock][]*il.BasicBlock {
	children := make(map[*il.BasicBlock][]*il.BasicBlock, len(order))

	for _, b := range order {
		if b == entry {
			continue
		}

		parent, ok := idom[b]
		if !ok {
			continue
		}

		children[parent] = append(children[parent], b)
	}

	return children
}

func intersect(idom map[*il.BasicBlock]*il.BasicBlock, rpoIndex map[*il.BasicBlock]int, a, b *il.BasicBlock) *il.BasicBlock {
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

func reversePostorder(fn *il.Function) []*il.BasicBlock {
	if fn.Entry == nil {
		return nil
	}

	visited := make(map[*il.BasicBlock]bool)

	var post []*il.BasicBlock

	var visit func(b *il.BasicBlock)
	visit = func(b *il.BasicBlock) {
		if visited[b] {
			return
		}

		visited[b] = true

		for _, succ := range b.Successors {
			visit(succ)
		}

		post = append(post, b)
	}

	visit(fn.Entry)

	for i, j := 0, len(post)-1; i < j; i, j = i+1, j-1 {
		post[i], post[j] = post[j], post[i]
	}

	return post
}

// IDom returns b's immediate dominator, or nil for Entry or an unreachable
// block.
func (d *Dominators) IDom(b *il.BasicBlock) *il.BasicBlock {
	if b == d.fn.Entry {
		return nil
	}

	return d.idom[b]
}

// Dominates reports whether a dominates b. A block dominates itself.
func (d *Dominators) Dominates(a, b *il.BasicBlock) bool {
	if _, ok := d.idom[b]; !ok {
		return false
	}

	for n := b; ; {
		if n == a {
			return true
		}

		if n == d.fn.Entry {
			return n == a
		}

		n = d.idom[n]
	}
}

// StrictlyDominates reports whether a dominates b and a != b.
func (d *Dominators) StrictlyDominates(a, b *il.BasicBlock) bool {
	return a != b && d.Dominates(a, b)
}

// Frontier computes the dominance frontier of n (Cytron et al.): every
// block m such that n dominates a predecessor of m but does not strictly
// dominate m itself.
func (d *Dominators) Frontier(n *il.BasicBlock) []*il.BasicBlock {
	var frontier []*il.BasicBlock

	seen := make(map[*il.BasicBlock]bool)

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

// ReversePostorder returns entry-reachable blocks in reverse postorder.
func (d *Dominators) ReversePostorder() []*il.BasicBlock { return d.order }

// Children returns b's children in the dominator tree, in the order they
// were first reached during reverse-postorder numbering — the traversal
// order the renaming pass walks in (§5: "byte-identical... in a fixed
// order").
func (d *Dominators) Children(b *il.BasicBlock) []*il.BasicBlock { return d.children[b] }

// BackEdges returns every edge (tail -> head) in fn where head dominates
// tail — the definition of a back edge used to identify natural loops and,
// downstream, loop depth for zero-page/cycle hints (§4.9).
func (d *Dominators) BackEdges() [][2]*il.BasicBlock {
	var edges [][2]*il.BasicBlock

	for _, tail := range d.order {
		for _, head := range tail.Successors {
			if d.Dominates(head, tail) {
				edges = append(edges, [2]*il.BasicBlock{tail, head})
			}
		}
	}

	return edges
}
