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

import "github.com/blendsdk/blend65/pkg/ast"

// Graph is the control-flow graph of a single function.  Nodes are owned by
// the graph's slice (an arena); edges are plain pointers between them, so
// there is no separate handle indirection to thread through traversals.
type Graph struct {
	Entry *Node
	Exit  *Node
	nodes []*Node
}

// NewGraph constructs an empty graph with its Entry and Exit already wired
// in (every function body is built between the two).
func NewGraph() *Graph {
	g := &Graph{}
	g.Entry = g.addNode(KindEntry, nil)
	g.Exit = g.addNode(KindExit, nil)

	return g
}

func (g *Graph) addNode(kind Kind, stmt ast.Node) *Node {
	n := &Node{ID: len(g.nodes), NodeKind: kind, Statement: stmt}
	g.nodes = append(g.nodes, n)

	return n
}

// addEdge links from to to, recording both directions.
func (g *Graph) addEdge(from, to *Node) {
	if from == nil || to == nil {
		return
	}

	from.Successors = append(from.Successors, to)
	to.Predecessors = append(to.Predecessors, from)
}

// NodeCount returns the number of nodes in the graph, Entry and Exit
// included.
func (g *Graph) NodeCount() int { return len(g.nodes) }

// EdgeCount returns the number of directed edges in the graph.
func (g *Graph) EdgeCount() int {
	count := 0
	for _, n := range g.nodes {
		count += len(n.Successors)
	}

	return count
}

// Nodes returns every node in creation order.
func (g *Graph) Nodes() []*Node { return g.nodes }

// FallsThrough reports whether the Exit node has an incoming edge from a
// reachable node other than an explicit return statement — i.e. at least one
// path through the function falls off the end without returning a value.
// Combined with the enclosing function's return type, this is what a
// missing-return diagnostic needs (§4.4).
func (g *Graph) FallsThrough() bool {
	for _, pred := range g.Exit.Predecessors {
		if pred.NodeKind != KindReturn && pred.Reachable {
			return true
		}
	}

	return false
}

// ReachesExit reports whether any path from Entry reaches Exit at all —
// false only for a function whose body is an infinite loop with no break.
func (g *Graph) ReachesExit() bool {
	return g.Exit.Reachable
}
