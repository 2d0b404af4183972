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

import (
	"github.com/blendsdk/blend65/pkg/ast"
	"github.com/blendsdk/blend65/pkg/diag"
)

type loopContext struct {
	entry *Node
	exit  *Node
}

// builder threads the "current insertion point" described in §4.4: a nil
// current means the path just traversed has terminated (return, break, or
// continue), so the next statement visited contributes nothing until a
// merge or loop-exit node restores a current point.
type builder struct {
	graph   *Graph
	current *Node
	loops   []loopContext
	diags   *diag.Diagnostics
}

// Build constructs the control-flow graph of a single (non-stub) function
// body.
func Build(fn *ast.FunctionDecl) diag.Result[*Graph] {
	diags := diag.NewDiagnostics(diag.DefaultDiagnosticCap)
	g := NewGraph()

	if fn.IsStub() {
		g.addEdge(g.Entry, g.Exit)
		return diag.Of(g, diags)
	}

	b := &builder{graph: g, current: g.Entry, diags: diags}

	for _, stmt := range fn.Body.Statements {
		b.visitStatement(stmt)
	}

	if b.current != nil {
		g.addEdge(b.current, g.Exit)
	}

	markReachability(g)
	reportUnreachable(g, diags)

	return diag.Of(g, diags)
}

func (b *builder) visitStatement(stmt ast.Node) {
	if b.current == nil {
		// Dead code after a terminated path: still build a node for it (so
		// reachability analysis can flag it), but it starts a fresh,
		// unconnected island.
		b.current = b.graph.addNode(nodeKindFor(stmt), stmt)
	}

	switch s := stmt.(type) {
	case *ast.If:
		b.visitIf(s)
	case *ast.While:
		b.visitWhile(s)
	case *ast.DoWhile:
		b.visitDoWhile(s)
	case *ast.For:
		b.visitFor(s)
	case *ast.Match:
		b.visitMatch(s)
	case *ast.Block:
		b.visitBlock(s)
	case *ast.Return:
		node := b.graph.addNode(KindReturn, s)
		b.graph.addEdge(b.current, node)
		b.graph.addEdge(node, b.graph.Exit)
		b.current = nil
	case *ast.Break:
		if len(b.loops) > 0 {
			top := b.loops[len(b.loops)-1]
			b.graph.addEdge(b.current, top.exit)
		}

		b.current = nil
	case *ast.Continue:
		if len(b.loops) > 0 {
			top := b.loops[len(b.loops)-1]
			b.graph.addEdge(b.current, top.entry)
		}

		b.current = nil
	default:
		node := b.graph.addNode(KindStatement, stmt)
		b.graph.addEdge(b.current, node)
		b.current = node
	}
}

func nodeKindFor(stmt ast.Node) Kind {
	if _, ok := stmt.(*ast.Return); ok {
		return KindReturn
	}

	return KindStatement
}

func (b *builder) visitBlock(block *ast.Block) {
	for _, stmt := range block.Statements {
		b.visitStatement(stmt)
	}
}

// buildFrom builds block starting with current = start, returning the tail
// (nil if the block's path terminated).
func (b *builder) buildFrom(start *Node, block *ast.Block) *Node {
	b.current = start
	b.visitBlock(block)

	return b.current
}

func (b *builder) visitIf(n *ast.If) {
	branch := b.graph.addNode(KindBranch, n)
	b.graph.addEdge(b.current, branch)

	thenTail := b.buildFrom(branch, n.Then)

	var elseTail *Node

	switch e := n.Else.(type) {
	case nil:
		elseTail = branch
	case *ast.Block:
		elseTail = b.buildFrom(branch, e)
	case *ast.If:
		b.current = branch
		b.visitIf(e)
		elseTail = b.current
	default:
		elseTail = branch
	}

	merge := b.graph.addNode(KindMerge, nil)

	if thenTail != nil {
		b.graph.addEdge(thenTail, merge)
	}

	if elseTail != nil {
		b.graph.addEdge(elseTail, merge)
	}

	b.current = merge
}

func (b *builder) visitWhile(n *ast.While) {
	entry := b.graph.addNode(KindLoopEntry, n)
	exit := b.graph.addNode(KindLoopExit, n)

	b.graph.addEdge(b.current, entry)
	b.graph.addEdge(entry, exit)

	b.loops = append(b.loops, loopContext{entry: entry, exit: exit})

	bodyTail := b.buildFrom(entry, n.Body)
	if bodyTail != nil {
		b.graph.addEdge(bodyTail, entry)
	}

	b.loops = b.loops[:len(b.loops)-1]
	b.current = exit
}

func (b *builder) visitDoWhile(n *ast.DoWhile) {
	entry := b.graph.addNode(KindLoopEntry, n)
	exit := b.graph.addNode(KindLoopExit, n)

	b.graph.addEdge(b.current, entry)

	b.loops = append(b.loops, loopContext{entry: entry, exit: exit})

	bodyTail := b.buildFrom(entry, n.Body)

	if bodyTail != nil {
		b.graph.addEdge(bodyTail, entry)
		b.graph.addEdge(bodyTail, exit)
	}

	b.loops = b.loops[:len(b.loops)-1]
	b.current = exit
}

func (b *builder) visitFor(n *ast.For) {
	if n.Init != nil {
		b.visitStatement(n.Init)
	}

	entry := b.graph.addNode(KindLoopEntry, n)
	exit := b.graph.addNode(KindLoopExit, n)

	b.graph.addEdge(b.current, entry)
	b.graph.addEdge(entry, exit)

	b.loops = append(b.loops, loopContext{entry: entry, exit: exit})

	bodyTail := b.buildFrom(entry, n.Body)

	if bodyTail != nil && n.Post != nil {
		postNode := b.graph.addNode(KindStatement, n.Post)
		b.graph.addEdge(bodyTail, postNode)
		bodyTail = postNode
	}

	if bodyTail != nil {
		b.graph.addEdge(bodyTail, entry)
	}

	b.loops = b.loops[:len(b.loops)-1]
	b.current = exit
}

func (b *builder) visitMatch(n *ast.Match) {
	branch := b.graph.addNode(KindBranch, n)
	b.graph.addEdge(b.current, branch)

	tails := make([]*Node, 0, len(n.Cases))

	for _, c := range n.Cases {
		tails = append(tails, b.buildFrom(branch, c.Body))
	}

	merge := b.graph.addNode(KindMerge, nil)

	for _, tail := range tails {
		if tail != nil {
			b.graph.addEdge(tail, merge)
		}
	}

	b.current = merge
}
