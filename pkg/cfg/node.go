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

// Package cfg implements C4: the per-function control-flow graph builder
// (pass 5, §4.4).  The insertion-point algorithm — a "current point" that
// advances as statements are visited, with if/loop constructs saving and
// restoring it around their sub-graphs — is original to this package; the
// node/edge graph shape and DOT rendering follow the arena-of-nodes style
// go-corset uses for its own graph-shaped IRs (pkg/ir/builder/builder.go).
package cfg

import "github.com/blendsdk/blend65/pkg/ast"

// Kind distinguishes the eight node shapes the builder ever creates.
type Kind uint8

// Recognised node kinds.
const (
	KindEntry Kind = iota
	KindExit
	KindStatement
	KindReturn
	KindBranch
	KindMerge
	KindLoopEntry
	KindLoopExit
)

// String renders a kind for DOT labels and diagnostics.
func (k Kind) String() string {
	switch k {
	case KindEntry:
		return "entry"
	case KindExit:
		return "exit"
	case KindStatement:
		return "stmt"
	case KindReturn:
		return "return"
	case KindBranch:
		return "branch"
	case KindMerge:
		return "merge"
	case KindLoopEntry:
		return "loop_entry"
	case KindLoopExit:
		return "loop_exit"
	default:
		return "node"
	}
}

// Node is one point in the control-flow graph.  Statement and Return nodes
// carry the ast.Node they were built from; every other kind is synthetic.
type Node struct {
	ID           int
	NodeKind     Kind
	Statement    ast.Node
	Predecessors []*Node
	Successors   []*Node
	Reachable    bool
}

// IsTerminator reports whether control can never leave this node (true only
// for the Exit node itself, or a node no path was ever wired out of).
func (n *Node) IsTerminator() bool {
	return len(n.Successors) == 0
}
