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

// Package ast defines the abstract syntax tree contract consumed from the
// (out-of-scope) lexer/parser front-end, per spec.md §6.  Lexing and parsing
// themselves are not implemented here; this package only fixes the shape of
// the tree the middle-end passes operate over.
package ast

import "github.com/blendsdk/blend65/pkg/diag"

// Kind tags every node with its concrete syntactic form.  Analyses dispatch
// on Kind via a tagged-variant switch rather than via an inheritance chain
// (§9's design note: "a single walker plus tagged-variant dispatch").
type Kind uint8

// Recognised node kinds (§6).
const (
	KindError Kind = iota // parse-error sentinel node (§7 recovery)
	KindProgram
	KindModule
	KindImport
	KindExport
	KindFunctionDecl
	KindParameter
	KindVariableDecl
	KindEnumDecl
	KindEnumMember
	KindTypeDecl
	KindSimpleMapDecl
	KindRangeMapDecl
	KindSequentialStructMapDecl
	KindExplicitStructMapDecl
	KindStructField
	KindIf
	KindWhile
	KindDoWhile
	KindFor
	KindMatch
	KindMatchCase
	KindBlock
	KindExpressionStmt
	KindReturn
	KindBreak
	KindContinue
	KindLiteral
	KindIdentifier
	KindBinary
	KindUnary
	KindAssignment
	KindCall
	KindIndex
	KindMember
)

// errorNodeName is the sentinel name used by recovery for a parse-error node
// (§7: "parse-error AST nodes (whose name is the sentinel `error`) are
// skipped by analyses").
const errorNodeName = "error"

// Node is the contract every AST node satisfies.  Analyses never type-switch
// on a concrete Go type across package boundaries; they switch on Kind and
// then type-assert to the one matching struct.
type Node interface {
	Kind() Kind
	Location() diag.Location
	Children() []Node
	// Meta returns the mutable per-node annotation struct attached by the
	// analysis passes (§3 "Lifecycles", §9's fixed-struct design note).
	Meta() *Metadata
}

// Base is embedded by every concrete node type to provide the common
// location/metadata bookkeeping.
type Base struct {
	Loc  diag.Location
	meta Metadata
}

// Location returns this node's source span.
func (b *Base) Location() diag.Location { return b.Loc }

// Meta returns the mutable per-node annotation struct.
func (b *Base) Meta() *Metadata { return &b.meta }

// IsErrorNode reports whether a node is the parser's recovery sentinel.
func IsErrorNode(n Node) bool {
	return n != nil && n.Kind() == KindError
}

// ErrorNode is produced by the parser in place of a subtree it could not
// make sense of (§7 recovery).  Analyses skip it without crashing.
type ErrorNode struct {
	Base
}

// Kind implements Node.
func (*ErrorNode) Kind() Kind { return KindError }

// Children implements Node.
func (*ErrorNode) Children() []Node { return nil }

// Name returns the sentinel name for an error node.
func (*ErrorNode) Name() string { return errorNodeName }
