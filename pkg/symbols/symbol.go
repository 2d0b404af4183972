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

// Package symbols implements C1: the symbol table and scope tree built in
// pass 1 (§4.1).  The design — a tree of scopes each owning a name→symbol
// map, with lookup climbing parents and an "open/closed" flag distinguishing
// a recursive use from an undefined one — is grounded on go-corset's
// pkg/corset/compiler/scope.go (ModuleScope/LocalScope/boxedBinding).
package symbols

import (
	"github.com/blendsdk/blend65/pkg/ast"
	"github.com/blendsdk/blend65/pkg/diag"
	"github.com/blendsdk/blend65/pkg/types"
)

// Kind distinguishes what a symbol denotes (§3).
type Kind uint8

// Recognised symbol kinds.
const (
	KindVariable Kind = iota
	KindConstant
	KindParameter
	KindFunction
	KindEnumMember
	KindImport
)

// String renders a kind for diagnostics.
func (k Kind) String() string {
	switch k {
	case KindVariable:
		return "variable"
	case KindConstant:
		return "constant"
	case KindParameter:
		return "parameter"
	case KindFunction:
		return "function"
	case KindEnumMember:
		return "enum member"
	case KindImport:
		return "import"
	default:
		return "symbol"
	}
}

// Symbol is an interned name binding (§3).  Type is filled in by pass 2, not
// at declaration time — it is nil until the type resolver runs.
type Symbol struct {
	Name        string
	SymbolKind  Kind
	Type        *types.Type
	Location    diag.Location
	Storage     ast.StorageClass
	Exported    bool
	Initializer ast.Node
	// Address is set for storage-class ZeroPage/Map declarations once §4.9's
	// target validation accepts it.
	Address *uint32
	// Parameters is populated for KindFunction symbols only.
	Parameters []*Symbol

	// Usage accounting, filled in during analysis (§4.5.6).
	ReadCount  int
	WriteCount int
	Referenced bool

	// Purity/escape/alias annotations, filled in by pkg/annotate's
	// independent walkers (§4.5.6). Meaningful for KindFunction symbols;
	// left at their zero value for everything else.
	Purity         Purity
	WrittenRegions []MemoryRegion

	// Escapes is set for a variable symbol whose address is taken or that
	// is stored into a heap-reachable location. On 6502 every escape still
	// ends up in static memory, but the distinction lets stack-allocatable
	// locals keep ZP priority (§4.5.6).
	Escapes bool

	// AliasRegion is the coarse memory region a pointer-like symbol may
	// refer to (§4.5.6).
	AliasRegion MemoryRegion

	// open tracks whether this symbol's own initializer is still being
	// resolved, to detect recursive self-reference (§4.1, scope.go's
	// boxedBinding.open).
	open bool
}

// Purity classifies a function's side effects (§4.5.6), from least to most
// permissive.
type Purity uint8

// Recognised purity levels.
const (
	// PurityPure reads and writes only its own locals/parameters.
	PurityPure Purity = iota
	// PurityReadsGlobal reads module-scope state but writes none.
	PurityReadsGlobal
	// PurityWritesGlobal writes module-scope or memory-mapped state.
	PurityWritesGlobal
	// PurityUnknown is assigned to a stub (no body to analyse) or a
	// function that calls one — purity is not transitively provable.
	PurityUnknown
)

// String renders a purity level for diagnostics/hints.
func (p Purity) String() string {
	switch p {
	case PurityPure:
		return "pure"
	case PurityReadsGlobal:
		return "reads-global"
	case PurityWritesGlobal:
		return "writes-global"
	default:
		return "unknown"
	}
}

// MemoryRegion is a coarse classification of what kind of storage a symbol
// or access may touch (§4.5.6: "alias sets by memory region").
type MemoryRegion uint8

// Recognised regions.
const (
	RegionRegular MemoryRegion = iota
	RegionMapped
	RegionVolatile
)

// String renders a region for diagnostics/hints.
func (r MemoryRegion) String() string {
	switch r {
	case RegionRegular:
		return "regular"
	case RegionMapped:
		return "mapped"
	case RegionVolatile:
		return "volatile"
	default:
		return "regular"
	}
}
