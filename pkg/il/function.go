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
package il

import (
	"github.com/blendsdk/blend65/pkg/ast"
	"github.com/blendsdk/blend65/pkg/types"
)

// Function is one lowered function. A stub (§9(b)) has IsStub set and no
// blocks at all — only the signature survives into the IL.
type Function struct {
	Name       string
	Parameters []*VirtualRegister
	ReturnType *types.Type
	Blocks     []*BasicBlock
	Entry      *BasicBlock
	IsStub     bool
	Exported   bool
}

// Global is a module-scope variable: its storage class, initial value (if
// any), and, for an @map declaration, its explicit address (§4.7: "creates
// globals with their storage class, initial value, and (for @map) explicit
// address"). EndAddress is the last byte this declaration occupies
// (inclusive) — MapAddress itself for a single-byte @zp/@map, the declared
// `to` address for a range-global, or the highest byte any field of a
// struct-map reaches — so §4.9's reserved-range validation can reject a
// declaration whose *span*, not just its base address, intersects a
// reserved range.
type Global struct {
	Name        string
	Type        *types.Type
	Storage     ast.StorageClass
	HasInitial  bool
	InitialInt  uint32
	InitialBool bool
	MapAddress  uint32
	EndAddress  uint32
	HasAddress  bool
	Exported    bool
}

// Module is the lowered form of one source module: its globals, functions,
// and the import/export bookkeeping the builder records while lowering.
type Module struct {
	Path      []string
	Globals   []*Global
	Functions []*Function
	Imports   []*ast.Import
	Exports   []string
}
