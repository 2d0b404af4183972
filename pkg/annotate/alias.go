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
package annotate

import (
	"github.com/blendsdk/blend65/pkg/ast"
	"github.com/blendsdk/blend65/pkg/diag"
	"github.com/blendsdk/blend65/pkg/symbols"
)

// AnalyzeAlias assigns each symbol a coarse memory region — regular,
// memory-mapped hardware, or volatile — so downstream passes know which
// reads/writes must not be reordered or eliminated as redundant (§4.5.6:
// "coarse alias sets by memory region (regular, mapped hardware,
// volatile)"). A variable with @map storage is classed as mapped hardware;
// every simple, range, and struct @map declaration is flagged volatile,
// since its value can change out from under the program between two reads.
// No target's chip windows are consulted.
func AnalyzeAlias(table *symbols.Table, programs []*ast.Program) *diag.Diagnostics {
	diags := diag.NewDiagnostics(diag.DefaultDiagnosticCap)

	walkDeclarations(table, programs, func(scope *symbols.Scope, decl ast.Node) {
		classifyAliasDecl(scope, decl, diags)
	})

	return diags
}

func classifyAliasDecl(scope *symbols.Scope, decl ast.Node, diags *diag.Diagnostics) {
	switch d := decl.(type) {
	case *ast.VariableDecl:
		sym, ok := scope.LocalLookup(d.Name)
		if !ok {
			return
		}

		sym.AliasRegion = regionFor(d.Storage)

		if sym.AliasRegion == symbols.RegionMapped {
			diags.Addf(diag.CodeOptimizationHint, diag.Info, d.Location(), "%q is memory-mapped; its reads/writes alias hardware state", sym.Name)
		}
	case *ast.SimpleMapDecl:
		markMapped(scope, d.Name, diags, d.Location())
	case *ast.RangeMapDecl:
		markMapped(scope, d.Name, diags, d.Location())
	case *ast.SequentialStructMapDecl:
		markMapped(scope, d.Name, diags, d.Location())
	case *ast.ExplicitStructMapDecl:
		markMapped(scope, d.Name, diags, d.Location())
	}
}

func markMapped(scope *symbols.Scope, name string, diags *diag.Diagnostics, loc diag.Location) {
	sym, ok := scope.LocalLookup(name)
	if !ok {
		return
	}

	sym.AliasRegion = symbols.RegionVolatile
	diags.Addf(diag.CodeOptimizationHint, diag.Info, loc, "%q is a memory-mapped structure; treat every field access as volatile", sym.Name)
}

func regionFor(storage ast.StorageClass) symbols.MemoryRegion {
	if storage == ast.StorageMap {
		return symbols.RegionMapped
	}

	return symbols.RegionRegular
}
