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
package annotate_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/blendsdk/blend65/pkg/annotate"
	"github.com/blendsdk/blend65/pkg/ast"
	"github.com/blendsdk/blend65/pkg/checker"
	"github.com/blendsdk/blend65/pkg/diag"
	"github.com/blendsdk/blend65/pkg/symbols"
)

func build(t *testing.T, decls ...ast.Node) (*symbols.Table, []*ast.Program) {
	t.Helper()

	m := &ast.Module{Path: []string{"app"}, Declarations: decls}
	prog := &ast.Program{Module: m, Declarations: decls}
	programs := []*ast.Program{prog}

	symRes := symbols.Build(programs)
	assert.True(t, symRes.Success)

	checkRes := checker.Check(symRes.Value, programs)
	assert.True(t, checkRes.Success)

	return symRes.Value, programs
}

func TestAnalyzeUsageCountsReadsAndWrites(t *testing.T) {
	counter := &ast.VariableDecl{Name: "counter", Initializer: &ast.Literal{IntValue: 0}}
	fn := &ast.FunctionDecl{
		Name: "bump",
		Body: &ast.Block{Statements: []ast.Node{
			&ast.ExpressionStmt{Expression: &ast.Assignment{
				Target: &ast.Identifier{Path: []string{"counter"}},
				Value:  &ast.Binary{Op: ast.OpAdd, Left: &ast.Identifier{Path: []string{"counter"}}, Right: &ast.Literal{IntValue: 1}},
			}},
		}},
	}

	table, programs := build(t, counter, fn)

	annotate.AnalyzeUsage(table, programs)

	sym, ok := table.Modules["app"].LocalLookup("counter")
	assert.True(t, ok)
	assert.True(t, sym.Referenced)
	assert.Equal(t, 1, sym.ReadCount)
	assert.Equal(t, 1, sym.WriteCount)
}

func TestUnusedSymbolsReportsNeverReferencedLocal(t *testing.T) {
	unused := &ast.VariableDecl{Name: "ghost", Initializer: &ast.Literal{IntValue: 0}}
	table, programs := build(t, unused)

	annotate.AnalyzeUsage(table, programs)

	diags := annotate.UnusedSymbols(table)
	assert.True(t, diags.HasErrors() == false)

	found := false
	for _, d := range diags.All() {
		if d.Code == diag.CodeUnusedSymbol {
			found = true
		}
	}
	assert.True(t, found)
}

func TestAnalyzePurityClassifiesPureAndImpureFunctions(t *testing.T) {
	counter := &ast.VariableDecl{Name: "counter", Initializer: &ast.Literal{IntValue: 0}}

	pure := &ast.FunctionDecl{
		Name:   "square",
		Return: &ast.TypeAnnotation{Name: "byte"},
		Parameters: []*ast.Parameter{
			{Name: "n", Annotation: &ast.TypeAnnotation{Name: "byte"}},
		},
		Body: &ast.Block{Statements: []ast.Node{
			&ast.Return{Value: &ast.Binary{Op: ast.OpMul, Left: &ast.Identifier{Path: []string{"n"}}, Right: &ast.Identifier{Path: []string{"n"}}}},
		}},
	}

	impure := &ast.FunctionDecl{
		Name: "bump",
		Body: &ast.Block{Statements: []ast.Node{
			&ast.ExpressionStmt{Expression: &ast.Assignment{
				Target: &ast.Identifier{Path: []string{"counter"}},
				Value:  &ast.Literal{IntValue: 1},
			}},
		}},
	}

	table, programs := build(t, counter, pure, impure)

	annotate.AnalyzePurity(table, programs)

	pureSym, _ := table.Modules["app"].LocalLookup("square")
	impureSym, _ := table.Modules["app"].LocalLookup("bump")

	assert.Equal(t, symbols.PurityPure, pureSym.Purity)
	assert.Equal(t, symbols.PurityWritesGlobal, impureSym.Purity)
}

func TestAnalyzeEscapeMarksAddressTakenLocals(t *testing.T) {
	fn := &ast.FunctionDecl{
		Name: "f",
		Body: &ast.Block{Statements: []ast.Node{
			&ast.VariableDecl{Name: "local", Initializer: &ast.Literal{IntValue: 0}},
			&ast.ExpressionStmt{Expression: &ast.Unary{Op: ast.OpAddressOf, Operand: &ast.Identifier{Path: []string{"local"}}}},
		}},
	}

	table, programs := build(t, fn)

	annotate.AnalyzeEscape(table, programs)

	fnScope := table.FunctionScopes[fn]
	sym, ok := fnScope.LocalLookup("local")
	assert.True(t, ok)
	assert.True(t, sym.Escapes)
}

func TestAnalyzeAliasMarksMappedStructVolatile(t *testing.T) {
	m := &ast.ExplicitStructMapDecl{
		Name:    "vic",
		Address: &ast.Literal{IntValue: 0xD000},
		Fields: []*ast.StructField{
			{Name: "border", Offset: &ast.Literal{IntValue: 0x20}},
		},
	}

	table, programs := build(t, m)

	annotate.AnalyzeAlias(table, programs)

	sym, ok := table.Modules["app"].LocalLookup("vic")
	assert.True(t, ok)
	assert.Equal(t, symbols.RegionVolatile, sym.AliasRegion)
}

func TestAnalyzeReturnsAllFiveResultSets(t *testing.T) {
	counter := &ast.VariableDecl{Name: "counter", Initializer: &ast.Literal{IntValue: 0}}
	table, programs := build(t, counter)

	result := annotate.Analyze(table, programs)

	assert.NotNil(t, result.Usage)
	assert.NotNil(t, result.Unused)
	assert.NotNil(t, result.Purity)
	assert.NotNil(t, result.Escape)
	assert.NotNil(t, result.Alias)
	assert.NotEmpty(t, result.All())
}
