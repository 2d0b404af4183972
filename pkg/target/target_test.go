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
package target_test

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/blendsdk/blend65/pkg/ast"
	"github.com/blendsdk/blend65/pkg/checker"
	"github.com/blendsdk/blend65/pkg/diag"
	"github.com/blendsdk/blend65/pkg/il"
	"github.com/blendsdk/blend65/pkg/symbols"
	"github.com/blendsdk/blend65/pkg/target"
)

func TestNewC64TargetValidatesClean(t *testing.T) {
	res := target.Validate(target.NewC64Target())
	assert.True(t, res.Success)
	assert.False(t, res.Diagnostics.HasErrors())
}

func TestUnimplementedTargetsReportInvalidTarget(t *testing.T) {
	for _, cfg := range []*target.Config{target.NewC128Target(), target.NewX16Target()} {
		res := target.Validate(cfg)
		assert.True(t, res.Diagnostics.HasErrors())

		found := false
		for _, d := range res.Diagnostics.All() {
			if d.Code == diag.CodeInvalidTarget {
				found = true
			}
		}
		assert.True(t, found)
	}
}

func TestValidateRejectsOverlappingReservedRanges(t *testing.T) {
	cfg := target.NewC64Target()
	cfg.ZeroPage.ReservedRanges = append(cfg.ZeroPage.ReservedRanges, target.ReservedRange{
		Range:  target.Range{Start: 0x00, End: 0x00},
		Reason: "deliberately overlapping for the test",
	})

	res := target.Validate(cfg)
	assert.True(t, res.Diagnostics.HasErrors())
}

func TestByNameResolvesBuiltinTargets(t *testing.T) {
	assert.NotNil(t, target.ByName("c64"))
	assert.NotNil(t, target.ByName("c128"))
	assert.NotNil(t, target.ByName("x16"))
	assert.Nil(t, target.ByName("nes"))
}

func TestLoadConfigRoundTripsBuiltinTarget(t *testing.T) {
	data, err := json.Marshal(target.NewC64Target())
	assert.NoError(t, err)

	res := target.LoadConfig(data)
	assert.True(t, res.Success)
	assert.Equal(t, "c64", res.Value.Architecture)
	assert.True(t, res.Value.Implemented)
}

func TestLoadConfigReportsMalformedJSON(t *testing.T) {
	res := target.LoadConfig([]byte("not json"))
	assert.False(t, res.Success)
	assert.True(t, res.Diagnostics.HasErrors())
}

func buildModule(t *testing.T, decls ...ast.Node) []*il.Module {
	t.Helper()

	m := &ast.Module{Path: []string{"app"}, Declarations: decls}
	prog := &ast.Program{Module: m, Declarations: decls}

	symRes := symbols.Build([]*ast.Program{prog})
	assert.True(t, symRes.Success)

	checkRes := checker.Check(symRes.Value, []*ast.Program{prog})
	assert.True(t, checkRes.Success)

	ilRes := il.Build(symRes.Value, checkRes.Value, []*ast.Program{prog})
	assert.True(t, ilRes.Success)

	return ilRes.Value
}

func TestCheckDeclarationsRejectsReservedZeroPageAddress(t *testing.T) {
	decl := &ast.VariableDecl{
		Name:        "border",
		Storage:     ast.StorageZeroPage,
		Initializer: &ast.Literal{IntValue: 0},
		MapAddress:  &ast.Literal{IntValue: 0x00},
	}

	modules := buildModule(t, decl)

	diags := target.CheckDeclarations(target.NewC64Target(), modules)
	assert.True(t, diags.HasErrors())

	found := false
	for _, d := range diags.All() {
		if d.Code == diag.CodeReservedZeroPage {
			found = true
		}
	}
	assert.True(t, found)
}

func TestCheckDeclarationsAcceptsSafeZeroPageAddress(t *testing.T) {
	decl := &ast.VariableDecl{
		Name:        "counter",
		Storage:     ast.StorageZeroPage,
		Initializer: &ast.Literal{IntValue: 0},
		MapAddress:  &ast.Literal{IntValue: 0x10},
	}

	modules := buildModule(t, decl)

	diags := target.CheckDeclarations(target.NewC64Target(), modules)
	assert.False(t, diags.HasErrors())
}

func TestCheckDeclarationsRejectsSpanCrossingIntoReservedRange(t *testing.T) {
	// $8F is itself a safe address, but a word-sized @zp variable there spans
	// $8F-$90 and $90 falls inside the KERNAL-reserved $90-$97 range.
	decl := &ast.VariableDecl{
		Name:        "frameCounter",
		Storage:     ast.StorageZeroPage,
		Annotation:  &ast.TypeAnnotation{Name: "word"},
		Initializer: &ast.Literal{IntValue: 0},
		MapAddress:  &ast.Literal{IntValue: 0x8F},
	}

	modules := buildModule(t, decl)

	diags := target.CheckDeclarations(target.NewC64Target(), modules)
	assert.True(t, diags.HasErrors())

	found := false
	for _, d := range diags.All() {
		if d.Code == diag.CodeReservedZeroPage {
			found = true
		}
	}
	assert.True(t, found)
}

func TestCheckDeclarationsRejectsStructMapFieldSpanningReservedRange(t *testing.T) {
	fields := []*ast.StructField{
		{Name: "a", Annotation: &ast.TypeAnnotation{Name: "byte"}},
		{Name: "b", Annotation: &ast.TypeAnnotation{Name: "word"}},
	}
	decl := &ast.SequentialStructMapDecl{
		Name:    "io",
		Address: &ast.Literal{IntValue: 0x8F},
		Fields:  fields,
	}

	modules := buildModule(t, decl)

	diags := target.CheckDeclarations(target.NewC64Target(), modules)
	assert.True(t, diags.HasErrors())
}

func TestAnalyzeFunctionPopulatesMetadataAndHints(t *testing.T) {
	fn := &ast.FunctionDecl{
		Name:   "f",
		Return: &ast.TypeAnnotation{Name: "byte"},
		Body: &ast.Block{Statements: []ast.Node{
			&ast.VariableDecl{Name: "i", Initializer: &ast.Literal{IntValue: 0}},
			&ast.While{
				Condition: &ast.Binary{Op: ast.OpLt, Left: &ast.Identifier{Path: []string{"i"}}, Right: &ast.Literal{IntValue: 10}},
				Body: &ast.Block{Statements: []ast.Node{
					&ast.ExpressionStmt{Expression: &ast.Assignment{
						Target: &ast.Identifier{Path: []string{"i"}},
						Value:  &ast.Binary{Op: ast.OpAdd, Left: &ast.Identifier{Path: []string{"i"}}, Right: &ast.Literal{IntValue: 1}},
					}},
				}},
			},
			&ast.Return{Value: &ast.Identifier{Path: []string{"i"}}},
		}},
	}

	modules := buildModule(t, fn)
	cfg := target.NewC64Target()

	var loopDepthSeen bool
	for _, m := range modules {
		for _, f := range m.Functions {
			hints := target.AnalyzeFunction(cfg, f)
			assert.NotNil(t, hints)

			for _, b := range f.Blocks {
				for _, instr := range b.Instructions {
					if instr.Metadata.LoopDepth > 0 {
						loopDepthSeen = true
					}
				}
			}
		}
	}

	assert.True(t, loopDepthSeen)
}
