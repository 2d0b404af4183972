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
package symbols_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/blendsdk/blend65/pkg/ast"
	"github.com/blendsdk/blend65/pkg/symbols"
)

func moduleProgram(path []string, decls ...ast.Node) *ast.Program {
	m := &ast.Module{Path: path, Declarations: decls}
	return &ast.Program{Module: m, Declarations: decls}
}

func TestBuildDeclaresTopLevelSymbols(t *testing.T) {
	fn := &ast.FunctionDecl{Name: "main", Body: &ast.Block{}}
	v := &ast.VariableDecl{Name: "counter", Const: false}

	prog := moduleProgram([]string{"app"}, fn, v)

	res := symbols.Build([]*ast.Program{prog})
	assert.True(t, res.Success)
	assert.False(t, res.Diagnostics.HasErrors())

	scope := res.Value.Modules["app"]
	_, ok := scope.LocalLookup("main")
	assert.True(t, ok)
	_, ok = scope.LocalLookup("counter")
	assert.True(t, ok)
}

func TestBuildRejectsDuplicateDeclarationInSameScope(t *testing.T) {
	v1 := &ast.VariableDecl{Name: "x"}
	v2 := &ast.VariableDecl{Name: "x"}

	prog := moduleProgram([]string{"app"}, v1, v2)

	res := symbols.Build([]*ast.Program{prog})
	assert.False(t, res.Success)
	assert.True(t, res.Diagnostics.HasErrors())
}

func TestBuildAllowsShadowingAcrossScopes(t *testing.T) {
	param := &ast.Parameter{Name: "x"}
	inner := &ast.VariableDecl{Name: "x"}
	fn := &ast.FunctionDecl{
		Name:       "f",
		Parameters: []*ast.Parameter{param},
		Body:       &ast.Block{Statements: []ast.Node{inner}},
	}

	prog := moduleProgram([]string{"app"}, fn)

	res := symbols.Build([]*ast.Program{prog})
	assert.True(t, res.Success)
}

func TestBuildFunctionScopeHoldsParameters(t *testing.T) {
	param := &ast.Parameter{Name: "n"}
	fn := &ast.FunctionDecl{Name: "f", Parameters: []*ast.Parameter{param}, Body: &ast.Block{}}

	prog := moduleProgram([]string{"app"}, fn)

	res := symbols.Build([]*ast.Program{prog})
	assert.True(t, res.Success)

	fnScope := res.Value.FunctionScopes[fn]
	assert.NotNil(t, fnScope)

	_, ok := fnScope.LocalLookup("n")
	assert.True(t, ok)
}

func TestBuildEnumMembersDeclaredAtModuleScope(t *testing.T) {
	members := []*ast.EnumMember{{Name: "Red"}, {Name: "Blue"}}
	enum := &ast.EnumDecl{Name: "Color", Members: members}

	prog := moduleProgram([]string{"app"}, enum)

	res := symbols.Build([]*ast.Program{prog})
	assert.True(t, res.Success)

	scope := res.Value.Modules["app"]
	_, ok := scope.LocalLookup("Red")
	assert.True(t, ok)
	_, ok = scope.LocalLookup("Blue")
	assert.True(t, ok)
}

func TestBuildResolvesExportedImportAcrossModules(t *testing.T) {
	exportedFn := &ast.Export{Declaration: &ast.FunctionDecl{Name: "helper", Body: &ast.Block{}}}
	libProg := moduleProgram([]string{"lib"}, exportedFn)

	imp := &ast.Import{ModulePath: []string{"lib"}, Names: []string{"helper"}}
	appModule := &ast.Module{Path: []string{"app"}, Imports: []*ast.Import{imp}}
	appProg := &ast.Program{Module: appModule}

	res := symbols.Build([]*ast.Program{libProg, appProg})
	assert.True(t, res.Success)

	appScope := res.Value.Modules["app"]
	_, ok := appScope.LocalLookup("helper")
	assert.True(t, ok)
}

func TestBuildReportsMissingModuleOnImport(t *testing.T) {
	imp := &ast.Import{ModulePath: []string{"nope"}, Names: []string{"x"}}
	appModule := &ast.Module{Path: []string{"app"}, Imports: []*ast.Import{imp}}
	appProg := &ast.Program{Module: appModule}

	res := symbols.Build([]*ast.Program{appProg})
	assert.False(t, res.Success)
}

func TestBuildReportsNonExportedImport(t *testing.T) {
	privateFn := &ast.FunctionDecl{Name: "helper", Body: &ast.Block{}}
	libProg := moduleProgram([]string{"lib"}, privateFn)

	imp := &ast.Import{ModulePath: []string{"lib"}, Names: []string{"helper"}}
	appModule := &ast.Module{Path: []string{"app"}, Imports: []*ast.Import{imp}}
	appProg := &ast.Program{Module: appModule}

	res := symbols.Build([]*ast.Program{libProg, appProg})
	assert.False(t, res.Success)
}

func TestBuildWildcardImportBringsAllExports(t *testing.T) {
	a := &ast.Export{Declaration: &ast.VariableDecl{Name: "a"}}
	b := &ast.Export{Declaration: &ast.VariableDecl{Name: "b"}}
	libProg := moduleProgram([]string{"lib"}, a, b)

	imp := &ast.Import{ModulePath: []string{"lib"}, Wildcard: true}
	appModule := &ast.Module{Path: []string{"app"}, Imports: []*ast.Import{imp}}
	appProg := &ast.Program{Module: appModule}

	res := symbols.Build([]*ast.Program{libProg, appProg})
	assert.True(t, res.Success)

	appScope := res.Value.Modules["app"]
	_, ok := appScope.LocalLookup("a")
	assert.True(t, ok)
	_, ok = appScope.LocalLookup("b")
	assert.True(t, ok)
}

func TestBuildImportAliasRename(t *testing.T) {
	exported := &ast.Export{Declaration: &ast.VariableDecl{Name: "counter"}}
	libProg := moduleProgram([]string{"lib"}, exported)

	imp := &ast.Import{ModulePath: []string{"lib"}, Names: []string{"counter"}, Alias: "libCounter"}
	appModule := &ast.Module{Path: []string{"app"}, Imports: []*ast.Import{imp}}
	appProg := &ast.Program{Module: appModule}

	res := symbols.Build([]*ast.Program{libProg, appProg})
	assert.True(t, res.Success)

	appScope := res.Value.Modules["app"]
	_, ok := appScope.LocalLookup("libCounter")
	assert.True(t, ok)
	_, ok = appScope.LocalLookup("counter")
	assert.False(t, ok)
}

func TestBuildNestedLoopAndIfScopes(t *testing.T) {
	innerDecl := &ast.VariableDecl{Name: "i"}
	loop := &ast.While{Condition: &ast.Literal{BoolValue: true}, Body: &ast.Block{Statements: []ast.Node{innerDecl}}}
	ifStmt := &ast.If{
		Condition: &ast.Literal{BoolValue: true},
		Then:      &ast.Block{Statements: []ast.Node{&ast.VariableDecl{Name: "i"}}},
	}
	fn := &ast.FunctionDecl{Name: "f", Body: &ast.Block{Statements: []ast.Node{loop, ifStmt}}}

	prog := moduleProgram([]string{"app"}, fn)

	res := symbols.Build([]*ast.Program{prog})
	assert.True(t, res.Success)

	loopScope := res.Value.NodeScopes[loop]
	assert.NotNil(t, loopScope)
	assert.Equal(t, symbols.ScopeLoop, loopScope.Kind)
}
