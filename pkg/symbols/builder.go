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
package symbols

import (
	"strings"

	log "github.com/sirupsen/logrus"

	"github.com/blendsdk/blend65/pkg/ast"
	"github.com/blendsdk/blend65/pkg/diag"
)

// Table is the symbol table produced by pass 1: one scope tree per module,
// plus the side tables relating AST nodes to the scope they introduce.
// Imports are resolved by scanning all source texts together — there is no
// separate-compilation interface-file mechanism (§1 Non-goals) — so Build
// takes every module's Program in one call.
type Table struct {
	// Modules maps a fully-qualified dotted module path to its root scope.
	Modules map[string]*Scope
	// FunctionScopes maps a function declaration to the scope holding its
	// parameters (and, transitively, its body's nested scopes).
	FunctionScopes map[*ast.FunctionDecl]*Scope
	// NodeScopes maps any scope-introducing statement node (If/While/DoWhile/
	// For/Block/Match) to the scope it introduces.
	NodeScopes map[ast.Node]*Scope
}

// Build runs pass 1 over every given program, producing one module scope per
// program plus cross-module import resolution.
func Build(programs []*ast.Program) diag.Result[*Table] {
	diags := diag.NewDiagnostics(diag.DefaultDiagnosticCap)

	table := &Table{
		Modules:        make(map[string]*Scope),
		FunctionScopes: make(map[*ast.FunctionDecl]*Scope),
		NodeScopes:     make(map[ast.Node]*Scope),
	}

	b := &builder{table: table, diags: diags}

	// First pass: declare every module and its top-level symbols, without
	// resolving imports yet (a module may import from one declared later in
	// program order).
	for _, p := range programs {
		if p.Module == nil {
			continue
		}

		b.declareModule(p.Module)
	}

	// Second pass: resolve imports now that every module's exports exist.
	for _, p := range programs {
		if p.Module == nil {
			continue
		}

		path := strings.Join(p.Module.Path, ".")
		scope := table.Modules[path]
		b.resolveImports(scope, p.Module)
	}

	log.Debugf("symbols: built %d module scope(s)", len(table.Modules))

	return diag.Of(table, diags)
}

type builder struct {
	table *Table
	diags *diag.Diagnostics
}

func (b *builder) declareModule(m *ast.Module) {
	path := strings.Join(m.Path, ".")
	scope := NewModuleScope()
	b.table.Modules[path] = scope

	for _, decl := range m.Declarations {
		b.declareTopLevel(scope, decl)
	}
}

// declareTopLevel handles a single module-scope declaration, including one
// wrapped in an Export node.  Exports must occur at module scope (§4.1): an
// Export wrapping anything that is not itself a top-level declarable is
// reported and skipped.
func (b *builder) declareTopLevel(scope *Scope, node ast.Node) {
	exported := false

	if exp, ok := node.(*ast.Export); ok {
		exported = true
		node = exp.Declaration
	}

	sym := b.symbolFor(scope, node, exported)
	if sym == nil {
		if exported {
			b.diags.Add(diag.Errorf(diag.CodeExportRequiresDecl, node.Location(),
				"export must wrap a declaration"))
		}

		return
	}

	if !scope.Declare(sym) {
		b.diags.Add(diag.Errorf(diag.CodeDuplicateDeclaration, node.Location(),
			"%q is already declared in this scope", sym.Name))

		return
	}

	// Function declarations additionally open a function scope for their
	// parameters and body (§4.1: "Function declarations create a function
	// scope; parameters are declared inside it").
	if fn, ok := node.(*ast.FunctionDecl); ok {
		b.declareFunction(scope, fn, sym)
	}
}

func (b *builder) symbolFor(scope *Scope, node ast.Node, exported bool) *Symbol {
	switch n := node.(type) {
	case *ast.FunctionDecl:
		return &Symbol{Name: n.Name, SymbolKind: KindFunction, Location: n.Location(), Exported: exported, Initializer: n.Body}
	case *ast.VariableDecl:
		kind := KindVariable
		if n.Const {
			kind = KindConstant
		}

		return &Symbol{
			Name: n.Name, SymbolKind: kind, Location: n.Location(), Exported: exported,
			Storage: n.Storage, Initializer: n.Initializer,
		}
	case *ast.EnumDecl:
		b.declareEnumMembers(scope, n, exported)
		return &Symbol{Name: n.Name, SymbolKind: KindConstant, Location: n.Location(), Exported: exported}
	case *ast.TypeDecl:
		return &Symbol{Name: n.Name, SymbolKind: KindConstant, Location: n.Location(), Exported: exported}
	case *ast.SimpleMapDecl:
		return &Symbol{Name: n.Name, SymbolKind: KindVariable, Location: n.Location(), Exported: exported, Storage: ast.StorageMap}
	case *ast.RangeMapDecl:
		return &Symbol{Name: n.Name, SymbolKind: KindVariable, Location: n.Location(), Exported: exported, Storage: ast.StorageMap}
	case *ast.SequentialStructMapDecl:
		return &Symbol{Name: n.Name, SymbolKind: KindVariable, Location: n.Location(), Exported: exported, Storage: ast.StorageMap}
	case *ast.ExplicitStructMapDecl:
		return &Symbol{Name: n.Name, SymbolKind: KindVariable, Location: n.Location(), Exported: exported, Storage: ast.StorageMap}
	default:
		return nil
	}
}

func (b *builder) declareEnumMembers(scope *Scope, decl *ast.EnumDecl, exported bool) {
	for _, m := range decl.Members {
		sym := &Symbol{Name: m.Name, SymbolKind: KindEnumMember, Location: m.Location(), Exported: exported}
		if !scope.Declare(sym) {
			b.diags.Add(diag.Errorf(diag.CodeDuplicateDeclaration, m.Location(),
				"%q is already declared in this scope", m.Name))
		}
	}
}

func (b *builder) declareFunction(parent *Scope, fn *ast.FunctionDecl, sym *Symbol) {
	fnScope := parent.NewChild(ScopeFunction)
	b.table.FunctionScopes[fn] = fnScope

	sym.Parameters = make([]*Symbol, 0, len(fn.Parameters))

	for _, p := range fn.Parameters {
		paramSym := &Symbol{Name: p.Name, SymbolKind: KindParameter, Location: p.Location()}
		sym.Parameters = append(sym.Parameters, paramSym)

		if !fnScope.Declare(paramSym) {
			b.diags.Add(diag.Errorf(diag.CodeDuplicateDeclaration, p.Location(),
				"parameter %q is already declared", p.Name))
		}
	}

	if fn.Body != nil {
		// The body's own Block creates a further nested scope (§4.1), so a
		// local inside it shadows, rather than collides with, a parameter.
		b.declareBlock(fnScope, fn.Body)
	}
}

// declareBlock recurses through a function body, opening a nested block or
// loop scope at each construct named in §4.1 ("Loop headers, if/else
// branches, and standalone blocks create nested block scopes").
func (b *builder) declareBlock(parent *Scope, block *ast.Block) {
	scope := parent.NewChild(ScopeBlock)
	b.table.NodeScopes[block] = scope

	for _, stmt := range block.Statements {
		b.declareStatement(scope, stmt)
	}
}

func (b *builder) declareStatement(scope *Scope, stmt ast.Node) {
	switch s := stmt.(type) {
	case *ast.VariableDecl:
		sym := b.symbolFor(scope, s, false)
		if sym != nil && !scope.Declare(sym) {
			b.diags.Add(diag.Errorf(diag.CodeDuplicateDeclaration, s.Location(),
				"%q is already declared in this scope", sym.Name))
		}
	case *ast.Block:
		b.declareBlock(scope, s)
	case *ast.If:
		b.declareIf(scope, s)
	case *ast.While:
		b.declareLoop(scope, s, s.Body)
	case *ast.DoWhile:
		b.declareLoop(scope, s, s.Body)
	case *ast.For:
		b.declareFor(scope, s)
	case *ast.Match:
		b.declareMatch(scope, s)
	default:
		// Expression/Return/Break/Continue statements introduce no scope
		// and declare no symbol.
	}
}

func (b *builder) declareIf(parent *Scope, n *ast.If) {
	b.declareBlock(parent, n.Then)

	switch e := n.Else.(type) {
	case *ast.Block:
		b.declareBlock(parent, e)
	case *ast.If:
		b.declareIf(parent, e)
	}
}

func (b *builder) declareLoop(parent *Scope, node ast.Node, body *ast.Block) {
	loopScope := parent.NewChild(ScopeLoop)
	b.table.NodeScopes[node] = loopScope
	b.declareBlock(loopScope, body)
}

func (b *builder) declareFor(parent *Scope, n *ast.For) {
	loopScope := parent.NewChild(ScopeLoop)
	b.table.NodeScopes[n] = loopScope

	if decl, ok := n.Init.(*ast.VariableDecl); ok {
		sym := b.symbolFor(loopScope, decl, false)
		if sym != nil && !loopScope.Declare(sym) {
			b.diags.Add(diag.Errorf(diag.CodeDuplicateDeclaration, decl.Location(),
				"%q is already declared in this scope", sym.Name))
		}
	}

	b.declareBlock(loopScope, n.Body)
}

func (b *builder) declareMatch(parent *Scope, n *ast.Match) {
	for _, c := range n.Cases {
		b.declareBlock(parent, c.Body)
	}
}

// resolveImports binds each Import declaration's requested names (or every
// exported symbol, for a wildcard import) as aliases visible in the
// importing module's scope — mirroring go-corset's ModuleScope.Alias.
func (b *builder) resolveImports(scope *Scope, m *ast.Module) {
	for _, imp := range m.Imports {
		targetPath := strings.Join(imp.ModulePath, ".")

		target, ok := b.table.Modules[targetPath]
		if !ok {
			b.diags.Add(diag.Errorf(diag.CodeModuleNotFound, imp.Location(),
				"module %q not found", targetPath))

			continue
		}

		if imp.Wildcard {
			for _, sym := range target.Symbols() {
				if sym.Exported {
					b.aliasInto(scope, imp, sym.Name, sym)
				}
			}

			continue
		}

		for _, name := range imp.Names {
			sym, ok := target.LocalLookup(name)
			if !ok || !sym.Exported {
				b.diags.Add(diag.Errorf(diag.CodeModuleNotFound, imp.Location(),
					"module %q has no exported symbol %q", targetPath, name))

				continue
			}

			b.aliasInto(scope, imp, name, sym)
		}
	}
}

func (b *builder) aliasInto(scope *Scope, imp *ast.Import, name string, sym *Symbol) {
	alias := name
	if imp.Alias != "" {
		alias = imp.Alias
	}

	if _, exists := scope.LocalLookup(alias); exists {
		b.diags.Add(diag.Errorf(diag.CodeDuplicateDeclaration, imp.Location(),
			"import of %q collides with an existing declaration", alias))

		return
	}

	imported := &Symbol{
		Name: alias, SymbolKind: KindImport, Type: sym.Type, Location: imp.Location(),
		Storage: sym.Storage,
	}
	scope.Declare(imported)
}
