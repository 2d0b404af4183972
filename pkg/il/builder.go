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
	"github.com/blendsdk/blend65/pkg/checker"
	"github.com/blendsdk/blend65/pkg/diag"
	"github.com/blendsdk/blend65/pkg/symbols"
	"github.com/blendsdk/blend65/pkg/types"
)

type loopTargets struct {
	continueTarget *BasicBlock
	breakTarget    *BasicBlock
}

// mapFieldInfo is the resolved base/offset of one struct-map field,
// recorded while lowering the declaring global so Member accesses can find
// it by name without re-walking the declaration (§4.7).
type mapFieldInfo struct {
	base      uint32
	offset    uint32
	rangeFrom uint32
	rangeTo   uint32
	isRange   bool
}

// builder lowers one module's type-checked AST into il.Module, threading a
// current block and register factory exactly as §4.7 describes, and
// resolving identifiers by the *symbols.Symbol the checker's own scope
// chain already resolved them to (so shadowing "just works" the same way
// it does in pkg/checker).
type builder struct {
	table   *symbols.Table
	checked *checker.Result
	diags   *diag.Diagnostics

	regs    registerFactory
	blockID int

	module  *Module
	globals map[*symbols.Symbol]*VirtualRegister
	fields  map[string]mapFieldInfo

	locals  map[*symbols.Symbol]*VirtualRegister
	fn      *Function
	current *BasicBlock
	loops   []loopTargets
}

// Build lowers every program into its own Module (§4.7).
func Build(table *symbols.Table, checked *checker.Result, programs []*ast.Program) diag.Result[[]*Module] {
	diags := diag.NewDiagnostics(diag.DefaultDiagnosticCap)

	var modules []*Module

	for _, p := range programs {
		b := &builder{
			table:   table,
			checked: checked,
			diags:   diags,
			globals: make(map[*symbols.Symbol]*VirtualRegister),
			fields:  make(map[string]mapFieldInfo),
		}

		modules = append(modules, b.buildProgram(p))
	}

	return diag.Of(modules, diags)
}

func (b *builder) buildProgram(p *ast.Program) *Module {
	m := &Module{}

	if p.Module != nil {
		m.Path = p.Module.Path
		m.Imports = p.Module.Imports

		b.module = m
		scope := b.table.Modules[joinPath(p.Module.Path)]

		for _, decl := range p.Module.Declarations {
			b.lowerTopLevel(scope, decl)
		}
	}

	return m
}

func joinPath(path []string) string {
	out := ""

	for i, p := range path {
		if i > 0 {
			out += "."
		}

		out += p
	}

	return out
}

func (b *builder) lowerTopLevel(scope *symbols.Scope, decl ast.Node) {
	exported := false

	if exp, ok := decl.(*ast.Export); ok {
		decl = exp.Declaration
		exported = true
	}

	switch d := decl.(type) {
	case *ast.FunctionDecl:
		b.module.Functions = append(b.module.Functions, b.lowerFunction(scope, d, exported))
	case *ast.VariableDecl:
		b.lowerGlobalVariable(scope, d, exported)
	case *ast.SimpleMapDecl:
		b.lowerSimpleMap(scope, d, exported)
	case *ast.RangeMapDecl:
		b.lowerRangeMap(scope, d, exported)
	case *ast.SequentialStructMapDecl:
		b.lowerSequentialStructMap(scope, d, exported)
	case *ast.ExplicitStructMapDecl:
		b.lowerExplicitStructMap(scope, d, exported)
	case *ast.EnumDecl, *ast.TypeDecl:
		// Compile-time only; no IL representation.
	}

	if exported {
		if named, ok := nameOf(decl); ok {
			b.module.Exports = append(b.module.Exports, named)
		}
	}
}

func nameOf(decl ast.Node) (string, bool) {
	switch d := decl.(type) {
	case *ast.FunctionDecl:
		return d.Name, true
	case *ast.VariableDecl:
		return d.Name, true
	case *ast.SimpleMapDecl:
		return d.Name, true
	case *ast.RangeMapDecl:
		return d.Name, true
	case *ast.SequentialStructMapDecl:
		return d.Name, true
	case *ast.ExplicitStructMapDecl:
		return d.Name, true
	default:
		return "", false
	}
}

func literalAddress(n ast.Node) uint32 {
	if lit, ok := n.(*ast.Literal); ok {
		return lit.IntValue
	}

	return 0
}

// sizeInBytes returns a declared type's storage size, defaulting to one byte
// for an unresolved or zero-width type so a single-cell global still spans
// at least the byte it occupies.
func sizeInBytes(t *types.Type) uint32 {
	if t == nil {
		return 1
	}

	if sz := t.SizeInBytes(); sz > 0 {
		return sz
	}

	return 1
}

// fieldEndOffset returns a struct-map field's inclusive end byte, relative
// to the struct's base address: the checker's explicit End when the field
// is itself a range, otherwise its offset plus its own type's size.
func fieldEndOffset(layout checker.FieldLayout) uint32 {
	if layout.End != nil {
		return *layout.End
	}

	return layout.Offset + sizeInBytes(layout.Type) - 1
}

func (b *builder) lowerGlobalVariable(scope *symbols.Scope, decl *ast.VariableDecl, exported bool) {
	sym, _ := scope.LocalLookup(decl.Name)
	g := &Global{Name: decl.Name, Storage: decl.Storage, Exported: exported}

	if sym != nil {
		g.Type = sym.Type
	}

	if decl.Initializer != nil {
		if lit, ok := decl.Initializer.(*ast.Literal); ok {
			g.HasInitial = true
			g.InitialInt = lit.IntValue
			g.InitialBool = lit.BoolValue
		}
	}

	if decl.MapAddress != nil {
		g.HasAddress = true
		g.MapAddress = literalAddress(decl.MapAddress)
		g.EndAddress = g.MapAddress + sizeInBytes(g.Type) - 1
	}

	b.module.Globals = append(b.module.Globals, g)

	if sym != nil {
		b.globals[sym] = b.regs.new(decl.Name, g.Type)
	}
}

func (b *builder) lowerSimpleMap(scope *symbols.Scope, decl *ast.SimpleMapDecl, exported bool) {
	sym, _ := scope.LocalLookup(decl.Name)

	g := &Global{Name: decl.Name, Storage: ast.StorageMap, Exported: exported, HasAddress: true, MapAddress: literalAddress(decl.Address)}
	if sym != nil {
		g.Type = sym.Type
	}

	g.EndAddress = g.MapAddress + sizeInBytes(g.Type) - 1

	b.module.Globals = append(b.module.Globals, g)

	if sym != nil {
		b.globals[sym] = b.regs.new(decl.Name, g.Type)
	}
}

func (b *builder) lowerRangeMap(scope *symbols.Scope, decl *ast.RangeMapDecl, exported bool) {
	sym, _ := scope.LocalLookup(decl.Name)

	g := &Global{
		Name: decl.Name, Storage: ast.StorageMap, Exported: exported, HasAddress: true,
		MapAddress: literalAddress(decl.From), EndAddress: literalAddress(decl.To),
	}
	if sym != nil {
		g.Type = sym.Type
	}

	b.module.Globals = append(b.module.Globals, g)
	b.fields[decl.Name] = mapFieldInfo{base: literalAddress(decl.From), rangeFrom: literalAddress(decl.From), rangeTo: literalAddress(decl.To), isRange: true}

	if sym != nil {
		b.globals[sym] = b.regs.new(decl.Name, g.Type)
	}
}

func (b *builder) lowerSequentialStructMap(scope *symbols.Scope, decl *ast.SequentialStructMapDecl, exported bool) {
	sym, _ := scope.LocalLookup(decl.Name)
	base := literalAddress(decl.Address)

	g := &Global{Name: decl.Name, Storage: ast.StorageMap, Exported: exported, HasAddress: true, MapAddress: base}
	if sym != nil {
		g.Type = sym.Type
	}

	var maxEnd uint32

	for _, f := range decl.Fields {
		layout := b.checked.Fields[f]
		key := decl.Name + "." + f.Name

		if layout.End != nil {
			b.fields[key] = mapFieldInfo{base: base, rangeFrom: base + layout.Offset, rangeTo: base + *layout.End, isRange: true}
		} else {
			b.fields[key] = mapFieldInfo{base: base, offset: layout.Offset}
		}

		maxEnd = max(maxEnd, fieldEndOffset(layout))
	}

	g.EndAddress = base + maxEnd
	b.module.Globals = append(b.module.Globals, g)

	if sym != nil {
		b.globals[sym] = b.regs.new(decl.Name, g.Type)
	}
}

func (b *builder) lowerExplicitStructMap(scope *symbols.Scope, decl *ast.ExplicitStructMapDecl, exported bool) {
	sym, _ := scope.LocalLookup(decl.Name)
	base := literalAddress(decl.Address)

	g := &Global{Name: decl.Name, Storage: ast.StorageMap, Exported: exported, HasAddress: true, MapAddress: base}
	if sym != nil {
		g.Type = sym.Type
	}

	var maxEnd uint32

	for _, f := range decl.Fields {
		layout := b.checked.Fields[f]
		key := decl.Name + "." + f.Name

		if layout.End != nil {
			b.fields[key] = mapFieldInfo{base: base, rangeFrom: base + layout.Offset, rangeTo: base + *layout.End, isRange: true}
		} else {
			b.fields[key] = mapFieldInfo{base: base, offset: layout.Offset}
		}

		maxEnd = max(maxEnd, fieldEndOffset(layout))
	}

	g.EndAddress = base + maxEnd
	b.module.Globals = append(b.module.Globals, g)

	if sym != nil {
		b.globals[sym] = b.regs.new(decl.Name, g.Type)
	}
}

func (b *builder) newBlock(label string) *BasicBlock {
	blk := &BasicBlock{ID: b.blockID, Label: label}
	b.blockID++
	b.fn.Blocks = append(b.fn.Blocks, blk)

	return blk
}

func linkBlocks(from, to *BasicBlock) {
	if from == nil || to == nil {
		return
	}

	from.Successors = append(from.Successors, to)
	to.Predecessors = append(to.Predecessors, from)
}

func (b *builder) emit(instr *Instruction) {
	if b.current == nil {
		return
	}

	instr.ID = len(b.current.Instructions)
	b.current.Instructions = append(b.current.Instructions, instr)
}

func (b *builder) lowerFunction(scope *symbols.Scope, fn *ast.FunctionDecl, exported bool) *Function {
	sym, _ := scope.LocalLookup(fn.Name)

	f := &Function{Name: fn.Name, Exported: exported}
	if sym != nil && sym.Type != nil && sym.Type.Tag() == types.TagFunction {
		f.ReturnType = sym.Type.Result()
	}

	fnScope := b.table.FunctionScopes[fn]

	for _, p := range fn.Parameters {
		var paramSym *symbols.Symbol
		if fnScope != nil {
			paramSym, _ = fnScope.LocalLookup(p.Name)
		}

		var t *types.Type
		if paramSym != nil {
			t = paramSym.Type
		}

		reg := b.regs.new(p.Name, t)
		f.Parameters = append(f.Parameters, reg)

		if paramSym != nil {
			if b.locals == nil {
				b.locals = make(map[*symbols.Symbol]*VirtualRegister)
			}

			b.locals[paramSym] = reg
		}
	}

	if fn.IsStub() {
		f.IsStub = true
		return f
	}

	prevFn, prevCurrent, prevLocals, prevLoops := b.fn, b.current, b.locals, b.loops
	b.fn = f
	b.loops = nil

	if b.locals == nil {
		b.locals = make(map[*symbols.Symbol]*VirtualRegister)
	}

	entry := b.newBlock("entry")
	f.Entry = entry
	b.current = entry

	bodyScope := b.table.NodeScopes[fn.Body]
	if bodyScope == nil {
		bodyScope = fnScope
	}

	b.lowerBlockStatements(bodyScope, fn.Body)

	if b.current != nil {
		b.emit(&Instruction{Op: OpReturn})
	}

	b.fn, b.current, b.locals, b.loops = prevFn, prevCurrent, prevLocals, prevLoops

	return f
}

func (b *builder) lowerBlockStatements(scope *symbols.Scope, block *ast.Block) {
	s := b.table.NodeScopes[block]
	if s == nil {
		s = scope
	}

	for _, stmt := range block.Statements {
		b.lowerStatement(s, stmt)
	}
}

func (b *builder) lowerStatement(scope *symbols.Scope, stmt ast.Node) {
	switch s := stmt.(type) {
	case *ast.VariableDecl:
		b.lowerLocalVariable(scope, s)
	case *ast.ExpressionStmt:
		b.lowerExprStatement(scope, s.Expression)
	case *ast.Return:
		b.lowerReturn(scope, s)
	case *ast.Break:
		if len(b.loops) > 0 {
			linkBlocks(b.current, b.loops[len(b.loops)-1].breakTarget)
		}

		b.current = nil
	case *ast.Continue:
		if len(b.loops) > 0 {
			linkBlocks(b.current, b.loops[len(b.loops)-1].continueTarget)
		}

		b.current = nil
	case *ast.Block:
		b.lowerBlockStatements(scope, s)
	case *ast.If:
		b.lowerIf(scope, s)
	case *ast.While:
		b.lowerWhile(scope, s)
	case *ast.DoWhile:
		b.lowerDoWhile(scope, s)
	case *ast.For:
		b.lowerFor(scope, s)
	case *ast.Match:
		b.lowerMatch(scope, s)
	}
}

func (b *builder) lowerLocalVariable(scope *symbols.Scope, decl *ast.VariableDecl) {
	sym, _ := scope.LocalLookup(decl.Name)

	var t *types.Type
	if sym != nil {
		t = sym.Type
	}

	reg := b.regs.new(decl.Name, t)
	if sym != nil {
		b.locals[sym] = reg
	}

	if decl.Initializer != nil {
		src := b.lowerExpr(scope, decl.Initializer)
		b.emit(&Instruction{Op: OpMove, Dst: reg, Args: []*VirtualRegister{src}})
	}
}

func (b *builder) lowerExprStatement(scope *symbols.Scope, expr ast.Node) {
	if a, ok := expr.(*ast.Assignment); ok {
		b.lowerAssignment(scope, a)
		return
	}

	b.lowerExpr(scope, expr)
}

func (b *builder) lowerAssignment(scope *symbols.Scope, a *ast.Assignment) {
	value := b.lowerExpr(scope, a.Value)

	switch target := a.Target.(type) {
	case *ast.Identifier:
		reg, _ := b.resolveIdentifier(scope, target)
		if reg != nil {
			b.emit(&Instruction{Op: OpMove, Dst: reg, Args: []*VirtualRegister{value}})
		}
	case *ast.Index:
		arr := b.lowerExpr(scope, target.Array)
		idx := b.lowerExpr(scope, target.At)
		b.emit(&Instruction{Op: OpIndexStore, Args: []*VirtualRegister{arr, idx, value}})
	case *ast.Member:
		b.lowerMapStore(scope, target, value)
	}
}

func (b *builder) lowerMapStore(scope *symbols.Scope, m *ast.Member, value *VirtualRegister) {
	info, ok := b.memberFieldInfo(m)
	if !ok {
		return
	}

	if info.isRange {
		b.emit(&Instruction{Op: OpMapStoreRange, Base: info.base, RangeFrom: info.rangeFrom, RangeTo: info.rangeTo, Args: []*VirtualRegister{value}})
	} else {
		b.emit(&Instruction{Op: OpMapStoreField, Base: info.base, FieldOffset: info.offset, Args: []*VirtualRegister{value}})
	}
}

func (b *builder) memberFieldInfo(m *ast.Member) (mapFieldInfo, bool) {
	id, ok := m.Object.(*ast.Identifier)
	if !ok {
		return mapFieldInfo{}, false
	}

	info, ok := b.fields[id.Name()+"."+m.Field]

	return info, ok
}

func (b *builder) resolveIdentifier(scope *symbols.Scope, id *ast.Identifier) (*VirtualRegister, *symbols.Symbol) {
	sym, ok := scope.Lookup(id.Name())
	if !ok {
		return nil, nil
	}

	if reg, ok := b.locals[sym]; ok {
		return reg, sym
	}

	if reg, ok := b.globals[sym]; ok {
		return reg, sym
	}

	reg := b.regs.new(sym.Name, sym.Type)
	b.globals[sym] = reg

	return reg, sym
}

func (b *builder) lowerReturn(scope *symbols.Scope, ret *ast.Return) {
	if ret.Value == nil {
		b.emit(&Instruction{Op: OpReturn})
		b.current = nil

		return
	}

	v := b.lowerExpr(scope, ret.Value)
	b.emit(&Instruction{Op: OpReturn, Args: []*VirtualRegister{v}})
	b.current = nil
}

func (b *builder) lowerIf(scope *symbols.Scope, n *ast.If) {
	cond := b.lowerExpr(scope, n.Condition)

	thenBlock := b.newBlock("then")
	var elseBlock *BasicBlock

	branch := &Instruction{Op: OpBranch, Args: []*VirtualRegister{cond}, Targets: []*BasicBlock{thenBlock, nil}}

	entry := b.current
	b.emit(branch)
	linkBlocks(entry, thenBlock)

	b.current = thenBlock
	b.lowerBlockStatements(scope, n.Then)
	thenTail := b.current

	var elseTail *BasicBlock

	switch e := n.Else.(type) {
	case nil:
		elseTail = entry
	case *ast.Block:
		elseBlock = b.newBlock("else")
		linkBlocks(entry, elseBlock)
		branch.Targets[1] = elseBlock
		b.current = elseBlock
		b.lowerBlockStatements(scope, e)
		elseTail = b.current
	case *ast.If:
		elseBlock = b.newBlock("else")
		linkBlocks(entry, elseBlock)
		branch.Targets[1] = elseBlock
		b.current = elseBlock
		b.lowerIf(scope, e)
		elseTail = b.current
	}

	merge := b.newBlock("merge")

	if branch.Targets[1] == nil {
		branch.Targets[1] = merge
	}

	if thenTail != nil {
		linkBlocks(thenTail, merge)
		b.emitJumpIfOpen(thenTail, merge)
	}

	if elseTail != nil {
		linkBlocks(elseTail, merge)
		b.emitJumpIfOpen(elseTail, merge)
	}

	b.current = merge
}

// emitJumpIfOpen appends an explicit jump to target if blk has not already
// been closed by a terminator (return/break/continue).
func (b *builder) emitJumpIfOpen(blk, target *BasicBlock) {
	if blk.Terminator() != nil {
		return
	}

	blk.Instructions = append(blk.Instructions, &Instruction{ID: len(blk.Instructions), Op: OpJump, Targets: []*BasicBlock{target}})
}

func (b *builder) lowerWhile(scope *symbols.Scope, n *ast.While) {
	header := b.newBlock("loop_header")
	body := b.newBlock("loop_body")
	exit := b.newBlock("loop_exit")

	linkBlocks(b.current, header)
	b.current = header

	cond := b.lowerExpr(scope, n.Condition)
	b.emit(&Instruction{Op: OpBranch, Args: []*VirtualRegister{cond}, Targets: []*BasicBlock{body, exit}})
	linkBlocks(header, body)
	linkBlocks(header, exit)

	b.loops = append(b.loops, loopTargets{continueTarget: header, breakTarget: exit})
	b.current = body
	b.lowerBlockStatements(scope, n.Body)
	b.loops = b.loops[:len(b.loops)-1]

	if b.current != nil {
		linkBlocks(b.current, header)
		b.emit(&Instruction{Op: OpJump, Targets: []*BasicBlock{header}})
	}

	b.current = exit
}

func (b *builder) lowerDoWhile(scope *symbols.Scope, n *ast.DoWhile) {
	body := b.newBlock("loop_body")
	exit := b.newBlock("loop_exit")

	linkBlocks(b.current, body)
	b.current = body

	b.loops = append(b.loops, loopTargets{continueTarget: body, breakTarget: exit})
	b.lowerBlockStatements(scope, n.Body)
	b.loops = b.loops[:len(b.loops)-1]

	if b.current != nil {
		cond := b.lowerExpr(scope, n.Condition)
		b.emit(&Instruction{Op: OpBranch, Args: []*VirtualRegister{cond}, Targets: []*BasicBlock{body, exit}})
		linkBlocks(b.current, body)
		linkBlocks(b.current, exit)
	}

	b.current = exit
}

func (b *builder) lowerFor(scope *symbols.Scope, n *ast.For) {
	if n.Init != nil {
		b.lowerStatement(scope, n.Init)
	}

	header := b.newBlock("loop_header")
	body := b.newBlock("loop_body")
	exit := b.newBlock("loop_exit")

	linkBlocks(b.current, header)
	b.current = header

	if n.Condition != nil {
		cond := b.lowerExpr(scope, n.Condition)
		b.emit(&Instruction{Op: OpBranch, Args: []*VirtualRegister{cond}, Targets: []*BasicBlock{body, exit}})
	} else {
		b.emit(&Instruction{Op: OpJump, Targets: []*BasicBlock{body}})
	}

	linkBlocks(header, body)
	linkBlocks(header, exit)

	b.loops = append(b.loops, loopTargets{continueTarget: header, breakTarget: exit})
	b.current = body
	b.lowerBlockStatements(scope, n.Body)
	b.loops = b.loops[:len(b.loops)-1]

	if b.current != nil && n.Post != nil {
		b.lowerStatement(scope, n.Post)
	}

	if b.current != nil {
		linkBlocks(b.current, header)
		b.emit(&Instruction{Op: OpJump, Targets: []*BasicBlock{header}})
	}

	b.current = exit
}

func (b *builder) lowerMatch(scope *symbols.Scope, n *ast.Match) {
	scrutinee := b.lowerExpr(scope, n.Scrutinee)
	entry := b.current
	merge := b.newBlock("match_merge")

	for _, c := range n.Cases {
		caseBlock := b.newBlock("case")

		if len(c.Values) > 0 {
			eq := b.lowerMatchCondition(scope, scrutinee, c.Values)
			next := b.newBlock("case_next")
			b.emit(&Instruction{Op: OpBranch, Args: []*VirtualRegister{eq}, Targets: []*BasicBlock{caseBlock, next}})
			linkBlocks(entry, caseBlock)
			linkBlocks(entry, next)
			entry = next
			b.current = next
		} else {
			linkBlocks(entry, caseBlock)
		}

		prev := b.current
		b.current = caseBlock
		b.lowerBlockStatements(scope, c.Body)

		if b.current != nil {
			linkBlocks(b.current, merge)
			b.emit(&Instruction{Op: OpJump, Targets: []*BasicBlock{merge}})
		}

		b.current = prev
	}

	linkBlocks(entry, merge)
	b.current = merge
}

func (b *builder) lowerMatchCondition(scope *symbols.Scope, scrutinee *VirtualRegister, values []ast.Node) *VirtualRegister {
	var result *VirtualRegister

	for _, v := range values {
		val := b.lowerExpr(scope, v)
		eq := b.regs.new("", types.Bool)
		b.emit(&Instruction{Op: OpBinary, BinOp: ast.OpEq, Dst: eq, Args: []*VirtualRegister{scrutinee, val}})

		if result == nil {
			result = eq
			continue
		}

		combined := b.regs.new("", types.Bool)
		b.emit(&Instruction{Op: OpBinary, BinOp: ast.OpLogicalOr, Dst: combined, Args: []*VirtualRegister{result, eq}})
		result = combined
	}

	return result
}

func (b *builder) lowerExpr(scope *symbols.Scope, expr ast.Node) *VirtualRegister {
	switch e := expr.(type) {
	case *ast.Literal:
		dst := b.regs.new("", b.checked.TypeOf(e))
		b.emit(&Instruction{Op: OpLoadConst, Dst: dst, ConstKind: e.Kind_, ConstInt: e.IntValue, ConstBool: e.BoolValue, ConstString: e.StringValue})

		return dst
	case *ast.Identifier:
		reg, _ := b.resolveIdentifier(scope, e)
		return reg
	case *ast.Binary:
		return b.lowerBinary(scope, e)
	case *ast.Unary:
		return b.lowerUnary(scope, e)
	case *ast.Call:
		return b.lowerCall(scope, e)
	case *ast.Index:
		arr := b.lowerExpr(scope, e.Array)
		idx := b.lowerExpr(scope, e.At)
		dst := b.regs.new("", b.checked.TypeOf(e))
		b.emit(&Instruction{Op: OpIndexLoad, Dst: dst, Args: []*VirtualRegister{arr, idx}})

		return dst
	case *ast.Member:
		return b.lowerMapLoad(scope, e)
	case *ast.Assignment:
		b.lowerAssignment(scope, e)
		reg, _ := b.resolveIdentifier(scope, identifierOf(e.Target))

		return reg
	default:
		return b.regs.new("", types.Unknown)
	}
}

func identifierOf(n ast.Node) *ast.Identifier {
	if id, ok := n.(*ast.Identifier); ok {
		return id
	}

	return &ast.Identifier{}
}

func (b *builder) lowerMapLoad(scope *symbols.Scope, m *ast.Member) *VirtualRegister {
	info, ok := b.memberFieldInfo(m)
	dst := b.regs.new("", b.checked.TypeOf(m))

	if !ok {
		return dst
	}

	if info.isRange {
		b.emit(&Instruction{Op: OpMapLoadRange, Dst: dst, Base: info.base, RangeFrom: info.rangeFrom, RangeTo: info.rangeTo})
	} else {
		b.emit(&Instruction{Op: OpMapLoadField, Dst: dst, Base: info.base, FieldOffset: info.offset})
	}

	return dst
}

func (b *builder) lowerBinary(scope *symbols.Scope, e *ast.Binary) *VirtualRegister {
	l := b.lowerExpr(scope, e.Left)
	r := b.lowerExpr(scope, e.Right)
	dst := b.regs.new("", b.checked.TypeOf(e))
	b.emit(&Instruction{Op: OpBinary, BinOp: e.Op, Dst: dst, Args: []*VirtualRegister{l, r}})

	return dst
}

func (b *builder) lowerUnary(scope *symbols.Scope, e *ast.Unary) *VirtualRegister {
	src := b.lowerExpr(scope, e.Operand)
	dst := b.regs.new("", b.checked.TypeOf(e))

	switch e.Op {
	case ast.OpLo:
		b.emit(&Instruction{Op: OpIntrinsicLo, Dst: dst, Args: []*VirtualRegister{src}})
	case ast.OpHi:
		b.emit(&Instruction{Op: OpIntrinsicHi, Dst: dst, Args: []*VirtualRegister{src}})
	default:
		b.emit(&Instruction{Op: OpUnary, UnOp: e.Op, Dst: dst, Args: []*VirtualRegister{src}})
	}

	return dst
}

func (b *builder) lowerCall(scope *symbols.Scope, e *ast.Call) *VirtualRegister {
	var args []*VirtualRegister

	for _, a := range e.Arguments {
		args = append(args, b.lowerExpr(scope, a))
	}

	callee := ""
	if id, ok := e.Callee.(*ast.Identifier); ok {
		callee = id.Name()
	}

	resultType := b.checked.TypeOf(e)

	var dst *VirtualRegister
	if resultType != nil && resultType.Tag() != types.TagVoid {
		dst = b.regs.new("", resultType)
	}

	b.emit(&Instruction{Op: OpCall, Dst: dst, Args: args, Callee: callee})

	return dst
}
