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
package ast

// StorageClass is the syntactic storage annotation on a declaration (§3).
type StorageClass uint8

// Recognised storage classes.
const (
	StorageNone StorageClass = iota
	StorageZeroPage
	StorageRam
	StorageData
	StorageMap
)

// Program is the root node: a single module plus whatever top-level
// declarations the parser attached directly to it (§6).
type Program struct {
	Base
	Module       *Module
	Declarations []Node
}

// Kind implements Node.
func (*Program) Kind() Kind { return KindProgram }

// Children implements Node.
func (p *Program) Children() []Node {
	children := make([]Node, 0, 1+len(p.Declarations))
	if p.Module != nil {
		children = append(children, p.Module)
	}

	return append(children, p.Declarations...)
}

// Module is a named compilation unit.  Module names are compared by
// fully-qualified dot-joined path (§4.1).
type Module struct {
	Base
	Path         []string
	Imports      []*Import
	Declarations []Node
}

// Kind implements Node.
func (*Module) Kind() Kind { return KindModule }

// Children implements Node.
func (m *Module) Children() []Node {
	children := make([]Node, 0, len(m.Imports)+len(m.Declarations))
	for _, i := range m.Imports {
		children = append(children, i)
	}

	return append(children, m.Declarations...)
}

// Name returns the last segment of the module's dotted path.
func (m *Module) Name() string {
	if len(m.Path) == 0 {
		return ""
	}

	return m.Path[len(m.Path)-1]
}

// Import names a source module and either specific identifiers or a wildcard
// (§4.1).
type Import struct {
	Base
	ModulePath []string
	// Names is empty when Wildcard is true.
	Names    []string
	Wildcard bool
	Alias    string
}

// Kind implements Node.
func (*Import) Kind() Kind { return KindImport }

// Children implements Node.
func (*Import) Children() []Node { return nil }

// Export marks a declaration as visible outside its module.  Exports must
// occur at module scope (§4.1).
type Export struct {
	Base
	Declaration Node
}

// Kind implements Node.
func (*Export) Kind() Kind { return KindExport }

// Children implements Node.
func (e *Export) Children() []Node { return []Node{e.Declaration} }

// Parameter is a function parameter declaration.
type Parameter struct {
	Base
	Name       string
	Annotation *TypeAnnotation
}

// Kind implements Node.
func (*Parameter) Kind() Kind { return KindParameter }

// Children implements Node.
func (*Parameter) Children() []Node { return nil }

// FunctionDecl declares a function.  A function declared without a Body is a
// stub (§4.7, §9(b)): it produces a symbol with the right signature but no
// CFG/IL blocks.
type FunctionDecl struct {
	Base
	Name       string
	Parameters []*Parameter
	Return     *TypeAnnotation
	Body       *Block
	Exported   bool
}

// Kind implements Node.
func (*FunctionDecl) Kind() Kind { return KindFunctionDecl }

// IsStub reports whether this declaration has no body (§9(b)).
func (f *FunctionDecl) IsStub() bool { return f.Body == nil }

// Children implements Node.
func (f *FunctionDecl) Children() []Node {
	children := make([]Node, 0, len(f.Parameters)+1)
	for _, p := range f.Parameters {
		children = append(children, p)
	}

	if f.Body != nil {
		children = append(children, f.Body)
	}

	return children
}

// VariableDecl declares a variable or constant (§4.1).
type VariableDecl struct {
	Base
	Name         string
	Const        bool
	Annotation   *TypeAnnotation // nil when the type is to be inferred
	Initializer  Node            // nil for an uninitialized variable
	Storage      StorageClass
	MapAddress   Node // numeric address expression, set only for @map declarations
	Exported     bool
}

// Kind implements Node.
func (*VariableDecl) Kind() Kind { return KindVariableDecl }

// Children implements Node.
func (v *VariableDecl) Children() []Node {
	var children []Node
	if v.Initializer != nil {
		children = append(children, v.Initializer)
	}

	if v.MapAddress != nil {
		children = append(children, v.MapAddress)
	}

	return children
}

// EnumMember is a single `name = value` entry of an enum declaration.
type EnumMember struct {
	Base
	Name  string
	Value Node // literal expression; nil means "previous + 1"
}

// Kind implements Node.
func (*EnumMember) Kind() Kind { return KindEnumMember }

// Children implements Node.
func (e *EnumMember) Children() []Node {
	if e.Value == nil {
		return nil
	}

	return []Node{e.Value}
}

// EnumDecl declares an enumerated type (§3 enum{name, members: name→value}).
type EnumDecl struct {
	Base
	Name     string
	Members  []*EnumMember
	Exported bool
}

// Kind implements Node.
func (*EnumDecl) Kind() Kind { return KindEnumDecl }

// Children implements Node.
func (e *EnumDecl) Children() []Node {
	children := make([]Node, len(e.Members))
	for i, m := range e.Members {
		children[i] = m
	}

	return children
}

// TypeDecl declares a type alias.
type TypeDecl struct {
	Base
	Name       string
	Annotation *TypeAnnotation
	Exported   bool
}

// Kind implements Node.
func (*TypeDecl) Kind() Kind { return KindTypeDecl }

// Children implements Node.
func (*TypeDecl) Children() []Node { return nil }

// SimpleMapDecl binds a name to a single fixed hardware address (§6 @map).
type SimpleMapDecl struct {
	Base
	Name       string
	Annotation *TypeAnnotation
	Address    Node
	Exported   bool
}

// Kind implements Node.
func (*SimpleMapDecl) Kind() Kind { return KindSimpleMapDecl }

// Children implements Node.
func (s *SimpleMapDecl) Children() []Node { return []Node{s.Address} }

// RangeMapDecl binds a name to a contiguous address range.
type RangeMapDecl struct {
	Base
	Name       string
	Annotation *TypeAnnotation
	From       Node
	To         Node
	Exported   bool
}

// Kind implements Node.
func (*RangeMapDecl) Kind() Kind { return KindRangeMapDecl }

// Children implements Node.
func (r *RangeMapDecl) Children() []Node { return []Node{r.From, r.To} }

// StructField is one field of a sequential or explicit-layout struct map.
type StructField struct {
	Base
	Name       string
	Annotation *TypeAnnotation
	// Offset is used only for ExplicitStructMapDecl; sequential layout
	// derives offsets from field order and sizeInBytes (§4.3).
	Offset Node
	// RangeTo, if non-nil, makes Offset..RangeTo an explicit `from..to` range.
	RangeTo Node
}

// Kind implements Node.
func (*StructField) Kind() Kind { return KindStructField }

// Children implements Node.
func (f *StructField) Children() []Node {
	var children []Node
	if f.Offset != nil {
		children = append(children, f.Offset)
	}

	if f.RangeTo != nil {
		children = append(children, f.RangeTo)
	}

	return children
}

// SequentialStructMapDecl is a struct-valued @map whose fields are laid out
// in declaration order (§4.3).
type SequentialStructMapDecl struct {
	Base
	Name     string
	Address  Node
	Fields   []*StructField
	Exported bool
}

// Kind implements Node.
func (*SequentialStructMapDecl) Kind() Kind { return KindSequentialStructMapDecl }

// Children implements Node.
func (s *SequentialStructMapDecl) Children() []Node {
	children := make([]Node, 0, len(s.Fields)+1)
	children = append(children, s.Address)

	for _, f := range s.Fields {
		children = append(children, f)
	}

	return children
}

// ExplicitStructMapDecl is a struct-valued @map whose fields each carry a
// per-field offset or `from..to` range (§4.3).
type ExplicitStructMapDecl struct {
	Base
	Name     string
	Address  Node
	Fields   []*StructField
	Exported bool
}

// Kind implements Node.
func (*ExplicitStructMapDecl) Kind() Kind { return KindExplicitStructMapDecl }

// Children implements Node.
func (e *ExplicitStructMapDecl) Children() []Node {
	children := make([]Node, 0, len(e.Fields)+1)
	children = append(children, e.Address)

	for _, f := range e.Fields {
		children = append(children, f)
	}

	return children
}
