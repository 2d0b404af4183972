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

// Package types implements the blend65 type system (§3, §4.2): built-in and
// constructed types, compatibility, and operator-result typing.  Built-in
// types are pre-interned with stable identities, mirroring go-corset's
// ast/type.go; array and function types are constructed fresh by factory
// methods and compared structurally, exactly as that file documents for
// Corset's own array/function types.
package types

import "fmt"

// Tag discriminates the kind of type a Type value represents (§3).
type Tag uint8

// Recognised type tags.
const (
	TagByte Tag = iota
	TagWord
	TagBool
	TagVoid
	TagString
	TagArray
	TagFunction
	TagEnum
	TagUnknown
)

// String renders a tag for diagnostics.
func (t Tag) String() string {
	switch t {
	case TagByte:
		return "byte"
	case TagWord:
		return "word"
	case TagBool:
		return "bool"
	case TagVoid:
		return "void"
	case TagString:
		return "string"
	case TagArray:
		return "array"
	case TagFunction:
		return "function"
	case TagEnum:
		return "enum"
	default:
		return "unknown"
	}
}

// Type is the tagged-value representation of a blend65 type (§3).  Built-in
// scalar types are singletons with a stable id (see interned.go); array,
// function and enum types are heap-allocated values compared structurally.
type Type struct {
	tag Tag
	id  int // stable id for built-ins; -1 for constructed types

	// Array fields (TagArray only).
	element *Type
	length  *uint32 // nil = unspecified length

	// Function fields (TagFunction only).
	params []*Type
	result *Type

	// Enum fields (TagEnum only).
	enumName    string
	enumMembers map[string]uint32
}

// Tag returns this type's discriminant.
func (t *Type) Tag() Tag { return t.tag }

// SizeInBytes returns the storage size of a value of this type (§3: "0 for
// void/string, 1 for byte/bool, 2 for word, product for arrays, 2 for
// function pointer").
func (t *Type) SizeInBytes() uint32 {
	switch t.tag {
	case TagByte, TagBool:
		return 1
	case TagWord, TagFunction:
		return 2
	case TagVoid, TagString:
		return 0
	case TagEnum:
		return 1
	case TagArray:
		if t.length == nil {
			return 0
		}

		return *t.length * t.element.SizeInBytes()
	default:
		return 0
	}
}

// Element returns the element type of an array type (TagArray only); panics
// otherwise.
func (t *Type) Element() *Type {
	if t.tag != TagArray {
		panic("Element() called on non-array type")
	}

	return t.element
}

// Length returns the array's declared length, if any (TagArray only).
func (t *Type) Length() (uint32, bool) {
	if t.tag != TagArray || t.length == nil {
		return 0, false
	}

	return *t.length, true
}

// Parameters returns a function type's parameter types (TagFunction only).
func (t *Type) Parameters() []*Type {
	if t.tag != TagFunction {
		panic("Parameters() called on non-function type")
	}

	return t.params
}

// Result returns a function type's return type (TagFunction only).
func (t *Type) Result() *Type {
	if t.tag != TagFunction {
		panic("Result() called on non-function type")
	}

	return t.result
}

// EnumName returns an enum type's declared name (TagEnum only).
func (t *Type) EnumName() string {
	return t.enumName
}

// EnumMember looks up a member's value by name (TagEnum only).
func (t *Type) EnumMember(name string) (uint32, bool) {
	v, ok := t.enumMembers[name]
	return v, ok
}

// String renders a type for diagnostics.
func (t *Type) String() string {
	switch t.tag {
	case TagArray:
		if t.length == nil {
			return fmt.Sprintf("%s[]", t.element)
		}

		return fmt.Sprintf("%s[%d]", t.element, *t.length)
	case TagFunction:
		return fmt.Sprintf("fn(%s) -> %s", joinTypes(t.params), t.result)
	case TagEnum:
		return t.enumName
	default:
		return t.tag.String()
	}
}

func joinTypes(ts []*Type) string {
	s := ""
	for i, t := range ts {
		if i > 0 {
			s += ", "
		}

		s += t.String()
	}

	return s
}

// NewArray constructs an array type.  Array types are never interned (§4.2:
// "two byte[10] may be distinct values compared structurally").
func NewArray(element *Type, length *uint32) *Type {
	return &Type{tag: TagArray, id: -1, element: element, length: length}
}

// NewFunction constructs a function type.  Like arrays, function types are
// constructed fresh and compared structurally.
func NewFunction(params []*Type, result *Type) *Type {
	return &Type{tag: TagFunction, id: -1, params: params, result: result}
}

// NewEnum constructs an enum type from its declared members.
func NewEnum(name string, members map[string]uint32) *Type {
	return &Type{tag: TagEnum, id: -1, enumName: name, enumMembers: members}
}
