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

// TypeAnnotation is the syntactic (unresolved) spelling of a type, as
// written by the programmer.  Pass 2 (pkg/types, pkg/checker) resolves these
// into pkg/types.Type values; the AST itself never resolves them (§4.1:
// "Types are not yet resolved; symbol.type stays null").
type TypeAnnotation struct {
	// Name is the base type name (byte, word, bool, void, string, or a
	// user-declared enum/type-alias name). Empty when Array or Function is set.
	Name string
	// Array, if non-nil, makes this an array-of annotation.
	Array *ArrayAnnotation
	// Function, if non-nil, makes this a function-pointer annotation.
	Function *FunctionAnnotation
}

// ArrayAnnotation is the syntactic `T[n]` or `T[]` form.
type ArrayAnnotation struct {
	Element *TypeAnnotation
	// Length is nil for an unspecified-length array.
	Length *uint32
}

// FunctionAnnotation is the syntactic `fn(T,...) -> T` form.
type FunctionAnnotation struct {
	Parameters []*TypeAnnotation
	Return     *TypeAnnotation
}
