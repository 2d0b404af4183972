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

// Package il implements C7 (§4.7): the typed three-address IR materialized
// from the type-checked, analysis-annotated AST.  Register and instruction
// modeling is grounded on go-corset's pkg/ir/term (operand/term shape) and
// pkg/asm/insn (opcode + operands + metadata tagging); the visitor hierarchy
// and current-block/register-factory threading follow pkg/cfg's
// insertion-point builder, generalized to produce values rather than just
// control edges.
package il

import "github.com/blendsdk/blend65/pkg/types"

// VirtualRegister is an unbounded, typed temporary. One is allocated per
// source-level variable (reused across reassignments, as in conventional
// pre-SSA three-address code) and per intermediate expression result.
type VirtualRegister struct {
	ID   int
	Name string // the source variable's name, empty for a pure temporary
	Type *types.Type
}

// registerFactory hands out fresh, sequential virtual registers; the
// "register factory" threaded alongside the current block (§4.7).
type registerFactory struct {
	next int
}

func (f *registerFactory) new(name string, t *types.Type) *VirtualRegister {
	r := &VirtualRegister{ID: f.next, Name: name, Type: t}
	f.next++

	return r
}
