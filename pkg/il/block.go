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

// BasicBlock is a maximal straight-line run of instructions ending in at
// most one terminator. Predecessor/successor edges are wired explicitly by
// the builder as control flow is lowered (§4.7).
type BasicBlock struct {
	ID           int
	Label        string
	Instructions []*Instruction
	Predecessors []*BasicBlock
	Successors   []*BasicBlock
}

// Terminator returns the block's terminating instruction, or nil if the
// block has not been closed yet.
func (b *BasicBlock) Terminator() *Instruction {
	if len(b.Instructions) == 0 {
		return nil
	}

	last := b.Instructions[len(b.Instructions)-1]
	if !last.IsTerminator() {
		return nil
	}

	return last
}
