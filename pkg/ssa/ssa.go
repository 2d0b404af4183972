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
package ssa

import (
	"github.com/blendsdk/blend65/pkg/diag"
	"github.com/blendsdk/blend65/pkg/il"
)

// Function pairs a lowered-to-SSA il.Function with the dominator tree
// computed for it, so downstream passes (and tests) don't have to
// recompute dominance.
type Function struct {
	IL         *il.Function
	Dominators *Dominators
}

// Build converts every function in every module to minimal SSA form in
// place: dominators, φ placement, dominator-tree renaming, then
// verification (§4.8). Stub functions (no blocks) pass through untouched.
func Build(modules []*il.Module) diag.Result[[]*Function] {
	diags := diag.NewDiagnostics(diag.DefaultDiagnosticCap)

	var out []*Function

	for _, m := range modules {
		for _, fn := range m.Functions {
			if fn.IsStub {
				continue
			}

			dom := ComputeDominators(fn)
			phiVar := placePhis(fn, dom)
			rename(fn, dom, phiVar)
			verify(fn, dom, diags)

			out = append(out, &Function{IL: fn, Dominators: dom})
		}
	}

	return diag.Of(out, diags)
}
