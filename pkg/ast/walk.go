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

// Walk visits n and every descendant in pre-order, calling visit on each.
// If visit returns false for a node, that node's children are skipped (but
// its siblings are still visited) — the single generic walker every pass
// builds on top of, per §9's design note.
func Walk(n Node, visit func(Node) bool) {
	if n == nil || IsErrorNode(n) {
		return
	}

	if !visit(n) {
		return
	}

	for _, child := range n.Children() {
		Walk(child, visit)
	}
}

// Functions returns every FunctionDecl reachable from a Program, in
// declaration order.
func Functions(p *Program) []*FunctionDecl {
	var fns []*FunctionDecl

	if p.Module != nil {
		for _, d := range p.Module.Declarations {
			if fn, ok := d.(*FunctionDecl); ok {
				fns = append(fns, fn)
			}
		}
	}

	for _, d := range p.Declarations {
		if fn, ok := d.(*FunctionDecl); ok {
			fns = append(fns, fn)
		}
	}

	return fns
}
