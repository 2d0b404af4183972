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
package cfg

import "github.com/blendsdk/blend65/pkg/diag"

// markReachability runs a DFS from Entry, setting Reachable on every node it
// visits (§4.4).
func markReachability(g *Graph) {
	stack := []*Node{g.Entry}

	for len(stack) > 0 {
		n := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		if n.Reachable {
			continue
		}

		n.Reachable = true

		for _, succ := range n.Successors {
			if !succ.Reachable {
				stack = append(stack, succ)
			}
		}
	}
}

// reportUnreachable emits a warning for every unreachable node that carries
// a real statement (synthetic branch/merge/loop nodes without a statement
// are not individually meaningful to a reader).
func reportUnreachable(g *Graph, diags *diag.Diagnostics) {
	for _, n := range g.nodes {
		if n.Reachable || n.Statement == nil {
			continue
		}

		diags.Add(diag.Warnf(diag.CodeUnreachableCode, n.Statement.Location(), "unreachable code"))
	}
}
