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

import (
	"fmt"
	"strings"
)

// DOT renders the graph in Graphviz's dot format, named for the given
// function, for use by the `blend65 cfg` subcommand and for debugging.
func (g *Graph) DOT(functionName string) string {
	var b strings.Builder

	fmt.Fprintf(&b, "digraph %q {\n", functionName)

	for _, n := range g.nodes {
		shape := "box"
		if n.NodeKind == KindBranch || n.NodeKind == KindMerge {
			shape = "diamond"
		}

		style := ""
		if !n.Reachable {
			style = ", style=dashed, color=gray"
		}

		fmt.Fprintf(&b, "  n%d [label=%q, shape=%s%s];\n", n.ID, n.NodeKind.String(), shape, style)
	}

	for _, n := range g.nodes {
		for _, succ := range n.Successors {
			fmt.Fprintf(&b, "  n%d -> n%d;\n", n.ID, succ.ID)
		}
	}

	b.WriteString("}\n")

	return b.String()
}
