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
	"fmt"
	"strings"
)

// String renders the SSA function body (reusing il.Function's three-address
// dump, since renaming happens in place) followed by one line per immediate
// dominator edge, for the `blend65 ssa` subcommand.
func (f *Function) String() string {
	var sb strings.Builder

	sb.WriteString(f.IL.String())

	if f.IL.IsStub {
		return sb.String()
	}

	sb.WriteString("dominators:\n")

	for _, b := range f.Dominators.ReversePostorder() {
		if idom := f.Dominators.IDom(b); idom != nil {
			fmt.Fprintf(&sb, "    %s <- %s\n", b.Label, idom.Label)
		}
	}

	return sb.String()
}
