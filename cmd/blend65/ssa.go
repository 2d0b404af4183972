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
package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/blendsdk/blend65/pkg/ast"
	"github.com/blendsdk/blend65/pkg/checker"
	"github.com/blendsdk/blend65/pkg/il"
	"github.com/blendsdk/blend65/pkg/ssa"
	"github.com/blendsdk/blend65/pkg/symbols"
)

var ssaCmd = &cobra.Command{
	Use:   "ssa",
	Short: "Lower --source to SSA form (C8), verify it, and print it",
	Run: func(cmd *cobra.Command, args []string) {
		configureLogging(cmd)

		prog := loadSource(GetString(cmd, "source"))
		programs := []*ast.Program{prog}

		symRes := symbols.Build(programs)
		if !symRes.Success {
			printAndExit(symRes.Diagnostics)
		}

		checkRes := checker.Check(symRes.Value, programs)
		if !checkRes.Success {
			printAndExit(checkRes.Diagnostics)
		}

		ilRes := il.Build(symRes.Value, checkRes.Value, programs)
		if !ilRes.Success {
			printAndExit(ilRes.Diagnostics)
		}

		ssaRes := ssa.Build(ilRes.Value)

		for _, fn := range ssaRes.Value {
			fmt.Print(fn)
		}

		if !ssaRes.Success {
			fmt.Println("verification failures:")
			printAndExit(ssaRes.Diagnostics)
		}
	},
}

func init() {
	rootCmd.AddCommand(ssaCmd)
}
