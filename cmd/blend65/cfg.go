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
	"os"

	"github.com/spf13/cobra"

	"github.com/blendsdk/blend65/pkg/ast"
	"github.com/blendsdk/blend65/pkg/cfg"
)

var cfgCmd = &cobra.Command{
	Use:   "cfg",
	Short: "Build the CFG (C4) for one function in --source and print it as Graphviz dot",
	Run: func(cmd *cobra.Command, args []string) {
		configureLogging(cmd)

		prog := loadSource(GetString(cmd, "source"))
		name := GetString(cmd, "function")

		fn := findFunction(prog, name)
		if fn == nil {
			fmt.Printf("no function named %q in --source %q\n", name, GetString(cmd, "source"))
			os.Exit(2)
		}

		res := cfg.Build(fn)
		if !res.Success {
			printAndExit(res.Diagnostics)
		}

		fmt.Print(res.Value.DOT(fn.Name))
	},
}

func init() {
	cfgCmd.Flags().String("function", "", "name of the function to graph; defaults to the first one declared")
	rootCmd.AddCommand(cfgCmd)
}

// findFunction returns the named function, or the first function declared
// in the program if name is empty, unwrapping *ast.Export the way
// pkg/il/builder.go's lowerTopLevel does.
func findFunction(prog *ast.Program, name string) *ast.FunctionDecl {
	if prog.Module == nil {
		return nil
	}

	for _, decl := range prog.Module.Declarations {
		if exp, ok := decl.(*ast.Export); ok {
			decl = exp.Declaration
		}

		fn, ok := decl.(*ast.FunctionDecl)
		if !ok {
			continue
		}

		if name == "" || fn.Name == name {
			return fn
		}
	}

	return nil
}
