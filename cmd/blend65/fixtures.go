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
	"sort"

	"github.com/blendsdk/blend65/pkg/ast"
	"github.com/blendsdk/blend65/pkg/astfixture"
)

// fixtures maps a --source name to the program it builds. Lexing and
// parsing are out of scope (§1), so every "source file" this CLI can load
// is one of these in-memory AST trees rather than a real .b65 file.
var fixtures = map[string]func() *ast.Program{
	"counter": counterFixture,
	"fib":     fibFixture,
}

// counterFixture increments a zero-page counter in a bounded loop, then
// returns it; it exercises a global, a loop with an induction variable, and
// a conditional.
func counterFixture() *ast.Program {
	counter := astfixture.ZeroPage("counter", astfixture.Type("byte"), astfixture.Int(0))

	bump := astfixture.Exported(astfixture.Func("bump", astfixture.Type("byte"), nil, astfixture.Block(
		astfixture.Let("i", nil, astfixture.Int(0)),
		astfixture.While(
			astfixture.Bin(ast.OpLt, astfixture.Ident("i"), astfixture.Int(10)),
			astfixture.Block(
				astfixture.Expr(astfixture.Assign(astfixture.Ident("counter"), astfixture.Bin(ast.OpAdd, astfixture.Ident("counter"), astfixture.Int(1)))),
				astfixture.Expr(astfixture.Assign(astfixture.Ident("i"), astfixture.Bin(ast.OpAdd, astfixture.Ident("i"), astfixture.Int(1)))),
			),
		),
		astfixture.If(
			astfixture.Bin(ast.OpGt, astfixture.Ident("counter"), astfixture.Int(5)),
			astfixture.Block(astfixture.Return(astfixture.Ident("counter"))),
			astfixture.Block(astfixture.Return(astfixture.Int(0))),
		),
	)))

	return astfixture.Program([]string{"app"}, counter, bump)
}

// fibFixture computes a Fibonacci number recursively, exercising a call
// and a function with parameters.
func fibFixture() *ast.Program {
	n := astfixture.Param("n", astfixture.Type("byte"))

	fib := astfixture.Exported(astfixture.Func("fib", astfixture.Type("byte"), []*ast.Parameter{n}, astfixture.Block(
		astfixture.If(
			astfixture.Bin(ast.OpLte, astfixture.Ident("n"), astfixture.Int(1)),
			astfixture.Block(astfixture.Return(astfixture.Ident("n"))),
			nil,
		),
		astfixture.Return(astfixture.Bin(ast.OpAdd,
			astfixture.Invoke(astfixture.Ident("fib"), astfixture.Bin(ast.OpSub, astfixture.Ident("n"), astfixture.Int(1))),
			astfixture.Invoke(astfixture.Ident("fib"), astfixture.Bin(ast.OpSub, astfixture.Ident("n"), astfixture.Int(2))),
		)),
	)))

	return astfixture.Program([]string{"app"}, fib)
}

// loadSource resolves a --source flag value to its fixture program,
// exiting with an error listing the known names if it doesn't match one.
func loadSource(name string) *ast.Program {
	build, ok := fixtures[name]
	if !ok {
		fmt.Printf("unknown source fixture %q; known fixtures:\n", name)

		names := make([]string, 0, len(fixtures))
		for n := range fixtures {
			names = append(names, n)
		}

		sort.Strings(names)

		for _, n := range names {
			fmt.Printf("  %s\n", n)
		}

		os.Exit(2)
	}

	return build()
}
