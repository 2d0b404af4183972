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
package astfixture_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/blendsdk/blend65/pkg/ast"
	"github.com/blendsdk/blend65/pkg/astfixture"
	"github.com/blendsdk/blend65/pkg/checker"
	"github.com/blendsdk/blend65/pkg/symbols"
)

func TestFixtureProgramBuildsValidSymbolTableAndTypes(t *testing.T) {
	fn := astfixture.Exported(astfixture.Func("square", astfixture.Type("byte"),
		[]*ast.Parameter{astfixture.Param("n", astfixture.Type("byte"))},
		astfixture.Block(
			astfixture.Return(astfixture.Bin(ast.OpMul, astfixture.Ident("n"), astfixture.Ident("n"))),
		),
	))

	counter := astfixture.ZeroPage("counter", astfixture.Type("byte"), astfixture.Int(0))

	prog := astfixture.Program([]string{"app"}, counter, fn)

	symRes := symbols.Build([]*ast.Program{prog})
	assert.True(t, symRes.Success)

	checkRes := checker.Check(symRes.Value, []*ast.Program{prog})
	assert.True(t, checkRes.Success)
}

func TestFixtureCoversControlFlowConstructs(t *testing.T) {
	body := astfixture.Block(
		astfixture.Let("i", nil, astfixture.Int(0)),
		astfixture.While(
			astfixture.Bin(ast.OpLt, astfixture.Ident("i"), astfixture.Int(10)),
			astfixture.Block(astfixture.Expr(astfixture.Assign(astfixture.Ident("i"),
				astfixture.Bin(ast.OpAdd, astfixture.Ident("i"), astfixture.Int(1))))),
		),
		astfixture.If(
			astfixture.Bin(ast.OpGt, astfixture.Ident("i"), astfixture.Int(5)),
			astfixture.Block(astfixture.Return(astfixture.Bool(true))),
			astfixture.Block(astfixture.Return(astfixture.Bool(false))),
		),
	)

	fn := astfixture.Func("over5", astfixture.Type("bool"), nil, body)
	prog := astfixture.Program([]string{"app"}, fn)

	symRes := symbols.Build([]*ast.Program{prog})
	assert.True(t, symRes.Success)

	checkRes := checker.Check(symRes.Value, []*ast.Program{prog})
	assert.True(t, checkRes.Success)
}
