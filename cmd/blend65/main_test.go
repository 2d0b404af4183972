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
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/blendsdk/blend65/pkg/ast"
	"github.com/blendsdk/blend65/pkg/checker"
	"github.com/blendsdk/blend65/pkg/symbols"
)

func TestFixturesBuildValidPrograms(t *testing.T) {
	for name, build := range fixtures {
		prog := build()

		symRes := symbols.Build([]*ast.Program{prog})
		assert.True(t, symRes.Success, "fixture %q: symbol table", name)

		checkRes := checker.Check(symRes.Value, []*ast.Program{prog})
		assert.True(t, checkRes.Success, "fixture %q: type check", name)
	}
}

func TestFindFunctionDefaultsToFirstDeclared(t *testing.T) {
	prog := fibFixture()

	fn := findFunction(prog, "")
	assert.NotNil(t, fn)
	assert.Equal(t, "fib", fn.Name)

	assert.Nil(t, findFunction(prog, "nonexistent"))
}

func TestTruncateClipsToWidth(t *testing.T) {
	assert.Equal(t, "hello", truncate("hello", 0))
	assert.Equal(t, "hello", truncate("hello", 10))
	assert.Equal(t, "he...", truncate("hello world", 5))
}
