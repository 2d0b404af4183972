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
package diag

// Result is the uniform shape returned by every pass of the middle-end
// pipeline: a value, the diagnostics raised while producing it, and whether
// the pass succeeded (§4.1: "{ symbolTable, diagnostics, success }", and
// generalized per §7 to every other pass).
type Result[T any] struct {
	Value       T
	Diagnostics *Diagnostics
	Success     bool
}

// Ok wraps a value with an empty, successful diagnostic set.
func Ok[T any](value T) Result[T] {
	return Result[T]{Value: value, Diagnostics: NewDiagnostics(DefaultDiagnosticCap), Success: true}
}

// Of constructs a result from a value and an accumulated diagnostics set,
// deriving Success from whether any Error-severity diagnostic was recorded.
func Of[T any](value T, diags *Diagnostics) Result[T] {
	return Result[T]{Value: value, Diagnostics: diags, Success: diags.Success()}
}

// Failed constructs a failed result carrying a zero value and the given
// diagnostics (which must contain at least one Error for Success to read false).
func Failed[T any](diags *Diagnostics) Result[T] {
	var zero T
	return Result[T]{Value: zero, Diagnostics: diags, Success: diags.Success()}
}
