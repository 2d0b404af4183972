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

// Package assert is a minimal, testify-free assertion helper, kept for the
// one test (pkg/ast/operators_test.go) that wants bare int/uint literal
// comparison without pulling in the module's own testify dependency: AST
// operator tables mix signed Go constants with blend65's unsigned
// byte/word literal values, and reflect.DeepEqual alone would fail an
// otherwise-correct `assert.Equal(t, 10, someUint32Value)`.
package assert

import (
	"math"
	"reflect"
	"testing"
)

// Equal fails the test if actual is not equal to expected, treating any
// pairing of Go integer kinds (int, uint32, ...) with the same numeric
// value as equal rather than requiring identical types.
func Equal(t *testing.T, expected, actual any, msg ...any) {
	if reflect.DeepEqual(expected, actual) || numericallyEqual(expected, actual) {
		return
	}

	t.Errorf("expected: %v, actual: %v", expected, actual)

	if len(msg) != 0 {
		t.Errorf(msg[0].(string), msg[1:]...)
	}

	t.FailNow()
}

// numericallyEqual reports whether expected and actual are both integers
// (signed or unsigned) carrying the same value, regardless of their
// concrete Go type.
func numericallyEqual(expected, actual any) bool {
	signedA, aIsSigned := asSigned(expected)
	signedB, bIsSigned := asSigned(actual)

	if aIsSigned != bIsSigned {
		return false
	}

	if aIsSigned {
		return signedA == signedB
	}

	unsignedA, aIsUnsigned := expected.(uint64)
	unsignedB, bIsUnsigned := actual.(uint64)

	if !aIsUnsigned || !bIsUnsigned {
		return false
	}

	return unsignedA == unsignedB
}

// asSigned converts x to an int64 when it fits, reporting false for a
// uint64 too large to represent as a signed 64-bit value (it is then
// compared only against another such uint64, by numericallyEqual).
func asSigned(x any) (int64, bool) {
	if u, ok := x.(uint64); ok && u > math.MaxInt64 {
		return 0, false
	}

	switch v := x.(type) {
	case int:
		return int64(v), true
	case int8:
		return int64(v), true
	case int16:
		return int64(v), true
	case int32:
		return int64(v), true
	case int64:
		return v, true
	case uint:
		return int64(v), true
	case uint8:
		return int64(v), true
	case uint16:
		return int64(v), true
	case uint32:
		return int64(v), true
	case uint64:
		return int64(v), true
	}

	return 0, false
}

// True fails the test unless condition holds.
func True(t *testing.T, condition bool, msg ...any) {
	if condition {
		return
	}

	t.Errorf("condition is false")

	if len(msg) != 0 {
		t.Errorf(msg[0].(string), msg[1:]...)
	}

	t.FailNow()
}

// False fails the test unless condition does not hold.
func False(t *testing.T, condition bool, msg ...any) {
	if !condition {
		return
	}

	t.Errorf("condition is true")

	if len(msg) != 0 {
		t.Errorf(msg[0].(string), msg[1:]...)
	}

	t.FailNow()
}
