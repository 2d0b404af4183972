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
package types

import "sync"

// Compatibility is the four-valued result of comparing two types for
// assignment purposes (§3).
type Compatibility uint8

// Recognised compatibility levels, ordered from best to worst.
const (
	Identical Compatibility = iota
	Compatible
	RequiresConversion
	Incompatible
)

type cacheKey struct {
	from, to int
}

// compatCache accelerates repeated assignability checks by keying on the
// pair of type ids (§4.2: "A numeric cache keys compatibility queries by
// (from-type-id, to-type-id)").  Only built-in/interned types participate —
// constructed types (id == -1) always fall through to structural
// comparison, since caching by identity would be unsound for them (two
// distinct byte[10] values must still compare Identical structurally).
var (
	compatCacheMu sync.Mutex
	compatCache   = make(map[cacheKey]Compatibility)
)

func cachedBuiltinIDs(from, to *Type) (cacheKey, bool) {
	if from.id < 0 || to.id < 0 {
		return cacheKey{}, false
	}

	return cacheKey{from.id, to.id}, true
}

// CheckCompatibility computes the assignability of a value of type `from`
// into a slot of type `to` (§3, §4.2, §8 property 7).
func CheckCompatibility(from, to *Type) Compatibility {
	if key, ok := cachedBuiltinIDs(from, to); ok {
		compatCacheMu.Lock()
		if cached, hit := compatCache[key]; hit {
			compatCacheMu.Unlock()
			return cached
		}
		compatCacheMu.Unlock()

		result := computeCompatibility(from, to)

		compatCacheMu.Lock()
		compatCache[key] = result
		compatCacheMu.Unlock()

		return result
	}

	return computeCompatibility(from, to)
}

func computeCompatibility(from, to *Type) Compatibility {
	// The unknown any pseudo-type is compatible with everything (§4.2: used
	// by built-in intrinsics like sizeof whose argument is a type name).
	if from == Unknown || to == Unknown {
		return Compatible
	}

	if from.Equal(to) {
		return Identical
	}

	switch {
	case (from == Byte || from == Bool) && (to == Byte || to == Bool):
		// byte<->bool is an implicit widen/narrow of the same storage (§3).
		return Compatible
	case from == Byte && to == Word:
		return Compatible
	case from == Word && to == Byte:
		return RequiresConversion
	case from == Bool && to == Word:
		return Compatible
	case from == Word && to == Bool:
		return RequiresConversion
	}

	if from.tag == TagArray && to.tag == TagArray {
		return checkArrayCompatibility(from, to)
	}

	if from.tag == TagFunction && to.tag == TagFunction {
		return checkFunctionCompatibility(from, to)
	}

	return Incompatible
}

// checkArrayCompatibility implements §3's array rule: element types
// Identical and target length matches or is unspecified.  §9 Open Question
// (a) resolves the stricter reading consistent with §8's tests: a mismatched,
// explicit target length is Incompatible (no "assign shorter into longer").
func checkArrayCompatibility(from, to *Type) Compatibility {
	if CheckCompatibility(from.element, to.element) != Identical {
		return Incompatible
	}

	toLen, toHasLen := to.Length()
	if !toHasLen {
		return Compatible
	}

	fromLen, fromHasLen := from.Length()
	if fromHasLen && fromLen == toLen {
		return Identical
	}

	return Incompatible
}

// checkFunctionCompatibility implements §3's rule: same arity, contravariant
// parameters, covariant return.
func checkFunctionCompatibility(from, to *Type) Compatibility {
	if len(from.params) != len(to.params) {
		return Incompatible
	}

	worst := Identical

	// Contravariant: a caller expecting `to`'s parameter types may supply
	// `from` only if `to`'s parameters can be assigned to `from`'s.
	for i := range from.params {
		c := CheckCompatibility(to.params[i], from.params[i])
		if c == Incompatible {
			return Incompatible
		}

		if c > worst {
			worst = c
		}
	}

	// Covariant: from's result must be assignable to to's result.
	c := CheckCompatibility(from.result, to.result)
	if c == Incompatible {
		return Incompatible
	}

	if c > worst {
		worst = c
	}

	return worst
}

// CanAssign is the boolean convenience wrapper used throughout the checker
// and by §8 property 7's tests: true for Identical or Compatible, false for
// RequiresConversion (an explicit conversion is needed) or Incompatible.
func CanAssign(from, to *Type) bool {
	c := CheckCompatibility(from, to)
	return c == Identical || c == Compatible
}
