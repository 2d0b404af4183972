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
package target

import (
	"github.com/blendsdk/blend65/pkg/ast"
	"github.com/blendsdk/blend65/pkg/diag"
	"github.com/blendsdk/blend65/pkg/il"
)

// Validate checks a target configuration's internal consistency (§6):
// reserved ranges must be pairwise disjoint and disjoint from the safe
// range, and usable bytes must equal the safe range's size. An
// unimplemented target (§4.9: C128, X16) fails immediately with
// CodeInvalidTarget.
func Validate(cfg *Config) diag.Result[*Config] {
	diags := diag.NewDiagnostics(diag.DefaultDiagnosticCap)

	if !cfg.Implemented {
		diags.Addf(diag.CodeInvalidTarget, diag.Error, diag.Location{},
			"target %q is not implemented", cfg.Architecture)

		return diag.Of(cfg, diags)
	}

	for i, a := range cfg.ZeroPage.ReservedRanges {
		if a.Overlaps(cfg.ZeroPage.SafeRange) {
			diags.Addf(diag.CodeInvalidTarget, diag.Error, diag.Location{},
				"reserved range %s (%s) overlaps the declared safe range", rangeString(a.Range), a.Reason)
		}

		for j := i + 1; j < len(cfg.ZeroPage.ReservedRanges); j++ {
			b := cfg.ZeroPage.ReservedRanges[j]
			if a.Overlaps(b.Range) {
				diags.Addf(diag.CodeInvalidTarget, diag.Error, diag.Location{},
					"reserved ranges %s and %s overlap", rangeString(a.Range), rangeString(b.Range))
			}
		}
	}

	safeSize := cfg.ZeroPage.SafeRange.End - cfg.ZeroPage.SafeRange.Start + 1
	if cfg.ZeroPage.UsableBytes != safeSize {
		diags.Addf(diag.CodeInvalidTarget, diag.Error, diag.Location{},
			"usable bytes (%d) does not match the safe range's size (%d)", cfg.ZeroPage.UsableBytes, safeSize)
	}

	return diag.Of(cfg, diags)
}

func rangeString(r Range) string {
	return "$" + hex(r.Start) + "-$" + hex(r.End)
}

func hex(v uint32) string {
	const digits = "0123456789ABCDEF"

	if v == 0 {
		return "0"
	}

	var buf [8]byte

	i := len(buf)
	for v > 0 {
		i--
		buf[i] = digits[v&0xF]
		v >>= 4
	}

	return string(buf[i:])
}

// CheckDeclarations validates every @zp/@map global against the target's
// reserved ranges (§4.9: "Validation rejects any @zp/@map declaration whose
// address or range intersects a reserved range").
func CheckDeclarations(cfg *Config, modules []*il.Module) *diag.Diagnostics {
	diags := diag.NewDiagnostics(diag.DefaultDiagnosticCap)

	for _, m := range modules {
		for _, g := range m.Globals {
			if !g.HasAddress {
				continue
			}

			if g.Storage != ast.StorageZeroPage && g.Storage != ast.StorageMap {
				continue
			}

			addr := Range{Start: g.MapAddress, End: g.EndAddress}

			for _, reserved := range cfg.ZeroPage.ReservedRanges {
				if addr.Overlaps(reserved.Range) {
					diags.Addf(diag.CodeReservedZeroPage, diag.Error, diag.Location{},
						"%q at $%s-$%s intersects reserved range %s (%s)", g.Name, hex(g.MapAddress), hex(g.EndAddress), rangeString(reserved.Range), reserved.Reason)
				}
			}
		}
	}

	return diags
}
