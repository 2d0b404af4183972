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
	"encoding/json"

	"github.com/blendsdk/blend65/pkg/diag"
)

// ByName returns the built-in configuration for a target architecture
// string, or nil if it is unrecognised.
func ByName(name string) *Config {
	switch name {
	case "c64":
		return NewC64Target()
	case "c128":
		return NewC128Target()
	case "x16":
		return NewX16Target()
	default:
		return nil
	}
}

// LoadConfig decodes a target configuration from JSON bytes, following the
// teacher's own bytes-in/struct-out JSON loading idiom
// (pkg/binfile.HirSchemaFromJson). Callers typically start from ByName and
// override only the fields a project's build actually customises.
func LoadConfig(data []byte) diag.Result[*Config] {
	diags := diag.NewDiagnostics(diag.DefaultDiagnosticCap)

	var cfg Config
	if err := json.Unmarshal(data, &cfg); err != nil {
		diags.Addf(diag.CodeInvalidTarget, diag.Error, diag.Location{}, "malformed target configuration: %v", err)
		return diag.Of[*Config](nil, diags)
	}

	return diag.Of(&cfg, diags)
}
