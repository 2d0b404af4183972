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
package pipeline

import (
	"github.com/blendsdk/blend65/pkg/dataflow"
	"github.com/blendsdk/blend65/pkg/diag"
)

// Limits bounds the resource consumption of a pipeline run (§5: "resource
// bounds are the iteration caps in data-flow passes ... and a per-pass
// diagnostic cap").
type Limits struct {
	// MaxDiagnostics caps how many diagnostics the pipeline's merged list
	// accumulates before it stops reporting more (pathological-output guard).
	MaxDiagnostics int
	// MaxIterations caps worklist iterations in the data-flow passes,
	// guaranteeing termination under a transfer-function bug (§9).
	MaxIterations int
}

// DefaultLimits returns the spec's defaults: a 1000-iteration cap (§9) and
// the diagnostics package's own default cap.
func DefaultLimits() Limits {
	return Limits{
		MaxDiagnostics: 0,
		MaxIterations:  dataflow.DefaultMaxIterations,
	}
}

func (l Limits) diagnosticCap() int {
	if l.MaxDiagnostics > 0 {
		return l.MaxDiagnostics
	}

	return diag.DefaultDiagnosticCap
}
