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

// Package pipeline orchestrates C1-C9 in the fixed order §2 describes,
// short-circuiting once a mandatory pass (symbol table, type checker, IL)
// fails, while keeping every independent analysis (data-flow, loop
// analysis, §4.5.6's annotators, SSA, target hints) isolated from the
// others' failures, per §7: "an error in one analysis does not prevent
// independent analyses from running."
package pipeline

import (
	log "github.com/sirupsen/logrus"

	"github.com/blendsdk/blend65/pkg/annotate"
	"github.com/blendsdk/blend65/pkg/ast"
	"github.com/blendsdk/blend65/pkg/checker"
	"github.com/blendsdk/blend65/pkg/diag"
	"github.com/blendsdk/blend65/pkg/il"
	"github.com/blendsdk/blend65/pkg/ssa"
	"github.com/blendsdk/blend65/pkg/symbols"
	"github.com/blendsdk/blend65/pkg/target"
	"github.com/blendsdk/blend65/pkg/util"
)

// Result is everything a pipeline run produced: the artifacts every later
// stage and the CLI need, plus the merged diagnostic list and the overall
// success flag (§4.1, §7).
type Result struct {
	Table   *symbols.Table
	Checked *checker.Result
	Modules []*il.Module

	Functions []*FunctionAnalysis
	Annotate  *annotate.Result

	SSA []*ssa.Function

	TargetConfig *target.Config
	Hints        map[*il.Function]*target.Hints

	Diagnostics *diag.Diagnostics
	Success     bool
}

// Run executes C1 through C9 over programs, in order, against targetCfg
// (nil skips C9 entirely — zero-page/cycle hints have no meaning without a
// concrete target). A failure in a mandatory pass (C1 symbols, C3 checker,
// C7 IL) stops the pipeline before the next mandatory pass runs, per §7;
// every other pass still runs even if prior optional passes reported
// errors, since its job is to analyze what IL/AST exists regardless of
// what earlier analyses found.
func Run(programs []*ast.Program, targetCfg *target.Config, limits Limits) *Result {
	stats := util.NewPassTimer()
	defer stats.Log("pipeline: total")

	diags := diag.NewDiagnostics(limits.diagnosticCap())
	result := &Result{Diagnostics: diags}

	log.Info("pipeline: C1 building symbol table")

	symRes := symbols.Build(programs)
	diags.Append(symRes.Diagnostics)

	if !symRes.Success {
		log.Warn("pipeline: C1 symbol table construction failed; stopping")
		return result
	}

	result.Table = symRes.Value

	log.Info("pipeline: C2/C3 resolving types and checking")

	checkRes := checker.Check(result.Table, programs)
	diags.Append(checkRes.Diagnostics)

	if !checkRes.Success {
		log.Warn("pipeline: C3 type checking failed; stopping")
		return result
	}

	result.Checked = checkRes.Value

	log.Info("pipeline: C4-C6 per-function control-flow, data-flow and loop analysis")

	functionStats := util.NewPassTimer()

	result.Functions = analyzeFunctions(programs, limits, diags)

	functionStats.Log("pipeline: C4-C6 analysis")

	log.Info("pipeline: §4.5.6 usage/purity/escape/alias annotation")

	result.Annotate = annotate.Analyze(result.Table, programs)
	diags.Append(result.Annotate.Usage)
	diags.Append(result.Annotate.Unused)
	diags.Append(result.Annotate.Purity)
	diags.Append(result.Annotate.Escape)
	diags.Append(result.Annotate.Alias)

	log.Info("pipeline: C7 lowering to typed IL")

	ilRes := il.Build(result.Table, result.Checked, programs)
	diags.Append(ilRes.Diagnostics)

	if !ilRes.Success {
		log.Warn("pipeline: C7 IL construction failed; stopping")
		return result
	}

	result.Modules = ilRes.Value

	log.Info("pipeline: C8 SSA construction and verification")

	ssaRes := ssa.Build(result.Modules)
	diags.Append(ssaRes.Diagnostics)
	result.SSA = ssaRes.Value

	if targetCfg != nil {
		log.Infof("pipeline: C9 zero-page and cycle hints for target %q", targetCfg.Architecture)

		result.TargetConfig = targetCfg
		result.Hints = make(map[*il.Function]*target.Hints)

		if v := target.Validate(targetCfg); v.Success {
			diags.Append(target.CheckDeclarations(targetCfg, result.Modules))

			for _, m := range result.Modules {
				for _, fn := range m.Functions {
					if fn.IsStub {
						continue
					}

					result.Hints[fn] = target.AnalyzeFunction(targetCfg, fn)
				}
			}
		} else {
			diags.Append(v.Diagnostics)
		}
	}

	result.Success = !diags.HasErrors()

	log.Infof("pipeline: finished, success=%v, %d diagnostics", result.Success, diags.Len())

	return result
}
