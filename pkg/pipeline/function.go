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
	log "github.com/sirupsen/logrus"

	"github.com/blendsdk/blend65/pkg/ast"
	"github.com/blendsdk/blend65/pkg/cfg"
	"github.com/blendsdk/blend65/pkg/dataflow"
	"github.com/blendsdk/blend65/pkg/diag"
	"github.com/blendsdk/blend65/pkg/loopanalysis"
	"github.com/blendsdk/blend65/pkg/util"
)

// FunctionAnalysis bundles every per-function C4-C6 result for one
// *ast.FunctionDecl. A nil CFG means cfg.Build itself failed; the rest of
// the fields are nil in that case too, since every later analysis here
// takes the CFG as input (§7: "an error in one analysis does not prevent
// independent analyses from running" — but a missing CFG is not an
// analysis error, it's a missing precondition, so there is nothing to run).
type FunctionAnalysis struct {
	Function *ast.FunctionDecl
	Graph    *cfg.Graph
	Dom      *cfg.Dominators

	Liveness   *dataflow.LivenessResult
	Reaching   *dataflow.ReachingResult
	ConstProp  *dataflow.ConstPropResult
	GVN        *dataflow.GVNResult
	CSE        *dataflow.CSEResult

	Loops []*loopanalysis.Loop
	BIVs  map[*loopanalysis.Loop][]loopanalysis.BIV
	DIVs  map[*loopanalysis.Loop][]loopanalysis.DIV

	Invariants map[*loopanalysis.Loop]*loopanalysis.InvariantResult
}

// analyzeFunction runs C4 (CFG), C5 (data-flow) and C6 (loop analysis) over
// one function body, in the fixed order §2's data-flow diagram implies:
// CFG first, then the data-flow analyses it depends on, then loop analysis
// (which itself depends on reaching definitions for BIV/DIV recognition).
// Each analysis is independent once the CFG exists — a bug in GVN, say,
// never prevents CSE or loop analysis from running — so each one runs
// whatever the others' outcome; a result is kept only when its own analysis
// succeeded, and a failed analysis contributes its diagnostics instead.
func analyzeFunction(fn *ast.FunctionDecl, limits Limits, diags *diag.Diagnostics) *FunctionAnalysis {
	log.Debugf("pipeline: building CFG for %q", fn.Name)

	cfgResult := cfg.Build(fn)
	diags.Append(cfgResult.Diagnostics)

	if !cfgResult.Success {
		log.Warnf("pipeline: CFG construction failed for %q", fn.Name)
		return &FunctionAnalysis{Function: fn}
	}

	graph := cfgResult.Value
	dom := cfg.ComputeDominators(graph)

	fa := &FunctionAnalysis{
		Function:   fn,
		Graph:      graph,
		Dom:        dom,
		BIVs:       make(map[*loopanalysis.Loop][]loopanalysis.BIV),
		DIVs:       make(map[*loopanalysis.Loop][]loopanalysis.DIV),
		Invariants: make(map[*loopanalysis.Loop]*loopanalysis.InvariantResult),
	}

	log.Debugf("pipeline: running data-flow analyses for %q", fn.Name)

	if r := dataflow.Liveness(graph, limits.MaxIterations); r.Success {
		fa.Liveness = r.Value
	} else {
		diags.Append(r.Diagnostics)
	}

	if r := dataflow.ReachingDefinitions(graph, limits.MaxIterations); r.Success {
		fa.Reaching = r.Value
	} else {
		diags.Append(r.Diagnostics)
	}

	if r := dataflow.ConstantPropagation(graph, limits.MaxIterations); r.Success {
		fa.ConstProp = r.Value
	} else {
		diags.Append(r.Diagnostics)
	}

	if r := dataflow.GlobalValueNumbering(graph); r.Success {
		fa.GVN = r.Value
	} else {
		diags.Append(r.Diagnostics)
	}

	fa.CSE = dataflow.CommonSubexpressionElimination(graph)

	log.Debugf("pipeline: running loop analysis for %q", fn.Name)

	fa.Loops = loopanalysis.FindNaturalLoops(graph, dom)

	if fa.Reaching != nil {
		for _, loop := range fa.Loops {
			bivs, divs := loopanalysis.FindInductionVariables(loop, fa.Reaching)
			fa.BIVs[loop] = bivs
			fa.DIVs[loop] = divs
			fa.Invariants[loop] = loopanalysis.FindInvariants(graph, loop, fa.Reaching)
		}
	}

	return fa
}

// functionJob adapts one analyzeFunction call to util.AnalysisBatch.
// Functions are analyzed independently of each other (§7), so Dependencies
// is always empty; index is both the job's identity and the slot it writes
// its result into (see pkg/util/parallel.go).
type functionJob struct {
	index   uint
	fn      *ast.FunctionDecl
	limits  Limits
	diags   *diag.Diagnostics
	results []*FunctionAnalysis
}

func (j *functionJob) Jobs() []uint         { return []uint{j.index} }
func (j *functionJob) Dependencies() []uint { return nil }

func (j *functionJob) Run() error {
	j.results[j.index] = analyzeFunction(j.fn, j.limits, j.diags)
	return nil
}

// analyzeFunctions runs analyzeFunction over every function collected from
// programs, scheduled through util.RunBatches rather than a plain loop: each
// function is an independent AnalysisBatch with no dependencies, so
// RunBatches degenerates to running them all in worklist order, but the
// scheduler (not this package) owns that decision, leaving room for a later
// pass that does need cross-function ordering to express it as a
// dependency instead of a new scheduler.
func analyzeFunctions(programs []*ast.Program, limits Limits, diags *diag.Diagnostics) []*FunctionAnalysis {
	fns := collectFunctions(programs)
	results := make([]*FunctionAnalysis, len(fns))

	jobs := make([]*functionJob, len(fns))
	for i, fn := range fns {
		jobs[i] = &functionJob{index: uint(i), fn: fn, limits: limits, diags: diags, results: results}
	}

	if err := util.RunBatches(jobs); err != nil {
		log.Errorf("pipeline: C4-C6 scheduling failed: %v", err)
	}

	return results
}

// collectFunctions gathers every top-level (or exported) *ast.FunctionDecl
// across all programs, unwrapping *ast.Export exactly as pkg/il's
// lowerTopLevel does, since C4-C6 run over the same declaration set C7
// eventually lowers.
func collectFunctions(programs []*ast.Program) []*ast.FunctionDecl {
	var fns []*ast.FunctionDecl

	for _, p := range programs {
		if p.Module == nil {
			continue
		}

		for _, decl := range p.Module.Declarations {
			if exp, ok := decl.(*ast.Export); ok {
				decl = exp.Declaration
			}

			if fn, ok := decl.(*ast.FunctionDecl); ok {
				fns = append(fns, fn)
			}
		}
	}

	return fns
}
