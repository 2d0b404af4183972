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
package util

// AnalysisBatch is one unit of C4-C6 per-function work: a set of job slots
// it writes results into, and the job slots (if any) it depends on. blend65
// functions are analyzed independently (§7), so in practice every batch's
// Dependencies is empty and RunBatches degenerates to running them in
// worklist order — but the dependency bookkeeping stays in place so a later
// pass that does need ordering (e.g. a whole-module analysis consuming every
// function's C6 result) can express it without a new scheduler.
type AnalysisBatch interface {
	// Jobs returns the job slot indices this batch completes.
	Jobs() []uint
	// Dependencies returns the job slot indices that must already be
	// complete before this batch may run.
	Dependencies() []uint
	// Run executes the batch, writing its result(s) into the slot(s) Jobs
	// names.
	Run() error
}

// RunBatches drives worklist to completion, running each AnalysisBatch once
// its dependencies are satisfied. Used by pkg/pipeline to schedule the
// per-function C4-C6 analyses (see pkg/pipeline/function.go's functionJob).
func RunBatches[B AnalysisBatch](worklist []B) error {
	var next B

	pending := pendingSlots(worklist)

	for len(worklist) > 0 {
		next, worklist = nextReadyBatch(pending, worklist)

		if err := next.Run(); err != nil {
			return err
		}

		for _, slot := range next.Jobs() {
			pending[slot] = false
		}
	}

	return nil
}

// pendingSlots builds the set of job slots awaiting completion. A slot never
// named by any batch's Jobs() is assumed already satisfied.
func pendingSlots[B AnalysisBatch](batches []B) []bool {
	var highest uint

	for _, b := range batches {
		for _, slot := range b.Jobs() {
			highest = max(highest, slot+1)
		}
	}

	pending := make([]bool, highest)

	for _, b := range batches {
		for _, slot := range b.Jobs() {
			pending[slot] = true
		}
	}

	return pending
}

// nextReadyBatch removes and returns the first batch in worklist whose
// dependencies are all satisfied. Batches currently run strictly in
// worklist order (blend65's functions have no cross-function dependency to
// reorder around), so a ready batch not at the head is a scheduling bug.
func nextReadyBatch[B AnalysisBatch](pending []bool, worklist []B) (B, []B) {
	for i, b := range worklist {
		if batchIsReady(pending, b) {
			if i != 0 {
				panic("internal failure: batch scheduler expected worklist order")
			}

			return b, worklist[1:]
		}
	}

	panic("no batch is ready to run")
}

// batchIsReady reports whether every slot b.Dependencies names has already
// been completed.
func batchIsReady[B AnalysisBatch](pending []bool, b B) bool {
	for _, slot := range b.Dependencies() {
		if pending[slot] {
			return false
		}
	}

	return true
}
