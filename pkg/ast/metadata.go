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
package ast

// OptimizationKey enumerates the annotation slots a node may carry.  It
// exists purely as documentation of the annotation set handed downstream
// (§6 "Keys are drawn from a closed enum so downstream passes can read them
// without string matching") — per §9's design note, the actual storage is a
// fixed struct of optional fields (below), not a map keyed by this enum, so
// readers get compile-time checking instead of a runtime lookup.
type OptimizationKey uint8

// The annotation slots named in spec.md §6.
const (
	KeyLivenessIn OptimizationKey = iota
	KeyLivenessOut
	KeyGVNNumber
	KeyGVNRedundant
	KeyConstantValue
	KeyReachingDefs
	KeyLoopDepth
	KeyLoopInvariant
	KeyInductionVariable
	KeyRegisterPreference
	KeyZeroPagePriority
	KeyCycleEstimate
	KeyAliasRegion
	KeyPurityLevel
	KeyEscapeFlag
	KeyRasterCritical
)

// Metadata is the per-node annotation struct populated incrementally by each
// pass (C4-C9).  Every field is optional (zero value = "not yet computed");
// a pointer-typed field distinguishes "absent" from "present and zero".
type Metadata struct {
	// Liveness (§4.5.1) — sets of variable names.
	LivenessIn  map[string]bool
	LivenessOut map[string]bool

	// Global value numbering (§4.5.4).
	GVNNumber    *string
	GVNRedundant bool
	GVNReplaces  string

	// Constant propagation (§4.5.3).
	ConstantValue *ConstLatticeValue

	// Reaching definitions (§4.5.2) — definition-site ids reaching this node.
	ReachingDefs []uint32

	// Loop analysis (§4.6).
	LoopDepth          int
	LoopInvariant      bool
	HoistCandidate     bool
	InductionVariable  *InductionVariableInfo

	// Zero-page & hardware hints (§4.9).
	RegisterPreference string
	ZeroPagePriority   *int
	CycleEstimate      *uint32
	RasterCritical     bool

	// Alias/purity/escape (§4.5.6).
	AliasRegion string
	PurityLevel string
	Escapes     bool

	// CSE (§4.5.5) — set when this expression is an available-expression
	// hit within its basic block.
	CSECandidate bool
	CSEOriginal  string

	// Usage accounting (§4.5.6).
	ReadCount  int
	WriteCount int

	// Reachability (§4.4).
	Unreachable bool
}

// ConstLatticeValue represents a single point of the ⊥ < Const(v) < ⊤
// lattice used by constant propagation (§4.5.3).
type ConstLatticeValue struct {
	// Top indicates the variable is not a compile-time constant (⊤).
	Top bool
	// Bottom indicates the variable has not yet been observed (⊥); the
	// zero value of this struct.
	Bottom bool
	// Value holds the constant value when neither Top nor Bottom.
	Value uint32
}

// InductionVariableInfo captures either a basic or derived induction
// variable's parameters (§4.6).
type InductionVariableInfo struct {
	// Derived is false for a BIV, true for a DIV.
	Derived bool
	// BaseVar is this variable's own name (BIV) or the BIV it derives from (DIV).
	BaseVar string
	// Stride is the per-iteration delta (BIV) or multiplier (DIV).
	Stride int64
	// Offset is the additive constant of a DIV; zero for a BIV.
	Offset int64
	// InitialValue is the loop-entry value, when statically known (BIV only).
	InitialValue *int64
}
