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

import "fmt"

// Severity classifies how serious a diagnostic is (§7).
type Severity uint8

const (
	// Error indicates compilation must fail.
	Error Severity = iota
	// Warning indicates a recoverable defect (unused symbol, unreachable code, …).
	Warning
	// Info indicates an optimization opportunity or classification (CSE, GVN, purity).
	Info
	// Hint indicates a suggestion (e.g. a zero-page priority score).
	Hint
)

// String renders a severity for display.
func (s Severity) String() string {
	switch s {
	case Error:
		return "error"
	case Warning:
		return "warning"
	case Info:
		return "info"
	case Hint:
		return "hint"
	default:
		return "unknown"
	}
}

// Code is a closed set of recognised diagnostic codes (§6).  New codes
// should be added here rather than constructed ad-hoc, so downstream tools
// can switch over them exhaustively.
type Code string

// Recognised diagnostic codes.  Not exhaustive — passes may mint additional
// codes local to their concern, but the ones named in spec.md §6/§4.8 are
// listed here as the common vocabulary.
const (
	CodeModuleNotFound         Code = "MODULE_NOT_FOUND"
	CodeDuplicateDeclaration   Code = "DUPLICATE_DECLARATION"
	CodeExportRequiresDecl     Code = "EXPORT_REQUIRES_DECLARATION"
	CodeInvalidModuleScope     Code = "INVALID_MODULE_SCOPE"
	CodeUnresolvedIdentifier   Code = "UNRESOLVED_IDENTIFIER"
	CodeTypeMismatch           Code = "TYPE_MISMATCH"
	CodeNarrowingConversion    Code = "NARROWING_CONVERSION"
	CodeArityMismatch          Code = "ARITY_MISMATCH"
	CodeBadMapAddress          Code = "BAD_MAP_ADDRESS"
	CodeUnusedImport           Code = "UNUSED_IMPORT"
	CodeUnusedSymbol           Code = "UNUSED_SYMBOL"
	CodeUnreachableCode        Code = "UNREACHABLE_CODE"
	CodeDeadDefinition         Code = "DEAD_DEFINITION"
	CodeMissingReturn          Code = "MISSING_RETURN"
	CodeIterationCapExceeded   Code = "ITERATION_CAP_EXCEEDED"
	CodeInvalidTarget          Code = "INVALID_TARGET"
	CodeReservedZeroPage       Code = "RESERVED_ZERO_PAGE"
	CodeInternalError          Code = "INTERNAL_ERROR"
	CodeMultipleDefinitions    Code = "MULTIPLE_DEFINITIONS"
	CodeDominanceViolation     Code = "DOMINANCE_VIOLATION"
	CodeUseBeforeDefinition    Code = "USE_BEFORE_DEFINITION"
	CodePhiMissingOperand      Code = "PHI_MISSING_OPERAND"
	CodePhiInvalidPredecessor  Code = "PHI_INVALID_PREDECESSOR"
	CodePhiNotAtBlockStart     Code = "PHI_NOT_AT_BLOCK_START"
	CodePhiInEntryBlock        Code = "PHI_IN_ENTRY_BLOCK"
	CodePhiOperandCountMismatch Code = "PHI_OPERAND_COUNT_MISMATCH"
	CodePurityLevel             Code = "PURITY_LEVEL"
	CodeOptimizationHint        Code = "OPTIMIZATION_HINT"
)

// Diagnostic is a single reported fact about the program being compiled.
type Diagnostic struct {
	Code     Code
	Severity Severity
	Message  string
	Location Location
	Related  []Location
}

// New constructs a diagnostic at the given severity.
func New(code Code, severity Severity, loc Location, msg string, args ...any) Diagnostic {
	if len(args) > 0 {
		msg = fmt.Sprintf(msg, args...)
	}

	return Diagnostic{Code: code, Severity: severity, Message: msg, Location: loc}
}

// Errorf constructs an Error-severity diagnostic.
func Errorf(code Code, loc Location, msg string, args ...any) Diagnostic {
	return New(code, Error, loc, msg, args...)
}

// Warnf constructs a Warning-severity diagnostic.
func Warnf(code Code, loc Location, msg string, args ...any) Diagnostic {
	return New(code, Warning, loc, msg, args...)
}

// Infof constructs an Info-severity diagnostic.
func Infof(code Code, loc Location, msg string, args ...any) Diagnostic {
	return New(code, Info, loc, msg, args...)
}

// Hintf constructs a Hint-severity diagnostic.
func Hintf(code Code, loc Location, msg string, args ...any) Diagnostic {
	return New(code, Hint, loc, msg, args...)
}

// Error implements the error interface, so a Diagnostic can be returned
// wherever a plain Go error is expected (e.g. wrapped internal panics).
func (d Diagnostic) Error() string {
	return fmt.Sprintf("%s: %s: %s [%s]", d.Location.String(), d.Severity.String(), d.Message, d.Code)
}
