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
package main

import (
	"os"

	"golang.org/x/term"

	"github.com/spf13/cobra"
)

// outputWidth picks the column width diagnostic/IL dumps wrap to: the
// real terminal width when stdout is a terminal (pkg/util/termio.Terminal's
// GetSize, generalized to a plain width query since this CLI has no
// interactive widget tree), falling back to --textwidth otherwise (piped
// output, CI logs).
func outputWidth(cmd *cobra.Command) uint {
	fd := int(os.Stdout.Fd())

	if term.IsTerminal(fd) {
		if w, _, err := term.GetSize(fd); err == nil && w > 0 {
			return uint(w)
		}
	}

	return GetUint(cmd, "textwidth")
}

// truncate clips s to width columns, appending an ellipsis marker if it
// had to cut anything, for diagnostic summaries printed in a narrow
// terminal.
func truncate(s string, width uint) string {
	if width == 0 || uint(len(s)) <= width {
		return s
	}

	if width < 4 {
		return s[:width]
	}

	return s[:width-3] + "..."
}
