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

// Command blend65 is a thin shell around pkg/pipeline: it builds an AST
// from a named in-memory fixture (pkg/astfixture — lexing/parsing is out of
// scope, §1), runs the middle-end over it, and formats whatever pkg/diag,
// pkg/il, pkg/ssa or pkg/cfg artifact the chosen subcommand asks for.
package main

import (
	"fmt"
	"os"
	"runtime/debug"

	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/blendsdk/blend65/pkg/target"
)

// version is filled when building with make, but *not* when installing via
// "go install".
var version string

var rootCmd = &cobra.Command{
	Use:   "blend65",
	Short: "A middle-end compiler toolbox for the Blend65 language.",
	Long:  "A middle-end compiler toolbox for the Blend65 language: symbol resolution, type checking, control-flow and data-flow analysis, SSA construction, and 6502-target hints.",
	Run: func(cmd *cobra.Command, args []string) {
		if GetFlag(cmd, "version") {
			fmt.Print("blend65 ")

			if version != "" {
				fmt.Printf("%s", version)
			} else if info, ok := debug.ReadBuildInfo(); ok {
				fmt.Printf("%s", info.Main.Version)
			} else {
				fmt.Printf("(unknown version)")
			}

			fmt.Println()
		}
	},
}

// Execute adds all child commands to the root command and sets flags
// appropriately. Called once by main.main.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.Flags().Bool("version", false, "report version of this executable")
	rootCmd.PersistentFlags().BoolP("verbose", "v", false, "increase logging verbosity")
	rootCmd.PersistentFlags().String("source", "counter", "name of the built-in AST fixture to compile (an unknown name prints the known fixtures)")
	rootCmd.PersistentFlags().String("target", "", "path to a target JSON configuration (pkg/target.LoadConfig); defaults to the built-in C64 target")
	rootCmd.PersistentFlags().Uint("textwidth", 130, "column width used when laying out tabular output")
}

// resolveTarget loads --target if set, otherwise returns the built-in C64
// configuration (§4.9: "Only C64 is fully implemented").
func resolveTarget(cmd *cobra.Command) *target.Config {
	path := GetString(cmd, "target")
	if path == "" {
		return target.NewC64Target()
	}

	data, err := os.ReadFile(path)
	if err != nil {
		fmt.Println(err)
		os.Exit(2)
	}

	res := target.LoadConfig(data)
	if !res.Success {
		for _, d := range res.Diagnostics.All() {
			fmt.Println(d.Error())
		}

		os.Exit(1)
	}

	return res.Value
}

func configureLogging(cmd *cobra.Command) {
	if GetFlag(cmd, "verbose") {
		log.SetLevel(log.DebugLevel)
	}
}
