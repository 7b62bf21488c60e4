// Copyright 2025 Google LLC
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Command wasmlite is a small CLI and REPL host built on top of the
// wasmlite embedding API: it can validate a module, print its decoded
// structure, invoke one of its exports directly from the shell, or drop
// into an interactive loop for exploring several modules at once.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var verbose bool

	root := &cobra.Command{
		Use:   "wasmlite",
		Short: "A minimal WebAssembly 1.0 decoder, validator, and interpreter",
	}
	root.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable debug logging")

	newLogger := func() *zap.Logger {
		if verbose {
			l, _ := zap.NewDevelopment()
			return l
		}
		return zap.NewNop()
	}

	root.AddCommand(newValidateCmd())
	root.AddCommand(newDecodeCmd())
	root.AddCommand(newRunCmd(newLogger))
	root.AddCommand(newReplCmd(newLogger))
	return root
}
