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

package main

import (
	"fmt"
	"os"
	"strconv"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/wasmlite/wasmlite/wasmlite"
)

func newRunCmd(newLogger func() *zap.Logger) *cobra.Command {
	return &cobra.Command{
		Use:   "run <module.wasm> <function> [args...]",
		Short: "Instantiate a module and invoke one of its exported functions",
		Args:  cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := os.ReadFile(args[0])
			if err != nil {
				return err
			}
			funcName := args[1]
			argStrs := args[2:]

			rt := wasmlite.NewRuntime().WithLogger(newLogger())
			m, err := rt.DecodeModule(data)
			if err != nil {
				return err
			}
			if err := rt.ValidateModule(m); err != nil {
				return err
			}

			exp, ok := findExport(m, funcName, wasmlite.ExportFunc)
			if !ok {
				return fmt.Errorf("no exported function %q", funcName)
			}
			ft := m.FuncType(exp.Index)
			if len(argStrs) != len(ft.Params) {
				return fmt.Errorf("function %q expects %d arguments, got %d", funcName, len(ft.Params), len(argStrs))
			}
			callArgs := make([]any, len(argStrs))
			for i, s := range argStrs {
				v, err := parseArg(ft.Params[i], s)
				if err != nil {
					return fmt.Errorf("argument %d: %w", i, err)
				}
				callArgs[i] = v
			}

			store := rt.NewStore()
			mi, err := wasmlite.Instantiate(store, m, nil)
			if err != nil {
				return err
			}
			results, err := rt.InvokeExport(mi, funcName, callArgs...)
			if err != nil {
				return err
			}
			for _, r := range results {
				fmt.Println(r)
			}
			return nil
		},
	}
}

func findExport(m *wasmlite.Module, name string, kind wasmlite.ExportKind) (wasmlite.Export, bool) {
	for _, exp := range m.Exports {
		if exp.Name == name && exp.Kind == kind {
			return exp, true
		}
	}
	return wasmlite.Export{}, false
}

// parseArg converts a command-line string into the Go value matching a
// function parameter's static type.
func parseArg(vt wasmlite.ValueType, s string) (any, error) {
	nt, _ := vt.(wasmlite.NumberType)
	switch nt {
	case wasmlite.I32:
		v, err := strconv.ParseInt(s, 10, 32)
		return int32(v), err
	case wasmlite.I64:
		v, err := strconv.ParseInt(s, 10, 64)
		return v, err
	case wasmlite.F32:
		v, err := strconv.ParseFloat(s, 32)
		return float32(v), err
	case wasmlite.F64:
		return strconv.ParseFloat(s, 64)
	default:
		return nil, fmt.Errorf("unsupported parameter type")
	}
}
