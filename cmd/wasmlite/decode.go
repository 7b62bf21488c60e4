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

	"github.com/spf13/cobra"
	"github.com/wasmlite/wasmlite/wasmlite"
)

func newDecodeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "decode <module.wasm>",
		Short: "Decode a module and print its structure",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := os.ReadFile(args[0])
			if err != nil {
				return err
			}
			m, err := wasmlite.Decode(data)
			if err != nil {
				return err
			}
			fmt.Printf("types:    %d\n", len(m.Types))
			fmt.Printf("imports:  %d\n", len(m.Imports))
			fmt.Printf("funcs:    %d\n", len(m.Funcs))
			fmt.Printf("tables:   %d\n", len(m.Tables))
			fmt.Printf("memories: %d\n", len(m.Memories))
			fmt.Printf("globals:  %d\n", len(m.Globals))
			fmt.Printf("elements: %d\n", len(m.Elements))
			fmt.Printf("datas:    %d\n", len(m.Datas))
			if m.StartFunc != nil {
				fmt.Printf("start:    %d\n", *m.StartFunc)
			}
			fmt.Println("exports:")
			for _, exp := range m.Exports {
				fmt.Printf("  %-20s %s\n", exp.Name, exportKindName(exp.Kind))
			}
			return nil
		},
	}
}

func exportKindName(k wasmlite.ExportKind) string {
	switch k {
	case wasmlite.ExportFunc:
		return "func"
	case wasmlite.ExportTable:
		return "table"
	case wasmlite.ExportMemory:
		return "memory"
	case wasmlite.ExportGlobal:
		return "global"
	default:
		return "?"
	}
}
