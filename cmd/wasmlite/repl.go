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
	"bufio"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"strconv"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/wasmlite/wasmlite/wasmlite"
)

func newReplCmd(newLogger func() *zap.Logger) *cobra.Command {
	return &cobra.Command{
		Use:   "repl",
		Short: "Interactively load and invoke modules",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			r := newREPL(newLogger())
			return r.run(cmd.InOrStdin(), cmd.OutOrStdout())
		},
	}
}

// repl is a line-oriented shell for loading modules and invoking their
// exports, kept deliberately simple: a command loop over a bufio.Scanner
// rather than a full TUI, since a REPL's line loop is not itself a
// CLI-parsing concern.
type repl struct {
	rt      *wasmlite.Runtime
	store   *wasmlite.Store
	modules map[string]*wasmlite.ModuleInstance
	current string
}

func newREPL(logger *zap.Logger) *repl {
	rt := wasmlite.NewRuntime().WithLogger(logger)
	return &repl{rt: rt, store: rt.NewStore(), modules: map[string]*wasmlite.ModuleInstance{}}
}

func (r *repl) run(in io.Reader, out io.Writer) error {
	scanner := bufio.NewScanner(in)
	fmt.Fprintln(out, "wasmlite repl. Type HELP for commands.")
	for {
		fmt.Fprint(out, "> ")
		if !scanner.Scan() {
			return nil
		}
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		parts := strings.Fields(line)
		switch strings.ToUpper(parts[0]) {
		case "LOAD":
			r.cmdLoad(out, parts[1:])
		case "INVOKE":
			r.cmdInvoke(out, parts[1:])
		case "GET":
			r.cmdGet(out, parts[1:])
		case "MEM":
			r.cmdMem(out, parts[1:])
		case "LIST":
			r.cmdList(out)
		case "HELP":
			r.cmdHelp(out)
		case "CLEAR":
			r.modules = map[string]*wasmlite.ModuleInstance{}
			r.current = ""
			fmt.Fprintln(out, "cleared")
		case "QUIT", "EXIT":
			return nil
		default:
			fmt.Fprintf(out, "unknown command %q, try HELP\n", parts[0])
		}
	}
}

func (r *repl) cmdHelp(out io.Writer) {
	fmt.Fprintln(out, `commands:
  LOAD <name> <path-or-url>   load a module (file, http://, or https://)
  INVOKE [name.]func args...  invoke an exported function
  GET [name.]global           read an exported global
  MEM [name] [offset] [len]   dump memory bytes
  LIST                        list loaded modules and their exports
  CLEAR                       forget all loaded modules
  HELP                        show this text
  QUIT                        exit`)
}

func (r *repl) cmdLoad(out io.Writer, args []string) {
	if len(args) != 2 {
		fmt.Fprintln(out, "usage: LOAD <name> <path-or-url>")
		return
	}
	name, source := args[0], args[1]
	data, err := resolveModule(source)
	if err != nil {
		fmt.Fprintln(out, red(err.Error()))
		return
	}
	mi, err := r.rt.Instantiate(r.store, data, nil)
	if err != nil {
		fmt.Fprintln(out, red(err.Error()))
		return
	}
	r.modules[name] = mi
	r.current = name
	fmt.Fprintln(out, green(fmt.Sprintf("loaded %q", name)))
}

func (r *repl) resolve(qualified string) (*wasmlite.ModuleInstance, string, bool) {
	name, field, hasDot := strings.Cut(qualified, ".")
	if !hasDot {
		mi, ok := r.modules[r.current]
		return mi, qualified, ok
	}
	mi, ok := r.modules[name]
	return mi, field, ok
}

func (r *repl) cmdInvoke(out io.Writer, args []string) {
	if len(args) < 1 {
		fmt.Fprintln(out, "usage: INVOKE [module.]func [args...]")
		return
	}
	mi, field, ok := r.resolve(args[0])
	if !ok {
		fmt.Fprintln(out, red("no such module"))
		return
	}
	exp, ok := mi.Export(field)
	if !ok || exp.Kind != wasmlite.ExportFunc {
		fmt.Fprintln(out, red("no such function export"))
		return
	}
	paramTypes := r.store.Funcs[exp.FuncAddr].Type().Params
	strArgs := args[1:]
	if len(strArgs) != len(paramTypes) {
		fmt.Fprintf(out, "invalid number of arguments for %s; expected %d, got %d\n", field, len(paramTypes), len(strArgs))
		return
	}
	callArgs := make([]any, len(strArgs))
	for i, s := range strArgs {
		v, err := parseFunctionArgument(s, paramTypes[i])
		if err != nil {
			fmt.Fprintln(out, red(err.Error()))
			return
		}
		callArgs[i] = v
	}
	results, err := r.rt.InvokeExport(mi, field, callArgs...)
	if err != nil {
		fmt.Fprintln(out, red(err.Error()))
		return
	}
	fmt.Fprintln(out, green(fmt.Sprint(results)))
}

func (r *repl) cmdGet(out io.Writer, args []string) {
	if len(args) != 1 {
		fmt.Fprintln(out, "usage: GET [module.]global")
		return
	}
	mi, field, ok := r.resolve(args[0])
	if !ok {
		fmt.Fprintln(out, red("no such module"))
		return
	}
	exp, ok := mi.Export(field)
	if !ok || exp.Kind != wasmlite.ExportGlobal {
		fmt.Fprintln(out, red("no such global export"))
		return
	}
	for i, addr := range mi.GlobalAddrs {
		if addr == exp.GlobalAddr {
			v, err := mi.GetGlobal(uint32(i))
			if err != nil {
				fmt.Fprintln(out, red(err.Error()))
				return
			}
			fmt.Fprintln(out, green(fmt.Sprint(v)))
			return
		}
	}
}

func (r *repl) cmdMem(out io.Writer, args []string) {
	name := r.current
	if len(args) > 0 {
		name = args[0]
	}
	mi, ok := r.modules[name]
	if !ok {
		fmt.Fprintln(out, red("no such module"))
		return
	}
	m, err := mi.GetMemory(0)
	if err != nil {
		fmt.Fprintln(out, red(err.Error()))
		return
	}
	if len(args) < 3 {
		fmt.Fprintf(out, "%d pages (%d bytes)\n", m.Size(), m.Size()*memPageSize)
		return
	}
	offset, err1 := strconv.ParseUint(args[1], 10, 32)
	length, err2 := strconv.ParseUint(args[2], 10, 32)
	if err1 != nil || err2 != nil {
		fmt.Fprintln(out, red("offset and length must be integers"))
		return
	}
	buf := make([]byte, length)
	if err := m.Read(offset, buf); err != nil {
		fmt.Fprintln(out, red(err.Error()))
		return
	}
	fmt.Fprintf(out, "% x\n", buf)
}

const memPageSize = 65536

func (r *repl) cmdList(out io.Writer) {
	for name, mi := range r.modules {
		marker := " "
		if name == r.current {
			marker = "*"
		}
		fmt.Fprintf(out, "%s %s\n", marker, name)
		for expName, exp := range mi.Exports {
			fmt.Fprintf(out, "    %s (%s)\n", expName, exportKindName(exp.Kind))
		}
	}
}

// resolveModule loads module bytes from a local path or an http(s) URL.
func resolveModule(source string) ([]byte, error) {
	u, err := url.Parse(source)
	if err == nil && (u.Scheme == "http" || u.Scheme == "https") {
		resp, err := http.Get(source)
		if err != nil {
			return nil, err
		}
		defer resp.Body.Close()
		if resp.StatusCode != http.StatusOK {
			return nil, fmt.Errorf("fetching %s: HTTP %d", source, resp.StatusCode)
		}
		return io.ReadAll(resp.Body)
	}
	return os.ReadFile(source)
}

// parseFunctionArgument parses a REPL argument string according to the
// callee's declared parameter type, rather than guessing from the
// literal's shape.
func parseFunctionArgument(argStr string, paramType wasmlite.ValueType) (any, error) {
	switch paramType {
	case wasmlite.I32:
		v, err := strconv.ParseInt(argStr, 10, 32)
		if err != nil {
			return nil, fmt.Errorf("failed to parse arg %s as i32: %v", argStr, err)
		}
		return int32(v), nil
	case wasmlite.I64:
		v, err := strconv.ParseInt(argStr, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("failed to parse arg %s as i64: %v", argStr, err)
		}
		return v, nil
	case wasmlite.F32:
		v, err := strconv.ParseFloat(argStr, 32)
		if err != nil {
			return nil, fmt.Errorf("failed to parse arg %s as f32: %v", argStr, err)
		}
		return float32(v), nil
	case wasmlite.F64:
		v, err := strconv.ParseFloat(argStr, 64)
		if err != nil {
			return nil, fmt.Errorf("failed to parse arg %s as f64: %v", argStr, err)
		}
		return v, nil
	default:
		return nil, fmt.Errorf("unsupported arg type: %v", paramType)
	}
}

func red(s string) string   { return "\033[31m" + s + "\033[0m" }
func green(s string) string { return "\033[32m" + s + "\033[0m" }
