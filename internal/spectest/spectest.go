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

// Package spectest consumes the JSON command schema used by the upstream
// WebAssembly test suite: a sequence of module loads and assertions against
// already-decoded binary modules. It takes wasm bytes and JSON directly,
// with no dependency on any particular .wat/.wast toolchain — text-format
// conversion is out of scope for this runtime.
package spectest

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/wasmlite/wasmlite/wasmlite"
)

// Value is one typed argument or expected result, using the upstream test
// suite's string-encoded number representation (so NaN payloads and exact
// bit patterns for floats survive JSON round-tripping).
type Value struct {
	Type  string `json:"type"`
	Value string `json:"value"`
}

// Action invokes an exported function, or reads an exported global, in a
// previously loaded module.
type Action struct {
	Type   string  `json:"type"` // "invoke" or "get"
	Module string  `json:"module,omitempty"`
	Field  string  `json:"field"`
	Args   []Value `json:"args,omitempty"`
}

// Command is one entry in a test script.
type Command struct {
	Type     string  `json:"type"`
	Line     int     `json:"line"`
	Filename string  `json:"filename,omitempty"`
	Name     string  `json:"name,omitempty"`
	As       string  `json:"as,omitempty"`
	Action   *Action `json:"action,omitempty"`
	Expected []Value `json:"expected,omitempty"`
	Text     string  `json:"text,omitempty"` // expected message for assert_* commands
}

// Script is a whole test file: a named source plus its command sequence.
type Script struct {
	SourceFilename string    `json:"source_filename"`
	Commands       []Command `json:"commands"`
}

// ParseScript decodes a JSON test script.
func ParseScript(data []byte) (*Script, error) {
	var s Script
	if err := json.Unmarshal(data, &s); err != nil {
		return nil, fmt.Errorf("parsing spec test script: %w", err)
	}
	return &s, nil
}

// ModuleSet resolves a Command's Filename to the pre-decoded wasm bytes the
// caller supplied out of band (this package never touches a filesystem or
// shells out to a converter).
type ModuleSet map[string][]byte

// Runner executes a Script's commands against a Runtime, tracking named
// module registrations the way the upstream harness does (every `module`
// command makes its instance the "current" module, and a `name` also
// records it for lookup; later commands may `register` it under an `as`
// name for cross-module imports).
type Runner struct {
	Runtime *wasmlite.Runtime
	Modules ModuleSet

	store    *wasmlite.Store
	current  *wasmlite.ModuleInstance
	byName   map[string]*wasmlite.ModuleInstance
	imports  wasmlite.Imports
}

// NewRunner creates a Runner sharing one store across the whole script, so
// that modules loaded earlier in the script stay linked and reachable by
// register/action commands that follow.
func NewRunner(rt *wasmlite.Runtime, modules ModuleSet, imports wasmlite.Imports) *Runner {
	return &Runner{
		Runtime: rt,
		Modules: modules,
		store:   rt.NewStore(),
		byName:  map[string]*wasmlite.ModuleInstance{},
		imports: imports,
	}
}

// Result is the outcome of running one command, reported so a test harness
// can assert on it.
type Result struct {
	Command Command
	Err     error
	Values  []any
}

// Run executes every command in order, stopping at the first command whose
// outcome does not match its assertion.
func (r *Runner) Run(script *Script) ([]Result, error) {
	results := make([]Result, 0, len(script.Commands))
	for _, cmd := range script.Commands {
		res, err := r.runOne(cmd)
		results = append(results, res)
		if err != nil {
			return results, err
		}
	}
	return results, nil
}

func (r *Runner) runOne(cmd Command) (Result, error) {
	switch cmd.Type {
	case "module":
		data, ok := r.Modules[cmd.Filename]
		if !ok {
			return Result{Command: cmd}, fmt.Errorf("line %d: no bytes supplied for module %q", cmd.Line, cmd.Filename)
		}
		mi, err := r.Runtime.Instantiate(r.store, data, r.imports)
		if err != nil {
			return Result{Command: cmd, Err: err}, fmt.Errorf("line %d: unexpected instantiation failure: %w", cmd.Line, err)
		}
		r.current = mi
		if cmd.Name != "" {
			r.byName[cmd.Name] = mi
		}
		return Result{Command: cmd}, nil

	case "register":
		mi := r.current
		if cmd.Name != "" {
			if m, ok := r.byName[cmd.Name]; ok {
				mi = m
			}
		}
		if mi == nil {
			return Result{Command: cmd}, fmt.Errorf("line %d: register with no current module", cmd.Line)
		}
		r.imports = wasmlite.MergeImports(r.imports, wasmlite.NewModuleImportBuilder(cmd.As).AddModuleExports(mi).Build())
		return Result{Command: cmd}, nil

	case "action", "assert_return":
		res, err := r.runAction(cmd)
		if err == nil && res.Err != nil && cmd.Type == "assert_return" {
			return res, fmt.Errorf("line %d: expected results, got %w", cmd.Line, res.Err)
		}
		return res, err

	case "assert_trap":
		res, _ := r.runAction(cmd)
		if _, ok := wasmlite.AsTrap(res.Err); !ok {
			return res, fmt.Errorf("line %d: expected trap, got %v", cmd.Line, res.Err)
		}
		return Result{Command: cmd, Err: res.Err}, nil

	case "assert_malformed":
		data, ok := r.Modules[cmd.Filename]
		if !ok {
			return Result{Command: cmd}, fmt.Errorf("line %d: no bytes supplied for module %q", cmd.Line, cmd.Filename)
		}
		_, err := decodeAndValidate(r.Runtime, data)
		if err == nil {
			return Result{Command: cmd}, fmt.Errorf("line %d: expected assert_malformed, module accepted", cmd.Line)
		}
		var de *wasmlite.DecodeError
		if !errors.As(err, &de) {
			return Result{Command: cmd, Err: err}, fmt.Errorf("line %d: expected a decode error, got %v", cmd.Line, err)
		}
		return Result{Command: cmd, Err: err}, nil

	case "assert_invalid":
		data, ok := r.Modules[cmd.Filename]
		if !ok {
			return Result{Command: cmd}, fmt.Errorf("line %d: no bytes supplied for module %q", cmd.Line, cmd.Filename)
		}
		_, err := decodeAndValidate(r.Runtime, data)
		if err == nil {
			return Result{Command: cmd}, fmt.Errorf("line %d: expected assert_invalid, module accepted", cmd.Line)
		}
		var ve *wasmlite.ValidationError
		if !errors.As(err, &ve) {
			return Result{Command: cmd, Err: err}, fmt.Errorf("line %d: expected a validation error, got %v", cmd.Line, err)
		}
		return Result{Command: cmd, Err: err}, nil

	case "assert_unlinkable":
		data, ok := r.Modules[cmd.Filename]
		if !ok {
			return Result{Command: cmd}, fmt.Errorf("line %d: no bytes supplied for module %q", cmd.Line, cmd.Filename)
		}
		_, err := r.Runtime.Instantiate(r.store, data, r.imports)
		if err == nil {
			return Result{Command: cmd}, fmt.Errorf("line %d: expected link failure, instantiation succeeded", cmd.Line)
		}
		var linkErr *wasmlite.LinkError
		if !errors.As(err, &linkErr) {
			return Result{Command: cmd, Err: err}, fmt.Errorf("line %d: expected a link error, got %v", cmd.Line, err)
		}
		return Result{Command: cmd, Err: err}, nil

	default:
		return Result{Command: cmd}, nil
	}
}

func decodeAndValidate(rt *wasmlite.Runtime, data []byte) (*wasmlite.Module, error) {
	m, err := rt.DecodeModule(data)
	if err != nil {
		return nil, err
	}
	if err := rt.ValidateModule(m); err != nil {
		return nil, err
	}
	return m, nil
}

func (r *Runner) runAction(cmd Command) (Result, error) {
	act := cmd.Action
	if act == nil {
		return Result{Command: cmd}, fmt.Errorf("line %d: %s command missing action", cmd.Line, cmd.Type)
	}
	mi := r.current
	if act.Module != "" {
		if m, ok := r.byName[act.Module]; ok {
			mi = m
		}
	}
	if mi == nil {
		return Result{Command: cmd}, fmt.Errorf("line %d: no module to act on", cmd.Line)
	}

	switch act.Type {
	case "invoke":
		args := make([]any, len(act.Args))
		for i, a := range act.Args {
			v, err := decodeValue(a)
			if err != nil {
				return Result{Command: cmd}, err
			}
			args[i] = v
		}
		results, err := r.Runtime.InvokeExport(mi, act.Field, args...)
		if err != nil {
			return Result{Command: cmd, Err: err}, nil
		}
		if err := checkExpected(cmd.Expected, results); err != nil {
			return Result{Command: cmd, Values: results}, fmt.Errorf("line %d: %w", cmd.Line, err)
		}
		return Result{Command: cmd, Values: results}, nil

	case "get":
		exp, ok := mi.Export(act.Field)
		if !ok || exp.Kind != wasmlite.ExportGlobal {
			return Result{Command: cmd}, fmt.Errorf("line %d: no such global export %q", cmd.Line, act.Field)
		}
		v, err := mi.GetGlobal(uint32(indexOfGlobalExport(mi, act.Field)))
		if err != nil {
			return Result{Command: cmd}, err
		}
		if err := checkExpected(cmd.Expected, []any{v}); err != nil {
			return Result{Command: cmd, Values: []any{v}}, fmt.Errorf("line %d: %w", cmd.Line, err)
		}
		return Result{Command: cmd, Values: []any{v}}, nil

	default:
		return Result{Command: cmd}, fmt.Errorf("line %d: unknown action type %q", cmd.Line, act.Type)
	}
}

// indexOfGlobalExport is a small helper for "get" actions: ModuleInstance
// only exposes globals by module-relative index, so translate the export
// address back into one.
func indexOfGlobalExport(mi *wasmlite.ModuleInstance, name string) int {
	exp, _ := mi.Export(name)
	for i, addr := range mi.GlobalAddrs {
		if addr == exp.GlobalAddr {
			return i
		}
	}
	return -1
}

func checkExpected(expected []Value, got []any) error {
	if len(expected) != len(got) {
		return fmt.Errorf("expected %d results, got %d", len(expected), len(got))
	}
	for i, exp := range expected {
		want, err := decodeValue(exp)
		if err != nil {
			return err
		}
		if !valuesEqual(want, got[i]) {
			return fmt.Errorf("result %d: expected %v, got %v", i, want, got[i])
		}
	}
	return nil
}
