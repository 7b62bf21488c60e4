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

package spectest

import (
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/wasmlite/wasmlite/wasmlite"
)

// The helpers below assemble Wasm binaries by hand, section by section,
// mirroring the runtime's own decoder tests; every value used here fits in
// a single LEB128 byte so no multi-byte varint encoding is needed.

func lebName(s string) []byte { return append([]byte{byte(len(s))}, []byte(s)...) }

func lebVec(items ...[]byte) []byte {
	out := []byte{byte(len(items))}
	for _, it := range items {
		out = append(out, it...)
	}
	return out
}

func withSection(id byte, content []byte) []byte {
	return append([]byte{id, byte(len(content))}, content...)
}

func withMagic(sections ...[]byte) []byte {
	out := []byte{0x00, 0x61, 0x73, 0x6D, 0x01, 0x00, 0x00, 0x00}
	for _, s := range sections {
		out = append(out, s...)
	}
	return out
}

// addModuleWasm builds (func (param i32 i32) (result i32) local.get 0
// local.get 1 i32.add), exported as "add".
func addModuleWasm() []byte {
	funcType := []byte{0x60, 0x02, 0x7F, 0x7F, 0x01, 0x7F}
	typeSec := withSection(1, lebVec(funcType))
	funcSec := withSection(3, lebVec([]byte{0x00}))
	exportEntry := append(lebName("add"), 0x00, 0x00)
	exportSec := withSection(7, lebVec(exportEntry))
	body := []byte{0x00, 0x20, 0x00, 0x20, 0x01, 0x6A, 0x0B}
	codeEntry := append([]byte{byte(len(body))}, body...)
	codeSec := withSection(10, lebVec(codeEntry))
	return withMagic(typeSec, funcSec, exportSec, codeSec)
}

// unreachableModuleWasm builds a niladic exported function "boom" whose
// body is a single unreachable instruction.
func unreachableModuleWasm() []byte {
	funcType := []byte{0x60, 0x00, 0x00}
	typeSec := withSection(1, lebVec(funcType))
	funcSec := withSection(3, lebVec([]byte{0x00}))
	exportEntry := append(lebName("boom"), 0x00, 0x00)
	exportSec := withSection(7, lebVec(exportEntry))
	body := []byte{0x00, 0x00, 0x0B} // no locals, unreachable, end
	codeEntry := append([]byte{byte(len(body))}, body...)
	codeSec := withSection(10, lebVec(codeEntry))
	return withMagic(typeSec, funcSec, exportSec, codeSec)
}

// unlinkableModuleWasm imports env.double : (i32) -> i32 and exports a
// wrapper "apply" that calls it, so instantiating it with no matching
// import produces a link error.
func unlinkableModuleWasm() []byte {
	funcType := []byte{0x60, 0x01, 0x7F, 0x01, 0x7F}
	typeSec := withSection(1, lebVec(funcType))
	importEntry := append(append(lebName("env"), lebName("double")...), 0x00, 0x00)
	importSec := withSection(2, lebVec(importEntry))
	funcSec := withSection(3, lebVec([]byte{0x00}))
	exportEntry := append(lebName("apply"), 0x00, 0x01)
	exportSec := withSection(7, lebVec(exportEntry))
	body := []byte{0x00, 0x20, 0x00, 0x10, 0x00, 0x0B} // local.get 0, call 0, end
	codeEntry := append([]byte{byte(len(body))}, body...)
	codeSec := withSection(10, lebVec(codeEntry))
	return withMagic(typeSec, importSec, funcSec, exportSec, codeSec)
}

// duplicateExportModuleWasm builds a niladic function exported twice under
// the same name: it decodes cleanly but fails whole-module validation.
func duplicateExportModuleWasm() []byte {
	funcType := []byte{0x60, 0x00, 0x00}
	typeSec := withSection(1, lebVec(funcType))
	funcSec := withSection(3, lebVec([]byte{0x00}))
	exportEntry := append(lebName("dup"), 0x00, 0x00)
	exportSec := withSection(7, lebVec(exportEntry, exportEntry))
	body := []byte{0x00, 0x0B} // no locals, end
	codeEntry := append([]byte{byte(len(body))}, body...)
	codeSec := withSection(10, lebVec(codeEntry))
	return withMagic(typeSec, funcSec, exportSec, codeSec)
}

func TestParseScript(t *testing.T) {
	data := []byte(`{
		"source_filename": "add.wast",
		"commands": [
			{"type": "module", "line": 1, "filename": "add.0.wasm"},
			{"type": "assert_return", "line": 2, "action": {"type": "invoke", "field": "add", "args": [
				{"type": "i32", "value": "7"}, {"type": "i32", "value": "35"}
			]}, "expected": [{"type": "i32", "value": "42"}]}
		]
	}`)
	script, err := ParseScript(data)
	require.NoError(t, err)
	require.Equal(t, "add.wast", script.SourceFilename)
	require.Len(t, script.Commands, 2)
	require.Equal(t, "module", script.Commands[0].Type)
	require.Equal(t, "invoke", script.Commands[1].Action.Type)
}

func TestRunnerAssertReturn(t *testing.T) {
	rt := wasmlite.NewRuntime()
	modules := ModuleSet{"add.0.wasm": addModuleWasm()}
	runner := NewRunner(rt, modules, wasmlite.Imports{})

	script := &Script{Commands: []Command{
		{Type: "module", Filename: "add.0.wasm"},
		{Type: "assert_return", Line: 2, Action: &Action{
			Type: "invoke", Field: "add",
			Args: []Value{{Type: "i32", Value: "7"}, {Type: "i32", Value: "35"}},
		}, Expected: []Value{{Type: "i32", Value: "42"}}},
	}}

	results, err := runner.Run(script)
	require.NoError(t, err)
	require.Len(t, results, 2)
	require.Equal(t, []any{int32(42)}, results[1].Values)
}

func TestRunnerAssertReturnMismatchFails(t *testing.T) {
	rt := wasmlite.NewRuntime()
	modules := ModuleSet{"add.0.wasm": addModuleWasm()}
	runner := NewRunner(rt, modules, wasmlite.Imports{})

	script := &Script{Commands: []Command{
		{Type: "module", Filename: "add.0.wasm"},
		{Type: "assert_return", Line: 2, Action: &Action{
			Type: "invoke", Field: "add",
			Args: []Value{{Type: "i32", Value: "7"}, {Type: "i32", Value: "35"}},
		}, Expected: []Value{{Type: "i32", Value: "41"}}},
	}}

	_, err := runner.Run(script)
	require.Error(t, err)
}

func TestRunnerAssertTrap(t *testing.T) {
	rt := wasmlite.NewRuntime()
	modules := ModuleSet{"boom.0.wasm": unreachableModuleWasm()}
	runner := NewRunner(rt, modules, wasmlite.Imports{})

	script := &Script{Commands: []Command{
		{Type: "module", Filename: "boom.0.wasm"},
		{Type: "assert_trap", Line: 2, Action: &Action{Type: "invoke", Field: "boom"}},
	}}

	results, err := runner.Run(script)
	require.NoError(t, err)
	_, ok := wasmlite.AsTrap(results[1].Err)
	require.True(t, ok)
}

func TestRunnerAssertMalformed(t *testing.T) {
	rt := wasmlite.NewRuntime()
	bad := append([]byte{0xDE, 0xAD, 0xBE, 0xEF}, addModuleWasm()[4:]...)
	modules := ModuleSet{"bad.0.wasm": bad}
	runner := NewRunner(rt, modules, wasmlite.Imports{})

	script := &Script{Commands: []Command{
		{Type: "assert_malformed", Line: 1, Filename: "bad.0.wasm"},
	}}

	results, err := runner.Run(script)
	require.NoError(t, err)
	var de *wasmlite.DecodeError
	require.ErrorAs(t, results[0].Err, &de)
}

// TestRunnerAssertInvalid checks that a module which decodes cleanly but
// violates a whole-module validation rule (here, two exports sharing a
// name) is reported as assert_invalid rather than assert_malformed.
func TestRunnerAssertInvalid(t *testing.T) {
	rt := wasmlite.NewRuntime()
	modules := ModuleSet{"dup.0.wasm": duplicateExportModuleWasm()}
	runner := NewRunner(rt, modules, wasmlite.Imports{})

	script := &Script{Commands: []Command{
		{Type: "assert_invalid", Line: 1, Filename: "dup.0.wasm"},
	}}

	results, err := runner.Run(script)
	require.NoError(t, err)
	var ve *wasmlite.ValidationError
	require.ErrorAs(t, results[0].Err, &ve)
}

func TestRunnerAssertUnlinkable(t *testing.T) {
	rt := wasmlite.NewRuntime()
	modules := ModuleSet{"apply.0.wasm": unlinkableModuleWasm()}
	runner := NewRunner(rt, modules, wasmlite.Imports{})

	script := &Script{Commands: []Command{
		{Type: "assert_unlinkable", Line: 1, Filename: "apply.0.wasm"},
	}}

	results, err := runner.Run(script)
	require.NoError(t, err)
	var le *wasmlite.LinkError
	require.ErrorAs(t, results[0].Err, &le)
}

// TestRunnerRegisterCommand checks that a named module can be re-registered
// under an "as" alias without the runner rejecting the command.
func TestRunnerRegisterCommand(t *testing.T) {
	rt := wasmlite.NewRuntime()
	modules := ModuleSet{
		"add.0.wasm": addModuleWasm(),
	}
	runner := NewRunner(rt, modules, wasmlite.Imports{})

	script := &Script{Commands: []Command{
		{Type: "module", Filename: "add.0.wasm", Name: "adder"},
		{Type: "register", Name: "adder", As: "adder"},
	}}

	_, err := runner.Run(script)
	require.NoError(t, err)
}
