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

package wasmlite

import (
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

func TestRuntimeDecodeValidateInstantiateInvoke(t *testing.T) {
	rt := NewRuntime().WithLogger(zaptest.NewLogger(t))

	m, err := rt.DecodeModule(addModuleBytes())
	require.NoError(t, err)
	require.NoError(t, rt.ValidateModule(m))

	mi, err := rt.Instantiate(rt.NewStore(), addModuleBytes(), Imports{})
	require.NoError(t, err)

	got, err := rt.InvokeExport(mi, "add", int32(19), int32(23))
	require.NoError(t, err)
	require.Equal(t, []any{int32(42)}, got)
}

func TestRuntimeInvokeExportLogsTrap(t *testing.T) {
	rt := NewRuntime().WithLogger(zaptest.NewLogger(t))
	m := &Module{
		Types:   []FunctionType{{}},
		Funcs:   []Function{{TypeIndex: 0, Body: []Instruction{{Op: OpUnreachable}}}},
		Exports: []Export{{Name: "boom", Kind: ExportFunc, Index: 0}},
	}
	require.NoError(t, Validate(m))
	mi, err := Instantiate(rt.NewStore(), m, Imports{})
	require.NoError(t, err)

	_, err = rt.InvokeExport(mi, "boom")
	tr, ok := AsTrap(err)
	require.True(t, ok)
	require.Equal(t, TrapUnreachable, tr.Kind)
}

// importModuleBytes builds a module importing a single host function
// env.double : (i32) -> i32, and exporting a wrapper "apply" that calls it.
func importModuleBytes() []byte {
	b := newModuleBuilder()
	b.section(secType, vec(1, funcType([]byte{0x7F}, []byte{0x7F})))

	importEntry := append(name("env"), name("double")...)
	importEntry = append(importEntry, 0x00, 0x00) // kind func, type index 0
	b.section(secImport, vec(1, importEntry))

	b.section(secFunction, vec(1, uleb(0)))
	exportEntry := append(name("apply"), 0x00, 0x01) // func index 1 (import occupies 0)
	b.section(secExport, vec(1, exportEntry))
	body := []byte{0x00, 0x20, 0x00, byte(OpCall), 0x00, byte(OpEnd)}
	codeEntry := append(uleb(uint64(len(body))), body...)
	b.section(secCode, vec(1, codeEntry))
	return b.bytes()
}

func TestRuntimeHostFunctionImport(t *testing.T) {
	rt := NewRuntime()
	imports := NewModuleImportBuilder("env").
		AddHostFunc("double", FunctionType{Params: i32t(), Results: i32t()}, func(args []any) ([]any, error) {
			return []any{args[0].(int32) * 2}, nil
		}).
		Build()

	mi, err := rt.Instantiate(rt.NewStore(), importModuleBytes(), imports)
	require.NoError(t, err)

	got, err := rt.InvokeExport(mi, "apply", int32(21))
	require.NoError(t, err)
	require.Equal(t, []any{int32(42)}, got)
}

func TestRuntimeMissingImportIsLinkError(t *testing.T) {
	rt := NewRuntime()
	_, err := rt.Instantiate(rt.NewStore(), importModuleBytes(), Imports{})
	var le *LinkError
	require.ErrorAs(t, err, &le)
}

// TestModuleImportBuilderLinksModules exercises AddModuleExports: one
// instantiated module's exports become another module's imports, without
// going through the host at all.
func TestModuleImportBuilderLinksModules(t *testing.T) {
	rt := NewRuntime()
	store := rt.NewStore()

	// Named "double" to satisfy the env.double import importModuleBytes
	// declares, even though it actually adds one; only the wiring matters here.
	provider := &Module{
		Types:   []FunctionType{{Params: i32t(), Results: i32t()}},
		Funcs:   []Function{{TypeIndex: 0, Body: []Instruction{{Op: OpLocalGet, LocalIndex: 0}, {Op: OpI32Const, ConstI32: 1}, {Op: OpI32Add}}}},
		Exports: []Export{{Name: "double", Kind: ExportFunc, Index: 0}},
	}
	require.NoError(t, Validate(provider))
	providerMi, err := Instantiate(store, provider, Imports{})
	require.NoError(t, err)

	imports := NewModuleImportBuilder("env").AddModuleExports(providerMi).Build()
	mi, err := rt.Instantiate(store, importModuleBytes(), imports)
	require.NoError(t, err)

	got, err := mi.Invoke("apply", int32(9))
	require.NoError(t, err)
	require.Equal(t, []any{int32(10)}, got)
}

func TestMergeImportsCombinesNamespaces(t *testing.T) {
	a := NewModuleImportBuilder("env").AddHostFunc("f", FunctionType{}, func(args []any) ([]any, error) { return nil, nil }).Build()
	b := NewModuleImportBuilder("env").AddMemory("mem", newMemory(MemoryType{Limits: Limits{Min: 1}})).Build()

	merged := MergeImports(a, b)
	require.Contains(t, merged["env"], "f")
	require.Contains(t, merged["env"], "mem")
}
