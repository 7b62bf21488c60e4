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
)

// buildInstance validates and instantiates m with no imports, failing the
// test immediately on either error.
func buildInstance(t *testing.T, m *Module) *ModuleInstance {
	t.Helper()
	require.NoError(t, Validate(m))
	mi, err := Instantiate(NewStore(), m, Imports{})
	require.NoError(t, err)
	return mi
}

func i32t() []ValueType { return []ValueType{I32} }

func TestVMTrivialAdd(t *testing.T) {
	m := &Module{
		Types: []FunctionType{{Params: []ValueType{I32, I32}, Results: []ValueType{I32}}},
		Funcs: []Function{{TypeIndex: 0, Body: []Instruction{
			{Op: OpLocalGet, LocalIndex: 0},
			{Op: OpLocalGet, LocalIndex: 1},
			{Op: OpI32Add},
		}}},
		Exports: []Export{{Name: "add", Kind: ExportFunc, Index: 0}},
	}
	mi := buildInstance(t, m)

	got, err := mi.Invoke("add", int32(7), int32(35))
	require.NoError(t, err)
	require.Equal(t, []any{int32(42)}, got)

	got, err = mi.Invoke("add", int32(-1), int32(1))
	require.NoError(t, err)
	require.Equal(t, []any{int32(0)}, got)
}

// TestVMLoopThunk drives a counted loop that calls a no-op function n
// times, exercising br_if as the loop-exit test and br as the
// continuation edge.
func TestVMLoopThunk(t *testing.T) {
	m := &Module{
		Types: []FunctionType{
			{Params: nil, Results: nil},              // thunk
			{Params: i32t(), Results: nil},            // call_thunk
		},
		Funcs: []Function{
			{TypeIndex: 0, Body: []Instruction{}}, // thunk: no-op
			{TypeIndex: 1, Body: []Instruction{
				{Op: OpBlock, BlockType: BlockType{}, Then: []Instruction{
					{Op: OpLoop, BlockType: BlockType{}, Then: []Instruction{
						{Op: OpLocalGet, LocalIndex: 0},
						{Op: OpI32Eqz},
						{Op: OpBrIf, LabelIndex: 1},
						{Op: OpCall, FuncIndex: 0},
						{Op: OpLocalGet, LocalIndex: 0},
						{Op: OpI32Const, ConstI32: 1},
						{Op: OpI32Sub},
						{Op: OpLocalSet, LocalIndex: 0},
						{Op: OpBr, LabelIndex: 0},
					}},
				}},
			}},
		},
		Exports: []Export{{Name: "call_thunk", Kind: ExportFunc, Index: 1}},
	}
	mi := buildInstance(t, m)

	_, err := mi.Invoke("call_thunk", int32(1000))
	require.NoError(t, err)

	_, err = mi.Invoke("call_thunk", int32(0))
	require.NoError(t, err)
}

// TestVMReturnFromNestedBlock exercises an early return from inside a
// block nested inside an if, which must unwind through both enclosing
// scopes back to the caller rather than escaping the function.
func TestVMReturnFromNestedBlock(t *testing.T) {
	m := &Module{
		Types: []FunctionType{{Params: i32t(), Results: i32t()}},
		Funcs: []Function{{TypeIndex: 0, Body: []Instruction{
			{Op: OpLocalGet, LocalIndex: 0},
			{Op: OpIf, BlockType: BlockType{}, Then: []Instruction{
				{Op: OpBlock, BlockType: BlockType{}, Then: []Instruction{
					{Op: OpI32Const, ConstI32: 99},
					{Op: OpReturn},
				}},
			}},
			{Op: OpI32Const, ConstI32: 1},
		}}},
		Exports: []Export{{Name: "early_return", Kind: ExportFunc, Index: 0}},
	}
	mi := buildInstance(t, m)

	got, err := mi.Invoke("early_return", int32(1))
	require.NoError(t, err)
	require.Equal(t, []any{int32(99)}, got)

	got, err = mi.Invoke("early_return", int32(0))
	require.NoError(t, err)
	require.Equal(t, []any{int32(1)}, got)
}

func TestVMUnreachableTraps(t *testing.T) {
	m := &Module{
		Types: []FunctionType{{}},
		Funcs: []Function{{TypeIndex: 0, Body: []Instruction{{Op: OpUnreachable}}}},
		Exports: []Export{{Name: "boom", Kind: ExportFunc, Index: 0}},
	}
	mi := buildInstance(t, m)

	_, err := mi.Invoke("boom")
	tr, ok := AsTrap(err)
	require.True(t, ok)
	require.Equal(t, TrapUnreachable, tr.Kind)
}

func TestVMDivisionTraps(t *testing.T) {
	m := &Module{
		Types: []FunctionType{{Params: []ValueType{I32, I32}, Results: []ValueType{I32}}},
		Funcs: []Function{{TypeIndex: 0, Body: []Instruction{
			{Op: OpLocalGet, LocalIndex: 0},
			{Op: OpLocalGet, LocalIndex: 1},
			{Op: OpI32DivS},
		}}},
		Exports: []Export{{Name: "div_s", Kind: ExportFunc, Index: 0}},
	}
	mi := buildInstance(t, m)

	_, err := mi.Invoke("div_s", int32(-2147483648), int32(-1))
	tr, ok := AsTrap(err)
	require.True(t, ok)
	require.Equal(t, TrapIntegerOverflow, tr.Kind)

	_, err = mi.Invoke("div_s", int32(10), int32(0))
	tr, ok = AsTrap(err)
	require.True(t, ok)
	require.Equal(t, TrapIntegerDivideByZero, tr.Kind)
}

// TestVMMemoryGrowth exercises memory.grow, memory.size, and a boundary
// store that succeeds one byte inside the grown region and traps one byte
// past it.
func TestVMMemoryGrowth(t *testing.T) {
	m := &Module{
		Types: []FunctionType{
			{Params: i32t(), Results: i32t()},         // grow
			{Params: nil, Results: i32t()},             // size
			{Params: []ValueType{I32, I32}, Results: nil}, // store32(addr, val)
		},
		Memories: []MemoryType{{Limits: Limits{Min: 1}}},
		Funcs: []Function{
			{TypeIndex: 0, Body: []Instruction{
				{Op: OpLocalGet, LocalIndex: 0},
				{Op: OpMemoryGrow},
			}},
			{TypeIndex: 1, Body: []Instruction{
				{Op: OpMemorySize},
			}},
			{TypeIndex: 2, Body: []Instruction{
				{Op: OpLocalGet, LocalIndex: 0},
				{Op: OpLocalGet, LocalIndex: 1},
				{Op: OpI32Store, Align: 2, Offset: 0},
			}},
		},
		Exports: []Export{
			{Name: "grow", Kind: ExportFunc, Index: 0},
			{Name: "size", Kind: ExportFunc, Index: 1},
			{Name: "store32", Kind: ExportFunc, Index: 2},
		},
	}
	mi := buildInstance(t, m)

	got, err := mi.Invoke("grow", int32(2))
	require.NoError(t, err)
	require.Equal(t, []any{int32(1)}, got)

	got, err = mi.Invoke("size")
	require.NoError(t, err)
	require.Equal(t, []any{int32(3)}, got)

	// Memory is now 3 pages = 196608 bytes. A 4-byte store starting at
	// 196608-4 fits exactly; starting at 196608-3 overruns by one byte.
	_, err = mi.Invoke("store32", int32(196608-4), int32(0xAB))
	require.NoError(t, err)

	_, err = mi.Invoke("store32", int32(196608-3), int32(0xAB))
	tr, ok := AsTrap(err)
	require.True(t, ok)
	require.Equal(t, TrapMemoryOutOfBounds, tr.Kind)
}

// TestVMIndirectCall builds a two-entry table of like-typed functions and
// drives call_indirect through a successful dispatch and an out-of-bounds
// index. A differently typed slot is covered by
// TestVMIndirectCallTypeMismatch.
func TestVMIndirectCall(t *testing.T) {
	calleeType := FunctionType{Results: i32t()}
	mismatchType := FunctionType{Params: i32t(), Results: i32t()}
	m := &Module{
		Types: []FunctionType{
			calleeType,                                // type 0: ()->i32, used by call_indirect
			mismatchType,                               // type 1: (i32)->i32, mismatched callee
			{Params: i32t(), Results: i32t()},          // type 2: call_by_idx's own type
		},
		Tables: []TableType{{Limits: Limits{Min: 2}}},
		Funcs: []Function{
			{TypeIndex: 0, Body: []Instruction{{Op: OpI32Const, ConstI32: 10}}}, // func 0: returns 10
			{TypeIndex: 0, Body: []Instruction{{Op: OpI32Const, ConstI32: 20}}}, // func 1: returns 20
			{TypeIndex: 1, Body: []Instruction{{Op: OpLocalGet, LocalIndex: 0}}}, // func 2: (i32)->i32, mismatched
			{TypeIndex: 2, Body: []Instruction{ // func 3: call_by_idx
				{Op: OpLocalGet, LocalIndex: 0},
				{Op: OpCallIndirect, TypeIndex: 0},
			}},
		},
		Elements: []ElementSegment{{
			TableIndex:  0,
			Offset:      []Instruction{{Op: OpI32Const, ConstI32: 0}},
			FuncIndexes: []uint32{0, 1},
		}},
		Exports: []Export{{Name: "call_by_idx", Kind: ExportFunc, Index: 3}},
	}
	mi := buildInstance(t, m)

	got, err := mi.Invoke("call_by_idx", int32(1))
	require.NoError(t, err)
	require.Equal(t, []any{int32(20)}, got)

	_, err = mi.Invoke("call_by_idx", int32(2))
	tr, ok := AsTrap(err)
	require.True(t, ok)
	require.Equal(t, TrapTableOutOfBounds, tr.Kind)
}

// TestVMIndirectCallTypeMismatch puts a differently typed function into
// the slot call_indirect dispatches to and expects a type-mismatch trap
// rather than a successful (and unsound) call.
func TestVMIndirectCallTypeMismatch(t *testing.T) {
	calleeType := FunctionType{Results: i32t()}
	mismatchType := FunctionType{Params: i32t(), Results: i32t()}
	m := &Module{
		Types: []FunctionType{calleeType, mismatchType, {Params: i32t(), Results: i32t()}},
		Tables: []TableType{{Limits: Limits{Min: 1}}},
		Funcs: []Function{
			{TypeIndex: 1, Body: []Instruction{{Op: OpLocalGet, LocalIndex: 0}}}, // func 0: (i32)->i32
			{TypeIndex: 2, Body: []Instruction{ // func 1: call_by_idx
				{Op: OpLocalGet, LocalIndex: 0},
				{Op: OpCallIndirect, TypeIndex: 0},
			}},
		},
		Elements: []ElementSegment{{
			TableIndex:  0,
			Offset:      []Instruction{{Op: OpI32Const, ConstI32: 0}},
			FuncIndexes: []uint32{0},
		}},
		Exports: []Export{{Name: "call_by_idx", Kind: ExportFunc, Index: 1}},
	}
	mi := buildInstance(t, m)

	_, err := mi.Invoke("call_by_idx", int32(0))
	tr, ok := AsTrap(err)
	require.True(t, ok)
	require.Equal(t, TrapIndirectCallTypeMismatch, tr.Kind)
}
