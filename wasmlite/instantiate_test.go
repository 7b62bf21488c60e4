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

// TestInitElementsRejectsPartialWrite builds a module with two element
// segments against a table of size 2: the first segment's write is fully
// in bounds, the second's is not. Instantiation must trap without leaving
// the first segment's write in place.
func TestInitElementsRejectsPartialWrite(t *testing.T) {
	ft := FunctionType{Results: i32t()}
	m := &Module{
		Types:  []FunctionType{ft},
		Tables: []TableType{{Limits: Limits{Min: 2}}},
		Funcs: []Function{
			{TypeIndex: 0, Body: []Instruction{{Op: OpI32Const, ConstI32: 42}}},
		},
		Elements: []ElementSegment{
			{
				TableIndex:  0,
				Offset:      []Instruction{{Op: OpI32Const, ConstI32: 0}},
				FuncIndexes: []uint32{0}, // in bounds: writes table[0]
			},
			{
				TableIndex:  0,
				Offset:      []Instruction{{Op: OpI32Const, ConstI32: 5}},
				FuncIndexes: []uint32{0}, // out of bounds: table has only 2 slots
			},
		},
	}
	require.NoError(t, Validate(m))

	store := NewStore()
	_, err := Instantiate(store, m, Imports{})
	tr, ok := AsTrap(err)
	require.True(t, ok)
	require.Equal(t, TrapElementSegmentOutOfBounds, tr.Kind)

	table := store.Tables[0]
	got, err := table.Get(0)
	require.NoError(t, err)
	require.Equal(t, NullReference, got, "first segment must not have been written once a later segment fails its bounds check")
}

// TestInitDatasRejectsPartialWrite mirrors TestInitElementsRejectsPartialWrite
// for active data segments against a memory.
func TestInitDatasRejectsPartialWrite(t *testing.T) {
	m := &Module{
		Memories: []MemoryType{{Limits: Limits{Min: 1}}},
		Datas: []DataSegment{
			{
				MemoryIndex: 0,
				Offset:      []Instruction{{Op: OpI32Const, ConstI32: 0}},
				Bytes:       []byte{0xAA, 0xBB},
			},
			{
				MemoryIndex: 0,
				Offset:      []Instruction{{Op: OpI32Const, ConstI32: memPageSize - 1}},
				Bytes:       []byte{0xCC, 0xDD}, // overruns the single page by one byte
			},
		},
	}
	require.NoError(t, Validate(m))

	store := NewStore()
	_, err := Instantiate(store, m, Imports{})
	tr, ok := AsTrap(err)
	require.True(t, ok)
	require.Equal(t, TrapDataSegmentOutOfBounds, tr.Kind)

	mem := store.Memories[0]
	buf := make([]byte, 2)
	require.NoError(t, mem.Read(0, buf))
	require.Equal(t, []byte{0x00, 0x00}, buf, "first segment must not have been written once a later segment fails its bounds check")
}
