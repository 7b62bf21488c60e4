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

// Instruction is a single decoded Wasm instruction. It is a tagged sum
// keyed by Op: only the fields relevant to that opcode are populated.
// Structured control instructions carry their nested body directly as a
// tree rather than as a flat opcode stream with jump offsets.
type Instruction struct {
	Op Opcode

	// block / loop / if
	BlockType BlockType
	Then      []Instruction // block/loop body, or the if's then-branch
	Else      []Instruction // if's else-branch; nil when absent

	// br / br_if
	LabelIndex uint32

	// br_table
	LabelIndexes []uint32
	DefaultLabel uint32

	// call
	FuncIndex uint32

	// call_indirect
	TypeIndex uint32

	// local.get / local.set / local.tee
	LocalIndex uint32

	// global.get / global.set
	GlobalIndex uint32

	// memory instructions
	Align  uint32
	Offset uint32

	// const instructions
	ConstI32 int32
	ConstI64 int64
	ConstF32 float32
	ConstF64 float64
}

// Function is a decoded function: its declared locals (beyond parameters)
// and its instruction sequence.
type Function struct {
	TypeIndex uint32
	Locals    []ValueType
	Body      []Instruction
}

// ImportKind tags what kind of definition an Import resolves to.
type ImportKind int

const (
	ImportFunc ImportKind = iota
	ImportTable
	ImportMemory
	ImportGlobal
)

// Import represents one entry in the module's import section.
// See https://webassembly.github.io/spec/core/syntax/modules.html#imports.
type Import struct {
	ModuleName string
	Name       string
	Kind       ImportKind

	// Populated according to Kind.
	FuncTypeIndex uint32
	TableType     TableType
	MemoryType    MemoryType
	GlobalType    GlobalType
}

// ExportKind tags what kind of definition an Export resolves to.
type ExportKind int

const (
	ExportFunc ExportKind = iota
	ExportTable
	ExportMemory
	ExportGlobal
)

// Export represents one entry in the module's export section.
// See https://webassembly.github.io/spec/core/syntax/modules.html#exports.
type Export struct {
	Name  string
	Kind  ExportKind
	Index uint32
}

// GlobalDef is a module-defined global: its type and constant initializer
// expression.
type GlobalDef struct {
	Type GlobalType
	Init []Instruction
}

// ElementSegment initializes a range of a table with function indices.
// Only active segments are supported; passive and declarative modes
// belong to the bulk-memory proposal.
type ElementSegment struct {
	TableIndex uint32
	Offset     []Instruction
	FuncIndexes []uint32
}

// DataSegment initializes a range of a memory with a byte string. Only
// active segments are supported.
type DataSegment struct {
	MemoryIndex uint32
	Offset      []Instruction
	Bytes       []byte
}

// CustomSection is an opaque named payload from a custom (id 0) section.
type CustomSection struct {
	Name    string
	Payload []byte
}

// Module is the decoded abstract syntax tree of a Wasm binary module.
// See https://webassembly.github.io/spec/core/syntax/modules.html#modules.
type Module struct {
	Types           []FunctionType
	Imports         []Import
	Funcs           []Function
	Tables          []TableType
	Memories        []MemoryType
	Globals         []GlobalDef
	Exports         []Export
	StartFunc       *uint32
	Elements        []ElementSegment
	Datas           []DataSegment
	CustomSections  []CustomSection
}

// NumFuncImports returns how many of the module's imports are functions;
// used to translate a module-relative function index into the module
// instance's FuncAddrs slice (imports come first).
func (m *Module) NumFuncImports() int {
	n := 0
	for _, imp := range m.Imports {
		if imp.Kind == ImportFunc {
			n++
		}
	}
	return n
}

// FuncType returns the function type of the func-index'th function in the
// module, counting imported functions first, as declared indices do.
func (m *Module) FuncType(funcIndex uint32) FunctionType {
	numImports := uint32(m.NumFuncImports())
	if funcIndex < numImports {
		i := uint32(0)
		for _, imp := range m.Imports {
			if imp.Kind != ImportFunc {
				continue
			}
			if i == funcIndex {
				return m.Types[imp.FuncTypeIndex]
			}
			i++
		}
		panic("unreachable")
	}
	return m.Types[m.Funcs[funcIndex-numImports].TypeIndex]
}
