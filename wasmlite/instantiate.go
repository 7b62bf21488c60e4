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

import "fmt"

// Imports is the host-supplied import object: module name -> member name ->
// a *HostFunction/FunctionInstance, *Memory, *Table, or *Global.
type Imports map[string]map[string]any

// Instantiate performs the seven-step instantiation algorithm: resolve
// imports, allocate store entries (imports first, then the module's own
// definitions), evaluate global initializers, initialize active element
// and data segments, then run the start function.
func Instantiate(store *Store, module *Module, imports Imports) (*ModuleInstance, error) {
	mi := &ModuleInstance{store: store, Types: module.Types, Exports: map[string]ExportValue{}}

	if err := resolveAndAllocateImports(store, module, imports, mi); err != nil {
		return nil, err
	}
	allocateOwnDefinitions(store, module, mi)

	if err := evaluateGlobals(store, module, mi); err != nil {
		return nil, err
	}

	for i := range module.Funcs {
		addr := mi.FuncAddrs[module.NumFuncImports()+i]
		wf := store.Funcs[addr].(*WasmFunction)
		wf.Module = mi
	}

	if err := buildExports(module, mi); err != nil {
		return nil, err
	}

	if err := initElements(store, module, mi); err != nil {
		return nil, err
	}
	if err := initDatas(store, module, mi); err != nil {
		return nil, err
	}

	if module.StartFunc != nil {
		addr := mi.FuncAddrs[*module.StartFunc]
		if _, err := invoke(store, addr, nil); err != nil {
			return nil, err
		}
	}

	return mi, nil
}

func resolveAndAllocateImports(store *Store, module *Module, imports Imports, mi *ModuleInstance) error {
	for _, imp := range module.Imports {
		member, ok := imports[imp.ModuleName][imp.Name]
		if !ok {
			return &LinkError{Detail: fmt.Sprintf("unresolved import %s.%s", imp.ModuleName, imp.Name)}
		}
		switch imp.Kind {
		case ImportFunc:
			fn, ok := member.(FunctionInstance)
			if !ok {
				return &LinkError{Detail: fmt.Sprintf("import %s.%s is not a function", imp.ModuleName, imp.Name)}
			}
			expected := module.Types[imp.FuncTypeIndex]
			if !fn.Type().Equal(expected) {
				return &LinkError{Detail: fmt.Sprintf("import %s.%s: function type mismatch", imp.ModuleName, imp.Name)}
			}
			mi.FuncAddrs = append(mi.FuncAddrs, store.addFunc(fn))

		case ImportTable:
			t, ok := member.(*Table)
			if !ok {
				return &LinkError{Detail: fmt.Sprintf("import %s.%s is not a table", imp.ModuleName, imp.Name)}
			}
			if !imp.TableType.Limits.subsumes(t.limits) {
				return &LinkError{Detail: fmt.Sprintf("import %s.%s: table limits mismatch", imp.ModuleName, imp.Name)}
			}
			mi.TableAddrs = append(mi.TableAddrs, store.addTable(t))

		case ImportMemory:
			m, ok := member.(*Memory)
			if !ok {
				return &LinkError{Detail: fmt.Sprintf("import %s.%s is not a memory", imp.ModuleName, imp.Name)}
			}
			if !imp.MemoryType.Limits.subsumes(m.limits) {
				return &LinkError{Detail: fmt.Sprintf("import %s.%s: memory limits mismatch", imp.ModuleName, imp.Name)}
			}
			mi.MemAddrs = append(mi.MemAddrs, store.addMemory(m))

		case ImportGlobal:
			g, ok := member.(*Global)
			if !ok {
				return &LinkError{Detail: fmt.Sprintf("import %s.%s is not a global", imp.ModuleName, imp.Name)}
			}
			if g.Type.ValueType != imp.GlobalType.ValueType || g.Type.Mutable != imp.GlobalType.Mutable {
				return &LinkError{Detail: fmt.Sprintf("import %s.%s: global type mismatch", imp.ModuleName, imp.Name)}
			}
			mi.GlobalAddrs = append(mi.GlobalAddrs, store.addGlobal(g))
		}
	}
	return nil
}

func allocateOwnDefinitions(store *Store, module *Module, mi *ModuleInstance) {
	for i := range module.Funcs {
		wf := &WasmFunction{
			FuncType: module.Types[module.Funcs[i].TypeIndex],
			Code:     &module.Funcs[i],
		}
		mi.FuncAddrs = append(mi.FuncAddrs, store.addFunc(wf))
	}
	for _, tt := range module.Tables {
		mi.TableAddrs = append(mi.TableAddrs, store.addTable(newTable(tt)))
	}
	for _, mt := range module.Memories {
		mi.MemAddrs = append(mi.MemAddrs, store.addMemory(newMemory(mt)))
	}
	for _, gd := range module.Globals {
		mi.GlobalAddrs = append(mi.GlobalAddrs, store.addGlobal(&Global{Type: gd.Type}))
	}
}

// evalConstExpr evaluates a validated constant expression: a single const
// instruction, or a global.get referencing an already-resolved imported
// global.
func evalConstExpr(store *Store, mi *ModuleInstance, expr []Instruction) value {
	instr := expr[0]
	switch instr.Op {
	case OpI32Const:
		return i32Value(instr.ConstI32)
	case OpI64Const:
		return i64Value(instr.ConstI64)
	case OpF32Const:
		return f32Value(instr.ConstF32)
	case OpF64Const:
		return f64Value(instr.ConstF64)
	case OpGlobalGet:
		addr := mi.GlobalAddrs[instr.GlobalIndex]
		return store.Globals[addr].Value
	default:
		panic("invalid constant expression")
	}
}

func evaluateGlobals(store *Store, module *Module, mi *ModuleInstance) error {
	numImports := 0
	for _, imp := range module.Imports {
		if imp.Kind == ImportGlobal {
			numImports++
		}
	}
	for i, gd := range module.Globals {
		addr := mi.GlobalAddrs[numImports+i]
		store.Globals[addr].Value = evalConstExpr(store, mi, gd.Init)
	}
	return nil
}

func buildExports(module *Module, mi *ModuleInstance) error {
	for _, exp := range module.Exports {
		ev := ExportValue{Kind: exp.Kind}
		switch exp.Kind {
		case ExportFunc:
			ev.FuncAddr = mi.FuncAddrs[exp.Index]
		case ExportTable:
			ev.TableAddr = mi.TableAddrs[exp.Index]
		case ExportMemory:
			ev.MemAddr = mi.MemAddrs[exp.Index]
		case ExportGlobal:
			ev.GlobalAddr = mi.GlobalAddrs[exp.Index]
		}
		mi.Exports[exp.Name] = ev
	}
	return nil
}

// elementWrite is one element segment's already-evaluated destination and
// payload, computed ahead of any copying so every segment can be
// bounds-checked before the first one is written.
type elementWrite struct {
	table     *Table
	offset    uint32
	funcAddrs []int32
}

// initElements bounds-checks every active element segment against its
// destination table before writing any of them, so a later segment's
// out-of-bounds trap can never leave an earlier segment's write in place.
func initElements(store *Store, module *Module, mi *ModuleInstance) error {
	writes := make([]elementWrite, len(module.Elements))
	for i, el := range module.Elements {
		offsetVal := evalConstExpr(store, mi, el.Offset)
		offset := uint32(offsetVal.i32())
		table := store.Tables[mi.TableAddrs[el.TableIndex]]
		funcAddrs := make([]int32, len(el.FuncIndexes))
		for j, fi := range el.FuncIndexes {
			funcAddrs[j] = int32(mi.FuncAddrs[fi])
		}
		if !table.fits(offset, len(funcAddrs)) {
			return trap(TrapElementSegmentOutOfBounds)
		}
		writes[i] = elementWrite{table: table, offset: offset, funcAddrs: funcAddrs}
	}
	for _, w := range writes {
		if err := w.table.Init(w.offset, w.funcAddrs); err != nil {
			return err
		}
	}
	return nil
}

// dataWrite is one data segment's already-evaluated destination and
// payload, computed ahead of any copying so every segment can be
// bounds-checked before the first one is written.
type dataWrite struct {
	mem    *Memory
	offset uint64
	bytes  []byte
}

// initDatas bounds-checks every active data segment against its
// destination memory before writing any of them, so a later segment's
// out-of-bounds trap can never leave an earlier segment's write in place.
func initDatas(store *Store, module *Module, mi *ModuleInstance) error {
	writes := make([]dataWrite, len(module.Datas))
	for i, d := range module.Datas {
		offsetVal := evalConstExpr(store, mi, d.Offset)
		offset := uint64(uint32(offsetVal.i32()))
		mem := store.Memories[mi.MemAddrs[d.MemoryIndex]]
		if !mem.fits(offset, len(d.Bytes)) {
			return trap(TrapDataSegmentOutOfBounds)
		}
		writes[i] = dataWrite{mem: mem, offset: offset, bytes: d.Bytes}
	}
	for _, w := range writes {
		if err := w.mem.Init(w.offset, w.bytes, 0, uint64(len(w.bytes))); err != nil {
			return err
		}
	}
	return nil
}
