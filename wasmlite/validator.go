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

// The validator implements the standard Wasm algorithmic type-checking
// scheme: an abstract operand-type stack plus a stack of control frames,
// where code that follows an unconditional branch is "unreachable" and its
// operand-stack requirements become polymorphic (bottomType unifies with
// any type).
//
// Unlike the byte-stream walk this scheme is usually described against,
// this validator recurses directly over the decoded instruction tree:
// a block/loop/if's body is validated as a nested operand/control stack
// scope rather than by locating a matching `end` in a flat opcode stream.

type ctrlFrame struct {
	opcode     Opcode
	startTypes []ValueType // the frame's parameter types
	endTypes   []ValueType // the frame's result types
	height     int         // operand stack height when the frame was pushed
	unreachable bool
	elseSeen   bool
}

// labelTypes returns the types a branch to this frame must supply: a loop's
// label targets its start (the top of the loop body), every other frame's
// label targets its end.
func (f *ctrlFrame) labelTypes() []ValueType {
	if f.opcode == OpLoop {
		return f.startTypes
	}
	return f.endTypes
}

type validator struct {
	module   *Module
	funcIdx  int
	locals   []ValueType
	opds     []ValueType
	ctrls    []ctrlFrame
}

func (v *validator) fail(format string, args ...any) error {
	return &ValidationError{FuncIndex: v.funcIdx, Detail: fmt.Sprintf(format, args...)}
}

func (v *validator) pushOpd(t ValueType) {
	v.opds = append(v.opds, t)
}

func (v *validator) pushOpds(ts []ValueType) {
	for _, t := range ts {
		v.pushOpd(t)
	}
}

func (v *validator) popOpd() (ValueType, error) {
	top := &v.ctrls[len(v.ctrls)-1]
	if len(v.opds) == top.height {
		if top.unreachable {
			return bottomType{}, nil
		}
		return nil, v.fail("type mismatch: operand stack underflow")
	}
	t := v.opds[len(v.opds)-1]
	v.opds = v.opds[:len(v.opds)-1]
	return t, nil
}

func (v *validator) popOpdExpect(expect ValueType) (ValueType, error) {
	got, err := v.popOpd()
	if err != nil {
		return nil, err
	}
	if !typesCompatible(got, expect) {
		return nil, v.fail("type mismatch: expected %s, got %s", typeName(expect), typeName(got))
	}
	return got, nil
}

func typesCompatible(a, b ValueType) bool {
	if _, ok := a.(bottomType); ok {
		return true
	}
	if _, ok := b.(bottomType); ok {
		return true
	}
	return a == b
}

func typeName(t ValueType) string {
	if _, ok := t.(bottomType); ok {
		return "unknown"
	}
	return t.(NumberType).String()
}

func (v *validator) popOpds(expect []ValueType) error {
	for i := len(expect) - 1; i >= 0; i-- {
		if _, err := v.popOpdExpect(expect[i]); err != nil {
			return err
		}
	}
	return nil
}

func (v *validator) pushCtrl(opcode Opcode, in, out []ValueType) {
	v.ctrls = append(v.ctrls, ctrlFrame{
		opcode:     opcode,
		startTypes: in,
		endTypes:   out,
		height:     len(v.opds),
	})
	v.pushOpds(in)
}

func (v *validator) popCtrl() (ctrlFrame, error) {
	frame := &v.ctrls[len(v.ctrls)-1]
	if err := v.popOpds(frame.endTypes); err != nil {
		return ctrlFrame{}, err
	}
	if len(v.opds) != frame.height {
		return ctrlFrame{}, v.fail("type mismatch: values remain on the stack at end of block")
	}
	f := *frame
	v.ctrls = v.ctrls[:len(v.ctrls)-1]
	return f, nil
}

func (v *validator) setUnreachable() {
	top := &v.ctrls[len(v.ctrls)-1]
	v.opds = v.opds[:top.height]
	top.unreachable = true
}

func (v *validator) labelAt(idx uint32) (*ctrlFrame, error) {
	if int(idx) >= len(v.ctrls) {
		return nil, v.fail("unknown label %d", idx)
	}
	return &v.ctrls[len(v.ctrls)-1-int(idx)], nil
}

// validateFunction type-checks one function body against its declared
// signature.
func validateFunction(module *Module, funcIndex int, ft FunctionType, fn *Function) error {
	locals := append(append([]ValueType{}, ft.Params...), fn.Locals...)
	v := &validator{module: module, funcIdx: funcIndex, locals: locals}
	v.pushCtrl(OpBlock, nil, ft.Results)
	if err := v.validateBody(fn.Body); err != nil {
		return err
	}
	if _, err := v.popCtrl(); err != nil {
		return err
	}
	return nil
}

func (v *validator) validateBody(instrs []Instruction) error {
	for _, instr := range instrs {
		if err := v.validateInstruction(instr); err != nil {
			return err
		}
	}
	return nil
}

func numT(t ValueType) NumberType { return t.(NumberType) }

func (v *validator) validateInstruction(instr Instruction) error {
	switch instr.Op {
	case OpUnreachable:
		v.setUnreachable()

	case OpNop:

	case OpBlock, OpLoop:
		bt := instr.BlockType
		in := []ValueType{}
		out := bt.Results()
		v.pushCtrl(instr.Op, in, out)
		if err := v.validateBody(instr.Then); err != nil {
			return err
		}
		if _, err := v.popCtrl(); err != nil {
			return err
		}
		v.pushOpds(out)

	case OpIf:
		if _, err := v.popOpdExpect(I32); err != nil {
			return err
		}
		bt := instr.BlockType
		out := bt.Results()
		v.pushCtrl(OpIf, nil, out)
		if err := v.validateBody(instr.Then); err != nil {
			return err
		}
		thenFrame, err := v.popCtrl()
		if err != nil {
			return err
		}
		if instr.Else != nil {
			v.pushCtrl(OpIf, thenFrame.startTypes, thenFrame.endTypes)
			if err := v.validateBody(instr.Else); err != nil {
				return err
			}
			if _, err := v.popCtrl(); err != nil {
				return err
			}
		} else if len(out) != 0 {
			return v.fail("if without else cannot produce a result")
		}
		v.pushOpds(out)

	case OpBr:
		frame, err := v.labelAt(instr.LabelIndex)
		if err != nil {
			return err
		}
		if err := v.popOpds(frame.labelTypes()); err != nil {
			return err
		}
		v.setUnreachable()

	case OpBrIf:
		if _, err := v.popOpdExpect(I32); err != nil {
			return err
		}
		frame, err := v.labelAt(instr.LabelIndex)
		if err != nil {
			return err
		}
		want := frame.labelTypes()
		if err := v.popOpds(want); err != nil {
			return err
		}
		v.pushOpds(want)

	case OpBrTable:
		if _, err := v.popOpdExpect(I32); err != nil {
			return err
		}
		def, err := v.labelAt(instr.DefaultLabel)
		if err != nil {
			return err
		}
		arity := len(def.labelTypes())
		for _, idx := range instr.LabelIndexes {
			f, err := v.labelAt(idx)
			if err != nil {
				return err
			}
			if len(f.labelTypes()) != arity {
				return v.fail("br_table target arities differ")
			}
		}
		if err := v.popOpds(def.labelTypes()); err != nil {
			return err
		}
		v.setUnreachable()

	case OpReturn:
		// Return targets the outermost frame, which always carries the
		// function's result types.
		outer := &v.ctrls[0]
		if err := v.popOpds(outer.endTypes); err != nil {
			return err
		}
		v.setUnreachable()

	case OpCall:
		if int(instr.FuncIndex) >= v.module.NumFuncImports()+len(v.module.Funcs) {
			return v.fail("unknown function %d", instr.FuncIndex)
		}
		ft := v.module.FuncType(instr.FuncIndex)
		if err := v.popOpds(ft.Params); err != nil {
			return err
		}
		v.pushOpds(ft.Results)

	case OpCallIndirect:
		if len(v.module.Tables) == 0 {
			return v.fail("call_indirect requires a table")
		}
		if int(instr.TypeIndex) >= len(v.module.Types) {
			return v.fail("unknown type %d", instr.TypeIndex)
		}
		ft := v.module.Types[instr.TypeIndex]
		if _, err := v.popOpdExpect(I32); err != nil {
			return err
		}
		if err := v.popOpds(ft.Params); err != nil {
			return err
		}
		v.pushOpds(ft.Results)

	case OpDrop:
		if _, err := v.popOpd(); err != nil {
			return err
		}

	case OpSelect:
		if _, err := v.popOpdExpect(I32); err != nil {
			return err
		}
		t2, err := v.popOpd()
		if err != nil {
			return err
		}
		t1, err := v.popOpdExpect(t2)
		if err != nil {
			return err
		}
		if _, ok := t1.(bottomType); ok {
			v.pushOpd(t2)
		} else {
			v.pushOpd(t1)
		}

	case OpLocalGet:
		t, err := v.localType(instr.LocalIndex)
		if err != nil {
			return err
		}
		v.pushOpd(t)

	case OpLocalSet:
		t, err := v.localType(instr.LocalIndex)
		if err != nil {
			return err
		}
		if _, err := v.popOpdExpect(t); err != nil {
			return err
		}

	case OpLocalTee:
		t, err := v.localType(instr.LocalIndex)
		if err != nil {
			return err
		}
		if _, err := v.popOpdExpect(t); err != nil {
			return err
		}
		v.pushOpd(t)

	case OpGlobalGet:
		gt, err := v.globalType(instr.GlobalIndex)
		if err != nil {
			return err
		}
		v.pushOpd(gt.ValueType)

	case OpGlobalSet:
		gt, err := v.globalType(instr.GlobalIndex)
		if err != nil {
			return err
		}
		if !gt.Mutable {
			return v.fail("global.set to immutable global %d", instr.GlobalIndex)
		}
		if _, err := v.popOpdExpect(gt.ValueType); err != nil {
			return err
		}

	case OpMemorySize:
		if err := v.requireMemory(); err != nil {
			return err
		}
		v.pushOpd(I32)

	case OpMemoryGrow:
		if err := v.requireMemory(); err != nil {
			return err
		}
		if _, err := v.popOpdExpect(I32); err != nil {
			return err
		}
		v.pushOpd(I32)

	case OpI32Const:
		v.pushOpd(I32)
	case OpI64Const:
		v.pushOpd(I64)
	case OpF32Const:
		v.pushOpd(F32)
	case OpF64Const:
		v.pushOpd(F64)

	default:
		return v.validateNumericOrMemInstr(instr)
	}
	return nil
}

func (v *validator) localType(idx uint32) (ValueType, error) {
	if int(idx) >= len(v.locals) {
		return nil, v.fail("unknown local %d", idx)
	}
	return v.locals[idx], nil
}

func (v *validator) globalType(idx uint32) (GlobalType, error) {
	numImports := 0
	for _, imp := range v.module.Imports {
		if imp.Kind == ImportGlobal {
			numImports++
		}
	}
	if int(idx) < numImports {
		i := 0
		for _, imp := range v.module.Imports {
			if imp.Kind != ImportGlobal {
				continue
			}
			if i == int(idx) {
				return imp.GlobalType, nil
			}
			i++
		}
	}
	local := int(idx) - numImports
	if local < 0 || local >= len(v.module.Globals) {
		return GlobalType{}, v.fail("unknown global %d", idx)
	}
	return v.module.Globals[local].Type, nil
}

func (v *validator) requireMemory() error {
	if len(v.module.Memories)+numMemoryImports(v.module) == 0 {
		return v.fail("memory instruction requires a memory")
	}
	return nil
}

func numMemoryImports(m *Module) int {
	n := 0
	for _, imp := range m.Imports {
		if imp.Kind == ImportMemory {
			n++
		}
	}
	return n
}

// naturalAlignment returns log2 of the largest alignment hint a memory
// access opcode may declare, matching its storage width.
func naturalAlignment(op Opcode) uint32 {
	switch op {
	case OpI32Load8S, OpI32Load8U, OpI64Load8S, OpI64Load8U, OpI32Store8, OpI64Store8:
		return 0
	case OpI32Load16S, OpI32Load16U, OpI64Load16S, OpI64Load16U, OpI32Store16, OpI64Store16:
		return 1
	case OpI32Load, OpF32Load, OpI64Load32S, OpI64Load32U, OpI32Store, OpF32Store, OpI64Store32:
		return 2
	case OpI64Load, OpF64Load, OpI64Store, OpF64Store:
		return 3
	default:
		return 0
	}
}

func (v *validator) validateMemAccess(instr Instruction, valType ValueType, isLoad bool) error {
	if err := v.requireMemory(); err != nil {
		return err
	}
	if instr.Align > naturalAlignment(instr.Op) {
		return v.fail("alignment must not be larger than natural alignment")
	}
	if isLoad {
		if _, err := v.popOpdExpect(I32); err != nil {
			return err
		}
		v.pushOpd(valType)
	} else {
		if _, err := v.popOpdExpect(valType); err != nil {
			return err
		}
		if _, err := v.popOpdExpect(I32); err != nil {
			return err
		}
	}
	return nil
}

// validateNumericOrMemInstr handles every remaining opcode: memory
// load/store, and the numeric operators, whose operand/result arities are
// fixed by their opcode alone.
func (v *validator) validateNumericOrMemInstr(instr Instruction) error {
	switch instr.Op {
	case OpI32Load, OpI32Load8S, OpI32Load8U, OpI32Load16S, OpI32Load16U:
		return v.validateMemAccess(instr, I32, true)
	case OpI64Load, OpI64Load8S, OpI64Load8U, OpI64Load16S, OpI64Load16U, OpI64Load32S, OpI64Load32U:
		return v.validateMemAccess(instr, I64, true)
	case OpF32Load:
		return v.validateMemAccess(instr, F32, true)
	case OpF64Load:
		return v.validateMemAccess(instr, F64, true)
	case OpI32Store, OpI32Store8, OpI32Store16:
		return v.validateMemAccess(instr, I32, false)
	case OpI64Store, OpI64Store8, OpI64Store16, OpI64Store32:
		return v.validateMemAccess(instr, I64, false)
	case OpF32Store:
		return v.validateMemAccess(instr, F32, false)
	case OpF64Store:
		return v.validateMemAccess(instr, F64, false)
	}

	unop := func(t ValueType) error {
		if _, err := v.popOpdExpect(t); err != nil {
			return err
		}
		v.pushOpd(t)
		return nil
	}
	binop := func(t ValueType) error {
		if _, err := v.popOpdExpect(t); err != nil {
			return err
		}
		if _, err := v.popOpdExpect(t); err != nil {
			return err
		}
		v.pushOpd(t)
		return nil
	}
	testop := func(t ValueType) error {
		if _, err := v.popOpdExpect(t); err != nil {
			return err
		}
		v.pushOpd(I32)
		return nil
	}
	relop := func(t ValueType) error {
		if _, err := v.popOpdExpect(t); err != nil {
			return err
		}
		if _, err := v.popOpdExpect(t); err != nil {
			return err
		}
		v.pushOpd(I32)
		return nil
	}
	convert := func(from, to ValueType) error {
		if _, err := v.popOpdExpect(from); err != nil {
			return err
		}
		v.pushOpd(to)
		return nil
	}

	switch instr.Op {
	case OpI32Eqz:
		return testop(I32)
	case OpI64Eqz:
		return testop(I64)
	case OpI32Eq, OpI32Ne, OpI32LtS, OpI32LtU, OpI32GtS, OpI32GtU, OpI32LeS, OpI32LeU, OpI32GeS, OpI32GeU:
		return relop(I32)
	case OpI64Eq, OpI64Ne, OpI64LtS, OpI64LtU, OpI64GtS, OpI64GtU, OpI64LeS, OpI64LeU, OpI64GeS, OpI64GeU:
		return relop(I64)
	case OpF32Eq, OpF32Ne, OpF32Lt, OpF32Gt, OpF32Le, OpF32Ge:
		return relop(F32)
	case OpF64Eq, OpF64Ne, OpF64Lt, OpF64Gt, OpF64Le, OpF64Ge:
		return relop(F64)

	case OpI32Clz, OpI32Ctz, OpI32Popcnt, OpI32Extend8S, OpI32Extend16S:
		return unop(I32)
	case OpI32Add, OpI32Sub, OpI32Mul, OpI32DivS, OpI32DivU, OpI32RemS, OpI32RemU,
		OpI32And, OpI32Or, OpI32Xor, OpI32Shl, OpI32ShrS, OpI32ShrU, OpI32Rotl, OpI32Rotr:
		return binop(I32)

	case OpI64Clz, OpI64Ctz, OpI64Popcnt, OpI64Extend8S, OpI64Extend16S, OpI64Extend32S:
		return unop(I64)
	case OpI64Add, OpI64Sub, OpI64Mul, OpI64DivS, OpI64DivU, OpI64RemS, OpI64RemU,
		OpI64And, OpI64Or, OpI64Xor, OpI64Shl, OpI64ShrS, OpI64ShrU, OpI64Rotl, OpI64Rotr:
		return binop(I64)

	case OpF32Abs, OpF32Neg, OpF32Ceil, OpF32Floor, OpF32Trunc, OpF32Nearest, OpF32Sqrt:
		return unop(F32)
	case OpF32Add, OpF32Sub, OpF32Mul, OpF32Div, OpF32Min, OpF32Max, OpF32Copysign:
		return binop(F32)

	case OpF64Abs, OpF64Neg, OpF64Ceil, OpF64Floor, OpF64Trunc, OpF64Nearest, OpF64Sqrt:
		return unop(F64)
	case OpF64Add, OpF64Sub, OpF64Mul, OpF64Div, OpF64Min, OpF64Max, OpF64Copysign:
		return binop(F64)

	case OpI32WrapI64:
		return convert(I64, I32)
	case OpI32TruncF32S, OpI32TruncF32U:
		return convert(F32, I32)
	case OpI32TruncF64S, OpI32TruncF64U:
		return convert(F64, I32)
	case OpI64ExtendI32S, OpI64ExtendI32U:
		return convert(I32, I64)
	case OpI64TruncF32S, OpI64TruncF32U:
		return convert(F32, I64)
	case OpI64TruncF64S, OpI64TruncF64U:
		return convert(F64, I64)
	case OpF32ConvertI32S, OpF32ConvertI32U:
		return convert(I32, F32)
	case OpF32ConvertI64S, OpF32ConvertI64U:
		return convert(I64, F32)
	case OpF32DemoteF64:
		return convert(F64, F32)
	case OpF64ConvertI32S, OpF64ConvertI32U:
		return convert(I32, F64)
	case OpF64ConvertI64S, OpF64ConvertI64U:
		return convert(I64, F64)
	case OpF64PromoteF32:
		return convert(F32, F64)
	case OpI32ReinterpretF32:
		return convert(F32, I32)
	case OpI64ReinterpretF64:
		return convert(F64, I64)
	case OpF32ReinterpretI32:
		return convert(I32, F32)
	case OpF64ReinterpretI64:
		return convert(I64, F64)
	}

	return v.fail("unknown opcode %s", instr.Op)
}

// validateConstExpr checks that a global/element/data offset initializer is
// a single const or global.get of an immutable imported global, and
// returns its static type.
func validateConstExpr(module *Module, expr []Instruction) (ValueType, error) {
	if len(expr) != 1 {
		return nil, &ValidationError{FuncIndex: -1, Detail: "constant expression must be a single instruction"}
	}
	instr := expr[0]
	switch instr.Op {
	case OpI32Const:
		return I32, nil
	case OpI64Const:
		return I64, nil
	case OpF32Const:
		return F32, nil
	case OpF64Const:
		return F64, nil
	case OpGlobalGet:
		numImports := 0
		for _, imp := range module.Imports {
			if imp.Kind == ImportGlobal {
				numImports++
			}
		}
		if int(instr.GlobalIndex) >= numImports {
			return nil, &ValidationError{FuncIndex: -1, Detail: "constant expression may only reference an imported global"}
		}
		i := 0
		for _, imp := range module.Imports {
			if imp.Kind != ImportGlobal {
				continue
			}
			if i == int(instr.GlobalIndex) {
				if imp.GlobalType.Mutable {
					return nil, &ValidationError{FuncIndex: -1, Detail: "constant expression may not reference a mutable global"}
				}
				return imp.GlobalType.ValueType, nil
			}
			i++
		}
	}
	return nil, &ValidationError{FuncIndex: -1, Detail: "invalid constant expression"}
}

// Validate performs the whole-module and per-function static checks:
// index-range checks, uniqueness of at most one table and one memory,
// start-function typing, and per-function stack typing.
func Validate(m *Module) error {
	if len(m.Tables)+numTableImports(m) > 1 {
		return &ValidationError{FuncIndex: -1, Detail: "at most one table is allowed"}
	}
	if len(m.Memories)+numMemoryImports(m) > 1 {
		return &ValidationError{FuncIndex: -1, Detail: "at most one memory is allowed"}
	}

	for _, imp := range m.Imports {
		if imp.Kind == ImportFunc && int(imp.FuncTypeIndex) >= len(m.Types) {
			return &ValidationError{FuncIndex: -1, Detail: "unknown type index in import"}
		}
	}
	for _, fn := range m.Funcs {
		if int(fn.TypeIndex) >= len(m.Types) {
			return &ValidationError{FuncIndex: -1, Detail: "unknown type index"}
		}
	}

	if m.StartFunc != nil {
		idx := *m.StartFunc
		if int(idx) >= m.NumFuncImports()+len(m.Funcs) {
			return &ValidationError{FuncIndex: -1, Detail: "unknown start function"}
		}
		ft := m.FuncType(idx)
		if len(ft.Params) != 0 || len(ft.Results) != 0 {
			return &ValidationError{FuncIndex: -1, Detail: "start function must have type [] -> []"}
		}
	}

	seenExportNames := map[string]bool{}
	for _, exp := range m.Exports {
		if seenExportNames[exp.Name] {
			return &ValidationError{FuncIndex: -1, Detail: fmt.Sprintf("duplicate export name %q", exp.Name)}
		}
		seenExportNames[exp.Name] = true

		switch exp.Kind {
		case ExportFunc:
			if int(exp.Index) >= m.NumFuncImports()+len(m.Funcs) {
				return &ValidationError{FuncIndex: -1, Detail: "unknown function in export"}
			}
		case ExportTable:
			if int(exp.Index) >= numTableImports(m)+len(m.Tables) {
				return &ValidationError{FuncIndex: -1, Detail: "unknown table in export"}
			}
		case ExportMemory:
			if int(exp.Index) >= numMemoryImports(m)+len(m.Memories) {
				return &ValidationError{FuncIndex: -1, Detail: "unknown memory in export"}
			}
		case ExportGlobal:
			numImports := 0
			for _, imp := range m.Imports {
				if imp.Kind == ImportGlobal {
					numImports++
				}
			}
			if int(exp.Index) >= numImports+len(m.Globals) {
				return &ValidationError{FuncIndex: -1, Detail: "unknown global in export"}
			}
		}
	}

	for i, g := range m.Globals {
		t, err := validateConstExpr(m, g.Init)
		if err != nil {
			return err
		}
		if !typesCompatible(t, g.Type.ValueType) {
			return &ValidationError{FuncIndex: -1, Detail: fmt.Sprintf("global %d initializer type mismatch", i)}
		}
	}

	for _, el := range m.Elements {
		if int(el.TableIndex) >= numTableImports(m)+len(m.Tables) {
			return &ValidationError{FuncIndex: -1, Detail: "unknown table in element segment"}
		}
		if t, err := validateConstExpr(m, el.Offset); err != nil {
			return err
		} else if !typesCompatible(t, I32) {
			return &ValidationError{FuncIndex: -1, Detail: "element segment offset must be i32"}
		}
		for _, fi := range el.FuncIndexes {
			if int(fi) >= m.NumFuncImports()+len(m.Funcs) {
				return &ValidationError{FuncIndex: -1, Detail: "unknown function in element segment"}
			}
		}
	}

	for _, d := range m.Datas {
		if int(d.MemoryIndex) >= numMemoryImports(m)+len(m.Memories) {
			return &ValidationError{FuncIndex: -1, Detail: "unknown memory in data segment"}
		}
		if t, err := validateConstExpr(m, d.Offset); err != nil {
			return err
		} else if !typesCompatible(t, I32) {
			return &ValidationError{FuncIndex: -1, Detail: "data segment offset must be i32"}
		}
	}

	for i := range m.Funcs {
		ft := m.Types[m.Funcs[i].TypeIndex]
		if err := validateFunction(m, m.NumFuncImports()+i, ft, &m.Funcs[i]); err != nil {
			return err
		}
	}
	return nil
}

func numTableImports(m *Module) int {
	n := 0
	for _, imp := range m.Imports {
		if imp.Kind == ImportTable {
			n++
		}
	}
	return n
}
