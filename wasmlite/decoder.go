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
	"encoding/binary"
	"errors"
	"math"
	"unicode/utf8"
)

var (
	errIntRepresentationTooLong = errors.New("integer representation too long")
	errIntegerTooLarge          = errors.New("integer too large")
	errUnexpectedEOF            = errors.New("unexpected end of input")
)

const (
	wasmMagic   = 0x6D736100 // "\0asm" read little-endian as a u32
	wasmVersion = 0x00000001

	pageSizeBytes = 65536
)

// Section ids, in the fixed order a binary module must present them.
const (
	secCustom = iota
	secType
	secImport
	secFunction
	secTable
	secMemory
	secGlobal
	secExport
	secStart
	secElement
	secCode
	secData
)

// reader is a cursor over the module byte string that tracks its absolute
// byte offset for error reporting.
type reader struct {
	data []byte
	pos  int
}

func (r *reader) offset() int { return r.pos }

func (r *reader) readByte() (byte, error) {
	if r.pos >= len(r.data) {
		return 0, errUnexpectedEOF
	}
	b := r.data[r.pos]
	r.pos++
	return b, nil
}

func (r *reader) readBytes(n int) ([]byte, error) {
	if n < 0 || r.pos+n > len(r.data) {
		return nil, errUnexpectedEOF
	}
	b := r.data[r.pos : r.pos+n]
	r.pos += n
	return b, nil
}

func (r *reader) hasMore() bool { return r.pos < len(r.data) }

func (r *reader) readU32LEB() (uint32, error) {
	v, _, err := readULEB128(r.readByte, 32)
	return uint32(v), err
}

func (r *reader) readU64LEB() (uint64, error) {
	v, _, err := readULEB128(r.readByte, 64)
	return v, err
}

func (r *reader) readI32LEB() (int32, error) {
	v, _, err := readSLEB128(r.readByte, 32)
	return int32(v), err
}

func (r *reader) readI64LEB() (int64, error) {
	v, _, err := readSLEB128(r.readByte, 64)
	return v, err
}

func (r *reader) readF32() (float32, error) {
	b, err := r.readBytes(4)
	if err != nil {
		return 0, err
	}
	return math.Float32frombits(binary.LittleEndian.Uint32(b)), nil
}

func (r *reader) readF64() (float64, error) {
	b, err := r.readBytes(8)
	if err != nil {
		return 0, err
	}
	return math.Float64frombits(binary.LittleEndian.Uint64(b)), nil
}

func (r *reader) readName() (string, error) {
	n, err := r.readU32LEB()
	if err != nil {
		return "", err
	}
	b, err := r.readBytes(int(n))
	if err != nil {
		return "", err
	}
	if !utf8.Valid(b) {
		return "", errors.New("malformed UTF-8 encoding")
	}
	return string(b), nil
}

// Decode parses a Wasm 1.0 binary module. It performs only structural and
// well-formedness checks; static type checking is the validator's job
// (Validate).
func Decode(data []byte) (module *Module, err error) {
	r := &reader{data: data}
	defer func() {
		if p := recover(); p != nil {
			if de, ok := p.(*DecodeError); ok {
				module, err = nil, de
				return
			}
			panic(p)
		}
	}()

	magicBytes, e := r.readBytes(4)
	if e != nil || binary.LittleEndian.Uint32(magicBytes) != wasmMagic {
		fail(r, 0, "bad magic number")
	}
	versionBytes, e := r.readBytes(4)
	if e != nil || binary.LittleEndian.Uint32(versionBytes) != wasmVersion {
		fail(r, 4, "unsupported binary version")
	}

	d := &decoderState{r: r, module: &Module{}}
	d.decodeSections()
	return d.module, nil
}

// decoderState carries the running section-order state across the
// section-by-section walk of the module.
type decoderState struct {
	r      *reader
	module *Module

	// lastSectionID tracks the highest non-custom section id seen so far,
	// to enforce the fixed section order (custom sections may appear
	// between any two, and may repeat; every other id may appear once).
	lastSectionID int
	seenSections  map[int]bool

	funcTypeIndexes []uint32 // from the function section, paired with the code section
}

func fail(r *reader, offset int, detail string) {
	panic(&DecodeError{Offset: offset, Detail: detail})
}

func (d *decoderState) fail(detail string) {
	fail(d.r, d.r.offset(), detail)
}

func (d *decoderState) checkErr(err error) {
	if err != nil {
		d.fail(err.Error())
	}
}

func (d *decoderState) decodeSections() {
	d.seenSections = map[int]bool{}
	for d.r.hasMore() {
		startOffset := d.r.offset()
		id, err := d.r.readByte()
		d.checkErr(err)
		size, err := d.r.readU32LEB()
		d.checkErr(err)

		sectionStart := d.r.offset()
		if id != secCustom {
			if int(id) < 0 || int(id) > secData {
				d.fail("malformed section id")
			}
			if d.seenSections[int(id)] {
				d.fail("duplicate section")
			}
			if int(id) <= d.lastSectionID {
				d.fail("sections out of order")
			}
			d.lastSectionID = int(id)
			d.seenSections[int(id)] = true
		}

		switch id {
		case secCustom:
			name, err := d.r.readName()
			d.checkErr(err)
			end := sectionStart + int(size)
			if end < d.r.offset() || end > len(d.r.data) {
				d.fail("section size out of bounds")
			}
			payload, err := d.r.readBytes(end - d.r.offset())
			d.checkErr(err)
			d.module.CustomSections = append(d.module.CustomSections, CustomSection{Name: name, Payload: payload})
		case secType:
			d.decodeTypeSection()
		case secImport:
			d.decodeImportSection()
		case secFunction:
			d.decodeFunctionSection()
		case secTable:
			d.decodeTableSection()
		case secMemory:
			d.decodeMemorySection()
		case secGlobal:
			d.decodeGlobalSection()
		case secExport:
			d.decodeExportSection()
		case secStart:
			idx, err := d.r.readU32LEB()
			d.checkErr(err)
			d.module.StartFunc = &idx
		case secElement:
			d.decodeElementSection()
		case secCode:
			d.decodeCodeSection()
		case secData:
			d.decodeDataSection()
		default:
			d.fail("malformed section id")
		}

		if d.r.offset() != sectionStart+int(size) {
			fail(d.r, startOffset, "section size mismatch")
		}
	}

	if len(d.module.Funcs) != len(d.funcTypeIndexes) {
		d.fail("function and code section counts differ")
	}
}

func readVec[T any](d *decoderState, one func() T) []T {
	n, err := d.r.readU32LEB()
	d.checkErr(err)
	items := make([]T, n)
	for i := range items {
		items[i] = one()
	}
	return items
}

func (d *decoderState) decodeValueType() ValueType {
	b, err := d.r.readByte()
	d.checkErr(err)
	switch NumberType(b) {
	case I32, I64, F32, F64:
		return NumberType(b)
	default:
		d.fail("malformed value type")
		return nil
	}
}

func (d *decoderState) decodeFuncRefType() {
	b, err := d.r.readByte()
	d.checkErr(err)
	if b != 0x70 {
		d.fail("malformed element type: expected funcref")
	}
}

func (d *decoderState) decodeLimits() Limits {
	tag, err := d.r.readByte()
	d.checkErr(err)
	min, err := d.r.readU32LEB()
	d.checkErr(err)
	switch tag {
	case 0x00:
		return Limits{Min: min}
	case 0x01:
		max, err := d.r.readU32LEB()
		d.checkErr(err)
		if max < min {
			d.fail("size minimum must not be greater than maximum")
		}
		return Limits{Min: min, Max: &max}
	default:
		d.fail("malformed limits flag")
		return Limits{}
	}
}

func (d *decoderState) decodeTypeSection() {
	d.module.Types = readVec(d, func() FunctionType {
		tag, err := d.r.readByte()
		d.checkErr(err)
		if tag != 0x60 {
			d.fail("malformed function type tag")
		}
		params := readVec(d, func() ValueType { return d.decodeValueType() })
		results := readVec(d, func() ValueType { return d.decodeValueType() })
		if len(results) > 1 {
			d.fail("Wasm 1.0 permits at most one result type")
		}
		return FunctionType{Params: params, Results: results}
	})
}

func (d *decoderState) decodeImportSection() {
	d.module.Imports = readVec(d, func() Import {
		modName, err := d.r.readName()
		d.checkErr(err)
		name, err := d.r.readName()
		d.checkErr(err)
		kindByte, err := d.r.readByte()
		d.checkErr(err)
		imp := Import{ModuleName: modName, Name: name}
		switch kindByte {
		case 0x00:
			idx, err := d.r.readU32LEB()
			d.checkErr(err)
			imp.Kind = ImportFunc
			imp.FuncTypeIndex = idx
		case 0x01:
			d.decodeFuncRefType()
			imp.Kind = ImportTable
			imp.TableType = TableType{Limits: d.decodeLimits()}
		case 0x02:
			imp.Kind = ImportMemory
			imp.MemoryType = MemoryType{Limits: d.decodeLimits()}
		case 0x03:
			vt := d.decodeValueType()
			mutByte, err := d.r.readByte()
			d.checkErr(err)
			imp.Kind = ImportGlobal
			imp.GlobalType = GlobalType{ValueType: vt, Mutable: mutByte == 0x01}
		default:
			d.fail("malformed import kind")
		}
		return imp
	})
}

func (d *decoderState) decodeFunctionSection() {
	d.funcTypeIndexes = readVec(d, func() uint32 {
		idx, err := d.r.readU32LEB()
		d.checkErr(err)
		return idx
	})
}

func (d *decoderState) decodeTableSection() {
	d.module.Tables = readVec(d, func() TableType {
		d.decodeFuncRefType()
		return TableType{Limits: d.decodeLimits()}
	})
}

func (d *decoderState) decodeMemorySection() {
	d.module.Memories = readVec(d, func() MemoryType {
		return MemoryType{Limits: d.decodeLimits()}
	})
}

func (d *decoderState) decodeGlobalSection() {
	d.module.Globals = readVec(d, func() GlobalDef {
		vt := d.decodeValueType()
		mutByte, err := d.r.readByte()
		d.checkErr(err)
		init := d.decodeConstExpr()
		return GlobalDef{Type: GlobalType{ValueType: vt, Mutable: mutByte == 0x01}, Init: init}
	})
}

func (d *decoderState) decodeExportSection() {
	d.module.Exports = readVec(d, func() Export {
		name, err := d.r.readName()
		d.checkErr(err)
		kindByte, err := d.r.readByte()
		d.checkErr(err)
		idx, err := d.r.readU32LEB()
		d.checkErr(err)
		var kind ExportKind
		switch kindByte {
		case 0x00:
			kind = ExportFunc
		case 0x01:
			kind = ExportTable
		case 0x02:
			kind = ExportMemory
		case 0x03:
			kind = ExportGlobal
		default:
			d.fail("malformed export kind")
		}
		return Export{Name: name, Kind: kind, Index: idx}
	})
}

func (d *decoderState) decodeElementSection() {
	d.module.Elements = readVec(d, func() ElementSegment {
		tableIndex, err := d.r.readU32LEB()
		d.checkErr(err)
		offset := d.decodeConstExpr()
		funcIndexes := readVec(d, func() uint32 {
			idx, err := d.r.readU32LEB()
			d.checkErr(err)
			return idx
		})
		return ElementSegment{TableIndex: tableIndex, Offset: offset, FuncIndexes: funcIndexes}
	})
}

func (d *decoderState) decodeDataSection() {
	d.module.Datas = readVec(d, func() DataSegment {
		memIndex, err := d.r.readU32LEB()
		d.checkErr(err)
		offset := d.decodeConstExpr()
		n, err := d.r.readU32LEB()
		d.checkErr(err)
		b, err := d.r.readBytes(int(n))
		d.checkErr(err)
		return DataSegment{MemoryIndex: memIndex, Offset: offset, Bytes: append([]byte(nil), b...)}
	})
}

func (d *decoderState) decodeCodeSection() {
	bodies := readVec(d, func() Function {
		bodySize, err := d.r.readU32LEB()
		d.checkErr(err)
		bodyStart := d.r.offset()

		numLocalGroups, err := d.r.readU32LEB()
		d.checkErr(err)
		var locals []ValueType
		for i := uint32(0); i < numLocalGroups; i++ {
			count, err := d.r.readU32LEB()
			d.checkErr(err)
			vt := d.decodeValueType()
			for j := uint32(0); j < count; j++ {
				locals = append(locals, vt)
			}
		}

		body := d.decodeInstructionsUntil(OpEnd)

		if d.r.offset() != bodyStart+int(bodySize) {
			d.fail("function body size mismatch")
		}

		return Function{Locals: locals, Body: body}
	})

	if len(bodies) != len(d.funcTypeIndexes) {
		d.fail("function and code section counts differ")
	}
	d.module.Funcs = make([]Function, len(bodies))
	for i, b := range bodies {
		b.TypeIndex = d.funcTypeIndexes[i]
		d.module.Funcs[i] = b
	}
}

// decodeConstExpr decodes a constant expression: a single const or
// global.get instruction followed by end. Full type/index checking of the
// referenced global is the validator's responsibility.
func (d *decoderState) decodeConstExpr() []Instruction {
	instrs := d.decodeInstructionsUntil(OpEnd)
	return instrs
}

// decodeInstructionsUntil decodes a sequence of instructions up to (and
// consuming) a terminating `end` opcode, and returns the instructions that
// preceded it.
func (d *decoderState) decodeInstructionsUntil(terminator Opcode) []Instruction {
	var instrs []Instruction
	for {
		op, err := d.r.readByte()
		d.checkErr(err)
		if Opcode(op) == terminator {
			return instrs
		}
		if Opcode(op) == OpElse {
			d.fail("unexpected else")
		}
		instrs = append(instrs, d.decodeInstruction(Opcode(op)))
	}
}

// decodeBlockBody decodes a block/loop body: instructions up to (and
// consuming) the matching `end`.
func (d *decoderState) decodeBlockBody() []Instruction {
	var instrs []Instruction
	for {
		op, err := d.r.readByte()
		d.checkErr(err)
		switch Opcode(op) {
		case OpEnd:
			return instrs
		case OpElse:
			d.fail("unexpected else")
		}
		instrs = append(instrs, d.decodeInstruction(Opcode(op)))
	}
}

// decodeIfBody decodes an if's then-branch: instructions up to (and
// consuming) a matching `else` or `end`. It reports whether an else branch
// follows.
func (d *decoderState) decodeIfBody() (then []Instruction, hasElse bool) {
	for {
		op, err := d.r.readByte()
		d.checkErr(err)
		switch Opcode(op) {
		case OpEnd:
			return then, false
		case OpElse:
			return then, true
		}
		then = append(then, d.decodeInstruction(Opcode(op)))
	}
}

func (d *decoderState) decodeBlockType() BlockType {
	// A block type is either the empty type (0x40), a value type, or (in
	// later proposals) a signed LEB128 type index — Wasm 1.0 has no
	// multi-value blocks, so only the first two forms are legal here.
	peek := d.r.pos
	b, err := d.r.readByte()
	d.checkErr(err)
	if b == 0x40 {
		return BlockType{}
	}
	switch NumberType(b) {
	case I32, I64, F32, F64:
		return BlockType{HasResult: true, Result: NumberType(b)}
	default:
		d.r.pos = peek
		fail(d.r, peek, "malformed block type")
		return BlockType{}
	}
}

func (d *decoderState) decodeMemArg() (align, offset uint32) {
	align, err := d.r.readU32LEB()
	d.checkErr(err)
	offset, err = d.r.readU32LEB()
	d.checkErr(err)
	return align, offset
}

// decodeInstruction decodes the immediates for a single already-tagged
// opcode, recursing into nested bodies for structured control.
func (d *decoderState) decodeInstruction(op Opcode) Instruction {
	instr := Instruction{Op: op}
	switch op {
	case OpBlock, OpLoop:
		instr.BlockType = d.decodeBlockType()
		instr.Then = d.decodeBlockBody()
	case OpIf:
		instr.BlockType = d.decodeBlockType()
		then, hasElse := d.decodeIfBody()
		instr.Then = then
		if hasElse {
			instr.Else = d.decodeBlockBody()
		}
	case OpBr, OpBrIf:
		idx, err := d.r.readU32LEB()
		d.checkErr(err)
		instr.LabelIndex = idx
	case OpBrTable:
		instr.LabelIndexes = readVec(d, func() uint32 {
			idx, err := d.r.readU32LEB()
			d.checkErr(err)
			return idx
		})
		idx, err := d.r.readU32LEB()
		d.checkErr(err)
		instr.DefaultLabel = idx
	case OpCall:
		idx, err := d.r.readU32LEB()
		d.checkErr(err)
		instr.FuncIndex = idx
	case OpCallIndirect:
		typeIdx, err := d.r.readU32LEB()
		d.checkErr(err)
		tableIdx, err2 := d.r.readByte()
		d.checkErr(err2)
		if tableIdx != 0x00 {
			d.fail("malformed call_indirect reserved byte")
		}
		instr.TypeIndex = typeIdx
	case OpLocalGet, OpLocalSet, OpLocalTee:
		idx, err := d.r.readU32LEB()
		d.checkErr(err)
		instr.LocalIndex = idx
	case OpGlobalGet, OpGlobalSet:
		idx, err := d.r.readU32LEB()
		d.checkErr(err)
		instr.GlobalIndex = idx
	case OpI32Const:
		v, err := d.r.readI32LEB()
		d.checkErr(err)
		instr.ConstI32 = v
	case OpI64Const:
		v, err := d.r.readI64LEB()
		d.checkErr(err)
		instr.ConstI64 = v
	case OpF32Const:
		v, err := d.r.readF32()
		d.checkErr(err)
		instr.ConstF32 = v
	case OpF64Const:
		v, err := d.r.readF64()
		d.checkErr(err)
		instr.ConstF64 = v
	case OpMemorySize, OpMemoryGrow:
		b, err := d.r.readByte()
		d.checkErr(err)
		if b != 0x00 {
			d.fail("malformed memory index")
		}
	case OpI32Load, OpI64Load, OpF32Load, OpF64Load,
		OpI32Load8S, OpI32Load8U, OpI32Load16S, OpI32Load16U,
		OpI64Load8S, OpI64Load8U, OpI64Load16S, OpI64Load16U,
		OpI64Load32S, OpI64Load32U,
		OpI32Store, OpI64Store, OpF32Store, OpF64Store,
		OpI32Store8, OpI32Store16, OpI64Store8, OpI64Store16, OpI64Store32:
		instr.Align, instr.Offset = d.decodeMemArg()
	case OpUnreachable, OpNop, OpReturn, OpDrop, OpSelect,
		OpI32Eqz, OpI32Eq, OpI32Ne, OpI32LtS, OpI32LtU, OpI32GtS, OpI32GtU,
		OpI32LeS, OpI32LeU, OpI32GeS, OpI32GeU,
		OpI64Eqz, OpI64Eq, OpI64Ne, OpI64LtS, OpI64LtU, OpI64GtS, OpI64GtU,
		OpI64LeS, OpI64LeU, OpI64GeS, OpI64GeU,
		OpF32Eq, OpF32Ne, OpF32Lt, OpF32Gt, OpF32Le, OpF32Ge,
		OpF64Eq, OpF64Ne, OpF64Lt, OpF64Gt, OpF64Le, OpF64Ge,
		OpI32Clz, OpI32Ctz, OpI32Popcnt, OpI32Add, OpI32Sub, OpI32Mul,
		OpI32DivS, OpI32DivU, OpI32RemS, OpI32RemU, OpI32And, OpI32Or, OpI32Xor,
		OpI32Shl, OpI32ShrS, OpI32ShrU, OpI32Rotl, OpI32Rotr,
		OpI64Clz, OpI64Ctz, OpI64Popcnt, OpI64Add, OpI64Sub, OpI64Mul,
		OpI64DivS, OpI64DivU, OpI64RemS, OpI64RemU, OpI64And, OpI64Or, OpI64Xor,
		OpI64Shl, OpI64ShrS, OpI64ShrU, OpI64Rotl, OpI64Rotr,
		OpF32Abs, OpF32Neg, OpF32Ceil, OpF32Floor, OpF32Trunc, OpF32Nearest,
		OpF32Sqrt, OpF32Add, OpF32Sub, OpF32Mul, OpF32Div, OpF32Min, OpF32Max, OpF32Copysign,
		OpF64Abs, OpF64Neg, OpF64Ceil, OpF64Floor, OpF64Trunc, OpF64Nearest,
		OpF64Sqrt, OpF64Add, OpF64Sub, OpF64Mul, OpF64Div, OpF64Min, OpF64Max, OpF64Copysign,
		OpI32WrapI64, OpI32TruncF32S, OpI32TruncF32U, OpI32TruncF64S, OpI32TruncF64U,
		OpI64ExtendI32S, OpI64ExtendI32U, OpI64TruncF32S, OpI64TruncF32U, OpI64TruncF64S, OpI64TruncF64U,
		OpF32ConvertI32S, OpF32ConvertI32U, OpF32ConvertI64S, OpF32ConvertI64U, OpF32DemoteF64,
		OpF64ConvertI32S, OpF64ConvertI32U, OpF64ConvertI64S, OpF64ConvertI64U, OpF64PromoteF32,
		OpI32ReinterpretF32, OpI64ReinterpretF64, OpF32ReinterpretI32, OpF64ReinterpretI64,
		OpI32Extend8S, OpI32Extend16S, OpI64Extend8S, OpI64Extend16S, OpI64Extend32S:
		// No immediates.
	default:
		d.fail("unknown opcode")
	}
	return instr
}
