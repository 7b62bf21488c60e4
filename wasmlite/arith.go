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

// execNumeric dispatches every numeric operator opcode (comparisons,
// arithmetic, conversions) that isn't handled directly in execOne. Each
// case pops its operands, computes the result via the generic helpers in
// numeric.go, and pushes it back.
func (e *executor) execNumeric(instr Instruction) error {
	switch instr.Op {
	case OpI32Eqz:
		e.push(i32Value(eqOp(e.pop().i32(), 0)))
	case OpI32Eq:
		b, a := e.pop().i32(), e.pop().i32()
		e.push(i32Value(eqOp(a, b)))
	case OpI32Ne:
		b, a := e.pop().i32(), e.pop().i32()
		e.push(i32Value(neOp(a, b)))
	case OpI32LtS:
		b, a := e.pop().i32(), e.pop().i32()
		e.push(i32Value(ltOp(a, b)))
	case OpI32LtU:
		b, a := e.pop().u32(), e.pop().u32()
		e.push(i32Value(ltOp(a, b)))
	case OpI32GtS:
		b, a := e.pop().i32(), e.pop().i32()
		e.push(i32Value(gtOp(a, b)))
	case OpI32GtU:
		b, a := e.pop().u32(), e.pop().u32()
		e.push(i32Value(gtOp(a, b)))
	case OpI32LeS:
		b, a := e.pop().i32(), e.pop().i32()
		e.push(i32Value(leOp(a, b)))
	case OpI32LeU:
		b, a := e.pop().u32(), e.pop().u32()
		e.push(i32Value(leOp(a, b)))
	case OpI32GeS:
		b, a := e.pop().i32(), e.pop().i32()
		e.push(i32Value(geOp(a, b)))
	case OpI32GeU:
		b, a := e.pop().u32(), e.pop().u32()
		e.push(i32Value(geOp(a, b)))

	case OpI64Eqz:
		e.push(i32Value(eqOp(e.pop().i64(), 0)))
	case OpI64Eq:
		b, a := e.pop().i64(), e.pop().i64()
		e.push(i32Value(eqOp(a, b)))
	case OpI64Ne:
		b, a := e.pop().i64(), e.pop().i64()
		e.push(i32Value(neOp(a, b)))
	case OpI64LtS:
		b, a := e.pop().i64(), e.pop().i64()
		e.push(i32Value(ltOp(a, b)))
	case OpI64LtU:
		b, a := e.pop().u64(), e.pop().u64()
		e.push(i32Value(ltOp(a, b)))
	case OpI64GtS:
		b, a := e.pop().i64(), e.pop().i64()
		e.push(i32Value(gtOp(a, b)))
	case OpI64GtU:
		b, a := e.pop().u64(), e.pop().u64()
		e.push(i32Value(gtOp(a, b)))
	case OpI64LeS:
		b, a := e.pop().i64(), e.pop().i64()
		e.push(i32Value(leOp(a, b)))
	case OpI64LeU:
		b, a := e.pop().u64(), e.pop().u64()
		e.push(i32Value(leOp(a, b)))
	case OpI64GeS:
		b, a := e.pop().i64(), e.pop().i64()
		e.push(i32Value(geOp(a, b)))
	case OpI64GeU:
		b, a := e.pop().u64(), e.pop().u64()
		e.push(i32Value(geOp(a, b)))

	case OpF32Eq:
		b, a := e.pop().f32(), e.pop().f32()
		e.push(i32Value(eqOp(a, b)))
	case OpF32Ne:
		b, a := e.pop().f32(), e.pop().f32()
		e.push(i32Value(neOp(a, b)))
	case OpF32Lt:
		b, a := e.pop().f32(), e.pop().f32()
		e.push(i32Value(ltOp(a, b)))
	case OpF32Gt:
		b, a := e.pop().f32(), e.pop().f32()
		e.push(i32Value(gtOp(a, b)))
	case OpF32Le:
		b, a := e.pop().f32(), e.pop().f32()
		e.push(i32Value(leOp(a, b)))
	case OpF32Ge:
		b, a := e.pop().f32(), e.pop().f32()
		e.push(i32Value(geOp(a, b)))

	case OpF64Eq:
		b, a := e.pop().f64(), e.pop().f64()
		e.push(i32Value(eqOp(a, b)))
	case OpF64Ne:
		b, a := e.pop().f64(), e.pop().f64()
		e.push(i32Value(neOp(a, b)))
	case OpF64Lt:
		b, a := e.pop().f64(), e.pop().f64()
		e.push(i32Value(ltOp(a, b)))
	case OpF64Gt:
		b, a := e.pop().f64(), e.pop().f64()
		e.push(i32Value(gtOp(a, b)))
	case OpF64Le:
		b, a := e.pop().f64(), e.pop().f64()
		e.push(i32Value(leOp(a, b)))
	case OpF64Ge:
		b, a := e.pop().f64(), e.pop().f64()
		e.push(i32Value(geOp(a, b)))

	case OpI32Clz:
		e.push(i32Value(int32(clz32(e.pop().u32()))))
	case OpI32Ctz:
		e.push(i32Value(int32(ctz32(e.pop().u32()))))
	case OpI32Popcnt:
		e.push(i32Value(int32(popcnt32(e.pop().u32()))))
	case OpI32Add:
		b, a := e.pop().i32(), e.pop().i32()
		e.push(i32Value(addOp(a, b)))
	case OpI32Sub:
		b, a := e.pop().i32(), e.pop().i32()
		e.push(i32Value(subOp(a, b)))
	case OpI32Mul:
		b, a := e.pop().i32(), e.pop().i32()
		e.push(i32Value(mulOp(a, b)))
	case OpI32DivS:
		b, a := e.pop().i32(), e.pop().i32()
		r, err := divS32(a, b)
		if err != nil {
			return err
		}
		e.push(i32Value(r))
	case OpI32DivU:
		b, a := e.pop().u32(), e.pop().u32()
		r, err := divU32(a, b)
		if err != nil {
			return err
		}
		e.push(i32Value(int32(r)))
	case OpI32RemS:
		b, a := e.pop().i32(), e.pop().i32()
		r, err := remS32(a, b)
		if err != nil {
			return err
		}
		e.push(i32Value(r))
	case OpI32RemU:
		b, a := e.pop().u32(), e.pop().u32()
		r, err := remU32(a, b)
		if err != nil {
			return err
		}
		e.push(i32Value(int32(r)))
	case OpI32And:
		b, a := e.pop().u32(), e.pop().u32()
		e.push(i32Value(int32(and32(a, b))))
	case OpI32Or:
		b, a := e.pop().u32(), e.pop().u32()
		e.push(i32Value(int32(or32(a, b))))
	case OpI32Xor:
		b, a := e.pop().u32(), e.pop().u32()
		e.push(i32Value(int32(xor32(a, b))))
	case OpI32Shl:
		b, a := e.pop().u32(), e.pop().u32()
		e.push(i32Value(int32(shl32(a, b))))
	case OpI32ShrS:
		b, a := e.pop().u32(), e.pop().i32()
		e.push(i32Value(shrS32(a, int32(b))))
	case OpI32ShrU:
		b, a := e.pop().u32(), e.pop().u32()
		e.push(i32Value(int32(shrU32(a, b))))
	case OpI32Rotl:
		b, a := e.pop().u32(), e.pop().u32()
		e.push(i32Value(int32(rotl32(a, b))))
	case OpI32Rotr:
		b, a := e.pop().u32(), e.pop().u32()
		e.push(i32Value(int32(rotr32(a, b))))

	case OpI64Clz:
		e.push(i64Value(int64(clz64(e.pop().u64()))))
	case OpI64Ctz:
		e.push(i64Value(int64(ctz64(e.pop().u64()))))
	case OpI64Popcnt:
		e.push(i64Value(int64(popcnt64(e.pop().u64()))))
	case OpI64Add:
		b, a := e.pop().i64(), e.pop().i64()
		e.push(i64Value(addOp(a, b)))
	case OpI64Sub:
		b, a := e.pop().i64(), e.pop().i64()
		e.push(i64Value(subOp(a, b)))
	case OpI64Mul:
		b, a := e.pop().i64(), e.pop().i64()
		e.push(i64Value(mulOp(a, b)))
	case OpI64DivS:
		b, a := e.pop().i64(), e.pop().i64()
		r, err := divS64(a, b)
		if err != nil {
			return err
		}
		e.push(i64Value(r))
	case OpI64DivU:
		b, a := e.pop().u64(), e.pop().u64()
		r, err := divU64(a, b)
		if err != nil {
			return err
		}
		e.push(i64Value(int64(r)))
	case OpI64RemS:
		b, a := e.pop().i64(), e.pop().i64()
		r, err := remS64(a, b)
		if err != nil {
			return err
		}
		e.push(i64Value(r))
	case OpI64RemU:
		b, a := e.pop().u64(), e.pop().u64()
		r, err := remU64(a, b)
		if err != nil {
			return err
		}
		e.push(i64Value(int64(r)))
	case OpI64And:
		b, a := e.pop().u64(), e.pop().u64()
		e.push(i64Value(int64(and64(a, b))))
	case OpI64Or:
		b, a := e.pop().u64(), e.pop().u64()
		e.push(i64Value(int64(or64(a, b))))
	case OpI64Xor:
		b, a := e.pop().u64(), e.pop().u64()
		e.push(i64Value(int64(xor64(a, b))))
	case OpI64Shl:
		b, a := e.pop().u64(), e.pop().u64()
		e.push(i64Value(int64(shl64(a, b))))
	case OpI64ShrS:
		b, a := e.pop().u64(), e.pop().i64()
		e.push(i64Value(shrS64(a, int64(b))))
	case OpI64ShrU:
		b, a := e.pop().u64(), e.pop().u64()
		e.push(i64Value(int64(shrU64(a, b))))
	case OpI64Rotl:
		b, a := e.pop().u64(), e.pop().u64()
		e.push(i64Value(int64(rotl64(a, b))))
	case OpI64Rotr:
		b, a := e.pop().u64(), e.pop().u64()
		e.push(i64Value(int64(rotr64(a, b))))

	case OpF32Abs:
		e.push(f32Value(fabs(e.pop().f32())))
	case OpF32Neg:
		e.push(f32Value(fneg(e.pop().f32())))
	case OpF32Ceil:
		e.push(f32Value(fceil(e.pop().f32())))
	case OpF32Floor:
		e.push(f32Value(ffloor(e.pop().f32())))
	case OpF32Trunc:
		e.push(f32Value(ftrunc(e.pop().f32())))
	case OpF32Nearest:
		e.push(f32Value(fnearest(e.pop().f32())))
	case OpF32Sqrt:
		e.push(f32Value(fsqrt(e.pop().f32())))
	case OpF32Add:
		b, a := e.pop().f32(), e.pop().f32()
		e.push(f32Value(a + b))
	case OpF32Sub:
		b, a := e.pop().f32(), e.pop().f32()
		e.push(f32Value(a - b))
	case OpF32Mul:
		b, a := e.pop().f32(), e.pop().f32()
		e.push(f32Value(a * b))
	case OpF32Div:
		b, a := e.pop().f32(), e.pop().f32()
		e.push(f32Value(fdiv(a, b)))
	case OpF32Min:
		b, a := e.pop().f32(), e.pop().f32()
		e.push(f32Value(fmin(a, b)))
	case OpF32Max:
		b, a := e.pop().f32(), e.pop().f32()
		e.push(f32Value(fmax(a, b)))
	case OpF32Copysign:
		b, a := e.pop().f32(), e.pop().f32()
		e.push(f32Value(fcopysign(a, b)))

	case OpF64Abs:
		e.push(f64Value(fabs(e.pop().f64())))
	case OpF64Neg:
		e.push(f64Value(fneg(e.pop().f64())))
	case OpF64Ceil:
		e.push(f64Value(fceil(e.pop().f64())))
	case OpF64Floor:
		e.push(f64Value(ffloor(e.pop().f64())))
	case OpF64Trunc:
		e.push(f64Value(ftrunc(e.pop().f64())))
	case OpF64Nearest:
		e.push(f64Value(fnearest(e.pop().f64())))
	case OpF64Sqrt:
		e.push(f64Value(fsqrt(e.pop().f64())))
	case OpF64Add:
		b, a := e.pop().f64(), e.pop().f64()
		e.push(f64Value(a + b))
	case OpF64Sub:
		b, a := e.pop().f64(), e.pop().f64()
		e.push(f64Value(a - b))
	case OpF64Mul:
		b, a := e.pop().f64(), e.pop().f64()
		e.push(f64Value(a * b))
	case OpF64Div:
		b, a := e.pop().f64(), e.pop().f64()
		e.push(f64Value(fdiv(a, b)))
	case OpF64Min:
		b, a := e.pop().f64(), e.pop().f64()
		e.push(f64Value(fmin(a, b)))
	case OpF64Max:
		b, a := e.pop().f64(), e.pop().f64()
		e.push(f64Value(fmax(a, b)))
	case OpF64Copysign:
		b, a := e.pop().f64(), e.pop().f64()
		e.push(f64Value(fcopysign(a, b)))

	case OpI32WrapI64:
		e.push(i32Value(wrapI64ToI32(e.pop().i64())))
	case OpI32TruncF32S:
		r, err := truncF32SToI32(e.pop().f32())
		if err != nil {
			return err
		}
		e.push(i32Value(r))
	case OpI32TruncF32U:
		r, err := truncF32UToI32(e.pop().f32())
		if err != nil {
			return err
		}
		e.push(i32Value(r))
	case OpI32TruncF64S:
		r, err := truncF64SToI32(e.pop().f64())
		if err != nil {
			return err
		}
		e.push(i32Value(r))
	case OpI32TruncF64U:
		r, err := truncF64UToI32(e.pop().f64())
		if err != nil {
			return err
		}
		e.push(i32Value(r))
	case OpI64ExtendI32S:
		e.push(i64Value(extendI32SToI64(e.pop().i32())))
	case OpI64ExtendI32U:
		e.push(i64Value(extendI32UToI64(e.pop().i32())))
	case OpI64TruncF32S:
		r, err := truncF32SToI64(e.pop().f32())
		if err != nil {
			return err
		}
		e.push(i64Value(r))
	case OpI64TruncF32U:
		r, err := truncF32UToI64(e.pop().f32())
		if err != nil {
			return err
		}
		e.push(i64Value(r))
	case OpI64TruncF64S:
		r, err := truncF64SToI64(e.pop().f64())
		if err != nil {
			return err
		}
		e.push(i64Value(r))
	case OpI64TruncF64U:
		r, err := truncF64UToI64(e.pop().f64())
		if err != nil {
			return err
		}
		e.push(i64Value(r))
	case OpF32ConvertI32S:
		e.push(f32Value(convertI32SToF32(e.pop().i32())))
	case OpF32ConvertI32U:
		e.push(f32Value(convertI32UToF32(e.pop().i32())))
	case OpF32ConvertI64S:
		e.push(f32Value(convertI64SToF32(e.pop().i64())))
	case OpF32ConvertI64U:
		e.push(f32Value(convertI64UToF32(e.pop().i64())))
	case OpF32DemoteF64:
		e.push(f32Value(demoteF64ToF32(e.pop().f64())))
	case OpF64ConvertI32S:
		e.push(f64Value(convertI32SToF64(e.pop().i32())))
	case OpF64ConvertI32U:
		e.push(f64Value(convertI32UToF64(e.pop().i32())))
	case OpF64ConvertI64S:
		e.push(f64Value(convertI64SToF64(e.pop().i64())))
	case OpF64ConvertI64U:
		e.push(f64Value(convertI64UToF64(e.pop().i64())))
	case OpF64PromoteF32:
		e.push(f64Value(promoteF32ToF64(e.pop().f32())))
	case OpI32ReinterpretF32:
		e.push(i32Value(reinterpretF32ToI32(e.pop().f32())))
	case OpI64ReinterpretF64:
		e.push(i64Value(reinterpretF64ToI64(e.pop().f64())))
	case OpF32ReinterpretI32:
		e.push(f32Value(reinterpretI32ToF32(e.pop().i32())))
	case OpF64ReinterpretI64:
		e.push(f64Value(reinterpretI64ToF64(e.pop().i64())))

	case OpI32Extend8S:
		e.push(i32Value(extend8SToI32(e.pop().i32())))
	case OpI32Extend16S:
		e.push(i32Value(extend16SToI32(e.pop().i32())))
	case OpI64Extend8S:
		e.push(i64Value(extend8SToI64(e.pop().i64())))
	case OpI64Extend16S:
		e.push(i64Value(extend16SToI64(e.pop().i64())))
	case OpI64Extend32S:
		e.push(i64Value(extend32SToI64(e.pop().i64())))

	default:
		panic("unhandled opcode in execNumeric: " + instr.Op.String())
	}
	return nil
}
