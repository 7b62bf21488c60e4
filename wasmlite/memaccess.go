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

import "encoding/binary"

// effectiveAddress computes the linear-memory byte offset for a memory
// instruction: the dynamic i32 base address plus the static offset
// immediate, both treated as unsigned.
func effectiveAddress(base int32, offset uint32) uint64 {
	return uint64(uint32(base)) + uint64(offset)
}

func (e *executor) execMemAccess(instr Instruction) error {
	m, err := e.memory()
	if err != nil {
		return err
	}

	switch instr.Op {
	case OpI32Load, OpI64Load, OpF32Load, OpF64Load,
		OpI32Load8S, OpI32Load8U, OpI32Load16S, OpI32Load16U,
		OpI64Load8S, OpI64Load8U, OpI64Load16S, OpI64Load16U, OpI64Load32S, OpI64Load32U:
		base := e.pop().i32()
		addr := effectiveAddress(base, instr.Offset)
		v, err := loadValue(m, instr.Op, addr)
		if err != nil {
			return err
		}
		e.push(v)
		return nil

	default:
		val := e.pop()
		base := e.pop().i32()
		addr := effectiveAddress(base, instr.Offset)
		return storeValue(m, instr.Op, addr, val)
	}
}

func loadValue(m *Memory, op Opcode, addr uint64) (value, error) {
	var buf [8]byte
	switch op {
	case OpI32Load:
		if err := m.Read(addr, buf[:4]); err != nil {
			return 0, err
		}
		return i32Value(int32(binary.LittleEndian.Uint32(buf[:4]))), nil
	case OpI64Load:
		if err := m.Read(addr, buf[:8]); err != nil {
			return 0, err
		}
		return i64Value(int64(binary.LittleEndian.Uint64(buf[:8]))), nil
	case OpF32Load:
		if err := m.Read(addr, buf[:4]); err != nil {
			return 0, err
		}
		return value(binary.LittleEndian.Uint32(buf[:4])), nil
	case OpF64Load:
		if err := m.Read(addr, buf[:8]); err != nil {
			return 0, err
		}
		return value(binary.LittleEndian.Uint64(buf[:8])), nil
	case OpI32Load8S:
		if err := m.Read(addr, buf[:1]); err != nil {
			return 0, err
		}
		return i32Value(int32(int8(buf[0]))), nil
	case OpI32Load8U:
		if err := m.Read(addr, buf[:1]); err != nil {
			return 0, err
		}
		return i32Value(int32(buf[0])), nil
	case OpI32Load16S:
		if err := m.Read(addr, buf[:2]); err != nil {
			return 0, err
		}
		return i32Value(int32(int16(binary.LittleEndian.Uint16(buf[:2])))), nil
	case OpI32Load16U:
		if err := m.Read(addr, buf[:2]); err != nil {
			return 0, err
		}
		return i32Value(int32(binary.LittleEndian.Uint16(buf[:2]))), nil
	case OpI64Load8S:
		if err := m.Read(addr, buf[:1]); err != nil {
			return 0, err
		}
		return i64Value(int64(int8(buf[0]))), nil
	case OpI64Load8U:
		if err := m.Read(addr, buf[:1]); err != nil {
			return 0, err
		}
		return i64Value(int64(buf[0])), nil
	case OpI64Load16S:
		if err := m.Read(addr, buf[:2]); err != nil {
			return 0, err
		}
		return i64Value(int64(int16(binary.LittleEndian.Uint16(buf[:2])))), nil
	case OpI64Load16U:
		if err := m.Read(addr, buf[:2]); err != nil {
			return 0, err
		}
		return i64Value(int64(binary.LittleEndian.Uint16(buf[:2]))), nil
	case OpI64Load32S:
		if err := m.Read(addr, buf[:4]); err != nil {
			return 0, err
		}
		return i64Value(int64(int32(binary.LittleEndian.Uint32(buf[:4])))), nil
	case OpI64Load32U:
		if err := m.Read(addr, buf[:4]); err != nil {
			return 0, err
		}
		return i64Value(int64(binary.LittleEndian.Uint32(buf[:4]))), nil
	default:
		panic("not a load opcode")
	}
}

func storeValue(m *Memory, op Opcode, addr uint64, v value) error {
	var buf [8]byte
	switch op {
	case OpI32Store:
		binary.LittleEndian.PutUint32(buf[:4], v.u32())
		return m.Write(addr, buf[:4])
	case OpI64Store:
		binary.LittleEndian.PutUint64(buf[:8], v.u64())
		return m.Write(addr, buf[:8])
	case OpF32Store:
		binary.LittleEndian.PutUint32(buf[:4], uint32(v))
		return m.Write(addr, buf[:4])
	case OpF64Store:
		binary.LittleEndian.PutUint64(buf[:8], uint64(v))
		return m.Write(addr, buf[:8])
	case OpI32Store8:
		buf[0] = byte(v.u32())
		return m.Write(addr, buf[:1])
	case OpI32Store16:
		binary.LittleEndian.PutUint16(buf[:2], uint16(v.u32()))
		return m.Write(addr, buf[:2])
	case OpI64Store8:
		buf[0] = byte(v.u64())
		return m.Write(addr, buf[:1])
	case OpI64Store16:
		binary.LittleEndian.PutUint16(buf[:2], uint16(v.u64()))
		return m.Write(addr, buf[:2])
	case OpI64Store32:
		binary.LittleEndian.PutUint32(buf[:4], uint32(v.u64()))
		return m.Write(addr, buf[:4])
	default:
		panic("not a store opcode")
	}
}
