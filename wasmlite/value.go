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

import "math"

// value is a runtime Wasm value: exactly 64 bits, reinterpreted according to
// the static type known from context (the operand stack is untyped at
// runtime because the validator has already checked every use). i32 and f32
// occupy the low 32 bits.
type value uint64

func i32Value(v int32) value { return value(uint32(v)) }
func i64Value(v int64) value { return value(uint64(v)) }
func f32Value(v float32) value { return value(math.Float32bits(v)) }
func f64Value(v float64) value { return value(math.Float64bits(v)) }

func (v value) i32() int32     { return int32(uint32(v)) }
func (v value) u32() uint32    { return uint32(v) }
func (v value) i64() int64     { return int64(v) }
func (v value) u64() uint64    { return uint64(v) }
func (v value) f32() float32   { return math.Float32frombits(uint32(v)) }
func (v value) f64() float64   { return math.Float64frombits(uint64(v)) }

// defaultValue returns the zero value for a value type, used to initialize
// declared locals and to size global storage before the initializer runs.
func defaultValue(vt ValueType) value {
	switch vt.(NumberType) {
	case I32, F32:
		return value(0)
	case I64, F64:
		return value(0)
	default:
		return value(0)
	}
}
