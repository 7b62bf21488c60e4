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
	"math"
	"math/bits"
)

// wasmInt is the constraint satisfied by the two Wasm integer
// representations used at runtime.
type wasmInt interface {
	~int32 | ~int64 | ~uint32 | ~uint64
}

// wasmFloat is the constraint satisfied by the two Wasm float
// representations.
type wasmFloat interface {
	~float32 | ~float64
}

// wasmNumber is every value the numeric operators below work over.
type wasmNumber interface {
	wasmInt | wasmFloat
}

func addOp[T wasmNumber](a, b T) T { return a + b }
func subOp[T wasmNumber](a, b T) T { return a - b }
func mulOp[T wasmNumber](a, b T) T { return a * b }

func eqOp[T wasmNumber](a, b T) int32   { return boolToI32(a == b) }
func neOp[T wasmNumber](a, b T) int32   { return boolToI32(a != b) }
func ltOp[T wasmNumber](a, b T) int32   { return boolToI32(a < b) }
func leOp[T wasmNumber](a, b T) int32   { return boolToI32(a <= b) }
func gtOp[T wasmNumber](a, b T) int32   { return boolToI32(a > b) }
func geOp[T wasmNumber](a, b T) int32   { return boolToI32(a >= b) }

func boolToI32(b bool) int32 {
	if b {
		return 1
	}
	return 0
}

// -- integer division and remainder, trapping on divide-by-zero and on
// signed overflow (MinInt / -1) --

func divS32(a, b int32) (int32, error) {
	if b == 0 {
		return 0, trap(TrapIntegerDivideByZero)
	}
	if a == math.MinInt32 && b == -1 {
		return 0, trap(TrapIntegerOverflow)
	}
	return a / b, nil
}

func divS64(a, b int64) (int64, error) {
	if b == 0 {
		return 0, trap(TrapIntegerDivideByZero)
	}
	if a == math.MinInt64 && b == -1 {
		return 0, trap(TrapIntegerOverflow)
	}
	return a / b, nil
}

func divU32(a, b uint32) (uint32, error) {
	if b == 0 {
		return 0, trap(TrapIntegerDivideByZero)
	}
	return a / b, nil
}

func divU64(a, b uint64) (uint64, error) {
	if b == 0 {
		return 0, trap(TrapIntegerDivideByZero)
	}
	return a / b, nil
}

func remS32(a, b int32) (int32, error) {
	if b == 0 {
		return 0, trap(TrapIntegerDivideByZero)
	}
	if a == math.MinInt32 && b == -1 {
		return 0, nil
	}
	return a % b, nil
}

func remS64(a, b int64) (int64, error) {
	if b == 0 {
		return 0, trap(TrapIntegerDivideByZero)
	}
	if a == math.MinInt64 && b == -1 {
		return 0, nil
	}
	return a % b, nil
}

func remU32(a, b uint32) (uint32, error) {
	if b == 0 {
		return 0, trap(TrapIntegerDivideByZero)
	}
	return a % b, nil
}

func remU64(a, b uint64) (uint64, error) {
	if b == 0 {
		return 0, trap(TrapIntegerDivideByZero)
	}
	return a % b, nil
}

// -- bitwise, shift, and rotate --

func and32(a, b uint32) uint32 { return a & b }
func or32(a, b uint32) uint32  { return a | b }
func xor32(a, b uint32) uint32 { return a ^ b }
func and64(a, b uint64) uint64 { return a & b }
func or64(a, b uint64) uint64  { return a | b }
func xor64(a, b uint64) uint64 { return a ^ b }

func shl32(a, b uint32) uint32   { return a << (b & 31) }
func shrS32(a, b int32) int32    { return a >> (uint32(b) & 31) }
func shrU32(a, b uint32) uint32  { return a >> (b & 31) }
func shl64(a, b uint64) uint64   { return a << (b & 63) }
func shrS64(a, b int64) int64    { return a >> (uint64(b) & 63) }
func shrU64(a, b uint64) uint64  { return a >> (b & 63) }

func rotl32(a, b uint32) uint32 { return bits.RotateLeft32(a, int(b&31)) }
func rotr32(a, b uint32) uint32 { return bits.RotateLeft32(a, -int(b&31)) }
func rotl64(a, b uint64) uint64 { return bits.RotateLeft64(a, int(b&63)) }
func rotr64(a, b uint64) uint64 { return bits.RotateLeft64(a, -int(b&63)) }

func clz32(a uint32) uint32    { return uint32(bits.LeadingZeros32(a)) }
func ctz32(a uint32) uint32    { return uint32(bits.TrailingZeros32(a)) }
func popcnt32(a uint32) uint32 { return uint32(bits.OnesCount32(a)) }
func clz64(a uint64) uint64    { return uint64(bits.LeadingZeros64(a)) }
func ctz64(a uint64) uint64    { return uint64(bits.TrailingZeros64(a)) }
func popcnt64(a uint64) uint64 { return uint64(bits.OnesCount64(a)) }

// -- float unary and binary ops --

func fabs[T wasmFloat](a T) T { return T(math.Abs(float64(a))) }
func fneg[T wasmFloat](a T) T { return -a }

func fceil[T wasmFloat](a T) T  { return T(math.Ceil(float64(a))) }
func ffloor[T wasmFloat](a T) T { return T(math.Floor(float64(a))) }
func ftrunc[T wasmFloat](a T) T { return T(math.Trunc(float64(a))) }

// fnearest rounds to the nearest integral value, ties to even.
func fnearest[T wasmFloat](a T) T { return T(math.RoundToEven(float64(a))) }

func fsqrt[T wasmFloat](a T) T { return T(math.Sqrt(float64(a))) }

func fmin[T wasmFloat](a, b T) T {
	x, y := float64(a), float64(b)
	if math.IsNaN(x) || math.IsNaN(y) {
		return T(math.NaN())
	}
	if x == 0 && y == 0 {
		// -0 < 0 for min purposes.
		if math.Signbit(x) {
			return a
		}
		return b
	}
	return T(math.Min(x, y))
}

func fmax[T wasmFloat](a, b T) T {
	x, y := float64(a), float64(b)
	if math.IsNaN(x) || math.IsNaN(y) {
		return T(math.NaN())
	}
	if x == 0 && y == 0 {
		if math.Signbit(x) {
			return b
		}
		return a
	}
	return T(math.Max(x, y))
}

func fcopysign[T wasmFloat](a, b T) T {
	return T(math.Copysign(float64(a), float64(b)))
}

func fdiv[T wasmFloat](a, b T) T { return a / b }

// -- wrapping and extension --

func wrapI64ToI32(a int64) int32 { return int32(a) }

func extendI32SToI64(a int32) int64 { return int64(a) }
func extendI32UToI64(a int32) int64 { return int64(uint32(a)) }

func extend8SToI32(a int32) int32   { return int32(int8(a)) }
func extend16SToI32(a int32) int32  { return int32(int16(a)) }
func extend8SToI64(a int64) int64   { return int64(int8(a)) }
func extend16SToI64(a int64) int64  { return int64(int16(a)) }
func extend32SToI64(a int64) int64  { return int64(int32(a)) }

// -- conversions between integer and float --

func convertI32SToF32(a int32) float32 { return float32(a) }
func convertI32UToF32(a int32) float32 { return float32(uint32(a)) }
func convertI64SToF32(a int64) float32 { return float32(a) }
func convertI64UToF32(a int64) float32 { return float32(uint64(a)) }

func convertI32SToF64(a int32) float64 { return float64(a) }
func convertI32UToF64(a int32) float64 { return float64(uint32(a)) }
func convertI64SToF64(a int64) float64 { return float64(a) }
func convertI64UToF64(a int64) float64 { return float64(uint64(a)) }

func demoteF64ToF32(a float64) float32 { return float32(a) }
func promoteF32ToF64(a float32) float64 { return float64(a) }

func reinterpretF32ToI32(a float32) int32 { return int32(math.Float32bits(a)) }
func reinterpretI32ToF32(a int32) float32 { return math.Float32frombits(uint32(a)) }
func reinterpretF64ToI64(a float64) int64 { return int64(math.Float64bits(a)) }
func reinterpretI64ToF64(a int64) float64 { return math.Float64frombits(uint64(a)) }

// -- trapping truncation to integer --

const (
	maxInt32Plus1  = 1 << 31
	minInt32       = -(1 << 31)
	maxUint32Plus1 = 1 << 32
	maxInt64Plus1  = 1 << 63
	maxUint64Plus1 = 1 << 64
)

func truncF32SToI32(a float32) (int32, error) {
	f := float64(a)
	if math.IsNaN(f) {
		return 0, trap(TrapInvalidConversionToInteger)
	}
	t := math.Trunc(f)
	if t < minInt32 || t >= maxInt32Plus1 {
		return 0, trap(TrapIntegerOverflow)
	}
	return int32(t), nil
}

func truncF32UToI32(a float32) (int32, error) {
	f := float64(a)
	if math.IsNaN(f) {
		return 0, trap(TrapInvalidConversionToInteger)
	}
	t := math.Trunc(f)
	if t < 0 || t >= maxUint32Plus1 {
		return 0, trap(TrapIntegerOverflow)
	}
	return int32(uint32(t)), nil
}

func truncF64SToI32(a float64) (int32, error) {
	if math.IsNaN(a) {
		return 0, trap(TrapInvalidConversionToInteger)
	}
	t := math.Trunc(a)
	if t < minInt32 || t >= maxInt32Plus1 {
		return 0, trap(TrapIntegerOverflow)
	}
	return int32(t), nil
}

func truncF64UToI32(a float64) (int32, error) {
	if math.IsNaN(a) {
		return 0, trap(TrapInvalidConversionToInteger)
	}
	t := math.Trunc(a)
	if t < 0 || t >= maxUint32Plus1 {
		return 0, trap(TrapIntegerOverflow)
	}
	return int32(uint32(t)), nil
}

func truncF32SToI64(a float32) (int64, error) {
	f := float64(a)
	if math.IsNaN(f) {
		return 0, trap(TrapInvalidConversionToInteger)
	}
	t := math.Trunc(f)
	if t < -maxInt64Plus1 || t >= maxInt64Plus1 {
		return 0, trap(TrapIntegerOverflow)
	}
	return int64(t), nil
}

func truncF32UToI64(a float32) (int64, error) {
	f := float64(a)
	if math.IsNaN(f) {
		return 0, trap(TrapInvalidConversionToInteger)
	}
	t := math.Trunc(f)
	if t < 0 || t >= maxUint64Plus1 {
		return 0, trap(TrapIntegerOverflow)
	}
	return int64(uint64(t)), nil
}

func truncF64SToI64(a float64) (int64, error) {
	if math.IsNaN(a) {
		return 0, trap(TrapInvalidConversionToInteger)
	}
	t := math.Trunc(a)
	if t < -maxInt64Plus1 || t >= maxInt64Plus1 {
		return 0, trap(TrapIntegerOverflow)
	}
	return int64(t), nil
}

func truncF64UToI64(a float64) (int64, error) {
	if math.IsNaN(a) {
		return 0, trap(TrapInvalidConversionToInteger)
	}
	t := math.Trunc(a)
	if t < 0 || t >= maxUint64Plus1 {
		return 0, trap(TrapIntegerOverflow)
	}
	return int64(uint64(t)), nil
}
