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
	"testing"

	"github.com/stretchr/testify/require"
)

func TestIntegerWraparound(t *testing.T) {
	require.Equal(t, int32(1), addOp(int32(-1), int32(2)))

	// (2^32-1) +i32 1 = 0
	require.Equal(t, int32(0), addOp(int32(-1), int32(1)))
}

func TestDivSTrapsOnOverflow(t *testing.T) {
	_, err := divS32(math.MinInt32, -1)
	trap, ok := AsTrap(err)
	require.True(t, ok)
	require.Equal(t, TrapIntegerOverflow, trap.Kind)
}

func TestDivSTrapsOnDivideByZero(t *testing.T) {
	_, err := divS32(10, 0)
	trap, ok := AsTrap(err)
	require.True(t, ok)
	require.Equal(t, TrapIntegerDivideByZero, trap.Kind)
}

func TestRemSOverflowReturnsZero(t *testing.T) {
	got, err := remS32(math.MinInt32, -1)
	require.NoError(t, err)
	require.Equal(t, int32(0), got)
}

func TestShiftAmountIsTakenModuloWidth(t *testing.T) {
	// x shr_u n = x shr_u (n mod 32)
	require.Equal(t, shrU32(8, 1), shrU32(8, 33))
	require.Equal(t, shl32(1, 3), shl32(1, 35))
}

func TestFloatMinMaxSignedZero(t *testing.T) {
	require.Equal(t, math.Float64bits(0), math.Float64bits(fmin(0.0, 0.0)))
	require.Equal(t, math.Float64bits(math.Copysign(0, -1)), math.Float64bits(fmin(0.0, math.Copysign(0, -1))))
	require.Equal(t, math.Float64bits(0), math.Float64bits(fmax(0.0, math.Copysign(0, -1))))
}

func TestFNearestRoundsHalfToEven(t *testing.T) {
	require.Equal(t, 2.0, fnearest(2.5))
	require.Equal(t, 2.0, fnearest(1.5))
	require.Equal(t, -2.0, fnearest(-2.5))
}

func TestTruncF64SToI32Traps(t *testing.T) {
	_, err := truncF64SToI32(math.NaN())
	trap, ok := AsTrap(err)
	require.True(t, ok)
	require.Equal(t, TrapInvalidConversionToInteger, trap.Kind)

	_, err = truncF64SToI32(1e30)
	trap, ok = AsTrap(err)
	require.True(t, ok)
	require.Equal(t, TrapIntegerOverflow, trap.Kind)
}

func TestReinterpretRoundTrip(t *testing.T) {
	require.Equal(t, float32(1.5), reinterpretI32ToF32(reinterpretF32ToI32(1.5)))
	require.Equal(t, 1.5, reinterpretI64ToF64(reinterpretF64ToI64(1.5)))
}

func TestSignExtension(t *testing.T) {
	require.Equal(t, int32(-1), extend8SToI32(0xFF))
	require.Equal(t, int32(0x7F), extend8SToI32(0x7F))
	require.Equal(t, int64(-1), extend32SToI64(-1))
}
