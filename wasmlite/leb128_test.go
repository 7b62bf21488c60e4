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

func byteReader(b []byte) func() (byte, error) {
	i := 0
	return func() (byte, error) {
		if i >= len(b) {
			return 0, errUnexpectedEOF
		}
		v := b[i]
		i++
		return v, nil
	}
}

func TestReadULEB128(t *testing.T) {
	tests := []struct {
		name  string
		bytes []byte
		want  uint64
	}{
		{"zero", []byte{0x00}, 0},
		{"one byte", []byte{0x7F}, 127},
		{"three bytes", []byte{0xE5, 0x8E, 0x26}, 624485},
		{"max u32", []byte{0xFF, 0xFF, 0xFF, 0xFF, 0x0F}, 0xFFFFFFFF},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got, n, err := readULEB128(byteReader(tc.bytes), 32)
			require.NoError(t, err)
			require.Equal(t, tc.want, got)
			require.Equal(t, len(tc.bytes), n)
		})
	}
}

func TestReadULEB128TooLong(t *testing.T) {
	// The fifth byte carries no bits beyond 32 but still sets the
	// continuation bit, so a sixth byte is read.
	_, _, err := readULEB128(byteReader([]byte{0x80, 0x80, 0x80, 0x80, 0x80, 0x00}), 32)
	require.ErrorIs(t, err, errIntRepresentationTooLong)
}

func TestReadULEB128OverflowsWidth(t *testing.T) {
	// Fifth byte carries bits beyond the 32-bit destination width.
	_, _, err := readULEB128(byteReader([]byte{0xFF, 0xFF, 0xFF, 0xFF, 0x1F}), 32)
	require.ErrorIs(t, err, errIntegerTooLarge)
}

func TestReadSLEB128(t *testing.T) {
	tests := []struct {
		name  string
		bytes []byte
		want  int64
	}{
		{"zero", []byte{0x00}, 0},
		{"minus one", []byte{0x7F}, -1},
		{"127", []byte{0xFF, 0x00}, 127},
		{"-128", []byte{0x80, 0x7F}, -128},
		{"624485", []byte{0xE5, 0x8E, 0x26}, 624485},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got, n, err := readSLEB128(byteReader(tc.bytes), 32)
			require.NoError(t, err)
			require.Equal(t, tc.want, got)
			require.Equal(t, len(tc.bytes), n)
		})
	}
}

func TestEncodeULEB128RoundTrip(t *testing.T) {
	for _, v := range []uint64{0, 1, 127, 128, 624485, 0xFFFFFFFF, 1 << 40} {
		buf := encodeULEB128(nil, v)
		got, n, err := readULEB128(byteReader(buf), 64)
		require.NoError(t, err)
		require.Equal(t, v, got)
		require.Equal(t, len(buf), n)
	}
}

func TestEncodeSLEB128RoundTrip(t *testing.T) {
	for _, v := range []int64{0, -1, 1, 127, -128, 624485, -624485, 1 << 40, -(1 << 40)} {
		buf := encodeSLEB128(nil, v)
		got, n, err := readSLEB128(byteReader(buf), 64)
		require.NoError(t, err)
		require.Equal(t, v, got)
		require.Equal(t, len(buf), n)
	}
}

// TestEncodeULEB128IsCanonical checks that the encoder emits the shortest
// representation, with no continuation bit on a value that fits one byte.
func TestEncodeULEB128IsCanonical(t *testing.T) {
	buf := encodeULEB128(nil, 127)
	require.Equal(t, []byte{0x7F}, buf, "127 fits in one byte and must not carry a continuation bit")
}
