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

const (
	continuationBit = 0x80
	payloadMask     = 0x7F
	signBit         = 0x40
)

// readULEB128 decodes an unsigned LEB128 integer of at most maxBits bits,
// returning the value and the number of bytes consumed. It fails if the
// continuation bit is set on the byte at which maxBytes is exhausted, or if
// the high-order bits of the final byte would overflow maxBits.
func readULEB128(readByte func() (byte, error), maxBits int) (uint64, int, error) {
	var result uint64
	var shift uint
	bytesRead := 0
	maxBytes := (maxBits + 6) / 7

	for {
		b, err := readByte()
		if err != nil {
			return 0, bytesRead, err
		}
		bytesRead++
		if bytesRead > maxBytes {
			return 0, bytesRead, errIntRepresentationTooLong
		}

		payload := uint64(b & payloadMask)
		if bytesRead == maxBytes {
			// The final permitted byte may only carry the remaining bits of
			// the destination width; anything above that overflows.
			remainingBits := maxBits - int(shift)
			if remainingBits < 7 && payload>>uint(remainingBits) != 0 {
				return 0, bytesRead, errIntegerTooLarge
			}
		}
		result |= payload << shift

		if b&continuationBit == 0 {
			return result, bytesRead, nil
		}
		shift += 7
	}
}

// readSLEB128 decodes a signed LEB128 integer of at most maxBits bits,
// sign-extended into a 64-bit result, returning the value and the number of
// bytes consumed.
func readSLEB128(readByte func() (byte, error), maxBits int) (int64, int, error) {
	var result int64
	var shift uint
	var b byte
	var err error
	bytesRead := 0
	maxBytes := (maxBits + 6) / 7

	for {
		b, err = readByte()
		if err != nil {
			return 0, bytesRead, err
		}
		bytesRead++
		if bytesRead > maxBytes {
			return 0, bytesRead, errIntRepresentationTooLong
		}

		if bytesRead == maxBytes {
			remainingBits := maxBits - int(shift)
			payload := int64(b & payloadMask)
			// The unused high bits of the final byte must be a sign
			// extension of the last significant bit that fits.
			if remainingBits < 7 {
				validTop := payload >> uint(remainingBits)
				signBitOfResult := (payload >> uint(remainingBits-1)) & 1
				var want int64
				if signBitOfResult != 0 {
					want = (int64(1) << uint(7-remainingBits)) - 1
				}
				if validTop != want {
					return 0, bytesRead, errIntegerTooLarge
				}
			}
		}

		result |= int64(b&payloadMask) << shift
		shift += 7

		if b&continuationBit == 0 {
			break
		}
	}

	if shift < 64 && b&signBit != 0 {
		result |= -1 << shift
	}

	return result, bytesRead, nil
}

// encodeULEB128 appends the canonical (shortest) unsigned LEB128 encoding
// of v to buf and returns the result.
func encodeULEB128(buf []byte, v uint64) []byte {
	for {
		b := byte(v & payloadMask)
		v >>= 7
		if v != 0 {
			buf = append(buf, b|continuationBit)
		} else {
			buf = append(buf, b)
			return buf
		}
	}
}

// encodeSLEB128 appends the canonical (shortest) signed LEB128 encoding of
// v to buf and returns the result.
func encodeSLEB128(buf []byte, v int64) []byte {
	for {
		b := byte(v & payloadMask)
		v >>= 7
		signBitSet := b&signBit != 0
		done := (v == 0 && !signBitSet) || (v == -1 && signBitSet)
		if done {
			buf = append(buf, b)
			return buf
		}
		buf = append(buf, b|continuationBit)
	}
}
