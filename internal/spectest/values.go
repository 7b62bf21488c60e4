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

package spectest

import (
	"fmt"
	"math"
	"strconv"
)

// decodeValue converts one JSON test value into the Go value wasmlite's
// embedding API expects, using the upstream test suite's convention of
// encoding every value as the decimal string of its raw bit pattern (this
// preserves exact NaN payloads and signed-zero across JSON, which a
// human-readable number literal would lose).
func decodeValue(v Value) (any, error) {
	switch v.Type {
	case "i32":
		bits, err := strconv.ParseUint(v.Value, 10, 32)
		if err != nil {
			return nil, fmt.Errorf("malformed i32 value %q: %w", v.Value, err)
		}
		return int32(uint32(bits)), nil
	case "i64":
		bits, err := strconv.ParseUint(v.Value, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("malformed i64 value %q: %w", v.Value, err)
		}
		return int64(bits), nil
	case "f32":
		bits, err := strconv.ParseUint(v.Value, 10, 32)
		if err != nil {
			return nil, fmt.Errorf("malformed f32 value %q: %w", v.Value, err)
		}
		return math.Float32frombits(uint32(bits)), nil
	case "f64":
		bits, err := strconv.ParseUint(v.Value, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("malformed f64 value %q: %w", v.Value, err)
		}
		return math.Float64frombits(bits), nil
	default:
		return nil, fmt.Errorf("unsupported value type %q", v.Type)
	}
}

// valuesEqual compares two decoded values bitwise for integers and by bit
// pattern for floats, so that assert_return's NaN-payload-sensitive
// expectations are honored rather than silently passing NaN != NaN.
func valuesEqual(want, got any) bool {
	switch w := want.(type) {
	case int32:
		g, ok := got.(int32)
		return ok && w == g
	case int64:
		g, ok := got.(int64)
		return ok && w == g
	case float32:
		g, ok := got.(float32)
		return ok && math.Float32bits(w) == math.Float32bits(g)
	case float64:
		g, ok := got.(float64)
		return ok && math.Float64bits(w) == math.Float64bits(g)
	default:
		return false
	}
}
