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

// Package wasmlite implements a standalone WebAssembly 1.0 runtime: a
// binary decoder, a static validator, and a stack-based execution engine,
// plus the minimal host-facing embedding API needed to load, link, and
// invoke a module.
package wasmlite

import "slices"

// ValueType classifies the values that WebAssembly code computes with.
// In the Wasm 1.0 subset implemented here it is always a NumberType.
type ValueType interface {
	isValueType()
}

// NumberType classifies numeric values.
// See https://webassembly.github.io/spec/core/syntax/types.html#number-types.
type NumberType int

const (
	I32 NumberType = 0x7f
	I64 NumberType = 0x7e
	F32 NumberType = 0x7d
	F64 NumberType = 0x7c
)

func (NumberType) isValueType() {}

func (t NumberType) String() string {
	switch t {
	case I32:
		return "i32"
	case I64:
		return "i64"
	case F32:
		return "f32"
	case F64:
		return "f64"
	default:
		return "invalid"
	}
}

// bottomType is the validator's polymorphic "unknown" value type: it
// unifies with anything. It never appears outside the validator.
type bottomType struct{}

func (bottomType) isValueType() {}

// FuncRefType classifies table entries. Wasm 1.0 has exactly one reference
// type, funcref, used only by tables; it is not a first-class value type
// that can appear on the operand stack.
type FuncRefType struct{}

// Limits bounds the size of a table or memory, in the unit appropriate to
// each (elements for tables, pages for memories).
// See https://webassembly.github.io/spec/core/binary/types.html#limits.
type Limits struct {
	Min uint32
	Max *uint32
}

// subsumes reports whether the limits actually provided by an import
// satisfy the limits required by the importing module:
// provided.Min >= required.Min, and if required.Max is set, provided.Max
// must be set and <= required.Max.
func (required Limits) subsumes(provided Limits) bool {
	if provided.Min < required.Min {
		return false
	}
	if required.Max != nil {
		if provided.Max == nil || *provided.Max > *required.Max {
			return false
		}
	}
	return true
}

// TableType describes a table: its element kind (always funcref in Wasm
// 1.0) and its size limits.
type TableType struct {
	Limits Limits
}

// MemoryType describes a memory's size limits, in units of 64KiB pages.
type MemoryType struct {
	Limits Limits
}

// GlobalType describes a global variable's value type and mutability.
type GlobalType struct {
	ValueType ValueType
	Mutable   bool
}

// FunctionType classifies a function's signature: a parameter sequence
// mapped to a result sequence (result length is at most 1 in Wasm 1.0).
type FunctionType struct {
	Params  []ValueType
	Results []ValueType
}

// Equal reports whether two function types have identical parameter and
// result sequences.
func (ft FunctionType) Equal(other FunctionType) bool {
	return slices.Equal(ft.Params, other.Params) &&
		slices.Equal(ft.Results, other.Results)
}

func (ft FunctionType) String() string {
	s := "("
	for i, p := range ft.Params {
		if i > 0 {
			s += ", "
		}
		s += p.(NumberType).String()
	}
	s += ") -> ("
	for i, r := range ft.Results {
		if i > 0 {
			s += ", "
		}
		s += r.(NumberType).String()
	}
	return s + ")"
}

// BlockType is the type annotation on a structured control instruction. It
// is either empty, or a single result value type; Wasm 1.0 has no
// multi-value block types and no block parameters.
type BlockType struct {
	// HasResult reports whether Result is meaningful.
	HasResult bool
	Result    ValueType
}

// Results returns the block type's result sequence.
func (bt BlockType) Results() []ValueType {
	if !bt.HasResult {
		return nil
	}
	return []ValueType{bt.Result}
}
