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
	"errors"
	"fmt"
)

// DecodeError reports malformed module bytes: bad magic/version, truncated
// LEB128, an unknown opcode, a section-order or duplicate-section
// violation, or invalid UTF-8 in a name.
type DecodeError struct {
	Offset int
	Detail string
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("decode error at offset %d: %s", e.Offset, e.Detail)
}

// ValidationError reports a well-formed but ill-typed module: a stack type
// mismatch, an out-of-range index, a mutability mismatch, more than one
// table or memory, bad alignment, or a wrongly typed start function.
type ValidationError struct {
	// FuncIndex is the index of the offending function, or -1 for a
	// whole-module check.
	FuncIndex int
	Detail    string
}

func (e *ValidationError) Error() string {
	if e.FuncIndex < 0 {
		return fmt.Sprintf("validation error: %s", e.Detail)
	}
	return fmt.Sprintf("validation error in function %d: %s", e.FuncIndex, e.Detail)
}

// LinkError reports a failure at instantiation: a missing import, an
// import type mismatch, or limits that are not subsumed.
type LinkError struct {
	Detail string
}

func (e *LinkError) Error() string {
	return fmt.Sprintf("link error: %s", e.Detail)
}

// TrapKind classifies why an invocation trapped.
type TrapKind int

const (
	TrapUnreachable TrapKind = iota
	TrapIntegerDivideByZero
	TrapIntegerOverflow
	TrapInvalidConversionToInteger
	TrapMemoryOutOfBounds
	TrapTableOutOfBounds
	TrapUninitializedElement
	TrapIndirectCallTypeMismatch
	TrapCallStackExhausted
	TrapElementSegmentOutOfBounds
	TrapDataSegmentOutOfBounds
)

func (k TrapKind) String() string {
	switch k {
	case TrapUnreachable:
		return "unreachable"
	case TrapIntegerDivideByZero:
		return "integer divide by zero"
	case TrapIntegerOverflow:
		return "integer overflow"
	case TrapInvalidConversionToInteger:
		return "invalid conversion to integer"
	case TrapMemoryOutOfBounds:
		return "out of bounds memory access"
	case TrapTableOutOfBounds:
		return "out of bounds table access"
	case TrapUninitializedElement:
		return "uninitialized element"
	case TrapIndirectCallTypeMismatch:
		return "indirect call type mismatch"
	case TrapCallStackExhausted:
		return "call stack exhausted"
	case TrapElementSegmentOutOfBounds:
		return "element segment does not fit"
	case TrapDataSegmentOutOfBounds:
		return "data segment does not fit"
	default:
		return "trap"
	}
}

// Trap represents an abnormal, but strictly terminal, execution outcome
// that unwinds exactly one invocation.
type Trap struct {
	Kind TrapKind
}

func (t *Trap) Error() string {
	return t.Kind.String()
}

func trap(kind TrapKind) error {
	return &Trap{Kind: kind}
}

// AsTrap reports whether err is (or wraps) a *Trap, returning it if so.
func AsTrap(err error) (*Trap, bool) {
	var t *Trap
	ok := errors.As(err, &t)
	return t, ok
}
