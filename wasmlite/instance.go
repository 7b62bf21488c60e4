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

import "fmt"

// ExportValue is the value an export resolves to: an address into one of
// the store's four pools, tagged by kind.
type ExportValue struct {
	Kind       ExportKind
	FuncAddr   int
	TableAddr  int
	MemAddr    int
	GlobalAddr int
}

// ModuleInstance is the runtime representation of an instantiated module:
// its type table plus the store addresses of everything it defines or
// imports, and its exports by name.
type ModuleInstance struct {
	store *Store

	Types       []FunctionType
	FuncAddrs   []int
	TableAddrs  []int
	MemAddrs    []int
	GlobalAddrs []int
	Exports     map[string]ExportValue
}

// Export looks up an export by name.
func (mi *ModuleInstance) Export(name string) (ExportValue, bool) {
	e, ok := mi.Exports[name]
	return e, ok
}

// Invoke calls an exported function by name with already-converted Go
// argument values, and returns its results converted back to Go values.
func (mi *ModuleInstance) Invoke(name string, args ...any) ([]any, error) {
	exp, ok := mi.Exports[name]
	if !ok || exp.Kind != ExportFunc {
		return nil, &LinkError{Detail: fmt.Sprintf("no exported function %q", name)}
	}
	fn := mi.store.Funcs[exp.FuncAddr]
	ft := fn.Type()
	if len(args) != len(ft.Params) {
		return nil, &LinkError{Detail: fmt.Sprintf("function %q expects %d arguments, got %d", name, len(ft.Params), len(args))}
	}
	vals := make([]value, len(args))
	for i, a := range args {
		v, err := goToValue(ft.Params[i], a)
		if err != nil {
			return nil, err
		}
		vals[i] = v
	}
	results, err := invoke(mi.store, exp.FuncAddr, vals)
	if err != nil {
		return nil, err
	}
	out := make([]any, len(results))
	for i, r := range results {
		out[i] = valueToGo(ft.Results[i], r)
	}
	return out, nil
}

// GetMemory returns the i'th memory defined or imported by this module.
func (mi *ModuleInstance) GetMemory(i uint32) (*Memory, error) {
	if int(i) >= len(mi.MemAddrs) {
		return nil, &LinkError{Detail: "no such memory"}
	}
	return mi.store.Memories[mi.MemAddrs[i]], nil
}

// GetTable returns the i'th table defined or imported by this module.
func (mi *ModuleInstance) GetTable(i uint32) (*Table, error) {
	if int(i) >= len(mi.TableAddrs) {
		return nil, &LinkError{Detail: "no such table"}
	}
	return mi.store.Tables[mi.TableAddrs[i]], nil
}

// GetGlobal returns the current value of the i'th global as a Go value.
func (mi *ModuleInstance) GetGlobal(i uint32) (any, error) {
	if int(i) >= len(mi.GlobalAddrs) {
		return nil, &LinkError{Detail: "no such global"}
	}
	g := mi.store.Globals[mi.GlobalAddrs[i]]
	return valueToGo(g.Type.ValueType, g.Value), nil
}

// SetGlobal sets the i'th global's value, failing if it is not mutable.
func (mi *ModuleInstance) SetGlobal(i uint32, v any) error {
	if int(i) >= len(mi.GlobalAddrs) {
		return &LinkError{Detail: "no such global"}
	}
	g := mi.store.Globals[mi.GlobalAddrs[i]]
	if !g.Type.Mutable {
		return &LinkError{Detail: "global is immutable"}
	}
	nv, err := goToValue(g.Type.ValueType, v)
	if err != nil {
		return err
	}
	g.Value = nv
	return nil
}

// goToValue converts a host-supplied Go value into a runtime value,
// checking it against the expected static type.
func goToValue(vt ValueType, v any) (value, error) {
	nt, _ := vt.(NumberType)
	switch nt {
	case I32:
		switch x := v.(type) {
		case int32:
			return i32Value(x), nil
		case uint32:
			return i32Value(int32(x)), nil
		case int:
			return i32Value(int32(x)), nil
		}
	case I64:
		switch x := v.(type) {
		case int64:
			return i64Value(x), nil
		case uint64:
			return i64Value(int64(x)), nil
		case int:
			return i64Value(int64(x)), nil
		}
	case F32:
		if x, ok := v.(float32); ok {
			return f32Value(x), nil
		}
	case F64:
		switch x := v.(type) {
		case float64:
			return f64Value(x), nil
		case float32:
			return f64Value(float64(x)), nil
		}
	}
	return 0, &LinkError{Detail: fmt.Sprintf("argument type mismatch: expected %v, got %T", vt, v)}
}

// valueToGo converts a runtime value back into a host-facing Go value of
// the natural type for vt.
func valueToGo(vt ValueType, v value) any {
	switch vt.(NumberType) {
	case I32:
		return v.i32()
	case I64:
		return v.i64()
	case F32:
		return v.f32()
	case F64:
		return v.f64()
	default:
		return nil
	}
}
