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

// Global is a global variable instance: a boxed, mutability-tagged value.
type Global struct {
	Type  GlobalType
	Value value
}

// FunctionInstance is either a WasmFunction (compiled from a decoded
// Function body) or a HostFunction (supplied by the embedder). Both are
// addressed the same way in the store, so the interpreter never needs to
// know which kind it is calling until the moment of invocation.
type FunctionInstance interface {
	Type() FunctionType
}

// WasmFunction is a function instance defined by the running module itself.
type WasmFunction struct {
	FuncType FunctionType
	Module   *ModuleInstance
	Code     *Function
}

func (f *WasmFunction) Type() FunctionType { return f.FuncType }

// HostFunc is the signature an embedder implements to provide a host
// function: it receives already-typechecked arguments and returns
// already-typed results, or an error (ordinarily a *Trap, to abort the
// calling invocation without violating the embedding boundary).
type HostFunc func(args []any) ([]any, error)

// HostFunction is a function instance supplied by the host embedding the
// runtime, rather than compiled from a module's code section.
type HostFunction struct {
	FuncType FunctionType
	Fn       HostFunc
}

func (f *HostFunction) Type() FunctionType { return f.FuncType }

// Store is the append-only collection of every function, table, memory,
// and global instance allocated across every module ever instantiated
// against it. Addresses are dense indices into these slices, never freed
// and never reused.
type Store struct {
	Funcs   []FunctionInstance
	Tables  []*Table
	Memories []*Memory
	Globals []*Global
}

// NewStore allocates an empty store, ready to host one or more module
// instances.
func NewStore() *Store {
	return &Store{}
}

func (s *Store) addFunc(f FunctionInstance) int {
	s.Funcs = append(s.Funcs, f)
	return len(s.Funcs) - 1
}

func (s *Store) addTable(t *Table) int {
	s.Tables = append(s.Tables, t)
	return len(s.Tables) - 1
}

func (s *Store) addMemory(m *Memory) int {
	s.Memories = append(s.Memories, m)
	return len(s.Memories) - 1
}

func (s *Store) addGlobal(g *Global) int {
	s.Globals = append(s.Globals, g)
	return len(s.Globals) - 1
}
