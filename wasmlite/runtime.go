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

import "go.uber.org/zap"

// Runtime is the top-level embedding surface: decode, validate, store
// allocation, instantiation, export listing, and invocation, wired
// together with structured logging via zap. It also holds a Config, which
// invocation does not consult (see Config).
type Runtime struct {
	config Config
	logger *zap.Logger
}

// NewRuntime creates a Runtime with the default configuration and a no-op
// logger.
func NewRuntime() *Runtime {
	return &Runtime{config: DefaultConfig(), logger: zap.NewNop()}
}

// WithConfig returns a copy of the runtime using the given configuration.
func (r *Runtime) WithConfig(c Config) *Runtime {
	clone := *r
	clone.config = c
	return &clone
}

// WithLogger returns a copy of the runtime using the given logger. A nil
// logger is treated as a no-op logger.
func (r *Runtime) WithLogger(l *zap.Logger) *Runtime {
	clone := *r
	clone.logger = loggerOrNop(l)
	return &clone
}

// DecodeModule parses a Wasm binary into its abstract syntax tree, without
// validating it.
func (r *Runtime) DecodeModule(data []byte) (*Module, error) {
	m, err := Decode(data)
	if err != nil {
		r.logger.Debug("decode failed", zap.Error(err))
		return nil, err
	}
	r.logger.Debug("decoded module",
		zap.Int("types", len(m.Types)), zap.Int("funcs", len(m.Funcs)),
		zap.Int("imports", len(m.Imports)), zap.Int("exports", len(m.Exports)))
	return m, nil
}

// ValidateModule statically type-checks a decoded module.
func (r *Runtime) ValidateModule(m *Module) error {
	if err := Validate(m); err != nil {
		r.logger.Debug("validation failed", zap.Error(err))
		return err
	}
	return nil
}

// ModuleExports lists a decoded module's export names and kinds, without
// requiring instantiation.
func ModuleExports(m *Module) []Export {
	return m.Exports
}

// NewStore allocates a fresh, empty store.
func (r *Runtime) NewStore() *Store {
	return NewStore()
}

// Instantiate decodes, validates, and instantiates a module against store,
// resolving its imports and running its start function. It composes
// DecodeModule, ValidateModule, and the package-level Instantiate, wired
// to this runtime's logging.
func (r *Runtime) Instantiate(store *Store, data []byte, imports Imports) (*ModuleInstance, error) {
	m, err := r.DecodeModule(data)
	if err != nil {
		return nil, err
	}
	if err := r.ValidateModule(m); err != nil {
		return nil, err
	}
	mi, err := Instantiate(store, m, imports)
	if err != nil {
		r.logger.Warn("instantiation failed", zap.Error(err))
		return nil, err
	}
	r.logger.Debug("instantiated module", zap.Int("exports", len(mi.Exports)))
	return mi, nil
}

// InvokeExport is a convenience wrapper equivalent to
// mi.Invoke(name, args...), logging traps at Warn level.
func (r *Runtime) InvokeExport(mi *ModuleInstance, name string, args ...any) ([]any, error) {
	results, err := mi.Invoke(name, args...)
	if t, ok := AsTrap(err); ok {
		r.logger.Warn("trap", zap.String("function", name), zap.String("kind", t.Kind.String()))
	}
	return results, err
}

// ModuleImportBuilder assembles a host import object fluently, matching
// the shape Instantiate expects: module name -> member name -> value.
type ModuleImportBuilder struct {
	moduleName string
	members    map[string]any
}

// NewModuleImportBuilder starts building the import namespace named
// moduleName.
func NewModuleImportBuilder(moduleName string) *ModuleImportBuilder {
	return &ModuleImportBuilder{moduleName: moduleName, members: map[string]any{}}
}

// AddHostFunc registers a host function of the given type under name.
func (b *ModuleImportBuilder) AddHostFunc(name string, ft FunctionType, fn HostFunc) *ModuleImportBuilder {
	b.members[name] = &HostFunction{FuncType: ft, Fn: fn}
	return b
}

// AddMemory registers a memory under name.
func (b *ModuleImportBuilder) AddMemory(name string, m *Memory) *ModuleImportBuilder {
	b.members[name] = m
	return b
}

// AddTable registers a table under name.
func (b *ModuleImportBuilder) AddTable(name string, t *Table) *ModuleImportBuilder {
	b.members[name] = t
	return b
}

// AddGlobal registers a global under name.
func (b *ModuleImportBuilder) AddGlobal(name string, g *Global) *ModuleImportBuilder {
	b.members[name] = g
	return b
}

// AddModuleExports re-exports every export of an already-instantiated
// module under this namespace, letting one module's instance satisfy
// another module's imports directly, as the embedding API's module-linking
// convenience.
func (b *ModuleImportBuilder) AddModuleExports(mi *ModuleInstance) *ModuleImportBuilder {
	for name, exp := range mi.Exports {
		switch exp.Kind {
		case ExportFunc:
			b.members[name] = mi.store.Funcs[exp.FuncAddr]
		case ExportTable:
			b.members[name] = mi.store.Tables[exp.TableAddr]
		case ExportMemory:
			b.members[name] = mi.store.Memories[exp.MemAddr]
		case ExportGlobal:
			b.members[name] = mi.store.Globals[exp.GlobalAddr]
		}
	}
	return b
}

// Build finalizes the namespace into the shape Instantiate expects.
func (b *ModuleImportBuilder) Build() Imports {
	return Imports{b.moduleName: b.members}
}

// MergeImports combines several import namespaces, later entries in the
// same module name overriding earlier ones. Useful when a module needs
// members contributed by more than one ModuleImportBuilder for the same
// namespace.
func MergeImports(all ...Imports) Imports {
	merged := Imports{}
	for _, imps := range all {
		for modName, members := range imps {
			if merged[modName] == nil {
				merged[modName] = map[string]any{}
			}
			for name, v := range members {
				merged[modName][name] = v
			}
		}
	}
	return merged
}
