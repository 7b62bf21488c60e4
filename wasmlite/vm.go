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

// The execution engine walks the decoded instruction tree directly rather
// than a flat opcode stream with precomputed jump offsets: since the AST is
// already a tree (see ast.go), the natural "instruction pointer" for a
// structured control construct is Go's own call stack recursing into that
// construct's body.
//
// Three explicit pieces of state stand in for the abstract machine's
// value/label/frame stacks: the operand stack (vs), the active-block stack
// (blockStack, one entry per enclosing block/loop/if plus one synthetic
// entry for the function itself), and the Go call stack itself standing in
// for the frame stack, one execCtx.depth increment per nested call.

type signalKind int

const (
	sigNone signalKind = iota
	sigBranch
	sigReturn
)

// signal is how a branch or return communicates, back up through the
// recursive tree walk, how many enclosing block scopes remain to unwind.
type signal struct {
	kind  signalKind
	depth uint32
}

// blockFrame records what a branch targeting this scope must do to the
// operand stack: how many values to preserve (arity) and the stack height
// to unwind to.
type blockFrame struct {
	isLoop bool
	arity  int
	height int
}

// execCtx is shared by every activation record in one call tree, tracking
// the call-stack depth budget across nested calls.
type execCtx struct {
	store    *Store
	depth    int
	maxDepth int
}

// executor is one function activation: its locals, its private operand
// stack, and the stack of block scopes currently open within its body.
type executor struct {
	ctx        *execCtx
	module     *ModuleInstance
	locals     []value
	vs         []value
	blockStack []blockFrame
}

func (e *executor) push(v value) { e.vs = append(e.vs, v) }

func (e *executor) pop() value {
	v := e.vs[len(e.vs)-1]
	e.vs = e.vs[:len(e.vs)-1]
	return v
}

func (e *executor) popN(n int) []value {
	if n == 0 {
		return nil
	}
	out := append([]value(nil), e.vs[len(e.vs)-n:]...)
	e.vs = e.vs[:len(e.vs)-n]
	return out
}

// invoke calls the function at funcAddr in store with already-typed
// argument values, and returns its results. It starts a fresh call-depth
// budget, and is used by the embedding API (ModuleInstance.Invoke) and for
// the start function; call/call_indirect go through invokeWithCtx so they
// share their caller's budget.
func invoke(store *Store, funcAddr int, args []value) ([]value, error) {
	ctx := &execCtx{store: store, maxDepth: DefaultConfig().MaxCallStackDepth}
	return invokeWithCtx(ctx, funcAddr, args)
}

func invokeWithCtx(ctx *execCtx, funcAddr int, args []value) ([]value, error) {
	fn := ctx.store.Funcs[funcAddr]
	switch f := fn.(type) {
	case *HostFunction:
		return invokeHost(f, args)
	case *WasmFunction:
		return invokeWasm(ctx, f, args)
	default:
		panic("unknown function instance kind")
	}
}

func invokeHost(f *HostFunction, args []value) ([]value, error) {
	in := make([]any, len(args))
	for i, a := range args {
		in[i] = valueToGo(f.FuncType.Params[i], a)
	}
	out, err := f.Fn(in)
	if err != nil {
		return nil, err
	}
	results := make([]value, len(out))
	for i, o := range out {
		v, err := goToValue(f.FuncType.Results[i], o)
		if err != nil {
			return nil, err
		}
		results[i] = v
	}
	return results, nil
}

func invokeWasm(ctx *execCtx, f *WasmFunction, args []value) ([]value, error) {
	ctx.depth++
	defer func() { ctx.depth-- }()
	if ctx.depth > ctx.maxDepth {
		return nil, trap(TrapCallStackExhausted)
	}

	locals := make([]value, len(args)+len(f.Code.Locals))
	copy(locals, args)
	for i := len(args); i < len(locals); i++ {
		locals[i] = defaultValue(f.Code.Locals[i-len(args)])
	}

	e := &executor{ctx: ctx, module: f.Module, locals: locals}
	resultArity := len(f.FuncType.Results)
	e.blockStack = append(e.blockStack, blockFrame{arity: resultArity, height: 0})

	sig, err := e.execInstrs(f.Code.Body)
	if err != nil {
		return nil, err
	}
	if sig.kind != sigNone && sig.depth != 0 {
		panic("unreachable: control signal escaped function scope")
	}
	return e.popN(resultArity), nil
}

func (e *executor) memory() (*Memory, error) {
	return e.module.GetMemory(0)
}

func (e *executor) table() (*Table, error) {
	return e.module.GetTable(0)
}

func (e *executor) execInstrs(instrs []Instruction) (signal, error) {
	for _, instr := range instrs {
		sig, err := e.execOne(instr)
		if err != nil {
			return signal{}, err
		}
		if sig.kind != sigNone {
			return sig, nil
		}
	}
	return signal{}, nil
}

// execBlockLike runs a block or loop body, translating a branch that
// targets this scope into either loop restart (isLoop) or fallthrough.
func (e *executor) execBlockLike(instr Instruction, isLoop bool) (signal, error) {
	arity := 0
	if !isLoop {
		arity = len(instr.BlockType.Results())
	}
	e.blockStack = append(e.blockStack, blockFrame{isLoop: isLoop, arity: arity, height: len(e.vs)})
	defer func() { e.blockStack = e.blockStack[:len(e.blockStack)-1] }()

	for {
		sig, err := e.execInstrs(instr.Then)
		if err != nil {
			return signal{}, err
		}
		switch {
		case sig.kind == sigNone:
			return signal{}, nil
		case sig.kind == sigReturn:
			return signal{kind: sigReturn, depth: sig.depth - 1}, nil
		case sig.depth == 0:
			if isLoop {
				continue
			}
			return signal{}, nil
		default:
			return signal{kind: sig.kind, depth: sig.depth - 1}, nil
		}
	}
}

func (e *executor) execIf(instr Instruction) (signal, error) {
	cond := e.pop().i32()
	arity := len(instr.BlockType.Results())
	e.blockStack = append(e.blockStack, blockFrame{arity: arity, height: len(e.vs)})
	defer func() { e.blockStack = e.blockStack[:len(e.blockStack)-1] }()

	body := instr.Else
	if cond != 0 {
		body = instr.Then
	}
	sig, err := e.execInstrs(body)
	if err != nil {
		return signal{}, err
	}
	switch {
	case sig.kind == sigNone:
		return signal{}, nil
	case sig.kind == sigReturn:
		return signal{kind: sigReturn, depth: sig.depth - 1}, nil
	case sig.depth == 0:
		return signal{}, nil
	default:
		return signal{kind: sig.kind, depth: sig.depth - 1}, nil
	}
}

// execBr truncates the operand stack down to the target label's height,
// preserving the label's arity worth of values, and returns the unwind
// signal for the caller to propagate.
func (e *executor) execBr(labelIndex uint32) signal {
	frame := e.blockStack[len(e.blockStack)-1-int(labelIndex)]
	preserved := e.popN(frame.arity)
	e.vs = e.vs[:frame.height]
	e.vs = append(e.vs, preserved...)
	return signal{kind: sigBranch, depth: labelIndex}
}

func (e *executor) execOne(instr Instruction) (signal, error) {
	switch instr.Op {
	case OpUnreachable:
		return signal{}, trap(TrapUnreachable)
	case OpNop:
		return signal{}, nil

	case OpBlock:
		return e.execBlockLike(instr, false)
	case OpLoop:
		return e.execBlockLike(instr, true)
	case OpIf:
		return e.execIf(instr)

	case OpBr:
		return e.execBr(instr.LabelIndex), nil
	case OpBrIf:
		cond := e.pop().i32()
		if cond != 0 {
			return e.execBr(instr.LabelIndex), nil
		}
		return signal{}, nil
	case OpBrTable:
		idx := uint32(e.pop().i32())
		label := instr.DefaultLabel
		if idx < uint32(len(instr.LabelIndexes)) {
			label = instr.LabelIndexes[idx]
		}
		return e.execBr(label), nil
	case OpReturn:
		sig := e.execBr(uint32(len(e.blockStack) - 1))
		return signal{kind: sigReturn, depth: sig.depth}, nil

	case OpCall:
		return signal{}, e.doCall(int(instr.FuncIndex))
	case OpCallIndirect:
		return signal{}, e.doCallIndirect(instr.TypeIndex)

	case OpDrop:
		e.pop()
		return signal{}, nil
	case OpSelect:
		cond := e.pop().i32()
		b := e.pop()
		a := e.pop()
		if cond != 0 {
			e.push(a)
		} else {
			e.push(b)
		}
		return signal{}, nil

	case OpLocalGet:
		e.push(e.locals[instr.LocalIndex])
		return signal{}, nil
	case OpLocalSet:
		e.locals[instr.LocalIndex] = e.pop()
		return signal{}, nil
	case OpLocalTee:
		e.locals[instr.LocalIndex] = e.vs[len(e.vs)-1]
		return signal{}, nil

	case OpGlobalGet:
		addr := e.module.GlobalAddrs[instr.GlobalIndex]
		e.push(e.ctx.store.Globals[addr].Value)
		return signal{}, nil
	case OpGlobalSet:
		addr := e.module.GlobalAddrs[instr.GlobalIndex]
		e.ctx.store.Globals[addr].Value = e.pop()
		return signal{}, nil

	case OpMemorySize:
		m, err := e.memory()
		if err != nil {
			return signal{}, err
		}
		e.push(i32Value(int32(m.Size())))
		return signal{}, nil
	case OpMemoryGrow:
		m, err := e.memory()
		if err != nil {
			return signal{}, err
		}
		delta := uint32(e.pop().i32())
		e.push(i32Value(m.Grow(delta)))
		return signal{}, nil

	case OpI32Const:
		e.push(i32Value(instr.ConstI32))
		return signal{}, nil
	case OpI64Const:
		e.push(i64Value(instr.ConstI64))
		return signal{}, nil
	case OpF32Const:
		e.push(f32Value(instr.ConstF32))
		return signal{}, nil
	case OpF64Const:
		e.push(f64Value(instr.ConstF64))
		return signal{}, nil
	}

	if isMemAccess(instr.Op) {
		return signal{}, e.execMemAccess(instr)
	}
	return signal{}, e.execNumeric(instr)
}

func (e *executor) doCall(funcIndex int) error {
	addr := e.module.FuncAddrs[funcIndex]
	ft := e.ctx.store.Funcs[addr].Type()
	args := e.popN(len(ft.Params))
	results, err := invokeWithCtx(e.ctx, addr, args)
	if err != nil {
		return err
	}
	for _, r := range results {
		e.push(r)
	}
	return nil
}

func (e *executor) doCallIndirect(typeIndex uint32) error {
	t, err := e.table()
	if err != nil {
		return err
	}
	elemIdx := uint32(e.pop().i32())
	funcAddr, err := t.Get(elemIdx)
	if err != nil {
		return err
	}
	if funcAddr == NullReference {
		return trap(TrapUninitializedElement)
	}
	expected := e.module.Types[typeIndex]
	actual := e.ctx.store.Funcs[funcAddr].Type()
	if !expected.Equal(actual) {
		return trap(TrapIndirectCallTypeMismatch)
	}
	args := e.popN(len(actual.Params))
	results, err := invokeWithCtx(e.ctx, int(funcAddr), args)
	if err != nil {
		return err
	}
	for _, r := range results {
		e.push(r)
	}
	return nil
}

func isMemAccess(op Opcode) bool {
	switch op {
	case OpI32Load, OpI64Load, OpF32Load, OpF64Load,
		OpI32Load8S, OpI32Load8U, OpI32Load16S, OpI32Load16U,
		OpI64Load8S, OpI64Load8U, OpI64Load16S, OpI64Load16U, OpI64Load32S, OpI64Load32U,
		OpI32Store, OpI64Store, OpF32Store, OpF64Store,
		OpI32Store8, OpI32Store16, OpI64Store8, OpI64Store16, OpI64Store32:
		return true
	}
	return false
}
