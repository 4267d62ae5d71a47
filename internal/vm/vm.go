// Package vm implements NAUX's stack-machine execution engine: a
// call-frame stack over lowered bytecode (internal/bytecode) that runs the
// same programs as the tree-walking interpreter (internal/interpreter).
// Unlike the interpreter, the VM gives `rite` and `each` bodies no scope
// of their own, so the two engines disagree on programs whose results
// depend on those scopes.
package vm

import (
	"math"
	"strconv"

	"naux/internal/bytecode"
	"naux/internal/diagnostics"
	"naux/internal/environment"
	"naux/internal/events"
	"naux/internal/oracle"
	"naux/internal/token"
	"naux/internal/value"
)

// JITHook is the VM's optional external escape hatch: an embedder may
// compile a hot function to native code, but the hook must not change
// observable results, only how fast they arrive. The zero value (Noop)
// never triggers.
type JITHook interface {
	// MaybeCompile is notified whenever a function's call count grows;
	// implementations decide independently whether and when to act on it.
	MaybeCompile(fn *bytecode.Function, calls uint64)
}

// Noop is the default JITHook: it never compiles anything.
type Noop struct{}

// MaybeCompile implements JITHook.
func (Noop) MaybeCompile(*bytecode.Function, uint64) {}

type frame struct {
	fn     *bytecode.Function
	locals []value.Value
	ip     int
}

// VM is a single run's mutable execution state.
type VM struct {
	Env    *environment.Env
	Oracle oracle.Adapter
	JIT    JITHook

	Events []events.Event
	Errors []*diagnostics.Diagnostic

	// MaxDepth bounds call-frame nesting identically to
	// interpreter.Interpreter.MaxDepth, so both engines fail the same
	// unbounded-recursion program the same way.
	MaxDepth int

	stack   []value.Value
	frames  []*frame
	hotness map[*bytecode.Function][]uint64
	calls   map[*bytecode.Function]uint64
	prog    *bytecode.Program
}

// New creates a VM with a fresh environment.
func New(o oracle.Adapter) *VM {
	if o == nil {
		o = oracle.Stub{}
	}
	return &VM{
		Env:      environment.New(),
		Oracle:   o,
		JIT:      Noop{},
		MaxDepth: 4096,
		hotness:  map[*bytecode.Function][]uint64{},
		calls:    map[*bytecode.Function]uint64{},
	}
}

// Result has the same fields as interpreter.Result. Its Env holds no
// script variables: the VM keeps those in per-frame local slots.
type Result struct {
	Return value.Value
	Env    *environment.Env
	Events []events.Event
	Errors []*diagnostics.Diagnostic
}

// Run executes a whole lowered program.
func (vm *VM) Run(prog *bytecode.Program) Result {
	vm.prog = prog
	rv := vm.call(prog.Main, nil)
	return Result{Return: rv, Env: vm.Env, Events: vm.Events, Errors: vm.Errors}
}

func (vm *VM) pushErr(kind, msg string, pos *token.Position) {
	vm.Errors = append(vm.Errors, diagnostics.New(kind, msg, pos))
}

func (vm *VM) push(v value.Value) { vm.stack = append(vm.stack, v) }

func (vm *VM) pop() value.Value {
	if len(vm.stack) == 0 {
		return value.Nil
	}
	v := vm.stack[len(vm.stack)-1]
	vm.stack = vm.stack[:len(vm.stack)-1]
	return v
}

func (vm *VM) hotCounters(fn *bytecode.Function) []uint64 {
	h, ok := vm.hotness[fn]
	if !ok {
		h = make([]uint64, len(fn.Code))
		vm.hotness[fn] = h
	}
	return h
}

func (vm *VM) call(fn *bytecode.Function, args []value.Value) value.Value {
	if len(vm.frames) > vm.MaxDepth {
		vm.pushErr(diagnostics.KindRuntimeRecursion, "call stack exceeds max depth", nil)
		return value.Nil
	}
	vm.calls[fn]++
	vm.JIT.MaybeCompile(fn, vm.calls[fn])

	locals := make([]value.Value, fn.NumSlots)
	for i := range locals {
		locals[i] = value.Nil
	}
	for i := range fn.Params {
		if i < len(args) {
			locals[i] = args[i]
		}
	}
	fr := &frame{fn: fn, locals: locals}
	vm.frames = append(vm.frames, fr)
	defer func() { vm.frames = vm.frames[:len(vm.frames)-1] }()

	counters := vm.hotCounters(fn)
	for fr.ip < len(fn.Code) {
		instr := fn.Code[fr.ip]
		counters[fr.ip]++
		if rv, returned := vm.exec(fr, instr); returned {
			return rv
		}
	}
	return value.Nil
}

// exec runs one instruction, advancing fr.ip appropriately, and reports
// whether a Return fired.
func (vm *VM) exec(fr *frame, instr bytecode.Instr) (value.Value, bool) {
	switch instr.Op {
	case bytecode.ConstNum:
		if instr.Num == math.Trunc(instr.Num) && !math.IsInf(instr.Num, 0) {
			vm.push(value.NewInt(int64(instr.Num)))
		} else {
			vm.push(value.NewFloat(instr.Num))
		}
	case bytecode.ConstText:
		vm.push(value.NewTextValue(instr.Str))
	case bytecode.ConstBool:
		vm.push(value.NewBool(instr.Bool))
	case bytecode.PushNull:
		vm.push(value.Nil)
	case bytecode.LoadLocal:
		vm.push(fr.locals[instr.Slot])
	case bytecode.StoreLocal:
		fr.locals[instr.Slot] = vm.pop()
	case bytecode.Dup:
		v := vm.pop()
		vm.push(v)
		vm.push(v)
	case bytecode.Add:
		vm.binaryAdd(instr.Pos)
	case bytecode.Sub, bytecode.Mul, bytecode.Div, bytecode.Mod:
		vm.arith(instr.Op, instr.Pos)
	case bytecode.Eq:
		r, l := vm.pop(), vm.pop()
		vm.push(value.NewBool(value.Equal(l, r)))
	case bytecode.Ne:
		r, l := vm.pop(), vm.pop()
		vm.push(value.NewBool(!value.Equal(l, r)))
	case bytecode.Gt, bytecode.Ge, bytecode.Lt, bytecode.Le:
		vm.compare(instr.Op, instr.Pos)
	case bytecode.And:
		r, l := vm.pop(), vm.pop()
		vm.push(value.NewBool(value.Truthy(l) && value.Truthy(r)))
	case bytecode.Or:
		r, l := vm.pop(), vm.pop()
		vm.push(value.NewBool(value.Truthy(l) || value.Truthy(r)))
	case bytecode.Neg:
		v := vm.pop()
		switch v.Kind() {
		case value.Int:
			vm.push(value.NewInt(-v.Int()))
		case value.Float:
			vm.push(value.NewFloat(-v.Float()))
		default:
			vm.pushErr(diagnostics.KindTypeMismatch, "unary '-' requires a number", instr.Pos)
			vm.push(value.Nil)
		}
	case bytecode.Not:
		v := vm.pop()
		vm.push(value.NewBool(!value.Truthy(v)))
	case bytecode.ClampCount:
		v := vm.pop()
		times := int64(0)
		if v.IsNumeric() && v.AsFloat() > 0 {
			times = int64(v.AsFloat())
		}
		vm.push(value.NewInt(times))
	case bytecode.Jump:
		fr.ip = instr.Target
		return value.Nil, false
	case bytecode.JumpIfFalse:
		c := vm.pop()
		if !value.Truthy(c) {
			fr.ip = instr.Target
			return value.Nil, false
		}
	case bytecode.CallBuiltin:
		vm.callBuiltin(instr)
	case bytecode.CallFn:
		vm.callFn(instr)
	case bytecode.MakeList:
		items := make([]value.Value, instr.Argc)
		for i := instr.Argc - 1; i >= 0; i-- {
			items[i] = vm.pop()
		}
		vm.push(value.NewHeap(value.NewList(items)))
	case bytecode.MakeMap:
		m := map[string]value.Value{}
		vals := make([]value.Value, len(instr.Keys))
		for i := len(instr.Keys) - 1; i >= 0; i-- {
			vals[i] = vm.pop()
		}
		for i, k := range instr.Keys {
			m[k] = vals[i]
		}
		vm.push(value.NewHeap(value.NewMap(m)))
	case bytecode.LoadField:
		target := vm.pop()
		if target.Kind() != value.Heap || target.Heap().Kind != value.MapObj {
			vm.indexErr(instr.Pos)
			vm.push(value.Nil)
			break
		}
		if v, ok := target.Heap().Map[instr.Str]; ok {
			vm.push(v)
		} else {
			vm.push(value.Nil)
		}
	case bytecode.EmitSay:
		vm.Events = append(vm.Events, events.NewSay(vm.formatValue(vm.pop())))
	case bytecode.EmitAsk:
		prompt := vm.formatValue(vm.pop())
		answer := vm.Oracle.Query(prompt)
		vm.Events = append(vm.Events, events.NewAsk(prompt, answer))
	case bytecode.EmitFetch:
		vm.Events = append(vm.Events, events.NewFetch(vm.formatValue(vm.pop())))
	case bytecode.EmitText:
		vm.Events = append(vm.Events, events.NewText(vm.formatValue(vm.pop())))
	case bytecode.EmitButton:
		vm.Events = append(vm.Events, events.NewButton(vm.formatValue(vm.pop())))
	case bytecode.EmitLog:
		vm.Events = append(vm.Events, events.NewLog(vm.formatValue(vm.pop())))
	case bytecode.EmitUi:
		// Keys carries the prop names in source order; the values were
		// pushed in that same order, so pop them off in reverse to
		// rebuild the list without going through an unordered map.
		vals := make([]value.Value, len(instr.Keys))
		for i := len(instr.Keys) - 1; i >= 0; i-- {
			vals[i] = vm.pop()
		}
		uiProps := make([]events.UiProp, len(instr.Keys))
		for i, k := range instr.Keys {
			uiProps[i] = events.UiProp{Name: k, Value: vals[i]}
		}
		vm.Events = append(vm.Events, events.NewUi(instr.Str, uiProps))
	case bytecode.Return:
		return vm.pop(), true
	}
	fr.ip++
	return value.Nil, false
}

func (vm *VM) indexErr(pos *token.Position) {
	if vm.Env.IsUnsafe() {
		return
	}
	vm.pushErr(diagnostics.KindIndexInvalidKey, "invalid index operation", pos)
}

func isVMText(v value.Value) bool { return v.Kind() == value.Heap && v.Heap().Kind == value.TextObj }

// formatValue renders a Value for the text-producing action events,
// matching interpreter.formatValue so both engines emit identical
// event payloads.
func (vm *VM) formatValue(v value.Value) string {
	switch v.Kind() {
	case value.Int:
		return strconv.FormatInt(v.Int(), 10)
	case value.Float:
		return strconv.FormatFloat(v.Float(), 'g', -1, 64)
	case value.Bool:
		if v.Bool() {
			return "true"
		}
		return "false"
	case value.Null:
		return "null"
	case value.Heap:
		if v.Heap().Kind == value.TextObj {
			return v.Heap().Text
		}
		return value.Canonical(v)
	}
	return ""
}

func (vm *VM) binaryAdd(pos *token.Position) {
	r, l := vm.pop(), vm.pop()
	if isVMText(l) && isVMText(r) {
		vm.push(value.NewTextValue(l.Heap().Text + r.Heap().Text))
		return
	}
	vm.push(vm.arithValues(bytecode.Add, l, r, pos))
}

func (vm *VM) arith(op bytecode.Op, pos *token.Position) {
	r, l := vm.pop(), vm.pop()
	vm.push(vm.arithValues(op, l, r, pos))
}

func (vm *VM) arithValues(op bytecode.Op, l, r value.Value, pos *token.Position) value.Value {
	if !l.IsNumeric() || !r.IsNumeric() {
		vm.pushErr(diagnostics.KindTypeMismatch, "arithmetic requires numeric operands", pos)
		return value.Nil
	}
	if op == bytecode.Div {
		rf := r.AsFloat()
		if rf == 0 {
			vm.pushErr(diagnostics.KindArithDivByZero, "division by zero", pos)
			return value.Nil
		}
		return value.NewFloat(l.AsFloat() / rf)
	}
	if l.Kind() == value.Int && r.Kind() == value.Int {
		a, b := l.Int(), r.Int()
		switch op {
		case bytecode.Add:
			if s, ok := addOverflows(a, b); ok {
				return value.NewInt(s)
			}
			return value.NewFloat(float64(a) + float64(b))
		case bytecode.Sub:
			if d, ok := subOverflows(a, b); ok {
				return value.NewInt(d)
			}
			return value.NewFloat(float64(a) - float64(b))
		case bytecode.Mul:
			if p, ok := mulOverflows(a, b); ok {
				return value.NewInt(p)
			}
			return value.NewFloat(float64(a) * float64(b))
		case bytecode.Mod:
			if b == 0 {
				vm.pushErr(diagnostics.KindArithDivByZero, "division by zero", pos)
				return value.Nil
			}
			return value.NewInt(a % b)
		}
	}
	af, bf := l.AsFloat(), r.AsFloat()
	switch op {
	case bytecode.Add:
		return value.NewFloat(af + bf)
	case bytecode.Sub:
		return value.NewFloat(af - bf)
	case bytecode.Mul:
		return value.NewFloat(af * bf)
	case bytecode.Mod:
		return value.NewFloat(math.Mod(af, bf))
	}
	return value.Nil
}

func addOverflows(a, b int64) (int64, bool) {
	if (b > 0 && a > math.MaxInt64-b) || (b < 0 && a < math.MinInt64-b) {
		return 0, false
	}
	return a + b, true
}

func subOverflows(a, b int64) (int64, bool) {
	if (b < 0 && a > math.MaxInt64+b) || (b > 0 && a < math.MinInt64+b) {
		return 0, false
	}
	return a - b, true
}

func mulOverflows(a, b int64) (int64, bool) {
	if a == 0 || b == 0 {
		return 0, true
	}
	p := a * b
	if p/b != a {
		return 0, false
	}
	return p, true
}

func (vm *VM) compare(op bytecode.Op, pos *token.Position) {
	r, l := vm.pop(), vm.pop()
	if !l.IsNumeric() || !r.IsNumeric() {
		vm.pushErr(diagnostics.KindTypeComparison, "comparison requires numeric operands", pos)
		vm.push(value.Nil)
		return
	}
	lf, rf := l.AsFloat(), r.AsFloat()
	switch op {
	case bytecode.Gt:
		vm.push(value.NewBool(lf > rf))
	case bytecode.Ge:
		vm.push(value.NewBool(lf >= rf))
	case bytecode.Lt:
		vm.push(value.NewBool(lf < rf))
	case bytecode.Le:
		vm.push(value.NewBool(lf <= rf))
	}
}

// callBuiltin resolves a call emitted by the compiler for any call
// expression (the compiler does not distinguish user functions from
// builtins at compile time, matching interpreter.evalCall's resolution
// order): a user-defined function compiled into the same program wins
// first, then `len`/`__index` take a fast path that skips the registry
// lookup, then the general builtin registry, in that order.
func (vm *VM) callBuiltin(instr bytecode.Instr) {
	args := make([]value.Value, instr.Argc)
	for i := instr.Argc - 1; i >= 0; i-- {
		args[i] = vm.pop()
	}
	if fn, ok := vm.prog.Functions[instr.Str]; ok {
		vm.push(vm.call(fn, args))
		return
	}
	switch instr.Str {
	case "len":
		vm.push(fastLen(args))
		return
	case "__index":
		if v, ok := fastIndex(args); ok {
			vm.push(v)
			return
		}
		// only an out-of-range list index goes on to the registry's
		// bounds check; other operands are the interpreter's invalid-key
		// error
		if len(args) == 2 && !(args[0].Kind() == value.Heap && args[0].Heap().Kind == value.ListObj && args[1].IsNumeric()) {
			vm.indexErr(instr.Pos)
			vm.push(value.Nil)
			return
		}
	}
	if !environment.HasBuiltin(instr.Str) {
		vm.pushErr(diagnostics.KindRuntimeUnknownFn, "function not found: "+instr.Str, instr.Pos)
		vm.push(value.Nil)
		return
	}
	rv, err := vm.Env.CallBuiltin(instr.Str, args)
	if err != nil {
		if d, ok := err.(*diagnostics.Diagnostic); ok {
			d.Pos = instr.Pos
			vm.Errors = append(vm.Errors, d)
		} else {
			vm.pushErr(diagnostics.KindRuntimeUnknownFn, err.Error(), instr.Pos)
		}
		vm.push(value.Nil)
		return
	}
	vm.push(rv)
}

func fastLen(args []value.Value) value.Value {
	if len(args) == 0 || args[0].Kind() != value.Heap {
		return value.NewInt(0)
	}
	obj := args[0].Heap()
	switch obj.Kind {
	case value.ListObj:
		return value.NewInt(int64(len(obj.List)))
	case value.TextObj:
		return value.NewInt(int64(len([]rune(obj.Text))))
	case value.MapObj:
		return value.NewInt(int64(len(obj.Map)))
	case value.SetObj:
		return value.NewInt(int64(len(obj.Set)))
	case value.PQObj:
		return value.NewInt(int64(obj.PQLen()))
	default:
		return value.NewInt(0)
	}
}

func fastIndex(args []value.Value) (value.Value, bool) {
	if len(args) != 2 || args[0].Kind() != value.Heap {
		return value.Nil, false
	}
	target, key := args[0].Heap(), args[1]
	switch target.Kind {
	case value.ListObj:
		if !key.IsNumeric() {
			return value.Nil, false
		}
		i := int(key.AsFloat())
		if i < 0 || i >= len(target.List) {
			// Out of range: defer to the registry path so
			// environment.CallBuiltin's unsafe-gated bounds check
			// runs instead of silently returning null here.
			return value.Nil, false
		}
		return target.List[i], true
	case value.MapObj:
		if !isVMText(key) {
			return value.Nil, false
		}
		if v, ok := target.Map[key.Heap().Text]; ok {
			return v, true
		}
		return value.Nil, true
	default:
		return value.Nil, false
	}
}

// callFn exists because ir.Op and bytecode.Op both define CallFn, but
// the current compiler (internal/ir) always emits CallBuiltin for every
// call expression and resolves user functions vs. builtins by name at
// call time; CallFn is reserved for a future compiler that resolves
// user functions statically, so it is handled identically for now.
func (vm *VM) callFn(instr bytecode.Instr) {
	vm.callBuiltin(instr)
}
