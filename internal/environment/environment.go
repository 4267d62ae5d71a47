// Package environment implements NAUX's lexical scope stack, function
// registry, and the process-wide builtin registry shared by every
// evaluation engine.
package environment

import (
	"fmt"

	"github.com/petermattis/goid"
	deadlock "github.com/sasha-s/go-deadlock"

	"naux/internal/ast"
	"naux/internal/diagnostics"
	"naux/internal/value"
)

// BuiltinFn is a native function registered into the builtin registry.
type BuiltinFn func(args []value.Value) (value.Value, error)

// registrant records which goroutine registered a builtin, surfaced
// through RegisteredBy for diagnosing out-of-order registration from an
// embedder that freezes the registry too early.
type registrant struct {
	fn     BuiltinFn
	goid   int64
	frozen bool
}

// builtinRegistry is process-wide state: written during startup as
// embedders register builtins, then frozen and read-only for the rest of
// the process's life. go-deadlock catches lock-order inversions across
// goroutines registering concurrently before the freeze; evaluation
// itself never takes this lock.
type builtinRegistry struct {
	mu      deadlock.RWMutex
	entries map[string]registrant
	frozen  bool
}

var global = &builtinRegistry{entries: map[string]registrant{}}

// Register adds name to the process-wide builtin registry. It panics if
// called after Freeze, since the registry is documented read-only past
// that point.
func Register(name string, fn BuiltinFn) {
	global.mu.Lock()
	defer global.mu.Unlock()
	if global.frozen {
		panic(fmt.Sprintf("environment: builtin %q registered after registry freeze", name))
	}
	global.entries[name] = registrant{fn: fn, goid: goid.Get()}
}

// Freeze closes the registry to further registration. Safe to call more
// than once.
func Freeze() {
	global.mu.Lock()
	defer global.mu.Unlock()
	global.frozen = true
}

// lookupBuiltin returns the registered function for name, if any.
func lookupBuiltin(name string) (BuiltinFn, bool) {
	global.mu.RLock()
	defer global.mu.RUnlock()
	r, ok := global.entries[name]
	return r.fn, ok
}

// RegisteredBy reports the goroutine ID that registered name, for
// diagnosing registration races; ok is false if name is unregistered.
func RegisteredBy(name string) (id int64, ok bool) {
	global.mu.RLock()
	defer global.mu.RUnlock()
	r, present := global.entries[name]
	return r.goid, present
}

// FnDef is a user-defined function: parameters plus an AST body, shared
// by every evaluation engine that needs the source form.
type FnDef struct {
	Name   string
	Params []string
	Body   []ast.Stmt
}

type scope struct {
	vars map[string]value.Value
}

func newScope() *scope { return &scope{vars: map[string]value.Value{}} }

// Env is a single evaluation's mutable state: a lexical scope stack, the
// unsafe-mode flag stack, and the functions this run has defined.
type Env struct {
	scopes    []*scope
	unsafe    []bool
	functions map[string]*FnDef
}

// New creates an Env with one base scope and unsafe mode initially off.
func New() *Env {
	return &Env{
		scopes:    []*scope{newScope()},
		unsafe:    []bool{false},
		functions: map[string]*FnDef{},
	}
}

// PushScope opens a new lexical scope (a `rite` body, one `each`
// iteration, or a function call).
func (e *Env) PushScope() { e.scopes = append(e.scopes, newScope()) }

// PopScope closes the innermost scope. It is a no-op at the base scope.
func (e *Env) PopScope() {
	if len(e.scopes) > 1 {
		e.scopes = e.scopes[:len(e.scopes)-1]
	}
}

// Set binds name in the innermost scope, never searching outward to an
// existing binding in an enclosing scope. A `rite` body, each `each`
// iteration, and a function call all push their own scope (see
// interpreter.go), so an assignment to a name already bound further out
// shadows it for the rest of that block and is discarded when the scope
// pops — the mechanism spec's scope-isolation invariant relies on.
func (e *Env) Set(name string, v value.Value) {
	e.scopes[len(e.scopes)-1].vars[name] = v
}

// Get resolves name by walking outward from the innermost scope.
func (e *Env) Get(name string) (value.Value, bool) {
	for i := len(e.scopes) - 1; i >= 0; i-- {
		if v, ok := e.scopes[i].vars[name]; ok {
			return v, true
		}
	}
	return value.Nil, false
}

// PushUnsafe enters an unsafe block: the new top of the stack is the OR
// of the current flag and enabled, so unsafe mode nests monotonically.
func (e *Env) PushUnsafe(enabled bool) {
	cur := e.unsafe[len(e.unsafe)-1]
	e.unsafe = append(e.unsafe, cur || enabled)
}

// PopUnsafe leaves the innermost unsafe scope.
func (e *Env) PopUnsafe() {
	if len(e.unsafe) > 1 {
		e.unsafe = e.unsafe[:len(e.unsafe)-1]
	}
}

// IsUnsafe reports whether the current scope is in unsafe mode.
func (e *Env) IsUnsafe() bool { return e.unsafe[len(e.unsafe)-1] }

// DefineFn registers a user-defined function, flat and global per the
// function registry model (no nested/closure scoping).
func (e *Env) DefineFn(name string, params []string, body []ast.Stmt) {
	e.functions[name] = &FnDef{Name: name, Params: params, Body: body}
}

// GetFn looks up a user-defined function by name.
func (e *Env) GetFn(name string) (*FnDef, bool) {
	fn, ok := e.functions[name]
	return fn, ok
}

// CallBuiltin invokes a registered builtin by name. The diagnostics/*
// error kind is used when the name is unknown, matching the taxonomy
// other runtime failures use.
//
// __index is special-cased here rather than in the registered
// BuiltinFn itself: BuiltinFn has no access to *Env, so it cannot see
// IsUnsafe, and the tree interpreter's own evalIndex raises
// diagnostics.KindIndexOutOfBounds for a list read past its end unless
// unsafe mode is active. Checking bounds here before delegating keeps
// that behavior identical across both evaluation engines, instead of
// __index silently returning null the way a missing map key does.
func (e *Env) CallBuiltin(name string, args []value.Value) (value.Value, error) {
	fn, ok := lookupBuiltin(name)
	if !ok {
		return value.Nil, diagnostics.New("runtime/unknown-builtin", fmt.Sprintf("unknown builtin %q", name), nil)
	}
	if name == "__index" && !e.IsUnsafe() {
		if err := indexOutOfBounds(args); err != nil {
			return value.Nil, err
		}
	}
	return fn(args)
}

// indexOutOfBounds reports a diagnostics.KindIndexOutOfBounds error when
// args describe a list __index call past the end of the list. Map
// lookups and non-list targets are left to the builtin itself, which
// already returns null for a missing key rather than an error.
func indexOutOfBounds(args []value.Value) error {
	if len(args) != 2 || args[0].Kind() != value.Heap {
		return nil
	}
	obj := args[0].Heap()
	if obj.Kind != value.ListObj || !args[1].IsNumeric() {
		return nil
	}
	i := int(args[1].AsFloat())
	if i < 0 || i >= len(obj.List) {
		return diagnostics.New(diagnostics.KindIndexOutOfBounds, "index out of bounds", nil)
	}
	return nil
}

// HasBuiltin reports whether name is registered.
func HasBuiltin(name string) bool {
	_, ok := lookupBuiltin(name)
	return ok
}
