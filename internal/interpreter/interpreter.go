// Package interpreter implements NAUX's tree-walking evaluator: the
// reference execution engine that walks the AST directly. The bytecode VM
// (internal/vm) runs the same programs, but only this engine gives a
// `rite` body and each `each` iteration a scope of their own, so the two
// engines disagree on programs whose results depend on those scopes.
package interpreter

import (
	"math"
	"os"
	"strconv"

	"naux/internal/ast"
	"naux/internal/diagnostics"
	"naux/internal/environment"
	"naux/internal/events"
	"naux/internal/lexer"
	"naux/internal/oracle"
	"naux/internal/parser"
	_ "naux/internal/stdlib"
	"naux/internal/token"
	"naux/internal/value"
)

// Frame is one call-stack entry. The call stack bounds user-function
// nesting (MaxDepth); diagnostics do not carry it.
type Frame struct {
	Name string
	Pos  *token.Position
}

// Interpreter walks an AST, accumulating an event stream and a list of
// non-fatal runtime diagnostics.
type Interpreter struct {
	Env    *environment.Env
	Oracle oracle.Adapter

	Events []events.Event
	Errors []*diagnostics.Diagnostic

	// MaxDepth bounds user-function call nesting; exceeding it raises a
	// runtime/recursion-limit diagnostic instead of overflowing Go's own
	// call stack. internal/config's default is 4096.
	MaxDepth int

	callStack []Frame
}

// New creates an Interpreter with a fresh environment.
func New(o oracle.Adapter) *Interpreter {
	if o == nil {
		o = oracle.Stub{}
	}
	return &Interpreter{Env: environment.New(), Oracle: o, MaxDepth: 4096}
}

// Result is the outcome of running a script: its final top-level return
// value (Null if it never returned), the bindings left in Env, the event
// stream, and any accumulated errors.
type Result struct {
	Return value.Value
	Env    *environment.Env
	Events []events.Event
	Errors []*diagnostics.Diagnostic
}

// Run evaluates a whole script top to bottom.
func (it *Interpreter) Run(stmts []ast.Stmt) Result {
	rv, _ := it.evalBlock(stmts)
	return Result{Return: rv, Env: it.Env, Events: it.Events, Errors: it.Errors}
}

func (it *Interpreter) pushErr(kind, msg string, pos *token.Position) {
	it.Errors = append(it.Errors, diagnostics.New(kind, msg, pos))
}

// evalBlock runs a statement list, short-circuiting on the first `^`
// return encountered. The bool result reports whether a return fired.
func (it *Interpreter) evalBlock(body []ast.Stmt) (value.Value, bool) {
	for _, s := range body {
		if rv, returned := it.evalStmt(s); returned {
			return rv, true
		}
	}
	return value.Nil, false
}

func (it *Interpreter) evalStmt(s ast.Stmt) (value.Value, bool) {
	switch n := s.(type) {
	case *ast.RiteStmt:
		it.Env.PushScope()
		rv, ret := it.evalBlock(n.Body)
		it.Env.PopScope()
		return rv, ret
	case *ast.UnsafeStmt:
		it.Env.PushUnsafe(true)
		rv, ret := it.evalBlock(n.Body)
		it.Env.PopUnsafe()
		return rv, ret
	case *ast.FnDefStmt:
		it.Env.DefineFn(n.Name, n.Params, n.Body)
		return value.Nil, false
	case *ast.AssignStmt:
		v := it.evalExpr(n.Expr)
		it.Env.Set(n.Name, v)
		return value.Nil, false
	case *ast.IfStmt:
		cond := it.evalExpr(n.Cond)
		if value.Truthy(cond) {
			return it.evalBlock(n.Then)
		}
		return it.evalBlock(n.Else)
	case *ast.LoopStmt:
		count := it.evalExpr(n.Count)
		times := int64(0)
		if count.IsNumeric() && count.AsFloat() > 0 {
			times = int64(count.AsFloat())
		}
		for i := int64(0); i < times; i++ {
			if rv, ret := it.evalBlock(n.Body); ret {
				return rv, true
			}
		}
		return value.Nil, false
	case *ast.EachStmt:
		return it.evalEach(n)
	case *ast.WhileStmt:
		for {
			cond := it.evalExpr(n.Cond)
			if !value.Truthy(cond) {
				return value.Nil, false
			}
			if rv, ret := it.evalBlock(n.Body); ret {
				return rv, true
			}
		}
	case *ast.ActionStmt:
		it.dispatchAction(n)
		return value.Nil, false
	case *ast.ReturnStmt:
		if n.Value == nil {
			return value.Nil, true
		}
		return it.evalExpr(n.Value), true
	case *ast.ImportStmt:
		it.evalImport(n)
		return value.Nil, false
	default:
		return value.Nil, false
	}
}

func (it *Interpreter) evalEach(n *ast.EachStmt) (value.Value, bool) {
	iter := it.evalExpr(n.Iter)
	if iter.Kind() != value.Heap || iter.Heap().Kind != value.ListObj {
		it.pushErr(diagnostics.KindTypeMismatch, "each expects a list to iterate", n.Pos())
		return value.Nil, false
	}
	items := iter.Heap().List
	for _, item := range items {
		it.Env.PushScope()
		it.Env.Set(n.Var, item)
		rv, ret := it.evalBlock(n.Body)
		it.Env.PopScope()
		if ret {
			return rv, true
		}
	}
	return value.Nil, false
}

func (it *Interpreter) evalExpr(e ast.Expr) value.Value {
	switch n := e.(type) {
	case *ast.NumberExpr:
		if n.Value == math.Trunc(n.Value) && !math.IsInf(n.Value, 0) {
			return value.NewInt(int64(n.Value))
		}
		return value.NewFloat(n.Value)
	case *ast.BoolExpr:
		return value.NewBool(n.Value)
	case *ast.TextExpr:
		return value.NewTextValue(n.Value)
	case *ast.ListExpr:
		items := make([]value.Value, len(n.Items))
		for i, it2 := range n.Items {
			items[i] = it.evalExpr(it2)
		}
		return value.NewHeap(value.NewList(items))
	case *ast.MapExpr:
		m := map[string]value.Value{}
		for _, entry := range n.Entries {
			m[entry.Key] = it.evalExpr(entry.Value)
		}
		return value.NewHeap(value.NewMap(m))
	case *ast.VarExpr:
		if v, ok := it.Env.Get(n.Name); ok {
			return v
		}
		it.pushErr(diagnostics.KindRuntimeUndefined, "variable not found: "+n.Name, n.Pos())
		return value.Nil
	case *ast.CallExpr:
		return it.evalCall(n)
	case *ast.BinaryExpr:
		return it.evalBinary(n)
	case *ast.UnaryExpr:
		return it.evalUnary(n)
	case *ast.IndexExpr:
		return it.evalIndex(n)
	case *ast.FieldExpr:
		return it.evalField(n)
	default:
		return value.Nil
	}
}

func (it *Interpreter) evalCall(n *ast.CallExpr) value.Value {
	name, ok := n.Callee.(*ast.VarExpr)
	if !ok {
		it.pushErr(diagnostics.KindRuntimeUnknownFn, "invalid call target", n.Pos())
		return value.Nil
	}
	args := make([]value.Value, len(n.Args))
	for i, a := range n.Args {
		args[i] = it.evalExpr(a)
	}
	if fn, ok := it.Env.GetFn(name.Name); ok {
		if len(it.callStack) >= it.MaxDepth {
			it.pushErr(diagnostics.KindRuntimeRecursion, "call stack exceeds max depth", n.Pos())
			return value.Nil
		}
		it.callStack = append(it.callStack, Frame{Name: name.Name, Pos: n.Pos()})
		it.Env.PushScope()
		for i, p := range fn.Params {
			if i < len(args) {
				it.Env.Set(p, args[i])
			} else {
				it.Env.Set(p, value.Nil)
			}
		}
		rv, _ := it.evalBlock(fn.Body)
		it.Env.PopScope()
		it.callStack = it.callStack[:len(it.callStack)-1]
		return rv
	}
	if environment.HasBuiltin(name.Name) {
		rv, err := it.Env.CallBuiltin(name.Name, args)
		if err != nil {
			if d, ok := err.(*diagnostics.Diagnostic); ok {
				d.Pos = n.Pos()
				it.Errors = append(it.Errors, d)
			} else {
				it.pushErr(diagnostics.KindRuntimeUnknownFn, err.Error(), n.Pos())
			}
			return value.Nil
		}
		return rv
	}
	it.pushErr(diagnostics.KindRuntimeUnknownFn, "function not found: "+name.Name, n.Pos())
	return value.Nil
}

func (it *Interpreter) evalUnary(n *ast.UnaryExpr) value.Value {
	v := it.evalExpr(n.Operand)
	switch n.Op {
	case ast.OpNeg:
		switch v.Kind() {
		case value.Int:
			return value.NewInt(-v.Int())
		case value.Float:
			return value.NewFloat(-v.Float())
		default:
			it.pushErr(diagnostics.KindTypeMismatch, "unary '-' requires a number", n.Pos())
			return value.Nil
		}
	case ast.OpNot:
		return value.NewBool(!value.Truthy(v))
	default:
		return value.Nil
	}
}

func (it *Interpreter) evalBinary(n *ast.BinaryExpr) value.Value {
	l := it.evalExpr(n.Left)
	r := it.evalExpr(n.Right)
	switch n.Op {
	case ast.OpAdd:
		if isText(l) && isText(r) {
			return value.NewTextValue(l.Heap().Text + r.Heap().Text)
		}
		return it.arith(n, l, r, ast.OpAdd)
	case ast.OpSub, ast.OpMul, ast.OpDiv, ast.OpMod:
		return it.arith(n, l, r, n.Op)
	case ast.OpEq:
		return value.NewBool(value.Equal(l, r))
	case ast.OpNe:
		return value.NewBool(!value.Equal(l, r))
	case ast.OpGt, ast.OpGe, ast.OpLt, ast.OpLe:
		if !l.IsNumeric() || !r.IsNumeric() {
			it.pushErr(diagnostics.KindTypeComparison, "comparison requires numeric operands", n.Pos())
			return value.Nil
		}
		lf, rf := l.AsFloat(), r.AsFloat()
		switch n.Op {
		case ast.OpGt:
			return value.NewBool(lf > rf)
		case ast.OpGe:
			return value.NewBool(lf >= rf)
		case ast.OpLt:
			return value.NewBool(lf < rf)
		default:
			return value.NewBool(lf <= rf)
		}
	case ast.OpAnd:
		return value.NewBool(value.Truthy(l) && value.Truthy(r))
	case ast.OpOr:
		return value.NewBool(value.Truthy(l) || value.Truthy(r))
	default:
		return value.Nil
	}
}

func isText(v value.Value) bool {
	return v.Kind() == value.Heap && v.Heap().Kind == value.TextObj
}

// arith implements the common arithmetic contract: both operands numeric,
// integers stay integral for +/-/*/% with overflow promoting to float,
// division always produces a float, division by zero is a runtime error.
func (it *Interpreter) arith(n *ast.BinaryExpr, l, r value.Value, op ast.BinaryOp) value.Value {
	if !l.IsNumeric() || !r.IsNumeric() {
		it.pushErr(diagnostics.KindTypeMismatch, "arithmetic requires numeric operands", n.Pos())
		return value.Nil
	}
	if op == ast.OpDiv {
		rf := r.AsFloat()
		if rf == 0 {
			it.pushErr(diagnostics.KindArithDivByZero, "division by zero", n.Pos())
			return value.Nil
		}
		return value.NewFloat(l.AsFloat() / rf)
	}
	if l.Kind() == value.Int && r.Kind() == value.Int {
		a, b := l.Int(), r.Int()
		switch op {
		case ast.OpAdd:
			if sum, ok := addOverflows(a, b); ok {
				return value.NewInt(sum)
			}
			return value.NewFloat(float64(a) + float64(b))
		case ast.OpSub:
			if diff, ok := subOverflows(a, b); ok {
				return value.NewInt(diff)
			}
			return value.NewFloat(float64(a) - float64(b))
		case ast.OpMul:
			if prod, ok := mulOverflows(a, b); ok {
				return value.NewInt(prod)
			}
			return value.NewFloat(float64(a) * float64(b))
		case ast.OpMod:
			if b == 0 {
				it.pushErr(diagnostics.KindArithDivByZero, "division by zero", n.Pos())
				return value.Nil
			}
			return value.NewInt(a % b)
		}
	}
	af, bf := l.AsFloat(), r.AsFloat()
	switch op {
	case ast.OpAdd:
		return value.NewFloat(af + bf)
	case ast.OpSub:
		return value.NewFloat(af - bf)
	case ast.OpMul:
		return value.NewFloat(af * bf)
	case ast.OpMod:
		return value.NewFloat(math.Mod(af, bf))
	}
	return value.Nil
}

func addOverflows(a, b int64) (int64, bool) {
	sum := a + b
	if (b > 0 && a > math.MaxInt64-b) || (b < 0 && a < math.MinInt64-b) {
		return 0, false
	}
	return sum, true
}

func subOverflows(a, b int64) (int64, bool) {
	diff := a - b
	if (b < 0 && a > math.MaxInt64+b) || (b > 0 && a < math.MinInt64+b) {
		return 0, false
	}
	return diff, true
}

func mulOverflows(a, b int64) (int64, bool) {
	if a == 0 || b == 0 {
		return 0, true
	}
	prod := a * b
	if prod/b != a {
		return 0, false
	}
	return prod, true
}

func (it *Interpreter) evalIndex(n *ast.IndexExpr) value.Value {
	target := it.evalExpr(n.Target)
	idx := it.evalExpr(n.Index)
	if target.Kind() != value.Heap {
		return it.indexError(n.Pos())
	}
	obj := target.Heap()
	switch obj.Kind {
	case value.ListObj:
		if !idx.IsNumeric() {
			return it.indexError(n.Pos())
		}
		i := int(idx.AsFloat())
		if i < 0 || i >= len(obj.List) {
			return it.outOfBoundsError(n.Pos())
		}
		return obj.List[i]
	case value.MapObj:
		if !isText(idx) {
			return it.indexError(n.Pos())
		}
		if v, ok := obj.Map[idx.Heap().Text]; ok {
			return v
		}
		return value.Nil
	default:
		return it.indexError(n.Pos())
	}
}

func (it *Interpreter) indexError(pos *token.Position) value.Value {
	if it.Env.IsUnsafe() {
		return value.Nil
	}
	it.pushErr(diagnostics.KindIndexInvalidKey, "invalid index operation", pos)
	return value.Nil
}

func (it *Interpreter) outOfBoundsError(pos *token.Position) value.Value {
	if it.Env.IsUnsafe() {
		return value.Nil
	}
	it.pushErr(diagnostics.KindIndexOutOfBounds, "index out of bounds", pos)
	return value.Nil
}

func (it *Interpreter) evalField(n *ast.FieldExpr) value.Value {
	target := it.evalExpr(n.Target)
	if target.Kind() != value.Heap || target.Heap().Kind != value.MapObj {
		return it.indexError(n.Pos())
	}
	if v, ok := target.Heap().Map[n.Field]; ok {
		return v
	}
	return value.Nil
}

// evalImport loads module's source text, lexes and parses it, and folds
// its top-level function definitions and assignments into the current
// environment. A `rite` block at import scope is skipped: imports
// contribute declarations, not side-effecting statements.
func (it *Interpreter) evalImport(n *ast.ImportStmt) {
	src, err := os.ReadFile(n.Path)
	if err != nil {
		it.pushErr(diagnostics.KindImportNotFound, "failed to import "+n.Path+": "+err.Error(), n.Pos())
		return
	}
	toks, lexErr := lexer.Lex(string(src))
	if lexErr != nil {
		it.pushErr(diagnostics.KindImportNotFound, "lex error in import "+n.Path+": "+lexErr.Error(), n.Pos())
		return
	}
	stmts, parseErr := parser.Parse(toks)
	if parseErr != nil {
		it.pushErr(diagnostics.KindImportNotFound, "parse error in import "+n.Path+": "+parseErr.Error(), n.Pos())
		return
	}
	for _, s := range stmts {
		switch sn := s.(type) {
		case *ast.FnDefStmt:
			it.Env.DefineFn(sn.Name, sn.Params, sn.Body)
		case *ast.AssignStmt:
			it.Env.Set(sn.Name, it.evalExpr(sn.Expr))
		}
	}
}

func formatValue(v value.Value) string {
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

func (it *Interpreter) dispatchAction(n *ast.ActionStmt) {
	switch n.Kind {
	case ast.ActionSay:
		v := it.evalExpr(n.Operand)
		it.Events = append(it.Events, events.NewSay(formatValue(v)))
	case ast.ActionAsk:
		p := it.evalExpr(n.Operand)
		prompt := formatValue(p)
		answer := it.Oracle.Query(prompt)
		it.Events = append(it.Events, events.NewAsk(prompt, answer))
	case ast.ActionFetch:
		v := it.evalExpr(n.Operand)
		it.Events = append(it.Events, events.NewFetch(formatValue(v)))
	case ast.ActionText:
		v := it.evalExpr(n.Operand)
		it.Events = append(it.Events, events.NewText(formatValue(v)))
	case ast.ActionButton:
		v := it.evalExpr(n.Operand)
		it.Events = append(it.Events, events.NewButton(formatValue(v)))
	case ast.ActionLog:
		v := it.evalExpr(n.Operand)
		it.Events = append(it.Events, events.NewLog(formatValue(v)))
	case ast.ActionUi:
		props := make([]events.UiProp, len(n.UiProps))
		for i, p := range n.UiProps {
			props[i] = events.UiProp{Name: p.Name, Value: it.evalExpr(p.Value)}
		}
		it.Events = append(it.Events, events.NewUi(n.UiKind, props))
	}
}
