package vm

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"naux/internal/bytecode"
	"naux/internal/interpreter"
	"naux/internal/ir"
	"naux/internal/lexer"
	"naux/internal/oracle"
	"naux/internal/parser"
	"naux/internal/value"
)

func runVM(t *testing.T, src string) Result {
	t.Helper()
	toks, err := lexer.Lex(src)
	require.NoError(t, err)
	stmts, err := parser.Parse(toks)
	require.NoError(t, err)
	prog := bytecode.Lower(ir.Optimize(ir.Compile(stmts)))
	return New(nil).Run(prog)
}

// parity runs src through both engines and asserts they agree on the
// say/event payload stream, the single invariant spec.md requires of
// any given program regardless of which engine executes it.
func parity(t *testing.T, src string) {
	t.Helper()
	toks, err := lexer.Lex(src)
	require.NoError(t, err)
	stmts, err := parser.Parse(toks)
	require.NoError(t, err)

	treeRes := interpreter.New(nil).Run(stmts)
	prog := bytecode.Lower(ir.Optimize(ir.Compile(stmts)))
	vmRes := New(nil).Run(prog)

	require.Equal(t, len(treeRes.Errors), len(vmRes.Errors), "engines must agree on error count")
	require.Equal(t, len(treeRes.Events), len(vmRes.Events))
	for i := range treeRes.Events {
		assert.Equal(t, treeRes.Events[i].Payload, vmRes.Events[i].Payload, "event %d payload must match across engines", i)
	}
}

func TestVMAssignAndSay(t *testing.T) {
	res := runVM(t, "$x = 41\n$x = $x + 1\n! say $x\n")
	require.Empty(t, res.Errors)
	require.Len(t, res.Events, 1)
	assert.Equal(t, "42", res.Events[0].Payload)
}

func TestVMEachAccumulatesAcrossIterations(t *testing.T) {
	res := runVM(t, "$total = 0\n~ each $x in [1, 2, 3]\n$total = $total + $x\n~ end\n! say $total\n")
	require.Empty(t, res.Errors)
	assert.Equal(t, "6", res.Events[0].Payload)
}

func TestVMFnCallLocalsIsolatedFromCaller(t *testing.T) {
	res := runVM(t, `$x = 100
~ fn f($x)
^ $x + 1
~ end
! say f(5)
! say $x
`)
	require.Empty(t, res.Errors)
	require.Len(t, res.Events, 2)
	assert.Equal(t, "6", res.Events[0].Payload)
	assert.Equal(t, "100", res.Events[1].Payload)
}

func TestVMIndexOutOfBoundsErrorsUnlessUnsafe(t *testing.T) {
	res := runVM(t, "$xs = [1, 2]\n$v = $xs[9]\n")
	require.Len(t, res.Errors, 1)
	assert.Equal(t, "index/out-of-bounds", res.Errors[0].Kind)

	res = runVM(t, "~ unsafe\n$xs = [1, 2]\n$v = $xs[9]\n~ end\n")
	require.Empty(t, res.Errors)
}

func TestVMDivisionByZero(t *testing.T) {
	res := runVM(t, "$x = 1 / 0\n")
	require.Len(t, res.Errors, 1)
	assert.Equal(t, "arith/div-by-zero", res.Errors[0].Kind)
}

func TestVMLargeIntAddPromotesToFloat(t *testing.T) {
	theVM := New(nil)
	rv := theVM.arithValues(bytecode.Add, value.NewInt(math.MaxInt64), value.NewInt(1), nil)
	assert.Equal(t, value.Float, rv.Kind(), "int64 overflow on + must promote to float rather than wrap, matching interpreter.evalBinary")
}

func TestVMAskEventCarriesPromptAndAnswer(t *testing.T) {
	toks, err := lexer.Lex(`! ask "name?"` + "\n")
	require.NoError(t, err)
	stmts, err := parser.Parse(toks)
	require.NoError(t, err)
	prog := bytecode.Lower(ir.Compile(stmts))

	theVM := New(oracle.Func(func(p string) string { return "bob" }))
	res := theVM.Run(prog)
	require.Len(t, res.Events, 1)
	assert.Equal(t, "name?", res.Events[0].Prompt)
	assert.Equal(t, "bob", res.Events[0].Answer)
}

func TestVMRecursionLimitRaisesDiagnostic(t *testing.T) {
	toks, err := lexer.Lex(`~ fn loopy($n)
^ loopy($n + 1)
~ end
$x = loopy(0)
`)
	require.NoError(t, err)
	stmts, err := parser.Parse(toks)
	require.NoError(t, err)
	prog := bytecode.Lower(ir.Compile(stmts))

	theVM := New(nil)
	theVM.MaxDepth = 8
	res := theVM.Run(prog)
	require.NotEmpty(t, res.Errors)
	assert.Equal(t, "runtime/recursion-limit", res.Errors[len(res.Errors)-1].Kind)
}

func TestFastLenAndFastIndexFastPaths(t *testing.T) {
	list := value.NewHeap(value.NewList([]value.Value{value.NewInt(10), value.NewInt(20), value.NewInt(30)}))

	n := fastLen([]value.Value{list})
	assert.Equal(t, int64(3), n.Int())

	v, ok := fastIndex([]value.Value{list, value.NewInt(1)})
	require.True(t, ok)
	assert.Equal(t, int64(20), v.Int())

	_, ok = fastIndex([]value.Value{list, value.NewInt(99)})
	assert.False(t, ok, "out-of-range list index must defer to the registry bounds check, not resolve as handled here")
}

// TestEachScopeIsolationDivergesBetweenEngines documents a known gap
// (see DESIGN.md) rather than hiding it: the tree interpreter
// pushes a fresh scope per each-iteration (spec §8.5 scope isolation),
// so reassigning a variable bound outside the loop never becomes
// observable afterward, while the VM desugars each into flat
// LoadVar/StoreVar instructions with no per-iteration namespace (see
// internal/ir.compileEach), so the same reassignment does accumulate.
// Parity over the event stream still holds for each bodies that only
// emit events or reassign loop-local state (TestEngineParityAcrossCoreConstructs);
// the same gap applies to rite bodies, and to a name first bound inside
// either block, which the VM keeps visible after the block ends.
func TestEachScopeIsolationDivergesBetweenEngines(t *testing.T) {
	src := "$total = 0\n~ each $x in [1, 2, 3]\n$total = $total + $x\n~ end\n! say $total\n"

	toks, err := lexer.Lex(src)
	require.NoError(t, err)
	stmts, err := parser.Parse(toks)
	require.NoError(t, err)

	treeRes := interpreter.New(nil).Run(stmts)
	prog := bytecode.Lower(ir.Optimize(ir.Compile(stmts)))
	vmRes := New(nil).Run(prog)

	require.Empty(t, treeRes.Errors)
	require.Empty(t, vmRes.Errors)
	assert.Equal(t, "0", treeRes.Events[0].Payload, "interpreter isolates each's per-iteration scope")
	assert.Equal(t, "6", vmRes.Events[0].Payload, "VM locals are flat per function, so the reassignment accumulates across iterations")
}

func TestVMClampsNegativeAndFractionalLoopCounts(t *testing.T) {
	res := runVM(t, "$n = 0\n~ loop -3\n$n = $n + 1\n~ end\n! say $n\n")
	require.Empty(t, res.Errors)
	assert.Equal(t, "0", res.Events[0].Payload, "a negative count must run zero iterations, not loop forever")

	res = runVM(t, "$n = 0\n~ loop 2.5\n$n = $n + 1\n~ end\n! say $n\n")
	require.Empty(t, res.Errors)
	assert.Equal(t, "2", res.Events[0].Payload, "a fractional count floors to an integer")
}

func TestVMUiPropsPreserveSourceOrder(t *testing.T) {
	toks, err := lexer.Lex(`! ui button { label: "ok", width: 10, disabled: false }` + "\n")
	require.NoError(t, err)
	stmts, err := parser.Parse(toks)
	require.NoError(t, err)

	treeRes := interpreter.New(nil).Run(stmts)
	prog := bytecode.Lower(ir.Optimize(ir.Compile(stmts)))
	vmRes := New(nil).Run(prog)

	var wantNames []string
	for _, p := range treeRes.Events[0].UiProps {
		wantNames = append(wantNames, p.Name)
	}
	assert.Equal(t, []string{"label", "width", "disabled"}, wantNames)

	var gotNames []string
	for _, p := range vmRes.Events[0].UiProps {
		gotNames = append(gotNames, p.Name)
	}
	assert.Equal(t, wantNames, gotNames, "EmitUi must preserve the same source order as the tree interpreter, not a map's iteration order")
}

func TestEngineParityAcrossCoreConstructs(t *testing.T) {
	parity(t, "$x = 41\n$x = $x + 1\n! say $x\n")
	parity(t, `$x = 5
~ if $x > 10
! say "big"
~ else
! say "small"
~ end
`)
	parity(t, "~ each $x in [1, 2, 3]\n! say $x\n~ end\n")
	parity(t, "~ fn square($x)\n^ $x * $x\n~ end\n! say square(6)\n")
	parity(t, `$x = 100
~ fn f($x)
^ $x + 1
~ end
! say f(5)
! say $x
`)
	parity(t, "$n = 0\n~ loop -3\n$n = $n + 1\n~ end\n! say $n\n")
	parity(t, "$n = 0\n~ loop 2.5\n$n = $n + 1\n~ end\n! say $n\n")
	parity(t, "$x = 4 / 2\n! say $x\n")
	parity(t, "$x = 7 % 2\n! say $x\n")
	parity(t, `! say "hello " + "world"`)
}
