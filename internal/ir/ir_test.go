package ir

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"naux/internal/lexer"
	"naux/internal/parser"
)

func compileSrc(t *testing.T, src string) *Program {
	t.Helper()
	toks, err := lexer.Lex(src)
	require.NoError(t, err)
	stmts, err := parser.Parse(toks)
	require.NoError(t, err)
	return Compile(stmts)
}

func TestCompileAssignAndSay(t *testing.T) {
	prog := compileSrc(t, "$x = 1\n! say $x\n")
	var ops []Op
	for _, instr := range prog.Main {
		ops = append(ops, instr.Op)
	}
	assert.Contains(t, ops, StoreVar)
	assert.Contains(t, ops, LoadVar)
	assert.Contains(t, ops, EmitSay)
	assert.Equal(t, Return, ops[len(ops)-1])
}

func TestCompileFnDefGoesToFunctionsNotMain(t *testing.T) {
	prog := compileSrc(t, "~ fn double($x)\n^ $x * 2\n~ end\n! say double(3)\n")
	fn, ok := prog.Functions["double"]
	require.True(t, ok)
	assert.Equal(t, []string{"x"}, fn.Params)

	for _, instr := range prog.Main {
		assert.NotEqual(t, Op(CallFn), instr.Op, "call compiles via CallBuiltin by name, not a dedicated CallFn op")
	}
}

func TestCompileRiteInlinesBodyWithNoScopeInstruction(t *testing.T) {
	withRite := compileSrc(t, "~ rite\n$x = 1\n$y = 2\n~ end\n")
	without := compileSrc(t, "$x = 1\n$y = 2\n")
	assert.Equal(t, len(without.Main), len(withRite.Main), "rite must compile to exactly its body, no extra scope opcode")
}

func TestCompileLoopDesugarsToCounterTemp(t *testing.T) {
	prog := compileSrc(t, "~ loop 3\n$n = $n + 1\n~ end\n")
	var storedNames []string
	for _, instr := range prog.Main {
		if instr.Op == StoreVar {
			storedNames = append(storedNames, instr.Str)
		}
	}
	assert.Contains(t, storedNames, "n")
	found := false
	for _, name := range storedNames {
		if name != "n" {
			found = true
		}
	}
	assert.True(t, found, "loop must introduce a counter temp distinct from user variables")
}

func TestCompileLoopClampsCountBeforeStoringCounter(t *testing.T) {
	prog := compileSrc(t, "~ loop $n\n! say 1\n~ end\n")
	clampIdx, storeIdx := -1, -1
	for i, instr := range prog.Main {
		if instr.Op == ClampCount && clampIdx == -1 {
			clampIdx = i
		}
		if instr.Op == StoreVar && storeIdx == -1 && clampIdx != -1 {
			storeIdx = i
		}
	}
	require.NotEqual(t, -1, clampIdx, "loop count must be clamped, matching the interpreter's floor/non-negative rule for both literal and runtime counts")
	require.NotEqual(t, -1, storeIdx)
	assert.Less(t, clampIdx, storeIdx, "the count must be clamped before it is stored into the loop counter temp")
}

func TestCompileUiEmitsKeysInSourceOrderWithoutMakeMap(t *testing.T) {
	prog := compileSrc(t, `! ui button { label: "ok", width: 10 }`)
	var emit Instr
	for _, instr := range prog.Main {
		assert.NotEqual(t, MakeMap, instr.Op, "ui props must not round-trip through an unordered map")
		if instr.Op == EmitUi {
			emit = instr
		}
	}
	assert.Equal(t, []string{"label", "width"}, emit.Keys)
}

func TestCompileNestedLoopsGetDistinctTempNames(t *testing.T) {
	prog := compileSrc(t, `~ loop 2
~ loop 3
$n = $n + 1
~ end
~ end
`)
	seen := map[string]bool{}
	for _, instr := range prog.Main {
		if instr.Op == StoreVar && instr.Str != "n" {
			if seen[instr.Str] {
				t.Fatalf("temp name %q reused across nested loops", instr.Str)
			}
			seen[instr.Str] = true
		}
	}
	assert.Len(t, seen, 2, "each nested loop gets its own counter temp")
}

func TestCompileEachDesugarsToIndexAndIterTemps(t *testing.T) {
	prog := compileSrc(t, "~ each $x in [1, 2, 3]\n$y = $x\n~ end\n")
	var builtinCalls []string
	for _, instr := range prog.Main {
		if instr.Op == CallBuiltin {
			builtinCalls = append(builtinCalls, instr.Str)
		}
	}
	assert.Contains(t, builtinCalls, "len")
	assert.Contains(t, builtinCalls, "__index")
}

func TestOptimizeFoldsConstantArithmetic(t *testing.T) {
	prog := compileSrc(t, "$x = 1 + 2\n")
	Optimize(prog)
	var consts []float64
	for _, instr := range prog.Main {
		if instr.Op == ConstNum {
			consts = append(consts, instr.Num)
		}
	}
	require.Len(t, consts, 1)
	assert.Equal(t, 3.0, consts[0])
}

func TestOptimizeLeavesDivisionByZeroUnfolded(t *testing.T) {
	prog := compileSrc(t, "$x = 1 / 0\n")
	Optimize(prog)
	var hasDiv bool
	for _, instr := range prog.Main {
		if instr.Op == Div {
			hasDiv = true
		}
	}
	assert.True(t, hasDiv, "div-by-zero must survive folding so the runtime still raises the diagnostic")
}

func TestOptimizePrunesUnreachableElseBranch(t *testing.T) {
	prog := compileSrc(t, `~ if true
! say "yes"
~ else
! say "no"
~ end
`)
	before := len(prog.Main)
	Optimize(prog)
	assert.Less(t, len(prog.Main), before)
}

func TestOptimizeIsIdempotentAtFixpoint(t *testing.T) {
	prog := compileSrc(t, "~ loop 3\n$n = $n + 1\n~ end\n! say $n\n")
	once := Optimize(prog)
	snapshot := append(Block(nil), once.Main...)
	twice := Optimize(once)
	assert.Equal(t, snapshot, twice.Main)
}

func TestOpStringKnownAndDefault(t *testing.T) {
	assert.Equal(t, "Add", Add.String())
	assert.Equal(t, "Return", Return.String())
}
