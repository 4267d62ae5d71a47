package bytecode

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"naux/internal/ir"
	"naux/internal/lexer"
	"naux/internal/parser"
)

func lowerSrc(t *testing.T, src string) *Program {
	t.Helper()
	toks, err := lexer.Lex(src)
	require.NoError(t, err)
	stmts, err := parser.Parse(toks)
	require.NoError(t, err)
	return Lower(ir.Compile(stmts))
}

func TestLowerAssignsDenseSlotsInFirstSeenOrder(t *testing.T) {
	prog := lowerSrc(t, "$a = 1\n$b = 2\n$a = $a + $b\n")
	assert.Equal(t, 2, prog.Main.NumSlots)

	var stores []Instr
	for _, instr := range prog.Main.Code {
		if instr.Op == StoreLocal || instr.Op == Dup {
			stores = append(stores, instr)
		}
	}
	require.NotEmpty(t, stores)

	var slots []int
	for _, instr := range stores {
		if instr.Op == StoreLocal {
			slots = append(slots, instr.Slot)
		}
	}
	assert.Equal(t, []int{0, 1, 0}, slots, "$a takes slot 0 and $b slot 1, in first-seen order")
}

func TestLowerParamsOccupyFirstSlots(t *testing.T) {
	prog := lowerSrc(t, "~ fn add($a, $b)\n^ $a + $b\n~ end\n! say add(1, 2)\n")
	fn, ok := prog.Functions["add"]
	require.True(t, ok)
	assert.GreaterOrEqual(t, fn.NumSlots, 2)

	var loadSlots []int
	for _, instr := range fn.Code {
		if instr.Op == LoadLocal {
			loadSlots = append(loadSlots, instr.Slot)
		}
	}
	assert.Contains(t, loadSlots, 0)
	assert.Contains(t, loadSlots, 1)
}

func TestPeepholeCollapsesRedundantStoreLoad(t *testing.T) {
	prog := lowerSrc(t, "$x = 1 + 2\n! say $x\n")
	foundDup := false
	for _, instr := range prog.Main.Code {
		if instr.Op == Dup {
			foundDup = true
		}
	}
	assert.True(t, foundDup, "an assignment immediately read back should collapse store+load into dup+store")
}

func TestPeepholeSkipsPairsWithAJumpTarget(t *testing.T) {
	// A backward jump landing exactly on the LoadLocal half of a
	// store/load pair must block the peephole, or the jump would land on
	// a StoreLocal instead of the load it originally targeted.
	prog := lowerSrc(t, `$n = 3
~ while $n > 0
$n = $n - 1
~ end
! say $n
`)
	require.NotEmpty(t, prog.Main.Code)
	assert.Equal(t, StoreLocal, prog.Main.Code[1].Op, "the store of $n = 3 is kept")
	assert.Equal(t, LoadLocal, prog.Main.Code[2].Op, "the loop head is a jump target, so its load is not rewritten")
}
