package parser

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"naux/internal/ast"
	"naux/internal/lexer"
)

func parseSrc(t *testing.T, src string) []ast.Stmt {
	t.Helper()
	toks, err := lexer.Lex(src)
	require.NoError(t, err)
	stmts, err := Parse(toks)
	require.NoError(t, err)
	return stmts
}

func TestParseAssign(t *testing.T) {
	stmts := parseSrc(t, "$score = 1 + 2 * 3\n")
	require.Len(t, stmts, 1)
	assign, ok := stmts[0].(*ast.AssignStmt)
	require.True(t, ok)
	assert.Equal(t, "score", assign.Name)

	bin, ok := assign.Expr.(*ast.BinaryExpr)
	require.True(t, ok)
	assert.Equal(t, ast.OpAdd, bin.Op)
	rhs, ok := bin.Right.(*ast.BinaryExpr)
	require.True(t, ok)
	assert.Equal(t, ast.OpMul, rhs.Op, "* should bind tighter than +")
}

func TestParseIfElse(t *testing.T) {
	stmts := parseSrc(t, `~ if $x > 0
! say "positive"
~ else
! say "non-positive"
~ end
`)
	require.Len(t, stmts, 1)
	ifs, ok := stmts[0].(*ast.IfStmt)
	require.True(t, ok)
	assert.Len(t, ifs.Then, 1)
	assert.Len(t, ifs.Else, 1)
}

func TestParseLoopEachWhile(t *testing.T) {
	stmts := parseSrc(t, `~ loop 3
! say "hi"
~ end
~ each $item in $list
! say $item
~ end
~ while $x
$x = $x - 1
~ end
`)
	require.Len(t, stmts, 3)
	_, ok := stmts[0].(*ast.LoopStmt)
	assert.True(t, ok)
	each, ok := stmts[1].(*ast.EachStmt)
	require.True(t, ok)
	assert.Equal(t, "item", each.Var)
	_, ok = stmts[2].(*ast.WhileStmt)
	assert.True(t, ok)
}

func TestParseFnDefAndReturn(t *testing.T) {
	stmts := parseSrc(t, `~ fn add($a, $b)
^ $a + $b
~ end
`)
	require.Len(t, stmts, 1)
	fn, ok := stmts[0].(*ast.FnDefStmt)
	require.True(t, ok)
	assert.Equal(t, "add", fn.Name)
	assert.Equal(t, []string{"a", "b"}, fn.Params)
	require.Len(t, fn.Body, 1)
	ret, ok := fn.Body[0].(*ast.ReturnStmt)
	require.True(t, ok)
	assert.NotNil(t, ret.Value)
}

func TestParseBareReturn(t *testing.T) {
	stmts := parseSrc(t, "~ fn noop()\n^\n~ end\n")
	fn := stmts[0].(*ast.FnDefStmt)
	ret := fn.Body[0].(*ast.ReturnStmt)
	assert.Nil(t, ret.Value)
}

func TestParseActionsSayAskUi(t *testing.T) {
	stmts := parseSrc(t, `! say "hello"
! ask "name?"
! ui button { label: "ok", width: 10 }
`)
	require.Len(t, stmts, 3)

	say := stmts[0].(*ast.ActionStmt)
	assert.Equal(t, ast.ActionSay, say.Kind)

	ask := stmts[1].(*ast.ActionStmt)
	assert.Equal(t, ast.ActionAsk, ask.Kind)

	ui := stmts[2].(*ast.ActionStmt)
	assert.Equal(t, ast.ActionUi, ui.Kind)
	assert.Equal(t, "button", ui.UiKind)
	require.Len(t, ui.UiProps, 2)
	assert.Equal(t, "label", ui.UiProps[0].Name)
}

func TestParseUnknownActionErrors(t *testing.T) {
	toks, err := lexer.Lex(`! bogus "x"`)
	require.NoError(t, err)
	_, err = Parse(toks)
	require.Error(t, err)
	pe := err.(*Error)
	assert.Equal(t, "parse/unknown-action", pe.Kind)
}

func TestParseImport(t *testing.T) {
	stmts := parseSrc(t, `~ import "shapes"`+"\n")
	imp := stmts[0].(*ast.ImportStmt)
	assert.Equal(t, "shapes", imp.Path)
}

func TestParseListAndMapLiterals(t *testing.T) {
	stmts := parseSrc(t, "$xs = [1, 2, 3]\n$m = { a: 1, b: 2 }\n")
	xs := stmts[0].(*ast.AssignStmt).Expr.(*ast.ListExpr)
	assert.Len(t, xs.Items, 3)
	m := stmts[1].(*ast.AssignStmt).Expr.(*ast.MapExpr)
	require.Len(t, m.Entries, 2)
	assert.Equal(t, "a", m.Entries[0].Key)
}

func TestParseIndexFieldAndCall(t *testing.T) {
	stmts := parseSrc(t, "$v = $list[0].name\n$n = len($list)\n")
	field := stmts[0].(*ast.AssignStmt).Expr.(*ast.FieldExpr)
	assert.Equal(t, "name", field.Field)
	_, ok := field.Target.(*ast.IndexExpr)
	assert.True(t, ok)

	call := stmts[1].(*ast.AssignStmt).Expr.(*ast.CallExpr)
	callee := call.Callee.(*ast.VarExpr)
	assert.Equal(t, "len", callee.Name)
	assert.Len(t, call.Args, 1)
}

func TestParseBoolLiteralsAndUnary(t *testing.T) {
	stmts := parseSrc(t, "$a = !true\n$b = -5\n")
	u1 := stmts[0].(*ast.AssignStmt).Expr.(*ast.UnaryExpr)
	assert.Equal(t, ast.OpNot, u1.Op)
	u2 := stmts[1].(*ast.AssignStmt).Expr.(*ast.UnaryExpr)
	assert.Equal(t, ast.OpNeg, u2.Op)
}

func TestParseUnexpectedTokenError(t *testing.T) {
	toks, err := lexer.Lex(")")
	require.NoError(t, err)
	_, err = Parse(toks)
	require.Error(t, err)
	assert.Equal(t, "parse/unexpected-token", err.(*Error).Kind)
}

func TestParseUnexpectedEOF(t *testing.T) {
	toks, err := lexer.Lex("~ if $x")
	require.NoError(t, err)
	_, err = Parse(toks)
	require.Error(t, err)
	assert.Equal(t, "parse/unexpected-eof", err.(*Error).Kind)
}
