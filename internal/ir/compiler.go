package ir

import (
	"fmt"

	"naux/internal/ast"
)

// compiler turns a parsed script into a Program. Loop/each constructs
// lower to explicit counter/index temporaries rather than getting
// dedicated loop opcodes, matching the rest of the instruction set's
// "desugar structure into jumps" style; a per-compiler counter keeps
// those temporaries unique across nested loops.
type compiler struct {
	tmp int
}

// Compile lowers a whole script to a Program.
func Compile(stmts []ast.Stmt) *Program {
	c := &compiler{}
	prog := &Program{Functions: map[string]*Function{}}
	var main Block
	for _, s := range stmts {
		if fn, ok := s.(*ast.FnDefStmt); ok {
			var body Block
			for _, bs := range fn.Body {
				c.compileStmt(bs, &body)
			}
			body = append(body, Instr{Op: Return, Pos: fn.Pos()})
			prog.Functions[fn.Name] = &Function{Name: fn.Name, Params: fn.Params, Code: body}
			continue
		}
		c.compileStmt(s, &main)
	}
	main = append(main, Instr{Op: Return})
	prog.Main = main
	return prog
}

func (c *compiler) nextTmp(prefix string) string {
	c.tmp++
	return fmt.Sprintf("__%s_%d__", prefix, c.tmp)
}

func (c *compiler) compileStmt(s ast.Stmt, bc *Block) {
	switch n := s.(type) {
	case *ast.RiteStmt:
		for _, st := range n.Body {
			c.compileStmt(st, bc)
		}
	case *ast.UnsafeStmt:
		for _, st := range n.Body {
			c.compileStmt(st, bc)
		}
	case *ast.FnDefStmt:
		// fn defs are hoisted by the top-level Compile loop only; the
		// parser accepts one inside a block, but it is not compiled here.
	case *ast.AssignStmt:
		c.compileExpr(n.Expr, bc)
		*bc = append(*bc, Instr{Op: StoreVar, Str: n.Name, Pos: n.Pos()})
	case *ast.IfStmt:
		c.compileExpr(n.Cond, bc)
		jmpFalse := len(*bc)
		*bc = append(*bc, Instr{Op: JumpIfFalse})
		for _, st := range n.Then {
			c.compileStmt(st, bc)
		}
		jmpEnd := len(*bc)
		*bc = append(*bc, Instr{Op: Jump})
		elseStart := len(*bc)
		for _, st := range n.Else {
			c.compileStmt(st, bc)
		}
		end := len(*bc)
		(*bc)[jmpFalse].Target = elseStart
		(*bc)[jmpEnd].Target = end
	case *ast.LoopStmt:
		c.compileLoop(n, bc)
	case *ast.EachStmt:
		c.compileEach(n, bc)
	case *ast.WhileStmt:
		start := len(*bc)
		c.compileExpr(n.Cond, bc)
		jmpFalse := len(*bc)
		*bc = append(*bc, Instr{Op: JumpIfFalse})
		for _, st := range n.Body {
			c.compileStmt(st, bc)
		}
		*bc = append(*bc, Instr{Op: Jump, Target: start})
		(*bc)[jmpFalse].Target = len(*bc)
	case *ast.ActionStmt:
		c.compileAction(n, bc)
	case *ast.ReturnStmt:
		if n.Value != nil {
			c.compileExpr(n.Value, bc)
		} else {
			*bc = append(*bc, Instr{Op: PushNull})
		}
		*bc = append(*bc, Instr{Op: Return, Pos: n.Pos()})
	case *ast.ImportStmt:
		// imports are resolved at evaluation time by the interpreter and
		// are not compiled; a program run on the VM skips them.
	}
}

func (c *compiler) compileLoop(n *ast.LoopStmt, bc *Block) {
	tmp := c.nextTmp("loop_rem")
	c.compileExpr(n.Count, bc)
	*bc = append(*bc, Instr{Op: ClampCount, Pos: n.Pos()})
	*bc = append(*bc, Instr{Op: StoreVar, Str: tmp})
	start := len(*bc)
	*bc = append(*bc, Instr{Op: LoadVar, Str: tmp})
	jmpFalse := len(*bc)
	*bc = append(*bc, Instr{Op: JumpIfFalse})
	for _, st := range n.Body {
		c.compileStmt(st, bc)
	}
	*bc = append(*bc, Instr{Op: LoadVar, Str: tmp})
	*bc = append(*bc, Instr{Op: ConstNum, Num: 1})
	*bc = append(*bc, Instr{Op: Sub})
	*bc = append(*bc, Instr{Op: StoreVar, Str: tmp})
	*bc = append(*bc, Instr{Op: Jump, Target: start})
	(*bc)[jmpFalse].Target = len(*bc)
}

func (c *compiler) compileEach(n *ast.EachStmt, bc *Block) {
	tmpIter := c.nextTmp("each_iter")
	tmpIdx := c.nextTmp("each_idx")
	c.compileExpr(n.Iter, bc)
	*bc = append(*bc, Instr{Op: StoreVar, Str: tmpIter})
	*bc = append(*bc, Instr{Op: ConstNum, Num: 0})
	*bc = append(*bc, Instr{Op: StoreVar, Str: tmpIdx})
	start := len(*bc)
	*bc = append(*bc, Instr{Op: LoadVar, Str: tmpIdx})
	*bc = append(*bc, Instr{Op: LoadVar, Str: tmpIter})
	*bc = append(*bc, Instr{Op: CallBuiltin, Str: "len", Argc: 1})
	*bc = append(*bc, Instr{Op: Lt})
	jmpFalse := len(*bc)
	*bc = append(*bc, Instr{Op: JumpIfFalse})
	*bc = append(*bc, Instr{Op: LoadVar, Str: tmpIter})
	*bc = append(*bc, Instr{Op: LoadVar, Str: tmpIdx})
	*bc = append(*bc, Instr{Op: CallBuiltin, Str: "__index", Argc: 2})
	*bc = append(*bc, Instr{Op: StoreVar, Str: n.Var})
	for _, st := range n.Body {
		c.compileStmt(st, bc)
	}
	*bc = append(*bc, Instr{Op: LoadVar, Str: tmpIdx})
	*bc = append(*bc, Instr{Op: ConstNum, Num: 1})
	*bc = append(*bc, Instr{Op: Add})
	*bc = append(*bc, Instr{Op: StoreVar, Str: tmpIdx})
	*bc = append(*bc, Instr{Op: Jump, Target: start})
	(*bc)[jmpFalse].Target = len(*bc)
}

var binaryOps = map[ast.BinaryOp]Op{
	ast.OpAdd: Add, ast.OpSub: Sub, ast.OpMul: Mul, ast.OpDiv: Div, ast.OpMod: Mod,
	ast.OpEq: Eq, ast.OpNe: Ne, ast.OpGt: Gt, ast.OpGe: Ge, ast.OpLt: Lt, ast.OpLe: Le,
	ast.OpAnd: And, ast.OpOr: Or,
}

func (c *compiler) compileExpr(e ast.Expr, bc *Block) {
	switch n := e.(type) {
	case *ast.NumberExpr:
		*bc = append(*bc, Instr{Op: ConstNum, Num: n.Value, Pos: n.Pos()})
	case *ast.BoolExpr:
		*bc = append(*bc, Instr{Op: ConstBool, Bool: n.Value, Pos: n.Pos()})
	case *ast.TextExpr:
		*bc = append(*bc, Instr{Op: ConstText, Str: n.Value, Pos: n.Pos()})
	case *ast.ListExpr:
		for _, item := range n.Items {
			c.compileExpr(item, bc)
		}
		*bc = append(*bc, Instr{Op: MakeList, Argc: len(n.Items), Pos: n.Pos()})
	case *ast.MapExpr:
		keys := make([]string, len(n.Entries))
		for i, entry := range n.Entries {
			c.compileExpr(entry.Value, bc)
			keys[i] = entry.Key
		}
		*bc = append(*bc, Instr{Op: MakeMap, Keys: keys, Pos: n.Pos()})
	case *ast.VarExpr:
		*bc = append(*bc, Instr{Op: LoadVar, Str: n.Name, Pos: n.Pos()})
	case *ast.CallExpr:
		for _, a := range n.Args {
			c.compileExpr(a, bc)
		}
		name, _ := n.Callee.(*ast.VarExpr)
		callee := ""
		if name != nil {
			callee = name.Name
		}
		*bc = append(*bc, Instr{Op: CallBuiltin, Str: callee, Argc: len(n.Args), Pos: n.Pos()})
	case *ast.BinaryExpr:
		c.compileExpr(n.Left, bc)
		c.compileExpr(n.Right, bc)
		*bc = append(*bc, Instr{Op: binaryOps[n.Op], Pos: n.Pos()})
	case *ast.UnaryExpr:
		c.compileExpr(n.Operand, bc)
		if n.Op == ast.OpNeg {
			*bc = append(*bc, Instr{Op: Neg, Pos: n.Pos()})
		} else {
			*bc = append(*bc, Instr{Op: Not, Pos: n.Pos()})
		}
	case *ast.IndexExpr:
		c.compileExpr(n.Target, bc)
		c.compileExpr(n.Index, bc)
		*bc = append(*bc, Instr{Op: CallBuiltin, Str: "__index", Argc: 2, Pos: n.Pos()})
	case *ast.FieldExpr:
		c.compileExpr(n.Target, bc)
		*bc = append(*bc, Instr{Op: LoadField, Str: n.Field, Pos: n.Pos()})
	}
}

func (c *compiler) compileAction(n *ast.ActionStmt, bc *Block) {
	switch n.Kind {
	case ast.ActionSay:
		c.compileExpr(n.Operand, bc)
		*bc = append(*bc, Instr{Op: EmitSay, Pos: n.Pos()})
	case ast.ActionAsk:
		c.compileExpr(n.Operand, bc)
		*bc = append(*bc, Instr{Op: EmitAsk, Pos: n.Pos()})
	case ast.ActionFetch:
		c.compileExpr(n.Operand, bc)
		*bc = append(*bc, Instr{Op: EmitFetch, Pos: n.Pos()})
	case ast.ActionText:
		c.compileExpr(n.Operand, bc)
		*bc = append(*bc, Instr{Op: EmitText, Pos: n.Pos()})
	case ast.ActionButton:
		c.compileExpr(n.Operand, bc)
		*bc = append(*bc, Instr{Op: EmitButton, Pos: n.Pos()})
	case ast.ActionLog:
		c.compileExpr(n.Operand, bc)
		*bc = append(*bc, Instr{Op: EmitLog, Pos: n.Pos()})
	case ast.ActionUi:
		// Props are carried as an ordered (name, value) sequence on the
		// EmitUi instruction itself rather than via MakeMap: a Go map has
		// no iteration order, which would make the emitted Ui event's
		// property list nondeterministic.
		for _, p := range n.UiProps {
			c.compileExpr(p.Value, bc)
		}
		*bc = append(*bc, Instr{Op: EmitUi, Str: n.UiKind, Keys: uiPropNames(n.UiProps), Pos: n.Pos()})
	}
}

func uiPropNames(props []ast.UiProp) []string {
	names := make([]string, len(props))
	for i, p := range props {
		names[i] = p.Name
	}
	return names
}
