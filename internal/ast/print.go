package ast

import (
	"fmt"
	"strconv"
	"strings"
)

// Print renders a parsed script back to a debug-friendly textual form. It
// is not a source formatter (that collaborator is out of this core's
// scope) — only a readable dump for debugging; neither the REPL nor the
// CLI calls it.
func Print(stmts []Stmt) string {
	var b strings.Builder
	for _, s := range stmts {
		printStmt(&b, s, 0)
	}
	return b.String()
}

func indent(b *strings.Builder, depth int) {
	b.WriteString(strings.Repeat("  ", depth))
}

func printStmt(b *strings.Builder, s Stmt, depth int) {
	indent(b, depth)
	switch n := s.(type) {
	case *RiteStmt:
		b.WriteString("rite\n")
		printBlock(b, n.Body, depth+1)
	case *UnsafeStmt:
		b.WriteString("unsafe\n")
		printBlock(b, n.Body, depth+1)
	case *FnDefStmt:
		fmt.Fprintf(b, "fn %s(%s)\n", n.Name, strings.Join(n.Params, ", "))
		printBlock(b, n.Body, depth+1)
	case *AssignStmt:
		fmt.Fprintf(b, "$%s = %s\n", n.Name, ExprString(n.Expr))
	case *IfStmt:
		fmt.Fprintf(b, "if %s\n", ExprString(n.Cond))
		printBlock(b, n.Then, depth+1)
		if len(n.Else) > 0 {
			indent(b, depth)
			b.WriteString("else\n")
			printBlock(b, n.Else, depth+1)
		}
	case *LoopStmt:
		fmt.Fprintf(b, "loop %s\n", ExprString(n.Count))
		printBlock(b, n.Body, depth+1)
	case *EachStmt:
		fmt.Fprintf(b, "each $%s in %s\n", n.Var, ExprString(n.Iter))
		printBlock(b, n.Body, depth+1)
	case *WhileStmt:
		fmt.Fprintf(b, "while %s\n", ExprString(n.Cond))
		printBlock(b, n.Body, depth+1)
	case *ActionStmt:
		b.WriteString(actionString(n))
		b.WriteString("\n")
	case *ReturnStmt:
		if n.Value == nil {
			b.WriteString("^\n")
		} else {
			fmt.Fprintf(b, "^ %s\n", ExprString(n.Value))
		}
	case *ImportStmt:
		fmt.Fprintf(b, "import %q\n", n.Path)
	default:
		fmt.Fprintf(b, "<unknown stmt %T>\n", s)
	}
}

func printBlock(b *strings.Builder, body []Stmt, depth int) {
	for _, s := range body {
		printStmt(b, s, depth)
	}
}

func actionString(n *ActionStmt) string {
	switch n.Kind {
	case ActionSay:
		return "! say " + ExprString(n.Operand)
	case ActionAsk:
		return "! ask " + ExprString(n.Operand)
	case ActionFetch:
		return "! fetch " + ExprString(n.Operand)
	case ActionText:
		return "! text " + ExprString(n.Operand)
	case ActionButton:
		return "! button " + ExprString(n.Operand)
	case ActionLog:
		return "! log " + ExprString(n.Operand)
	case ActionUi:
		parts := make([]string, len(n.UiProps))
		for i, p := range n.UiProps {
			parts[i] = fmt.Sprintf("%s: %s", p.Name, ExprString(p.Value))
		}
		return fmt.Sprintf("!ui %s { %s }", n.UiKind, strings.Join(parts, ", "))
	}
	return "! <unknown action>"
}

// ExprString renders e as a single line, used by diagnostics and the
// debug printer above.
func ExprString(e Expr) string {
	switch n := e.(type) {
	case *NumberExpr:
		return strconv.FormatFloat(n.Value, 'g', -1, 64)
	case *BoolExpr:
		return strconv.FormatBool(n.Value)
	case *TextExpr:
		return strconv.Quote(n.Value)
	case *ListExpr:
		parts := make([]string, len(n.Items))
		for i, it := range n.Items {
			parts[i] = ExprString(it)
		}
		return "[" + strings.Join(parts, ", ") + "]"
	case *MapExpr:
		parts := make([]string, len(n.Entries))
		for i, e := range n.Entries {
			parts[i] = fmt.Sprintf("%s: %s", e.Key, ExprString(e.Value))
		}
		return "{" + strings.Join(parts, ", ") + "}"
	case *VarExpr:
		return "$" + n.Name
	case *CallExpr:
		parts := make([]string, len(n.Args))
		for i, a := range n.Args {
			parts[i] = ExprString(a)
		}
		return fmt.Sprintf("%s(%s)", ExprString(n.Callee), strings.Join(parts, ", "))
	case *BinaryExpr:
		return fmt.Sprintf("(%s %s %s)", ExprString(n.Left), n.Op, ExprString(n.Right))
	case *UnaryExpr:
		return fmt.Sprintf("(%s%s)", n.Op, ExprString(n.Operand))
	case *IndexExpr:
		return fmt.Sprintf("%s[%s]", ExprString(n.Target), ExprString(n.Index))
	case *FieldExpr:
		return fmt.Sprintf("%s.%s", ExprString(n.Target), n.Field)
	default:
		return fmt.Sprintf("<unknown expr %T>", e)
	}
}
