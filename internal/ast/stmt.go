package ast

// RiteStmt is a `~ rite ... ~ end` scoped block.
type RiteStmt struct {
	baseNode
	Body []Stmt
}

// UnsafeStmt is a `~ unsafe ... ~ end` scoped block with the unsafe flag set.
type UnsafeStmt struct {
	baseNode
	Body []Stmt
}

// FnDefStmt is a `~ fn name($p1, $p2) ... ~ end` function definition.
type FnDefStmt struct {
	baseNode
	Name   string
	Params []string
	Body   []Stmt
}

// AssignStmt is `$name = expr`.
type AssignStmt struct {
	baseNode
	Name string
	Expr Expr
}

// IfStmt is `~ if cond ... [~ else ...] ~ end`.
type IfStmt struct {
	baseNode
	Cond Expr
	Then []Stmt
	Else []Stmt
}

// LoopStmt is `~ loop expr ... ~ end`.
type LoopStmt struct {
	baseNode
	Count Expr
	Body  []Stmt
}

// EachStmt is `~ each $var in expr ... ~ end`.
type EachStmt struct {
	baseNode
	Var  string
	Iter Expr
	Body []Stmt
}

// WhileStmt is `~ while expr ... ~ end`.
type WhileStmt struct {
	baseNode
	Cond Expr
	Body []Stmt
}

// ActionKind identifies which event an ActionStmt emits.
type ActionKind int

const (
	ActionSay ActionKind = iota
	ActionAsk
	ActionFetch
	ActionUi
	ActionText
	ActionButton
	ActionLog
)

// UiProp is one `key: expr` property of a `!ui` action.
type UiProp struct {
	Name  string
	Value Expr
}

// ActionStmt is `! action-name expr` (or `!ui kind { ... }`).
type ActionStmt struct {
	baseNode
	Kind     ActionKind
	Operand  Expr      // used by say/ask/fetch/text/button/log
	UiKind   string    // used by ui
	UiProps  []UiProp  // used by ui
}

// ReturnStmt is `^ expr?`.
type ReturnStmt struct {
	baseNode
	Value Expr // nil for a bare `^`
}

// ImportStmt is `~ import "path"`.
type ImportStmt struct {
	baseNode
	Path string
}

func (*RiteStmt) stmtNode()   {}
func (*UnsafeStmt) stmtNode() {}
func (*FnDefStmt) stmtNode()  {}
func (*AssignStmt) stmtNode() {}
func (*IfStmt) stmtNode()     {}
func (*LoopStmt) stmtNode()   {}
func (*EachStmt) stmtNode()   {}
func (*WhileStmt) stmtNode()  {}
func (*ActionStmt) stmtNode() {}
func (*ReturnStmt) stmtNode() {}
func (*ImportStmt) stmtNode() {}
