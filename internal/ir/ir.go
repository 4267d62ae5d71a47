// Package ir implements NAUX's intermediate representation: a flat,
// stack-based instruction list the AST compiles to before being lowered
// to locals-slot bytecode (internal/bytecode).
package ir

import "naux/internal/token"

// Op identifies one IR instruction.
type Op int

const (
	ConstNum Op = iota
	ConstText
	ConstBool
	PushNull
	LoadVar
	StoreVar
	Add
	Sub
	Mul
	Div
	Mod
	Eq
	Ne
	Gt
	Ge
	Lt
	Le
	And
	Or
	Neg
	Not
	ClampCount
	Jump
	JumpIfFalse
	CallBuiltin
	CallFn
	MakeList
	MakeMap
	LoadField
	EmitSay
	EmitAsk
	EmitFetch
	EmitUi
	EmitText
	EmitButton
	EmitLog
	Return
)

var opNames = map[Op]string{
	ConstNum: "ConstNum", ConstText: "ConstText", ConstBool: "ConstBool", PushNull: "PushNull",
	LoadVar: "LoadVar", StoreVar: "StoreVar", Add: "Add", Sub: "Sub", Mul: "Mul", Div: "Div", Mod: "Mod",
	Eq: "Eq", Ne: "Ne", Gt: "Gt", Ge: "Ge", Lt: "Lt", Le: "Le", And: "And", Or: "Or", Neg: "Neg", Not: "Not",
	ClampCount: "ClampCount",
	Jump: "Jump", JumpIfFalse: "JumpIfFalse", CallBuiltin: "CallBuiltin", CallFn: "CallFn",
	MakeList: "MakeList", MakeMap: "MakeMap", LoadField: "LoadField",
	EmitSay: "EmitSay", EmitAsk: "EmitAsk", EmitFetch: "EmitFetch", EmitUi: "EmitUi",
	EmitText: "EmitText", EmitButton: "EmitButton", EmitLog: "EmitLog", Return: "Return",
}

func (o Op) String() string { return opNames[o] }

// Instr is a single IR instruction. Only the fields relevant to Op are
// meaningful; this mirrors the Rust source's per-variant payload enum
// without Go's sum-type ceremony.
type Instr struct {
	Op     Op
	Num    float64
	Str    string  // var name / builtin or function name / ui kind / field name
	Bool   bool
	Target int      // Jump/JumpIfFalse destination index
	Argc   int      // CallBuiltin/CallFn argument count
	Keys   []string // MakeMap key order / EmitUi property name order
	Pos    *token.Position
}

// Block is a flat, linear instruction sequence; Jump/JumpIfFalse targets
// are absolute indices into the same Block.
type Block []Instr

// Function is one compiled user function: its parameter names plus its
// IR body.
type Function struct {
	Name   string
	Params []string
	Code   Block
}

// Program is a whole compiled script: the top-level body plus every
// function defined in it.
type Program struct {
	Main      Block
	Functions map[string]*Function
}
