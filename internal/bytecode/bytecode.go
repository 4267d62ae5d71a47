// Package bytecode lowers IR (internal/ir) into the VM's instruction
// set: IR's name-keyed LoadVar/StoreVar become dense per-function local
// slots (LoadLocal/StoreLocal, params occupying the first slots), which
// is what internal/vm actually executes.
package bytecode

import "naux/internal/token"

// Op identifies one bytecode instruction. It mirrors ir.Op except
// LoadVar/StoreVar are replaced by the slot-indexed LoadLocal/StoreLocal,
// and Dup exists only here to support the redundant store/load peephole.
type Op int

const (
	ConstNum Op = iota
	ConstText
	ConstBool
	PushNull
	LoadLocal
	StoreLocal
	Dup
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

// Instr is one bytecode instruction; only the fields relevant to Op are
// meaningful.
type Instr struct {
	Op     Op
	Num    float64
	Str    string // builtin/fn name, field name, ui kind
	Bool   bool
	Slot   int
	Target int
	Argc   int
	Keys   []string // MakeMap key order / EmitUi property name order
	Pos    *token.Position
}

// Block is a flat instruction sequence; jump targets are absolute
// indices into the same Block.
type Block []Instr

// Function is one lowered function body: its dense slot count (params
// occupy slots [0, len(Params))) and its code.
type Function struct {
	Name      string
	Params    []string
	NumSlots  int
	Code      Block
}

// Program is a whole lowered script.
type Program struct {
	Main      *Function
	Functions map[string]*Function
}
