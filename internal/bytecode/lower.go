package bytecode

import "naux/internal/ir"

var irToOp = map[ir.Op]Op{
	ir.ConstNum: ConstNum, ir.ConstText: ConstText, ir.ConstBool: ConstBool, ir.PushNull: PushNull,
	ir.Add: Add, ir.Sub: Sub, ir.Mul: Mul, ir.Div: Div, ir.Mod: Mod,
	ir.Eq: Eq, ir.Ne: Ne, ir.Gt: Gt, ir.Ge: Ge, ir.Lt: Lt, ir.Le: Le,
	ir.And: And, ir.Or: Or, ir.Neg: Neg, ir.Not: Not, ir.ClampCount: ClampCount,
	ir.Jump: Jump, ir.JumpIfFalse: JumpIfFalse,
	ir.CallBuiltin: CallBuiltin, ir.CallFn: CallFn,
	ir.MakeList: MakeList, ir.MakeMap: MakeMap, ir.LoadField: LoadField,
	ir.EmitSay: EmitSay, ir.EmitAsk: EmitAsk, ir.EmitFetch: EmitFetch, ir.EmitUi: EmitUi,
	ir.EmitText: EmitText, ir.EmitButton: EmitButton, ir.EmitLog: EmitLog, ir.Return: Return,
}

// slots assigns a dense index to every distinct variable name it sees,
// in first-seen order.
type slots struct {
	index map[string]int
	next  int
}

func newSlots() *slots { return &slots{index: map[string]int{}} }

func (s *slots) get(name string) int {
	if i, ok := s.index[name]; ok {
		return i
	}
	i := s.next
	s.index[name] = i
	s.next++
	return i
}

// Lower converts an ir.Program into a Program with per-function dense
// local slots, then runs the redundant store/load peephole.
func Lower(prog *ir.Program) *Program {
	out := &Program{Functions: map[string]*Function{}}
	out.Main = lowerFunction("main", nil, prog.Main)
	for name, fn := range prog.Functions {
		out.Functions[name] = lowerFunction(name, fn.Params, fn.Code)
	}
	return out
}

func lowerFunction(name string, params []string, body ir.Block) *Function {
	s := newSlots()
	for _, p := range params {
		s.get(p)
	}
	code := make(Block, len(body))
	for i, instr := range body {
		code[i] = lowerInstr(instr, s)
	}
	code = peepholeRedundantStoreLoad(code)
	return &Function{Name: name, Params: params, NumSlots: s.next, Code: code}
}

func lowerInstr(instr ir.Instr, s *slots) Instr {
	out := Instr{
		Op: irToOp[instr.Op], Num: instr.Num, Str: instr.Str, Bool: instr.Bool,
		Target: instr.Target, Argc: instr.Argc, Keys: instr.Keys, Pos: instr.Pos,
	}
	switch instr.Op {
	case ir.LoadVar:
		out.Op = LoadLocal
		out.Slot = s.get(instr.Str)
		out.Str = ""
	case ir.StoreVar:
		out.Op = StoreLocal
		out.Slot = s.get(instr.Str)
		out.Str = ""
	}
	return out
}

// peepholeRedundantStoreLoad rewrites an adjacent `StoreLocal s;
// LoadLocal s` into `Dup; StoreLocal s`, which keeps the stored value on
// the stack instead of writing and immediately re-reading the same
// slot. Instruction count is unchanged so jump targets stay valid,
// except when something jumps directly into the LoadLocal half of the
// pair — that position now means something different, so such pairs are
// left alone.
func peepholeRedundantStoreLoad(block Block) Block {
	targets := map[int]bool{}
	for _, instr := range block {
		if instr.Op == Jump || instr.Op == JumpIfFalse {
			targets[instr.Target] = true
		}
	}
	out := make(Block, len(block))
	copy(out, block)
	for i := 0; i+1 < len(out); i++ {
		if out[i].Op == StoreLocal && out[i+1].Op == LoadLocal &&
			out[i].Slot == out[i+1].Slot && !targets[i+1] {
			slot := out[i].Slot
			pos := out[i].Pos
			out[i] = Instr{Op: Dup, Pos: pos}
			out[i+1] = Instr{Op: StoreLocal, Slot: slot, Pos: pos}
		}
	}
	return out
}
