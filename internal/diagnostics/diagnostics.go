// Package diagnostics implements the error-kind taxonomy NAUX reports
// (lex/*, parse/*, runtime/*, type/*, arith/*, index/*, import/*, vm/*)
// and a Rust-style rendered form of each.
package diagnostics

import (
	"fmt"

	"naux/internal/token"
)

// Diagnostic is a single NAUX error: a taxonomy kind, a message, and an
// optional source position (nil for diagnostics with no span, such as an
// unknown-builtin lookup performed outside an instruction context).
type Diagnostic struct {
	Kind    string
	Message string
	Pos     *token.Position
}

// New builds a Diagnostic.
func New(kind, message string, pos *token.Position) *Diagnostic {
	return &Diagnostic{Kind: kind, Message: message, Pos: pos}
}

// Error implements the error interface.
func (d *Diagnostic) Error() string {
	if d.Pos == nil {
		return fmt.Sprintf("%s: %s", d.Kind, d.Message)
	}
	return fmt.Sprintf("%s at %s: %s", d.Kind, d.Pos, d.Message)
}

// Kinds used throughout the runtime, grouped by the taxonomy's prefix.
const (
	KindLexUnexpectedChar  = "lex/unexpected-character"
	KindLexUnterminated    = "lex/unterminated-string"
	KindLexInvalidNumber   = "lex/invalid-number"
	KindParseUnexpected    = "parse/unexpected-token"
	KindParseExpected      = "parse/expected"
	KindParseUnexpectedEOF = "parse/unexpected-eof"
	KindParseUnknownAction = "parse/unknown-action"
	KindRuntimeUndefined   = "runtime/undefined-variable"
	KindRuntimeUnknownFn   = "runtime/unknown-function"
	KindRuntimeUnknownBltn = "runtime/unknown-builtin"
	KindRuntimeArgCount    = "runtime/argument-count"
	KindRuntimeRecursion   = "runtime/recursion-limit"
	KindTypeMismatch       = "type/mismatch"
	KindTypeComparison     = "type/comparison"
	KindArithDivByZero     = "arith/div-by-zero"
	KindIndexOutOfBounds   = "index/out-of-bounds"
	KindIndexInvalidKey    = "index/invalid-key"
	KindImportNotFound     = "import/not-found"
	KindImportCycle        = "import/cycle"
	KindVMStackUnderflow   = "vm/stack-underflow"
	KindVMBadOpcode        = "vm/bad-opcode"
)
