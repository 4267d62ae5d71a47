package token

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestLookupIdentKeywords(t *testing.T) {
	cases := map[string]Kind{
		"if":     KW_IF,
		"else":   KW_ELSE,
		"rite":   KW_RITE,
		"unsafe": KW_UNSAFE,
		"fn":     KW_FN,
		"loop":   KW_LOOP,
		"each":   KW_EACH,
		"while":  KW_WHILE,
		"end":    KW_END,
		"in":     KW_IN,
		"import": KW_IMPORT,
		"say":    IDENT,
		"myVar":  IDENT,
	}
	for text, want := range cases {
		assert.Equal(t, want, LookupIdent(text), "lookup %q", text)
	}
}

func TestKindString(t *testing.T) {
	assert.Equal(t, "if", KW_IF.String())
	assert.Equal(t, "->", ARROW.String())
	assert.Equal(t, "UNKNOWN", Kind(9999).String())
}

func TestPositionString(t *testing.T) {
	p := Position{Line: 3, Column: 7}
	assert.Equal(t, "3:7", p.String())
}

func TestTokenString(t *testing.T) {
	tok := Token{Kind: IDENT, Literal: "score", Pos: Position{Line: 1, Column: 1}}
	assert.Equal(t, `IDENT("score")@1:1`, tok.String())

	eof := Token{Kind: EOF, Pos: Position{Line: 2, Column: 1}}
	assert.Equal(t, "EOF@2:1", eof.String())
}
