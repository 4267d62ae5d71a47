package lexer

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"naux/internal/token"
)

func kinds(toks []token.Token) []token.Kind {
	out := make([]token.Kind, len(toks))
	for i, t := range toks {
		out[i] = t.Kind
	}
	return out
}

func TestLexPunctuationAndOperators(t *testing.T) {
	toks, err := Lex(`~ ! $ ^ -> . , : ( ) { } [ ] = + - * / % == != > >= < <= && ||`)
	assert.NoError(t, err)
	assert.Equal(t, []token.Kind{
		token.TILDE, token.BANG, token.DOLLAR, token.CARET, token.ARROW,
		token.DOT, token.COMMA, token.COLON, token.LPAREN, token.RPAREN,
		token.LBRACE, token.RBRACE, token.LBRACKET, token.RBRACKET,
		token.ASSIGN, token.PLUS, token.MINUS, token.STAR, token.SLASH,
		token.PERCENT, token.EQ, token.NE, token.GT, token.GE, token.LT,
		token.LE, token.AND, token.OR, token.EOF,
	}, kinds(toks))
}

func TestLexKeywordsAndIdents(t *testing.T) {
	toks, err := Lex("if else rite unsafe fn loop each while end in import score")
	assert.NoError(t, err)
	assert.Equal(t, []token.Kind{
		token.KW_IF, token.KW_ELSE, token.KW_RITE, token.KW_UNSAFE, token.KW_FN,
		token.KW_LOOP, token.KW_EACH, token.KW_WHILE, token.KW_END, token.KW_IN,
		token.KW_IMPORT, token.IDENT, token.EOF,
	}, kinds(toks))
	assert.Equal(t, "score", toks[11].Literal)
}

func TestLexNumbers(t *testing.T) {
	toks, err := Lex("42 3.14 0")
	assert.NoError(t, err)
	assert.Equal(t, float64(42), toks[0].Number)
	assert.Equal(t, float64(3.14), toks[1].Number)
	assert.Equal(t, float64(0), toks[2].Number)
}

func TestLexStringWithEscapes(t *testing.T) {
	toks, err := Lex(`"hello\nworld" "quote: \""`)
	assert.NoError(t, err)
	assert.Equal(t, "hello\nworld", toks[0].Literal)
	assert.Equal(t, `quote: "`, toks[1].Literal)
}

func TestLexUnterminatedString(t *testing.T) {
	_, err := Lex(`"oops`)
	assert.Error(t, err)
	lexErr, ok := err.(*Error)
	assert.True(t, ok)
	assert.Equal(t, "lex/unterminated-string", lexErr.Kind)
}

func TestLexUnexpectedCharacter(t *testing.T) {
	_, err := Lex("@")
	assert.Error(t, err)
	lexErr, ok := err.(*Error)
	assert.True(t, ok)
	assert.Equal(t, "lex/unexpected-character", lexErr.Kind)
}

func TestLexTracksLineAndColumn(t *testing.T) {
	toks, err := Lex("a\nb")
	assert.NoError(t, err)
	assert.Equal(t, token.Position{Line: 1, Column: 1}, toks[0].Pos)
	assert.Equal(t, token.Position{Line: 2, Column: 1}, toks[2].Pos)
}

func TestLexSingleAmpersandErrors(t *testing.T) {
	_, err := Lex("&")
	assert.Error(t, err)
}
