// Package parser implements NAUX's recursive-descent statement/block
// grammar and Pratt-precedence expression grammar over the token stream
// produced by internal/lexer.
package parser

import (
	"fmt"

	"naux/internal/ast"
	"naux/internal/token"
)

// Error is a parse error: an unexpected token, a missing expected token,
// or running off the end of input mid-construct.
type Error struct {
	Kind    string
	Message string
	Pos     token.Position
}

func (e *Error) Error() string {
	return fmt.Sprintf("%s at %s: %s", e.Kind, e.Pos, e.Message)
}

// Parser consumes a token stream and builds a statement list.
type Parser struct {
	toks []token.Token
	pos  int
}

// New creates a Parser over toks (as produced by lexer.Lex).
func New(toks []token.Token) *Parser {
	return &Parser{toks: toks}
}

// Parse parses a complete token stream into a script body. It stops at the
// first error encountered: lexing and parsing both short-circuit rather
// than accumulate diagnostics.
func Parse(toks []token.Token) ([]ast.Stmt, error) {
	return New(toks).ParseScript()
}

func (p *Parser) cur() token.Token {
	if p.pos >= len(p.toks) {
		return p.toks[len(p.toks)-1] // EOF
	}
	return p.toks[p.pos]
}

func (p *Parser) peekKind(offset int) token.Kind {
	idx := p.pos + offset
	if idx >= len(p.toks) {
		return token.EOF
	}
	return p.toks[idx].Kind
}

func (p *Parser) advance() token.Token {
	t := p.cur()
	if p.pos < len(p.toks)-1 {
		p.pos++
	}
	return t
}

func (p *Parser) check(k token.Kind) bool { return p.cur().Kind == k }

func (p *Parser) match(k token.Kind) bool {
	if p.check(k) {
		p.advance()
		return true
	}
	return false
}

func (p *Parser) expect(k token.Kind, what string) (token.Token, error) {
	if p.check(k) {
		return p.advance(), nil
	}
	if p.cur().Kind == token.EOF {
		return token.Token{}, &Error{Kind: "parse/unexpected-eof", Message: "expected " + what + ", found end of input", Pos: p.cur().Pos}
	}
	return token.Token{}, &Error{Kind: "parse/expected", Message: "expected " + what + ", found " + p.cur().Kind.String(), Pos: p.cur().Pos}
}

func (p *Parser) isEnd() bool {
	return p.check(token.TILDE) && p.peekKind(1) == token.KW_END
}

func (p *Parser) isElseOrEnd() bool {
	if !p.check(token.TILDE) {
		return false
	}
	return p.peekKind(1) == token.KW_ELSE || p.peekKind(1) == token.KW_END
}

func (p *Parser) skipNewlines() {
	for p.check(token.NEWLINE) {
		p.advance()
	}
}

// ParseScript parses a whole top-level program: a sequence of statements,
// skipping blank lines between them.
func (p *Parser) ParseScript() ([]ast.Stmt, error) {
	var stmts []ast.Stmt
	p.skipNewlines()
	for !p.check(token.EOF) {
		s, err := p.parseStmt()
		if err != nil {
			return nil, err
		}
		stmts = append(stmts, s)
		p.skipNewlines()
	}
	return stmts, nil
}

func (p *Parser) parseBlockUntil(stop func() bool) ([]ast.Stmt, error) {
	var body []ast.Stmt
	p.skipNewlines()
	for !stop() {
		if p.check(token.EOF) {
			return nil, &Error{Kind: "parse/unexpected-eof", Message: "expected '~ end'", Pos: p.cur().Pos}
		}
		s, err := p.parseStmt()
		if err != nil {
			return nil, err
		}
		body = append(body, s)
		p.skipNewlines()
	}
	return body, nil
}

func (p *Parser) parseStmt() (ast.Stmt, error) {
	switch p.cur().Kind {
	case token.TILDE:
		return p.parseTildeStmt()
	case token.DOLLAR:
		return p.parseAssign()
	case token.BANG:
		return p.parseAction()
	case token.CARET:
		return p.parseReturn()
	default:
		return nil, &Error{Kind: "parse/unexpected-token", Message: "unexpected token " + p.cur().Kind.String(), Pos: p.cur().Pos}
	}
}

func (p *Parser) parseTildeStmt() (ast.Stmt, error) {
	pos := p.cur().Pos
	p.advance() // consume ~
	switch p.cur().Kind {
	case token.KW_RITE:
		return p.parseRite(pos)
	case token.KW_UNSAFE:
		return p.parseUnsafe(pos)
	case token.KW_FN:
		return p.parseFn(pos)
	case token.KW_IF:
		return p.parseIf(pos)
	case token.KW_LOOP:
		return p.parseLoop(pos)
	case token.KW_EACH:
		return p.parseEach(pos)
	case token.KW_WHILE:
		return p.parseWhile(pos)
	case token.KW_IMPORT:
		return p.parseImport(pos)
	default:
		return nil, &Error{Kind: "parse/unexpected-token", Message: "unexpected token " + p.cur().Kind.String() + " after '~'", Pos: p.cur().Pos}
	}
}

func (p *Parser) parseRite(pos token.Position) (ast.Stmt, error) {
	p.advance() // rite
	body, err := p.parseBlockUntil(p.isEnd)
	if err != nil {
		return nil, err
	}
	if err := p.expectEnd(); err != nil {
		return nil, err
	}
	n := &ast.RiteStmt{Body: body}
	n.SetPos(ast.At(pos))
	return n, nil
}

func (p *Parser) parseUnsafe(pos token.Position) (ast.Stmt, error) {
	p.advance() // unsafe
	body, err := p.parseBlockUntil(p.isEnd)
	if err != nil {
		return nil, err
	}
	if err := p.expectEnd(); err != nil {
		return nil, err
	}
	n := &ast.UnsafeStmt{Body: body}
	n.SetPos(ast.At(pos))
	return n, nil
}

func (p *Parser) parseFn(pos token.Position) (ast.Stmt, error) {
	p.advance() // fn
	nameTok, err := p.expect(token.IDENT, "function name")
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(token.LPAREN, "'('"); err != nil {
		return nil, err
	}
	var params []string
	for !p.check(token.RPAREN) {
		if _, err := p.expect(token.DOLLAR, "'$'"); err != nil {
			return nil, err
		}
		pTok, err := p.expect(token.IDENT, "parameter name")
		if err != nil {
			return nil, err
		}
		params = append(params, pTok.Literal)
		if !p.match(token.COMMA) {
			break
		}
	}
	if _, err := p.expect(token.RPAREN, "')'"); err != nil {
		return nil, err
	}
	body, err := p.parseBlockUntil(p.isEnd)
	if err != nil {
		return nil, err
	}
	if err := p.expectEnd(); err != nil {
		return nil, err
	}
	n := &ast.FnDefStmt{Name: nameTok.Literal, Params: params, Body: body}
	n.SetPos(ast.At(pos))
	return n, nil
}

func (p *Parser) parseIf(pos token.Position) (ast.Stmt, error) {
	p.advance() // if
	cond, err := p.parseExpr(0)
	if err != nil {
		return nil, err
	}
	then, err := p.parseBlockUntil(p.isElseOrEnd)
	if err != nil {
		return nil, err
	}
	var elseBody []ast.Stmt
	if p.check(token.TILDE) && p.peekKind(1) == token.KW_ELSE {
		p.advance() // ~
		p.advance() // else
		elseBody, err = p.parseBlockUntil(p.isEnd)
		if err != nil {
			return nil, err
		}
	}
	if err := p.expectEnd(); err != nil {
		return nil, err
	}
	n := &ast.IfStmt{Cond: cond, Then: then, Else: elseBody}
	n.SetPos(ast.At(pos))
	return n, nil
}

func (p *Parser) parseLoop(pos token.Position) (ast.Stmt, error) {
	p.advance() // loop
	count, err := p.parseExpr(0)
	if err != nil {
		return nil, err
	}
	body, err := p.parseBlockUntil(p.isEnd)
	if err != nil {
		return nil, err
	}
	if err := p.expectEnd(); err != nil {
		return nil, err
	}
	n := &ast.LoopStmt{Count: count, Body: body}
	n.SetPos(ast.At(pos))
	return n, nil
}

func (p *Parser) parseEach(pos token.Position) (ast.Stmt, error) {
	p.advance() // each
	if _, err := p.expect(token.DOLLAR, "'$'"); err != nil {
		return nil, err
	}
	varTok, err := p.expect(token.IDENT, "loop variable name")
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(token.KW_IN, "'in'"); err != nil {
		return nil, err
	}
	iter, err := p.parseExpr(0)
	if err != nil {
		return nil, err
	}
	body, err := p.parseBlockUntil(p.isEnd)
	if err != nil {
		return nil, err
	}
	if err := p.expectEnd(); err != nil {
		return nil, err
	}
	n := &ast.EachStmt{Var: varTok.Literal, Iter: iter, Body: body}
	n.SetPos(ast.At(pos))
	return n, nil
}

func (p *Parser) parseWhile(pos token.Position) (ast.Stmt, error) {
	p.advance() // while
	cond, err := p.parseExpr(0)
	if err != nil {
		return nil, err
	}
	body, err := p.parseBlockUntil(p.isEnd)
	if err != nil {
		return nil, err
	}
	if err := p.expectEnd(); err != nil {
		return nil, err
	}
	n := &ast.WhileStmt{Cond: cond, Body: body}
	n.SetPos(ast.At(pos))
	return n, nil
}

func (p *Parser) parseImport(pos token.Position) (ast.Stmt, error) {
	p.advance() // import
	pathTok, err := p.expect(token.STRING, "import path string")
	if err != nil {
		return nil, err
	}
	n := &ast.ImportStmt{Path: pathTok.Literal}
	n.SetPos(ast.At(pos))
	return n, nil
}

func (p *Parser) expectEnd() error {
	if _, err := p.expect(token.TILDE, "'~'"); err != nil {
		return err
	}
	if _, err := p.expect(token.KW_END, "'end'"); err != nil {
		return err
	}
	return nil
}

func (p *Parser) parseAssign() (ast.Stmt, error) {
	pos := p.cur().Pos
	p.advance() // $
	nameTok, err := p.expect(token.IDENT, "variable name")
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(token.ASSIGN, "'='"); err != nil {
		return nil, err
	}
	value, err := p.parseExpr(0)
	if err != nil {
		return nil, err
	}
	n := &ast.AssignStmt{Name: nameTok.Literal, Expr: value}
	n.SetPos(ast.At(pos))
	return n, nil
}

var actionKinds = map[string]ast.ActionKind{
	"say":    ast.ActionSay,
	"ask":    ast.ActionAsk,
	"fetch":  ast.ActionFetch,
	"text":   ast.ActionText,
	"button": ast.ActionButton,
	"log":    ast.ActionLog,
}

func (p *Parser) parseAction() (ast.Stmt, error) {
	pos := p.cur().Pos
	p.advance() // !
	nameTok, err := p.expect(token.IDENT, "action name")
	if err != nil {
		return nil, err
	}
	if nameTok.Literal == "ui" {
		return p.parseUiAction(pos)
	}
	kind, ok := actionKinds[nameTok.Literal]
	if !ok {
		return nil, &Error{Kind: "parse/unknown-action", Message: "unknown action '" + nameTok.Literal + "'", Pos: nameTok.Pos}
	}
	operand, err := p.parseExpr(0)
	if err != nil {
		return nil, err
	}
	n := &ast.ActionStmt{Kind: kind, Operand: operand}
	n.SetPos(ast.At(pos))
	return n, nil
}

func (p *Parser) parseUiAction(pos token.Position) (ast.Stmt, error) {
	kindTok, err := p.expect(token.IDENT, "ui widget kind")
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(token.LBRACE, "'{'"); err != nil {
		return nil, err
	}
	p.skipNewlines()
	var props []ast.UiProp
	for !p.check(token.RBRACE) {
		keyTok, err := p.expect(token.IDENT, "property name")
		if err != nil {
			return nil, err
		}
		if _, err := p.expect(token.COLON, "':'"); err != nil {
			return nil, err
		}
		val, err := p.parseExpr(0)
		if err != nil {
			return nil, err
		}
		props = append(props, ast.UiProp{Name: keyTok.Literal, Value: val})
		p.skipNewlines()
		if !p.match(token.COMMA) {
			break
		}
		p.skipNewlines()
	}
	p.skipNewlines()
	if _, err := p.expect(token.RBRACE, "'}'"); err != nil {
		return nil, err
	}
	n := &ast.ActionStmt{Kind: ast.ActionUi, UiKind: kindTok.Literal, UiProps: props}
	n.SetPos(ast.At(pos))
	return n, nil
}

func (p *Parser) parseReturn() (ast.Stmt, error) {
	pos := p.cur().Pos
	p.advance() // ^
	if p.check(token.NEWLINE) || p.check(token.EOF) || p.check(token.TILDE) {
		n := &ast.ReturnStmt{}
		n.SetPos(ast.At(pos))
		return n, nil
	}
	value, err := p.parseExpr(0)
	if err != nil {
		return nil, err
	}
	n := &ast.ReturnStmt{Value: value}
	n.SetPos(ast.At(pos))
	return n, nil
}
