package parser

import (
	"naux/internal/ast"
	"naux/internal/token"
)

// binopInfo maps an operator token to its AST operator and binding power.
// Precedence follows the ladder or(20) < and(30) < equality(40) <
// comparison(50) < additive(60) < multiplicative(70); all operators are
// left-associative.
func binopInfo(k token.Kind) (ast.BinaryOp, int, bool) {
	switch k {
	case token.OR:
		return ast.OpOr, 20, true
	case token.AND:
		return ast.OpAnd, 30, true
	case token.EQ:
		return ast.OpEq, 40, true
	case token.NE:
		return ast.OpNe, 40, true
	case token.GT:
		return ast.OpGt, 50, true
	case token.GE:
		return ast.OpGe, 50, true
	case token.LT:
		return ast.OpLt, 50, true
	case token.LE:
		return ast.OpLe, 50, true
	case token.PLUS:
		return ast.OpAdd, 60, true
	case token.MINUS:
		return ast.OpSub, 60, true
	case token.STAR:
		return ast.OpMul, 70, true
	case token.SLASH:
		return ast.OpDiv, 70, true
	case token.PERCENT:
		return ast.OpMod, 70, true
	default:
		return 0, 0, false
	}
}

// parseExpr is the precedence-climbing entry point: minPrec is the lowest
// binding power the caller will accept on the left of a binary operator.
func (p *Parser) parseExpr(minPrec int) (ast.Expr, error) {
	left, err := p.parseUnary()
	if err != nil {
		return nil, err
	}
	for {
		op, prec, ok := binopInfo(p.cur().Kind)
		if !ok || prec < minPrec {
			return left, nil
		}
		pos := p.cur().Pos
		p.advance()
		right, err := p.parseExpr(prec + 1) // left-associative
		if err != nil {
			return nil, err
		}
		n := &ast.BinaryExpr{Op: op, Left: left, Right: right}
		n.SetPos(ast.At(pos))
		left = n
	}
}

func (p *Parser) parseUnary() (ast.Expr, error) {
	switch p.cur().Kind {
	case token.MINUS:
		pos := p.cur().Pos
		p.advance()
		operand, err := p.parseUnary()
		if err != nil {
			return nil, err
		}
		n := &ast.UnaryExpr{Op: ast.OpNeg, Operand: operand}
		n.SetPos(ast.At(pos))
		return n, nil
	case token.BANG:
		pos := p.cur().Pos
		p.advance()
		operand, err := p.parseUnary()
		if err != nil {
			return nil, err
		}
		n := &ast.UnaryExpr{Op: ast.OpNot, Operand: operand}
		n.SetPos(ast.At(pos))
		return n, nil
	default:
		return p.parsePostfix()
	}
}

func (p *Parser) parsePostfix() (ast.Expr, error) {
	expr, err := p.parsePrimary()
	if err != nil {
		return nil, err
	}
	for {
		switch p.cur().Kind {
		case token.LPAREN:
			pos := p.cur().Pos
			p.advance()
			var args []ast.Expr
			for !p.check(token.RPAREN) {
				arg, err := p.parseExpr(0)
				if err != nil {
					return nil, err
				}
				args = append(args, arg)
				if !p.match(token.COMMA) {
					break
				}
			}
			if _, err := p.expect(token.RPAREN, "')'"); err != nil {
				return nil, err
			}
			n := &ast.CallExpr{Callee: expr, Args: args}
			n.SetPos(ast.At(pos))
			expr = n
		case token.LBRACKET:
			pos := p.cur().Pos
			p.advance()
			idx, err := p.parseExpr(0)
			if err != nil {
				return nil, err
			}
			if _, err := p.expect(token.RBRACKET, "']'"); err != nil {
				return nil, err
			}
			n := &ast.IndexExpr{Target: expr, Index: idx}
			n.SetPos(ast.At(pos))
			expr = n
		case token.DOT:
			pos := p.cur().Pos
			p.advance()
			fieldTok, err := p.expect(token.IDENT, "field name")
			if err != nil {
				return nil, err
			}
			n := &ast.FieldExpr{Target: expr, Field: fieldTok.Literal}
			n.SetPos(ast.At(pos))
			expr = n
		default:
			return expr, nil
		}
	}
}

func (p *Parser) parsePrimary() (ast.Expr, error) {
	tok := p.cur()
	switch tok.Kind {
	case token.NUMBER:
		p.advance()
		n := &ast.NumberExpr{Value: tok.Number}
		n.SetPos(ast.At(tok.Pos))
		return n, nil
	case token.STRING:
		p.advance()
		n := &ast.TextExpr{Value: tok.Literal}
		n.SetPos(ast.At(tok.Pos))
		return n, nil
	case token.IDENT:
		p.advance()
		switch tok.Literal {
		case "true":
			n := &ast.BoolExpr{Value: true}
			n.SetPos(ast.At(tok.Pos))
			return n, nil
		case "false":
			n := &ast.BoolExpr{Value: false}
			n.SetPos(ast.At(tok.Pos))
			return n, nil
		default:
			n := &ast.VarExpr{Name: tok.Literal}
			n.SetPos(ast.At(tok.Pos))
			return n, nil
		}
	case token.DOLLAR:
		p.advance()
		nameTok, err := p.expect(token.IDENT, "variable name")
		if err != nil {
			return nil, err
		}
		n := &ast.VarExpr{Name: nameTok.Literal}
		n.SetPos(ast.At(tok.Pos))
		return n, nil
	case token.LPAREN:
		p.advance()
		inner, err := p.parseExpr(0)
		if err != nil {
			return nil, err
		}
		if _, err := p.expect(token.RPAREN, "')'"); err != nil {
			return nil, err
		}
		return inner, nil
	case token.LBRACKET:
		return p.parseList(tok.Pos)
	case token.LBRACE:
		return p.parseMap(tok.Pos)
	case token.EOF:
		return nil, &Error{Kind: "parse/unexpected-eof", Message: "expected an expression, found end of input", Pos: tok.Pos}
	default:
		return nil, &Error{Kind: "parse/unexpected-token", Message: "expected an expression, found " + tok.Kind.String(), Pos: tok.Pos}
	}
}

func (p *Parser) parseList(pos token.Position) (ast.Expr, error) {
	p.advance() // [
	p.skipNewlines()
	var items []ast.Expr
	for !p.check(token.RBRACKET) {
		item, err := p.parseExpr(0)
		if err != nil {
			return nil, err
		}
		items = append(items, item)
		p.skipNewlines()
		if !p.match(token.COMMA) {
			break
		}
		p.skipNewlines()
	}
	p.skipNewlines()
	if _, err := p.expect(token.RBRACKET, "']'"); err != nil {
		return nil, err
	}
	n := &ast.ListExpr{Items: items}
	n.SetPos(ast.At(pos))
	return n, nil
}

func (p *Parser) parseMap(pos token.Position) (ast.Expr, error) {
	p.advance() // {
	p.skipNewlines()
	var entries []ast.MapEntry
	for !p.check(token.RBRACE) {
		var key string
		switch p.cur().Kind {
		case token.IDENT:
			key = p.advance().Literal
		case token.STRING:
			key = p.advance().Literal
		default:
			return nil, &Error{Kind: "parse/expected", Message: "expected a map key", Pos: p.cur().Pos}
		}
		if _, err := p.expect(token.COLON, "':'"); err != nil {
			return nil, err
		}
		val, err := p.parseExpr(0)
		if err != nil {
			return nil, err
		}
		entries = append(entries, ast.MapEntry{Key: key, Value: val})
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
	n := &ast.MapExpr{Entries: entries}
	n.SetPos(ast.At(pos))
	return n, nil
}
