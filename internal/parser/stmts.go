package parser

import (
	"strconv"

	"palladium/internal/ast"
	"palladium/internal/diag"
	"palladium/internal/source"
	"palladium/internal/token"
)

func parseInt(text string) (int64, error) {
	return strconv.ParseInt(text, 10, 64)
}

// parseBlock parses `{ stmt* }` and returns the statement list plus the
// closing brace span.
func (p *Parser) parseBlock() ([]ast.StmtID, source.Span, bool) {
	if _, ok := p.expect(token.LBrace, diag.SynUnexpectedToken); !ok {
		return nil, source.Span{}, false
	}
	var stmts []ast.StmtID
	for !p.at(token.RBrace) && !p.at(token.EOF) {
		stmt := p.parseStmt()
		if stmt.IsValid() {
			stmts = append(stmts, stmt)
		} else {
			p.recoverToStmt()
		}
	}
	end, ok := p.expect(token.RBrace, diag.SynUnclosedBrace)
	if !ok {
		return nil, source.Span{}, false
	}
	return stmts, end.Span, true
}

func (p *Parser) parseStmt() ast.StmtID {
	start := p.tok.Span
	switch p.tok.Kind {
	case token.KwLet:
		return p.parseLet(start)
	case token.KwReturn:
		return p.parseReturn(start)
	case token.KwIf:
		return p.parseIf(start)
	case token.KwWhile:
		return p.parseWhile(start)
	case token.KwFor:
		return p.parseFor(start)
	case token.KwMatch:
		return p.parseMatch(start)
	case token.KwBreak:
		p.advance()
		p.expect(token.Semicolon, diag.SynExpectSemicolon)
		return p.builder.Stmts.NewBreak(start)
	case token.KwContinue:
		p.advance()
		p.expect(token.Semicolon, diag.SynExpectSemicolon)
		return p.builder.Stmts.NewContinue(start)
	default:
		return p.parseExprStmt(start)
	}
}

func (p *Parser) parseLet(start source.Span) ast.StmtID {
	p.advance() // let
	mutable := p.eat(token.KwMut)
	name, ok := p.expect(token.Ident, diag.SynExpectIdentifier)
	if !ok {
		return ast.NoStmtID
	}
	annot := ast.NoTypeID
	if p.eat(token.Colon) {
		annot = p.parseType()
		if !annot.IsValid() {
			return ast.NoStmtID
		}
	}
	if _, ok := p.expect(token.Assign, diag.SynUnexpectedToken); !ok {
		return ast.NoStmtID
	}
	value := p.parseExpr()
	if !value.IsValid() {
		return ast.NoStmtID
	}
	end := p.tok.Span
	p.expect(token.Semicolon, diag.SynExpectSemicolon)
	return p.builder.Stmts.NewLet(start.Cover(end), ast.StmtLetData{
		Name:     p.intern(name.Text),
		NameSpan: name.Span,
		Type:     annot,
		Value:    value,
		Mutable:  mutable,
	})
}

func (p *Parser) parseReturn(start source.Span) ast.StmtID {
	p.advance() // return
	value := ast.NoExprID
	if !p.at(token.Semicolon) {
		value = p.parseExpr()
		if !value.IsValid() {
			return ast.NoStmtID
		}
	}
	end := p.tok.Span
	p.expect(token.Semicolon, diag.SynExpectSemicolon)
	return p.builder.Stmts.NewReturn(start.Cover(end), value)
}

func (p *Parser) parseCondition() ast.ExprID {
	saved := p.noStructLit
	p.noStructLit = true
	cond := p.parseExpr()
	p.noStructLit = saved
	return cond
}

func (p *Parser) parseIf(start source.Span) ast.StmtID {
	p.advance() // if
	cond := p.parseCondition()
	if !cond.IsValid() {
		return ast.NoStmtID
	}
	thenStmts, end, ok := p.parseBlock()
	if !ok {
		return ast.NoStmtID
	}
	data := ast.StmtIfData{Cond: cond, Then: thenStmts}
	if p.eat(token.KwElse) {
		data.HasElse = true
		if p.at(token.KwIf) {
			nested := p.parseIf(p.tok.Span)
			if !nested.IsValid() {
				return ast.NoStmtID
			}
			data.Else = []ast.StmtID{nested}
			end = p.builder.Stmts.Get(nested).Span
		} else {
			elseStmts, elseEnd, ok := p.parseBlock()
			if !ok {
				return ast.NoStmtID
			}
			data.Else = elseStmts
			end = elseEnd
		}
	}
	return p.builder.Stmts.NewIf(start.Cover(end), data)
}

func (p *Parser) parseWhile(start source.Span) ast.StmtID {
	p.advance() // while
	cond := p.parseCondition()
	if !cond.IsValid() {
		return ast.NoStmtID
	}
	body, end, ok := p.parseBlock()
	if !ok {
		return ast.NoStmtID
	}
	return p.builder.Stmts.NewWhile(start.Cover(end), cond, body)
}

func (p *Parser) parseFor(start source.Span) ast.StmtID {
	p.advance() // for
	name, ok := p.expect(token.Ident, diag.SynExpectIdentifier)
	if !ok {
		return ast.NoStmtID
	}
	if _, ok := p.expect(token.KwIn, diag.SynUnexpectedToken); !ok {
		return ast.NoStmtID
	}
	iter := p.parseCondition()
	if !iter.IsValid() {
		return ast.NoStmtID
	}
	body, end, ok := p.parseBlock()
	if !ok {
		return ast.NoStmtID
	}
	return p.builder.Stmts.NewFor(start.Cover(end), ast.StmtForData{
		Var:     p.intern(name.Text),
		VarSpan: name.Span,
		Iter:    iter,
		Body:    body,
	})
}

func (p *Parser) parseMatch(start source.Span) ast.StmtID {
	p.advance() // match
	scrutinee := p.parseCondition()
	if !scrutinee.IsValid() {
		return ast.NoStmtID
	}
	if _, ok := p.expect(token.LBrace, diag.SynUnexpectedToken); !ok {
		return ast.NoStmtID
	}
	var arms []ast.MatchArm
	for !p.at(token.RBrace) && !p.at(token.EOF) {
		arm, ok := p.parseMatchArm()
		if !ok {
			p.recoverToStmt()
			continue
		}
		arms = append(arms, arm)
	}
	end, ok := p.expect(token.RBrace, diag.SynUnclosedBrace)
	if !ok {
		return ast.NoStmtID
	}
	return p.builder.Stmts.NewMatch(start.Cover(end.Span), scrutinee, arms)
}

func (p *Parser) parseMatchArm() (ast.MatchArm, bool) {
	start := p.tok.Span
	pat := p.parsePattern()
	if !pat.IsValid() {
		return ast.MatchArm{}, false
	}
	if _, ok := p.expect(token.FatArrow, diag.SynBadMatchArm); !ok {
		return ast.MatchArm{}, false
	}

	var body []ast.StmtID
	var end source.Span
	if p.at(token.LBrace) {
		var ok bool
		body, end, ok = p.parseBlock()
		if !ok {
			return ast.MatchArm{}, false
		}
		p.eat(token.Comma)
	} else {
		expr := p.parseExpr()
		if !expr.IsValid() {
			return ast.MatchArm{}, false
		}
		end = p.builder.Exprs.Get(expr).Span
		body = []ast.StmtID{p.builder.Stmts.NewExpr(end, expr)}
		if !p.eat(token.Comma) && !p.at(token.RBrace) {
			p.errorf(diag.SynBadMatchArm, p.tok.Span, "expected ',' after match arm")
			return ast.MatchArm{}, false
		}
	}
	return ast.MatchArm{Pattern: pat, Body: body, Span: start.Cover(end)}, true
}

func (p *Parser) parsePattern() ast.PatID {
	start := p.tok.Span
	switch p.tok.Kind {
	case token.Underscore:
		p.advance()
		return p.builder.Pats.NewWildcard(start)

	case token.Ident:
		first := p.tok
		p.advance()
		data := ast.PatEnumData{Variant: p.intern(first.Text)}
		if p.eat(token.ColonColon) {
			vname, ok := p.expect(token.Ident, diag.SynExpectIdentifier)
			if !ok {
				return ast.NoPatID
			}
			data.EnumName = p.intern(first.Text)
			data.Variant = p.intern(vname.Text)
		} else if !p.at(token.LParen) && !p.at(token.LBrace) {
			// A bare name with no payload is a binding; sema promotes
			// it to a variant pattern when the scrutinee enum has a
			// matching constructor.
			return p.builder.Pats.NewBinding(start, p.intern(first.Text))
		}

		end := start
		switch {
		case p.eat(token.LParen):
			data.Form = ast.CtorTuple
			for !p.at(token.RParen) && !p.at(token.EOF) {
				sub := p.parsePattern()
				if !sub.IsValid() {
					return ast.NoPatID
				}
				data.Sub = append(data.Sub, sub)
				if !p.eat(token.Comma) {
					break
				}
			}
			rp, ok := p.expect(token.RParen, diag.SynUnexpectedToken)
			if !ok {
				return ast.NoPatID
			}
			end = rp.Span
		case p.eat(token.LBrace):
			data.Form = ast.CtorStruct
			for !p.at(token.RBrace) && !p.at(token.EOF) {
				fname, ok := p.expect(token.Ident, diag.SynExpectIdentifier)
				if !ok {
					return ast.NoPatID
				}
				var sub ast.PatID
				if p.eat(token.Colon) {
					sub = p.parsePattern()
					if !sub.IsValid() {
						return ast.NoPatID
					}
				} else {
					// Shorthand `{ width }` binds the field name.
					sub = p.builder.Pats.NewBinding(fname.Span, p.intern(fname.Text))
				}
				data.Fields = append(data.Fields, ast.PatField{
					Name: p.intern(fname.Text),
					Span: fname.Span,
					Pat:  sub,
				})
				if !p.eat(token.Comma) {
					break
				}
			}
			rb, ok := p.expect(token.RBrace, diag.SynUnclosedBrace)
			if !ok {
				return ast.NoPatID
			}
			end = rb.Span
		}
		return p.builder.Pats.NewEnum(start.Cover(end), data)

	default:
		p.errorf(diag.SynBadMatchArm, p.tok.Span,
			"expected pattern, found %s", p.describe(p.tok))
		return ast.NoPatID
	}
}

func (p *Parser) parseExprStmt(start source.Span) ast.StmtID {
	expr := p.parseExpr()
	if !expr.IsValid() {
		return ast.NoStmtID
	}
	if p.eat(token.Assign) {
		if !isAssignTarget(p.builder, expr) {
			p.errorf(diag.SynBadAssignTarget, p.builder.Exprs.Get(expr).Span,
				"invalid assignment target")
			return ast.NoStmtID
		}
		value := p.parseExpr()
		if !value.IsValid() {
			return ast.NoStmtID
		}
		end := p.tok.Span
		p.expect(token.Semicolon, diag.SynExpectSemicolon)
		return p.builder.Stmts.NewAssign(start.Cover(end), expr, value)
	}
	end := p.tok.Span
	p.expect(token.Semicolon, diag.SynExpectSemicolon)
	return p.builder.Stmts.NewExpr(start.Cover(end), expr)
}

// isAssignTarget accepts places: x, x[i], x.f and dereferences of them.
func isAssignTarget(b *ast.Builder, id ast.ExprID) bool {
	expr := b.Exprs.Get(id)
	switch expr.Kind {
	case ast.ExprIdent, ast.ExprIndex, ast.ExprField:
		return true
	case ast.ExprUnary:
		data, _ := b.Exprs.Unary(id)
		return data.Op == ast.UnaryDeref && isAssignTarget(b, data.Operand)
	default:
		return false
	}
}
