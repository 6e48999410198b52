package parser

import (
	"palladium/internal/ast"
	"palladium/internal/diag"
	"palladium/internal/source"
	"palladium/internal/token"
)

func (p *Parser) parseExpr() ast.ExprID {
	return p.parseRange()
}

func (p *Parser) parseRange() ast.ExprID {
	start := p.parseOr()
	if !start.IsValid() || !p.at(token.DotDot) {
		return start
	}
	p.advance()
	end := p.parseOr()
	if !end.IsValid() {
		return ast.NoExprID
	}
	span := p.builder.Exprs.Get(start).Span.Cover(p.builder.Exprs.Get(end).Span)
	return p.builder.Exprs.NewRange(span, start, end)
}

func (p *Parser) parseOr() ast.ExprID {
	left := p.parseAnd()
	for left.IsValid() && p.at(token.OrOr) {
		p.advance()
		right := p.parseAnd()
		if !right.IsValid() {
			return ast.NoExprID
		}
		left = p.binary(ast.BinaryOr, left, right)
	}
	return left
}

func (p *Parser) parseAnd() ast.ExprID {
	left := p.parseEquality()
	for left.IsValid() && p.at(token.AndAnd) {
		p.advance()
		right := p.parseEquality()
		if !right.IsValid() {
			return ast.NoExprID
		}
		left = p.binary(ast.BinaryAnd, left, right)
	}
	return left
}

func (p *Parser) parseEquality() ast.ExprID {
	left := p.parseComparison()
	for left.IsValid() {
		var op ast.BinaryOp
		switch p.tok.Kind {
		case token.EqEq:
			op = ast.BinaryEq
		case token.BangEq:
			op = ast.BinaryNe
		default:
			return left
		}
		p.advance()
		right := p.parseComparison()
		if !right.IsValid() {
			return ast.NoExprID
		}
		left = p.binary(op, left, right)
	}
	return left
}

func (p *Parser) parseComparison() ast.ExprID {
	left := p.parseAdditive()
	for left.IsValid() {
		var op ast.BinaryOp
		switch p.tok.Kind {
		case token.Lt:
			op = ast.BinaryLt
		case token.Gt:
			op = ast.BinaryGt
		case token.LtEq:
			op = ast.BinaryLe
		case token.GtEq:
			op = ast.BinaryGe
		default:
			return left
		}
		p.advance()
		right := p.parseAdditive()
		if !right.IsValid() {
			return ast.NoExprID
		}
		left = p.binary(op, left, right)
	}
	return left
}

func (p *Parser) parseAdditive() ast.ExprID {
	left := p.parseMultiplicative()
	for left.IsValid() {
		var op ast.BinaryOp
		switch p.tok.Kind {
		case token.Plus:
			op = ast.BinaryAdd
		case token.Minus:
			op = ast.BinarySub
		default:
			return left
		}
		p.advance()
		right := p.parseMultiplicative()
		if !right.IsValid() {
			return ast.NoExprID
		}
		left = p.binary(op, left, right)
	}
	return left
}

func (p *Parser) parseMultiplicative() ast.ExprID {
	left := p.parseUnary()
	for left.IsValid() {
		var op ast.BinaryOp
		switch p.tok.Kind {
		case token.Star:
			op = ast.BinaryMul
		case token.Slash:
			op = ast.BinaryDiv
		case token.Percent:
			op = ast.BinaryMod
		default:
			return left
		}
		p.advance()
		right := p.parseUnary()
		if !right.IsValid() {
			return ast.NoExprID
		}
		left = p.binary(op, left, right)
	}
	return left
}

func (p *Parser) binary(op ast.BinaryOp, left, right ast.ExprID) ast.ExprID {
	span := p.builder.Exprs.Get(left).Span.Cover(p.builder.Exprs.Get(right).Span)
	return p.builder.Exprs.NewBinary(span, op, left, right)
}

func (p *Parser) parseUnary() ast.ExprID {
	start := p.tok.Span
	switch p.tok.Kind {
	case token.Minus:
		p.advance()
		operand := p.parseUnary()
		if !operand.IsValid() {
			return ast.NoExprID
		}
		return p.builder.Exprs.NewUnary(start.Cover(p.builder.Exprs.Get(operand).Span), ast.UnaryNeg, operand)
	case token.Bang:
		p.advance()
		operand := p.parseUnary()
		if !operand.IsValid() {
			return ast.NoExprID
		}
		return p.builder.Exprs.NewUnary(start.Cover(p.builder.Exprs.Get(operand).Span), ast.UnaryNot, operand)
	case token.Star:
		p.advance()
		operand := p.parseUnary()
		if !operand.IsValid() {
			return ast.NoExprID
		}
		return p.builder.Exprs.NewUnary(start.Cover(p.builder.Exprs.Get(operand).Span), ast.UnaryDeref, operand)
	case token.Amp:
		p.advance()
		mutable := p.eat(token.KwMut)
		operand := p.parseUnary()
		if !operand.IsValid() {
			return ast.NoExprID
		}
		return p.builder.Exprs.NewBorrow(start.Cover(p.builder.Exprs.Get(operand).Span), mutable, operand)
	default:
		return p.parsePostfix()
	}
}

func (p *Parser) parsePostfix() ast.ExprID {
	expr := p.parsePrimary()
	for expr.IsValid() {
		switch p.tok.Kind {
		case token.LParen:
			p.advance()
			var args []ast.ExprID
			for !p.at(token.RParen) && !p.at(token.EOF) {
				arg := p.parseExpr()
				if !arg.IsValid() {
					return ast.NoExprID
				}
				args = append(args, arg)
				if !p.eat(token.Comma) {
					break
				}
			}
			rp, ok := p.expect(token.RParen, diag.SynUnexpectedToken)
			if !ok {
				return ast.NoExprID
			}
			expr = p.builder.Exprs.NewCall(p.builder.Exprs.Get(expr).Span.Cover(rp.Span), expr, args)

		case token.LBracket:
			p.advance()
			index := p.parseExpr()
			if !index.IsValid() {
				return ast.NoExprID
			}
			rb, ok := p.expect(token.RBracket, diag.SynUnexpectedToken)
			if !ok {
				return ast.NoExprID
			}
			expr = p.builder.Exprs.NewIndex(p.builder.Exprs.Get(expr).Span.Cover(rb.Span), expr, index)

		case token.Dot:
			p.advance()
			name, ok := p.expect(token.Ident, diag.SynExpectIdentifier)
			if !ok {
				return ast.NoExprID
			}
			expr = p.builder.Exprs.NewField(p.builder.Exprs.Get(expr).Span.Cover(name.Span), expr, p.intern(name.Text))

		default:
			return expr
		}
	}
	return expr
}

func (p *Parser) parsePrimary() ast.ExprID {
	start := p.tok.Span
	switch p.tok.Kind {
	case token.IntLit:
		value, err := parseInt(p.tok.Text)
		if err != nil {
			p.errorf(diag.LexBadNumber, start, "integer literal %q out of range", p.tok.Text)
			p.advance()
			return ast.NoExprID
		}
		p.advance()
		return p.builder.Exprs.NewInt(start, value)

	case token.StringLit:
		id := p.intern(p.tok.Text)
		p.advance()
		return p.builder.Exprs.NewString(start, id)

	case token.KwTrue:
		p.advance()
		return p.builder.Exprs.NewBool(start, true)

	case token.KwFalse:
		p.advance()
		return p.builder.Exprs.NewBool(start, false)

	case token.LParen:
		p.advance()
		expr := p.parseExpr()
		if !expr.IsValid() {
			return ast.NoExprID
		}
		p.expect(token.RParen, diag.SynUnexpectedToken)
		return expr

	case token.LBracket:
		return p.parseArrayLit(start)

	case token.Ident:
		return p.parseIdentExpr()

	default:
		p.errorf(diag.SynUnexpectedToken, start,
			"expected expression, found %s", p.describe(p.tok))
		return ast.NoExprID
	}
}

func (p *Parser) parseArrayLit(start source.Span) ast.ExprID {
	p.advance() // [
	if p.at(token.RBracket) {
		rb := p.tok
		p.advance()
		return p.builder.Exprs.NewArrayLit(start.Cover(rb.Span), nil)
	}
	first := p.parseExpr()
	if !first.IsValid() {
		return ast.NoExprID
	}
	// [value; count] repeat form.
	if p.eat(token.Semicolon) {
		count := p.parseExpr()
		if !count.IsValid() {
			return ast.NoExprID
		}
		rb, ok := p.expect(token.RBracket, diag.SynUnexpectedToken)
		if !ok {
			return ast.NoExprID
		}
		return p.builder.Exprs.NewArrayRepeat(start.Cover(rb.Span), first, count)
	}
	elems := []ast.ExprID{first}
	for p.eat(token.Comma) {
		if p.at(token.RBracket) {
			break
		}
		elem := p.parseExpr()
		if !elem.IsValid() {
			return ast.NoExprID
		}
		elems = append(elems, elem)
	}
	rb, ok := p.expect(token.RBracket, diag.SynUnexpectedToken)
	if !ok {
		return ast.NoExprID
	}
	return p.builder.Exprs.NewArrayLit(start.Cover(rb.Span), elems)
}

// parseIdentExpr handles plain identifiers, enum constructors
// (Name::Variant with an optional payload) and struct literals.
func (p *Parser) parseIdentExpr() ast.ExprID {
	name := p.tok
	p.advance()

	if p.at(token.ColonColon) {
		p.advance()
		vname, ok := p.expect(token.Ident, diag.SynExpectIdentifier)
		if !ok {
			return ast.NoExprID
		}
		return p.parseCtorTail(name.Span, ast.ExprEnumCtorData{
			EnumName: p.intern(name.Text),
			Variant:  p.intern(vname.Text),
		}, vname.Span)
	}

	if p.at(token.LBrace) && !p.noStructLit {
		return p.parseStructLit(name)
	}
	return p.builder.Exprs.NewIdent(name.Span, p.intern(name.Text))
}

func (p *Parser) parseCtorTail(start source.Span, data ast.ExprEnumCtorData, end source.Span) ast.ExprID {
	switch {
	case p.eat(token.LParen):
		data.Form = ast.CtorTuple
		for !p.at(token.RParen) && !p.at(token.EOF) {
			arg := p.parseExpr()
			if !arg.IsValid() {
				return ast.NoExprID
			}
			data.Args = append(data.Args, arg)
			if !p.eat(token.Comma) {
				break
			}
		}
		rp, ok := p.expect(token.RParen, diag.SynUnexpectedToken)
		if !ok {
			return ast.NoExprID
		}
		end = rp.Span
	case p.at(token.LBrace) && !p.noStructLit:
		p.advance()
		data.Form = ast.CtorStruct
		for !p.at(token.RBrace) && !p.at(token.EOF) {
			fname, ok := p.expect(token.Ident, diag.SynExpectIdentifier)
			if !ok {
				return ast.NoExprID
			}
			if _, ok := p.expect(token.Colon, diag.SynUnexpectedToken); !ok {
				return ast.NoExprID
			}
			value := p.parseExpr()
			if !value.IsValid() {
				return ast.NoExprID
			}
			data.Fields = append(data.Fields, ast.FieldInit{
				Name:  p.intern(fname.Text),
				Span:  fname.Span,
				Value: value,
			})
			if !p.eat(token.Comma) {
				break
			}
		}
		rb, ok := p.expect(token.RBrace, diag.SynUnclosedBrace)
		if !ok {
			return ast.NoExprID
		}
		end = rb.Span
	}
	return p.builder.Exprs.NewEnumCtor(start.Cover(end), data)
}

func (p *Parser) parseStructLit(name token.Token) ast.ExprID {
	typ := p.builder.Types.NewPath(name.Span, p.intern(name.Text), nil)
	p.advance() // {
	var fields []ast.FieldInit
	for !p.at(token.RBrace) && !p.at(token.EOF) {
		fname, ok := p.expect(token.Ident, diag.SynExpectIdentifier)
		if !ok {
			return ast.NoExprID
		}
		if _, ok := p.expect(token.Colon, diag.SynUnexpectedToken); !ok {
			return ast.NoExprID
		}
		value := p.parseExpr()
		if !value.IsValid() {
			return ast.NoExprID
		}
		fields = append(fields, ast.FieldInit{
			Name:  p.intern(fname.Text),
			Span:  fname.Span,
			Value: value,
		})
		if !p.eat(token.Comma) {
			break
		}
	}
	rb, ok := p.expect(token.RBrace, diag.SynUnclosedBrace)
	if !ok {
		return ast.NoExprID
	}
	return p.builder.Exprs.NewStructLit(name.Span.Cover(rb.Span), typ, fields)
}
