package parser

import (
	"palladium/internal/ast"
	"palladium/internal/diag"
	"palladium/internal/source"
	"palladium/internal/token"
)

func (p *Parser) parseItem() ast.ItemID {
	public := false
	start := p.tok.Span
	if p.at(token.KwPub) {
		public = true
		p.advance()
	}

	switch p.tok.Kind {
	case token.KwFn:
		return p.parseFn(public, start)
	case token.KwStruct:
		return p.parseStruct(public, start)
	case token.KwEnum:
		return p.parseEnum(public, start)
	case token.KwImport:
		if public {
			p.errorf(diag.SynUnexpectedToken, p.tok.Span, "imports cannot be public")
		}
		return p.parseImport(start)
	default:
		p.errorf(diag.SynUnexpectedToken, p.tok.Span,
			"expected item, found %s", p.describe(p.tok))
		return ast.NoItemID
	}
}

func (p *Parser) parseImport(start source.Span) ast.ItemID {
	p.advance() // import
	var path []source.StringID
	for {
		name, ok := p.expect(token.Ident, diag.SynExpectIdentifier)
		if !ok {
			return ast.NoItemID
		}
		path = append(path, p.intern(name.Text))
		if !p.eat(token.ColonColon) {
			break
		}
	}
	end := p.tok.Span
	p.expect(token.Semicolon, diag.SynExpectSemicolon)
	return p.builder.Items.NewImport(start.Cover(end), path)
}

func (p *Parser) parseTypeParams() []ast.TypeParam {
	if !p.eat(token.Lt) {
		return nil
	}
	var out []ast.TypeParam
	for {
		name, ok := p.expect(token.Ident, diag.SynExpectIdentifier)
		if !ok {
			return out
		}
		out = append(out, ast.TypeParam{Name: p.intern(name.Text), Span: name.Span})
		if !p.eat(token.Comma) {
			break
		}
	}
	p.expect(token.Gt, diag.SynUnexpectedToken)
	return out
}

func (p *Parser) parseFn(public bool, start source.Span) ast.ItemID {
	p.advance() // fn
	name, ok := p.expect(token.Ident, diag.SynExpectIdentifier)
	if !ok {
		return ast.NoItemID
	}
	typeParams := p.parseTypeParams()

	if _, ok := p.expect(token.LParen, diag.SynUnexpectedToken); !ok {
		return ast.NoItemID
	}
	var params []ast.FnParam
	for !p.at(token.RParen) && !p.at(token.EOF) {
		mutable := p.eat(token.KwMut)
		pname, ok := p.expect(token.Ident, diag.SynExpectIdentifier)
		if !ok {
			return ast.NoItemID
		}
		if _, ok := p.expect(token.Colon, diag.SynUnexpectedToken); !ok {
			return ast.NoItemID
		}
		ptype := p.parseType()
		if !ptype.IsValid() {
			return ast.NoItemID
		}
		params = append(params, ast.FnParam{
			Name:    p.intern(pname.Text),
			Span:    pname.Span,
			Type:    ptype,
			Mutable: mutable,
		})
		if !p.eat(token.Comma) {
			break
		}
	}
	if _, ok := p.expect(token.RParen, diag.SynUnexpectedToken); !ok {
		return ast.NoItemID
	}

	result := ast.NoTypeID
	if p.eat(token.Arrow) {
		result = p.parseType()
		if !result.IsValid() {
			return ast.NoItemID
		}
	}

	body, end, ok := p.parseBlock()
	if !ok {
		return ast.NoItemID
	}
	return p.builder.Items.NewFn(start.Cover(end), ast.ItemFnData{
		Name:       p.intern(name.Text),
		NameSpan:   name.Span,
		Public:     public,
		TypeParams: typeParams,
		Params:     params,
		Result:     result,
		Body:       body,
	})
}

func (p *Parser) parseStruct(public bool, start source.Span) ast.ItemID {
	p.advance() // struct
	name, ok := p.expect(token.Ident, diag.SynExpectIdentifier)
	if !ok {
		return ast.NoItemID
	}
	typeParams := p.parseTypeParams()
	if _, ok := p.expect(token.LBrace, diag.SynUnexpectedToken); !ok {
		return ast.NoItemID
	}

	var fields []ast.StructField
	for !p.at(token.RBrace) && !p.at(token.EOF) {
		fname, ok := p.expect(token.Ident, diag.SynExpectIdentifier)
		if !ok {
			return ast.NoItemID
		}
		if _, ok := p.expect(token.Colon, diag.SynUnexpectedToken); !ok {
			return ast.NoItemID
		}
		ftype := p.parseType()
		if !ftype.IsValid() {
			return ast.NoItemID
		}
		fields = append(fields, ast.StructField{
			Name: p.intern(fname.Text),
			Span: fname.Span,
			Type: ftype,
		})
		if !p.eat(token.Comma) {
			break
		}
	}
	end, ok := p.expect(token.RBrace, diag.SynUnclosedBrace)
	if !ok {
		return ast.NoItemID
	}
	return p.builder.Items.NewStruct(start.Cover(end.Span), ast.ItemStructData{
		Name:       p.intern(name.Text),
		NameSpan:   name.Span,
		Public:     public,
		TypeParams: typeParams,
		Fields:     fields,
	})
}

func (p *Parser) parseEnum(public bool, start source.Span) ast.ItemID {
	p.advance() // enum
	name, ok := p.expect(token.Ident, diag.SynExpectIdentifier)
	if !ok {
		return ast.NoItemID
	}
	typeParams := p.parseTypeParams()
	if _, ok := p.expect(token.LBrace, diag.SynUnexpectedToken); !ok {
		return ast.NoItemID
	}

	var variants []ast.EnumVariant
	for !p.at(token.RBrace) && !p.at(token.EOF) {
		vname, ok := p.expect(token.Ident, diag.SynExpectIdentifier)
		if !ok {
			return ast.NoItemID
		}
		variant := ast.EnumVariant{
			Name: p.intern(vname.Text),
			Span: vname.Span,
			Form: ast.CtorUnit,
		}
		switch {
		case p.eat(token.LParen):
			variant.Form = ast.CtorTuple
			for !p.at(token.RParen) && !p.at(token.EOF) {
				elem := p.parseType()
				if !elem.IsValid() {
					return ast.NoItemID
				}
				variant.Elems = append(variant.Elems, elem)
				if !p.eat(token.Comma) {
					break
				}
			}
			if _, ok := p.expect(token.RParen, diag.SynUnexpectedToken); !ok {
				return ast.NoItemID
			}
		case p.eat(token.LBrace):
			variant.Form = ast.CtorStruct
			for !p.at(token.RBrace) && !p.at(token.EOF) {
				fname, ok := p.expect(token.Ident, diag.SynExpectIdentifier)
				if !ok {
					return ast.NoItemID
				}
				if _, ok := p.expect(token.Colon, diag.SynUnexpectedToken); !ok {
					return ast.NoItemID
				}
				ftype := p.parseType()
				if !ftype.IsValid() {
					return ast.NoItemID
				}
				variant.Fields = append(variant.Fields, ast.StructField{
					Name: p.intern(fname.Text),
					Span: fname.Span,
					Type: ftype,
				})
				if !p.eat(token.Comma) {
					break
				}
			}
			if _, ok := p.expect(token.RBrace, diag.SynUnclosedBrace); !ok {
				return ast.NoItemID
			}
		}
		variants = append(variants, variant)
		if !p.eat(token.Comma) {
			break
		}
	}
	end, ok := p.expect(token.RBrace, diag.SynUnclosedBrace)
	if !ok {
		return ast.NoItemID
	}
	return p.builder.Items.NewEnum(start.Cover(end.Span), ast.ItemEnumData{
		Name:       p.intern(name.Text),
		NameSpan:   name.Span,
		Public:     public,
		TypeParams: typeParams,
		Variants:   variants,
	})
}

func (p *Parser) parseType() ast.TypeID {
	start := p.tok.Span
	switch p.tok.Kind {
	case token.Amp:
		p.advance()
		mutable := p.eat(token.KwMut)
		inner := p.parseType()
		if !inner.IsValid() {
			return ast.NoTypeID
		}
		return p.builder.Types.NewRef(start.Cover(p.builder.Types.Get(inner).Span), inner, mutable)

	case token.LBracket:
		p.advance()
		elem := p.parseType()
		if !elem.IsValid() {
			return ast.NoTypeID
		}
		if _, ok := p.expect(token.Semicolon, diag.SynExpectSemicolon); !ok {
			return ast.NoTypeID
		}
		sizeTok, ok := p.expect(token.IntLit, diag.SynExpectType)
		if !ok {
			return ast.NoTypeID
		}
		size, err := parseInt(sizeTok.Text)
		if err != nil || size < 0 {
			p.errorf(diag.SynExpectType, sizeTok.Span, "invalid array size %q", sizeTok.Text)
			return ast.NoTypeID
		}
		end, ok := p.expect(token.RBracket, diag.SynUnexpectedToken)
		if !ok {
			return ast.NoTypeID
		}
		return p.builder.Types.NewArray(start.Cover(end.Span), elem, size)

	case token.LParen:
		p.advance()
		end, ok := p.expect(token.RParen, diag.SynExpectType)
		if !ok {
			return ast.NoTypeID
		}
		return p.builder.Types.NewUnit(start.Cover(end.Span))

	case token.Ident:
		name := p.tok
		p.advance()
		var args []ast.TypeID
		end := name.Span
		if p.eat(token.Lt) {
			for {
				arg := p.parseType()
				if !arg.IsValid() {
					return ast.NoTypeID
				}
				args = append(args, arg)
				if !p.eat(token.Comma) {
					break
				}
			}
			gt, ok := p.expect(token.Gt, diag.SynUnexpectedToken)
			if !ok {
				return ast.NoTypeID
			}
			end = gt.Span
		}
		return p.builder.Types.NewPath(name.Span.Cover(end), p.intern(name.Text), args)

	default:
		p.errorf(diag.SynExpectType, p.tok.Span,
			"expected type, found %s", p.describe(p.tok))
		return ast.NoTypeID
	}
}
