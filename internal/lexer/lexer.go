// Package lexer turns source bytes into tokens. It sits outside the
// checked pipeline proper: the parser is the only consumer.
package lexer

import (
	"palladium/internal/diag"
	"palladium/internal/source"
	"palladium/internal/token"
)

type Lexer struct {
	file     *source.File
	off      uint32
	look     *token.Token
	reporter diag.Reporter
}

func New(file *source.File, reporter diag.Reporter) *Lexer {
	if reporter == nil {
		reporter = diag.NopReporter{}
	}
	return &Lexer{file: file, reporter: reporter}
}

// Peek returns the next significant token without consuming it.
func (lx *Lexer) Peek() token.Token {
	if lx.look == nil {
		tok := lx.scan()
		lx.look = &tok
	}
	return *lx.look
}

// Next returns the next significant token. After EOF it keeps returning
// EOF.
func (lx *Lexer) Next() token.Token {
	if lx.look != nil {
		tok := *lx.look
		lx.look = nil
		return tok
	}
	return lx.scan()
}

func (lx *Lexer) scan() token.Token {
	lx.skipTrivia()
	if lx.eof() {
		return token.Token{Kind: token.EOF, Span: lx.spanFrom(lx.off)}
	}

	start := lx.off
	ch := lx.peekByte()
	switch {
	case isIdentStart(ch):
		return lx.scanIdent(start)
	case isDigit(ch):
		return lx.scanNumber(start)
	case ch == '"':
		return lx.scanString(start)
	default:
		return lx.scanOperator(start)
	}
}

func (lx *Lexer) skipTrivia() {
	for !lx.eof() {
		ch := lx.peekByte()
		switch {
		case ch == ' ' || ch == '\t' || ch == '\n' || ch == '\r':
			lx.off++
		case ch == '/' && lx.peekAt(1) == '/':
			for !lx.eof() && lx.peekByte() != '\n' {
				lx.off++
			}
		default:
			return
		}
	}
}

func (lx *Lexer) scanIdent(start uint32) token.Token {
	for !lx.eof() && isIdentPart(lx.peekByte()) {
		lx.off++
	}
	text := string(lx.file.Content[start:lx.off])
	if text == "_" {
		return token.Token{Kind: token.Underscore, Span: lx.spanFrom(start), Text: text}
	}
	return token.Token{Kind: token.LookupKeyword(text), Span: lx.spanFrom(start), Text: text}
}

func (lx *Lexer) scanNumber(start uint32) token.Token {
	for !lx.eof() && isDigit(lx.peekByte()) {
		lx.off++
	}
	// 1..5 must lex as 1, .., 5 and not as a malformed float.
	if !lx.eof() && lx.peekByte() == '.' && lx.peekAt(1) != '.' {
		lx.reporter.Report(diag.Errorf(diag.LexBadNumber, lx.spanFrom(start),
			"floating point literals are not supported"))
		lx.off++
		for !lx.eof() && isDigit(lx.peekByte()) {
			lx.off++
		}
		return token.Token{Kind: token.Invalid, Span: lx.spanFrom(start)}
	}
	return token.Token{Kind: token.IntLit, Span: lx.spanFrom(start), Text: string(lx.file.Content[start:lx.off])}
}

func (lx *Lexer) scanString(start uint32) token.Token {
	lx.off++ // opening quote
	var buf []byte
	for {
		if lx.eof() || lx.peekByte() == '\n' {
			lx.reporter.Report(diag.Errorf(diag.LexUnterminatedString, lx.spanFrom(start),
				"unterminated string literal"))
			return token.Token{Kind: token.Invalid, Span: lx.spanFrom(start)}
		}
		ch := lx.peekByte()
		if ch == '"' {
			lx.off++
			return token.Token{Kind: token.StringLit, Span: lx.spanFrom(start), Text: string(buf)}
		}
		if ch == '\\' {
			lx.off++
			if lx.eof() {
				continue
			}
			switch lx.peekByte() {
			case 'n':
				buf = append(buf, '\n')
			case 't':
				buf = append(buf, '\t')
			case 'r':
				buf = append(buf, '\r')
			case '\\':
				buf = append(buf, '\\')
			case '"':
				buf = append(buf, '"')
			case '0':
				buf = append(buf, 0)
			default:
				lx.reporter.Report(diag.Errorf(diag.LexUnknownChar, lx.spanFrom(lx.off-1),
					"unknown escape sequence '\\%c'", lx.peekByte()))
			}
			lx.off++
			continue
		}
		buf = append(buf, ch)
		lx.off++
	}
}

func (lx *Lexer) scanOperator(start uint32) token.Token {
	ch := lx.peekByte()
	lx.off++

	two := func(next byte, kind token.Kind, fallback token.Kind) token.Token {
		if !lx.eof() && lx.peekByte() == next {
			lx.off++
			return lx.tok(kind, start)
		}
		return lx.tok(fallback, start)
	}

	switch ch {
	case '+':
		return lx.tok(token.Plus, start)
	case '-':
		return two('>', token.Arrow, token.Minus)
	case '*':
		return lx.tok(token.Star, start)
	case '/':
		return lx.tok(token.Slash, start)
	case '%':
		return lx.tok(token.Percent, start)
	case '=':
		if !lx.eof() && lx.peekByte() == '>' {
			lx.off++
			return lx.tok(token.FatArrow, start)
		}
		return two('=', token.EqEq, token.Assign)
	case '!':
		return two('=', token.BangEq, token.Bang)
	case '<':
		return two('=', token.LtEq, token.Lt)
	case '>':
		return two('=', token.GtEq, token.Gt)
	case '&':
		return two('&', token.AndAnd, token.Amp)
	case '|':
		return two('|', token.OrOr, token.Invalid)
	case ':':
		return two(':', token.ColonColon, token.Colon)
	case ';':
		return lx.tok(token.Semicolon, start)
	case ',':
		return lx.tok(token.Comma, start)
	case '.':
		return two('.', token.DotDot, token.Dot)
	case '(':
		return lx.tok(token.LParen, start)
	case ')':
		return lx.tok(token.RParen, start)
	case '{':
		return lx.tok(token.LBrace, start)
	case '}':
		return lx.tok(token.RBrace, start)
	case '[':
		return lx.tok(token.LBracket, start)
	case ']':
		return lx.tok(token.RBracket, start)
	}
	lx.reporter.Report(diag.Errorf(diag.LexUnknownChar, lx.spanFrom(start),
		"unknown character %q", rune(ch)))
	return lx.tok(token.Invalid, start)
}

func (lx *Lexer) tok(kind token.Kind, start uint32) token.Token {
	return token.Token{
		Kind: kind,
		Span: lx.spanFrom(start),
		Text: string(lx.file.Content[start:lx.off]),
	}
}

func (lx *Lexer) spanFrom(start uint32) source.Span {
	return source.Span{File: lx.file.ID, Start: start, End: lx.off}
}

func (lx *Lexer) eof() bool {
	return int(lx.off) >= len(lx.file.Content)
}

func (lx *Lexer) peekByte() byte {
	return lx.file.Content[lx.off]
}

func (lx *Lexer) peekAt(ahead uint32) byte {
	if int(lx.off+ahead) >= len(lx.file.Content) {
		return 0
	}
	return lx.file.Content[lx.off+ahead]
}

func isIdentStart(ch byte) bool {
	return ch == '_' || (ch >= 'a' && ch <= 'z') || (ch >= 'A' && ch <= 'Z')
}

func isIdentPart(ch byte) bool {
	return isIdentStart(ch) || isDigit(ch)
}

func isDigit(ch byte) bool {
	return ch >= '0' && ch <= '9'
}
