// Package parser builds the arena AST from tokens. The checking pipeline
// never looks at tokens; a file that parses with errors is not handed
// past resolution.
package parser

import (
	"palladium/internal/ast"
	"palladium/internal/diag"
	"palladium/internal/lexer"
	"palladium/internal/source"
	"palladium/internal/token"
)

type Parser struct {
	lx       *lexer.Lexer
	builder  *ast.Builder
	reporter diag.Reporter
	fileID   source.FileID

	tok token.Token

	// noStructLit suppresses `Ident { ... }` literals while parsing a
	// condition or scrutinee, where `{` starts the body block instead.
	noStructLit bool
	failed      bool
}

// Result of parsing one file.
type Result struct {
	File ast.FileID
	// OK is false when any syntax error was reported.
	OK bool
}

// ParseFile parses the whole file into builder and returns the AST root.
func ParseFile(file *source.File, builder *ast.Builder, reporter diag.Reporter) Result {
	if reporter == nil {
		reporter = diag.NopReporter{}
	}
	p := &Parser{
		lx:       lexer.New(file, reporter),
		builder:  builder,
		reporter: reporter,
		fileID:   file.ID,
	}
	p.advance()

	root := builder.Files.New(source.Span{File: file.ID, Start: 0, End: uint32(len(file.Content))})
	for p.tok.Kind != token.EOF {
		item := p.parseItem()
		if item.IsValid() {
			builder.PushItem(root, item)
		} else {
			p.recoverToItem()
		}
	}
	return Result{File: root, OK: !p.failed}
}

func (p *Parser) advance() {
	p.tok = p.lx.Next()
}

func (p *Parser) at(kind token.Kind) bool {
	return p.tok.Kind == kind
}

func (p *Parser) eat(kind token.Kind) bool {
	if p.at(kind) {
		p.advance()
		return true
	}
	return false
}

func (p *Parser) expect(kind token.Kind, code diag.Code) (token.Token, bool) {
	if p.at(kind) {
		tok := p.tok
		p.advance()
		return tok, true
	}
	p.errorf(code, p.tok.Span, "expected %s, found %s", kind, p.describe(p.tok))
	return token.Token{}, false
}

func (p *Parser) describe(tok token.Token) string {
	if tok.Kind == token.EOF {
		return "end of file"
	}
	if tok.Text != "" {
		return "'" + tok.Text + "'"
	}
	return tok.Kind.String()
}

func (p *Parser) errorf(code diag.Code, span source.Span, format string, args ...any) {
	p.failed = true
	p.reporter.Report(diag.Errorf(code, span, format, args...))
}

// recoverToItem skips tokens until a plausible item start.
func (p *Parser) recoverToItem() {
	for !p.at(token.EOF) {
		switch p.tok.Kind {
		case token.KwFn, token.KwStruct, token.KwEnum, token.KwImport, token.KwPub:
			return
		}
		p.advance()
	}
}

// recoverToStmt skips to the next statement boundary within a block.
func (p *Parser) recoverToStmt() {
	for !p.at(token.EOF) {
		if p.eat(token.Semicolon) {
			return
		}
		if p.at(token.RBrace) {
			return
		}
		p.advance()
	}
}

func (p *Parser) intern(text string) source.StringID {
	return p.builder.Strings.Intern(text)
}
