package lexer

import (
	"testing"

	"palladium/internal/diag"
	"palladium/internal/source"
	"palladium/internal/token"
)

func lexAll(t *testing.T, src string) []token.Token {
	t.Helper()
	fs := source.NewFileSet()
	id := fs.AddVirtual("test.pd", []byte(src))
	lx := New(fs.Get(id), nil)
	var out []token.Token
	for {
		tok := lx.Next()
		if tok.Kind == token.EOF {
			return out
		}
		out = append(out, tok)
	}
}

func kinds(toks []token.Token) []token.Kind {
	out := make([]token.Kind, len(toks))
	for i, tok := range toks {
		out[i] = tok.Kind
	}
	return out
}

func TestLexFnHeader(t *testing.T) {
	toks := lexAll(t, "fn add(x: i64, y: i64) -> i64 {")
	want := []token.Kind{
		token.KwFn, token.Ident, token.LParen,
		token.Ident, token.Colon, token.Ident, token.Comma,
		token.Ident, token.Colon, token.Ident, token.RParen,
		token.Arrow, token.Ident, token.LBrace,
	}
	got := kinds(toks)
	if len(got) != len(want) {
		t.Fatalf("token count = %d, want %d (%v)", len(got), len(want), got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("token %d = %v, want %v", i, got[i], want[i])
		}
	}
	if toks[1].Text != "add" {
		t.Fatalf("fn name text = %q", toks[1].Text)
	}
}

func TestLexRangeVersusDot(t *testing.T) {
	toks := lexAll(t, "0..10")
	got := kinds(toks)
	want := []token.Kind{token.IntLit, token.DotDot, token.IntLit}
	if len(got) != 3 || got[0] != want[0] || got[1] != want[1] || got[2] != want[2] {
		t.Fatalf("kinds = %v, want %v", got, want)
	}
}

func TestLexStringEscapes(t *testing.T) {
	toks := lexAll(t, `"a\n\"b"`)
	if len(toks) != 1 || toks[0].Kind != token.StringLit {
		t.Fatalf("unexpected tokens %v", toks)
	}
	if toks[0].Text != "a\n\"b" {
		t.Fatalf("decoded = %q", toks[0].Text)
	}
}

func TestLexMatchArm(t *testing.T) {
	toks := lexAll(t, "Option::Some(x) => x,")
	got := kinds(toks)
	want := []token.Kind{
		token.Ident, token.ColonColon, token.Ident,
		token.LParen, token.Ident, token.RParen,
		token.FatArrow, token.Ident, token.Comma,
	}
	if len(got) != len(want) {
		t.Fatalf("kinds = %v", got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("token %d = %v, want %v", i, got[i], want[i])
		}
	}
}

func TestLexCommentsSkipped(t *testing.T) {
	toks := lexAll(t, "let x = 1; // trailing\n// full line\nx")
	got := kinds(toks)
	want := []token.Kind{token.KwLet, token.Ident, token.Assign, token.IntLit, token.Semicolon, token.Ident}
	if len(got) != len(want) {
		t.Fatalf("kinds = %v", got)
	}
}

func TestLexUnterminatedString(t *testing.T) {
	fs := source.NewFileSet()
	id := fs.AddVirtual("test.pd", []byte("\"oops"))
	bag := diag.NewBag(4)
	lx := New(fs.Get(id), &diag.BagReporter{Bag: bag})
	lx.Next()
	if !bag.HasErrors() {
		t.Fatalf("expected a lex error")
	}
	if bag.Items()[0].Code != diag.LexUnterminatedString {
		t.Fatalf("code = %v", bag.Items()[0].Code)
	}
}
