package parser

import (
	"testing"

	"palladium/internal/ast"
	"palladium/internal/diag"
	"palladium/internal/source"
)

func parseSource(t *testing.T, src string) (*ast.Builder, Result, *diag.Bag) {
	t.Helper()
	fs := source.NewFileSet()
	id := fs.AddVirtual("test.pd", []byte(src))
	builder := ast.NewBuilder(ast.Hints{}, nil)
	bag := diag.NewBag(16)
	res := ParseFile(fs.Get(id), builder, &diag.BagReporter{Bag: bag})
	return builder, res, bag
}

func mustParse(t *testing.T, src string) (*ast.Builder, Result) {
	t.Helper()
	builder, res, bag := parseSource(t, src)
	if !res.OK {
		t.Fatalf("parse failed: %v", bag.Items())
	}
	return builder, res
}

func TestParseFunction(t *testing.T) {
	b, res := mustParse(t, `
fn add(x: i64, y: i64) -> i64 {
    return x + y;
}
`)
	file := b.Files.Get(res.File)
	if len(file.Items) != 1 {
		t.Fatalf("item count = %d", len(file.Items))
	}
	fn, ok := b.Items.Fn(file.Items[0])
	if !ok {
		t.Fatalf("expected a function item")
	}
	if b.Strings.MustLookup(fn.Name) != "add" {
		t.Fatalf("fn name = %q", b.Strings.MustLookup(fn.Name))
	}
	if len(fn.Params) != 2 || len(fn.Body) != 1 {
		t.Fatalf("params=%d body=%d", len(fn.Params), len(fn.Body))
	}
	ret, ok := b.Stmts.Return(fn.Body[0])
	if !ok || !ret.Value.IsValid() {
		t.Fatalf("expected return with value")
	}
	bin, ok := b.Exprs.Binary(ret.Value)
	if !ok || bin.Op != ast.BinaryAdd {
		t.Fatalf("expected addition in return")
	}
}

func TestParseGenericStructAndEnum(t *testing.T) {
	b, res := mustParse(t, `
pub struct Pair<A, B> { first: A, second: B }
enum Option<T> {
    Some(T),
    None,
}
`)
	file := b.Files.Get(res.File)
	st, ok := b.Items.Struct(file.Items[0])
	if !ok || !st.Public || len(st.TypeParams) != 2 || len(st.Fields) != 2 {
		t.Fatalf("struct parse mismatch: %+v", st)
	}
	en, ok := b.Items.Enum(file.Items[1])
	if !ok || len(en.Variants) != 2 {
		t.Fatalf("enum parse mismatch")
	}
	if en.Variants[0].Form != ast.CtorTuple || len(en.Variants[0].Elems) != 1 {
		t.Fatalf("Some should be a 1-tuple variant")
	}
	if en.Variants[1].Form != ast.CtorUnit {
		t.Fatalf("None should be a unit variant")
	}
}

func TestParsePrecedence(t *testing.T) {
	b, res := mustParse(t, `fn f() -> i64 { return 1 + 2 * 3; }`)
	file := b.Files.Get(res.File)
	fn, _ := b.Items.Fn(file.Items[0])
	ret, _ := b.Stmts.Return(fn.Body[0])
	add, ok := b.Exprs.Binary(ret.Value)
	if !ok || add.Op != ast.BinaryAdd {
		t.Fatalf("top operator should be +")
	}
	mul, ok := b.Exprs.Binary(add.Right)
	if !ok || mul.Op != ast.BinaryMul {
		t.Fatalf("right operand should be the multiplication")
	}
}

func TestParseMatch(t *testing.T) {
	b, res := mustParse(t, `
fn f(o: Option<i64>) {
    match o {
        Option::Some(x) => print_int(x),
        None => {},
    }
}
`)
	file := b.Files.Get(res.File)
	fn, _ := b.Items.Fn(file.Items[0])
	m, ok := b.Stmts.Match(fn.Body[0])
	if !ok || len(m.Arms) != 2 {
		t.Fatalf("match arms = %d", len(m.Arms))
	}
	first, ok := b.Pats.Enum(m.Arms[0].Pattern)
	if !ok || b.Strings.MustLookup(first.Variant) != "Some" {
		t.Fatalf("first arm pattern mismatch")
	}
	if len(first.Sub) != 1 {
		t.Fatalf("Some(x) should carry one subpattern")
	}
	// The bare None arm parses as a binding; sema promotes it.
	if b.Pats.Get(m.Arms[1].Pattern).Kind != ast.PatBinding {
		t.Fatalf("bare None arm should parse as binding")
	}
}

func TestParseStructLiteralVsBlock(t *testing.T) {
	b, res := mustParse(t, `
fn f(p: Point) {
    if x { return; }
    let q = Point { x: 1, y: 2 };
}
`)
	file := b.Files.Get(res.File)
	fn, _ := b.Items.Fn(file.Items[0])
	if _, ok := b.Stmts.If(fn.Body[0]); !ok {
		t.Fatalf("condition must not be parsed as struct literal")
	}
	let, _ := b.Stmts.Let(fn.Body[1])
	if _, ok := b.Exprs.StructLit(let.Value); !ok {
		t.Fatalf("let value should be a struct literal")
	}
}

func TestParseBorrowAndDeref(t *testing.T) {
	b, res := mustParse(t, `fn f() { let r = &mut x; let v = *r; }`)
	file := b.Files.Get(res.File)
	fn, _ := b.Items.Fn(file.Items[0])
	let1, _ := b.Stmts.Let(fn.Body[0])
	borrow, ok := b.Exprs.Borrow(let1.Value)
	if !ok || !borrow.Mutable {
		t.Fatalf("expected &mut borrow")
	}
	let2, _ := b.Stmts.Let(fn.Body[1])
	un, ok := b.Exprs.Unary(let2.Value)
	if !ok || un.Op != ast.UnaryDeref {
		t.Fatalf("expected deref")
	}
}

func TestParseForRange(t *testing.T) {
	b, res := mustParse(t, `fn f() { for i in 0..10 { print_int(i); } }`)
	file := b.Files.Get(res.File)
	fn, _ := b.Items.Fn(file.Items[0])
	loop, ok := b.Stmts.For(fn.Body[0])
	if !ok {
		t.Fatalf("expected for statement")
	}
	if _, ok := b.Exprs.Range(loop.Iter); !ok {
		t.Fatalf("iterator should be a range")
	}
}

func TestParseErrorRecovery(t *testing.T) {
	_, res, bag := parseSource(t, `
fn broken( { }
fn ok() { return; }
`)
	if res.OK {
		t.Fatalf("expected failure")
	}
	if bag.Len() == 0 {
		t.Fatalf("expected diagnostics")
	}
}
