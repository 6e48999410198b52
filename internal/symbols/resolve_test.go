package symbols_test

import (
	"testing"

	"palladium/internal/ast"
	"palladium/internal/diag"
	"palladium/internal/parser"
	"palladium/internal/source"
	"palladium/internal/symbols"
)

func resolveSource(t *testing.T, src string) (*symbols.Result, *diag.Bag) {
	t.Helper()
	fs := source.NewFileSet()
	id := fs.AddVirtual("test.pd", []byte(src))
	builder := ast.NewBuilder(ast.Hints{}, nil)
	bag := diag.NewBag(32)
	reporter := &diag.BagReporter{Bag: bag}
	res := parser.ParseFile(fs.Get(id), builder, reporter)
	if !res.OK {
		t.Fatalf("parse failed: %v", bag.Items())
	}
	result := symbols.Resolve(builder, []ast.FileID{res.File}, symbols.Options{Reporter: reporter})
	return result, bag
}

func codesOf(bag *diag.Bag) []diag.Code {
	items := bag.Items()
	codes := make([]diag.Code, 0, len(items))
	for _, d := range items {
		codes = append(codes, d.Code)
	}
	return codes
}

func hasCode(bag *diag.Bag, code diag.Code) bool {
	for _, d := range bag.Items() {
		if d.Code == code {
			return true
		}
	}
	return false
}

func TestResolveParamAndLocal(t *testing.T) {
	result, bag := resolveSource(t, `
fn add(x: i64) -> i64 {
    let y = x;
    return y;
}
`)
	if bag.HasErrors() {
		t.Fatalf("unexpected errors: %v", codesOf(bag))
	}
	if len(result.ItemSyms) != 1 {
		t.Fatalf("item symbols = %d", len(result.ItemSyms))
	}
	params := 0
	lets := 0
	for id := symbols.SymbolID(1); int(id) <= result.Table.Symbols.Len(); id++ {
		switch result.Table.Symbols.Get(id).Kind {
		case symbols.SymbolParam:
			params++
		case symbols.SymbolLet:
			lets++
		}
	}
	if params != 1 || lets != 1 {
		t.Fatalf("params=%d lets=%d", params, lets)
	}
}

func TestResolveDuplicateTopLevel(t *testing.T) {
	_, bag := resolveSource(t, `
fn f() {}
fn f() {}
`)
	if !hasCode(bag, diag.ResDuplicateSymbol) {
		t.Fatalf("want duplicate symbol error, got %v", codesOf(bag))
	}
}

func TestResolveUnresolvedName(t *testing.T) {
	_, bag := resolveSource(t, `fn f() { let x = missing; }`)
	if !hasCode(bag, diag.ResUnresolvedSymbol) {
		t.Fatalf("want unresolved symbol error, got %v", codesOf(bag))
	}
}

func TestResolveForwardReference(t *testing.T) {
	_, bag := resolveSource(t, `
fn caller() { callee(); }
fn callee() {}
`)
	if bag.HasErrors() {
		t.Fatalf("forward call should resolve: %v", codesOf(bag))
	}
}

func TestResolveBareVariantPromotion(t *testing.T) {
	result, bag := resolveSource(t, `
enum Option<T> { Some(T), None }
fn f(o: Option<i64>) {
    match o {
        Some(x) => print_int(x),
        None => {},
    }
}
`)
	if bag.HasErrors() {
		t.Fatalf("unexpected errors: %v", codesOf(bag))
	}
	promoted := 0
	for _, sym := range result.PatSyms {
		if result.Symbol(sym).Kind == symbols.SymbolVariant {
			promoted++
		}
	}
	// Some(x) and the bare None both map to variant symbols.
	if promoted != 2 {
		t.Fatalf("variant patterns = %d, want 2", promoted)
	}
}

func TestResolveAmbiguousVariant(t *testing.T) {
	_, bag := resolveSource(t, `
enum A { None }
enum B { None }
fn f(a: A) {
    match a {
        None => {},
    }
}
`)
	if !hasCode(bag, diag.ResAmbiguousSymbol) {
		t.Fatalf("want ambiguous variant error, got %v", codesOf(bag))
	}
}

func TestResolveUnknownVariant(t *testing.T) {
	_, bag := resolveSource(t, `
enum Option<T> { Some(T), None }
fn f(o: Option<i64>) {
    match o {
        Option::Nope => {},
        _ => {},
    }
}
`)
	if !hasCode(bag, diag.ResUnknownVariant) {
		t.Fatalf("want unknown variant error, got %v", codesOf(bag))
	}
}

func TestResolveBreakOutsideLoop(t *testing.T) {
	_, bag := resolveSource(t, `fn f() { break; }`)
	if !hasCode(bag, diag.ResOutsideLoop) {
		t.Fatalf("want outside-loop error, got %v", codesOf(bag))
	}
}

func TestResolveShadowingLet(t *testing.T) {
	_, bag := resolveSource(t, `
fn f(x: i64) {
    let x = x;
    let x = x;
}
`)
	if bag.HasErrors() {
		t.Fatalf("shadowing lets should resolve: %v", codesOf(bag))
	}
}

func TestResolveBuiltinsVisible(t *testing.T) {
	_, bag := resolveSource(t, `
fn f(s: String) {
    print(s);
    print_int(string_len(s));
}
`)
	if bag.HasErrors() {
		t.Fatalf("builtins should resolve: %v", codesOf(bag))
	}
}

func TestResolveNotAType(t *testing.T) {
	_, bag := resolveSource(t, `
fn g() {}
fn f(x: g) {}
`)
	if !hasCode(bag, diag.ResNotAType) {
		t.Fatalf("want not-a-type error, got %v", codesOf(bag))
	}
}
