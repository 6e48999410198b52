package sema_test

import (
	"testing"

	"palladium/internal/ast"
	"palladium/internal/diag"
	"palladium/internal/parser"
	"palladium/internal/sema"
	"palladium/internal/source"
	"palladium/internal/symbols"
)

func checkSource(t *testing.T, src string) (*sema.Result, *diag.Bag) {
	t.Helper()
	fs := source.NewFileSet()
	id := fs.AddVirtual("test.pd", []byte(src))
	builder := ast.NewBuilder(ast.Hints{}, nil)
	bag := diag.NewBag(64)
	reporter := &diag.BagReporter{Bag: bag}
	res := parser.ParseFile(fs.Get(id), builder, reporter)
	if !res.OK {
		t.Fatalf("parse failed: %v", bag.Items())
	}
	files := []ast.FileID{res.File}
	syms := symbols.Resolve(builder, files, symbols.Options{Reporter: reporter})
	if bag.HasErrors() {
		t.Fatalf("resolution failed: %v", codesOf(bag))
	}
	result := sema.Check(builder, files, sema.Options{Reporter: reporter, Symbols: syms})
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

func TestCheckSimpleFunction(t *testing.T) {
	res, bag := checkSource(t, `
fn add(a: i64, b: i64) -> i64 {
    return a + b;
}
fn main() {
    let x = add(1, 2);
    print_int(x);
}
`)
	if bag.HasErrors() {
		t.Fatalf("unexpected errors: %v", codesOf(bag))
	}
	i64 := res.Types.Builtins().I64
	found := false
	for sym, bt := range res.BindingTypes {
		s := res.Symbols.Symbol(sym)
		if s != nil && s.Kind == symbols.SymbolLet {
			found = true
			if bt != i64 {
				t.Fatalf("let type = %d, want i64", bt)
			}
		}
	}
	if !found {
		t.Fatal("no let binding was typed")
	}
}

func TestCheckTypeMismatch(t *testing.T) {
	_, bag := checkSource(t, `
fn main() {
    let x: i64 = true;
}
`)
	if !hasCode(bag, diag.TypeMismatch) {
		t.Fatalf("want type mismatch, got %v", codesOf(bag))
	}
}

func TestCheckIntLiteralAdoptsExpected(t *testing.T) {
	_, bag := checkSource(t, `
fn take(n: i32) {}
fn main() {
    let a: i32 = 7;
    take(12);
}
`)
	if bag.HasErrors() {
		t.Fatalf("unexpected errors: %v", codesOf(bag))
	}
}

func TestCheckConditionNotBool(t *testing.T) {
	_, bag := checkSource(t, `
fn main() {
    if 1 {
        print("yes");
    }
}
`)
	if !hasCode(bag, diag.TypeConditionNotBool) {
		t.Fatalf("want condition error, got %v", codesOf(bag))
	}
}

func TestCheckCallArity(t *testing.T) {
	_, bag := checkSource(t, `
fn pair(a: i64, b: i64) -> i64 { return a; }
fn main() {
    pair(1);
}
`)
	if !hasCode(bag, diag.TypeArityMismatch) {
		t.Fatalf("want arity error, got %v", codesOf(bag))
	}
}

func TestCheckGenericCallInference(t *testing.T) {
	res, bag := checkSource(t, `
fn identity<T>(v: T) -> T {
    return v;
}
fn main() {
    let x = identity(5);
    let s = identity("hi");
}
`)
	if bag.HasErrors() {
		t.Fatalf("unexpected errors: %v", codesOf(bag))
	}
	if len(res.CallInsts) != 2 {
		t.Fatalf("instantiations = %d, want 2", len(res.CallInsts))
	}
	i64 := res.Types.Builtins().I64
	str := res.Types.Builtins().String
	sawInt, sawString := false, false
	for _, inst := range res.CallInsts {
		if len(inst.Args) != 1 {
			t.Fatalf("instantiation args = %d", len(inst.Args))
		}
		switch inst.Args[0] {
		case i64:
			sawInt = true
		case str:
			sawString = true
		}
	}
	if !sawInt || !sawString {
		t.Fatalf("instantiation args missing: int=%v string=%v", sawInt, sawString)
	}
}

func TestCheckNestedGenericCall(t *testing.T) {
	_, bag := checkSource(t, `
fn identity<T>(v: T) -> T {
    return v;
}
fn main() {
    let x: i64 = identity(identity(5));
}
`)
	if bag.HasErrors() {
		t.Fatalf("unexpected errors: %v", codesOf(bag))
	}
}

func TestCheckCannotInferEnumArg(t *testing.T) {
	_, bag := checkSource(t, `
enum Option<T> {
    Some(T),
    None,
}
fn main() {
    let x = None;
}
`)
	if !hasCode(bag, diag.TypeCannotInfer) {
		t.Fatalf("want cannot-infer error, got %v", codesOf(bag))
	}
}

func TestCheckEnumArgInferredLater(t *testing.T) {
	_, bag := checkSource(t, `
enum Option<T> {
    Some(T),
    None,
}
fn main() {
    let x: Option<i64> = None;
    let y = Some(42);
}
`)
	if bag.HasErrors() {
		t.Fatalf("unexpected errors: %v", codesOf(bag))
	}
}

func TestCheckStructLiteral(t *testing.T) {
	_, bag := checkSource(t, `
struct Point {
    x: i64,
    y: i64,
}
fn main() {
    let p = Point { x: 1, y: 2 };
    let sum = p.x + p.y;
}
`)
	if bag.HasErrors() {
		t.Fatalf("unexpected errors: %v", codesOf(bag))
	}
}

func TestCheckStructLiteralMissingField(t *testing.T) {
	_, bag := checkSource(t, `
struct Point {
    x: i64,
    y: i64,
}
fn main() {
    let p = Point { x: 1 };
}
`)
	if !hasCode(bag, diag.TypeMissingField) {
		t.Fatalf("want missing-field error, got %v", codesOf(bag))
	}
}

func TestCheckUnknownField(t *testing.T) {
	_, bag := checkSource(t, `
struct Point {
    x: i64,
}
fn main() {
    let p = Point { x: 1 };
    let z = p.z;
}
`)
	if !hasCode(bag, diag.TypeUnknownField) {
		t.Fatalf("want unknown-field error, got %v", codesOf(bag))
	}
}

func TestCheckGenericStructField(t *testing.T) {
	res, bag := checkSource(t, `
struct Box<T> {
    value: T,
}
fn main() {
    let b = Box { value: 42 };
    let v: i64 = b.value;
}
`)
	if bag.HasErrors() {
		t.Fatalf("unexpected errors: %v", codesOf(bag))
	}
	_ = res
}

func TestCheckAssignImmutable(t *testing.T) {
	_, bag := checkSource(t, `
fn main() {
    let x = 1;
    x = 2;
}
`)
	if !hasCode(bag, diag.TypeAssignImmutable) {
		t.Fatalf("want immutable-assign error, got %v", codesOf(bag))
	}
}

func TestCheckAssignMutable(t *testing.T) {
	_, bag := checkSource(t, `
fn main() {
    let mut x = 1;
    x = 2;
}
`)
	if bag.HasErrors() {
		t.Fatalf("unexpected errors: %v", codesOf(bag))
	}
}

func TestCheckAssignThroughSharedRef(t *testing.T) {
	_, bag := checkSource(t, `
fn main() {
    let mut x = 1;
    let r = &x;
    *r = 2;
}
`)
	if !hasCode(bag, diag.TypeAssignImmutable) {
		t.Fatalf("want immutable-assign error, got %v", codesOf(bag))
	}
}

func TestCheckDerefNonRef(t *testing.T) {
	_, bag := checkSource(t, `
fn main() {
    let x = 1;
    let y = *x;
}
`)
	if !hasCode(bag, diag.TypeInvalidUnaryOp) {
		t.Fatalf("want unary-op error, got %v", codesOf(bag))
	}
}

func TestCheckArrayIndexing(t *testing.T) {
	_, bag := checkSource(t, `
fn main() {
    let xs = [1, 2, 3];
    let first: i64 = xs[0];
}
`)
	if bag.HasErrors() {
		t.Fatalf("unexpected errors: %v", codesOf(bag))
	}
}

func TestCheckIndexNonArray(t *testing.T) {
	_, bag := checkSource(t, `
fn main() {
    let x = 1;
    let y = x[0];
}
`)
	if !hasCode(bag, diag.TypeNotIndexable) {
		t.Fatalf("want not-indexable error, got %v", codesOf(bag))
	}
}

func TestCheckForRange(t *testing.T) {
	_, bag := checkSource(t, `
fn main() {
    for i in 0..10 {
        print_int(i);
    }
}
`)
	if bag.HasErrors() {
		t.Fatalf("unexpected errors: %v", codesOf(bag))
	}
}

func TestCheckForNotIterable(t *testing.T) {
	_, bag := checkSource(t, `
fn main() {
    for x in true {
        print("no");
    }
}
`)
	if !hasCode(bag, diag.TypeNotIterable) {
		t.Fatalf("want not-iterable error, got %v", codesOf(bag))
	}
}

func TestCheckBuiltinSignatures(t *testing.T) {
	_, bag := checkSource(t, `
fn main() {
    let s = string_concat("a", "b");
    let n = string_len(s);
    let c = int_to_string(n);
    print(c);
}
`)
	if bag.HasErrors() {
		t.Fatalf("unexpected errors: %v", codesOf(bag))
	}
}

func TestCheckBorrowTemporary(t *testing.T) {
	_, bag := checkSource(t, `
fn main() {
    let r = &(1 + 2);
}
`)
	if !hasCode(bag, diag.TypeMismatch) {
		t.Fatalf("want borrow-of-temporary error, got %v", codesOf(bag))
	}
}

func TestCheckMatchVariantPayloadTypes(t *testing.T) {
	_, bag := checkSource(t, `
enum Option<T> {
    Some(T),
    None,
}
fn main() {
    let o: Option<i64> = Some(3);
    match o {
        Some(v) => {
            let n: i64 = v;
        }
        None => {}
    }
}
`)
	if bag.HasErrors() {
		t.Fatalf("unexpected errors: %v", codesOf(bag))
	}
}

func TestCheckMatchWrongEnum(t *testing.T) {
	_, bag := checkSource(t, `
enum Color { Red, Green }
enum Shape { Circle, Square }
fn main() {
    let c = Color::Red;
    match c {
        Shape::Circle => {}
        _ => {}
    }
}
`)
	if !hasCode(bag, diag.TypeMismatch) {
		t.Fatalf("want mismatch on foreign variant, got %v", codesOf(bag))
	}
}

func TestCheckReturnTypeMismatch(t *testing.T) {
	_, bag := checkSource(t, `
fn answer() -> i64 {
    return "forty two";
}
`)
	if !hasCode(bag, diag.TypeMismatch) {
		t.Fatalf("want return mismatch, got %v", codesOf(bag))
	}
}

func TestCheckLogicalOperators(t *testing.T) {
	_, bag := checkSource(t, `
fn main() {
    let a = true && false;
    let b = 1 < 2 || 3 >= 4;
    let c = !a;
}
`)
	if bag.HasErrors() {
		t.Fatalf("unexpected errors: %v", codesOf(bag))
	}
}

func TestCheckArithmeticOnBool(t *testing.T) {
	_, bag := checkSource(t, `
fn main() {
    let x = true + false;
}
`)
	if !hasCode(bag, diag.TypeInvalidBinaryOps) {
		t.Fatalf("want binary-op error, got %v", codesOf(bag))
	}
}
