package mono_test

import (
	"strings"
	"testing"

	"palladium/internal/ast"
	"palladium/internal/diag"
	"palladium/internal/mono"
	"palladium/internal/parser"
	"palladium/internal/sema"
	"palladium/internal/source"
	"palladium/internal/symbols"
)

func monoSource(t *testing.T, src string) (*mono.Program, error) {
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
	checked := sema.Check(builder, files, sema.Options{Reporter: reporter, Symbols: syms})
	if bag.HasErrors() {
		t.Fatalf("check failed: %v", bag.Items())
	}
	return mono.Monomorphize(builder, checked, mono.Options{})
}

func fnNames(prog *mono.Program) []string {
	names := make([]string, 0, len(prog.Fns))
	for _, fn := range prog.Fns {
		names = append(names, fn.Name)
	}
	return names
}

func TestMonoExpandsGenericPerTypeArg(t *testing.T) {
	prog, err := monoSource(t, `
fn identity<T>(v: T) -> T {
    return v;
}
fn main() {
    let a = identity(5);
    let b = identity("hi");
}
`)
	if err != nil {
		t.Fatal(err)
	}
	names := fnNames(prog)
	want := []string{"identity__String", "identity__i64", "main"}
	if len(names) != len(want) {
		t.Fatalf("functions = %v, want %v", names, want)
	}
	for i, n := range want {
		if names[i] != n {
			t.Fatalf("functions = %v, want %v", names, want)
		}
	}
}

func TestMonoUninstantiatedGenericDropped(t *testing.T) {
	prog, err := monoSource(t, `
fn unused<T>(v: T) -> T {
    return v;
}
fn main() {
    print_int(1);
}
`)
	if err != nil {
		t.Fatal(err)
	}
	names := fnNames(prog)
	if len(names) != 1 || names[0] != "main" {
		t.Fatalf("functions = %v, want only main", names)
	}
}

func TestMonoEnumInstances(t *testing.T) {
	prog, err := monoSource(t, `
enum Option<T> {
    Some(T),
    None,
}
fn main() {
    let a: Option<i64> = Some(1);
    let b: Option<String> = None;
}
`)
	if err != nil {
		t.Fatal(err)
	}
	if len(prog.Enums) != 2 {
		t.Fatalf("enum instances = %d, want 2", len(prog.Enums))
	}
	if prog.Enums[0].Name != "Option_String" || prog.Enums[1].Name != "Option_i64" {
		t.Fatalf("enum names = %s, %s", prog.Enums[0].Name, prog.Enums[1].Name)
	}
	if len(prog.Enums[0].Variants) != 2 {
		t.Fatalf("variants = %d", len(prog.Enums[0].Variants))
	}
}

func TestMonoNestedTypeArgs(t *testing.T) {
	prog, err := monoSource(t, `
struct Box<T> {
    value: T,
}
fn main() {
    let b = Box { value: Box { value: 3 } };
}
`)
	if err != nil {
		t.Fatal(err)
	}
	if len(prog.Structs) != 2 {
		t.Fatalf("struct instances = %d, want 2", len(prog.Structs))
	}
	if prog.Structs[0].Name != "Box_Box_i64" || prog.Structs[1].Name != "Box_i64" {
		t.Fatalf("struct names = %s, %s", prog.Structs[0].Name, prog.Structs[1].Name)
	}
}

func TestMonoCalleeRewrite(t *testing.T) {
	prog, err := monoSource(t, `
fn identity<T>(v: T) -> T {
    return v;
}
fn main() {
    let a = identity(5);
}
`)
	if err != nil {
		t.Fatal(err)
	}
	var main *mono.FnInst
	for _, fn := range prog.Fns {
		if fn.Name == "main" {
			main = fn
		}
	}
	if main == nil {
		t.Fatal("main instance missing")
	}
	if len(main.CalleeNames) != 1 {
		t.Fatalf("callee rewrites = %d, want 1", len(main.CalleeNames))
	}
	for _, name := range main.CalleeNames {
		if name != "identity__i64" {
			t.Fatalf("callee name = %s", name)
		}
	}
}

func TestMonoGenericCallingGeneric(t *testing.T) {
	prog, err := monoSource(t, `
fn inner<T>(v: T) -> T {
    return v;
}
fn outer<T>(v: T) -> T {
    return inner(v);
}
fn main() {
    let x = outer(7);
}
`)
	if err != nil {
		t.Fatal(err)
	}
	names := fnNames(prog)
	want := []string{"inner__i64", "main", "outer__i64"}
	if len(names) != len(want) {
		t.Fatalf("functions = %v, want %v", names, want)
	}
	for i, n := range want {
		if names[i] != n {
			t.Fatalf("functions = %v, want %v", names, want)
		}
	}
}

func TestMonoDeterministicAcrossRuns(t *testing.T) {
	src := `
enum Option<T> { Some(T), None }
fn identity<T>(v: T) -> T { return v; }
fn main() {
    let a = identity(1);
    let b = identity("s");
    let c = identity(true);
    let d: Option<i64> = Some(2);
}
`
	first, err := monoSource(t, src)
	if err != nil {
		t.Fatal(err)
	}
	second, err := monoSource(t, src)
	if err != nil {
		t.Fatal(err)
	}
	a, b := fnNames(first), fnNames(second)
	if len(a) != len(b) {
		t.Fatalf("run lengths differ: %v vs %v", a, b)
	}
	for i := range a {
		if a[i] != b[i] {
			t.Fatalf("order differs: %v vs %v", a, b)
		}
	}
}

func TestMonoDepthGuardIsFatal(t *testing.T) {
	_, err := monoSource(t, `
enum Option<T> { Some(T), None }
fn wrap<T>(v: T) {
    wrap(Some(v));
}
fn main() {
    wrap(1);
}
`)
	if err == nil {
		t.Fatal("unbounded instantiation must abort with an error")
	}
	if !strings.Contains(err.Error(), diag.InternalMonoDepth.String()) {
		t.Fatalf("error must carry the internal code: %v", err)
	}
	if !strings.Contains(err.Error(), "instantiation depth exceeded") {
		t.Fatalf("unexpected error: %v", err)
	}
}
