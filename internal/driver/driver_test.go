package driver_test

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/vmihailenco/msgpack/v5"

	"palladium/internal/diag"
	"palladium/internal/driver"
)

func writeSource(t *testing.T, dir, name, src string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(src), 0o644); err != nil {
		t.Fatalf("write %s: %v", name, err)
	}
	return path
}

func TestCompileSimpleProgram(t *testing.T) {
	dir := t.TempDir()
	path := writeSource(t, dir, "main.pd", `
fn add(a: i64, b: i64) -> i64 {
    return a + b;
}
fn main() {
    print_int(add(2, 3));
}
`)
	res, err := driver.Compile(path, driver.Options{})
	if err != nil {
		t.Fatalf("compile: %v", err)
	}
	if res.HasErrors() {
		t.Fatalf("unexpected diagnostics: %v", res.Bag.Items())
	}
	if !strings.Contains(string(res.CSource), "__pd_print_int") {
		t.Fatalf("builtin call missing from output:\n%s", res.CSource)
	}
	if !strings.Contains(string(res.CSource), "int main(void)") {
		t.Fatalf("entry wrapper missing:\n%s", res.CSource)
	}
	if len(res.Runtime) == 0 {
		t.Fatal("runtime source missing")
	}
}

func TestCompileHaltsBeforeCodegenOnTypeError(t *testing.T) {
	dir := t.TempDir()
	path := writeSource(t, dir, "main.pd", `
fn main() {
    let x: bool = 5;
}
`)
	res, err := driver.Compile(path, driver.Options{})
	if err != nil {
		t.Fatalf("compile: %v", err)
	}
	if !res.HasErrors() {
		t.Fatal("want type error")
	}
	if res.CSource != nil {
		t.Fatal("code generated despite errors")
	}
}

func TestCompileBatchesSemaDiagnostics(t *testing.T) {
	dir := t.TempDir()
	path := writeSource(t, dir, "main.pd", `
fn main() {
    let a: bool = 1;
    let b: i64 = true;
}
`)
	res, err := driver.Compile(path, driver.Options{})
	if err != nil {
		t.Fatalf("compile: %v", err)
	}
	mismatches := 0
	for _, d := range res.Bag.Items() {
		if d.Code == diag.TypeMismatch {
			mismatches++
		}
	}
	if mismatches < 2 {
		t.Fatalf("want both mismatches reported, got %v", res.Bag.Items())
	}
}

func TestResolutionErrorsHalt(t *testing.T) {
	dir := t.TempDir()
	path := writeSource(t, dir, "main.pd", `
fn main() {
    frobnicate(1);
}
`)
	res, err := driver.Compile(path, driver.Options{})
	if err != nil {
		t.Fatalf("compile: %v", err)
	}
	found := false
	for _, d := range res.Bag.Items() {
		if d.Code == diag.ResUnresolvedSymbol {
			found = true
		}
	}
	if !found {
		t.Fatalf("want unresolved symbol, got %v", res.Bag.Items())
	}
	if res.CSource != nil {
		t.Fatal("code generated despite resolution failure")
	}
}

func TestCompileErrorDroppedAtCapStillHalts(t *testing.T) {
	dir := t.TempDir()
	path := writeSource(t, dir, "main.pd", `
enum Color { Red, Green }
fn main() {
    let c1 = Color::Red;
    match c1 {
        _ => {},
        Red => {},
    }
    let c2 = Color::Green;
    match c2 {
        _ => {},
        Green => {},
    }
    let c3 = Color::Red;
    match c3 {
        Red => {},
    }
}
`)
	res, err := driver.Compile(path, driver.Options{MaxDiagnostics: 2})
	if err != nil {
		t.Fatalf("compile: %v", err)
	}
	if res.Bag.Len() != 2 {
		t.Fatalf("stored diagnostics = %d, want cap of 2", res.Bag.Len())
	}
	if res.Bag.Dropped() == 0 {
		t.Fatal("the non-exhaustive match should have overflowed the cap")
	}
	if !res.HasErrors() {
		t.Fatal("error past the cap must still count")
	}
	if res.CSource != nil {
		t.Fatal("code generated despite a dropped error")
	}
}

func TestCompileHugeDiagnosticsCap(t *testing.T) {
	dir := t.TempDir()
	path := writeSource(t, dir, "main.pd", `
fn main() {
    let x: i64 = "oops";
}
`)
	res, err := driver.Compile(path, driver.Options{MaxDiagnostics: 65536})
	if err != nil {
		t.Fatalf("compile: %v", err)
	}
	if res.Bag.Len() != 1 || !res.HasErrors() {
		t.Fatalf("diags = %d hasErrors = %v", res.Bag.Len(), res.HasErrors())
	}
	if res.CSource != nil {
		t.Fatal("code generated despite the type error")
	}
}

func TestCompileRunawayGenericIsInternal(t *testing.T) {
	dir := t.TempDir()
	path := writeSource(t, dir, "main.pd", `
enum Option<T> { Some(T), None }
fn wrap<T>(v: T) {
    wrap(Some(v));
}
fn main() {
    wrap(1);
}
`)
	res, err := driver.Compile(path, driver.Options{})
	if err == nil {
		t.Fatal("want internal error for unbounded instantiation")
	}
	if !strings.HasPrefix(err.Error(), "internal:") {
		t.Fatalf("runaway instantiation must take the internal path: %v", err)
	}
	if res.HasErrors() {
		t.Fatalf("must not surface as a user diagnostic: %v", res.Bag.Items())
	}
	if res.CSource != nil {
		t.Fatal("code generated despite the aborted expansion")
	}
}

func TestCompileIdempotent(t *testing.T) {
	dir := t.TempDir()
	path := writeSource(t, dir, "main.pd", `
enum Option<T> {
    Some(T),
    None,
}
fn wrap<T>(v: T) -> Option<T> {
    return Some(v);
}
fn main() {
    let a = wrap(1);
    let b = wrap("s");
}
`)
	first, err := driver.Compile(path, driver.Options{EmitMeta: true})
	if err != nil {
		t.Fatalf("first compile: %v", err)
	}
	second, err := driver.Compile(path, driver.Options{EmitMeta: true})
	if err != nil {
		t.Fatalf("second compile: %v", err)
	}
	if !bytes.Equal(first.CSource, second.CSource) {
		t.Fatal("C output differs between identical runs")
	}
	if !bytes.Equal(first.Meta, second.Meta) {
		t.Fatal("metadata differs between identical runs")
	}
}

func TestCompileFollowsImports(t *testing.T) {
	dir := t.TempDir()
	writeSource(t, dir, "util.pd", `
pub fn twice(n: i64) -> i64 {
    return n * 2;
}
`)
	path := writeSource(t, dir, "main.pd", `
import util;

fn main() {
    print_int(twice(21));
}
`)
	res, err := driver.Compile(path, driver.Options{})
	if err != nil {
		t.Fatalf("compile: %v", err)
	}
	if res.HasErrors() {
		t.Fatalf("unexpected diagnostics: %v", res.Bag.Items())
	}
	if !strings.Contains(string(res.CSource), "int64_t twice(int64_t n)") {
		t.Fatalf("imported function missing:\n%s", res.CSource)
	}
}

func TestCompileMissingImport(t *testing.T) {
	dir := t.TempDir()
	path := writeSource(t, dir, "main.pd", `
import nosuch;

fn main() {}
`)
	_, err := driver.Compile(path, driver.Options{})
	if err == nil {
		t.Fatal("want import resolution error")
	}
	if !strings.Contains(err.Error(), "nosuch") {
		t.Fatalf("error does not name the import: %v", err)
	}
}

func TestEmitMetaArtifact(t *testing.T) {
	dir := t.TempDir()
	path := writeSource(t, dir, "main.pd", `
struct Point {
    x: i64,
    y: i64,
}
fn origin() -> Point {
    return Point { x: 0, y: 0 };
}
fn main() {
    let p = origin();
    print_int(p.x);
}
`)
	res, err := driver.Compile(path, driver.Options{EmitMeta: true})
	if err != nil {
		t.Fatalf("compile: %v", err)
	}
	var meta driver.Meta
	if err := msgpack.Unmarshal(res.Meta, &meta); err != nil {
		t.Fatalf("decode meta: %v", err)
	}
	if len(meta.Files) != 1 || meta.Files[0].SHA256 == "" {
		t.Fatalf("file hashes missing: %+v", meta.Files)
	}
	names := make([]string, 0, len(meta.Functions))
	for _, fn := range meta.Functions {
		names = append(names, fn.Name)
	}
	if len(names) != 2 || names[0] != "main" || names[1] != "origin" {
		t.Fatalf("functions = %v", names)
	}
	if len(meta.Structs) != 1 || meta.Structs[0].Name != "Point" {
		t.Fatalf("structs = %+v", meta.Structs)
	}
}
