package source

import (
	"testing"
)

func TestSpanCover(t *testing.T) {
	a := Span{File: 1, Start: 10, End: 20}
	b := Span{File: 1, Start: 5, End: 15}
	got := a.Cover(b)
	if got.Start != 5 || got.End != 20 {
		t.Fatalf("cover mismatch: %v", got)
	}

	other := Span{File: 2, Start: 0, End: 100}
	if got := a.Cover(other); got != a {
		t.Fatalf("cross-file cover must be a no-op, got %v", got)
	}
}

func TestInternerStableIDs(t *testing.T) {
	in := NewInterner()
	a := in.Intern("main")
	b := in.Intern("print")
	if a == b {
		t.Fatalf("distinct strings share an ID")
	}
	if in.Intern("main") != a {
		t.Fatalf("re-interning changed the ID")
	}
	if got := in.MustLookup(a); got != "main" {
		t.Fatalf("lookup = %q, want %q", got, "main")
	}
	if _, ok := in.Lookup(StringID(9999)); ok {
		t.Fatalf("lookup of unknown ID succeeded")
	}
	if in.Intern("") != NoStringID {
		t.Fatalf("empty string must map to NoStringID")
	}
}

func TestFileSetResolve(t *testing.T) {
	fs := NewFileSet()
	id := fs.AddVirtual("main.pd", []byte("fn main() {\n    print(\"hi\");\n}\n"))

	f := fs.Get(id)
	if f.Flags&FileVirtual == 0 {
		t.Fatalf("expected virtual flag")
	}
	if got := f.GetLine(2); got != "    print(\"hi\");" {
		t.Fatalf("GetLine(2) = %q", got)
	}

	// Offset of "print" on line 2.
	start, _ := fs.Resolve(Span{File: id, Start: 16, End: 21})
	if start.Line != 2 || start.Col != 5 {
		t.Fatalf("resolve = %+v, want line 2 col 5", start)
	}
}

func TestFileSetNormalization(t *testing.T) {
	fs := NewFileSet()
	content := append([]byte{0xEF, 0xBB, 0xBF}, []byte("a\r\nb\n")...)
	id := fs.Add("win.pd", norm(content), 0)
	f := fs.Get(id)
	if string(f.Content) != "a\nb\n" {
		t.Fatalf("normalized content = %q", f.Content)
	}
}

func norm(b []byte) []byte {
	b, _ = removeBOM(b)
	b, _ = normalizeCRLF(b)
	return b
}
