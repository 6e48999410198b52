package diagfmt_test

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"

	"palladium/internal/diag"
	"palladium/internal/diagfmt"
	"palladium/internal/source"
)

func sampleBag(t *testing.T) (*diag.Bag, *source.FileSet) {
	t.Helper()
	fs := source.NewFileSet()
	id := fs.AddVirtual("test.pd", []byte("fn main() {\n    let x: bool = 5;\n}\n"))
	bag := diag.NewBag(16)
	bag.Add(diag.Diagnostic{
		Severity: diag.SevError,
		Code:     diag.TypeMismatch,
		Message:  "expected bool, found i64",
		Primary:  source.Span{File: id, Start: 30, End: 31},
	})
	return bag, fs
}

func TestPrettyHeaderAndCaret(t *testing.T) {
	bag, fs := sampleBag(t)
	var buf bytes.Buffer
	diagfmt.Pretty(&buf, bag, fs, diagfmt.PrettyOpts{ShowNotes: true})
	out := buf.String()

	if !strings.Contains(out, "test.pd:2:19: ERROR[PD4001]: expected bool, found i64") {
		t.Fatalf("header missing:\n%s", out)
	}
	if !strings.Contains(out, "    let x: bool = 5;") {
		t.Fatalf("source line missing:\n%s", out)
	}
	if !strings.Contains(out, "^") {
		t.Fatalf("caret missing:\n%s", out)
	}
}

func TestPrettyCaretAlignment(t *testing.T) {
	bag, fs := sampleBag(t)
	var buf bytes.Buffer
	diagfmt.Pretty(&buf, bag, fs, diagfmt.PrettyOpts{})

	lines := strings.Split(buf.String(), "\n")
	var srcLine, caretLine string
	for i, l := range lines {
		if strings.Contains(l, "let x") && i+1 < len(lines) {
			srcLine = l
			caretLine = lines[i+1]
		}
	}
	if srcLine == "" || caretLine == "" {
		t.Fatalf("snippet not rendered:\n%s", buf.String())
	}
	if strings.Index(caretLine, "^") != strings.Index(srcLine, "5") {
		t.Fatalf("caret misaligned:\nsrc:   %q\ncaret: %q", srcLine, caretLine)
	}
}

func TestPrettyNotes(t *testing.T) {
	fs := source.NewFileSet()
	id := fs.AddVirtual("test.pd", []byte("let a = 1;\nlet a = 2;\n"))
	bag := diag.NewBag(16)
	bag.Add(diag.Diagnostic{
		Severity: diag.SevError,
		Code:     diag.TypeMismatch,
		Message:  "duplicate binding",
		Primary:  source.Span{File: id, Start: 15, End: 16},
	}.WithNote(source.Span{File: id, Start: 4, End: 5}, "first declared here"))

	var buf bytes.Buffer
	diagfmt.Pretty(&buf, bag, fs, diagfmt.PrettyOpts{ShowNotes: true})
	if !strings.Contains(buf.String(), "note: first declared here") {
		t.Fatalf("note missing:\n%s", buf.String())
	}
}

func TestPrettyMaxTruncates(t *testing.T) {
	fs := source.NewFileSet()
	id := fs.AddVirtual("test.pd", []byte("let a = 1;\n"))
	bag := diag.NewBag(16)
	for i := 0; i < 5; i++ {
		bag.Add(diag.Diagnostic{
			Severity: diag.SevWarning,
			Code:     diag.MatchUnreachableArm,
			Message:  "unreachable arm",
			Primary:  source.Span{File: id, Start: 0, End: 3},
		})
	}
	var buf bytes.Buffer
	diagfmt.Pretty(&buf, bag, fs, diagfmt.PrettyOpts{Max: 2})
	out := buf.String()
	if got := strings.Count(out, "WARNING"); got != 2 {
		t.Fatalf("printed %d diagnostics, want 2:\n%s", got, out)
	}
	if !strings.Contains(out, "... and 3 more") {
		t.Fatalf("truncation notice missing:\n%s", out)
	}
}

func TestJSONRoundTrip(t *testing.T) {
	bag, fs := sampleBag(t)
	var buf bytes.Buffer
	if err := diagfmt.JSON(&buf, bag, fs, diagfmt.JSONOpts{IncludeNotes: true}); err != nil {
		t.Fatalf("JSON: %v", err)
	}
	var out diagfmt.DiagnosticsOutput
	if err := json.Unmarshal(buf.Bytes(), &out); err != nil {
		t.Fatalf("invalid JSON: %v", err)
	}
	if out.Count != 1 || len(out.Diagnostics) != 1 {
		t.Fatalf("count = %d, diagnostics = %d", out.Count, len(out.Diagnostics))
	}
	d := out.Diagnostics[0]
	if d.Code != "PD4001" || d.Severity != "ERROR" {
		t.Fatalf("unexpected code/severity: %+v", d)
	}
	if d.Location.File != "test.pd" || d.Location.StartLine != 2 {
		t.Fatalf("unexpected location: %+v", d.Location)
	}
}
