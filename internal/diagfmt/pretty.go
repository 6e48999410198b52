package diagfmt

import (
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/fatih/color"
	"github.com/mattn/go-runewidth"

	"palladium/internal/diag"
	"palladium/internal/source"
)

var (
	errorColor   = color.New(color.FgRed, color.Bold)
	warningColor = color.New(color.FgYellow, color.Bold)
	noteColor    = color.New(color.FgCyan)
	gutterColor  = color.New(color.FgBlue)
)

// Pretty renders diagnostics in a human-readable form, one header line
// per diagnostic followed by the offending source line and a caret
// underline. Call bag.Sort() first for stable file order.
func Pretty(w io.Writer, bag *diag.Bag, fs *source.FileSet, opts PrettyOpts) {
	items := bag.Items()
	if opts.Max > 0 && len(items) > opts.Max {
		items = items[:opts.Max]
	}
	for _, d := range items {
		writeHeader(w, fs, d.Primary, severityLabel(d.Severity, opts.Color), d.Code, d.Message, opts)
		writeSnippet(w, fs, d.Primary, opts)
		if opts.ShowNotes {
			for _, n := range d.Notes {
				label := "note"
				if opts.Color {
					label = noteColor.Sprint(label)
				}
				writeNoteHeader(w, fs, n.Span, label, n.Msg, opts)
				writeSnippet(w, fs, n.Span, opts)
			}
		}
	}
	if rest := bag.Len() - len(items); rest > 0 {
		fmt.Fprintf(w, "... and %d more\n", rest)
	}
}

func severityLabel(sev diag.Severity, colored bool) string {
	s := sev.String()
	if !colored {
		return s
	}
	switch sev {
	case diag.SevError:
		return errorColor.Sprint(s)
	case diag.SevWarning:
		return warningColor.Sprint(s)
	}
	return s
}

func writeHeader(w io.Writer, fs *source.FileSet, span source.Span, label string, code diag.Code, msg string, opts PrettyOpts) {
	start, _ := fs.Resolve(span)
	fmt.Fprintf(w, "%s:%d:%d: %s[%s]: %s\n",
		displayPath(fs, span.File, opts.PathMode), start.Line, start.Col, label, code, msg)
}

func writeNoteHeader(w io.Writer, fs *source.FileSet, span source.Span, label, msg string, opts PrettyOpts) {
	start, _ := fs.Resolve(span)
	fmt.Fprintf(w, "%s:%d:%d: %s: %s\n",
		displayPath(fs, span.File, opts.PathMode), start.Line, start.Col, label, msg)
}

// writeSnippet prints the first line the span touches with a caret
// underline. Multi-line spans underline to the end of the first line.
func writeSnippet(w io.Writer, fs *source.FileSet, span source.Span, opts PrettyOpts) {
	f := fs.Get(span.File)
	start, end := fs.Resolve(span)
	line := f.GetLine(start.Line)
	if line == "" && span.Empty() {
		return
	}

	gutter := fmt.Sprintf("%5d | ", start.Line)
	if opts.Color {
		fmt.Fprintf(w, "%s%s\n", gutterColor.Sprint(gutter), line)
	} else {
		fmt.Fprintf(w, "%s%s\n", gutter, line)
	}

	// Columns are byte offsets; the caret aligns on display width so
	// tabs and wide runes do not skew the underline.
	prefixEnd := int(start.Col) - 1
	if prefixEnd > len(line) {
		prefixEnd = len(line)
	}
	pad := runewidth.StringWidth(expandTabs(line[:prefixEnd]))

	spanEnd := len(line)
	if end.Line == start.Line && int(end.Col)-1 < spanEnd {
		spanEnd = int(end.Col) - 1
	}
	width := runewidth.StringWidth(expandTabs(line[prefixEnd:max(prefixEnd, spanEnd)]))
	if width < 1 {
		width = 1
	}

	marker := "^" + strings.Repeat("~", width-1)
	if opts.Color {
		marker = errorColor.Sprint(marker)
	}
	fmt.Fprintf(w, "%s%s%s\n", strings.Repeat(" ", len(gutter)), strings.Repeat(" ", pad), marker)
}

func expandTabs(s string) string {
	return strings.ReplaceAll(s, "\t", "    ")
}

func displayPath(fs *source.FileSet, id source.FileID, mode PathMode) string {
	f := fs.Get(id)
	if mode == PathModeBasename {
		return filepath.Base(f.Path)
	}
	return f.Path
}
