// Package driver runs the compilation pipeline end to end: load and
// parse sources, resolve names, type- and ownership-check, check match
// exhaustiveness, monomorphize and emit C. User-facing problems flow
// through the diagnostics bag; Go errors are reserved for IO failures
// and internal invariant violations.
package driver

import (
	"palladium/internal/ast"
	"palladium/internal/diag"
	"palladium/internal/source"
	"palladium/internal/types"
)

const defaultMaxDiagnostics = 100

// Session owns the shared state every stage reads and writes. One
// session compiles one program; sessions are not reused.
type Session struct {
	FS       *source.FileSet
	Builder  *ast.Builder
	Bag      *diag.Bag
	Reporter diag.Reporter
	Types    *types.Interner

	// Files holds the parsed roots in load order, entry file first.
	Files []ast.FileID

	loaded map[string]bool
}

func NewSession(maxDiagnostics int) *Session {
	if maxDiagnostics <= 0 {
		maxDiagnostics = defaultMaxDiagnostics
	}
	bag := diag.NewBag(maxDiagnostics)
	return &Session{
		FS:       source.NewFileSet(),
		Builder:  ast.NewBuilder(ast.Hints{}, nil),
		Bag:      bag,
		Reporter: &diag.BagReporter{Bag: bag},
		Types:    types.NewInterner(),
		loaded:   make(map[string]bool),
	}
}
