package ast

import (
	"palladium/internal/source"
)

// File is the AST root of one source file.
type File struct {
	Span  source.Span
	Items []ItemID
}

// Files manages allocation of file roots.
type Files struct {
	Arena *Arena[File]
}

func NewFiles(capHint uint) *Files {
	if capHint == 0 {
		capHint = 2
	}
	return &Files{Arena: NewArena[File](capHint)}
}

func (f *Files) New(span source.Span) FileID {
	return FileID(f.Arena.Allocate(File{Span: span}))
}

func (f *Files) Get(id FileID) *File {
	return f.Arena.Get(uint32(id))
}

// Hints provide optional capacity suggestions for the AST arenas.
type Hints struct {
	Exprs, Stmts, Items uint
}

// Builder owns every AST arena of a compilation session. All nodes live
// as long as the builder; cross-references are ids, never pointers, so
// cyclic declarations cost nothing.
type Builder struct {
	Files   *Files
	Items   *Items
	Stmts   *Stmts
	Exprs   *Exprs
	Pats    *Pats
	Types   *Types
	Strings *source.Interner
}

// NewBuilder constructs a builder. If strings is nil a fresh interner is
// allocated.
func NewBuilder(h Hints, strings *source.Interner) *Builder {
	if strings == nil {
		strings = source.NewInterner()
	}
	return &Builder{
		Files:   NewFiles(0),
		Items:   NewItems(h.Items),
		Stmts:   NewStmts(h.Stmts),
		Exprs:   NewExprs(h.Exprs),
		Pats:    NewPats(0),
		Types:   NewTypes(0),
		Strings: strings,
	}
}

// PushItem appends an item to a file root.
func (b *Builder) PushItem(file FileID, item ItemID) {
	f := b.Files.Get(file)
	f.Items = append(f.Items, item)
}
