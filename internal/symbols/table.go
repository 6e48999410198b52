package symbols

import (
	"fmt"

	"fortio.org/safecast"

	"palladium/internal/source"
)

// Hints provide optional capacity suggestions for the symbol table arenas.
type Hints struct{ Scopes, Symbols uint }

// Table aggregates symbol-related arenas and shared resources. A single
// table serves a whole compilation; every file's top-level declarations
// land in one shared module scope.
type Table struct {
	Scopes  *Scopes
	Symbols *Symbols
	Strings *source.Interner

	module ScopeID
}

// NewTable builds a fresh table with optional capacity hints.
// If strings is nil, a fresh interner is allocated.
func NewTable(h Hints, strings *source.Interner) *Table {
	scopeCap, err := safecast.Conv[uint32](h.Scopes)
	if err != nil {
		panic(fmt.Errorf("scope capacity overflow: %w", err))
	}
	symCap, err := safecast.Conv[uint32](h.Symbols)
	if err != nil {
		panic(fmt.Errorf("symbol capacity overflow: %w", err))
	}
	if strings == nil {
		strings = source.NewInterner()
	}
	return &Table{
		Scopes:  NewScopes(scopeCap),
		Symbols: NewSymbols(symCap),
		Strings: strings,
	}
}

// ModuleScope returns the shared top-level scope, creating it on first use.
func (t *Table) ModuleScope() ScopeID {
	if t.module.IsValid() {
		return t.module
	}
	t.module = t.Scopes.New(ScopeModule, NoScopeID, ScopeOwner{}, source.Span{})
	return t.module
}

// SymbolName renders a symbol's name for diagnostics.
func (t *Table) SymbolName(id SymbolID) string {
	sym := t.Symbols.Get(id)
	if sym == nil {
		return "<invalid>"
	}
	return t.Strings.MustLookup(sym.Name)
}
