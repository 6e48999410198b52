package symbols

import (
	"palladium/internal/ast"
	"palladium/internal/source"
)

// ScopeKind enumerates supported scope categories.
type ScopeKind uint8

const (
	ScopeInvalid  ScopeKind = iota
	ScopeModule             // top-level declarations shared by all files
	ScopeFunction           // function params and body
	ScopeBlock              // braces, loop bodies
	ScopeArm                // match arm pattern bindings
)

func (k ScopeKind) String() string {
	switch k {
	case ScopeModule:
		return "module"
	case ScopeFunction:
		return "function"
	case ScopeBlock:
		return "block"
	case ScopeArm:
		return "arm"
	default:
		return "invalid"
	}
}

// ScopeOwner references the AST construct that opened the scope.
type ScopeOwner struct {
	SourceFile source.FileID
	Item       ast.ItemID
	Stmt       ast.StmtID
}

// Scope models a lexical scope with a parent-child hierarchy. NameIndex
// may hold several symbols per name: enum variants from distinct enums
// can share a spelling, and later bindings shadow earlier ones.
type Scope struct {
	Kind      ScopeKind
	Parent    ScopeID
	Owner     ScopeOwner
	Span      source.Span
	NameIndex map[source.StringID][]SymbolID
	Symbols   []SymbolID
	Children  []ScopeID
}
