package symbols

import (
	"palladium/internal/ast"
	"palladium/internal/source"
)

// SymbolKind classifies the semantic meaning of a symbol.
type SymbolKind uint8

const (
	SymbolInvalid SymbolKind = iota
	SymbolFunction
	SymbolStruct
	SymbolEnum
	SymbolVariant
	SymbolLet
	SymbolParam
	SymbolTypeParam
	SymbolBuiltinType
)

func (k SymbolKind) String() string {
	switch k {
	case SymbolFunction:
		return "function"
	case SymbolStruct:
		return "struct"
	case SymbolEnum:
		return "enum"
	case SymbolVariant:
		return "variant"
	case SymbolLet:
		return "let"
	case SymbolParam:
		return "param"
	case SymbolTypeParam:
		return "type param"
	case SymbolBuiltinType:
		return "builtin type"
	default:
		return "invalid"
	}
}

// IsType reports whether the symbol names a type.
func (k SymbolKind) IsType() bool {
	switch k {
	case SymbolStruct, SymbolEnum, SymbolTypeParam, SymbolBuiltinType:
		return true
	default:
		return false
	}
}

// IsValue reports whether the symbol can appear in expression position.
func (k SymbolKind) IsValue() bool {
	switch k {
	case SymbolFunction, SymbolVariant, SymbolLet, SymbolParam:
		return true
	default:
		return false
	}
}

// SymbolFlags encode misc attributes for quick checks.
type SymbolFlags uint16

const (
	SymbolFlagPublic SymbolFlags = 1 << iota
	SymbolFlagMutable
	SymbolFlagBuiltin
)

// SymbolDecl records the AST origin for diagnostics and later passes.
type SymbolDecl struct {
	SourceFile source.FileID
	ASTFile    ast.FileID
	Item       ast.ItemID
	Stmt       ast.StmtID
	Param      int // parameter index within Item when Kind == SymbolParam
}

// Symbol describes a named entity available in a scope.
type Symbol struct {
	Name  source.StringID
	Kind  SymbolKind
	Scope ScopeID
	Span  source.Span
	Flags SymbolFlags
	Decl  SymbolDecl

	// Enum and Variant link a variant symbol to its owning enum symbol
	// and position in the declaration order.
	Enum    SymbolID
	Variant int

	// Builtin is set for prelude functions and lowered directly by the
	// backend.
	Builtin Builtin
}
