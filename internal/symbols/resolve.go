package symbols

import (
	"palladium/internal/ast"
	"palladium/internal/diag"
)

// Options controls a resolve pass over a set of parsed files.
type Options struct {
	Table    *Table
	Hints    Hints
	Reporter diag.Reporter
}

// Result carries every use-site and declaration-site mapping the later
// passes need. All keys are arena ids, so the maps stay valid for the
// whole compilation.
type Result struct {
	Table  *Table
	Module ScopeID

	// ItemSyms maps each top-level item to its symbol.
	ItemSyms map[ast.ItemID]SymbolID
	// VariantSyms lists an enum item's variant symbols in declaration
	// order.
	VariantSyms map[ast.ItemID][]SymbolID
	// ExprSyms maps ident uses and enum constructor expressions to the
	// symbol they name. For constructors the value is the variant symbol.
	ExprSyms map[ast.ExprID]SymbolID
	// TypeSyms maps the head of each path type annotation to the type
	// symbol it names.
	TypeSyms map[ast.TypeID]SymbolID
	// PatSyms maps enum patterns, including bare names promoted to unit
	// variants, to the variant symbol they match.
	PatSyms map[ast.PatID]SymbolID
	// PatBinds maps binding patterns to the fresh symbol they declare.
	PatBinds map[ast.PatID]SymbolID
	// LetSyms, ForSyms and ParamSyms map binding statements to their
	// declared symbols.
	LetSyms   map[ast.StmtID]SymbolID
	ForSyms   map[ast.StmtID]SymbolID
	ParamSyms map[ast.ItemID][]SymbolID
	// TypeParamSyms maps a generic item to its type parameter symbols in
	// declaration order.
	TypeParamSyms map[ast.ItemID][]SymbolID
}

// Symbol is a Table shortcut for consumers holding only a Result.
func (r *Result) Symbol(id SymbolID) *Symbol {
	return r.Table.Symbols.Get(id)
}

// Resolve runs both passes over the given files sharing one module
// scope: top-level collection first, then body resolution. Files must
// all come from the same builder.
func Resolve(builder *ast.Builder, files []ast.FileID, opts Options) *Result {
	table := opts.Table
	if table == nil {
		table = NewTable(opts.Hints, builder.Strings)
	}
	reporter := opts.Reporter
	if reporter == nil {
		reporter = diag.NopReporter{}
	}

	result := &Result{
		Table:         table,
		Module:        table.ModuleScope(),
		ItemSyms:      make(map[ast.ItemID]SymbolID),
		VariantSyms:   make(map[ast.ItemID][]SymbolID),
		ExprSyms:      make(map[ast.ExprID]SymbolID),
		TypeSyms:      make(map[ast.TypeID]SymbolID),
		PatSyms:       make(map[ast.PatID]SymbolID),
		PatBinds:      make(map[ast.PatID]SymbolID),
		LetSyms:       make(map[ast.StmtID]SymbolID),
		ForSyms:       make(map[ast.StmtID]SymbolID),
		ParamSyms:     make(map[ast.ItemID][]SymbolID),
		TypeParamSyms: make(map[ast.ItemID][]SymbolID),
	}

	resolver := NewResolver(table, result.Module, reporter)
	fr := &fileResolver{
		builder:  builder,
		resolver: resolver,
		reporter: reporter,
		result:   result,
	}

	for _, fileID := range files {
		file := builder.Files.Get(fileID)
		if file == nil {
			continue
		}
		fr.astFile = fileID
		fr.sourceFile = file.Span.File
		for _, itemID := range file.Items {
			fr.collectItem(itemID)
		}
	}
	for _, fileID := range files {
		file := builder.Files.Get(fileID)
		if file == nil {
			continue
		}
		fr.astFile = fileID
		fr.sourceFile = file.Span.File
		for _, itemID := range file.Items {
			fr.resolveItemBody(itemID)
		}
	}
	return result
}
