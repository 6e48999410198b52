package sema

import (
	"palladium/internal/ast"
	"palladium/internal/diag"
	"palladium/internal/source"
	"palladium/internal/symbols"
	"palladium/internal/types"
)

// Options configure a semantic pass over a compilation.
type Options struct {
	Reporter diag.Reporter
	Symbols  *symbols.Result
	Types    *types.Interner
}

// FnInfo is the checked signature of a function, user-defined or
// builtin. Generic parameter positions hold KindParam placeholders.
type FnInfo struct {
	Sym        symbols.SymbolID
	Item       ast.ItemID
	Name       source.StringID
	TypeParams []source.StringID
	Params     []types.TypeID
	Result     types.TypeID
	Builtin    symbols.Builtin
}

func (f *FnInfo) IsGeneric() bool { return len(f.TypeParams) > 0 }

// FieldInfo is one named field of a struct or a struct-form variant.
type FieldInfo struct {
	Name source.StringID
	Span source.Span
	Type types.TypeID
}

// StructInfo is the checked shape of a struct declaration.
type StructInfo struct {
	Sym        symbols.SymbolID
	Item       ast.ItemID
	Name       source.StringID
	Decl       types.DeclID
	TypeParams []source.StringID
	Fields     []FieldInfo
}

func (s *StructInfo) Field(name source.StringID) (FieldInfo, bool) {
	for _, f := range s.Fields {
		if f.Name == name {
			return f, true
		}
	}
	return FieldInfo{}, false
}

// VariantInfo is the checked payload of one enum constructor.
type VariantInfo struct {
	Name   source.StringID
	Span   source.Span
	Form   ast.CtorForm
	Elems  []types.TypeID
	Fields []FieldInfo
}

// EnumInfo is the checked shape of an enum declaration.
type EnumInfo struct {
	Sym        symbols.SymbolID
	Item       ast.ItemID
	Name       source.StringID
	Decl       types.DeclID
	TypeParams []source.StringID
	Variants   []VariantInfo
}

// Instantiation records one generic call site: the callee symbol and
// the concrete type argument per declared type parameter.
type Instantiation struct {
	Sym  symbols.SymbolID
	Args []types.TypeID
}

// Result stores semantic artefacts produced by the checker.
type Result struct {
	Types   *types.Interner
	Symbols *symbols.Result

	Fns     map[symbols.SymbolID]*FnInfo
	Structs map[symbols.SymbolID]*StructInfo
	Enums   map[symbols.SymbolID]*EnumInfo
	// StructOfDecl and EnumOfDecl invert the Decl numbering for type
	// driven lookups.
	StructOfDecl map[types.DeclID]*StructInfo
	EnumOfDecl   map[types.DeclID]*EnumInfo

	ExprTypes    map[ast.ExprID]types.TypeID
	BindingTypes map[symbols.SymbolID]types.TypeID
	// CallInsts maps generic call expressions to their resolved
	// instantiation. Non-generic calls are absent.
	CallInsts map[ast.ExprID]Instantiation
}

// Check runs the signature pass, the bidirectional body pass, the
// ownership pass and the match exhaustiveness pass over all files.
func Check(builder *ast.Builder, files []ast.FileID, opts Options) *Result {
	in := opts.Types
	if in == nil {
		in = types.NewInterner()
	}
	reporter := opts.Reporter
	if reporter == nil {
		reporter = diag.NopReporter{}
	}
	res := &Result{
		Types:        in,
		Symbols:      opts.Symbols,
		Fns:          make(map[symbols.SymbolID]*FnInfo),
		Structs:      make(map[symbols.SymbolID]*StructInfo),
		Enums:        make(map[symbols.SymbolID]*EnumInfo),
		StructOfDecl: make(map[types.DeclID]*StructInfo),
		EnumOfDecl:   make(map[types.DeclID]*EnumInfo),
		ExprTypes:    make(map[ast.ExprID]types.TypeID),
		BindingTypes: make(map[symbols.SymbolID]types.TypeID),
		CallInsts:    make(map[ast.ExprID]Instantiation),
	}

	c := &checker{
		builder:  builder,
		reporter: reporter,
		syms:     opts.Symbols,
		in:       in,
		res:      res,
	}
	c.collectDecls(files)
	for _, fileID := range files {
		file := builder.Files.Get(fileID)
		if file == nil {
			continue
		}
		for _, itemID := range file.Items {
			if fn, ok := builder.Items.Fn(itemID); ok {
				c.checkFnBody(itemID, fn)
			}
		}
	}
	for _, fileID := range files {
		file := builder.Files.Get(fileID)
		if file == nil {
			continue
		}
		for _, itemID := range file.Items {
			if fn, ok := builder.Items.Fn(itemID); ok {
				c.checkOwnership(itemID, fn)
				c.checkExhaustiveness(fn)
			}
		}
	}
	return res
}

type checker struct {
	builder  *ast.Builder
	reporter diag.Reporter
	syms     *symbols.Result
	in       *types.Interner
	res      *Result
}

func (c *checker) report(d diag.Diagnostic) {
	c.reporter.Report(d)
}

func (c *checker) name(id source.StringID) string {
	return c.builder.Strings.MustLookup(id)
}

func (c *checker) format(id types.TypeID) string {
	return c.in.Format(c.builder.Strings, id)
}
