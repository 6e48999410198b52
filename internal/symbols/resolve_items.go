package symbols

import (
	"palladium/internal/ast"
	"palladium/internal/diag"
	"palladium/internal/source"
)

// fileResolver carries per-file state shared by the collect and body
// passes.
type fileResolver struct {
	builder    *ast.Builder
	resolver   *Resolver
	reporter   diag.Reporter
	result     *Result
	astFile    ast.FileID
	sourceFile source.FileID
	loopDepth  int
}

func (fr *fileResolver) decl(item ast.ItemID) SymbolDecl {
	return SymbolDecl{
		SourceFile: fr.sourceFile,
		ASTFile:    fr.astFile,
		Item:       item,
	}
}

// collectItem registers a top-level declaration into the module scope.
// Bodies and field types are untouched here so forward references work.
func (fr *fileResolver) collectItem(itemID ast.ItemID) {
	items := fr.builder.Items
	switch items.Get(itemID).Kind {
	case ast.ItemFn:
		fn, _ := items.Fn(itemID)
		var flags SymbolFlags
		if fn.Public {
			flags |= SymbolFlagPublic
		}
		id, ok := fr.resolver.Declare(Symbol{
			Name:  fn.Name,
			Kind:  SymbolFunction,
			Span:  fn.NameSpan,
			Flags: flags,
			Decl:  fr.decl(itemID),
		})
		if ok {
			fr.result.ItemSyms[itemID] = id
		}

	case ast.ItemStruct:
		st, _ := items.Struct(itemID)
		var flags SymbolFlags
		if st.Public {
			flags |= SymbolFlagPublic
		}
		id, ok := fr.resolver.Declare(Symbol{
			Name:  st.Name,
			Kind:  SymbolStruct,
			Span:  st.NameSpan,
			Flags: flags,
			Decl:  fr.decl(itemID),
		})
		if ok {
			fr.result.ItemSyms[itemID] = id
		}

	case ast.ItemEnum:
		en, _ := items.Enum(itemID)
		var flags SymbolFlags
		if en.Public {
			flags |= SymbolFlagPublic
		}
		enumSym, ok := fr.resolver.Declare(Symbol{
			Name:  en.Name,
			Kind:  SymbolEnum,
			Span:  en.NameSpan,
			Flags: flags,
			Decl:  fr.decl(itemID),
		})
		if !ok {
			return
		}
		fr.result.ItemSyms[itemID] = enumSym
		variants := make([]SymbolID, 0, len(en.Variants))
		for i, v := range en.Variants {
			vsym, vok := fr.resolver.Declare(Symbol{
				Name:    v.Name,
				Kind:    SymbolVariant,
				Span:    v.Span,
				Flags:   flags,
				Decl:    fr.decl(itemID),
				Enum:    enumSym,
				Variant: i,
			})
			if !vok {
				vsym = NoSymbolID
			}
			variants = append(variants, vsym)
		}
		fr.result.VariantSyms[itemID] = variants

	case ast.ItemImport:
		// Imports are resolved by the driver, which loads the target
		// file into the same compilation before this pass runs.
	}
}
