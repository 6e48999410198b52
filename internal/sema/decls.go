package sema

import (
	"palladium/internal/ast"
	"palladium/internal/diag"
	"palladium/internal/source"
	"palladium/internal/symbols"
	"palladium/internal/types"
)

// collectDecls runs the signature pass. Declaration shells go in first
// so field and parameter types may reference any declaration regardless
// of source order.
func (c *checker) collectDecls(files []ast.FileID) {
	for _, fileID := range files {
		file := c.builder.Files.Get(fileID)
		if file == nil {
			continue
		}
		for _, itemID := range file.Items {
			c.declareShell(itemID)
		}
	}
	c.declareBuiltins()
	for _, fileID := range files {
		file := c.builder.Files.Get(fileID)
		if file == nil {
			continue
		}
		for _, itemID := range file.Items {
			c.fillDecl(itemID)
		}
	}
}

func (c *checker) declareShell(itemID ast.ItemID) {
	sym, ok := c.syms.ItemSyms[itemID]
	if !ok {
		return
	}
	items := c.builder.Items
	switch items.Get(itemID).Kind {
	case ast.ItemStruct:
		st, _ := items.Struct(itemID)
		info := &StructInfo{
			Sym:  sym,
			Item: itemID,
			Name: st.Name,
			Decl: types.DeclID(sym),
		}
		for _, tp := range st.TypeParams {
			info.TypeParams = append(info.TypeParams, tp.Name)
		}
		c.res.Structs[sym] = info
		c.res.StructOfDecl[info.Decl] = info
		c.in.SetDeclName(info.Decl, c.name(st.Name))

	case ast.ItemEnum:
		en, _ := items.Enum(itemID)
		info := &EnumInfo{
			Sym:  sym,
			Item: itemID,
			Name: en.Name,
			Decl: types.DeclID(sym),
		}
		for _, tp := range en.TypeParams {
			info.TypeParams = append(info.TypeParams, tp.Name)
		}
		c.res.Enums[sym] = info
		c.res.EnumOfDecl[info.Decl] = info
		c.in.SetDeclName(info.Decl, c.name(en.Name))
	}
}

func (c *checker) fillDecl(itemID ast.ItemID) {
	sym, ok := c.syms.ItemSyms[itemID]
	if !ok {
		return
	}
	items := c.builder.Items
	switch items.Get(itemID).Kind {
	case ast.ItemFn:
		fn, _ := items.Fn(itemID)
		info := &FnInfo{
			Sym:  sym,
			Item: itemID,
			Name: fn.Name,
		}
		for _, tp := range fn.TypeParams {
			info.TypeParams = append(info.TypeParams, tp.Name)
		}
		for _, param := range fn.Params {
			info.Params = append(info.Params, c.typeFromSyn(param.Type))
		}
		if fn.Result.IsValid() {
			info.Result = c.typeFromSyn(fn.Result)
		} else {
			info.Result = c.in.Builtins().Unit
		}
		c.res.Fns[sym] = info

	case ast.ItemStruct:
		st, _ := items.Struct(itemID)
		info := c.res.Structs[sym]
		for _, field := range st.Fields {
			info.Fields = append(info.Fields, FieldInfo{
				Name: field.Name,
				Span: field.Span,
				Type: c.typeFromSyn(field.Type),
			})
		}

	case ast.ItemEnum:
		en, _ := items.Enum(itemID)
		info := c.res.Enums[sym]
		for _, v := range en.Variants {
			variant := VariantInfo{
				Name: v.Name,
				Span: v.Span,
				Form: v.Form,
			}
			for _, elem := range v.Elems {
				variant.Elems = append(variant.Elems, c.typeFromSyn(elem))
			}
			for _, field := range v.Fields {
				variant.Fields = append(variant.Fields, FieldInfo{
					Name: field.Name,
					Span: field.Span,
					Type: c.typeFromSyn(field.Type),
				})
			}
			info.Variants = append(info.Variants, variant)
		}
	}
}

// declareBuiltins registers the runtime function signatures under the
// prelude symbols installed by the resolver.
func (c *checker) declareBuiltins() {
	module := c.syms.Table.Scopes.Get(c.syms.Module)
	if module == nil {
		return
	}
	for _, symID := range module.Symbols {
		sym := c.syms.Symbol(symID)
		if sym == nil || sym.Builtin == symbols.BuiltinNone {
			continue
		}
		params, result := c.builtinSignature(sym.Builtin)
		c.res.Fns[symID] = &FnInfo{
			Sym:     symID,
			Name:    sym.Name,
			Params:  params,
			Result:  result,
			Builtin: sym.Builtin,
		}
	}
}

func (c *checker) builtinSignature(b symbols.Builtin) ([]types.TypeID, types.TypeID) {
	bt := c.in.Builtins()
	str, i64, boolean, unit := bt.String, bt.I64, bt.Bool, bt.Unit
	switch b {
	case symbols.BuiltinPrint:
		return []types.TypeID{str}, unit
	case symbols.BuiltinPrintInt:
		return []types.TypeID{i64}, unit
	case symbols.BuiltinStringLen:
		return []types.TypeID{str}, i64
	case symbols.BuiltinStringConcat:
		return []types.TypeID{str, str}, str
	case symbols.BuiltinStringEq:
		return []types.TypeID{str, str}, boolean
	case symbols.BuiltinStringCharAt:
		return []types.TypeID{str, i64}, i64
	case symbols.BuiltinStringSubstring:
		return []types.TypeID{str, i64, i64}, str
	case symbols.BuiltinStringFromChar:
		return []types.TypeID{i64}, str
	case symbols.BuiltinStringToInt:
		return []types.TypeID{str}, i64
	case symbols.BuiltinIntToString:
		return []types.TypeID{i64}, str
	case symbols.BuiltinCharIsDigit, symbols.BuiltinCharIsAlpha, symbols.BuiltinCharIsWhitespace:
		return []types.TypeID{i64}, boolean
	case symbols.BuiltinFileOpen:
		return []types.TypeID{str}, i64
	case symbols.BuiltinFileReadLine, symbols.BuiltinFileReadAll:
		return []types.TypeID{i64}, str
	case symbols.BuiltinFileWrite:
		return []types.TypeID{i64, str}, unit
	case symbols.BuiltinFileClose:
		return []types.TypeID{i64}, unit
	case symbols.BuiltinPanic:
		return []types.TypeID{str}, unit
	}
	return nil, unit
}

// typeFromSyn converts a syntactic annotation into an interned type.
// Resolution failures were already reported, so unknown heads just
// yield NoTypeID.
func (c *checker) typeFromSyn(typeID ast.TypeID) types.TypeID {
	if !typeID.IsValid() {
		return types.NoTypeID
	}
	tys := c.builder.Types
	syn := tys.Get(typeID)
	switch syn.Kind {
	case ast.TypeSynUnit:
		return c.in.Builtins().Unit

	case ast.TypeSynRef:
		ref, _ := tys.Ref(typeID)
		inner := c.typeFromSyn(ref.Inner)
		if !inner.IsValid() {
			return types.NoTypeID
		}
		return c.in.Intern(types.Type{Kind: types.KindRef, Elem: inner, Mutable: ref.Mutable})

	case ast.TypeSynArray:
		arr, _ := tys.Array(typeID)
		elem := c.typeFromSyn(arr.Elem)
		if !elem.IsValid() {
			return types.NoTypeID
		}
		return c.in.Intern(types.Type{Kind: types.KindArray, Elem: elem, Size: arr.Size})

	case ast.TypeSynPath:
		path, _ := tys.Path(typeID)
		symID, ok := c.syms.TypeSyms[typeID]
		if !ok {
			return types.NoTypeID
		}
		sym := c.syms.Symbol(symID)
		switch sym.Kind {
		case symbols.SymbolBuiltinType:
			if len(path.Args) != 0 {
				c.report(diag.Errorf(diag.TypeTypeArityMismatch, syn.Span,
					"'%s' takes no type arguments", c.name(path.Name)))
			}
			return c.primitiveByName(path.Name)
		case symbols.SymbolTypeParam:
			return c.in.MakeParam(sym.Name)
		case symbols.SymbolStruct:
			info := c.res.Structs[symID]
			return c.nominalFromSyn(syn, path, info.TypeParams, types.KindStruct, info.Decl)
		case symbols.SymbolEnum:
			info := c.res.Enums[symID]
			return c.nominalFromSyn(syn, path, info.TypeParams, types.KindEnum, info.Decl)
		}
	}
	return types.NoTypeID
}

func (c *checker) nominalFromSyn(syn *ast.TypeSyn, path *ast.TypePathData, params []source.StringID, kind types.Kind, decl types.DeclID) types.TypeID {
	if len(path.Args) != len(params) {
		c.report(diag.Errorf(diag.TypeTypeArityMismatch, syn.Span,
			"'%s' expects %d type argument(s), got %d", c.name(path.Name), len(params), len(path.Args)))
		return types.NoTypeID
	}
	args := make([]types.TypeID, 0, len(path.Args))
	for _, arg := range path.Args {
		at := c.typeFromSyn(arg)
		if !at.IsValid() {
			return types.NoTypeID
		}
		args = append(args, at)
	}
	return c.in.Intern(types.Type{Kind: kind, Decl: decl, Args: args})
}

func (c *checker) primitiveByName(name source.StringID) types.TypeID {
	bt := c.in.Builtins()
	switch c.name(name) {
	case "i32":
		return bt.I32
	case "i64":
		return bt.I64
	case "u32":
		return bt.U32
	case "u64":
		return bt.U64
	case "bool":
		return bt.Bool
	case "String":
		return bt.String
	}
	return types.NoTypeID
}
