package symbols

import (
	"palladium/internal/ast"
	"palladium/internal/diag"
	"palladium/internal/source"
)

func (fr *fileResolver) name(id source.StringID) string {
	return fr.builder.Strings.MustLookup(id)
}

// resolveItemBody resolves everything collectItem skipped: signatures,
// field types and function bodies.
func (fr *fileResolver) resolveItemBody(itemID ast.ItemID) {
	items := fr.builder.Items
	switch items.Get(itemID).Kind {
	case ast.ItemFn:
		fn, _ := items.Fn(itemID)
		scope := fr.resolver.Enter(ScopeFunction, ScopeOwner{
			SourceFile: fr.sourceFile,
			Item:       itemID,
		}, items.Get(itemID).Span)
		fr.declareTypeParams(itemID, fn.TypeParams)
		params := make([]SymbolID, 0, len(fn.Params))
		for i, param := range fn.Params {
			fr.resolveType(param.Type)
			var flags SymbolFlags
			if param.Mutable {
				flags |= SymbolFlagMutable
			}
			decl := fr.decl(itemID)
			decl.Param = i
			id, ok := fr.resolver.Declare(Symbol{
				Name:  param.Name,
				Kind:  SymbolParam,
				Span:  param.Span,
				Flags: flags,
				Decl:  decl,
			})
			if !ok {
				id = NoSymbolID
			}
			params = append(params, id)
		}
		fr.result.ParamSyms[itemID] = params
		if fn.Result.IsValid() {
			fr.resolveType(fn.Result)
		}
		fr.resolveStmts(fn.Body)
		fr.resolver.Leave(scope)

	case ast.ItemStruct:
		st, _ := items.Struct(itemID)
		scope := fr.resolver.Enter(ScopeBlock, ScopeOwner{
			SourceFile: fr.sourceFile,
			Item:       itemID,
		}, items.Get(itemID).Span)
		fr.declareTypeParams(itemID, st.TypeParams)
		for _, field := range st.Fields {
			fr.resolveType(field.Type)
		}
		fr.resolver.Leave(scope)

	case ast.ItemEnum:
		en, _ := items.Enum(itemID)
		scope := fr.resolver.Enter(ScopeBlock, ScopeOwner{
			SourceFile: fr.sourceFile,
			Item:       itemID,
		}, items.Get(itemID).Span)
		fr.declareTypeParams(itemID, en.TypeParams)
		for _, v := range en.Variants {
			for _, elem := range v.Elems {
				fr.resolveType(elem)
			}
			for _, field := range v.Fields {
				fr.resolveType(field.Type)
			}
		}
		fr.resolver.Leave(scope)
	}
}

func (fr *fileResolver) declareTypeParams(itemID ast.ItemID, tps []ast.TypeParam) {
	if len(tps) == 0 {
		return
	}
	syms := make([]SymbolID, 0, len(tps))
	for _, tp := range tps {
		id, ok := fr.resolver.Declare(Symbol{
			Name: tp.Name,
			Kind: SymbolTypeParam,
			Span: tp.Span,
			Decl: fr.decl(itemID),
		})
		if !ok {
			id = NoSymbolID
		}
		syms = append(syms, id)
	}
	fr.result.TypeParamSyms[itemID] = syms
}

// checkPrivacy rejects cross-file references to non-pub declarations.
func (fr *fileResolver) checkPrivacy(id SymbolID, span source.Span) {
	sym := fr.result.Symbol(id)
	if sym == nil || sym.Flags&(SymbolFlagBuiltin|SymbolFlagPublic) != 0 {
		return
	}
	scope := fr.result.Table.Scopes.Get(sym.Scope)
	if scope == nil || scope.Kind != ScopeModule {
		return
	}
	if sym.Decl.SourceFile != fr.sourceFile {
		fr.reporter.Report(diag.Errorf(diag.ResPrivateSymbol, span,
			"'%s' is private to its defining file", fr.name(sym.Name)).
			WithNote(sym.Span, "declared here without 'pub'"))
	}
}

func (fr *fileResolver) resolveType(typeID ast.TypeID) {
	if !typeID.IsValid() {
		return
	}
	types := fr.builder.Types
	syn := types.Get(typeID)
	switch syn.Kind {
	case ast.TypeSynPath:
		path, _ := types.Path(typeID)
		id, ok := fr.resolver.Lookup(path.Name, SymbolKind.IsType)
		if !ok {
			if _, valueOnly := fr.resolver.Lookup(path.Name, SymbolKind.IsValue); valueOnly {
				fr.reporter.Report(diag.Errorf(diag.ResNotAType, syn.Span,
					"'%s' is not a type", fr.name(path.Name)))
			} else {
				fr.reporter.Report(diag.Errorf(diag.ResUnresolvedSymbol, syn.Span,
					"unknown type '%s'", fr.name(path.Name)))
			}
			return
		}
		fr.checkPrivacy(id, syn.Span)
		fr.result.TypeSyms[typeID] = id
		for _, arg := range path.Args {
			fr.resolveType(arg)
		}
	case ast.TypeSynArray:
		arr, _ := types.Array(typeID)
		fr.resolveType(arr.Elem)
	case ast.TypeSynRef:
		ref, _ := types.Ref(typeID)
		fr.resolveType(ref.Inner)
	case ast.TypeSynUnit:
	}
}

func (fr *fileResolver) resolveStmts(stmts []ast.StmtID) {
	for _, id := range stmts {
		fr.resolveStmt(id)
	}
}

// block resolves statements inside a fresh child scope.
func (fr *fileResolver) block(stmts []ast.StmtID, span source.Span) {
	scope := fr.resolver.Enter(ScopeBlock, ScopeOwner{SourceFile: fr.sourceFile}, span)
	fr.resolveStmts(stmts)
	fr.resolver.Leave(scope)
}

func (fr *fileResolver) resolveStmt(stmtID ast.StmtID) {
	stmts := fr.builder.Stmts
	stmt := stmts.Get(stmtID)
	switch stmt.Kind {
	case ast.StmtExpr:
		data, _ := stmts.Expr(stmtID)
		fr.resolveExpr(data.Expr)

	case ast.StmtLet:
		data, _ := stmts.Let(stmtID)
		fr.resolveType(data.Type)
		// The initializer sees the outer binding, so `let x = x;`
		// shadows rather than self-references.
		fr.resolveExpr(data.Value)
		var flags SymbolFlags
		if data.Mutable {
			flags |= SymbolFlagMutable
		}
		decl := SymbolDecl{SourceFile: fr.sourceFile, ASTFile: fr.astFile, Stmt: stmtID}
		id, ok := fr.resolver.Declare(Symbol{
			Name:  data.Name,
			Kind:  SymbolLet,
			Span:  data.NameSpan,
			Flags: flags,
			Decl:  decl,
		})
		if ok {
			fr.result.LetSyms[stmtID] = id
		}

	case ast.StmtAssign:
		data, _ := stmts.Assign(stmtID)
		fr.resolveExpr(data.Target)
		fr.resolveExpr(data.Value)

	case ast.StmtReturn:
		data, _ := stmts.Return(stmtID)
		if data.Value.IsValid() {
			fr.resolveExpr(data.Value)
		}

	case ast.StmtIf:
		data, _ := stmts.If(stmtID)
		fr.resolveExpr(data.Cond)
		fr.block(data.Then, stmt.Span)
		if data.HasElse {
			fr.block(data.Else, stmt.Span)
		}

	case ast.StmtWhile:
		data, _ := stmts.While(stmtID)
		fr.resolveExpr(data.Cond)
		fr.loopDepth++
		fr.block(data.Body, stmt.Span)
		fr.loopDepth--

	case ast.StmtFor:
		data, _ := stmts.For(stmtID)
		fr.resolveExpr(data.Iter)
		scope := fr.resolver.Enter(ScopeBlock, ScopeOwner{
			SourceFile: fr.sourceFile,
			Stmt:       stmtID,
		}, stmt.Span)
		decl := SymbolDecl{SourceFile: fr.sourceFile, ASTFile: fr.astFile, Stmt: stmtID}
		id, ok := fr.resolver.Declare(Symbol{
			Name: data.Var,
			Kind: SymbolLet,
			Span: data.VarSpan,
			Decl: decl,
		})
		if ok {
			fr.result.ForSyms[stmtID] = id
		}
		fr.loopDepth++
		fr.resolveStmts(data.Body)
		fr.loopDepth--
		fr.resolver.Leave(scope)

	case ast.StmtMatch:
		data, _ := stmts.Match(stmtID)
		fr.resolveExpr(data.Scrutinee)
		for _, arm := range data.Arms {
			scope := fr.resolver.Enter(ScopeArm, ScopeOwner{
				SourceFile: fr.sourceFile,
				Stmt:       stmtID,
			}, arm.Span)
			fr.resolvePattern(arm.Pattern)
			fr.resolveStmts(arm.Body)
			fr.resolver.Leave(scope)
		}

	case ast.StmtBreak:
		if fr.loopDepth == 0 {
			fr.reporter.Report(diag.Errorf(diag.ResOutsideLoop, stmt.Span, "'break' outside of a loop"))
		}
	case ast.StmtContinue:
		if fr.loopDepth == 0 {
			fr.reporter.Report(diag.Errorf(diag.ResOutsideLoop, stmt.Span, "'continue' outside of a loop"))
		}
	}
}

func (fr *fileResolver) resolveExpr(exprID ast.ExprID) {
	if !exprID.IsValid() {
		return
	}
	exprs := fr.builder.Exprs
	expr := exprs.Get(exprID)
	switch expr.Kind {
	case ast.ExprIntLit, ast.ExprStringLit, ast.ExprBoolLit:

	case ast.ExprIdent:
		data, _ := exprs.Ident(exprID)
		id, ok := fr.resolver.Lookup(data.Name, SymbolKind.IsValue)
		if !ok {
			fr.reporter.Report(diag.Errorf(diag.ResUnresolvedSymbol, expr.Span,
				"unresolved name '%s'", fr.name(data.Name)))
			return
		}
		if sym := fr.result.Symbol(id); sym != nil && sym.Kind == SymbolVariant {
			if amb := fr.resolver.LookupAll(data.Name, isVariant); len(amb) > 1 {
				fr.reporter.Report(diag.Errorf(diag.ResAmbiguousSymbol, expr.Span,
					"'%s' names a variant of more than one enum, qualify it", fr.name(data.Name)))
				return
			}
		}
		fr.checkPrivacy(id, expr.Span)
		fr.result.ExprSyms[exprID] = id

	case ast.ExprUnary:
		data, _ := exprs.Unary(exprID)
		fr.resolveExpr(data.Operand)
	case ast.ExprBinary:
		data, _ := exprs.Binary(exprID)
		fr.resolveExpr(data.Left)
		fr.resolveExpr(data.Right)
	case ast.ExprCall:
		data, _ := exprs.Call(exprID)
		fr.resolveExpr(data.Callee)
		for _, arg := range data.Args {
			fr.resolveExpr(arg)
		}
	case ast.ExprIndex:
		data, _ := exprs.Index(exprID)
		fr.resolveExpr(data.Array)
		fr.resolveExpr(data.Index)
	case ast.ExprField:
		data, _ := exprs.Field(exprID)
		fr.resolveExpr(data.Object)
	case ast.ExprStructLit:
		data, _ := exprs.StructLit(exprID)
		fr.resolveType(data.Type)
		for _, field := range data.Fields {
			fr.resolveExpr(field.Value)
		}
	case ast.ExprEnumCtor:
		fr.resolveEnumCtor(exprID)
	case ast.ExprArrayLit:
		data, _ := exprs.ArrayLit(exprID)
		for _, elem := range data.Elems {
			fr.resolveExpr(elem)
		}
	case ast.ExprArrayRepeat:
		data, _ := exprs.ArrayRepeat(exprID)
		fr.resolveExpr(data.Value)
		fr.resolveExpr(data.Count)
	case ast.ExprRange:
		data, _ := exprs.Range(exprID)
		fr.resolveExpr(data.Start)
		fr.resolveExpr(data.End)
	case ast.ExprBorrow:
		data, _ := exprs.Borrow(exprID)
		fr.resolveExpr(data.Operand)
	}
}

func isVariant(k SymbolKind) bool { return k == SymbolVariant }
func isEnum(k SymbolKind) bool    { return k == SymbolEnum }

func (fr *fileResolver) resolveEnumCtor(exprID ast.ExprID) {
	exprs := fr.builder.Exprs
	expr := exprs.Get(exprID)
	data, _ := exprs.EnumCtor(exprID)
	for _, arg := range data.TypeArgs {
		fr.resolveType(arg)
	}
	for _, arg := range data.Args {
		fr.resolveExpr(arg)
	}
	for _, field := range data.Fields {
		fr.resolveExpr(field.Value)
	}
	if vsym := fr.lookupVariant(data.EnumName, data.Variant, expr.Span); vsym.IsValid() {
		fr.result.ExprSyms[exprID] = vsym
	}
}

// lookupVariant finds the variant symbol for an `Enum::Variant` path and
// reports resolution failures. enumName may be NoStringID for a bare
// variant reference.
func (fr *fileResolver) lookupVariant(enumName, variant source.StringID, span source.Span) SymbolID {
	if enumName == source.NoStringID {
		candidates := fr.resolver.LookupAll(variant, isVariant)
		switch len(candidates) {
		case 0:
			fr.reporter.Report(diag.Errorf(diag.ResUnresolvedSymbol, span,
				"unknown variant '%s'", fr.name(variant)))
			return NoSymbolID
		case 1:
			fr.checkPrivacy(candidates[0], span)
			return candidates[0]
		default:
			fr.reporter.Report(diag.Errorf(diag.ResAmbiguousSymbol, span,
				"'%s' names a variant of more than one enum, qualify it", fr.name(variant)))
			return NoSymbolID
		}
	}

	enumSym, ok := fr.resolver.Lookup(enumName, SymbolKind.IsType)
	if !ok {
		fr.reporter.Report(diag.Errorf(diag.ResUnresolvedSymbol, span,
			"unknown enum '%s'", fr.name(enumName)))
		return NoSymbolID
	}
	sym := fr.result.Symbol(enumSym)
	if sym == nil || sym.Kind != SymbolEnum {
		fr.reporter.Report(diag.Errorf(diag.ResNotAType, span,
			"'%s' is not an enum", fr.name(enumName)))
		return NoSymbolID
	}
	fr.checkPrivacy(enumSym, span)
	en, _ := fr.builder.Items.Enum(sym.Decl.Item)
	for i, v := range en.Variants {
		if v.Name == variant {
			return fr.result.VariantSyms[sym.Decl.Item][i]
		}
	}
	fr.reporter.Report(diag.Errorf(diag.ResUnknownVariant, span,
		"enum '%s' has no variant '%s'", fr.name(enumName), fr.name(variant)))
	return NoSymbolID
}

func (fr *fileResolver) resolvePattern(patID ast.PatID) {
	if !patID.IsValid() {
		return
	}
	pats := fr.builder.Pats
	pat := pats.Get(patID)
	switch pat.Kind {
	case ast.PatWildcard:

	case ast.PatBinding:
		data, _ := pats.Binding(patID)
		// A bare name that uniquely names an enum variant is a unit
		// variant pattern, not a binding.
		if candidates := fr.resolver.LookupAll(data.Name, isVariant); len(candidates) == 1 {
			fr.checkPrivacy(candidates[0], pat.Span)
			fr.result.PatSyms[patID] = candidates[0]
			return
		} else if len(candidates) > 1 {
			fr.reporter.Report(diag.Errorf(diag.ResAmbiguousSymbol, pat.Span,
				"'%s' names a variant of more than one enum, qualify it", fr.name(data.Name)))
			return
		}
		id, ok := fr.resolver.Declare(Symbol{
			Name: data.Name,
			Kind: SymbolLet,
			Span: pat.Span,
			Decl: SymbolDecl{SourceFile: fr.sourceFile, ASTFile: fr.astFile},
		})
		if ok {
			fr.result.PatBinds[patID] = id
		}

	case ast.PatEnum:
		data, _ := pats.Enum(patID)
		if vsym := fr.lookupVariant(data.EnumName, data.Variant, pat.Span); vsym.IsValid() {
			fr.result.PatSyms[patID] = vsym
		}
		for _, sub := range data.Sub {
			fr.resolvePattern(sub)
		}
		for _, field := range data.Fields {
			fr.resolvePattern(field.Pat)
		}
	}
}
