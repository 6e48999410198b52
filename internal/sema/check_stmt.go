package sema

import (
	"palladium/internal/ast"
	"palladium/internal/diag"
	"palladium/internal/source"
	"palladium/internal/symbols"
	"palladium/internal/types"
)

// fnChecker checks one function body. Unification variables are scoped
// to the function; inference never crosses function boundaries.
type fnChecker struct {
	*checker
	info    *FnInfo
	subst   types.Subst
	exprs   []ast.ExprID
	binds   []symbols.SymbolID
	pending []pendingInfer
}

// pendingInfer defers the "every variable resolved" rule to the end of
// the enclosing statement, so later unifications in the same statement
// may still pin a variable down.
type pendingInfer struct {
	span source.Span
	// vars and names run in parallel; names describe each variable for
	// the error message.
	vars  []types.TypeID
	names []string
	// call and callee are set for generic function calls so the
	// resolved instantiation can be recorded for monomorphization.
	call   ast.ExprID
	callee symbols.SymbolID
}

func (c *checker) checkFnBody(itemID ast.ItemID, fn *ast.ItemFnData) {
	symID, ok := c.syms.ItemSyms[itemID]
	if !ok {
		return
	}
	info := c.res.Fns[symID]
	if info == nil {
		return
	}
	fc := &fnChecker{checker: c, info: info, subst: make(types.Subst)}
	params := c.syms.ParamSyms[itemID]
	for i, psym := range params {
		if psym.IsValid() && i < len(info.Params) {
			fc.bindType(psym, info.Params[i])
		}
	}
	fc.checkStmts(fn.Body)
	fc.finish()
}

func (fc *fnChecker) bindType(sym symbols.SymbolID, t types.TypeID) {
	fc.res.BindingTypes[sym] = t
	fc.binds = append(fc.binds, sym)
}

func (fc *fnChecker) setExpr(id ast.ExprID, t types.TypeID) {
	fc.res.ExprTypes[id] = t
	fc.exprs = append(fc.exprs, id)
}

func (fc *fnChecker) resolve(t types.TypeID) types.TypeID {
	return fc.subst.Apply(fc.in, t)
}

// finish applies the final substitution to everything recorded while
// checking this function.
func (fc *fnChecker) finish() {
	for _, id := range fc.exprs {
		fc.res.ExprTypes[id] = fc.resolve(fc.res.ExprTypes[id])
	}
	for _, sym := range fc.binds {
		fc.res.BindingTypes[sym] = fc.resolve(fc.res.BindingTypes[sym])
	}
}

// finishStmt enforces that every inference variable introduced by the
// statement has been resolved, and records generic instantiations.
func (fc *fnChecker) finishStmt() {
	for _, p := range fc.pending {
		resolved := make([]types.TypeID, len(p.vars))
		ok := true
		for i, v := range p.vars {
			if fc.subst.HasVars(fc.in, v) {
				fc.report(diag.Errorf(diag.TypeCannotInfer, p.span,
					"cannot infer %s", p.names[i]))
				ok = false
				continue
			}
			resolved[i] = fc.resolve(v)
		}
		if ok && p.call.IsValid() && p.callee.IsValid() {
			fc.res.CallInsts[p.call] = Instantiation{Sym: p.callee, Args: resolved}
		}
	}
	fc.pending = fc.pending[:0]
}

func (fc *fnChecker) checkStmts(stmts []ast.StmtID) {
	for _, id := range stmts {
		fc.checkStmt(id)
		fc.finishStmt()
	}
}

func (fc *fnChecker) checkStmt(stmtID ast.StmtID) {
	stmts := fc.builder.Stmts
	stmt := stmts.Get(stmtID)
	switch stmt.Kind {
	case ast.StmtExpr:
		data, _ := stmts.Expr(stmtID)
		fc.inferExpr(data.Expr)

	case ast.StmtLet:
		data, _ := stmts.Let(stmtID)
		var t types.TypeID
		if data.Type.IsValid() {
			ann := fc.typeFromSyn(data.Type)
			fc.checkExpr(data.Value, ann)
			t = ann
		} else {
			t = fc.inferExpr(data.Value)
		}
		if sym, ok := fc.syms.LetSyms[stmtID]; ok {
			fc.bindType(sym, t)
		}

	case ast.StmtAssign:
		data, _ := stmts.Assign(stmtID)
		t := fc.inferExpr(data.Target)
		fc.checkAssignable(data.Target)
		fc.checkExpr(data.Value, t)

	case ast.StmtReturn:
		data, _ := stmts.Return(stmtID)
		if data.Value.IsValid() {
			fc.checkExpr(data.Value, fc.info.Result)
		} else if fc.resolve(fc.info.Result) != fc.in.Builtins().Unit {
			fc.report(diag.Errorf(diag.TypeMismatch, stmt.Span,
				"bare return in a function returning %s", fc.format(fc.info.Result)))
		}

	case ast.StmtIf:
		data, _ := stmts.If(stmtID)
		fc.checkCondition(data.Cond)
		fc.checkStmts(data.Then)
		if data.HasElse {
			fc.checkStmts(data.Else)
		}

	case ast.StmtWhile:
		data, _ := stmts.While(stmtID)
		fc.checkCondition(data.Cond)
		fc.checkStmts(data.Body)

	case ast.StmtFor:
		fc.checkFor(stmtID)

	case ast.StmtMatch:
		data, _ := stmts.Match(stmtID)
		t := fc.inferExpr(data.Scrutinee)
		for _, arm := range data.Arms {
			fc.checkPattern(arm.Pattern, t)
			fc.checkStmts(arm.Body)
		}

	case ast.StmtBreak, ast.StmtContinue:
	}
}

func (fc *fnChecker) checkCondition(cond ast.ExprID) {
	t := fc.inferExpr(cond)
	rt := fc.resolve(t)
	if rt.IsValid() && fc.in.Kind(rt) != types.KindBool {
		span := fc.builder.Exprs.Get(cond).Span
		fc.report(diag.Errorf(diag.TypeConditionNotBool, span,
			"condition has type %s, expected bool", fc.format(rt)))
	}
}

func (fc *fnChecker) checkFor(stmtID ast.StmtID) {
	stmts := fc.builder.Stmts
	data, _ := stmts.For(stmtID)
	i64 := fc.in.Builtins().I64
	var varT types.TypeID

	iter := fc.builder.Exprs.Get(data.Iter)
	if iter.Kind == ast.ExprRange {
		rng, _ := fc.builder.Exprs.Range(data.Iter)
		fc.checkExpr(rng.Start, i64)
		fc.checkExpr(rng.End, i64)
		fc.setExpr(data.Iter, i64)
		varT = i64
	} else {
		t := fc.stripRefs(fc.resolve(fc.inferExpr(data.Iter)))
		if desc, ok := fc.in.Lookup(t); ok && desc.Kind == types.KindArray {
			varT = desc.Elem
		} else if t.IsValid() {
			fc.report(diag.Errorf(diag.TypeNotIterable, iter.Span,
				"type %s is not iterable", fc.format(t)))
		}
	}
	if sym, ok := fc.syms.ForSyms[stmtID]; ok {
		fc.bindType(sym, varT)
	}
	fc.checkStmts(data.Body)
}

// checkAssignable validates the mutability chain of an assignment
// target after its type has been inferred.
func (fc *fnChecker) checkAssignable(target ast.ExprID) {
	exprs := fc.builder.Exprs
	expr := exprs.Get(target)
	switch expr.Kind {
	case ast.ExprIdent:
		symID, ok := fc.syms.ExprSyms[target]
		if !ok {
			return
		}
		sym := fc.syms.Symbol(symID)
		if sym != nil && sym.Flags&symbols.SymbolFlagMutable == 0 {
			fc.report(diag.Errorf(diag.TypeAssignImmutable, expr.Span,
				"cannot assign to immutable binding '%s'", fc.name(sym.Name)).
				WithNote(sym.Span, "declared without 'mut'"))
		}

	case ast.ExprField:
		data, _ := exprs.Field(target)
		fc.checkAssignableBase(data.Object)
	case ast.ExprIndex:
		data, _ := exprs.Index(target)
		fc.checkAssignableBase(data.Array)
	case ast.ExprUnary:
		data, _ := exprs.Unary(target)
		if data.Op == ast.UnaryDeref {
			ot := fc.resolve(fc.res.ExprTypes[data.Operand])
			if desc, ok := fc.in.Lookup(ot); ok && desc.Kind == types.KindRef && !desc.Mutable {
				fc.report(diag.Errorf(diag.TypeAssignImmutable, expr.Span,
					"cannot assign through a shared reference"))
			}
		}
	}
}

// checkAssignableBase applies the same rules to the object under a
// field or index projection: a reference must be mutable, an owned
// value traces back to its root binding.
func (fc *fnChecker) checkAssignableBase(base ast.ExprID) {
	ot := fc.resolve(fc.res.ExprTypes[base])
	if desc, ok := fc.in.Lookup(ot); ok && desc.Kind == types.KindRef {
		if !desc.Mutable {
			span := fc.builder.Exprs.Get(base).Span
			fc.report(diag.Errorf(diag.TypeAssignImmutable, span,
				"cannot assign through a shared reference"))
		}
		return
	}
	fc.checkAssignable(base)
}

func (fc *fnChecker) stripRefs(t types.TypeID) types.TypeID {
	for {
		desc, ok := fc.in.Lookup(t)
		if !ok || desc.Kind != types.KindRef {
			return t
		}
		t = desc.Elem
	}
}

// checkPattern types one match arm pattern against the scrutinee.
func (fc *fnChecker) checkPattern(patID ast.PatID, scrutinee types.TypeID) {
	pats := fc.builder.Pats
	pat := pats.Get(patID)
	st := fc.stripRefs(fc.resolve(scrutinee))
	switch pat.Kind {
	case ast.PatWildcard:

	case ast.PatBinding:
		if vsym, promoted := fc.syms.PatSyms[patID]; promoted {
			fc.checkVariantPattern(patID, vsym, st, ast.CtorUnit, nil, nil)
			return
		}
		if bsym, ok := fc.syms.PatBinds[patID]; ok {
			fc.bindType(bsym, st)
		}

	case ast.PatEnum:
		data, _ := pats.Enum(patID)
		vsym, ok := fc.syms.PatSyms[patID]
		if !ok {
			fc.poisonPattern(data)
			return
		}
		fc.checkVariantPattern(patID, vsym, st, data.Form, data.Sub, data.Fields)
	}
}

// poisonPattern binds subpattern names to the invalid type so an
// unresolved constructor does not cascade into unresolved-name noise.
func (fc *fnChecker) poisonPattern(data *ast.PatEnumData) {
	for _, sub := range data.Sub {
		fc.checkPattern(sub, types.NoTypeID)
	}
	for _, field := range data.Fields {
		fc.checkPattern(field.Pat, types.NoTypeID)
	}
}

func (fc *fnChecker) checkVariantPattern(patID ast.PatID, vsym symbols.SymbolID, st types.TypeID, form ast.CtorForm, subs []ast.PatID, fields []ast.PatField) {
	pat := fc.builder.Pats.Get(patID)
	sym := fc.syms.Symbol(vsym)
	enumInfo := fc.res.Enums[sym.Enum]
	if enumInfo == nil || sym.Variant >= len(enumInfo.Variants) {
		return
	}
	variant := enumInfo.Variants[sym.Variant]

	ps := make(types.ParamSubst, len(enumInfo.TypeParams))
	if st.IsValid() {
		desc, ok := fc.in.Lookup(st)
		if !ok || desc.Kind != types.KindEnum || desc.Decl != enumInfo.Decl {
			fc.report(diag.Errorf(diag.TypeMismatch, pat.Span,
				"pattern matches enum '%s' but the scrutinee has type %s",
				fc.name(enumInfo.Name), fc.format(st)))
			st = types.NoTypeID
		} else {
			for i, p := range enumInfo.TypeParams {
				if i < len(desc.Args) {
					ps[p] = desc.Args[i]
				}
			}
		}
	}

	if variant.Form != form {
		fc.report(diag.Errorf(diag.TypeArityMismatch, pat.Span,
			"variant '%s' %s", fc.name(variant.Name), ctorFormHint(variant)))
		fc.poisonSubs(subs, fields)
		return
	}
	switch form {
	case ast.CtorUnit:
	case ast.CtorTuple:
		if len(subs) != len(variant.Elems) {
			fc.report(diag.Errorf(diag.TypeArityMismatch, pat.Span,
				"variant '%s' has %d field(s), pattern binds %d",
				fc.name(variant.Name), len(variant.Elems), len(subs)))
			fc.poisonSubs(subs, nil)
			return
		}
		for i, sub := range subs {
			elem := variant.Elems[i]
			if st.IsValid() {
				elem = ps.Apply(fc.in, elem)
			} else {
				elem = types.NoTypeID
			}
			fc.checkPattern(sub, elem)
		}
	case ast.CtorStruct:
		seen := make(map[source.StringID]bool, len(fields))
		for _, field := range fields {
			info, ok := variantField(variant, field.Name)
			if !ok {
				fc.report(diag.Errorf(diag.TypeUnknownField, field.Span,
					"variant '%s' has no field '%s'", fc.name(variant.Name), fc.name(field.Name)))
				fc.checkPattern(field.Pat, types.NoTypeID)
				continue
			}
			seen[field.Name] = true
			ft := info.Type
			if st.IsValid() {
				ft = ps.Apply(fc.in, ft)
			} else {
				ft = types.NoTypeID
			}
			fc.checkPattern(field.Pat, ft)
		}
		for _, f := range variant.Fields {
			if !seen[f.Name] {
				fc.report(diag.Errorf(diag.TypeMissingField, pat.Span,
					"pattern for variant '%s' is missing field '%s'",
					fc.name(variant.Name), fc.name(f.Name)))
			}
		}
	}
}

func (fc *fnChecker) poisonSubs(subs []ast.PatID, fields []ast.PatField) {
	for _, sub := range subs {
		fc.checkPattern(sub, types.NoTypeID)
	}
	for _, field := range fields {
		fc.checkPattern(field.Pat, types.NoTypeID)
	}
}

func variantField(v VariantInfo, name source.StringID) (FieldInfo, bool) {
	for _, f := range v.Fields {
		if f.Name == name {
			return f, true
		}
	}
	return FieldInfo{}, false
}

func ctorFormHint(v VariantInfo) string {
	switch v.Form {
	case ast.CtorUnit:
		return "takes no payload"
	case ast.CtorTuple:
		return "expects a tuple payload"
	default:
		return "expects a struct payload"
	}
}
