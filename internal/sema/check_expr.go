package sema

import (
	"palladium/internal/ast"
	"palladium/internal/diag"
	"palladium/internal/source"
	"palladium/internal/symbols"
	"palladium/internal/types"
)

func (fc *fnChecker) inferExpr(id ast.ExprID) types.TypeID {
	return fc.checkExpr(id, types.NoTypeID)
}

// checkExpr types one expression against an optional expected type.
// NoTypeID means no expectation; mismatches report at the expression
// span.
func (fc *fnChecker) checkExpr(id ast.ExprID, expected types.TypeID) types.TypeID {
	if !id.IsValid() {
		return types.NoTypeID
	}
	exprs := fc.builder.Exprs
	expr := exprs.Get(id)
	span := expr.Span

	switch expr.Kind {
	case ast.ExprIntLit:
		// An integer literal adopts any expected numeric type, i64
		// otherwise.
		t := fc.in.Builtins().I64
		if expected.IsValid() {
			et := fc.resolve(expected)
			if fc.in.Kind(et).IsNumeric() {
				t = et
			}
		}
		return fc.finishExpr(id, t, expected, span)

	case ast.ExprStringLit:
		return fc.finishExpr(id, fc.in.Builtins().String, expected, span)

	case ast.ExprBoolLit:
		return fc.finishExpr(id, fc.in.Builtins().Bool, expected, span)

	case ast.ExprIdent:
		return fc.checkIdent(id, expected, span)

	case ast.ExprUnary:
		data, _ := exprs.Unary(id)
		return fc.checkUnary(id, data, expected, span)

	case ast.ExprBinary:
		data, _ := exprs.Binary(id)
		return fc.checkBinary(id, data, expected, span)

	case ast.ExprCall:
		data, _ := exprs.Call(id)
		return fc.checkCall(id, data, expected, span)

	case ast.ExprIndex:
		data, _ := exprs.Index(id)
		fc.checkExpr(data.Index, fc.in.Builtins().I64)
		at := fc.stripRefs(fc.resolve(fc.inferExpr(data.Array)))
		desc, ok := fc.in.Lookup(at)
		if !ok || desc.Kind != types.KindArray {
			if at.IsValid() {
				fc.report(diag.Errorf(diag.TypeNotIndexable, span,
					"type %s cannot be indexed", fc.format(at)))
			}
			return fc.finishExpr(id, types.NoTypeID, expected, span)
		}
		return fc.finishExpr(id, desc.Elem, expected, span)

	case ast.ExprField:
		data, _ := exprs.Field(id)
		return fc.checkField(id, data, expected, span)

	case ast.ExprStructLit:
		data, _ := exprs.StructLit(id)
		return fc.checkStructLit(id, data, expected, span)

	case ast.ExprEnumCtor:
		data, _ := exprs.EnumCtor(id)
		vsym, ok := fc.syms.ExprSyms[id]
		if !ok {
			for _, arg := range data.Args {
				fc.inferExpr(arg)
			}
			for _, field := range data.Fields {
				fc.inferExpr(field.Value)
			}
			return fc.finishExpr(id, types.NoTypeID, expected, span)
		}
		return fc.checkCtor(id, span, vsym, data.Form, data.Args, data.Fields, data.TypeArgs, expected)

	case ast.ExprArrayLit:
		data, _ := exprs.ArrayLit(id)
		return fc.checkArrayLit(id, data, expected, span)

	case ast.ExprArrayRepeat:
		data, _ := exprs.ArrayRepeat(id)
		elem := fc.inferExpr(data.Value)
		count, ok := exprs.Int(data.Count)
		if !ok {
			countSpan := exprs.Get(data.Count).Span
			fc.report(diag.Errorf(diag.TypeMismatch, countSpan,
				"array length must be an integer literal"))
			fc.inferExpr(data.Count)
			return fc.finishExpr(id, types.NoTypeID, expected, span)
		}
		fc.setExpr(data.Count, fc.in.Builtins().I64)
		t := fc.in.Intern(types.Type{Kind: types.KindArray, Elem: fc.resolve(elem), Size: count.Value})
		return fc.finishExpr(id, t, expected, span)

	case ast.ExprRange:
		// A range is only meaningful as a for loop iterable; the for
		// statement checks it before reaching here.
		data, _ := exprs.Range(id)
		fc.inferExpr(data.Start)
		fc.inferExpr(data.End)
		fc.report(diag.Errorf(diag.TypeNotIterable, span,
			"a range is only valid as a for loop iterable"))
		return fc.finishExpr(id, types.NoTypeID, expected, span)

	case ast.ExprBorrow:
		data, _ := exprs.Borrow(id)
		if !isPlaceExpr(exprs, data.Operand) {
			opSpan := exprs.Get(data.Operand).Span
			fc.report(diag.Errorf(diag.TypeMismatch, opSpan,
				"cannot borrow a temporary value"))
		}
		ot := fc.inferExpr(data.Operand)
		t := fc.in.Intern(types.Type{Kind: types.KindRef, Elem: fc.resolve(ot), Mutable: data.Mutable})
		return fc.finishExpr(id, t, expected, span)
	}
	return fc.finishExpr(id, types.NoTypeID, expected, span)
}

// finishExpr records the expression type after checking it against the
// expectation. Recorded types still hold unification variables; the
// function-level finish pass resolves them.
func (fc *fnChecker) finishExpr(id ast.ExprID, t, expected types.TypeID, span source.Span) types.TypeID {
	fc.expect(t, expected, span)
	fc.setExpr(id, t)
	return t
}

func (fc *fnChecker) checkIdent(id ast.ExprID, expected types.TypeID, span source.Span) types.TypeID {
	symID, ok := fc.syms.ExprSyms[id]
	if !ok {
		return fc.finishExpr(id, types.NoTypeID, expected, span)
	}
	sym := fc.syms.Symbol(symID)
	switch sym.Kind {
	case symbols.SymbolLet, symbols.SymbolParam:
		return fc.finishExpr(id, fc.res.BindingTypes[symID], expected, span)

	case symbols.SymbolVariant:
		// A bare unit variant name is a constructor with no payload.
		return fc.checkCtor(id, span, symID, ast.CtorUnit, nil, nil, nil, expected)

	case symbols.SymbolFunction:
		info := fc.res.Fns[symID]
		if info == nil {
			return fc.finishExpr(id, types.NoTypeID, expected, span)
		}
		if info.IsGeneric() {
			fc.report(diag.Errorf(diag.TypeCannotInfer, span,
				"generic function '%s' must be called directly", fc.name(info.Name)))
			return fc.finishExpr(id, types.NoTypeID, expected, span)
		}
		t := fc.in.Intern(types.Type{Kind: types.KindFn, Params: info.Params, Result: info.Result})
		return fc.finishExpr(id, t, expected, span)
	}
	return fc.finishExpr(id, types.NoTypeID, expected, span)
}

func (fc *fnChecker) checkUnary(id ast.ExprID, data *ast.ExprUnaryData, expected types.TypeID, span source.Span) types.TypeID {
	switch data.Op {
	case ast.UnaryNeg:
		t := fc.inferExpr(data.Operand)
		rt := fc.resolve(t)
		if rt.IsValid() && fc.in.Kind(rt) != types.KindVar && !fc.in.Kind(rt).IsNumeric() {
			fc.report(diag.Errorf(diag.TypeInvalidUnaryOp, span,
				"operator '-' is not defined for %s", fc.format(rt)))
			return fc.finishExpr(id, types.NoTypeID, expected, span)
		}
		return fc.finishExpr(id, t, expected, span)

	case ast.UnaryNot:
		fc.checkExpr(data.Operand, fc.in.Builtins().Bool)
		return fc.finishExpr(id, fc.in.Builtins().Bool, expected, span)

	case ast.UnaryDeref:
		t := fc.resolve(fc.inferExpr(data.Operand))
		desc, ok := fc.in.Lookup(t)
		if !ok || desc.Kind != types.KindRef {
			if t.IsValid() {
				fc.report(diag.Errorf(diag.TypeInvalidUnaryOp, span,
					"cannot dereference %s", fc.format(t)))
			}
			return fc.finishExpr(id, types.NoTypeID, expected, span)
		}
		return fc.finishExpr(id, desc.Elem, expected, span)
	}
	return fc.finishExpr(id, types.NoTypeID, expected, span)
}

func (fc *fnChecker) checkBinary(id ast.ExprID, data *ast.ExprBinaryData, expected types.TypeID, span source.Span) types.TypeID {
	boolean := fc.in.Builtins().Bool
	switch data.Op {
	case ast.BinaryAdd:
		// '+' concatenates strings besides adding numbers.
		lt := fc.inferExpr(data.Left)
		fc.checkExpr(data.Right, lt)
		fc.requireOperand(data.Op, data.Left, lt, addOperand)
		return fc.finishExpr(id, lt, expected, span)

	case ast.BinarySub, ast.BinaryMul, ast.BinaryDiv, ast.BinaryMod:
		lt := fc.inferExpr(data.Left)
		fc.checkExpr(data.Right, lt)
		fc.requireOperand(data.Op, data.Left, lt, numericOperand)
		return fc.finishExpr(id, lt, expected, span)

	case ast.BinaryEq, ast.BinaryNe:
		lt := fc.inferExpr(data.Left)
		fc.checkExpr(data.Right, lt)
		fc.requireOperand(data.Op, data.Left, lt, equatableOperand)
		return fc.finishExpr(id, boolean, expected, span)

	case ast.BinaryLt, ast.BinaryGt, ast.BinaryLe, ast.BinaryGe:
		lt := fc.inferExpr(data.Left)
		fc.checkExpr(data.Right, lt)
		fc.requireOperand(data.Op, data.Left, lt, numericOperand)
		return fc.finishExpr(id, boolean, expected, span)

	case ast.BinaryAnd, ast.BinaryOr:
		fc.checkExpr(data.Left, boolean)
		fc.checkExpr(data.Right, boolean)
		return fc.finishExpr(id, boolean, expected, span)
	}
	return fc.finishExpr(id, types.NoTypeID, expected, span)
}

func numericOperand(k types.Kind) bool { return k.IsNumeric() }

func addOperand(k types.Kind) bool { return k.IsNumeric() || k == types.KindString }

func equatableOperand(k types.Kind) bool {
	return k.IsNumeric() || k == types.KindBool || k == types.KindString
}

// requireOperand reports when the left operand resolves to a kind the
// operator does not accept. Unresolved variables pass; the operand will
// surface elsewhere if it stays unresolved.
func (fc *fnChecker) requireOperand(op ast.BinaryOp, operand ast.ExprID, t types.TypeID, accept func(types.Kind) bool) {
	rt := fc.resolve(t)
	if !rt.IsValid() {
		return
	}
	k := fc.in.Kind(rt)
	if k == types.KindVar || accept(k) {
		return
	}
	span := fc.builder.Exprs.Get(operand).Span
	fc.report(diag.Errorf(diag.TypeInvalidBinaryOps, span,
		"operator '%s' is not defined for %s", op, fc.format(rt)))
}

func (fc *fnChecker) checkCall(id ast.ExprID, data *ast.ExprCallData, expected types.TypeID, span source.Span) types.TypeID {
	exprs := fc.builder.Exprs
	callee := exprs.Get(data.Callee)
	if callee.Kind != ast.ExprIdent {
		for _, arg := range data.Args {
			fc.inferExpr(arg)
		}
		fc.report(diag.Errorf(diag.TypeNotCallable, callee.Span,
			"expression is not callable"))
		return fc.finishExpr(id, types.NoTypeID, expected, span)
	}
	symID, ok := fc.syms.ExprSyms[data.Callee]
	if !ok {
		for _, arg := range data.Args {
			fc.inferExpr(arg)
		}
		return fc.finishExpr(id, types.NoTypeID, expected, span)
	}
	sym := fc.syms.Symbol(symID)
	if sym.Kind == symbols.SymbolVariant {
		// `Some(x)` parses as a call of a bare variant name.
		fc.setExpr(data.Callee, types.NoTypeID)
		return fc.checkCtor(id, span, symID, ast.CtorTuple, data.Args, nil, nil, expected)
	}
	info := fc.res.Fns[symID]
	if info == nil {
		for _, arg := range data.Args {
			fc.inferExpr(arg)
		}
		fc.report(diag.Errorf(diag.TypeNotCallable, callee.Span,
			"'%s' is not a function", fc.name(sym.Name)))
		return fc.finishExpr(id, types.NoTypeID, expected, span)
	}
	fc.setExpr(data.Callee, types.NoTypeID)

	if len(data.Args) != len(info.Params) {
		fc.report(diag.Errorf(diag.TypeArityMismatch, span,
			"'%s' expects %d argument(s), got %d",
			fc.name(info.Name), len(info.Params), len(data.Args)))
		for _, arg := range data.Args {
			fc.inferExpr(arg)
		}
		return fc.finishExpr(id, types.NoTypeID, expected, span)
	}

	params := info.Params
	result := info.Result
	if info.IsGeneric() {
		ps := make(types.ParamSubst, len(info.TypeParams))
		vars := make([]types.TypeID, len(info.TypeParams))
		names := make([]string, len(info.TypeParams))
		for i, tp := range info.TypeParams {
			vars[i] = fc.in.NewVar()
			names[i] = fc.name(tp)
			ps[tp] = vars[i]
		}
		fresh := make([]types.TypeID, len(params))
		for i, p := range params {
			fresh[i] = ps.Apply(fc.in, p)
		}
		params = fresh
		result = ps.Apply(fc.in, result)
		fc.pending = append(fc.pending, pendingInfer{
			span:   span,
			vars:   vars,
			names:  names,
			call:   id,
			callee: symID,
		})
	}
	for i, arg := range data.Args {
		fc.checkExpr(arg, params[i])
	}
	return fc.finishExpr(id, result, expected, span)
}

// checkCtor types an enum constructor use, whatever syntax spelled it:
// a qualified path, a bare call or a bare unit name.
func (fc *fnChecker) checkCtor(id ast.ExprID, span source.Span, vsym symbols.SymbolID, form ast.CtorForm, args []ast.ExprID, fields []ast.FieldInit, typeArgs []ast.TypeID, expected types.TypeID) types.TypeID {
	sym := fc.syms.Symbol(vsym)
	enumInfo := fc.res.Enums[sym.Enum]
	if enumInfo == nil || sym.Variant >= len(enumInfo.Variants) {
		return fc.finishExpr(id, types.NoTypeID, expected, span)
	}
	variant := enumInfo.Variants[sym.Variant]

	// Each type parameter maps to either an explicit argument or a
	// fresh unification variable pinned by the payload or the context.
	ps := make(types.ParamSubst, len(enumInfo.TypeParams))
	enumArgs := make([]types.TypeID, len(enumInfo.TypeParams))
	if len(typeArgs) != 0 && len(typeArgs) != len(enumInfo.TypeParams) {
		fc.report(diag.Errorf(diag.TypeTypeArityMismatch, span,
			"'%s' expects %d type argument(s), got %d",
			fc.name(enumInfo.Name), len(enumInfo.TypeParams), len(typeArgs)))
		typeArgs = nil
	}
	var vars []types.TypeID
	var names []string
	for i, tp := range enumInfo.TypeParams {
		if i < len(typeArgs) {
			enumArgs[i] = fc.typeFromSyn(typeArgs[i])
		} else {
			enumArgs[i] = fc.in.NewVar()
			vars = append(vars, enumArgs[i])
			names = append(names, fc.name(tp))
		}
		ps[tp] = enumArgs[i]
	}
	if len(vars) > 0 {
		fc.pending = append(fc.pending, pendingInfer{span: span, vars: vars, names: names})
	}

	if variant.Form != form {
		fc.report(diag.Errorf(diag.TypeArityMismatch, span,
			"variant '%s' %s", fc.name(variant.Name), ctorFormHint(variant)))
		for _, arg := range args {
			fc.inferExpr(arg)
		}
		for _, field := range fields {
			fc.inferExpr(field.Value)
		}
	} else {
		switch form {
		case ast.CtorTuple:
			if len(args) != len(variant.Elems) {
				fc.report(diag.Errorf(diag.TypeArityMismatch, span,
					"variant '%s' expects %d argument(s), got %d",
					fc.name(variant.Name), len(variant.Elems), len(args)))
				for _, arg := range args {
					fc.inferExpr(arg)
				}
			} else {
				for i, arg := range args {
					fc.checkExpr(arg, ps.Apply(fc.in, variant.Elems[i]))
				}
			}
		case ast.CtorStruct:
			seen := make(map[source.StringID]bool, len(fields))
			for _, field := range fields {
				finfo, ok := variantField(variant, field.Name)
				if !ok {
					fc.report(diag.Errorf(diag.TypeUnknownField, field.Span,
						"variant '%s' has no field '%s'",
						fc.name(variant.Name), fc.name(field.Name)))
					fc.inferExpr(field.Value)
					continue
				}
				if seen[field.Name] {
					fc.report(diag.Errorf(diag.TypeUnknownField, field.Span,
						"field '%s' initialized twice", fc.name(field.Name)))
				}
				seen[field.Name] = true
				fc.checkExpr(field.Value, ps.Apply(fc.in, finfo.Type))
			}
			for _, f := range variant.Fields {
				if !seen[f.Name] {
					fc.report(diag.Errorf(diag.TypeMissingField, span,
						"variant '%s' is missing field '%s'",
						fc.name(variant.Name), fc.name(f.Name)))
				}
			}
		}
	}

	t := fc.in.Intern(types.Type{Kind: types.KindEnum, Decl: enumInfo.Decl, Args: enumArgs})
	return fc.finishExpr(id, t, expected, span)
}

func (fc *fnChecker) checkField(id ast.ExprID, data *ast.ExprFieldData, expected types.TypeID, span source.Span) types.TypeID {
	ot := fc.stripRefs(fc.resolve(fc.inferExpr(data.Object)))
	if !ot.IsValid() {
		return fc.finishExpr(id, types.NoTypeID, expected, span)
	}
	desc, ok := fc.in.Lookup(ot)
	if !ok || desc.Kind != types.KindStruct {
		fc.report(diag.Errorf(diag.TypeUnknownField, span,
			"type %s has no field '%s'", fc.format(ot), fc.name(data.Name)))
		return fc.finishExpr(id, types.NoTypeID, expected, span)
	}
	info := fc.res.StructOfDecl[desc.Decl]
	if info == nil {
		return fc.finishExpr(id, types.NoTypeID, expected, span)
	}
	finfo, ok := info.Field(data.Name)
	if !ok {
		fc.report(diag.Errorf(diag.TypeUnknownField, span,
			"struct '%s' has no field '%s'", fc.name(info.Name), fc.name(data.Name)))
		return fc.finishExpr(id, types.NoTypeID, expected, span)
	}
	ps := make(types.ParamSubst, len(info.TypeParams))
	for i, tp := range info.TypeParams {
		if i < len(desc.Args) {
			ps[tp] = desc.Args[i]
		}
	}
	return fc.finishExpr(id, ps.Apply(fc.in, finfo.Type), expected, span)
}

func (fc *fnChecker) checkStructLit(id ast.ExprID, data *ast.ExprStructLitData, expected types.TypeID, span source.Span) types.TypeID {
	symID, ok := fc.syms.TypeSyms[data.Type]
	if !ok {
		for _, field := range data.Fields {
			fc.inferExpr(field.Value)
		}
		return fc.finishExpr(id, types.NoTypeID, expected, span)
	}
	info := fc.res.Structs[symID]
	if info == nil {
		for _, field := range data.Fields {
			fc.inferExpr(field.Value)
		}
		fc.report(diag.Errorf(diag.TypeMismatch, span,
			"'%s' is not a struct", fc.name(fc.syms.Symbol(symID).Name)))
		return fc.finishExpr(id, types.NoTypeID, expected, span)
	}

	syn := fc.builder.Types.Get(data.Type)
	ps := make(types.ParamSubst, len(info.TypeParams))
	structArgs := make([]types.TypeID, len(info.TypeParams))
	var explicit []ast.TypeID
	if path, ok := fc.builder.Types.Path(data.Type); ok {
		explicit = path.Args
	}
	if len(explicit) != 0 && len(explicit) != len(info.TypeParams) {
		fc.report(diag.Errorf(diag.TypeTypeArityMismatch, syn.Span,
			"'%s' expects %d type argument(s), got %d",
			fc.name(info.Name), len(info.TypeParams), len(explicit)))
		explicit = nil
	}
	var vars []types.TypeID
	var names []string
	for i, tp := range info.TypeParams {
		if i < len(explicit) {
			structArgs[i] = fc.typeFromSyn(explicit[i])
		} else {
			structArgs[i] = fc.in.NewVar()
			vars = append(vars, structArgs[i])
			names = append(names, fc.name(tp))
		}
		ps[tp] = structArgs[i]
	}
	if len(vars) > 0 {
		fc.pending = append(fc.pending, pendingInfer{span: span, vars: vars, names: names})
	}

	seen := make(map[source.StringID]bool, len(data.Fields))
	for _, field := range data.Fields {
		finfo, ok := info.Field(field.Name)
		if !ok {
			fc.report(diag.Errorf(diag.TypeUnknownField, field.Span,
				"struct '%s' has no field '%s'", fc.name(info.Name), fc.name(field.Name)))
			fc.inferExpr(field.Value)
			continue
		}
		if seen[field.Name] {
			fc.report(diag.Errorf(diag.TypeUnknownField, field.Span,
				"field '%s' initialized twice", fc.name(field.Name)))
		}
		seen[field.Name] = true
		fc.checkExpr(field.Value, ps.Apply(fc.in, finfo.Type))
	}
	for _, f := range info.Fields {
		if !seen[f.Name] {
			fc.report(diag.Errorf(diag.TypeMissingField, span,
				"struct '%s' is missing field '%s'", fc.name(info.Name), fc.name(f.Name)))
		}
	}

	t := fc.in.Intern(types.Type{Kind: types.KindStruct, Decl: info.Decl, Args: structArgs})
	return fc.finishExpr(id, t, expected, span)
}

func (fc *fnChecker) checkArrayLit(id ast.ExprID, data *ast.ExprArrayLitData, expected types.TypeID, span source.Span) types.TypeID {
	var elem types.TypeID
	if expected.IsValid() {
		if desc, ok := fc.in.Lookup(fc.resolve(expected)); ok && desc.Kind == types.KindArray {
			elem = desc.Elem
		}
	}
	if !elem.IsValid() {
		if len(data.Elems) == 0 {
			fc.report(diag.Errorf(diag.TypeCannotInfer, span,
				"cannot infer the element type of an empty array"))
			return fc.finishExpr(id, types.NoTypeID, expected, span)
		}
		elem = fc.inferExpr(data.Elems[0])
		for _, e := range data.Elems[1:] {
			fc.checkExpr(e, elem)
		}
	} else {
		for _, e := range data.Elems {
			fc.checkExpr(e, elem)
		}
	}
	t := fc.in.Intern(types.Type{
		Kind: types.KindArray,
		Elem: fc.resolve(elem),
		Size: int64(len(data.Elems)),
	})
	return fc.finishExpr(id, t, expected, span)
}

// isPlaceExpr reports whether borrowing the expression yields a
// reference to storage rather than to a temporary.
func isPlaceExpr(exprs *ast.Exprs, id ast.ExprID) bool {
	expr := exprs.Get(id)
	switch expr.Kind {
	case ast.ExprIdent:
		return true
	case ast.ExprField:
		data, _ := exprs.Field(id)
		return isPlaceExpr(exprs, data.Object)
	case ast.ExprIndex:
		data, _ := exprs.Index(id)
		return isPlaceExpr(exprs, data.Array)
	case ast.ExprUnary:
		data, _ := exprs.Unary(id)
		return data.Op == ast.UnaryDeref
	}
	return false
}
