package sema

import (
	"palladium/internal/diag"
	"palladium/internal/source"
	"palladium/internal/types"
)

// unify makes a and b equal under the current substitution, binding
// unification variables as needed. Invalid types unify with anything so
// one reported error does not cascade.
func (fc *fnChecker) unify(a, b types.TypeID, span source.Span) bool {
	a = fc.subst.Apply(fc.in, a)
	b = fc.subst.Apply(fc.in, b)
	if !a.IsValid() || !b.IsValid() {
		return true
	}
	if a == b {
		return true
	}
	ta := fc.in.MustLookup(a)
	tb := fc.in.MustLookup(b)
	if ta.Kind == types.KindVar {
		return fc.bindVar(ta.Var, b, span)
	}
	if tb.Kind == types.KindVar {
		return fc.bindVar(tb.Var, a, span)
	}
	if ta.Kind != tb.Kind {
		return false
	}
	switch ta.Kind {
	case types.KindArray:
		return ta.Size == tb.Size && fc.unify(ta.Elem, tb.Elem, span)
	case types.KindRef:
		return ta.Mutable == tb.Mutable && fc.unify(ta.Elem, tb.Elem, span)
	case types.KindFn:
		if len(ta.Params) != len(tb.Params) {
			return false
		}
		for i := range ta.Params {
			if !fc.unify(ta.Params[i], tb.Params[i], span) {
				return false
			}
		}
		return fc.unify(ta.Result, tb.Result, span)
	case types.KindStruct, types.KindEnum:
		if ta.Decl != tb.Decl || len(ta.Args) != len(tb.Args) {
			return false
		}
		for i := range ta.Args {
			if !fc.unify(ta.Args[i], tb.Args[i], span) {
				return false
			}
		}
		return true
	default:
		// Primitives and params are interned, a == b above covers them.
		return false
	}
}

// bindVar records v := t after the occurs check. An occurs failure
// reports once and poisons the variable so the caller stays quiet.
func (fc *fnChecker) bindVar(v types.VarID, t types.TypeID, span source.Span) bool {
	if fc.subst.Occurs(fc.in, v, t) {
		fc.report(diag.Errorf(diag.TypeOccursCheck, span,
			"cannot construct the infinite type ?%d = %s", v, fc.format(t)))
		fc.subst[v] = types.NoTypeID
		return true
	}
	fc.subst[v] = t
	return true
}

// expect unifies actual against expected and reports a mismatch.
func (fc *fnChecker) expect(actual, expected types.TypeID, span source.Span) bool {
	if !expected.IsValid() || !actual.IsValid() {
		return true
	}
	if fc.unify(actual, expected, span) {
		return true
	}
	fc.report(diag.Errorf(diag.TypeMismatch, span,
		"expected %s, found %s",
		fc.format(fc.subst.Apply(fc.in, expected)),
		fc.format(fc.subst.Apply(fc.in, actual))))
	return false
}
