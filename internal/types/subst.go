package types

import (
	"palladium/internal/source"
)

// Subst maps unification variables to types. Built incrementally by
// unification; applied to resolve inferred types.
type Subst map[VarID]TypeID

// Apply resolves every bound variable inside id, re-interning composite
// descriptors as needed.
func (s Subst) Apply(in *Interner, id TypeID) TypeID {
	if len(s) == 0 || !id.IsValid() {
		return id
	}
	t := in.MustLookup(id)
	switch t.Kind {
	case KindVar:
		if bound, ok := s[t.Var]; ok {
			// Bindings may chain var -> var -> concrete.
			return s.Apply(in, bound)
		}
		return id
	case KindArray:
		elem := s.Apply(in, t.Elem)
		if elem == t.Elem {
			return id
		}
		t.Elem = elem
		return in.Intern(t)
	case KindRef:
		elem := s.Apply(in, t.Elem)
		if elem == t.Elem {
			return id
		}
		t.Elem = elem
		return in.Intern(t)
	case KindFn:
		changed := false
		params := make([]TypeID, len(t.Params))
		for i, p := range t.Params {
			params[i] = s.Apply(in, p)
			changed = changed || params[i] != p
		}
		result := s.Apply(in, t.Result)
		changed = changed || result != t.Result
		if !changed {
			return id
		}
		t.Params = params
		t.Result = result
		return in.Intern(t)
	case KindStruct, KindEnum:
		changed := false
		args := make([]TypeID, len(t.Args))
		for i, a := range t.Args {
			args[i] = s.Apply(in, a)
			changed = changed || args[i] != a
		}
		if !changed {
			return id
		}
		t.Args = args
		return in.Intern(t)
	default:
		return id
	}
}

// Occurs reports whether v appears inside id after applying s. Binding a
// variable to a type containing itself would build an infinite type.
func (s Subst) Occurs(in *Interner, v VarID, id TypeID) bool {
	if !id.IsValid() {
		return false
	}
	t := in.MustLookup(id)
	switch t.Kind {
	case KindVar:
		if t.Var == v {
			return true
		}
		if bound, ok := s[t.Var]; ok {
			return s.Occurs(in, v, bound)
		}
		return false
	case KindArray, KindRef:
		return s.Occurs(in, v, t.Elem)
	case KindFn:
		for _, p := range t.Params {
			if s.Occurs(in, v, p) {
				return true
			}
		}
		return s.Occurs(in, v, t.Result)
	case KindStruct, KindEnum:
		for _, a := range t.Args {
			if s.Occurs(in, v, a) {
				return true
			}
		}
		return false
	default:
		return false
	}
}

// HasVars reports whether any unification variable remains inside id
// after applying s.
func (s Subst) HasVars(in *Interner, id TypeID) bool {
	if !id.IsValid() {
		return false
	}
	t := in.MustLookup(id)
	switch t.Kind {
	case KindVar:
		if bound, ok := s[t.Var]; ok {
			return s.HasVars(in, bound)
		}
		return true
	case KindArray, KindRef:
		return s.HasVars(in, t.Elem)
	case KindFn:
		for _, p := range t.Params {
			if s.HasVars(in, p) {
				return true
			}
		}
		return s.HasVars(in, t.Result)
	case KindStruct, KindEnum:
		for _, a := range t.Args {
			if s.HasVars(in, a) {
				return true
			}
		}
		return false
	default:
		return false
	}
}

// ParamSubst maps generic parameter names to concrete types. Used when
// resolving a scheme at a call site and again by the monomorphizer.
type ParamSubst map[source.StringID]TypeID

// Apply replaces every KindParam placeholder inside id.
func (ps ParamSubst) Apply(in *Interner, id TypeID) TypeID {
	if len(ps) == 0 || !id.IsValid() {
		return id
	}
	t := in.MustLookup(id)
	switch t.Kind {
	case KindParam:
		if concrete, ok := ps[t.Name]; ok {
			return concrete
		}
		return id
	case KindArray:
		elem := ps.Apply(in, t.Elem)
		if elem == t.Elem {
			return id
		}
		t.Elem = elem
		return in.Intern(t)
	case KindRef:
		elem := ps.Apply(in, t.Elem)
		if elem == t.Elem {
			return id
		}
		t.Elem = elem
		return in.Intern(t)
	case KindFn:
		changed := false
		params := make([]TypeID, len(t.Params))
		for i, p := range t.Params {
			params[i] = ps.Apply(in, p)
			changed = changed || params[i] != p
		}
		result := ps.Apply(in, t.Result)
		changed = changed || result != t.Result
		if !changed {
			return id
		}
		t.Params = params
		t.Result = result
		return in.Intern(t)
	case KindStruct, KindEnum:
		changed := false
		args := make([]TypeID, len(t.Args))
		for i, a := range t.Args {
			args[i] = ps.Apply(in, a)
			changed = changed || args[i] != a
		}
		if !changed {
			return id
		}
		t.Args = args
		return in.Intern(t)
	default:
		return id
	}
}
