package types

import (
	"testing"

	"palladium/internal/source"
)

func TestInternDedup(t *testing.T) {
	in := NewInterner()
	b := in.Builtins()

	a1 := in.Intern(Type{Kind: KindArray, Elem: b.I64, Size: 3})
	a2 := in.Intern(Type{Kind: KindArray, Elem: b.I64, Size: 3})
	if a1 != a2 {
		t.Fatalf("structurally equal arrays got distinct ids: %d vs %d", a1, a2)
	}

	a3 := in.Intern(Type{Kind: KindArray, Elem: b.I64, Size: 4})
	if a1 == a3 {
		t.Fatalf("arrays of different size share an id")
	}

	r1 := in.Intern(Type{Kind: KindRef, Elem: b.I64})
	r2 := in.Intern(Type{Kind: KindRef, Elem: b.I64, Mutable: true})
	if r1 == r2 {
		t.Fatalf("&T and &mut T share an id")
	}
}

func TestFreshVarsDistinct(t *testing.T) {
	in := NewInterner()
	v1 := in.NewVar()
	v2 := in.NewVar()
	if v1 == v2 {
		t.Fatalf("fresh vars share an id")
	}
}

func TestSubstApplyChain(t *testing.T) {
	in := NewInterner()
	b := in.Builtins()
	v1 := in.NewVar()
	v2 := in.NewVar()

	s := Subst{}
	s[in.MustLookup(v1).Var] = v2
	s[in.MustLookup(v2).Var] = b.Bool

	if got := s.Apply(in, v1); got != b.Bool {
		t.Fatalf("chained apply = %v, want bool", got)
	}

	arr := in.Intern(Type{Kind: KindArray, Elem: v1, Size: 2})
	want := in.Intern(Type{Kind: KindArray, Elem: b.Bool, Size: 2})
	if got := s.Apply(in, arr); got != want {
		t.Fatalf("apply into array = %v, want %v", got, want)
	}
}

func TestOccursCheck(t *testing.T) {
	in := NewInterner()
	v := in.NewVar()
	varID := in.MustLookup(v).Var
	arr := in.Intern(Type{Kind: KindArray, Elem: v, Size: 1})

	s := Subst{}
	if !s.Occurs(in, varID, arr) {
		t.Fatalf("occurs check missed the variable inside the array")
	}
	if s.Occurs(in, varID, in.Builtins().I32) {
		t.Fatalf("occurs check false positive on i32")
	}
}

func TestSchemeInstantiate(t *testing.T) {
	strs := source.NewInterner()
	in := NewInterner()
	tName := strs.Intern("T")
	param := in.MakeParam(tName)
	fn := in.Intern(Type{Kind: KindFn, Params: []TypeID{param}, Result: param})

	scheme := Scheme{Params: []source.StringID{tName}, Type: fn}
	inst, vars := scheme.Instantiate(in)
	if len(vars) != 1 {
		t.Fatalf("expected one fresh var, got %d", len(vars))
	}
	ft := in.MustLookup(inst)
	if ft.Params[0] != vars[0] || ft.Result != vars[0] {
		t.Fatalf("instantiation did not share the fresh var across uses")
	}

	// A second instantiation must not reuse the first one's vars.
	_, vars2 := scheme.Instantiate(in)
	if vars2[0] == vars[0] {
		t.Fatalf("instantiations share variables")
	}
}

func TestFormat(t *testing.T) {
	strs := source.NewInterner()
	in := NewInterner()
	b := in.Builtins()
	in.SetDeclName(DeclID(7), "Option")

	opt := in.Intern(Type{Kind: KindEnum, Decl: DeclID(7), Args: []TypeID{b.I64}})
	if got := in.Format(strs, opt); got != "Option<i64>" {
		t.Fatalf("format = %q", got)
	}
	ref := in.Intern(Type{Kind: KindRef, Elem: b.String, Mutable: true})
	if got := in.Format(strs, ref); got != "&mut String" {
		t.Fatalf("format = %q", got)
	}
}
