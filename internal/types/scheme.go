package types

import (
	"palladium/internal/source"
)

// Scheme is a type together with the generic parameters it is
// universally quantified over. Non-generic declarations use an empty
// parameter list.
type Scheme struct {
	Params []source.StringID
	Type   TypeID
}

// IsGeneric reports whether the scheme closes over any parameters.
func (s Scheme) IsGeneric() bool {
	return len(s.Params) > 0
}

// Instantiate replaces every quantified parameter with a fresh
// unification variable and returns the instantiated type along with the
// parameter-to-variable mapping in declaration order.
func (s Scheme) Instantiate(in *Interner) (TypeID, []TypeID) {
	if !s.IsGeneric() {
		return s.Type, nil
	}
	vars := make([]TypeID, len(s.Params))
	subst := make(ParamSubst, len(s.Params))
	for i, p := range s.Params {
		vars[i] = in.NewVar()
		subst[p] = vars[i]
	}
	return subst.Apply(in, s.Type), vars
}
