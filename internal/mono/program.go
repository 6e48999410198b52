package mono

import (
	"palladium/internal/ast"
	"palladium/internal/sema"
	"palladium/internal/symbols"
	"palladium/internal/types"
)

// Program is the fully concrete output of monomorphization: every
// reachable function, struct and enum instance with generics erased,
// sorted by emitted name so equal inputs produce equal programs.
type Program struct {
	Fns     []*FnInst
	Structs []*StructInst
	Enums   []*EnumInst

	// FnByKey resolves an instance for callee rewriting.
	FnByKey map[MonoKey]*FnInst
}

// FnInst is one concrete function instance. Bodies are not cloned; the
// instance carries the generic body plus the substitution that makes
// every type in it concrete.
type FnInst struct {
	Name string
	Sym  symbols.SymbolID
	Item ast.ItemID
	Info *sema.FnInfo

	Args   []types.TypeID
	Subst  types.ParamSubst
	Params []types.TypeID
	Result types.TypeID

	// CalleeNames maps each call expression in the body to the emitted
	// name of its resolved instance.
	CalleeNames map[ast.ExprID]string
}

// Field pairs an emitted field name with its concrete type.
type Field struct {
	Name string
	Type types.TypeID
}

// StructInst is one concrete struct layout.
type StructInst struct {
	Name   string
	Info   *sema.StructInfo
	Args   []types.TypeID
	Type   types.TypeID
	Fields []Field
}

// VariantInst is one constructor of a concrete enum layout.
type VariantInst struct {
	Name   string
	Form   ast.CtorForm
	Elems  []types.TypeID
	Fields []Field
}

// EnumInst is one concrete enum layout. The variant order follows the
// declaration, so tags are stable.
type EnumInst struct {
	Name     string
	Info     *sema.EnumInfo
	Args     []types.TypeID
	Type     types.TypeID
	Variants []VariantInst
}

// TypeOf resolves the concrete type of a body expression under the
// instance substitution.
func (f *FnInst) TypeOf(res *sema.Result, id ast.ExprID) types.TypeID {
	return f.Subst.Apply(res.Types, res.ExprTypes[id])
}

// BindingType resolves the concrete type of a local binding under the
// instance substitution.
func (f *FnInst) BindingType(res *sema.Result, sym symbols.SymbolID) types.TypeID {
	return f.Subst.Apply(res.Types, res.BindingTypes[sym])
}
