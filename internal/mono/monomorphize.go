package mono

import (
	"fmt"
	"slices"
	"strings"

	"palladium/internal/ast"
	"palladium/internal/diag"
	"palladium/internal/sema"
	"palladium/internal/source"
	"palladium/internal/symbols"
	"palladium/internal/types"
)

type Options struct {
	// MaxDepth bounds the instantiation chain. Recursive generics that
	// keep wrapping their argument would otherwise never terminate.
	MaxDepth int
}

const defaultMaxDepth = 64

// Monomorphize expands every reachable generic instantiation of the
// checked program into concrete instances. Entry points are the
// non-generic functions; anything only reachable through an
// uninstantiated generic is dropped. A blown instantiation depth is an
// internal failure returned as an error, never a diagnostic.
func Monomorphize(astb *ast.Builder, res *sema.Result, opts Options) (*Program, error) {
	if opts.MaxDepth <= 0 {
		opts.MaxDepth = defaultMaxDepth
	}
	b := &builder{
		astb:    astb,
		res:     res,
		in:      res.Types,
		opts:    opts,
		fns:     make(map[MonoKey]*FnInst),
		structs: make(map[MonoKey]*StructInst),
		enums:   make(map[MonoKey]*EnumInst),
	}
	b.seed()
	if b.depthErr != nil {
		return nil, b.depthErr
	}
	return b.finish(), nil
}

type builder struct {
	astb *ast.Builder
	res  *sema.Result
	in   *types.Interner
	opts Options

	fns     map[MonoKey]*FnInst
	structs map[MonoKey]*StructInst
	enums   map[MonoKey]*EnumInst

	depthErr error
}

func (b *builder) name(id source.StringID) string {
	return b.astb.Strings.MustLookup(id)
}

func (b *builder) seed() {
	for sym, info := range b.res.Fns {
		if info.Builtin != symbols.BuiltinNone || info.IsGeneric() {
			continue
		}
		b.requestFn(sym, nil, 0, source.Span{})
	}
}

func (b *builder) finish() *Program {
	prog := &Program{FnByKey: b.fns}
	for _, inst := range b.fns {
		prog.Fns = append(prog.Fns, inst)
	}
	for _, inst := range b.structs {
		prog.Structs = append(prog.Structs, inst)
	}
	for _, inst := range b.enums {
		prog.Enums = append(prog.Enums, inst)
	}
	slices.SortFunc(prog.Fns, func(a, c *FnInst) int { return strings.Compare(a.Name, c.Name) })
	slices.SortFunc(prog.Structs, func(a, c *StructInst) int { return strings.Compare(a.Name, c.Name) })
	slices.SortFunc(prog.Enums, func(a, c *EnumInst) int { return strings.Compare(a.Name, c.Name) })
	return prog
}

func (b *builder) requestFn(sym symbols.SymbolID, args []types.TypeID, depth int, site source.Span) *FnInst {
	info := b.res.Fns[sym]
	if info == nil || info.Builtin != symbols.BuiltinNone || !info.Item.IsValid() {
		return nil
	}
	if len(args) != len(info.TypeParams) {
		return nil
	}
	key := makeKey(sym, args)
	if inst, ok := b.fns[key]; ok {
		return inst
	}
	if depth > b.opts.MaxDepth {
		if b.depthErr == nil {
			b.depthErr = fmt.Errorf("%s: instantiation depth exceeded (%d) expanding %s at %s",
				diag.InternalMonoDepth, b.opts.MaxDepth, b.name(info.Name), site)
		}
		return nil
	}

	ps := make(types.ParamSubst, len(info.TypeParams))
	for i, tp := range info.TypeParams {
		ps[tp] = args[i]
	}
	inst := &FnInst{
		Name:        b.mangleFn(b.name(info.Name), args),
		Sym:         sym,
		Item:        info.Item,
		Info:        info,
		Args:        slices.Clone(args),
		Subst:       ps,
		Result:      ps.Apply(b.in, info.Result),
		CalleeNames: make(map[ast.ExprID]string),
	}
	for _, p := range info.Params {
		inst.Params = append(inst.Params, ps.Apply(b.in, p))
	}
	// Cache before walking the body so self-recursion terminates.
	b.fns[key] = inst

	for _, p := range inst.Params {
		b.collectType(p)
	}
	b.collectType(inst.Result)

	if fn, ok := b.astb.Items.Fn(info.Item); ok {
		b.walkStmts(inst, fn.Body, depth)
	}
	return inst
}

// instantiateCall resolves one generic call inside an instance body,
// producing (and naming) the concrete callee.
func (b *builder) instantiateCall(inst *FnInst, exprID ast.ExprID, depth int) {
	rec, ok := b.res.CallInsts[exprID]
	if !ok {
		return
	}
	concrete := make([]types.TypeID, len(rec.Args))
	for i, a := range rec.Args {
		concrete[i] = inst.Subst.Apply(b.in, a)
	}
	span := b.astb.Exprs.Get(exprID).Span
	target := b.requestFn(rec.Sym, concrete, depth+1, span)
	if target != nil {
		inst.CalleeNames[exprID] = target.Name
	}
}

// collectType records the struct and enum layouts a concrete type
// needs, recursing through composites.
func (b *builder) collectType(id types.TypeID) {
	t, ok := b.in.Lookup(id)
	if !ok {
		return
	}
	switch t.Kind {
	case types.KindArray, types.KindRef:
		b.collectType(t.Elem)
	case types.KindFn:
		for _, p := range t.Params {
			b.collectType(p)
		}
		b.collectType(t.Result)
	case types.KindStruct:
		b.instStruct(id, t)
	case types.KindEnum:
		b.instEnum(id, t)
	}
}

func (b *builder) instStruct(id types.TypeID, t types.Type) {
	info := b.res.StructOfDecl[t.Decl]
	if info == nil {
		return
	}
	key := makeKey(info.Sym, t.Args)
	if _, ok := b.structs[key]; ok {
		return
	}
	inst := &StructInst{
		Name: b.mangleType(b.name(info.Name), t.Args),
		Info: info,
		Args: slices.Clone(t.Args),
		Type: id,
	}
	b.structs[key] = inst
	ps := paramSubst(info.TypeParams, t.Args)
	for _, f := range info.Fields {
		ft := ps.Apply(b.in, f.Type)
		inst.Fields = append(inst.Fields, Field{Name: b.name(f.Name), Type: ft})
		b.collectType(ft)
	}
}

func (b *builder) instEnum(id types.TypeID, t types.Type) {
	info := b.res.EnumOfDecl[t.Decl]
	if info == nil {
		return
	}
	key := makeKey(info.Sym, t.Args)
	if _, ok := b.enums[key]; ok {
		return
	}
	inst := &EnumInst{
		Name: b.mangleType(b.name(info.Name), t.Args),
		Info: info,
		Args: slices.Clone(t.Args),
		Type: id,
	}
	b.enums[key] = inst
	ps := paramSubst(info.TypeParams, t.Args)
	for _, v := range info.Variants {
		vi := VariantInst{Name: b.name(v.Name), Form: v.Form}
		for _, elem := range v.Elems {
			et := ps.Apply(b.in, elem)
			vi.Elems = append(vi.Elems, et)
			b.collectType(et)
		}
		for _, f := range v.Fields {
			ft := ps.Apply(b.in, f.Type)
			vi.Fields = append(vi.Fields, Field{Name: b.name(f.Name), Type: ft})
			b.collectType(ft)
		}
		inst.Variants = append(inst.Variants, vi)
	}
}

func paramSubst(params []source.StringID, args []types.TypeID) types.ParamSubst {
	ps := make(types.ParamSubst, len(params))
	for i, p := range params {
		if i < len(args) {
			ps[p] = args[i]
		}
	}
	return ps
}
