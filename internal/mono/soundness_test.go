package mono_test

import (
	"fmt"
	"math/rand"
	"strings"
	"testing"

	"palladium/internal/ast"
	"palladium/internal/diag"
	"palladium/internal/mono"
	"palladium/internal/parser"
	"palladium/internal/sema"
	"palladium/internal/source"
	"palladium/internal/symbols"
	"palladium/internal/types"
)

// progGen builds random programs that are well typed by construction:
// function bodies return a parameter or a literal of the result type,
// and call sites only ever supply arguments of the parameter's type.
type progGen struct {
	r       *rand.Rand
	strLits int
	fns     []genFn
}

type genFn struct {
	name   string
	params []string
	result string
}

var genPrims = []string{"i64", "bool", "String"}

func (g *progGen) prim() string {
	return genPrims[g.r.Intn(len(genPrims))]
}

func (g *progGen) literal(typ string) string {
	switch typ {
	case "i64":
		return fmt.Sprintf("%d", g.r.Intn(100))
	case "bool":
		if g.r.Intn(2) == 0 {
			return "true"
		}
		return "false"
	default:
		g.strLits++
		return fmt.Sprintf("%q", fmt.Sprintf("s%d", g.strLits))
	}
}

// expr produces a random expression of the wanted type, nesting calls
// up to the given depth.
func (g *progGen) expr(want string, depth int) string {
	if depth == 0 {
		return g.literal(want)
	}
	switch g.r.Intn(4) {
	case 0:
		return g.literal(want)
	case 1:
		return fmt.Sprintf("lift(%s)", g.expr(want, depth-1))
	case 2:
		return fmt.Sprintf("pick(%s, %s)", g.expr(want, depth-1), g.expr(want, depth-1))
	default:
		var fits []genFn
		for _, fn := range g.fns {
			if fn.result == want {
				fits = append(fits, fn)
			}
		}
		if len(fits) == 0 {
			return g.literal(want)
		}
		fn := fits[g.r.Intn(len(fits))]
		args := make([]string, len(fn.params))
		for i, p := range fn.params {
			args[i] = g.expr(p, depth-1)
		}
		return fmt.Sprintf("%s(%s)", fn.name, strings.Join(args, ", "))
	}
}

func (g *progGen) source() string {
	var b strings.Builder
	b.WriteString("fn lift<T>(v: T) -> T { return v; }\n")
	b.WriteString("fn pick<T>(a: T, b: T) -> T { return a; }\n")

	nFns := 3 + g.r.Intn(4)
	for i := 0; i < nFns; i++ {
		fn := genFn{name: fmt.Sprintf("f%d", i), result: g.prim()}
		for p := 0; p < g.r.Intn(4); p++ {
			fn.params = append(fn.params, g.prim())
		}
		g.fns = append(g.fns, fn)

		ret := g.literal(fn.result)
		params := make([]string, len(fn.params))
		for p, typ := range fn.params {
			params[p] = fmt.Sprintf("p%d: %s", p, typ)
			if typ == fn.result {
				ret = fmt.Sprintf("p%d", p)
			}
		}
		fmt.Fprintf(&b, "fn %s(%s) -> %s { return %s; }\n",
			fn.name, strings.Join(params, ", "), fn.result, ret)
	}

	b.WriteString("fn main() {\n")
	nLets := 4 + g.r.Intn(6)
	for i := 0; i < nLets; i++ {
		fmt.Fprintf(&b, "    let x%d = %s;\n", i, g.expr(g.prim(), 2+g.r.Intn(2)))
	}
	b.WriteString("}\n")
	return b.String()
}

// callSiteChecker walks an instance body and verifies every resolved
// call against the concrete signature of its target instance.
type callSiteChecker struct {
	t      *testing.T
	astb   *ast.Builder
	res    *sema.Result
	inst   *mono.FnInst
	byName map[string]*mono.FnInst
	bySym  map[symbols.SymbolID]*mono.FnInst
}

func (cc *callSiteChecker) stmts(ids []ast.StmtID) {
	stmts := cc.astb.Stmts
	for _, id := range ids {
		switch stmts.Get(id).Kind {
		case ast.StmtExpr:
			data, _ := stmts.Expr(id)
			cc.expr(data.Expr)
		case ast.StmtLet:
			data, _ := stmts.Let(id)
			cc.expr(data.Value)
		case ast.StmtAssign:
			data, _ := stmts.Assign(id)
			cc.expr(data.Target)
			cc.expr(data.Value)
		case ast.StmtReturn:
			data, _ := stmts.Return(id)
			cc.expr(data.Value)
		case ast.StmtIf:
			data, _ := stmts.If(id)
			cc.expr(data.Cond)
			cc.stmts(data.Then)
			cc.stmts(data.Else)
		case ast.StmtWhile:
			data, _ := stmts.While(id)
			cc.expr(data.Cond)
			cc.stmts(data.Body)
		case ast.StmtFor:
			data, _ := stmts.For(id)
			cc.expr(data.Iter)
			cc.stmts(data.Body)
		case ast.StmtMatch:
			data, _ := stmts.Match(id)
			cc.expr(data.Scrutinee)
			for _, arm := range data.Arms {
				cc.stmts(arm.Body)
			}
		}
	}
}

func (cc *callSiteChecker) expr(id ast.ExprID) {
	if !id.IsValid() {
		return
	}
	exprs := cc.astb.Exprs
	switch exprs.Get(id).Kind {
	case ast.ExprUnary:
		data, _ := exprs.Unary(id)
		cc.expr(data.Operand)
	case ast.ExprBinary:
		data, _ := exprs.Binary(id)
		cc.expr(data.Left)
		cc.expr(data.Right)
	case ast.ExprCall:
		data, _ := exprs.Call(id)
		cc.checkCall(id, data)
		for _, arg := range data.Args {
			cc.expr(arg)
		}
	case ast.ExprIndex:
		data, _ := exprs.Index(id)
		cc.expr(data.Array)
		cc.expr(data.Index)
	case ast.ExprField:
		data, _ := exprs.Field(id)
		cc.expr(data.Object)
	case ast.ExprStructLit:
		data, _ := exprs.StructLit(id)
		for _, f := range data.Fields {
			cc.expr(f.Value)
		}
	case ast.ExprEnumCtor:
		data, _ := exprs.EnumCtor(id)
		for _, arg := range data.Args {
			cc.expr(arg)
		}
		for _, f := range data.Fields {
			cc.expr(f.Value)
		}
	case ast.ExprArrayLit:
		data, _ := exprs.ArrayLit(id)
		for _, elem := range data.Elems {
			cc.expr(elem)
		}
	case ast.ExprArrayRepeat:
		data, _ := exprs.ArrayRepeat(id)
		cc.expr(data.Value)
		cc.expr(data.Count)
	case ast.ExprRange:
		data, _ := exprs.Range(id)
		cc.expr(data.Start)
		cc.expr(data.End)
	case ast.ExprBorrow:
		data, _ := exprs.Borrow(id)
		cc.expr(data.Operand)
	}
}

func (cc *callSiteChecker) checkCall(id ast.ExprID, data *ast.ExprCallData) {
	sym, ok := cc.res.Symbols.ExprSyms[data.Callee]
	if !ok {
		return
	}
	s := cc.res.Symbols.Symbol(sym)
	if s == nil || s.Kind != symbols.SymbolFunction {
		return
	}
	info := cc.res.Fns[sym]
	if info == nil || info.Builtin != symbols.BuiltinNone {
		return
	}
	var target *mono.FnInst
	if name, rewritten := cc.inst.CalleeNames[id]; rewritten {
		target = cc.byName[name]
	} else {
		target = cc.bySym[sym]
	}
	if target == nil {
		cc.t.Fatalf("%s: call has no resolved instance", cc.inst.Name)
	}
	if len(data.Args) != len(target.Params) {
		cc.t.Fatalf("%s calls %s with %d args, signature has %d",
			cc.inst.Name, target.Name, len(data.Args), len(target.Params))
	}
	fmtType := func(id types.TypeID) string {
		return cc.res.Types.Format(cc.astb.Strings, id)
	}
	for i, arg := range data.Args {
		got := cc.inst.TypeOf(cc.res, arg)
		if got != target.Params[i] {
			cc.t.Fatalf("%s calls %s: arg %d is %s, parameter wants %s",
				cc.inst.Name, target.Name, i, fmtType(got), fmtType(target.Params[i]))
		}
	}
	if got := cc.inst.TypeOf(cc.res, id); got != target.Result {
		cc.t.Fatalf("%s calls %s: call typed %s, instance returns %s",
			cc.inst.Name, target.Name, fmtType(got), fmtType(target.Result))
	}
}

func TestMonoRandomProgramsCallSitesConcrete(t *testing.T) {
	for seed := int64(0); seed < 8; seed++ {
		g := &progGen{r: rand.New(rand.NewSource(seed))}
		src := g.source()

		fs := source.NewFileSet()
		id := fs.AddVirtual("gen.pd", []byte(src))
		builder := ast.NewBuilder(ast.Hints{}, nil)
		bag := diag.NewBag(64)
		reporter := &diag.BagReporter{Bag: bag}
		res := parser.ParseFile(fs.Get(id), builder, reporter)
		if !res.OK {
			t.Fatalf("seed %d: parse failed: %v\n%s", seed, bag.Items(), src)
		}
		files := []ast.FileID{res.File}
		syms := symbols.Resolve(builder, files, symbols.Options{Reporter: reporter})
		checked := sema.Check(builder, files, sema.Options{Reporter: reporter, Symbols: syms})
		if bag.HasErrors() {
			t.Fatalf("seed %d: check failed: %v\n%s", seed, bag.Items(), src)
		}
		prog, err := mono.Monomorphize(builder, checked, mono.Options{})
		if err != nil {
			t.Fatalf("seed %d: monomorphize: %v", seed, err)
		}

		byName := make(map[string]*mono.FnInst, len(prog.Fns))
		bySym := make(map[symbols.SymbolID]*mono.FnInst)
		for _, inst := range prog.Fns {
			byName[inst.Name] = inst
			if len(inst.Args) == 0 {
				bySym[inst.Sym] = inst
			}
		}
		for _, inst := range prog.Fns {
			fn, ok := builder.Items.Fn(inst.Item)
			if !ok {
				continue
			}
			cc := &callSiteChecker{
				t:      t,
				astb:   builder,
				res:    checked,
				inst:   inst,
				byName: byName,
				bySym:  bySym,
			}
			cc.stmts(fn.Body)
		}
	}
}
