package codegen

import (
	"fmt"
	"strings"

	"palladium/internal/ast"
	"palladium/internal/mono"
	"palladium/internal/symbols"
	"palladium/internal/types"
)

// fnEmitter renders one function instance. It owns the local name
// table and the loop stack that decides how a break statement lowers.
type fnEmitter struct {
	e    *emitter
	inst *mono.FnInst
	fn   *ast.ItemFnData

	name      string
	signature string
	body      strings.Builder

	locals map[symbols.SymbolID]string
	used   map[string]bool
	indent int
	tmp    int
	loops  []*loopFrame
}

// loopFrame tracks one enclosing loop. A break written inside a match
// arm sits inside the C switch, where a plain break would only leave
// the switch; those lower to a goto past the loop instead.
type loopFrame struct {
	label       string
	labelUsed   bool
	switchDepth int
}

var cReserved = map[string]bool{
	"auto": true, "break": true, "case": true, "char": true,
	"const": true, "continue": true, "default": true, "do": true,
	"double": true, "else": true, "enum": true, "extern": true,
	"float": true, "for": true, "goto": true, "if": true,
	"inline": true, "int": true, "long": true, "register": true,
	"restrict": true, "return": true, "short": true, "signed": true,
	"sizeof": true, "static": true, "struct": true, "switch": true,
	"typedef": true, "union": true, "unsigned": true, "void": true,
	"volatile": true, "while": true, "main": true,
}

func (e *emitter) prepareFn(inst *mono.FnInst) (*fnEmitter, error) {
	fn, ok := e.astb.Items.Fn(inst.Item)
	if !ok {
		return nil, fmt.Errorf("codegen: instance %s has no function item", inst.Name)
	}
	fe := &fnEmitter{
		e:      e,
		inst:   inst,
		fn:     fn,
		name:   emitName(inst.Name),
		locals: make(map[symbols.SymbolID]string),
		used:   make(map[string]bool),
	}

	ret := "void"
	if e.in.Kind(inst.Result) != types.KindUnit {
		var err error
		ret, err = e.cType(inst.Result)
		if err != nil {
			return nil, err
		}
	}
	paramSyms := e.res.Symbols.ParamSyms[inst.Item]
	var params []string
	for i, p := range fn.Params {
		if i >= len(inst.Params) || i >= len(paramSyms) {
			return nil, fmt.Errorf("codegen: %s: parameter count mismatch", inst.Name)
		}
		ct, err := e.cType(inst.Params[i])
		if err != nil {
			return nil, err
		}
		name := fe.bindLocal(paramSyms[i], e.astb.Strings.MustLookup(p.Name))
		params = append(params, ct+" "+name)
	}
	plist := "void"
	if len(params) > 0 {
		plist = strings.Join(params, ", ")
	}
	fe.signature = fmt.Sprintf("%s %s(%s)", ret, fe.name, plist)
	return fe, nil
}

// bindLocal assigns a C name for a binding symbol, renaming on clashes
// with earlier locals or C keywords.
func (fe *fnEmitter) bindLocal(sym symbols.SymbolID, base string) string {
	name := base
	for n := 2; cReserved[name] || fe.used[name]; n++ {
		name = fmt.Sprintf("%s_%d", base, n)
	}
	fe.used[name] = true
	fe.locals[sym] = name
	return name
}

func (fe *fnEmitter) fresh(prefix string) string {
	fe.tmp++
	return fmt.Sprintf("__%s%d", prefix, fe.tmp)
}

func (fe *fnEmitter) line(format string, args ...any) {
	for i := 0; i < fe.indent; i++ {
		fe.body.WriteString("    ")
	}
	fmt.Fprintf(&fe.body, format, args...)
	fe.body.WriteByte('\n')
}

func (fe *fnEmitter) typeOf(id ast.ExprID) types.TypeID {
	return fe.inst.TypeOf(fe.e.res, id)
}

func (fe *fnEmitter) emitBody() error {
	fe.line("%s {", fe.signature)
	fe.indent++
	if err := fe.stmts(fe.fn.Body); err != nil {
		return err
	}
	fe.indent--
	fe.line("}")
	fe.line("")
	return nil
}

func (fe *fnEmitter) stmts(body []ast.StmtID) error {
	for _, id := range body {
		if err := fe.stmt(id); err != nil {
			return err
		}
	}
	return nil
}

func (fe *fnEmitter) stmt(id ast.StmtID) error {
	st := fe.e.astb.Stmts.Get(id)
	if st == nil {
		return fmt.Errorf("codegen: invalid statement id %d", id)
	}
	switch st.Kind {
	case ast.StmtExpr:
		data, _ := fe.e.astb.Stmts.Expr(id)
		v, err := fe.expr(data.Expr)
		if err != nil {
			return err
		}
		fe.line("%s;", v)
		return nil

	case ast.StmtLet:
		data, _ := fe.e.astb.Stmts.Let(id)
		sym := fe.e.res.Symbols.LetSyms[id]
		t := fe.inst.BindingType(fe.e.res, sym)
		v, err := fe.expr(data.Value)
		if err != nil {
			return err
		}
		if fe.e.in.Kind(t) == types.KindUnit {
			fe.line("%s;", v)
			return nil
		}
		ct, err := fe.e.cType(t)
		if err != nil {
			return err
		}
		name := fe.bindLocal(sym, fe.e.astb.Strings.MustLookup(data.Name))
		fe.line("%s %s = %s;", ct, name, v)
		return nil

	case ast.StmtAssign:
		data, _ := fe.e.astb.Stmts.Assign(id)
		target, err := fe.expr(data.Target)
		if err != nil {
			return err
		}
		v, err := fe.expr(data.Value)
		if err != nil {
			return err
		}
		fe.line("%s = %s;", target, v)
		return nil

	case ast.StmtReturn:
		data, _ := fe.e.astb.Stmts.Return(id)
		if !data.Value.IsValid() {
			fe.line("return;")
			return nil
		}
		v, err := fe.expr(data.Value)
		if err != nil {
			return err
		}
		if fe.e.in.Kind(fe.inst.Result) == types.KindUnit {
			fe.line("%s;", v)
			fe.line("return;")
			return nil
		}
		fe.line("return %s;", v)
		return nil

	case ast.StmtIf:
		data, _ := fe.e.astb.Stmts.If(id)
		cond, err := fe.expr(data.Cond)
		if err != nil {
			return err
		}
		fe.line("if (%s) {", cond)
		fe.indent++
		if err := fe.stmts(data.Then); err != nil {
			return err
		}
		fe.indent--
		if data.HasElse {
			fe.line("} else {")
			fe.indent++
			if err := fe.stmts(data.Else); err != nil {
				return err
			}
			fe.indent--
		}
		fe.line("}")
		return nil

	case ast.StmtWhile:
		data, _ := fe.e.astb.Stmts.While(id)
		cond, err := fe.expr(data.Cond)
		if err != nil {
			return err
		}
		fe.line("while (%s) {", cond)
		return fe.loopBody(data.Body)

	case ast.StmtFor:
		return fe.emitFor(id)

	case ast.StmtMatch:
		return fe.emitMatch(id)

	case ast.StmtBreak:
		if len(fe.loops) == 0 {
			return fmt.Errorf("codegen: break outside loop")
		}
		top := fe.loops[len(fe.loops)-1]
		if top.switchDepth > 0 {
			top.labelUsed = true
			fe.line("goto %s;", top.label)
		} else {
			fe.line("break;")
		}
		return nil

	case ast.StmtContinue:
		fe.line("continue;")
		return nil
	}
	return fmt.Errorf("codegen: unhandled statement kind %d", st.Kind)
}

// loopBody finishes a loop whose header line is already written: the
// opening brace is open and indent has not been pushed yet.
func (fe *fnEmitter) loopBody(body []ast.StmtID) error {
	frame := &loopFrame{label: fe.fresh("brk")}
	fe.loops = append(fe.loops, frame)
	fe.indent++
	err := fe.stmts(body)
	fe.indent--
	fe.loops = fe.loops[:len(fe.loops)-1]
	if err != nil {
		return err
	}
	fe.line("}")
	if frame.labelUsed {
		fe.line("%s:;", frame.label)
	}
	return nil
}

func (fe *fnEmitter) emitFor(id ast.StmtID) error {
	data, _ := fe.e.astb.Stmts.For(id)
	sym := fe.e.res.Symbols.ForSyms[id]
	varName := fe.bindLocal(sym, fe.e.astb.Strings.MustLookup(data.Var))

	iter := fe.e.astb.Exprs.Get(data.Iter)
	if iter != nil && iter.Kind == ast.ExprRange {
		rng, _ := fe.e.astb.Exprs.Range(data.Iter)
		start, err := fe.expr(rng.Start)
		if err != nil {
			return err
		}
		end, err := fe.expr(rng.End)
		if err != nil {
			return err
		}
		endName := fe.fresh("end")
		fe.line("for (int64_t %s = %s, %s = %s; %s < %s; %s++) {",
			varName, start, endName, end, varName, endName, varName)
		return fe.loopBody(data.Body)
	}

	// Array iteration copies the array once and walks it by index.
	iterType := fe.typeOf(data.Iter)
	v, err := fe.expr(data.Iter)
	if err != nil {
		return err
	}
	elemType, derefs := fe.e.stripRefs(iterType)
	arr, ok := fe.e.in.Lookup(elemType)
	if !ok || arr.Kind != types.KindArray {
		return fmt.Errorf("codegen: for loop over non-iterable type %s",
			fe.e.in.Format(fe.e.astb.Strings, iterType))
	}
	arrCT, err := fe.e.cType(elemType)
	if err != nil {
		return err
	}
	elemCT, err := fe.e.cType(arr.Elem)
	if err != nil {
		return err
	}
	arrName := fe.fresh("it")
	idxName := fe.fresh("i")
	fe.line("{")
	fe.indent++
	fe.line("%s %s = %s;", arrCT, arrName, deref(v, derefs))
	fe.line("for (size_t %s = 0; %s < %d; %s++) {", idxName, idxName, arr.Size, idxName)
	elemInit := fmt.Sprintf("%s %s = %s.data[%s];", elemCT, varName, arrName, idxName)
	frame := &loopFrame{label: fe.fresh("brk")}
	fe.loops = append(fe.loops, frame)
	fe.indent++
	fe.line("%s", elemInit)
	err = fe.stmts(data.Body)
	fe.indent--
	fe.loops = fe.loops[:len(fe.loops)-1]
	if err != nil {
		return err
	}
	fe.line("}")
	if frame.labelUsed {
		fe.line("%s:;", frame.label)
	}
	fe.indent--
	fe.line("}")
	return nil
}

// stripRefs peels reference layers, returning the pointee type and the
// number of derefs needed to reach it.
func (e *emitter) stripRefs(id types.TypeID) (types.TypeID, int) {
	n := 0
	for {
		t, ok := e.in.Lookup(id)
		if !ok || t.Kind != types.KindRef {
			return id, n
		}
		id = t.Elem
		n++
	}
}

func deref(expr string, n int) string {
	for i := 0; i < n; i++ {
		expr = "(*" + expr + ")"
	}
	return expr
}
