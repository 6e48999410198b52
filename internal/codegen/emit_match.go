package codegen

import (
	"fmt"
	"strings"

	"palladium/internal/ast"
	"palladium/internal/mono"
	"palladium/internal/types"
)

// emitMatch lowers a match statement to a switch on the enum tag. Arms
// with nested constructor patterns become guarded blocks inside their
// case; when no guard fires the case jumps to the catch-all arm.
func (fe *fnEmitter) emitMatch(id ast.StmtID) error {
	data, _ := fe.e.astb.Stmts.Match(id)
	scrType := fe.typeOf(data.Scrutinee)
	v, err := fe.expr(data.Scrutinee)
	if err != nil {
		return err
	}
	base, derefs := fe.e.stripRefs(scrType)
	bt, ok := fe.e.in.Lookup(base)
	if !ok {
		return fmt.Errorf("codegen: match scrutinee has invalid type")
	}
	if bt.Kind != types.KindEnum {
		return fe.emitMatchCatchAll(data, base, deref(v, derefs))
	}
	en, ok := fe.e.enums[base]
	if !ok {
		return fmt.Errorf("codegen: enum %s was not collected",
			fe.e.in.Format(fe.e.astb.Strings, base))
	}
	enCT, err := fe.e.cType(base)
	if err != nil {
		return err
	}

	tagArms := make(map[int][]int)
	caIdx := -1
	for i, arm := range data.Arms {
		if caIdx >= 0 {
			continue
		}
		p := fe.e.astb.Pats.Get(arm.Pattern)
		switch p.Kind {
		case ast.PatWildcard:
			caIdx = i
		case ast.PatBinding:
			if sym, found := fe.e.res.Symbols.PatSyms[arm.Pattern]; found {
				tag := fe.e.res.Symbols.Symbol(sym).Variant
				tagArms[tag] = append(tagArms[tag], i)
			} else {
				caIdx = i
			}
		case ast.PatEnum:
			sym, found := fe.e.res.Symbols.PatSyms[arm.Pattern]
			if !found {
				return fmt.Errorf("codegen: unresolved constructor pattern")
			}
			tag := fe.e.res.Symbols.Symbol(sym).Variant
			tagArms[tag] = append(tagArms[tag], i)
		}
	}

	scr := fe.fresh("scr")
	caLabel := fe.fresh("arm")
	needLabel := false

	fe.line("{")
	fe.indent++
	fe.line("%s %s = %s;", enCT, scr, deref(v, derefs))
	if len(fe.loops) > 0 {
		top := fe.loops[len(fe.loops)-1]
		top.switchDepth++
		defer func() { top.switchDepth-- }()
	}
	fe.line("switch (%s.tag) {", scr)

	for tag := range en.Variants {
		arms := tagArms[tag]
		if len(arms) == 0 {
			continue
		}
		fe.line("case %d: {", tag)
		fe.indent++
		matched := false
		for _, ai := range arms {
			arm := data.Arms[ai]
			conds, binds, err := fe.compilePattern(arm.Pattern, scr, base, false)
			if err != nil {
				return err
			}
			if len(conds) == 0 {
				for _, b := range binds {
					fe.line("%s", b)
				}
				if err := fe.stmts(arm.Body); err != nil {
					return err
				}
				matched = true
				break
			}
			fe.line("if (%s) {", strings.Join(conds, " && "))
			fe.indent++
			for _, b := range binds {
				fe.line("%s", b)
			}
			if err := fe.stmts(arm.Body); err != nil {
				return err
			}
			fe.line("break;")
			fe.indent--
			fe.line("}")
		}
		if !matched && caIdx >= 0 {
			needLabel = true
			fe.line("goto %s;", caLabel)
		}
		fe.indent--
		fe.line("} break;")
	}

	if caIdx >= 0 {
		arm := data.Arms[caIdx]
		fe.line("default: {")
		fe.indent++
		if needLabel {
			fe.line("%s:;", caLabel)
		}
		if err := fe.bindCatchAll(arm.Pattern, scr, base); err != nil {
			return err
		}
		if err := fe.stmts(arm.Body); err != nil {
			return err
		}
		fe.indent--
		fe.line("} break;")
	} else {
		fe.line("default: break;")
	}

	fe.line("}")
	fe.indent--
	fe.line("}")
	return nil
}

// emitMatchCatchAll handles a match over a non-enum scrutinee, which
// only the first wildcard or binding arm can take.
func (fe *fnEmitter) emitMatchCatchAll(data *ast.StmtMatchData, scrType types.TypeID, v string) error {
	for _, arm := range data.Arms {
		p := fe.e.astb.Pats.Get(arm.Pattern)
		if p.Kind == ast.PatEnum {
			continue
		}
		if p.Kind == ast.PatBinding {
			if _, promoted := fe.e.res.Symbols.PatSyms[arm.Pattern]; promoted {
				continue
			}
		}
		fe.line("{")
		fe.indent++
		scr := v
		if fe.e.in.Kind(scrType) == types.KindUnit {
			fe.line("%s;", v)
		} else {
			ct, err := fe.e.cType(scrType)
			if err != nil {
				return err
			}
			scr = fe.fresh("scr")
			fe.line("%s %s = %s;", ct, scr, v)
		}
		if err := fe.bindCatchAll(arm.Pattern, scr, scrType); err != nil {
			return err
		}
		if err := fe.stmts(arm.Body); err != nil {
			return err
		}
		fe.indent--
		fe.line("}")
		return nil
	}
	return fmt.Errorf("codegen: match over non-enum value lacks a catch-all arm")
}

func (fe *fnEmitter) bindCatchAll(pat ast.PatID, value string, t types.TypeID) error {
	p := fe.e.astb.Pats.Get(pat)
	if p.Kind != ast.PatBinding {
		return nil
	}
	sym, ok := fe.e.res.Symbols.PatBinds[pat]
	if !ok {
		return fmt.Errorf("codegen: binding pattern without a symbol")
	}
	ct, err := fe.e.cType(t)
	if err != nil {
		return err
	}
	data, _ := fe.e.astb.Pats.Binding(pat)
	name := fe.bindLocal(sym, fe.e.astb.Strings.MustLookup(data.Name))
	fe.line("%s %s = %s;", ct, name, value)
	return nil
}

// compilePattern flattens one pattern into tag conditions plus binding
// declarations against the value at path. The top-level tag test is
// omitted when the surrounding case already established it.
func (fe *fnEmitter) compilePattern(pat ast.PatID, path string, t types.TypeID, withTag bool) (conds, binds []string, err error) {
	p := fe.e.astb.Pats.Get(pat)
	switch p.Kind {
	case ast.PatWildcard:
		return nil, nil, nil

	case ast.PatBinding:
		if sym, promoted := fe.e.res.Symbols.PatSyms[pat]; promoted {
			if withTag {
				tag := fe.e.res.Symbols.Symbol(sym).Variant
				conds = append(conds, fmt.Sprintf("%s.tag == %d", path, tag))
			}
			return conds, nil, nil
		}
		sym, ok := fe.e.res.Symbols.PatBinds[pat]
		if !ok {
			return nil, nil, fmt.Errorf("codegen: binding pattern without a symbol")
		}
		ct, cerr := fe.e.cType(t)
		if cerr != nil {
			return nil, nil, cerr
		}
		data, _ := fe.e.astb.Pats.Binding(pat)
		name := fe.bindLocal(sym, fe.e.astb.Strings.MustLookup(data.Name))
		binds = append(binds, fmt.Sprintf("%s %s = %s;", ct, name, path))
		return nil, binds, nil

	case ast.PatEnum:
		sym, found := fe.e.res.Symbols.PatSyms[pat]
		if !found {
			return nil, nil, fmt.Errorf("codegen: unresolved constructor pattern")
		}
		en, ok := fe.e.enums[t]
		if !ok {
			return nil, nil, fmt.Errorf("codegen: enum %s was not collected",
				fe.e.in.Format(fe.e.astb.Strings, t))
		}
		tag := fe.e.res.Symbols.Symbol(sym).Variant
		if tag < 0 || tag >= len(en.Variants) {
			return nil, nil, fmt.Errorf("codegen: variant tag %d out of range for %s", tag, en.Name)
		}
		vi := en.Variants[tag]
		if withTag {
			conds = append(conds, fmt.Sprintf("%s.tag == %d", path, tag))
		}
		data, _ := fe.e.astb.Pats.Enum(pat)
		for i, sub := range data.Sub {
			if i >= len(vi.Elems) {
				return nil, nil, fmt.Errorf("codegen: pattern arity exceeds %s.%s", en.Name, vi.Name)
			}
			subPath := fmt.Sprintf("%s.payload.%s.v%d", path, vi.Name, i)
			c, b, serr := fe.compilePattern(sub, subPath, vi.Elems[i], true)
			if serr != nil {
				return nil, nil, serr
			}
			conds = append(conds, c...)
			binds = append(binds, b...)
		}
		for _, pf := range data.Fields {
			fname := fe.e.astb.Strings.MustLookup(pf.Name)
			ft, ok := variantFieldType(vi, fname)
			if !ok {
				return nil, nil, fmt.Errorf("codegen: no field %s on %s.%s", fname, en.Name, vi.Name)
			}
			subPath := fmt.Sprintf("%s.payload.%s.%s", path, vi.Name, fname)
			c, b, serr := fe.compilePattern(pf.Pat, subPath, ft, true)
			if serr != nil {
				return nil, nil, serr
			}
			conds = append(conds, c...)
			binds = append(binds, b...)
		}
		return conds, binds, nil
	}
	return nil, nil, fmt.Errorf("codegen: unhandled pattern kind %d", p.Kind)
}

func variantFieldType(vi mono.VariantInst, name string) (types.TypeID, bool) {
	for _, f := range vi.Fields {
		if f.Name == name {
			return f.Type, true
		}
	}
	return 0, false
}
