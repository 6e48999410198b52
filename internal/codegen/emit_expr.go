package codegen

import (
	"fmt"
	"strconv"
	"strings"

	"palladium/internal/ast"
	"palladium/internal/mono"
	"palladium/internal/rtabi"
	"palladium/internal/symbols"
	"palladium/internal/types"
)

// expr renders an expression as C text. Every composite form is
// parenthesized so the result embeds anywhere without precedence
// surprises.
func (fe *fnEmitter) expr(id ast.ExprID) (string, error) {
	ex := fe.e.astb.Exprs.Get(id)
	if ex == nil {
		return "", fmt.Errorf("codegen: invalid expression id %d", id)
	}
	switch ex.Kind {
	case ast.ExprIntLit:
		data, _ := fe.e.astb.Exprs.Int(id)
		return strconv.FormatInt(data.Value, 10), nil

	case ast.ExprStringLit:
		data, _ := fe.e.astb.Exprs.String(id)
		return cStringLit(fe.e.astb.Strings.MustLookup(data.Value)), nil

	case ast.ExprBoolLit:
		data, _ := fe.e.astb.Exprs.Bool(id)
		if data.Value {
			return "1", nil
		}
		return "0", nil

	case ast.ExprIdent:
		return fe.emitIdent(id)

	case ast.ExprUnary:
		data, _ := fe.e.astb.Exprs.Unary(id)
		v, err := fe.expr(data.Operand)
		if err != nil {
			return "", err
		}
		switch data.Op {
		case ast.UnaryNeg:
			return "(-" + v + ")", nil
		case ast.UnaryNot:
			return "(!" + v + ")", nil
		case ast.UnaryDeref:
			return "(*" + v + ")", nil
		}
		return "", fmt.Errorf("codegen: unhandled unary operator %s", data.Op)

	case ast.ExprBinary:
		return fe.emitBinary(id)

	case ast.ExprCall:
		return fe.emitCall(id)

	case ast.ExprIndex:
		data, _ := fe.e.astb.Exprs.Index(id)
		base, err := fe.expr(data.Array)
		if err != nil {
			return "", err
		}
		idx, err := fe.expr(data.Index)
		if err != nil {
			return "", err
		}
		_, derefs := fe.e.stripRefs(fe.typeOf(data.Array))
		return fmt.Sprintf("%s.data[%s]", deref(base, derefs), idx), nil

	case ast.ExprField:
		data, _ := fe.e.astb.Exprs.Field(id)
		base, err := fe.expr(data.Object)
		if err != nil {
			return "", err
		}
		_, derefs := fe.e.stripRefs(fe.typeOf(data.Object))
		name := fe.e.astb.Strings.MustLookup(data.Name)
		return deref(base, derefs) + "." + name, nil

	case ast.ExprStructLit:
		return fe.emitStructLit(id)

	case ast.ExprEnumCtor:
		data, _ := fe.e.astb.Exprs.EnumCtor(id)
		return fe.emitCtorCall(id, data.Form, data.Args, data.Fields)

	case ast.ExprArrayLit:
		return fe.emitArrayLit(id)

	case ast.ExprArrayRepeat:
		return fe.emitArrayRepeat(id)

	case ast.ExprBorrow:
		data, _ := fe.e.astb.Exprs.Borrow(id)
		v, err := fe.expr(data.Operand)
		if err != nil {
			return "", err
		}
		return "(&" + v + ")", nil

	case ast.ExprRange:
		return "", fmt.Errorf("codegen: range expression outside a for loop")
	}
	return "", fmt.Errorf("codegen: unhandled expression kind %d", ex.Kind)
}

func (fe *fnEmitter) emitIdent(id ast.ExprID) (string, error) {
	sym, ok := fe.e.res.Symbols.ExprSyms[id]
	if !ok {
		return "", fmt.Errorf("codegen: unresolved identifier")
	}
	s := fe.e.res.Symbols.Symbol(sym)
	switch s.Kind {
	case symbols.SymbolLet, symbols.SymbolParam:
		name, ok := fe.locals[sym]
		if !ok {
			return "", fmt.Errorf("codegen: binding %s has no local slot",
				fe.e.astb.Strings.MustLookup(s.Name))
		}
		return name, nil
	case symbols.SymbolVariant:
		// Bare variant name, unit constructor.
		return fe.emitCtorCall(id, ast.CtorUnit, nil, nil)
	case symbols.SymbolFunction:
		if s.Builtin != symbols.BuiltinNone {
			return rtabi.Symbol(s.Builtin), nil
		}
		return emitName(fe.e.astb.Strings.MustLookup(s.Name)), nil
	}
	return "", fmt.Errorf("codegen: identifier resolves to %s symbol", s.Kind)
}

func (fe *fnEmitter) emitBinary(id ast.ExprID) (string, error) {
	data, _ := fe.e.astb.Exprs.Binary(id)
	l, err := fe.expr(data.Left)
	if err != nil {
		return "", err
	}
	r, err := fe.expr(data.Right)
	if err != nil {
		return "", err
	}
	if fe.e.in.Kind(fe.typeOf(data.Left)) == types.KindString {
		switch data.Op {
		case ast.BinaryAdd:
			return fmt.Sprintf("%s(%s, %s)", rtabi.Symbol(symbols.BuiltinStringConcat), l, r), nil
		case ast.BinaryEq:
			return fmt.Sprintf("%s(%s, %s)", rtabi.Symbol(symbols.BuiltinStringEq), l, r), nil
		case ast.BinaryNe:
			return fmt.Sprintf("(!%s(%s, %s))", rtabi.Symbol(symbols.BuiltinStringEq), l, r), nil
		}
	}
	return fmt.Sprintf("(%s %s %s)", l, data.Op, r), nil
}

func (fe *fnEmitter) emitCall(id ast.ExprID) (string, error) {
	data, _ := fe.e.astb.Exprs.Call(id)
	calleeSym, ok := fe.e.res.Symbols.ExprSyms[data.Callee]
	if !ok {
		return "", fmt.Errorf("codegen: unresolved callee")
	}
	s := fe.e.res.Symbols.Symbol(calleeSym)
	if s.Kind == symbols.SymbolVariant {
		return fe.ctorName(id, s)
	}

	args := make([]string, 0, len(data.Args))
	for _, a := range data.Args {
		v, err := fe.expr(a)
		if err != nil {
			return "", err
		}
		args = append(args, v)
	}
	switch s.Kind {
	case symbols.SymbolFunction:
		var name string
		switch {
		case s.Builtin != symbols.BuiltinNone:
			name = rtabi.Symbol(s.Builtin)
		default:
			if n, rewritten := fe.inst.CalleeNames[id]; rewritten {
				name = emitName(n)
			} else {
				name = emitName(fe.e.astb.Strings.MustLookup(s.Name))
			}
		}
		return fmt.Sprintf("%s(%s)", name, strings.Join(args, ", ")), nil
	}
	return "", fmt.Errorf("codegen: call to %s symbol", s.Kind)
}

// ctorName resolves the constructor helper for a variant call and
// applies the already-rendered arguments.
func (fe *fnEmitter) ctorName(callID ast.ExprID, s *symbols.Symbol) (string, error) {
	data, _ := fe.e.astb.Exprs.Call(callID)
	args := make([]string, 0, len(data.Args))
	for _, a := range data.Args {
		v, err := fe.expr(a)
		if err != nil {
			return "", err
		}
		args = append(args, v)
	}
	en, _, err := fe.enumOf(callID)
	if err != nil {
		return "", err
	}
	vname := fe.e.astb.Strings.MustLookup(s.Name)
	return fmt.Sprintf("%s_%s(%s)", en.Name, vname, strings.Join(args, ", ")), nil
}

// enumOf resolves the enum layout an expression produces.
func (fe *fnEmitter) enumOf(id ast.ExprID) (*mono.EnumInst, types.TypeID, error) {
	t := fe.typeOf(id)
	en, ok := fe.e.enums[t]
	if !ok {
		return nil, 0, fmt.Errorf("codegen: enum %s was not collected",
			fe.e.in.Format(fe.e.astb.Strings, t))
	}
	return en, t, nil
}

// emitCtorCall renders a constructor expression, whether written as a
// qualified path, a bare variant name or a call.
func (fe *fnEmitter) emitCtorCall(id ast.ExprID, form ast.CtorForm, args []ast.ExprID, fields []ast.FieldInit) (string, error) {
	en, _, err := fe.enumOf(id)
	if err != nil {
		return "", err
	}
	sym, ok := fe.e.res.Symbols.ExprSyms[id]
	if !ok {
		return "", fmt.Errorf("codegen: unresolved constructor")
	}
	s := fe.e.res.Symbols.Symbol(sym)
	tag := s.Variant
	if tag < 0 || tag >= len(en.Variants) {
		return "", fmt.Errorf("codegen: variant tag %d out of range for %s", tag, en.Name)
	}
	vi := en.Variants[tag]

	rendered := make([]string, 0, len(args)+len(fields))
	switch form {
	case ast.CtorUnit:
	case ast.CtorTuple:
		for _, a := range args {
			v, err := fe.expr(a)
			if err != nil {
				return "", err
			}
			rendered = append(rendered, v)
		}
	case ast.CtorStruct:
		// Helper parameters follow declaration order, not write order.
		for _, f := range vi.Fields {
			init, found := findInit(fe, fields, f.Name)
			if !found {
				return "", fmt.Errorf("codegen: missing field %s in %s.%s", f.Name, en.Name, vi.Name)
			}
			v, err := fe.expr(init)
			if err != nil {
				return "", err
			}
			rendered = append(rendered, v)
		}
	}
	return fmt.Sprintf("%s_%s(%s)", en.Name, vi.Name, strings.Join(rendered, ", ")), nil
}

func findInit(fe *fnEmitter, fields []ast.FieldInit, name string) (ast.ExprID, bool) {
	for _, f := range fields {
		if fe.e.astb.Strings.MustLookup(f.Name) == name {
			return f.Value, true
		}
	}
	return ast.NoExprID, false
}

func (fe *fnEmitter) emitStructLit(id ast.ExprID) (string, error) {
	data, _ := fe.e.astb.Exprs.StructLit(id)
	t := fe.typeOf(id)
	name, ok := fe.e.typeNames[t]
	if !ok {
		return "", fmt.Errorf("codegen: struct %s was not collected",
			fe.e.in.Format(fe.e.astb.Strings, t))
	}
	if len(data.Fields) == 0 {
		return fmt.Sprintf("(%s){0}", name), nil
	}
	inits := make([]string, 0, len(data.Fields))
	for _, f := range data.Fields {
		v, err := fe.expr(f.Value)
		if err != nil {
			return "", err
		}
		inits = append(inits, fmt.Sprintf(".%s = %s", fe.e.astb.Strings.MustLookup(f.Name), v))
	}
	return fmt.Sprintf("(%s){%s}", name, strings.Join(inits, ", ")), nil
}

func (fe *fnEmitter) emitArrayLit(id ast.ExprID) (string, error) {
	data, _ := fe.e.astb.Exprs.ArrayLit(id)
	ct, err := fe.e.cType(fe.typeOf(id))
	if err != nil {
		return "", err
	}
	if len(data.Elems) == 0 {
		return fmt.Sprintf("(%s){0}", ct), nil
	}
	elems := make([]string, 0, len(data.Elems))
	for _, el := range data.Elems {
		v, err := fe.expr(el)
		if err != nil {
			return "", err
		}
		elems = append(elems, v)
	}
	return fmt.Sprintf("(%s){{%s}}", ct, strings.Join(elems, ", ")), nil
}

func (fe *fnEmitter) emitArrayRepeat(id ast.ExprID) (string, error) {
	data, _ := fe.e.astb.Exprs.ArrayRepeat(id)
	ct, err := fe.e.cType(fe.typeOf(id))
	if err != nil {
		return "", err
	}
	v, err := fe.expr(data.Value)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%s_repeat(%s)", ct, v), nil
}

// cStringLit renders a Go string as a C string literal.
func cStringLit(s string) string {
	var b strings.Builder
	b.WriteByte('"')
	for i := 0; i < len(s); i++ {
		c := s[i]
		switch c {
		case '"':
			b.WriteString(`\"`)
		case '\\':
			b.WriteString(`\\`)
		case '\n':
			b.WriteString(`\n`)
		case '\t':
			b.WriteString(`\t`)
		case '\r':
			b.WriteString(`\r`)
		default:
			if c < 0x20 || c == 0x7f {
				// Octal, not \x: hex escapes in C swallow every
				// following hex digit, so "\x01a" is one byte.
				fmt.Fprintf(&b, `\%03o`, c)
			} else {
				b.WriteByte(c)
			}
		}
	}
	b.WriteByte('"')
	return b.String()
}
