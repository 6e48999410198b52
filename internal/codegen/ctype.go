package codegen

import (
	"fmt"
	"slices"
	"strings"

	"palladium/internal/mono"
	"palladium/internal/types"
)

// cType maps a concrete type to its C spelling. Nominal and array
// types must have been collected before emission; a miss is an
// internal error.
func (e *emitter) cType(id types.TypeID) (string, error) {
	t, ok := e.in.Lookup(id)
	if !ok {
		return "", fmt.Errorf("codegen: invalid type id %d", id)
	}
	switch t.Kind {
	case types.KindUnit:
		return "void", nil
	case types.KindBool:
		return "int", nil
	case types.KindI32:
		return "int32_t", nil
	case types.KindI64:
		return "int64_t", nil
	case types.KindU32:
		return "uint32_t", nil
	case types.KindU64:
		return "uint64_t", nil
	case types.KindString:
		return "const char*", nil
	case types.KindRef:
		elem, err := e.cType(t.Elem)
		if err != nil {
			return "", err
		}
		return elem + "*", nil
	case types.KindArray:
		return e.arrayName(id, t)
	case types.KindStruct, types.KindEnum:
		name, ok := e.typeNames[id]
		if !ok {
			return "", fmt.Errorf("codegen: type %s was not collected", e.in.Format(e.astb.Strings, id))
		}
		return name, nil
	default:
		return "", fmt.Errorf("codegen: cannot lower type %s", e.in.Format(e.astb.Strings, id))
	}
}

func (e *emitter) arrayName(id types.TypeID, t types.Type) (string, error) {
	if def, ok := e.arrays[id]; ok {
		return def.name, nil
	}
	suffix, err := e.typeTag(t.Elem)
	if err != nil {
		return "", err
	}
	def := &arrayDef{
		name: fmt.Sprintf("arr%d_%s", t.Size, suffix),
		elem: t.Elem,
		size: t.Size,
	}
	e.arrays[id] = def
	return def.name, nil
}

// typeTag renders a type as an identifier fragment for derived names.
func (e *emitter) typeTag(id types.TypeID) (string, error) {
	t, ok := e.in.Lookup(id)
	if !ok {
		return "", fmt.Errorf("codegen: invalid type id %d", id)
	}
	switch t.Kind {
	case types.KindUnit:
		return "unit", nil
	case types.KindBool:
		return "bool", nil
	case types.KindI32:
		return "i32", nil
	case types.KindI64:
		return "i64", nil
	case types.KindU32:
		return "u32", nil
	case types.KindU64:
		return "u64", nil
	case types.KindString:
		return "String", nil
	case types.KindRef:
		elem, err := e.typeTag(t.Elem)
		if err != nil {
			return "", err
		}
		if t.Mutable {
			return "refmut_" + elem, nil
		}
		return "ref_" + elem, nil
	case types.KindArray:
		elem, err := e.typeTag(t.Elem)
		if err != nil {
			return "", err
		}
		return fmt.Sprintf("arr%d_%s", t.Size, elem), nil
	case types.KindStruct, types.KindEnum:
		if name, ok := e.typeNames[id]; ok {
			return name, nil
		}
		return "", fmt.Errorf("codegen: type %s was not collected", e.in.Format(e.astb.Strings, id))
	default:
		return "", fmt.Errorf("codegen: cannot name type %s", e.in.Format(e.astb.Strings, id))
	}
}

// emitTypeDefs writes every struct, enum and array wrapper definition
// in value-dependency order, after predeclaring all typedef names so
// reference fields may point at any of them.
func (e *emitter) emitTypeDefs() error {
	// Bodies and signatures registered their array wrappers while
	// rendering; pick up arrays that appear only inside nominal types.
	if err := e.registerFieldArrays(); err != nil {
		return err
	}

	names := make([]string, 0, len(e.structs)+len(e.enums)+len(e.arrays))
	for _, st := range e.prog.Structs {
		names = append(names, st.Name)
	}
	for _, en := range e.prog.Enums {
		names = append(names, en.Name)
	}
	for _, def := range e.arrays {
		names = append(names, def.name)
	}
	slices.Sort(names)
	for _, name := range names {
		e.line("typedef struct %s %s;", name, name)
	}
	if len(names) > 0 {
		e.line("")
	}

	order, err := e.layoutOrder()
	if err != nil {
		return err
	}
	for _, id := range order {
		if err := e.emitTypeDef(id); err != nil {
			return err
		}
	}
	return nil
}

func (e *emitter) registerFieldArrays() error {
	for _, st := range e.prog.Structs {
		for _, f := range st.Fields {
			if err := e.registerArrayTypes(f.Type); err != nil {
				return err
			}
		}
	}
	for _, en := range e.prog.Enums {
		for _, v := range en.Variants {
			for _, elem := range v.Elems {
				if err := e.registerArrayTypes(elem); err != nil {
					return err
				}
			}
			for _, f := range v.Fields {
				if err := e.registerArrayTypes(f.Type); err != nil {
					return err
				}
			}
		}
	}
	return nil
}

func (e *emitter) registerArrayTypes(id types.TypeID) error {
	t, ok := e.in.Lookup(id)
	if !ok {
		return nil
	}
	switch t.Kind {
	case types.KindArray:
		if !e.concrete(t.Elem) {
			return nil
		}
		if _, err := e.arrayName(id, t); err != nil {
			return err
		}
		return e.registerArrayTypes(t.Elem)
	case types.KindRef:
		return e.registerArrayTypes(t.Elem)
	}
	return nil
}

// concrete reports whether id is free of inference vars and generic
// parameters. Expression types of still-generic bodies are not.
func (e *emitter) concrete(id types.TypeID) bool {
	t, ok := e.in.Lookup(id)
	if !ok {
		return false
	}
	switch t.Kind {
	case types.KindVar, types.KindParam:
		return false
	case types.KindRef, types.KindArray:
		return e.concrete(t.Elem)
	case types.KindFn:
		for _, p := range t.Params {
			if !e.concrete(p) {
				return false
			}
		}
		return e.concrete(t.Result)
	case types.KindStruct, types.KindEnum:
		for _, a := range t.Args {
			if !e.concrete(a) {
				return false
			}
		}
		return true
	}
	return true
}

// layoutOrder topologically sorts nominal and array types by value
// containment. Reference fields do not order; a value containment
// cycle cannot be laid out.
func (e *emitter) layoutOrder() ([]types.TypeID, error) {
	roots := make([]types.TypeID, 0, len(e.structs)+len(e.enums)+len(e.arrays))
	for _, st := range e.prog.Structs {
		roots = append(roots, st.Type)
	}
	for _, en := range e.prog.Enums {
		roots = append(roots, en.Type)
	}
	arrayIDs := make([]types.TypeID, 0, len(e.arrays))
	for id := range e.arrays {
		arrayIDs = append(arrayIDs, id)
	}
	slices.Sort(arrayIDs)
	roots = append(roots, arrayIDs...)

	var order []types.TypeID
	state := make(map[types.TypeID]int) // 1 visiting, 2 done
	var visit func(id types.TypeID) error
	visit = func(id types.TypeID) error {
		switch state[id] {
		case 2:
			return nil
		case 1:
			return fmt.Errorf("codegen: recursive value layout for %s", e.in.Format(e.astb.Strings, id))
		}
		state[id] = 1
		for _, dep := range e.valueDeps(id) {
			if err := visit(dep); err != nil {
				return err
			}
		}
		state[id] = 2
		order = append(order, id)
		return nil
	}
	for _, id := range roots {
		if err := visit(id); err != nil {
			return nil, err
		}
	}
	return order, nil
}

// valueDeps lists the types id embeds by value.
func (e *emitter) valueDeps(id types.TypeID) []types.TypeID {
	var deps []types.TypeID
	add := func(t types.TypeID) {
		desc, ok := e.in.Lookup(t)
		if !ok {
			return
		}
		switch desc.Kind {
		case types.KindStruct, types.KindEnum, types.KindArray:
			deps = append(deps, t)
		}
	}
	if st, ok := e.structs[id]; ok {
		for _, f := range st.Fields {
			add(f.Type)
		}
		return deps
	}
	if en, ok := e.enums[id]; ok {
		for _, v := range en.Variants {
			for _, elem := range v.Elems {
				add(elem)
			}
			for _, f := range v.Fields {
				add(f.Type)
			}
		}
		return deps
	}
	if def, ok := e.arrays[id]; ok {
		add(def.elem)
	}
	return deps
}

func (e *emitter) emitTypeDef(id types.TypeID) error {
	if st, ok := e.structs[id]; ok {
		e.line("struct %s {", st.Name)
		if len(st.Fields) == 0 {
			e.line("    char __pad;")
		}
		for _, f := range st.Fields {
			ct, err := e.cType(f.Type)
			if err != nil {
				return err
			}
			e.line("    %s %s;", ct, f.Name)
		}
		e.line("};")
		e.line("")
		return nil
	}
	if en, ok := e.enums[id]; ok {
		return e.emitEnumDef(en)
	}
	if def, ok := e.arrays[id]; ok {
		ct, err := e.cType(def.elem)
		if err != nil {
			return err
		}
		e.line("struct %s {", def.name)
		e.line("    %s data[%d];", ct, def.size)
		e.line("};")
		e.line("")
		e.line("static inline %s %s_repeat(%s v) {", def.name, def.name, ct)
		e.line("    %s a;", def.name)
		e.line("    for (size_t i = 0; i < %d; i++) a.data[i] = v;", def.size)
		e.line("    return a;")
		e.line("}")
		e.line("")
	}
	return nil
}

func (e *emitter) emitEnumDef(en *mono.EnumInst) error {
	e.line("struct %s {", en.Name)
	e.line("    int tag;")
	if enumHasPayload(en) {
		e.line("    union {")
		for _, v := range en.Variants {
			if len(v.Elems) == 0 && len(v.Fields) == 0 {
				continue
			}
			e.line("        struct {")
			for i, elem := range v.Elems {
				ct, err := e.cType(elem)
				if err != nil {
					return err
				}
				e.line("            %s v%d;", ct, i)
			}
			for _, f := range v.Fields {
				ct, err := e.cType(f.Type)
				if err != nil {
					return err
				}
				e.line("            %s %s;", ct, f.Name)
			}
			e.line("        } %s;", v.Name)
		}
		e.line("    } payload;")
	}
	e.line("};")
	e.line("")
	return nil
}

func enumHasPayload(en *mono.EnumInst) bool {
	for _, v := range en.Variants {
		if len(v.Elems) > 0 || len(v.Fields) > 0 {
			return true
		}
	}
	return false
}

// emitCtors writes one constructor helper per enum variant, the
// expression form every constructor use lowers to.
func (e *emitter) emitCtors() error {
	for _, en := range e.prog.Enums {
		for tag, v := range en.Variants {
			var params []string
			for i, elem := range v.Elems {
				ct, err := e.cType(elem)
				if err != nil {
					return err
				}
				params = append(params, fmt.Sprintf("%s v%d", ct, i))
			}
			for _, f := range v.Fields {
				ct, err := e.cType(f.Type)
				if err != nil {
					return err
				}
				params = append(params, fmt.Sprintf("%s %s", ct, f.Name))
			}
			plist := "void"
			if len(params) > 0 {
				plist = strings.Join(params, ", ")
			}
			e.line("static inline %s %s_%s(%s) {", en.Name, en.Name, v.Name, plist)
			e.line("    %s e;", en.Name)
			e.line("    e.tag = %d;", tag)
			for i := range v.Elems {
				e.line("    e.payload.%s.v%d = v%d;", v.Name, i, i)
			}
			for _, f := range v.Fields {
				e.line("    e.payload.%s.%s = %s;", v.Name, f.Name, f.Name)
			}
			e.line("    return e;")
			e.line("}")
			e.line("")
		}
	}
	return nil
}
