package mono

import (
	"fmt"
	"strconv"
	"strings"

	"palladium/internal/symbols"
	"palladium/internal/types"
)

// MonoKey identifies one concrete instance of a generic symbol. Go maps
// cannot key on slices, so the normalized type arguments collapse into a
// stable ArgsKey string.
type MonoKey struct {
	Sym     symbols.SymbolID
	ArgsKey string
}

func makeKey(sym symbols.SymbolID, args []types.TypeID) MonoKey {
	return MonoKey{Sym: sym, ArgsKey: typeArgsKey(args)}
}

func typeArgsKey(args []types.TypeID) string {
	if len(args) == 0 {
		return ""
	}
	var b strings.Builder
	for i, arg := range args {
		if i > 0 {
			b.WriteByte('#')
		}
		b.WriteString(strconv.FormatUint(uint64(arg), 10))
	}
	return b.String()
}

// mangleFn builds the emitted name of a function instance, for example
// identity__i64. Non-generic functions keep their source name.
func (b *builder) mangleFn(name string, args []types.TypeID) string {
	if len(args) == 0 {
		return name
	}
	parts := make([]string, len(args))
	for i, arg := range args {
		parts[i] = b.typeSuffix(arg)
	}
	return name + "__" + strings.Join(parts, "_")
}

// mangleType builds the emitted name of a struct or enum instance, for
// example Option_i64.
func (b *builder) mangleType(name string, args []types.TypeID) string {
	if len(args) == 0 {
		return name
	}
	parts := make([]string, len(args))
	for i, arg := range args {
		parts[i] = b.typeSuffix(arg)
	}
	return name + "_" + strings.Join(parts, "_")
}

// typeSuffix renders one type argument as a mangle fragment. Nominal
// arguments recurse so Option<Box<i64>> becomes Option_Box_i64.
func (b *builder) typeSuffix(id types.TypeID) string {
	t, ok := b.in.Lookup(id)
	if !ok {
		return "invalid"
	}
	switch t.Kind {
	case types.KindUnit:
		return "unit"
	case types.KindBool:
		return "bool"
	case types.KindI32:
		return "i32"
	case types.KindI64:
		return "i64"
	case types.KindU32:
		return "u32"
	case types.KindU64:
		return "u64"
	case types.KindString:
		return "String"
	case types.KindArray:
		return fmt.Sprintf("arr%d_%s", t.Size, b.typeSuffix(t.Elem))
	case types.KindRef:
		if t.Mutable {
			return "refmut_" + b.typeSuffix(t.Elem)
		}
		return "ref_" + b.typeSuffix(t.Elem)
	case types.KindStruct, types.KindEnum:
		return b.mangleType(b.in.DeclName(t.Decl), t.Args)
	default:
		return fmt.Sprintf("t%d", id)
	}
}
