package types

import (
	"fmt"
	"strconv"
	"strings"

	"fortio.org/safecast"

	"palladium/internal/source"
)

// Builtins stores TypeIDs for the primitive types every stage needs.
type Builtins struct {
	Invalid TypeID
	Unit    TypeID
	Bool    TypeID
	I32     TypeID
	I64     TypeID
	U32     TypeID
	U64     TypeID
	String  TypeID
}

// Interner provides stable TypeIDs by hashing structural descriptors.
type Interner struct {
	types     []Type
	index     map[string]TypeID
	builtins  Builtins
	nextVar   VarID
	declNames map[DeclID]string
}

// NewInterner constructs an interner seeded with the built-in primitives.
func NewInterner() *Interner {
	in := &Interner{
		index:     make(map[string]TypeID, 64),
		declNames: make(map[DeclID]string),
	}
	in.types = append(in.types, Type{Kind: KindInvalid}) // reserve id 0
	in.builtins.Invalid = NoTypeID
	in.builtins.Unit = in.Intern(Type{Kind: KindUnit})
	in.builtins.Bool = in.Intern(Type{Kind: KindBool})
	in.builtins.I32 = in.Intern(Type{Kind: KindI32})
	in.builtins.I64 = in.Intern(Type{Kind: KindI64})
	in.builtins.U32 = in.Intern(Type{Kind: KindU32})
	in.builtins.U64 = in.Intern(Type{Kind: KindU64})
	in.builtins.String = in.Intern(Type{Kind: KindString})
	return in
}

func (in *Interner) Builtins() Builtins {
	return in.builtins
}

// Intern ensures the descriptor has a stable TypeID.
func (in *Interner) Intern(t Type) TypeID {
	if t.Kind == KindInvalid {
		return NoTypeID
	}
	key := t.key()
	if id, ok := in.index[key]; ok {
		return id
	}
	lenTypes, err := safecast.Conv[uint32](len(in.types))
	if err != nil {
		panic(fmt.Errorf("type count overflow: %w", err))
	}
	id := TypeID(lenTypes)
	in.types = append(in.types, t)
	in.index[key] = id
	return id
}

// Lookup returns the descriptor for a TypeID.
func (in *Interner) Lookup(id TypeID) (Type, bool) {
	if id == NoTypeID || int(id) >= len(in.types) {
		return Type{}, false
	}
	return in.types[id], true
}

// MustLookup panics on an unknown id. Use only for interned ids.
func (in *Interner) MustLookup(id TypeID) Type {
	t, ok := in.Lookup(id)
	if !ok {
		panic(fmt.Sprintf("invalid TypeID %d", id))
	}
	return t
}

func (in *Interner) Kind(id TypeID) Kind {
	t, ok := in.Lookup(id)
	if !ok {
		return KindInvalid
	}
	return t.Kind
}

// NewVar allocates a fresh unification variable.
func (in *Interner) NewVar() TypeID {
	in.nextVar++
	return in.Intern(Type{Kind: KindVar, Var: in.nextVar})
}

// MakeParam interns a generic parameter placeholder by name.
func (in *Interner) MakeParam(name source.StringID) TypeID {
	return in.Intern(Type{Kind: KindParam, Name: name})
}

// SetDeclName registers the display name of a nominal declaration so
// Format can print Option<i64> instead of enum#7<i64>.
func (in *Interner) SetDeclName(decl DeclID, name string) {
	in.declNames[decl] = name
}

func (in *Interner) DeclName(decl DeclID) string {
	if name, ok := in.declNames[decl]; ok {
		return name
	}
	return fmt.Sprintf("decl#%d", decl)
}

// Format renders a type for diagnostics.
func (in *Interner) Format(strings_ *source.Interner, id TypeID) string {
	t, ok := in.Lookup(id)
	if !ok {
		return "<invalid>"
	}
	switch t.Kind {
	case KindUnit:
		return "()"
	case KindBool:
		return "bool"
	case KindI32:
		return "i32"
	case KindI64:
		return "i64"
	case KindU32:
		return "u32"
	case KindU64:
		return "u64"
	case KindString:
		return "String"
	case KindArray:
		return "[" + in.Format(strings_, t.Elem) + "; " + strconv.FormatInt(t.Size, 10) + "]"
	case KindRef:
		if t.Mutable {
			return "&mut " + in.Format(strings_, t.Elem)
		}
		return "&" + in.Format(strings_, t.Elem)
	case KindFn:
		var sb strings.Builder
		sb.WriteString("fn(")
		for i, p := range t.Params {
			if i > 0 {
				sb.WriteString(", ")
			}
			sb.WriteString(in.Format(strings_, p))
		}
		sb.WriteString(") -> ")
		sb.WriteString(in.Format(strings_, t.Result))
		return sb.String()
	case KindStruct, KindEnum:
		name := in.DeclName(t.Decl)
		if len(t.Args) == 0 {
			return name
		}
		var sb strings.Builder
		sb.WriteString(name)
		sb.WriteByte('<')
		for i, a := range t.Args {
			if i > 0 {
				sb.WriteString(", ")
			}
			sb.WriteString(in.Format(strings_, a))
		}
		sb.WriteByte('>')
		return sb.String()
	case KindVar:
		return fmt.Sprintf("?%d", t.Var)
	case KindParam:
		if strings_ != nil {
			if s, ok := strings_.Lookup(t.Name); ok && s != "" {
				return s
			}
		}
		return fmt.Sprintf("param#%d", t.Name)
	default:
		return "<invalid>"
	}
}
