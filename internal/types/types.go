package types

import (
	"fmt"
	"strings"

	"palladium/internal/source"
)

// TypeID is a stable handle produced by the Interner. Structurally equal
// types always share one TypeID, so equality is an integer compare.
type TypeID uint32

const NoTypeID TypeID = 0

func (id TypeID) IsValid() bool { return id != NoTypeID }

// DeclID references the declaring symbol of a nominal type. The symbols
// package owns the numbering; types only compares it.
type DeclID uint32

// VarID numbers unification variables within one session.
type VarID uint32

type Kind uint8

const (
	KindInvalid Kind = iota
	KindUnit
	KindBool
	KindI32
	KindI64
	KindU32
	KindU64
	KindString
	KindArray
	KindRef
	KindFn
	KindStruct
	KindEnum
	KindVar
	KindParam
)

// Type is a structural descriptor. Children are TypeIDs, so descriptors
// for recursive declarations never form ownership cycles.
type Type struct {
	Kind Kind

	Elem    TypeID // array element, reference target
	Size    int64  // array length
	Mutable bool   // reference mutability

	Params []TypeID // function parameters
	Result TypeID   // function result

	Decl DeclID   // struct/enum declaration
	Args []TypeID // struct/enum type arguments

	Var VarID // unification variable

	Name source.StringID // generic parameter name
}

// IsNumeric reports whether arithmetic and ordering operators accept the
// kind.
func (k Kind) IsNumeric() bool {
	switch k {
	case KindI32, KindI64, KindU32, KindU64:
		return true
	}
	return false
}

// IsPrimitive reports whether values of the kind are copied, not moved.
func (k Kind) IsPrimitive() bool {
	switch k {
	case KindUnit, KindBool, KindI32, KindI64, KindU32, KindU64:
		return true
	}
	return false
}

// key builds the canonical structural key. Children are already interned
// when the parent is, so child ids are stable key material.
func (t Type) key() string {
	switch t.Kind {
	case KindArray:
		return fmt.Sprintf("arr(%d;%d)", t.Elem, t.Size)
	case KindRef:
		if t.Mutable {
			return fmt.Sprintf("refmut(%d)", t.Elem)
		}
		return fmt.Sprintf("ref(%d)", t.Elem)
	case KindFn:
		var sb strings.Builder
		sb.WriteString("fn(")
		for i, p := range t.Params {
			if i > 0 {
				sb.WriteByte(',')
			}
			fmt.Fprintf(&sb, "%d", p)
		}
		fmt.Fprintf(&sb, ")->%d", t.Result)
		return sb.String()
	case KindStruct, KindEnum:
		var sb strings.Builder
		if t.Kind == KindStruct {
			sb.WriteString("struct(")
		} else {
			sb.WriteString("enum(")
		}
		fmt.Fprintf(&sb, "%d", t.Decl)
		for _, a := range t.Args {
			fmt.Fprintf(&sb, ",%d", a)
		}
		sb.WriteByte(')')
		return sb.String()
	case KindVar:
		return fmt.Sprintf("var(%d)", t.Var)
	case KindParam:
		return fmt.Sprintf("param(%d)", t.Name)
	default:
		return fmt.Sprintf("prim(%d)", t.Kind)
	}
}
